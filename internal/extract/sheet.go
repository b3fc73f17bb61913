package extract

import (
	"context"
	"strings"

	"github.com/xuri/excelize/v2"
)

// maxSheetScan 限制首个工作表扫描的行数。
const maxSheetScan = 20

// Sheet 提取 xlsx/xlsm 的文档标题；没有标题时用首个非空单元格（非默认表名时前缀表名）。
type Sheet struct{}

func (Sheet) Name() string { return "sheet" }

func (Sheet) Extract(ctx context.Context, path string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	f, err := excelize.OpenFile(path)
	if err != nil {
		return "", false, err
	}
	defer f.Close()

	if props, err := f.GetDocProps(); err == nil {
		if t := CleanText(props.Title); runeLen(t) > 3 {
			return Truncate(t, maxTextName), true, nil
		}
	}

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return "", false, nil
	}
	sheet := sheets[0]
	rows, err := f.Rows(sheet)
	if err != nil {
		return "", false, err
	}
	defer rows.Close()

	for i := 0; i < maxSheetScan && rows.Next(); i++ {
		cols, err := rows.Columns()
		if err != nil {
			return "", false, err
		}
		for _, c := range cols {
			c = CleanText(c)
			if runeLen(c) <= 3 {
				continue
			}
			if !strings.EqualFold(sheet, "Sheet1") {
				c = sheet + " " + c
			}
			return Truncate(c, maxTextName), true, nil
		}
	}
	return "", false, nil
}
