package extract

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"mime"
	"net/mail"
	"os"
	"strings"
	"time"

	"golang.org/x/text/encoding/htmlindex"
)

// Email 从 RFC 822 邮件头生成 subject_from_sender_YYYY-MM-DD。
type Email struct{}

func (Email) Name() string { return "email" }

func (Email) Extract(ctx context.Context, path string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	f, err := os.Open(path)
	if err != nil {
		return "", false, err
	}
	defer f.Close()

	h, err := ReadEmailHeader(f)
	if err != nil {
		return "", false, err
	}
	s, ok := h.FileName()
	return s, ok, nil
}

// EmailHeader 是命名需要的三个头字段（已解码）。
type EmailHeader struct {
	Subject string
	From    string
	Date    string
}

var wordDecoder = &mime.WordDecoder{
	CharsetReader: func(charset string, input io.Reader) (io.Reader, error) {
		enc, err := htmlindex.Get(charset)
		if err != nil {
			return nil, fmt.Errorf("不支持的字符集 %q：%w", charset, err)
		}
		return enc.NewDecoder().Reader(input), nil
	},
}

// ReadEmailHeader 读取到第一个空行为止的邮件头。
func ReadEmailHeader(r io.Reader) (EmailHeader, error) {
	msg, err := mail.ReadMessage(bufio.NewReader(io.LimitReader(r, textReadLimit)))
	if err != nil {
		return EmailHeader{}, err
	}
	h := EmailHeader{
		Subject: decodeHeader(msg.Header.Get("Subject")),
		From:    decodeHeader(msg.Header.Get("From")),
		Date:    msg.Header.Get("Date"),
	}
	return h, nil
}

func decodeHeader(v string) string {
	if v == "" {
		return ""
	}
	if d, err := wordDecoder.DecodeHeader(v); err == nil {
		return strings.TrimSpace(d)
	}
	return strings.TrimSpace(v)
}

// FileName 组合 subject、from_<sender> 与日期；三者都缺失时返回 false。
func (h EmailHeader) FileName() (string, bool) {
	var parts []string
	if s := wordsJoined(h.Subject, nil); s != "" {
		parts = append(parts, s)
	}
	if s := senderName(h.From); s != "" {
		parts = append(parts, "from_"+s)
	}
	if d, ok := simpleDate(h.Date); ok {
		parts = append(parts, d)
	}
	if len(parts) == 0 {
		return "", false
	}
	return strings.Join(parts, "_"), true
}

// senderName 优先取显示名，其次取邮箱的 local part。
func senderName(from string) string {
	from = strings.TrimSpace(from)
	if from == "" {
		return ""
	}
	if addr, err := wordParser.Parse(from); err == nil {
		if addr.Name != "" {
			return wordsJoined(addr.Name, nil)
		}
		local, _, _ := strings.Cut(addr.Address, "@")
		return wordsJoined(local, nil)
	}
	if i := strings.Index(from, "<"); i > 0 {
		if name := strings.TrimSpace(from[:i]); name != "" {
			return wordsJoined(name, nil)
		}
	}
	if i := strings.Index(from, "@"); i >= 0 {
		return wordsJoined(from[:i], nil)
	}
	return wordsJoined(from, nil)
}

var wordParser = &mail.AddressParser{WordDecoder: wordDecoder}

var months = []string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}

// simpleDate 先按 RFC 5322 解析；失败时按"四位年 + 月份缩写 + 1~2 位日"的 token 规则兜底。
func simpleDate(v string) (string, bool) {
	v = strings.TrimSpace(v)
	if v == "" {
		return "", false
	}
	if t, err := mail.ParseDate(v); err == nil {
		return t.Format("2006-01-02"), true
	}

	fields := strings.Fields(v)
	var year, month, day string
	for _, f := range fields {
		if year == "" && len(f) == 4 && allDigits(f) {
			year = f
		}
	}
	for _, f := range fields {
		if month != "" {
			break
		}
		for i, m := range months {
			if strings.Contains(f, m) {
				month = fmt.Sprintf("%02d", i+1)
				break
			}
		}
	}
	for _, f := range fields {
		if len(f) <= 2 && allDigits(f) {
			var d int
			fmt.Sscanf(f, "%d", &d)
			if d >= 1 && d <= 31 {
				day = fmt.Sprintf("%02d", d)
				break
			}
		}
	}
	if year == "" || month == "" || day == "" {
		return "", false
	}
	if _, err := time.Parse("2006-01-02", year+"-"+month+"-"+day); err != nil {
		return "", false
	}
	return year + "-" + month + "-" + day, true
}

func allDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
