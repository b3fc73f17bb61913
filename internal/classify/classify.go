// Package classify 把文件映射为粗粒度类别：先看头部魔数，再回退到扩展名表。
package classify

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/h2non/filetype"

	"github.com/John-Robertt/nameback/internal/domain"
)

// HeaderSize 是用于魔数探测的读取长度。
const HeaderSize = 8192

var extTable = map[string]domain.Category{}

func register(c domain.Category, exts ...string) {
	for _, e := range exts {
		extTable[e] = c
	}
}

func init() {
	register(domain.CategoryImage, "jpg", "jpeg", "png", "gif", "bmp", "tiff", "tif", "webp", "heic", "heif", "ico", "svg")
	register(domain.CategoryDocument, "pdf", "doc", "docx", "xls", "xlsx", "xlsm", "ppt", "pptx", "odt", "ods", "odp", "rtf",
		"txt", "text", "md", "markdown", "csv", "json", "yaml", "yml")
	register(domain.CategoryEmail, "eml", "msg")
	register(domain.CategoryWeb, "html", "htm", "mhtml")
	register(domain.CategoryArchive, "zip", "tar", "gz", "tgz", "bz2", "xz", "7z", "rar")
	register(domain.CategorySourceCode, "py", "js", "ts", "rs", "java", "c", "cpp", "cc", "cxx", "h", "hpp", "hxx", "go")
	register(domain.CategoryAudio, "mp3", "wav", "flac", "aac", "ogg", "m4a", "wma", "opus")
	register(domain.CategoryVideo, "mp4", "avi", "mkv", "mov", "wmv", "flv", "webm", "m4v", "mpg", "mpeg")
}

// ByExtension 只按扩展名分类（大小写不敏感）；未知扩展名返回 Unknown。
func ByExtension(path string) domain.Category {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	if c, ok := extTable[ext]; ok {
		return c
	}
	return domain.CategoryUnknown
}

// ByMIME 按 MIME 规则分类；ok=false 表示该 MIME 不属于任何类别。
func ByMIME(mime, path string) (domain.Category, bool) {
	switch {
	case strings.HasPrefix(mime, "image/"):
		return domain.CategoryImage, true
	case mime == "application/pdf",
		strings.HasPrefix(mime, "application/vnd.openxmlformats-officedocument"),
		strings.HasPrefix(mime, "application/vnd.ms-"),
		strings.HasPrefix(mime, "application/vnd.oasis.opendocument"),
		mime == "application/rtf",
		mime == "application/msword",
		strings.HasPrefix(mime, "text/"):
		return domain.CategoryDocument, true
	case strings.HasPrefix(mime, "audio/"):
		return domain.CategoryAudio, true
	case strings.HasPrefix(mime, "video/"):
		return domain.CategoryVideo, true
	case isArchiveMIME(mime):
		// OOXML/ODF 本质是 zip 容器：扩展名能说明是文档时以扩展名为准。
		if c := ByExtension(path); c != domain.CategoryUnknown {
			return c, true
		}
		return domain.CategoryArchive, true
	}
	return domain.CategoryUnknown, false
}

func isArchiveMIME(mime string) bool {
	switch mime {
	case "application/zip", "application/x-tar", "application/gzip", "application/x-gzip",
		"application/x-7z-compressed", "application/vnd.rar", "application/x-rar-compressed",
		"application/x-bzip2", "application/x-xz":
		return true
	}
	return false
}

// Classify 读取文件头部判断类别。
//
// 约束：
// - 读取失败时返回 Unknown 与错误（调用方继续处理，文件不会得到新名字）
// - 魔数命中但 MIME 不属于任何类别时返回 Unknown
// - 魔数未命中时回退到扩展名表
func Classify(path string) (domain.Category, error) {
	f, err := os.Open(path)
	if err != nil {
		return domain.CategoryUnknown, err
	}
	defer f.Close()

	buf := make([]byte, HeaderSize)
	n, err := io.ReadFull(f, buf)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return domain.CategoryUnknown, err
	}
	return ClassifyHeader(buf[:n], path), nil
}

// ClassifyHeader 对已读取的头部字节分类。
func ClassifyHeader(head []byte, path string) domain.Category {
	kind, err := filetype.Match(head)
	if err != nil || kind == filetype.Unknown {
		return ByExtension(path)
	}
	c, _ := ByMIME(kind.MIME.Value, path)
	return c
}
