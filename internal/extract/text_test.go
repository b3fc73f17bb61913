package extract

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/simplifiedchinese"
)

func TestTruncate(t *testing.T) {
	assert.Equal(t, "Short text", Truncate("Short text", 80))
	long := "This is a very long text that needs to be truncated at a reasonable point in the middle"
	got := Truncate(long, 50)
	assert.LessOrEqual(t, runeLen(got), 50)
	assert.Greater(t, runeLen(got), 25)
	assert.False(t, strings.HasSuffix(got, " "))
	assert.Equal(t, "Error Message Database Connection Failed", CleanText("Error   Message\n\nDatabase  Connection\n  Failed"))
}

func TestTextFromContent_Markdown(t *testing.T) {
	got, ok := TextFromContent("---\ntitle: \"Quarterly Planning Notes\"\ndate: 2024-01-01\n---\n# Intro\n", "md")
	require.True(t, ok)
	assert.Equal(t, "Quarterly Planning Notes", got)

	got, ok = TextFromContent("# Introduction\n\n## Kubernetes Upgrade Runbook\n", "markdown")
	require.True(t, ok)
	assert.Equal(t, "Kubernetes Upgrade Runbook", got)
}

func TestTextFromContent_CSV(t *testing.T) {
	got, ok := TextFromContent("id,created_at,title,price\n1,2024-01-01,Widget,9.99\n", "csv")
	require.True(t, ok)
	assert.Equal(t, "title", got)

	got, ok = TextFromContent("uuid,region,owner,amount\nx,emea,alice,10\n", "csv")
	require.True(t, ok)
	assert.Equal(t, "region_owner", got)

	_, ok = TextFromContent("id,amount\n1,2\n", "csv")
	assert.False(t, ok)
}

func TestTextFromContent_JSON(t *testing.T) {
	got, ok := TextFromContent(`{"version": 2, "package": {"name": "nameback-core"}}`, "json")
	require.True(t, ok)
	assert.Equal(t, "nameback-core", got)

	got, ok = TextFromContent(`{"name": "ab", "displayName": "Release Dashboard"}`, "json")
	require.True(t, ok)
	assert.Equal(t, "Release Dashboard", got, "过短的 name 应跳过")
}

func TestTextFromContent_YAML(t *testing.T) {
	got, ok := TextFromContent("project:\n  name: Photo Archive Tool\n", "yaml")
	require.True(t, ok)
	assert.Equal(t, "Photo Archive Tool", got)

	// 无法解析时回退为逐行匹配。
	got, ok = TextFromContent("key: [unclosed\ntitle: 'Broken But Named'\n", "yml")
	require.True(t, ok)
	assert.Equal(t, "Broken But Named", got)
}

func TestTextFromContent_Plain(t *testing.T) {
	got, ok := TextFromContent("Meeting notes for the budget review\n", "txt")
	require.True(t, ok)
	assert.Equal(t, "Meeting notes for the budget review", got)

	_, ok = TextFromContent("tiny\n", "txt")
	assert.False(t, ok)

	long := strings.Repeat("quarterly budget review covers revenue forecast details\n", 6)
	got, ok = TextFromContent(long, "txt")
	require.True(t, ok)
	assert.NotEmpty(t, got)
	assert.LessOrEqual(t, len(strings.Fields(got)), 3, "长文本应返回关键短语")
}

func TestText_Extract_GBKFallback(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "notes.txt")
	enc, err := simplifiedchinese.GBK.NewEncoder().String("年度预算会议纪要与行动项")
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(p, []byte(enc), 0o644))

	got, ok, err := Text{}.Extract(context.Background(), p)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "年度预算会议纪要与行动项", got)
}

func TestDocstring(t *testing.T) {
	cases := []struct {
		ext, content, want string
	}{
		{"py", "#!/usr/bin/env python\n\"\"\"Image resizing utilities. Uses PIL.\"\"\"\nimport os\n", "Image resizing utilities"},
		{"py", "'''\nBatch invoice exporter\nfor accounting\n'''\n", "Batch invoice exporter for accounting"},
		{"js", "/**\n * @file Date helpers for the calendar\n */\n", "Date helpers for the calendar"},
		{"ts", "/**\n * Shopping cart store\n * @author x\n */\n", "Shopping cart store"},
		{"rs", "//! Config loader for the daemon.\n//! More text.\nuse std;\n", "Config loader for the daemon"},
		{"java", "/**\n * Payment gateway client\n * @since 1.0\n */\nclass A {}\n", "Payment gateway client"},
		{"c", "/*!\n * \\file x.c\n * Ring buffer implementation\n */\n", "Ring buffer implementation"},
		{"hpp", "/// Vector math helpers\nnamespace m {}\n", "Vector math helpers"},
		{"go", "// Package cache stores analysis results on disk.\npackage cache\n", "stores analysis results on disk."},
	}
	for _, tc := range cases {
		got, ok := Docstring(tc.content, tc.ext)
		require.True(t, ok, tc.ext)
		assert.Equal(t, tc.want, got, tc.ext)
	}

	_, ok := Docstring("import os\n\"\"\"late\"\"\"\n", "py")
	assert.False(t, ok)
	_, ok = Docstring("x", "rb")
	assert.False(t, ok)
}
