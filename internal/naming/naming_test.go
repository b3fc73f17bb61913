package naming

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitize(t *testing.T) {
	cases := map[string]string{
		"Quarterly Sales Report Q3 2023": "Quarterly_Sales_Report_Q3_2023",
		"Invoice #4571 — Acme Corp":      "Invoice_4571_Acme_Corp",
		"a/b\\c:d*e?f\"g<h>i|j":          "a_b_c_d_e_f_g_h_i_j",
		"(draft) [v2]":                   "draft_v2",
		"__hello__world__":               "hello_world",
		"tab\there\x00":                  "tab_here",
		"":                               EmptyName,
		"???":                            EmptyName,
		"Dinner_47.61N_122.33W":          "Dinner_47.61N_122.33W",
		"Café menu":                "Café_menu",
		"报告 2023":                        "报告_2023",
	}
	for in, want := range cases {
		assert.Equalf(t, want, Sanitize(in), "Sanitize(%q)", in)
	}
}

func TestSanitize_Idempotent(t *testing.T) {
	for _, in := range []string{
		"Invoice #4571 — Acme Corp", "  spaced  out  ", "._.hidden_.", "x" + strings.Repeat("é", 250),
	} {
		once := Sanitize(in)
		assert.Equal(t, once, Sanitize(once), in)
		assert.NotContains(t, once, " ")
		assert.False(t, strings.HasPrefix(once, "_") || strings.HasSuffix(once, "_"), once)
	}
}

func TestSanitize_GraphemeClamp(t *testing.T) {
	exact := strings.Repeat("a", MaxGraphemes)
	assert.Equal(t, exact, Sanitize(exact))

	over := strings.Repeat("b", MaxGraphemes+1)
	assert.Equal(t, strings.Repeat("b", MaxGraphemes), Sanitize(over))

	// 组合字符按一个字素簇计数。
	combined := strings.Repeat("é", MaxGraphemes+5)
	assert.Equal(t, MaxGraphemes, len([]rune(Sanitize(combined))))
}

func TestResolver_Claim(t *testing.T) {
	dir := "/photos"
	r := NewResolver()
	r.Seed(dir, []string{"foo.txt", "a.docx", "b.docx"})

	// 已存在的 foo.txt 属于它自己；另一个文件想要同名时追加后缀。
	assert.Equal(t, "foo_1.txt", r.Claim(dir, filepath.Join(dir, "bar.txt"), "foo", ".txt"))
	// 文件保留自己的名字。
	assert.Equal(t, "foo.txt", r.Claim(dir, filepath.Join(dir, "foo.txt"), "foo", ".txt"))

	assert.Equal(t, "Report.docx", r.Claim(dir, filepath.Join(dir, "a.docx"), "Report", ".docx"))
	assert.Equal(t, "Report_1.docx", r.Claim(dir, filepath.Join(dir, "b.docx"), "Report", ".docx"))

	// 不同目录互不影响。
	assert.Equal(t, "Report.docx", r.Claim("/other", "/other/x.docx", "Report", ".docx"))
}
