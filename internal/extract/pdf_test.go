package extract

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNameFromPDFText(t *testing.T) {
	got, ok := NameFromPDFText("\n\nInvoice #4571 — Acme Corp\nPage 1\n\nLine items follow below in detail\n")
	require.True(t, ok)
	assert.Equal(t, "Invoice #4571 — Acme Corp Page 1", got)

	got, ok = NameFromPDFText("Annual Report 2024 Financial Statements\nsecond line\n")
	require.True(t, ok)
	assert.Equal(t, "Annual Report 2024 Financial Statements", got)

	// 过短的首行与后续行拼接。
	got, ok = NameFromPDFText("abcd\nxy\nefgh ijkl mnop\n")
	require.True(t, ok)
	assert.Equal(t, "abcd efgh ijkl mnop", got)

	_, ok = NameFromPDFText("   \n  \n")
	assert.False(t, ok)
}

func TestNameFromText(t *testing.T) {
	long := strings.Repeat("contract renewal pricing schedule ", 8)
	got, ok := nameFromText(long)
	require.True(t, ok)
	assert.Contains(t, long, got)
	assert.LessOrEqual(t, len(strings.Fields(got)), 3)

	got, ok = nameFromText("Scanned receipt from store")
	require.True(t, ok)
	assert.Equal(t, "Scanned receipt from store", got)

	_, ok = nameFromText("short")
	assert.False(t, ok)
}
