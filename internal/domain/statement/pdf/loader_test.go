package pdf

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/pesa-insights/internal/domain/statement/parser"
)

// buildPDF writes a single page PDF with one text line per entry and a valid xref table.
func buildPDF(lines []string) []byte {
	var content strings.Builder
	content.WriteString("BT /F1 12 Tf 14 TL 40 780 Td\n")
	for _, line := range lines {
		fmt.Fprintf(&content, "(%s) Tj T*\n", line)
	}
	content.WriteString("ET")

	objects := []string{
		"<< /Type /Catalog /Pages 2 0 R >>",
		"<< /Type /Pages /Kids [3 0 R] /Count 1 >>",
		"<< /Type /Page /Parent 2 0 R /MediaBox [0 0 595 842] /Contents 4 0 R /Resources << /Font << /F1 5 0 R >> >> >>",
		fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", content.Len(), content.String()),
		"<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica >>",
	}

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objects))
	for i, obj := range objects {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}
	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n0000000000 65535 f \n", len(objects)+1)
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objects)+1, xref)
	return buf.Bytes()
}

func TestLoader_Load(t *testing.T) {
	loader := NewLoader()

	doc, err := loader.Load(buildPDF([]string{"01/02/24", "SPORTPESA BET", "500.00"}))
	require.NoError(t, err)
	defer doc.Close()

	require.Equal(t, 1, doc.NumPage())
	text, err := doc.Text(0)
	require.NoError(t, err)
	assert.Contains(t, text, "SPORTPESA BET")
	assert.Contains(t, text, "500.00")
}

func TestLoader_LoadGarbage(t *testing.T) {
	_, err := NewLoader().Load([]byte("definitely not a pdf"))

	require.Error(t, err)
	assert.NotErrorIs(t, err, parser.ErrEncrypted)
}

func TestLoader_ParsesThroughParser(t *testing.T) {
	p := parser.New(NewLoader(), nil)

	stmt, err := p.Parse(bytes.NewReader(buildPDF([]string{"01/02/24", "SPORTPESA BET", "500.00"})), "")
	require.NoError(t, err)

	require.Len(t, stmt.Transactions, 1)
	assert.Equal(t, parser.CategoryBetting, stmt.Transactions[0].Category)
	assert.Equal(t, "500.00", stmt.TotalOutgoing.StringFixed(2))
}
