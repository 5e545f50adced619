package ingest

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"legal-assistant-be/internal/constant"
)

func TestExtension(t *testing.T) {
	tests := []struct {
		name     string
		fileName string
		want     string
	}{
		{"simple", "contract.txt", "txt"},
		{"upper case", "REPORT.DOCX", "docx"},
		{"multiple dots", "law.v2.final.xlsx", "xlsx"},
		{"no dot", "README", "readme"},
		{"trailing dot", "notes.", ""},
		{"hidden file", ".env", "env"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Extension(tt.fileName))
		})
	}
}

func TestIngest_TextFormats(t *testing.T) {
	ing := New()
	ctx := context.Background()

	for _, name := range []string{"a.txt", "b.CSV", "c.json"} {
		t.Run(name, func(t *testing.T) {
			doc, err := ing.Ingest(ctx, name, strings.NewReader("\xef\xbb\xbfمرحبا,world"))
			require.NoError(t, err)
			assert.Equal(t, "مرحبا,world", doc.Text)
			assert.Equal(t, name, doc.FileName)
			assert.False(t, doc.Truncated)
			assert.Empty(t, doc.Warning())
		})
	}
}

func TestIngest_InvalidUTF8IsReplaced(t *testing.T) {
	doc, err := New().Ingest(context.Background(), "x.txt", bytes.NewReader([]byte{'a', 0xff, 'b'}))
	require.NoError(t, err)
	assert.Equal(t, "a�b", doc.Text)
}

func TestIngest_Rejections(t *testing.T) {
	tests := []struct {
		name     string
		fileName string
		data     string
		kind     ErrorKind
		message  string
	}{
		{"legacy doc", "old.doc", "whatever", KindLegacyFormat, constant.IngestLegacyDocFormat},
		{"unsupported", "image.png", "whatever", KindUnsupported, "نوع الملف غير مدعوم: .png"},
		{"no extension", "Makefile", "all:", KindUnsupported, "نوع الملف غير مدعوم: .makefile"},
		{"empty text", "empty.txt", "", KindUnreadable, constant.IngestUnreadable},
		{"broken docx", "broken.docx", "not a zip", KindParse, constant.IngestProcessingFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := New().Ingest(context.Background(), tt.fileName, strings.NewReader(tt.data))
			assert.Nil(t, doc)

			var ingestErr *Error
			require.True(t, errors.As(err, &ingestErr))
			assert.Equal(t, tt.kind, ingestErr.Kind)
			assert.Equal(t, tt.message, ingestErr.Message)
		})
	}
}

func TestIngest_Docx(t *testing.T) {
	body := `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
  <w:body>
    <w:p><w:r><w:t>المادة 1</w:t></w:r><w:r><w:tab/><w:t xml:space="preserve">نص </w:t></w:r></w:p>
    <w:p><w:r><w:t>سطر</w:t><w:br/><w:t>تالٍ</w:t></w:r></w:p>
  </w:body>
</w:document>`

	doc, err := New().Ingest(context.Background(), "law.docx", bytes.NewReader(buildDocx(t, body)))
	require.NoError(t, err)
	assert.Equal(t, "المادة 1\tنص \n\nسطر\nتالٍ\n\n", doc.Text)
	assert.Equal(t, "docx", doc.Extension)
}

func TestIngest_DocxWordMarkup(t *testing.T) {
	// Paragraph and run attributes, properties, hyperlinks, escaped text and
	// pretty-printed markup as written by Word.
	body := `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main" xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships">
  <w:body>
    <w:p w:rsidR="00A1B2C3" w:rsidRDefault="00A1B2C3">
      <w:pPr><w:bidi/></w:pPr>
      <w:r w:rsidRPr="00D4E5F6">
        <w:rPr><w:rtl/></w:rPr>
        <w:t>قانون &amp; لائحة</w:t>
      </w:r>
    </w:p>
    <w:p w:rsidR="00A1B2C3">
      <w:hyperlink r:id="rId4"><w:r><w:t>المادة &lt;5&gt;</w:t></w:r></w:hyperlink>
    </w:p>
    <w:sectPr/>
  </w:body>
</w:document>`

	doc, err := New().Ingest(context.Background(), "law.docx", bytes.NewReader(buildDocx(t, body)))
	require.NoError(t, err)
	assert.Equal(t, "قانون & لائحة\n\nالمادة <5>\n\n", doc.Text)
}

func TestIngest_DocxWithoutDocumentPart(t *testing.T) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("word/styles.xml")
	require.NoError(t, err)
	_, err = w.Write([]byte("<styles/>"))
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	_, err = New().Ingest(context.Background(), "x.docx", &buf)
	var ingestErr *Error
	require.True(t, errors.As(err, &ingestErr))
	assert.Equal(t, KindParse, ingestErr.Kind)
	assert.ErrorIs(t, err, errNoDocumentPart)
}

func TestIngest_XlsxFirstSheetOnly(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()

	require.NoError(t, f.SetCellValue("Sheet1", "A1", "العنوان"))
	require.NoError(t, f.SetCellValue("Sheet1", "B1", "النص"))
	require.NoError(t, f.SetCellValue("Sheet1", "C1", "ملاحظة"))
	require.NoError(t, f.SetCellValue("Sheet1", "A2", "قانون"))
	require.NoError(t, f.SetCellValue("Sheet1", "B2", "نص, بفاصلة"))

	_, err := f.NewSheet("Second")
	require.NoError(t, err)
	require.NoError(t, f.SetCellValue("Second", "A1", "ignored"))

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	doc, err := New().Ingest(context.Background(), "corpus.xlsx", bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, "العنوان,النص,ملاحظة\nقانون,\"نص, بفاصلة\",", doc.Text)
	assert.NotContains(t, doc.Text, "ignored")
}

func TestIngest_XlsExtensionWithOpenXMLContent(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	require.NoError(t, f.SetCellValue("Sheet1", "A1", "x"))
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	doc, err := New().Ingest(context.Background(), "legacy-name.xls", bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, "x", doc.Text)
}

func TestIngest_Truncation(t *testing.T) {
	tests := []struct {
		name          string
		input         string
		wantText      string
		wantTruncated bool
	}{
		{"below limit", "abcd", "abcd", false},
		{"exactly at limit", "abcde", "abcde", false},
		{"one over limit", "abcdef", "abcde", true},
		{"counts code points", "قانونالعمل", "قانون", true},
	}

	ing := New(WithMaxChars(5))
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := ing.Ingest(context.Background(), "f.txt", strings.NewReader(tt.input))
			require.NoError(t, err)
			assert.Equal(t, tt.wantText, doc.Text)
			assert.Equal(t, tt.wantTruncated, doc.Truncated)
			assert.Equal(t, utf8.RuneCountInString(tt.input), doc.OriginalLength)
			if tt.wantTruncated {
				assert.Equal(t, TruncationWarning(5), doc.Warning())
			}
		})
	}
}

func TestIngest_DefaultLimit(t *testing.T) {
	input := strings.Repeat("ق", MaxChars+1)

	doc, err := New().Ingest(context.Background(), "big.txt", strings.NewReader(input))
	require.NoError(t, err)
	assert.True(t, doc.Truncated)
	assert.Equal(t, MaxChars, utf8.RuneCountInString(doc.Text))
	assert.Equal(t, MaxChars+1, doc.OriginalLength)
}

func TestTruncationWarning(t *testing.T) {
	msg := TruncationWarning(1_000_000)
	assert.True(t, strings.HasPrefix(msg, "حجم الملف كبير جدًا. سيتم تحليل أول "))
	assert.True(t, strings.HasSuffix(msg, " حرف فقط."))
	assert.NotContains(t, msg, "1000000")
}

func TestIngest_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New().Ingest(ctx, "a.txt", strings.NewReader("data"))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRowsToCSV_PadsToWidestRow(t *testing.T) {
	out, err := rowsToCSV([][]string{{"a"}, {"b", "c", "d"}, nil})
	require.NoError(t, err)
	assert.Equal(t, "a,,\nb,c,d\n,,", out)
}

func buildDocx(t *testing.T, documentXML string) []byte {
	t.Helper()

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, content := range map[string]string{
		"[Content_Types].xml": `<?xml version="1.0"?><Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types"/>`,
		"word/document.xml":   documentXML,
	} {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())

	return buf.Bytes()
}
