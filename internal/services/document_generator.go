package services

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"strings"

	"github.com/go-pdf/fpdf"
)

type DocumentFormat string

const (
	FormatPDF  DocumentFormat = "pdf"
	FormatDOCX DocumentFormat = "docx"
)

func ParseDocumentFormat(s string) (DocumentFormat, error) {
	switch DocumentFormat(strings.ToLower(strings.TrimSpace(s))) {
	case "", FormatPDF:
		return FormatPDF, nil
	case FormatDOCX:
		return FormatDOCX, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, s)
}

// DocumentGenerator renders plain text as a letter-sized document.
type DocumentGenerator interface {
	Generate(text string, format DocumentFormat) ([]byte, error)
}

type documentGenerator struct{}

func NewDocumentGenerator() DocumentGenerator {
	return &documentGenerator{}
}

// Generate implements DocumentGenerator.
func (g *documentGenerator) Generate(text string, format DocumentFormat) ([]byte, error) {
	text = ASCIIText(text)
	switch format {
	case FormatPDF:
		return generatePDF(text)
	case FormatDOCX:
		return generateDOCX(text)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
}

var typographicReplacer = strings.NewReplacer(
	"\u2018", "'", "\u2019", "'",
	"\u201c", `"`, "\u201d", `"`,
	"\u2013", "-", "\u2014", "-",
	"\u2022", "*",
	"\u2026", "...",
)

// ASCIIText replaces typographic punctuation and drops remaining non-ASCII
// runes, which the core PDF fonts cannot encode.
func ASCIIText(text string) string {
	text = typographicReplacer.Replace(text)
	return strings.Map(func(r rune) rune {
		if r > 127 {
			return -1
		}
		return r
	}, text)
}

const inchMM = 25.4

func generatePDF(text string) ([]byte, error) {
	doc := fpdf.New("P", "mm", "Letter", "")
	doc.SetMargins(inchMM, inchMM, inchMM)
	doc.SetAutoPageBreak(true, inchMM)
	doc.AddPage()
	doc.SetFont("Helvetica", "", 11)

	for _, paragraph := range strings.Split(text, "\n") {
		paragraph = strings.TrimSpace(paragraph)
		if paragraph == "" {
			doc.Ln(4)
			continue
		}
		doc.MultiCell(0, 5.5, paragraph, "", "J", false)
		doc.Ln(2)
	}

	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

const (
	docxContentTypes = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">
<Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>
<Default Extension="xml" ContentType="application/xml"/>
<Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/>
</Types>`
	docxRels = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="word/document.xml"/>
</Relationships>`
	docxBodyOpen = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>`
	// 1440 twips is one inch; sz is in half points.
	docxBodyClose = `<w:sectPr><w:pgSz w:w="12240" w:h="15840"/><w:pgMar w:top="1440" w:right="1440" w:bottom="1440" w:left="1440" w:header="720" w:footer="720" w:gutter="0"/></w:sectPr></w:body></w:document>`
	docxRunProps  = `<w:rPr><w:rFonts w:ascii="Arial" w:hAnsi="Arial"/><w:sz w:val="22"/></w:rPr>`
)

func generateDOCX(text string) ([]byte, error) {
	var body bytes.Buffer
	body.WriteString(docxBodyOpen)
	for _, paragraph := range strings.Split(text, "\n") {
		paragraph = strings.TrimSpace(paragraph)
		if paragraph == "" {
			body.WriteString("<w:p/>")
			continue
		}
		body.WriteString(`<w:p><w:r>` + docxRunProps + `<w:t xml:space="preserve">`)
		if err := xml.EscapeText(&body, []byte(paragraph)); err != nil {
			return nil, fmt.Errorf("failed to escape paragraph: %w", err)
		}
		body.WriteString(`</w:t></w:r></w:p>`)
	}
	body.WriteString(docxBodyClose)

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	parts := []struct {
		name string
		data []byte
	}{
		{"[Content_Types].xml", []byte(docxContentTypes)},
		{"_rels/.rels", []byte(docxRels)},
		{"word/document.xml", body.Bytes()},
	}
	for _, part := range parts {
		w, err := zw.Create(part.name)
		if err != nil {
			return nil, fmt.Errorf("failed to add %s: %w", part.name, err)
		}
		if _, err := w.Write(part.data); err != nil {
			return nil, fmt.Errorf("failed to write %s: %w", part.name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize docx: %w", err)
	}
	return buf.Bytes(), nil
}
