package report

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/go-pdf/fpdf"
	"github.com/xuri/excelize/v2"

	"aulas/internal/core"
)

type Format string

const (
	FormatPDF  Format = "pdf"
	FormatXLSX Format = "xlsx"
)

// ParseFormat defaults to PDF when s is empty.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case "", FormatPDF:
		return FormatPDF, nil
	case FormatXLSX:
		return FormatXLSX, nil
	default:
		return "", fmt.Errorf("%w: unsupported report format %q", core.ErrValidation, s)
	}
}

// Renderer turns a report into document bytes, entirely in memory.
type Renderer interface {
	Render(r Report) ([]byte, error)
	ContentType() string
	Format() Format
}

// PDFRenderer lays the report out on A4 pages, one line per cell.
type PDFRenderer struct {
	// Compress page streams. Off only makes the output easier to inspect.
	Compress bool
}

func NewPDFRenderer() *PDFRenderer { return &PDFRenderer{Compress: true} }

func (*PDFRenderer) ContentType() string { return "application/pdf" }

func (*PDFRenderer) Format() Format { return FormatPDF }

func (p *PDFRenderer) Render(r Report) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetCompression(p.Compress)
	pdf.SetTitle(r.Title(), true)
	pdf.SetCreator("aulas", false)
	// Core fonts are cp1252; accented Portuguese text needs translating.
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.AddPage()
	header := r.Header()

	pdf.SetFont("Arial", "B", 14)
	pdf.CellFormat(0, 10, tr(header[0]), "", 1, "C", false, 0, "")
	pdf.Ln(2)

	pdf.SetFont("Arial", "", 11)
	for _, line := range header[1 : len(header)-1] {
		pdf.CellFormat(0, 8, tr(line), "", 1, "L", false, 0, "")
	}

	pdf.Ln(2)
	pdf.SetFont("Arial", "B", 11)
	pdf.CellFormat(0, 8, tr(header[len(header)-1]), "", 1, "L", false, 0, "")

	pdf.SetFont("Arial", "", 10)
	for _, s := range r.Sessions {
		pdf.CellFormat(0, 7, tr(SessionLine(s)), "", 1, "L", false, 0, "")
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

// XLSXSheet is the name of the only worksheet in the spreadsheet export.
const XLSXSheet = "Relatorio"

// XLSXRenderer writes the summary block and a Data/Hora table to one sheet.
type XLSXRenderer struct{}

func NewXLSXRenderer() *XLSXRenderer { return &XLSXRenderer{} }

func (*XLSXRenderer) ContentType() string {
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}

func (*XLSXRenderer) Format() Format { return FormatXLSX }

func (*XLSXRenderer) Render(r Report) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", XLSXSheet); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("create style: %w", err)
	}
	moneyFmt := `"R$"#,##0.00`
	money, err := f.NewStyle(&excelize.Style{CustomNumFmt: &moneyFmt})
	if err != nil {
		return nil, fmt.Errorf("create style: %w", err)
	}

	cells := []struct {
		cell  string
		value any
	}{
		{"A1", r.Title()},
		{"A2", "Mês:"}, {"B2", r.Month.String()},
		{"A3", "Total de Aulas no Mês:"}, {"B3", r.SessionCount()},
		{"A4", "Valor Total das Aulas:"}, {"B4", r.Total().Reais()},
		{"A5", "Valor do Pacote Mensal:"}, {"B5", r.Student.PackagePrice.Reais()},
		{"A7", "Detalhes das Aulas:"},
		{"A8", "Data"}, {"B8", "Hora"},
	}
	for _, c := range cells {
		if err := f.SetCellValue(XLSXSheet, c.cell, c.value); err != nil {
			return nil, fmt.Errorf("set %s: %w", c.cell, err)
		}
	}

	for i, s := range r.Sessions {
		row := 9 + i
		if err := f.SetCellValue(XLSXSheet, fmt.Sprintf("A%d", row), s.Date.String()); err != nil {
			return nil, fmt.Errorf("set session row %d: %w", row, err)
		}
		if err := f.SetCellValue(XLSXSheet, fmt.Sprintf("B%d", row), s.Time.String()); err != nil {
			return nil, fmt.Errorf("set session row %d: %w", row, err)
		}
	}

	for _, rng := range [][2]string{{"A1", "A1"}, {"A7", "A7"}, {"A8", "B8"}} {
		if err := f.SetCellStyle(XLSXSheet, rng[0], rng[1], bold); err != nil {
			return nil, fmt.Errorf("style %s: %w", rng[0], err)
		}
	}
	if err := f.SetCellStyle(XLSXSheet, "B4", "B5", money); err != nil {
		return nil, fmt.Errorf("style money: %w", err)
	}
	if err := f.SetColWidth(XLSXSheet, "A", "A", 28); err != nil {
		return nil, fmt.Errorf("set column width: %w", err)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write xlsx: %w", err)
	}
	return buf.Bytes(), nil
}
