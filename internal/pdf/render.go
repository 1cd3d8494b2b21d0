// Package pdf renders invoice documents with gofpdf.
package pdf

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/jung-kurt/gofpdf"
	"github.com/rpggio/billable/internal/domain/invoice"
	"github.com/shopspring/decimal"
)

const (
	dateLayout = "January 2, 2006"

	colDescription = 100.0
	colQuantity    = 25.0
	colRate        = 30.0
	colAmount      = 35.0
	labelWidth     = colDescription + colQuantity + colRate
)

// Renderer turns invoice documents into PDF bytes.
type Renderer struct {
	compress bool
}

// NewRenderer creates a Renderer.
func NewRenderer() *Renderer {
	return &Renderer{compress: true}
}

// Render lays out the document on A4 pages.
func (r *Renderer) Render(doc *invoice.Document) ([]byte, error) {
	if doc == nil || doc.Invoice == nil {
		return nil, errors.New("pdf: nothing to render")
	}
	inv := doc.Invoice

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetCompression(r.compress)
	pdf.SetTitle("Invoice "+inv.InvoiceNumber, true)
	pdf.SetCreationDate(inv.CreatedAt)
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	// Header
	pdf.SetFont("Arial", "B", 20)
	pdf.Cell(100, 10, "INVOICE")
	pdf.SetFont("Arial", "", 11)
	pdf.CellFormat(90, 10, tr(inv.InvoiceNumber), "", 1, "R", false, 0, "")

	if p := doc.Profile; p != nil {
		pdf.SetFont("Arial", "B", 12)
		pdf.Cell(100, 6, tr(p.DisplayName()))
		pdf.Ln(6)
		pdf.SetFont("Arial", "", 10)
		for _, line := range lines(p.FullAddress(), p.Email, p.Phone) {
			pdf.Cell(100, 5, tr(line))
			pdf.Ln(5)
		}
	}
	pdf.Ln(6)

	// Bill to on the left, dates on the right.
	top := pdf.GetY()
	pdf.SetFont("Arial", "B", 11)
	pdf.Cell(95, 6, "Bill To:")
	pdf.Ln(6)
	pdf.SetFont("Arial", "", 10)
	if c := doc.Client; c != nil {
		for _, line := range lines(c.Name, c.ContactName(), c.FullAddress(), c.Email) {
			pdf.Cell(95, 5, tr(line))
			pdf.Ln(5)
		}
	}
	leftEnd := pdf.GetY()

	pdf.SetXY(120, top)
	dates := [][2]string{
		{"Invoice Date:", inv.InvoiceDate.Format(dateLayout)},
		{"Due Date:", inv.DueDate.Format(dateLayout)},
		{"Status:", strings.ReplaceAll(string(inv.Status), "_", " ")},
	}
	if inv.PaidDate != nil {
		dates = append(dates, [2]string{"Paid:", inv.PaidDate.Format(dateLayout)})
	}
	for _, d := range dates {
		pdf.SetX(120)
		pdf.SetFont("Arial", "B", 10)
		pdf.Cell(30, 5, d[0])
		pdf.SetFont("Arial", "", 10)
		pdf.CellFormat(40, 5, d[1], "", 1, "R", false, 0, "")
	}
	pdf.SetXY(10, max(leftEnd, pdf.GetY()))
	pdf.Ln(8)

	// Line items, grouped by project.
	pdf.SetFont("Arial", "B", 10)
	pdf.SetFillColor(235, 235, 235)
	pdf.CellFormat(colDescription, 8, "Description", "1", 0, "L", true, 0, "")
	pdf.CellFormat(colQuantity, 8, "Hours/Qty", "1", 0, "R", true, 0, "")
	pdf.CellFormat(colRate, 8, "Rate", "1", 0, "R", true, 0, "")
	pdf.CellFormat(colAmount, 8, "Amount", "1", 1, "R", true, 0, "")

	for _, g := range doc.Groups {
		if len(doc.Groups) > 1 || g.ProjectName != "" {
			name := g.ProjectName
			if name == "" {
				name = "Other"
			}
			pdf.SetFont("Arial", "B", 10)
			pdf.CellFormat(labelWidth+colAmount, 7, tr(name), "LR", 1, "L", false, 0, "")
		}
		pdf.SetFont("Arial", "", 9)
		for _, item := range g.Items {
			pdf.CellFormat(colDescription, 7, tr(truncate(pdf, item.Description, colDescription-2)), "LR", 0, "L", false, 0, "")
			pdf.CellFormat(colQuantity, 7, item.Quantity.StringFixed(2), "LR", 0, "R", false, 0, "")
			pdf.CellFormat(colRate, 7, currency(item.Rate), "LR", 0, "R", false, 0, "")
			pdf.CellFormat(colAmount, 7, currency(item.Amount), "LR", 1, "R", false, 0, "")
		}
		if len(doc.Groups) > 1 {
			pdf.SetFont("Arial", "I", 9)
			pdf.CellFormat(labelWidth, 6, "Subtotal", "LR", 0, "R", false, 0, "")
			pdf.CellFormat(colAmount, 6, currency(g.Subtotal), "LR", 1, "R", false, 0, "")
		}
	}
	pdf.CellFormat(labelWidth+colAmount, 0, "", "T", 1, "", false, 0, "")
	pdf.Ln(4)

	// Totals
	totals := [][2]string{{"Subtotal:", currency(inv.Subtotal)}}
	if inv.DiscountAmount.IsPositive() {
		totals = append(totals, [2]string{"Discount:", "-" + currency(inv.DiscountAmount)})
	}
	totals = append(totals, [2]string{"Total:", currency(inv.Total)})
	if doc.AmountPaid.IsPositive() {
		totals = append(totals,
			[2]string{"Paid:", currency(doc.AmountPaid)},
			[2]string{"Amount Due:", currency(doc.AmountDue)},
		)
	}
	for _, row := range totals {
		style := ""
		if row[0] == "Total:" || row[0] == "Amount Due:" {
			style = "B"
		}
		pdf.SetFont("Arial", style, 10)
		pdf.CellFormat(labelWidth, 7, row[0], "", 0, "R", false, 0, "")
		pdf.CellFormat(colAmount, 7, row[1], "", 1, "R", false, 0, "")
	}

	if s := strings.TrimSpace(doc.PaymentInstructions); s != "" {
		pdf.Ln(8)
		pdf.SetFont("Arial", "B", 11)
		pdf.Cell(40, 6, "Payment Instructions")
		pdf.Ln(7)
		pdf.SetFont("Arial", "", 10)
		pdf.MultiCell(0, 5, tr(s), "", "L", false)
	}
	if s := strings.TrimSpace(doc.Notes); s != "" {
		pdf.Ln(6)
		pdf.SetFont("Arial", "B", 11)
		pdf.Cell(40, 6, "Notes")
		pdf.Ln(7)
		pdf.SetFont("Arial", "", 10)
		pdf.MultiCell(0, 5, tr(s), "", "L", false)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render invoice %s: %w", inv.InvoiceNumber, err)
	}
	return buf.Bytes(), nil
}

func currency(d decimal.Decimal) string {
	return "$" + d.StringFixed(2)
}

// lines splits multi-line values and drops blanks.
func lines(values ...string) []string {
	var out []string
	for _, v := range values {
		for _, l := range strings.Split(v, "\n") {
			if strings.TrimSpace(l) != "" {
				out = append(out, l)
			}
		}
	}
	return out
}

func truncate(pdf *gofpdf.Fpdf, s string, width float64) string {
	if pdf.GetStringWidth(s) <= width {
		return s
	}
	runes := []rune(s)
	for len(runes) > 0 && pdf.GetStringWidth(string(runes)+"...") > width {
		runes = runes[:len(runes)-1]
	}
	return string(runes) + "..."
}
