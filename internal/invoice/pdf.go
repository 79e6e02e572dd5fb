package invoice

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/shopspring/decimal"

	"github.com/techaway/backend/internal/domain"
)

// Line is one priced row on the invoice.
type Line struct {
	Title string
	Cost  decimal.Decimal
}

// Generator renders order invoices. Production uses the PDF generator; tests
// substitute fakes.
type Generator interface {
	Generate(order *domain.Order, customer *domain.User, lines []Line) (string, error)
}

type pdfGenerator struct {
	outputDir string
}

// NewPDFGenerator writes invoices under outputDir (os.TempDir when empty).
func NewPDFGenerator(outputDir string) Generator {
	if outputDir == "" {
		outputDir = os.TempDir()
	}
	return &pdfGenerator{outputDir: outputDir}
}

// Generate renders a single-page invoice and returns the file path.
func (g *pdfGenerator) Generate(order *domain.Order, customer *domain.User, lines []Line) (string, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 12, "TechAway Invoice")
	pdf.Ln(14)

	pdf.SetFont("Helvetica", "", 11)
	pdf.Cell(0, 6, fmt.Sprintf("Order: %s", order.ID))
	pdf.Ln(6)
	pdf.Cell(0, 6, fmt.Sprintf("Customer: %s <%s>", customer.Name, customer.Email))
	pdf.Ln(6)
	pdf.Cell(0, 6, fmt.Sprintf("Date: %s", time.Now().Format("2 Jan 2006")))
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "B", 11)
	pdf.Cell(140, 8, "Service")
	pdf.Cell(40, 8, "Cost")
	pdf.Ln(8)

	pdf.SetFont("Helvetica", "", 11)
	for _, line := range lines {
		pdf.Cell(140, 7, line.Title)
		pdf.Cell(40, 7, line.Cost.StringFixed(2))
		pdf.Ln(7)
	}

	pdf.Ln(4)
	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(140, 8, "Grand total")
	pdf.Cell(40, 8, order.GrandTotal.StringFixed(2))

	path := filepath.Join(g.outputDir, fmt.Sprintf("invoice-%s.pdf", order.ID))
	if err := pdf.OutputFileAndClose(path); err != nil {
		return "", err
	}
	return path, nil
}
