package infra

// pdf.go — PDF receipt generation using go-pdf/fpdf.
// Generates thermal-receipt-style tickets with:
//   - Business name header
//   - Sale number and timestamp
//   - Item table (product name, quantity, subtotal)
//   - Discount line (if applicable)
//   - Bold total and payment method
//
// The output file is saved to storagePath/recibo_{numero}.pdf.

import (
	"fmt"
	"os"
	"path/filepath"

	"kashflow/internal/model"

	"github.com/go-pdf/fpdf"
)

// GenerarReciboPDF generates a PDF receipt for a completed Venta.
// storagePath is the directory where the PDF will be written (created if needed).
// Returns the absolute path to the generated file.
func GenerarReciboPDF(venta *model.Venta, storagePath string) (string, error) {
	if err := os.MkdirAll(storagePath, 0755); err != nil {
		return "", fmt.Errorf("pdf: create storage dir: %w", err)
	}

	fileName := fmt.Sprintf("recibo_%s.pdf", venta.NumeroVenta)
	filePath := filepath.Join(storagePath, fileName)

	// 74mm × 105mm — close to thermal receipt paper
	pdf := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "mm",
		Size:           fpdf.SizeType{Wd: 74, Ht: 105},
	})
	pdf.SetMargins(4, 4, 4)
	pdf.AddPage()

	pageW, _ := pdf.GetPageSize()
	contentW := pageW - 8 // total margins = 8mm

	// ── Header ───────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 13)
	pdf.CellFormat(contentW, 7, "KashFlow", "", 1, "C", false, 0, "")

	pdf.SetFont("Helvetica", "", 8)
	pdf.CellFormat(contentW, 5, "Recibo de Compra", "", 1, "C", false, 0, "")
	pdf.Ln(2)

	// ── Sale info ────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 8)
	pdf.CellFormat(contentW, 5, venta.NumeroVenta, "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 7)
	pdf.CellFormat(contentW, 4, venta.FechaVenta.Format("02/01/2006  15:04"), "", 1, "L", false, 0, "")
	if venta.ClienteNombre != "" {
		pdf.CellFormat(contentW, 4, "Cliente: "+venta.ClienteNombre, "", 1, "L", false, 0, "")
	}
	pdf.Ln(2)

	// ── Items ────────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "", 7)
	for _, item := range venta.Items {
		nombre := item.ProductoNombre
		if len(nombre) > 26 {
			nombre = nombre[:26]
		}
		pdf.CellFormat(contentW*0.55, 4, nombre, "", 0, "L", false, 0, "")
		pdf.CellFormat(contentW*0.15, 4, fmt.Sprintf("x%d", item.Cantidad), "", 0, "R", false, 0, "")
		pdf.CellFormat(contentW*0.30, 4, "$"+item.Subtotal.StringFixed(2), "", 1, "R", false, 0, "")
	}
	pdf.Ln(1)

	// ── Totals ───────────────────────────────────────────────────────────────
	if venta.Descuento.IsPositive() {
		pdf.CellFormat(contentW*0.6, 4, "Descuento", "T", 0, "L", false, 0, "")
		pdf.CellFormat(contentW*0.4, 4, "-$"+venta.Descuento.StringFixed(2), "T", 1, "R", false, 0, "")
	}
	pdf.SetFont("Helvetica", "B", 9)
	pdf.CellFormat(contentW*0.6, 6, "TOTAL", "T", 0, "L", false, 0, "")
	pdf.CellFormat(contentW*0.4, 6, "$"+venta.Total.StringFixed(2), "T", 1, "R", false, 0, "")

	pdf.SetFont("Helvetica", "", 7)
	pdf.CellFormat(contentW, 4, "Pago: "+string(venta.MetodoPago), "", 1, "L", false, 0, "")
	if venta.MetodoPago == model.MetodoFiado {
		pdf.CellFormat(contentW, 4, "Importe cargado a cuenta corriente", "", 1, "L", false, 0, "")
	}

	if err := pdf.OutputFileAndClose(filePath); err != nil {
		return "", fmt.Errorf("pdf: write %s: %w", filePath, err)
	}
	return filePath, nil
}
