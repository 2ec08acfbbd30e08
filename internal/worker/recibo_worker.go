package worker

// recibo_worker.go
// Processes receipt jobs from QueueRecibo: generates the PDF for a completed
// venta and, when the customer left an email, chains an email job.

import (
	"context"
	"encoding/json"
	"fmt"

	"kashflow/internal/infra"
	"kashflow/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// ReciboJobPayload is the job envelope sent to QueueRecibo.
type ReciboJobPayload struct {
	VentaID      string `json:"venta_id"`
	ClienteEmail string `json:"cliente_email,omitempty"`
}

type ReciboWorker struct {
	ventaRepo   repository.VentaRepository
	dispatcher  *Dispatcher
	storagePath string
}

func NewReciboWorker(ventaRepo repository.VentaRepository, dispatcher *Dispatcher, storagePath string) *ReciboWorker {
	return &ReciboWorker{ventaRepo: ventaRepo, dispatcher: dispatcher, storagePath: storagePath}
}

// Process generates the PDF receipt and optionally enqueues the email job.
func (w *ReciboWorker) Process(ctx context.Context, raw json.RawMessage) error {
	var payload ReciboJobPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return fmt.Errorf("recibo_worker: invalid payload: %w", err)
	}
	id, err := uuid.Parse(payload.VentaID)
	if err != nil {
		return fmt.Errorf("recibo_worker: invalid venta_id %q: %w", payload.VentaID, err)
	}

	venta, err := w.ventaRepo.FindByID(ctx, id)
	if err != nil {
		return fmt.Errorf("recibo_worker: load venta: %w", err)
	}

	pdfPath, err := infra.GenerarReciboPDF(venta, w.storagePath)
	if err != nil {
		return fmt.Errorf("recibo_worker: generate pdf: %w", err)
	}
	log.Info().Str("numero_venta", venta.NumeroVenta).Str("path", pdfPath).Msg("recibo_worker: recibo generado")

	if payload.ClienteEmail == "" {
		return nil
	}
	return w.dispatcher.EnqueueEmail(ctx, EmailJobPayload{
		ToEmail: payload.ClienteEmail,
		Subject: fmt.Sprintf("Recibo de compra %s", venta.NumeroVenta),
		Body:    fmt.Sprintf("Adjuntamos el recibo de su compra %s por un total de $%s.", venta.NumeroVenta, venta.Total.StringFixed(2)),
		PDFPath: pdfPath,
	})
}
