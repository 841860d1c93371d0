package jobs

import (
	"context"
	"time"

	"github.com/hibiken/asynq"
	"github.com/tu-usuario/comercio-pro/internal/application/sales"
	"github.com/tu-usuario/comercio-pro/internal/domain/repository"
	"github.com/tu-usuario/comercio-pro/pkg/logger"
)

// Cola y tipos de tarea del worker.
const (
	QueueDefault = "default"

	// TaskTypeExpireQuotes barrido periódico de cotizaciones vencidas
	// (pending_payment con expires_at cumplido -> expired).
	TaskTypeExpireQuotes = "sales:expire_quotes"
	// TaskTypeStaleReport reporte de movimientos y solicitudes de autorización
	// pendientes desde hace demasiado tiempo.
	TaskTypeStaleReport = "authz:stale_report"
)

// NewExpireQuotesTask construye la tarea de barrido (sin payload).
func NewExpireQuotesTask() *asynq.Task {
	return asynq.NewTask(TaskTypeExpireQuotes, nil)
}

// NewStaleReportTask construye la tarea de reporte de pendientes (sin payload).
func NewStaleReportTask() *asynq.Task {
	return asynq.NewTask(TaskTypeStaleReport, nil)
}

// Handlers agrupa las dependencias de los handlers de tareas.
type Handlers struct {
	SaleUC     *sales.SaleUseCase
	MovRepo    repository.MovementRepository
	AuthRepo   repository.AuthorizationRepository
	StaleAfter time.Duration
	Log        *logger.Logger
}

// HandleExpireQuotes ejecuta el barrido de cotizaciones vencidas.
func (h *Handlers) HandleExpireQuotes(ctx context.Context, _ *asynq.Task) error {
	expired, err := h.SaleUC.ExpireQuotes(ctx, time.Now())
	if err != nil {
		h.Log.Error().Err(err).Msg("barrido de cotizaciones falló")
		return err
	}
	h.Log.Info().Int("expired", expired).Msg("barrido de cotizaciones completado")
	return nil
}

// HandleStaleReport loguea los movimientos y solicitudes pendientes más viejos
// que el corte configurado, para que un admin los resuelva. Solo reporta: no
// muta estado.
func (h *Handlers) HandleStaleReport(ctx context.Context, _ *asynq.Task) error {
	cutoff := time.Now().Add(-h.StaleAfter)

	movements, err := h.MovRepo.ListPendingOlderThan(cutoff)
	if err != nil {
		return err
	}
	for _, m := range movements {
		h.Log.Warn().
			Str("movement_id", m.ID).
			Str("company_id", m.CompanyID).
			Str("product_id", m.ProductID).
			Time("created_at", m.CreatedAt).
			Msg("movimiento pendiente estancado")
	}

	requests, err := h.AuthRepo.ListPendingOlderThan(cutoff)
	if err != nil {
		return err
	}
	for _, r := range requests {
		h.Log.Warn().
			Str("request_id", r.ID).
			Str("company_id", r.CompanyID).
			Str("type", r.Type).
			Time("created_at", r.CreatedAt).
			Msg("solicitud de autorización estancada")
	}

	h.Log.Info().
		Int("stale_movements", len(movements)).
		Int("stale_requests", len(requests)).
		Msg("reporte de pendientes estancados completado")
	return nil
}
