package cash

import (
	"context"

	"github.com/tu-usuario/comercio-pro/internal/domain/repository"
)

// TxRunner transacción para la caja: la verificación de sesión activa y la
// creación/actualización de la sesión ocurren bajo el mismo bloqueo.
type TxRunner interface {
	RunCash(ctx context.Context, fn func(
		sessionRepo repository.CashSessionRepository,
		cashTxRepo repository.CashTransactionRepository,
	) error) error
}
