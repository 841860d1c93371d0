package authz

import (
	"context"

	"github.com/tu-usuario/comercio-pro/internal/domain/repository"
)

// TxRunner transacción para autorizaciones: aprobar una solicitud y crear su
// transacción de caja es una sola escritura atómica.
type TxRunner interface {
	RunAuthz(ctx context.Context, fn func(
		authRepo repository.AuthorizationRepository,
		cashTxRepo repository.CashTransactionRepository,
	) error) error
}
