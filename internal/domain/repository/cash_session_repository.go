package repository

import "github.com/tu-usuario/comercio-pro/internal/domain/entity"

// CashSessionRepository acceso a sesiones de caja.
type CashSessionRepository interface {
	Create(session *entity.CashSession) error
	GetByID(id string) (*entity.CashSession, error)
	// GetActive devuelve la sesión open o pending_verification de la empresa;
	// nil si no hay ninguna.
	GetActive(companyID string) (*entity.CashSession, error)
	// GetActiveForUpdate igual que GetActive pero bloqueando la fila, para
	// hacer segura la verificación "ya existe una sesión activa" dentro de la
	// transacción de apertura.
	GetActiveForUpdate(companyID string) (*entity.CashSession, error)
	Update(session *entity.CashSession) error
}

// CashTransactionRepository acceso al ledger de transacciones de caja (append-only).
type CashTransactionRepository interface {
	Create(tx *entity.CashTransaction) error
	ListBySession(sessionID string) ([]*entity.CashTransaction, error)
}
