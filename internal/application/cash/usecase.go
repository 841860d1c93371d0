package cash

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/tu-usuario/comercio-pro/internal/domain"
	"github.com/tu-usuario/comercio-pro/internal/domain/entity"
	"github.com/tu-usuario/comercio-pro/internal/domain/repository"
	"github.com/tu-usuario/comercio-pro/pkg/logger"
)

// CashSessionUseCase maneja el ciclo de vida de la caja:
// open -> pending_verification -> closed.
// El cierre lo declara el cajero (conteo físico) pero solo un administrador
// verifica y finaliza, de modo que una caja con faltante no se cierra sola.
type CashSessionUseCase struct {
	txRunner    TxRunner
	sessionRepo repository.CashSessionRepository
	log         *logger.Logger
}

// NewCashSessionUseCase construye el caso de uso.
func NewCashSessionUseCase(txRunner TxRunner, sessionRepo repository.CashSessionRepository, log *logger.Logger) *CashSessionUseCase {
	return &CashSessionUseCase{txRunner: txRunner, sessionRepo: sessionRepo, log: log}
}

// OpenSession abre una sesión con los balances iniciales declarados.
// La verificación "ya hay una sesión activa" y el insert corren en la misma
// transacción sobre la fila bloqueada; el índice único parcial del esquema
// respalda el invariante si dos aperturas concurrentes llegan a cruzarse.
func (uc *CashSessionUseCase) OpenSession(ctx context.Context, companyID, cashierID string, opening entity.Balances) (*entity.CashSession, error) {
	if companyID == "" || cashierID == "" || len(opening) == 0 {
		return nil, domain.ErrInvalidInput
	}
	var session *entity.CashSession
	err := uc.txRunner.RunCash(ctx, func(
		sessionRepo repository.CashSessionRepository,
		_ repository.CashTransactionRepository,
	) error {
		active, err := sessionRepo.GetActiveForUpdate(companyID)
		if err != nil {
			return err
		}
		if active != nil {
			return domain.ErrSessionAlreadyOpen
		}
		now := time.Now()
		session = &entity.CashSession{
			ID:             uuid.New().String(),
			CompanyID:      companyID,
			CashierID:      cashierID,
			Status:         entity.SessionStatusOpen,
			OpeningBalance: opening.Clone(),
			OpenedAt:       now,
		}
		return sessionRepo.Create(session)
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().
		Str("session_id", session.ID).
		Str("cashier_id", cashierID).
		Msg("sesión de caja abierta")
	return session, nil
}

// CloseSession calcula el balance esperado replicando todas las transacciones
// de la sesión, registra el conteo declarado y la diferencia, y pasa la sesión
// a pending_verification. No la cierra: eso requiere VerifySession de un admin.
//
// Réplica: las transacciones 'sale' acreditan cada pago en el bucket
// (método, moneda); 'expense', 'withdrawal' y 'return' debitan el efectivo de
// la moneda de la transacción por el monto total.
func (uc *CashSessionUseCase) CloseSession(ctx context.Context, companyID, cashierID string, counted entity.Balances) (*entity.CashSession, error) {
	if companyID == "" || len(counted) == 0 {
		return nil, domain.ErrInvalidInput
	}
	var session *entity.CashSession
	err := uc.txRunner.RunCash(ctx, func(
		sessionRepo repository.CashSessionRepository,
		cashTxRepo repository.CashTransactionRepository,
	) error {
		active, err := sessionRepo.GetActiveForUpdate(companyID)
		if err != nil {
			return err
		}
		if active == nil {
			return domain.ErrNoOpenSession
		}
		if active.Status != entity.SessionStatusOpen {
			return domain.ErrConflict
		}

		txs, err := cashTxRepo.ListBySession(active.ID)
		if err != nil {
			return err
		}
		expected := ReplayExpected(active.OpeningBalance, txs)

		now := time.Now()
		active.ClosingBalance = counted.Clone()
		active.ExpectedBalance = expected
		active.Difference = counted.Diff(expected)
		active.Status = entity.SessionStatusPendingVerification
		active.ClosedAt = &now
		session = active
		return sessionRepo.Update(active)
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().
		Str("session_id", session.ID).
		Str("cashier_id", cashierID).
		Msg("sesión de caja cerrada, pendiente de verificación")
	return session, nil
}

// VerifySession finaliza una sesión en pending_verification (solo admin).
func (uc *CashSessionUseCase) VerifySession(ctx context.Context, companyID, adminID, adminRole, notes string) (*entity.CashSession, error) {
	if adminRole != entity.RoleAdmin {
		return nil, domain.ErrForbidden
	}
	var session *entity.CashSession
	err := uc.txRunner.RunCash(ctx, func(
		sessionRepo repository.CashSessionRepository,
		_ repository.CashTransactionRepository,
	) error {
		active, err := sessionRepo.GetActiveForUpdate(companyID)
		if err != nil {
			return err
		}
		if active == nil {
			return domain.ErrNotFound
		}
		if active.Status != entity.SessionStatusPendingVerification {
			return domain.ErrConflict
		}
		now := time.Now()
		active.Status = entity.SessionStatusClosed
		active.Notes = notes
		active.VerifiedBy = adminID
		active.VerifiedAt = &now
		session = active
		return sessionRepo.Update(active)
	})
	if err != nil {
		return nil, err
	}
	return session, nil
}

// ActiveSession devuelve la sesión activa de la empresa (nil si no hay).
func (uc *CashSessionUseCase) ActiveSession(ctx context.Context, companyID string) (*entity.CashSession, error) {
	return uc.sessionRepo.GetActive(companyID)
}

// ReplayExpected calcula el balance esperado: apertura más todas las
// transacciones de la sesión. Función pura, expuesta para el cierre y sus tests.
func ReplayExpected(opening entity.Balances, txs []*entity.CashTransaction) entity.Balances {
	expected := opening.Clone()
	for _, tx := range txs {
		switch tx.Type {
		case entity.CashTxTypeSale:
			for _, p := range tx.Payments {
				expected.Add(p.Currency, p.Method, p.Amount)
			}
		case entity.CashTxTypeExpense, entity.CashTxTypeWithdrawal, entity.CashTxTypeReturn:
			expected.Sub(tx.Currency, entity.MethodCash, tx.TotalAmount)
		}
	}
	return expected
}
