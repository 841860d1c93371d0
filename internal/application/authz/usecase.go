package authz

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tu-usuario/comercio-pro/internal/domain"
	"github.com/tu-usuario/comercio-pro/internal/domain/entity"
	"github.com/tu-usuario/comercio-pro/internal/domain/repository"
	"github.com/tu-usuario/comercio-pro/pkg/logger"
)

// AuthorizationUseCase gestiona la compuerta de aprobación de gastos y retiros.
// Garantía: una solicitud aprobada produce exactamente una transacción de caja
// (creada en la misma escritura que el cambio de estado); una rechazada, ninguna.
type AuthorizationUseCase struct {
	txRunner    TxRunner
	authRepo    repository.AuthorizationRepository
	sessionRepo repository.CashSessionRepository
	log         *logger.Logger
}

// NewAuthorizationUseCase construye el caso de uso.
func NewAuthorizationUseCase(
	txRunner TxRunner,
	authRepo repository.AuthorizationRepository,
	sessionRepo repository.CashSessionRepository,
	log *logger.Logger,
) *AuthorizationUseCase {
	return &AuthorizationUseCase{
		txRunner:    txRunner,
		authRepo:    authRepo,
		sessionRepo: sessionRepo,
		log:         log,
	}
}

// ExpenseInput entrada para RequestExpense.
type ExpenseInput struct {
	Amount       decimal.Decimal
	Currency     string
	Reason       string
	RequiresAuth *bool // nil = true
}

// RequestExpense registra un gasto. Con requiresAuth (por defecto) solo crea
// la solicitud pendiente, sin efecto de caja. Un admin puede pasar
// requires_auth=false para el gasto directo, que exige sesión abierta y
// escribe la transacción de inmediato.
func (uc *AuthorizationUseCase) RequestExpense(ctx context.Context, companyID, userID, role string, in ExpenseInput) (*entity.AuthorizationRequest, *entity.CashTransaction, error) {
	if err := validateAmount(in.Amount, in.Currency, in.Reason); err != nil {
		return nil, nil, err
	}
	requiresAuth := in.RequiresAuth == nil || *in.RequiresAuth
	if !requiresAuth && role != entity.RoleAdmin {
		return nil, nil, domain.ErrForbidden
	}
	now := time.Now()

	if requiresAuth {
		request := &entity.AuthorizationRequest{
			ID:          uuid.New().String(),
			CompanyID:   companyID,
			Type:        entity.AuthRequestTypeExpense,
			Amount:      in.Amount,
			Currency:    in.Currency,
			Reason:      in.Reason,
			Status:      entity.AuthRequestStatusPending,
			RequestedBy: userID,
			CreatedAt:   now,
		}
		if err := uc.authRepo.Create(request); err != nil {
			return nil, nil, err
		}
		return request, nil, nil
	}

	session, err := uc.openSession(companyID)
	if err != nil {
		return nil, nil, err
	}
	cashTx := newCashTransaction(companyID, session.ID, entity.CashTxTypeExpense, "", in.Reason, in.Currency, in.Amount, userID, now)
	err = uc.txRunner.RunAuthz(ctx, func(
		_ repository.AuthorizationRepository,
		cashTxRepo repository.CashTransactionRepository,
	) error {
		return cashTxRepo.Create(cashTx)
	})
	if err != nil {
		return nil, nil, err
	}
	return nil, cashTx, nil
}

// RequestWithdrawal registra un retiro de caja. Siempre requiere autorización.
func (uc *AuthorizationUseCase) RequestWithdrawal(ctx context.Context, companyID, userID string, amount decimal.Decimal, currency, reason string) (*entity.AuthorizationRequest, error) {
	if err := validateAmount(amount, currency, reason); err != nil {
		return nil, err
	}
	request := &entity.AuthorizationRequest{
		ID:          uuid.New().String(),
		CompanyID:   companyID,
		Type:        entity.AuthRequestTypeWithdrawal,
		Amount:      amount,
		Currency:    currency,
		Reason:      reason,
		Status:      entity.AuthRequestStatusPending,
		RequestedBy: userID,
		CreatedAt:   time.Now(),
	}
	if err := uc.authRepo.Create(request); err != nil {
		return nil, err
	}
	return request, nil
}

// Approve marca la solicitud como aprobada Y crea la transacción de caja
// correspondiente en la misma transacción de BD. Requiere sesión abierta al
// momento de aprobar y rol admin.
func (uc *AuthorizationUseCase) Approve(ctx context.Context, companyID, approverID, approverRole, requestID string) (*entity.CashTransaction, error) {
	if approverRole != entity.RoleAdmin {
		return nil, domain.ErrForbidden
	}
	session, err := uc.openSession(companyID)
	if err != nil {
		return nil, err
	}
	var cashTx *entity.CashTransaction
	err = uc.txRunner.RunAuthz(ctx, func(
		authRepo repository.AuthorizationRepository,
		cashTxRepo repository.CashTransactionRepository,
	) error {
		request, err := authRepo.GetForUpdate(requestID)
		if err != nil {
			return err
		}
		if request == nil || request.CompanyID != companyID {
			return domain.ErrNotFound
		}
		if request.Status != entity.AuthRequestStatusPending {
			return domain.ErrConflict
		}
		now := time.Now()
		request.Status = entity.AuthRequestStatusApproved
		request.ReviewedBy = approverID
		request.ReviewedAt = &now
		if err := authRepo.Update(request); err != nil {
			return err
		}
		txType := entity.CashTxTypeExpense
		if request.Type == entity.AuthRequestTypeWithdrawal {
			txType = entity.CashTxTypeWithdrawal
		}
		cashTx = newCashTransaction(companyID, session.ID, txType, request.ID, request.Reason, request.Currency, request.Amount, approverID, now)
		return cashTxRepo.Create(cashTx)
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().
		Str("request_id", requestID).
		Str("approved_by", approverID).
		Msg("solicitud de autorización aprobada")
	return cashTx, nil
}

// Reject marca la solicitud como rechazada. Nunca produce transacción de caja.
func (uc *AuthorizationUseCase) Reject(ctx context.Context, companyID, approverID, approverRole, requestID string) error {
	if approverRole != entity.RoleAdmin {
		return domain.ErrForbidden
	}
	return uc.txRunner.RunAuthz(ctx, func(
		authRepo repository.AuthorizationRepository,
		_ repository.CashTransactionRepository,
	) error {
		request, err := authRepo.GetForUpdate(requestID)
		if err != nil {
			return err
		}
		if request == nil || request.CompanyID != companyID {
			return domain.ErrNotFound
		}
		if request.Status != entity.AuthRequestStatusPending {
			return domain.ErrConflict
		}
		now := time.Now()
		request.Status = entity.AuthRequestStatusRejected
		request.ReviewedBy = approverID
		request.ReviewedAt = &now
		return authRepo.Update(request)
	})
}

// ListPending devuelve las solicitudes pendientes de la empresa.
func (uc *AuthorizationUseCase) ListPending(ctx context.Context, companyID string) ([]*entity.AuthorizationRequest, error) {
	return uc.authRepo.ListPending(companyID)
}

func (uc *AuthorizationUseCase) openSession(companyID string) (*entity.CashSession, error) {
	session, err := uc.sessionRepo.GetActive(companyID)
	if err != nil {
		return nil, err
	}
	if session == nil || session.Status != entity.SessionStatusOpen {
		return nil, domain.ErrNoOpenSession
	}
	return session, nil
}

func newCashTransaction(companyID, sessionID, txType, referenceID, reason, currency string, amount decimal.Decimal, createdBy string, now time.Time) *entity.CashTransaction {
	return &entity.CashTransaction{
		ID:          uuid.New().String(),
		CompanyID:   companyID,
		SessionID:   sessionID,
		Type:        txType,
		ReferenceID: referenceID,
		Description: reason,
		Currency:    currency,
		TotalAmount: amount,
		CreatedBy:   createdBy,
		CreatedAt:   now,
	}
}

func validateAmount(amount decimal.Decimal, currency, reason string) error {
	if !amount.GreaterThan(decimal.Zero) || reason == "" {
		return domain.ErrInvalidInput
	}
	if currency != entity.CurrencyUSD && currency != entity.CurrencyVES {
		return domain.ErrInvalidInput
	}
	return nil
}
