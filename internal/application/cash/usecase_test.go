package cash_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tu-usuario/comercio-pro/internal/application/cash"
	"github.com/tu-usuario/comercio-pro/internal/domain"
	"github.com/tu-usuario/comercio-pro/internal/domain/entity"
	"github.com/tu-usuario/comercio-pro/internal/domain/repository"
	"github.com/tu-usuario/comercio-pro/pkg/logger"
)

// ──────────────────────────────────────────────────────────────────────────────
// Tests del ciclo de vida de caja: una sola sesión activa por empresa, cierre
// en dos pasos (close -> verify) y réplica del balance esperado a partir de las
// transacciones de la sesión.
// ──────────────────────────────────────────────────────────────────────────────

const (
	testCompany = "11111111-1111-1111-1111-111111111111"
	testCashier = "33333333-3333-3333-3333-333333333333"
	testAdmin   = "22222222-2222-2222-2222-222222222222"
)

// ── fakes en memoria ──────────────────────────────────────────────────────────

type memSessionRepo struct {
	sessions []*entity.CashSession
}

func (m *memSessionRepo) Create(session *entity.CashSession) error {
	m.sessions = append(m.sessions, session)
	return nil
}

func (m *memSessionRepo) GetByID(id string) (*entity.CashSession, error) {
	for _, s := range m.sessions {
		if s.ID == id {
			return s, nil
		}
	}
	return nil, nil
}

func (m *memSessionRepo) GetActive(companyID string) (*entity.CashSession, error) {
	for _, s := range m.sessions {
		if s.CompanyID == companyID && s.IsActive() {
			return s, nil
		}
	}
	return nil, nil
}

func (m *memSessionRepo) GetActiveForUpdate(companyID string) (*entity.CashSession, error) {
	return m.GetActive(companyID)
}

func (m *memSessionRepo) Update(session *entity.CashSession) error { return nil }

type memCashTxRepo struct {
	txs []*entity.CashTransaction
}

func (m *memCashTxRepo) Create(tx *entity.CashTransaction) error {
	m.txs = append(m.txs, tx)
	return nil
}

func (m *memCashTxRepo) ListBySession(sessionID string) ([]*entity.CashTransaction, error) {
	var out []*entity.CashTransaction
	for _, tx := range m.txs {
		if tx.SessionID == sessionID {
			out = append(out, tx)
		}
	}
	return out, nil
}

type fakeTxRunner struct {
	sessionRepo *memSessionRepo
	cashTxRepo  *memCashTxRepo
}

func (f *fakeTxRunner) RunCash(ctx context.Context, fn func(
	sessionRepo repository.CashSessionRepository,
	cashTxRepo repository.CashTransactionRepository,
) error) error {
	return fn(f.sessionRepo, f.cashTxRepo)
}

func newFixture() (*cash.CashSessionUseCase, *memSessionRepo, *memCashTxRepo) {
	sessionRepo := &memSessionRepo{}
	cashTxRepo := &memCashTxRepo{}
	runner := &fakeTxRunner{sessionRepo: sessionRepo, cashTxRepo: cashTxRepo}
	log := logger.New(logger.Config{Env: "test", Level: "error"})
	return cash.NewCashSessionUseCase(runner, sessionRepo, log), sessionRepo, cashTxRepo
}

func usdCash(amount int64) entity.Balances {
	return entity.Balances{
		entity.CurrencyUSD: {entity.MethodCash: decimal.NewFromInt(amount)},
	}
}

// ── apertura ──────────────────────────────────────────────────────────────────

func TestOpenSession_Abre(t *testing.T) {
	uc, _, _ := newFixture()

	session, err := uc.OpenSession(context.Background(), testCompany, testCashier, usdCash(100))

	require.NoError(t, err)
	assert.Equal(t, entity.SessionStatusOpen, session.Status)
	assert.Equal(t, testCashier, session.CashierID)
	assert.True(t, session.OpeningBalance.Get(entity.CurrencyUSD, entity.MethodCash).Equal(decimal.NewFromInt(100)))
}

// Invariante: a lo sumo una sesión activa por empresa.
func TestOpenSession_SegundaAperturaFalla(t *testing.T) {
	uc, _, _ := newFixture()

	_, err := uc.OpenSession(context.Background(), testCompany, testCashier, usdCash(100))
	require.NoError(t, err)

	_, err = uc.OpenSession(context.Background(), testCompany, testAdmin, usdCash(50))
	assert.ErrorIs(t, err, domain.ErrSessionAlreadyOpen)
}

// Una sesión en pending_verification sigue bloqueando la apertura.
func TestOpenSession_PendienteDeVerificacionBloquea(t *testing.T) {
	uc, _, _ := newFixture()

	_, err := uc.OpenSession(context.Background(), testCompany, testCashier, usdCash(100))
	require.NoError(t, err)
	_, err = uc.CloseSession(context.Background(), testCompany, testCashier, usdCash(100))
	require.NoError(t, err)

	_, err = uc.OpenSession(context.Background(), testCompany, testCashier, usdCash(100))
	assert.ErrorIs(t, err, domain.ErrSessionAlreadyOpen)
}

func TestOpenSession_SinBalancesEsInvalido(t *testing.T) {
	uc, _, _ := newFixture()
	_, err := uc.OpenSession(context.Background(), testCompany, testCashier, entity.Balances{})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

// ── cierre en dos pasos ───────────────────────────────────────────────────────

func TestCloseSession_SinSesionAbierta(t *testing.T) {
	uc, _, _ := newFixture()
	_, err := uc.CloseSession(context.Background(), testCompany, testCashier, usdCash(100))
	assert.ErrorIs(t, err, domain.ErrNoOpenSession)
}

// El cierre replica las transacciones: apertura $100 + venta $25 = esperado
// $125. El conteo coincide, la diferencia es cero y la sesión queda pendiente
// de verificación.
func TestCloseSession_ReplicaYCuadra(t *testing.T) {
	uc, _, cashTxRepo := newFixture()

	session, err := uc.OpenSession(context.Background(), testCompany, testCashier, usdCash(100))
	require.NoError(t, err)

	cashTxRepo.txs = append(cashTxRepo.txs, &entity.CashTransaction{
		ID:        "tx-1",
		CompanyID: testCompany,
		SessionID: session.ID,
		Type:      entity.CashTxTypeSale,
		Currency:  entity.CurrencyUSD,
		Payments: []entity.PaymentEntry{
			{Method: entity.MethodCash, Currency: entity.CurrencyUSD, Amount: decimal.NewFromInt(25)},
		},
		TotalAmount: decimal.NewFromInt(25),
	})

	closed, err := uc.CloseSession(context.Background(), testCompany, testCashier, usdCash(125))
	require.NoError(t, err)

	assert.Equal(t, entity.SessionStatusPendingVerification, closed.Status)
	assert.True(t, closed.ExpectedBalance.Get(entity.CurrencyUSD, entity.MethodCash).Equal(decimal.NewFromInt(125)))
	assert.True(t, closed.Difference.Get(entity.CurrencyUSD, entity.MethodCash).IsZero(), "conteo y esperado cuadran")
	require.NotNil(t, closed.ClosedAt)
}

// Un faltante queda registrado como diferencia negativa; la sesión igual pasa a
// pending_verification (el faltante lo resuelve el admin al verificar).
func TestCloseSession_RegistraFaltante(t *testing.T) {
	uc, _, _ := newFixture()

	_, err := uc.OpenSession(context.Background(), testCompany, testCashier, usdCash(100))
	require.NoError(t, err)

	closed, err := uc.CloseSession(context.Background(), testCompany, testCashier, usdCash(95))
	require.NoError(t, err)

	diff := closed.Difference.Get(entity.CurrencyUSD, entity.MethodCash)
	assert.True(t, diff.Equal(decimal.NewFromInt(-5)), "faltan $5")
	assert.Equal(t, entity.SessionStatusPendingVerification, closed.Status)
}

// Cerrar dos veces no es válido: la sesión ya no está open.
func TestCloseSession_DobleCierreFalla(t *testing.T) {
	uc, _, _ := newFixture()

	_, err := uc.OpenSession(context.Background(), testCompany, testCashier, usdCash(100))
	require.NoError(t, err)
	_, err = uc.CloseSession(context.Background(), testCompany, testCashier, usdCash(100))
	require.NoError(t, err)

	_, err = uc.CloseSession(context.Background(), testCompany, testCashier, usdCash(100))
	assert.ErrorIs(t, err, domain.ErrConflict)
}

// ── verificación ──────────────────────────────────────────────────────────────

func TestVerifySession_SoloAdmin(t *testing.T) {
	uc, _, _ := newFixture()
	_, err := uc.VerifySession(context.Background(), testCompany, testCashier, entity.RoleVendedor, "")
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestVerifySession_FinalizaSesion(t *testing.T) {
	uc, _, _ := newFixture()

	_, err := uc.OpenSession(context.Background(), testCompany, testCashier, usdCash(100))
	require.NoError(t, err)
	_, err = uc.CloseSession(context.Background(), testCompany, testCashier, usdCash(100))
	require.NoError(t, err)

	verified, err := uc.VerifySession(context.Background(), testCompany, testAdmin, entity.RoleAdmin, "todo cuadra")
	require.NoError(t, err)

	assert.Equal(t, entity.SessionStatusClosed, verified.Status)
	assert.Equal(t, testAdmin, verified.VerifiedBy)
	assert.Equal(t, "todo cuadra", verified.Notes)
	require.NotNil(t, verified.VerifiedAt)

	// Cerrada del todo: ya se puede abrir una nueva.
	_, err = uc.OpenSession(context.Background(), testCompany, testCashier, usdCash(100))
	assert.NoError(t, err)
}

// Verificar una sesión que sigue open (sin cerrar) es un conflicto.
func TestVerifySession_SesionAunAbierta(t *testing.T) {
	uc, _, _ := newFixture()

	_, err := uc.OpenSession(context.Background(), testCompany, testCashier, usdCash(100))
	require.NoError(t, err)

	_, err = uc.VerifySession(context.Background(), testCompany, testAdmin, entity.RoleAdmin, "")
	assert.ErrorIs(t, err, domain.ErrConflict)
}

// ── réplica del balance esperado ──────────────────────────────────────────────

// Las ventas acreditan cada pago en su bucket (moneda, método); gastos, retiros
// y devoluciones debitan el efectivo de la moneda de la transacción.
func TestReplayExpected_AcreditaYDebita(t *testing.T) {
	opening := entity.Balances{
		entity.CurrencyUSD: {entity.MethodCash: decimal.NewFromInt(100)},
		entity.CurrencyVES: {entity.MethodCash: decimal.NewFromInt(3000)},
	}
	txs := []*entity.CashTransaction{
		{
			Type:     entity.CashTxTypeSale,
			Currency: entity.CurrencyUSD,
			Payments: []entity.PaymentEntry{
				{Method: entity.MethodCash, Currency: entity.CurrencyUSD, Amount: decimal.NewFromInt(20)},
				{Method: entity.MethodCard, Currency: entity.CurrencyUSD, Amount: decimal.NewFromInt(30)},
				{Method: entity.MethodCash, Currency: entity.CurrencyVES, Amount: decimal.NewFromInt(500)},
			},
		},
		{Type: entity.CashTxTypeExpense, Currency: entity.CurrencyUSD, TotalAmount: decimal.NewFromInt(10)},
		{Type: entity.CashTxTypeReturn, Currency: entity.CurrencyVES, TotalAmount: decimal.NewFromInt(200)},
	}

	expected := cash.ReplayExpected(opening, txs)

	assert.True(t, expected.Get(entity.CurrencyUSD, entity.MethodCash).Equal(decimal.NewFromInt(110)), "100 + 20 - 10")
	assert.True(t, expected.Get(entity.CurrencyUSD, entity.MethodCard).Equal(decimal.NewFromInt(30)), "la tarjeta va a su propio bucket")
	assert.True(t, expected.Get(entity.CurrencyVES, entity.MethodCash).Equal(decimal.NewFromInt(3300)), "3000 + 500 - 200")
}

// La réplica no muta el balance de apertura.
func TestReplayExpected_NoMutaApertura(t *testing.T) {
	opening := usdCash(100)
	_ = cash.ReplayExpected(opening, []*entity.CashTransaction{
		{Type: entity.CashTxTypeExpense, Currency: entity.CurrencyUSD, TotalAmount: decimal.NewFromInt(40)},
	})
	assert.True(t, opening.Get(entity.CurrencyUSD, entity.MethodCash).Equal(decimal.NewFromInt(100)))
}

// Un retiro aprobado también debita efectivo.
func TestReplayExpected_RetiroDebita(t *testing.T) {
	expected := cash.ReplayExpected(usdCash(100), []*entity.CashTransaction{
		{Type: entity.CashTxTypeWithdrawal, Currency: entity.CurrencyUSD, TotalAmount: decimal.NewFromInt(60)},
	})
	assert.True(t, expected.Get(entity.CurrencyUSD, entity.MethodCash).Equal(decimal.NewFromInt(40)))
}

// ── sesión activa ─────────────────────────────────────────────────────────────

func TestActiveSession_NilSiNoHay(t *testing.T) {
	uc, _, _ := newFixture()
	session, err := uc.ActiveSession(context.Background(), testCompany)
	require.NoError(t, err)
	assert.Nil(t, session)
}

// Verifica que las sesiones de otra empresa no interfieren.
func TestOpenSession_EmpresasIndependientes(t *testing.T) {
	uc, _, _ := newFixture()

	_, err := uc.OpenSession(context.Background(), testCompany, testCashier, usdCash(100))
	require.NoError(t, err)

	otra := "99999999-9999-9999-9999-999999999999"
	session, err := uc.OpenSession(context.Background(), otra, testCashier, usdCash(10))
	require.NoError(t, err, "cada empresa tiene su propia sesión activa")
	assert.Equal(t, otra, session.CompanyID)
}
