package authz_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tu-usuario/comercio-pro/internal/application/authz"
	"github.com/tu-usuario/comercio-pro/internal/domain"
	"github.com/tu-usuario/comercio-pro/internal/domain/entity"
	"github.com/tu-usuario/comercio-pro/internal/domain/repository"
	"github.com/tu-usuario/comercio-pro/pkg/logger"
)

// ──────────────────────────────────────────────────────────────────────────────
// Tests del flujo de autorización de gastos y retiros. Garantía central: una
// solicitud aprobada produce exactamente una transacción de caja; una
// rechazada, ninguna.
// ──────────────────────────────────────────────────────────────────────────────

const (
	testCompany = "11111111-1111-1111-1111-111111111111"
	testAdmin   = "22222222-2222-2222-2222-222222222222"
	testSeller  = "33333333-3333-3333-3333-333333333333"
)

// ── fakes en memoria ──────────────────────────────────────────────────────────

type memAuthRepo struct {
	requests []*entity.AuthorizationRequest
}

func (m *memAuthRepo) Create(r *entity.AuthorizationRequest) error {
	m.requests = append(m.requests, r)
	return nil
}

func (m *memAuthRepo) GetByID(id string) (*entity.AuthorizationRequest, error) {
	for _, r := range m.requests {
		if r.ID == id {
			return r, nil
		}
	}
	return nil, nil
}

func (m *memAuthRepo) GetForUpdate(id string) (*entity.AuthorizationRequest, error) {
	return m.GetByID(id)
}

func (m *memAuthRepo) Update(r *entity.AuthorizationRequest) error { return nil }

func (m *memAuthRepo) ListPending(companyID string) ([]*entity.AuthorizationRequest, error) {
	var out []*entity.AuthorizationRequest
	for _, r := range m.requests {
		if r.CompanyID == companyID && r.Status == entity.AuthRequestStatusPending {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *memAuthRepo) ListPendingOlderThan(cutoff time.Time) ([]*entity.AuthorizationRequest, error) {
	var out []*entity.AuthorizationRequest
	for _, r := range m.requests {
		if r.Status == entity.AuthRequestStatusPending && r.CreatedAt.Before(cutoff) {
			out = append(out, r)
		}
	}
	return out, nil
}

type memSessionRepo struct {
	active *entity.CashSession
}

func (m *memSessionRepo) Create(session *entity.CashSession) error        { return nil }
func (m *memSessionRepo) GetByID(id string) (*entity.CashSession, error)  { return nil, nil }
func (m *memSessionRepo) Update(session *entity.CashSession) error        { return nil }
func (m *memSessionRepo) GetActive(companyID string) (*entity.CashSession, error) {
	if m.active != nil && m.active.CompanyID == companyID {
		return m.active, nil
	}
	return nil, nil
}
func (m *memSessionRepo) GetActiveForUpdate(companyID string) (*entity.CashSession, error) {
	return m.GetActive(companyID)
}

type memCashTxRepo struct {
	txs []*entity.CashTransaction
}

func (m *memCashTxRepo) Create(tx *entity.CashTransaction) error {
	m.txs = append(m.txs, tx)
	return nil
}

func (m *memCashTxRepo) ListBySession(sessionID string) ([]*entity.CashTransaction, error) {
	return m.txs, nil
}

type fakeTxRunner struct {
	authRepo   *memAuthRepo
	cashTxRepo *memCashTxRepo
}

func (f *fakeTxRunner) RunAuthz(ctx context.Context, fn func(
	authRepo repository.AuthorizationRepository,
	cashTxRepo repository.CashTransactionRepository,
) error) error {
	return fn(f.authRepo, f.cashTxRepo)
}

type fixture struct {
	uc          *authz.AuthorizationUseCase
	authRepo    *memAuthRepo
	cashTxRepo  *memCashTxRepo
	sessionRepo *memSessionRepo
}

func newFixture() *fixture {
	authRepo := &memAuthRepo{}
	cashTxRepo := &memCashTxRepo{}
	sessionRepo := &memSessionRepo{}
	runner := &fakeTxRunner{authRepo: authRepo, cashTxRepo: cashTxRepo}
	log := logger.New(logger.Config{Env: "test", Level: "error"})
	uc := authz.NewAuthorizationUseCase(runner, authRepo, sessionRepo, log)
	return &fixture{uc: uc, authRepo: authRepo, cashTxRepo: cashTxRepo, sessionRepo: sessionRepo}
}

func (f *fixture) openSession() {
	f.sessionRepo.active = &entity.CashSession{
		ID:        "55555555-5555-5555-5555-555555555555",
		CompanyID: testCompany,
		Status:    entity.SessionStatusOpen,
	}
}

func expenseInput(amount int64) authz.ExpenseInput {
	return authz.ExpenseInput{
		Amount:   decimal.NewFromInt(amount),
		Currency: entity.CurrencyUSD,
		Reason:   "compra de insumos",
	}
}

// ── gastos ────────────────────────────────────────────────────────────────────

// Por defecto el gasto queda pendiente: sin transacción de caja y sin requerir
// sesión abierta.
func TestRequestExpense_PorDefectoQuedaPendiente(t *testing.T) {
	f := newFixture()

	request, cashTx, err := f.uc.RequestExpense(context.Background(), testCompany, testSeller, entity.RoleVendedor, expenseInput(50))

	require.NoError(t, err)
	require.NotNil(t, request)
	assert.Nil(t, cashTx)
	assert.Equal(t, entity.AuthRequestStatusPending, request.Status)
	assert.Equal(t, entity.AuthRequestTypeExpense, request.Type)
	assert.Empty(t, f.cashTxRepo.txs, "una solicitud pendiente no mueve caja")
}

// requires_auth=false es un privilegio de admin.
func TestRequestExpense_DirectoSoloAdmin(t *testing.T) {
	f := newFixture()
	noAuth := false
	in := expenseInput(50)
	in.RequiresAuth = &noAuth

	_, _, err := f.uc.RequestExpense(context.Background(), testCompany, testSeller, entity.RoleVendedor, in)

	assert.ErrorIs(t, err, domain.ErrForbidden)
}

// El gasto directo de un admin escribe la transacción de inmediato, sin
// solicitud intermedia.
func TestRequestExpense_DirectoDeAdmin(t *testing.T) {
	f := newFixture()
	f.openSession()
	noAuth := false
	in := expenseInput(50)
	in.RequiresAuth = &noAuth

	request, cashTx, err := f.uc.RequestExpense(context.Background(), testCompany, testAdmin, entity.RoleAdmin, in)

	require.NoError(t, err)
	assert.Nil(t, request)
	require.NotNil(t, cashTx)
	assert.Equal(t, entity.CashTxTypeExpense, cashTx.Type)
	assert.True(t, cashTx.TotalAmount.Equal(decimal.NewFromInt(50)))
	assert.Len(t, f.cashTxRepo.txs, 1)
	assert.Empty(t, f.authRepo.requests)
}

// El gasto directo exige sesión de caja abierta.
func TestRequestExpense_DirectoSinSesion(t *testing.T) {
	f := newFixture()
	noAuth := false
	in := expenseInput(50)
	in.RequiresAuth = &noAuth

	_, _, err := f.uc.RequestExpense(context.Background(), testCompany, testAdmin, entity.RoleAdmin, in)

	assert.ErrorIs(t, err, domain.ErrNoOpenSession)
}

func TestRequestExpense_EntradaInvalida(t *testing.T) {
	f := newFixture()

	cases := []struct {
		name string
		in   authz.ExpenseInput
	}{
		{"monto cero", authz.ExpenseInput{Amount: decimal.Zero, Currency: entity.CurrencyUSD, Reason: "x"}},
		{"monto negativo", authz.ExpenseInput{Amount: decimal.NewFromInt(-5), Currency: entity.CurrencyUSD, Reason: "x"}},
		{"moneda desconocida", authz.ExpenseInput{Amount: decimal.NewFromInt(5), Currency: "EUR", Reason: "x"}},
		{"sin motivo", authz.ExpenseInput{Amount: decimal.NewFromInt(5), Currency: entity.CurrencyUSD}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := f.uc.RequestExpense(context.Background(), testCompany, testSeller, entity.RoleVendedor, tc.in)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}
}

// ── retiros ───────────────────────────────────────────────────────────────────

// Un retiro siempre pasa por autorización, sin importar el rol.
func TestRequestWithdrawal_SiemprePendiente(t *testing.T) {
	f := newFixture()

	request, err := f.uc.RequestWithdrawal(context.Background(), testCompany, testAdmin, decimal.NewFromInt(200), entity.CurrencyUSD, "retiro a bóveda")

	require.NoError(t, err)
	assert.Equal(t, entity.AuthRequestStatusPending, request.Status)
	assert.Equal(t, entity.AuthRequestTypeWithdrawal, request.Type)
	assert.Empty(t, f.cashTxRepo.txs)
}

// ── aprobación ────────────────────────────────────────────────────────────────

func TestApprove_SoloAdmin(t *testing.T) {
	f := newFixture()
	_, err := f.uc.Approve(context.Background(), testCompany, testSeller, entity.RoleVendedor, "cualquiera")
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestApprove_SinSesionAbierta(t *testing.T) {
	f := newFixture()
	_, err := f.uc.Approve(context.Background(), testCompany, testAdmin, entity.RoleAdmin, "cualquiera")
	assert.ErrorIs(t, err, domain.ErrNoOpenSession)
}

// Aprobar produce exactamente una transacción de caja, del tipo de la
// solicitud, en la misma escritura que el cambio de estado.
func TestApprove_ProduceExactamenteUnaTransaccion(t *testing.T) {
	f := newFixture()
	f.openSession()

	request, err := f.uc.RequestWithdrawal(context.Background(), testCompany, testSeller, decimal.NewFromInt(200), entity.CurrencyUSD, "retiro a bóveda")
	require.NoError(t, err)

	cashTx, err := f.uc.Approve(context.Background(), testCompany, testAdmin, entity.RoleAdmin, request.ID)
	require.NoError(t, err)

	assert.Equal(t, entity.AuthRequestStatusApproved, request.Status)
	assert.Equal(t, testAdmin, request.ReviewedBy)
	require.NotNil(t, request.ReviewedAt)

	require.Len(t, f.cashTxRepo.txs, 1)
	assert.Equal(t, entity.CashTxTypeWithdrawal, cashTx.Type, "el tipo de transacción sigue al tipo de solicitud")
	assert.Equal(t, request.ID, cashTx.ReferenceID)
	assert.True(t, cashTx.TotalAmount.Equal(decimal.NewFromInt(200)))
}

// Las solicitudes aprobadas son terminales: la segunda aprobación falla y no
// duplica la transacción.
func TestApprove_DobleAprobacionFalla(t *testing.T) {
	f := newFixture()
	f.openSession()

	request, err := f.uc.RequestWithdrawal(context.Background(), testCompany, testSeller, decimal.NewFromInt(200), entity.CurrencyUSD, "retiro")
	require.NoError(t, err)

	_, err = f.uc.Approve(context.Background(), testCompany, testAdmin, entity.RoleAdmin, request.ID)
	require.NoError(t, err)
	_, err = f.uc.Approve(context.Background(), testCompany, testAdmin, entity.RoleAdmin, request.ID)

	assert.ErrorIs(t, err, domain.ErrConflict)
	assert.Len(t, f.cashTxRepo.txs, 1, "sigue habiendo exactamente una transacción")
}

func TestApprove_SolicitudInexistente(t *testing.T) {
	f := newFixture()
	f.openSession()
	_, err := f.uc.Approve(context.Background(), testCompany, testAdmin, entity.RoleAdmin, "no-existe")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// ── rechazo ───────────────────────────────────────────────────────────────────

// Rechazar nunca produce transacción de caja, y el rechazo es terminal.
func TestReject_NoMueveCaja(t *testing.T) {
	f := newFixture()
	f.openSession()

	request, err := f.uc.RequestWithdrawal(context.Background(), testCompany, testSeller, decimal.NewFromInt(200), entity.CurrencyUSD, "retiro")
	require.NoError(t, err)

	require.NoError(t, f.uc.Reject(context.Background(), testCompany, testAdmin, entity.RoleAdmin, request.ID))

	assert.Equal(t, entity.AuthRequestStatusRejected, request.Status)
	assert.Empty(t, f.cashTxRepo.txs)

	_, err = f.uc.Approve(context.Background(), testCompany, testAdmin, entity.RoleAdmin, request.ID)
	assert.ErrorIs(t, err, domain.ErrConflict, "una solicitud rechazada no puede aprobarse después")
}

// ── listado ───────────────────────────────────────────────────────────────────

func TestListPending_SoloPendientes(t *testing.T) {
	f := newFixture()
	f.openSession()

	r1, err := f.uc.RequestWithdrawal(context.Background(), testCompany, testSeller, decimal.NewFromInt(10), entity.CurrencyUSD, "a")
	require.NoError(t, err)
	_, err = f.uc.RequestWithdrawal(context.Background(), testCompany, testSeller, decimal.NewFromInt(20), entity.CurrencyUSD, "b")
	require.NoError(t, err)
	_, err = f.uc.Approve(context.Background(), testCompany, testAdmin, entity.RoleAdmin, r1.ID)
	require.NoError(t, err)

	pending, err := f.uc.ListPending(context.Background(), testCompany)
	require.NoError(t, err)
	assert.Len(t, pending, 1)
}
