package inventory_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tu-usuario/comercio-pro/internal/application/inventory"
	"github.com/tu-usuario/comercio-pro/internal/domain"
	"github.com/tu-usuario/comercio-pro/internal/domain/entity"
	"github.com/tu-usuario/comercio-pro/internal/domain/repository"
	"github.com/tu-usuario/comercio-pro/pkg/logger"
)

// ──────────────────────────────────────────────────────────────────────────────
// Tests del libro de inventario y la compuerta de aprobación, sobre
// repositorios en memoria. El TxRunner falso ejecuta la función directamente:
// la atomicidad real la cubre la capa postgres; aquí se verifica la semántica.
// ──────────────────────────────────────────────────────────────────────────────

const (
	testCompany = "11111111-1111-1111-1111-111111111111"
	testAdmin   = "22222222-2222-2222-2222-222222222222"
	testVendor  = "33333333-3333-3333-3333-333333333333"
)

// ── fakes en memoria ──────────────────────────────────────────────────────────

type memProductRepo struct {
	products map[string]*entity.Product
}

func newMemProductRepo(products ...*entity.Product) *memProductRepo {
	m := &memProductRepo{products: make(map[string]*entity.Product)}
	for _, p := range products {
		m.products[p.ID] = p
	}
	return m
}

func (m *memProductRepo) GetByID(id string) (*entity.Product, error)      { return m.products[id], nil }
func (m *memProductRepo) GetForUpdate(id string) (*entity.Product, error) { return m.products[id], nil }

func (m *memProductRepo) UpdateStock(id string, quantity int, status string) error {
	p := m.products[id]
	p.Quantity = quantity
	p.Status = status
	return nil
}

func (m *memProductRepo) List(companyID string, limit, offset int) ([]*entity.Product, error) {
	return nil, nil
}

type memMovementRepo struct {
	movements []*entity.Movement
}

func (m *memMovementRepo) Create(mov *entity.Movement) error {
	m.movements = append(m.movements, mov)
	return nil
}

func (m *memMovementRepo) GetByID(id string) (*entity.Movement, error) {
	for _, mov := range m.movements {
		if mov.ID == id {
			return mov, nil
		}
	}
	return nil, nil
}

func (m *memMovementRepo) GetForUpdate(id string) (*entity.Movement, error) { return m.GetByID(id) }
func (m *memMovementRepo) UpdateStatus(mov *entity.Movement) error          { return nil }

func (m *memMovementRepo) ListByProduct(productID string, limit, offset int) ([]*entity.Movement, error) {
	var out []*entity.Movement
	for _, mov := range m.movements {
		if mov.ProductID == productID {
			out = append(out, mov)
		}
	}
	return out, nil
}

func (m *memMovementRepo) ListPending(companyID string) ([]*entity.Movement, error) {
	var out []*entity.Movement
	for _, mov := range m.movements {
		if mov.CompanyID == companyID && mov.Status == entity.MovementStatusPending {
			out = append(out, mov)
		}
	}
	return out, nil
}

func (m *memMovementRepo) ListPendingOlderThan(cutoff time.Time) ([]*entity.Movement, error) {
	var out []*entity.Movement
	for _, mov := range m.movements {
		if mov.Status == entity.MovementStatusPending && mov.CreatedAt.Before(cutoff) {
			out = append(out, mov)
		}
	}
	return out, nil
}

type fakeTxRunner struct {
	movRepo     *memMovementRepo
	productRepo *memProductRepo
}

func (f *fakeTxRunner) RunInventory(ctx context.Context, fn func(
	movRepo repository.MovementRepository,
	productRepo repository.ProductRepository,
) error) error {
	return fn(f.movRepo, f.productRepo)
}

func testLogger() *logger.Logger {
	return logger.New(logger.Config{Env: "test", Level: "error"})
}

func testProduct(id string, quantity int) *entity.Product {
	return &entity.Product{
		ID:        id,
		CompanyID: testCompany,
		SKU:       "SKU-" + id[:8],
		Name:      "Producto " + id[:8],
		Quantity:  quantity,
		Status:    "in_stock",
	}
}

func newFixture(products ...*entity.Product) (*inventory.StockLedgerUseCase, *memMovementRepo, *memProductRepo) {
	movRepo := &memMovementRepo{}
	productRepo := newMemProductRepo(products...)
	runner := &fakeTxRunner{movRepo: movRepo, productRepo: productRepo}
	uc := inventory.NewStockLedgerUseCase(runner, movRepo, productRepo, testLogger())
	return uc, movRepo, productRepo
}

// ── aplicación de lotes ───────────────────────────────────────────────────────

// Un admin aplica el lote de inmediato: el stock muta y los movimientos nacen
// aprobados con previous/new capturados.
func TestApplyMovements_AdminAplicaDirecto(t *testing.T) {
	const productID = "aaaaaaaa-0000-0000-0000-000000000001"
	uc, movRepo, productRepo := newFixture(testProduct(productID, 10))

	result, err := uc.ApplyMovements(context.Background(), testCompany, testAdmin, entity.RoleAdmin,
		[]inventory.MovementInput{
			{ProductID: productID, Type: entity.MovementTypeEntry, Quantity: 5, Reason: "compra"},
			{ProductID: productID, Type: entity.MovementTypeExit, Quantity: 3, Reason: "merma"},
		})

	require.NoError(t, err)
	assert.Equal(t, 2, result.Applied)
	assert.Zero(t, result.Pending)
	assert.Zero(t, result.Skipped)

	assert.Equal(t, 12, productRepo.products[productID].Quantity, "10 + 5 - 3")
	require.Len(t, movRepo.movements, 2)
	first := movRepo.movements[0]
	assert.Equal(t, entity.MovementStatusApproved, first.Status)
	assert.Equal(t, 10, first.PreviousQty)
	assert.Equal(t, 15, first.NewQty)
	assert.Equal(t, testAdmin, first.ApprovedBy)
}

// Un vendedor solo registra el movimiento pendiente: el stock no cambia hasta
// que un admin apruebe.
func TestApplyMovements_NoAdminQuedaPendiente(t *testing.T) {
	const productID = "aaaaaaaa-0000-0000-0000-000000000002"
	uc, movRepo, productRepo := newFixture(testProduct(productID, 10))

	result, err := uc.ApplyMovements(context.Background(), testCompany, testVendor, entity.RoleVendedor,
		[]inventory.MovementInput{
			{ProductID: productID, Type: entity.MovementTypeExit, Quantity: 4},
		})

	require.NoError(t, err)
	assert.Equal(t, 1, result.Pending)
	assert.Zero(t, result.Applied)

	assert.Equal(t, 10, productRepo.products[productID].Quantity, "el stock no se toca en pending")
	require.Len(t, movRepo.movements, 1)
	mov := movRepo.movements[0]
	assert.Equal(t, entity.MovementStatusPending, mov.Status)
	assert.Zero(t, mov.PreviousQty, "previous/new se capturan recién al aprobar")
	assert.Zero(t, mov.NewQty)
}

// Un producto inexistente descarta la línea con warn pero el resto del lote
// continúa.
func TestApplyMovements_ProductoInexistenteSeDescarta(t *testing.T) {
	const productID = "aaaaaaaa-0000-0000-0000-000000000003"
	uc, _, productRepo := newFixture(testProduct(productID, 10))

	result, err := uc.ApplyMovements(context.Background(), testCompany, testAdmin, entity.RoleAdmin,
		[]inventory.MovementInput{
			{ProductID: "bbbbbbbb-0000-0000-0000-000000000099", Type: entity.MovementTypeEntry, Quantity: 5},
			{ProductID: productID, Type: entity.MovementTypeEntry, Quantity: 2},
		})

	require.NoError(t, err, "el lote no aborta por una referencia obsoleta")
	assert.Equal(t, 1, result.Skipped)
	assert.Equal(t, 1, result.Applied)
	assert.Equal(t, 12, productRepo.products[productID].Quantity)
}

// Un producto de otra empresa cuenta como inexistente.
func TestApplyMovements_ProductoDeOtraEmpresaSeDescarta(t *testing.T) {
	const productID = "aaaaaaaa-0000-0000-0000-000000000004"
	product := testProduct(productID, 10)
	product.CompanyID = "99999999-9999-9999-9999-999999999999"
	uc, _, _ := newFixture(product)

	result, err := uc.ApplyMovements(context.Background(), testCompany, testAdmin, entity.RoleAdmin,
		[]inventory.MovementInput{
			{ProductID: productID, Type: entity.MovementTypeEntry, Quantity: 5},
		})

	require.NoError(t, err)
	assert.Equal(t, 1, result.Skipped)
}

// Una salida que excede el stock aborta con ErrInsufficientStock.
func TestApplyMovements_SalidaInsuficiente(t *testing.T) {
	const productID = "aaaaaaaa-0000-0000-0000-000000000005"
	uc, _, productRepo := newFixture(testProduct(productID, 2))

	_, err := uc.ApplyMovements(context.Background(), testCompany, testAdmin, entity.RoleAdmin,
		[]inventory.MovementInput{
			{ProductID: productID, Type: entity.MovementTypeExit, Quantity: 3},
		})

	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.Equal(t, 2, productRepo.products[productID].Quantity)
}

func TestApplyMovements_LoteVacioEsInvalido(t *testing.T) {
	uc, _, _ := newFixture()
	_, err := uc.ApplyMovements(context.Background(), testCompany, testAdmin, entity.RoleAdmin, nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

// Una línea malformada rechaza el lote completo ANTES de cualquier escritura:
// las líneas válidas anteriores no dejan stock mutado ni movimientos creados.
func TestApplyMovements_LineaInvalidaRechazaElLoteSinEscribir(t *testing.T) {
	const productID = "aaaaaaaa-0000-0000-0000-000000000010"
	uc, movRepo, productRepo := newFixture(testProduct(productID, 10))

	_, err := uc.ApplyMovements(context.Background(), testCompany, testAdmin, entity.RoleAdmin,
		[]inventory.MovementInput{
			{ProductID: productID, Type: entity.MovementTypeEntry, Quantity: 5, Reason: "compra"},
			{ProductID: productID, Type: "BOGUS", Quantity: 1},
		})

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Equal(t, 10, productRepo.products[productID].Quantity, "la línea válida previa no debe haberse aplicado")
	assert.Empty(t, movRepo.movements, "un lote rechazado no deja movimientos")
}

// ── compuerta de aprobación ───────────────────────────────────────────────────

// La aprobación recalcula previous/new desde la cantidad ACTUAL del producto,
// no la capturada al solicitar: si el stock cambió entre solicitud y
// aprobación, manda la cantidad vigente.
func TestApproveMovement_RecalculaDesdeCantidadActual(t *testing.T) {
	const productID = "aaaaaaaa-0000-0000-0000-000000000006"
	uc, movRepo, productRepo := newFixture(testProduct(productID, 10))

	_, err := uc.ApplyMovements(context.Background(), testCompany, testVendor, entity.RoleVendedor,
		[]inventory.MovementInput{
			{ProductID: productID, Type: entity.MovementTypeEntry, Quantity: 5},
		})
	require.NoError(t, err)
	pending := movRepo.movements[0]

	// El stock cambió (otra venta, otro movimiento) antes de la aprobación.
	productRepo.products[productID].Quantity = 12

	err = uc.ApproveMovement(context.Background(), testCompany, testAdmin, entity.RoleAdmin, pending.ID)
	require.NoError(t, err)

	assert.Equal(t, entity.MovementStatusApproved, pending.Status)
	assert.Equal(t, 12, pending.PreviousQty, "previous es la cantidad al momento de aprobar")
	assert.Equal(t, 17, pending.NewQty)
	assert.Equal(t, 17, productRepo.products[productID].Quantity)
	assert.Equal(t, testAdmin, pending.ApprovedBy)
	require.NotNil(t, pending.ApprovedAt)
}

// Un movimiento se aplica al stock a lo sumo una vez: la segunda aprobación
// choca con ErrConflict.
func TestApproveMovement_SegundaAprobacionFalla(t *testing.T) {
	const productID = "aaaaaaaa-0000-0000-0000-000000000007"
	uc, movRepo, productRepo := newFixture(testProduct(productID, 10))

	_, err := uc.ApplyMovements(context.Background(), testCompany, testVendor, entity.RoleVendedor,
		[]inventory.MovementInput{
			{ProductID: productID, Type: entity.MovementTypeEntry, Quantity: 5},
		})
	require.NoError(t, err)
	pending := movRepo.movements[0]

	require.NoError(t, uc.ApproveMovement(context.Background(), testCompany, testAdmin, entity.RoleAdmin, pending.ID))
	err = uc.ApproveMovement(context.Background(), testCompany, testAdmin, entity.RoleAdmin, pending.ID)

	assert.ErrorIs(t, err, domain.ErrConflict)
	assert.Equal(t, 15, productRepo.products[productID].Quantity, "el stock solo cambió una vez")
}

func TestApproveMovement_SoloAdmin(t *testing.T) {
	uc, _, _ := newFixture()
	err := uc.ApproveMovement(context.Background(), testCompany, testVendor, entity.RoleVendedor, "cualquiera")
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestApproveMovement_NoExiste(t *testing.T) {
	uc, _, _ := newFixture()
	err := uc.ApproveMovement(context.Background(), testCompany, testAdmin, entity.RoleAdmin, "no-existe")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// El rechazo resuelve la solicitud sin tocar nunca el stock.
func TestRejectMovement_NoMutaStock(t *testing.T) {
	const productID = "aaaaaaaa-0000-0000-0000-000000000008"
	uc, movRepo, productRepo := newFixture(testProduct(productID, 10))

	_, err := uc.ApplyMovements(context.Background(), testCompany, testVendor, entity.RoleVendedor,
		[]inventory.MovementInput{
			{ProductID: productID, Type: entity.MovementTypeExit, Quantity: 4},
		})
	require.NoError(t, err)
	pending := movRepo.movements[0]

	require.NoError(t, uc.RejectMovement(context.Background(), testCompany, testAdmin, entity.RoleAdmin, pending.ID))

	assert.Equal(t, entity.MovementStatusRejected, pending.Status)
	assert.Equal(t, 10, productRepo.products[productID].Quantity)

	// Rechazado es terminal: no se puede aprobar después.
	err = uc.ApproveMovement(context.Background(), testCompany, testAdmin, entity.RoleAdmin, pending.ID)
	assert.ErrorIs(t, err, domain.ErrConflict)
}

// ── listados ──────────────────────────────────────────────────────────────────

func TestListPending_SoloPendientesDeLaEmpresa(t *testing.T) {
	const productID = "aaaaaaaa-0000-0000-0000-000000000009"
	uc, movRepo, _ := newFixture(testProduct(productID, 10))

	_, err := uc.ApplyMovements(context.Background(), testCompany, testVendor, entity.RoleVendedor,
		[]inventory.MovementInput{
			{ProductID: productID, Type: entity.MovementTypeEntry, Quantity: 1},
			{ProductID: productID, Type: entity.MovementTypeEntry, Quantity: 2},
		})
	require.NoError(t, err)
	require.NoError(t, uc.ApproveMovement(context.Background(), testCompany, testAdmin, entity.RoleAdmin, movRepo.movements[0].ID))

	pending, err := uc.ListPending(context.Background(), testCompany)
	require.NoError(t, err)
	assert.Len(t, pending, 1, "solo queda pendiente el no aprobado")
}
