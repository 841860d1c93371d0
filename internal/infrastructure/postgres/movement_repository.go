package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/tu-usuario/comercio-pro/internal/domain/entity"
	"github.com/tu-usuario/comercio-pro/internal/domain/repository"
)

var _ repository.MovementRepository = (*MovementRepo)(nil)

// MovementRepo implementación de MovementRepository (usable con pool o tx).
type MovementRepo struct {
	q Querier
}

// NewMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewMovementRepository(q Querier) *MovementRepo {
	return &MovementRepo{q: q}
}

const movementColumns = `id, company_id, product_id, type, quantity, previous_qty, new_qty, status, reason, created_by, approved_by, date, created_at, approved_at`

// Create persiste un movimiento de inventario.
func (r *MovementRepo) Create(movement *entity.Movement) error {
	if movement.ID == "" {
		movement.ID = uuid.New().String()
	}
	query := `
		INSERT INTO movements (` + movementColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`
	approvedBy := (*string)(nil)
	if movement.ApprovedBy != "" {
		approvedBy = &movement.ApprovedBy
	}
	_, err := r.q.Exec(context.Background(), query,
		movement.ID, movement.CompanyID, movement.ProductID, movement.Type,
		movement.Quantity, movement.PreviousQty, movement.NewQty, movement.Status,
		movement.Reason, movement.CreatedBy, approvedBy,
		movement.Date, movement.CreatedAt, movement.ApprovedAt,
	)
	if err != nil {
		return fmt.Errorf("create movement: %w", err)
	}
	return nil
}

func scanMovement(row pgx.Row) (*entity.Movement, error) {
	var m entity.Movement
	var status, approvedBy *string
	err := row.Scan(
		&m.ID, &m.CompanyID, &m.ProductID, &m.Type, &m.Quantity,
		&m.PreviousQty, &m.NewQty, &status, &m.Reason, &m.CreatedBy, &approvedBy,
		&m.Date, &m.CreatedAt, &m.ApprovedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan movement: %w", err)
	}
	// status NULL = registro legacy anterior al flujo de aprobación.
	if status != nil {
		m.Status = *status
	}
	if approvedBy != nil {
		m.ApprovedBy = *approvedBy
	}
	return &m, nil
}

// GetByID obtiene un movimiento por ID; nil si no existe.
func (r *MovementRepo) GetByID(id string) (*entity.Movement, error) {
	query := `SELECT ` + movementColumns + ` FROM movements WHERE id = $1`
	return scanMovement(r.q.QueryRow(context.Background(), query, id))
}

// GetForUpdate obtiene el movimiento bloqueando la fila (flujo de aprobación).
func (r *MovementRepo) GetForUpdate(id string) (*entity.Movement, error) {
	query := `SELECT ` + movementColumns + ` FROM movements WHERE id = $1 FOR UPDATE`
	return scanMovement(r.q.QueryRow(context.Background(), query, id))
}

// UpdateStatus fija estado, aprobador y, al aprobar, previous_qty/new_qty.
func (r *MovementRepo) UpdateStatus(movement *entity.Movement) error {
	query := `
		UPDATE movements
		SET status = $2, approved_by = $3, approved_at = $4, previous_qty = $5, new_qty = $6
		WHERE id = $1`
	_, err := r.q.Exec(context.Background(), query,
		movement.ID, movement.Status, movement.ApprovedBy, movement.ApprovedAt,
		movement.PreviousQty, movement.NewQty,
	)
	if err != nil {
		return fmt.Errorf("update movement status: %w", err)
	}
	return nil
}

// ListByProduct lista el historial de movimientos de un producto.
func (r *MovementRepo) ListByProduct(productID string, limit, offset int) ([]*entity.Movement, error) {
	query := `SELECT ` + movementColumns + ` FROM movements WHERE product_id = $1 ORDER BY date DESC LIMIT $2 OFFSET $3`
	return r.list(query, productID, limit, offset)
}

// ListPending lista los movimientos pendientes de aprobación de la empresa.
func (r *MovementRepo) ListPending(companyID string) ([]*entity.Movement, error) {
	query := `SELECT ` + movementColumns + ` FROM movements WHERE company_id = $1 AND status = $2 ORDER BY created_at`
	return r.list(query, companyID, entity.MovementStatusPending)
}

// ListPendingOlderThan lista, en todas las empresas, los pendientes creados
// antes del corte (reporte de solicitudes estancadas).
func (r *MovementRepo) ListPendingOlderThan(cutoff time.Time) ([]*entity.Movement, error) {
	query := `SELECT ` + movementColumns + ` FROM movements WHERE status = $1 AND created_at < $2 ORDER BY created_at`
	return r.list(query, entity.MovementStatusPending, cutoff)
}

func (r *MovementRepo) list(query string, args ...any) ([]*entity.Movement, error) {
	rows, err := r.q.Query(context.Background(), query, args...)
	if err != nil {
		return nil, fmt.Errorf("list movements: %w", err)
	}
	defer rows.Close()
	var list []*entity.Movement
	for rows.Next() {
		var m entity.Movement
		var status, approvedBy *string
		if err := rows.Scan(
			&m.ID, &m.CompanyID, &m.ProductID, &m.Type, &m.Quantity,
			&m.PreviousQty, &m.NewQty, &status, &m.Reason, &m.CreatedBy, &approvedBy,
			&m.Date, &m.CreatedAt, &m.ApprovedAt,
		); err != nil {
			return nil, fmt.Errorf("scan movement: %w", err)
		}
		if status != nil {
			m.Status = *status
		}
		if approvedBy != nil {
			m.ApprovedBy = *approvedBy
		}
		list = append(list, &m)
	}
	return list, rows.Err()
}
