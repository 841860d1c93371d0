package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/tu-usuario/comercio-pro/internal/domain/entity"
)

// Querier abstrae pool y transacción: los repos funcionan con cualquiera de
// los dos (pgxpool.Pool y pgx.Tx lo satisfacen).
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// isUniqueViolation verifica si un error es una violación de constraint único (23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505" // unique_violation
	}
	return strings.Contains(err.Error(), "23505")
}

// balancesToJSON serializa Balances a JSONB; nil produce NULL.
func balancesToJSON(b entity.Balances) ([]byte, error) {
	if b == nil {
		return nil, nil
	}
	data, err := json.Marshal(b)
	if err != nil {
		return nil, fmt.Errorf("marshal balances: %w", err)
	}
	return data, nil
}

// balancesFromJSON deserializa JSONB a Balances; NULL produce nil.
func balancesFromJSON(data []byte) (entity.Balances, error) {
	if len(data) == 0 {
		return nil, nil
	}
	var b entity.Balances
	if err := json.Unmarshal(data, &b); err != nil {
		return nil, fmt.Errorf("unmarshal balances: %w", err)
	}
	return b, nil
}
