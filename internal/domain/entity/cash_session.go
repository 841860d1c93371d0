package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Monedas y métodos de pago soportados por la caja.
const (
	CurrencyUSD = "USD"
	CurrencyVES = "VES" // bolívares (Bs)

	MethodCash     = "cash"
	MethodCard     = "card"
	MethodTransfer = "transfer"
	MethodMobile   = "mobile" // pago móvil
)

// Estados del ciclo de vida de una sesión de caja.
// El cierre en dos pasos (close -> verify) existe para que un cajero no pueda
// finalizar unilateralmente una caja con un faltante sin explicar.
const (
	SessionStatusOpen                = "open"
	SessionStatusPendingVerification = "pending_verification"
	SessionStatusClosed              = "closed"
)

// Balances agrupa montos por moneda y método de pago.
// Se persiste como JSONB: {"USD":{"cash":"100.00"},"VES":{"cash":"3500.00"}}.
type Balances map[string]map[string]decimal.Decimal

// Get devuelve el monto del bucket (moneda, método); cero si no existe.
func (b Balances) Get(currency, method string) decimal.Decimal {
	if methods, ok := b[currency]; ok {
		if amount, ok := methods[method]; ok {
			return amount
		}
	}
	return decimal.Zero
}

// Add suma amount al bucket (moneda, método), creándolo si no existe.
func (b Balances) Add(currency, method string, amount decimal.Decimal) {
	if b[currency] == nil {
		b[currency] = make(map[string]decimal.Decimal)
	}
	b[currency][method] = b[currency][method].Add(amount)
}

// Sub resta amount del bucket (moneda, método).
func (b Balances) Sub(currency, method string, amount decimal.Decimal) {
	b.Add(currency, method, amount.Neg())
}

// Clone copia profunda de los balances.
func (b Balances) Clone() Balances {
	out := make(Balances, len(b))
	for currency, methods := range b {
		out[currency] = make(map[string]decimal.Decimal, len(methods))
		for method, amount := range methods {
			out[currency][method] = amount
		}
	}
	return out
}

// Diff devuelve b - other por cada bucket presente en cualquiera de los dos.
func (b Balances) Diff(other Balances) Balances {
	out := make(Balances)
	for currency, methods := range b {
		for method, amount := range methods {
			out.Add(currency, method, amount)
		}
	}
	for currency, methods := range other {
		for method, amount := range methods {
			out.Sub(currency, method, amount)
		}
	}
	return out
}

// CashSession representa el período de caja de un cajero (apertura a cierre).
// Invariante crítico de concurrencia: a lo sumo una sesión activa
// (open o pending_verification) por empresa.
type CashSession struct {
	ID              string
	CompanyID       string
	CashierID       string
	Status          string // open | pending_verification | closed
	OpeningBalance  Balances
	ClosingBalance  Balances // conteo declarado por el cajero al cerrar
	ExpectedBalance Balances // calculado al cerrar replicando las transacciones
	Difference      Balances // ClosingBalance - ExpectedBalance
	Notes           string
	VerifiedBy      string
	OpenedAt        time.Time
	ClosedAt        *time.Time
	VerifiedAt      *time.Time
}

// IsActive indica si la sesión bloquea la apertura de otra.
func (s *CashSession) IsActive() bool {
	return s.Status == SessionStatusOpen || s.Status == SessionStatusPendingVerification
}
