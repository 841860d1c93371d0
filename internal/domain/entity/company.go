package entity

import "time"

// Company representa una organización/tenant del sistema. Todas las entidades
// del motor pertenecen a exactamente una empresa; el acceso cruzado se corta
// en la frontera HTTP (claims del JWT), no en la lógica del motor.
type Company struct {
	ID        string
	Name      string
	RIF       string // registro fiscal (con o sin dígito de verificación)
	Address   string
	Phone     string
	Email     string
	Status    string // active, suspended, inactive
	CreatedAt time.Time
	UpdatedAt time.Time
}
