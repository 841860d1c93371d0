package repository

import "github.com/tu-usuario/comercio-pro/internal/domain/entity"

// UserRepository acceso a usuarios (frontera de identidad; el motor solo
// necesita login).
type UserRepository interface {
	FindByEmail(email string) (*entity.User, error)
	GetByID(id string) (*entity.User, error)
}

// CompanyRepository acceso a empresas (tenants).
type CompanyRepository interface {
	GetByID(id string) (*entity.Company, error)
}
