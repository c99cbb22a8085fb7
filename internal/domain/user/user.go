// Package user holds the account records and the role model that gates
// admin, kitchen, and courier operations.
package user

import (
	"context"
	"time"

	"github.com/go-faster/errors"
)

// Role is a user's authorization role.
type Role string

const (
	RoleCliente       Role = "cliente"
	RoleAdministrador Role = "administrador"
	RoleCocinero      Role = "cocinero"
	RoleRepartidor    Role = "repartidor"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleCliente, RoleAdministrador, RoleCocinero, RoleRepartidor:
		return true
	}
	return false
}

// Sentinel errors.
var (
	ErrNotFound    = errors.New("usuario no encontrado")
	ErrEmailExists = errors.New("el email ya está registrado")
)

// User is an account. HashedPassword is a bcrypt hash, never the plaintext.
type User struct {
	ID             string
	Email          string
	HashedPassword string
	Rol            Role
	Nombre         string
	Direccion      string
	Comuna         string
	Telefono       string
	RecibirPromos  bool
	CreatedAt      time.Time
}

// Repository defines persistence operations for users.
type Repository interface {
	Create(ctx context.Context, u *User) error
	// GetByID returns the user, or ErrNotFound.
	GetByID(ctx context.Context, id string) (*User, error)
	// GetByEmail returns the user, or ErrNotFound.
	GetByEmail(ctx context.Context, email string) (*User, error)
}
