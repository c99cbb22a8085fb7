// Package auth issues and verifies the bearer tokens that protect the API,
// and registers new accounts with bcrypt-hashed passwords.
package auth

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/chocomania/backend/internal/domain/user"
)

// Sentinel errors.
var (
	ErrInvalidCredentials = errors.New("credenciales inválidas")
	ErrInvalidToken       = errors.New("token inválido")
)

// Claims is the verified identity carried by a bearer token.
type Claims struct {
	UserID string
	Rol    user.Role
}

// Service registers accounts and exchanges credentials for signed HS256
// tokens.
type Service struct {
	users  user.Repository
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewService creates a Service signing tokens with secret, valid for ttl.
func NewService(users user.Repository, secret string, ttl time.Duration) *Service {
	return &Service{
		users:  users,
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
}

// RegisterInput carries the fields of a new account. An empty Rol defaults
// to cliente.
type RegisterInput struct {
	Email         string
	Password      string
	Nombre        string
	Direccion     string
	Comuna        string
	Telefono      string
	RecibirPromos bool
	Rol           user.Role
}

// Register creates an account with a bcrypt-hashed password. It fails with
// user.ErrEmailExists when the email is already taken.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*user.User, error) {
	if _, err := s.users.GetByEmail(ctx, in.Email); err == nil {
		return nil, user.ErrEmailExists
	} else if !errors.Is(err, user.ErrNotFound) {
		return nil, errors.Wrap(err, "check email")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, errors.Wrap(err, "hash password")
	}

	rol := in.Rol
	if rol == "" {
		rol = user.RoleCliente
	}
	if !rol.Valid() {
		return nil, errors.Errorf("rol desconocido: %q", rol)
	}

	u := &user.User{
		ID:             uuid.New().String(),
		Email:          in.Email,
		HashedPassword: string(hash),
		Rol:            rol,
		Nombre:         in.Nombre,
		Direccion:      in.Direccion,
		Comuna:         in.Comuna,
		Telefono:       in.Telefono,
		RecibirPromos:  in.RecibirPromos,
		CreatedAt:      s.now().UTC(),
	}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, errors.Wrap(err, "create user")
	}
	return u, nil
}

// Login verifies the password and returns a signed token plus the account.
// Unknown emails and wrong passwords are both ErrInvalidCredentials.
func (s *Service) Login(ctx context.Context, email, password string) (string, *user.User, error) {
	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, errors.Wrap(err, "get user")
	}
	if bcrypt.CompareHashAndPassword([]byte(u.HashedPassword), []byte(password)) != nil {
		return "", nil, ErrInvalidCredentials
	}

	now := s.now()
	claims := jwt.MapClaims{
		"sub":     u.ID,
		"rol":     string(u.Rol),
		"iat":     now.Unix(),
		"exp":     now.Add(s.ttl).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", nil, errors.Wrap(err, "sign token")
	}
	return signed, u, nil
}

// Verify parses a bearer token and returns its claims. Expired, malformed,
// or foreign-signature tokens all fail with ErrInvalidToken.
func (s *Service) Verify(raw string) (*Claims, error) {
	token, err := jwt.Parse(raw, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return s.secret, nil
	}, jwt.WithLeeway(30*time.Second))
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	m, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}
	sub, _ := m["sub"].(string)
	rol, _ := m["rol"].(string)
	if sub == "" || !user.Role(rol).Valid() {
		return nil, ErrInvalidToken
	}
	return &Claims{UserID: sub, Rol: user.Role(rol)}, nil
}
