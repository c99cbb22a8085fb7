// Command seed-db loads the demo catalog, promotions, and staff accounts
// into PostgreSQL. Safe to re-run: existing rows are skipped.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"github.com/chocomania/backend/internal/domain/catalog"
	"github.com/chocomania/backend/internal/domain/user"
	"github.com/chocomania/backend/internal/storage/postgres"
)

type productJSON struct {
	ID          string          `json:"id"`
	Nombre      string          `json:"nombre"`
	Descripcion string          `json:"descripcion"`
	Precio      decimal.Decimal `json:"precio"`
	Tipo        string          `json:"tipo"`
	Stock       int             `json:"stock"`
}

type promotionJSON struct {
	ProductoID   string          `json:"producto_id"`
	PrecioOferta decimal.Decimal `json:"precio_oferta"`
	DiasVigencia int             `json:"dias_vigencia"`
}

type userJSON struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Rol      string `json:"rol"`
	Nombre   string `json:"nombre"`
}

type seedFile struct {
	Productos   []productJSON   `json:"productos"`
	Promociones []promotionJSON `json:"promociones"`
	Usuarios    []userJSON      `json:"usuarios"`
}

func main() {
	var (
		databaseURL string
		seedPath    string
	)

	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.StringVar(&seedPath, "seed-file", "db/seed/productos.json", "path to seed JSON file")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, databaseURL, seedPath); err != nil {
		slog.Error("seed failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("seed completed successfully")
}

func run(ctx context.Context, databaseURL, seedPath string) error {
	slog.Info("connecting to database")

	pool, err := postgres.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	slog.Info("running migrations")

	if err := postgres.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	data, err := os.ReadFile(seedPath)
	if err != nil {
		return errors.Wrap(err, "read seed file")
	}
	var seed seedFile
	if err := json.Unmarshal(data, &seed); err != nil {
		return errors.Wrap(err, "parse seed JSON")
	}

	products := postgres.NewProductRepository(pool)
	promotions := postgres.NewPromotionRepository(pool)
	users := postgres.NewUserRepository(pool)

	for _, p := range seed.Productos {
		id := p.ID
		if id == "" {
			id = uuid.New().String()
		}
		if _, err := products.GetByID(ctx, id); err == nil {
			continue
		}
		if err := products.Create(ctx, &catalog.Product{
			ID:          id,
			Nombre:      p.Nombre,
			Descripcion: p.Descripcion,
			Precio:      p.Precio,
			Tipo:        p.Tipo,
			Stock:       p.Stock,
			Activo:      true,
		}); err != nil {
			return errors.Wrapf(err, "seed product %q", p.Nombre)
		}
		slog.Info("seeded product", slog.String("nombre", p.Nombre))
	}

	for _, promo := range seed.Promociones {
		dias := promo.DiasVigencia
		if dias <= 0 {
			dias = 7
		}
		if err := promotions.Create(ctx, &catalog.Promotion{
			ID:           uuid.New().String(),
			ProductoID:   promo.ProductoID,
			PrecioOferta: promo.PrecioOferta,
			FechaInicio:  time.Now(),
			FechaTermino: time.Now().AddDate(0, 0, dias),
			Activo:       true,
		}); err != nil {
			return errors.Wrapf(err, "seed promotion for %q", promo.ProductoID)
		}
		slog.Info("seeded promotion", slog.String("producto_id", promo.ProductoID))
	}

	for _, u := range seed.Usuarios {
		if _, err := users.GetByEmail(ctx, u.Email); err == nil {
			continue
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(u.Password), bcrypt.DefaultCost)
		if err != nil {
			return errors.Wrap(err, "hash password")
		}
		rol := user.Role(u.Rol)
		if !rol.Valid() {
			rol = user.RoleCliente
		}
		if err := users.Create(ctx, &user.User{
			ID:             uuid.New().String(),
			Email:          u.Email,
			HashedPassword: string(hash),
			Rol:            rol,
			Nombre:         u.Nombre,
			RecibirPromos:  true,
			CreatedAt:      time.Now().UTC(),
		}); err != nil {
			return errors.Wrapf(err, "seed user %q", u.Email)
		}
		slog.Info("seeded user", slog.String("email", u.Email), slog.String("rol", string(rol)))
	}

	return nil
}
