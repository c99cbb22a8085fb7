// Command catalog-ingest bulk-imports products from gzipped CSV exports
// (nombre,descripcion,precio,tipo,stock per line). Files are decompressed
// and parsed concurrently; rows land in productos with upsert semantics so
// re-running an export is safe.
package main

import (
	"context"
	"encoding/csv"
	"flag"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"sync/atomic"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	pgzip "github.com/klauspost/pgzip"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/chocomania/backend/internal/storage/postgres"
)

const upsertProductSQL = `INSERT INTO productos (id, nombre, descripcion, precio, tipo, stock, activo)
	VALUES ($1, $2, $3, $4, $5, $6, TRUE)
	ON CONFLICT (id) DO UPDATE
	SET descripcion = EXCLUDED.descripcion, precio = EXCLUDED.precio,
		tipo = EXCLUDED.tipo, stock = EXCLUDED.stock, activo = TRUE`

func main() {
	var (
		dataDir     string
		databaseURL string
		workers     int
	)

	flag.StringVar(&dataDir, "data-dir", "data", "directory containing catalogo*.csv.gz files")
	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.IntVar(&workers, "workers", 4, "number of concurrent file workers")
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

	if err := run(ctx, dataDir, databaseURL, workers); err != nil {
		slog.Error("catalog ingest failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("catalog ingest completed successfully")
}

func run(ctx context.Context, dataDir, databaseURL string, workers int) error {
	files, err := filepath.Glob(filepath.Join(dataDir, "catalogo*.csv.gz"))
	if err != nil {
		return errors.Wrap(err, "glob data dir")
	}
	if len(files) == 0 {
		return errors.Errorf("no catalogo*.csv.gz files under %s", dataDir)
	}

	pool, err := postgres.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	if err := postgres.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	var total atomic.Int64
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for _, file := range files {
		g.Go(func() error {
			n, err := ingestFile(ctx, pool, file)
			if err != nil {
				return errors.Wrapf(err, "ingest %s", file)
			}
			total.Add(n)
			slog.Info("file ingested", slog.String("file", file), slog.Int64("rows", n))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	slog.Info("all files ingested", slog.Int64("total_rows", total.Load()))
	return nil
}

func ingestFile(ctx context.Context, pool *pgxpool.Pool, path string) (int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, errors.Wrap(err, "open")
	}
	defer f.Close()

	gz, err := pgzip.NewReader(f)
	if err != nil {
		return 0, errors.Wrap(err, "open gzip stream")
	}
	defer gz.Close()

	r := csv.NewReader(gz)
	r.FieldsPerRecord = 5

	var rows int64
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return rows, errors.Wrap(err, "read csv record")
		}

		precio, err := decimal.NewFromString(record[2])
		if err != nil {
			return rows, errors.Wrapf(err, "bad price %q", record[2])
		}
		stock, err := strconv.Atoi(record[4])
		if err != nil {
			return rows, errors.Wrapf(err, "bad stock %q", record[4])
		}

		// Deterministic IDs keep re-imports idempotent per product name.
		id := uuid.NewSHA1(uuid.NameSpaceOID, []byte(record[0])).String()
		if _, err := pool.Exec(ctx, upsertProductSQL,
			id, record[0], record[1], precio, record[3], stock,
		); err != nil {
			return rows, errors.Wrapf(err, "upsert product %q", record[0])
		}
		rows++
	}
	return rows, nil
}
