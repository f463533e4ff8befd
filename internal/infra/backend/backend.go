// Package backend opens the ResultStore selected in config.
package backend

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/bryanwahyu/chat-pattern-explorer/internal/config"
	domain "github.com/bryanwahyu/chat-pattern-explorer/internal/domain/analysis"
	mysqlp "github.com/bryanwahyu/chat-pattern-explorer/internal/infra/db/mysql"
	"github.com/bryanwahyu/chat-pattern-explorer/internal/infra/db/postgres"
	"github.com/bryanwahyu/chat-pattern-explorer/internal/infra/storage"
)

const (
	DriverFile     = "file"
	DriverMemory   = "memory"
	DriverRedis    = "redis"
	DriverMinio    = "minio"
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
)

var ErrUnknownDriver = errors.New("unknown storage driver")

// Backend is an opened store plus what the server needs around it.
type Backend struct {
	Driver string
	Store  domain.ResultStore
	// Ping is nil when the backend has nothing to check.
	Ping func(ctx context.Context) error

	closers []func() error
}

func (b *Backend) Close() error {
	var errs []error
	for i := len(b.closers) - 1; i >= 0; i-- {
		errs = append(errs, b.closers[i]())
	}
	return errors.Join(errs...)
}

type pinger interface {
	Ping(ctx context.Context) error
}

// Open connects the backend named by cfg.Storage.Driver.
func Open(ctx context.Context, cfg *config.Config, log *zap.Logger) (*Backend, error) {
	if log == nil {
		log = zap.NewNop()
	}
	sc := cfg.Storage
	b := &Backend{Driver: sc.Driver}

	switch sc.Driver {
	case DriverMemory:
		b.Store = storage.NewMemoryStore()

	case DriverFile:
		if err := os.MkdirAll(filepath.Dir(sc.File.Path), 0o755); err != nil {
			return nil, fmt.Errorf("create store dir: %w", err)
		}
		b.Store = storage.NewFileStore(sc.File.Path)

	case DriverRedis:
		rs, err := storage.NewRedisStore(ctx, sc.Redis.Addr, sc.Redis.Password, sc.Redis.DB, sc.Key)
		if err != nil {
			return nil, err
		}
		b.Store = rs
		b.closers = append(b.closers, rs.Close)

	case DriverMinio:
		ms, err := storage.New(ctx,
			sc.Minio.Endpoint,
			sc.Minio.Region,
			sc.Minio.BucketName,
			sc.Minio.AccessKey,
			sc.Minio.SecretKey,
			sc.Minio.UseSSL,
			sc.Minio.Prefix,
			sc.Key,
		)
		if err != nil {
			return nil, fmt.Errorf("minio init: %w", err)
		}
		b.Store = ms
		log.Info("saved results object", zap.String("url", ms.URL()))

	case DriverMySQL:
		db, err := mysqlp.Connect(ctx, cfg.MySQLDSN())
		if err != nil {
			return nil, fmt.Errorf("mysql connect: %w", err)
		}
		rs := mysqlp.NewResultStore(db, sc.Key)
		if err := rs.EnsureSchema(ctx); err != nil {
			db.Close()
			return nil, fmt.Errorf("mysql schema: %w", err)
		}
		b.Store = rs
		b.closers = append(b.closers, db.Close)

	case DriverPostgres:
		db, err := postgres.Connect(ctx, cfg.PostgresDSN())
		if err != nil {
			return nil, fmt.Errorf("postgres connect: %w", err)
		}
		rs := postgres.NewResultStore(db, sc.Key)
		if err := rs.EnsureSchema(ctx); err != nil {
			db.Close()
			return nil, fmt.Errorf("postgres schema: %w", err)
		}
		b.Store = rs
		b.closers = append(b.closers, db.Close)

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, sc.Driver)
	}

	if p, ok := b.Store.(pinger); ok {
		b.Ping = p.Ping
	}
	log.Info("storage backend opened", zap.String("driver", b.Driver))
	return b, nil
}
