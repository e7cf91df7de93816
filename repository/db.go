package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

type Config struct {
	DSN             string
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
	DialTimeout     time.Duration
}

// DBTX is the statement surface shared by pooled connections and transactions.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Conn is one connection checked out of the pool.
type Conn interface {
	DBTX
	Begin(ctx context.Context) (pgx.Tx, error)
	Release()
}

// Store owns the connection pool. It is created once at startup and closed
// once at shutdown.
type Store struct {
	pool    *pgxpool.Pool
	acquire func(ctx context.Context) (Conn, error)
	logger  *zap.Logger
}

// Open creates a pgx pool and verifies it can reach the database.
func Open(ctx context.Context, cfg Config, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	pc, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parse database config: %w", err)
	}
	if cfg.MaxConns > 0 {
		pc.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 {
		pc.MinConns = cfg.MinConns
	}
	if cfg.MaxConnLifetime > 0 {
		pc.MaxConnLifetime = cfg.MaxConnLifetime
	}
	if cfg.MaxConnIdleTime > 0 {
		pc.MaxConnIdleTime = cfg.MaxConnIdleTime
	}
	pc.ConnConfig.RuntimeParams["application_name"] = "vision-text-ocr"

	logger.Info("connecting to database",
		zap.String("host", pc.ConnConfig.Host),
		zap.Uint16("port", pc.ConnConfig.Port),
		zap.String("database", pc.ConnConfig.Database),
	)

	dialCtx := ctx
	if cfg.DialTimeout > 0 {
		var cancel context.CancelFunc
		dialCtx, cancel = context.WithTimeout(ctx, cfg.DialTimeout)
		defer cancel()
	}
	pool, err := pgxpool.NewWithConfig(dialCtx, pc)
	if err != nil {
		logger.Error("failed to connect to database", zap.Error(err))
		return nil, fmt.Errorf("create pool: %w", err)
	}
	if err := pool.Ping(dialCtx); err != nil {
		pool.Close()
		logger.Error("failed to connect to database", zap.Error(err))
		return nil, fmt.Errorf("ping database: %w", err)
	}

	logger.Info("database connection pool created")
	return newStore(pool, logger), nil
}

func newStore(pool *pgxpool.Pool, logger *zap.Logger) *Store {
	return &Store{
		pool: pool,
		acquire: func(ctx context.Context) (Conn, error) {
			c, err := pool.Acquire(ctx)
			if err != nil {
				return nil, err
			}
			return c, nil
		},
		logger: logger,
	}
}

// WithConnection checks out one connection for the duration of fn and
// always returns it to the pool, including when fn fails or panics.
func (s *Store) WithConnection(ctx context.Context, fn func(q Querier) error) error {
	return s.withConn(ctx, func(conn Conn) error {
		return fn(New(conn))
	})
}

func (s *Store) withConn(ctx context.Context, fn func(conn Conn) error) error {
	conn, err := s.acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()
	return fn(conn)
}

// EnsureSchema creates both tables and their indexes if they are missing.
// Safe to run on every startup.
func (s *Store) EnsureSchema(ctx context.Context) error {
	s.logger.Info("ensuring schema", zap.String("ocr_table", OCRResultsTable), zap.String("feedback_table", FeedbackTable))
	err := s.withConn(ctx, func(conn Conn) error {
		tx, err := conn.Begin(ctx)
		if err != nil {
			return fmt.Errorf("begin schema transaction: %w", err)
		}
		for _, stmt := range schemaStatements {
			if _, err := tx.Exec(ctx, stmt); err != nil {
				if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
					s.logger.Error("schema rollback failed", zap.Error(rbErr))
				}
				return fmt.Errorf("apply schema: %w", err)
			}
		}
		return tx.Commit(ctx)
	})
	if err != nil {
		return err
	}
	s.logger.Info("schema verified")
	return nil
}

// Ping checks the database is reachable within timeout.
func (s *Store) Ping(ctx context.Context, timeout time.Duration) error {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	return s.withConn(ctx, func(conn Conn) error {
		_, err := conn.Exec(ctx, "SELECT 1")
		return err
	})
}

// Close closes the pool.
func (s *Store) Close() {
	s.logger.Info("closing database connection pool")
	if s.pool != nil {
		s.pool.Close()
	}
	s.logger.Info("database connection pool closed")
}
