// Kuppi Admin - Back Office for the Kuppi Tutorial Sharing Platform
// Copyright 2026 Kuppi Admin contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kuppihub/kuppi-admin

// Package store persists the platform's resources in an embedded DuckDB
// database. All queries are parameterized; this is the primary injection
// defense, the gate's denylist sanitizer is only defense in depth.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	_ "github.com/duckdb/duckdb-go/v2"

	"github.com/kuppihub/kuppi-admin/internal/logging"
)

// Sentinel errors returned by store operations. Handlers map these to
// client-visible statuses; every other error stays opaque to clients.
var (
	ErrNotFound  = errors.New("not found")
	ErrDuplicate = errors.New("already exists")
)

// Config holds database settings.
type Config struct {
	// Path is the database file location, or ":memory:".
	Path string `koanf:"path" validate:"required"`

	// Threads caps DuckDB worker threads. Zero means NumCPU.
	Threads int `koanf:"threads" validate:"min=0"`

	// MaxMemory is DuckDB's memory ceiling, e.g. "512MB".
	MaxMemory string `koanf:"max_memory"`
}

// Store is the resource store. Methods are safe for concurrent use; the
// underlying sql.DB pools connections.
type Store struct {
	conn *sql.DB
}

// New opens (creating if needed) the database at cfg.Path and ensures
// the schema exists.
func New(cfg Config) (*Store, error) {
	threads := cfg.Threads
	if threads <= 0 {
		threads = runtime.NumCPU()
	}
	maxMemory := cfg.MaxMemory
	if maxMemory == "" {
		maxMemory = "512MB"
	}

	if cfg.Path != ":memory:" {
		dir := filepath.Dir(cfg.Path)
		if dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0o750); err != nil {
				return nil, fmt.Errorf("failed to create database directory %s: %w", dir, err)
			}
		}
	}

	// Disable auto-install/auto-load so startup cannot hang in
	// restricted network environments.
	connStr := fmt.Sprintf("%s?access_mode=read_write&threads=%d&max_memory=%s&autoinstall_known_extensions=false&autoload_known_extensions=false",
		cfg.Path, threads, maxMemory)

	conn, err := sql.Open("duckdb", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	conn.SetMaxOpenConns(runtime.NumCPU())
	conn.SetMaxIdleConns(2)
	conn.SetConnMaxLifetime(time.Hour)
	conn.SetConnMaxIdleTime(5 * time.Minute)

	s := &Store{conn: conn}
	if err := s.initSchema(context.Background()); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	logging.Info().Str("path", cfg.Path).Int("threads", threads).Msg("Resource store ready")
	return s, nil
}

// Conn exposes the underlying pool for packages that persist their own
// rows, such as the audit writer.
func (s *Store) Conn() *sql.DB {
	return s.conn
}

// Ping verifies the database connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.conn.PingContext(ctx)
}

// Close closes the database.
func (s *Store) Close() error {
	return s.conn.Close()
}
