package app

import (
	"database/sql"
	"fmt"
	"time"

	"polisee/internal/config"
	"polisee/internal/db"
	"polisee/internal/engine"
	"polisee/internal/migrate"
	"polisee/internal/persist"
	"polisee/internal/seed"
	"polisee/internal/store"
)

// App is the assembled application: open database, loaded aggregate,
// mutation façade, config. Close releases the database handle.
type App struct {
	DB      *sql.DB
	Store   *store.Store
	Persist persist.Adapter
	Engine  engine.Engine
	Config  *config.Config
	Seeded  bool
}

// Open bootstraps a workspace: opens the database, runs migrations, loads
// the stored snapshot, seeds starter templates when the task collection is
// empty, and wires the engine.
func Open(workspace string) (*App, error) {
	cfg, err := config.Load(workspace)
	if err != nil {
		return nil, err
	}
	conn, err := db.Open(db.Config{Workspace: workspace})
	if err != nil {
		return nil, err
	}
	if err := migrate.Migrate(conn); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	adapter := persist.Adapter{DB: conn, Now: time.Now}
	snap, err := adapter.Load()
	if err != nil {
		conn.Close()
		return nil, err
	}
	st := store.New(snap)
	seeded, err := seed.Apply(st, adapter, time.Now)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("seed: %w", err)
	}
	return &App{
		DB:      conn,
		Store:   st,
		Persist: adapter,
		Engine:  engine.New(st, adapter),
		Config:  cfg,
		Seeded:  seeded,
	}, nil
}

func (a *App) Close() error {
	return a.DB.Close()
}
