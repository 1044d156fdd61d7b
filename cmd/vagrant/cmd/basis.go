package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/lseinc/vagrant/internal/config"
	"github.com/lseinc/vagrant/internal/core"
	"github.com/lseinc/vagrant/internal/database"
	"github.com/lseinc/vagrant/internal/datadir"
	"github.com/lseinc/vagrant/internal/plugin"
	"github.com/lseinc/vagrant/internal/plugin/builtin"
	"github.com/lseinc/vagrant/internal/scheduler"
	"github.com/lseinc/vagrant/internal/serverclient"
)

// session bundles the constructed basis with its teardown.
type session struct {
	Basis *core.Basis
	Sync  *scheduler.StateSync

	db *database.DB
}

// Close releases the session: state sync stops first, then the basis
// cascade, then the database.
func (s *session) Close() error {
	if s.Sync != nil {
		s.Sync.Stop()
	}
	err := s.Basis.Close()
	if dbErr := s.db.Close(); err == nil {
		err = dbErr
	}
	return err
}

// buildSession constructs the basis for CLI commands: configuration,
// embedded state service, data directory, and the builtin plugin set.
func buildSession(ctx context.Context, basisName string) (*session, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading configuration: %w", err)
	}

	if !cfg.Service.Local() {
		return nil, fmt.Errorf("remote state service %q is not available in this build", cfg.Service.Endpoint)
	}

	db, err := database.New(cfg.Database, slog.Default())
	if err != nil {
		return nil, err
	}

	client, err := serverclient.NewLocal(db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	dir, err := datadir.NewBasis(cfg.Storage.BaseDir)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	registry := plugin.NewRegistry()
	builtin.Register(registry)

	basis, err := core.NewBasis(ctx,
		core.WithBasisName(basisName),
		core.WithClient(client),
		core.WithBasisDataDir(dir),
		core.WithBasisConfig(cfg),
		core.WithRegistry(registry),
		core.WithLogger(slog.Default()),
	)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	s := &session{Basis: basis, db: db}

	if cfg.Sync.Enabled {
		stateSync, err := scheduler.New(slog.Default(), cfg.Sync.Cron, basis.SaveFull)
		if err != nil {
			_ = s.Close()
			return nil, err
		}
		stateSync.Start(ctx)
		s.Sync = stateSync
	}

	return s, nil
}
