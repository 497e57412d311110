package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/custodia-labs/noticesync/internal/core/domain"
	"github.com/custodia-labs/noticesync/internal/core/ports/driving"
	"github.com/custodia-labs/noticesync/internal/logger"
)

// Ensure ReloadingSyncer implements the interface.
var _ driving.NoticeSyncer = (*ReloadingSyncer)(nil)

// SyncerFactory builds a syncer for one set of settings.
type SyncerFactory func(settings *domain.Settings) (driving.NoticeSyncer, error)

// ReloadingSyncer delegates to a syncer rebuilt whenever the configuration
// changes. A run in progress keeps the syncer it started with.
type ReloadingSyncer struct {
	settings driving.SettingsService
	build    SyncerFactory

	mu      sync.RWMutex
	current driving.NoticeSyncer
}

// NewReloadingSyncer builds the initial syncer from the current settings.
func NewReloadingSyncer(settings driving.SettingsService, build SyncerFactory) (*ReloadingSyncer, error) {
	r := &ReloadingSyncer{settings: settings, build: build}
	cfg, err := settings.Get()
	if err != nil {
		return nil, err
	}
	if r.current, err = build(cfg); err != nil {
		return nil, err
	}
	return r, nil
}

// Reload re-reads the configuration and swaps in a new syncer. On any error
// the previous syncer stays active.
func (r *ReloadingSyncer) Reload() error {
	if err := r.settings.Reload(); err != nil {
		return fmt.Errorf("reload config: %w", err)
	}
	cfg, err := r.settings.Get()
	if err != nil {
		return fmt.Errorf("reload config: %w", err)
	}
	next, err := r.build(cfg)
	if err != nil {
		return fmt.Errorf("rebuild syncer: %w", err)
	}

	r.mu.Lock()
	r.current = next
	r.mu.Unlock()
	logger.Info("configuration reloaded from %s", r.settings.Path())
	return nil
}

// OnConfigChange is a watcher callback that logs reload failures.
func (r *ReloadingSyncer) OnConfigChange() {
	if err := r.Reload(); err != nil {
		logger.Warn("keeping previous configuration: %v", err)
	}
}

func (r *ReloadingSyncer) syncer() driving.NoticeSyncer {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.current
}

// SyncPending delegates to the current syncer.
func (r *ReloadingSyncer) SyncPending(ctx context.Context, kind domain.ResourceKind) (*domain.SyncReport, error) {
	return r.syncer().SyncPending(ctx, kind)
}

// PurgeStale delegates to the current syncer.
func (r *ReloadingSyncer) PurgeStale(ctx context.Context, kind domain.ResourceKind) (*domain.PurgeReport, error) {
	return r.syncer().PurgeStale(ctx, kind)
}

// SyncAll delegates to the current syncer.
func (r *ReloadingSyncer) SyncAll(ctx context.Context) ([]domain.SyncReport, error) {
	return r.syncer().SyncAll(ctx)
}

// PurgeAll delegates to the current syncer.
func (r *ReloadingSyncer) PurgeAll(ctx context.Context) ([]domain.PurgeReport, error) {
	return r.syncer().PurgeAll(ctx)
}
