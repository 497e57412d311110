// Command noticesync delivers pending Feishu notes into the daily notice.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	_ "time/tzdata"

	"github.com/custodia-labs/noticesync/internal/adapters/driven/config/file"
	"github.com/custodia-labs/noticesync/internal/adapters/driven/feishu"
	"github.com/custodia-labs/noticesync/internal/adapters/driven/notice"
	"github.com/custodia-labs/noticesync/internal/adapters/driven/snapshot"
	"github.com/custodia-labs/noticesync/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/noticesync/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/noticesync/internal/adapters/driving/cli"
	"github.com/custodia-labs/noticesync/internal/core/domain"
	"github.com/custodia-labs/noticesync/internal/core/ports/driven"
	"github.com/custodia-labs/noticesync/internal/core/ports/driving"
	"github.com/custodia-labs/noticesync/internal/core/services"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := cli.Execute(ctx, version, bootstrap)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

// bootstrap wires the adapters into the core services.
func bootstrap(_ context.Context, opts cli.Options) (*cli.Services, error) {
	configStore, err := file.NewConfigStore(opts.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	settingsService := services.NewSettingsService(configStore,
		services.WithSnapshotMode(opts.Record, opts.Offline))
	if opts.SettingsOnly {
		return &cli.Services{Settings: settingsService}, nil
	}

	settings, err := settingsService.Get()
	if err != nil {
		return nil, err
	}

	store, err := sqlite.NewStore(settings.DataDir)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	deliveries := store.DeliveryStore()

	syncer, err := services.NewReloadingSyncer(settingsService, syncerFactory(deliveries))
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	return &cli.Services{
		Syncer:         syncer,
		Settings:       settingsService,
		Scheduler:      services.NewScheduler(settings.Scheduler, store.SchedulerStore(), syncer),
		SchedulerStore: store.SchedulerStore(),
		Deliveries:     deliveries,
		Watch: func(ctx context.Context) error {
			return file.Watch(ctx, settingsService.Path(), syncer.OnConfigChange)
		},
		Close: store.Close,
	}, nil
}

// syncerFactory builds a NoticeSyncService for one version of the settings.
// Offline runs write to a throwaway ledger.
func syncerFactory(deliveries driven.DeliveryStore) services.SyncerFactory {
	return func(settings *domain.Settings) (driving.NoticeSyncer, error) {
		remotes, err := remoteCollections(settings)
		if err != nil {
			return nil, err
		}
		ledger := deliveries
		if settings.Snapshot.Offline {
			ledger = memory.NewDeliveryStore()
		}
		return services.NewNoticeSyncService(
			settings.Resources(),
			remotes,
			notice.NewStore(settings.Notice),
			settings.Notice,
			ledger,
		), nil
	}
}

// remoteCollections returns the live Feishu adapters, wrapped for recording
// or replaced by snapshot replay depending on the snapshot mode.
func remoteCollections(settings *domain.Settings) (map[domain.ResourceKind]driven.RemoteCollection, error) {
	var dir *snapshot.Dir
	if settings.Snapshot.Record || settings.Snapshot.Offline {
		path := settings.Snapshot.Dir
		if path == "" {
			base, err := file.DefaultDir()
			if err != nil {
				return nil, err
			}
			path = filepath.Join(base, "snapshots")
		}
		dir = snapshot.NewDir(path)
	}

	if settings.Snapshot.Offline {
		replayer := snapshot.NewReplayer(dir)
		return map[domain.ResourceKind]driven.RemoteCollection{
			domain.ResourceDocument: replayer,
			domain.ResourceTable:    replayer,
		}, nil
	}

	client := feishu.NewClient(settings.Feishu, feishu.NewTenantTokenProvider(settings.Feishu))
	remotes := map[domain.ResourceKind]driven.RemoteCollection{
		domain.ResourceDocument: feishu.NewDocumentCollection(client),
		domain.ResourceTable:    feishu.NewTableCollection(client, settings.Table.ContentField),
	}
	if settings.Snapshot.Record {
		for kind, remote := range remotes {
			remotes[kind] = snapshot.NewRecorder(remote, dir)
		}
	}
	return remotes, nil
}
