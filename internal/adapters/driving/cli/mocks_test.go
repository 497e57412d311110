package cli

import (
	"bytes"
	"context"
	"sync"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/custodia-labs/noticesync/internal/core/domain"
)

// mockNoticeSyncer implements driving.NoticeSyncer for testing.
type mockNoticeSyncer struct {
	mu    sync.Mutex
	calls []string

	syncReports  []domain.SyncReport
	purgeReports []domain.PurgeReport
	syncErr      error
	purgeErr     error
}

func (m *mockNoticeSyncer) record(call string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, call)
}

func (m *mockNoticeSyncer) SyncPending(_ context.Context, kind domain.ResourceKind) (*domain.SyncReport, error) {
	m.record("sync " + string(kind))
	return &domain.SyncReport{Resource: kind, Delivered: 2, Marked: 2}, m.syncErr
}

func (m *mockNoticeSyncer) PurgeStale(_ context.Context, kind domain.ResourceKind) (*domain.PurgeReport, error) {
	m.record("purge " + string(kind))
	return &domain.PurgeReport{Resource: kind, Planned: 3, Deleted: 3}, m.purgeErr
}

func (m *mockNoticeSyncer) SyncAll(context.Context) ([]domain.SyncReport, error) {
	m.record("sync all")
	return m.syncReports, m.syncErr
}

func (m *mockNoticeSyncer) PurgeAll(context.Context) ([]domain.PurgeReport, error) {
	m.record("purge all")
	return m.purgeReports, m.purgeErr
}

// mockSchedulerStore implements driven.SchedulerStore for testing.
type mockSchedulerStore struct {
	tasks   []domain.ScheduledTask
	history map[string][]domain.TaskResult
	limits  []int
}

func (m *mockSchedulerStore) GetTask(_ context.Context, id string) (*domain.ScheduledTask, error) {
	for i := range m.tasks {
		if m.tasks[i].ID == id {
			return &m.tasks[i], nil
		}
	}
	return nil, nil
}

func (m *mockSchedulerStore) ListTasks(context.Context) ([]domain.ScheduledTask, error) {
	return append([]domain.ScheduledTask(nil), m.tasks...), nil
}

func (m *mockSchedulerStore) SaveTask(context.Context, *domain.ScheduledTask) error { return nil }

func (m *mockSchedulerStore) DeleteTask(context.Context, string) error { return nil }

func (m *mockSchedulerStore) RecordResult(context.Context, *domain.TaskResult) error { return nil }

func (m *mockSchedulerStore) GetTaskHistory(_ context.Context, id string, limit int) ([]domain.TaskResult, error) {
	m.limits = append(m.limits, limit)
	return m.history[id], nil
}

func (m *mockSchedulerStore) PruneHistory(context.Context, int) error { return nil }

// mockDeliveryStore implements driven.DeliveryStore for testing.
type mockDeliveryStore struct {
	all      []domain.Delivery
	unmarked []domain.Delivery
	since    time.Time
}

func (m *mockDeliveryStore) RecordDelivery(context.Context, domain.Delivery) error { return nil }

func (m *mockDeliveryStore) MarkDelivered(context.Context, string, string) error { return nil }

func (m *mockDeliveryStore) ListUnmarked(_ context.Context, since time.Time) ([]domain.Delivery, error) {
	m.since = since
	return m.unmarked, nil
}

func (m *mockDeliveryStore) ListDeliveries(_ context.Context, limit int) ([]domain.Delivery, error) {
	if limit > 0 && limit < len(m.all) {
		return m.all[:limit], nil
	}
	return m.all, nil
}

// mockScheduler implements driving.Scheduler for testing.
type mockScheduler struct {
	started bool
	stopped bool
	err     error
}

func (m *mockScheduler) Start(context.Context) error {
	m.started = true
	return m.err
}

func (m *mockScheduler) Stop() error {
	m.stopped = true
	return nil
}

// mockSettings implements driving.SettingsService for testing.
type mockSettings struct {
	settings *domain.Settings
	err      error
}

func (m *mockSettings) Get() (*domain.Settings, error) { return m.settings, m.err }

func (m *mockSettings) Reload() error { return nil }

func (m *mockSettings) Path() string { return "/home/u/.noticesync/config.toml" }

// execute runs the root command with args and returns its output.
func execute(args ...string) (string, error) {
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	defer rootCmd.SetArgs(nil)
	defer resetFlags(rootCmd)
	defer resetContexts(rootCmd)

	err := rootCmd.Execute()
	return buf.String(), err
}

// withBootstrap installs a bootstrap that only reports it was called.
func withBootstrap(onCall func()) func() {
	old := bootstrap
	bootstrap = func(context.Context, Options) (*Services, error) {
		onCall()
		return &Services{}, nil
	}
	return func() { bootstrap = old }
}

// withServices swaps the wired services for the duration of a test.
func withServices(syncer *mockNoticeSyncer, store *mockSchedulerStore, deliveries *mockDeliveryStore) func() {
	oldSyncer, oldStore, oldDeliveries := noticeSyncer, schedulerStore, deliveryStore
	noticeSyncer, schedulerStore, deliveryStore = nil, nil, nil
	if syncer != nil {
		noticeSyncer = syncer
	}
	if store != nil {
		schedulerStore = store
	}
	if deliveries != nil {
		deliveryStore = deliveries
	}
	return func() {
		noticeSyncer, schedulerStore, deliveryStore = oldSyncer, oldStore, oldDeliveries
		resetContexts(rootCmd)
	}
}

// resetFlags restores every flag of cmd and its children to its default,
// so that values parsed by one test do not leak into the next.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

// resetContexts clears the context cobra stores on cmd and its children
// during Execute, so that a cancelled context does not reach the next test.
func resetContexts(cmd *cobra.Command) {
	cmd.SetContext(nil) //nolint:staticcheck // nil restores cobra's background default
	for _, c := range cmd.Commands() {
		resetContexts(c)
	}
}
