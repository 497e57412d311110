package services

import (
	"context"
	"errors"
	"slices"
	"sync"
	"time"

	"github.com/custodia-labs/noticesync/internal/core/domain"
	"github.com/custodia-labs/noticesync/internal/core/ports/driven"
	"github.com/custodia-labs/noticesync/internal/core/ports/driving"
	"github.com/custodia-labs/noticesync/internal/logger"
)

// Ensure Scheduler implements the interface.
var _ driving.Scheduler = (*Scheduler)(nil)

// historyKeep is the number of results retained per task.
const historyKeep = 100

// Scheduler runs the delivery and purge tasks on their intervals.
// Due tasks run one after another, never concurrently, in domain.TaskIDs
// order, so a purge never overlaps a delivery.
type Scheduler struct {
	config domain.SchedulerConfig
	store  driven.SchedulerStore
	syncer driving.NoticeSyncer

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	wg      sync.WaitGroup
}

// NewScheduler creates a scheduler with configuration.
func NewScheduler(
	config domain.SchedulerConfig,
	store driven.SchedulerStore,
	syncer driving.NoticeSyncer,
) *Scheduler {
	return &Scheduler{
		config: config,
		store:  store,
		syncer: syncer,
	}
}

// Start begins the scheduler loop. This method blocks until Stop is called
// or ctx is cancelled.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = true
	s.stopCh = make(chan struct{})
	s.mu.Unlock()

	if err := s.initialiseTasks(ctx); err != nil {
		logger.Error("scheduler: failed to initialise tasks: %v", err)
	}

	return s.run(ctx)
}

// Stop shuts the loop down, waiting for a running task to finish.
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = false
	close(s.stopCh)
	s.mu.Unlock()

	s.wg.Wait()
	return nil
}

// initialiseTasks creates or refreshes every built-in task in the store.
func (s *Scheduler) initialiseTasks(ctx context.Context) error {
	names := map[string]string{
		domain.TaskIDSyncPending: "Sync Pending",
		domain.TaskIDPurgeStale:  "Purge Stale",
	}
	for _, id := range domain.TaskIDs() {
		cfg := s.config.GetTaskConfig(id)
		cfg.Enabled = cfg.Enabled && s.config.Enabled
		if cfg.Interval <= 0 {
			cfg.Enabled = false
		}
		if err := s.ensureTask(ctx, id, names[id], cfg); err != nil {
			return err
		}
	}
	return nil
}

// ensureTask creates or updates a task in the store.
func (s *Scheduler) ensureTask(ctx context.Context, id, name string, cfg domain.TaskConfig) error {
	task, err := s.store.GetTask(ctx, id)
	if err != nil {
		return err
	}

	if task == nil {
		task = &domain.ScheduledTask{
			ID:       id,
			Name:     name,
			Interval: cfg.Interval,
			Enabled:  cfg.Enabled,
			NextRun:  time.Now(),
		}
	} else {
		if task.Interval != cfg.Interval {
			task.Interval = cfg.Interval
			task.NextRun = time.Now().Add(cfg.Interval)
		}
		task.Enabled = cfg.Enabled
	}

	return s.store.SaveTask(ctx, task)
}

// run is the main scheduler loop.
func (s *Scheduler) run(ctx context.Context) error {
	s.checkAndRunDueTasks(ctx)

	ticker := time.NewTicker(1 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-s.stopCh:
			return nil
		case <-ticker.C:
			s.checkAndRunDueTasks(ctx)
		}
	}
}

// checkAndRunDueTasks runs every due task in execution order.
func (s *Scheduler) checkAndRunDueTasks(ctx context.Context) {
	tasks, err := s.store.ListTasks(ctx)
	if err != nil {
		logger.Error("scheduler: failed to list tasks: %v", err)
		return
	}

	order := domain.TaskIDs()
	slices.SortStableFunc(tasks, func(a, b domain.ScheduledTask) int {
		return taskRank(order, a.ID) - taskRank(order, b.ID)
	})

	now := time.Now()
	for i := range tasks {
		task := &tasks[i]
		if !task.Enabled {
			continue
		}
		if s.stopping(ctx) {
			return
		}
		if !task.NextRun.IsZero() && task.NextRun.After(now) {
			continue
		}
		// Later tasks would fail the same way; leave them due for the next tick.
		if err := s.runTask(ctx, task); errors.Is(err, domain.ErrAuth) {
			logger.Warn("scheduler: skipping remaining tasks after auth failure in %s", task.ID)
			return
		}
	}
}

func (s *Scheduler) stopping(ctx context.Context) bool {
	if ctx.Err() != nil {
		return true
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stopCh != nil && !s.running
}

func taskRank(order []string, id string) int {
	if i := slices.Index(order, id); i >= 0 {
		return i
	}
	return len(order)
}

// runTask executes a single task, records its outcome and returns its error.
func (s *Scheduler) runTask(ctx context.Context, task *domain.ScheduledTask) error {
	s.wg.Add(1)
	defer s.wg.Done()

	result := &domain.TaskResult{
		TaskID:    task.ID,
		StartedAt: time.Now(),
	}

	var err error
	switch task.ID {
	case domain.TaskIDSyncPending:
		result.ItemsProcessed, err = s.runSyncPending(ctx)
	case domain.TaskIDPurgeStale:
		result.ItemsProcessed, err = s.runPurgeStale(ctx)
	default:
		logger.Warn("scheduler: unknown task ID: %s", task.ID)
		return nil
	}

	result.EndedAt = time.Now()
	if err != nil {
		result.Success = false
		result.Error = err.Error()
		task.LastError = err.Error()
		logger.Error("scheduler: %s failed: %v", task.ID, err)
	} else {
		result.Success = true
		task.LastError = ""
		task.LastSuccess = result.EndedAt
	}

	task.LastRun = result.StartedAt
	task.NextRun = result.EndedAt.Add(task.Interval)

	if saveErr := s.store.SaveTask(ctx, task); saveErr != nil {
		logger.Error("scheduler: failed to save task %s: %v", task.ID, saveErr)
	}
	if recordErr := s.store.RecordResult(ctx, result); recordErr != nil {
		logger.Error("scheduler: failed to record result for %s: %v", task.ID, recordErr)
	}
	if pruneErr := s.store.PruneHistory(ctx, historyKeep); pruneErr != nil {
		logger.Error("scheduler: failed to prune history: %v", pruneErr)
	}
	return err
}

// runSyncPending delivers every enabled resource. Items processed counts
// promoted comments and delivered items.
func (s *Scheduler) runSyncPending(ctx context.Context) (int, error) {
	if s.syncer == nil {
		return 0, nil
	}
	reports, err := s.syncer.SyncAll(ctx)
	n := 0
	for _, r := range reports {
		n += r.ItemsProcessed()
	}
	return n, err
}

// runPurgeStale purges every enabled resource. Items processed counts
// deleted items.
func (s *Scheduler) runPurgeStale(ctx context.Context) (int, error) {
	if s.syncer == nil {
		return 0, nil
	}
	reports, err := s.syncer.PurgeAll(ctx)
	n := 0
	for _, r := range reports {
		n += r.Deleted
	}
	return n, err
}
