package services

import (
	"fmt"
	"os"
	"time"

	"github.com/custodia-labs/noticesync/internal/core/domain"
	"github.com/custodia-labs/noticesync/internal/core/ports/driven"
	"github.com/custodia-labs/noticesync/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyTimezone = "timezone"
	keyDataDir  = "data_dir"

	keyFeishuAppID     = "feishu.app_id"
	keyFeishuAppSecret = "feishu.app_secret"
	keyFeishuBaseURL   = "feishu.base_url"
	keyFeishuRPS       = "feishu.requests_per_second"
	keyFeishuTimeout   = "feishu.timeout"

	keyNoticeDir        = "notice.dir"
	keyNoticeLabel      = "notice.label"
	keyNoticeFormat     = "notice.format"
	keyNoticeHeading    = "notice.heading"
	keyNoticeSecondPass = "notice.second_pass_prefix"

	keyDocumentEnabled   = "document.enabled"
	keyDocumentID        = "document.id"
	keyDocumentHeading   = "document.heading"
	keyDocumentCutoff    = "document.cutoff"
	keyDocumentRetention = "document.retention"

	keyTableEnabled      = "table.enabled"
	keyTableAppToken     = "table.app_token"
	keyTableID           = "table.table_id"
	keyTableContentField = "table.content_field"
	keyTableCutoff       = "table.cutoff"
	keyTableRetention    = "table.retention"

	keySchedulerEnabled = "scheduler.enabled"
	keySchedulerSync    = "scheduler.sync_interval"
	keySchedulerPurge   = "scheduler.purge_interval"

	keySnapshotDir     = "snapshot.dir"
	keySnapshotRecord  = "snapshot.record"
	keySnapshotOffline = "snapshot.offline"
)

// Environment variables that override the credentials in the file.
//
//nolint:gosec // G101: variable names, not credentials.
const (
	EnvAppID     = "NOTICESYNC_APP_ID"
	EnvAppSecret = "NOTICESYNC_APP_SECRET"
)

// SettingsOption customises a SettingsService.
type SettingsOption func(*SettingsService)

// WithEnv replaces the environment lookup.
func WithEnv(lookup func(string) (string, bool)) SettingsOption {
	return func(s *SettingsService) {
		s.lookupEnv = lookup
	}
}

// WithSnapshotMode forces recording or offline replay regardless of the file.
func WithSnapshotMode(record, offline bool) SettingsOption {
	return func(s *SettingsService) {
		s.forceRecord = record
		s.forceOffline = offline
	}
}

// SettingsService reads domain.Settings from a ConfigStore.
type SettingsService struct {
	configStore  driven.ConfigStore
	lookupEnv    func(string) (string, bool)
	forceRecord  bool
	forceOffline bool
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore, opts ...SettingsOption) *SettingsService {
	s := &SettingsService{
		configStore: configStore,
		lookupEnv:   os.LookupEnv,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Get reads, defaults and validates the settings.
func (s *SettingsService) Get() (*domain.Settings, error) {
	settings := domain.DefaultSettings()
	p := &parser{store: s.configStore}

	if tz := s.configStore.GetString(keyTimezone); tz != "" {
		loc, err := time.LoadLocation(tz)
		if err != nil {
			return nil, fmt.Errorf("%w: timezone %q: %w", domain.ErrInvalidInput, tz, err)
		}
		settings.Location = loc
	}
	settings.DataDir = s.configStore.GetString(keyDataDir)

	settings.Feishu = domain.FeishuSettings{
		AppID:             s.credential(keyFeishuAppID, EnvAppID),
		AppSecret:         s.credential(keyFeishuAppSecret, EnvAppSecret),
		BaseURL:           p.str(keyFeishuBaseURL, settings.Feishu.BaseURL),
		RequestsPerSecond: p.float(keyFeishuRPS, settings.Feishu.RequestsPerSecond),
		Timeout:           p.duration(keyFeishuTimeout, settings.Feishu.Timeout),
	}

	settings.Notice = domain.NoticeSettings{
		Dir:              s.configStore.GetString(keyNoticeDir),
		Label:            p.str(keyNoticeLabel, settings.Notice.Label),
		Format:           domain.NoticeFormat(p.str(keyNoticeFormat, settings.Notice.Format.String())),
		Heading:          s.configStore.GetString(keyNoticeHeading),
		SecondPassPrefix: p.boolean(keyNoticeSecondPass, settings.Notice.SecondPassPrefix),
	}

	settings.Document = domain.DocumentSettings{
		Enabled:   p.boolean(keyDocumentEnabled, s.configStore.GetString(keyDocumentID) != ""),
		ID:        s.configStore.GetString(keyDocumentID),
		Heading:   s.configStore.GetString(keyDocumentHeading),
		Cutoff:    p.clock(keyDocumentCutoff, settings.Document.Cutoff),
		Retention: p.duration(keyDocumentRetention, settings.Document.Retention),
	}

	settings.Table = domain.TableSettings{
		Enabled:      p.boolean(keyTableEnabled, s.configStore.GetString(keyTableID) != ""),
		AppToken:     s.configStore.GetString(keyTableAppToken),
		TableID:      s.configStore.GetString(keyTableID),
		ContentField: s.configStore.GetString(keyTableContentField),
		Cutoff:       p.clock(keyTableCutoff, settings.Table.Cutoff),
		Retention:    p.duration(keyTableRetention, settings.Table.Retention),
	}

	settings.Scheduler.Enabled = p.boolean(keySchedulerEnabled, settings.Scheduler.Enabled)
	settings.Scheduler.TaskConfigs[domain.TaskIDSyncPending] = p.task(keySchedulerSync,
		settings.Scheduler.GetTaskConfig(domain.TaskIDSyncPending))
	settings.Scheduler.TaskConfigs[domain.TaskIDPurgeStale] = p.task(keySchedulerPurge,
		settings.Scheduler.GetTaskConfig(domain.TaskIDPurgeStale))

	settings.Snapshot = domain.SnapshotSettings{
		Dir:     s.configStore.GetString(keySnapshotDir),
		Record:  s.forceRecord || s.configStore.GetBool(keySnapshotRecord),
		Offline: s.forceOffline || s.configStore.GetBool(keySnapshotOffline),
	}
	if s.forceOffline {
		settings.Snapshot.Record = false
	}

	if err := p.err(); err != nil {
		return nil, err
	}
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	return &settings, nil
}

// Reload re-reads the configuration file.
func (s *SettingsService) Reload() error {
	return s.configStore.Load()
}

// Path returns the configuration file path.
func (s *SettingsService) Path() string {
	return s.configStore.Path()
}

func (s *SettingsService) credential(key, env string) string {
	if s.lookupEnv != nil {
		if v, ok := s.lookupEnv(env); ok && v != "" {
			return v
		}
	}
	return s.configStore.GetString(key)
}

// parser reads typed values and collects the first malformed one.
type parser struct {
	store driven.ConfigStore
	errs  []error
}

func (p *parser) str(key, defaultVal string) string {
	val := p.store.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func (p *parser) boolean(key string, defaultVal bool) bool {
	if _, exists := p.store.Get(key); !exists {
		return defaultVal
	}
	return p.store.GetBool(key)
}

func (p *parser) float(key string, defaultVal float64) float64 {
	val, exists := p.store.Get(key)
	if !exists {
		return defaultVal
	}
	switch v := val.(type) {
	case float64:
		return v
	case int64:
		return float64(v)
	case int:
		return float64(v)
	default:
		p.errs = append(p.errs, fmt.Errorf("%s must be a number", key))
		return defaultVal
	}
}

func (p *parser) duration(key string, defaultVal time.Duration) time.Duration {
	val := p.store.GetString(key)
	if val == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(val)
	if err != nil || d <= 0 {
		p.errs = append(p.errs, fmt.Errorf("%s: %q is not a positive duration", key, val))
		return defaultVal
	}
	return d
}

func (p *parser) clock(key string, defaultVal time.Duration) time.Duration {
	val := p.store.GetString(key)
	if val == "" {
		return defaultVal
	}
	d, err := domain.ParseClock(val)
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("%s: %w", key, err))
		return defaultVal
	}
	return d
}

// task reads an interval; "0" or "off" disables the task.
func (p *parser) task(key string, cfg domain.TaskConfig) domain.TaskConfig {
	switch val := p.store.GetString(key); val {
	case "":
		return cfg
	case "0", "off":
		return domain.TaskConfig{Enabled: false, Interval: cfg.Interval}
	default:
		cfg.Interval = p.duration(key, cfg.Interval)
		cfg.Enabled = true
		return cfg
	}
}

func (p *parser) err() error {
	if len(p.errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %v", domain.ErrInvalidInput, p.errs[0])
}
