package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// NoticeFormat is the file format of the local notice artifact.
type NoticeFormat string

const (
	NoticeFormatDocx NoticeFormat = "docx"
	NoticeFormatXlsx NoticeFormat = "xlsx"
	NoticeFormatText NoticeFormat = "txt"
)

// IsValid returns true if the format is recognised.
func (f NoticeFormat) IsValid() bool {
	switch f {
	case NoticeFormatDocx, NoticeFormatXlsx, NoticeFormatText:
		return true
	default:
		return false
	}
}

// String returns the string representation of the format.
func (f NoticeFormat) String() string {
	return string(f)
}

// FeishuSettings holds the remote API credentials and client tuning.
type FeishuSettings struct {
	AppID     string
	AppSecret string
	BaseURL   string

	// RequestsPerSecond caps outgoing API calls.
	RequestsPerSecond float64

	// Timeout bounds one HTTP round trip.
	Timeout time.Duration
}

// NoticeSettings locates the local notice artifact.
type NoticeSettings struct {
	// Dir holds dated notices and their monthly templates.
	Dir string

	// Label is the filename suffix, e.g. "通知" in "2024-01-03 通知.docx".
	Label string

	Format NoticeFormat

	// Heading is matched by substring to find the insertion anchor.
	Heading string

	// SecondPassPrefix keeps the original delivered timestamp on re-surfaced items.
	SecondPassPrefix bool
}

// DocumentSettings configures the document pipeline.
type DocumentSettings struct {
	Enabled   bool
	ID        string
	Heading   string
	Cutoff    time.Duration
	Retention time.Duration
}

// TableSettings configures the table pipeline.
type TableSettings struct {
	Enabled      bool
	AppToken     string
	TableID      string
	ContentField string
	Cutoff       time.Duration
	Retention    time.Duration
}

// ResourceID returns the identifier the table adapter expects.
func (t TableSettings) ResourceID() string {
	return t.AppToken + "/" + t.TableID
}

// SnapshotSettings controls recording and replay of remote fetches.
type SnapshotSettings struct {
	Dir     string
	Record  bool
	Offline bool
}

// Settings is the validated runtime configuration.
type Settings struct {
	// Location is used for all delivered-marker timestamps.
	Location *time.Location

	// DataDir holds the sqlite database.
	DataDir string

	Feishu    FeishuSettings
	Notice    NoticeSettings
	Document  DocumentSettings
	Table     TableSettings
	Scheduler SchedulerConfig
	Snapshot  SnapshotSettings
}

// DefaultSettings returns settings with every optional value filled in.
func DefaultSettings() Settings {
	return Settings{
		Location: time.Local,
		Feishu: FeishuSettings{
			BaseURL:           "https://open.feishu.cn",
			RequestsPerSecond: 3,
			Timeout:           30 * time.Second,
		},
		Notice: NoticeSettings{
			Label:            "通知",
			Format:           NoticeFormatDocx,
			SecondPassPrefix: true,
		},
		Document: DocumentSettings{
			Cutoff:    DefaultCutoff,
			Retention: DefaultDocumentRetention,
		},
		Table: TableSettings{
			Cutoff:    DefaultCutoff,
			Retention: DefaultTableRetention,
		},
		Scheduler: DefaultSchedulerConfig(),
	}
}

// Validate checks the settings needed by the enabled resources.
func (s Settings) Validate() error {
	var errs []error
	if !s.Snapshot.Offline {
		if strings.TrimSpace(s.Feishu.AppID) == "" {
			errs = append(errs, errors.New("feishu.app_id is required"))
		}
		if strings.TrimSpace(s.Feishu.AppSecret) == "" {
			errs = append(errs, errors.New("feishu.app_secret is required"))
		}
	}
	if !s.Document.Enabled && !s.Table.Enabled {
		errs = append(errs, errors.New("no resource enabled"))
	}
	if s.Document.Enabled {
		if s.Document.ID == "" {
			errs = append(errs, errors.New("document.id is required"))
		}
		if s.Document.Heading == "" {
			errs = append(errs, errors.New("document.heading is required"))
		}
	}
	if s.Table.Enabled && (s.Table.AppToken == "" || s.Table.TableID == "" || s.Table.ContentField == "") {
		errs = append(errs, errors.New("table.app_token, table.table_id and table.content_field are required"))
	}
	if s.Notice.Dir == "" {
		errs = append(errs, errors.New("notice.dir is required"))
	}
	if s.Notice.Heading == "" {
		errs = append(errs, errors.New("notice.heading is required"))
	}
	if !s.Notice.Format.IsValid() {
		errs = append(errs, fmt.Errorf("notice.format %q is not one of docx, xlsx, txt", s.Notice.Format))
	}
	if s.Snapshot.Record && s.Snapshot.Offline {
		errs = append(errs, errors.New("snapshot.record and snapshot.offline are mutually exclusive"))
	}
	if (s.Snapshot.Record || s.Snapshot.Offline) && s.Snapshot.Dir == "" {
		errs = append(errs, errors.New("snapshot.dir is required to record or replay"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidInput, errors.Join(errs...))
	}
	return nil
}

// Resources returns the enabled resources in processing order.
func (s Settings) Resources() []Resource {
	var out []Resource
	if s.Document.Enabled {
		out = append(out, Resource{
			Kind:    ResourceDocument,
			ID:      s.Document.ID,
			Heading: s.Document.Heading,
			Policy: ClassifyPolicy{
				Cutoff:    s.Document.Cutoff,
				Retention: s.Document.Retention,
				Location:  s.Location,
			},
		})
	}
	if s.Table.Enabled {
		out = append(out, Resource{
			Kind: ResourceTable,
			ID:   s.Table.ResourceID(),
			Policy: ClassifyPolicy{
				Cutoff:    s.Table.Cutoff,
				Retention: s.Table.Retention,
				Location:  s.Location,
			},
		})
	}
	return out
}

// Resource returns the enabled resource of the given kind.
func (s Settings) Resource(kind ResourceKind) (Resource, error) {
	for _, r := range s.Resources() {
		if r.Kind == kind {
			return r, nil
		}
	}
	return Resource{}, fmt.Errorf("%w: %s", ErrResourceDisabled, kind)
}

// ParseClock converts "HH:MM" into an offset from midnight.
func ParseClock(s string) (time.Duration, error) {
	t, err := time.Parse("15:04", strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("%w: clock %q must be HH:MM", ErrInvalidInput, s)
	}
	return time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute, nil
}
