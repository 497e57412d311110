package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/noticesync/internal/core/domain"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Show the effective settings",
	Long: `Shows the settings after defaults and environment overrides are applied.
Secrets are masked. Fails with the list of problems when the config is invalid.`,
	Args:        cobra.NoArgs,
	Annotations: map[string]string{"services": "settings"},
	RunE:        runSettingsShow,
}

func init() {
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	cmd.Printf("Config file: %s\n\n", settingsService.Path())

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	cmd.Println("[General]")
	cmd.Printf("  Timezone: %s\n", settings.Location)
	cmd.Printf("  Data dir: %s\n", orDefault(settings.DataDir))
	cmd.Println()

	cmd.Println("[Feishu]")
	cmd.Printf("  App ID: %s\n", orNotSet(settings.Feishu.AppID))
	if settings.Feishu.AppSecret != "" {
		cmd.Printf("  App secret: %s\n", maskSecret(settings.Feishu.AppSecret))
	} else {
		cmd.Printf("  App secret: (not set)\n")
	}
	cmd.Printf("  Base URL: %s\n", settings.Feishu.BaseURL)
	cmd.Printf("  Rate: %.1f requests/s, timeout %s\n", settings.Feishu.RequestsPerSecond, settings.Feishu.Timeout)
	cmd.Println()

	cmd.Println("[Notice]")
	cmd.Printf("  Dir: %s\n", settings.Notice.Dir)
	cmd.Printf("  File: YYYY-MM-DD %s.%s\n", settings.Notice.Label, settings.Notice.Format)
	cmd.Printf("  Heading: %s\n", settings.Notice.Heading)
	cmd.Printf("  Keep delivered time on second pass: %s\n", yesNo(settings.Notice.SecondPassPrefix))
	cmd.Println()

	cmd.Println("[Document]")
	if settings.Document.Enabled {
		cmd.Printf("  ID: %s\n", settings.Document.ID)
		cmd.Printf("  Heading: %s\n", settings.Document.Heading)
		cmd.Printf("  Cutoff: %s, retention: %s\n", clock(settings.Document.Cutoff), settings.Document.Retention)
	} else {
		cmd.Println("  Enabled: no")
	}
	cmd.Println()

	cmd.Println("[Table]")
	if settings.Table.Enabled {
		cmd.Printf("  Table: %s\n", settings.Table.ResourceID())
		cmd.Printf("  Content field: %s\n", settings.Table.ContentField)
		cmd.Printf("  Cutoff: %s, retention: %s\n", clock(settings.Table.Cutoff), settings.Table.Retention)
	} else {
		cmd.Println("  Enabled: no")
	}
	cmd.Println()

	cmd.Println("[Scheduler]")
	cmd.Printf("  Enabled: %s\n", yesNo(settings.Scheduler.Enabled))
	for _, id := range domain.TaskIDs() {
		tc := settings.Scheduler.GetTaskConfig(id)
		if tc.Enabled && tc.Interval > 0 {
			cmd.Printf("  %s: every %s\n", id, tc.Interval)
		} else {
			cmd.Printf("  %s: off\n", id)
		}
	}

	if settings.Snapshot.Record || settings.Snapshot.Offline {
		cmd.Println()
		cmd.Println("[Snapshot]")
		cmd.Printf("  Dir: %s\n", settings.Snapshot.Dir)
		cmd.Printf("  Record: %s, offline: %s\n", yesNo(settings.Snapshot.Record), yesNo(settings.Snapshot.Offline))
	}
	return nil
}

// maskSecret shows only the ends of a secret.
func maskSecret(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}

// clock formats a duration since midnight as HH:MM.
func clock(d time.Duration) string {
	return fmt.Sprintf("%02d:%02d", int(d.Hours()), int(d.Minutes())%60)
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func orNotSet(s string) string {
	if s == "" {
		return "(not set)"
	}
	return s
}

func orDefault(s string) string {
	if s == "" {
		return "(default)"
	}
	return s
}
