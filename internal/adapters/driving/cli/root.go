// Package cli implements the noticesync command line.
package cli

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/noticesync/internal/core/ports/driven"
	"github.com/custodia-labs/noticesync/internal/core/ports/driving"
	"github.com/custodia-labs/noticesync/internal/logger"
)

// Options are the global flags passed to the bootstrap.
type Options struct {
	ConfigPath string
	Verbose    bool
	Offline    bool
	Record     bool

	// SettingsOnly asks for the settings service alone, so that an
	// invalid config can still be inspected.
	SettingsOnly bool
}

// Services are the wired components the commands run against.
// Any field may be nil when the bootstrap could not provide it.
type Services struct {
	Syncer         driving.NoticeSyncer
	Settings       driving.SettingsService
	Scheduler      driving.Scheduler
	SchedulerStore driven.SchedulerStore
	Deliveries     driven.DeliveryStore

	// Watch blocks until ctx ends, invoking reloads on config changes.
	Watch func(ctx context.Context) error

	// Close releases storage handles.
	Close func() error
}

// Bootstrap builds the services once the global flags are parsed.
type Bootstrap func(ctx context.Context, opts Options) (*Services, error)

var (
	version   = "dev"
	bootstrap Bootstrap
	opts      Options
)

// Wired services, set by the bootstrap and replaced in tests.
var (
	noticeSyncer    driving.NoticeSyncer
	settingsService driving.SettingsService
	scheduler       driving.Scheduler
	schedulerStore  driven.SchedulerStore
	deliveryStore   driven.DeliveryStore
	configWatch     func(ctx context.Context) error
	closeServices   func() error
)

var rootCmd = &cobra.Command{
	Use:   "noticesync",
	Short: "Deliver remote notes into the daily notice",
	Long: `noticesync copies pending notes from a Feishu document and table into
today's local notice file, marks them as delivered, and purges delivered
notes once they are old enough.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&opts.ConfigPath, "config", "", "config file (default ~/.noticesync/config.toml)")
	flags.BoolVarP(&opts.Verbose, "verbose", "v", false, "log every step")
	flags.BoolVar(&opts.Offline, "offline", false, "replay recorded snapshots and skip every remote change")
	flags.BoolVar(&opts.Record, "record", false, "record remote fetches as snapshots")
	rootCmd.MarkFlagsMutuallyExclusive("offline", "record")
}

// Execute runs the root command.
func Execute(ctx context.Context, v string, b Bootstrap) error {
	version = v
	bootstrap = b
	rootCmd.SetOut(os.Stdout)
	err := rootCmd.ExecuteContext(ctx)
	if closeErr := teardown(); err == nil {
		err = closeErr
	}
	return err
}

// servicesFor returns the "services" annotation of cmd or its nearest
// annotated parent. Cobra's own help and completion commands need none.
func servicesFor(cmd *cobra.Command) string {
	for c := cmd; c != nil; c = c.Parent() {
		if v, ok := c.Annotations["services"]; ok {
			return v
		}
		if c.Name() == "help" || c.Name() == "completion" {
			return "none"
		}
	}
	return "all"
}

func setup(cmd *cobra.Command, _ []string) error {
	logger.SetVerbose(opts.Verbose)
	need := servicesFor(cmd)
	if bootstrap == nil || need == "none" {
		return nil
	}

	o := opts
	o.SettingsOnly = need == "settings"
	svc, err := bootstrap(cmd.Context(), o)
	if err != nil {
		return err
	}
	noticeSyncer = svc.Syncer
	settingsService = svc.Settings
	scheduler = svc.Scheduler
	schedulerStore = svc.SchedulerStore
	deliveryStore = svc.Deliveries
	configWatch = svc.Watch
	closeServices = svc.Close
	return nil
}

func teardown() error {
	if closeServices == nil {
		return nil
	}
	err := closeServices()
	closeServices = nil
	return err
}
