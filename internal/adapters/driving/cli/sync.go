package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/noticesync/internal/core/domain"
)

var syncCmd = &cobra.Command{
	Use:   "sync [document|table]",
	Short: "Deliver pending notes to today's notice",
	Long: `Promotes unresolved comments, then copies every pending note of the
region into today's notice and marks it as delivered.
If a resource is given, only that resource is synchronised.
Otherwise, every enabled resource is synchronised.`,
	Args:      cobra.MaximumNArgs(1),
	ValidArgs: []string{string(domain.ResourceDocument), string(domain.ResourceTable)},
	RunE:      runSync,
}

var purgeCmd = &cobra.Command{
	Use:   "purge [document|table]",
	Short: "Delete stale and blank notes",
	Long: `Deletes delivered notes older than the retention window, blank notes,
and images once every note of the region is stale.
If a resource is given, only that resource is purged.`,
	Args:      cobra.MaximumNArgs(1),
	ValidArgs: []string{string(domain.ResourceDocument), string(domain.ResourceTable)},
	RunE:      runPurge,
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Synchronise then purge every enabled resource",
	Long: `Runs one full cycle: sync for every enabled resource, then purge.
An authentication failure stops the cycle before the purge.`,
	Args: cobra.NoArgs,
	RunE: runCycle,
}

func init() {
	rootCmd.AddCommand(syncCmd)
	rootCmd.AddCommand(purgeCmd)
	rootCmd.AddCommand(runCmd)
}

func runSync(cmd *cobra.Command, args []string) error {
	if noticeSyncer == nil {
		return errors.New("sync service not configured")
	}
	ctx := cmd.Context()

	if len(args) > 0 {
		kind, err := domain.ParseResourceKind(args[0])
		if err != nil {
			return err
		}
		cmd.Printf("Synchronising %s...\n", kind)
		report, err := noticeSyncer.SyncPending(ctx, kind)
		if report != nil {
			printSyncReport(cmd, *report)
		}
		if err != nil {
			return fmt.Errorf("sync failed: %w", err)
		}
		return nil
	}

	cmd.Println("Synchronising all resources...")
	reports, err := noticeSyncer.SyncAll(ctx)
	for _, r := range reports {
		printSyncReport(cmd, r)
	}
	if err != nil {
		return fmt.Errorf("sync failed: %w", err)
	}
	return nil
}

func runPurge(cmd *cobra.Command, args []string) error {
	if noticeSyncer == nil {
		return errors.New("sync service not configured")
	}
	ctx := cmd.Context()

	if len(args) > 0 {
		kind, err := domain.ParseResourceKind(args[0])
		if err != nil {
			return err
		}
		cmd.Printf("Purging %s...\n", kind)
		report, err := noticeSyncer.PurgeStale(ctx, kind)
		if report != nil {
			printPurgeReport(cmd, *report)
		}
		if err != nil {
			return fmt.Errorf("purge failed: %w", err)
		}
		return nil
	}

	cmd.Println("Purging all resources...")
	reports, err := noticeSyncer.PurgeAll(ctx)
	for _, r := range reports {
		printPurgeReport(cmd, r)
	}
	if err != nil {
		return fmt.Errorf("purge failed: %w", err)
	}
	return nil
}

func runCycle(cmd *cobra.Command, _ []string) error {
	if noticeSyncer == nil {
		return errors.New("sync service not configured")
	}
	ctx := cmd.Context()

	syncReports, syncErr := noticeSyncer.SyncAll(ctx)
	for _, r := range syncReports {
		printSyncReport(cmd, r)
	}
	if errors.Is(syncErr, domain.ErrAuth) {
		return fmt.Errorf("sync failed: %w", syncErr)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	purgeReports, purgeErr := noticeSyncer.PurgeAll(ctx)
	for _, r := range purgeReports {
		printPurgeReport(cmd, r)
	}

	var errs []error
	if syncErr != nil {
		errs = append(errs, fmt.Errorf("sync failed: %w", syncErr))
	}
	if purgeErr != nil {
		errs = append(errs, fmt.Errorf("purge failed: %w", purgeErr))
	}
	return errors.Join(errs...)
}

func printSyncReport(cmd *cobra.Command, r domain.SyncReport) {
	if r.Skipped != "" {
		cmd.Printf("%s: skipped (%s)\n", r.Resource, r.Skipped)
		return
	}
	cmd.Printf("%s: promoted %d, delivered %d, marked %d, failed %d\n",
		r.Resource, r.Promoted, r.Delivered, r.Marked, r.Failed+r.PromoteFailed)
}

func printPurgeReport(cmd *cobra.Command, r domain.PurgeReport) {
	cmd.Printf("%s: deleted %d of %d, failed %d\n", r.Resource, r.Deleted, r.Planned, r.Failed)
}
