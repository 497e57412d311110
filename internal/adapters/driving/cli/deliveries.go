package cli

import (
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/noticesync/internal/core/domain"
)

var (
	deliveriesLimit    int
	deliveriesUnmarked bool
	deliveriesSince    time.Duration
)

var deliveriesCmd = &cobra.Command{
	Use:   "deliveries",
	Short: "List notes delivered to the notice",
	Long: `Lists the delivery ledger, newest first.
With --unmarked, lists only notes written to the notice whose remote copy
was never marked as delivered. Those notes will be delivered again on the
next sync unless marked by hand.`,
	Args: cobra.NoArgs,
	RunE: runDeliveries,
}

func init() {
	deliveriesCmd.Flags().IntVarP(&deliveriesLimit, "limit", "n", 20, "entries to show")
	deliveriesCmd.Flags().BoolVar(&deliveriesUnmarked, "unmarked", false, "only entries never marked remotely")
	deliveriesCmd.Flags().DurationVar(&deliveriesSince, "since", 7*24*time.Hour, "how far back --unmarked looks")
	rootCmd.AddCommand(deliveriesCmd)
}

func runDeliveries(cmd *cobra.Command, _ []string) error {
	if deliveryStore == nil {
		return errors.New("delivery ledger not configured")
	}
	ctx := cmd.Context()

	var (
		entries []domain.Delivery
		err     error
	)
	if deliveriesUnmarked {
		entries, err = deliveryStore.ListUnmarked(ctx, time.Now().Add(-deliveriesSince))
	} else {
		entries, err = deliveryStore.ListDeliveries(ctx, deliveriesLimit)
	}
	if err != nil {
		return fmt.Errorf("list deliveries: %w", err)
	}
	if len(entries) == 0 {
		cmd.Println("No deliveries found.")
		return nil
	}

	return deliveryListing(entries).render(cmd.OutOrStdout())
}

func deliveryListing(entries []domain.Delivery) listing {
	l := listing{headers: []string{"DELIVERED", "RESOURCE", "STATUS", "NOTICE", "TEXT"}, statusCol: 2}
	for _, d := range entries {
		status := statusMarked
		if !d.Marked {
			status = statusUnmarked
		}
		l.rows = append(l.rows, []string{
			formatTime(d.DeliveredAt),
			string(d.Resource),
			status,
			filepath.Base(d.NoticePath),
			truncate(d.Text, 60),
		})
	}
	return l
}

// truncate shortens s to at most n runes.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
