package main

import (
	"fmt"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/gtin-cli/internal/store"
)

var quotaCmd = &cobra.Command{
	Use:   "quota",
	Short: "Show today's search quota usage",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck
		if err := st.Migrate(ctx); err != nil {
			return err
		}

		today := store.Day(time.Now())
		used, err := st.UsedOn(ctx, today)
		if err != nil {
			return eris.Wrap(err, "quota")
		}

		remaining := cfg.Quota.DailyLimit - used
		if remaining < 0 {
			remaining = 0
		}

		fmt.Printf("Day:         %s\n", today)
		fmt.Printf("Daily limit: %d\n", cfg.Quota.DailyLimit)
		fmt.Printf("Used:        %d\n", used)
		fmt.Printf("Remaining:   %d\n", remaining)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(quotaCmd)
}
