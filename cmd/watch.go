package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/pineunity/apmec-horizon/internal/apmec"
	"github.com/pineunity/apmec-horizon/internal/cli"
)

var (
	watchFlags    cli.CommandFlags
	watchFilters  []string
	watchInterval time.Duration
	watchCount    int
)

var watchCmd = &cobra.Command{
	Use:   "watch KIND",
	Short: "Poll a resource list until interrupted",
	Long: `Poll a resource list on an interval and print it after every poll.

Rows keep their identity across polls, so only changed values differ between
two outputs. When the orchestration API is briefly unavailable the last known
list is shown with a warning and polling continues. Polling stops when the
API reports an error that retrying will not fix.

The interval defaults to panel.poll_interval from the configuration.

Examples:
  mecpanel watch mecas
  mecpanel watch nss --interval 5s --count 3`,
	Args:              cobra.ExactArgs(1),
	ValidArgsFunction: completeKinds(listKindNames),
	RunE:              runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
	cli.RegisterCommonFlags(watchCmd, &watchFlags)
	watchCmd.Flags().StringArrayVar(&watchFilters, "filter", nil, "Filter by attribute, key=value (repeatable)")
	watchCmd.Flags().DurationVar(&watchInterval, "interval", 0, "Time between polls")
	watchCmd.Flags().IntVar(&watchCount, "count", 0, "Stop after this many polls (0 watches until interrupted)")
}

func runWatch(cmd *cobra.Command, args []string) error {
	kind, err := parseKindArg(args[0])
	if err != nil {
		return err
	}
	if kind == apmec.KindEvent {
		return fmt.Errorf("events are listed per resource, use 'mecpanel events KIND ID'")
	}
	if watchCount < 0 {
		return fmt.Errorf("--count must not be negative")
	}
	filters, err := parseFilters(watchFilters)
	if err != nil {
		return err
	}

	executor, err := newExecutor(cmd, &watchFlags)
	if err != nil {
		return err
	}
	defer executor.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return executor.Watch(ctx, kind, filters, cli.WatchOptions{
		Interval: watchInterval,
		Count:    watchCount,
	})
}
