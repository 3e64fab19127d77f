package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/ethpandaops/tapcheck/internal/config"
	"github.com/ethpandaops/tapcheck/internal/history"
	"github.com/ethpandaops/tapcheck/internal/report"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var errHistoryDisabled = errors.New("no history database configured, set --url or " + config.EnvClickhouseURL)

var (
	historyLimit int
	historyURL   string
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recently recorded runs",
	Long: `Lists the most recent runs stored in ClickHouse by --record, newest first,
with per-status counts.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		url := historyURL
		if url == "" {
			url = cfg.ClickhouseURL
		}

		if url == "" {
			return errHistoryDisabled
		}

		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}

		return showHistory(ctx, Logger, history.NewRecorder(Logger, url), historyLimit, cmd.OutOrStdout())
	},
}

func showHistory(ctx context.Context, log logrus.FieldLogger, recorder history.Recorder, limit int, out io.Writer) error {
	if err := recorder.Start(ctx); err != nil {
		return fmt.Errorf("failed to connect to history database: %w", err)
	}
	defer func() {
		if err := recorder.Stop(); err != nil {
			log.WithError(err).Warn("Failed to stop history recorder")
		}
	}()

	runs, err := recorder.Recent(ctx, limit)
	if err != nil {
		return fmt.Errorf("failed to load history: %w", err)
	}

	if len(runs) == 0 {
		fmt.Fprintln(out, "No recorded runs.")
		return nil
	}

	report.RenderTableTo(out, historyHeaders, historyRows(runs, report.NewColorHelper()),
		report.WithRightAligned(3, 4, 5, 6, 7, 8, 9))

	return nil
}

var historyHeaders = []string{"Run", "Started", "Executable", "Total", "Pass", "Fail", "XFail", "XPass", "Timeout", "Duration", "Result"}

func historyRows(runs []history.RunSummary, colors *report.ColorHelper) [][]string {
	rows := make([][]string, 0, len(runs))

	for _, r := range runs {
		result := colors.Success("✓ PASS")
		if !r.Success() {
			result = colors.Failure("✗ FAIL")
		}

		rows = append(rows, []string{
			r.ID.String()[:8],
			r.StartedAt.Local().Format("2006-01-02 15:04:05"),
			r.Executable,
			strconv.FormatUint(r.Total, 10),
			strconv.FormatUint(r.Passed, 10),
			strconv.FormatUint(r.Failed, 10),
			strconv.FormatUint(r.ExpectedFail, 10),
			strconv.FormatUint(r.UnexpectedPass, 10),
			strconv.FormatUint(r.Timeout, 10),
			report.FormatDuration(r.Duration),
			result,
		})
	}

	return rows
}

func init() {
	historyCmd.Flags().IntVar(&historyLimit, "limit", history.DefaultLimit, "Number of runs to show")
	historyCmd.Flags().StringVar(&historyURL, "url", "", "ClickHouse URL (default: $"+config.EnvClickhouseURL+")")
	rootCmd.AddCommand(historyCmd)
}
