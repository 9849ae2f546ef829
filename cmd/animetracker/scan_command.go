package main

import (
	"context"
	"fmt"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"animetracker/internal/daemonrun"
	"animetracker/internal/episodes"
	"animetracker/internal/scan"
)

func newScanCommand(ctx *commandContext) *cobra.Command {
	var showID int64
	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Search the index for every needed episode and record matches",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			signalCtx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			return ctx.withServices(func(rt *daemonrun.Runtime) error {
				shows, err := loadScanShows(signalCtx, rt, showID)
				if err != nil {
					return err
				}
				summary, err := rt.Scanner.Run(signalCtx, shows)
				if err != nil {
					return err
				}
				if ctx.jsonOutput() {
					return writeJSON(cmd, summary)
				}
				renderScanSummary(cmd, summary)
				return nil
			})
		},
	}
	cmd.Flags().Int64Var(&showID, "show", 0, "Scan only the show with this ID")
	return cmd
}

func loadScanShows(ctx context.Context, rt *daemonrun.Runtime, showID int64) ([]episodes.TrackedShow, error) {
	if showID > 0 {
		show, err := rt.Tracker.GetShow(ctx, showID)
		if err != nil {
			return nil, err
		}
		return []episodes.TrackedShow{*show}, nil
	}
	return rt.Tracker.ListShows(ctx)
}

func renderScanSummary(cmd *cobra.Command, summary scan.Summary) {
	status := "completed"
	if summary.Cancelled {
		status = "cancelled"
	}
	printLine(cmd, "Scan %s in %s: %d episodes processed, %d matches", status, summary.Duration.Round(time.Millisecond), summary.Processed, summary.Found)
	if len(summary.Matches) == 0 {
		return
	}
	rows := make([][]string, 0, len(summary.Matches))
	for _, match := range summary.Matches {
		rows = append(rows, []string{
			strconv.FormatInt(match.ShowID, 10),
			match.ShowName,
			episodes.Episode{Season: match.Season, Episode: match.Episode}.String(),
			match.Title,
		})
	}
	fmt.Fprintln(cmd.OutOrStdout(), renderTable(
		[]string{"Show", "Name", "Episode", "Release"},
		rows,
		[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft},
	))
}
