package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"animetracker/internal/daemonrun"
	"animetracker/internal/titleparse"
)

func newSearchCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "search QUERY",
		Short: "Query the torrent index directly",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := strings.Join(args, " ")
			return ctx.withServices(func(rt *daemonrun.Runtime) error {
				results, err := rt.Index.Search(cmd.Context(), query)
				if err != nil {
					return err
				}
				if ctx.jsonOutput() {
					return writeJSON(cmd, results)
				}
				if len(results) == 0 {
					printLine(cmd, "No results for %q", query)
					return nil
				}
				rows := make([][]string, 0, len(results))
				for _, result := range results {
					rows = append(rows, []string{
						result.Title,
						result.Size,
						strconv.Itoa(result.Seeders),
						strconv.Itoa(result.Leechers),
						result.Date,
					})
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable(
					[]string{"Title", "Size", "Seeders", "Leechers", "Date"},
					rows,
					[]columnAlignment{alignLeft, alignRight, alignRight, alignRight, alignLeft},
				))
				return nil
			})
		},
	}
}

func newParseCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "parse TITLE",
		Short: "Show how a release title is read",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			title := strings.Join(args, " ")
			return ctx.withServices(func(rt *daemonrun.Runtime) error {
				candidate, fromCache, err := rt.Parser.ParseWithSource(cmd.Context(), title)
				if err != nil && !errors.Is(err, titleparse.ErrUnparseable) {
					return err
				}
				if ctx.jsonOutput() {
					return writeJSON(cmd, map[string]any{"parsed": candidate, "fromCache": fromCache})
				}
				if candidate == nil {
					printLine(cmd, "Could not parse %q", title)
					return nil
				}
				batch := "no"
				if candidate.Batch {
					batch = "yes"
					if candidate.HasBatchRange() {
						batch = fmt.Sprintf("episodes %d-%d", candidate.BatchStart, candidate.BatchEnd)
					}
				}
				rows := [][]string{
					{"Show", candidate.ShowName},
					{"Season", strconv.Itoa(candidate.Season)},
					{"Episode", strconv.Itoa(candidate.Episode)},
					{"Quality", candidate.Quality},
					{"Group", candidate.Group},
					{"Batch", batch},
					{"Cached", strconv.FormatBool(fromCache)},
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Field", "Value"}, rows, []columnAlignment{alignLeft, alignLeft}))
				return nil
			})
		},
	}
}

func newAbsoluteCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "absolute NAME SEASON EPISODE",
		Short: "Convert a season-relative episode to absolute numbering",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			season, episode, err := parseSeasonEpisode(args[1], args[2])
			if err != nil {
				return err
			}
			return ctx.withServices(func(rt *daemonrun.Runtime) error {
				absolute, err := rt.Tracker.AbsoluteEpisode(cmd.Context(), args[0], season, episode)
				if err != nil {
					return err
				}
				if ctx.jsonOutput() {
					return writeJSON(cmd, map[string]int{"absoluteEpisode": absolute})
				}
				printLine(cmd, "%d", absolute)
				return nil
			})
		},
	}
}
