package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"animetracker/internal/daemonrun"
	"animetracker/internal/episodes"
	"animetracker/internal/tracker"
)

func newShowsCommand(ctx *commandContext) *cobra.Command {
	showsCmd := &cobra.Command{
		Use:   "shows",
		Short: "Manage tracked shows",
	}
	showsCmd.AddCommand(newShowsListCommand(ctx))
	showsCmd.AddCommand(newShowsAddCommand(ctx))
	showsCmd.AddCommand(newShowsRemoveCommand(ctx))
	showsCmd.AddCommand(newShowsRecalcCommand(ctx))
	showsCmd.AddCommand(newShowsToggleCommand(ctx))
	return showsCmd
}

func newShowsListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List tracked shows",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withServices(func(rt *daemonrun.Runtime) error {
				shows, err := rt.Tracker.ListShows(cmd.Context())
				if err != nil {
					return err
				}
				if ctx.jsonOutput() {
					return writeJSON(cmd, shows)
				}
				if len(shows) == 0 {
					printLine(cmd, "No shows tracked. Add one with `animetracker shows add NAME`.")
					return nil
				}
				rows := make([][]string, 0, len(shows))
				for _, show := range shows {
					rows = append(rows, []string{
						strconv.FormatInt(show.ID, 10),
						strings.Join(show.Names, " / "),
						fmt.Sprintf("%s-%s",
							episodes.Episode{Season: show.StartSeason, Episode: show.StartEpisode},
							episodes.Episode{Season: show.EndSeason, Episode: show.EndEpisode}),
						show.Quality,
						strconv.Itoa(len(show.Downloaded)),
						formatEpisodes(show.Needed, 4),
						formatTime(show.LastChecked),
					})
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable(
					[]string{"ID", "Names", "Range", "Quality", "Downloaded", "Needed", "Last Checked"},
					rows,
					[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignRight, alignLeft, alignLeft},
				))
				return nil
			})
		},
	}
}

func newShowsAddCommand(ctx *commandContext) *cobra.Command {
	var (
		alternates   []string
		startSeason  int
		startEpisode int
		endSeason    int
		endEpisode   int
		quality      string
	)
	cmd := &cobra.Command{
		Use:   "add NAME",
		Short: "Track a new show",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in := tracker.ShowInput{
				Names:        append([]string{args[0]}, alternates...),
				StartSeason:  startSeason,
				StartEpisode: startEpisode,
				EndSeason:    endSeason,
				EndEpisode:   endEpisode,
			}
			if !cmd.Flags().Changed("end-season") {
				in.EndSeason = startSeason
			}
			if cmd.Flags().Changed("quality") {
				in.Quality = &quality
			}
			return ctx.withServices(func(rt *daemonrun.Runtime) error {
				show, err := rt.Tracker.CreateShow(cmd.Context(), in)
				if err != nil {
					return err
				}
				if ctx.jsonOutput() {
					return writeJSON(cmd, show)
				}
				printLine(cmd, "Added show %d: %s (%d episodes needed)", show.ID, show.DisplayName(), len(show.Needed))
				return nil
			})
		},
	}
	cmd.Flags().StringSliceVarP(&alternates, "alias", "a", nil, "Alternate name used for searching and matching (repeatable)")
	cmd.Flags().IntVar(&startSeason, "start-season", 1, "First season to track")
	cmd.Flags().IntVar(&startEpisode, "start-episode", 1, "First episode to track")
	cmd.Flags().IntVar(&endSeason, "end-season", 1, "Last season to track")
	cmd.Flags().IntVar(&endEpisode, "end-episode", 12, "Last episode to track")
	cmd.Flags().StringVarP(&quality, "quality", "q", "1080p", "Quality filter; empty accepts any release")
	return cmd
}

func newShowsRemoveCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "remove ID",
		Short: "Stop tracking a show",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "show")
			if err != nil {
				return err
			}
			return ctx.withServices(func(rt *daemonrun.Runtime) error {
				if err := rt.Tracker.DeleteShow(cmd.Context(), id); err != nil {
					return err
				}
				printLine(cmd, "Removed show %d", id)
				return nil
			})
		},
	}
}

func newShowsRecalcCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "recalc ID",
		Short: "Recompute needed episodes from the range and the catalog",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "show")
			if err != nil {
				return err
			}
			return ctx.withServices(func(rt *daemonrun.Runtime) error {
				show, err := rt.Tracker.Recalculate(cmd.Context(), id)
				if err != nil {
					return err
				}
				if ctx.jsonOutput() {
					return writeJSON(cmd, show)
				}
				printLine(cmd, "%s: %d episodes needed", show.DisplayName(), len(show.Needed))
				return nil
			})
		},
	}
}

func newShowsToggleCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "toggle ID SEASON EPISODE",
		Short: "Flip an episode between downloaded and needed",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "show")
			if err != nil {
				return err
			}
			season, episode, err := parseSeasonEpisode(args[1], args[2])
			if err != nil {
				return err
			}
			return ctx.withServices(func(rt *daemonrun.Runtime) error {
				result, err := rt.Tracker.ToggleEpisode(cmd.Context(), id, season, episode)
				if err != nil {
					return err
				}
				if ctx.jsonOutput() {
					return writeJSON(cmd, result)
				}
				state := "needed"
				if result.IsDownloaded {
					state = "downloaded"
				}
				printLine(cmd, "%s is now %s", episodes.Episode{Season: season, Episode: episode}, state)
				return nil
			})
		},
	}
}

func parseID(raw, kind string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s ID %q", kind, raw)
	}
	return id, nil
}

func parseSeasonEpisode(rawSeason, rawEpisode string) (int, int, error) {
	season, err := strconv.Atoi(strings.TrimSpace(rawSeason))
	if err != nil {
		return 0, 0, fmt.Errorf("season must be a number, got %q", rawSeason)
	}
	episode, err := strconv.Atoi(strings.TrimSpace(rawEpisode))
	if err != nil {
		return 0, 0, fmt.Errorf("episode must be a number, got %q", rawEpisode)
	}
	return season, episode, nil
}
