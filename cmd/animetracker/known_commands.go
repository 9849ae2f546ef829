package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"animetracker/internal/daemonrun"
	"animetracker/internal/tracker"
)

func newKnownCommand(ctx *commandContext) *cobra.Command {
	knownCmd := &cobra.Command{
		Use:   "known",
		Short: "Manage the known-show catalog of season lengths",
	}
	knownCmd.AddCommand(newKnownListCommand(ctx))
	knownCmd.AddCommand(newKnownAddCommand(ctx))
	knownCmd.AddCommand(newKnownRemoveCommand(ctx))
	return knownCmd
}

func newKnownListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List catalog entries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withServices(func(rt *daemonrun.Runtime) error {
				catalog, err := rt.Tracker.Catalog(cmd.Context())
				if err != nil {
					return err
				}
				if ctx.jsonOutput() {
					return writeJSON(cmd, catalog)
				}
				if len(catalog) == 0 {
					printLine(cmd, "Catalog is empty.")
					return nil
				}
				rows := make([][]string, 0, len(catalog))
				for _, entry := range catalog {
					counts := make([]string, 0, len(entry.EpisodesPerSeason))
					total := 0
					for _, n := range entry.EpisodesPerSeason {
						counts = append(counts, strconv.Itoa(n))
						total += n
					}
					rows = append(rows, []string{
						strconv.FormatInt(entry.ID, 10),
						entry.Name,
						strings.Join(counts, ", "),
						strconv.Itoa(total),
					})
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable(
					[]string{"ID", "Name", "Episodes per Season", "Total"},
					rows,
					[]columnAlignment{alignRight, alignLeft, alignLeft, alignRight},
				))
				return nil
			})
		},
	}
}

func newKnownAddCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:     "add NAME COUNT...",
		Short:   "Record per-season episode counts for a show",
		Example: "  animetracker known add \"Shingeki no Kyojin\" 25 12 22 28",
		Args:    cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			counts := make([]int, 0, len(args)-1)
			for _, raw := range args[1:] {
				n, err := strconv.Atoi(strings.TrimSpace(raw))
				if err != nil {
					return fmt.Errorf("episode count must be a number, got %q", raw)
				}
				counts = append(counts, n)
			}
			return ctx.withServices(func(rt *daemonrun.Runtime) error {
				entry, err := rt.Tracker.CreateKnownShow(cmd.Context(), tracker.KnownShowInput{Name: args[0], EpisodesPerSeason: counts})
				if err != nil {
					return err
				}
				if ctx.jsonOutput() {
					return writeJSON(cmd, entry)
				}
				printLine(cmd, "Added known show %d: %s", entry.ID, entry.Name)
				return nil
			})
		},
	}
}

func newKnownRemoveCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "remove ID",
		Short: "Delete a catalog entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "known show")
			if err != nil {
				return err
			}
			return ctx.withServices(func(rt *daemonrun.Runtime) error {
				if err := rt.Tracker.DeleteKnownShow(cmd.Context(), id); err != nil {
					return err
				}
				printLine(cmd, "Removed known show %d", id)
				return nil
			})
		},
	}
}
