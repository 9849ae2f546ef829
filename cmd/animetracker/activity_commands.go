package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"animetracker/internal/daemonrun"
	"animetracker/internal/episodes"
	"animetracker/internal/store"
)

func newLogsCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var clearAll bool
	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Show or clear the activity log",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withServices(func(rt *daemonrun.Runtime) error {
				if clearAll {
					if err := rt.Tracker.ClearLogs(cmd.Context()); err != nil {
						return err
					}
					printLine(cmd, "Activity log cleared")
					return nil
				}
				logs, err := rt.Tracker.Logs(cmd.Context(), limit)
				if err != nil {
					return err
				}
				if ctx.jsonOutput() {
					return writeJSON(cmd, logs)
				}
				if len(logs) == 0 {
					printLine(cmd, "No activity recorded.")
					return nil
				}
				colorize := shouldColorize(cmd.OutOrStdout())
				rows := make([][]string, 0, len(logs))
				for _, entry := range logs {
					at := entry.Timestamp
					rows = append(rows, []string{formatTime(&at), levelLabel(entry.Level, colorize), entry.Message})
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable(
					[]string{"Time", "Level", "Message"},
					rows,
					[]columnAlignment{alignLeft, alignLeft, alignLeft},
				))
				return nil
			})
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", store.DefaultLogLimit, "Maximum number of entries to show")
	cmd.Flags().BoolVar(&clearAll, "clearAll", false, "Delete every activity entry")
	return cmd
}

func newMagnetsCommand(ctx *commandContext) *cobra.Command {
	var clearAll bool
	cmd := &cobra.Command{
		Use:   "magnets",
		Short: "List or clearAll magnet links found by scans",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withServices(func(rt *daemonrun.Runtime) error {
				if clearAll {
					removed, err := rt.Tracker.ClearMagnets(cmd.Context())
					if err != nil {
						return err
					}
					printLine(cmd, "Removed %d magnet links", removed)
					return nil
				}
				magnets, err := rt.Tracker.Magnets(cmd.Context())
				if err != nil {
					return err
				}
				if ctx.jsonOutput() {
					return writeJSON(cmd, magnets)
				}
				if len(magnets) == 0 {
					printLine(cmd, "No magnet links recorded.")
					return nil
				}
				rows := make([][]string, 0, len(magnets))
				for _, magnet := range magnets {
					rows = append(rows, []string{
						strconv.FormatInt(magnet.ID, 10),
						magnet.ShowName,
						episodes.Episode{Season: magnet.Season, Episode: magnet.Episode}.String(),
						magnet.Title,
						magnet.MagnetLink,
					})
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable(
					[]string{"ID", "Show", "Episode", "Release", "Magnet"},
					rows,
					[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignLeft},
				))
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&clearAll, "clearAll", false, "Delete every recorded magnet link")
	return cmd
}

func newNotifyCommand(ctx *commandContext) *cobra.Command {
	notifyCmd := &cobra.Command{
		Use:   "notify",
		Short: "Notification utilities",
	}
	notifyCmd.AddCommand(&cobra.Command{
		Use:   "test",
		Short: "Send a test notification to every configured channel",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withServices(func(rt *daemonrun.Runtime) error {
				cfg := rt.Config.Notifications
				if cfg.NtfyTopic == "" && (cfg.PushoverToken == "" || cfg.PushoverUser == "") {
					printLine(cmd, "No notification channel configured")
					return nil
				}
				if err := rt.Notifier.TestNotification(cmd.Context()); err != nil {
					return err
				}
				printLine(cmd, "Test notification sent")
				return nil
			})
		},
	})
	return notifyCmd
}
