package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"animetracker/internal/episodes"
	"animetracker/internal/store"
)

const (
	ansiReset  = "\x1b[0m"
	ansiRed    = "\x1b[31m"
	ansiGreen  = "\x1b[32m"
	ansiYellow = "\x1b[33m"
	ansiBlue   = "\x1b[34m"
)

var titleCaser = cases.Title(language.English)

// writeJSON encodes v as indented JSON to the command's stdout.
func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// levelLabel renders an activity level for tables, colored on a terminal.
func levelLabel(level store.Level, colorize bool) string {
	label := titleCaser.String(string(level))
	if !colorize {
		return label
	}
	switch level {
	case store.LevelSuccess:
		return ansiGreen + label + ansiReset
	case store.LevelWarning:
		return ansiYellow + label + ansiReset
	case store.LevelError:
		return ansiRed + label + ansiReset
	default:
		return ansiBlue + label + ansiReset
	}
}

func formatEpisodes(list []episodes.Episode, limit int) string {
	if len(list) == 0 {
		return "-"
	}
	parts := make([]string, 0, len(list))
	for i, ep := range list {
		if limit > 0 && i == limit {
			parts = append(parts, fmt.Sprintf("+%d more", len(list)-limit))
			break
		}
		parts = append(parts, ep.String())
	}
	return strings.Join(parts, ", ")
}

func formatTime(t *time.Time) string {
	if t == nil || t.IsZero() {
		return "never"
	}
	return t.Local().Format("2006-01-02 15:04")
}

func printLine(cmd *cobra.Command, format string, args ...any) {
	fmt.Fprintf(cmd.OutOrStdout(), format+"\n", args...)
}
