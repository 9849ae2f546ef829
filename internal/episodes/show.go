package episodes

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrInvalidShow reports a tracked show whose names or range are unusable.
var ErrInvalidShow = errors.New("invalid show")

// TrackedShow is a show the user follows over an inclusive season/episode range.
// Names[0] is the canonical display name; the rest are alternates used when
// searching and when matching release titles.
type TrackedShow struct {
	ID           int64      `json:"id"`
	Names        []string   `json:"names"`
	StartSeason  int        `json:"start_season"`
	StartEpisode int        `json:"start_episode"`
	EndSeason    int        `json:"end_season"`
	EndEpisode   int        `json:"end_episode"`
	Quality      string     `json:"quality"`
	Downloaded   []Episode  `json:"downloaded_episodes"`
	Needed       []Episode  `json:"needed_episodes"`
	LastChecked  *time.Time `json:"last_checked"`
}

// DisplayName returns the canonical name, or an empty string for a show without names.
func (s TrackedShow) DisplayName() string {
	if len(s.Names) == 0 {
		return ""
	}
	return s.Names[0]
}

// Validate checks names and range bounds.
func (s TrackedShow) Validate() error {
	if len(s.Names) == 0 {
		return fmt.Errorf("%w: at least one name is required", ErrInvalidShow)
	}
	for i, name := range s.Names {
		if strings.TrimSpace(name) == "" {
			return fmt.Errorf("%w: name %d is blank", ErrInvalidShow, i+1)
		}
	}
	if s.StartSeason < 1 || s.StartEpisode < 1 || s.EndSeason < 1 || s.EndEpisode < 1 {
		return fmt.Errorf("%w: seasons and episodes must be >= 1", ErrInvalidShow)
	}
	start := Episode{Season: s.StartSeason, Episode: s.StartEpisode}
	end := Episode{Season: s.EndSeason, Episode: s.EndEpisode}
	if end.Less(start) {
		return fmt.Errorf("%w: range end %s precedes start %s", ErrInvalidShow, end, start)
	}
	return nil
}
