package episodes

import (
	"encoding/json"
	"fmt"
	"slices"
)

// Episode identifies one episode by 1-based season and episode number.
// It encodes to JSON as a two element array: [season, episode].
type Episode struct {
	Season  int
	Episode int
}

// String renders the episode as S01E02.
func (e Episode) String() string {
	return fmt.Sprintf("S%02dE%02d", e.Season, e.Episode)
}

// Less orders episodes season-major, episode-minor.
func (e Episode) Less(other Episode) bool {
	if e.Season != other.Season {
		return e.Season < other.Season
	}
	return e.Episode < other.Episode
}

func (e Episode) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]int{e.Season, e.Episode})
}

func (e *Episode) UnmarshalJSON(data []byte) error {
	var pair []int
	if err := json.Unmarshal(data, &pair); err != nil {
		return fmt.Errorf("decode episode: %w", err)
	}
	if len(pair) != 2 {
		return fmt.Errorf("decode episode: expected [season, episode], got %d values", len(pair))
	}
	e.Season, e.Episode = pair[0], pair[1]
	return nil
}

// Contains reports whether list holds ep.
func Contains(list []Episode, ep Episode) bool {
	return slices.Contains(list, ep)
}

// Without returns a copy of list with every occurrence of ep removed.
func Without(list []Episode, ep Episode) []Episode {
	out := make([]Episode, 0, len(list))
	for _, candidate := range list {
		if candidate != ep {
			out = append(out, candidate)
		}
	}
	return out
}

// With returns a sorted copy of list that includes ep exactly once.
func With(list []Episode, ep Episode) []Episode {
	out := Without(list, ep)
	out = append(out, ep)
	Sort(out)
	return out
}

// Sort orders list in place, season-major.
func Sort(list []Episode) {
	slices.SortFunc(list, func(a, b Episode) int {
		switch {
		case a.Less(b):
			return -1
		case b.Less(a):
			return 1
		default:
			return 0
		}
	})
}
