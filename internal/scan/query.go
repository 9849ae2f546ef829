package scan

import (
	"fmt"
	"strings"
)

// Queries returns the search strings tried for one name and episode, in
// order. The season appears only past season 1, since most fansub releases
// number the first season without it.
func Queries(name string, season, episode int, quality string) []string {
	seasonShort, seasonLong := "", ""
	if season > 1 {
		seasonShort = fmt.Sprintf("S%d ", season)
		seasonLong = fmt.Sprintf("Season %d ", season)
	}
	raw := []string{
		fmt.Sprintf("%s %sE%d %s", name, seasonShort, episode, quality),
		fmt.Sprintf("%s %sEpisode %d %s", name, seasonLong, episode, quality),
		fmt.Sprintf("%s %d %s", name, episode, quality),
	}
	out := make([]string, 0, len(raw))
	for _, q := range raw {
		out = append(out, strings.Join(strings.Fields(q), " "))
	}
	return out
}
