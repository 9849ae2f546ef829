package daemon_test

import (
	"strconv"

	"animetracker/internal/episodes"
)

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}

func episodesShow(name string, count int) episodes.TrackedShow {
	return episodes.TrackedShow{Names: []string{name}, EndEpisode: count, Quality: "1080p"}
}
