package titleparse

import (
	"context"
	"regexp"
	"strconv"
	"strings"

	"github.com/moistari/rls"

	"animetracker/internal/matching"
)

var (
	extensionPattern = regexp.MustCompile(`(?i)\.(mkv|mp4|avi|m2ts|ts)$`)
	groupPattern     = regexp.MustCompile(`^\[([^\]]+)\]\s*`)
	tagPattern       = regexp.MustCompile(`\s*[\[\(][^\]\)]*[\]\)]`)
	qualityPattern   = regexp.MustCompile(`(?i)\b(\d{3,4}p|4k)\b`)

	batchPattern  = regexp.MustCompile(`^(.+?)\s+-\s+(\d{1,4})\s*[-~]\s*(\d{1,4})(?:\s.*)?$`)
	seasonEpisode = regexp.MustCompile(`(?i)^(.+?)\s+S(\d{1,2})E(\d{1,4})(?:v\d+)?\b`)
	singlePattern = regexp.MustCompile(`^(.+?)\s+-\s+(\d{1,4})(?:v\d+)?(?:\s.*)?$`)

	seasonSuffix = regexp.MustCompile(`(?i)^(.+?)\s+(?:S(\d{1,2})|Season\s+(\d{1,2})|(\d{1,2})(?:st|nd|rd|th)\s+Season)$`)
)

// ReleaseParser reads titles without any network calls.
//
// Fansub-style titles ("[Group] Show S2 - 05 (1080p)", "[Group] Show - 01 ~ 12")
// are read directly; anything else goes through rls, which understands
// scene-style names such as "Show.S01E05.1080p.WEB-GROUP".
type ReleaseParser struct{}

// NewReleaseParser returns the offline parser.
func NewReleaseParser() *ReleaseParser {
	return &ReleaseParser{}
}

// Parse implements Parser. It never returns an error.
func (p *ReleaseParser) Parse(_ context.Context, title string) (*matching.Candidate, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, nil
	}
	if candidate := parseFansub(title); candidate != nil {
		return candidate, nil
	}
	return parseScene(title), nil
}

func parseFansub(title string) *matching.Candidate {
	body := extensionPattern.ReplaceAllString(title, "")
	group := ""
	if m := groupPattern.FindStringSubmatch(body); m != nil {
		group = strings.TrimSpace(m[1])
		body = body[len(m[0]):]
	}
	quality := ""
	if m := qualityPattern.FindStringSubmatch(body); m != nil {
		quality = m[1]
	}
	body = strings.Join(strings.Fields(tagPattern.ReplaceAllString(body, " ")), " ")

	candidate := &matching.Candidate{
		Quality: orUnknown(quality),
		Group:   orUnknown(group),
	}
	switch {
	case batchPattern.MatchString(body):
		m := batchPattern.FindStringSubmatch(body)
		candidate.ShowName = m[1]
		candidate.Batch = true
		candidate.BatchStart = atoi(m[2])
		candidate.BatchEnd = atoi(m[3])
		candidate.Episode = candidate.BatchStart
	case seasonEpisode.MatchString(body):
		m := seasonEpisode.FindStringSubmatch(body)
		candidate.ShowName = m[1]
		candidate.Season = atoi(m[2])
		candidate.Episode = atoi(m[3])
	case singlePattern.MatchString(body):
		m := singlePattern.FindStringSubmatch(body)
		candidate.ShowName = m[1]
		candidate.Episode = atoi(m[2])
	default:
		return nil
	}

	if candidate.Season == 0 {
		candidate.ShowName, candidate.Season = splitSeason(trimSeparators(candidate.ShowName))
	}
	candidate.ShowName = trimSeparators(candidate.ShowName)
	if candidate.ShowName == "" || candidate.Episode <= 0 {
		return nil
	}
	return candidate
}

// splitSeason peels a trailing season marker ("S2", "Season 2", "2nd Season")
// off a show name.
func splitSeason(name string) (string, int) {
	m := seasonSuffix.FindStringSubmatch(name)
	if m == nil {
		return name, 1
	}
	for _, group := range m[2:] {
		if n := atoi(group); n > 0 {
			return m[1], n
		}
	}
	return name, 1
}

// trimSeparators drops the dashes, dots, and underscores left between a show
// name and its season or episode marker ("Frieren - S01E05").
func trimSeparators(name string) string {
	return strings.TrimRight(strings.TrimSpace(name), " -_.")
}

func parseScene(title string) *matching.Candidate {
	r := rls.ParseString(title)
	name := strings.TrimSpace(r.Title)
	if name == "" || r.Episode <= 0 {
		return nil
	}
	season := r.Series
	if season <= 0 {
		season = 1
	}
	return &matching.Candidate{
		ShowName: name,
		Season:   season,
		Episode:  r.Episode,
		Quality:  orUnknown(r.Resolution),
		Group:    orUnknown(r.Group),
	}
}

func atoi(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0
	}
	return n
}
