package scan

import (
	"time"
)

// Match is a release accepted during a scan.
type Match struct {
	ShowID     int64  `json:"showId"`
	ShowName   string `json:"showName"`
	Season     int    `json:"season"`
	Episode    int    `json:"episode"`
	Title      string `json:"title"`
	MagnetLink string `json:"magnetLink"`
}

// Job describes the scan a Scanner is running, or last ran.
type Job struct {
	ID          string    `json:"id,omitempty"`
	ShowID      *int64    `json:"showId"`
	Running     bool      `json:"isScanning"`
	Current     int       `json:"current"`
	Total       int       `json:"total"`
	CurrentShow string    `json:"currentShow,omitempty"`
	StartedAt   time.Time `json:"startedAt,omitempty"`
	ShowCount   int       `json:"showCount"`
	Matches     []Match   `json:"matches"`
}

func (j Job) clone() Job {
	out := j
	if j.ShowID != nil {
		id := *j.ShowID
		out.ShowID = &id
	}
	out.Matches = append([]Match(nil), j.Matches...)
	if out.Matches == nil {
		out.Matches = []Match{}
	}
	return out
}

// Summary reports the outcome of a finished scan.
type Summary struct {
	JobID     string        `json:"jobId"`
	Processed int           `json:"processed"`
	Found     int           `json:"found"`
	Cancelled bool          `json:"cancelled"`
	Duration  time.Duration `json:"duration"`
	Matches   []Match       `json:"matches"`
}
