package matching

import "fmt"

// Candidate is the structured reading of one release title.
// BatchStart and BatchEnd are inclusive episode bounds within Season; zero
// means the bound is absent.
type Candidate struct {
	ShowName   string `json:"showName"`
	Season     int    `json:"season"`
	Episode    int    `json:"episode"`
	Quality    string `json:"quality"`
	Group      string `json:"group"`
	Batch      bool   `json:"batch"`
	BatchStart int    `json:"batchStart,omitempty"`
	BatchEnd   int    `json:"batchEnd,omitempty"`
}

// HasBatchRange reports whether the candidate is a batch with both bounds present.
func (c Candidate) HasBatchRange() bool {
	return c.Batch && c.BatchStart > 0 && c.BatchEnd > 0
}

// String renders a compact label for logs.
func (c Candidate) String() string {
	if c.HasBatchRange() {
		return fmt.Sprintf("%s S%02dE%02d-E%02d [%s]", c.ShowName, c.Season, c.BatchStart, c.BatchEnd, c.Quality)
	}
	return fmt.Sprintf("%s S%02dE%02d [%s]", c.ShowName, c.Season, c.Episode, c.Quality)
}
