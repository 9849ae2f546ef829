package titleparse

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"

	"animetracker/internal/logging"
	"animetracker/internal/matching"
	"animetracker/internal/services/llm"
)

const (
	defaultTemperature = 0.3

	systemPrompt = "You are a helpful assistant that parses anime torrent titles into structured data. Return only valid JSON."

	userPromptTemplate = `Parse the following anime torrent title into structured data:
"%s"

Return a JSON object with these fields:
- showName: The name of the anime show
- season: The season number (default to 1 if not specified)
- episode: The episode number
- quality: The video quality (e.g., "1080p", "720p")
- group: The release group
- batch: Boolean indicating if this is a batch release
- batchStart: If batch is true, the starting episode number
- batchEnd: If batch is true, the ending episode number

Only return the JSON object, nothing else.`
)

// Completer issues a JSON-mode chat completion.
type Completer interface {
	CompleteJSON(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

var _ Completer = (*llm.Client)(nil)

// LLMParser reads titles with a chat model.
type LLMParser struct {
	client Completer
	logger *slog.Logger
}

// LLMOption customizes an LLMParser.
type LLMOption func(*LLMParser)

// WithLLMLogger attaches a logger.
func WithLLMLogger(logger *slog.Logger) LLMOption {
	return func(p *LLMParser) {
		if logger != nil {
			p.logger = logging.NewComponentLogger(logger, "titleparse")
		}
	}
}

// NewLLMParser wraps a completion client.
func NewLLMParser(client Completer, opts ...LLMOption) *LLMParser {
	p := &LLMParser{client: client, logger: logging.NewNop()}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

type llmReading struct {
	ShowName   string   `json:"showName"`
	Season     flexInt  `json:"season"`
	Episode    flexInt  `json:"episode"`
	Quality    flexText `json:"quality"`
	Group      flexText `json:"group"`
	Batch      bool     `json:"batch"`
	BatchStart flexInt  `json:"batchStart"`
	BatchEnd   flexInt  `json:"batchEnd"`
}

// Parse asks the model for a reading. Titles without a show name or an episode
// yield nil, unless the model reports a complete batch range, in which case the
// first episode of the range stands in for the episode.
func (p *LLMParser) Parse(ctx context.Context, title string) (*matching.Candidate, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, nil
	}
	content, err := p.client.CompleteJSON(ctx, systemPrompt, fmt.Sprintf(userPromptTemplate, title))
	if err != nil {
		return nil, fmt.Errorf("parse title: %w", err)
	}

	var reading llmReading
	if err := llm.DecodeLLMJSON(content, &reading); err != nil {
		p.logger.Debug("llm reading rejected",
			logging.String("title", title),
			logging.Error(err),
		)
		return nil, fmt.Errorf("%w: %v", ErrUnparseable, err)
	}
	return reading.candidate(), nil
}

func (r llmReading) candidate() *matching.Candidate {
	name := strings.TrimSpace(r.ShowName)
	episode := int(r.Episode)
	hasRange := r.Batch && r.BatchStart > 0 && r.BatchEnd > 0
	if episode <= 0 && hasRange {
		episode = int(r.BatchStart)
	}
	if name == "" || episode <= 0 {
		return nil
	}
	season := int(r.Season)
	if season <= 0 {
		season = 1
	}
	return &matching.Candidate{
		ShowName:   name,
		Season:     season,
		Episode:    episode,
		Quality:    orUnknown(string(r.Quality)),
		Group:      orUnknown(string(r.Group)),
		Batch:      r.Batch,
		BatchStart: int(r.BatchStart),
		BatchEnd:   int(r.BatchEnd),
	}
}

// flexInt accepts numbers, numeric strings, and null.
type flexInt int

func (f *flexInt) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*f = 0
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		n, err := strconv.Atoi(strings.TrimSpace(s))
		if err != nil {
			*f = 0
			return nil
		}
		*f = flexInt(n)
		return nil
	}
	var n float64
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*f = flexInt(math.Trunc(n))
	return nil
}

// flexText accepts strings, numbers, and null.
type flexText string

func (f *flexText) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = flexText(s)
		return nil
	}
	*f = flexText(string(data))
	return nil
}
