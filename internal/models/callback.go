package models

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// ExecutionCallback is the result envelope delivered by the external
// workflow engine when a prompt execution finishes. The payload schema has
// drifted over time (sentiment vs overallSentiment, AI_Response vs
// AI_original_response, recommendations as strings or objects), so every
// field is parsed leniently here, once, at the ingestion boundary.
type ExecutionCallback struct {
	ExecutionID        string                  `json:"executionId"`
	Mentions           map[string]MentionCount `json:"brandAndCompetitorMentions"`
	Sentiment          *SentimentBreakdown     `json:"sentiment"`
	OverallSentiment   *SentimentBreakdown     `json:"overallSentiment"`
	Recommendations    []RecommendationItem    `json:"recommendations"`
	AIOriginalResponse json.RawMessage         `json:"AI_original_response"`
	AIResponse         json.RawMessage         `json:"AI_Response"`
	Sources            []string                `json:"sources"`
}

// SentimentValues returns the sentiment percentages, preferring the newer
// overallSentiment field over the legacy sentiment field. ok is false when
// the payload carried neither.
func (c *ExecutionCallback) SentimentValues() (positive, neutral, negative float64, ok bool) {
	s := c.OverallSentiment
	if s == nil {
		s = c.Sentiment
	}
	if s == nil {
		return 0, 0, 0, false
	}
	return float64(s.Positive), float64(s.Neutral), float64(s.Negative), true
}

// ResponseText returns the raw AI response text, preferring the
// AI_original_response variant. A JSON string is unquoted; any other JSON
// value is kept verbatim as the unparsed-text fallback.
func (c *ExecutionCallback) ResponseText() string {
	raw := c.AIOriginalResponse
	if len(raw) == 0 {
		raw = c.AIResponse
	}
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(bytes.TrimSpace(raw))
}

// SentimentBreakdown holds positive/neutral/negative percentages. Field
// matching is case-insensitive, so both {"Positive": ...} and
// {"positive": ...} payloads decode.
type SentimentBreakdown struct {
	Positive Percentage `json:"Positive"`
	Neutral  Percentage `json:"Neutral"`
	Negative Percentage `json:"Negative"`
}

// Percentage accepts a JSON number or a "NN%" string. Unparseable values
// decode to 0 rather than failing the whole envelope.
type Percentage float64

func (p *Percentage) UnmarshalJSON(data []byte) error {
	var n float64
	if err := json.Unmarshal(data, &n); err == nil {
		*p = Percentage(n)
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		s = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "%"))
		if v, err := strconv.ParseFloat(s, 64); err == nil {
			*p = Percentage(v)
			return nil
		}
	}

	*p = 0
	return nil
}

// MentionCount accepts a JSON number or numeric string. Unparseable or
// negative values decode to 0.
type MentionCount int

func (m *MentionCount) UnmarshalJSON(data []byte) error {
	var n float64
	if err := json.Unmarshal(data, &n); err == nil {
		*m = clampCount(int(n))
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if v, err := strconv.Atoi(strings.TrimSpace(s)); err == nil {
			*m = clampCount(v)
			return nil
		}
	}

	*m = 0
	return nil
}

func clampCount(n int) MentionCount {
	if n < 0 {
		return 0
	}
	return MentionCount(n)
}

// RecommendationItem accepts either a bare string or a {"text": ...} object.
type RecommendationItem string

func (r *RecommendationItem) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*r = RecommendationItem(s)
		return nil
	}

	var obj struct {
		Text string `json:"text"`
	}
	if err := json.Unmarshal(data, &obj); err == nil {
		*r = RecommendationItem(obj.Text)
		return nil
	}

	*r = ""
	return nil
}
