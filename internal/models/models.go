// Package models defines the domain models for the application.
package models

import (
	"time"
)

// Profile represents a user profile. One row per user; created at signup
// and mutated by settings, onboarding and quota tracking.
type Profile struct {
	ID                   string     `json:"id"`
	Email                string     `json:"email"`
	BrandName            string     `json:"brand_name"`
	WebsiteURL           string     `json:"website_url,omitempty"`
	OnboardingCompleted  bool       `json:"onboarding_completed"`
	IsAdmin              bool       `json:"is_admin"`
	SubscriptionPlan     string     `json:"subscription_plan"`
	MonthlyQueryLimit    int        `json:"monthly_query_limit"`
	QueriesUsedThisMonth int        `json:"queries_used_this_month"`
	LastQueryResetAt     *time.Time `json:"last_query_reset_at,omitempty"`
	CreatedAt            time.Time  `json:"created_at"`
	UpdatedAt            time.Time  `json:"updated_at"`
}

// Competitor represents a tracked competitor brand, owned by one profile.
type Competitor struct {
	ID         string    `json:"id"`
	UserID     string    `json:"user_id"`
	Name       string    `json:"name"`
	WebsiteURL string    `json:"website_url,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// PromptFrequency represents how often a prompt is re-executed.
type PromptFrequency string

const (
	FrequencyDaily   PromptFrequency = "daily"
	FrequencyWeekly  PromptFrequency = "weekly"
	FrequencyMonthly PromptFrequency = "monthly"
)

// Window returns the minimum interval between two triggers of a prompt.
func (f PromptFrequency) Window() time.Duration {
	switch f {
	case FrequencyDaily:
		return 24 * time.Hour
	case FrequencyWeekly:
		return 7 * 24 * time.Hour
	case FrequencyMonthly:
		return 30 * 24 * time.Hour
	default:
		return 24 * time.Hour
	}
}

// Prompt represents a tracked query a user wants asked of AI platforms.
type Prompt struct {
	ID              string          `json:"id"`
	UserID          string          `json:"user_id"`
	QueryText       string          `json:"query_text"`
	IsActive        bool            `json:"is_active"`
	UpdateFrequency PromptFrequency `json:"update_frequency"`
	TargetPlatform  string          `json:"target_platform,omitempty"`
	TargetLocation  string          `json:"target_location,omitempty"`
	LastTriggeredAt *time.Time      `json:"last_triggered_at,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// ExecutionStatus represents the lifecycle state of a prompt execution.
type ExecutionStatus string

const (
	ExecutionStatusPending    ExecutionStatus = "pending"
	ExecutionStatusProcessing ExecutionStatus = "processing"
	ExecutionStatusCompleted  ExecutionStatus = "completed"
	ExecutionStatusFailed     ExecutionStatus = "failed"
)

// Execution represents one request of a single prompt against a single AI
// platform. This is the append-only fact table all derived rows key off of.
type Execution struct {
	ID           string          `json:"id"`
	PromptID     string          `json:"prompt_id"`
	UserID       string          `json:"user_id"` // denormalized from the prompt
	Model        string          `json:"model"`
	Platform     string          `json:"platform"`
	Status       ExecutionStatus `json:"status"`
	AIResponse   string          `json:"ai_response,omitempty"` // raw JSON-encoded response, schema not enforced
	SourcesJSON  string          `json:"sources_json,omitempty"`
	ErrorMessage string          `json:"error_message,omitempty"`
	ExecutedAt   time.Time       `json:"executed_at"`
	CompletedAt  *time.Time      `json:"completed_at,omitempty"`
}

// BrandMention represents a detected occurrence count of one brand name
// in an execution's AI response. IsUserBrand is computed once at ingestion
// and never re-derived, even if the profile's brand name changes later.
type BrandMention struct {
	ID           string    `json:"id"`
	ExecutionID  string    `json:"execution_id"`
	BrandName    string    `json:"brand_name"`
	MentionCount int       `json:"mention_count"`
	IsUserBrand  bool      `json:"is_user_brand"`
	CreatedAt    time.Time `json:"created_at"`
}

// SentimentAnalysis holds the sentiment percentages for one execution.
// At most one row per execution. Percentages conventionally sum to ~100
// but no layer enforces or clamps that.
type SentimentAnalysis struct {
	ID                 string    `json:"id"`
	ExecutionID        string    `json:"execution_id"`
	PositivePercentage float64   `json:"positive_percentage"`
	NeutralPercentage  float64   `json:"neutral_percentage"`
	NegativePercentage float64   `json:"negative_percentage"`
	CreatedAt          time.Time `json:"created_at"`
}

// Recommendation is one piece of free-text advice derived from an execution.
type Recommendation struct {
	ID          string    `json:"id"`
	ExecutionID string    `json:"execution_id"`
	Ordinal     int       `json:"ordinal"`
	Text        string    `json:"text"`
	CreatedAt   time.Time `json:"created_at"`
}

// MetricsPeriodAll is the only time period currently aggregated.
const MetricsPeriodAll = "all"

// AggregatedMetrics is the cached per-user summary row, keyed by
// (user_id, time_period). It is fully recomputable from executions,
// brand mentions and sentiment rows and is never a source of truth.
type AggregatedMetrics struct {
	ID                      string    `json:"id"`
	UserID                  string    `json:"user_id"`
	TimePeriod              string    `json:"time_period"`
	AvgSentimentScore       float64   `json:"avg_sentiment_score"`
	AvgBrandVisibility      float64   `json:"avg_brand_visibility"`
	ShareOfVoice            float64   `json:"share_of_voice"`
	CompetitiveRank         int       `json:"competitive_rank"`
	ResponseQuality         float64   `json:"response_quality"`
	PlatformCoverage        int       `json:"platform_coverage"`
	TotalExecutions         int       `json:"total_executions"`
	TotalBrandMentions      int       `json:"total_brand_mentions"`
	TotalCompetitorMentions int       `json:"total_competitor_mentions"`
	TopCompetitor           string    `json:"top_competitor,omitempty"`
	AvgPositiveSentiment    float64   `json:"avg_positive_sentiment"`
	AvgNeutralSentiment     float64   `json:"avg_neutral_sentiment"`
	AvgNegativeSentiment    float64   `json:"avg_negative_sentiment"`
	UpdatedAt               time.Time `json:"updated_at"`
}
