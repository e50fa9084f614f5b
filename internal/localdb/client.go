package localdb

import (
	"context"
	"time"

	"github.com/brandlens/brandlens-api/internal/models"
	"github.com/brandlens/brandlens-api/internal/querybuilder"
	"github.com/brandlens/brandlens-api/internal/repository"
)

// NewRepositories returns repository implementations backed by the embedded
// store through the query builder. They satisfy the same interfaces as the
// SQLite repositories, so services run unchanged against either backend.
func NewRepositories(store *Store) *repository.Repositories {
	client := querybuilder.NewClient(store)
	return &repository.Repositories{
		Profile:        &profileClient{client},
		Competitor:     &competitorClient{client},
		Prompt:         &promptClient{client},
		Execution:      &executionClient{client},
		Mention:        &mentionClient{client},
		Sentiment:      &sentimentClient{client},
		Recommendation: &recommendationClient{client},
		Metrics:        &metricsClient{client},
	}
}

type profileClient struct{ qb *querybuilder.Client }

func (c *profileClient) Create(ctx context.Context, profile *models.Profile) error {
	now := time.Now()
	if profile.ID == "" {
		profile.ID = c.qb.Executor().GenerateID()
	}
	profile.CreatedAt = now
	profile.UpdatedAt = now

	res := c.qb.From("profiles").Insert(map[string]any{
		"id":                      profile.ID,
		"email":                   profile.Email,
		"brand_name":              profile.BrandName,
		"website_url":             profile.WebsiteURL,
		"onboarding_completed":    profile.OnboardingCompleted,
		"is_admin":                profile.IsAdmin,
		"subscription_plan":       profile.SubscriptionPlan,
		"monthly_query_limit":     profile.MonthlyQueryLimit,
		"queries_used_this_month": profile.QueriesUsedThisMonth,
		"created_at":              now.Format(time.RFC3339),
		"updated_at":              now.Format(time.RFC3339),
	}).Execute(ctx)

	return res.Err
}

func (c *profileClient) GetByID(ctx context.Context, id string) (*models.Profile, error) {
	res := c.qb.From("profiles").Select().Eq("id", id).MaybeSingle().Execute(ctx)
	return profileFromResult(res)
}

func (c *profileClient) GetByEmail(ctx context.Context, email string) (*models.Profile, error) {
	res := c.qb.From("profiles").Select().Eq("email", email).MaybeSingle().Execute(ctx)
	return profileFromResult(res)
}

func (c *profileClient) Update(ctx context.Context, profile *models.Profile) error {
	profile.UpdatedAt = time.Now()

	res := c.qb.From("profiles").Update(map[string]any{
		"email":                profile.Email,
		"brand_name":           profile.BrandName,
		"website_url":          profile.WebsiteURL,
		"onboarding_completed": profile.OnboardingCompleted,
		"is_admin":             profile.IsAdmin,
		"subscription_plan":    profile.SubscriptionPlan,
		"monthly_query_limit":  profile.MonthlyQueryLimit,
		"updated_at":           profile.UpdatedAt.Format(time.RFC3339),
	}).Eq("id", profile.ID).Execute(ctx)

	return res.Err
}

func (c *profileClient) UpdateQuotaUsage(ctx context.Context, id string, used int, resetAt time.Time) error {
	res := c.qb.From("profiles").Update(map[string]any{
		"queries_used_this_month": used,
		"last_query_reset_at":     resetAt.Format(time.RFC3339),
		"updated_at":              time.Now().Format(time.RFC3339),
	}).Eq("id", id).Execute(ctx)

	return res.Err
}

func profileFromResult(res querybuilder.Result) (*models.Profile, error) {
	row, err := singleRow(res)
	if row == nil || err != nil {
		return nil, err
	}

	p := &models.Profile{
		ID:                   asString(row["id"]),
		Email:                asString(row["email"]),
		BrandName:            asString(row["brand_name"]),
		WebsiteURL:           asString(row["website_url"]),
		OnboardingCompleted:  asBool(row["onboarding_completed"]),
		IsAdmin:              asBool(row["is_admin"]),
		SubscriptionPlan:     asString(row["subscription_plan"]),
		MonthlyQueryLimit:    asInt(row["monthly_query_limit"]),
		QueriesUsedThisMonth: asInt(row["queries_used_this_month"]),
		LastQueryResetAt:     asTimePtr(row["last_query_reset_at"]),
		CreatedAt:            asTime(row["created_at"]),
		UpdatedAt:            asTime(row["updated_at"]),
	}

	return p, nil
}

type competitorClient struct{ qb *querybuilder.Client }

func (c *competitorClient) Create(ctx context.Context, competitor *models.Competitor) error {
	if competitor.ID == "" {
		competitor.ID = c.qb.Executor().GenerateID()
	}
	competitor.CreatedAt = time.Now()

	res := c.qb.From("competitors").Insert(map[string]any{
		"id":          competitor.ID,
		"user_id":     competitor.UserID,
		"name":        competitor.Name,
		"website_url": competitor.WebsiteURL,
		"created_at":  competitor.CreatedAt.Format(time.RFC3339),
	}).Execute(ctx)

	return res.Err
}

func (c *competitorClient) GetByID(ctx context.Context, id string) (*models.Competitor, error) {
	res := c.qb.From("competitors").Select().Eq("id", id).MaybeSingle().Execute(ctx)
	row, err := singleRow(res)
	if row == nil || err != nil {
		return nil, err
	}
	return competitorFromRow(row), nil
}

func (c *competitorClient) ListByUserID(ctx context.Context, userID string) ([]*models.Competitor, error) {
	res := c.qb.From("competitors").Select().Eq("user_id", userID).Order("created_at", true).Execute(ctx)
	rows, err := listRows(res)
	if err != nil {
		return nil, err
	}

	competitors := make([]*models.Competitor, 0, len(rows))
	for _, row := range rows {
		competitors = append(competitors, competitorFromRow(row))
	}

	return competitors, nil
}

func (c *competitorClient) Delete(ctx context.Context, id string) error {
	res := c.qb.From("competitors").Eq("id", id).Delete(ctx)
	return res.Err
}

func competitorFromRow(row map[string]any) *models.Competitor {
	return &models.Competitor{
		ID:         asString(row["id"]),
		UserID:     asString(row["user_id"]),
		Name:       asString(row["name"]),
		WebsiteURL: asString(row["website_url"]),
		CreatedAt:  asTime(row["created_at"]),
	}
}

type promptClient struct{ qb *querybuilder.Client }

func (c *promptClient) Create(ctx context.Context, prompt *models.Prompt) error {
	if prompt.ID == "" {
		prompt.ID = c.qb.Executor().GenerateID()
	}
	if prompt.UpdateFrequency == "" {
		prompt.UpdateFrequency = models.FrequencyWeekly
	}
	now := time.Now()
	prompt.CreatedAt = now
	prompt.UpdatedAt = now

	res := c.qb.From("prompts").Insert(map[string]any{
		"id":               prompt.ID,
		"user_id":          prompt.UserID,
		"query_text":       prompt.QueryText,
		"is_active":        prompt.IsActive,
		"update_frequency": string(prompt.UpdateFrequency),
		"target_platform":  prompt.TargetPlatform,
		"target_location":  prompt.TargetLocation,
		"created_at":       now.Format(time.RFC3339),
		"updated_at":       now.Format(time.RFC3339),
	}).Execute(ctx)

	return res.Err
}

func (c *promptClient) GetByID(ctx context.Context, id string) (*models.Prompt, error) {
	res := c.qb.From("prompts").Select().Eq("id", id).MaybeSingle().Execute(ctx)
	row, err := singleRow(res)
	if row == nil || err != nil {
		return nil, err
	}
	return promptFromRow(row), nil
}

func (c *promptClient) ListByUserID(ctx context.Context, userID string) ([]*models.Prompt, error) {
	res := c.qb.From("prompts").Select().Eq("user_id", userID).Order("created_at", false).Execute(ctx)
	rows, err := listRows(res)
	if err != nil {
		return nil, err
	}

	prompts := make([]*models.Prompt, 0, len(rows))
	for _, row := range rows {
		prompts = append(prompts, promptFromRow(row))
	}

	return prompts, nil
}

func (c *promptClient) ListDue(ctx context.Context, now time.Time) ([]*models.Prompt, error) {
	res := c.qb.From("prompts").Select().Eq("is_active", true).Order("created_at", true).Execute(ctx)
	rows, err := listRows(res)
	if err != nil {
		return nil, err
	}

	var due []*models.Prompt
	for _, row := range rows {
		p := promptFromRow(row)
		if p.LastTriggeredAt == nil || now.Sub(*p.LastTriggeredAt) >= p.UpdateFrequency.Window() {
			due = append(due, p)
		}
	}

	return due, nil
}

func (c *promptClient) Update(ctx context.Context, prompt *models.Prompt) error {
	prompt.UpdatedAt = time.Now()

	res := c.qb.From("prompts").Update(map[string]any{
		"query_text":       prompt.QueryText,
		"is_active":        prompt.IsActive,
		"update_frequency": string(prompt.UpdateFrequency),
		"target_platform":  prompt.TargetPlatform,
		"target_location":  prompt.TargetLocation,
		"updated_at":       prompt.UpdatedAt.Format(time.RFC3339),
	}).Eq("id", prompt.ID).Execute(ctx)

	return res.Err
}

func (c *promptClient) MarkTriggered(ctx context.Context, id string, at time.Time) error {
	res := c.qb.From("prompts").Update(map[string]any{
		"last_triggered_at": at.Format(time.RFC3339),
		"updated_at":        at.Format(time.RFC3339),
	}).Eq("id", id).Execute(ctx)

	return res.Err
}

func (c *promptClient) Delete(ctx context.Context, id string) error {
	res := c.qb.From("prompts").Eq("id", id).Delete(ctx)
	return res.Err
}

func promptFromRow(row map[string]any) *models.Prompt {
	return &models.Prompt{
		ID:              asString(row["id"]),
		UserID:          asString(row["user_id"]),
		QueryText:       asString(row["query_text"]),
		IsActive:        asBool(row["is_active"]),
		UpdateFrequency: models.PromptFrequency(asString(row["update_frequency"])),
		TargetPlatform:  asString(row["target_platform"]),
		TargetLocation:  asString(row["target_location"]),
		LastTriggeredAt: asTimePtr(row["last_triggered_at"]),
		CreatedAt:       asTime(row["created_at"]),
		UpdatedAt:       asTime(row["updated_at"]),
	}
}

type executionClient struct{ qb *querybuilder.Client }

func (c *executionClient) Create(ctx context.Context, execution *models.Execution) error {
	if execution.ID == "" {
		execution.ID = c.qb.Executor().GenerateID()
	}
	if execution.Status == "" {
		execution.Status = models.ExecutionStatusPending
	}
	if execution.ExecutedAt.IsZero() {
		execution.ExecutedAt = time.Now()
	}

	row := map[string]any{
		"id":          execution.ID,
		"prompt_id":   execution.PromptID,
		"user_id":     execution.UserID,
		"model":       execution.Model,
		"platform":    execution.Platform,
		"status":      string(execution.Status),
		"executed_at": execution.ExecutedAt.Format(time.RFC3339),
	}
	if execution.AIResponse != "" {
		row["ai_response"] = execution.AIResponse
	}
	if execution.SourcesJSON != "" {
		row["sources_json"] = execution.SourcesJSON
	}
	if execution.CompletedAt != nil {
		row["completed_at"] = execution.CompletedAt.Format(time.RFC3339)
	}

	res := c.qb.From("executions").Insert(row).Execute(ctx)

	return res.Err
}

func (c *executionClient) GetByID(ctx context.Context, id string) (*models.Execution, error) {
	res := c.qb.From("executions").Select().Eq("id", id).MaybeSingle().Execute(ctx)
	row, err := singleRow(res)
	if row == nil || err != nil {
		return nil, err
	}
	return executionFromRow(row), nil
}

func (c *executionClient) ListByPromptID(ctx context.Context, promptID string) ([]*models.Execution, error) {
	res := c.qb.From("executions").Select().Eq("prompt_id", promptID).Order("executed_at", false).Execute(ctx)
	return executionsFromResult(res)
}

func (c *executionClient) ListCompletedByUser(ctx context.Context, userID string) ([]*models.Execution, error) {
	res := c.qb.From("executions").Select().
		Eq("user_id", userID).
		Eq("status", string(models.ExecutionStatusCompleted)).
		Order("executed_at", true).
		Execute(ctx)
	return executionsFromResult(res)
}

func (c *executionClient) Complete(ctx context.Context, id, aiResponse, sourcesJSON string, at time.Time) error {
	res := c.qb.From("executions").Update(map[string]any{
		"status":       string(models.ExecutionStatusCompleted),
		"ai_response":  aiResponse,
		"sources_json": sourcesJSON,
		"completed_at": at.Format(time.RFC3339),
	}).Eq("id", id).Execute(ctx)

	return res.Err
}

func (c *executionClient) Fail(ctx context.Context, id, errorMessage string) error {
	res := c.qb.From("executions").Update(map[string]any{
		"status":        string(models.ExecutionStatusFailed),
		"error_message": errorMessage,
		"completed_at":  time.Now().Format(time.RFC3339),
	}).Eq("id", id).Execute(ctx)

	return res.Err
}

func (c *executionClient) MarkStaleProcessingFailed(ctx context.Context, olderThan time.Duration) (int, error) {
	cutoff := time.Now().Add(-olderThan)

	res := c.qb.From("executions").Select().
		In("status", []any{
			string(models.ExecutionStatusPending),
			string(models.ExecutionStatusProcessing),
		}).
		Execute(ctx)
	executions, err := executionsFromResult(res)
	if err != nil {
		return 0, err
	}

	count := 0
	for _, e := range executions {
		if !e.ExecutedAt.Before(cutoff) {
			continue
		}
		if err := c.Fail(ctx, e.ID, "execution timed out"); err != nil {
			return count, err
		}
		count++
	}

	return count, nil
}

func executionsFromResult(res querybuilder.Result) ([]*models.Execution, error) {
	rows, err := listRows(res)
	if err != nil {
		return nil, err
	}

	executions := make([]*models.Execution, 0, len(rows))
	for _, row := range rows {
		executions = append(executions, executionFromRow(row))
	}

	return executions, nil
}

func executionFromRow(row map[string]any) *models.Execution {
	return &models.Execution{
		ID:           asString(row["id"]),
		PromptID:     asString(row["prompt_id"]),
		UserID:       asString(row["user_id"]),
		Model:        asString(row["model"]),
		Platform:     asString(row["platform"]),
		Status:       models.ExecutionStatus(asString(row["status"])),
		AIResponse:   asString(row["ai_response"]),
		SourcesJSON:  asString(row["sources_json"]),
		ErrorMessage: asString(row["error_message"]),
		ExecutedAt:   asTime(row["executed_at"]),
		CompletedAt:  asTimePtr(row["completed_at"]),
	}
}

type mentionClient struct{ qb *querybuilder.Client }

func (c *mentionClient) CreateBatch(ctx context.Context, mentions []*models.BrandMention) error {
	if len(mentions) == 0 {
		return nil
	}

	now := time.Now()
	rows := make([]map[string]any, 0, len(mentions))
	for _, m := range mentions {
		if m.ID == "" {
			m.ID = c.qb.Executor().GenerateID()
		}
		m.CreatedAt = now

		rows = append(rows, map[string]any{
			"id":            m.ID,
			"execution_id":  m.ExecutionID,
			"brand_name":    m.BrandName,
			"mention_count": m.MentionCount,
			"is_user_brand": m.IsUserBrand,
			"created_at":    now.Format(time.RFC3339),
		})
	}

	res := c.qb.From("brand_mentions").Insert(rows...).Execute(ctx)

	return res.Err
}

func (c *mentionClient) ListByExecutionIDs(ctx context.Context, executionIDs []string) ([]*models.BrandMention, error) {
	if len(executionIDs) == 0 {
		return nil, nil
	}

	res := c.qb.From("brand_mentions").Select().
		In("execution_id", toAnySlice(executionIDs)).
		Order("created_at", true).
		Execute(ctx)
	rows, err := listRows(res)
	if err != nil {
		return nil, err
	}

	mentions := make([]*models.BrandMention, 0, len(rows))
	for _, row := range rows {
		mentions = append(mentions, &models.BrandMention{
			ID:           asString(row["id"]),
			ExecutionID:  asString(row["execution_id"]),
			BrandName:    asString(row["brand_name"]),
			MentionCount: asInt(row["mention_count"]),
			IsUserBrand:  asBool(row["is_user_brand"]),
			CreatedAt:    asTime(row["created_at"]),
		})
	}

	return mentions, nil
}

type sentimentClient struct{ qb *querybuilder.Client }

func (c *sentimentClient) Create(ctx context.Context, sentiment *models.SentimentAnalysis) error {
	if sentiment.ID == "" {
		sentiment.ID = c.qb.Executor().GenerateID()
	}
	sentiment.CreatedAt = time.Now()

	res := c.qb.From("sentiment_analysis").Insert(map[string]any{
		"id":                  sentiment.ID,
		"execution_id":        sentiment.ExecutionID,
		"positive_percentage": sentiment.PositivePercentage,
		"neutral_percentage":  sentiment.NeutralPercentage,
		"negative_percentage": sentiment.NegativePercentage,
		"created_at":          sentiment.CreatedAt.Format(time.RFC3339),
	}).Execute(ctx)

	return res.Err
}

func (c *sentimentClient) ListByExecutionIDs(ctx context.Context, executionIDs []string) ([]*models.SentimentAnalysis, error) {
	if len(executionIDs) == 0 {
		return nil, nil
	}

	res := c.qb.From("sentiment_analysis").Select().
		In("execution_id", toAnySlice(executionIDs)).
		Order("created_at", true).
		Execute(ctx)
	rows, err := listRows(res)
	if err != nil {
		return nil, err
	}

	sentiments := make([]*models.SentimentAnalysis, 0, len(rows))
	for _, row := range rows {
		sentiments = append(sentiments, &models.SentimentAnalysis{
			ID:                 asString(row["id"]),
			ExecutionID:        asString(row["execution_id"]),
			PositivePercentage: asFloat(row["positive_percentage"]),
			NeutralPercentage:  asFloat(row["neutral_percentage"]),
			NegativePercentage: asFloat(row["negative_percentage"]),
			CreatedAt:          asTime(row["created_at"]),
		})
	}

	return sentiments, nil
}

type recommendationClient struct{ qb *querybuilder.Client }

func (c *recommendationClient) CreateBatch(ctx context.Context, recommendations []*models.Recommendation) error {
	if len(recommendations) == 0 {
		return nil
	}

	now := time.Now()
	rows := make([]map[string]any, 0, len(recommendations))
	for _, rec := range recommendations {
		if rec.ID == "" {
			rec.ID = c.qb.Executor().GenerateID()
		}
		rec.CreatedAt = now

		rows = append(rows, map[string]any{
			"id":           rec.ID,
			"execution_id": rec.ExecutionID,
			"ordinal":      rec.Ordinal,
			"text":         rec.Text,
			"created_at":   now.Format(time.RFC3339),
		})
	}

	res := c.qb.From("recommendations").Insert(rows...).Execute(ctx)

	return res.Err
}

func (c *recommendationClient) ListByExecutionID(ctx context.Context, executionID string) ([]*models.Recommendation, error) {
	res := c.qb.From("recommendations").Select().
		Eq("execution_id", executionID).
		Order("ordinal", true).
		Execute(ctx)
	rows, err := listRows(res)
	if err != nil {
		return nil, err
	}

	recommendations := make([]*models.Recommendation, 0, len(rows))
	for _, row := range rows {
		recommendations = append(recommendations, &models.Recommendation{
			ID:          asString(row["id"]),
			ExecutionID: asString(row["execution_id"]),
			Ordinal:     asInt(row["ordinal"]),
			Text:        asString(row["text"]),
			CreatedAt:   asTime(row["created_at"]),
		})
	}

	return recommendations, nil
}

type metricsClient struct{ qb *querybuilder.Client }

func (c *metricsClient) Upsert(ctx context.Context, metrics *models.AggregatedMetrics) error {
	if metrics.TimePeriod == "" {
		metrics.TimePeriod = models.MetricsPeriodAll
	}
	metrics.UpdatedAt = time.Now()

	values := map[string]any{
		"avg_sentiment_score":       metrics.AvgSentimentScore,
		"avg_brand_visibility":      metrics.AvgBrandVisibility,
		"share_of_voice":            metrics.ShareOfVoice,
		"competitive_rank":          metrics.CompetitiveRank,
		"response_quality":          metrics.ResponseQuality,
		"platform_coverage":         metrics.PlatformCoverage,
		"total_executions":          metrics.TotalExecutions,
		"total_brand_mentions":      metrics.TotalBrandMentions,
		"total_competitor_mentions": metrics.TotalCompetitorMentions,
		"top_competitor":            metrics.TopCompetitor,
		"avg_positive_sentiment":    metrics.AvgPositiveSentiment,
		"avg_neutral_sentiment":     metrics.AvgNeutralSentiment,
		"avg_negative_sentiment":    metrics.AvgNegativeSentiment,
		"updated_at":                metrics.UpdatedAt.Format(time.RFC3339),
	}

	existing, err := c.GetByUser(ctx, metrics.UserID, metrics.TimePeriod)
	if err != nil {
		return err
	}

	if existing != nil {
		metrics.ID = existing.ID
		res := c.qb.From("aggregated_metrics").Update(values).
			Eq("user_id", metrics.UserID).
			Eq("time_period", metrics.TimePeriod).
			Execute(ctx)
		return res.Err
	}

	if metrics.ID == "" {
		metrics.ID = c.qb.Executor().GenerateID()
	}
	values["id"] = metrics.ID
	values["user_id"] = metrics.UserID
	values["time_period"] = metrics.TimePeriod

	res := c.qb.From("aggregated_metrics").Insert(values).Execute(ctx)

	return res.Err
}

func (c *metricsClient) GetByUser(ctx context.Context, userID, timePeriod string) (*models.AggregatedMetrics, error) {
	res := c.qb.From("aggregated_metrics").Select().
		Eq("user_id", userID).
		Eq("time_period", timePeriod).
		MaybeSingle().
		Execute(ctx)
	row, err := singleRow(res)
	if row == nil || err != nil {
		return nil, err
	}

	return &models.AggregatedMetrics{
		ID:                      asString(row["id"]),
		UserID:                  asString(row["user_id"]),
		TimePeriod:              asString(row["time_period"]),
		AvgSentimentScore:       asFloat(row["avg_sentiment_score"]),
		AvgBrandVisibility:      asFloat(row["avg_brand_visibility"]),
		ShareOfVoice:            asFloat(row["share_of_voice"]),
		CompetitiveRank:         asInt(row["competitive_rank"]),
		ResponseQuality:         asFloat(row["response_quality"]),
		PlatformCoverage:        asInt(row["platform_coverage"]),
		TotalExecutions:         asInt(row["total_executions"]),
		TotalBrandMentions:      asInt(row["total_brand_mentions"]),
		TotalCompetitorMentions: asInt(row["total_competitor_mentions"]),
		TopCompetitor:           asString(row["top_competitor"]),
		AvgPositiveSentiment:    asFloat(row["avg_positive_sentiment"]),
		AvgNeutralSentiment:     asFloat(row["avg_neutral_sentiment"]),
		AvgNegativeSentiment:    asFloat(row["avg_negative_sentiment"]),
		UpdatedAt:               asTime(row["updated_at"]),
	}, nil
}

// singleRow unpacks a Single/MaybeSingle result into a row map, nil when
// nothing matched.
func singleRow(res querybuilder.Result) (map[string]any, error) {
	if res.Err != nil {
		return nil, res.Err
	}
	if res.Data == nil {
		return nil, nil
	}
	row, ok := res.Data.(map[string]any)
	if !ok {
		return nil, nil
	}
	return row, nil
}

// listRows unpacks a list result into row maps.
func listRows(res querybuilder.Result) ([]map[string]any, error) {
	if res.Err != nil {
		return nil, res.Err
	}
	rows, _ := res.Data.([]map[string]any)
	return rows, nil
}

func toAnySlice(values []string) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}

func asString(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case []byte:
		return string(s)
	default:
		return ""
	}
}

func asInt(v any) int {
	switch n := v.(type) {
	case int64:
		return int(n)
	case int:
		return n
	case float64:
		return int(n)
	default:
		return 0
	}
}

func asFloat(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case int64:
		return float64(n)
	case int:
		return float64(n)
	default:
		return 0
	}
}

func asBool(v any) bool {
	switch b := v.(type) {
	case bool:
		return b
	case int64:
		return b != 0
	case int:
		return b != 0
	default:
		return false
	}
}

func asTime(v any) time.Time {
	t, err := time.Parse(time.RFC3339, asString(v))
	if err != nil {
		return time.Time{}
	}
	return t
}

func asTimePtr(v any) *time.Time {
	s := asString(v)
	if s == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil
	}
	return &t
}
