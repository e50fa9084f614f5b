package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/brandlens/brandlens-api/internal/models"
)

// SentimentPoint is one execution's sentiment, ordered by execution time.
type SentimentPoint struct {
	ExecutionID string    `json:"execution_id"`
	Platform    string    `json:"platform"`
	ExecutedAt  time.Time `json:"executed_at"`
	Positive    float64   `json:"positive"`
	Neutral     float64   `json:"neutral"`
	Negative    float64   `json:"negative"`
}

// BrandRanking is one brand's standing in the mention totals.
type BrandRanking struct {
	BrandName   string `json:"brand_name"`
	Mentions    int    `json:"mentions"`
	Rank        int    `json:"rank"`
	IsUserBrand bool   `json:"is_user_brand"`
}

// CitationDomain is a source domain with its citation count.
type CitationDomain struct {
	Domain string `json:"domain"`
	Count  int    `json:"count"`
}

// SentimentTrend returns per-execution sentiment for the user, oldest first.
func (s *MetricsService) SentimentTrend(ctx context.Context, userID string) ([]SentimentPoint, error) {
	executions, err := s.executions.ListCompletedByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list executions: %w", err)
	}
	if len(executions) == 0 {
		return nil, nil
	}

	byID := make(map[string]*models.Execution, len(executions))
	executionIDs := make([]string, len(executions))
	for i, e := range executions {
		executionIDs[i] = e.ID
		byID[e.ID] = e
	}

	sentiments, err := s.sentiments.ListByExecutionIDs(ctx, executionIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to list sentiment: %w", err)
	}

	points := make([]SentimentPoint, 0, len(sentiments))
	for _, row := range sentiments {
		e := byID[row.ExecutionID]
		if e == nil {
			continue
		}
		points = append(points, SentimentPoint{
			ExecutionID: e.ID,
			Platform:    e.Platform,
			ExecutedAt:  e.ExecutedAt,
			Positive:    row.PositivePercentage,
			Neutral:     row.NeutralPercentage,
			Negative:    row.NegativePercentage,
		})
	}

	sort.Slice(points, func(i, j int) bool {
		return points[i].ExecutedAt.Before(points[j].ExecutedAt)
	})

	return points, nil
}

// CompetitorRanking returns all mentioned brands ordered by total mentions,
// the same ordering the aggregated competitive_rank is derived from.
func (s *MetricsService) CompetitorRanking(ctx context.Context, userID string) ([]BrandRanking, error) {
	executions, err := s.executions.ListCompletedByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list executions: %w", err)
	}
	if len(executions) == 0 {
		return nil, nil
	}

	executionIDs := make([]string, len(executions))
	for i, e := range executions {
		executionIDs[i] = e.ID
	}

	mentions, err := s.mentions.ListByExecutionIDs(ctx, executionIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to list mentions: %w", err)
	}
	if len(mentions) == 0 {
		return nil, nil
	}

	user := &brandTotal{}
	totals := []*brandTotal{user}
	index := map[string]*brandTotal{}
	userSeen := false

	for _, m := range mentions {
		if m.IsUserBrand {
			userSeen = true
			user.count += m.MentionCount
			if user.name == "" {
				user.name = m.BrandName
			}
			continue
		}
		bt, ok := index[m.BrandName]
		if !ok {
			bt = &brandTotal{name: m.BrandName}
			index[m.BrandName] = bt
			totals = append(totals, bt)
		}
		bt.count += m.MentionCount
	}

	if !userSeen {
		totals = totals[1:]
	}

	sort.SliceStable(totals, func(i, j int) bool {
		return totals[i].count > totals[j].count
	})

	rankings := make([]BrandRanking, len(totals))
	for i, bt := range totals {
		rankings[i] = BrandRanking{
			BrandName:   bt.name,
			Mentions:    bt.count,
			Rank:        i + 1,
			IsUserBrand: bt == user,
		}
	}

	return rankings, nil
}

// CitationDomains aggregates the source URLs stored on completed executions
// into per-domain citation counts, most cited first.
func (s *MetricsService) CitationDomains(ctx context.Context, userID string) ([]CitationDomain, error) {
	executions, err := s.executions.ListCompletedByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list executions: %w", err)
	}

	counts := map[string]int{}
	var order []string
	for _, e := range executions {
		if e.SourcesJSON == "" {
			continue
		}
		var sources []string
		if err := json.Unmarshal([]byte(e.SourcesJSON), &sources); err != nil {
			s.logger.Warn("skipping malformed sources_json", "execution_id", e.ID, "error", err)
			continue
		}
		for _, src := range sources {
			domain := sourceDomain(src)
			if domain == "" {
				continue
			}
			if _, seen := counts[domain]; !seen {
				order = append(order, domain)
			}
			counts[domain]++
		}
	}

	domains := make([]CitationDomain, 0, len(order))
	for _, d := range order {
		domains = append(domains, CitationDomain{Domain: d, Count: counts[d]})
	}
	sort.SliceStable(domains, func(i, j int) bool {
		return domains[i].Count > domains[j].Count
	})

	return domains, nil
}

// sourceDomain extracts the lowercased host from a source URL, dropping any
// www prefix. Bare domains without a scheme are accepted.
func sourceDomain(src string) string {
	src = strings.TrimSpace(src)
	if src == "" {
		return ""
	}
	if !strings.Contains(src, "://") {
		src = "https://" + src
	}
	u, err := url.Parse(src)
	if err != nil || u.Host == "" {
		return ""
	}
	host := strings.ToLower(u.Host)
	if h, _, found := strings.Cut(host, ":"); found {
		host = h
	}
	return strings.TrimPrefix(host, "www.")
}
