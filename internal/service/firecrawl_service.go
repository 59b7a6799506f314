package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fadilmartias/interview-coach/internal/config"
	"github.com/fadilmartias/interview-coach/internal/logger"
	"github.com/go-resty/resty/v2"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"
)

var ErrNoSearchResults = errors.New("search returned no results")

type SearchResult struct {
	URL         string `json:"url"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Markdown    string `json:"markdown,omitempty"`
}

type SearchServiceInterface interface {
	Search(ctx context.Context, query string, limit int) ([]SearchResult, error)
}

type FirecrawlService struct {
	client *resty.Client
	logger *zap.Logger
}

func NewFirecrawlService(log *zap.Logger) *FirecrawlService {
	cfg := config.LoadFirecrawlConfig()
	return newFirecrawlService(cfg.BaseURL, cfg.APIKey, log)
}

func newFirecrawlService(baseURL, apiKey string, log *zap.Logger) *FirecrawlService {
	client := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetAuthToken(apiKey).
		SetHeader("Content-Type", "application/json").
		SetTimeout(60 * time.Second)

	return &FirecrawlService{
		client: client,
		logger: logger.WithCommonFields(logger.OrNop(log), "firecrawl", ""),
	}
}

// Search runs a web search and returns up to limit results with their markdown.
func (s *FirecrawlService) Search(ctx context.Context, query string, limit int) ([]SearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("search query cannot be empty")
	}
	if limit <= 0 {
		limit = 2
	}

	resp, err := s.client.R().
		SetContext(ctx).
		SetBody(map[string]any{
			"query": query,
			"limit": limit,
			"scrapeOptions": map[string]any{
				"formats": []string{"markdown"},
			},
		}).
		Post("/v1/search")
	if err != nil {
		return nil, fmt.Errorf("firecrawl search: %w", err)
	}

	body := resp.String()
	if resp.IsError() {
		msg := gjson.Get(body, "error").String()
		if msg == "" {
			msg = resp.Status()
		}
		return nil, fmt.Errorf("firecrawl search failed (%d): %s", resp.StatusCode(), msg)
	}

	if !gjson.Get(body, "success").Bool() {
		return nil, fmt.Errorf("firecrawl search unsuccessful: %s", gjson.Get(body, "error").String())
	}

	var results []SearchResult
	gjson.Get(body, "data").ForEach(func(_, item gjson.Result) bool {
		url := strings.TrimSpace(item.Get("url").String())
		if url == "" {
			return true
		}
		results = append(results, SearchResult{
			URL:         url,
			Title:       item.Get("title").String(),
			Description: item.Get("description").String(),
			Markdown:    item.Get("markdown").String(),
		})
		return true
	})

	s.logger.Debug("firecrawl search",
		zap.String("query", query),
		zap.Int("results", len(results)),
	)

	if len(results) == 0 {
		return nil, fmt.Errorf("%w: %q", ErrNoSearchResults, query)
	}
	return results, nil
}
