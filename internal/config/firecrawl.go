package config

import (
	"sync"
)

type FirecrawlConfig struct {
	APIKey  string
	BaseURL string
}

var (
	firecrawlConfig *FirecrawlConfig
	firecrawlOnce   sync.Once
)

func LoadFirecrawlConfig() *FirecrawlConfig {
	firecrawlOnce.Do(func() {
		cfg := Viper()
		firecrawlConfig = &FirecrawlConfig{
			APIKey:  cfg.GetString("FIRECRAWL_API_KEY"),
			BaseURL: cfg.GetString("FIRECRAWL_BASE_URL"),
		}
	})
	return firecrawlConfig
}
