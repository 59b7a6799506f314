package config

import (
	"sync"
)

type GeminiConfig struct {
	APIKey         string
	Model          string
	EmbeddingModel string
}

var (
	geminiConfig *GeminiConfig
	geminiOnce   sync.Once
)

func LoadGeminiConfig() *GeminiConfig {
	geminiOnce.Do(func() {
		cfg := Viper()
		geminiConfig = &GeminiConfig{
			APIKey:         cfg.GetString("GEMINI_API_KEY"),
			Model:          cfg.GetString("GEMINI_MODEL"),
			EmbeddingModel: cfg.GetString("GEMINI_EMBEDDING_MODEL"),
		}
	})
	return geminiConfig
}
