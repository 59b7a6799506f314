package config

import (
	"sync"
)

type AppConfig struct {
	Name      string
	Env       string
	Port      string
	BaseURL   string
	UploadDir string
	LogJSON   bool
	LogDebug  bool
}

var (
	appConfig *AppConfig
	appOnce   sync.Once
)

func LoadAppConfig() *AppConfig {
	appOnce.Do(func() {
		cfg := Viper()
		appConfig = &AppConfig{
			Name:      cfg.GetString("APP_NAME"),
			Env:       cfg.GetString("APP_ENV"),
			Port:      cfg.GetString("APP_PORT"),
			BaseURL:   cfg.GetString("APP_URL"),
			UploadDir: cfg.GetString("UPLOAD_DIR"),
			LogJSON:   cfg.GetBool("LOG_JSON"),
			LogDebug:  cfg.GetBool("LOG_DEBUG"),
		}
	})
	return appConfig
}

func (c *AppConfig) IsProduction() bool {
	return c.Env == "production"
}
