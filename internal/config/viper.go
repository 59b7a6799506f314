package config

import (
	"sync"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

var (
	v     *viper.Viper
	vOnce sync.Once
)

// Viper returns the process-wide configuration source. Values come from the
// environment (after godotenv has populated it) with the defaults below.
func Viper() *viper.Viper {
	vOnce.Do(func() {
		v = viper.New()
		v.AutomaticEnv()

		v.SetDefault("APP_NAME", "interview-coach")
		v.SetDefault("APP_ENV", "development")
		v.SetDefault("APP_PORT", ":8080")
		v.SetDefault("UPLOAD_DIR", "./uploads")
		v.SetDefault("LOG_JSON", false)
		v.SetDefault("LOG_DEBUG", false)

		v.SetDefault("DB_PORT", "5432")
		v.SetDefault("DB_SSLMODE", "disable")

		v.SetDefault("GEMINI_MODEL", "gemini-2.5-flash")
		v.SetDefault("GEMINI_EMBEDDING_MODEL", "gemini-embedding-001")

		v.SetDefault("FIRECRAWL_BASE_URL", "https://api.firecrawl.dev")

		v.SetDefault("SESSION_TTL", "1h")
		v.SetDefault("SESSION_MAX_ENTRIES", 1000)

		v.SetDefault("PIPELINE_MODE", PipelineModeFull)
		v.SetDefault("QUESTION_MIN_COUNT", 2)
	})
	return v
}

// BindFlag lets a command-line flag override the environment value of key.
func BindFlag(key string, flag *pflag.Flag) error {
	if flag == nil {
		return nil
	}
	return Viper().BindPFlag(key, flag)
}
