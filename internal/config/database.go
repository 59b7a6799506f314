package config

import (
	"fmt"
	"sync"
)

type DBConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

var (
	dbConfig *DBConfig
	dbOnce   sync.Once
)

func LoadDBConfig() *DBConfig {
	dbOnce.Do(func() {
		cfg := Viper()
		dbConfig = &DBConfig{
			Host:     cfg.GetString("DB_HOST"),
			Port:     cfg.GetString("DB_PORT"),
			User:     cfg.GetString("DB_USER"),
			Password: cfg.GetString("DB_PASSWORD"),
			Name:     cfg.GetString("DB_NAME"),
			SSLMode:  cfg.GetString("DB_SSLMODE"),
		}
	})
	return dbConfig
}

// DSN formats the connection string for the postgres driver.
func (c *DBConfig) DSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=UTC",
		c.Host,
		c.User,
		c.Password,
		c.Name,
		c.Port,
		c.SSLMode,
	)
}
