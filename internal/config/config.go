// Package config reads service settings from the environment. A .env file
// in the working directory is loaded first if present.
package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"

	// Environment variables
	_ "github.com/joho/godotenv/autoload"
)

const (
	SourceCSV      = "csv"
	SourcePostgres = "postgres"
)

type Database struct {
	Host     string
	Port     string
	Name     string
	Username string
	Password string
	Schema   string
}

// URL is the connection string understood by both pgx and golang-migrate.
func (d Database) URL() string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(d.Username, d.Password),
		Host:   d.Host + ":" + d.Port,
		Path:   "/" + d.Name,
	}
	q := url.Values{}
	q.Set("sslmode", "disable")
	if d.Schema != "" {
		q.Set("search_path", d.Schema)
	}
	u.RawQuery = q.Encode()
	return u.String()
}

// Config holds the service settings. PayloadBoundary is kept as the raw
// "open" or "closed" value; the server parses it.
type Config struct {
	Port            int
	Title           string
	DataPath        string
	DataSource      string
	PayloadBoundary string
	RateLimitRPS    float64
	RateLimitBurst  int
	LogLevel        string
	DB              Database
}

// Load builds a Config from the environment, applying defaults to unset
// variables.
func Load() (Config, error) {
	return load(os.Getenv)
}

func load(getenv func(string) string) (Config, error) {
	get := func(key, def string) string {
		if v := getenv(key); v != "" {
			return v
		}
		return def
	}

	cfg := Config{
		Title:      get("DASHBOARD_TITLE", "SpaceX Launch Records Dashboard"),
		DataPath:   get("LAUNCH_DATA_PATH", "spacex_launch_dash.csv"),
		DataSource: get("DATA_SOURCE", SourceCSV),
		LogLevel:   get("LOG_LEVEL", "info"),
		DB: Database{
			Host:     get("DB_HOST", "localhost"),
			Port:     get("DB_PORT", "5432"),
			Name:     getenv("DB_DATABASE"),
			Username: getenv("DB_USERNAME"),
			Password: getenv("DB_PASSWORD"),
			Schema:   getenv("DB_SCHEMA"),
		},
	}

	var err error
	if cfg.Port, err = strconv.Atoi(get("PORT", "8050")); err != nil || cfg.Port <= 0 || cfg.Port > 65535 {
		return Config{}, fmt.Errorf("invalid PORT %q", getenv("PORT"))
	}
	cfg.PayloadBoundary = strings.ToLower(get("PAYLOAD_BOUNDARY", "open"))
	if cfg.RateLimitRPS, err = strconv.ParseFloat(get("RATE_LIMIT_RPS", "10"), 64); err != nil || cfg.RateLimitRPS <= 0 {
		return Config{}, fmt.Errorf("invalid RATE_LIMIT_RPS %q", getenv("RATE_LIMIT_RPS"))
	}
	if cfg.RateLimitBurst, err = strconv.Atoi(get("RATE_LIMIT_BURST", "20")); err != nil || cfg.RateLimitBurst <= 0 {
		return Config{}, fmt.Errorf("invalid RATE_LIMIT_BURST %q", getenv("RATE_LIMIT_BURST"))
	}

	switch cfg.DataSource {
	case SourceCSV:
	case SourcePostgres:
		if cfg.DB.Name == "" {
			return Config{}, fmt.Errorf("DATA_SOURCE=postgres requires DB_DATABASE")
		}
	default:
		return Config{}, fmt.Errorf("invalid DATA_SOURCE %q", cfg.DataSource)
	}

	return cfg, nil
}
