package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"trendhire/internal/core/proxy"
	"trendhire/internal/core/source"
)

type Config struct {
	AppEnv        string
	HTTPAddr      string
	RedisAddr     string
	RedisPassword string
	DatabaseURL   string

	Proxy proxy.Credentials

	SourcesFile string

	ScheduleSpec     string
	ScheduleQuery    string
	ScheduleLocation string
	SchedulePages    int

	TaskMaxRetries int
}

func getenv(key, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

func getenvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return i
}

func Load() Config {
	return Config{
		AppEnv:        getenv("APP_ENV", "development"),
		HTTPAddr:      getenv("HTTP_ADDR", ":8080"),
		RedisAddr:     getenv("REDIS_ADDR", "127.0.0.1:6379"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		DatabaseURL:   os.Getenv("DATABASE_URL"),

		Proxy: proxy.Credentials{
			Username: os.Getenv("PROXY_USERNAME"),
			Password: os.Getenv("PROXY_PASSWORD"),
			Host:     getenv("PROXY_HOST", "brd.superproxy.io"),
			Port:     getenvInt("PROXY_PORT", 33335),
			APIKey:   os.Getenv("PROXY_API_KEY"),
		},

		SourcesFile: os.Getenv("SOURCES_FILE"),

		ScheduleSpec:     os.Getenv("SCHEDULE_SPEC"),
		ScheduleQuery:    os.Getenv("SCHEDULE_QUERY"),
		ScheduleLocation: os.Getenv("SCHEDULE_LOCATION"),
		SchedulePages:    getenvInt("SCHEDULE_PAGES", 1),

		TaskMaxRetries: getenvInt("TASK_MAX_RETRIES", 3),
	}
}

// sourcesFile is the YAML shape of a sources file.
type sourcesFile struct {
	Sources []source.Descriptor `yaml:"sources"`
}

// LoadSources reads descriptors from the configured YAML file, falling back
// to the built-in defaults when no file is configured.
func (c Config) LoadSources() ([]source.Descriptor, error) {
	if c.SourcesFile == "" {
		return source.Defaults(), nil
	}
	b, err := os.ReadFile(c.SourcesFile)
	if err != nil {
		return nil, fmt.Errorf("read sources file: %w", err)
	}
	var f sourcesFile
	if err := yaml.Unmarshal(b, &f); err != nil {
		return nil, fmt.Errorf("parse sources file: %w", err)
	}
	if len(f.Sources) == 0 {
		return nil, fmt.Errorf("sources file %s declares no sources", c.SourcesFile)
	}
	return f.Sources, nil
}
