package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Database   DatabaseConfig   `yaml:"database"`
	LLM        LLMConfig        `yaml:"llm"`
	Generation GenerationConfig `yaml:"generation"`
	Hub        HubConfig        `yaml:"hub"`
	Events     EventsConfig     `yaml:"events"`
	Metrics    MetricsConfig    `yaml:"metrics"`
}

type DatabaseConfig struct {
	// Backend is "mysql" (networked) or "sqlite" (embedded file).
	Backend      string `yaml:"backend"`
	DSN          string `yaml:"dsn"`
	Path         string `yaml:"path"`
	MaxOpenConns int    `yaml:"max_open_conns"`
	MaxIdleConns int    `yaml:"max_idle_conns"`
}

type LLMConfig struct {
	GatewayURL string `yaml:"gateway_url"`
	Model      string `yaml:"model"`
	APIKey     string `yaml:"-"`
	TimeoutSec int    `yaml:"timeout_sec"`
	MaxRetrySec int   `yaml:"max_retry_sec"`
	Mock       bool   `yaml:"mock"`
}

type GenerationConfig struct {
	Amount     int    `yaml:"amount"`
	NumAgents  int    `yaml:"num_agents"`
	NumClients int    `yaml:"num_clients"`
	Language   string `yaml:"language"`
	MinMinutes int    `yaml:"min_minutes"`
	MaxMinutes int    `yaml:"max_minutes"`
	FromDate   string `yaml:"from_date"` // MM.DD.YYYY
	ToDate     string `yaml:"to_date"`
	FromTime   string `yaml:"from_time"` // HH:MM
	ToTime     string `yaml:"to_time"`
	OutputDir  string `yaml:"output_dir"`
	BatchSize  int    `yaml:"batch_size"`
	// OnError decides what happens when the text generation call for a
	// pair fails after retries: "retry" fails the run, "skip" records
	// the gap and keeps going.
	OnError      string `yaml:"on_error"`
	SeedWorkbook string `yaml:"seed_workbook"`
	RandomSeed   int64  `yaml:"random_seed"`
}

type HubConfig struct {
	TextToAudioURL     string `yaml:"text_to_audio_url"`
	DiarizeURL         string `yaml:"diarize_url"`
	TranscribeURL      string `yaml:"transcribe_url"`
	AnonymizeURL       string `yaml:"anonymize_url"`
	QuestionAnswerURL  string `yaml:"question_answer_url"`
	PollIntervalMillis int    `yaml:"poll_interval_millis"`
	PollAttempts       int    `yaml:"poll_attempts"`
	Mock               bool   `yaml:"mock"`
}

type EventsConfig struct {
	Enabled bool   `yaml:"enabled"`
	URL     string `yaml:"-"`
	Queue   string `yaml:"queue"`
}

type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
}

// Load reads the YAML config file, then layers secrets from the
// environment on top (LLM_API_KEY, MYSQL_DSN, AMQP_URL are never kept
// in the file).
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	cfg.LLM.APIKey = os.Getenv("LLM_API_KEY")
	if dsn := os.Getenv("MYSQL_DSN"); dsn != "" {
		cfg.Database.DSN = dsn
	}
	cfg.Events.URL = os.Getenv("AMQP_URL")

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	switch c.Database.Backend {
	case "mysql":
		if c.Database.DSN == "" {
			return fmt.Errorf("database.dsn is required for the mysql backend")
		}
	case "sqlite":
		if c.Database.Path == "" {
			c.Database.Path = "calls.sqlite"
		}
	case "":
		return fmt.Errorf("database.backend is required (mysql or sqlite)")
	default:
		return fmt.Errorf("unknown database.backend %q", c.Database.Backend)
	}
	if c.Database.MaxOpenConns == 0 {
		c.Database.MaxOpenConns = 25
	}
	if c.Database.MaxIdleConns == 0 {
		c.Database.MaxIdleConns = 5
	}

	if !c.LLM.Mock && c.LLM.GatewayURL == "" {
		return fmt.Errorf("llm.gateway_url is required")
	}
	if c.LLM.Model == "" {
		c.LLM.Model = "gpt-3.5-turbo"
	}
	if c.LLM.TimeoutSec == 0 {
		c.LLM.TimeoutSec = 25
	}
	if c.LLM.MaxRetrySec == 0 {
		c.LLM.MaxRetrySec = 45
	}

	if c.Generation.Amount == 0 {
		c.Generation.Amount = 10
	}
	if c.Generation.NumAgents == 0 {
		c.Generation.NumAgents = 5
	}
	if c.Generation.NumClients == 0 {
		c.Generation.NumClients = 10
	}
	if c.Generation.Language == "" {
		c.Generation.Language = "en"
	}
	if c.Generation.MinMinutes == 0 {
		c.Generation.MinMinutes = 2
	}
	if c.Generation.MaxMinutes == 0 {
		c.Generation.MaxMinutes = 5
	}
	if c.Generation.FromDate == "" {
		c.Generation.FromDate = "01.01.2023"
	}
	if c.Generation.ToDate == "" {
		c.Generation.ToDate = "03.01.2023"
	}
	if c.Generation.FromTime == "" {
		c.Generation.FromTime = "09:00"
	}
	if c.Generation.ToTime == "" {
		c.Generation.ToTime = "17:00"
	}
	if c.Generation.BatchSize == 0 {
		c.Generation.BatchSize = 4
	}
	switch c.Generation.OnError {
	case "":
		c.Generation.OnError = "skip"
	case "retry", "skip":
	default:
		return fmt.Errorf("generation.on_error must be retry or skip, got %q", c.Generation.OnError)
	}

	if c.Hub.PollIntervalMillis == 0 {
		c.Hub.PollIntervalMillis = 1500
	}
	if c.Hub.PollAttempts == 0 {
		c.Hub.PollAttempts = 40
	}

	if c.Events.Enabled && c.Events.Queue == "" {
		return fmt.Errorf("events.queue is required when events are enabled")
	}
	if c.Metrics.Enabled && c.Metrics.Addr == "" {
		c.Metrics.Addr = ":9090"
	}
	return nil
}
