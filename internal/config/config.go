package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"
)

type AppConfig struct {
	ListenAddr string

	RedisURL         string
	DatabaseURL      string
	ResultWebhookURL string
	WebhookToken     string
	CatalogDir       string

	AllowedOrigins []string

	ClockTick      time.Duration
	StartTimeout   time.Duration
	MinGameMinutes int
	MaxGameMinutes int

	EloK          float64
	DefaultRating float64

	ChatHistory  int
	ChatMaxRunes int
	QueueSlice   int

	AIMaxThink time.Duration
}

// MinSecs and MaxSecs bound the per-player time a queued match may ask for.
func (c *AppConfig) MinSecs() int { return c.MinGameMinutes * 60 }
func (c *AppConfig) MaxSecs() int { return c.MaxGameMinutes * 60 }

func Load() (*AppConfig, error) {
	cfg := &AppConfig{
		ListenAddr:     ":8080",
		ClockTick:      500 * time.Millisecond,
		StartTimeout:   60 * time.Second,
		MinGameMinutes: 1,
		MaxGameMinutes: 90,
		EloK:           10,
		DefaultRating:  400,
		ChatHistory:    9,
		ChatMaxRunes:   300,
		QueueSlice:     10,
		AIMaxThink:     10 * time.Second,
	}

	if v := strings.TrimSpace(os.Getenv("LISTEN_ADDR")); v != "" {
		cfg.ListenAddr = v
	}
	cfg.RedisURL = strings.TrimSpace(os.Getenv("REDIS_URL"))
	cfg.DatabaseURL = strings.TrimSpace(os.Getenv("DATABASE_URL"))
	cfg.ResultWebhookURL = strings.TrimSpace(os.Getenv("RESULT_WEBHOOK_URL"))
	cfg.WebhookToken = strings.TrimSpace(os.Getenv("RESULT_WEBHOOK_TOKEN"))
	cfg.CatalogDir = strings.TrimSpace(os.Getenv("CATALOG_DIR"))

	if v := strings.TrimSpace(os.Getenv("ALLOWED_ORIGINS")); v != "" {
		for _, p := range strings.Split(v, ",") {
			if s := strings.TrimSpace(p); s != "" {
				cfg.AllowedOrigins = append(cfg.AllowedOrigins, s)
			}
		}
	}

	if n, ok := positiveInt("CLOCK_TICK_MS"); ok {
		cfg.ClockTick = time.Duration(n) * time.Millisecond
	}
	if n, ok := positiveInt("START_TIMEOUT_SEC"); ok {
		cfg.StartTimeout = time.Duration(n) * time.Second
	}
	if n, ok := positiveInt("MIN_GAME_MINUTES"); ok {
		cfg.MinGameMinutes = n
	}
	if n, ok := positiveInt("MAX_GAME_MINUTES"); ok {
		cfg.MaxGameMinutes = n
	}
	if v := strings.TrimSpace(os.Getenv("ELO_K")); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f > 0 {
			cfg.EloK = f
		}
	}
	if v := strings.TrimSpace(os.Getenv("DEFAULT_RATING")); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f >= 0 {
			cfg.DefaultRating = f
		}
	}
	if n, ok := positiveInt("CHAT_HISTORY"); ok {
		cfg.ChatHistory = n
	}
	if n, ok := positiveInt("CHAT_MAX_RUNES"); ok {
		cfg.ChatMaxRunes = n
	}
	if n, ok := positiveInt("QUEUE_SLICE"); ok {
		cfg.QueueSlice = n
	}
	if v := strings.TrimSpace(os.Getenv("AI_MAX_THINK_MS")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			cfg.AIMaxThink = time.Duration(n) * time.Millisecond
		}
	}

	if cfg.MinGameMinutes > cfg.MaxGameMinutes {
		return nil, errors.New("MIN_GAME_MINUTES must not exceed MAX_GAME_MINUTES")
	}
	if cfg.WebhookToken != "" && cfg.ResultWebhookURL == "" {
		return nil, errors.New("RESULT_WEBHOOK_TOKEN is set without RESULT_WEBHOOK_URL")
	}

	return cfg, nil
}

func positiveInt(key string) (int, bool) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return 0, false
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}
