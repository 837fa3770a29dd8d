// Package config handles application configuration from environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Channels monitored when CHANNELS is not set.
var defaultChannels = []string{
	"turs_sale",
	"vandroukitours",
	"piratesru",
	"travelbelka",
	"nachemodanah",
}

// BridgeFeed is one RSS mirror of a channel, configured as "name=url".
type BridgeFeed struct {
	Name string
	URL  string
}

// Config holds the application configuration.
type Config struct {
	// MTProto credentials for reading public channels. Required only
	// when Channels is non-empty.
	APIID   int
	APIHash string
	Phone   string

	// Bot API delivery.
	BotToken string
	ChatID   int64

	Channels    []string
	BridgeFeeds []BridgeFeed

	DatabasePath string
	SessionPath  string
	LogLevel     string

	TargetMonth   int
	TargetYear    int
	SendIfNoDate  bool
	MinTextLength int

	CheckInterval             time.Duration
	ProcessedRetention        int
	RejectUnresolvedDeparture bool

	// Optional term-list overrides; empty means built-in defaults.
	Destinations    []string
	DepartureCities []string
	Exclusions      []string
}

// Load reads configuration from the environment. A .env file in the
// working directory is loaded first when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		APIHash:      os.Getenv("API_HASH"),
		Phone:        os.Getenv("PHONE_NUMBER"),
		BotToken:     os.Getenv("BOT_TOKEN"),
		DatabasePath: envOr("DATABASE_PATH", "./data/dealwatch.db"),
		SessionPath:  envOr("SESSION_PATH", "./data/session.json"),
		LogLevel:     envOr("LOG_LEVEL", "info"),
	}

	if cfg.BotToken == "" {
		return nil, fmt.Errorf("BOT_TOKEN is required")
	}

	rawChat := os.Getenv("CHAT_ID")
	if rawChat == "" {
		return nil, fmt.Errorf("CHAT_ID is required")
	}
	chatID, err := strconv.ParseInt(rawChat, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid CHAT_ID %q: %w", rawChat, err)
	}
	cfg.ChatID = chatID

	if raw, ok := os.LookupEnv("CHANNELS"); ok {
		cfg.Channels = splitList(raw)
	} else {
		cfg.Channels = defaultChannels
	}
	for i, ch := range cfg.Channels {
		cfg.Channels[i] = CleanChannel(ch)
	}

	if len(cfg.Channels) > 0 {
		rawID := os.Getenv("API_ID")
		if rawID == "" || cfg.APIHash == "" || cfg.Phone == "" {
			return nil, fmt.Errorf("API_ID, API_HASH and PHONE_NUMBER are required when channels are monitored")
		}
		id, err := strconv.Atoi(rawID)
		if err != nil {
			return nil, fmt.Errorf("invalid API_ID %q: %w", rawID, err)
		}
		cfg.APIID = id
	}

	for _, pair := range splitList(os.Getenv("BRIDGE_FEEDS")) {
		name, url, found := strings.Cut(pair, "=")
		if !found || name == "" || url == "" {
			return nil, fmt.Errorf("invalid BRIDGE_FEEDS entry %q, want name=url", pair)
		}
		cfg.BridgeFeeds = append(cfg.BridgeFeeds, BridgeFeed{Name: name, URL: url})
	}

	if cfg.TargetMonth, err = envInt("TARGET_MONTH", 3); err != nil {
		return nil, err
	}
	if cfg.TargetMonth < 1 || cfg.TargetMonth > 12 {
		return nil, fmt.Errorf("TARGET_MONTH must be between 1 and 12")
	}
	if cfg.TargetYear, err = envInt("TARGET_YEAR", 2026); err != nil {
		return nil, err
	}
	if cfg.MinTextLength, err = envInt("MIN_TEXT_LENGTH", 50); err != nil {
		return nil, err
	}
	if cfg.ProcessedRetention, err = envInt("PROCESSED_RETENTION", 100); err != nil {
		return nil, err
	}

	interval, err := envInt("CHECK_INTERVAL_MINUTES", 30)
	if err != nil {
		return nil, err
	}
	if interval < 1 {
		return nil, fmt.Errorf("CHECK_INTERVAL_MINUTES must be positive")
	}
	cfg.CheckInterval = time.Duration(interval) * time.Minute

	if cfg.SendIfNoDate, err = envBool("SEND_IF_NO_DATE", true); err != nil {
		return nil, err
	}
	if cfg.RejectUnresolvedDeparture, err = envBool("REJECT_UNRESOLVED_DEPARTURE", false); err != nil {
		return nil, err
	}

	cfg.Destinations = splitList(os.Getenv("DESTINATIONS"))
	cfg.DepartureCities = splitList(os.Getenv("DEPARTURE_CITIES"))
	cfg.Exclusions = splitList(os.Getenv("EXCLUSIONS"))

	return cfg, nil
}

// CleanChannel strips a t.me link or @ prefix down to the bare username.
func CleanChannel(ch string) string {
	ch = strings.TrimSpace(ch)
	if i := strings.LastIndex(ch, "t.me/"); i >= 0 {
		ch = ch[i+len("t.me/"):]
	}
	return strings.TrimPrefix(ch, "@")
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, raw, err)
	}
	return v, nil
}

func envBool(key string, def bool) (bool, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("invalid %s %q: %w", key, raw, err)
	}
	return v, nil
}

func splitList(raw string) []string {
	var out []string
	for _, s := range strings.Split(raw, ",") {
		s = strings.TrimSpace(s)
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}
