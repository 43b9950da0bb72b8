// Package config loads gateway process configuration from command-line
// flags with environment-variable overrides, following the teacher's
// flat flag.String/flag.Duration pattern in main.go rather than a
// YAML/Viper file the teacher never reaches for.
package config

import (
	"flag"
	"os"
	"strconv"
	"time"
)

// Config is every knob the gateway process needs at startup.
type Config struct {
	Addr            string
	UsersBaseURL    string
	ChatsBaseURL    string
	BeatmapsBaseURL string
	ScoresBaseURL   string
	BackendTimeout  time.Duration
	LoginRateLimit  float64
	LoginRateBurst  int
}

// Load parses args (typically os.Args[1:]) into a Config. Each flag's
// default can be overridden by the matching GATEWAY_* environment
// variable, which itself is overridden by an explicit flag on the command
// line — flag.Parse resolves that precedence for free since the env value
// only changes the default.
func Load(args []string) (Config, error) {
	fs := flag.NewFlagSet("gateway", flag.ContinueOnError)

	addr := fs.String("addr", envOr("GATEWAY_ADDR", ":8080"), "HTTP listen address")
	usersURL := fs.String("users-base-url", envOr("GATEWAY_USERS_BASE_URL", "http://localhost:9001"), "users service base URL")
	chatsURL := fs.String("chats-base-url", envOr("GATEWAY_CHATS_BASE_URL", "http://localhost:9002"), "chats service base URL")
	beatmapsURL := fs.String("beatmaps-base-url", envOr("GATEWAY_BEATMAPS_BASE_URL", "http://localhost:9003"), "beatmaps service base URL")
	scoresURL := fs.String("scores-base-url", envOr("GATEWAY_SCORES_BASE_URL", "http://localhost:9004"), "scores service base URL")
	backendTimeout := fs.Duration("backend-timeout", envDurationOr("GATEWAY_BACKEND_TIMEOUT", 5*time.Second), "per-call backend request timeout")
	loginRateLimit := fs.Float64("login-rate-limit", envFloatOr("GATEWAY_LOGIN_RATE_LIMIT", 2), "sustained /v1/login requests per second, per client IP")
	loginRateBurst := fs.Int("login-rate-burst", envIntOr("GATEWAY_LOGIN_RATE_BURST", 5), "burst allowance for /v1/login rate limiting")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	return Config{
		Addr:            *addr,
		UsersBaseURL:    *usersURL,
		ChatsBaseURL:    *chatsURL,
		BeatmapsBaseURL: *beatmapsURL,
		ScoresBaseURL:   *scoresURL,
		BackendTimeout:  *backendTimeout,
		LoginRateLimit:  *loginRateLimit,
		LoginRateBurst:  *loginRateBurst,
	}, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envDurationOr(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func envFloatOr(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}
