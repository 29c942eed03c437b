// internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/jason-s-yu/seega/engine"
	"github.com/joho/godotenv"
)

// Broker backends.
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

// Config is the server configuration, read from the environment.
type Config struct {
	Addr           string
	Backend        string
	RedisAddr      string
	RedisPassword  string
	RedisDB        int
	DatabaseURL    string // Empty disables result persistence.
	LogLevel       string
	LogFormat      string
	AllowedOrigins []string
	Rules          engine.Rules
}

// LookupFunc reads one variable, like os.LookupEnv.
type LookupFunc func(key string) (string, bool)

// Load reads .env if present, then the process environment.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}
	return FromEnv(os.LookupEnv)
}

// FromEnv builds a Config from lookup and validates it.
func FromEnv(lookup LookupFunc) (Config, error) {
	env := reader{lookup: lookup}
	cfg := Config{
		Addr:          env.str("SEEGA_ADDR", ":8080"),
		Backend:       strings.ToLower(env.str("MOM_BACKEND", BackendMemory)),
		RedisAddr:     env.str("REDIS_ADDR", "localhost:6379"),
		RedisPassword: env.str("REDIS_PASSWORD", ""),
		RedisDB:       env.intVar("REDIS_DB", 0),
		DatabaseURL:   env.str("DATABASE_URL", ""),
		LogLevel:      env.str("LOG_LEVEL", "info"),
		LogFormat:     strings.ToLower(env.str("LOG_FORMAT", "text")),
	}
	if origins := env.str("SEEGA_ALLOWED_ORIGINS", ""); origins != "" {
		for _, o := range strings.Split(origins, ",") {
			if o = strings.TrimSpace(o); o != "" {
				cfg.AllowedOrigins = append(cfg.AllowedOrigins, o)
			}
		}
	}

	rules := engine.DefaultRules()
	rules.BoardSize = env.uint8Var("SEEGA_BOARD_SIZE", rules.BoardSize)
	rules.HandSize = env.uint8Var("SEEGA_HAND_SIZE", rules.HandSize)
	rules.LossThreshold = env.uint8Var("SEEGA_LOSS_THRESHOLD", rules.LossThreshold)
	rules.ExtraMoveOnCapture = env.boolVar("SEEGA_EXTRA_MOVE_ON_CAPTURE", rules.ExtraMoveOnCapture)
	rules.CentralBlockade = env.boolVar("SEEGA_CENTRAL_BLOCKADE", rules.CentralBlockade)
	if v, ok := lookup("SEEGA_CAPTURE_POLICY"); ok {
		policy, err := engine.ParseCapturePolicy(v)
		if err != nil {
			env.fail("SEEGA_CAPTURE_POLICY", err)
		}
		rules.Capture = policy
	}
	cfg.Rules = rules

	if len(env.errs) > 0 {
		return Config{}, errors.Join(env.errs...)
	}
	switch cfg.Backend {
	case BackendMemory, BackendRedis:
	default:
		return Config{}, fmt.Errorf("MOM_BACKEND: unknown backend %q", cfg.Backend)
	}
	if err := cfg.Rules.Validate(); err != nil {
		return Config{}, fmt.Errorf("game rules: %w", err)
	}
	return cfg, nil
}

// reader collects parse errors so every bad variable is reported at once.
type reader struct {
	lookup LookupFunc
	errs   []error
}

func (r *reader) fail(key string, err error) {
	r.errs = append(r.errs, fmt.Errorf("%s: %w", key, err))
}

func (r *reader) str(key, def string) string {
	if v, ok := r.lookup(key); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	return def
}

func (r *reader) intVar(key string, def int) int {
	v := r.str(key, "")
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		r.fail(key, err)
		return def
	}
	return n
}

func (r *reader) uint8Var(key string, def uint8) uint8 {
	v := r.str(key, "")
	if v == "" {
		return def
	}
	n, err := strconv.ParseUint(v, 10, 8)
	if err != nil {
		r.fail(key, err)
		return def
	}
	return uint8(n)
}

func (r *reader) boolVar(key string, def bool) bool {
	v := r.str(key, "")
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		r.fail(key, err)
		return def
	}
	return b
}
