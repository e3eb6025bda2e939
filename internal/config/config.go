package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"finlet/internal/lib/validate"

	"github.com/go-playground/validator/v10"
	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

const (
	EnvDevelopment = "development"
	EnvTest        = "test"
	EnvProduction  = "production"
)

type Config struct {
	Env         string `env:"NODE_ENV" env-default:"development" validate:"required"`
	Port        int
	LogLevel    string `env:"LOG_LEVEL" validate:"required,oneof=fatal error warn info debug trace silent"`
	DatabaseURL string `env:"DATABASE_URL" validate:"required,url"`
	HTTPServer
	Auth
	CORS
	RabbitMQ
	Redis
	NATS
	Otel
	SMTP
}

// Non-string settings are filled from typedVars.

type HTTPServer struct {
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

type Auth struct {
	BaseURL           string `env:"AUTH_BASE_URL" env-default:"http://localhost:3000" validate:"required,url"`
	Secret            string `env:"AUTH_SECRET" validate:"required,min=32"`
	SessionTTL        time.Duration
	SessionUpdateAge  time.Duration
	VerificationTTL   time.Duration
	CookieSecure      bool
	MinPasswordLength int
}

type CORS struct {
	AllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" env-default:"http://localhost:5173" env-separator:","`
}

type RabbitMQ struct {
	URL   string `env:"RABBITMQ_URL" validate:"omitempty,url"`
	Queue string `env:"RABBITMQ_QUEUE" env-default:"emails"`
}

type Redis struct {
	Addr     string `env:"REDIS_ADDR"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int
}

type NATS struct {
	URL     string `env:"NATS_URL"`
	Subject string `env:"NATS_SUBJECT" env-default:"finlet.accounts.created"`
}

type Otel struct {
	Endpoint string `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
}

type SMTP struct {
	Host     string `env:"SMTP_HOST"`
	Port     int
	User     string `env:"SMTP_USER"`
	Password string `env:"SMTP_PASSWORD"`
	From     string `env:"SMTP_FROM"`
}

// typedVars holds the non-string variables as text, so a value that does not
// parse is reported together with every other invalid variable.
type typedVars struct {
	Port              string `env:"PORT" env-default:"3000"`
	ReadTimeout       string `env:"HTTP_READ_TIMEOUT" env-default:"10s"`
	WriteTimeout      string `env:"HTTP_WRITE_TIMEOUT" env-default:"10s"`
	IdleTimeout       string `env:"HTTP_IDLE_TIMEOUT" env-default:"60s"`
	SessionTTL        string `env:"AUTH_SESSION_TTL" env-default:"168h"`
	SessionUpdateAge  string `env:"AUTH_SESSION_UPDATE_AGE" env-default:"24h"`
	VerificationTTL   string `env:"AUTH_VERIFICATION_TTL" env-default:"1h"`
	CookieSecure      string `env:"AUTH_COOKIE_SECURE" env-default:"false"`
	MinPasswordLength string `env:"AUTH_MIN_PASSWORD_LENGTH" env-default:"1"`
	RedisDB           string `env:"REDIS_DB" env-default:"0"`
	SMTPPort          string `env:"SMTP_PORT" env-default:"587"`
}

func (t typedVars) apply(cfg *Config, c converter) {
	cfg.Port = c.intVar("PORT", t.Port, "min=1,max=65535")
	cfg.HTTPServer.ReadTimeout = c.durationVar("HTTP_READ_TIMEOUT", t.ReadTimeout, "gt=0")
	cfg.HTTPServer.WriteTimeout = c.durationVar("HTTP_WRITE_TIMEOUT", t.WriteTimeout, "gt=0")
	cfg.HTTPServer.IdleTimeout = c.durationVar("HTTP_IDLE_TIMEOUT", t.IdleTimeout, "gt=0")
	cfg.Auth.SessionTTL = c.durationVar("AUTH_SESSION_TTL", t.SessionTTL, "gt=0")
	cfg.Auth.SessionUpdateAge = c.durationVar("AUTH_SESSION_UPDATE_AGE", t.SessionUpdateAge, "gte=0")
	cfg.Auth.VerificationTTL = c.durationVar("AUTH_VERIFICATION_TTL", t.VerificationTTL, "gt=0")
	cfg.Auth.CookieSecure = c.boolVar("AUTH_COOKIE_SECURE", t.CookieSecure)
	cfg.Auth.MinPasswordLength = c.intVar("AUTH_MIN_PASSWORD_LENGTH", t.MinPasswordLength, "min=1,max=128")
	cfg.Redis.DB = c.intVar("REDIS_DB", t.RedisDB, "min=0")
	cfg.SMTP.Port = c.intVar("SMTP_PORT", t.SMTPPort, "min=1,max=65535")
}

// converter parses one variable at a time and records failures under the
// variable name.
type converter struct {
	validate *validator.Validate
	fields   map[string]string
}

func (c converter) intVar(name, raw, rule string) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		c.fields[name] = "must be an integer"
		return 0
	}

	c.check(name, n, rule)
	return n
}

func (c converter) durationVar(name, raw, rule string) time.Duration {
	d, err := time.ParseDuration(strings.TrimSpace(raw))
	if err != nil {
		c.fields[name] = "must be a duration such as 30s or 1h"
		return 0
	}

	c.check(name, d, rule)
	return d
}

func (c converter) boolVar(name, raw string) bool {
	b, err := strconv.ParseBool(strings.TrimSpace(raw))
	if err != nil {
		c.fields[name] = "must be true or false"
		return false
	}

	return b
}

func (c converter) check(name string, value any, rule string) {
	var errs validator.ValidationErrors
	if err := c.validate.Var(value, rule); errors.As(err, &errs) && len(errs) > 0 {
		c.fields[name] = validate.Message(errs[0])
	}
}

// Error collects every invalid variable.
type Error struct {
	Fields map[string]string
}

func (e *Error) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}

	return "invalid env: " + strings.Join(parts, "; ")
}

// JSON renders the field map indented, for the CLI diagnostic.
func (e *Error) JSON() string {
	b, err := json.MarshalIndent(e.Fields, "", "  ")
	if err != nil {
		return e.Error()
	}

	return string(b)
}

// Load reads .env (or .env.test when NODE_ENV=test) without overriding
// variables already present, then parses and validates the environment.
func Load() (*Config, error) {
	file := ".env"
	if os.Getenv("NODE_ENV") == EnvTest {
		file = ".env.test"
	}

	if err := godotenv.Load(file); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("config.Load: %s: %w", file, err)
	}

	return Read()
}

// Read parses and validates the process environment only. Every invalid
// variable is reported, including values that do not parse.
func Read() (*Config, error) {
	var (
		cfg   Config
		typed typedVars
	)

	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, &Error{Fields: map[string]string{"_": err.Error()}}
	}

	if err := cleanenv.ReadEnv(&typed); err != nil {
		return nil, &Error{Fields: map[string]string{"_": err.Error()}}
	}

	v := validate.NewWithTag("env")
	fields := make(map[string]string)

	if err := v.Struct(&cfg); err != nil {
		maps.Copy(fields, validate.Fields(err))
	}

	typed.apply(&cfg, converter{validate: v, fields: fields})

	if len(fields) > 0 {
		return nil, &Error{Fields: fields}
	}

	return &cfg, nil
}

func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

func (c *Config) IsDevelopment() bool {
	return c.Env == EnvDevelopment || c.Env == EnvTest
}
