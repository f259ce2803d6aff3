package config

import (
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"
)

// Load builds a Config from the environment, applying `default` tags for
// unset variables, and validates the result.
func Load() (*Config, error) {
	cfg := &Config{}

	if err := populate(reflect.ValueOf(cfg).Elem()); err != nil {
		return nil, fmt.Errorf("config load: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}
	return cfg, nil
}

// envSpec is the parsed form of a field's env, envAlt, default and required tags.
type envSpec struct {
	name     string
	alt      string
	fallback string
	required bool
}

func specFor(f reflect.StructField) (envSpec, bool) {
	name := f.Tag.Get("env")
	if name == "" {
		return envSpec{}, false
	}
	return envSpec{
		name:     name,
		alt:      f.Tag.Get("envAlt"),
		fallback: f.Tag.Get("default"),
		required: f.Tag.Get("required") == "true",
	}, true
}

// resolve returns the raw value for the field, or "" when it stays zero.
func (s envSpec) resolve() (string, error) {
	if v := os.Getenv(s.name); v != "" {
		return v, nil
	}
	if s.alt != "" {
		if v := os.Getenv(s.alt); v != "" {
			return v, nil
		}
	}
	if s.required {
		return "", fmt.Errorf("required environment variable %s is not set", s.name)
	}
	return s.fallback, nil
}

var durationType = reflect.TypeOf(time.Duration(0))

// populate walks the sections of v and fills every tagged field.
func populate(v reflect.Value) error {
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		field, dst := t.Field(i), v.Field(i)
		if !dst.CanSet() {
			continue
		}
		if field.Type.Kind() == reflect.Struct {
			if err := populate(dst); err != nil {
				return err
			}
			continue
		}

		spec, ok := specFor(field)
		if !ok {
			continue
		}
		raw, err := spec.resolve()
		if err != nil {
			return err
		}
		if raw == "" {
			continue
		}
		if err := assign(dst, raw); err != nil {
			return fmt.Errorf("invalid value for %s=%q: %w", spec.name, raw, err)
		}
	}
	return nil
}

// assign parses raw into dst according to its type. Durations use
// time.ParseDuration and string slices are comma separated.
func assign(dst reflect.Value, raw string) error {
	if dst.Type() == durationType {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return fmt.Errorf("invalid duration: %w", err)
		}
		dst.SetInt(int64(d))
		return nil
	}

	switch dst.Kind() {
	case reflect.String:
		dst.SetString(raw)
	case reflect.Int, reflect.Int64:
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid integer: %w", err)
		}
		dst.SetInt(n)
	case reflect.Float64:
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return fmt.Errorf("invalid number: %w", err)
		}
		dst.SetFloat(f)
	case reflect.Bool:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return fmt.Errorf("invalid boolean: %w", err)
		}
		dst.SetBool(b)
	case reflect.Slice:
		if dst.Type().Elem().Kind() != reflect.String {
			return fmt.Errorf("unsupported slice type: %s", dst.Type().Elem().Kind())
		}
		dst.Set(reflect.ValueOf(splitList(raw)))
	default:
		return fmt.Errorf("unsupported field type: %s", dst.Kind())
	}
	return nil
}

func splitList(raw string) []string {
	var out []string
	for _, p := range strings.Split(raw, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// problems collects validation failures so they are reported together.
type problems []string

func (p *problems) require(ok bool, format string, args ...any) {
	if !ok {
		*p = append(*p, fmt.Sprintf(format, args...))
	}
}

func oneOf(value string, allowed ...string) bool {
	value = strings.ToLower(value)
	for _, a := range allowed {
		if value == a {
			return true
		}
	}
	return false
}

// Validate reports every invalid setting in a single error.
func (c *Config) Validate() error {
	var p problems

	if db := c.Database; db.Enabled() {
		p.require(db.MaxConns > 0, "DB_MAX_CONNS must be positive")
		p.require(db.MinConns >= 0, "DB_MIN_CONNS must be non-negative")
		p.require(db.MaxConns >= db.MinConns,
			"DB_MAX_CONNS (%d) must be >= DB_MIN_CONNS (%d)", db.MaxConns, db.MinConns)
	}

	srv := c.Server
	p.require(srv.Port > 0 && srv.Port <= 65535, "SERVER_PORT (%d) must be 1-65535", srv.Port)
	p.require(srv.ReadTimeout >= 0, "SERVER_READ_TIMEOUT must be non-negative")
	p.require(srv.ShutdownTimeout > 0, "SERVER_SHUTDOWN_TIMEOUT must be positive")

	src := c.Source
	p.require(src.MaxFileSize > 0, "SOURCE_MAX_FILE_SIZE must be positive")
	p.require(oneOf(src.Encoding, "latin-1", "utf-8"),
		"SOURCE_ENCODING (%q) must be one of: latin-1, utf-8", src.Encoding)
	p.require(src.LoadConcurrency > 0, "SOURCE_LOAD_CONCURRENCY must be positive")
	p.require(src.MaxConcurrentUploads > 0, "UPLOAD_MAX_CONCURRENT must be positive")
	p.require(src.MaxWaitTime > 0, "UPLOAD_MAX_WAIT_TIME must be positive")

	floor := c.Merge.ConfidenceFloor
	p.require(floor >= 0 && floor <= 100, "MERGE_CONFIDENCE_FLOOR (%g) must be 0-100", floor)

	p.require(c.Session.TTL > 0, "SESSION_TTL must be positive")
	p.require(c.Session.SweepInterval > 0, "SESSION_SWEEP_INTERVAL must be positive")

	p.require(!c.Rate.Enabled || c.Rate.RequestsPerMinute > 0,
		"RATE_LIMIT_REQUESTS_PER_MINUTE must be positive when rate limiting is enabled")
	p.require(!c.Security.RequireAPIKey || len(c.Security.APIKeys) > 0,
		"REQUIRE_API_KEY is true but API_KEYS is empty; configure at least one API key or disable auth")

	p.require(oneOf(c.Logging.Level, "debug", "info", "warn", "error"),
		"LOG_LEVEL (%q) must be one of: debug, info, warn, error", c.Logging.Level)
	p.require(oneOf(c.Logging.Format, "text", "json"),
		"LOG_FORMAT (%q) must be one of: text, json", c.Logging.Format)

	if len(p) > 0 {
		return fmt.Errorf("validation failed:\n  - %s", strings.Join(p, "\n  - "))
	}
	return nil
}

// String renders the config for logging with the database URL and API keys
// masked.
func (c *Config) String() string {
	dbURL := "[NONE]"
	if c.Database.Enabled() {
		dbURL = "[MASKED]"
	}

	sections := []string{
		fmt.Sprintf("Server: {Host: %q, Port: %d}", c.Server.Host, c.Server.Port),
		fmt.Sprintf("Database: {URL: %s, MaxConns: %d}", dbURL, c.Database.MaxConns),
		fmt.Sprintf("Source: {MaxFileSize: %d, Encoding: %q}", c.Source.MaxFileSize, c.Source.Encoding),
		fmt.Sprintf("Merge: {ConfidenceFloor: %g}", c.Merge.ConfidenceFloor),
		fmt.Sprintf("Session: {TTL: %s}", c.Session.TTL),
		fmt.Sprintf("Security: {RequireAPIKey: %v, APIKeys: %d configured}", c.Security.RequireAPIKey, len(c.Security.APIKeys)),
		fmt.Sprintf("Logging: {Level: %q, Format: %q}", c.Logging.Level, c.Logging.Format),
	}
	return "Config{" + strings.Join(sections, ", ") + "}"
}
