package config

import (
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/pkg/errors"
	"github.com/slighter12/go-lib/database/postgres"
	"golang.org/x/crypto/bcrypt"
)

const (
	defaultPath = "."

	defaultStoreTimeout       = 5 * time.Second
	defaultBcryptCost         = 12
	defaultMaxLoginAttempts   = 5
	defaultLoginWindow        = 15 * time.Minute
	defaultSweepInterval      = time.Minute
	defaultSessionName        = "booksum_session"
	defaultSessionMaxAge      = 12 * time.Hour
	defaultRedisKeyPrefix     = "login_attempts:"
	defaultMongoDatabase      = "booksum"
	defaultMaxRequestBodySize = "16KB"
)

// Store drivers.
const (
	DriverMongo    = "mongo"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// Rate-limit ledger backends.
const (
	LedgerMemory = "memory"
	LedgerRedis  = "redis"
)

type Config struct {
	Env struct {
		Env         string `json:"env" yaml:"env"`
		ServiceName string `json:"serviceName" yaml:"serviceName"`
		Debug       bool   `json:"debug" yaml:"debug"`
		Log         Log    `json:"log" yaml:"log"`
	} `json:"env" yaml:"env"`

	HTTP struct {
		Port               int    `json:"port" yaml:"port"`
		MaxRequestBodySize string `json:"maxRequestBodySize" yaml:"maxRequestBodySize"`
		Timeouts           struct {
			ReadTimeout       time.Duration `json:"readTimeout" yaml:"readTimeout"`
			ReadHeaderTimeout time.Duration `json:"readHeaderTimeout" yaml:"readHeaderTimeout"`
			WriteTimeout      time.Duration `json:"writeTimeout" yaml:"writeTimeout"`
			IdleTimeout       time.Duration `json:"idleTimeout" yaml:"idleTimeout"`
		} `json:"timeouts" yaml:"timeouts"`
	} `json:"http" yaml:"http"`

	Store StoreConfig `json:"store" yaml:"store"`

	Mongo *MongoConfig `json:"mongo" yaml:"mongo"`

	Postgres *postgres.DBConn `json:"postgres" yaml:"postgres" mapstructure:"postgres"`

	Redis *RedisConfig `json:"redis" yaml:"redis"`

	Auth AuthConfig `json:"auth" yaml:"auth"`

	RateLimit RateLimitConfig `json:"rateLimit" yaml:"rateLimit"`

	Session SessionConfig `json:"session" yaml:"session"`
}

// StoreConfig selects the user-record store and bounds every call to it.
type StoreConfig struct {
	Driver  string        `json:"driver" yaml:"driver"`
	Timeout time.Duration `json:"timeout" yaml:"timeout"`
}

// MongoConfig points at the document database holding the users collection.
type MongoConfig struct {
	URI      string `json:"uri" yaml:"uri"`
	Database string `json:"database" yaml:"database"`
}

// RedisConfig is used by the shared attempt ledger.
type RedisConfig struct {
	URL       string `json:"url" yaml:"url"`
	KeyPrefix string `json:"keyPrefix" yaml:"keyPrefix"`
}

// AuthConfig defines authentication-related configuration
type AuthConfig struct {
	BcryptCost int `json:"bcryptCost" yaml:"bcryptCost"`
	// HashWorkers bounds concurrent bcrypt computations; 0 means GOMAXPROCS.
	HashWorkers int `json:"hashWorkers" yaml:"hashWorkers"`
}

// RateLimitConfig defines the failed-login ledger.
type RateLimitConfig struct {
	Backend       string        `json:"backend" yaml:"backend"`
	MaxAttempts   int           `json:"maxAttempts" yaml:"maxAttempts"`
	Window        time.Duration `json:"window" yaml:"window"`
	SweepInterval time.Duration `json:"sweepInterval" yaml:"sweepInterval"`
}

// SessionConfig configures the cookie-backed session bag.
type SessionConfig struct {
	Name   string        `json:"name" yaml:"name"`
	Secret string        `json:"secret" yaml:"secret"`
	MaxAge time.Duration `json:"maxAge" yaml:"maxAge"`
	Secure bool          `json:"secure" yaml:"secure"`
}

type Log struct {
	Pretty bool   `json:"pretty" yaml:"pretty"`
	Level  string `json:"level" yaml:"level"`
}

// LoadWithEnv loads .yaml files through koanf.
func LoadWithEnv[T any](currEnv string, configPath ...string) (*T, error) {
	cfg := new(T)
	koanfInstance := koanf.New(".")

	searchPaths := []string{defaultPath}
	if len(configPath) != 0 {
		pwd, err := os.Getwd()
		if err != nil {
			return nil, errors.Wrap(err, "os.Getwd")
		}
		for _, path := range configPath {
			searchPaths = append(searchPaths, filepath.Join(pwd, path))
		}
	}

	var configFile string
	for _, path := range searchPaths {
		candidate := filepath.Join(path, currEnv+".yaml")
		if _, err := os.Stat(candidate); err == nil {
			configFile = candidate

			break
		}
	}

	if configFile == "" {
		return nil, errors.Errorf("config file %s.yaml not found in any search path", currEnv)
	}

	if err := koanfInstance.Load(file.Provider(configFile), yaml.Parser()); err != nil {
		return nil, errors.Wrapf(err, "read %s config failed", currEnv)
	}

	existingConfigMap := koanfInstance.Raw()

	// ENV_VAR_NAME becomes a dotted path aligned with the YAML keys,
	// e.g. RATELIMIT_MAXATTEMPTS -> rateLimit.maxAttempts.
	if err := koanfInstance.Load(env.Provider(".", env.Opt{
		TransformFunc: func(k, v string) (string, any) {
			return canonicalizeEnvKey(k, existingConfigMap), v
		},
	}), nil); err != nil {
		return nil, errors.Wrap(err, "load env variables failed")
	}

	if err := koanfInstance.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{
		DecoderConfig: &mapstructure.DecoderConfig{
			Result:           cfg,
			WeaklyTypedInput: true,
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToTimeDurationHookFunc(),
			),
			MatchName: func(mapKey, fieldName string) bool {
				return strings.EqualFold(mapKey, fieldName)
			},
		},
	}); err != nil {
		return nil, errors.Wrapf(err, "unmarshal %s config failed", currEnv)
	}

	return cfg, nil
}

func New() (*Config, error) {
	cfg, err := LoadWithEnv[Config]("config", "config", "../config", "../../config")
	if err != nil {
		return nil, err
	}

	cfg.ApplyDefaults()

	if cfg.Postgres != nil {
		cfg.Postgres.Replicas = buildReplicasFromEnv()
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// ApplyDefaults fills every zero value that has a documented default.
func (c *Config) ApplyDefaults() {
	if strings.TrimSpace(c.HTTP.MaxRequestBodySize) == "" {
		c.HTTP.MaxRequestBodySize = defaultMaxRequestBodySize
	}
	if c.Store.Driver == "" {
		c.Store.Driver = DriverMemory
	}
	if c.Store.Timeout <= 0 {
		c.Store.Timeout = defaultStoreTimeout
	}
	if c.Auth.BcryptCost == 0 {
		c.Auth.BcryptCost = defaultBcryptCost
	}
	if c.Auth.HashWorkers <= 0 {
		c.Auth.HashWorkers = runtime.GOMAXPROCS(0)
	}
	if c.RateLimit.Backend == "" {
		c.RateLimit.Backend = LedgerMemory
	}
	if c.RateLimit.MaxAttempts <= 0 {
		c.RateLimit.MaxAttempts = defaultMaxLoginAttempts
	}
	if c.RateLimit.Window <= 0 {
		c.RateLimit.Window = defaultLoginWindow
	}
	if c.RateLimit.SweepInterval <= 0 {
		c.RateLimit.SweepInterval = defaultSweepInterval
	}
	if c.Session.Name == "" {
		c.Session.Name = defaultSessionName
	}
	if c.Session.MaxAge <= 0 {
		c.Session.MaxAge = defaultSessionMaxAge
	}
	if c.Mongo != nil && c.Mongo.Database == "" {
		c.Mongo.Database = defaultMongoDatabase
	}
	if c.Redis != nil && c.Redis.KeyPrefix == "" {
		c.Redis.KeyPrefix = defaultRedisKeyPrefix
	}
}

// Validate rejects configurations the service cannot start with.
func (c *Config) Validate() error {
	if c.Auth.BcryptCost < bcrypt.MinCost || c.Auth.BcryptCost > bcrypt.MaxCost {
		return errors.Errorf("auth.bcryptCost must be within [%d, %d], got %d", bcrypt.MinCost, bcrypt.MaxCost, c.Auth.BcryptCost)
	}

	switch c.Store.Driver {
	case DriverMemory:
	case DriverMongo:
		if c.Mongo == nil || c.Mongo.URI == "" {
			return errors.New("store.driver is mongo but mongo.uri is empty")
		}
	case DriverPostgres:
		if c.Postgres == nil {
			return errors.New("store.driver is postgres but the postgres section is missing")
		}
	default:
		return errors.Errorf("unknown store.driver %q", c.Store.Driver)
	}

	switch c.RateLimit.Backend {
	case LedgerMemory:
	case LedgerRedis:
		if c.Redis == nil || c.Redis.URL == "" {
			return errors.New("rateLimit.backend is redis but redis.url is empty")
		}
	default:
		return errors.Errorf("unknown rateLimit.backend %q", c.RateLimit.Backend)
	}

	if len(c.Session.Secret) < 32 {
		return errors.New("session.secret must be at least 32 bytes")
	}

	return nil
}

func canonicalizeEnvKey(rawKey string, existing map[string]any) string {
	segments := strings.Split(strings.ToLower(rawKey), "_")
	canonical := make([]string, 0, len(segments))
	current := existing

	for _, segment := range segments {
		if segment == "" {
			continue
		}

		if matched, next, ok := findExistingSegment(current, segment); ok {
			canonical = append(canonical, matched)
			current = next
		} else {
			canonical = append(canonical, segment)
			current = nil
		}
	}

	return strings.Join(canonical, ".")
}

func findExistingSegment(current map[string]any, segment string) (matched string, next map[string]any, ok bool) {
	if len(current) == 0 {
		return "", nil, false
	}

	needle := normalizeToken(segment)
	for key, value := range current {
		if normalizeToken(key) != needle {
			continue
		}

		child, _ := value.(map[string]any)

		return key, child, true
	}

	return "", nil, false
}

func normalizeToken(s string) string {
	var normalized strings.Builder
	normalized.Grow(len(s))

	for _, r := range s {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			continue
		}
		normalized.WriteRune(unicode.ToLower(r))
	}

	return normalized.String()
}

// buildReplicasFromEnv reads POSTGRES_REPLICAS_{index}_{HOST,PORT,USERNAME,PASSWORD}.
func buildReplicasFromEnv() []postgres.ConnectionConfig {
	var replicas []postgres.ConnectionConfig

	for i := 0; ; i++ {
		prefix := "POSTGRES_REPLICAS_" + strconv.Itoa(i) + "_"

		host := os.Getenv(prefix + "HOST")
		port := os.Getenv(prefix + "PORT")
		if host == "" || port == "" {
			break
		}

		replicas = append(replicas, postgres.ConnectionConfig{
			Host:     host,
			Port:     port,
			UserName: os.Getenv(prefix + "USERNAME"),
			Password: os.Getenv(prefix + "PASSWORD"),
		})
	}

	return replicas
}
