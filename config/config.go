package config

import (
	"os"
	"path/filepath"
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
)

const (
	defaultPath               = "."
	defaultMaxRequestBodySize = "100KB"
	defaultBcryptCost         = 10
	defaultTokenTTL           = 7 * 24 * time.Hour
	defaultMailFromName       = "Expense Tracker"
	defaultMailHost           = "smtp.gmail.com"
	defaultMailPort           = 587
	defaultRateLimitWindow    = time.Minute
)

// Rate limiter backends.
const (
	RateLimitProviderMemory = "memory"
	RateLimitProviderRedis  = "redis"
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
		// TrustedProxies lists the CIDRs allowed to set X-Forwarded-For. When empty
		// the client IP is the socket peer and forwarding headers are ignored.
		TrustedProxies []string `json:"trustedProxies" yaml:"trustedProxies"`
		Timeouts           struct {
			ReadTimeout       time.Duration `json:"readTimeout" yaml:"readTimeout"`
			ReadHeaderTimeout time.Duration `json:"readHeaderTimeout" yaml:"readHeaderTimeout"`
			WriteTimeout      time.Duration `json:"writeTimeout" yaml:"writeTimeout"`
			IdleTimeout       time.Duration `json:"idleTimeout" yaml:"idleTimeout"`
		} `json:"timeouts" yaml:"timeouts"`
	} `json:"http" yaml:"http"`

	Postgres *postgres.DBConn `json:"postgres" yaml:"postgres" mapstructure:"postgres"`

	SecretKey struct {
		Access string `json:"access" yaml:"access"`
	} `json:"secretKey" yaml:"secretKey"`

	Auth *AuthConfig `json:"auth" yaml:"auth"`

	// Mail configures the outbound SMTP transport. Without credentials a no-op mailer is used.
	Mail *MailConfig `json:"mail" yaml:"mail"`

	// RateLimit throttles the public auth endpoints per client IP.
	RateLimit *RateLimitConfig `json:"rateLimit" yaml:"rateLimit"`
}

// AuthConfig defines authentication-related configuration
type AuthConfig struct {
	BcryptCost int           `json:"bcryptCost" yaml:"bcryptCost"`
	TokenTTL   time.Duration `json:"tokenTTL" yaml:"tokenTTL"`
}

// MailConfig defines the SMTP account used for notification emails
type MailConfig struct {
	Host        string `json:"host" yaml:"host"`
	Port        int    `json:"port" yaml:"port"`
	Username    string `json:"username" yaml:"username"`
	Password    string `json:"password" yaml:"password"`
	FromName    string `json:"fromName" yaml:"fromName"`
	FromAddress string `json:"fromAddress" yaml:"fromAddress"`

	// Welcome sends a greeting to every newly registered user.
	Welcome bool `json:"welcome" yaml:"welcome"`
}

// Enabled reports whether enough credentials are present to talk to the SMTP server.
func (m *MailConfig) Enabled() bool {
	return m != nil && m.Username != "" && m.Password != ""
}

// RateLimitConfig defines request throttling for the auth endpoints
type RateLimitConfig struct {
	Enabled  bool          `json:"enabled" yaml:"enabled"`
	Provider string        `json:"provider" yaml:"provider"`
	Limit    int           `json:"limit" yaml:"limit"`
	Window   time.Duration `json:"window" yaml:"window"`
	Redis    *RedisConfig  `json:"redis" yaml:"redis"`
}

// RedisConfig defines the Redis connection used by the redis rate limiter
type RedisConfig struct {
	Addr     string `json:"addr" yaml:"addr"`
	Password string `json:"password" yaml:"password"`
	DB       int    `json:"db" yaml:"db"`
}

type Log struct {
	Pretty bool   `json:"pretty" yaml:"pretty"`
	Level  string `json:"level" yaml:"level"`
}

// LoadWithEnv loads .yaml files through koanf.
func LoadWithEnv[T any](currEnv string, configPath ...string) (*T, error) {
	cfg := new(T)
	koanfInstance := koanf.New(".")

	// Build list of paths to search for config file
	searchPaths := []string{defaultPath}
	if len(configPath) != 0 {
		pwd, err := os.Getwd()
		if err != nil {
			return nil, errors.Wrap(err, "os.Getwd")
		}
		for _, path := range configPath {
			abs := filepath.Join(pwd, path)
			searchPaths = append(searchPaths, abs)
		}
	}

	var configFile string
	var found bool
	for _, path := range searchPaths {
		candidate := filepath.Join(path, currEnv+".yaml")
		if _, err := os.Stat(candidate); err == nil {
			configFile = candidate
			found = true

			break
		}
	}

	if !found {
		return nil, errors.Errorf("config file %s.yaml not found in any search path", currEnv)
	}

	if err := koanfInstance.Load(file.Provider(configFile), yaml.Parser()); err != nil {
		return nil, errors.Wrapf(err, "read %s config failed", currEnv)
	}

	existingConfigMap := koanfInstance.Raw()

	// Environment variables override the file: SECRETKEY_ACCESS -> secretKey.access
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
				mapstructure.StringToSliceHookFunc(","),
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

	applyLegacyEnv(cfg, os.Getenv)
	applyDefaults(cfg)

	if cfg.Postgres != nil {
		cfg.Postgres.Replicas = buildReplicasFromEnv()
	}

	return cfg, nil
}

// applyLegacyEnv honours the variable names used by earlier deployments
// (JWT_SECRET, EMAIL_USER, EMAIL_PASS) when the canonical keys are empty.
func applyLegacyEnv(cfg *Config, getenv func(string) string) {
	if cfg.SecretKey.Access == "" {
		cfg.SecretKey.Access = getenv("JWT_SECRET")
	}

	user, pass := getenv("EMAIL_USER"), getenv("EMAIL_PASS")
	if user == "" && pass == "" {
		return
	}
	if cfg.Mail == nil {
		cfg.Mail = &MailConfig{}
	}
	if cfg.Mail.Username == "" {
		cfg.Mail.Username = user
	}
	if cfg.Mail.Password == "" {
		cfg.Mail.Password = pass
	}
}

func applyDefaults(cfg *Config) {
	if strings.TrimSpace(cfg.HTTP.MaxRequestBodySize) == "" {
		cfg.HTTP.MaxRequestBodySize = defaultMaxRequestBodySize
	}

	if cfg.Auth == nil {
		cfg.Auth = &AuthConfig{}
	}
	if cfg.Auth.BcryptCost == 0 {
		cfg.Auth.BcryptCost = defaultBcryptCost
	}
	if cfg.Auth.TokenTTL == 0 {
		cfg.Auth.TokenTTL = defaultTokenTTL
	}

	if cfg.Mail != nil {
		if cfg.Mail.Host == "" {
			cfg.Mail.Host = defaultMailHost
		}
		if cfg.Mail.Port == 0 {
			cfg.Mail.Port = defaultMailPort
		}
		if cfg.Mail.FromName == "" {
			cfg.Mail.FromName = defaultMailFromName
		}
		if cfg.Mail.FromAddress == "" {
			cfg.Mail.FromAddress = cfg.Mail.Username
		}
	}

	if cfg.RateLimit != nil {
		if cfg.RateLimit.Provider == "" {
			cfg.RateLimit.Provider = RateLimitProviderMemory
		}
		if cfg.RateLimit.Window <= 0 {
			cfg.RateLimit.Window = defaultRateLimitWindow
		}
	}
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

// buildReplicasFromEnv reads POSTGRES_REPLICAS_{index}_{HOST,PORT,USERNAME,PASSWORD}
// until the first index without a host or port.
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
