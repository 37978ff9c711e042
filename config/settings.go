// fixit/config/settings.go
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Settings is the runtime configuration assembled from defaults, an optional
// fixit.yaml file and FIXIT_* environment variables.
type Settings struct {
	Env      string         `mapstructure:"env"`
	Server   ServerSettings `mapstructure:"server"`
	App      AppSettings    `mapstructure:"app"`
	Database DBSettings     `mapstructure:"database"`
	Uploads  UploadSettings `mapstructure:"uploads"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Auth     AuthSettings   `mapstructure:"auth"`
	Mail     MailSettings   `mapstructure:"mail"`
	CORS     CORSSettings   `mapstructure:"cors"`
	Security SecurityConfig `mapstructure:"security"`

	Recaptcha RecaptchaSettings `mapstructure:"recaptcha"`
	RateLimit RateLimitSettings `mapstructure:"ratelimit"`
}

type ServerSettings struct {
	Port            string        `mapstructure:"port"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type AppSettings struct {
	BaseURL string `mapstructure:"base_url"`
}

type DBSettings struct {
	Driver string `mapstructure:"driver"`
	// MySQL DSNs need parseTime=true so timestamps scan into time.Time.
	DSN string `mapstructure:"dsn"`
}

type UploadSettings struct {
	Dir string `mapstructure:"dir"`
}

type StorageConfig struct {
	S3 S3Settings `mapstructure:"s3"`
}

type S3Settings struct {
	Enabled   bool   `mapstructure:"enabled"`
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Bucket    string `mapstructure:"bucket"`
	Region    string `mapstructure:"region"`
	PublicURL string `mapstructure:"public_url"`
	UseSSL    bool   `mapstructure:"use_ssl"`
}

type AuthSettings struct {
	// SessionKey switches the session cookie from the raw admin id to a
	// signed and encrypted value. Empty keeps the raw id.
	SessionKey    string `mapstructure:"session_key"`
	RatePerMinute int    `mapstructure:"rate_per_minute"`
}

type MailSettings struct {
	ResendAPIKey string `mapstructure:"resend_api_key"`
	From         string `mapstructure:"from"`
}

type CORSSettings struct {
	Origins []string `mapstructure:"origins"`
}

type SecurityConfig struct {
	RequireAdminClose bool `mapstructure:"require_admin_close"`
}

type RecaptchaSettings struct {
	SecretKey string `mapstructure:"secret_key"`
	VerifyURL string `mapstructure:"verify_url"`
}

type RateLimitSettings struct {
	Every  time.Duration `mapstructure:"every"`
	Burst  int           `mapstructure:"burst"`
	Prune  time.Duration `mapstructure:"prune"`
	Expire time.Duration `mapstructure:"expire"`
}

// IsProduction reports whether cookies should be marked Secure.
func (s *Settings) IsProduction() bool {
	return strings.EqualFold(s.Env, "production")
}

// SetDefaults registers a default for every key so that environment
// variables are picked up by Unmarshal.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("env", "development")
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.shutdown_timeout", "5s")
	v.SetDefault("app.base_url", "http://localhost:3000")
	v.SetDefault("database.driver", "sqlite3")
	v.SetDefault("database.dsn", "./fixit.db?_journal_mode=WAL&_foreign_keys=on")
	v.SetDefault("uploads.dir", "./public/uploads")
	v.SetDefault("storage.s3.enabled", false)
	v.SetDefault("storage.s3.endpoint", "")
	v.SetDefault("storage.s3.access_key", "")
	v.SetDefault("storage.s3.secret_key", "")
	v.SetDefault("storage.s3.bucket", "")
	v.SetDefault("storage.s3.region", "us-east-1")
	v.SetDefault("storage.s3.public_url", "")
	v.SetDefault("storage.s3.use_ssl", true)
	v.SetDefault("auth.session_key", "")
	v.SetDefault("auth.rate_per_minute", DefaultAuthPerMinute)
	v.SetDefault("mail.resend_api_key", "")
	v.SetDefault("mail.from", "FixIt <noreply@localhost>")
	v.SetDefault("cors.origins", []string{"http://localhost:3000"})
	v.SetDefault("security.require_admin_close", false)
	v.SetDefault("recaptcha.secret_key", "")
	v.SetDefault("recaptcha.verify_url", RecaptchaVerifyURL)
	v.SetDefault("ratelimit.every", DefaultRateLimitEvery)
	v.SetDefault("ratelimit.burst", DefaultRateLimitBurst)
	v.SetDefault("ratelimit.prune", DefaultRateLimitPrune)
	v.SetDefault("ratelimit.expire", DefaultRateLimitExpire)
}

// NewViper returns a viper instance bound to FIXIT_* environment variables.
// configFile may be empty, in which case ./fixit.yaml is used when present.
func NewViper(configFile string) *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("fixit")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}
	v.SetEnvPrefix("FIXIT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads the optional config file and decodes everything into Settings.
func Load(v *viper.Viper) (*Settings, error) {
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if s.RateLimit.Burst <= 0 {
		s.RateLimit.Burst = DefaultRateLimitBurst
	}
	if s.Auth.RatePerMinute <= 0 {
		s.Auth.RatePerMinute = DefaultAuthPerMinute
	}
	s.App.BaseURL = strings.TrimSuffix(s.App.BaseURL, "/")
	return &s, nil
}
