package config

import (
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all the configuration for the application.
// It is built once by Load and must be treated as read-only afterwards.
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Google    GoogleConfig
	SMTP      SMTPConfig
	Auth      AuthConfig
	Templates TemplatesConfig
}

type GoogleConfig struct {
	ClientID     string `mapstructure:"clientid"`
	ClientSecret string `mapstructure:"clientsecret"`
}

// Enabled reports whether Google sign-in has credentials.
func (g GoogleConfig) Enabled() bool {
	return g.ClientID != "" && g.ClientSecret != ""
}

// ServerConfig holds the server configuration.
type ServerConfig struct {
	Port string `mapstructure:"port"`
	Env  string `mapstructure:"env"`
}

// IsProduction reports whether the deployment declares itself as production.
func (s ServerConfig) IsProduction() bool {
	return strings.EqualFold(s.Env, "production")
}

// DatabaseConfig holds the database configuration.
type DatabaseConfig struct {
	URL string `mapstructure:"url"`
}

// RedisConfig holds the Redis configuration.
type RedisConfig struct {
	URL string `mapstructure:"url"`
}

// SMTPConfig holds the environment-level defaults of the outbound mail transport.
// Row-level overrides from the settings store are applied per message.
type SMTPConfig struct {
	From     string        `mapstructure:"from"`
	Password string        `mapstructure:"password"`
	Username string        `mapstructure:"username"`
	Port     int           `mapstructure:"port"`
	Host     string        `mapstructure:"host"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

// AuthConfig describes the session and cookie policy.
type AuthConfig struct {
	Secret string `mapstructure:"secret"`

	// PublicURL is the externally reachable origin resolved at startup from the
	// prioritized candidate variables. Empty means "use the request origin".
	PublicURL string `mapstructure:"-"`
	// ExternalURLCandidates is the ordered list used to repair loopback origins
	// in dispatched sign-in links.
	ExternalURLCandidates []string `mapstructure:"-"`

	TrustHost     bool `mapstructure:"trusthost"`
	SecureCookies bool `mapstructure:"securecookies"`

	SessionMaxAge      time.Duration `mapstructure:"sessionmaxage"`
	SessionUpdateAge   time.Duration `mapstructure:"sessionupdateage"`
	ShortCookieMaxAge  time.Duration `mapstructure:"shortcookiemaxage"`
	VerificationMaxAge time.Duration `mapstructure:"verificationmaxage"`
	SignInCooldown     time.Duration `mapstructure:"signincooldown"`

	SignInPage      string `mapstructure:"signinpage"`
	ErrorPage       string `mapstructure:"errorpage"`
	DefaultCallback string `mapstructure:"defaultcallback"`
	AdminPrefix     string `mapstructure:"adminprefix"`
}

// TemplatesConfig controls where notification templates are loaded from.
type TemplatesConfig struct {
	Dir    string `mapstructure:"dir"`
	Reload bool   `mapstructure:"reload"`
}

var envBindings = map[string]string{
	"server.port":             "SERVER_PORT",
	"server.env":              "SERVER_ENV",
	"database.url":            "DATABASE_URL",
	"redis.url":               "REDIS_URL",
	"google.clientid":         "GOOGLE_CLIENT_ID",
	"google.clientsecret":     "GOOGLE_CLIENT_SECRET",
	"smtp.host":               "SMTP_HOST",
	"smtp.port":               "SMTP_PORT",
	"smtp.username":           "SMTP_USERNAME",
	"smtp.password":           "SMTP_PASSWORD",
	"smtp.from":               "SMTP_FROM",
	"smtp.timeout":            "SMTP_TIMEOUT",
	"auth.secret":             "AUTH_SECRET",
	"auth.trusthost":          "AUTH_TRUST_HOST",
	"auth.securecookies":      "AUTH_SECURE_COOKIES",
	"auth.sessionmaxage":      "AUTH_SESSION_MAX_AGE",
	"auth.sessionupdateage":   "AUTH_SESSION_UPDATE_AGE",
	"auth.shortcookiemaxage":  "AUTH_SHORT_COOKIE_MAX_AGE",
	"auth.verificationmaxage": "AUTH_VERIFICATION_MAX_AGE",
	"auth.signincooldown":     "AUTH_SIGNIN_COOLDOWN",
	"auth.signinpage":         "AUTH_SIGNIN_PAGE",
	"auth.errorpage":          "AUTH_ERROR_PAGE",
	"auth.defaultcallback":    "AUTH_DEFAULT_CALLBACK",
	"auth.adminprefix":        "AUTH_ADMIN_PREFIX",
	"templates.dir":           "TEMPLATES_DIR",
	"templates.reload":        "TEMPLATES_RELOAD",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.env", "development")
	v.SetDefault("smtp.host", "smtp.hostinger.com")
	v.SetDefault("smtp.port", 587)
	v.SetDefault("smtp.timeout", 10*time.Second)
	v.SetDefault("auth.trusthost", true)
	v.SetDefault("auth.securecookies", false)
	v.SetDefault("auth.sessionmaxage", 30*24*time.Hour)
	v.SetDefault("auth.sessionupdateage", 24*time.Hour)
	v.SetDefault("auth.shortcookiemaxage", 15*time.Minute)
	v.SetDefault("auth.verificationmaxage", 24*time.Hour)
	v.SetDefault("auth.signincooldown", time.Duration(0))
	v.SetDefault("auth.signinpage", "/auth/login")
	v.SetDefault("auth.errorpage", "/auth/error")
	v.SetDefault("auth.defaultcallback", "/dashboard")
	v.SetDefault("auth.adminprefix", "/admin")
}

// Load creates a new Config object from environment variables and an optional .env file.
func Load() *Config {
	// Load .env into process environment so the origin candidates below see it too.
	if err := godotenv.Load(); err != nil {
		log.Printf("⚠️ godotenv could not load .env: %v", err)
	} else {
		log.Printf("ℹ️ .env loaded into process environment via godotenv")
	}

	v := viper.New()
	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	setDefaults(v)

	for key, env := range envBindings {
		_ = v.BindEnv(key, env)
	}

	if err := v.ReadInConfig(); err != nil {
		// A missing .env file is fine, everything can come from the environment.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			log.Fatalf("❌ Error reading config file: %s", err)
		}
		log.Printf("⚠️ .env file not found, relying on environment variables")
	} else {
		log.Printf("ℹ️ Using config file: %s", v.ConfigFileUsed())
	}

	cfg, err := decode(v, os.LookupEnv)
	if err != nil {
		log.Fatalf("❌ Unable to decode config into struct: %v", err)
	}

	log.Printf("🔎 Config: Server.Port=%q Server.Env=%q PublicURL=%q GoogleEnabled=%t SMTPHost=%q AuthSecretEmpty=%t",
		cfg.Server.Port,
		cfg.Server.Env,
		cfg.Auth.PublicURL,
		cfg.Google.Enabled(),
		cfg.SMTP.Host,
		cfg.Auth.Secret == "",
	)

	log.Println("✅ Configuration loaded successfully")
	return cfg
}

// decode turns a populated viper instance into a Config and resolves the
// deployment origin from the environment.
func decode(v *viper.Viper, lookup LookupFunc) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	cfg.Auth.PublicURL = ResolvePublicURL(lookup, cfg.Server.IsProduction())
	cfg.Auth.ExternalURLCandidates = ExternalURLCandidates(lookup)
	return &cfg, nil
}
