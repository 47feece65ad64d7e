package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server struct {
		Port               int      `mapstructure:"port"`
		CorsAllowedOrigins []string `mapstructure:"cors_allowed_origins"`
		CorsAllowedMethods []string `mapstructure:"cors_allowed_methods"`
		CorsAllowedHeaders []string `mapstructure:"cors_allowed_headers"`
		MetricsPort        int      `mapstructure:"metrics_port"`
	} `mapstructure:"server"`

	Database struct {
		Host     string `mapstructure:"host"`
		Port     int    `mapstructure:"port"`
		User     string `mapstructure:"user"`
		Password string `mapstructure:"password"`
		Name     string `mapstructure:"name"`
		SSLMode  string `mapstructure:"sslmode"`
		MaxConns int    `mapstructure:"max_conns"`
	} `mapstructure:"database"`

	JWT struct {
		Secret           string `mapstructure:"secret"`
		RefreshSecret    string `mapstructure:"refresh_secret"`
		AccessTTLMinutes int    `mapstructure:"access_ttl_minutes"`
		RefreshTTLHours  int    `mapstructure:"refresh_ttl_hours"`
		Issuer           string `mapstructure:"issuer"`
		SecureCookies    bool   `mapstructure:"secure_cookies"`
	} `mapstructure:"jwt"`

	Redis struct {
		Addr     string `mapstructure:"addr"`
		Password string `mapstructure:"password"`
		DB       int    `mapstructure:"db"`
		TTLSecs  int    `mapstructure:"analytics_ttl_seconds"`
	} `mapstructure:"redis"`

	Schedule struct {
		Timezone      string `mapstructure:"timezone"`
		AlternateMode string `mapstructure:"alternate_mode"`
		OpsStartHour  int    `mapstructure:"ops_start_hour"`
	} `mapstructure:"schedule"`

	OTP struct {
		Length         int  `mapstructure:"length"`
		ExpiryMinutes  int  `mapstructure:"expiry_minutes"`
		MaxAttempts    int  `mapstructure:"max_attempts"`
		MaxPerHour     int  `mapstructure:"max_per_hour"`
		EchoInResponse bool `mapstructure:"echo_in_response"`
		SendAttempts   int  `mapstructure:"send_attempts"`
		SendBackoffMS  int  `mapstructure:"send_backoff_ms"`
	} `mapstructure:"otp"`

	SMS struct {
		Provider string `mapstructure:"provider"` // fast2sms or mock
		APIKey   string `mapstructure:"api_key"`
		Route    string `mapstructure:"route"`
	} `mapstructure:"sms"`

	WhatsApp struct {
		Enabled bool   `mapstructure:"enabled"`
		APIKey  string `mapstructure:"api_key"`
	} `mapstructure:"whatsapp"`

	Storage StorageConfig `mapstructure:"storage"`
}

func Load() *Config {
	// Load .env file if exists (ignore error in production)
	godotenv.Load()

	v := viper.New()
	v.SetConfigType("yaml")
	v.SetConfigFile("configs/config.yaml")

	// Auto bind environment variables (server.port -> SERVER_PORT)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	// Config file is optional
	if err := v.ReadInConfig(); err != nil {
		log.Printf("[Config] No config file found, using defaults")
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		log.Fatalf("config unmarshal error: %v", err)
	}

	applyEnvOverrides(&cfg)

	if cfg.JWT.Secret == "" {
		log.Fatal("JWT_SECRET not found in environment or config")
	}
	if cfg.JWT.RefreshSecret == "" {
		cfg.JWT.RefreshSecret = cfg.JWT.Secret + ":refresh"
	}

	return &cfg
}

func setDefaults(v *viper.Viper) {
	// Set sensible defaults (binary works without config file)
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.metrics_port", 9090)
	v.SetDefault("server.cors_allowed_origins", []string{"http://localhost:3000"})
	v.SetDefault("server.cors_allowed_methods", []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"})
	v.SetDefault("server.cors_allowed_headers", []string{"Content-Type", "Authorization", "X-Request-ID"})
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.name", "aquagem")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_conns", 10)
	v.SetDefault("jwt.access_ttl_minutes", 15)
	v.SetDefault("jwt.refresh_ttl_hours", 168)
	v.SetDefault("jwt.issuer", "aquagem-backend")
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.analytics_ttl_seconds", 300)
	v.SetDefault("schedule.timezone", "Asia/Kolkata")
	v.SetDefault("schedule.alternate_mode", "always")
	v.SetDefault("schedule.ops_start_hour", 10)
	v.SetDefault("otp.length", 6)
	v.SetDefault("otp.expiry_minutes", 10)
	v.SetDefault("otp.max_attempts", 3)
	v.SetDefault("otp.max_per_hour", 5)
	v.SetDefault("otp.echo_in_response", false)
	v.SetDefault("otp.send_attempts", 3)
	v.SetDefault("otp.send_backoff_ms", 500)
	v.SetDefault("sms.provider", "mock")
	v.SetDefault("sms.route", "q")
	v.SetDefault("storage.region", "auto")
	v.SetDefault("storage.presign_ttl_minutes", 15)
}

func applyEnvOverrides(cfg *Config) {
	// Override database settings from DB_* environment variables
	if host := os.Getenv("DB_HOST"); host != "" {
		cfg.Database.Host = host
	}
	if port := os.Getenv("DB_PORT"); port != "" {
		if n, err := strconv.Atoi(port); err == nil && n > 0 {
			cfg.Database.Port = n
		}
	}
	if user := os.Getenv("DB_USER"); user != "" {
		cfg.Database.User = user
	}
	if pass := os.Getenv("DB_PASSWORD"); pass != "" {
		cfg.Database.Password = pass
	}
	if name := os.Getenv("DB_NAME"); name != "" {
		cfg.Database.Name = name
	}

	if secret := os.Getenv("JWT_SECRET"); secret != "" {
		cfg.JWT.Secret = secret
	}
	if secret := os.Getenv("JWT_REFRESH_SECRET"); secret != "" {
		cfg.JWT.RefreshSecret = secret
	}

	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		cfg.Redis.Addr = addr
	}
	if pass := os.Getenv("REDIS_PASSWORD"); pass != "" {
		cfg.Redis.Password = pass
	}

	if key := os.Getenv("FAST2SMS_API_KEY"); key != "" {
		cfg.SMS.APIKey = key
		if cfg.SMS.Provider == "mock" {
			cfg.SMS.Provider = "fast2sms"
		}
	}
	if key := os.Getenv("AISENSY_API_KEY"); key != "" {
		cfg.WhatsApp.APIKey = key
		cfg.WhatsApp.Enabled = true
	}

	cfg.Storage.applyEnv()
}
