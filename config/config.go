package config

import (
	"errors"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
	"github.com/subosito/gotenv"
)

// Config содержит настройки сервиса
type Config struct {
	App struct {
		Env string
	} `mapstructure:"app"`

	HTTP struct {
		Port        string
		CORSOrigins string `mapstructure:"cors_origins"`
	} `mapstructure:"http"`

	Database struct {
		URL        string
		SQLitePath string `mapstructure:"sqlite_path"`
	} `mapstructure:"database"`

	Auth struct {
		JWTSecret string        `mapstructure:"jwt_secret"`
		TokenTTL  time.Duration `mapstructure:"token_ttl"`
	} `mapstructure:"auth"`

	Admin struct {
		Name     string
		Email    string
		Password string
	} `mapstructure:"admin"`

	Storage struct {
		Dir       string
		PublicURL string        `mapstructure:"public_url"`
		URLTTL    time.Duration `mapstructure:"url_ttl"`
	} `mapstructure:"storage"`

	Inventory struct {
		ResolveConcurrency int `mapstructure:"resolve_concurrency"`
	} `mapstructure:"inventory"`

	Metrics struct {
		Enabled bool
	} `mapstructure:"metrics"`

	Telegram struct {
		Token          string
		ChatID         int64         `mapstructure:"chat_id"`
		DigestInterval time.Duration `mapstructure:"digest_interval"`
	} `mapstructure:"telegram"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.env", "dev")
	v.SetDefault("http.port", "8080")
	v.SetDefault("http.cors_origins", "http://localhost:3000,http://127.0.0.1:3000,http://10.0.2.2:8080")
	v.SetDefault("database.url", "")
	v.SetDefault("database.sqlite_path", "foodbank.db")
	v.SetDefault("auth.jwt_secret", "foodbank-secret-key-change-in-production")
	v.SetDefault("auth.token_ttl", 24*time.Hour)
	v.SetDefault("admin.name", "Administrador")
	v.SetDefault("admin.email", "")
	v.SetDefault("admin.password", "")
	v.SetDefault("storage.dir", "uploads")
	v.SetDefault("storage.public_url", "http://localhost:8080")
	v.SetDefault("storage.url_ttl", time.Hour)
	v.SetDefault("inventory.resolve_concurrency", 8)
	v.SetDefault("metrics.enabled", true)
	v.SetDefault("telegram.token", "")
	v.SetDefault("telegram.chat_id", 0)
	v.SetDefault("telegram.digest_interval", 24*time.Hour)
}

// Load читает конфигурацию: значения по умолчанию, затем YAML-файл (если есть),
// затем переменные окружения (FOODBANK_HTTP_PORT и т.п.)
func Load(path string) (Config, error) {
	// .env необязателен
	_ = gotenv.Load()

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("FOODBANK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Старые имена переменных окружения
	_ = v.BindEnv("database.url", "FOODBANK_DATABASE_URL", "DATABASE_URL")
	_ = v.BindEnv("auth.jwt_secret", "FOODBANK_AUTH_JWT_SECRET", "JWT_SECRET")
	_ = v.BindEnv("http.port", "FOODBANK_HTTP_PORT", "PORT")
	_ = v.BindEnv("http.cors_origins", "FOODBANK_HTTP_CORS_ORIGINS", "CORS_ORIGINS")

	var c Config
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) && !os.IsNotExist(err) {
				return c, err
			}
		}
	}
	if err := v.Unmarshal(&c); err != nil {
		return c, err
	}
	return c, nil
}
