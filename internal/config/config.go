package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Qdrant     QdrantConfig     `mapstructure:"qdrant"`
	Embedding  EmbeddingConfig  `mapstructure:"embedding"`
	Tenor      TenorConfig      `mapstructure:"tenor"`
	Search     SearchConfig     `mapstructure:"search"`
	Classifier ClassifierConfig `mapstructure:"classifier"`
	Emotions   EmotionsConfig   `mapstructure:"emotions"`
	Storage    StorageConfig    `mapstructure:"storage"`
}

type ServerConfig struct {
	Port int        `mapstructure:"port"`
	Mode string     `mapstructure:"mode"`
	CORS CORSConfig `mapstructure:"cors"`
}

type CORSConfig struct {
	AllowedOrigins  []string `mapstructure:"allowed_origins"`
	AllowAllOrigins bool     `mapstructure:"allow_all_origins"`
}

type DatabaseConfig struct {
	Driver          string        `mapstructure:"driver"` // sqlite, postgres
	Path            string        `mapstructure:"path"`   // sqlite only
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	DBName          string        `mapstructure:"dbname"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	AutoMigrate     bool          `mapstructure:"auto_migrate"`
}

// DSN builds the driver-specific connection string.
func (c *DatabaseConfig) DSN() string {
	if c.Driver == "postgres" {
		return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
			c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
	}
	return c.Path
}

type QdrantConfig struct {
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	Collection      string `mapstructure:"collection"`
	APIKey          string `mapstructure:"api_key"`
	UseTLS          bool   `mapstructure:"use_tls"`
	VectorDimension int    `mapstructure:"vector_dimension"`
	InMemory        bool   `mapstructure:"in_memory"`
}

type TenorConfig struct {
	APIKey            string        `mapstructure:"api_key"`
	ClientKey         string        `mapstructure:"client_key"`
	BaseURL           string        `mapstructure:"base_url"`
	MediaFilter       string        `mapstructure:"media_filter"`
	Timeout           time.Duration `mapstructure:"timeout"`
	RequestsPerSecond float64       `mapstructure:"requests_per_second"`
	PlaceholderWidth  int           `mapstructure:"placeholder_width"`
	PlaceholderHeight int           `mapstructure:"placeholder_height"`
}

type SearchConfig struct {
	ScoreThreshold float32 `mapstructure:"score_threshold"`
	DefaultLimit   int     `mapstructure:"default_limit"`
	MaxLimit       int     `mapstructure:"max_limit"`
}

type ClassifierConfig struct {
	// ModelPath is a local file or an s3://bucket/key URI. Empty means anchor-only mode.
	ModelPath      string  `mapstructure:"model_path"`
	MinConfidence  float32 `mapstructure:"min_confidence"`
	TrustThreshold float32 `mapstructure:"trust_threshold"`
	AnchorFloor    float32 `mapstructure:"anchor_floor"`
}

type EmotionsConfig struct {
	Path string `mapstructure:"path"`
}

// StorageConfig points at the S3-compatible bucket holding classifier artifacts.
type StorageConfig struct {
	Type      string `mapstructure:"type"` // s3, r2, s3compatible
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	UseSSL    bool   `mapstructure:"use_ssl"`
	Region    string `mapstructure:"region"`
}

func Load(configPath string) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./configs")
		v.AddConfigPath(".")
	}

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Secrets and the knobs most often flipped per deployment.
	v.BindEnv("server.port", "API_PORT")
	v.BindEnv("qdrant.host", "QDRANT_HOST")
	v.BindEnv("qdrant.port", "QDRANT_PORT")
	v.BindEnv("qdrant.api_key", "QDRANT_API_KEY")
	v.BindEnv("tenor.api_key", "TENOR_API_KEY")
	v.BindEnv("embedding.api_key", "EMBEDDING_API_KEY")
	v.BindEnv("embedding.base_url", "EMBEDDING_BASE_URL")
	v.BindEnv("storage.access_key", "S3_ACCESS_KEY")
	v.BindEnv("storage.secret_key", "S3_SECRET_KEY")
	v.BindEnv("classifier.model_path", "CLASSIFIER_MODEL_PATH")
	v.BindEnv("emotions.path", "EMOTIONS_CONFIG_PATH")
	v.BindEnv("search.score_threshold", "SEARCH_SCORE_THRESHOLD")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg.Embedding.ResolveEnvVars()

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8000)
	v.SetDefault("server.mode", "debug")
	v.SetDefault("server.cors.allow_all_origins", true)
	v.SetDefault("server.cors.allowed_origins", []string{})

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.path", "./data/contextual.db")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("database.conn_max_lifetime", time.Hour)
	v.SetDefault("database.auto_migrate", true)

	v.SetDefault("qdrant.host", "localhost")
	v.SetDefault("qdrant.port", 6334)
	v.SetDefault("qdrant.collection", "gifs")
	v.SetDefault("qdrant.vector_dimension", 384)
	v.SetDefault("qdrant.in_memory", false)

	v.SetDefault("embedding.name", "default")
	v.SetDefault("embedding.provider", "openai-compatible")
	v.SetDefault("embedding.model", "all-MiniLM-L6-v2")
	v.SetDefault("embedding.dimensions", 384)
	v.SetDefault("embedding.timeout", 30*time.Second)
	v.SetDefault("embedding.api_key_env", "OPENAI_API_KEY")
	v.SetDefault("embedding.base_url_env", "OPENAI_BASE_URL")

	v.SetDefault("tenor.client_key", "contextual_discord_bot")
	v.SetDefault("tenor.base_url", "https://tenor.googleapis.com/v2")
	v.SetDefault("tenor.media_filter", "gif,tinygif,mp4")
	v.SetDefault("tenor.timeout", 10*time.Second)
	v.SetDefault("tenor.requests_per_second", 5.0)
	v.SetDefault("tenor.placeholder_width", 498)
	v.SetDefault("tenor.placeholder_height", 280)

	v.SetDefault("search.score_threshold", 0.6)
	v.SetDefault("search.default_limit", 20)
	v.SetDefault("search.max_limit", 50)

	v.SetDefault("classifier.min_confidence", 0.3)
	v.SetDefault("classifier.trust_threshold", 0.6)
	v.SetDefault("classifier.anchor_floor", 0.25)

	v.SetDefault("emotions.path", "./configs/emotions.yaml")

	v.SetDefault("storage.type", "s3")
	v.SetDefault("storage.use_ssl", true)
}
