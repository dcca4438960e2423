package config

import (
	"errors"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

type Config struct {
	Service   ServiceConfig   `mapstructure:"service"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Jwt       JwtConfig       `mapstructure:"jwt"`
	Consul    ConsulConfig    `mapstructure:"consul"`
	Tracing   TracingConfig   `mapstructure:"tracing"`
	RabbitMQ  RabbitMQConfig  `mapstructure:"rabbitmq"`
	Elastic   ElasticConfig   `mapstructure:"elastic"`
	RateLimit RateLimitConfig `mapstructure:"ratelimit"`
	Log       LogConfig       `mapstructure:"log"`
}

type ServiceConfig struct {
	Name     string `mapstructure:"name"`
	Port     int    `mapstructure:"port"`
	MediaURL string `mapstructure:"media_url"`
	PageSize int    `mapstructure:"page_size"`
}

// DatabaseConfig selects the gorm dialector. When DSN is empty and Driver is
// mysql, the DSN is assembled from the Mysql block.
type DatabaseConfig struct {
	Driver       string      `mapstructure:"driver"`
	DSN          string      `mapstructure:"dsn"`
	Mysql        MysqlConfig `mapstructure:"mysql"`
	MaxIdleConns int         `mapstructure:"max_idle_conns"`
	MaxOpenConns int         `mapstructure:"max_open_conns"`
	LogLevel     string      `mapstructure:"log_level"`
}

type MysqlConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DbName   string `mapstructure:"dbname"`
}

type RedisConfig struct {
	Address  string        `mapstructure:"address"`
	Password string        `mapstructure:"password"`
	Db       int           `mapstructure:"db"`
	CacheTTL time.Duration `mapstructure:"cache_ttl"`
}

type JwtConfig struct {
	Secret string        `mapstructure:"secret"`
	Issuer string        `mapstructure:"issuer"`
	TTL    time.Duration `mapstructure:"ttl"`
}

type ConsulConfig struct {
	Address string `mapstructure:"address"`
}

type TracingConfig struct {
	Endpoint string `mapstructure:"endpoint"`
}

type RabbitMQConfig struct {
	URL      string `mapstructure:"url"`
	Exchange string `mapstructure:"exchange"`
}

type ElasticConfig struct {
	URL   string `mapstructure:"url"`
	Index string `mapstructure:"index"`
}

type RateLimitConfig struct {
	AddToCartQPS float64 `mapstructure:"add_to_cart_qps"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Pretty bool   `mapstructure:"pretty"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("service.name", "grocery-store")
	v.SetDefault("service.port", 8000)
	v.SetDefault("service.media_url", "/media/")
	v.SetDefault("service.page_size", 5)

	v.SetDefault("database.driver", "mysql")
	v.SetDefault("database.dsn", "")
	v.SetDefault("database.mysql.host", "127.0.0.1")
	v.SetDefault("database.mysql.port", 3306)
	v.SetDefault("database.mysql.user", "root")
	v.SetDefault("database.mysql.password", "")
	v.SetDefault("database.mysql.dbname", "grocery")
	v.SetDefault("database.max_idle_conns", 10)
	v.SetDefault("database.max_open_conns", 100)
	v.SetDefault("database.log_level", "warn")

	v.SetDefault("redis.address", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.cache_ttl", 5*time.Minute)

	v.SetDefault("jwt.secret", "")
	v.SetDefault("jwt.issuer", "go-grocery")
	v.SetDefault("jwt.ttl", 24*time.Hour)

	v.SetDefault("consul.address", "")
	v.SetDefault("tracing.endpoint", "")
	v.SetDefault("rabbitmq.url", "")
	v.SetDefault("rabbitmq.exchange", "grocery.events")
	v.SetDefault("elastic.url", "")
	v.SetDefault("elastic.index", "products")
	v.SetDefault("ratelimit.add_to_cart_qps", 0)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.pretty", false)
}

// LoadConfig reads config.yaml from path (missing file is fine), then applies
// .env and environment overrides such as DATABASE_DSN or JWT_SECRET.
func LoadConfig(path string) (*Config, error) {
	// .env is optional, the process environment wins
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)
	v.AddConfigPath(path)
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
		log.Warn().Str("path", path).Msg("config.yaml not found, using defaults and environment")
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}
	if config.Jwt.Secret == "" {
		return nil, errors.New("jwt.secret must be set")
	}

	log.Info().Str("path", path).Str("service", config.Service.Name).Msg("config loaded")
	return &config, nil
}
