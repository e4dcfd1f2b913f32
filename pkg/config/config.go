package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Discord DiscordConfig
	Wiki    WikiConfig
	Cache   CacheConfig
	Redis   RedisConfig
	SQLite  SQLiteConfig
	Server  ServerConfig
	Logging LoggingConfig
}

type DiscordConfig struct {
	Token           string
	AppID           string
	GuildIDs        []string
	CooldownPerUser int
	CooldownWindow  int
}

type WikiConfig struct {
	BaseURL              string
	UserAgent            string
	TimeoutSec           int
	IndexRefreshMinutes  int
	IndexStartPath       string
}

type CacheConfig struct {
	TTLHours int
}

type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
}

type SQLiteConfig struct {
	Path string
}

type ServerConfig struct {
	Host         string
	Port         int
	ReadTimeout  int
	WriteTimeout int
}

type LoggingConfig struct {
	Level      string
	Format     string
	OutputPath string
}

func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AddConfigPath("/etc/farm-computer")

	viper.SetEnvPrefix("FARM_COMPUTER")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &config, nil
}

func setDefaults() {
	viper.SetDefault("discord.cooldownPerUser", 1)
	viper.SetDefault("discord.cooldownWindow", 5)

	viper.SetDefault("wiki.baseURL", "https://stardewvalleywiki.com")
	viper.SetDefault("wiki.userAgent", "FarmComputer/2.0 (+https://github.com/Ken-Miles/farm-computer)")
	viper.SetDefault("wiki.timeoutSec", 10)
	viper.SetDefault("wiki.indexRefreshMinutes", 60)
	viper.SetDefault("wiki.indexStartPath", "/Special:AllPages?from=&to=z&namespace=0&hideredirects=1")

	viper.SetDefault("cache.ttlHours", 5)

	viper.SetDefault("redis.enabled", false)
	viper.SetDefault("redis.host", "localhost")
	viper.SetDefault("redis.port", 6379)
	viper.SetDefault("redis.db", 0)

	viper.SetDefault("sqlite.path", "./data/farmcomputer.db")

	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.readTimeout", 30)
	viper.SetDefault("server.writeTimeout", 30)

	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "json")
	viper.SetDefault("logging.outputPath", "stdout")
}
