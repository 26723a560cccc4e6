package config

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	LogLevel          string `yaml:"log-level" env:"LOG_LEVEL" env-default:"info"`
	HTTPPort          string `yaml:"http-port" env:"HTTP_PORT" env-default:"9090"`
	SocketPort        string `yaml:"socket-port" env:"SOCKET_PORT" env-default:"8080"`
	Redis             Redis  `yaml:"redis"`
	Game              Game   `yaml:"game"`
	SQLiteStoragePath string `yaml:"sqlite-storage-path" env:"SQLITE_STORAGE_PATH" env-default:"./data/stats.db"`
	PersonasPath      string `yaml:"personas-path" env:"PERSONAS_PATH"`
}

type Redis struct {
	Host       string        `yaml:"host" env:"REDIS_HOST" env-default:"localhost"`
	Port       string        `yaml:"port" env:"REDIS_PORT" env-default:"6379"`
	SessionTTL time.Duration `yaml:"session-ttl" env:"REDIS_SESSION_TTL" env-default:"24h"`
}

type Game struct {
	DefaultDifficulty string        `yaml:"default-difficulty" env:"GAME_DEFAULT_DIFFICULTY" env-default:"medium"`
	ThinkMin          time.Duration `yaml:"think-min" env:"GAME_THINK_MIN" env-default:"800ms"`
	ThinkMax          time.Duration `yaml:"think-max" env:"GAME_THINK_MAX" env-default:"2300ms"`
}

// MustLoad - load all configurations in config.yml file.
func MustLoad(path string) *Config {
	config, err := Load(path)
	if err != nil {
		panic(err)
	}

	return config
}

func Load(path string) (*Config, error) {
	config := &Config{}

	if err := cleanenv.ReadConfig(path, config); err != nil {
		return nil, fmt.Errorf("unable to load config file: %w", err)
	}

	if config.Game.ThinkMax < config.Game.ThinkMin {
		return nil, fmt.Errorf("game think-max %s is less than think-min %s", config.Game.ThinkMax, config.Game.ThinkMin)
	}

	return config, nil
}

func (that *Redis) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", that.Host, that.Port)
}
