package config

import (
	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Game     GameConfig     `mapstructure:"game"`
}

type ServerConfig struct {
	HTTPAddress    string `mapstructure:"http_address"`
	RPCAddress     string `mapstructure:"rpc_address"`
	MetricsAddress string `mapstructure:"metrics_address"`
	PublicURL      string `mapstructure:"public_url"` // base URL baked into join-link QR codes
}

type DatabaseConfig struct {
	Driver   string         `mapstructure:"driver"` // "gorm" or "pq"
	Postgres PostgresConfig `mapstructure:"postgres"`
}

type PostgresConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
}

type GameConfig struct {
	HandSize           int  `mapstructure:"hand_size"`
	MinPlayers         int  `mapstructure:"min_players"`
	TurnTimeoutSeconds int  `mapstructure:"turn_timeout_seconds"` // 0 disables the turn timer
	AllowSoloFinish    bool `mapstructure:"allow_solo_finish"`
	CodeAttempts       int  `mapstructure:"code_attempts"`
}

func LoadConfig(path string) (config *Config, err error) {
	viper.AddConfigPath(path)
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	viper.SetDefault("server.http_address", ":8080")
	viper.SetDefault("server.rpc_address", ":8081")
	viper.SetDefault("server.metrics_address", ":9100")
	viper.SetDefault("database.driver", "gorm")
	viper.SetDefault("game.hand_size", 7)
	viper.SetDefault("game.min_players", 2)
	viper.SetDefault("game.turn_timeout_seconds", 0)
	viper.SetDefault("game.allow_solo_finish", false)
	viper.SetDefault("game.code_attempts", 16)

	viper.AutomaticEnv()

	err = viper.ReadInConfig()
	if err != nil {
		// Missing config file is fine; defaults and env cover it.
		if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound {
			return
		}
		err = nil
	}

	err = viper.Unmarshal(&config)
	return
}
