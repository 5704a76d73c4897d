package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App          AppConfig          `mapstructure:"app"`
	Server       ServerConfig       `mapstructure:"server"`
	Log          LogConfig          `mapstructure:"log"`
	DB           DBConfig           `mapstructure:"db"`
	Arena        ArenaConfig        `mapstructure:"arena"`
	Oracle       OracleConfig       `mapstructure:"oracle"`
	Confidential ConfidentialConfig `mapstructure:"confidential"`
	Keeper       KeeperConfig       `mapstructure:"keeper"`
}

type AppConfig struct {
	Env string `mapstructure:"env"`
}

type ServerConfig struct {
	HTTPAddr string `mapstructure:"http_addr"`
}

type LogConfig struct {
	Level             string `mapstructure:"level"`
	Encoding          string `mapstructure:"encoding"`
	Development       bool   `mapstructure:"development"`
	Sampling          bool   `mapstructure:"sampling"`
	DisableCaller     bool   `mapstructure:"disable_caller"`
	DisableStacktrace bool   `mapstructure:"disable_stacktrace"`
}

type DBConfig struct {
	Enabled         bool          `mapstructure:"enabled"`
	DSN             string        `mapstructure:"dsn"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"`
	Timezone        string        `mapstructure:"timezone"`
}

type ArenaConfig struct {
	Instance      string        `mapstructure:"instance"`
	EntryFeeWei   string        `mapstructure:"entry_fee_wei"`
	LockDuration  time.Duration `mapstructure:"lock_duration"`
	RoundDuration time.Duration `mapstructure:"round_duration"`
	RangeBounds   []int64       `mapstructure:"range_bounds"`
}

type OracleConfig struct {
	Provider    string        `mapstructure:"provider"` // binance | static
	Symbol      string        `mapstructure:"symbol"`
	Timeout     time.Duration `mapstructure:"timeout"`
	StaticPrice string        `mapstructure:"static_price"`
}

type ConfidentialConfig struct {
	Secret string `mapstructure:"secret"`
}

type KeeperConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Spec    string `mapstructure:"spec"`
}

func Load(path string, envOnly bool) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("LF")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.AutomaticEnv()
	v.SetDefault("app.env", "dev")
	v.SetDefault("server.http_addr", ":8080")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.encoding", "console")
	v.SetDefault("log.development", true)
	v.SetDefault("log.sampling", false)
	v.SetDefault("log.disable_caller", false)
	v.SetDefault("log.disable_stacktrace", false)
	v.SetDefault("db.enabled", true)
	v.SetDefault("db.max_open_conns", 20)
	v.SetDefault("db.max_idle_conns", 5)
	v.SetDefault("db.conn_max_lifetime", "30m")
	v.SetDefault("db.conn_max_idle_time", "5m")
	v.SetDefault("db.timezone", "UTC")
	v.SetDefault("arena.instance", "lumenfi-arena")
	v.SetDefault("arena.entry_fee_wei", "350000000000000") // 0.00035 ether
	v.SetDefault("arena.lock_duration", "96h")
	v.SetDefault("arena.round_duration", "168h")
	v.SetDefault("arena.range_bounds", []int64{-10000, 0, 10000})
	v.SetDefault("oracle.provider", "binance")
	v.SetDefault("oracle.symbol", "BTCUSDT")
	v.SetDefault("oracle.timeout", "10s")
	v.SetDefault("oracle.static_price", "50000")
	v.SetDefault("confidential.secret", "")
	v.SetDefault("keeper.enabled", true)
	v.SetDefault("keeper.spec", "@every 1m")

	if !envOnly {
		if err := v.ReadInConfig(); err != nil {
			return Config{}, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}

	return cfg, nil
}
