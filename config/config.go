package config

import (
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	ConfigDebug                  = "debug"
	ConfigSearchTime             = "search-time"
	ConfigHashSeed               = "hash-seed"
	ConfigDefaultBoardSize       = "default-board-size"
	ConfigMinBoardSize           = "min-board-size"
	ConfigMaxBoardSize           = "max-board-size"
	ConfigNodePoolMemoryFraction = "node-pool-memory-fraction"
	ConfigNatsURL                = "nats-url"
	ConfigBotChannel             = "bot-channel"
	ConfigBotRequestTimeout      = "bot-request-timeout"
	ConfigAutoplayThreads        = "autoplay-threads"
)

type Config struct {
	*viper.Viper
}

// DefaultConfig returns a config with every key at its default and no
// environment or flag overrides applied.
func DefaultConfig() *Config {
	c := &Config{viper.New()}
	c.setDefaults()
	return c
}

func (c *Config) setDefaults() {
	c.SetDefault(ConfigDebug, false)
	c.SetDefault(ConfigSearchTime, time.Second)
	c.SetDefault(ConfigHashSeed, int64(0))
	c.SetDefault(ConfigDefaultBoardSize, 10)
	c.SetDefault(ConfigMinBoardSize, 3)
	c.SetDefault(ConfigMaxBoardSize, 15)
	c.SetDefault(ConfigNodePoolMemoryFraction, 0.05)
	c.SetDefault(ConfigNatsURL, "nats://localhost:4222")
	c.SetDefault(ConfigBotChannel, "tictactoe.bot")
	c.SetDefault(ConfigBotRequestTimeout, 10*time.Second)
	c.SetDefault(ConfigAutoplayThreads, 4)
}

// Load reads flags from args and environment variables prefixed with
// TICTACTOE_ (for example TICTACTOE_SEARCH_TIME=2s). Flags win over the
// environment.
func (c *Config) Load(args []string) error {
	if c.Viper == nil {
		c.Viper = viper.New()
	}
	c.setDefaults()

	fs := pflag.NewFlagSet("tictactoe", pflag.ContinueOnError)
	fs.Bool(ConfigDebug, false, "debug logging on")
	fs.Duration(ConfigSearchTime, time.Second, "time budget for each AI move")
	fs.Int64(ConfigHashSeed, 0, "seed for the position hash tables; 0 picks one at random")
	fs.Int(ConfigDefaultBoardSize, 10, "board size for new games")
	fs.Int(ConfigMinBoardSize, 3, "smallest allowed board size")
	fs.Int(ConfigMaxBoardSize, 15, "largest allowed board size")
	fs.Float64(ConfigNodePoolMemoryFraction, 0.05, "share of system memory the search may keep between moves")
	fs.String(ConfigNatsURL, "nats://localhost:4222", "the NATS server URL")
	fs.String(ConfigBotChannel, "tictactoe.bot", "the NATS subject the bot listens on")
	fs.Duration(ConfigBotRequestTimeout, 10*time.Second, "how long a client waits for the bot")
	fs.Int(ConfigAutoplayThreads, 4, "games played concurrently by autoplay")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := c.BindPFlags(fs); err != nil {
		return err
	}

	c.SetEnvPrefix("tictactoe")
	c.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	c.AutomaticEnv()
	return nil
}
