package runner

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/domino14/tictactoe/config"
)

var ErrInvalidBoardSize = errors.New("board size out of range")

type GameOptions struct {
	Size      int
	AIEnabled bool
	AIStarts  bool
	SwapMarks bool
}

// DefaultGameOptions is a human-vs-AI game on the configured default
// board, human first.
func DefaultGameOptions(cfg *config.Config) GameOptions {
	opts := GameOptions{AIEnabled: true}
	opts.SetDefaults(cfg)
	return opts
}

func (opts *GameOptions) SetDefaults(cfg *config.Config) {
	if opts.Size == 0 {
		opts.Size = cfg.GetInt(config.ConfigDefaultBoardSize)
		log.Debug().Int("size", opts.Size).Msg("using-default-board-size")
	}
}

func (opts *GameOptions) Validate(cfg *config.Config) error {
	smallest := cfg.GetInt(config.ConfigMinBoardSize)
	largest := cfg.GetInt(config.ConfigMaxBoardSize)
	if opts.Size < smallest || opts.Size > largest {
		return fmt.Errorf("%w: %d is not in [%d, %d]", ErrInvalidBoardSize, opts.Size, smallest, largest)
	}
	return nil
}

// Set changes one option by name. Names are size, ai, aistarts and swap.
func (opts *GameOptions) Set(cfg *config.Config, name, value string) error {
	switch strings.ToLower(name) {
	case "size":
		n, err := strconv.Atoi(value)
		if err != nil {
			return err
		}
		o := *opts
		o.Size = n
		if err := o.Validate(cfg); err != nil {
			return err
		}
		opts.Size = n
	case "ai", "aistarts", "swap":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return err
		}
		switch strings.ToLower(name) {
		case "ai":
			opts.AIEnabled = b
		case "aistarts":
			opts.AIStarts = b
		case "swap":
			opts.SwapMarks = b
		}
	default:
		return fmt.Errorf("option %v not recognized", name)
	}
	return nil
}

func (opts GameOptions) ToDisplayString() string {
	return fmt.Sprintf("size=%d ai=%v aistarts=%v swap=%v",
		opts.Size, opts.AIEnabled, opts.AIStarts, opts.SwapMarks)
}
