// Package bot serves engine moves over NATS request/reply.
package bot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog/log"

	"github.com/domino14/tictactoe/board"
	"github.com/domino14/tictactoe/cache"
	"github.com/domino14/tictactoe/config"
	"github.com/domino14/tictactoe/mtdf"
)

// MoveRequest asks for the best move in a position. Rows use '.', 'X'
// and 'O'.
type MoveRequest struct {
	Rows         []string `json:"rows"`
	Turn         string   `json:"turn"`
	SearchMillis int      `json:"search_ms,omitempty"`
	MaxDepth     int      `json:"max_depth,omitempty"`
}

type MoveResponse struct {
	Row    int    `json:"row"`
	Col    int    `json:"col"`
	Score  int    `json:"score"`
	Depth  int    `json:"depth"`
	Solved bool   `json:"solved"`
	Error  string `json:"error,omitempty"`
}

type Bot struct {
	sync.Mutex
	config *config.Config
	solver *mtdf.Solver
}

func NewBot(cfg *config.Config) *Bot {
	s := mtdf.NewSolver()
	s.SetPoolMemoryFraction(cfg.GetFloat64(config.ConfigNodePoolMemoryFraction))
	return &Bot{config: cfg, solver: s}
}

func errorResponse(message string, err error) *MoveResponse {
	msg := message
	if err != nil {
		msg = fmt.Sprintf("%s: %s", msg, err.Error())
	}
	return &MoveResponse{Error: msg}
}

// Deserialize parses a request into a board ready to search.
func (bot *Bot) Deserialize(data []byte) (*board.Board, *MoveRequest, error) {
	req := &MoveRequest{}
	if err := json.Unmarshal(data, req); err != nil {
		return nil, nil, err
	}
	size := len(req.Rows)
	if size < bot.config.GetInt(config.ConfigMinBoardSize) || size > bot.config.GetInt(config.ConfigMaxBoardSize) {
		return nil, nil, fmt.Errorf("unsupported board size %d", size)
	}
	turn, err := board.MarkFromString(req.Turn)
	if err != nil {
		return nil, nil, err
	}
	if turn == board.Empty {
		return nil, nil, errors.New("turn must be X or O")
	}
	table, err := cache.HashTable(bot.config, size)
	if err != nil {
		return nil, nil, err
	}
	b, err := board.FromRows(req.Rows, turn, table)
	if err != nil {
		return nil, nil, err
	}
	return b, req, nil
}

func (bot *Bot) handle(data []byte) *MoveResponse {
	b, req, err := bot.Deserialize(data)
	if err != nil {
		return errorResponse("Could not parse request", err)
	}
	bot.Lock()
	defer bot.Unlock()
	searchTime := bot.config.GetDuration(config.ConfigSearchTime)
	if req.SearchMillis > 0 {
		searchTime = time.Duration(req.SearchMillis) * time.Millisecond
	}
	bot.solver.SetSearchTime(searchTime)
	bot.solver.SetMaxDepth(req.MaxDepth)

	res, err := bot.solver.GuessNextMove(context.Background(), b)
	if err != nil {
		return errorResponse("Could not find a move", err)
	}
	log.Info().Int("row", res.Row).Int("col", res.Col).Int("depth", res.Depth).Msg("generated-move")
	return &MoveResponse{Row: res.Row, Col: res.Col, Score: res.Score, Depth: res.Depth, Solved: res.Solved}
}

// Handle answers one serialized request. Errors are reported inside the
// response.
func (bot *Bot) Handle(data []byte) []byte {
	out, err := json.Marshal(bot.handle(data))
	if err != nil {
		// Should never happen.
		return []byte(`{"error":"could not encode response"}`)
	}
	return out
}

func connect(ctx context.Context, url string, opts ...nats.Option) (*nats.Conn, error) {
	var nc *nats.Conn
	err := retry.Do(
		func() error {
			var err error
			nc, err = nats.Connect(url, opts...)
			return err
		},
		retry.Context(ctx),
		retry.Attempts(5),
		retry.DelayType(func(n uint, err error, config *retry.Config) time.Duration {
			log.Err(err).Uint("n", n).Str("url", url).Msg("could-not-connect-try-again")
			return retry.BackOffDelay(n, err, config)
		}),
	)
	return nc, err
}

// Main serves requests on the configured channel until ctx is done.
func Main(ctx context.Context, bot *Bot) error {
	channel := bot.config.GetString(config.ConfigBotChannel)
	nc, err := connect(ctx, bot.config.GetString(config.ConfigNatsURL), nats.Name("tictactoe-bot"))
	if err != nil {
		return err
	}
	defer nc.Close()

	sub, err := nc.Subscribe(channel, func(m *nats.Msg) {
		log.Info().Int("bytes", len(m.Data)).Msg("recv")
		if err := m.Respond(bot.Handle(m.Data)); err != nil {
			log.Err(err).Msg("respond-failed")
		}
	})
	if err != nil {
		return err
	}
	if err := nc.Flush(); err != nil {
		return err
	}
	if err := nc.LastError(); err != nil {
		return err
	}
	log.Info().Str("channel", channel).Msg("listening")

	<-ctx.Done()
	if err := sub.Unsubscribe(); err != nil {
		log.Err(err).Msg("unsubscribe-failed")
	}
	return nc.Drain()
}
