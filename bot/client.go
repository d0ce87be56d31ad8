package bot

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog/log"

	"github.com/domino14/tictactoe/board"
	"github.com/domino14/tictactoe/config"
)

type Client struct {
	nc      *nats.Conn
	channel string
	timeout time.Duration
}

// NewClient connects to the configured NATS server.
func NewClient(ctx context.Context, cfg *config.Config) (*Client, error) {
	nc, err := connect(ctx, cfg.GetString(config.ConfigNatsURL), nats.Name("tictactoe-client"))
	if err != nil {
		return nil, err
	}
	return &Client{
		nc:      nc,
		channel: cfg.GetString(config.ConfigBotChannel),
		timeout: cfg.GetDuration(config.ConfigBotRequestTimeout),
	}, nil
}

func (c *Client) Close() {
	c.nc.Close()
}

func MakeRequest(b *board.Board, searchTime time.Duration) ([]byte, error) {
	return json.Marshal(&MoveRequest{
		Rows:         b.Rows(),
		Turn:         b.Turn().String(),
		SearchMillis: int(searchTime / time.Millisecond),
	})
}

// ParseResponse decodes a bot reply, turning an error reply into an error.
func ParseResponse(data []byte) (*MoveResponse, error) {
	resp := &MoveResponse{}
	if err := json.Unmarshal(data, resp); err != nil {
		return nil, err
	}
	if resp.Error != "" {
		return nil, errors.New("Bot returned: " + resp.Error)
	}
	return resp, nil
}

// RequestMove sends a position to the bot and waits for its move.
// Timeouts are retried; the bot's own errors are not.
func (c *Client) RequestMove(ctx context.Context, b *board.Board, searchTime time.Duration) (*MoveResponse, error) {
	data, err := MakeRequest(b, searchTime)
	if err != nil {
		return nil, err
	}
	var reply *nats.Msg
	err = retry.Do(
		func() error {
			var err error
			reply, err = c.nc.Request(c.channel, data, c.timeout+searchTime)
			if err != nil && c.nc.LastError() != nil {
				log.Error().Err(c.nc.LastError()).Msg("connection-error")
			}
			return err
		},
		retry.Context(ctx),
		retry.Attempts(3),
		retry.RetryIf(func(err error) bool {
			return errors.Is(err, nats.ErrTimeout) || errors.Is(err, nats.ErrNoResponders)
		}),
		retry.DelayType(func(n uint, err error, config *retry.Config) time.Duration {
			log.Err(err).Uint("n", n).Msg("no-reply-try-again")
			return retry.BackOffDelay(n, err, config)
		}),
	)
	if err != nil {
		return nil, err
	}
	log.Debug().Str("res", string(reply.Data)).Msg("bot-reply")
	return ParseResponse(reply.Data)
}
