package bot

import (
	"encoding/json"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/matryer/is"
	"github.com/rs/zerolog"

	"github.com/domino14/tictactoe/board"
	"github.com/domino14/tictactoe/config"
	"github.com/domino14/tictactoe/zobrist"
)

var DefaultConfig = config.DefaultConfig()

func TestMain(m *testing.M) {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	DefaultConfig.Set(config.ConfigHashSeed, int64(8))
	os.Exit(m.Run())
}

func TestHandleFindsWin(t *testing.T) {
	is := is.New(t)
	bot := NewBot(DefaultConfig)
	out := bot.Handle([]byte(`{"rows":["XX.","OO.","..."],"turn":"X","search_ms":2000}`))
	resp, err := ParseResponse(out)
	is.NoErr(err)
	is.Equal(resp.Row, 0)
	is.Equal(resp.Col, 2)
	is.True(resp.Solved)
}

func TestClientRequestRoundTrip(t *testing.T) {
	is := is.New(t)
	b, err := board.FromRows([]string{"XX.", "O..", "..."}, board.O,
		zobrist.NewHashTable(3, zobrist.NewSource(1)))
	is.NoErr(err)
	data, err := MakeRequest(b, 1500*time.Millisecond)
	is.NoErr(err)

	req := MoveRequest{}
	is.NoErr(json.Unmarshal(data, &req))
	is.Equal(req, MoveRequest{Rows: []string{"XX.", "O..", "..."}, Turn: "O", SearchMillis: 1500})

	resp, err := ParseResponse(NewBot(DefaultConfig).Handle(data))
	is.NoErr(err)
	is.Equal(resp.Row, 0)
	is.Equal(resp.Col, 2)
}

func TestHandleErrors(t *testing.T) {
	is := is.New(t)
	bot := NewBot(DefaultConfig)
	cases := []struct {
		req  string
		want string
	}{
		{`not json`, "Could not parse request"},
		{`{"rows":["..",".."],"turn":"X"}`, "unsupported board size 2"},
		{`{"rows":["...","...","..."],"turn":"."}`, "turn must be X or O"},
		{`{"rows":["...","...","..."],"turn":"Q"}`, "Could not parse request"},
		{`{"rows":["...","..","..."],"turn":"X"}`, "row 1"},
		{`{"rows":["XOX","XOO","OXX"],"turn":"X"}`, "Could not find a move"},
	}
	for _, tc := range cases {
		_, err := ParseResponse(bot.Handle([]byte(tc.req)))
		is.True(err != nil)
		is.True(strings.Contains(err.Error(), tc.want)) // tc.req
	}
}

func TestMaxDepthIsHonored(t *testing.T) {
	is := is.New(t)
	bot := NewBot(DefaultConfig)
	rows := strings.Repeat("......,", 6)
	req, err := json.Marshal(MoveRequest{
		Rows: strings.Split(strings.TrimSuffix(rows, ","), ","), Turn: "X",
		SearchMillis: 60000, MaxDepth: 1,
	})
	is.NoErr(err)
	resp, err := ParseResponse(bot.Handle(req))
	is.NoErr(err)
	is.Equal(resp.Depth, 1)
}
