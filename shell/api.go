package shell

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/samber/lo"

	"github.com/domino14/tictactoe/automatic"
	"github.com/domino14/tictactoe/game"
)

type Response struct {
	message string
}

type CmdOptions map[string][]string

func (c CmdOptions) String(key string) string {
	v := c[key]
	if len(v) > 0 {
		return v[0]
	}
	return ""
}

func (c CmdOptions) IntDefault(key string, defaultI int) (int, error) {
	v := c[key]
	if len(v) == 0 {
		return defaultI, nil
	}
	return strconv.Atoi(v[0])
}

func (c CmdOptions) DurationDefault(key string, defaultD time.Duration) (time.Duration, error) {
	v := c[key]
	if len(v) == 0 {
		return defaultD, nil
	}
	return time.ParseDuration(v[0])
}

func msg(message string) *Response {
	return &Response{message: message}
}

func describeEvents(evts []game.Event) string {
	lines := lo.FilterMap(evts, func(e game.Event, _ int) (string, bool) {
		switch e.Type {
		case game.EventMarkPlaced:
			return fmt.Sprintf("%v plays (%d,%d)", e.Mark, e.Row, e.Col), true
		case game.EventGameFinished:
			if e.Result == game.ResultCombo {
				return fmt.Sprintf("game over: combo %v", e.Combo), true
			}
			return fmt.Sprintf("game over: %v", e.Result), true
		}
		return "", false
	})
	return strings.Join(lines, "\n")
}

func (sc *ShellController) withBoard(evts []game.Event) *Response {
	var sb strings.Builder
	if d := describeEvents(evts); d != "" {
		sb.WriteString(d)
		sb.WriteString("\n")
	}
	sb.WriteString(sc.runner.Game().ToDisplayText())
	return msg(sb.String())
}

func (sc *ShellController) newGame(cmd *shellcmd) (*Response, error) {
	if len(cmd.args) > 0 {
		if err := sc.runner.SetOption("size", cmd.args[0]); err != nil {
			return nil, err
		}
	}
	for _, opt := range []string{"size", "swap", "ai", "aistarts"} {
		if v := cmd.options.String(opt); v != "" {
			if err := sc.runner.SetOption(opt, v); err != nil {
				return nil, err
			}
		}
	}
	evts, err := sc.runner.StartGame()
	if err != nil {
		return nil, err
	}
	return sc.withBoard(evts), nil
}

func parseCell(args []string) (int, int, error) {
	if len(args) != 2 {
		return 0, 0, errors.New("need a row and a column")
	}
	row, err := strconv.Atoi(args[0])
	if err != nil {
		return 0, 0, err
	}
	col, err := strconv.Atoi(args[1])
	if err != nil {
		return 0, 0, err
	}
	return row, col, nil
}

// play places the human's mark and, if the engine is on, answers it.
func (sc *ShellController) play(cmd *shellcmd) (*Response, error) {
	row, col, err := parseCell(cmd.args)
	if err != nil {
		return nil, err
	}
	ok, evts, err := sc.runner.PlayHuman(row, col)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("cell (%d,%d) is taken", row, col)
	}
	if sc.runner.AITurn() {
		_, more, err := sc.runner.PlayAI(sc.ctx)
		if err != nil {
			return nil, err
		}
		evts = append(evts, more...)
	}
	return sc.withBoard(evts), nil
}

func (sc *ShellController) aiMove(cmd *shellcmd) (*Response, error) {
	res, evts, err := sc.runner.PlayAI(sc.ctx)
	if err != nil {
		return nil, err
	}
	r := sc.withBoard(evts)
	r.message = fmt.Sprintf("%v\n%s", res.Result, r.message)
	return r, nil
}

func (sc *ShellController) hint(cmd *shellcmd) (*Response, error) {
	res, err := sc.runner.Hint(sc.ctx)
	if err != nil {
		return nil, err
	}
	return msg(fmt.Sprintf("best move for %v: (%d,%d) score %d, depth %d",
		sc.runner.Game().CurrentTurn(), res.Row, res.Col, res.Score, res.Depth)), nil
}

func (sc *ShellController) show(cmd *shellcmd) (*Response, error) {
	return msg(sc.runner.Game().ToDisplayText()), nil
}

func (sc *ShellController) score(cmd *shellcmd) (*Response, error) {
	if len(cmd.args) == 1 && cmd.args[0] == "clear" {
		sc.runner.ClearScore()
	}
	x, o := sc.runner.Score()
	return msg(fmt.Sprintf("X %d - O %d", x, o)), nil
}

func (sc *ShellController) finish(cmd *shellcmd) (*Response, error) {
	evts := sc.runner.FinishGame()
	if len(evts) == 0 {
		return nil, game.ErrGameInactive
	}
	return msg(describeEvents(evts)), nil
}

func (sc *ShellController) set(cmd *shellcmd) (*Response, error) {
	if len(cmd.args) == 0 {
		return msg(sc.runner.Options().ToDisplayString()), nil
	}
	if len(cmd.args) != 2 {
		return nil, errors.New("usage: set <option> <value>")
	}
	if err := sc.runner.SetOption(cmd.args[0], cmd.args[1]); err != nil {
		return nil, err
	}
	return msg("set " + cmd.args[0] + " to " + cmd.args[1]), nil
}

func (sc *ShellController) autoplay(cmd *shellcmd) (*Response, error) {
	var opts automatic.AutoplayOptions
	var err error
	if opts.Games, err = cmd.options.IntDefault("games", 10); err != nil {
		return nil, err
	}
	if opts.Size, err = cmd.options.IntDefault("size", sc.runner.Options().Size); err != nil {
		return nil, err
	}
	if opts.Threads, err = cmd.options.IntDefault("threads", 0); err != nil {
		return nil, err
	}
	if opts.MaxDepth, err = cmd.options.IntDefault("depth", 0); err != nil {
		return nil, err
	}
	if opts.SearchTime, err = cmd.options.DurationDefault("time", 0); err != nil {
		return nil, err
	}
	sum, err := automatic.Autoplay(sc.ctx, sc.config, opts)
	if err != nil {
		return nil, err
	}
	return msg(sum.String()), nil
}
