package automatic

// Engine vs engine games, for measuring how deep the search gets and how
// games end on a given board size.

import (
	"bytes"
	"context"
	"errors"
	"expvar"
	"fmt"
	"strings"
	"time"

	"github.com/aybabtme/uniplot/histogram"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/stat"

	"github.com/domino14/tictactoe/board"
	"github.com/domino14/tictactoe/config"
	"github.com/domino14/tictactoe/game"
)

var (
	GamesPlayed *expvar.Int
	IsPlaying   *expvar.Int
)

var ErrAlreadyPlaying = errors.New("games are already being played, please wait till complete")

func init() {
	GamesPlayed = expvar.NewInt("tictactoeGamesPlayed")
	IsPlaying = expvar.NewInt("tictactoeIsPlaying")
}

type AutoplayOptions struct {
	Games   int
	Size    int
	Threads int
	// MaxDepth caps each search; 0 leaves only the time budget.
	MaxDepth   int
	SearchTime time.Duration
}

func (opts *AutoplayOptions) SetDefaults(cfg *config.Config) {
	if opts.Games <= 0 {
		opts.Games = 1
	}
	if opts.Size <= 0 {
		opts.Size = cfg.GetInt(config.ConfigDefaultBoardSize)
	}
	if opts.Threads <= 0 {
		opts.Threads = cfg.GetInt(config.ConfigAutoplayThreads)
	}
	if opts.SearchTime <= 0 {
		opts.SearchTime = cfg.GetDuration(config.ConfigSearchTime)
	}
}

type Summary struct {
	Games     int
	XWins     int
	OWins     int
	Draws     int
	Canceled  int
	MeanMoves float64
	// Over all engine moves of all games.
	MeanDepth   float64
	StdDevDepth float64
	SolvedMoves int
	Elapsed     time.Duration
	depthHist   histogram.Histogram
	hasHist     bool
}

// Autoplay plays opts.Games engine-vs-engine games, opts.Threads at a
// time, and summarizes them.
func Autoplay(ctx context.Context, cfg *config.Config, opts AutoplayOptions) (*Summary, error) {
	opts.SetDefaults(cfg)
	if IsPlaying.Value() > 0 {
		return nil, ErrAlreadyPlaying
	}
	IsPlaying.Add(1)
	defer IsPlaying.Add(-1)

	log.Info().Int("games", opts.Games).Int("size", opts.Size).Int("threads", opts.Threads).
		Int("max-depth", opts.MaxDepth).Dur("search-time", opts.SearchTime).Msg("starting-autoplay")
	tstart := time.Now()

	records := make([]*GameRecord, opts.Games)
	jobs := make(chan int)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer close(jobs)
		for i := 0; i < opts.Games; i++ {
			select {
			case jobs <- i:
			case <-gctx.Done():
				return gctx.Err()
			}
		}
		return nil
	})
	for t := 0; t < opts.Threads; t++ {
		g.Go(func() error {
			r := NewGameRunner(cfg, opts.MaxDepth, opts.SearchTime)
			for i := range jobs {
				rec, err := r.PlayGame(gctx, opts.Size)
				if err != nil {
					return err
				}
				records[i] = rec
				GamesPlayed.Add(1)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	sum := Summarize(records)
	sum.Elapsed = time.Since(tstart)
	log.Info().Int("x-wins", sum.XWins).Int("o-wins", sum.OWins).Int("draws", sum.Draws).
		Float64("mean-depth", sum.MeanDepth).Dur("elapsed", sum.Elapsed).Msg("autoplay-done")
	return sum, nil
}

// Summarize aggregates finished games. Nil records are skipped.
func Summarize(records []*GameRecord) *Summary {
	records = lo.Compact(records)
	sum := &Summary{Games: len(records)}
	if len(records) == 0 {
		return sum
	}
	sum.XWins = lo.CountBy(records, func(r *GameRecord) bool { return r.Winner == board.X })
	sum.OWins = lo.CountBy(records, func(r *GameRecord) bool { return r.Winner == board.O })
	sum.Draws = lo.CountBy(records, func(r *GameRecord) bool { return r.Result == game.ResultDraw })
	sum.Canceled = lo.CountBy(records, func(r *GameRecord) bool { return r.Result == game.ResultCanceled })
	sum.SolvedMoves = lo.SumBy(records, func(r *GameRecord) int { return r.Solved })
	sum.MeanMoves = stat.Mean(lo.Map(records, func(r *GameRecord, _ int) float64 {
		return float64(r.Moves)
	}), nil)

	depths := lo.FlatMap(records, func(r *GameRecord, _ int) []float64 {
		return lo.Map(r.Depths, func(d int, _ int) float64 { return float64(d) })
	})
	if len(depths) > 0 {
		sum.MeanDepth, sum.StdDevDepth = stat.MeanStdDev(depths, nil)
		if lo.Max(depths) > lo.Min(depths) {
			sum.depthHist = histogram.Hist(10, depths)
			sum.hasHist = true
		}
	}
	return sum
}

func (s *Summary) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%d games: X won %d, O won %d, %d drawn", s.Games, s.XWins, s.OWins, s.Draws)
	if s.Canceled > 0 {
		fmt.Fprintf(&sb, ", %d canceled", s.Canceled)
	}
	fmt.Fprintf(&sb, "\nmoves per game: %.1f\n", s.MeanMoves)
	fmt.Fprintf(&sb, "search depth: %.2f +/- %.2f (%d moves solved outright)\n",
		s.MeanDepth, s.StdDevDepth, s.SolvedMoves)
	if s.hasHist {
		var buf bytes.Buffer
		if err := histogram.Fprint(&buf, s.depthHist, histogram.Linear(40)); err == nil {
			sb.WriteString("depth histogram:\n")
			sb.Write(buf.Bytes())
		}
	}
	if s.Elapsed > 0 {
		fmt.Fprintf(&sb, "elapsed: %v\n", s.Elapsed.Round(time.Millisecond))
	}
	return sb.String()
}
