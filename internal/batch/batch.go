// Package batch plays whole matches headlessly, with the player paddle
// driven by a tracker of the same kind as the automatic one.
package batch

import (
	"context"

	"github.com/playmatatu/pong/internal/game"
	"golang.org/x/sync/errgroup"
)

// Options configure a headless match.
type Options struct {
	Arena game.Arena
	// TrackerGain steers the player paddle. Zero leaves it parked in the
	// centre.
	TrackerGain float64
	// MaxTicks caps matches that rally forever.
	MaxTicks uint64
}

// DefaultOptions mirror the automatic paddle on the standard arena.
func DefaultOptions() Options {
	return Options{
		Arena:       game.DefaultArena(),
		TrackerGain: game.AutoGain,
		MaxTicks:    500_000,
	}
}

// Result is the outcome of one headless match.
type Result struct {
	Seed        int64     `json:"seed"`
	PlayerScore int       `json:"player_score"`
	AIScore     int       `json:"ai_score"`
	Winner      game.Side `json:"winner,omitempty"`
	Ticks       uint64    `json:"ticks"`
	Finished    bool      `json:"finished"`
}

// Summary aggregates a batch.
type Summary struct {
	Matches    int    `json:"matches"`
	Finished   int    `json:"finished"`
	PlayerWins int    `json:"player_wins"`
	AutoWins   int    `json:"auto_wins"`
	TotalTicks uint64 `json:"total_ticks"`
}

// Add folds r into the summary.
func (s *Summary) Add(r Result) {
	s.Matches++
	s.TotalTicks += r.Ticks
	if !r.Finished {
		return
	}
	s.Finished++
	switch r.Winner {
	case game.SidePlayer:
		s.PlayerWins++
	case game.SideAuto:
		s.AutoWins++
	}
}

// Play runs one match to completion or MaxTicks. The scheduler is stepped
// by hand so the match runs as fast as the CPU allows.
func Play(ctx context.Context, seed int64, opts Options) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{Seed: seed}, err
	}
	sim := game.NewSimulation(opts.Arena, game.NewRandomSource(seed))
	sched := game.NewScheduler(sim, nil, 0)
	tracker := game.AutoController{Arena: opts.Arena, Gain: opts.TrackerGain}

	sched.Submit(game.CommandStart)
	res := Result{Seed: seed}

	for {
		snap := sched.Latest()
		if snap.Match.Phase == game.PhaseRunning {
			sched.SetPlayerTarget(tracker.Step(snap.Ball, snap.Player))
		}

		step := sched.Step()
		res.Ticks = step.Tick
		if step.Phase == game.PhaseEnded {
			final := sched.Latest().Match
			res.PlayerScore, res.AIScore = final.PlayerScore, final.AIScore
			res.Winner = final.Winner()
			res.Finished = true
			return res, nil
		}
		if opts.MaxTicks > 0 && step.Tick >= opts.MaxTicks {
			final := sched.Latest().Match
			res.PlayerScore, res.AIScore = final.PlayerScore, final.AIScore
			return res, nil
		}
		if step.Tick%10_000 == 0 {
			if err := ctx.Err(); err != nil {
				return res, err
			}
		}
	}
}

// Run plays one match per seed on up to workers goroutines. Results keep
// the order of seeds.
func Run(ctx context.Context, seeds []int64, workers int, opts Options) ([]Result, Summary, error) {
	results := make([]Result, len(seeds))

	eg, ctx := errgroup.WithContext(ctx)
	if workers > 0 {
		eg.SetLimit(workers)
	}
	for i, seed := range seeds {
		i, seed := i, seed
		eg.Go(func() error {
			r, err := Play(ctx, seed, opts)
			if err != nil {
				return err
			}
			results[i] = r
			return nil
		})
	}

	var sum Summary
	if err := eg.Wait(); err != nil {
		return nil, sum, err
	}
	for _, r := range results {
		sum.Add(r)
	}
	return results, sum, nil
}
