package batch

import (
	"context"
	"errors"
	"testing"

	"github.com/playmatatu/pong/internal/game"
)

func TestPlayIsDeterministic(t *testing.T) {
	opts := DefaultOptions()
	opts.MaxTicks = 50_000

	first, err := Play(context.Background(), 7, opts)
	if err != nil {
		t.Fatalf("play: %v", err)
	}
	second, err := Play(context.Background(), 7, opts)
	if err != nil {
		t.Fatalf("play: %v", err)
	}
	if first != second {
		t.Errorf("same seed gave %+v and %+v", first, second)
	}
}

func TestPlayResultInvariants(t *testing.T) {
	testCases := []struct {
		name string
		gain float64
	}{
		{"parked player paddle", 0},
		{"mirror tracker", game.AutoGain},
		{"eager tracker", 0.5},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			opts := DefaultOptions()
			opts.TrackerGain = tc.gain
			opts.MaxTicks = 100_000

			for seed := int64(1); seed <= 5; seed++ {
				r, err := Play(context.Background(), seed, opts)
				if err != nil {
					t.Fatalf("seed %d: %v", seed, err)
				}
				if r.Ticks > opts.MaxTicks {
					t.Errorf("seed %d ran %d ticks past the cap", seed, r.Ticks)
				}
				if r.PlayerScore > game.WinScore || r.AIScore > game.WinScore {
					t.Errorf("seed %d: score %d:%d beyond WinScore", seed, r.PlayerScore, r.AIScore)
				}
				if r.Finished {
					if r.Winner == "" {
						t.Errorf("seed %d finished without a winner", seed)
					}
					if r.PlayerScore != game.WinScore && r.AIScore != game.WinScore {
						t.Errorf("seed %d finished at %d:%d", seed, r.PlayerScore, r.AIScore)
					}
				} else if r.Ticks != opts.MaxTicks {
					t.Errorf("seed %d stopped early at tick %d", seed, r.Ticks)
				}
			}
		})
	}
}

func TestRunKeepsSeedOrder(t *testing.T) {
	opts := DefaultOptions()
	opts.MaxTicks = 20_000
	seeds := []int64{3, 1, 4, 1, 5}

	results, sum, err := Run(context.Background(), seeds, 2, opts)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(results) != len(seeds) {
		t.Fatalf("expected %d results, got %d", len(seeds), len(results))
	}
	for i, r := range results {
		if r.Seed != seeds[i] {
			t.Errorf("result %d has seed %d, want %d", i, r.Seed, seeds[i])
		}
	}
	if results[1] != results[3] {
		t.Errorf("repeated seed should repeat the match: %+v vs %+v", results[1], results[3])
	}
	if sum.Matches != len(seeds) || sum.PlayerWins+sum.AutoWins != sum.Finished {
		t.Errorf("inconsistent summary %+v", sum)
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	opts := DefaultOptions()
	opts.MaxTicks = 0
	_, _, err := Run(ctx, []int64{1}, 1, opts)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}
