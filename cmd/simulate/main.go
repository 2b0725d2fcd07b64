package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/playmatatu/pong/internal/batch"
	"github.com/playmatatu/pong/internal/config"
	"github.com/playmatatu/pong/internal/game"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		matches  int
		seed     int64
		workers  int
		gain     float64
		maxTicks uint64
		asJSON   bool
	)

	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Play headless pong matches against the automatic paddle",
		Long: "Plays a batch of seeded matches with the player paddle driven by a tracker " +
			"and prints each score and tick count. Arena size comes from ARENA_WIDTH/ARENA_HEIGHT.",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := config.Load()
			if err := cfg.Arena().Validate(); err != nil {
				return fmt.Errorf("invalid arena: %w", err)
			}
			if matches <= 0 {
				return fmt.Errorf("--matches must be positive, got %d", matches)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			opts := batch.Options{Arena: cfg.Arena(), TrackerGain: gain, MaxTicks: maxTicks}
			seeds := make([]int64, matches)
			for i := range seeds {
				seeds[i] = seed + int64(i)
			}

			started := time.Now()
			results, sum, err := batch.Run(ctx, seeds, workers, opts)
			if err != nil {
				return err
			}
			elapsed := time.Since(started)

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(map[string]interface{}{
					"results": results,
					"summary": sum,
				})
			}

			out := cmd.OutOrStdout()
			for _, r := range results {
				status := string(r.Winner)
				if !r.Finished {
					status = "unfinished"
				}
				fmt.Fprintf(out, "seed=%-6d %2d : %-2d ticks=%-8d %s\n", r.Seed, r.PlayerScore, r.AIScore, r.Ticks, status)
			}
			fmt.Fprintf(out, "\n%d matches, %d finished (player %d, auto %d), %d ticks in %s\n",
				sum.Matches, sum.Finished, sum.PlayerWins, sum.AutoWins, sum.TotalTicks, elapsed.Round(time.Millisecond))
			return nil
		},
	}

	flags := cmd.Flags()
	flags.IntVarP(&matches, "matches", "n", 10, "number of matches to play")
	flags.Int64Var(&seed, "seed", 1, "seed of the first match; later matches use seed+i")
	flags.IntVarP(&workers, "workers", "w", runtime.NumCPU(), "matches played in parallel")
	flags.Float64Var(&gain, "tracker-gain", game.AutoGain, "gain of the player paddle tracker (0 parks it)")
	flags.Uint64Var(&maxTicks, "max-ticks", batch.DefaultOptions().MaxTicks, "tick cap per match (0 for none)")
	flags.BoolVar(&asJSON, "json", false, "print results as JSON")

	log.SetFlags(0)
	return cmd
}
