package main

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"github.com/park285/paint-chess/internal/accounts"
	"github.com/park285/paint-chess/internal/ai"
	"github.com/park285/paint-chess/internal/archive"
	"github.com/park285/paint-chess/internal/catalog"
	"github.com/park285/paint-chess/internal/gamemgr"
)

type selfplayOptions struct {
	secs     int
	think    time.Duration
	seed     int64
	catalog  string
	deadline time.Duration
}

func newSelfplayCommand() *cobra.Command {
	opts := &selfplayOptions{}
	cmd := &cobra.Command{
		Use:   "selfplay",
		Short: "Play one match between two AI players and print the result",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rec, err := selfplay(cmd.Context(), opts)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s vs %s: %s (%s) after %d turns\n", rec.P1, rec.P2, rec.Score(), rec.Method, rec.CompletedTurns)
			if rec.Summary != "" {
				fmt.Fprintln(out, rec.Summary)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&opts.secs, "secs", 60, "seconds per player")
	cmd.Flags().DurationVar(&opts.think, "think", 20*time.Millisecond, "maximum AI think time per move")
	cmd.Flags().Int64Var(&opts.seed, "seed", 0, "AI random seed (0 picks one)")
	cmd.Flags().StringVar(&opts.catalog, "catalog", "", "catalog override directory")
	cmd.Flags().DurationVar(&opts.deadline, "deadline", 5*time.Minute, "give up after this long")
	return cmd
}

// capture keeps the archived record of the one match selfplay runs.
type capture struct {
	mu  sync.Mutex
	rec *archive.Record
}

func (c *capture) SaveResult(_ context.Context, rec *archive.Record) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.rec = rec
	return nil
}

func selfplay(ctx context.Context, opts *selfplayOptions) (*archive.Record, error) {
	cat, err := catalog.New(opts.catalog)
	if err != nil {
		return nil, err
	}
	store := accounts.NewMemory()
	out := &capture{}
	mgr := gamemgr.New(gamemgr.Config{
		Accounts:     store,
		Catalog:      cat,
		Archive:      out,
		TickInterval: 100 * time.Millisecond,
		StartTimeout: 10 * time.Second,
	})

	var names [2]string
	var players [2]*ai.Player
	for i := range names {
		prof, err := store.CreateAI(ctx)
		if err != nil {
			return nil, err
		}
		names[i] = prof.Username
		popts := ai.DefaultOptions()
		popts.MaxThink = opts.think
		if opts.seed != 0 {
			popts.Seed = opts.seed + int64(i)
		}
		players[i] = ai.New(mgr, prof.Username, cat, popts)
		mgr.Register(prof.Username, players[i])
	}

	mgr.QueueNewMatch(ctx, names[0], gamemgr.Settings{SecsPerPlayer: opts.secs})
	q := mgr.QueueSummaries(ctx)
	if len(q) != 1 {
		for _, p := range players {
			p.Close()
		}
		mgr.Close()
		return nil, fmt.Errorf("queue rejected %d seconds per player", opts.secs)
	}
	mgr.JoinQueuedMatch(ctx, names[1], q[0].GameID)

	done := make(chan struct{})
	go func() {
		mgr.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(opts.deadline):
		mgr.Close()
	case <-ctx.Done():
		mgr.Close()
	}

	out.mu.Lock()
	defer out.mu.Unlock()
	if out.rec == nil {
		return nil, errors.New("match did not finish")
	}
	return out.rec, nil
}
