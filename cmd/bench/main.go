package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/aretw0/lattice"
	"github.com/aretw0/lattice/pkg/core"
)

func main() {
	count := flag.Int("count", 1000, "Entities written per client")
	clients := flag.Int("clients", 8, "Concurrent client connections")
	format := flag.String("format", "bin", "Log format: bin, text or badger")
	sync := flag.Bool("sync", false, "Fsync every append")
	keep := flag.Bool("keep", false, "Keep the benchmark log after running")
	flag.Parse()

	benchDir, err := os.MkdirTemp("", "lattice_bench_")
	if err != nil {
		panic(err)
	}
	defer func() {
		if !*keep {
			os.RemoveAll(benchDir)
		} else {
			fmt.Printf("Keeping bench dir: %s\n", benchDir)
		}
	}()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	cfg := lattice.DefaultConfig()
	cfg.StoragePath = filepath.Join(benchDir, "db")
	cfg.LogFormat = core.Format(*format)
	cfg.Sync = *sync
	cfg.Workers = *clients

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	inst, err := lattice.Open(ctx, cfg, lattice.WithLogger(logger))
	if err != nil {
		panic(err)
	}

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		panic(err)
	}
	go inst.Server.Serve(ctx, ln)

	// Run 1: writes, each entity gets one property.
	fmt.Printf("Writing %d entities from %d clients...\n", *count**clients, *clients)
	startWrite := time.Now()
	ids, err := run(ctx, ln.Addr().String(), *clients, func(ctx context.Context, c *lattice.Client, i int) (core.ID, error) {
		id, err := c.Create(ctx)
		if err != nil {
			return 0, err
		}
		_, err = c.Set(ctx, id, "title", fmt.Sprintf("Entity %d", i))
		return id, err
	}, *count)
	if err != nil {
		panic(err)
	}
	writeDuration := time.Since(startWrite)

	// Run 2: reads of what was written.
	startRead := time.Now()
	_, err = run(ctx, ln.Addr().String(), *clients, func(ctx context.Context, c *lattice.Client, i int) (core.ID, error) {
		resp, err := c.Get(ctx, ids[i%len(ids)], "title")
		return resp.Object, err
	}, *count)
	if err != nil {
		panic(err)
	}
	readDuration := time.Since(startRead)

	cancel()
	inst.Close()

	// Run 3: cold start replays the log written above.
	startReplay := time.Now()
	replayed, err := lattice.Open(context.Background(), cfg, lattice.WithLogger(logger))
	if err != nil {
		panic(err)
	}
	replayDuration := time.Since(startReplay)
	replayed.Close()

	total := *count * *clients
	fmt.Printf("--------------------------------------------------\n")
	fmt.Printf("Benchmark Result (%d entities, format %s, sync %v):\n", total, *format, *sync)
	fmt.Printf("  Write:  %v (%.0f entities/s)\n", writeDuration, float64(total)/writeDuration.Seconds())
	fmt.Printf("  Read:   %v (%.0f reads/s)\n", readDuration, float64(total)/readDuration.Seconds())
	fmt.Printf("  Replay: %v (%d transactions)\n", replayDuration, replayed.Replayed)
	fmt.Printf("--------------------------------------------------\n")
}

// run calls op count times on each of n connections and collects the ids
// it returns.
func run(ctx context.Context, addr string, n int, op func(context.Context, *lattice.Client, int) (core.ID, error), count int) ([]core.ID, error) {
	results := make([][]core.ID, n)
	g, ctx := errgroup.WithContext(ctx)
	for w := range n {
		g.Go(func() error {
			c, err := lattice.Dial(ctx, addr)
			if err != nil {
				return err
			}
			defer c.Close()
			for i := range count {
				id, err := op(ctx, c, w*count+i)
				if err != nil {
					return err
				}
				results[w] = append(results[w], id)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var ids []core.ID
	for _, r := range results {
		ids = append(ids, r...)
	}
	return ids, nil
}
