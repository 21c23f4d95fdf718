// pqload drives synthetic load through packet queues sharing one worker
// pool, exposing Prometheus metrics while it runs and printing each
// queue's debug state on exit. It exists to exercise the library under
// contention and to eyeball drop/throughput behaviour.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/alecthomas/kong"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/xraph/packetq"
	"github.com/xraph/packetq/pool"
	"github.com/xraph/packetq/stats"
)

type CLI struct {
	Queues      int           `name:"queues" help:"Number of queues sharing the pool" default:"4"`
	Capacity    int           `name:"capacity" help:"Per-queue capacity" default:"256"`
	Workers     int           `name:"workers" help:"Worker pool size" default:"2"`
	Producers   int           `name:"producers" help:"Producer goroutines per queue" default:"2"`
	Rate        int           `name:"rate" help:"Packets per second per producer" default:"1000"`
	Budget      int           `name:"budget" help:"Turn budget per drain slice" default:"64"`
	HandleDelay time.Duration `name:"handle-delay" help:"Simulated per-packet handling time" default:"0s"`
	Duration    time.Duration `name:"duration" help:"How long to run" default:"10s"`
	MetricsAddr string        `name:"metrics-addr" help:"Prometheus listen address" default:":9091"`
	Debug       bool          `name:"debug" help:"Enable debug logging"`
}

func main() {
	cli := new(CLI)
	kong.Parse(cli,
		kong.Name("pqload"),
		kong.Description("packetq load generator"),
		kong.UsageOnError(),
	)

	if err := run(cli); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func run(cli *CLI) error {
	if cli.Rate <= 0 || cli.Queues <= 0 || cli.Producers <= 0 {
		return fmt.Errorf("pqload: queues, producers and rate must be positive")
	}

	level := slog.LevelInfo
	if cli.Debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()
	ctx, timeout := context.WithTimeout(ctx, cli.Duration)
	defer timeout()

	registry := prometheus.NewRegistry()

	p := pool.New(cli.Workers, pool.WithLogger(logger))
	defer p.StopWait()

	queues := make([]*packetq.Queue[int], 0, cli.Queues)
	for i := range cli.Queues {
		id := fmt.Sprintf("load-%d", i)

		collector := stats.New(id)
		if err := registry.Register(collector); err != nil {
			return err
		}

		q, err := packetq.New(id, cli.Capacity,
			packetq.HandlerFunc[int](func(_ int) error {
				if cli.HandleDelay > 0 {
					time.Sleep(cli.HandleDelay)
				}
				return nil
			}),
			p,
			packetq.WithLogger[int](logger),
			packetq.WithTurnBudget[int](cli.Budget),
			packetq.WithStatisticsCollector[int](collector),
		)
		if err != nil {
			return err
		}
		queues = append(queues, q)
	}

	server := &http.Server{
		Addr:    cli.MetricsAddr,
		Handler: promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
	}
	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("metrics server error", slog.String("error", err.Error()))
		}
	}()
	defer server.Close()

	logger.Info("load run starting",
		slog.Int("queues", cli.Queues),
		slog.Int("workers", cli.Workers),
		slog.Duration("duration", cli.Duration),
	)

	g, ctx := errgroup.WithContext(ctx)
	for _, q := range queues {
		for range cli.Producers {
			g.Go(func() error {
				interval := time.Second / time.Duration(cli.Rate)
				ticker := time.NewTicker(interval)
				defer ticker.Stop()

				seq := 0
				for {
					select {
					case <-ctx.Done():
						return nil
					case <-ticker.C:
						q.Add(seq)
						seq++
					}
				}
			})
		}
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for _, q := range queues {
		q.Close()
	}

	return printDebugState(queues)
}

func printDebugState(queues []*packetq.Queue[int]) error {
	states := make([]packetq.DebugState, 0, len(queues))
	for _, q := range queues {
		states = append(states, q.DebugState())
	}

	out, err := json.MarshalIndent(states, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}
