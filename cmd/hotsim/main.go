// Command hotsim replays a cache trace with several replacement policies and
// reports their hit counts.
//
// By default it reads a textual trace (capacity, request count, keys) from
// stdin and prints the number of hits of the selected policy.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/samber/hotsim"
	"github.com/samber/hotsim/pkg/arc"
	"github.com/samber/hotsim/pkg/sharded"
	"github.com/samber/hotsim/pkg/trace"
)

type options struct {
	policy      string
	config      string
	dump        bool
	metricsAddr string
	shards      uint64

	gen      string
	genN     int
	capacity int
	seed     int64
	out      string

	logLevel  string
	logFormat string
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(2)
		}
		fmt.Fprintln(os.Stderr, "hotsim:", err)
		os.Exit(1)
	}
}

func parseFlags(args []string, stderr io.Writer) (*options, error) {
	opts := &options{}

	fs := flag.NewFlagSet("hotsim", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.policy, "policy", "arc", "policies to replay: a name, a comma separated list or all ("+algorithmNames()+")")
	fs.StringVar(&opts.config, "config", "", "YAML file listing experiments to run instead of reading stdin")
	fs.BoolVar(&opts.dump, "dump", false, "replay the trace through an unsharded ARC and print its lists to stderr (requires -shards 1)")
	fs.StringVar(&opts.metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address until interrupted")
	fs.Uint64Var(&opts.shards, "shards", 1, "split the capacity over this many independent engines")
	fs.StringVar(&opts.gen, "gen", "", "write a synthetic trace instead of replaying one: sequential, loop, zipf or scan")
	fs.IntVar(&opts.genN, "n", 100_000, "number of requests generated by -gen")
	fs.IntVar(&opts.capacity, "capacity", 64, "capacity written in the trace generated by -gen")
	fs.Int64Var(&opts.seed, "seed", 1, "random seed of -gen")
	fs.StringVar(&opts.out, "out", "", "file written by -gen, compressed by extension (.lz4, .sz); stdout by default")
	fs.StringVar(&opts.logLevel, "log-level", "warn", "log level (debug, info, warn, error)")
	fs.StringVar(&opts.logFormat, "log-format", "text", "log format (text, json)")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() > 0 {
		return nil, fmt.Errorf("unexpected arguments: %s", strings.Join(fs.Args(), " "))
	}
	if opts.shards == 0 {
		return nil, fmt.Errorf("-shards must be >= 1")
	}
	if opts.dump && opts.shards > 1 {
		return nil, fmt.Errorf("-dump describes a single ARC engine and cannot be combined with -shards %d", opts.shards)
	}
	return opts, nil
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout io.Writer, stderr io.Writer) error {
	opts, err := parseFlags(args, stderr)
	if err != nil {
		return err
	}

	logger := setupLogger(stderr, opts.logLevel, opts.logFormat)

	if opts.gen != "" {
		return generate(opts, stdout)
	}

	registry := prometheus.NewRegistry()
	var metricsServer *server
	if opts.metricsAddr != "" {
		metricsServer, err = startMetricsServer(opts.metricsAddr, registry, logger)
		if err != nil {
			return err
		}
		defer metricsServer.shutdown()
	}

	if opts.config != "" {
		err = runExperiments(ctx, opts, registry, logger, stdout)
	} else {
		err = runStdin(ctx, opts, registry, logger, stdin, stdout, stderr)
	}
	if err != nil {
		return err
	}

	if metricsServer != nil {
		logger.Info("replay done, serving metrics until interrupted", slog.String("addr", metricsServer.addr()))
		<-ctx.Done()
	}
	return nil
}

func runStdin(ctx context.Context, opts *options, registry prometheus.Registerer, logger *slog.Logger, stdin io.Reader, stdout io.Writer, stderr io.Writer) error {
	algorithms, err := parsePolicies(opts.policy)
	if err != nil {
		return err
	}

	t, err := trace.Read(stdin)
	if err != nil {
		return fmt.Errorf("stdin: %w", err)
	}

	withMetrics := opts.metricsAddr != ""
	simulator, err := newSimulatorConfig(algorithms, opts.shards, "stdin", withMetrics).
		WithCapacity(t.Capacity).
		WithLogger(logger).
		Build()
	if err != nil {
		return err
	}
	if withMetrics {
		if err := registry.Register(simulator); err != nil {
			return err
		}
	}

	requests := t.Requests()
	results, err := simulator.Run(ctx, requests)
	if err != nil {
		return err
	}

	if len(results) == 1 {
		fmt.Fprintln(stdout, results[0].Hits)
	} else {
		for _, r := range results {
			fmt.Fprintf(stdout, "%s %d\n", r.Algorithm, r.Hits)
		}
	}

	if opts.dump {
		cache, err := arc.NewARCCache[int, int](t.Capacity)
		if err != nil {
			return err
		}
		if _, err := hotsim.Replay[int, int](ctx, cache, requests); err != nil {
			return err
		}
		return cache.Dump(stderr)
	}
	return nil
}

func newSimulatorConfig(algorithms []hotsim.Algorithm, shards uint64, name string, withMetrics bool) hotsim.SimulatorConfig[int, int] {
	cfg := hotsim.NewSimulator[int, int](1).WithAlgorithms(algorithms...)
	if shards > 1 {
		cfg = cfg.WithShards(shards, sharded.NewFormatHasher[int]())
	}
	if withMetrics {
		cfg = cfg.WithPrometheusMetrics(name)
	}
	return cfg
}

func parsePolicies(s string) ([]hotsim.Algorithm, error) {
	if strings.EqualFold(strings.TrimSpace(s), "all") {
		return hotsim.Algorithms, nil
	}

	var out []hotsim.Algorithm
	for _, name := range strings.Split(s, ",") {
		algorithm, err := hotsim.ParseAlgorithm(name)
		if err != nil {
			return nil, err
		}
		out = append(out, algorithm)
	}
	return out, nil
}

func algorithmNames() string {
	names := make([]string, len(hotsim.Algorithms))
	for i, algorithm := range hotsim.Algorithms {
		names[i] = algorithm.String()
	}
	return strings.Join(names, ", ")
}

func setupLogger(w io.Writer, level string, format string) *slog.Logger {
	var logLevel slog.Level
	switch strings.ToLower(level) {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelWarn
	}

	opts := &slog.HandlerOptions{Level: logLevel}

	var handler slog.Handler
	if format == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler)
}

func generate(opts *options, stdout io.Writer) error {
	var gen trace.Generator
	switch opts.gen {
	case "sequential":
		gen = trace.Sequential
	case "loop":
		gen = trace.NewLoop(opts.capacity + 1)
	case "zipf":
		gen = trace.NewZipf(max(opts.capacity*20, 1), 1.2, opts.seed)
	case "scan":
		gen = trace.NewScan(max(opts.capacity*4, 1), max(opts.capacity*8, 1), max(opts.capacity*2, 1), opts.seed)
	default:
		return fmt.Errorf("unknown generator %q: want sequential, loop, zipf or scan", opts.gen)
	}

	t, err := gen(opts.capacity, opts.genN)
	if err != nil {
		return err
	}

	if opts.out == "" {
		return trace.Write(stdout, t)
	}
	return trace.WriteFile(opts.out, t)
}
