package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"text/tabwriter"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/samber/hotsim"
	"github.com/samber/hotsim/pkg/trace"
	"gopkg.in/yaml.v3"
)

// experimentFile is the document read by -config.
//
//	experiments:
//	  - name: zipf
//	    trace: traces/zipf.txt.lz4
//	    capacities: [16, 64, 256]
//	    algorithms: [arc, optimal, lru]
//	    shards: 1
type experimentFile struct {
	Experiments []experiment `yaml:"experiments"`
}

type experiment struct {
	Name       string   `yaml:"name"`
	Trace      string   `yaml:"trace"`
	Capacities []int    `yaml:"capacities"`
	Algorithms []string `yaml:"algorithms"`
	Shards     uint64   `yaml:"shards"`
}

type experimentResult struct {
	name    string
	results []hotsim.Result
}

// loadExperiments parses path. Trace paths are relative to the file.
func loadExperiments(path string) ([]experiment, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var file experimentFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if len(file.Experiments) == 0 {
		return nil, fmt.Errorf("%s: no experiments", path)
	}

	dir := filepath.Dir(path)
	names := map[string]bool{}
	for i := range file.Experiments {
		e := &file.Experiments[i]
		if e.Trace == "" {
			return nil, fmt.Errorf("%s: experiment %d has no trace", path, i+1)
		}
		if e.Name == "" {
			e.Name = filepath.Base(e.Trace)
		}
		if names[e.Name] {
			return nil, fmt.Errorf("%s: duplicate experiment name %q", path, e.Name)
		}
		names[e.Name] = true

		if !filepath.IsAbs(e.Trace) {
			e.Trace = filepath.Join(dir, e.Trace)
		}
		if e.Shards == 0 {
			e.Shards = 1
		}
	}

	return file.Experiments, nil
}

// runExperiments runs every experiment of the -config file concurrently and
// prints one table row per result, in file order.
func runExperiments(ctx context.Context, opts *options, registry prometheus.Registerer, logger *slog.Logger, stdout io.Writer) error {
	experiments, err := loadExperiments(opts.config)
	if err != nil {
		return err
	}

	loader, err := trace.NewLoader(len(experiments))
	if err != nil {
		return err
	}

	withMetrics := opts.metricsAddr != ""
	outputs := make([]experimentResult, len(experiments))
	errs := make([]error, len(experiments))

	var wg sync.WaitGroup
	for i := range experiments {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			outputs[i], errs[i] = runExperiment(ctx, experiments[i], loader, registry, withMetrics, logger)
		}(i)
	}
	wg.Wait()

	if err := errors.Join(errs...); err != nil {
		return err
	}

	return printResults(stdout, outputs)
}

func runExperiment(ctx context.Context, e experiment, loader *trace.Loader, registry prometheus.Registerer, withMetrics bool, logger *slog.Logger) (experimentResult, error) {
	out := experimentResult{name: e.Name}

	algorithms := hotsim.Algorithms
	if len(e.Algorithms) > 0 {
		algorithms = make([]hotsim.Algorithm, len(e.Algorithms))
		for i, name := range e.Algorithms {
			algorithm, err := hotsim.ParseAlgorithm(name)
			if err != nil {
				return out, fmt.Errorf("%s: %w", e.Name, err)
			}
			algorithms[i] = algorithm
		}
	}

	t, err := loader.Load(e.Trace)
	if err != nil {
		return out, fmt.Errorf("%s: %w", e.Name, err)
	}

	capacities := e.Capacities
	if len(capacities) == 0 {
		capacities = []int{t.Capacity}
	}

	cfg := newSimulatorConfig(algorithms, e.Shards, e.Name, withMetrics).
		WithLogger(logger.With(slog.String("experiment", e.Name)))
	requests := t.Requests()

	if !withMetrics {
		out.results, err = hotsim.Sweep(ctx, cfg, requests, capacities)
		if err != nil {
			return out, fmt.Errorf("%s: %w", e.Name, err)
		}
		return out, nil
	}

	// simulators are built one by one to register them
	for _, capacity := range capacities {
		simulator, err := cfg.WithCapacity(capacity).Build()
		if err != nil {
			return out, fmt.Errorf("%s: %w", e.Name, err)
		}
		if err := registry.Register(simulator); err != nil {
			return out, fmt.Errorf("%s: capacity %d: %w", e.Name, capacity, err)
		}

		results, err := simulator.Run(ctx, requests)
		if err != nil {
			return out, fmt.Errorf("%s: capacity %d: %w", e.Name, capacity, err)
		}
		out.results = append(out.results, results...)
	}

	return out, nil
}

func printResults(w io.Writer, outputs []experimentResult) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "EXPERIMENT\tALGORITHM\tCAPACITY\tREQUESTS\tHITS\tMISSES\tHIT RATIO\tDURATION")
	for _, output := range outputs {
		for _, r := range output.results {
			fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%d\t%d\t%.4f\t%s\n",
				output.name, r.Algorithm, r.Capacity, r.Accesses, r.Hits, r.Misses(), r.HitRatio(), r.Duration)
		}
	}
	return tw.Flush()
}
