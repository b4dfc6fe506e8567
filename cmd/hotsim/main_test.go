package main

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/samber/hotsim"
	"github.com/samber/hotsim/pkg/trace"
	"github.com/stretchr/testify/assert"
)

func runCLI(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()

	var stdout, stderr bytes.Buffer
	err := run(context.Background(), args, strings.NewReader(stdin), &stdout, &stderr)
	return stdout.String(), stderr.String(), err
}

func TestRunPrintsHits(t *testing.T) {
	is := assert.New(t)
	t.Parallel()

	stdout, _, err := runCLI(t, "2 5\n1 2 1 3 2\n")
	is.NoError(err)
	is.Equal("1\n", stdout)

	stdout, _, err = runCLI(t, "2 4 1 2 3 1", "-policy", "optimal")
	is.NoError(err)
	is.Equal("1\n", stdout)

	stdout, _, err = runCLI(t, "2 4 1 2 3 1", "-policy", "arc")
	is.NoError(err)
	is.Equal("0\n", stdout)
}

func TestRunAllPolicies(t *testing.T) {
	is := assert.New(t)
	t.Parallel()

	stdout, _, err := runCLI(t, "2 5 1 2 1 3 2", "-policy", "all")
	is.NoError(err)

	lines := strings.Split(strings.TrimSpace(stdout), "\n")
	is.Len(lines, len(hotsim.Algorithms))
	is.Equal("arc 1", lines[0])
	is.Equal("optimal 2", lines[1])
	is.Equal("lru 1", lines[2])
	is.True(strings.HasPrefix(lines[3], "hashicorp-arc "))

	stdout, _, err = runCLI(t, "2 5 1 2 1 3 2", "-policy", "lru,arc")
	is.NoError(err)
	is.Equal("lru 1\narc 1\n", stdout)
}

func TestRunSharded(t *testing.T) {
	is := assert.New(t)
	t.Parallel()

	stdout, _, err := runCLI(t, "4 8 1 2 3 4 1 2 3 4", "-policy", "all", "-shards", "2")
	is.NoError(err)
	is.Len(strings.Split(strings.TrimSpace(stdout), "\n"), len(hotsim.Algorithms))

	_, _, err = runCLI(t, "1 2 1 1", "-shards", "2")
	is.True(errors.Is(err, hotsim.ErrInvalidCapacity))

	_, _, err = runCLI(t, "1 2 1 1", "-shards", "0")
	is.Error(err)
}

func TestRunErrors(t *testing.T) {
	is := assert.New(t)
	t.Parallel()

	_, _, err := runCLI(t, "0 3 1 2 3")
	is.True(errors.Is(err, hotsim.ErrInvalidCapacity))

	_, _, err = runCLI(t, "2 3 1 2")
	is.True(errors.Is(err, trace.ErrTruncatedTrace))

	_, _, err = runCLI(t, "2 1 1", "-policy", "clock")
	is.True(errors.Is(err, hotsim.ErrUnknownAlgorithm))

	_, stderr, err := runCLI(t, "", "-unknown")
	is.Error(err)
	is.Contains(stderr, "flag provided but not defined")

	_, _, err = runCLI(t, "", "-h")
	is.True(errors.Is(err, flag.ErrHelp))

	_, _, err = runCLI(t, "", "extra")
	is.ErrorContains(err, "unexpected arguments: extra")
}

func TestRunDump(t *testing.T) {
	is := assert.New(t)
	t.Parallel()

	stdout, stderr, err := runCLI(t, "2 5 1 2 1 3 2", "-dump")
	is.NoError(err)
	is.Equal("1\n", stdout)
	is.Contains(stderr, "capacity: 2 ")
	is.Contains(stderr, "T1:")
	is.Contains(stderr, "B2:")

	_, _, err = runCLI(t, "4 5 1 2 1 3 2", "-dump", "-shards", "2")
	is.ErrorContains(err, "-dump")
	is.ErrorContains(err, "-shards 2")
}

func TestGenerate(t *testing.T) {
	is := assert.New(t)
	t.Parallel()

	stdout, _, err := runCLI(t, "", "-gen", "loop", "-n", "5", "-capacity", "2")
	is.NoError(err)
	is.Equal("2 5\n0\n1\n2\n0\n1\n", stdout)

	// generated traces replay as is
	hits, _, err := runCLI(t, stdout, "-policy", "optimal")
	is.NoError(err)
	is.Equal("2\n", hits)

	for _, gen := range []string{"sequential", "zipf", "scan"} {
		stdout, _, err = runCLI(t, "", "-gen", gen, "-n", "100", "-capacity", "4")
		is.NoError(err, gen)
		tr, err := trace.Read(strings.NewReader(stdout))
		is.NoError(err, gen)
		is.Equal(100, tr.Len(), gen)
	}

	_, _, err = runCLI(t, "", "-gen", "random")
	is.ErrorContains(err, "unknown generator")

	_, _, err = runCLI(t, "", "-gen", "zipf", "-capacity", "0")
	is.True(errors.Is(err, hotsim.ErrInvalidCapacity))
}

func TestRunExperiments(t *testing.T) {
	is := assert.New(t)
	t.Parallel()

	dir := t.TempDir()
	_, _, err := runCLI(t, "", "-gen", "zipf", "-n", "2000", "-capacity", "8", "-out", filepath.Join(dir, "zipf.lz4"))
	is.NoError(err)
	_, _, err = runCLI(t, "", "-gen", "loop", "-n", "500", "-capacity", "4", "-out", filepath.Join(dir, "loop.sz"))
	is.NoError(err)

	config := filepath.Join(dir, "experiments.yaml")
	is.NoError(os.WriteFile(config, []byte(`
experiments:
  - name: zipf
    trace: zipf.lz4
    capacities: [4, 16]
    algorithms: [arc, optimal]
  - trace: loop.sz
    algorithms: [lru, optimal]
  - name: zipf-sharded
    trace: zipf.lz4
    shards: 2
    algorithms: [arc]
`), 0o600))

	stdout, _, err := runCLI(t, "", "-config", config)
	is.NoError(err)

	lines := strings.Split(strings.TrimSpace(stdout), "\n")
	is.Len(lines, 1+4+2+1)
	is.Regexp(`^EXPERIMENT\s+ALGORITHM\s+CAPACITY`, lines[0])
	is.Regexp(`^zipf\s+arc\s+4\s+2000\s`, lines[1])
	is.Regexp(`^zipf\s+optimal\s+4\s+2000\s`, lines[2])
	is.Regexp(`^zipf\s+arc\s+16\s`, lines[3])
	is.Regexp(`^zipf\s+optimal\s+16\s`, lines[4])

	// a loop one key larger than the cache defeats LRU
	is.Regexp(`^loop\.sz\s+lru\s+4\s+500\s+0\s+500\s`, lines[5])
	is.Regexp(`^loop\.sz\s+optimal\s+4\s+500\s`, lines[6])
	is.Regexp(`^zipf-sharded\s+arc\s+8\s+2000\s`, lines[7])
}

func TestLoadExperimentsErrors(t *testing.T) {
	is := assert.New(t)
	t.Parallel()

	dir := t.TempDir()
	write := func(name string, content string) string {
		path := filepath.Join(dir, name)
		is.NoError(os.WriteFile(path, []byte(content), 0o600))
		return path
	}

	_, err := loadExperiments(filepath.Join(dir, "missing.yaml"))
	is.Error(err)

	_, err = loadExperiments(write("empty.yaml", "experiments: []\n"))
	is.ErrorContains(err, "no experiments")

	_, err = loadExperiments(write("invalid.yaml", "experiments: {\n"))
	is.Error(err)

	_, err = loadExperiments(write("notrace.yaml", "experiments:\n  - name: a\n"))
	is.ErrorContains(err, "has no trace")

	_, err = loadExperiments(write("dup.yaml", "experiments:\n  - trace: a\n  - trace: a\n"))
	is.ErrorContains(err, `duplicate experiment name "a"`)

	experiments, err := loadExperiments(write("ok.yaml", "experiments:\n  - trace: /abs/a.txt\n  - trace: rel.txt\n    shards: 3\n"))
	is.NoError(err)
	is.Equal("/abs/a.txt", experiments[0].Trace)
	is.Equal(uint64(1), experiments[0].Shards)
	is.Equal(filepath.Join(dir, "rel.txt"), experiments[1].Trace)
	is.Equal(uint64(3), experiments[1].Shards)

	_, _, err = runCLI(t, "", "-config", write("bad-algo.yaml", "experiments:\n  - trace: x\n    algorithms: [clock]\n"))
	is.True(errors.Is(err, hotsim.ErrUnknownAlgorithm))
}

func TestMetricsServer(t *testing.T) {
	is := assert.New(t)
	t.Parallel()

	registry := prometheus.NewRegistry()
	simulator, err := newSimulatorConfig([]hotsim.Algorithm{hotsim.ARC}, 1, "served", true).WithCapacity(2).Build()
	is.NoError(err)
	is.NoError(registry.Register(simulator))
	_, err = simulator.Run(context.Background(), (&trace.Trace{Capacity: 2, Keys: []int{1, 1}}).Requests())
	is.NoError(err)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s, err := startMetricsServer("127.0.0.1:0", registry, logger)
	is.NoError(err)
	defer s.shutdown()

	client := &http.Client{Timeout: 5 * time.Second}
	defer client.CloseIdleConnections()

	resp, err := client.Get("http://" + s.addr() + "/metrics")
	is.NoError(err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	is.NoError(err)
	is.Equal(http.StatusOK, resp.StatusCode)
	is.Contains(string(body), `hotsim_hit_total{algorithm="arc",capacity="2",name="served"} 1`)
}

func TestRunServesMetricsUntilCancelled(t *testing.T) {
	is := assert.New(t)
	t.Parallel()

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	var stdout, stderr bytes.Buffer
	err := run(ctx, []string{"-metrics-addr", "127.0.0.1:0", "-log-level", "info"}, strings.NewReader("2 2 1 1"), &stdout, &stderr)
	is.NoError(err)
	is.Equal("1\n", stdout.String())
	is.Contains(stderr.String(), "serving metrics until interrupted")
}

func TestSetupLogger(t *testing.T) {
	is := assert.New(t)
	t.Parallel()

	var buf bytes.Buffer
	logger := setupLogger(&buf, "debug", "json")
	logger.Debug("hello", slog.Int("n", 1))
	is.Contains(buf.String(), `"msg":"hello"`)

	buf.Reset()
	logger = setupLogger(&buf, "nonsense", "text")
	logger.Info("hidden")
	logger.Warn("shown")
	is.NotContains(buf.String(), "hidden")
	is.Contains(buf.String(), "msg=shown")
}
