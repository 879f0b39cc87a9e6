package launcher

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/sol-strategies/geth-launch-config/internal/config"
	"github.com/sol-strategies/geth-launch-config/internal/constants"
)

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func captureLogs(t *testing.T) *syncBuffer {
	t.Helper()
	buf := &syncBuffer{}
	log.SetOutput(buf)
	t.Cleanup(func() { log.SetOutput(os.Stderr) })
	return buf
}

// fakeGeth writes an executable shell script standing in for geth.
func fakeGeth(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "geth")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0o755); err != nil {
		t.Fatal(err)
	}
	return path
}

func testConfig(t *testing.T, options map[string]any, genesis any) *config.Config {
	t.Helper()
	if _, ok := options["data_dir"]; !ok {
		options["data_dir"] = t.TempDir()
	}
	options["nice"] = false

	cfg := &config.Config{
		Geth: config.Geth{
			LaunchOptions: options,
			Genesis:       genesis,
			Init:          true,
			ReadyTimeout:  "1s",
			StopTimeout:   "1s",
		},
	}
	if err := cfg.Geth.Validate(); err != nil {
		t.Fatal(err)
	}
	return cfg
}

func TestAcquireLock_NewLock(t *testing.T) {
	cfg := testConfig(t, map[string]any{}, nil)
	l := New(cfg)

	if err := l.acquireLock(); err != nil {
		t.Fatal(err)
	}
	defer l.releaseLock()

	data, err := os.ReadFile(filepath.Join(*l.options.DataDir, constants.LockFilename))
	if err != nil {
		t.Fatal(err)
	}

	var info lockInfo
	if err := json.Unmarshal(data, &info); err != nil {
		t.Fatal(err)
	}
	if info.PID != os.Getpid() {
		t.Errorf("expected PID %d, got %d", os.Getpid(), info.PID)
	}
}

func TestAcquireLock_AlreadyLocked(t *testing.T) {
	cfg := testConfig(t, map[string]any{}, nil)
	l := New(cfg)

	if err := l.acquireLock(); err != nil {
		t.Fatal(err)
	}
	defer l.releaseLock()

	// same PID is alive, so a second launcher must back off
	if err := New(cfg).acquireLock(); err == nil {
		t.Error("expected error for duplicate lock")
	}
}

func TestAcquireLock_StaleLock(t *testing.T) {
	cfg := testConfig(t, map[string]any{}, nil)
	l := New(cfg)

	lockPath := l.lockPath()
	stale, _ := json.Marshal(lockInfo{PID: 999999999, StartedAt: "2020-01-01T00:00:00Z"})
	if err := os.WriteFile(lockPath, stale, 0644); err != nil {
		t.Fatal(err)
	}

	if err := l.acquireLock(); err != nil {
		t.Fatalf("expected stale lock to be overwritten, got %v", err)
	}
	defer l.releaseLock()
}

func TestAcquireLock_CreatesDataDir(t *testing.T) {
	dataDir := filepath.Join(t.TempDir(), "new", "datadir")
	l := New(testConfig(t, map[string]any{"data_dir": dataDir}, nil))

	if err := l.acquireLock(); err != nil {
		t.Fatal(err)
	}
	defer l.releaseLock()

	if _, err := os.Stat(filepath.Join(dataDir, constants.LockFilename)); err != nil {
		t.Errorf("expected lock file in new data dir: %v", err)
	}
}

func TestReleaseLock(t *testing.T) {
	l := New(testConfig(t, map[string]any{}, nil))

	if err := l.acquireLock(); err != nil {
		t.Fatal(err)
	}
	l.releaseLock()

	if _, err := os.Stat(l.lockPath()); !os.IsNotExist(err) {
		t.Error("expected lock file to be removed")
	}
}

func TestLockPath_NoDataDir(t *testing.T) {
	l := &Launcher{options: testConfig(t, map[string]any{"data_dir": ""}, nil).Geth.ParsedLaunchOptions}
	if got := l.lockPath(); got != "" {
		t.Errorf("expected no lock path, got %q", got)
	}
	if err := l.acquireLock(); err != nil {
		t.Errorf("expected lock to be skipped, got %v", err)
	}
}

func TestRun_ForwardsOutput(t *testing.T) {
	logs := captureLogs(t)
	cfg := testConfig(t, map[string]any{
		"geth_executable": fakeGeth(t, `echo "started with $*"`),
		"verbosity":       3,
	}, nil)
	l := New(cfg)

	if err := l.Run(context.Background()); err != nil {
		t.Fatal(err)
	}

	out := logs.String()
	if !strings.Contains(out, "--verbosity 3") {
		t.Errorf("expected geth output in logs, got:\n%s", out)
	}
	if _, err := os.Stat(l.lockPath()); !os.IsNotExist(err) {
		t.Error("expected lock to be released after exit")
	}
}

func TestRun_Stdin(t *testing.T) {
	logs := captureLogs(t)
	cfg := testConfig(t, map[string]any{
		"geth_executable": fakeGeth(t, "cat"),
		"stdin":           "hello from stdin",
	}, nil)

	if err := New(cfg).Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(logs.String(), "hello from stdin") {
		t.Errorf("expected stdin echoed to logs, got:\n%s", logs.String())
	}
}

func TestRun_NonZeroExit(t *testing.T) {
	cfg := testConfig(t, map[string]any{
		"geth_executable": fakeGeth(t, "exit 3"),
	}, nil)

	err := New(cfg).Run(context.Background())
	if err == nil {
		t.Fatal("expected error for non-zero exit")
	}
	if !strings.Contains(err.Error(), "code 3") {
		t.Errorf("expected exit code in error, got %v", err)
	}
}

func TestRun_MineWithoutUnlock(t *testing.T) {
	cfg := testConfig(t, map[string]any{
		"geth_executable": fakeGeth(t, "exit 0"),
		"mine":            true,
	}, nil)

	if err := New(cfg).Run(context.Background()); err == nil {
		t.Error("expected build error")
	}
}

func TestRun_CancelStopsGeth(t *testing.T) {
	cfg := testConfig(t, map[string]any{
		"geth_executable": fakeGeth(t, "exec sleep 30"),
	}, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	start := time.Now()
	if err := New(cfg).Run(ctx); err != nil {
		t.Fatalf("expected clean stop on cancel, got %v", err)
	}
	if elapsed := time.Since(start); elapsed > 10*time.Second {
		t.Errorf("geth was not stopped promptly (%s)", elapsed)
	}
}

func TestInit_WritesGenesisAndRunsInit(t *testing.T) {
	dataDir := t.TempDir()
	// argv is: geth --datadir DIR init FILE
	script := fakeGeth(t, `[ "$3" = "init" ] || exit 1
[ -f "$4" ] || exit 2
mkdir -p "$2/geth/chaindata"`)
	cfg := testConfig(t, map[string]any{
		"geth_executable": script,
		"data_dir":        dataDir,
	}, map[string]any{"config": map[string]any{"chainId": 1337}})
	l := New(cfg)

	if err := l.Init(context.Background()); err != nil {
		t.Fatal(err)
	}

	genesisFile := filepath.Join(dataDir, "genesis.json")
	data, err := os.ReadFile(genesisFile)
	if err != nil {
		t.Fatal(err)
	}
	var written map[string]any
	if err := json.Unmarshal(data, &written); err != nil {
		t.Fatal(err)
	}
	if written["gasLimit"] != "0x47e7c4" {
		t.Errorf("expected default gasLimit in genesis file, got %v", written["gasLimit"])
	}
	if !l.initialised() {
		t.Error("expected data dir to be initialised")
	}
}

func TestInit_SkipsInitialisedDataDir(t *testing.T) {
	dataDir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dataDir, constants.ChaindataDir), 0o755); err != nil {
		t.Fatal(err)
	}
	cfg := testConfig(t, map[string]any{
		"geth_executable": fakeGeth(t, "exit 1"),
		"data_dir":        dataDir,
	}, map[string]any{})

	if err := New(cfg).Init(context.Background()); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(filepath.Join(dataDir, "genesis.json")); !os.IsNotExist(err) {
		t.Error("expected no genesis file to be written")
	}
}

func TestInit_NoGenesis(t *testing.T) {
	cfg := testConfig(t, map[string]any{
		"geth_executable": fakeGeth(t, "exit 1"),
	}, nil)

	if err := New(cfg).Init(context.Background()); err != nil {
		t.Fatal(err)
	}
}

func TestInit_Failure(t *testing.T) {
	cfg := testConfig(t, map[string]any{
		"geth_executable": fakeGeth(t, "echo fatal: bad genesis >&2; exit 1"),
	}, map[string]any{})

	if err := New(cfg).Init(context.Background()); err == nil {
		t.Error("expected geth init failure")
	}
}

func TestLogWriter_SplitsLines(t *testing.T) {
	logs := captureLogs(t)
	w := newLogWriter("stdout", log.InfoLevel)

	w.Write([]byte("first li"))
	w.Write([]byte("ne\nsecond line\n\npartial"))
	if strings.Contains(logs.String(), "partial") {
		t.Error("partial line emitted before flush")
	}
	w.Flush()

	out := logs.String()
	for _, want := range []string{"first line", "second line", "partial"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in logs, got:\n%s", want, out)
		}
	}
	if n := strings.Count(out, "stream=stdout"); n != 3 {
		t.Errorf("expected 3 log lines, got %d:\n%s", n, out)
	}
}
