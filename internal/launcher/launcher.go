// Package launcher initialises a geth data dir and runs geth with validated launch options.
package launcher

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/sol-strategies/geth-launch-config/internal/config"
	"github.com/sol-strategies/geth-launch-config/internal/constants"
	"github.com/sol-strategies/geth-launch-config/internal/genesis"
	"github.com/sol-strategies/geth-launch-config/internal/gethcmd"
	"github.com/sol-strategies/geth-launch-config/internal/gethconfig"
	"github.com/sol-strategies/geth-launch-config/internal/rpc"
)

const readyPollInterval = 2 * time.Second

func logger() *log.Logger { return log.Default().WithPrefix("launcher") }

type Launcher struct {
	config  *config.Config
	options *gethconfig.LaunchOptions
}

// New returns a launcher for a validated config.
func New(cfg *config.Config) *Launcher {
	return &Launcher{
		config:  cfg,
		options: cfg.Geth.ParsedLaunchOptions,
	}
}

// Launch initialises the data dir if needed and then runs geth until it
// exits or ctx is cancelled.
func (l *Launcher) Launch(ctx context.Context) error {
	if l.config.Geth.Init {
		if err := l.Init(ctx); err != nil {
			return err
		}
	}
	return l.Run(ctx)
}

// Init writes the genesis file and runs "geth init" against it. It does
// nothing when no genesis is configured or the data dir already holds a chain.
func (l *Launcher) Init(ctx context.Context) error {
	g := l.config.Geth.ParsedGenesis
	if g == nil {
		logger().Debug("no genesis configured, skipping init")
		return nil
	}
	if l.initialised() {
		logger().Info("data dir already initialised, skipping init", "data_dir", *l.options.DataDir)
		return nil
	}

	if err := genesis.WriteFile(l.config.Geth.GenesisFile, g); err != nil {
		return fmt.Errorf("writing genesis: %w", err)
	}

	args := gethcmd.InitArgs(l.options, l.config.Geth.GenesisFile)
	logger().Info("initialising data dir", "cmd", strings.Join(args, " "))

	cmd := exec.CommandContext(ctx, args[0], args[1:]...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		logger().Error("geth init output", "output", string(output))
		return fmt.Errorf("geth init: %w", err)
	}
	if len(output) > 0 {
		logger().Debug("geth init output", "output", string(output))
	}
	return nil
}

func (l *Launcher) initialised() bool {
	dataDir := l.options.DataDir
	if dataDir == nil || *dataDir == "" {
		return false
	}
	info, err := os.Stat(filepath.Join(*dataDir, constants.ChaindataDir))
	return err == nil && info.IsDir()
}

// Run starts geth and blocks until it exits. Cancelling ctx interrupts geth
// and, once stop_timeout passes, kills it; that path returns nil.
func (l *Launcher) Run(ctx context.Context) error {
	args, err := gethcmd.Build(l.options)
	if err != nil {
		return fmt.Errorf("building geth command: %w", err)
	}

	if err := l.acquireLock(); err != nil {
		return err
	}
	defer l.releaseLock()

	cmd := exec.CommandContext(ctx, args[0], args[1:]...)
	cmd.Cancel = func() error {
		return cmd.Process.Signal(os.Interrupt)
	}
	cmd.WaitDelay = l.config.Geth.StopTimeoutDur

	stdout := newLogWriter("stdout", log.InfoLevel)
	stderr := newLogWriter("stderr", log.InfoLevel)
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	if l.options.Stdin != nil {
		cmd.Stdin = strings.NewReader(*l.options.Stdin)
	}

	logger().Info("starting geth", "cmd", strings.Join(args, " "))
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("starting geth: %w", err)
	}

	exited := make(chan struct{})
	defer close(exited)
	if l.config.Geth.WaitReady {
		if endpoint, ok := rpc.EndpointFor(l.options); ok {
			go l.waitReady(ctx, endpoint, exited)
		}
	}

	err = cmd.Wait()
	stdout.Flush()
	stderr.Flush()

	if ctx.Err() != nil {
		logger().Info("geth stopped", "reason", ctx.Err())
		return nil
	}
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return fmt.Errorf("geth exited with code %d", exitErr.ExitCode())
		}
		return fmt.Errorf("waiting for geth: %w", err)
	}

	logger().Info("geth exited")
	return nil
}

func (l *Launcher) waitReady(ctx context.Context, endpoint string, exited <-chan struct{}) {
	ctx, cancel := context.WithTimeout(ctx, l.config.Geth.ReadyTimeoutDur)
	defer cancel()
	go func() {
		select {
		case <-exited:
			cancel()
		case <-ctx.Done():
		}
	}()

	client, err := rpc.Dial(ctx, endpoint)
	if err != nil {
		logger().Warn("cannot probe geth readiness", "endpoint", endpoint, "error", err)
		return
	}
	defer client.Close()

	version, err := client.WaitReady(ctx, readyPollInterval)
	if err != nil {
		select {
		case <-exited:
		default:
			logger().Warn("geth did not become ready", "endpoint", endpoint, "error", err)
		}
		return
	}

	block, err := client.BlockNumber(ctx)
	if err != nil {
		logger().Info("geth ready", "endpoint", endpoint, "version", version)
		return
	}
	logger().Info("geth ready", "endpoint", endpoint, "version", version, "block", block)
}
