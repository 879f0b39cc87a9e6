package launcher

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"syscall"
	"time"

	"github.com/sol-strategies/geth-launch-config/internal/constants"
)

type lockInfo struct {
	PID       int    `json:"pid"`
	StartedAt string `json:"started_at"`
}

// lockPath returns the lock file guarding the data dir, or "" when no data
// dir is configured.
func (l *Launcher) lockPath() string {
	dataDir := l.options.DataDir
	if dataDir == nil || *dataDir == "" {
		return ""
	}
	return filepath.Join(*dataDir, constants.LockFilename)
}

func (l *Launcher) acquireLock() error {
	lockPath := l.lockPath()
	if lockPath == "" {
		logger().Debug("no data_dir set, skipping lock")
		return nil
	}

	data, err := os.ReadFile(lockPath)
	if err == nil {
		var info lockInfo
		if err := json.Unmarshal(data, &info); err == nil {
			if isProcessAlive(info.PID) {
				return fmt.Errorf("data dir in use by another launch (PID: %d, started: %s)", info.PID, info.StartedAt)
			}
			logger().Warn("stale lock file found, overwriting", "stale_pid", info.PID)
		}
	}

	if err := os.MkdirAll(filepath.Dir(lockPath), 0o755); err != nil {
		return fmt.Errorf("creating data dir: %w", err)
	}

	info := lockInfo{
		PID:       os.Getpid(),
		StartedAt: time.Now().UTC().Format(time.RFC3339),
	}
	lockData, err := json.MarshalIndent(info, "", "  ")
	if err != nil {
		return fmt.Errorf("marshalling lock info: %w", err)
	}

	if err := os.WriteFile(lockPath, lockData, 0644); err != nil {
		return fmt.Errorf("writing lock file: %w", err)
	}

	logger().Debug("lock acquired", "path", lockPath, "pid", info.PID)
	return nil
}

func (l *Launcher) releaseLock() {
	lockPath := l.lockPath()
	if lockPath == "" {
		return
	}
	if err := os.Remove(lockPath); err != nil && !os.IsNotExist(err) {
		logger().Error("failed to remove lock file", "path", lockPath, "error", err)
	} else {
		logger().Debug("lock released", "path", lockPath)
	}
}

func isProcessAlive(pid int) bool {
	process, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	// signal 0 probes for existence without delivering anything
	return process.Signal(syscall.Signal(0)) == nil
}
