// Package genesis writes validated genesis data to the JSON file geth reads on "geth init".
package genesis

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/ethereum/go-ethereum/common"

	"github.com/sol-strategies/geth-launch-config/internal/gethconfig"
)

func logger() *log.Logger { return log.Default().WithPrefix("genesis") }

// Marshal renders g as an indented genesis JSON document. Alloc addresses
// are written in checksummed 0x form.
func Marshal(g *gethconfig.GenesisData) ([]byte, error) {
	out := *g
	out.Alloc = make(map[string]map[string]any, len(g.Alloc))
	for addr, account := range g.Alloc {
		if !common.IsHexAddress(addr) {
			return nil, fmt.Errorf("alloc: %q is not a hex address", addr)
		}
		key := common.HexToAddress(addr).Hex()
		if _, dup := out.Alloc[key]; dup {
			return nil, fmt.Errorf("alloc: %s is listed more than once", key)
		}
		out.Alloc[key] = account
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling genesis: %w", err)
	}
	return append(data, '\n'), nil
}

// WriteFile writes g to path, replacing any existing file atomically.
func WriteFile(path string, g *gethconfig.GenesisData) error {
	data, err := Marshal(g)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating genesis directory: %w", err)
	}

	tempPath := path + ".tmp"
	if err := os.WriteFile(tempPath, data, 0o644); err != nil {
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := os.Rename(tempPath, path); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("renaming temp file: %w", err)
	}

	logger().Info("wrote genesis file", "path", path, "accounts", len(g.Alloc))
	return nil
}
