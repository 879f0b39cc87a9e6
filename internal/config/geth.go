package config

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/sol-strategies/geth-launch-config/internal/gethconfig"
)

const genesisFilename = "genesis.json"

// Geth holds the inputs for launching geth. LaunchOptions and Genesis are
// kept as raw mappings until Validate checks them against their schemas.
type Geth struct {
	// LaunchOptions maps launch option names (data_dir, rpc_enabled, ...) to values
	LaunchOptions any `koanf:"launch_options"`
	// Genesis is the genesis data to initialise the data dir with; unset means no genesis is written
	Genesis any `koanf:"genesis"`
	// GenesisFile is where the genesis JSON is written, defaults to <data_dir>/genesis.json
	GenesisFile string `koanf:"genesis_file"`
	// Init runs "geth init" before the first start of an empty data dir
	Init bool `koanf:"init"`
	// WaitReady polls the HTTP-RPC endpoint after start when rpc_enabled is set
	WaitReady    bool   `koanf:"wait_ready"`
	ReadyTimeout string `koanf:"ready_timeout"`
	StopTimeout  string `koanf:"stop_timeout"`
	// Parsed
	ParsedLaunchOptions *gethconfig.LaunchOptions `koanf:"-"`
	ParsedGenesis       *gethconfig.GenesisData   `koanf:"-"`
	ReadyTimeoutDur     time.Duration             `koanf:"-"`
	StopTimeoutDur      time.Duration             `koanf:"-"`
}

func (g *Geth) Validate() (err error) {
	options := map[string]any{}
	if g.LaunchOptions != nil {
		if options, err = gethconfig.AsMapping(gethconfig.StageLaunchOptions, g.LaunchOptions); err != nil {
			return fmt.Errorf("geth.launch_options: %w", err)
		}
	}
	if g.ParsedLaunchOptions, err = gethconfig.DecodeLaunchOptions(options); err != nil {
		return fmt.Errorf("geth.launch_options: %w", err)
	}

	if g.Genesis != nil {
		genesis, err := gethconfig.AsMapping(gethconfig.StageGenesis, g.Genesis)
		if err != nil {
			return fmt.Errorf("geth.genesis: %w", err)
		}
		if g.ParsedGenesis, err = gethconfig.DecodeGenesisData(genesis); err != nil {
			return fmt.Errorf("geth.genesis: %w", err)
		}
		if g.GenesisFile == "" {
			g.GenesisFile = g.defaultGenesisFile()
		}
	}

	if g.ReadyTimeout != "" {
		d, err := time.ParseDuration(g.ReadyTimeout)
		if err != nil {
			return fmt.Errorf("geth.ready_timeout: %w", err)
		}
		if d <= 0 {
			return fmt.Errorf("geth.ready_timeout must be > 0")
		}
		g.ReadyTimeoutDur = d
	}
	if g.StopTimeout != "" {
		d, err := time.ParseDuration(g.StopTimeout)
		if err != nil {
			return fmt.Errorf("geth.stop_timeout: %w", err)
		}
		if d < 0 {
			return fmt.Errorf("geth.stop_timeout must be >= 0")
		}
		g.StopTimeoutDur = d
	}
	return nil
}

func (g *Geth) defaultGenesisFile() string {
	if dataDir := g.ParsedLaunchOptions.DataDir; dataDir != nil && *dataDir != "" {
		return filepath.Join(*dataDir, genesisFilename)
	}
	return genesisFilename
}
