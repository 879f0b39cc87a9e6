// Package gethcmd turns validated launch options into a geth command line.
package gethcmd

import (
	"errors"
	"fmt"
	"os/exec"
	"slices"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/sol-strategies/geth-launch-config/internal/constants"
	"github.com/sol-strategies/geth-launch-config/internal/gethconfig"
)

func logger() *log.Logger { return log.Default().WithPrefix("gethcmd") }

// ErrMineWithoutUnlock is returned when mining is requested without an account to mine with.
var ErrMineWithoutUnlock = errors.New("cannot mine without an unlocked account (set unlock or dev_mode)")

// lookPath is swapped out in tests.
var lookPath = exec.LookPath

// Executable returns the geth binary the options point at.
func Executable(opts *gethconfig.LaunchOptions) string {
	if opts.GethExecutable != nil && *opts.GethExecutable != "" {
		return *opts.GethExecutable
	}
	return constants.DefaultGethExecutable
}

// Build returns the argv that starts geth with opts. The first element is
// the program to execute.
func Build(opts *gethconfig.LaunchOptions) ([]string, error) {
	if isOn(opts.Mine) && opts.Unlock == nil && !isOn(opts.DevMode) {
		return nil, ErrMineWithoutUnlock
	}

	b := &builder{}

	if isOn(opts.Nice) {
		if _, err := lookPath("nice"); err == nil {
			b.add("nice", "-n", constants.NiceLevel)
		} else {
			logger().Warn("nice requested but not found on PATH, starting without it")
		}
	}
	b.add(Executable(opts))

	b.flag("--http", opts.RPCEnabled)
	b.str("--http.addr", opts.RPCAddr)
	b.str("--http.port", opts.RPCPort)
	b.str("--http.api", opts.RPCAPI)
	b.str("--http.corsdomain", opts.RPCCorsDomain)

	b.flag("--ws", opts.WSEnabled)
	b.str("--ws.addr", opts.WSAddr)
	b.num("--ws.port", opts.WSPort)
	b.str("--ws.api", opts.WSAPI)
	b.str("--ws.origins", opts.WSOrigins)

	b.str("--datadir", opts.DataDir)
	b.str("--maxpeers", opts.MaxPeers)
	b.str("--networkid", opts.NetworkID)
	b.str("--port", opts.Port)

	b.flag("--ipcdisable", opts.IPCDisable)
	b.str("--ipcpath", opts.IPCPath)

	b.num("--verbosity", opts.Verbosity)
	b.str("--unlock", opts.Unlock)
	if opts.Password != nil && *opts.Password != "" {
		b.add("--password", string(*opts.Password))
	}
	b.str("--preload", opts.Preload)
	b.flag("--nodiscover", opts.NoDiscover)

	if isOn(opts.Mine) {
		b.add("--mine")
		b.num("--miner.etherbase", opts.MinerEtherbase)
	}
	b.flag("--autodag", opts.Autodag)
	b.flag("--shh", opts.Shh)
	b.flag("--allow-insecure-unlock", opts.AllowInsecureUnlock)

	b.num("--txpool.globalslots", opts.TxPoolGlobalSlots)
	b.num("--txpool.pricelimit", opts.TxPoolPriceLimit)
	b.num("--cache", opts.Cache)
	b.str("--gcmode", opts.GCMode)
	b.flag("--dev", opts.DevMode)

	keys := make([]string, 0, len(opts.SuffixKwargs))
	for k := range opts.SuffixKwargs {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		b.kwarg(k, opts.SuffixKwargs[k])
	}

	b.add(opts.SuffixArgs...)
	return b.args, nil
}

// InitArgs returns the argv for "geth init", which writes the genesis block
// into the data directory.
func InitArgs(opts *gethconfig.LaunchOptions, genesisPath string) []string {
	b := &builder{}
	b.add(Executable(opts))
	b.str("--datadir", opts.DataDir)
	b.add("init", genesisPath)
	return b.args
}

type builder struct {
	args []string
}

func (b *builder) add(args ...string) {
	b.args = append(b.args, args...)
}

func (b *builder) flag(name string, v *bool) {
	if isOn(v) {
		b.add(name)
	}
}

func (b *builder) str(name string, v *string) {
	if v != nil && *v != "" {
		b.add(name, *v)
	}
}

func (b *builder) num(name string, v *int64) {
	if v != nil {
		b.add(name, strconv.FormatInt(*v, 10))
	}
}

// kwarg renders a pass-through option. true and nil become a bare flag,
// false drops the option entirely.
func (b *builder) kwarg(key string, v any) {
	name := key
	if !strings.HasPrefix(name, "-") {
		name = "--" + name
	}
	switch val := v.(type) {
	case nil:
		b.add(name)
	case bool:
		if val {
			b.add(name)
		}
	case string:
		b.add(name, val)
	default:
		b.add(name, fmt.Sprint(val))
	}
}

func isOn(v *bool) bool {
	return v != nil && *v
}
