package gethconfig

// BytesOrString holds a value that callers may supply either as raw bytes or as a string.
type BytesOrString string

// LaunchOptions are the recognised options for starting a geth process.
// A nil field means the option is unset.
type LaunchOptions struct {
	AllowInsecureUnlock *bool          `mapstructure:"allow_insecure_unlock"`
	Autodag             *bool          `mapstructure:"autodag"`
	Cache               *int64         `mapstructure:"cache"`
	DataDir             *string        `mapstructure:"data_dir"`
	DevMode             *bool          `mapstructure:"dev_mode"`
	GCMode              *string        `mapstructure:"gcmode" validate:"omitempty,oneof=full archive"`
	GethExecutable      *string        `mapstructure:"geth_executable"`
	IPCDisable          *bool          `mapstructure:"ipc_disable"`
	IPCPath             *string        `mapstructure:"ipc_path"`
	MaxPeers            *string        `mapstructure:"max_peers"`
	Mine                *bool          `mapstructure:"mine"`
	MinerEtherbase      *int64         `mapstructure:"miner_etherbase"`
	NetworkID           *string        `mapstructure:"network_id"`
	Nice                *bool          `mapstructure:"nice"`
	NoDiscover          *bool          `mapstructure:"no_discover"`
	Password            *BytesOrString `mapstructure:"password"`
	Port                *string        `mapstructure:"port"`
	Preload             *string        `mapstructure:"preload"`
	RPCAddr             *string        `mapstructure:"rpc_addr"`
	RPCAPI              *string        `mapstructure:"rpc_api"`
	RPCCorsDomain       *string        `mapstructure:"rpc_cors_domain"`
	RPCEnabled          *bool          `mapstructure:"rpc_enabled"`
	RPCPort             *string        `mapstructure:"rpc_port"`
	Shh                 *bool          `mapstructure:"shh"`
	Stdin               *string        `mapstructure:"stdin"`
	SuffixArgs          []string       `mapstructure:"suffix_args"`
	SuffixKwargs        map[string]any `mapstructure:"suffix_kwargs"`
	TxPoolGlobalSlots   *int64         `mapstructure:"tx_pool_global_slots"`
	TxPoolPriceLimit    *int64         `mapstructure:"tx_pool_price_limit"`
	Unlock              *string        `mapstructure:"unlock"`
	Verbosity           *int64         `mapstructure:"verbosity"`
	WSAddr              *string        `mapstructure:"ws_addr"`
	WSAPI               *string        `mapstructure:"ws_api"`
	WSEnabled           *bool          `mapstructure:"ws_enabled"`
	WSOrigins           *string        `mapstructure:"ws_origins"`
	WSPort              *int64         `mapstructure:"ws_port"`
}

var launchOptionKeys = keysOf(LaunchOptions{})

// LaunchOptionKeys returns the recognised launch option names, sorted.
func LaunchOptionKeys() []string {
	return append([]string(nil), launchOptionKeys...)
}

// ValidateLaunchOptions reports whether options is a well-formed set of
// launch options. The map is only read.
func ValidateLaunchOptions(options map[string]any) (bool, error) {
	if _, err := DecodeLaunchOptions(options); err != nil {
		return false, err
	}
	return true, nil
}

// DecodeLaunchOptions validates options and returns them as a fresh
// LaunchOptions with defaults filled in for nice, autodag, mine and dev_mode.
func DecodeLaunchOptions(options map[string]any) (*LaunchOptions, error) {
	if key, ok := launchOptionKeys.unknown(options); ok {
		return nil, schemaViolation(StageLaunchOptions, key)
	}

	out := &LaunchOptions{}
	if err := decodeInto(options, out); err != nil {
		return nil, typeMismatch(StageLaunchOptions, "", err)
	}
	if err := validate.Struct(out); err != nil {
		return nil, constraintMismatch(StageLaunchOptions, err)
	}

	out.applyDefaults()
	return out, nil
}

func (o *LaunchOptions) applyDefaults() {
	if o.Nice == nil {
		o.Nice = ptr(true)
	}
	if o.Autodag == nil {
		o.Autodag = ptr(false)
	}
	if o.Mine == nil {
		o.Mine = ptr(false)
	}
	if o.DevMode == nil {
		o.DevMode = ptr(false)
	}
}

func ptr[T any](v T) *T { return &v }
