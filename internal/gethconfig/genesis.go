package gethconfig

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

const (
	DefaultCoinbase = "0x3333333333333333333333333333333333333333"
	DefaultGasLimit = "0x47e7c4"
	zeroHash        = "0x0000000000000000000000000000000000000000000000000000000000000000"
)

// ForkConfig is the "config" section of a genesis file: the block numbers and
// timestamps at which protocol upgrades activate.
type ForkConfig struct {
	ChainID             *uint64        `mapstructure:"chainId" json:"chainId,omitempty"`
	Ethash              map[string]any `mapstructure:"ethash" json:"ethash"`
	HomesteadBlock      uint64         `mapstructure:"homesteadBlock" json:"homesteadBlock"`
	DAOForkBlock        uint64         `mapstructure:"daoForkBlock" json:"daoForkBlock"`
	DAOForkSupport      bool           `mapstructure:"daoForkSupport" json:"daoForkSupport"`
	EIP150Block         uint64         `mapstructure:"eip150Block" json:"eip150Block"`
	EIP155Block         uint64         `mapstructure:"eip155Block" json:"eip155Block"`
	EIP158Block         uint64         `mapstructure:"eip158Block" json:"eip158Block"`
	ByzantiumBlock      uint64         `mapstructure:"byzantiumBlock" json:"byzantiumBlock"`
	ConstantinopleBlock uint64         `mapstructure:"constantinopleBlock" json:"constantinopleBlock"`
	PetersburgBlock     uint64         `mapstructure:"petersburgBlock" json:"petersburgBlock"`
	IstanbulBlock       uint64         `mapstructure:"istanbulBlock" json:"istanbulBlock"`
	MuirGlacierBlock    *uint64        `mapstructure:"muirGlacierBlock" json:"muirGlacierBlock,omitempty"`
	BerlinBlock         uint64         `mapstructure:"berlinBlock" json:"berlinBlock"`
	LondonBlock         uint64         `mapstructure:"londonBlock" json:"londonBlock"`
	ArrowGlacierBlock   uint64         `mapstructure:"arrowGlacierBlock" json:"arrowGlacierBlock"`
	GrayGlacierBlock    uint64         `mapstructure:"grayGlacierBlock" json:"grayGlacierBlock"`

	TerminalTotalDifficulty       *big.Int `mapstructure:"terminalTotalDifficulty" json:"terminalTotalDifficulty"`
	TerminalTotalDifficultyPassed bool     `mapstructure:"terminalTotalDifficultyPassed" json:"terminalTotalDifficultyPassed"`

	// Post-merge upgrades activate by timestamp.
	ShanghaiTime uint64 `mapstructure:"shanghaiTime" json:"shanghaiTime"`
	CancunTime   uint64 `mapstructure:"cancunTime" json:"cancunTime"`
}

// GenesisData is the content of a geth genesis file.
type GenesisData struct {
	Alloc      map[string]map[string]any `mapstructure:"alloc" json:"alloc"`
	Coinbase   string                    `mapstructure:"coinbase" json:"coinbase" validate:"eth_addr"`
	Config     ForkConfig                `mapstructure:"config" json:"config"`
	Difficulty string                    `mapstructure:"difficulty" json:"difficulty" validate:"hexquantity"`
	ExtraData  string                    `mapstructure:"extraData" json:"extraData" validate:"hexbytes"`
	GasLimit   string                    `mapstructure:"gasLimit" json:"gasLimit" validate:"hexquantity"`
	Mixhash    string                    `mapstructure:"mixhash" json:"mixhash" validate:"hash32"`
	Nonce      string                    `mapstructure:"nonce" json:"nonce" validate:"hexquantity"`
	ParentHash string                    `mapstructure:"parentHash" json:"parentHash" validate:"hash32"`
	Timestamp  string                    `mapstructure:"timestamp" json:"timestamp" validate:"hexquantity"`
}

var (
	genesisKeys    = keysOf(GenesisData{})
	forkConfigKeys = keysOf(ForkConfig{})
)

// GenesisKeys returns the recognised top-level genesis field names, sorted.
func GenesisKeys() []string { return append([]string(nil), genesisKeys...) }

// ForkConfigKeys returns the recognised fork configuration field names, sorted.
func ForkConfigKeys() []string { return append([]string(nil), forkConfigKeys...) }

// DefaultForkConfig activates every known upgrade from genesis.
func DefaultForkConfig() ForkConfig {
	return ForkConfig{
		Ethash:                        map[string]any{},
		DAOForkSupport:                true,
		TerminalTotalDifficulty:       new(big.Int),
		TerminalTotalDifficultyPassed: true,
	}
}

// DefaultGenesisData is a permissive single-node test network genesis.
func DefaultGenesisData() *GenesisData {
	return &GenesisData{
		Alloc:      map[string]map[string]any{},
		Coinbase:   DefaultCoinbase,
		Config:     DefaultForkConfig(),
		Difficulty: "0x0",
		ExtraData:  zeroHash,
		GasLimit:   DefaultGasLimit,
		Mixhash:    zeroHash,
		Nonce:      "0x0",
		ParentHash: zeroHash,
		Timestamp:  "0x0",
	}
}

// DefaultGenesisMap is DefaultGenesisData spelled out as an input mapping.
func DefaultGenesisMap() map[string]any {
	return map[string]any{
		"alloc":    map[string]any{},
		"coinbase": DefaultCoinbase,
		"config": map[string]any{
			"ethash":                        map[string]any{},
			"homesteadBlock":                0,
			"daoForkBlock":                  0,
			"daoForkSupport":                true,
			"eip150Block":                   0,
			"eip155Block":                   0,
			"eip158Block":                   0,
			"byzantiumBlock":                0,
			"constantinopleBlock":           0,
			"petersburgBlock":               0,
			"istanbulBlock":                 0,
			"berlinBlock":                   0,
			"londonBlock":                   0,
			"arrowGlacierBlock":             0,
			"grayGlacierBlock":              0,
			"terminalTotalDifficulty":       0,
			"terminalTotalDifficultyPassed": true,
			"shanghaiTime":                  0,
			"cancunTime":                    0,
		},
		"difficulty": "0x0",
		"extraData":  zeroHash,
		"gasLimit":   DefaultGasLimit,
		"mixhash":    zeroHash,
		"nonce":      "0x0",
		"parentHash": zeroHash,
		"timestamp":  "0x0",
	}
}

// ValidateGenesisData reports whether genesis is well-formed genesis data.
// The fork configuration under "config" is checked first and fails with its
// own stage, then the top level is checked.
func ValidateGenesisData(genesis map[string]any) (bool, error) {
	if _, err := DecodeGenesisData(genesis); err != nil {
		return false, err
	}
	return true, nil
}

// DecodeGenesisData validates genesis and returns a fresh GenesisData with
// defaults filled in for every absent field.
func DecodeGenesisData(genesis map[string]any) (*GenesisData, error) {
	out := DefaultGenesisData()

	rawConfig, hasConfig := genesis["config"]
	if hasConfig && !isEmptyMapping(rawConfig) {
		fc, err := DecodeForkConfig(rawConfig)
		if err != nil {
			return nil, err
		}
		out.Config = *fc
	}

	if key, ok := genesisKeys.unknown(genesis); ok {
		return nil, schemaViolation(StageGenesis, key)
	}
	if key, ok := nullKey(genesis); ok {
		return nil, typeMismatch(StageGenesis, key, errNull)
	}

	top := make(map[string]any, len(genesis))
	for k, v := range genesis {
		if k != "config" {
			top[k] = v
		}
	}
	if err := decodeInto(top, out); err != nil {
		return nil, typeMismatch(StageGenesis, "", err)
	}
	for addr := range out.Alloc {
		if !common.IsHexAddress(addr) {
			return nil, typeMismatch(StageGenesis, "alloc", fmt.Errorf("%q is not a hex address", addr))
		}
	}
	if err := validate.Struct(out); err != nil {
		return nil, constraintMismatch(StageGenesis, err)
	}

	return out, nil
}

// DecodeForkConfig validates a fork configuration mapping on its own and
// returns it with defaults filled in.
func DecodeForkConfig(raw any) (*ForkConfig, error) {
	config, err := AsMapping(StageForkConfig, raw)
	if err != nil {
		return nil, err
	}
	if key, ok := forkConfigKeys.unknown(config); ok {
		return nil, schemaViolation(StageForkConfig, key)
	}
	if key, ok := nullKey(config); ok {
		return nil, typeMismatch(StageForkConfig, key, errNull)
	}

	fc := DefaultForkConfig()
	if err := decodeInto(config, &fc); err != nil {
		return nil, typeMismatch(StageForkConfig, "", err)
	}
	return &fc, nil
}
