package genesis

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sol-strategies/geth-launch-config/internal/gethconfig"
)

func TestMarshal_Defaults(t *testing.T) {
	data, err := Marshal(gethconfig.DefaultGenesisData())
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(data, &doc))

	assert.Equal(t, gethconfig.DefaultCoinbase, doc["coinbase"])
	assert.Equal(t, gethconfig.DefaultGasLimit, doc["gasLimit"])
	assert.Equal(t, map[string]any{}, doc["alloc"])

	config := doc["config"].(map[string]any)
	assert.Equal(t, true, config["daoForkSupport"])
	assert.Equal(t, float64(0), config["terminalTotalDifficulty"])
	assert.Equal(t, float64(0), config["cancunTime"])
	assert.NotContains(t, config, "chainId")
	assert.NotContains(t, config, "muirGlacierBlock")
}

func TestMarshal_RoundTripsThroughValidator(t *testing.T) {
	g, err := gethconfig.DecodeGenesisData(map[string]any{
		"config": map[string]any{"chainId": 1337, "londonBlock": 10},
		"alloc": map[string]any{
			"0xabcdefabcdefabcdefabcdefabcdefabcdefabcd": map[string]any{"balance": "0x1"},
		},
	})
	require.NoError(t, err)

	data, err := Marshal(g)
	require.NoError(t, err)

	doc, err := gethconfig.ParseDocument(gethconfig.StageGenesis, data)
	require.NoError(t, err)
	ok, err := gethconfig.ValidateGenesisData(doc)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestMarshal_ChecksumsAllocAddresses(t *testing.T) {
	g := gethconfig.DefaultGenesisData()
	g.Alloc["abcdefabcdefabcdefabcdefabcdefabcdefabcd"] = map[string]any{"balance": "0x1"}

	data, err := Marshal(g)
	require.NoError(t, err)

	var doc struct {
		Alloc map[string]map[string]any `json:"alloc"`
	}
	require.NoError(t, json.Unmarshal(data, &doc))
	want := common.HexToAddress("0xabcdefabcdefabcdefabcdefabcdefabcdefabcd").Hex()
	assert.Contains(t, doc.Alloc, want)
	assert.Len(t, doc.Alloc, 1)

	// input is left as is
	assert.Contains(t, g.Alloc, "abcdefabcdefabcdefabcdefabcdefabcdefabcd")
}

func TestMarshal_DuplicateAddress(t *testing.T) {
	g := gethconfig.DefaultGenesisData()
	g.Alloc["0xabcdefabcdefabcdefabcdefabcdefabcdefabcd"] = map[string]any{}
	g.Alloc["abcdefabcdefabcdefabcdefabcdefabcdefabcd"] = map[string]any{}

	_, err := Marshal(g)
	assert.Error(t, err)
}

func TestWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "genesis.json")

	require.NoError(t, WriteFile(path, gethconfig.DefaultGenesisData()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, json.Valid(data))

	_, err = os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err))
}
