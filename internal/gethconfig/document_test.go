package gethconfig

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDocument_YAML(t *testing.T) {
	doc, err := ParseDocument(StageLaunchOptions, []byte(`
data_dir: /tmp/geth
rpc_enabled: true
ws_port: 8546
suffix_args: ["--syncmode", "full"]
`))
	require.NoError(t, err)

	ok, err := ValidateLaunchOptions(doc)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestParseDocument_JSON(t *testing.T) {
	doc, err := ParseDocument(StageGenesis, []byte(`{
  "config": {"chainId": 1337, "londonBlock": 0, "daoForkSupport": true},
  "alloc": {"0x1111111111111111111111111111111111111111": {"balance": "0x1"}},
  "gasLimit": "0x47e7c4"
}`))
	require.NoError(t, err)

	g, err := DecodeGenesisData(doc)
	require.NoError(t, err)
	assert.EqualValues(t, 1337, *g.Config.ChainID)
	assert.Len(t, g.Alloc, 1)
}

func TestParseDocument_Empty(t *testing.T) {
	doc, err := ParseDocument(StageGenesis, nil)
	require.NoError(t, err)
	assert.Empty(t, doc)
}

func TestParseDocument_Structural(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"list", "- data_dir\n- mine\n"},
		{"scalar", "just a string"},
		{"broken yaml", "data_dir: [unterminated"},
		{"integer keys", "1: one\n2: two\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseDocument(StageLaunchOptions, []byte(tt.data))
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrStructural)
			assert.Contains(t, err.Error(), "error while validating geth_kwargs")
		})
	}
}

func TestAsMapping(t *testing.T) {
	m, err := AsMapping(StageGenesis, map[string]string{"gasLimit": "0x1"})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"gasLimit": "0x1"}, m)

	_, err = AsMapping(StageGenesis, nil)
	assert.ErrorIs(t, err, ErrStructural)

	_, err = AsMapping(StageGenesis, map[int]string{1: "x"})
	assert.ErrorIs(t, err, ErrStructural)
}
