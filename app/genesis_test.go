package app

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/iov-one/daowallet"
	"github.com/iov-one/daowallet/errors"
	"github.com/iov-one/daowallet/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadGenesis(t *testing.T) {
	cases := map[string]struct {
		content string
		wantErr *errors.Error
		wantID  string
	}{
		"valid": {
			content: `{"chain_id": "test-chain", "app_state": {"wallets": []}}`,
			wantID:  "test-chain",
		},
		"invalid chain id": {
			content: `{"chain_id": "x", "app_state": {}}`,
			wantErr: errors.ErrInput,
		},
		"not json": {
			content: `chain_id = "test-chain"`,
			wantErr: errors.ErrInput,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			dir, err := ioutil.TempDir("", "daowallet-genesis")
			require.NoError(t, err)
			defer os.RemoveAll(dir)
			path := filepath.Join(dir, "genesis.json")
			require.NoError(t, ioutil.WriteFile(path, []byte(tc.content), 0600))

			gen, err := LoadGenesis(path)
			if !tc.wantErr.Is(err) {
				t.Fatalf("unexpected error: %+v", err)
			}
			if tc.wantErr == nil {
				assert.Equal(t, tc.wantID, gen.ChainID)
			}
		})
	}

	_, err := LoadGenesis("/does/not/exist.json")
	assert.True(t, errors.ErrInput.Is(err))
}

type recordingInitializer struct {
	calls *[]string
	name  string
	err   error
}

func (r recordingInitializer) FromGenesis(daowallet.Options, daowallet.KVStore) error {
	*r.calls = append(*r.calls, r.name)
	return r.err
}

func TestChainInitializers(t *testing.T) {
	var calls []string
	init := ChainInitializers(
		recordingInitializer{calls: &calls, name: "a"},
		recordingInitializer{calls: &calls, name: "b", err: errors.ErrInput},
		recordingInitializer{calls: &calls, name: "c"},
	)
	err := init.FromGenesis(daowallet.Options{}, store.MemStore())
	assert.True(t, errors.ErrInput.Is(err))
	assert.Equal(t, []string{"a", "b"}, calls)
}
