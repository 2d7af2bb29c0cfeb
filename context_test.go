package daowallet

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/tendermint/tendermint/libs/log"
)

func TestContext(t *testing.T) {
	bg := context.Background()

	// try logger with default
	newLogger := log.NewTMLogger(os.Stdout)
	ctx := WithLogger(bg, newLogger)
	assert.Equal(t, DefaultLogger, GetLogger(bg))
	assert.Equal(t, newLogger, GetLogger(ctx))

	// test height - uninitialized
	val, ok := GetHeight(ctx)
	assert.Equal(t, int64(0), val)
	assert.False(t, ok)
	// set
	ctx = WithHeight(ctx, 7)
	val, ok = GetHeight(ctx)
	assert.Equal(t, int64(7), val)
	assert.True(t, ok)
	// no reset
	assert.Panics(t, func() { WithHeight(ctx, 9) })

	// changing the info, should modify the logger, but not the height
	ctx2 := WithLogInfo(ctx, "foo", "bar")
	assert.NotEqual(t, GetLogger(ctx), GetLogger(ctx2))
	val, _ = GetHeight(ctx)
	assert.Equal(t, int64(7), val)

	// chain id MUST be set exactly once
	assert.Panics(t, func() { GetChainID(ctx) })
	ctx2 = WithChainID(ctx, "my-chain")
	assert.Equal(t, "my-chain", GetChainID(ctx2))
	// don't try a second time
	assert.Panics(t, func() { WithChainID(ctx2, "my-chain") })
}

func TestBlockTimeAndExpiration(t *testing.T) {
	ctx := context.Background()
	assert.Panics(t, func() { IsExpired(ctx, 1) })

	now := time.Date(2019, 4, 4, 11, 35, 40, 0, time.FixedZone("CEST", 2*60*60))
	ctx = WithBlockTime(ctx, now)

	got, ok := BlockTime(ctx)
	assert.True(t, ok)
	assert.Equal(t, time.UTC, got.Location())
	assert.True(t, now.Equal(got))
	assert.Panics(t, func() { WithBlockTime(ctx, now) })

	unow := AsUnixTime(now)
	assert.True(t, IsExpired(ctx, unow), "expiration is inclusive")
	assert.True(t, IsExpired(ctx, unow.Add(-time.Second)))
	assert.False(t, IsExpired(ctx, unow.Add(time.Second)))
}

func TestChainID(t *testing.T) {
	cases := []struct {
		chainID string
		valid   bool
	}{
		{"", false},
		{"foo", false},
		{"special", true},
		{"wish-YOU-88", true},
		{"invalid;;chars", false},
		{"this-chain-id-is-way-too-long", false},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.valid, IsValidChainID(tc.chainID), tc.chainID)
	}
}

func TestBlockNow(t *testing.T) {
	_, err := BlockNow(context.Background())
	assert.Error(t, err)

	ctx := WithBlockTime(context.Background(), time.Unix(1554370540, 0))
	now, err := BlockNow(ctx)
	assert.NoError(t, err)
	assert.Equal(t, UnixTime(1554370540), now)
}
