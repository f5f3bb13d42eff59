package wallet

import (
	"errors"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuild_NineAccounts(t *testing.T) {
	set, err := Build(9)
	require.NoError(t, err)
	require.Len(t, set, 9)

	for i, acc := range set {
		assert.Equal(t, i, acc.Index)
		assert.Equal(t, uint64(i+1), acc.Seed)
		assert.Zero(t, acc.Balance)
		assert.Nil(t, acc.PrivateKey)
		assert.Nil(t, acc.Err)
		assert.False(t, acc.Fetched())
	}

	assert.Equal(t, common.HexToAddress("0xbdce006564ba64e64d46a6e84afb1ca3687778c8"), set[0].Address)
	assert.Equal(t, common.HexToAddress("0xb6e85cf34a5203ec5a2f0340b837eb63ce59c610"), set[1].Address)
	assert.Equal(t, common.HexToAddress("0xfd0fbbbd8d1dbfae6d0426575d42b609fbb29d0f"), set[8].Address)
}

func TestBuild_Deterministic(t *testing.T) {
	a, err := Build(9)
	require.NoError(t, err)
	b, err := Build(9)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestBuild_Empty(t *testing.T) {
	set, err := Build(0)
	require.NoError(t, err)
	assert.Empty(t, set)
}

func TestBuild_WithPrivateKeys(t *testing.T) {
	set, err := Build(3, WithPrivateKeys())
	require.NoError(t, err)
	for _, acc := range set {
		require.NotNil(t, acc.PrivateKey)
	}
	assert.Equal(t, "0xd6f156ace704e32bce8eb0af45990ad037270eeee2330e481ce549bd40decc69",
		"0x"+set[0].PrivateKey.D.Text(16))
}

func TestAccount_HexAddress(t *testing.T) {
	set, err := Build(1)
	require.NoError(t, err)
	assert.Equal(t, "0xbdce006564ba64e64d46a6e84afb1ca3687778c8", set[0].HexAddress())
}

func TestSet_CloneIsIndependent(t *testing.T) {
	set, err := Build(2)
	require.NoError(t, err)

	clone := set.Clone()
	clone[0].Balance = 42
	clone[1].Err = errors.New("boom")
	clone[1].UpdatedAt = time.Now()

	assert.Zero(t, set[0].Balance)
	assert.Nil(t, set[1].Err)
	assert.Equal(t, 1, clone.Failed())
	assert.Equal(t, 0, set.Failed())
	assert.Nil(t, Set(nil).Clone())
}
