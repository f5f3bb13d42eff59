package keys

import (
	"bytes"
	"encoding/hex"
	"testing"

	"github.com/aead/chacha20/chacha"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpandSeed(t *testing.T) {
	key := expandSeed(1)
	assert.Equal(t, "80eb1d729699295f988220494ab3aed88d9905f1f753e291e0dc0c53ea9bef60", hex.EncodeToString(key[:]))

	key = expandSeed(0)
	assert.Equal(t, "eca2e6fbcdf0b371b5015cb8ef4fed51b6f24ad157e3ded2750b00221802c95d", hex.EncodeToString(key[:]))
}

func TestDeriveKeyPair_Deterministic(t *testing.T) {
	for seed := uint64(0); seed < 32; seed++ {
		a, err := DeriveKeyPair(seed)
		require.NoError(t, err)
		b, err := DeriveKeyPair(seed)
		require.NoError(t, err)

		assert.Equal(t, crypto.FromECDSA(a.PrivateKey), crypto.FromECDSA(b.PrivateKey), "seed %d", seed)
		assert.Equal(t, SerializeUncompressed(a.PublicKey), SerializeUncompressed(b.PublicKey), "seed %d", seed)
	}
}

func TestDeriveKeyPair_GoldenSeedOne(t *testing.T) {
	kp, err := DeriveKeyPair(1)
	require.NoError(t, err)

	assert.Equal(t, "d6f156ace704e32bce8eb0af45990ad037270eeee2330e481ce549bd40decc69",
		hex.EncodeToString(crypto.FromECDSA(kp.PrivateKey)))
	assert.Equal(t, common.HexToAddress("0xbdce006564ba64e64d46a6e84afb1ca3687778c8"), AddressOf(kp.PublicKey))
}

func TestDeriveKeyPair_SeedZeroIsValid(t *testing.T) {
	kp, err := DeriveKeyPair(0)
	require.NoError(t, err)
	assert.Equal(t, common.HexToAddress("0x3bc7dd70233bd894a2b6671430f3cceaef4d97c4"), AddressOf(kp.PublicKey))
}

func TestDeriveKeyPair_NoCollisions(t *testing.T) {
	seen := make(map[common.Address]uint64)
	for seed := uint64(0); seed < 256; seed++ {
		kp, err := DeriveKeyPair(seed)
		require.NoError(t, err)
		addr := AddressOf(kp.PublicKey)
		prev, dup := seen[addr]
		require.False(t, dup, "seed %d collides with seed %d", seed, prev)
		seen[addr] = seed
	}
}

func TestDeriveKeyPair_RejectsOutOfRangeDraw(t *testing.T) {
	// curve order N, then zero, then one
	n, _ := hex.DecodeString("fffffffffffffffffffffffffffffffebaaedce6af48a03bbfd25e8cd0364141")
	one := make([]byte, 32)
	one[31] = 1
	stream := bytes.NewReader(append(append(n, make([]byte, 32)...), one...))

	kp, err := deriveFrom(stream)
	require.NoError(t, err)
	assert.Equal(t, one, crypto.FromECDSA(kp.PrivateKey))
}

func TestDeriveKeyPair_ExhaustedStream(t *testing.T) {
	_, err := deriveFrom(bytes.NewReader(make([]byte, 10)))
	require.Error(t, err)

	_, err = deriveFrom(bytes.NewReader(make([]byte, 32*maxDraws)))
	assert.ErrorIs(t, err, ErrNoValidScalar)
}

func TestAddressOf_PrivateKeyOne(t *testing.T) {
	priv, err := crypto.HexToECDSA("0000000000000000000000000000000000000000000000000000000000000001")
	require.NoError(t, err)

	assert.Equal(t, common.HexToAddress("0x7E5F4552091A69125d5DfCb7b8C2659029395Bdf"), AddressOf(&priv.PublicKey))
	assert.Equal(t, crypto.PubkeyToAddress(priv.PublicKey), AddressOf(&priv.PublicKey))
}

func TestSerializeUncompressed_Marker(t *testing.T) {
	for seed := uint64(1); seed <= 9; seed++ {
		kp, err := DeriveKeyPair(seed)
		require.NoError(t, err)
		raw := SerializeUncompressed(kp.PublicKey)
		require.Len(t, raw, 65)
		assert.Equal(t, byte(UncompressedMarker), raw[0])
		assert.Len(t, AddressOf(kp.PublicKey).Bytes(), common.AddressLength)
	}
}

func TestSeedReader_ContinuesStream(t *testing.T) {
	whole := make([]byte, 96)
	_, err := NewSeedReader(7).Read(whole)
	require.NoError(t, err)

	r := NewSeedReader(7)
	parts := make([]byte, 0, 96)
	for _, n := range []int{5, 59, 32} {
		p := make([]byte, n)
		_, err := r.Read(p)
		require.NoError(t, err)
		parts = append(parts, p...)
	}
	assert.Equal(t, whole, parts)
}

func TestSeedReader_TwelveRounds(t *testing.T) {
	// all-zero key and nonce, 12 rounds
	c, err := chacha.NewCipher(make([]byte, chacha.NonceSize), make([]byte, chacha.KeySize), streamRounds)
	require.NoError(t, err)
	block := make([]byte, 32)
	c.XORKeyStream(block, block)
	assert.Equal(t, "9bf49a6a0755f953811fce125f2683d50429c3bb49e074147e0089a52eae155f", hex.EncodeToString(block))

	// seed 1 accepts its first draw, so the key is the head of the stream
	head := make([]byte, 32)
	_, err = NewSeedReader(1).Read(head)
	require.NoError(t, err)
	assert.Equal(t, "d6f156ace704e32bce8eb0af45990ad037270eeee2330e481ce549bd40decc69", hex.EncodeToString(head))
}
