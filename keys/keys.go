package keys

import (
	"crypto/ecdsa"
	"errors"
	"fmt"
	"io"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"golang.org/x/crypto/sha3"
)

// UncompressedMarker is the leading byte of an uncompressed public key.
const UncompressedMarker = 0x04

// maxDraws bounds the rejection loop. A single rejection already has
// probability below 2^-127.
const maxDraws = 16

// ErrNoValidScalar means the seeded stream never produced a usable private key.
var ErrNoValidScalar = errors.New("no valid secp256k1 scalar drawn from seed")

// KeyPair is a secp256k1 key pair derived from a seed
type KeyPair struct {
	PrivateKey *ecdsa.PrivateKey
	PublicKey  *ecdsa.PublicKey
}

// DeriveKeyPair deterministically derives a key pair from seed. The same seed
// always yields the same pair.
func DeriveKeyPair(seed uint64) (KeyPair, error) {
	return deriveFrom(NewSeedReader(seed))
}

func deriveFrom(r io.Reader) (KeyPair, error) {
	var buf [32]byte
	for draw := 0; draw < maxDraws; draw++ {
		if _, err := io.ReadFull(r, buf[:]); err != nil {
			return KeyPair{}, fmt.Errorf("failed to read seed stream: %w", err)
		}

		var scalar secp256k1.ModNScalar
		if overflow := scalar.SetByteSlice(buf[:]); overflow || scalar.IsZero() {
			continue
		}

		priv, err := crypto.ToECDSA(buf[:])
		if err != nil {
			return KeyPair{}, fmt.Errorf("failed to build private key: %w", err)
		}
		return KeyPair{PrivateKey: priv, PublicKey: &priv.PublicKey}, nil
	}
	return KeyPair{}, ErrNoValidScalar
}

// SerializeUncompressed encodes pub as marker || X || Y (65 bytes)
func SerializeUncompressed(pub *ecdsa.PublicKey) []byte {
	return crypto.FromECDSAPub(pub)
}

// AddressOf returns the last 20 bytes of the Keccak-256 hash of the
// uncompressed public key without its marker byte.
func AddressOf(pub *ecdsa.PublicKey) common.Address {
	raw := SerializeUncompressed(pub)
	h := sha3.NewLegacyKeccak256()
	h.Write(raw[1:])
	return common.BytesToAddress(h.Sum(nil)[12:])
}
