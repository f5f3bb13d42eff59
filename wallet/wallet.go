package wallet

import (
	"crypto/ecdsa"
	"fmt"
	"time"

	"github.com/airchains-network/wallet-viewer/keys"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// Account is one derived address and its last known balance
type Account struct {
	Index      int
	Seed       uint64
	Address    common.Address
	Balance    uint64            // wei, lower 64 bits
	PrivateKey *ecdsa.PrivateKey // nil unless built WithPrivateKeys
	Err        error             // error from the last refresh, nil if it succeeded
	UpdatedAt  time.Time         // zero until the first successful refresh
}

// Fetched reports whether the balance has ever been read from the node.
func (a Account) Fetched() bool {
	return !a.UpdatedAt.IsZero()
}

// HexAddress returns the address as lowercase 0x-prefixed hex.
func (a Account) HexAddress() string {
	return hexutil.Encode(a.Address.Bytes())
}

// Set is the ordered, index-stable list of accounts. Index i holds seed i+1.
type Set []Account

type buildOptions struct {
	keepPrivateKeys bool
}

// Option configures Build
type Option func(*buildOptions)

// WithPrivateKeys keeps each account's private key instead of discarding it.
func WithPrivateKeys() Option {
	return func(o *buildOptions) { o.keepPrivateKeys = true }
}

// Build derives count accounts from seeds 1..count with zero balances.
// Seed 0 is never used.
func Build(count uint, opts ...Option) (Set, error) {
	var o buildOptions
	for _, opt := range opts {
		opt(&o)
	}

	set := make(Set, 0, count)
	for seed := uint64(1); seed <= uint64(count); seed++ {
		kp, err := keys.DeriveKeyPair(seed)
		if err != nil {
			return nil, fmt.Errorf("failed to derive key pair for seed %d: %w", seed, err)
		}
		acc := Account{
			Index:   len(set),
			Seed:    seed,
			Address: keys.AddressOf(kp.PublicKey),
		}
		if o.keepPrivateKeys {
			acc.PrivateKey = kp.PrivateKey
		}
		set = append(set, acc)
	}
	return set, nil
}

// Clone returns a copy that can be refreshed without touching s.
func (s Set) Clone() Set {
	if s == nil {
		return nil
	}
	out := make(Set, len(s))
	copy(out, s)
	return out
}

// Failed counts accounts whose last refresh failed.
func (s Set) Failed() int {
	n := 0
	for _, acc := range s {
		if acc.Err != nil {
			n++
		}
	}
	return n
}
