package keys

import (
	"encoding/binary"
	"io"
	"math/bits"

	"github.com/aead/chacha20/chacha"
)

// streamRounds matches the ChaCha12 generator behind StdRng, so seeds map to
// the same addresses as other tools built on it.
const streamRounds = 12

// PCG32 constants used to spread a 64-bit seed over a 256-bit key.
const (
	pcgMultiplier = 6364136223846793005
	pcgIncrement  = 11634580896526143419
)

// expandSeed turns a 64-bit seed into a 32-byte stream key.
func expandSeed(seed uint64) [chacha.KeySize]byte {
	var key [chacha.KeySize]byte
	state := seed
	for i := 0; i < len(key); i += 4 {
		state = state*pcgMultiplier + pcgIncrement
		xorshifted := uint32(((state >> 18) ^ state) >> 27)
		rot := int(state >> 59)
		binary.LittleEndian.PutUint32(key[i:], bits.RotateLeft32(xorshifted, -rot))
	}
	return key
}

type seedReader struct {
	stream *chacha.Cipher
}

// NewSeedReader returns an endless deterministic byte stream fixed by seed.
func NewSeedReader(seed uint64) io.Reader {
	key := expandSeed(seed)
	stream, err := chacha.NewCipher(make([]byte, chacha.NonceSize), key[:], streamRounds)
	if err != nil {
		// key, nonce and rounds are constants
		panic(err)
	}
	return &seedReader{stream: stream}
}

func (r *seedReader) Read(p []byte) (int, error) {
	clear(p)
	r.stream.XORKeyStream(p, p)
	return len(p), nil
}
