package codec

import (
	"crypto/rand"
	"fmt"
	"io"
	"math/big"
	"strings"
)

const base36 = "0123456789abcdefghijklmnopqrstuvwxyz"

// Tokens mints record identifiers and credentials from a random source.
type Tokens struct {
	src io.Reader
}

// NewTokens returns a generator reading from src, or crypto/rand when src is nil.
func NewTokens(src io.Reader) *Tokens {
	if src == nil {
		src = rand.Reader
	}
	return &Tokens{src: src}
}

// ID returns a 9 character base-36 record id.
func (t *Tokens) ID() string {
	return t.base36(9)
}

// Password returns a 6 character upper-case base-36 credential.
func (t *Tokens) Password() string {
	return strings.ToUpper(t.base36(6))
}

// LoginID returns prefix followed by a four digit number in [1000, 9999]. A prefix ending in
// a letter is joined with a dash ("IMP-1234"); one already ending in punctuation or the
// "-ID" convention is joined directly ("BDC-ID1234").
func (t *Tokens) LoginID(prefix string) string {
	n := 1000 + t.intn(9000)
	if prefix == "" || strings.HasSuffix(prefix, "-") || strings.HasSuffix(prefix, "-ID") {
		return fmt.Sprintf("%s%d", prefix, n)
	}
	return fmt.Sprintf("%s-%d", prefix, n)
}

func (t *Tokens) base36(n int) string {
	var b strings.Builder
	b.Grow(n)
	for i := 0; i < n; i++ {
		b.WriteByte(base36[t.intn(len(base36))])
	}
	return b.String()
}

func (t *Tokens) intn(n int) int {
	v, err := rand.Int(t.src, big.NewInt(int64(n)))
	if err != nil {
		// crypto/rand.Reader does not fail on supported platforms; a custom source that runs
		// dry degrades to the lowest value rather than panicking mid-import.
		return 0
	}
	return int(v.Int64())
}
