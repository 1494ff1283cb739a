package csp

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"

	"github.com/tehkyle/cspx/internal/log"
)

type contextKey struct{}

// state is created by Prepare and owned by a single request. Phase 1 and
// phase 2 run sequentially with body production in between, so no locking.
type state struct {
	nonce     string
	modes     [2]InlineMode
	hashes    [2][]string
	finalized bool
}

func fromContext(ctx context.Context) (*state, bool) {
	st, ok := ctx.Value(contextKey{}).(*state)
	return st, ok
}

func (st *state) nonceValue() string {
	if st.nonce == "" {
		buf := make([]byte, 16)
		if _, err := io.ReadFull(rand.Reader, buf); err != nil {
			log.New().WithError(err).Fatal("csp: couldn't read from crypto/rand")
		}
		st.nonce = hex.EncodeToString(buf)
	}
	return st.nonce
}

// NonceValue returns the request's shared nonce, generating it on first use.
func NonceValue(ctx context.Context) (string, error) {
	st, ok := fromContext(ctx)
	if !ok {
		return "", errors.New("couldn't get csp state from context, make sure csp.Middleware has run")
	}
	return st.nonceValue(), nil
}

// Mode reports how inline content for d may execute in this request. The
// rendering layer consults this to decide between stamping a nonce attribute,
// recording a hash, or dropping the block.
func Mode(ctx context.Context, d Directive) InlineMode {
	st, ok := fromContext(ctx)
	if !ok {
		return Refuse
	}
	return st.modes[d]
}

// AppendHash records the base64 sha256 digest of an inline block emitted into
// the body. Valid only between Prepare and Finalize, and only for a directive
// whose mode is Hash.
func AppendHash(ctx context.Context, d Directive, digest string) error {
	st, ok := fromContext(ctx)
	if !ok {
		return errors.New("couldn't get csp state from context, make sure csp.Middleware has run")
	}
	if st.finalized {
		return fmt.Errorf("csp: %s already finalized", d)
	}
	if st.modes[d] != Hash {
		return fmt.Errorf("csp: %s doesn't use hash sources", d)
	}
	st.hashes[d] = append(st.hashes[d], digest)
	return nil
}
