// Package confidential abstracts the encrypt/decrypt/verify capability that
// keeps predictions hidden until a verifiable reveal. The engine only ever
// talks to the Service interface; the homomorphic-encryption mechanism behind
// it is not this repository's concern.
package confidential

import (
	"context"
	"errors"
)

var (
	ErrUnknownHandle   = errors.New("unknown handle")
	ErrNotPending      = errors.New("handle not marked for reveal")
	ErrVerifyFailed    = errors.New("proof verification failed")
	ErrBindingMismatch = errors.New("handle bound to a different submitter")
)

// Binding ties a ciphertext to the consuming contract instance and the
// submitting participant, so a handle cannot be replayed elsewhere.
type Binding struct {
	Instance  string
	Submitter string
}

// Service is the Confidential Value Service consumed by the lifecycle engine.
//
// Encrypt runs on the entry path (client side in production; tests and the
// local backend use it directly). RequestDecryption is an idempotent "mark for
// reveal". Decrypt produces cleartext values plus an unforgeable proof for a
// batch of handles; Verify checks that proof against the exact handle set.
type Service interface {
	Encrypt(ctx context.Context, choice uint8, binding Binding) (handle string, inputProof []byte, err error)
	VerifyInput(ctx context.Context, handle string, inputProof []byte, binding Binding) error
	RequestDecryption(ctx context.Context, handles []string) error
	Decrypt(ctx context.Context, handles []string) (clearValues []uint8, proof []byte, err error)
	Verify(ctx context.Context, handles []string, clearValues []uint8, proof []byte) error
}
