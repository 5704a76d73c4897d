package confidential

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/binary"
	"sync"

	"github.com/google/uuid"
)

type entry struct {
	choice  uint8
	binding Binding
	pending bool
}

// LocalService is an in-process stand-in for the external decryption gateway.
// Handles are opaque uuids; proofs are HMAC-SHA256 tags keyed with a secret
// only the service holds, over a canonical encoding of the handle set and the
// clear values. Good enough for development, the keeper, and deterministic
// tests; not a substitute for the production FHE backend.
type LocalService struct {
	mu      sync.Mutex
	secret  []byte
	entries map[string]*entry
}

func NewLocalService(secret []byte) *LocalService {
	return &LocalService{
		secret:  append([]byte(nil), secret...),
		entries: map[string]*entry{},
	}
}

func (s *LocalService) Encrypt(_ context.Context, choice uint8, binding Binding) (string, []byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	handle := uuid.NewString()
	s.entries[handle] = &entry{choice: choice, binding: binding}
	return handle, s.inputTag(handle, binding), nil
}

func (s *LocalService) VerifyInput(_ context.Context, handle string, inputProof []byte, binding Binding) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[handle]
	if !ok {
		return ErrUnknownHandle
	}
	if e.binding != binding {
		return ErrBindingMismatch
	}
	if !hmac.Equal(inputProof, s.inputTag(handle, binding)) {
		return ErrVerifyFailed
	}
	return nil
}

func (s *LocalService) RequestDecryption(_ context.Context, handles []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, h := range handles {
		if _, ok := s.entries[h]; !ok {
			return ErrUnknownHandle
		}
	}
	for _, h := range handles {
		s.entries[h].pending = true
	}
	return nil
}

func (s *LocalService) Decrypt(_ context.Context, handles []string) ([]uint8, []byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	values := make([]uint8, 0, len(handles))
	for _, h := range handles {
		e, ok := s.entries[h]
		if !ok {
			return nil, nil, ErrUnknownHandle
		}
		if !e.pending {
			return nil, nil, ErrNotPending
		}
		values = append(values, e.choice)
	}
	return values, s.revealTag(handles, values), nil
}

func (s *LocalService) Verify(_ context.Context, handles []string, clearValues []uint8, proof []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(handles) != len(clearValues) {
		return ErrVerifyFailed
	}
	if !hmac.Equal(proof, s.revealTag(handles, clearValues)) {
		return ErrVerifyFailed
	}
	return nil
}

func (s *LocalService) inputTag(handle string, binding Binding) []byte {
	mac := hmac.New(sha256.New, s.secret)
	writeString(mac, "input")
	writeString(mac, handle)
	writeString(mac, binding.Instance)
	writeString(mac, binding.Submitter)
	return mac.Sum(nil)
}

func (s *LocalService) revealTag(handles []string, clearValues []uint8) []byte {
	mac := hmac.New(sha256.New, s.secret)
	writeString(mac, "reveal")
	for i, h := range handles {
		writeString(mac, h)
		mac.Write([]byte{clearValues[i]})
	}
	return mac.Sum(nil)
}

func writeString(mac interface{ Write([]byte) (int, error) }, s string) {
	var n [4]byte
	binary.BigEndian.PutUint32(n[:], uint32(len(s)))
	mac.Write(n[:])
	mac.Write([]byte(s))
}
