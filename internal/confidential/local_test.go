package confidential

import (
	"context"
	"errors"
	"testing"
)

func TestLocalServiceRoundtrip(t *testing.T) {
	ctx := context.Background()
	svc := NewLocalService([]byte("test-secret"))
	binding := Binding{Instance: "arena-1", Submitter: "alice"}

	handle, inputProof, err := svc.Encrypt(ctx, 1, binding)
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}
	if err := svc.VerifyInput(ctx, handle, inputProof, binding); err != nil {
		t.Fatalf("VerifyInput: %v", err)
	}

	if err := svc.RequestDecryption(ctx, []string{handle}); err != nil {
		t.Fatalf("RequestDecryption: %v", err)
	}
	values, proof, err := svc.Decrypt(ctx, []string{handle})
	if err != nil {
		t.Fatalf("Decrypt: %v", err)
	}
	if len(values) != 1 || values[0] != 1 {
		t.Fatalf("values = %v, want [1]", values)
	}
	if err := svc.Verify(ctx, []string{handle}, values, proof); err != nil {
		t.Fatalf("Verify: %v", err)
	}
}

func TestLocalServiceInputBinding(t *testing.T) {
	ctx := context.Background()
	svc := NewLocalService([]byte("test-secret"))
	binding := Binding{Instance: "arena-1", Submitter: "alice"}

	handle, inputProof, err := svc.Encrypt(ctx, 0, binding)
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}

	if err := svc.VerifyInput(ctx, handle, inputProof, Binding{Instance: "arena-1", Submitter: "mallory"}); !errors.Is(err, ErrBindingMismatch) {
		t.Fatalf("wrong submitter: err = %v, want ErrBindingMismatch", err)
	}
	if err := svc.VerifyInput(ctx, "no-such-handle", inputProof, binding); !errors.Is(err, ErrUnknownHandle) {
		t.Fatalf("unknown handle: err = %v, want ErrUnknownHandle", err)
	}

	tampered := append([]byte(nil), inputProof...)
	tampered[0] ^= 0xff
	if err := svc.VerifyInput(ctx, handle, tampered, binding); !errors.Is(err, ErrVerifyFailed) {
		t.Fatalf("tampered proof: err = %v, want ErrVerifyFailed", err)
	}
}

func TestLocalServiceDecryptGuards(t *testing.T) {
	ctx := context.Background()
	svc := NewLocalService([]byte("test-secret"))
	binding := Binding{Instance: "arena-1", Submitter: "alice"}

	handle, _, err := svc.Encrypt(ctx, 1, binding)
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}

	if _, _, err := svc.Decrypt(ctx, []string{handle}); !errors.Is(err, ErrNotPending) {
		t.Fatalf("decrypt before request: err = %v, want ErrNotPending", err)
	}
	if err := svc.RequestDecryption(ctx, []string{handle, "bogus"}); !errors.Is(err, ErrUnknownHandle) {
		t.Fatalf("request with unknown handle: err = %v, want ErrUnknownHandle", err)
	}
	// The failed batch must not have marked the known handle.
	if _, _, err := svc.Decrypt(ctx, []string{handle}); !errors.Is(err, ErrNotPending) {
		t.Fatalf("decrypt after failed batch: err = %v, want ErrNotPending", err)
	}

	if err := svc.RequestDecryption(ctx, []string{handle}); err != nil {
		t.Fatalf("RequestDecryption: %v", err)
	}
	// Idempotent re-request.
	if err := svc.RequestDecryption(ctx, []string{handle}); err != nil {
		t.Fatalf("second RequestDecryption: %v", err)
	}
	if _, _, err := svc.Decrypt(ctx, []string{handle}); err != nil {
		t.Fatalf("Decrypt: %v", err)
	}
}

func TestLocalServiceVerifyRejectsMutations(t *testing.T) {
	ctx := context.Background()
	svc := NewLocalService([]byte("test-secret"))
	binding := Binding{Instance: "arena-1", Submitter: "alice"}

	var handles []string
	for i := uint8(0); i < 3; i++ {
		h, _, err := svc.Encrypt(ctx, i%2, binding)
		if err != nil {
			t.Fatalf("Encrypt %d: %v", i, err)
		}
		handles = append(handles, h)
	}
	if err := svc.RequestDecryption(ctx, handles); err != nil {
		t.Fatalf("RequestDecryption: %v", err)
	}
	values, proof, err := svc.Decrypt(ctx, handles)
	if err != nil {
		t.Fatalf("Decrypt: %v", err)
	}

	flipped := append([]uint8(nil), values...)
	flipped[1] ^= 1
	if err := svc.Verify(ctx, handles, flipped, proof); !errors.Is(err, ErrVerifyFailed) {
		t.Fatalf("flipped value: err = %v, want ErrVerifyFailed", err)
	}

	reordered := []string{handles[1], handles[0], handles[2]}
	if err := svc.Verify(ctx, reordered, values, proof); !errors.Is(err, ErrVerifyFailed) {
		t.Fatalf("reordered handles: err = %v, want ErrVerifyFailed", err)
	}

	if err := svc.Verify(ctx, handles, values[:2], proof); !errors.Is(err, ErrVerifyFailed) {
		t.Fatalf("length mismatch: err = %v, want ErrVerifyFailed", err)
	}

	other := NewLocalService([]byte("different-secret"))
	if err := other.Verify(ctx, handles, values, proof); !errors.Is(err, ErrVerifyFailed) {
		t.Fatalf("foreign secret: err = %v, want ErrVerifyFailed", err)
	}
}
