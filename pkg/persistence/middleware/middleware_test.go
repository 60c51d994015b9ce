package middleware

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stewardhq/steward/pkg/adapters/memory"
	"github.com/stewardhq/steward/pkg/domain"
)

func TestRedact_MasksFreeTextOnSave(t *testing.T) {
	store := memory.NewStore()
	wrapped := NewRedactMiddleware([]string{`\b\d{13,19}\b`})(store)
	ctx := context.Background()

	state := domain.NewTurnState("s1", "pay with 4111111111111111 please", "Card number: 4111111111111111")
	state.Entities = map[string]string{"card": "4111111111111111"}
	state.PendingConfirmation = &domain.PendingAction{
		Action: domain.Action{Type: domain.ActionTypeText, Text: "4111111111111111"},
	}
	if err := wrapped.Save(ctx, "s1", state); err != nil {
		t.Fatalf("Save: %v", err)
	}

	// The caller's copy stays untouched.
	if !strings.Contains(state.UserText, "4111111111111111") {
		t.Errorf("caller state was mutated: %q", state.UserText)
	}

	stored, err := store.Load(ctx, "s1")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	for name, text := range map[string]string{
		"user text":      stored.UserText,
		"screen context": stored.ScreenContext,
		"entity":         stored.Entities["card"],
		"pending text":   stored.PendingConfirmation.Action.Text,
	} {
		if strings.Contains(text, "4111111111111111") {
			t.Errorf("%s not masked: %q", name, text)
		}
		if !strings.Contains(text, Mask) {
			t.Errorf("%s missing mask: %q", name, text)
		}
	}
}

func TestRedact_LoadIsPassThrough(t *testing.T) {
	store := memory.NewStore()
	wrapped := NewRedactMiddleware([]string{`secret`})(store)
	ctx := context.Background()

	if err := store.Save(ctx, "s1", domain.NewTurnState("s1", "secret plans", "")); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := wrapped.Load(ctx, "s1")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.UserText != "secret plans" {
		t.Errorf("load must not rewrite stored text, got %q", got.UserText)
	}
}

func testKey(b byte) []byte {
	return bytes.Repeat([]byte{b}, 32)
}

func TestEncryption_RoundTrip(t *testing.T) {
	store := memory.NewStore()
	wrapped := NewEncryptionMiddleware(EncryptionConfig{ActiveKey: testKey('a')})(store)
	ctx := context.Background()

	state := domain.NewTurnState("s1", "wake me at 7", "alarm app")
	state.Response = "Alarm set for 7:00"
	if err := wrapped.Save(ctx, "s1", state); err != nil {
		t.Fatalf("Save: %v", err)
	}

	// The backing store must only see the opaque envelope.
	raw, err := store.Load(ctx, "s1")
	if err != nil {
		t.Fatalf("raw Load: %v", err)
	}
	if raw.UserText != "" || raw.Response != "" {
		t.Errorf("plaintext leaked to store: %+v", raw)
	}
	if _, ok := raw.Entities["__encrypted__"]; !ok {
		t.Fatalf("envelope missing: %+v", raw.Entities)
	}

	got, err := wrapped.Load(ctx, "s1")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.UserText != state.UserText || got.Response != state.Response {
		t.Errorf("round trip = %+v", got)
	}
}

func TestEncryption_WrongKeyFails(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()

	writer := NewEncryptionMiddleware(EncryptionConfig{ActiveKey: testKey('a')})(store)
	if err := writer.Save(ctx, "s1", domain.NewTurnState("s1", "hello", "")); err != nil {
		t.Fatalf("Save: %v", err)
	}

	reader := NewEncryptionMiddleware(EncryptionConfig{ActiveKey: testKey('b')})(store)
	if _, err := reader.Load(ctx, "s1"); err == nil {
		t.Fatal("load with the wrong key must fail")
	}
}

func TestEncryption_FallbackKeyRotation(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()

	old := NewEncryptionMiddleware(EncryptionConfig{ActiveKey: testKey('a')})(store)
	if err := old.Save(ctx, "s1", domain.NewTurnState("s1", "written under the old key", "")); err != nil {
		t.Fatalf("Save: %v", err)
	}

	rotated := NewEncryptionMiddleware(EncryptionConfig{
		ActiveKey:    testKey('b'),
		FallbackKeys: [][]byte{testKey('a')},
	})(store)
	got, err := rotated.Load(ctx, "s1")
	if err != nil {
		t.Fatalf("Load after rotation: %v", err)
	}
	if got.UserText != "written under the old key" {
		t.Errorf("got %q", got.UserText)
	}
}

func TestEncryption_PlainStateRejected(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()

	if err := store.Save(ctx, "s1", domain.NewTurnState("s1", "never encrypted", "")); err != nil {
		t.Fatalf("Save: %v", err)
	}
	wrapped := NewEncryptionMiddleware(EncryptionConfig{ActiveKey: testKey('a')})(store)
	if _, err := wrapped.Load(ctx, "s1"); err == nil {
		t.Fatal("plain state in an encrypted store must be rejected")
	}
}

func TestEncryption_BadKeyLengthPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("short key must panic at construction")
		}
	}()
	NewEncryptionMiddleware(EncryptionConfig{ActiveKey: []byte("short")})
}
