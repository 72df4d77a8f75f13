package tokenstore

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestFileStorePersistsAcrossOpen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "state", "tokens.json")

	s, err := OpenFile(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := s.Put(ctx, "auth_token", "first"); err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := s.Put(ctx, "auth_token", "abc123"); err != nil {
		t.Fatalf("overwrite: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("expected token file: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Fatalf("expected 0600 token file, got %o", perm)
	}

	reopened, err := OpenFile(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	v, ok, err := reopened.Get(ctx, "auth_token")
	if err != nil || !ok {
		t.Fatalf("expected stored token, ok=%v err=%v", ok, err)
	}
	if v != "abc123" {
		t.Fatalf("expected abc123, got %q", v)
	}
}

func TestOpenFileMissingIsEmpty(t *testing.T) {
	s, err := OpenFile(filepath.Join(t.TempDir(), "missing.json"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if _, ok, _ := s.Get(context.Background(), "auth_token"); ok {
		t.Fatalf("expected no token in fresh store")
	}
}

func TestOpenFileCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tokens.json")
	if err := os.WriteFile(path, []byte("{not json"), 0600); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := OpenFile(path); err == nil {
		t.Fatalf("expected error for corrupt token file")
	}
}

func TestMemoryStoreDoesNotTouchDisk(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	s := NewMemory()
	if err := s.Put(context.Background(), "auth_token", "abc"); err != nil {
		t.Fatalf("put: %v", err)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("readdir: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected no files written, got %d", len(entries))
	}
}

func TestInspectJWT(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	claims := jwt.RegisteredClaims{
		Subject:   "42",
		Issuer:    "backend",
		IssuedAt:  jwt.NewNumericDate(now.Add(-time.Hour)),
		ExpiresAt: jwt.NewNumericDate(now.Add(-time.Minute)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	info := Inspect(token, now)
	if !info.JWT {
		t.Fatalf("expected token to be recognised as JWT")
	}
	if info.Subject != "42" || info.Issuer != "backend" {
		t.Fatalf("unexpected claims: %+v", info)
	}
	if info.ExpiresAt == nil || !info.Expired {
		t.Fatalf("expected expired token, got %+v", info)
	}
}

func TestInspectOpaqueToken(t *testing.T) {
	info := Inspect("1|plain-sanctum-token", time.Now())
	if info.JWT {
		t.Fatalf("expected opaque token not to parse as JWT")
	}
}
