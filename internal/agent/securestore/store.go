package securestore

import (
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/crypto/nacl/secretbox"
)

// ErrCorrupted is returned when the persisted session cannot be decrypted or
// parsed. Callers should clear the store and proceed unauthenticated.
var ErrCorrupted = errors.New("persisted session is corrupted")

// KeySize is the secretbox key length in bytes.
const KeySize = 32

const nonceSize = 24

// Record is the credential bundle persisted between runs.
type Record struct {
	Token        string    `json:"token"`
	RefreshToken string    `json:"refresh_token"`
	UserID       string    `json:"user_id"`
	Role         string    `json:"role"`
	Email        string    `json:"email"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// Store encrypts the session record at rest with nacl/secretbox. The file
// layout is a 24-byte random nonce followed by the sealed ciphertext.
type Store struct {
	path string
	key  [KeySize]byte
}

// New returns a Store writing to path. key must be exactly 32 bytes.
func New(path string, key []byte) (*Store, error) {
	if len(key) != KeySize {
		return nil, fmt.Errorf("secure store key must be %d bytes, got %d", KeySize, len(key))
	}
	s := &Store{path: path}
	copy(s.key[:], key)
	return s, nil
}

// IsAvailable reports whether the store's directory exists and is usable.
func (s *Store) IsAvailable() bool {
	info, err := os.Stat(filepath.Dir(s.path))
	return err == nil && info.IsDir()
}

// Get reads and decrypts the persisted record. Returns (nil, nil) when no
// session is persisted, and ErrCorrupted when the file cannot be opened.
func (s *Store) Get() (*Record, error) {
	raw, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if len(raw) <= nonceSize {
		return nil, ErrCorrupted
	}
	var nonce [nonceSize]byte
	copy(nonce[:], raw[:nonceSize])
	plain, ok := secretbox.Open(nil, raw[nonceSize:], &nonce, &s.key)
	if !ok {
		return nil, ErrCorrupted
	}
	var rec Record
	if err := json.Unmarshal(plain, &rec); err != nil {
		return nil, ErrCorrupted
	}
	if rec.Token == "" {
		return nil, ErrCorrupted
	}
	return &rec, nil
}

// Put encrypts and persists the record, replacing any previous one. The write
// goes through a temp file and rename so a crash never leaves a partial file.
func (s *Store) Put(rec *Record) error {
	if rec == nil || rec.Token == "" {
		return errors.New("refusing to persist a session without a token")
	}
	plain, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	var nonce [nonceSize]byte
	if _, err := io.ReadFull(rand.Reader, nonce[:]); err != nil {
		return err
	}
	sealed := secretbox.Seal(nonce[:], plain, &nonce, &s.key)

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, sealed, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}

// Clear removes the persisted record. Removing an absent record is not an error.
func (s *Store) Clear() error {
	err := os.Remove(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}
