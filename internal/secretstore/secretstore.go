// Package secretstore implements the encrypted key/value secret store
// (spec §4.4, C4), grounded on
// original_source/src/helpers/security_store.rs.
package secretstore

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Error kinds, matching the taxonomy the Rust SecurityStoreError
// enumerates.
var (
	ErrStoreLocked    = errors.New("secretstore: store is not initialized")
	ErrKeyNotFound    = errors.New("secretstore: key not found")
	ErrInvalidKey     = errors.New("secretstore: invalid encryption key")
	ErrEncryption     = errors.New("secretstore: encryption failed")
	ErrDecryption     = errors.New("secretstore: decryption failed")
)

type document struct {
	Values      map[string]string `json:"values"`
	Modified    map[string]int64  `json:"modified"`
	Version     int               `json:"version"`
	LastUpdated int64             `json:"last_updated"`
}

func emptyDocument() document {
	return document{
		Values:   make(map[string]string),
		Modified: make(map[string]int64),
		Version:  1,
	}
}

// Store is a process-wide encrypted key/value store. The zero value is
// not usable; use New. Matches the Rust SECURITY_STORE singleton,
// offered here as an explicit instance rather than a package global.
// The package has no package-level helpers or global instance; callers
// share the one Store they build with New.
type Store struct {
	mu          sync.Mutex
	initialized bool
	filePath    string
	gcm         cipher.AEAD
	data        document
	now         func() time.Time
}

// New returns an uninitialized Store. Every operation but Initialize
// fails with ErrStoreLocked until Initialize succeeds.
func New() *Store {
	return &Store{data: emptyDocument(), now: time.Now}
}

// deriveKey pads/repeats the input key string into exactly 32 bytes,
// matching original_source's non-KDF derivation exactly (spec §4.4).
func deriveKey(encryptionKey string) [32]byte {
	var key [32]byte
	input := []byte(encryptionKey)
	for i := range key {
		if i < len(input) {
			key[i] = input[i]
		} else {
			key[i] = input[i%len(input)]
		}
	}
	return key
}

// Initialize sets the encryption key and, if filePath is non-empty,
// the backing file; it then attempts to load existing data. A load
// failure degrades to an empty in-memory store rather than failing
// Initialize (matching the original's "mark initialized before load"
// ordering).
func (s *Store) Initialize(encryptionKey string, filePath string) error {
	if encryptionKey == "" {
		return fmt.Errorf("%w: empty encryption key", ErrInvalidKey)
	}

	block, err := aes.NewCipher(deriveKeyBytes(encryptionKey))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrEncryption, err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrEncryption, err)
	}

	s.mu.Lock()
	s.gcm = gcm
	if filePath != "" {
		if dir := filepath.Dir(filePath); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				s.mu.Unlock()
				return err
			}
		}
		s.filePath = filePath
	}
	s.initialized = true
	path := s.filePath
	s.mu.Unlock()

	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); err == nil {
		_ = s.loadFromFile()
	}
	return nil
}

func deriveKeyBytes(encryptionKey string) []byte {
	k := deriveKey(encryptionKey)
	return k[:]
}

func (s *Store) ensureInitialized() error {
	if !s.initialized {
		return ErrStoreLocked
	}
	return nil
}

func (s *Store) loadFromFile() error {
	raw, err := os.ReadFile(s.filePath)
	if err != nil {
		return err
	}
	var doc document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return err
	}
	if doc.Values == nil {
		doc.Values = make(map[string]string)
	}
	if doc.Modified == nil {
		doc.Modified = make(map[string]int64)
	}
	s.data = doc
	return nil
}

func (s *Store) saveToFileLocked() error {
	s.data.LastUpdated = s.now().Unix()
	raw, err := json.MarshalIndent(s.data, "", "  ")
	if err != nil {
		return err
	}
	tmp := s.filePath + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, s.filePath)
}

func (s *Store) encrypt(value string) (string, error) {
	nonce := make([]byte, s.gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("%w: %v", ErrEncryption, err)
	}
	ciphertext := s.gcm.Seal(nil, nonce, []byte(value), nil)
	combined := append(nonce, ciphertext...)
	return base64.StdEncoding.EncodeToString(combined), nil
}

func (s *Store) decrypt(encoded string) (string, error) {
	combined, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", fmt.Errorf("%w: base64 decode: %v", ErrDecryption, err)
	}
	nonceSize := s.gcm.NonceSize()
	if len(combined) < nonceSize {
		return "", fmt.Errorf("%w: truncated ciphertext", ErrDecryption)
	}
	nonce, ciphertext := combined[:nonceSize], combined[nonceSize:]
	plaintext, err := s.gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrDecryption, err)
	}
	return string(plaintext), nil
}

// Set encrypts and stores value under key, then persists the file.
func (s *Store) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureInitialized(); err != nil {
		return err
	}
	encrypted, err := s.encrypt(value)
	if err != nil {
		return err
	}
	now := s.now().Unix()
	s.data.Values[key] = encrypted
	s.data.Modified[key] = now
	if s.filePath == "" {
		return nil
	}
	return s.saveToFileLocked()
}

// Get decrypts and returns the value for key.
func (s *Store) Get(key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureInitialized(); err != nil {
		return "", err
	}
	enc, ok := s.data.Values[key]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrKeyNotFound, key)
	}
	return s.decrypt(enc)
}

// Contains reports whether key exists.
func (s *Store) Contains(key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureInitialized(); err != nil {
		return false, err
	}
	_, ok := s.data.Values[key]
	return ok, nil
}

// Remove deletes key, reporting whether it existed.
func (s *Store) Remove(key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureInitialized(); err != nil {
		return false, err
	}
	_, existed := s.data.Values[key]
	if !existed {
		return false, nil
	}
	delete(s.data.Values, key)
	delete(s.data.Modified, key)
	if s.filePath == "" {
		return true, nil
	}
	return true, s.saveToFileLocked()
}

// ListKeys returns all stored keys, in no particular order.
func (s *Store) ListKeys() ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureInitialized(); err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(s.data.Values))
	for k := range s.data.Values {
		keys = append(keys, k)
	}
	return keys, nil
}

// LastModified returns the last-modified unix timestamp for key, if any.
func (s *Store) LastModified(key string) (int64, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureInitialized(); err != nil {
		return 0, false, err
	}
	ts, ok := s.data.Modified[key]
	return ts, ok, nil
}

// ChangeEncryptionKey decrypts every value with the current key,
// installs newKey, and re-encrypts everything before persisting.
func (s *Store) ChangeEncryptionKey(newKey string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureInitialized(); err != nil {
		return err
	}
	if newKey == "" {
		return fmt.Errorf("%w: empty encryption key", ErrInvalidKey)
	}

	plain := make(map[string]string, len(s.data.Values))
	for k, enc := range s.data.Values {
		v, err := s.decrypt(enc)
		if err != nil {
			return err
		}
		plain[k] = v
	}

	block, err := aes.NewCipher(deriveKeyBytes(newKey))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrEncryption, err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrEncryption, err)
	}
	s.gcm = gcm

	for k, v := range plain {
		enc, err := s.encrypt(v)
		if err != nil {
			return err
		}
		s.data.Values[k] = enc
	}

	if s.filePath == "" {
		return nil
	}
	return s.saveToFileLocked()
}

// Clear empties the store.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureInitialized(); err != nil {
		return err
	}
	s.data.Values = make(map[string]string)
	s.data.Modified = make(map[string]int64)
	if s.filePath == "" {
		return nil
	}
	return s.saveToFileLocked()
}
