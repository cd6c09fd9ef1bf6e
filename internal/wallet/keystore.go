package wallet

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"strings"

	"github.com/99designs/keyring"
)

const keychainService = "mdtlockup"

// KeyEnvVar, when set, supplies the private key for every signing wallet.
// Intended for CI and scripted deploys.
const KeyEnvVar = "MDT_PRIVATE_KEY"

// ErrKeyUnavailable is returned when no backend holds the requested key.
var ErrKeyUnavailable = errors.New("private key not available")

// KeyBackend stores private keys by reference.
type KeyBackend interface {
	Store(name, hexKey string) (string, error)
	Retrieve(ref string) (string, error)
	Delete(ref string) error
}

// KeystoreConfig configures OpenKeystore.
type KeystoreConfig struct {
	// Dir holds the encrypted file backend. Empty uses the keyring default.
	Dir string
	// Password prompts for the file backend passphrase.
	Password keyring.PromptFunc
	// FileOnly skips the OS keychains.
	FileOnly bool
	// Session caches unlocked keys. Nil disables caching.
	Session *Session
}

// Keystore wraps OS keychain access with a session cache in front of it.
type Keystore struct {
	ring    keyring.Keyring
	session *Session
}

// OpenKeystore opens the OS keychain, falling back to the encrypted file
// backend when no keychain service is reachable.
func OpenKeystore(cfg KeystoreConfig) (*Keystore, error) {
	kc := keyring.Config{
		ServiceName:              keychainService,
		KeychainTrustApplication: true,
		FileDir:                  cfg.Dir,
		FilePasswordFunc:         cfg.Password,
	}

	switch {
	case cfg.FileOnly:
		kc.AllowedBackends = []keyring.BackendType{keyring.FileBackend}
	case runtime.GOOS == "linux":
		// Headless Linux has no secret service, so the file backend closes the list.
		kc.AllowedBackends = []keyring.BackendType{
			keyring.SecretServiceBackend,
			keyring.KWalletBackend,
			keyring.FileBackend,
		}
	}

	ring, err := keyring.Open(kc)
	if err != nil && !cfg.FileOnly {
		kc.AllowedBackends = []keyring.BackendType{keyring.FileBackend}
		ring, err = keyring.Open(kc)
	}
	if err != nil {
		return nil, fmt.Errorf("opening keystore: %w", err)
	}
	return &Keystore{ring: ring, session: cfg.Session}, nil
}

// Store saves a private key for a wallet name and returns its reference.
func (k *Keystore) Store(name, hexKey string) (string, error) {
	ref := keyRef(name)
	if k.ring == nil {
		return "", ErrKeyUnavailable
	}
	if err := k.ring.Set(keyring.Item{Key: ref, Data: []byte(normaliseHexKey(hexKey))}); err != nil {
		return "", fmt.Errorf("keychain store: %w", err)
	}
	return ref, nil
}

// Retrieve looks in the environment, then the session cache, then the keychain.
func (k *Keystore) Retrieve(ref string) (string, error) {
	if v := os.Getenv(KeyEnvVar); v != "" {
		return normaliseHexKey(v), nil
	}
	if k.session != nil {
		if v, ok := k.session.Get(ref); ok {
			return v, nil
		}
	}
	if k.ring == nil {
		return "", ErrKeyUnavailable
	}
	item, err := k.ring.Get(ref)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrKeyUnavailable, err)
	}
	return normaliseHexKey(string(item.Data)), nil
}

// Delete removes a stored key from the keychain and the session cache.
func (k *Keystore) Delete(ref string) error {
	if k.session != nil {
		if err := k.session.Remove(ref); err != nil {
			return err
		}
	}
	if k.ring == nil {
		return nil
	}
	err := k.ring.Remove(ref)
	if err != nil && !errors.Is(err, keyring.ErrKeyNotFound) && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// Unlock copies a key from the keychain into the session cache.
func (k *Keystore) Unlock(ref string) error {
	if k.session == nil {
		return errors.New("no session cache configured")
	}
	if k.ring == nil {
		return ErrKeyUnavailable
	}
	item, err := k.ring.Get(ref)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrKeyUnavailable, err)
	}
	return k.session.Put(ref, normaliseHexKey(string(item.Data)))
}

// Lock drops every cached key.
func (k *Keystore) Lock() error {
	if k.session == nil {
		return nil
	}
	return k.session.Clear()
}

// Unlocked reports whether ref is currently cached.
func (k *Keystore) Unlocked(ref string) bool {
	if k.session == nil {
		return false
	}
	_, ok := k.session.Get(ref)
	return ok
}

// InMemoryKeystore keeps keys in a map. Used by tests and dry runs.
type InMemoryKeystore struct {
	data map[string]string
}

// NewInMemoryKeystore creates an empty in-memory keystore.
func NewInMemoryKeystore() *InMemoryKeystore {
	return &InMemoryKeystore{data: make(map[string]string)}
}

func (k *InMemoryKeystore) Store(name, hexKey string) (string, error) {
	ref := keyRef(name)
	k.data[ref] = normaliseHexKey(hexKey)
	return ref, nil
}

func (k *InMemoryKeystore) Retrieve(ref string) (string, error) {
	v, ok := k.data[ref]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrKeyUnavailable, ref)
	}
	return v, nil
}

func (k *InMemoryKeystore) Delete(ref string) error {
	delete(k.data, ref)
	return nil
}

func keyRef(name string) string {
	return keychainService + "." + name
}

// normaliseHexKey trims whitespace and a leading 0x/0X.
func normaliseHexKey(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 2 && (s[:2] == "0x" || s[:2] == "0X") {
		return s[2:]
	}
	return s
}
