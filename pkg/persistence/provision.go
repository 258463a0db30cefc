package persistence

import (
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fxamacker/cbor/v2"
	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/hkdf"

	"github.com/mash-protocol/meshprov/pkg/version"
)

// keyInfo is the HKDF info string for the provision sealing key.
const keyInfo = "meshprov provision seal v1"

// Provision store errors.
var (
	ErrSealed      = errors.New("provision is sealed and no device secret is configured")
	ErrUnseal      = errors.New("provision could not be unsealed")
	ErrEmptySecret = errors.New("device secret is empty")
)

// Provision is a persisted operational dataset.
type Provision struct {
	// Dataset is the operational dataset blob.
	Dataset []byte

	// SavedAt is when the provision was written.
	SavedAt time.Time
}

// envelope is the on-disk format.
type envelope struct {
	Version string    `cbor:"1,keyasint"`
	SavedAt time.Time `cbor:"2,keyasint"`
	Sealed  bool      `cbor:"3,keyasint,omitempty"`
	Nonce   []byte    `cbor:"4,keyasint,omitempty"`
	Payload []byte    `cbor:"5,keyasint"`
}

var (
	encMode cbor.EncMode
	decMode cbor.DecMode
)

func init() {
	var err error

	encMode, err = cbor.EncOptions{
		Sort:          cbor.SortCanonical,
		IndefLength:   cbor.IndefLengthForbidden,
		NilContainers: cbor.NilContainerAsNull,
		Time:          cbor.TimeRFC3339Nano,
	}.EncMode()
	if err != nil {
		panic(fmt.Sprintf("failed to create provision CBOR encoder mode: %v", err))
	}

	decMode, err = cbor.DecOptions{
		DupMapKey:         cbor.DupMapKeyEnforcedAPF,
		IndefLength:       cbor.IndefLengthForbidden,
		ExtraReturnErrors: cbor.ExtraDecErrorNone,
	}.DecMode()
	if err != nil {
		panic(fmt.Sprintf("failed to create provision CBOR decoder mode: %v", err))
	}
}

// ProvisionStore manages the provision file.
type ProvisionStore struct {
	mu   sync.Mutex
	path string
	aead cipher.AEAD
}

// NewProvisionStore creates a store writing the dataset in the clear.
func NewProvisionStore(path string) *ProvisionStore {
	return &ProvisionStore{path: path}
}

// NewSealedProvisionStore creates a store that seals the dataset with a key
// derived from secret.
func NewSealedProvisionStore(path string, secret []byte) (*ProvisionStore, error) {
	if len(secret) == 0 {
		return nil, ErrEmptySecret
	}

	key := make([]byte, chacha20poly1305.KeySize)
	if _, err := io.ReadFull(hkdf.New(sha256.New, secret, nil, []byte(keyInfo)), key); err != nil {
		return nil, fmt.Errorf("derive provision key: %w", err)
	}
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, fmt.Errorf("create provision cipher: %w", err)
	}
	return &ProvisionStore{path: path, aead: aead}, nil
}

// Path returns the provision file path.
func (s *ProvisionStore) Path() string {
	return s.path
}

// Sealed reports whether the store seals datasets.
func (s *ProvisionStore) Sealed() bool {
	return s.aead != nil
}

// Save persists dataset, replacing any previous provision.
func (s *ProvisionStore) Save(dataset []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	env := envelope{
		Version: version.Current,
		SavedAt: time.Now(),
		Payload: dataset,
	}
	if s.aead != nil {
		nonce := make([]byte, s.aead.NonceSize())
		if _, err := rand.Read(nonce); err != nil {
			return fmt.Errorf("generate nonce: %w", err)
		}
		env.Sealed = true
		env.Nonce = nonce
		env.Payload = s.aead.Seal(nil, nonce, dataset, []byte(env.Version))
	}

	data, err := encMode.Marshal(env)
	if err != nil {
		return fmt.Errorf("encode provision: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return err
	}

	// Write to a temporary file first so a crash never leaves a torn provision.
	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".tmp*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), s.path)
}

// Load reads the provision from disk.
// Returns nil, nil if the file doesn't exist.
func (s *ProvisionStore) Load() (*Provision, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var env envelope
	if err := decMode.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("decode provision: %w", err)
	}
	if err := version.Check(env.Version); err != nil {
		return nil, fmt.Errorf("provision %s: %w", s.path, err)
	}

	payload := env.Payload
	if env.Sealed {
		if s.aead == nil {
			return nil, ErrSealed
		}
		if len(env.Nonce) != s.aead.NonceSize() {
			return nil, fmt.Errorf("%w: bad nonce length %d", ErrUnseal, len(env.Nonce))
		}
		payload, err = s.aead.Open(nil, env.Nonce, env.Payload, []byte(env.Version))
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUnseal, err)
		}
	}

	return &Provision{Dataset: payload, SavedAt: env.SavedAt}, nil
}

// Clear removes the provision file.
func (s *ProvisionStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := os.Remove(s.path)
	if os.IsNotExist(err) {
		return nil
	}
	return err
}
