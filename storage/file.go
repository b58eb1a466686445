package storage

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/jrsteele09/resume-matcher-client/internal/errors"
	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/chacha20poly1305"
)

const (
	fileFormatVersion = 1
	saltLength        = 16

	// Argon2id parameters for deriving the file key from the passphrase.
	argonTime    = 1
	argonMemory  = 64 * 1024
	argonThreads = 4
)

// ErrDecrypt is returned when a sealed file cannot be opened with the passphrase.
var ErrDecrypt = errors.New("storage file could not be decrypted")

// sealedFile is the on-disk envelope of an encrypted store.
type sealedFile struct {
	Version int    `json:"v"`
	Salt    []byte `json:"salt"`
	Nonce   []byte `json:"nonce"`
	Data    []byte `json:"data"`
}

// FileBackend persists all keys in a single JSON file. With a passphrase
// the file is sealed with XChaCha20-Poly1305 under an Argon2id-derived key.
// Every write replaces the file atomically.
type FileBackend struct {
	mu         sync.Mutex
	path       string
	passphrase []byte
	salt       []byte
	key        []byte
}

var _ Backend = (*FileBackend)(nil)

// NewFileBackend opens (or prepares) the store at path. An empty passphrase
// stores plain JSON. The file is not created until the first write.
func NewFileBackend(path, passphrase string) (*FileBackend, error) {
	if path == "" {
		return nil, errors.New("[NewFileBackend] path is required")
	}
	fb := &FileBackend{path: path}
	if passphrase != "" {
		fb.passphrase = []byte(passphrase)
	}

	// Validate an existing file up front so a wrong passphrase fails fast.
	if _, err := fb.load(); err != nil {
		return nil, errors.Wrapf(err, "[NewFileBackend] %s", path)
	}
	return fb, nil
}

// Path returns the file location.
func (f *FileBackend) Path() string {
	return f.path
}

func (f *FileBackend) Get(_ context.Context, key string) (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	values, err := f.load()
	if err != nil {
		return "", false, err
	}
	v, ok := values[key]
	return v, ok, nil
}

func (f *FileBackend) Set(_ context.Context, key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	values, err := f.load()
	if err != nil {
		return err
	}
	values[key] = value
	return f.save(values)
}

func (f *FileBackend) Delete(_ context.Context, keys ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	values, err := f.load()
	if err != nil {
		return err
	}
	changed := false
	for _, k := range keys {
		if _, ok := values[k]; ok {
			delete(values, k)
			changed = true
		}
	}
	if !changed {
		return nil
	}
	return f.save(values)
}

func (f *FileBackend) load() (map[string]string, error) {
	raw, err := os.ReadFile(f.path)
	if os.IsNotExist(err) {
		return make(map[string]string), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read store: %w", err)
	}
	if len(raw) == 0 {
		return make(map[string]string), nil
	}

	plain := raw
	if f.passphrase != nil {
		if plain, err = f.open(raw); err != nil {
			return nil, err
		}
	}

	values := make(map[string]string)
	if err := json.Unmarshal(plain, &values); err != nil {
		return nil, fmt.Errorf("decode store: %w", err)
	}
	return values, nil
}

func (f *FileBackend) save(values map[string]string) error {
	data, err := json.Marshal(values)
	if err != nil {
		return fmt.Errorf("encode store: %w", err)
	}
	if f.passphrase != nil {
		if data, err = f.seal(data); err != nil {
			return err
		}
	}

	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("create store dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".store-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), f.path); err != nil {
		return fmt.Errorf("replace store: %w", err)
	}
	return nil
}

func (f *FileBackend) deriveKey(salt []byte) []byte {
	if f.key != nil && string(f.salt) == string(salt) {
		return f.key
	}
	f.salt = append([]byte(nil), salt...)
	f.key = argon2.IDKey(f.passphrase, salt, argonTime, argonMemory, argonThreads, chacha20poly1305.KeySize)
	return f.key
}

func (f *FileBackend) seal(plain []byte) ([]byte, error) {
	salt := f.salt
	if salt == nil {
		salt = make([]byte, saltLength)
		if _, err := rand.Read(salt); err != nil {
			return nil, fmt.Errorf("generate salt: %w", err)
		}
	}
	aead, err := chacha20poly1305.NewX(f.deriveKey(salt))
	if err != nil {
		return nil, fmt.Errorf("init cipher: %w", err)
	}
	nonce := make([]byte, aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("generate nonce: %w", err)
	}
	return json.Marshal(sealedFile{
		Version: fileFormatVersion,
		Salt:    salt,
		Nonce:   nonce,
		Data:    aead.Seal(nil, nonce, plain, nil),
	})
}

func (f *FileBackend) open(raw []byte) ([]byte, error) {
	var sf sealedFile
	if err := json.Unmarshal(raw, &sf); err != nil || sf.Version != fileFormatVersion {
		return nil, ErrDecrypt
	}
	aead, err := chacha20poly1305.NewX(f.deriveKey(sf.Salt))
	if err != nil {
		return nil, fmt.Errorf("init cipher: %w", err)
	}
	if len(sf.Nonce) != aead.NonceSize() {
		return nil, ErrDecrypt
	}
	plain, err := aead.Open(nil, sf.Nonce, sf.Data, nil)
	if err != nil {
		return nil, ErrDecrypt
	}
	return plain, nil
}
