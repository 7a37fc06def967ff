package keystore

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/minio/sha256-simd"
	"golang.org/x/crypto/argon2"

	"github.com/mezonai/qledger/common"
	"github.com/mezonai/qledger/jsonx"
	"github.com/mezonai/qledger/logx"
	"github.com/mezonai/qledger/pqsig"
	"github.com/mezonai/qledger/security/validation"
)

const (
	keyFileVersion = 1
	keyFileExt     = ".key"

	saltSize  = 16
	nonceSize = 12

	argon2Time    = 1
	argon2Memory  = 64 * 1024
	argon2Threads = 4
	argon2KeyLen  = 32
)

var (
	ErrKeyExists      = errors.New("key already exists")
	ErrKeyNotFound    = errors.New("key not found")
	ErrInvalidKeyFile = errors.New("invalid key file")
	ErrWrongPassword  = errors.New("wrong password or corrupted key file")
)

// keyFile is the on-disk form. PrivateKey is ciphertext when Encrypted is set.
type keyFile struct {
	Version    int            `json:"version"`
	Name       string         `json:"name"`
	Scheme     pqsig.SchemeID `json:"scheme"`
	PublicKey  []byte         `json:"public_key"`
	Encrypted  bool           `json:"encrypted"`
	Salt       []byte         `json:"salt,omitempty"`
	Nonce      []byte         `json:"nonce,omitempty"`
	PrivateKey []byte         `json:"private_key"`
}

// FSKeystore keeps one key file per identity in a private directory. With
// a password the private key is sealed with AES-256-GCM under an argon2id
// key; without one it is stored in the clear.
type FSKeystore struct {
	dir      string
	password []byte
}

func NewFSKeystore(dir string, password []byte) (*FSKeystore, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, err
	}
	return &FSKeystore{
		dir:      dir,
		password: append([]byte(nil), password...),
	}, nil
}

func (ks *FSKeystore) Has(name string) (bool, error) {
	_, err := os.Stat(ks.keyPath(name))
	if os.IsNotExist(err) {
		return false, nil
	}
	return err == nil, err
}

// Put stores kp under name. Existing keys are never overwritten.
func (ks *FSKeystore) Put(name string, kp *pqsig.KeyPair) error {
	if err := validation.ValidateIdentity("key name", name); err != nil {
		return err
	}
	if kp == nil || len(kp.PrivateKey) == 0 {
		return fmt.Errorf("%w: key pair has no private key", ErrInvalidKeyFile)
	}
	exists, err := ks.Has(name)
	if err != nil {
		return err
	}
	if exists {
		return fmt.Errorf("%w: %s", ErrKeyExists, name)
	}

	kf := keyFile{
		Version:   keyFileVersion,
		Name:      name,
		Scheme:    kp.Scheme,
		PublicKey: kp.PublicKey,
	}
	if len(ks.password) > 0 {
		kf.Encrypted = true
		kf.Salt, kf.Nonce, kf.PrivateKey, err = encryptData(kp.PrivateKey, ks.password, []byte(name))
		if err != nil {
			return err
		}
	} else {
		kf.PrivateKey = kp.PrivateKey
	}

	data, err := jsonx.MarshalIndent(&kf)
	if err != nil {
		return err
	}
	// O_EXCL so a concurrent Put for the same name cannot clobber this one
	f, err := os.OpenFile(ks.keyPath(name), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		if os.IsExist(err) {
			return fmt.Errorf("%w: %s", ErrKeyExists, name)
		}
		return err
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}

	logx.Info("KEYSTORE", fmt.Sprintf("Stored %s key for %s (encrypted=%v)", kp.Scheme, name, kf.Encrypted))
	return nil
}

// Get loads and, if needed, decrypts the key pair stored under name
func (ks *FSKeystore) Get(name string) (*pqsig.KeyPair, error) {
	data, err := os.ReadFile(ks.keyPath(name))
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: %s", ErrKeyNotFound, name)
	}
	if err != nil {
		return nil, err
	}

	var kf keyFile
	if err := jsonx.Unmarshal(data, &kf); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidKeyFile, err)
	}
	if kf.Version != keyFileVersion {
		return nil, fmt.Errorf("%w: unsupported version %d", ErrInvalidKeyFile, kf.Version)
	}
	if kf.Name != name {
		return nil, fmt.Errorf("%w: file holds key for %q", ErrInvalidKeyFile, kf.Name)
	}
	s, ok := pqsig.Lookup(kf.Scheme)
	if !ok {
		return nil, fmt.Errorf("%w: unknown scheme %s", ErrInvalidKeyFile, kf.Scheme)
	}

	priv := kf.PrivateKey
	if kf.Encrypted {
		if len(ks.password) == 0 {
			return nil, fmt.Errorf("%w: key %s is encrypted", ErrWrongPassword, name)
		}
		priv, err = decryptData(kf.Salt, kf.Nonce, kf.PrivateKey, ks.password, []byte(name))
		if err != nil {
			return nil, err
		}
	}
	if len(priv) != s.PrivateKeySize() || len(kf.PublicKey) != s.PublicKeySize() {
		return nil, fmt.Errorf("%w: key sizes do not match %s", ErrInvalidKeyFile, s.Name)
	}

	return &pqsig.KeyPair{
		Scheme:     kf.Scheme,
		PublicKey:  kf.PublicKey,
		PrivateKey: priv,
	}, nil
}

// List returns stored key names in sorted order
func (ks *FSKeystore) List() ([]string, error) {
	entries, err := os.ReadDir(ks.dir)
	if err != nil {
		return nil, err
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != keyFileExt {
			continue
		}
		data, err := os.ReadFile(filepath.Join(ks.dir, entry.Name()))
		if err != nil {
			return nil, err
		}
		var kf keyFile
		if err := jsonx.Unmarshal(data, &kf); err != nil || kf.Name == "" {
			logx.Warn("KEYSTORE", "Skipping unreadable key file ", entry.Name())
			continue
		}
		// a file copied under another name does not count as that key
		if entry.Name() != keyFileName(kf.Name) {
			logx.Warn("KEYSTORE", "Skipping misplaced key file ", entry.Name())
			continue
		}
		names = append(names, kf.Name)
	}
	sort.Strings(names)
	return names, nil
}

// keyPath names the file by a digest of the name, so every valid identity
// maps to a fixed-length file name
func (ks *FSKeystore) keyPath(name string) string {
	return filepath.Join(ks.dir, keyFileName(name))
}

func keyFileName(name string) string {
	sum := sha256.Sum256([]byte(name))
	return common.EncodeBytesToBase58(sum[:]) + keyFileExt
}

func deriveKey(password, salt []byte) []byte {
	return argon2.IDKey(password, salt, argon2Time, argon2Memory, argon2Threads, argon2KeyLen)
}

func newGCM(password, salt []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(deriveKey(password, salt))
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

// encryptData binds the ciphertext to name through the GCM additional data
func encryptData(plaintext, password, name []byte) (salt, nonce, ciphertext []byte, err error) {
	salt = make([]byte, saltSize)
	if _, err = io.ReadFull(rand.Reader, salt); err != nil {
		return nil, nil, nil, err
	}
	nonce = make([]byte, nonceSize)
	if _, err = io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, nil, nil, err
	}

	gcm, err := newGCM(password, salt)
	if err != nil {
		return nil, nil, nil, err
	}
	return salt, nonce, gcm.Seal(nil, nonce, plaintext, name), nil
}

func decryptData(salt, nonce, ciphertext, password, name []byte) ([]byte, error) {
	if len(salt) != saltSize || len(nonce) != nonceSize {
		return nil, fmt.Errorf("%w: bad salt or nonce", ErrInvalidKeyFile)
	}
	gcm, err := newGCM(password, salt)
	if err != nil {
		return nil, err
	}
	plaintext, err := gcm.Open(nil, nonce, ciphertext, name)
	if err != nil {
		return nil, ErrWrongPassword
	}
	return plaintext, nil
}
