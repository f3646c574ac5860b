package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/scrypt"
)

// scrypt parameters for sealed wallet keys
// Security is prioritized over performance
//
// N=2^18 (~256MB RAM, 0.5-2s) keeps brute-force attacks extremely expensive
// while staying usable on small hosts.
var scryptN = defaultScryptN

const (
	defaultScryptN = 1 << 18
	scryptR        = 8
	scryptP        = 1
	scryptKeyLen   = 32
	saltLen        = 32
	nonceLen       = 12
)

// SealedKey is a secret encrypted with a passphrase-derived key
type SealedKey struct {
	Salt       string `json:"salt"`
	Nonce      string `json:"nonce"`
	CipherText string `json:"cipherText"`

	// N is the scrypt cost the key was sealed with; zero means the default.
	N int `json:"n,omitempty"`
}

// SetCost changes the scrypt cost used by subsequent Seal calls. Keys record
// their own cost, so previously sealed keys still open.
func SetCost(n int) {
	if n > 1 && n&(n-1) == 0 {
		scryptN = n
	}
}

// Seal encrypts secret with a key derived from password.
// password must be []byte for security (caller should zero it after use)
func Seal(secret, password []byte) (*SealedKey, error) {
	if len(password) == 0 {
		return nil, errors.New("password cannot be empty")
	}

	// Generate salt and nonce
	salt := make([]byte, saltLen)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return nil, fmt.Errorf("failed to generate salt: %w", err)
	}

	nonce := make([]byte, nonceLen)
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}

	n := scryptN
	aesGCM, err := newGCM(password, salt, n)
	if err != nil {
		return nil, err
	}

	ciphertext := aesGCM.Seal(nil, nonce, secret, nil)

	return &SealedKey{
		Salt:       base64.StdEncoding.EncodeToString(salt),
		Nonce:      base64.StdEncoding.EncodeToString(nonce),
		CipherText: base64.StdEncoding.EncodeToString(ciphertext),
		N:          n,
	}, nil
}

// newGCM derives the AES key from password and salt
func newGCM(password, salt []byte, n int) (cipher.AEAD, error) {
	key, err := scrypt.Key(password, salt, n, scryptR, scryptP, scryptKeyLen)
	if err != nil {
		return nil, fmt.Errorf("failed to derive key: %w", err)
	}
	defer clear(key)

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}

	aesGCM, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}
	return aesGCM, nil
}
