package crypto

import (
	"encoding/base64"
	"errors"
	"fmt"
)

// ErrInvalidPassword is returned when a sealed key cannot be opened with the given password
var ErrInvalidPassword = errors.New("invalid password")

// Open decrypts a sealed key.
// The returned secret must be zeroed by the caller after use.
func Open(sealed *SealedKey, password []byte) ([]byte, error) {
	if sealed == nil {
		return nil, errors.New("sealed key is missing")
	}

	// Decode salt and nonce
	salt, err := base64.StdEncoding.DecodeString(sealed.Salt)
	if err != nil {
		return nil, fmt.Errorf("failed to decode salt: %w", err)
	}

	nonce, err := base64.StdEncoding.DecodeString(sealed.Nonce)
	if err != nil {
		return nil, fmt.Errorf("failed to decode nonce: %w", err)
	}
	if len(nonce) != nonceLen {
		return nil, fmt.Errorf("invalid nonce length %d", len(nonce))
	}

	ciphertext, err := base64.StdEncoding.DecodeString(sealed.CipherText)
	if err != nil {
		return nil, fmt.Errorf("failed to decode ciphertext: %w", err)
	}

	n := sealed.N
	if n == 0 {
		n = defaultScryptN
	}
	aesGCM, err := newGCM(password, salt, n)
	if err != nil {
		return nil, err
	}

	plaintext, err := aesGCM.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, ErrInvalidPassword
	}
	return plaintext, nil
}
