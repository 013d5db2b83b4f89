package storage

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"errors"
	"fmt"
	"os"

	"golang.org/x/crypto/argon2"
)

// sealMagic prefixes sealed archives.
const sealMagic = "BRSEAL01"

// Argon2id parameters (RFC 9106 second recommended option).
const (
	argon2Time    = 3
	argon2Memory  = 64 * 1024 // KiB
	argon2Threads = 4
	argon2KeyLen  = 32 // AES-256
	saltLength    = 16
)

// ErrWrongPassphrase is returned when a sealed archive fails authentication.
var ErrWrongPassphrase = errors.New("wrong passphrase or corrupted archive")

func sealKey(passphrase string, salt []byte) []byte {
	return argon2.IDKey([]byte(passphrase), salt, argon2Time, argon2Memory, argon2Threads, argon2KeyLen)
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}
	return cipher.NewGCM(block)
}

// seal encrypts plaintext as magic || salt || nonce || ciphertext. The magic
// header is authenticated as additional data.
func seal(plaintext []byte, passphrase string) ([]byte, error) {
	salt := make([]byte, saltLength)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("failed to generate salt: %w", err)
	}
	gcm, err := newGCM(sealKey(passphrase, salt))
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, gcm.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}

	out := make([]byte, 0, len(sealMagic)+len(salt)+len(nonce)+len(plaintext)+gcm.Overhead())
	out = append(out, sealMagic...)
	out = append(out, salt...)
	out = append(out, nonce...)
	return gcm.Seal(out, nonce, plaintext, []byte(sealMagic)), nil
}

func unseal(sealed []byte, passphrase string) ([]byte, error) {
	if !bytes.HasPrefix(sealed, []byte(sealMagic)) {
		return nil, ErrArchiveInvalid
	}
	rest := sealed[len(sealMagic):]
	if len(rest) < saltLength {
		return nil, ErrArchiveInvalid
	}
	salt, rest := rest[:saltLength], rest[saltLength:]

	gcm, err := newGCM(sealKey(passphrase, salt))
	if err != nil {
		return nil, err
	}
	if len(rest) < gcm.NonceSize()+gcm.Overhead() {
		return nil, ErrArchiveInvalid
	}
	nonce, ciphertext := rest[:gcm.NonceSize()], rest[gcm.NonceSize():]

	plaintext, err := gcm.Open(nil, nonce, ciphertext, []byte(sealMagic))
	if err != nil {
		return nil, ErrWrongPassphrase
	}
	return plaintext, nil
}

func sealFile(src, dst, passphrase string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return fmt.Errorf("failed to read snapshot: %w", err)
	}
	sealed, err := seal(data, passphrase)
	if err != nil {
		return err
	}
	if err := os.WriteFile(dst, sealed, 0o600); err != nil {
		return fmt.Errorf("failed to write sealed archive: %w", err)
	}
	return nil
}

func openSealedFile(src, dst, passphrase string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return fmt.Errorf("failed to read sealed archive: %w", err)
	}
	plain, err := unseal(data, passphrase)
	if err != nil {
		return err
	}
	if err := os.WriteFile(dst, plain, 0o600); err != nil {
		return fmt.Errorf("failed to write restored database: %w", err)
	}
	return nil
}
