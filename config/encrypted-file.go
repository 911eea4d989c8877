package config

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"io"
	"os"
	"path"

	"github.com/pkg/errors"
	"github.com/relloyd/addrsync/constants"
	"github.com/relloyd/addrsync/helper"
)

// EnvVarConfigKey names the environment variable holding the passphrase used to encrypt config files.
var EnvVarConfigKey = constants.EnvVarPrefix + "_CONFIG_KEY"

const defaultPassphrase = "addrsync-local-config"

// EncryptedFile stores bytes on disk as base64 encoded AES-GCM cipher text.
type EncryptedFile struct {
	Dirname  string
	FileName string
	FullPath string
}

func NewEncryptedFile(dirName string, filename string) *EncryptedFile {
	return &EncryptedFile{Dirname: dirName, FileName: filename, FullPath: path.Join(dirName, filename)}
}

// fileKey derives the 32 byte AES key from the passphrase in the environment, if set.
func fileKey() []byte {
	p := helper.ReadValueFromEnvWithDefault(EnvVarConfigKey, defaultPassphrase)
	k := sha256.Sum256([]byte(p))
	return k[:]
}

// Set encrypts text and writes it to the file, creating the directory if required.
func (f *EncryptedFile) Set(text []byte) error {
	sealedBytes, err := Encrypt(text, fileKey())
	if err != nil {
		return err
	}
	b64 := base64.StdEncoding.EncodeToString(sealedBytes)
	if !fileExists(f.FullPath) { // if the file does not exist...
		if err := makeDir(f.Dirname); err != nil {
			return err
		}
	}
	if err = os.WriteFile(f.FullPath, []byte(b64), 0600); err != nil {
		return errors.Wrapf(err, "error writing config file %v", f.FullPath)
	}
	return nil
}

// Get reads and decrypts the file.
// Returns FileNotFoundError if the file does not exist.
func (f *EncryptedFile) Get() ([]byte, error) {
	if !fileExists(f.FullPath) { // if the file does not exist...
		return nil, FileNotFoundError{f.FullPath}
	}
	b64, err := os.ReadFile(f.FullPath)
	if err != nil {
		return nil, err
	}
	cipherText, err := base64.StdEncoding.DecodeString(string(b64))
	if err != nil {
		return nil, errors.Wrapf(err, "error decoding config file %v", f.FullPath)
	}
	b, err := Decrypt(cipherText, fileKey())
	if err != nil {
		return nil, errors.Wrapf(err, "error decrypting config file %v (check %v)", f.FullPath, EnvVarConfigKey)
	}
	return b, nil
}

// Encrypt seals text with AES-GCM using key. The random nonce is prefixed to the result.
func Encrypt(text []byte, key []byte) ([]byte, error) {
	c, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	gcm, err := cipher.NewGCM(c)
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, gcm.NonceSize())
	if _, err = io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}
	return gcm.Seal(nonce, nonce, text, nil), nil
}

// Decrypt opens text produced by Encrypt.
func Decrypt(text []byte, key []byte) ([]byte, error) {
	c, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	gcm, err := cipher.NewGCM(c)
	if err != nil {
		return nil, err
	}
	nonceSize := gcm.NonceSize()
	if len(text) < nonceSize {
		return nil, fmt.Errorf("encrypted text is too short")
	}
	nonce, cipherText := text[:nonceSize], text[nonceSize:]
	return gcm.Open(nil, nonce, cipherText, nil)
}
