package encryption

import (
	"bytes"
	"fmt"
	"io"
	"sync"

	"dvc-go/internal/dvc"
)

// TestPassphrase is the only passphrase a TestEncryptor unlocks with.
const TestPassphrase = "secret"

var testMagic = []byte("DVCTEST1")

const testMask = 0x5a

// TestEncryptor stands in for real cryptography: it writes a magic prefix
// and masks every byte, so sealed output never contains the plaintext.
// Restores must still unlock, and tests can count sealed payloads.
type TestEncryptor struct {
	mu     sync.Mutex
	sealed int
}

var _ dvc.Encryptor = (*TestEncryptor)(nil)

// NewTestEncryptor creates a TestEncryptor.
func NewTestEncryptor() *TestEncryptor {
	return &TestEncryptor{}
}

// Setup accepts any passphrase; there are no keys to create.
func (e *TestEncryptor) Setup(string) error { return nil }

func (e *TestEncryptor) Encrypt(r io.Reader, w io.Writer) error {
	if _, err := w.Write(testMagic); err != nil {
		return fmt.Errorf("writing magic: %w", err)
	}
	if _, err := io.Copy(maskWriter{w}, r); err != nil {
		return fmt.Errorf("copying data: %w", err)
	}
	e.mu.Lock()
	e.sealed++
	e.mu.Unlock()
	return nil
}

// Unlock succeeds only for TestPassphrase.
func (e *TestEncryptor) Unlock(passphrase string) (dvc.DecryptionContext, error) {
	if passphrase != TestPassphrase {
		return nil, fmt.Errorf("unlocking private key: wrong passphrase")
	}
	return TestDecryptionContext{}, nil
}

func (e *TestEncryptor) IsConfigured() bool { return true }

// Sealed returns how many payloads Encrypt has written.
func (e *TestEncryptor) Sealed() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.sealed
}

// TestDecryptionContext strips the TestEncryptor framing.
type TestDecryptionContext struct{}

var _ dvc.DecryptionContext = TestDecryptionContext{}

func (TestDecryptionContext) Decrypt(r io.Reader, w io.Writer) error {
	magic := make([]byte, len(testMagic))
	if _, err := io.ReadFull(r, magic); err != nil {
		return fmt.Errorf("reading magic: %w", err)
	}
	if !bytes.Equal(magic, testMagic) {
		return fmt.Errorf("not a test-sealed payload")
	}
	if _, err := io.Copy(maskWriter{w}, r); err != nil {
		return fmt.Errorf("copying data: %w", err)
	}
	return nil
}

// maskWriter XORs each byte with testMask; applying it twice is the identity.
type maskWriter struct {
	w io.Writer
}

func (m maskWriter) Write(p []byte) (int, error) {
	buf := make([]byte, len(p))
	for i, b := range p {
		buf[i] = b ^ testMask
	}
	return m.w.Write(buf)
}
