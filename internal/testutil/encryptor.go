package testutil

import "dvc-go/internal/encryption"

// NewTestEncryptor returns an encryptor that unlocks with
// encryption.TestPassphrase and never leaves plaintext in its output.
func NewTestEncryptor() *encryption.TestEncryptor {
	return encryption.NewTestEncryptor()
}
