package encryption

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"filippo.io/age"

	"dvc-go/internal/config"
	"dvc-go/internal/dvc"
)

// ErrKeysExist is returned by Setup when a key pair is already on disk.
var ErrKeysExist = errors.New("encryption keys already exist")

// AgeEncryptor seals archived payloads with filippo.io/age X25519 keys.
// The owner's public key is kept in plaintext so backups never prompt; the
// private key is sealed with the owner's passphrase (age scrypt). Payloads
// are also sealed to every configured extra recipient, which lets
// principals an archive is shared with read it with their own identity.
type AgeEncryptor struct {
	publicKeyPath  string
	privateKeyPath string
	extra          []age.Recipient
}

var _ dvc.Encryptor = (*AgeEncryptor)(nil)

// NewAgeEncryptor creates an AgeEncryptor. Extra recipients are parsed
// here so a typo fails at startup rather than on the first backup.
func NewAgeEncryptor(cfg config.EncryptionConfig) (*AgeEncryptor, error) {
	e := &AgeEncryptor{
		publicKeyPath:  cfg.PublicKeyPath,
		privateKeyPath: cfg.PrivateKeyPath,
	}
	for _, s := range cfg.Recipients {
		r, err := age.ParseX25519Recipient(strings.TrimSpace(s))
		if err != nil {
			return nil, fmt.Errorf("parsing recipient %q: %w", s, err)
		}
		e.extra = append(e.extra, r)
	}
	return e, nil
}

// Setup generates the owner key pair. It never overwrites existing keys,
// since backups sealed to them would become unreadable.
func (e *AgeEncryptor) Setup(passphrase string) error {
	if e.IsConfigured() {
		return ErrKeysExist
	}
	if passphrase == "" {
		return fmt.Errorf("passphrase can't be blank")
	}

	identity, err := age.GenerateX25519Identity()
	if err != nil {
		return fmt.Errorf("generating key pair: %w", err)
	}
	if err := writeKeyFile(e.publicKeyPath, []byte(identity.Recipient().String()+"\n"), 0644); err != nil {
		return fmt.Errorf("writing public key: %w", err)
	}

	sealed, err := sealIdentity(identity, passphrase)
	if err != nil {
		return err
	}
	if err := writeKeyFile(e.privateKeyPath, sealed, 0600); err != nil {
		return fmt.Errorf("writing private key: %w", err)
	}
	return nil
}

// Encrypt seals r to the owner and every extra recipient.
func (e *AgeEncryptor) Encrypt(r io.Reader, w io.Writer) error {
	owner, err := e.PublicKey()
	if err != nil {
		return err
	}
	recipient, err := age.ParseX25519Recipient(owner)
	if err != nil {
		return fmt.Errorf("parsing public key: %w", err)
	}

	sealed, err := age.Encrypt(w, append([]age.Recipient{recipient}, e.extra...)...)
	if err != nil {
		return fmt.Errorf("creating encrypted writer: %w", err)
	}
	if _, err := io.Copy(sealed, r); err != nil {
		return fmt.Errorf("encrypting data: %w", err)
	}
	if err := sealed.Close(); err != nil {
		return fmt.Errorf("finalizing encryption: %w", err)
	}
	return nil
}

// Unlock opens the sealed private key with passphrase.
func (e *AgeEncryptor) Unlock(passphrase string) (dvc.DecryptionContext, error) {
	sealed, err := os.ReadFile(e.privateKeyPath)
	if err != nil {
		return nil, fmt.Errorf("reading private key file: %w", err)
	}
	identity, err := openIdentity(sealed, passphrase)
	if err != nil {
		return nil, err
	}
	return &AgeDecryptionContext{identity: identity}, nil
}

// IsConfigured reports whether both key files exist.
func (e *AgeEncryptor) IsConfigured() bool {
	for _, p := range []string{e.publicKeyPath, e.privateKeyPath} {
		if _, err := os.Stat(p); err != nil {
			return false
		}
	}
	return true
}

// PublicKey returns the owner's age recipient string, the value another
// installation lists under encryption.recipients to share backups.
func (e *AgeEncryptor) PublicKey() (string, error) {
	data, err := os.ReadFile(e.publicKeyPath)
	if err != nil {
		return "", fmt.Errorf("reading public key: %w", err)
	}
	key := strings.TrimSpace(string(data))
	if key == "" {
		return "", fmt.Errorf("public key file %s is empty", e.publicKeyPath)
	}
	return key, nil
}

func writeKeyFile(path string, data []byte, perm os.FileMode) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}
	return os.WriteFile(path, data, perm)
}

func sealIdentity(identity *age.X25519Identity, passphrase string) ([]byte, error) {
	scrypt, err := age.NewScryptRecipient(passphrase)
	if err != nil {
		return nil, fmt.Errorf("creating scrypt recipient: %w", err)
	}
	var buf bytes.Buffer
	w, err := age.Encrypt(&buf, scrypt)
	if err != nil {
		return nil, fmt.Errorf("creating encrypted writer: %w", err)
	}
	if _, err := io.WriteString(w, identity.String()+"\n"); err != nil {
		return nil, fmt.Errorf("sealing private key: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("finalizing private key: %w", err)
	}
	return buf.Bytes(), nil
}

func openIdentity(sealed []byte, passphrase string) (age.Identity, error) {
	scrypt, err := age.NewScryptIdentity(passphrase)
	if err != nil {
		return nil, fmt.Errorf("creating scrypt identity: %w", err)
	}
	r, err := age.Decrypt(bytes.NewReader(sealed), scrypt)
	if err != nil {
		return nil, fmt.Errorf("unlocking private key (wrong passphrase?): %w", err)
	}
	identities, err := age.ParseIdentities(r)
	if err != nil {
		return nil, fmt.Errorf("parsing private key: %w", err)
	}
	return identities[0], nil
}

// AgeDecryptionContext holds an unlocked age identity in memory.
type AgeDecryptionContext struct {
	identity age.Identity
}

var _ dvc.DecryptionContext = (*AgeDecryptionContext)(nil)

// NewIdentityDecryptionContext wraps a plaintext age identity, as held by a
// principal an archive was shared with.
func NewIdentityDecryptionContext(identity string) (*AgeDecryptionContext, error) {
	id, err := age.ParseX25519Identity(strings.TrimSpace(identity))
	if err != nil {
		return nil, fmt.Errorf("parsing identity: %w", err)
	}
	return &AgeDecryptionContext{identity: id}, nil
}

// Decrypt reads age ciphertext from r and writes the plaintext to w.
func (c *AgeDecryptionContext) Decrypt(r io.Reader, w io.Writer) error {
	plain, err := age.Decrypt(r, c.identity)
	if err != nil {
		return fmt.Errorf("creating decrypted reader: %w", err)
	}
	if _, err := io.Copy(w, plain); err != nil {
		return fmt.Errorf("decrypting data: %w", err)
	}
	return nil
}
