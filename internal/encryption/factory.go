package encryption

import (
	"fmt"

	"dvc-go/internal/config"
	"dvc-go/internal/dvc"
)

// NewEncryptorFromConfig creates an Encryptor based on the configuration type.
// Type "none" returns a nil Encryptor; archived payloads are then only compressed.
func NewEncryptorFromConfig(cfg config.EncryptionConfig) (dvc.Encryptor, error) {
	switch cfg.Type {
	case "age", "":
		e, err := NewAgeEncryptor(cfg)
		if err != nil {
			return nil, err
		}
		return e, nil
	case "test":
		return NewTestEncryptor(), nil
	case "none":
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown encryption type: %q", cfg.Type)
	}
}
