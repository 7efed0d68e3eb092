package config

import (
	"encoding/hex"
	"fmt"

	"github.com/polykv/polykv-go/pkg/crypto/adaptive"
)

// BuildCipher decodes EngineSpec.EncryptionKeyHex and constructs an
// adaptive cipher from it. It returns (nil, nil) when no key is
// configured, so callers can treat a nil Cipher as "encryption off"
// without a special case.
func (e EngineSpec) BuildCipher() (adaptive.Cipher, error) {
	if e.EncryptionKeyHex == "" {
		return nil, nil
	}
	key, err := hex.DecodeString(e.EncryptionKeyHex)
	if err != nil {
		return nil, fmt.Errorf("config: decode encryption_key_hex: %w", err)
	}
	c, err := adaptive.New(key)
	if err != nil {
		return nil, fmt.Errorf("config: build cipher: %w", err)
	}
	return c, nil
}
