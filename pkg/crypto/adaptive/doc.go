// Package adaptive provides adaptive encryption for polykv.
//
// This package implements a cipher abstraction that selects an
// encryption algorithm by target architecture.
//
// Supported Algorithms:
//
//   - AES-GCM (16, 24 or 32-byte key): chosen by New on amd64 and arm64
//   - ChaCha20-Poly1305 (32-byte key): chosen by New on other architectures
//
// Features:
//
//   - Architecture-based selection: New picks by runtime.GOARCH
//   - AEAD: Authenticated encryption with associated data
//   - Thread Safety: All cipher operations are thread-safe
//
// Keys are used as given; the package does no key derivation.
//
// Usage:
//
//	cipher, err := adaptive.New(key)
//	encrypted, err := cipher.Encrypt(plaintext, aad)
//	plaintext, err := cipher.Decrypt(encrypted, aad)
//
package adaptive
