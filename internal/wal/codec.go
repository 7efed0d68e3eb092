package wal

import (
	"encoding/base64"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"hash/crc32"

	"github.com/polykv/polykv-go/pkg/crypto/adaptive"
)

type wirePayload struct {
	Timestamp  int64  `json:"ts"`
	Collection uint64 `json:"collection"`
	Key        string `json:"key"` // base64
	Generation uint64 `json:"generation,omitempty"`

	Value string `json:"value,omitempty"` // base64

	// EncryptedValue is base64 of adaptive.Cipher.Encrypt(value), used
	// instead of Value when the writer was configured with a cipher.
	EncryptedValue string `json:"enc_value,omitempty"`
}

func encodeEntryFrame(e *Entry, cipher adaptive.Cipher) ([]byte, error) {
	if e == nil {
		return nil, fmt.Errorf("wal: entry is nil")
	}
	if e.OpType == OpTypeUnspecified {
		return nil, ErrInvalidEntryType
	}

	p := wirePayload{
		Timestamp:  e.Timestamp,
		Collection: e.Collection,
		Key:        base64.StdEncoding.EncodeToString(e.Key),
		Generation: e.Generation,
	}

	if e.OpType == OpTypeSet {
		if cipher == nil {
			p.Value = base64.StdEncoding.EncodeToString(e.Value)
		} else {
			encrypted, err := cipher.Encrypt(e.Value, nil)
			if err != nil {
				return nil, fmt.Errorf("wal: encrypt value: %w", err)
			}
			p.EncryptedValue = base64.StdEncoding.EncodeToString(encrypted)
		}
	}

	payload, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("wal: marshal payload: %w", err)
	}

	typeByte := []byte{byte(e.OpType)}
	crc := crc32.ChecksumIEEE(append(typeByte, payload...))

	// Length = CRC(4) + Type(1) + Payload.
	length := uint32(4 + 1 + len(payload))
	if length < 5 {
		return nil, ErrCorruptedEntry
	}

	out := make([]byte, 0, 4+int(length))
	var header [4]byte
	binary.BigEndian.PutUint32(header[:], length)
	out = append(out, header[:]...)

	var crcBuf [4]byte
	binary.BigEndian.PutUint32(crcBuf[:], crc)
	out = append(out, crcBuf[:]...)

	out = append(out, typeByte...)
	out = append(out, payload...)
	return out, nil
}

func decodeEntryFrame(frame []byte, cipher adaptive.Cipher) (*Entry, error) {
	// Frame layout: [crc32:4][type:1][payload...]
	if len(frame) < 5 {
		return nil, ErrCorruptedEntry
	}

	wantCRC := binary.BigEndian.Uint32(frame[:4])
	typeByte := frame[4]
	payload := frame[5:]

	gotCRC := crc32.ChecksumIEEE(append([]byte{typeByte}, payload...))
	if gotCRC != wantCRC {
		return nil, ErrChecksumMismatch
	}

	var p wirePayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return nil, fmt.Errorf("wal: unmarshal payload: %w", err)
	}

	op := OpType(typeByte)
	switch op {
	case OpTypeSet, OpTypeDelete, OpTypeDropCollection:
	default:
		return nil, ErrInvalidEntryType
	}

	key, err := base64.StdEncoding.DecodeString(p.Key)
	if err != nil {
		return nil, fmt.Errorf("wal: decode key: %w", err)
	}

	out := &Entry{
		OpType:     op,
		Timestamp:  p.Timestamp,
		Collection: p.Collection,
		Key:        key,
		Generation: p.Generation,
	}

	if op != OpTypeSet {
		return out, nil
	}

	if p.Value != "" || p.EncryptedValue == "" {
		value, err := base64.StdEncoding.DecodeString(p.Value)
		if err != nil {
			return nil, fmt.Errorf("wal: decode value: %w", err)
		}
		out.Value = value
		return out, nil
	}

	if cipher == nil {
		return nil, fmt.Errorf("wal: encrypted entry requires cipher")
	}
	ciphertext, err := base64.StdEncoding.DecodeString(p.EncryptedValue)
	if err != nil {
		return nil, fmt.Errorf("wal: decode encrypted value: %w", err)
	}
	plain, err := cipher.Decrypt(ciphertext, nil)
	if err != nil {
		return nil, fmt.Errorf("wal: decrypt value: %w", err)
	}
	out.Value = plain
	return out, nil
}
