package wal

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/polykv/polykv-go/pkg/crypto/adaptive"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig("x")
	if cfg.Dir != "x" {
		t.Fatalf("Dir = %q, want %q", cfg.Dir, "x")
	}
	if cfg.SyncMode != SyncModeBatch {
		t.Fatalf("SyncMode = %q, want %q", cfg.SyncMode, SyncModeBatch)
	}
	if cfg.BatchCount != DefaultBatchCount {
		t.Fatalf("BatchCount = %d, want %d", cfg.BatchCount, DefaultBatchCount)
	}
	if cfg.MaxFileSize != DefaultMaxFileSize {
		t.Fatalf("MaxFileSize = %d, want %d", cfg.MaxFileSize, DefaultMaxFileSize)
	}
}

func TestWriterReader_RoundTripPlain(t *testing.T) {
	dir := t.TempDir()

	w, err := NewWriter(Config{
		Dir:           dir,
		SyncMode:      SyncModeSync,
		BatchCount:    2,
		BatchBytes:    1,
		MaxFileSize:   DefaultMaxFileSize,
		MaxEntryCount: DefaultMaxEntryCount,
	})
	if err != nil {
		t.Fatalf("NewWriter: %v", err)
	}

	if err := w.Append(NewSetEntry(0, []byte("k1"), []byte("v1"), 1)); err != nil {
		t.Fatalf("Append 1: %v", err)
	}
	if err := w.Append(NewSetEntry(0, []byte("k2"), []byte("v2"), 2)); err != nil {
		t.Fatalf("Append 2: %v", err)
	}

	offsetAtEnd := w.CurrentOffset()

	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	path := filepath.Join(dir, "wal-00000001.log")
	if err := VerifyTrailerChecksum(path); err != nil {
		t.Fatalf("VerifyTrailerChecksum: %v", err)
	}

	r, err := NewReader(dir, nil)
	if err != nil {
		t.Fatalf("NewReader: %v", err)
	}
	defer r.Close()

	got1, err := r.Read()
	if err != nil {
		t.Fatalf("Read 1: %v", err)
	}
	if got1.OpType != OpTypeSet || string(got1.Key) != "k1" || string(got1.Value) != "v1" || got1.Generation != 1 {
		t.Fatalf("got1 mismatch: %+v", got1)
	}

	got2, err := r.Read()
	if err != nil {
		t.Fatalf("Read 2: %v", err)
	}
	if got2.OpType != OpTypeSet || string(got2.Key) != "k2" || got2.Generation != 2 {
		t.Fatalf("got2 mismatch: %+v", got2)
	}

	if _, err := r.Read(); err == nil {
		t.Fatalf("expected EOF")
	}

	r2, err := NewReader(dir, nil)
	if err != nil {
		t.Fatalf("NewReader2: %v", err)
	}
	defer r2.Close()
	if err := r2.Seek(offsetAtEnd); err != nil {
		t.Fatalf("Seek: %v", err)
	}
	if _, err := r2.Read(); err == nil {
		t.Fatalf("expected EOF after Seek(end)")
	}
}

func TestWriterReader_RoundTripEncrypted(t *testing.T) {
	dir := t.TempDir()

	key := make([]byte, 32)
	for i := range key {
		key[i] = byte(i + 1)
	}
	c, err := adaptive.New(key)
	if err != nil {
		t.Fatalf("adaptive.New: %v", err)
	}

	w, err := NewWriter(Config{
		Dir:           dir,
		SyncMode:      SyncModeSync,
		BatchCount:    1,
		BatchBytes:    1,
		MaxFileSize:   DefaultMaxFileSize,
		MaxEntryCount: DefaultMaxEntryCount,
		Cipher:        c,
	})
	if err != nil {
		t.Fatalf("NewWriter: %v", err)
	}

	if err := w.Append(NewSetEntry(0, []byte("secret"), []byte("payload"), 1)); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	r, err := NewReader(dir, c)
	if err != nil {
		t.Fatalf("NewReader: %v", err)
	}
	defer r.Close()

	got, err := r.Read()
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if string(got.Key) != "secret" || string(got.Value) != "payload" {
		t.Fatalf("decrypted entry mismatch: %+v", got)
	}
}

func TestWriterReader_AllOpTypes(t *testing.T) {
	dir := t.TempDir()

	w, err := NewWriter(Config{
		Dir:           dir,
		SyncMode:      SyncModeSync,
		BatchCount:    1,
		BatchBytes:    1,
		MaxFileSize:   DefaultMaxFileSize,
		MaxEntryCount: DefaultMaxEntryCount,
	})
	if err != nil {
		t.Fatalf("NewWriter: %v", err)
	}

	if err := w.Append(NewSetEntry(3, []byte("k"), []byte("v"), 1)); err != nil {
		t.Fatalf("Append SET: %v", err)
	}
	if err := w.Append(NewDeleteEntry(3, []byte("k"), 2)); err != nil {
		t.Fatalf("Append DELETE: %v", err)
	}
	if err := w.Append(NewDropCollectionEntry(3)); err != nil {
		t.Fatalf("Append DROP_COLLECTION: %v", err)
	}
	w.Close()

	r, err := NewReader(dir, nil)
	if err != nil {
		t.Fatalf("NewReader: %v", err)
	}
	defer r.Close()

	entries, err := r.ReadAll()
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("len(entries) = %d, want 3", len(entries))
	}
	if entries[0].OpType != OpTypeSet || entries[1].OpType != OpTypeDelete || entries[2].OpType != OpTypeDropCollection {
		t.Fatalf("op type sequence mismatch: %+v", entries)
	}
	if entries[2].Collection != 3 {
		t.Fatalf("DROP_COLLECTION collection = %d, want 3", entries[2].Collection)
	}
}

func TestWriter_RejectsUnspecifiedOpType(t *testing.T) {
	dir := t.TempDir()
	w, err := NewWriter(Config{
		Dir:           dir,
		SyncMode:      SyncModeSync,
		BatchCount:    1,
		BatchBytes:    1,
		MaxFileSize:   DefaultMaxFileSize,
		MaxEntryCount: DefaultMaxEntryCount,
	})
	if err != nil {
		t.Fatalf("NewWriter: %v", err)
	}
	defer w.Close()

	err = w.Append(&Entry{OpType: OpTypeUnspecified, Timestamp: time.Now().UnixMilli()})
	if err == nil {
		t.Fatalf("expected error for unspecified op type")
	}
}

func TestWriter_RotationByEntryCount(t *testing.T) {
	dir := t.TempDir()

	w, err := NewWriter(Config{
		Dir:           dir,
		SyncMode:      SyncModeSync,
		BatchCount:    1,
		BatchBytes:    1,
		MaxFileSize:   DefaultMaxFileSize,
		MaxEntryCount: 1,
	})
	if err != nil {
		t.Fatalf("NewWriter: %v", err)
	}

	if err := w.Append(NewSetEntry(0, []byte("k1"), []byte("v1"), 1)); err != nil {
		t.Fatalf("Append 1: %v", err)
	}
	if err := w.Append(NewSetEntry(0, []byte("k2"), []byte("v2"), 2)); err != nil {
		t.Fatalf("Append 2: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(entries) < 2 {
		t.Fatalf("segment files = %d, want >= 2", len(entries))
	}
}

func TestNewWriter_ContinuesOpenSegment(t *testing.T) {
	dir := t.TempDir()

	path := filepath.Join(dir, formatSegmentFilename(1))
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0600)
	if err != nil {
		t.Fatalf("OpenFile: %v", err)
	}
	if _, err := f.Write([]byte(MagicBytes)); err != nil {
		f.Close()
		t.Fatalf("write magic: %v", err)
	}
	frame, err := encodeEntryFrame(NewSetEntry(0, []byte("k1"), []byte("v1"), 1), nil)
	if err != nil {
		f.Close()
		t.Fatalf("encodeEntryFrame: %v", err)
	}
	if _, err := f.Write(frame); err != nil {
		f.Close()
		t.Fatalf("write entry: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	w, err := NewWriter(Config{
		Dir:           dir,
		SyncMode:      SyncModeSync,
		BatchCount:    1,
		BatchBytes:    1,
		MaxFileSize:   DefaultMaxFileSize,
		MaxEntryCount: DefaultMaxEntryCount,
	})
	if err != nil {
		t.Fatalf("NewWriter: %v", err)
	}

	if err := w.Append(NewSetEntry(0, []byte("k2"), []byte("v2"), 2)); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	if err := VerifyTrailerChecksum(path); err != nil {
		t.Fatalf("VerifyTrailerChecksum: %v", err)
	}
}

func TestCompactor_Compact(t *testing.T) {
	dir := t.TempDir()

	for i := 1; i <= 5; i++ {
		p := filepath.Join(dir, formatSegmentFilename(uint64(i)))
		if err := os.WriteFile(p, []byte("x"), 0600); err != nil {
			t.Fatalf("write file: %v", err)
		}
	}

	c := NewCompactor(dir, WithRetainCount(3))

	snapshotOffset := uint64(4) << 32
	if err := c.Compact(snapshotOffset); err != nil {
		t.Fatalf("Compact: %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(entries) < 3 {
		t.Fatalf("remaining segments = %d, want >= 3", len(entries))
	}
}

func TestCompactor_CleanAll(t *testing.T) {
	dir := t.TempDir()

	for i := 1; i <= 3; i++ {
		p := filepath.Join(dir, formatSegmentFilename(uint64(i)))
		if err := os.WriteFile(p, []byte("test"), 0600); err != nil {
			t.Fatalf("WriteFile: %v", err)
		}
	}

	c := NewCompactor(dir)
	if err := c.CleanAll(); err != nil {
		t.Fatalf("CleanAll: %v", err)
	}

	count, _ := c.FileCount()
	if count != 0 {
		t.Fatalf("FileCount after CleanAll = %d, want 0", count)
	}
}

func TestReader_EmptyDir(t *testing.T) {
	dir := t.TempDir()

	r, err := NewReader(dir, nil)
	if err != nil {
		t.Fatalf("NewReader: %v", err)
	}
	defer r.Close()

	entries, err := r.ReadAll()
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("len(entries) = %d, want 0", len(entries))
	}
}

func TestCodec_CorruptedEntry(t *testing.T) {
	_, err := decodeEntryFrame([]byte{0, 0, 0, 0}, nil)
	if err == nil {
		t.Error("expected error for short data")
	}
}
