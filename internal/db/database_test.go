package db

import (
	"context"
	"os"
	"testing"

	"github.com/polykv/polykv-go/internal/blob"
	"github.com/polykv/polykv-go/internal/view"
)

func col1[T any](v T) view.Column[T] {
	c, _ := view.NewColumn([]T{v}, 1)
	return c
}

func TestOpen_DefaultsToMemoryBackend(t *testing.T) {
	dir := t.TempDir()
	d, st := Open(context.Background(), Config{DataDir: dir})
	if st != nil {
		t.Fatalf("Open: %v", st)
	}
	defer d.Close()

	if d.Snapshots == nil {
		t.Fatalf("expected memory backend to support snapshots")
	}
}

func TestCommit_JournalsWritesToWAL(t *testing.T) {
	dir := t.TempDir()
	cfg := DefaultConfig(dir)
	d, st := Open(context.Background(), cfg)
	if st != nil {
		t.Fatalf("Open: %v", st)
	}

	ctx := context.Background()
	tx := d.BeginTxn()
	if st := tx.Set(0, []byte("k"), []byte("v")); st != nil {
		t.Fatalf("Set: %v", st)
	}
	if st := d.Commit(ctx, tx); st != nil {
		t.Fatalf("Commit: %v", st)
	}
	if err := d.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil || len(entries) == 0 {
		t.Fatalf("expected WAL segment files in %s, err=%v entries=%v", dir, err, entries)
	}
}

func TestRecover_ReplaysWALOntoFreshMemorySubstrate(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	cfg := DefaultConfig(dir)
	d1, st := Open(ctx, cfg)
	if st != nil {
		t.Fatalf("Open: %v", st)
	}
	tx := d1.BeginTxn()
	tx.Set(0, []byte("k1"), []byte("v1"))
	if st := d1.Commit(ctx, tx); st != nil {
		t.Fatalf("Commit: %v", st)
	}
	if err := d1.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	d2, st := Open(ctx, cfg)
	if st != nil {
		t.Fatalf("re-Open: %v", st)
	}
	defer d2.Close()
	if st := d2.Recover(ctx); st != nil {
		t.Fatalf("Recover: %v", st)
	}

	val, found, err := d2.Substrate.Get(ctx, 0, []byte("k1"))
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !found || string(val) != "v1" {
		t.Fatalf("Get after recovery = (%q, %v), want (\"v1\", true)", val, found)
	}
}

func TestBeginSnapshotTxn_ReadsFrozenView(t *testing.T) {
	ctx := context.Background()
	d, st := Open(ctx, Config{Backend: BackendMemory, DataDir: t.TempDir()})
	if st != nil {
		t.Fatalf("Open: %v", st)
	}
	defer d.Close()

	tx := d.BeginTxn()
	tx.Set(0, []byte("k"), []byte("before"))
	if st := tx.Commit(ctx); st != nil {
		t.Fatalf("Commit: %v", st)
	}

	snapTx, _, release, st := d.BeginSnapshotTxn(ctx)
	if st != nil {
		t.Fatalf("BeginSnapshotTxn: %v", st)
	}
	defer release()

	liveTx := d.BeginTxn()
	liveTx.Set(0, []byte("k"), []byte("after"))
	if st := liveTx.Commit(ctx); st != nil {
		t.Fatalf("Commit (live): %v", st)
	}

	val, found, st := snapTx.Get(ctx, 0, []byte("k"))
	if st != nil {
		t.Fatalf("Get (snapshot): %v", st)
	}
	if !found || string(val) != "before" {
		t.Fatalf("snapshot read = (%q, %v), want (\"before\", true)", val, found)
	}
}

func TestGraph_WorksThroughDatabaseSubstrate(t *testing.T) {
	ctx := context.Background()
	d, st := Open(ctx, Config{Backend: BackendMemory, DataDir: t.TempDir()})
	if st != nil {
		t.Fatalf("Open: %v", st)
	}
	defer d.Close()

	g := d.Graph(0)
	if st := g.UpsertEdges(ctx, nil, []int64{1}, []int64{2}, []int64{100}); st != nil {
		t.Fatalf("UpsertEdges: %v", st)
	}
	degrees, st := g.Degree(ctx, nil, []int64{1}, 3)
	if st != nil {
		t.Fatalf("Degree: %v", st)
	}
	if degrees[0] != 1 {
		t.Fatalf("degree = %d, want 1", degrees[0])
	}
}

func TestBlob_ComposesDirectlyOverDatabaseSubstrate(t *testing.T) {
	ctx := context.Background()
	d, st := Open(ctx, Config{Backend: BackendMemory, DataDir: t.TempDir()})
	if st != nil {
		t.Fatalf("Open: %v", st)
	}
	defer d.Close()

	collections := col1(uint64(0))
	keys := col1([]byte("doc"))
	presences := view.AllPresent()
	offsets := col1[uint32](0)
	values := []byte("hello")
	lengths := col1(uint32(len(values)))

	if st := blob.Write(ctx, d.Txns, nil, collections, keys, presences, offsets, lengths, values, blob.WriteOptions{}); st != nil {
		t.Fatalf("blob.Write: %v", st)
	}

	result, st := blob.Read(ctx, d.Substrate, nil, nil, collections, keys, blob.ReadOptions{WithValues: true})
	if st != nil {
		t.Fatalf("blob.Read: %v", st)
	}
	if string(result.Values) != "hello" {
		t.Fatalf("blob.Read value = %q, want \"hello\"", result.Values)
	}
}

func TestCompactWAL_RemovesSegmentsAlreadyReflectedInSubstrate(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	cfg := DefaultConfig(dir)
	cfg.WAL.BatchCount = 1    // flush every append immediately
	cfg.WAL.MaxEntryCount = 1 // so each flush after the first rotates to a new segment
	d, st := Open(ctx, cfg)
	if st != nil {
		t.Fatalf("Open: %v", st)
	}
	defer d.Close()

	for i := 0; i < 5; i++ {
		tx := d.BeginTxn()
		if st := tx.Set(0, []byte{byte(i)}, []byte("v")); st != nil {
			t.Fatalf("Set: %v", st)
		}
		if st := d.Commit(ctx, tx); st != nil {
			t.Fatalf("Commit: %v", st)
		}
	}

	before, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(before) < 2 {
		t.Fatalf("expected multiple WAL segments before compaction, got %d", len(before))
	}

	if st := d.CompactWAL(1); st != nil {
		t.Fatalf("CompactWAL: %v", st)
	}

	after, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir after compact: %v", err)
	}
	if len(after) >= len(before) {
		t.Fatalf("expected compaction to remove segments: before=%d after=%d", len(before), len(after))
	}
}

func TestCompactWAL_NoopWithoutWAL(t *testing.T) {
	d, st := Open(context.Background(), Config{Backend: BackendMemory, DataDir: t.TempDir()})
	if st != nil {
		t.Fatalf("Open: %v", st)
	}
	defer d.Close()

	if st := d.CompactWAL(0); st != nil {
		t.Fatalf("CompactWAL on WAL-less database should be a no-op, got %v", st)
	}
}
