package arena

import "testing"

func TestArena_AllocDistinctRegions(t *testing.T) {
	a := NewSized(16)
	x := a.Alloc(8)
	y := a.Alloc(8)
	for i := range x {
		x[i] = 0xAA
	}
	for i := range y {
		y[i] = 0xBB
	}
	for i, b := range x {
		if b != 0xAA {
			t.Fatalf("x[%d] corrupted by y allocation: %x", i, b)
		}
	}
}

func TestArena_GrowsAcrossChunks(t *testing.T) {
	a := NewSized(8)
	total := 0
	for i := 0; i < 100; i++ {
		b := a.Alloc(8)
		total += len(b)
	}
	if total != 800 {
		t.Fatalf("total allocated = %d, want 800", total)
	}
	stats := a.Stats()
	if stats.Chunks < 10 {
		t.Fatalf("expected multiple chunks, got %d", stats.Chunks)
	}
}

func TestArena_ResetReusesChunks(t *testing.T) {
	a := NewSized(64)
	a.Alloc(32)
	before := a.Stats().Chunks

	a.Reset()
	a.Alloc(32)
	after := a.Stats().Chunks

	if before != after {
		t.Fatalf("Reset should reuse chunks: before=%d after=%d", before, after)
	}
}

func TestArena_ReleaseDropsChunks(t *testing.T) {
	a := NewSized(64)
	a.Alloc(32)
	a.Release()
	if stats := a.Stats(); stats.Chunks != 0 {
		t.Fatalf("expected 0 chunks after Release, got %d", stats.Chunks)
	}
}

func TestArena_AppendCopiesInput(t *testing.T) {
	a := New()
	src := []byte("purpose of life")
	got := a.Append(src)
	src[0] = 'X'
	if string(got) != "purpose of life" {
		t.Fatalf("Append aliased caller's buffer: got %q", got)
	}
}

func TestArena_AllocInt64sRoundTrip(t *testing.T) {
	a := New()
	s := AllocInt64s(a, 3)
	s[0], s[1], s[2] = 1, -2, 42
	if s[0] != 1 || s[1] != -2 || s[2] != 42 {
		t.Fatalf("AllocInt64s values = %v", s)
	}
}

func TestArena_CheckedAllocRejectsOversize(t *testing.T) {
	a := New()
	_, st := a.CheckedAlloc(1<<20, 1024)
	if st == nil {
		t.Fatalf("expected out-of-memory status")
	}
}
