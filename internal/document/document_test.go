package document

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/polykv/polykv-go/internal/substrate"
	"github.com/polykv/polykv-go/internal/txn"
)

func newTestStore() *Store {
	eng := substrate.NewMemory()
	return NewStore(eng, txn.NewManager(eng))
}

func TestCodec_JSONRoundTrip(t *testing.T) {
	payload := []byte(`{"a":1,"b":"two","c":[1,2,3]}`)
	doc, st := Decode(payload, FormatJSON)
	if st != nil {
		t.Fatalf("Decode: %v", st)
	}
	out, st := Encode(doc, FormatJSON)
	if st != nil {
		t.Fatalf("Encode: %v", st)
	}
	roundTripped, st := Decode(out, FormatJSON)
	if st != nil {
		t.Fatalf("Decode (2): %v", st)
	}
	m := roundTripped.(map[string]any)
	if m["b"] != "two" {
		t.Fatalf("b = %v, want two", m["b"])
	}
}

func TestCodec_MsgPackRoundTrip(t *testing.T) {
	doc := map[string]any{"x": "y", "n": int64(42)}
	packed, st := Encode(doc, FormatMsgPack)
	if st != nil {
		t.Fatalf("Encode: %v", st)
	}
	back, st := Decode(packed, FormatMsgPack)
	if st != nil {
		t.Fatalf("Decode: %v", st)
	}
	m := back.(map[string]any)
	if m["x"] != "y" {
		t.Fatalf("x = %v, want y", m["x"])
	}
}

func TestCodec_CBORRoundTrip(t *testing.T) {
	doc := map[string]any{"k": "v"}
	enc, st := Encode(doc, FormatCBOR)
	if st != nil {
		t.Fatalf("Encode: %v", st)
	}
	back, st := Decode(enc, FormatCBOR)
	if st != nil {
		t.Fatalf("Decode: %v", st)
	}
	if back.(map[string]any)["k"] != "v" {
		t.Fatalf("mismatch: %v", back)
	}
}

func TestCodec_UBJSONRoundTrip(t *testing.T) {
	doc := map[string]any{"name": "alice", "age": int64(30), "tags": []any{"a", "b"}}
	enc, st := Encode(doc, FormatUBJSON)
	if st != nil {
		t.Fatalf("Encode: %v", st)
	}
	back, st := Decode(enc, FormatUBJSON)
	if st != nil {
		t.Fatalf("Decode: %v", st)
	}
	m := back.(map[string]any)
	if m["name"] != "alice" {
		t.Fatalf("name = %v, want alice", m["name"])
	}
	tags := m["tags"].([]any)
	if len(tags) != 2 || tags[0] != "a" {
		t.Fatalf("tags = %v", tags)
	}
}

func TestCodec_BSONRoundTrip(t *testing.T) {
	doc := map[string]any{"hello": "world"}
	enc, st := Encode(doc, FormatBSON)
	if st != nil {
		t.Fatalf("Encode: %v", st)
	}
	back, st := Decode(enc, FormatBSON)
	if st != nil {
		t.Fatalf("Decode: %v", st)
	}
	if back.(map[string]any)["hello"] != "world" {
		t.Fatalf("mismatch: %v", back)
	}
}

func TestPath_GetAndSetRoundTrip(t *testing.T) {
	doc := map[string]any{"a": map[string]any{"b": []any{1, 2, 3}}}
	v, ok, st := GetPath(doc, "/a/b/1")
	if st != nil || !ok || v != 2 {
		t.Fatalf("GetPath = %v, %v, %v; want 2, true, nil", v, ok, st)
	}

	updated, st := SetPath(doc, "/a/b/1", 99)
	if st != nil {
		t.Fatalf("SetPath: %v", st)
	}
	v2, _, _ := GetPath(updated, "/a/b/1")
	if v2 != 99 {
		t.Fatalf("after SetPath = %v, want 99", v2)
	}
	v3, _, _ := GetPath(doc, "/a/b/1")
	if v3 != 2 {
		t.Fatalf("original document mutated: %v", v3)
	}
}

func TestPath_DotPathConvertsToPointer(t *testing.T) {
	if got := DotPath("a.b.0"); got != "/a/b/0" {
		t.Fatalf("DotPath = %q, want /a/b/0", got)
	}
}

func TestPath_ProjectSelectsOnlyRequestedPaths(t *testing.T) {
	doc := map[string]any{"a": 1, "b": 2, "c": map[string]any{"d": 3}}
	projected, st := Project(doc, []string{"/a", "/c/d"})
	if st != nil {
		t.Fatalf("Project: %v", st)
	}
	m := projected.(map[string]any)
	if _, ok := m["b"]; ok {
		t.Fatalf("expected b excluded from projection")
	}
	if m["a"] != 1 {
		t.Fatalf("a = %v, want 1", m["a"])
	}
	c := m["c"].(map[string]any)
	if c["d"] != 3 {
		t.Fatalf("c/d = %v, want 3", c["d"])
	}
}

func TestPatch_JSONPatchApplies(t *testing.T) {
	doc := map[string]any{"a": 1}
	patch := []byte(`[{"op":"replace","path":"/a","value":2},{"op":"add","path":"/b","value":3}]`)
	out, st := ApplyPatch(doc, patch)
	if st != nil {
		t.Fatalf("ApplyPatch: %v", st)
	}
	m := out.(map[string]any)
	if m["a"] != json.Number("2") || m["b"] != json.Number("3") {
		t.Fatalf("unexpected result: %v", m)
	}
}

func TestPatch_MergePatchApplies(t *testing.T) {
	doc := map[string]any{"a": 1, "b": 2}
	merge := []byte(`{"b":null,"c":3}`)
	out, st := ApplyMergePatch(doc, merge)
	if st != nil {
		t.Fatalf("ApplyMergePatch: %v", st)
	}
	m := out.(map[string]any)
	if _, ok := m["b"]; ok {
		t.Fatalf("expected b removed by null merge value")
	}
	if m["c"] != json.Number("3") {
		t.Fatalf("c = %v, want 3", m["c"])
	}
}

func TestGist_UnionsFieldPathsAcrossDocs(t *testing.T) {
	docs := []any{
		map[string]any{"a": 1, "b": 2},
		map[string]any{"a": 1, "c": 3},
	}
	paths := Gist(docs)
	seen := map[string]bool{}
	for _, p := range paths {
		seen[p] = true
	}
	for _, want := range []string{"/a", "/b", "/c"} {
		if !seen[want] {
			t.Fatalf("Gist missing %q, got %v", want, paths)
		}
	}
}

func TestGather_ProjectsColumnsWithValidityAndCoercion(t *testing.T) {
	docs := []any{
		map[string]any{"age": int64(30)},
		map[string]any{"age": "40"},
		map[string]any{"name": "no age here"},
	}
	cols, st := Gather(docs, []GatherRequest{{Path: "/age", Type: CellInt64}})
	if st != nil {
		t.Fatalf("Gather: %v", st)
	}
	col := cols[0]
	if !col.Valid[0] || col.Converted[0] {
		t.Fatalf("doc0: Valid=%v Converted=%v, want true,false", col.Valid[0], col.Converted[0])
	}
	if !col.Valid[1] || !col.Converted[1] {
		t.Fatalf("doc1: Valid=%v Converted=%v, want true,true", col.Valid[1], col.Converted[1])
	}
	if col.Valid[2] {
		t.Fatalf("doc2: expected invalid (no /age path)")
	}
}

func TestStore_PutThenGetRoundTrips(t *testing.T) {
	ctx := context.Background()
	store := newTestStore()

	payload := []byte(`{"name":"bob","age":25}`)
	if st := store.Put(ctx, nil, 0, []byte("user:1"), payload, FormatJSON, nil); st != nil {
		t.Fatalf("Put: %v", st)
	}

	out, found, st := store.Get(ctx, nil, nil, 0, []byte("user:1"), FormatJSON, nil)
	if st != nil || !found {
		t.Fatalf("Get: found=%v st=%v", found, st)
	}
	back, _ := Decode(out, FormatJSON)
	m := back.(map[string]any)
	if m["name"] != "bob" {
		t.Fatalf("name = %v, want bob", m["name"])
	}
}

func TestStore_PutSampledDerivesKeyFromIDField(t *testing.T) {
	ctx := context.Background()
	store := newTestStore()

	payload := []byte(`{"id":"abc123","value":7}`)
	key, st := store.PutSampled(ctx, nil, 0, payload, FormatJSON, "/id")
	if st != nil {
		t.Fatalf("PutSampled: %v", st)
	}
	if string(key) != "abc123" {
		t.Fatalf("key = %q, want abc123", key)
	}

	_, found, st := store.Get(ctx, nil, nil, 0, []byte("abc123"), FormatJSON, nil)
	if st != nil || !found {
		t.Fatalf("Get after PutSampled: found=%v st=%v", found, st)
	}
}

func TestStore_PutWithMergePatchFormat(t *testing.T) {
	ctx := context.Background()
	store := newTestStore()

	store.Put(ctx, nil, 0, []byte("doc"), []byte(`{"a":1,"b":2}`), FormatJSON, nil)
	st := store.Put(ctx, nil, 0, []byte("doc"), []byte(`{"b":null,"c":3}`), FormatMergePatch, nil)
	if st != nil {
		t.Fatalf("Put (merge patch): %v", st)
	}

	out, _, _ := store.Get(ctx, nil, nil, 0, []byte("doc"), FormatJSON, nil)
	back, _ := Decode(out, FormatJSON)
	m := back.(map[string]any)
	if _, ok := m["b"]; ok {
		t.Fatalf("expected b removed")
	}
	if m["c"] != json.Number("3") {
		t.Fatalf("c = %v, want 3", m["c"])
	}
}
