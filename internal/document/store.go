package document

import (
	"context"

	"github.com/polykv/polykv-go/internal/blob"
	"github.com/polykv/polykv-go/internal/status"
	"github.com/polykv/polykv-go/internal/substrate"
	"github.com/polykv/polykv-go/internal/txn"
	"github.com/polykv/polykv-go/internal/view"
)

// Store implements document reads and writes on top of the blob layer,
// so every document operation inherits blob's transactional and
// snapshot-read semantics for free.
type Store struct {
	eng substrate.Engine
	mgr *txn.Manager
}

// NewStore returns a Store persisting documents (in canonical form)
// through eng. Non-transactional writes go through mgr so they still
// serialize against watching transactions.
func NewStore(eng substrate.Engine, mgr *txn.Manager) *Store {
	return &Store{eng: eng, mgr: mgr}
}

func col1[T any](v T) view.Column[T] {
	c, _ := view.NewColumn([]T{v}, 1)
	return c
}

// Get reads the document at (collection, key) and returns it re-encoded
// in format. If fieldPaths is non-empty, only those JSON-Pointer paths
// are projected into the result instead of the whole document.
func (s *Store) Get(
	ctx context.Context,
	tx *txn.Txn,
	snap substrate.Engine,
	collection uint64,
	key []byte,
	format Format,
	fieldPaths []string,
) ([]byte, bool, *status.Status) {
	result, st := blob.Read(ctx, s.eng, tx, snap, col1(collection), col1(key), blob.ReadOptions{WithValues: true})
	if st != nil {
		return nil, false, st
	}
	if !result.Presence.At(0) {
		return nil, false, nil
	}

	canonical, st := decodeMsgPack(result.Values)
	if st != nil {
		return nil, false, st
	}

	doc := canonical
	if len(fieldPaths) > 0 {
		doc, st = Project(doc, fieldPaths)
		if st != nil {
			return nil, false, st
		}
	}

	out, st := Encode(doc, format)
	if st != nil {
		return nil, false, st
	}
	return out, true, nil
}

// Put writes payload (in format) to (collection, key).
//
//   - For a plain format (JSON/MsgPack/BSON/CBOR/UBJSON) with no
//     fieldPaths, the document is replaced wholesale.
//   - With fieldPaths, payload's decoded value(s) are merged into the
//     existing document at those paths instead of replacing it (the
//     document is read first, so this always goes through a
//     read-modify-write even outside an explicit transaction).
//   - With format JSONPatch or MergePatch, payload is applied in place
//     against the existing stored document per RFC 6902/7386.
func (s *Store) Put(
	ctx context.Context,
	tx *txn.Txn,
	collection uint64,
	key []byte,
	payload []byte,
	format Format,
	fieldPaths []string,
) *status.Status {
	var doc any

	switch format {
	case FormatJSONPatch, FormatMergePatch:
		existing, st := s.readCanonical(ctx, tx, collection, key)
		if st != nil {
			return st
		}
		if format == FormatJSONPatch {
			doc, st = ApplyPatch(existing, payload)
		} else {
			doc, st = ApplyMergePatch(existing, payload)
		}
		if st != nil {
			return st
		}
	default:
		decoded, st := Decode(payload, format)
		if st != nil {
			return st
		}
		if len(fieldPaths) == 0 {
			doc = decoded
		} else {
			existing, st := s.readCanonical(ctx, tx, collection, key)
			if st != nil {
				return st
			}
			values := fieldPaths
			vals := make([]any, len(values))
			for i := range values {
				v, _, st := GetPath(decoded, values[i])
				if st != nil {
					return st
				}
				vals[i] = v
			}
			doc, st = Merge(existing, fieldPaths, vals)
			if st != nil {
				return st
			}
		}
	}

	canonical, st := encodeMsgPack(doc)
	if st != nil {
		return st
	}

	offsets := col1[uint32](0)
	lengths := col1(uint32(len(canonical)))
	return blob.Write(ctx, s.mgr, tx, col1(collection), col1(key), view.AllPresent(), offsets, lengths, canonical, blob.WriteOptions{})
}

// PutSampled behaves like Put but derives the storage key from the
// decoded payload at the JSON-Pointer idField instead of taking one from
// the caller, matching id_field sampling. The key actually used is
// returned so the caller can report it back.
func (s *Store) PutSampled(
	ctx context.Context,
	tx *txn.Txn,
	collection uint64,
	payload []byte,
	format Format,
	idField string,
) ([]byte, *status.Status) {
	decoded, st := Decode(payload, format)
	if st != nil {
		return nil, st
	}
	v, ok, st := GetPath(decoded, idField)
	if st != nil {
		return nil, st
	}
	if !ok {
		return nil, status.Newf(status.InvalidArgument, "id_field %q not present in payload", idField)
	}
	key, ok := v.(string)
	if !ok {
		return nil, status.Newf(status.InvalidArgument, "id_field %q is not a string", idField)
	}

	if st := s.Put(ctx, tx, collection, []byte(key), payload, format, nil); st != nil {
		return nil, st
	}
	return []byte(key), nil
}

func (s *Store) readCanonical(ctx context.Context, tx *txn.Txn, collection uint64, key []byte) (any, *status.Status) {
	result, st := blob.Read(ctx, s.eng, tx, nil, col1(collection), col1(key), blob.ReadOptions{WithValues: true})
	if st != nil {
		return nil, st
	}
	if !result.Presence.At(0) {
		return map[string]any{}, nil
	}
	return decodeMsgPack(result.Values)
}
