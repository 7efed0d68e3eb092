package document

import (
	"bytes"
	"encoding/json"
	"reflect"

	"github.com/fxamacker/cbor/v2"
	msgpack "github.com/hashicorp/go-msgpack/v2/codec"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/polykv/polykv-go/internal/status"
)

// Format names an on-the-wire document encoding. The canonical internal
// representation (what blob.Write actually stores) is always Canonical.
type Format string

const (
	FormatJSON       Format = "json"
	FormatMsgPack    Format = "msgpack"
	FormatBSON       Format = "bson"
	FormatCBOR       Format = "cbor"
	FormatUBJSON     Format = "ubjson"
	FormatJSONPatch  Format = "json_patch"
	FormatMergePatch Format = "json_merge_patch"
	FormatCanonical         = FormatMsgPack
)

var mpHandle = newMsgpackHandle()

var cborDecMode, _ = cbor.DecOptions{
	DefaultMapType: reflect.TypeOf(map[string]any(nil)),
}.DecMode()

// Decode parses payload (in the given wire Format) into the canonical
// in-memory tree: nested map[string]any / []any / json.Number / string /
// bool / nil. JSON and UBJSON numbers decode as json.Number so an integer
// is never silently narrowed to float64; MessagePack, BSON and CBOR
// numbers keep the Go integer or float type their codec produces.
func Decode(payload []byte, format Format) (any, *status.Status) {
	switch format {
	case FormatJSON:
		return decodeJSON(payload)
	case FormatMsgPack:
		return decodeMsgPack(payload)
	case FormatBSON:
		return decodeBSON(payload)
	case FormatCBOR:
		return decodeCBOR(payload)
	case FormatUBJSON:
		return decodeUBJSON(payload)
	default:
		return nil, status.Newf(status.InvalidArgument, "unsupported document format %q for decode", format)
	}
}

// Encode serializes the canonical in-memory tree to the requested wire
// Format.
func Encode(doc any, format Format) ([]byte, *status.Status) {
	switch format {
	case FormatJSON:
		return encodeJSON(doc)
	case FormatMsgPack:
		return encodeMsgPack(doc)
	case FormatBSON:
		return encodeBSON(doc)
	case FormatCBOR:
		return encodeCBOR(doc)
	case FormatUBJSON:
		return encodeUBJSON(doc)
	default:
		return nil, status.Newf(status.InvalidArgument, "unsupported document format %q for encode", format)
	}
}

func decodeJSON(payload []byte) (any, *status.Status) {
	dec := json.NewDecoder(bytes.NewReader(payload))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, status.Wrap(status.InvalidArgument, err)
	}
	return v, nil
}

func encodeJSON(doc any) ([]byte, *status.Status) {
	b, err := json.Marshal(doc)
	if err != nil {
		return nil, status.Wrap(status.InvalidArgument, err)
	}
	return b, nil
}

func newMsgpackHandle() *msgpack.MsgpackHandle {
	h := &msgpack.MsgpackHandle{}
	h.RawToString = true
	return h
}

func decodeMsgPack(payload []byte) (any, *status.Status) {
	var v any
	dec := msgpack.NewDecoderBytes(payload, mpHandle)
	if err := dec.Decode(&v); err != nil {
		return nil, status.Wrap(status.InvalidArgument, err)
	}
	return normalize(v), nil
}

func encodeMsgPack(doc any) ([]byte, *status.Status) {
	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf, mpHandle)
	if err := enc.Encode(doc); err != nil {
		return nil, status.Wrap(status.InvalidArgument, err)
	}
	return buf.Bytes(), nil
}

func decodeBSON(payload []byte) (any, *status.Status) {
	var v bson.M
	if err := bson.Unmarshal(payload, &v); err != nil {
		return nil, status.Wrap(status.InvalidArgument, err)
	}
	return normalize(map[string]any(v)), nil
}

func encodeBSON(doc any) ([]byte, *status.Status) {
	m, ok := doc.(map[string]any)
	if !ok {
		return nil, status.New(status.InvalidArgument, "bson encoding requires an object at the document root")
	}
	b, err := bson.Marshal(bson.M(m))
	if err != nil {
		return nil, status.Wrap(status.InvalidArgument, err)
	}
	return b, nil
}

func decodeCBOR(payload []byte) (any, *status.Status) {
	var v any
	if err := cborDecMode.Unmarshal(payload, &v); err != nil {
		return nil, status.Wrap(status.InvalidArgument, err)
	}
	return normalize(v), nil
}

func encodeCBOR(doc any) ([]byte, *status.Status) {
	b, err := cbor.Marshal(doc)
	if err != nil {
		return nil, status.Wrap(status.InvalidArgument, err)
	}
	return b, nil
}
