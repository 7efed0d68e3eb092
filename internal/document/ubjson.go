package document

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"

	"github.com/polykv/polykv-go/internal/status"
)

// UBJSON (Universal Binary JSON) has no maintained Go library in the
// reference stack this module is built against, so this is a direct
// stdlib implementation of the non-optimized container subset of the
// spec (https://ubjson.org): null/bool/int8/uint8/int16/int32/int64/
// float32/float64/string/array/object markers, arrays and objects
// terminated by their close marker rather than length-prefixed. This is
// the one wire format in this package without a grounded third-party
// codec behind it.
const (
	ubNull   = 'Z'
	ubTrue   = 'T'
	ubFalse  = 'F'
	ubInt8   = 'i'
	ubUInt8  = 'U'
	ubInt16  = 'I'
	ubInt32  = 'l'
	ubInt64  = 'L'
	ubFloat  = 'd'
	ubDouble = 'D'
	ubChar   = 'C'
	ubString = 'S'
	ubArrayS = '['
	ubArrayE = ']'
	ubObjS   = '{'
	ubObjE   = '}'
)

func encodeUBJSON(doc any) ([]byte, *status.Status) {
	var buf bytes.Buffer
	if err := ubWrite(&buf, doc); err != nil {
		return nil, status.Wrap(status.InvalidArgument, err)
	}
	return buf.Bytes(), nil
}

func ubWrite(buf *bytes.Buffer, v any) error {
	switch t := v.(type) {
	case nil:
		buf.WriteByte(ubNull)
	case bool:
		if t {
			buf.WriteByte(ubTrue)
		} else {
			buf.WriteByte(ubFalse)
		}
	case string:
		ubWriteString(buf, t)
	case json.Number:
		return ubWriteNumber(buf, t)
	case float64:
		return ubWriteNumber(buf, json.Number(fmt.Sprintf("%v", t)))
	case int:
		return ubWriteNumber(buf, json.Number(fmt.Sprintf("%d", t)))
	case int64:
		return ubWriteNumber(buf, json.Number(fmt.Sprintf("%d", t)))
	case []any:
		buf.WriteByte(ubArrayS)
		for _, elem := range t {
			if err := ubWrite(buf, elem); err != nil {
				return err
			}
		}
		buf.WriteByte(ubArrayE)
	case map[string]any:
		buf.WriteByte(ubObjS)
		for k, vv := range t {
			ubWriteRawString(buf, k)
			if err := ubWrite(buf, vv); err != nil {
				return err
			}
		}
		buf.WriteByte(ubObjE)
	default:
		return fmt.Errorf("ubjson: unsupported value type %T", v)
	}
	return nil
}

func ubWriteString(buf *bytes.Buffer, s string) {
	buf.WriteByte(ubString)
	ubWriteRawString(buf, s)
}

// ubWriteRawString writes a length-prefixed string without the leading
// 'S' type marker, used both for values and for object keys (object keys
// are always strings and UBJSON omits the redundant marker for them).
func ubWriteRawString(buf *bytes.Buffer, s string) {
	buf.WriteByte(ubInt32)
	binary.Write(buf, binary.BigEndian, int32(len(s)))
	buf.WriteString(s)
}

func ubWriteNumber(buf *bytes.Buffer, n json.Number) error {
	if i, err := n.Int64(); err == nil {
		switch {
		case i >= math.MinInt8 && i <= math.MaxInt8:
			buf.WriteByte(ubInt8)
			buf.WriteByte(byte(int8(i)))
		case i >= 0 && i <= math.MaxUint8:
			buf.WriteByte(ubUInt8)
			buf.WriteByte(byte(i))
		case i >= math.MinInt16 && i <= math.MaxInt16:
			buf.WriteByte(ubInt16)
			binary.Write(buf, binary.BigEndian, int16(i))
		case i >= math.MinInt32 && i <= math.MaxInt32:
			buf.WriteByte(ubInt32)
			binary.Write(buf, binary.BigEndian, int32(i))
		default:
			buf.WriteByte(ubInt64)
			binary.Write(buf, binary.BigEndian, i)
		}
		return nil
	}
	f, err := n.Float64()
	if err != nil {
		return err
	}
	buf.WriteByte(ubDouble)
	return binary.Write(buf, binary.BigEndian, f)
}

func decodeUBJSON(payload []byte) (any, *status.Status) {
	r := &ubReader{buf: payload}
	v, err := r.readValue()
	if err != nil {
		return nil, status.Wrap(status.InvalidArgument, err)
	}
	return v, nil
}

type ubReader struct {
	buf []byte
	pos int
}

func (r *ubReader) readByte() (byte, error) {
	if r.pos >= len(r.buf) {
		return 0, fmt.Errorf("ubjson: unexpected end of input")
	}
	b := r.buf[r.pos]
	r.pos++
	return b, nil
}

func (r *ubReader) readN(n int) ([]byte, error) {
	if r.pos+n > len(r.buf) {
		return nil, fmt.Errorf("ubjson: unexpected end of input")
	}
	b := r.buf[r.pos : r.pos+n]
	r.pos += n
	return b, nil
}

func (r *ubReader) readValue() (any, error) {
	marker, err := r.readByte()
	if err != nil {
		return nil, err
	}
	return r.readValueFor(marker)
}

func (r *ubReader) readValueFor(marker byte) (any, error) {
	switch marker {
	case ubNull:
		return nil, nil
	case ubTrue:
		return true, nil
	case ubFalse:
		return false, nil
	case ubInt8:
		b, err := r.readByte()
		return json.Number(fmt.Sprintf("%d", int8(b))), err
	case ubUInt8:
		b, err := r.readByte()
		return json.Number(fmt.Sprintf("%d", b)), err
	case ubInt16:
		b, err := r.readN(2)
		if err != nil {
			return nil, err
		}
		return json.Number(fmt.Sprintf("%d", int16(binary.BigEndian.Uint16(b)))), nil
	case ubInt32:
		b, err := r.readN(4)
		if err != nil {
			return nil, err
		}
		return json.Number(fmt.Sprintf("%d", int32(binary.BigEndian.Uint32(b)))), nil
	case ubInt64:
		b, err := r.readN(8)
		if err != nil {
			return nil, err
		}
		return json.Number(fmt.Sprintf("%d", int64(binary.BigEndian.Uint64(b)))), nil
	case ubFloat:
		b, err := r.readN(4)
		if err != nil {
			return nil, err
		}
		return json.Number(fmt.Sprintf("%v", math.Float32frombits(binary.BigEndian.Uint32(b)))), nil
	case ubDouble:
		b, err := r.readN(8)
		if err != nil {
			return nil, err
		}
		return json.Number(fmt.Sprintf("%v", math.Float64frombits(binary.BigEndian.Uint64(b)))), nil
	case ubChar:
		b, err := r.readByte()
		return string(rune(b)), err
	case ubString:
		return r.readRawString()
	case ubArrayS:
		var out []any
		for {
			m, err := r.readByte()
			if err != nil {
				return nil, err
			}
			if m == ubArrayE {
				break
			}
			v, err := r.readValueFor(m)
			if err != nil {
				return nil, err
			}
			out = append(out, v)
		}
		return out, nil
	case ubObjS:
		out := map[string]any{}
		for {
			m, err := r.readByte()
			if err != nil {
				return nil, err
			}
			if m == ubObjE {
				break
			}
			key, err := r.readRawStringFor(m)
			if err != nil {
				return nil, err
			}
			v, err := r.readValue()
			if err != nil {
				return nil, err
			}
			out[key] = v
		}
		return out, nil
	default:
		return nil, fmt.Errorf("ubjson: unknown type marker %q", marker)
	}
}

func (r *ubReader) readRawString() (string, error) {
	m, err := r.readByte()
	if err != nil {
		return "", err
	}
	return r.readRawStringFor(m)
}

// readRawStringFor reads a length-prefixed string whose length marker has
// already been consumed as m (used for both "S"-tagged values and
// unmarked object keys).
func (r *ubReader) readRawStringFor(m byte) (string, error) {
	lenVal, err := r.readValueFor(m)
	if err != nil {
		return "", err
	}
	n, ok := lenVal.(json.Number)
	if !ok {
		return "", fmt.Errorf("ubjson: expected integer string length")
	}
	length, err := n.Int64()
	if err != nil {
		return "", err
	}
	b, err := r.readN(int(length))
	if err != nil {
		return "", err
	}
	return string(b), nil
}
