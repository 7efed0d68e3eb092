package document

import (
	"strconv"
	"strings"

	"github.com/polykv/polykv-go/internal/status"
)

// splitPointer breaks a JSON-Pointer (RFC 6901, e.g. "/a/b/0") into its
// unescaped tokens. The root pointer "" yields zero tokens.
func splitPointer(pointer string) ([]string, *status.Status) {
	if pointer == "" {
		return nil, nil
	}
	if pointer[0] != '/' {
		return nil, status.Newf(status.InvalidArgument, "field path %q is not a JSON-Pointer", pointer)
	}
	parts := strings.Split(pointer[1:], "/")
	for i, p := range parts {
		p = strings.ReplaceAll(p, "~1", "/")
		p = strings.ReplaceAll(p, "~0", "~")
		parts[i] = p
	}
	return parts, nil
}

// DotPath converts the original implementation's flattened dot-path
// convenience form ("a.b.0") into a canonical JSON-Pointer ("/a/b/0").
// This is a parsing convenience only; every accessor and output in this
// package works in JSON-Pointer form.
func DotPath(dotted string) string {
	if dotted == "" {
		return ""
	}
	parts := strings.Split(dotted, ".")
	for i, p := range parts {
		p = strings.ReplaceAll(p, "~", "~0")
		p = strings.ReplaceAll(p, "/", "~1")
		parts[i] = p
	}
	return "/" + strings.Join(parts, "/")
}

// GetPath resolves pointer against doc, returning the value and whether
// it was found. Array tokens must be base-10 non-negative integers.
func GetPath(doc any, pointer string) (any, bool, *status.Status) {
	tokens, st := splitPointer(pointer)
	if st != nil {
		return nil, false, st
	}

	cur := doc
	for _, tok := range tokens {
		switch node := cur.(type) {
		case map[string]any:
			v, ok := node[tok]
			if !ok {
				return nil, false, nil
			}
			cur = v
		case []any:
			idx, err := strconv.Atoi(tok)
			if err != nil || idx < 0 || idx >= len(node) {
				return nil, false, nil
			}
			cur = node[idx]
		default:
			return nil, false, nil
		}
	}
	return cur, true, nil
}

// SetPath returns a copy of doc with value written at pointer, creating
// intermediate objects as needed. Array tokens index into existing
// arrays only; SetPath never grows an array (a caller materializing a new
// array element should rewrite the whole array at its parent path).
func SetPath(doc any, pointer string, value any) (any, *status.Status) {
	tokens, st := splitPointer(pointer)
	if st != nil {
		return nil, st
	}
	if len(tokens) == 0 {
		return value, nil
	}
	return setPathRec(doc, tokens, value)
}

func setPathRec(node any, tokens []string, value any) (any, *status.Status) {
	tok := tokens[0]
	rest := tokens[1:]

	switch n := node.(type) {
	case map[string]any:
		out := make(map[string]any, len(n)+1)
		for k, v := range n {
			out[k] = v
		}
		if len(rest) == 0 {
			out[tok] = value
			return out, nil
		}
		child, st := setPathRec(out[tok], rest, value)
		if st != nil {
			return nil, st
		}
		out[tok] = child
		return out, nil
	case []any:
		idx, err := strconv.Atoi(tok)
		if err != nil || idx < 0 || idx >= len(n) {
			return nil, status.Newf(status.InvalidArgument, "array index %q out of range", tok)
		}
		out := append([]any(nil), n...)
		if len(rest) == 0 {
			out[idx] = value
			return out, nil
		}
		child, st := setPathRec(out[idx], rest, value)
		if st != nil {
			return nil, st
		}
		out[idx] = child
		return out, nil
	case nil:
		m := map[string]any{}
		if len(rest) == 0 {
			m[tok] = value
			return m, nil
		}
		child, st := setPathRec(nil, rest, value)
		if st != nil {
			return nil, st
		}
		m[tok] = child
		return m, nil
	default:
		return nil, status.Newf(status.InvalidArgument, "cannot descend into a scalar at token %q", tok)
	}
}

// Project returns a new document containing only the given field paths,
// each rooted at its own pointer (a subdocument, not flattened).
func Project(doc any, paths []string) (any, *status.Status) {
	var out any
	for _, p := range paths {
		v, ok, st := GetPath(doc, p)
		if st != nil {
			return nil, st
		}
		if !ok {
			continue
		}
		out, st = SetPath(out, p, v)
		if st != nil {
			return nil, st
		}
	}
	return out, nil
}

// Merge writes value at each path into doc, creating structure as
// needed, and returns the resulting document.
func Merge(doc any, paths []string, values []any) (any, *status.Status) {
	if len(paths) != len(values) {
		return nil, status.New(status.InvalidArgument, "paths and values must have the same length")
	}
	cur := doc
	for i, p := range paths {
		var st *status.Status
		cur, st = SetPath(cur, p, values[i])
		if st != nil {
			return nil, st
		}
	}
	return cur, nil
}
