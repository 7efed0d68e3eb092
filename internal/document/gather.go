package document

import (
	"encoding/json"
	"strconv"

	"github.com/polykv/polykv-go/internal/status"
)

// CellType is the requested output type for one gather column.
type CellType int

const (
	CellAny CellType = iota
	CellString
	CellInt64
	CellFloat64
	CellBool
)

// GatherRequest is one (path, type) column request.
type GatherRequest struct {
	Path string
	Type CellType
}

// GatherColumn is one output column: one cell per input document, in the
// same order as the docs slice passed to Gather.
type GatherColumn struct {
	Path       string
	Values     []any
	Valid      []bool // per-cell presence: the path resolved to a value
	Converted  []bool // per-cell: a type coercion was applied to get Values[i]
}

// Gather projects each request's path across docs into one column, with
// per-cell validity and (for non-Any requests) type coercion. A coerced
// numeric<->string conversion sets Converted[i]; a cell whose value could
// not be coerced to the requested type is left invalid rather than
// erroring the whole batch, mirroring the original implementation's
// per-cell (not per-batch) failure granularity.
func Gather(docs []any, requests []GatherRequest) ([]GatherColumn, *status.Status) {
	columns := make([]GatherColumn, len(requests))
	for ci, req := range requests {
		col := GatherColumn{
			Path:      req.Path,
			Values:    make([]any, len(docs)),
			Valid:     make([]bool, len(docs)),
			Converted: make([]bool, len(docs)),
		}
		for di, d := range docs {
			v, ok, st := GetPath(d, req.Path)
			if st != nil {
				return nil, st
			}
			if !ok {
				continue
			}
			coerced, converted, ok := coerce(v, req.Type)
			if !ok {
				continue
			}
			col.Values[di] = coerced
			col.Valid[di] = true
			col.Converted[di] = converted
		}
		columns[ci] = col
	}
	return columns, nil
}

// coerce converts v to the requested CellType, reporting whether the
// conversion changed the value's kind (Converted: a string<->number or
// bool->string crossing, or a fractional number truncated to int64) and
// whether it succeeded at all.
func coerce(v any, want CellType) (out any, converted bool, ok bool) {
	if want == CellAny {
		return v, false, true
	}

	switch want {
	case CellString:
		switch t := v.(type) {
		case string:
			return t, false, true
		case json.Number:
			return t.String(), true, true
		case bool:
			return strconv.FormatBool(t), true, true
		}
	case CellInt64:
		switch t := v.(type) {
		case int64:
			return t, false, true
		case json.Number:
			if i, err := t.Int64(); err == nil {
				return i, false, true
			}
			if f, err := t.Float64(); err == nil {
				return int64(f), true, true
			}
		case string:
			if i, err := strconv.ParseInt(t, 10, 64); err == nil {
				return i, true, true
			}
		}
	case CellFloat64:
		switch t := v.(type) {
		case json.Number:
			if f, err := t.Float64(); err == nil {
				return f, false, true
			}
		case string:
			if f, err := strconv.ParseFloat(t, 64); err == nil {
				return f, true, true
			}
		}
	case CellBool:
		switch t := v.(type) {
		case bool:
			return t, false, true
		case string:
			if b, err := strconv.ParseBool(t); err == nil {
				return b, true, true
			}
		}
	}
	return nil, false, false
}
