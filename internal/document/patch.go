package document

import (
	jsonpatch "github.com/evanphx/json-patch"

	"github.com/polykv/polykv-go/internal/status"
)

// ApplyPatch applies an RFC 6902 JSON Patch (a JSON array of operations)
// to doc and returns the resulting canonical document.
func ApplyPatch(doc any, patchPayload []byte) (any, *status.Status) {
	docJSON, st := encodeJSON(doc)
	if st != nil {
		return nil, st
	}

	patch, err := jsonpatch.DecodePatch(patchPayload)
	if err != nil {
		return nil, status.Wrap(status.InvalidArgument, err)
	}
	applied, err := patch.Apply(docJSON)
	if err != nil {
		return nil, status.Wrap(status.InvalidArgument, err)
	}

	return decodeJSON(applied)
}

// ApplyMergePatch applies an RFC 7386 JSON Merge Patch to doc and returns
// the resulting canonical document.
func ApplyMergePatch(doc any, mergePayload []byte) (any, *status.Status) {
	docJSON, st := encodeJSON(doc)
	if st != nil {
		return nil, st
	}

	merged, err := jsonpatch.MergePatch(docJSON, mergePayload)
	if err != nil {
		return nil, status.Wrap(status.InvalidArgument, err)
	}

	return decodeJSON(merged)
}
