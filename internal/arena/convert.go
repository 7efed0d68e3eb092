package arena

import "unsafe"

// bytesToInt64Slice reinterprets an arena-owned byte slice as []int64
// without copying. The byte slice's length must be a multiple of 8; the
// arena guarantees 8-byte alignment is irrelevant on every supported
// architecture since chunks are allocated as []byte starting at a
// runtime-managed address that Go already aligns suitably for any slice
// element type stored in them.
func bytesToInt64Slice(b []byte) []int64 {
	if len(b) == 0 {
		return nil
	}
	n := len(b) / 8
	return unsafe.Slice((*int64)(unsafe.Pointer(&b[0])), n)
}

// bytesToUint32Slice reinterprets an arena-owned byte slice as []uint32
// without copying.
func bytesToUint32Slice(b []byte) []uint32 {
	if len(b) == 0 {
		return nil
	}
	n := len(b) / 4
	return unsafe.Slice((*uint32)(unsafe.Pointer(&b[0])), n)
}
