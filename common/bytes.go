package common

import "unsafe"

// SliceToBytes converts any slice to a byte slice for GPU buffer uploads.
// Uses unsafe pointer operations to create a view into the original data.
// WARNING: The returned slice shares memory with the input - do not modify.
//
// Parameters:
//   - data: source slice of any type
//
// Returns:
//   - []byte: byte slice view of the input data, or nil if input is empty
func SliceToBytes[T any](data []T) []byte {
	if len(data) == 0 {
		return nil
	}
	var zero T
	size := unsafe.Sizeof(zero)
	totalBytes := int(size) * len(data)
	return unsafe.Slice((*byte)(unsafe.Pointer(&data[0])), totalBytes)
}

// ByteSize returns the number of bytes occupied by the elements of a slice.
//
// Parameters:
//   - data: source slice of any type
//
// Returns:
//   - uint32: len(data) multiplied by the element size
func ByteSize[T any](data []T) uint32 {
	var zero T
	return uint32(unsafe.Sizeof(zero)) * uint32(len(data))
}
