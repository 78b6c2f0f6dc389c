package tdm_test

import "unsafe"

// unsafeWords views 8-byte aligned storage as int32 words.
func unsafeWords(backing []uint64) []int32 {
	return unsafe.Slice((*int32)(unsafe.Pointer(&backing[0])), 2*len(backing))
}
