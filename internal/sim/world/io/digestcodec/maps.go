package digestcodec

import "sort"

// WriteSortedIntMap emits a key-sorted encoding, skipping zero values.
func WriteSortedIntMap[K ~uint8 | ~int](w Writer, tmp *[8]byte, m map[K]int) {
	keys := make([]K, 0, len(m))
	for k, v := range m {
		if v != 0 {
			keys = append(keys, k)
		}
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	for _, k := range keys {
		WriteU64(w, tmp, uint64(k))
		WriteI64(w, tmp, int64(m[k]))
	}
}
