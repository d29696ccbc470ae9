package meta

import (
	"fmt"
	"hash/fnv"
)

// HashLower returns the 32-bit FNV-1a hash of name with ASCII letters
// lowercased, the hash the game uses for class and property names.
func HashLower(name string) uint32 {
	lowered := []byte(name)
	for i, c := range lowered {
		if 'A' <= c && c <= 'Z' {
			lowered[i] = c + ('a' - 'A')
		}
	}
	h := fnv.New32a()
	_, _ = h.Write(lowered)
	return h.Sum32()
}

// ClassKey returns the key under which the dump stores the class name:
// its lowercase hash as 0x-prefixed, zero-padded hex.
func ClassKey(name string) string {
	return fmt.Sprintf("0x%08x", HashLower(name))
}
