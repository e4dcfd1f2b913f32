package utils

import (
	"crypto/md5"
	"fmt"
)

func HashString(input string) string {
	hash := md5.Sum([]byte(input))
	return fmt.Sprintf("%x", hash)
}

// HashKey builds a namespaced storage key from an arbitrary input,
// keeping raw URLs out of key space.
func HashKey(prefix, input string) string {
	return fmt.Sprintf("%s:%s", prefix, HashString(input))
}
