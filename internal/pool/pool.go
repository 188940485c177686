// Package pool holds sync.Pool helpers for buffers that the layout dump
// and script formatting paths allocate on every call.
package pool

import (
	"strings"
	"sync"
)

// maxRetainedBuilder is the largest builder capacity returned to the pool.
// A dump of a very deep tree should not pin its buffer forever.
const maxRetainedBuilder = 64 * 1024

var stringBuilderPool = sync.Pool{
	New: func() any {
		return &strings.Builder{}
	},
}

// GetStringBuilder returns an empty string builder from the pool.
func GetStringBuilder() *strings.Builder {
	sb := stringBuilderPool.Get().(*strings.Builder)
	sb.Reset()
	return sb
}

// PutStringBuilder returns sb to the pool. The caller must not use sb
// afterwards.
func PutStringBuilder(sb *strings.Builder) {
	if sb == nil || sb.Cap() > maxRetainedBuilder {
		return
	}
	sb.Reset()
	stringBuilderPool.Put(sb)
}
