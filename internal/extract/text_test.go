package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTextExtractor_GarbageBytes(t *testing.T) {
	e := NewTextExtractor(nil)

	assert.Equal(t, "", e.Extract([]byte("not a pdf at all")))
	assert.Equal(t, "", e.Extract(nil))
	assert.Equal(t, "", e.Extract([]byte{}))
}

func TestTextExtractor_TruncatedHeader(t *testing.T) {
	e := NewTextExtractor(nil)

	// a valid magic number with nothing behind it must not panic
	assert.Equal(t, "", e.Extract([]byte("%PDF-1.7\n")))
}
