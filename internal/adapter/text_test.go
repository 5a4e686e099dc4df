package adapter

import (
	"testing"
	"unicode"

	"github.com/stretchr/testify/assert"
)

func TestByteOffset(t *testing.T) {
	assert.Equal(t, 0, ByteOffset("abc", 0))
	assert.Equal(t, 2, ByteOffset("abc", 2))
	assert.Equal(t, 3, ByteOffset("abc", 10))
	// 😀 is four bytes and two UTF-16 units
	assert.Equal(t, 4, ByteOffset("😀x", 2))
}

func TestLineAt(t *testing.T) {
	text := "one\r\ntwo\nthree"

	assert.Equal(t, "one", LineAt(text, 0))
	assert.Equal(t, "two", LineAt(text, 1))
	assert.Equal(t, "three", LineAt(text, 2))
	assert.Equal(t, "", LineAt(text, 3))
}

func TestPrefixAt(t *testing.T) {
	isWord := func(r rune) bool { return unicode.IsLetter(r) || unicode.IsDigit(r) }
	text := "first\n  x := #pri"

	prefix, before := PrefixAt(text, 1, 11, isWord)
	assert.Equal(t, "pri", prefix)
	assert.Equal(t, byte('#'), before)

	prefix, before = PrefixAt(text, 0, 3, isWord)
	assert.Equal(t, "fir", prefix)
	assert.Equal(t, byte(0), before)

	prefix, _ = PrefixAt(text, 1, 7, isWord)
	assert.Equal(t, "", prefix)
}
