package input

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLayout_Key(t *testing.T) {
	k, ok := DefaultLayout.Key('X')
	assert.True(t, ok)
	assert.Equal(t, byte(0x0), k)

	k, ok = DefaultLayout.Key('v')
	assert.True(t, ok)
	assert.Equal(t, byte(0xF), k)

	_, ok = DefaultLayout.Key('p')
	assert.False(t, ok)
}

func TestLayout_Poll(t *testing.T) {
	down := map[rune]bool{'1': true, 'f': true}
	keys := DefaultLayout.Poll(func(r rune) bool { return down[r] })
	for k, pressed := range keys {
		want := k == 0x1 || k == 0xE
		assert.Equal(t, want, pressed, "key %X", k)
	}
}

func TestLayout_Unique(t *testing.T) {
	seen := map[rune]bool{}
	for _, c := range DefaultLayout {
		assert.False(t, seen[c], "%q bound twice", c)
		seen[c] = true
	}
}
