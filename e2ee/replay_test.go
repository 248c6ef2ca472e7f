package e2ee

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIVWindowDetectsReplay(t *testing.T) {
	w := newIVWindow(4)

	var iv [12]byte
	iv[0] = 1

	assert.False(t, w.seenOrInsert(iv))
	assert.True(t, w.seenOrInsert(iv))
}

func TestIVWindowEvictsOldestWhenFull(t *testing.T) {
	w := newIVWindow(2)

	var a, b, c [12]byte
	a[0], b[0], c[0] = 1, 2, 3

	assert.False(t, w.seenOrInsert(a))
	assert.False(t, w.seenOrInsert(b))
	assert.False(t, w.seenOrInsert(c)) // evicts a

	assert.False(t, w.seenOrInsert(a)) // a was evicted, treated as fresh
	assert.True(t, w.seenOrInsert(b))  // b still tracked
}
