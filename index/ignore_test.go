package index

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIgnoreListFIFO(t *testing.T) {
	var l IgnoreList
	l.AddIgnore("a")
	l.AddIgnore("b")
	l.AddIgnore("c")
	assert.Equal(t, 3, l.IgnoreSize())
	assert.True(t, l.Ignored("a"))

	l.PopIgnore()
	assert.False(t, l.Ignored("a"), "oldest entry is removed first")
	assert.True(t, l.Ignored("b"))
	assert.Equal(t, []string{"b", "c"}, l.IgnoredIDs())
}

func TestIgnoreListPopEmpty(t *testing.T) {
	var l IgnoreList
	l.PopIgnore()
	assert.Equal(t, 0, l.IgnoreSize())
	l.AddIgnore("a")
	l.PopIgnore()
	l.PopIgnore()
	assert.Equal(t, 0, l.IgnoreSize())
	assert.False(t, l.Ignored("a"))
}

func TestIgnoreListDuplicates(t *testing.T) {
	var l IgnoreList
	l.AddIgnore("a")
	l.AddIgnore("b")
	l.AddIgnore("a")
	l.PopIgnore()
	assert.True(t, l.Ignored("a"), "second copy of a is still queued")
	l.PopIgnore()
	l.PopIgnore()
	assert.False(t, l.Ignored("a"))
}

func TestIgnoreListCapacity(t *testing.T) {
	var l IgnoreList
	l.SetIgnoreCapacity(100)
	for i := 0; i < 250; i++ {
		l.AddIgnore(fmt.Sprintf("id-%d", i))
		assert.LessOrEqual(t, l.IgnoreSize(), 100)
	}
	assert.Equal(t, 100, l.IgnoreSize())
	assert.False(t, l.Ignored("id-149"))
	assert.True(t, l.Ignored("id-150"))
	assert.True(t, l.Ignored("id-249"))

	l.SetIgnoreCapacity(10)
	assert.Equal(t, 10, l.IgnoreSize())
	assert.Equal(t, "id-240", l.IgnoredIDs()[0])
	assert.Equal(t, 10, l.IgnoreCapacity())
}

func TestIgnoreListCompaction(t *testing.T) {
	var l IgnoreList
	for i := 0; i < 1000; i++ {
		l.AddIgnore(fmt.Sprintf("id-%d", i))
	}
	for i := 0; i < 990; i++ {
		l.PopIgnore()
	}
	ids := l.IgnoredIDs()
	assert.Len(t, ids, 10)
	assert.Equal(t, "id-990", ids[0])
	assert.Equal(t, "id-999", ids[9])
}
