package unionfind

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMakeSetIsSingleton(t *testing.T) {
	u := New()
	a := u.MakeSet()
	b := u.MakeSet()
	assert.Equal(t, a, u.Find(a))
	assert.NotEqual(t, u.Find(a), u.Find(b))
}

func TestUnionMergesAndReportsChange(t *testing.T) {
	u := New()
	a, b, c := u.MakeSet(), u.MakeSet(), u.MakeSet()

	root, changed := u.Union(a, b)
	assert.True(t, changed)
	assert.Equal(t, root, u.Find(a))
	assert.Equal(t, root, u.Find(b))
	assert.NotEqual(t, root, u.Find(c))

	_, changedAgain := u.Union(a, b)
	assert.False(t, changedAgain)
}

func TestUnionIsTransitive(t *testing.T) {
	u := New()
	a, b, c := u.MakeSet(), u.MakeSet(), u.MakeSet()

	u.Union(a, b)
	u.Union(b, c)

	assert.Equal(t, u.Find(a), u.Find(c))
}

func TestPathCompressionPreservesCanonicalId(t *testing.T) {
	u := New()
	ids := make([]Id, 8)
	for i := range ids {
		ids[i] = u.MakeSet()
	}
	for i := 1; i < len(ids); i++ {
		u.Union(ids[0], ids[i])
	}
	root := u.Find(ids[0])
	for _, id := range ids {
		assert.Equal(t, root, u.Find(id))
	}
}
