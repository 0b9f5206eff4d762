package delta

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func doc(text string) Delta {
	return *New().Insert(text)
}

func TestPushMergesAndOrders(t *testing.T) {
	d := New().Retain(2).Retain(3).Delete(1).Delete(2).Insert("ab").Insert("c")
	require.Len(t, d.Ops, 3)
	assert.Equal(t, Op{Retain: 5}, d.Ops[0])
	assert.Equal(t, Op{Insert: "abc"}, d.Ops[1], "insert after delete is moved in front of it")
	assert.Equal(t, Op{Delete: 3}, d.Ops[2])
}

func TestPushKeepsDifferentAttributesApart(t *testing.T) {
	bold := Attributes{"bold": "true"}
	d := New().Insert("a", bold).Insert("b")
	require.Len(t, d.Ops, 2)
	assert.Equal(t, bold, d.Ops[0].Attributes)
	assert.Nil(t, d.Ops[1].Attributes)
}

func TestComposeReplaceAllDescending(t *testing.T) {
	base := doc("cat and cat")
	// Highest offset first, so earlier offsets stay valid.
	edits := []Delta{
		*New().Retain(8).Delete(3).Insert("dog"),
		*New().Retain(0).Delete(3).Insert("dog"),
	}
	batch := Delta{}
	for _, e := range edits {
		batch = batch.Compose(e)
	}
	got := base.Compose(batch)
	assert.Equal(t, "dog and dog", got.Text())
	assert.True(t, got.IsDocument())
}

func TestComposeInsertThenDeleteCancels(t *testing.T) {
	a := *New().Insert("hello")
	b := *New().Retain(1).Delete(3)
	assert.Equal(t, "ho", a.Compose(b).Text())
}

func TestComposeFormatting(t *testing.T) {
	base := doc("abc")
	format := *New().Retain(1).Retain(1, Attributes{"bold": "true"})
	got := base.Compose(format)
	require.Len(t, got.Ops, 3)
	assert.Equal(t, "b", got.Ops[1].Insert)
	assert.Equal(t, Attributes{"bold": "true"}, got.Ops[1].Attributes)

	unformat := *New().Retain(1).Retain(1, Attributes{"bold": ""})
	got = got.Compose(unformat)
	require.Len(t, got.Ops, 1)
	assert.Equal(t, "abc", got.Ops[0].Insert)
	assert.Nil(t, got.Ops[0].Attributes)
}

func TestInvertRestoresBase(t *testing.T) {
	bold := Attributes{"bold": "true"}
	base := *New().Insert("one ").Insert("two", bold).Insert(" three")
	change := *New().Retain(4).Delete(3).Insert("2", bold).Retain(1).Retain(5, Attributes{"italic": "true"})

	after := base.Compose(change)
	assert.Equal(t, "one 2 three", after.Text())

	undo := change.Invert(base)
	restored := after.Compose(undo)
	assert.Equal(t, base, restored)
}

func TestSlice(t *testing.T) {
	base := *New().Insert("ab").Insert("cd", Attributes{"bold": "true"}).Insert("ef")
	s := base.Slice(1, 5)
	assert.Equal(t, "bcde", s.Text())
	require.Len(t, s.Ops, 3)
	assert.Equal(t, Attributes{"bold": "true"}, s.Ops[1].Attributes)

	assert.Equal(t, "def", base.Slice(3, -1).Text())
}

func TestLengths(t *testing.T) {
	d := *New().Retain(3).Delete(2).Insert("żółw")
	assert.Equal(t, 9, d.Len())
	assert.Equal(t, 5, d.BaseLength())
	assert.Equal(t, 2, d.ChangeLength())
}

func TestValidate(t *testing.T) {
	d := *New().Retain(5).Delete(3)
	require.NoError(t, d.Validate(8))
	err := d.Validate(7)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrOutOfRange)
}

func TestString(t *testing.T) {
	d := New().Retain(1).Insert("x", Attributes{"bold": "true"}).Delete(2)
	assert.Equal(t, `[retain(1) insert("x") bold="true" delete(2)]`, d.String())
}
