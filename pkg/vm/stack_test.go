package vm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kosayoda/gochicken/pkg/errs"
	"github.com/kosayoda/gochicken/pkg/lexer"
)

func TestStackLayout(t *testing.T) {
	s := NewStack(lexer.Program{3, 0, 1}, "abc")
	require.Equal(t, 6, s.Len())

	self, ok := s.At(slotSelf)
	require.True(t, ok)
	assert.Equal(t, StackRefValue, self.Kind)
	arg, ok := s.At(slotInput)
	require.True(t, ok)
	assert.Equal(t, Str("abc"), arg)
	for i, c := range []int64{3, 0, 1} {
		v, ok := s.line(i)
		require.True(t, ok)
		assert.Equal(t, Int(c), v)
	}
	sentinel, ok := s.At(codeBase + 3)
	require.True(t, ok)
	assert.Equal(t, Int(0), sentinel)
	assert.Equal(t, 0, s.Depth())
}

func TestStackPushPop(t *testing.T) {
	s := NewStack(lexer.Program{1}, "")
	s.Push(Int(1))
	before := s.Data()

	s.Push(Str("x"))
	v, err := s.Pop()
	require.NoError(t, err)
	assert.Equal(t, Str("x"), v)
	assert.Equal(t, before, s.Data())

	_, err = s.Pop()
	require.NoError(t, err)
	_, err = s.Pop()
	assert.Equal(t, errs.StackUnderflow, errs.KindOf(err))
	_, err = s.Peek()
	assert.Equal(t, errs.StackUnderflow, errs.KindOf(err))
	// the program region is untouched by underflow
	assert.Equal(t, 4, s.Len())
}

func TestStackSet(t *testing.T) {
	s := NewStack(lexer.Program{1, 2}, "")
	require.NoError(t, s.Set(codeBase+1, Int(9)))
	v, _ := s.line(1)
	assert.Equal(t, Int(9), v)

	assert.Equal(t, errs.AddressOutOfRange, errs.KindOf(s.Set(-1, Int(0))))
	assert.Equal(t, errs.AddressOutOfRange, errs.KindOf(s.Set(int64(s.Len()), Int(0))))
	_, ok := s.At(100)
	assert.False(t, ok)
}

func TestValue(t *testing.T) {
	assert.True(t, Int(-1).Truthy())
	assert.False(t, Int(0).Truthy())
	assert.True(t, Str("0").Truthy())
	assert.False(t, Str("").Truthy())
	assert.True(t, stackRef().Truthy())

	n, err := Str(" 42 ").ToInt()
	require.NoError(t, err)
	assert.Equal(t, int64(42), n)
	_, err = Str("chicken").ToInt()
	assert.Equal(t, errs.TypeMismatch, errs.KindOf(err))
	_, err = stackRef().ToInt()
	assert.Equal(t, errs.TypeMismatch, errs.KindOf(err))

	assert.True(t, Int(3).Equal(Int(3)))
	assert.False(t, Int(3).Equal(Str("3")))
	assert.True(t, stackRef().Equal(stackRef()))
	assert.Equal(t, Int(1), Bool(true))

	assert.Equal(t, "[stack]", stackRef().String())
	assert.Equal(t, `[1, "a", [stack]]`, values{Int(1), Str("a"), stackRef()}.String())
}
