package lexer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kosayoda/gochicken/pkg/errs"
)

func TestCountLine(t *testing.T) {
	for _, test := range []struct {
		line  string
		count int
	}{
		{"", 0},
		{"\n", 0},
		{"\r\n", 0},
		{"chicken", 1},
		{"chicken\n", 1},
		{"chicken chicken\r\n", 2},
		{strings.Repeat("chicken ", 99) + "chicken", 100},
	} {
		n, err := CountLine(test.line)
		require.NoError(t, err, test.line)
		assert.Equal(t, test.count, n, test.line)
	}
}

func TestCountLineMalformed(t *testing.T) {
	for _, test := range []struct {
		line string
		msg  string
	}{
		{"egg", `invalid token(s) "egg"`},
		{"chicken egg chicken", `invalid token(s) "egg"`},
		{"Chicken", `invalid token(s) "Chicken"`},
		{"chicken  chicken", `invalid token(s) ""`},
		{"chicken ", `invalid token(s) ""`},
		{" chicken", `invalid token(s) ""`},
		{"chicken\tchicken", `invalid token(s) "chicken\tchicken"`},
		{"chickenchicken", `invalid token(s) "chickenchicken"`},
		{"egg spam", `invalid token(s) "egg", "spam"`},
		{" ", `invalid token(s) "", ""`},
	} {
		_, err := CountLine(test.line)
		require.Error(t, err, test.line)
		assert.Equal(t, errs.MalformedLine, errs.KindOf(err), test.line)
		assert.EqualError(t, err, test.msg)
	}
}

func TestTokenizeIsDeterministic(t *testing.T) {
	lines := []string{"chicken chicken", "", "chicken", "chicken chicken chicken"}
	a, err := Tokenize(lines)
	require.NoError(t, err)
	b, err := Tokenize(lines)
	require.NoError(t, err)
	assert.Equal(t, Program{2, 0, 1, 3}, a)
	assert.Equal(t, a, b)
	assert.Equal(t, a.Fingerprint(), b.Fingerprint())
}

func TestTokenizeReportsLine(t *testing.T) {
	_, err := Tokenize([]string{"chicken", "", "chicken rooster"})
	require.Error(t, err)
	assert.Equal(t, errs.MalformedLine, errs.KindOf(err))
	assert.Equal(t, 3, errs.LineOf(err))
	assert.EqualError(t, err, `line 3: invalid token(s) "rooster"`)
}

func TestRead(t *testing.T) {
	p, err := Read(strings.NewReader("chicken\r\n\nchicken chicken\n"))
	require.NoError(t, err)
	assert.Equal(t, Program{1, 0, 2}, p)
	assert.Equal(t, 3, p.Len())
	assert.Equal(t, "1 0 2", p.String())

	p, err = Read(strings.NewReader(""))
	require.NoError(t, err)
	assert.Equal(t, 0, p.Len())
}

func TestFingerprint(t *testing.T) {
	assert.NotEqual(t, Program{1, 2}.Fingerprint(), Program{2, 1}.Fingerprint())
	assert.NotEqual(t, Program{1}.Fingerprint(), Program{1, 0}.Fingerprint())
	assert.Equal(t, Program{300, 7}.Fingerprint(), Program{300, 7}.Fingerprint())
}
