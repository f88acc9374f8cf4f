package core

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCorpus(t *testing.T) {
	c, err := NewCorpus("en-fr", []string{"hello", "world"}, []string{"bonjour", "monde"})
	require.NoError(t, err)
	assert.Equal(t, 2, c.Len())
	assert.Equal(t, Pair{Source: "world", Target: "monde"}, c.Pair(1))
}

func TestNewCorpus_LengthMismatch(t *testing.T) {
	_, err := NewCorpus("bad", []string{"a", "b", "c"}, []string{"x", "y"})
	assert.ErrorIs(t, err, ErrLengthMismatch)
}

func TestNewCorpus_Empty(t *testing.T) {
	_, err := NewCorpus("empty", nil, nil)
	assert.ErrorIs(t, err, ErrEmptyCorpus)
}

func TestCorpus_Copy(t *testing.T) {
	c, err := NewCorpus("en-fr", []string{"hello"}, []string{"bonjour"})
	require.NoError(t, err)
	q := c.Copy()
	require.NotSame(t, c, q)
	q.Source[0] = "changed"
	assert.Equal(t, "hello", c.Source[0])
}

func TestParseTSV(t *testing.T) {
	in := "hello\tbonjour\n\nworld\tmonde\n"
	c, err := ParseTSV("en-fr", strings.NewReader(in))
	require.NoError(t, err)
	assert.Equal(t, []string{"hello", "world"}, c.Source)
	assert.Equal(t, []string{"bonjour", "monde"}, c.Target)
}

func TestParseTSV_MissingTab(t *testing.T) {
	_, err := ParseTSV("bad", strings.NewReader("hello bonjour\n"))
	require.Error(t, err)
	var pe *ParseError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, 1, pe.Line)
}

func TestCorpus_WriteTSV_RoundTrip(t *testing.T) {
	c, err := NewCorpus("en-de", []string{"the boy", "the man"}, []string{"der Junge", "der Mann"})
	require.NoError(t, err)
	var sb strings.Builder
	require.NoError(t, c.WriteTSV(&sb))
	back, err := ParseTSV("en-de", strings.NewReader(sb.String()))
	require.NoError(t, err)
	assert.Equal(t, c.Source, back.Source)
	assert.Equal(t, c.Target, back.Target)
}
