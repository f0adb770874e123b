package anon

import (
	"bytes"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var hexDigest = regexp.MustCompile(`^[0-9a-f]{16}$`)

func TestAnonymizeStableWithinRun(t *testing.T) {
	a, err := New(true)
	require.NoError(t, err)

	first := a.Anonymize("alice")
	assert.Equal(t, first, a.Anonymize("alice"))
	assert.NotEqual(t, "alice", first)
	assert.Regexp(t, hexDigest, first)
	assert.NotEqual(t, first, a.Anonymize("bob"))
}

func TestAnonymizeDisabledIsIdentity(t *testing.T) {
	a, err := New(false)
	require.NoError(t, err)
	assert.False(t, a.Enabled())
	assert.Equal(t, "alice", a.Anonymize("alice"))
	assert.Regexp(t, hexDigest, a.Hash("alice"))
}

func TestDifferentSaltsDiffer(t *testing.T) {
	a, err := NewWithSalt(true, bytes.Repeat([]byte{1}, SaltSize))
	require.NoError(t, err)
	b, err := NewWithSalt(true, bytes.Repeat([]byte{2}, SaltSize))
	require.NoError(t, err)
	assert.NotEqual(t, a.Anonymize("alice"), b.Anonymize("alice"))
}

func TestSameSaltSameDigest(t *testing.T) {
	salt := bytes.Repeat([]byte{7}, SaltSize)
	a, err := NewWithSalt(true, salt)
	require.NoError(t, err)
	b, err := NewWithSalt(true, salt)
	require.NoError(t, err)
	assert.Equal(t, a.Anonymize("alice"), b.Anonymize("alice"))
}

func TestColor(t *testing.T) {
	a, err := New(false)
	require.NoError(t, err)
	c := a.Color("alice")
	assert.Regexp(t, `^#[0-9a-f]{6}$`, c)
	assert.Equal(t, c, a.Color("alice"))
	assert.Equal(t, a.Hash("alice")[DigestLength-6:], c[1:])
}

func TestNewWithSaltRejectsBadLength(t *testing.T) {
	_, err := NewWithSalt(true, nil)
	assert.Error(t, err)
	_, err = NewWithSalt(true, make([]byte, 65))
	assert.Error(t, err)
}
