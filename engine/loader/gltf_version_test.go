package loader

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseVersion(t *testing.T) {
	tests := []struct {
		in   string
		want Version
		ok   bool
	}{
		{"2.0", Version{2, 0}, true},
		{"1.0.3", Version{1, 0}, true},
		{"2.1-beta", Version{2, 1}, true},
		{"10.12", Version{10, 12}, true},
		{"two", Version{}, false},
		{"", Version{}, false},
		{"2", Version{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			v, ok := ParseVersion(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, v)
		})
	}
}

func TestCompareVersion(t *testing.T) {
	assert.Equal(t, 0, CompareVersion(Version{2, 0}, Version{2, 0}))
	assert.Equal(t, 1, CompareVersion(Version{2, 1}, Version{2, 0}))
	assert.Equal(t, -1, CompareVersion(Version{1, 9}, Version{2, 0}))
	assert.Equal(t, 1, CompareVersion(Version{3, 0}, Version{2, 9}))
}

func TestResolveVersion(t *testing.T) {
	v, err := resolveVersion("2.0", "", 0)
	require.NoError(t, err)
	assert.Equal(t, Version{2, 0}, v)

	v, err = resolveVersion("", "", 1)
	require.NoError(t, err)
	assert.Equal(t, Version{1, 0}, v)

	_, err = resolveVersion("", "", 0)
	assert.ErrorIs(t, err, ErrUnsupportedVersion)

	_, err = resolveVersion("2.0", "2.1", 0)
	assert.ErrorIs(t, err, ErrUnsupportedVersion)

	_, err = resolveVersion("2.0", "bogus", 0)
	assert.ErrorIs(t, err, ErrUnsupportedVersion)

	v, err = resolveVersion("3.0", "", 0)
	require.NoError(t, err)
	assert.Equal(t, 3, v.Major)
}
