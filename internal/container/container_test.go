package container

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseVersion(t *testing.T) {
	cases := []struct {
		comment string
		want    Version
		ok      bool
	}{
		{"Open Mining Format 2.0", Version{Major: 2, Minor: 0}, true},
		{"Open Mining Format 2.0-alpha.1", Version{Major: 2, Minor: 0, PreRelease: "alpha.1"}, true},
		{"Something else 1.0", Version{}, false},
		{"Open Mining Format 2.x", Version{}, false},
	}
	for _, c := range cases {
		got, ok := ParseVersion(c.comment)
		assert.Equal(t, c.ok, ok, c.comment)
		if c.ok {
			assert.Equal(t, c.want, got, c.comment)
		}
	}
}

func TestVersionString(t *testing.T) {
	assert.Equal(t, "Open Mining Format 2.0", Version{Major: 2, Minor: 0}.String())
	assert.Equal(t, "Open Mining Format 2.0-beta", Version{Major: 2, Minor: 0, PreRelease: "beta"}.String())
}
