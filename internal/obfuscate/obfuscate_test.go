package obfuscate

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStoredName(t *testing.T) {
	t.Parallel()

	// Reference values computed independently with murmur3-32, seed 0x52425061.
	tests := []struct {
		name string
		want string
	}{
		{name: "a/b.png", want: "rbp_3814410542.dat"},
		{name: "hello.txt", want: "rbp_3408446883.dat"},
		{name: "assets/logo.png", want: "rbp_1642150779.dat"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, StoredName(tt.name))
	}
}

func TestStoredNameShape(t *testing.T) {
	t.Parallel()

	pattern := regexp.MustCompile(`^rbp_\d+\.dat$`)
	for _, name := range []string{"", "a", "some/deep/path/file.bin", "名前.txt"} {
		assert.Regexp(t, pattern, StoredName(name))
	}
}

func TestStoredNameStable(t *testing.T) {
	t.Parallel()

	assert.Equal(t, StoredName("x"), StoredName("x"))
	assert.NotEqual(t, StoredName("x"), StoredName("y"))
}
