package checksum

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSum(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		data []byte
		want uint32
	}{
		{name: "empty", data: nil, want: 0},
		{name: "hello", data: []byte("Hello, RBPak!"), want: 0x00AD51FF},
		{name: "single byte", data: []byte{0x00}, want: 0xD202EF8D},
		{name: "check value", data: []byte("123456789"), want: 0xCBF43926},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, Sum(tt.data))
		})
	}
}

func TestEqual(t *testing.T) {
	t.Parallel()

	assert.True(t, Equal(0, 0))
	assert.True(t, Equal(0xDEADBEEF, 0xDEADBEEF))
	assert.False(t, Equal(0xDEADBEEF, 0xDEADBEEE))
	assert.False(t, Equal(0, 0xFFFFFFFF))
}
