package slug

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMake(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Go for Beginners", "go-for-beginners"},
		{"  C++ & Rust!! ", "c-rust"},
		{"Café Crème", "cafe-creme"},
		{"---", "course"},
		{"", "course"},
		{"Урок 1", "урок-1"},
		{"Enrolled", "enrolled-course"},
		{"Enrolled students", "enrolled-students"},
		{"6650a1b2c3d4e5f60718293a", "6650a1b2c3d4e5f60718293a-course"},
		{"6650A1B2C3D4E5F60718293A", "6650a1b2c3d4e5f60718293a-course"},
		{"6650a1b2c3d4e5f60718293z", "6650a1b2c3d4e5f60718293z"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Make(tt.in))
		})
	}
}

func TestMake_Truncates(t *testing.T) {
	s := Make(strings.Repeat("a", 200))
	assert.LessOrEqual(t, len(s), maxLength)
}

func TestUnique(t *testing.T) {
	taken := map[string]bool{"go": true, "go-2": true}
	exists := func(_ context.Context, s string) (bool, error) { return taken[s], nil }

	got, err := Unique(context.Background(), "go", exists)
	require.NoError(t, err)
	assert.Equal(t, "go-3", got)

	got, err = Unique(context.Background(), "rust", exists)
	require.NoError(t, err)
	assert.Equal(t, "rust", got)
}

func TestUnique_FallsBackToRandomSuffix(t *testing.T) {
	always := func(context.Context, string) (bool, error) { return true, nil }

	got, err := Unique(context.Background(), "go", always)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(got, "go-"))
	assert.Len(t, got, len("go-")+8)
}

func TestUnique_PropagatesError(t *testing.T) {
	boom := errors.New("boom")
	_, err := Unique(context.Background(), "go", func(context.Context, string) (bool, error) { return false, boom })
	assert.ErrorIs(t, err, boom)
}
