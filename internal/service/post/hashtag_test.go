package post

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeHashtag(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"#GoLang", "golang"},
		{"  rust_lang ", "rust_lang"},
		{"программирование", "программирование"},
		{"#", ""},
		{"two words", ""},
		{"dash-ed", ""},
		{strings.Repeat("a", maxHashtagLength+1), ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeHashtag(tt.in), tt.in)
	}
}

func TestHashtags(t *testing.T) {
	got := Hashtags("Learning #Go and #go again with #Docker_101!", []string{"#k8s", "docker_101", "bad tag"})
	assert.Equal(t, []string{"go", "docker_101", "k8s"}, got)

	assert.Empty(t, Hashtags("no tags here", nil))
}
