package media

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPublicID(t *testing.T) {
	cases := map[string]string{
		"https://media.example.com/v1/img/abc123.png": "abc123",
		"https://media.example.com/abc123.jpeg":       "abc123",
		"abc123.png":                                  "abc123",
		"abc123":                                      "abc123",
		"https://media.example.com/dir/no-ext":        "no-ext",
	}
	for in, want := range cases {
		require.Equal(t, want, PublicID(in), "input %q", in)
	}
}
