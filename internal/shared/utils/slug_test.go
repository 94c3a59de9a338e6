package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		name  string
		title string
		want  string
	}{
		{"simple", "The Matrix", "the-matrix"},
		{"punctuation stripped", "Kill Bill: Vol. 1", "kill-bill-vol-1"},
		{"extra whitespace collapsed", "  Blade   Runner  ", "blade-runner"},
		{"dashes collapsed", "Spider--Man", "spider-man"},
		{"leading and trailing dashes trimmed", "-Alien-", "alien"},
		{"unicode dropped", "Amélie", "amlie"},
		{"numbers kept", "Oceans 11", "oceans-11"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Slugify(tc.title))
		})
	}
}
