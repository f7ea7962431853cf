package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanString(t *testing.T) {
	tests := map[string]string{
		"":                     "",
		"   ":                  "",
		" Asha ":               "Asha",
		"Dr.\tAsha \n  Rao":    "Dr. Asha Rao",
		"asha@college.edu\r\n": "asha@college.edu",
	}
	for in, want := range tests {
		assert.Equal(t, want, CleanString(in), "%q", in)
	}
}
