package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeMermaidID(t *testing.T) {
	assert.Equal(t, "a_b_c_d", sanitizeMermaidID("a.b-c/d"))
	assert.Equal(t, "two_words", sanitizeMermaidID("two words"))
	assert.Equal(t, "end_", sanitizeMermaidID("end"))
	assert.Equal(t, "End_", sanitizeMermaidID("End"))
	assert.Equal(t, "ending", sanitizeMermaidID("ending"))
}
