package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateEmbeddingIsDeterministic(t *testing.T) {
	a := GenerateEmbedding("Tomato Soup")
	b := GenerateEmbedding("Tomato Soup")
	assert.Equal(t, a, b)

	c := GenerateEmbedding("Chocolate Cake")
	assert.NotEqual(t, a, c)
}

func TestGenerateEmbeddingCounts(t *testing.T) {
	vec := GenerateEmbedding("abc")
	assert.Equal(t, []float32{3, 1, 2}, vec.Slice())
}
