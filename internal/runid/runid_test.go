package runid

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNew_ReturnsDistinctIdentifiers(t *testing.T) {
	a := New()
	b := New()
	assert.NotEmpty(t, a)
	assert.NotEqual(t, a, b)
}
