package settings

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewStaticPageSize(t *testing.T) {
	ps, err := NewStaticPageSize(24)
	require.NoError(t, err)
	assert.Equal(t, 24, ps.DefaultPerPage())

	_, err = NewStaticPageSize(0)
	assert.Error(t, err)
}
