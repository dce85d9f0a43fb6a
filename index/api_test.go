package index

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseKind(t *testing.T) {
	tests := []struct {
		in   string
		want Kind
	}{
		{"linear", KindLinear},
		{"STANDARD", KindLinear},
		{" tree ", KindTree},
		{"kdtree", KindTree},
		{"TREE", KindTree},
	}
	for _, tt := range tests {
		got, err := ParseKind(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	_, err := ParseKind("hnsw")
	assert.True(t, errors.Is(err, ErrUnknownKind))
}

func TestNewOptions(t *testing.T) {
	assert.Equal(t, 0, NewOptions().IgnoreCapacity)
	assert.Equal(t, 100, NewOptions(WithIgnoreCapacity(100)).IgnoreCapacity)
	assert.Equal(t, 5, NewOptions(WithIgnoreCapacity(5), WithIgnoreCapacity(-1)).IgnoreCapacity)
}
