package server

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewServer(t *testing.T) {
	s := NewServer(":8003")
	require.NotNil(t, s)
	assert.Equal(t, ":8003", s.listenAddr)
}

func TestStopBeforeRunIsSafe(t *testing.T) {
	s := NewServer(":0")
	assert.NotPanics(t, func() { s.Stop() })
}
