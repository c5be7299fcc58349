package state

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSceneState_String(t *testing.T) {
	tests := []struct {
		state    SceneState
		expected string
	}{
		{StateNone, "None"},
		{StateLoading, "Loading"},
		{StateActive, "Active"},
		{StateFailed, "Failed"},
		{StateClosed, "Closed"},
		{SceneState(99), "Unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.state.String())
		})
	}
}

func TestSceneStateConstants(t *testing.T) {
	// Verify the iota ordering
	assert.Equal(t, SceneState(0), StateNone)
	assert.Equal(t, SceneState(1), StateLoading)
	assert.Equal(t, SceneState(2), StateActive)
	assert.Equal(t, SceneState(3), StateFailed)
	assert.Equal(t, SceneState(4), StateClosed)
}

func TestSceneState_Running(t *testing.T) {
	assert.True(t, StateActive.Running())
	for _, s := range []SceneState{StateNone, StateLoading, StateFailed, StateClosed} {
		assert.False(t, s.Running(), s.String())
	}
}
