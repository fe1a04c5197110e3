package alarm

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pratik-71/planme-backend/pkg/logger"
)

func TestRinger_StartReplacesSession(t *testing.T) {
	l := logger.New("error", "dev")
	n := NewLogNotifier(l)
	r := NewRinger(l, n, time.Second)

	r.Start("a", "first")
	require.Contains(t, n.Active(), "ring_a")

	// Replacing the session takes the old ongoing notification down too.
	r.Start("b", "second")
	assert.NotContains(t, n.Active(), "ring_a")
	assert.Contains(t, n.Active(), "ring_b")

	id, ringing := r.Ringing()
	require.True(t, ringing)
	assert.Equal(t, "b", id)

	r.Stop()
	assert.NotContains(t, n.Active(), "ring_b")
	_, ringing = r.Ringing()
	assert.False(t, ringing)
}

func TestRinger_StopWithoutSession(t *testing.T) {
	l := logger.New("error", "dev")
	r := NewRinger(l, NewLogNotifier(l), time.Second)
	r.Stop()
	_, ringing := r.Ringing()
	assert.False(t, ringing)
}
