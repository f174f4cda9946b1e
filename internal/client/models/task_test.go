package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSession_Expired(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

	assert.False(t, (&Session{}).Expired(now))
	assert.False(t, (&Session{ExpiresAt: now.Add(time.Second)}).Expired(now))
	assert.True(t, (&Session{ExpiresAt: now}).Expired(now))
	assert.True(t, (&Session{ExpiresAt: now.Add(-time.Minute)}).Expired(now))
}

func TestCompletion_DecodesServerShape(t *testing.T) {
	raw := `{"urgency":"daily","percentage":50,"summary":{"all":25,"byUrgency":{"daily":50,"weekly":0}}}`

	var c Completion
	require.NoError(t, json.Unmarshal([]byte(raw), &c))

	assert.Equal(t, "daily", c.Urgency)
	assert.InDelta(t, 50.0, c.Percentage, 1e-9)
	assert.InDelta(t, 25.0, c.Summary.All, 1e-9)
	assert.Equal(t, map[string]float64{"daily": 50, "weekly": 0}, c.Summary.ByUrgency)
}
