package timex

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDuration_UnmarshalJSON(t *testing.T) {
	var payload struct {
		Interval Duration `json:"interval"`
	}

	require.NoError(t, json.Unmarshal([]byte(`{"interval":"5s"}`), &payload))
	assert.Equal(t, 5*time.Second, payload.Interval.Duration)

	require.NoError(t, json.Unmarshal([]byte(`{"interval":1500000000}`), &payload))
	assert.Equal(t, 1500*time.Millisecond, payload.Interval.Duration)

	assert.Error(t, json.Unmarshal([]byte(`{"interval":"not-a-duration"}`), &payload))
	assert.Error(t, json.Unmarshal([]byte(`{"interval":true}`), &payload))
}

func TestDuration_MarshalJSON(t *testing.T) {
	data, err := json.Marshal(Duration{3 * time.Second})
	require.NoError(t, err)
	assert.Equal(t, `"3s"`, string(data))
}
