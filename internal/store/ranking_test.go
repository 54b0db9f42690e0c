package store

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRank(t *testing.T) {
	tests := []struct {
		name   string
		values []string
		limit  int
		want   Ranking
	}{
		{"empty", nil, 10, Ranking{}},
		{"counts", []string{"a", "b", "a"}, 10, Ranking{{"a", 2}, {"b", 1}}},
		{"ties keep first seen", []string{"x", "y", "z"}, 10, Ranking{{"x", 1}, {"y", 1}, {"z", 1}}},
		{"limit", []string{"a", "b", "c", "c"}, 2, Ranking{{"c", 2}, {"a", 1}}},
		{"no limit", []string{"a", "b"}, 0, Ranking{{"a", 1}, {"b", 1}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Rank(tt.values, tt.limit))
		})
	}
}

func TestRankingJSONKeepsOrder(t *testing.T) {
	r := Ranking{{"zsh", 3}, {"ls", 2}, {"awk", 1}}
	data, err := json.Marshal(r)
	require.NoError(t, err)
	assert.Equal(t, `{"zsh":3,"ls":2,"awk":1}`, string(data))

	var back Ranking
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, r, back)

	require.NoError(t, json.Unmarshal([]byte(`{}`), &back))
	assert.Empty(t, back)
	assert.Error(t, json.Unmarshal([]byte(`[1,2]`), &back))
}

func TestTimestampJSON(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    time.Time
		wantErr bool
	}{
		{"rfc3339", `"2025-01-02T03:04:05.5Z"`, time.Date(2025, 1, 2, 3, 4, 5, 500000000, time.UTC), false},
		{"legacy micro", `"2025-01-02T03:04:05.123456"`, time.Date(2025, 1, 2, 3, 4, 5, 123456000, time.Local), false},
		{"legacy seconds", `"2025-01-02T03:04:05"`, time.Date(2025, 1, 2, 3, 4, 5, 0, time.Local), false},
		{"null", `null`, time.Time{}, false},
		{"garbage", `"yesterday"`, time.Time{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var ts Timestamp
			err := json.Unmarshal([]byte(tt.in), &ts)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, ts.Equal(tt.want), "got %v want %v", ts.Time, tt.want)
		})
	}

	data, err := json.Marshal(Timestamp{})
	require.NoError(t, err)
	assert.Equal(t, "null", string(data))
}
