package dto

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRemindAt_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    *time.Time
		wantErr bool
	}{
		{
			name:  "date only",
			input: `"2026-03-01"`,
			want:  timePtr(time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)),
		},
		{
			name:  "rfc3339",
			input: `"2026-03-01T15:04:05Z"`,
			want:  timePtr(time.Date(2026, 3, 1, 15, 4, 5, 0, time.UTC)),
		},
		{
			name:  "null clears",
			input: `null`,
			want:  nil,
		},
		{
			name:  "empty string clears",
			input: `""`,
			want:  nil,
		},
		{
			name:    "garbage",
			input:   `"next tuesday"`,
			wantErr: true,
		},
		{
			name:    "not a string",
			input:   `42`,
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var r RemindAt
			err := json.Unmarshal([]byte(tt.input), &r)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			if tt.want == nil {
				assert.Nil(t, r.Ptr())
				return
			}
			require.NotNil(t, r.Ptr())
			assert.True(t, r.Ptr().Equal(*tt.want), "got %v, want %v", r.Ptr(), tt.want)
		})
	}
}

func TestUpdateTodoRequest_AbsentVsNull(t *testing.T) {
	var absent UpdateTodoRequest
	require.NoError(t, json.Unmarshal([]byte(`{"title":"x"}`), &absent))
	assert.False(t, absent.RemindAt.Set(), "absent remindAt must not count as set")

	var null UpdateTodoRequest
	require.NoError(t, json.Unmarshal([]byte(`{"remindAt":null}`), &null))
	assert.True(t, null.RemindAt.Set(), "null remindAt must be observed")
	assert.Nil(t, null.RemindAt.Ptr())

	var valued UpdateTodoRequest
	require.NoError(t, json.Unmarshal([]byte(`{"remindAt":"2026-03-01"}`), &valued))
	assert.True(t, valued.RemindAt.Set())
	require.NotNil(t, valued.RemindAt.Ptr())
}

func timePtr(t time.Time) *time.Time { return &t }
