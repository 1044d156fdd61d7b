package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeCronExpression(t *testing.T) {
	tests := []struct {
		name    string
		expr    string
		want    string
		wantErr bool
	}{
		{name: "six fields", expr: "0 */5 * * * *", want: "0 */5 * * * *"},
		{name: "descriptor", expr: "@hourly", want: "@hourly"},
		{name: "padded", expr: "  0 0 2 * * *  ", want: "0 0 2 * * *"},
		{name: "empty", expr: "", wantErr: true},
		{name: "five fields", expr: "*/5 * * * *", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeCronExpression(tt.expr)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNew_Validation(t *testing.T) {
	_, err := New(nil, "0 */5 * * * *", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "save function")

	_, err = New(nil, "bogus", func(context.Context) error { return nil })
	require.Error(t, err)
}

func TestStateSync_RunsOnSchedule(t *testing.T) {
	var runs atomic.Int32
	s, err := New(nil, "* * * * * *", func(context.Context) error {
		runs.Add(1)
		return nil
	})
	require.NoError(t, err)

	s.Start(context.Background())
	defer s.Stop()

	assert.Eventually(t, func() bool {
		return runs.Load() >= 1
	}, 3*time.Second, 50*time.Millisecond)
}

func TestStateSync_StopIsIdempotent(t *testing.T) {
	s, err := New(nil, "@hourly", func(context.Context) error { return nil })
	require.NoError(t, err)

	s.Start(context.Background())
	s.Start(context.Background())
	s.Stop()
	s.Stop()
}

func TestStateSync_RunOnce(t *testing.T) {
	boom := errors.New("save failed")
	s, err := New(nil, "@hourly", func(context.Context) error { return boom })
	require.NoError(t, err)

	assert.ErrorIs(t, s.RunOnce(context.Background()), boom)
}
