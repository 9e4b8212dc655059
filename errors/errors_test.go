package errors

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	err := New("test error")
	require.NotNil(t, err)
	assert.Equal(t, "test error", err.Error())
}

func TestWrap(t *testing.T) {
	original := New("original")
	wrapped := Wrap(original, "wrapped")

	assert.Contains(t, wrapped.Error(), "wrapped")
	assert.Contains(t, wrapped.Error(), "original")
	assert.True(t, Is(wrapped, original))
}

func TestWrapf(t *testing.T) {
	original := New("original")
	wrapped := Wrapf(original, "artifact %s", "tec_data_20250101_cycle_0.csv")

	assert.Contains(t, wrapped.Error(), "artifact tec_data_20250101_cycle_0.csv")
	assert.True(t, Is(wrapped, original))
}

func TestSentinelsSurviveWrapping(t *testing.T) {
	tests := []struct {
		name     string
		sentinel error
	}{
		{"no data", ErrNoData},
		{"empty artifact", ErrEmptyArtifact},
		{"schema rejected", ErrSchemaRejected},
		{"database unavailable", ErrDatabaseUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wrapped := Wrapf(tt.sentinel, "processing %s", "some artifact")
			assert.True(t, Is(wrapped, tt.sentinel))

			// Sentinels must remain distinguishable from each other
			for _, other := range tests {
				if other.sentinel != tt.sentinel {
					assert.False(t, Is(wrapped, other.sentinel))
				}
			}
		})
	}
}

func TestHintsSurfaceOnFatalErrors(t *testing.T) {
	err := WithHint(
		Wrap(ErrDatabaseUnavailable, "connecting to postgres"),
		"check DB_HOST and DB_PORT, or run with --skip-load",
	)

	hints := GetAllHints(err)
	require.Len(t, hints, 1)
	assert.Contains(t, hints[0], "DB_HOST")
	assert.True(t, Is(err, ErrDatabaseUnavailable))
}
