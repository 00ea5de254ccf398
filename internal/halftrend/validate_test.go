package halftrend

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParams_Validate(t *testing.T) {
	tests := []struct {
		name    string
		params  Params
		wantErr bool
	}{
		{"ok", Params{Amplitude: 2, Deviation: 2}, false},
		{"fractional deviation", Params{Amplitude: 1, Deviation: 0.5}, false},
		{"zero amplitude", Params{Amplitude: 0, Deviation: 2}, true},
		{"negative deviation", Params{Amplitude: 2, Deviation: -1}, true},
		{"zero deviation", Params{Amplitude: 2, Deviation: 0}, true},
		{"nan deviation", Params{Amplitude: 2, Deviation: math.NaN()}, true},
		{"inf deviation", Params{Amplitude: 2, Deviation: math.Inf(1)}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.params.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidParams)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateBars(t *testing.T) {
	require.NoError(t, ValidateBars(barsFromCloses([]float64{1, 2, 3})))
	require.NoError(t, ValidateBars(nil))

	dup := barsFromCloses([]float64{1, 2, 3})
	dup[2].Time = dup[1].Time
	assert.ErrorIs(t, ValidateBars(dup), ErrMalformedInput)

	backwards := barsFromCloses([]float64{1, 2, 3})
	backwards[1].Time, backwards[2].Time = backwards[2].Time, backwards[1].Time
	assert.ErrorIs(t, ValidateBars(backwards), ErrMalformedInput)

	nan := barsFromCloses([]float64{1, 2, 3})
	nan[1].Close = math.NaN()
	err := ValidateBars(nan)
	assert.ErrorIs(t, err, ErrMalformedInput)
	assert.Contains(t, err.Error(), "bar 1 close")

	inf := barsFromCloses([]float64{1, 2})
	inf[0].Volume = math.Inf(1)
	assert.ErrorIs(t, ValidateBars(inf), ErrMalformedInput)

	inverted := barsFromCloses([]float64{1, 2})
	inverted[1].High, inverted[1].Low = inverted[1].Low, inverted[1].High
	assert.ErrorIs(t, ValidateBars(inverted), ErrMalformedInput)

	missing := barsFromCloses([]float64{1, 2})
	missing[0].Time = time.Time{}
	assert.ErrorIs(t, ValidateBars(missing), ErrMalformedInput)
}
