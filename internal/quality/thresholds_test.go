package quality

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultThresholds(t *testing.T) {
	th := DefaultThresholds()

	assert.NoError(t, th.Validate())
	assert.Equal(t, 0.9, th.ExcellentCompleteness)
	assert.Equal(t, 0.8, th.ExcellentConfidence)
	assert.Equal(t, 3, th.MinPoints)
}

func TestThresholdsValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Thresholds)
		valid  bool
	}{
		{name: "defaults are valid", mutate: func(*Thresholds) {}, valid: true},
		{
			name:   "out of range value rejected",
			mutate: func(th *Thresholds) { th.FairConfidence = 1.5 },
			valid:  false,
		},
		{
			name:   "non-monotonic completeness rejected",
			mutate: func(th *Thresholds) { th.GoodCompleteness = 0.95 },
			valid:  false,
		},
		{
			name:   "non-monotonic confidence rejected",
			mutate: func(th *Thresholds) { th.FairConfidence = 0.7 },
			valid:  false,
		},
		{
			name:   "zero min points rejected",
			mutate: func(th *Thresholds) { th.MinPoints = 0 },
			valid:  false,
		},
		{
			name: "recalibrated but ordered thresholds accepted",
			mutate: func(th *Thresholds) {
				th.ExcellentCompleteness = 0.95
				th.GoodCompleteness = 0.8
				th.FairCompleteness = 0.6
			},
			valid: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			th := DefaultThresholds()
			tt.mutate(&th)

			err := th.Validate()
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestThresholdStoreRoundTrip(t *testing.T) {
	store := NewThresholdStore(t.TempDir())

	// No override yet: defaults come back.
	th, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, DefaultThresholds(), th)

	th.GoodCompleteness = 0.75
	th.MinPoints = 5
	require.NoError(t, store.Save(th))

	loaded, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, th, loaded)
}

func TestThresholdStoreRejectsInvalid(t *testing.T) {
	store := NewThresholdStore(t.TempDir())

	th := DefaultThresholds()
	th.MinPoints = -1

	assert.Error(t, store.Save(th))
}
