package quality

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func timelinePoints(total, valid int, confidence float64) []Record {
	points := make([]Record, 0, total)
	for i := 0; i < valid; i++ {
		points = append(points, Record{
			"date":       "2024-01-01",
			"value":      float64(i),
			"confidence": confidence,
		})
	}
	for i := valid; i < total; i++ {
		points = append(points, Record{"date": "2024-01-01"})
	}
	return points
}

func TestClassify(t *testing.T) {
	required := []string{"date", "value"}

	tests := []struct {
		name         string
		points       []Record
		opts         ClassifyOptions
		validPoints  int
		completeness float64
		confidence   float64
		level        Level
		sufficient   bool
	}{
		{
			name:         "empty dataset is unknown and insufficient",
			points:       nil,
			opts:         ClassifyOptions{RequiredFields: required},
			validPoints:  0,
			completeness: 0,
			confidence:   0,
			level:        LevelUnknown,
			sufficient:   false,
		},
		{
			name:         "two valid of ten below default minimum",
			points:       timelinePoints(10, 2, 0.9),
			opts:         ClassifyOptions{RequiredFields: required},
			validPoints:  2,
			completeness: 0.2,
			confidence:   0.9,
			level:        LevelPoor,
			sufficient:   false,
		},
		{
			name:         "eight valid of ten is good",
			points:       timelinePoints(10, 8, 0.75),
			opts:         ClassifyOptions{RequiredFields: required},
			validPoints:  8,
			completeness: 0.8,
			confidence:   0.75,
			level:        LevelGood,
			sufficient:   true,
		},
		{
			name:         "fully valid high confidence is excellent",
			points:       timelinePoints(10, 10, 0.95),
			opts:         ClassifyOptions{RequiredFields: required},
			validPoints:  10,
			completeness: 1,
			confidence:   0.95,
			level:        LevelExcellent,
			sufficient:   true,
		},
		{
			name:         "moderate completeness and confidence is fair",
			points:       timelinePoints(10, 6, 0.5),
			opts:         ClassifyOptions{RequiredFields: required},
			validPoints:  6,
			completeness: 0.6,
			confidence:   0.5,
			level:        LevelFair,
			sufficient:   true,
		},
		{
			name:         "high completeness but rock-bottom confidence is poor",
			points:       timelinePoints(10, 10, 0.1),
			opts:         ClassifyOptions{RequiredFields: required},
			validPoints:  10,
			completeness: 1,
			confidence:   0.1,
			level:        LevelPoor,
			sufficient:   true,
		},
		{
			name:         "custom min points raises the sufficiency bar",
			points:       timelinePoints(10, 8, 0.9),
			opts:         ClassifyOptions{RequiredFields: required, MinPoints: 9},
			validPoints:  8,
			completeness: 0.8,
			confidence:   0.9,
			level:        LevelGood,
			sufficient:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := Classify(tt.points, tt.opts)

			assert.Equal(t, len(tt.points), a.TotalPoints)
			assert.Equal(t, tt.validPoints, a.ValidPoints)
			assert.InDelta(t, tt.completeness, a.DataCompleteness, 1e-9)
			assert.InDelta(t, tt.confidence, a.AvgConfidence, 1e-9)
			assert.Equal(t, tt.level, a.OverallQuality)
			assert.Equal(t, tt.sufficient, a.HasSufficientData)
		})
	}
}

func TestClassifyConfidenceHandling(t *testing.T) {
	required := []string{"date", "value"}

	t.Run("missing confidence defaults to full trust", func(t *testing.T) {
		points := []Record{
			{"date": "2024-01-01", "value": 1.0},
			{"date": "2024-01-02", "value": 2.0, "confidence": 0.5},
		}
		a := Classify(points, ClassifyOptions{RequiredFields: required})
		assert.InDelta(t, 0.75, a.AvgConfidence, 1e-9)
	})

	t.Run("NaN confidence is excluded from the average", func(t *testing.T) {
		points := []Record{
			{"date": "2024-01-01", "value": 1.0, "confidence": math.NaN()},
			{"date": "2024-01-02", "value": 2.0, "confidence": 0.6},
		}
		a := Classify(points, ClassifyOptions{RequiredFields: required})
		assert.InDelta(t, 0.6, a.AvgConfidence, 1e-9)
	})

	t.Run("non-numeric confidence is excluded from the average", func(t *testing.T) {
		points := []Record{
			{"date": "2024-01-01", "value": 1.0, "confidence": "high"},
			{"date": "2024-01-02", "value": 2.0, "confidence": 0.4},
		}
		a := Classify(points, ClassifyOptions{RequiredFields: required})
		assert.InDelta(t, 0.4, a.AvgConfidence, 1e-9)
		assert.Equal(t, 2, a.ValidPoints)
	})

	t.Run("no usable confidence yields zero", func(t *testing.T) {
		points := []Record{
			{"date": "2024-01-01", "value": 1.0, "confidence": math.NaN()},
		}
		a := Classify(points, ClassifyOptions{RequiredFields: required})
		assert.Equal(t, 0.0, a.AvgConfidence)
	})
}

func TestClassifyIdempotent(t *testing.T) {
	points := timelinePoints(10, 7, 0.8)
	opts := ClassifyOptions{RequiredFields: []string{"date", "value"}}

	first := Classify(points, opts)
	second := Classify(points, opts)

	assert.Equal(t, first, second)
}

func TestLevelOrdering(t *testing.T) {
	assert.True(t, LevelUnknown < LevelPoor)
	assert.True(t, LevelPoor < LevelFair)
	assert.True(t, LevelFair < LevelGood)
	assert.True(t, LevelGood < LevelExcellent)
}

func TestLevelJSON(t *testing.T) {
	data, err := LevelGood.MarshalJSON()
	assert.NoError(t, err)
	assert.Equal(t, `"good"`, string(data))
}
