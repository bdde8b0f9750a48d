package quality

import (
	"math"
	"reflect"
	"strings"
)

var (
	requiredWeight = 0.8
	optionalWeight = 0.2
)

// Available reports whether a field value carries usable data. Nil values,
// empty or whitespace-only strings, NaN, empty slices and empty maps are all
// treated as missing.
func Available(v any) bool {
	if v == nil {
		return false
	}

	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val) != ""
	case float64:
		return !math.IsNaN(val)
	case float32:
		return !math.IsNaN(float64(val))
	case []any:
		return len(val) > 0
	case map[string]any:
		return len(val) > 0
	}

	// Non-JSON container types still count as empty when they hold nothing.
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Map, reflect.Array:
		return rv.Len() > 0
	case reflect.Ptr, reflect.Interface:
		return !rv.IsNil()
	}

	return true
}

// AssessCompleteness evaluates a record against required and optional field
// lists. A nil or empty record is treated as having every field missing
// rather than being an error, so a malformed upstream payload degrades into
// the poor-quality path instead of failing the request.
func AssessCompleteness(rec Record, required, optional []string) CompletenessResult {
	res := CompletenessResult{
		MissingRequired: []string{},
		MissingOptional: []string{},
	}

	seen := make(map[string]bool, len(required)+len(optional))

	requiredTotal := 0
	requiredAvailable := 0
	for _, field := range required {
		if seen[field] {
			continue
		}
		seen[field] = true
		requiredTotal++

		if rec != nil && Available(rec[field]) {
			requiredAvailable++
		} else {
			res.MissingRequired = append(res.MissingRequired, field)
		}
	}

	optionalTotal := 0
	optionalAvailable := 0
	for _, field := range optional {
		if seen[field] {
			// Already counted as required; required wins on overlap.
			continue
		}
		seen[field] = true
		optionalTotal++

		if rec != nil && Available(rec[field]) {
			optionalAvailable++
		} else {
			res.MissingOptional = append(res.MissingOptional, field)
		}
	}

	totalFields := requiredTotal + optionalTotal
	if totalFields == 0 {
		// Nothing to check is vacuous success.
		res.Score = 1
		res.Completeness = 100
		return res
	}

	available := requiredAvailable + optionalAvailable
	res.Completeness = int(math.Round(100 * float64(available) / float64(totalFields)))

	// An absent requirement category neither penalizes nor credits the
	// score: its weight folds into the category that does exist.
	switch {
	case requiredTotal == 0:
		res.Score = float64(optionalAvailable) / float64(optionalTotal)
	case optionalTotal == 0:
		res.Score = float64(requiredAvailable) / float64(requiredTotal)
	default:
		requiredFraction := float64(requiredAvailable) / float64(requiredTotal)
		optionalFraction := float64(optionalAvailable) / float64(optionalTotal)
		res.Score = requiredWeight*requiredFraction + optionalWeight*optionalFraction
	}
	res.Score = clip(res.Score, 0, 1)

	return res
}

func clip(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
