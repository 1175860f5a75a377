package schema

import (
	"encoding/json"
	"fmt"
	"math"
)

// ValidationError reports a request field that violates its declared type or
// bound. It is a client-class error: the caller sent bad input.
type ValidationError struct {
	Field  string
	Detail string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("field %s: %s", e.Field, e.Detail)
}

func invalid(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Detail: fmt.Sprintf(format, args...)}
}

// Validate builds a FeatureRecord from an untyped key-value mapping. Absent
// fields take their documented defaults; present fields must satisfy their
// declared type and bound. Bounds are hard: out-of-range input is an error,
// never clamped. Unknown extra keys are ignored for forward compatibility.
// Categorical fields (holiday, weather_main) accept any string; encoding of
// unseen categories is the predictor's concern, not the validator's.
func Validate(raw map[string]any) (FeatureRecord, error) {
	rec := Defaults()

	if v, ok := raw["holiday"]; ok {
		s, err := asString("holiday", v)
		if err != nil {
			return FeatureRecord{}, err
		}
		rec.Holiday = s
	}
	if v, ok := raw["temp"]; ok {
		f, err := asFloat("temp", v)
		if err != nil {
			return FeatureRecord{}, err
		}
		if f < 200 || f > 350 {
			return FeatureRecord{}, invalid("temp", "must be between 200 and 350 kelvin, got %g", f)
		}
		rec.Temp = f
	}
	if v, ok := raw["rain_1h"]; ok {
		f, err := asFloat("rain_1h", v)
		if err != nil {
			return FeatureRecord{}, err
		}
		if f < 0 {
			return FeatureRecord{}, invalid("rain_1h", "must be >= 0, got %g", f)
		}
		rec.Rain1h = f
	}
	if v, ok := raw["snow_1h"]; ok {
		f, err := asFloat("snow_1h", v)
		if err != nil {
			return FeatureRecord{}, err
		}
		if f < 0 {
			return FeatureRecord{}, invalid("snow_1h", "must be >= 0, got %g", f)
		}
		rec.Snow1h = f
	}
	if v, ok := raw["clouds_all"]; ok {
		n, err := asInt("clouds_all", v)
		if err != nil {
			return FeatureRecord{}, err
		}
		if n < 0 || n > 100 {
			return FeatureRecord{}, invalid("clouds_all", "must be between 0 and 100, got %d", n)
		}
		rec.CloudsAll = n
	}
	if v, ok := raw["weather_main"]; ok {
		s, err := asString("weather_main", v)
		if err != nil {
			return FeatureRecord{}, err
		}
		rec.WeatherMain = s
	}
	if v, ok := raw["hour"]; ok {
		n, err := asInt("hour", v)
		if err != nil {
			return FeatureRecord{}, err
		}
		if n < 0 || n > 23 {
			return FeatureRecord{}, invalid("hour", "must be between 0 and 23, got %d", n)
		}
		rec.Hour = n
	}
	if v, ok := raw["day_of_week"]; ok {
		n, err := asInt("day_of_week", v)
		if err != nil {
			return FeatureRecord{}, err
		}
		if n < 0 || n > 6 {
			return FeatureRecord{}, invalid("day_of_week", "must be between 0 and 6, got %d", n)
		}
		rec.DayOfWeek = n
	}
	if v, ok := raw["month"]; ok {
		n, err := asInt("month", v)
		if err != nil {
			return FeatureRecord{}, err
		}
		if n < 1 || n > 12 {
			return FeatureRecord{}, invalid("month", "must be between 1 and 12, got %d", n)
		}
		rec.Month = n
	}
	if v, ok := raw["is_rush_hour"]; ok {
		n, err := asFlag("is_rush_hour", v)
		if err != nil {
			return FeatureRecord{}, err
		}
		rec.IsRushHour = n
	}

	return rec, nil
}

func asString(field string, v any) (string, error) {
	s, ok := v.(string)
	if !ok {
		return "", invalid(field, "must be a string, got %T", v)
	}
	return s, nil
}

// asFloat accepts the numeric shapes a decoded JSON body can carry.
func asFloat(field string, v any) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case int:
		return float64(n), nil
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			return 0, invalid(field, "must be a number, got %q", n.String())
		}
		return f, nil
	default:
		return 0, invalid(field, "must be a number, got %T", v)
	}
}

// asInt rejects fractional values: 75.5 is a type violation for an integer
// field, not a value to round.
func asInt(field string, v any) (int, error) {
	f, err := asFloat(field, v)
	if err != nil {
		return 0, err
	}
	if f != math.Trunc(f) {
		return 0, invalid(field, "must be an integer, got %g", f)
	}
	return int(f), nil
}

// asFlag accepts 0, 1 or a JSON boolean.
func asFlag(field string, v any) (int, error) {
	if b, ok := v.(bool); ok {
		if b {
			return 1, nil
		}
		return 0, nil
	}
	n, err := asInt(field, v)
	if err != nil {
		return 0, err
	}
	if n != 0 && n != 1 {
		return 0, invalid(field, "must be 0 or 1, got %d", n)
	}
	return n, nil
}
