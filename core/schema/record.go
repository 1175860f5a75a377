package schema

// FeatureRecord is the validated set of traffic-context inputs for one
// prediction. Fields use the wire names of the public API. A record is
// immutable once returned by Validate.
type FeatureRecord struct {
	Holiday     string  `json:"holiday"`
	Temp        float64 `json:"temp"`
	Rain1h      float64 `json:"rain_1h"`
	Snow1h      float64 `json:"snow_1h"`
	CloudsAll   int     `json:"clouds_all"`
	WeatherMain string  `json:"weather_main"`
	Hour        int     `json:"hour"`
	DayOfWeek   int     `json:"day_of_week"`
	Month       int     `json:"month"`
	IsRushHour  int     `json:"is_rush_hour"`
}

// Defaults returns the record applied when a request omits every field.
// The values mirror the training-set medians the model was fitted on.
func Defaults() FeatureRecord {
	return FeatureRecord{
		Holiday:     "None",
		Temp:        288.28,
		Rain1h:      0.0,
		Snow1h:      0.0,
		CloudsAll:   40,
		WeatherMain: "Clouds",
		Hour:        9,
		DayOfWeek:   1,
		Month:       10,
		IsRushHour:  1,
	}
}
