package predictor

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/kilianp07/trafficd/core/schema"
)

// UnknownCategory is the one-hot bucket used for categorical values the
// artifact was not trained on. Open-vocabulary inputs always encode, never
// fail.
const UnknownCategory = "_unknown"

// numericOrder fixes the layout of the numeric head of the encoded vector.
// The artifact's coefficients are keyed by these names; changing the order
// here without retraining breaks every estimate, which is why the encoding
// tests pin it.
var numericOrder = []string{
	"temp", "rain_1h", "snow_1h", "clouds_all",
	"hour", "day_of_week", "month", "is_rush_hour",
}

// Weights is the deserialized trained-model artifact: an intercept, one
// coefficient per numeric feature and one weight per known category of the
// two categorical features.
type Weights struct {
	ModelVersion string             `json:"model_version"`
	Intercept    float64            `json:"intercept"`
	Numeric      map[string]float64 `json:"numeric"`
	Holiday      map[string]float64 `json:"holiday"`
	WeatherMain  map[string]float64 `json:"weather_main"`
}

// LinearPredictor estimates traffic volume as intercept + w·x over the
// encoded feature vector. It is immutable after construction.
type LinearPredictor struct {
	version   string
	intercept float64
	weights   *mat.VecDense
	holidays  []string
	weathers  []string
	holidayAt map[string]int
	weatherAt map[string]int
}

// NewLinear validates the artifact and precomputes the weight vector.
// Category positions are sorted so the encoding is stable across loads.
func NewLinear(w Weights) (*LinearPredictor, error) {
	if w.ModelVersion == "" {
		return nil, fmt.Errorf("artifact missing model_version")
	}
	for _, name := range numericOrder {
		if _, ok := w.Numeric[name]; !ok {
			return nil, fmt.Errorf("artifact missing coefficient for %s", name)
		}
	}
	if len(w.Holiday) == 0 || len(w.WeatherMain) == 0 {
		return nil, fmt.Errorf("artifact missing categorical weights")
	}
	holidays := categoryOrder(w.Holiday)
	weathers := categoryOrder(w.WeatherMain)

	data := make([]float64, 0, len(numericOrder)+len(holidays)+len(weathers))
	for _, name := range numericOrder {
		data = append(data, w.Numeric[name])
	}
	for _, c := range holidays {
		data = append(data, w.Holiday[c])
	}
	for _, c := range weathers {
		data = append(data, w.WeatherMain[c])
	}

	p := &LinearPredictor{
		version:   w.ModelVersion,
		intercept: w.Intercept,
		weights:   mat.NewVecDense(len(data), data),
		holidays:  holidays,
		weathers:  weathers,
		holidayAt: indexOf(holidays),
		weatherAt: indexOf(weathers),
	}
	return p, nil
}

// categoryOrder returns the sorted category names with the unknown bucket
// guaranteed present; an artifact without one gets a zero-weight bucket.
func categoryOrder(m map[string]float64) []string {
	names := make([]string, 0, len(m)+1)
	for c := range m {
		names = append(names, c)
	}
	if _, ok := m[UnknownCategory]; !ok {
		names = append(names, UnknownCategory)
	}
	sort.Strings(names)
	return names
}

func indexOf(names []string) map[string]int {
	idx := make(map[string]int, len(names))
	for i, c := range names {
		idx[c] = i
	}
	return idx
}

// Estimate encodes the record and returns intercept + w·x.
func (p *LinearPredictor) Estimate(rec schema.FeatureRecord) (float64, error) {
	x := p.Encode(rec)
	return p.intercept + mat.Dot(p.weights, x), nil
}

// Version returns the artifact's model version string.
func (p *LinearPredictor) Version() string { return p.version }

// Encode assembles the ordered feature vector: numeric features first in
// numericOrder, then the holiday one-hot block, then the weather one-hot
// block. Unseen categories light the unknown bucket.
func (p *LinearPredictor) Encode(rec schema.FeatureRecord) *mat.VecDense {
	x := mat.NewVecDense(p.weights.Len(), nil)
	x.SetVec(0, rec.Temp)
	x.SetVec(1, rec.Rain1h)
	x.SetVec(2, rec.Snow1h)
	x.SetVec(3, float64(rec.CloudsAll))
	x.SetVec(4, float64(rec.Hour))
	x.SetVec(5, float64(rec.DayOfWeek))
	x.SetVec(6, float64(rec.Month))
	x.SetVec(7, float64(rec.IsRushHour))

	base := len(numericOrder)
	x.SetVec(base+p.categoryIndex(p.holidayAt, rec.Holiday), 1)
	x.SetVec(base+len(p.holidays)+p.categoryIndex(p.weatherAt, rec.WeatherMain), 1)
	return x
}

func (p *LinearPredictor) categoryIndex(at map[string]int, category string) int {
	if i, ok := at[category]; ok {
		return i
	}
	return at[UnknownCategory]
}
