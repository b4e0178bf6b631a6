package model

import (
	"encoding/json"
	"math"
	"time"
)

// Sample is one historical property transaction retrieved from the price
// database. Samples are materialized per prediction request and never
// mutated afterwards.
type Sample struct {
	Latitude       float64   `db:"latitude"`
	Longitude      float64   `db:"longitude"`
	DateOfTransfer time.Time `db:"date_of_transfer"`
	PropertyType   string    `db:"property_type"`
	Price          float64   `db:"price"`
	NewBuildFlag   string    `db:"new_build_flag"`
	TenureType     string    `db:"tenure_type"`
}

// PredictionResult is the outcome of one prediction request. It is returned
// to the caller and never persisted.
type PredictionResult struct {
	PredictedPrice       float64 `json:"predicted_price"`
	ObservedPrice        float64 `json:"observed_price"`
	PercentageError      float64 `json:"percentage_error"`
	AvgCVPercentageError float64 `json:"avg_cv_percentage_error"`
	Correlation          float64 `json:"correlation"`
}

// MarshalJSON renders undefined metrics as null; encoding/json rejects
// NaN and Inf outright.
func (r PredictionResult) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		PredictedPrice       *float64 `json:"predicted_price"`
		ObservedPrice        *float64 `json:"observed_price"`
		PercentageError      *float64 `json:"percentage_error"`
		AvgCVPercentageError *float64 `json:"avg_cv_percentage_error"`
		Correlation          *float64 `json:"correlation"`
	}{
		PredictedPrice:       finite(r.PredictedPrice),
		ObservedPrice:        finite(r.ObservedPrice),
		PercentageError:      finite(r.PercentageError),
		AvgCVPercentageError: finite(r.AvgCVPercentageError),
		Correlation:          finite(r.Correlation),
	})
}

// finite returns nil for values JSON cannot represent.
func finite(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

// Tag is one OSM (category, subcategory) pair, e.g. amenity=school.
type Tag struct {
	Category    string `json:"category"`
	Subcategory string `json:"subcategory"`
}

// TagSet configures point-of-interest featurization. Universe maps each OSM
// category to the subcategories the service recognizes; Features is the
// ordered subset of tags actually used as predictive features. Feature
// vectors follow the order of Features for every sample in a request.
type TagSet struct {
	Universe map[string][]string
	Features []Tag
}

// DefaultTagSet covers the recognized OSM keys around a property; the single
// default predictive feature is the count of nearby schools.
func DefaultTagSet() TagSet {
	return TagSet{
		Universe: map[string][]string{
			"amenity":  {"school", "hospital", "restaurant", "cafe", "pub"},
			"leisure":  {"park", "playground", "sports_centre"},
			"shop":     {"supermarket", "convenience"},
			"tourism":  {"hotel", "museum"},
			"historic": {"memorial", "castle"},
		},
		Features: []Tag{
			{Category: "amenity", Subcategory: "school"},
		},
	}
}
