package core

import (
	"context"

	"github.com/pkg/errors"

	"houseprice_service/internal/domain/model"
)

// POISource counts points of interest around a coordinate.
type POISource interface {
	CountTags(ctx context.Context, latitude, longitude float64, tags model.TagSet) (map[model.Tag]int, error)
}

var (
	newBuildValues = map[string]float64{"N": 0, "Y": 1}
	freeholdValues = map[string]float64{"L": 0, "F": 1}
)

// EncodeProperty converts a sample's categorical attributes into numeric
// indicators: a new-build flag and a freehold flag.
func EncodeProperty(sample model.Sample) ([]float64, error) {
	newBuild, err := encodeCategory(newBuildValues, sample.NewBuildFlag, "new_build_flag")
	if err != nil {
		return nil, err
	}
	freehold, err := encodeCategory(freeholdValues, sample.TenureType, "tenure_type")
	if err != nil {
		return nil, err
	}
	return []float64{newBuild, freehold}, nil
}

// EncodeProperties encodes every sample, preserving order.
func EncodeProperties(samples []model.Sample) ([][]float64, error) {
	encoded := make([][]float64, len(samples))
	for i, sample := range samples {
		features, err := EncodeProperty(sample)
		if err != nil {
			return nil, errors.Wrapf(err, "sample %d", i)
		}
		encoded[i] = features
	}
	return encoded, nil
}

func encodeCategory(values map[string]float64, value, field string) (float64, error) {
	encoded, ok := values[value]
	if !ok {
		return 0, errors.Wrapf(model.ErrUnknownCategory, "%s %q", field, value)
	}
	return encoded, nil
}

// POIFeaturizer reduces raw point-of-interest counts into the ordered
// feature vector the tag set declares.
type POIFeaturizer struct {
	source POISource
	tags   model.TagSet
}

func NewPOIFeaturizer(source POISource, tags model.TagSet) *POIFeaturizer {
	return &POIFeaturizer{source: source, tags: tags}
}

// Featurize queries the point's surroundings and returns one count per
// configured feature tag, in declaration order. Tags without matches count
// zero.
func (f *POIFeaturizer) Featurize(ctx context.Context, latitude, longitude float64) ([]float64, error) {
	counts, err := f.source.CountTags(ctx, latitude, longitude, f.tags)
	if err != nil {
		return nil, err
	}
	vector := make([]float64, len(f.tags.Features))
	for i, tag := range f.tags.Features {
		vector[i] = float64(counts[tag])
	}
	return vector, nil
}
