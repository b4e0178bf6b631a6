package repository

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	overpass "github.com/serjvanilla/go-overpass"
	"github.com/pkg/errors"

	"houseprice_service/internal/domain/model"
)

// DefaultPOIBoxDegrees is the height and width of the bounding box queried
// around each sample's coordinates.
const DefaultPOIBoxDegrees = 0.01

// POIRepository counts OpenStreetMap points of interest around a coordinate
// through an Overpass endpoint.
type POIRepository struct {
	client *overpass.Client
	box    float64
}

func NewPOIRepository(endpoint string, timeout time.Duration, boxDegrees float64) *POIRepository {
	if boxDegrees <= 0 {
		boxDegrees = DefaultPOIBoxDegrees
	}
	httpClient := &http.Client{
		Timeout: timeout,
	}
	client := overpass.NewWithSettings(endpoint, 1, httpClient)
	return &POIRepository{
		client: &client,
		box:    boxDegrees,
	}
}

// CountTags queries every recognized category within the box centered on the
// point and returns occurrence counts per (category, subcategory) pair in
// the universe. Tags outside the universe are ignored.
func (r *POIRepository) CountTags(ctx context.Context, latitude, longitude float64, tags model.TagSet) (map[model.Tag]int, error) {
	query := buildPOIQuery(latitude, longitude, r.box, tags.Universe)
	result, err := r.client.Query(query)
	if err != nil {
		return nil, errors.Wrapf(model.ErrDataAccess, "overpass query: %s", err)
	}
	return countByTag(&result, tags.Universe), nil
}

// buildPOIQuery renders one Overpass QL query covering all universe
// categories within a box of the given height/width centered on the point.
func buildPOIQuery(latitude, longitude, box float64, universe map[string][]string) string {
	south := latitude - box/2
	west := longitude - box/2
	north := latitude + box/2
	east := longitude + box/2
	bbox := fmt.Sprintf("%f,%f,%f,%f", south, west, north, east)

	categories := make([]string, 0, len(universe))
	for category := range universe {
		categories = append(categories, category)
	}
	sort.Strings(categories)

	var b strings.Builder
	b.WriteString("[out:json];(")
	for _, category := range categories {
		fmt.Fprintf(&b, "node[%q](%s);way[%q](%s);", category, bbox, category, bbox)
	}
	b.WriteString(");out body;>;out skel qt;")
	return b.String()
}

// countByTag tallies recognized (category, subcategory) pairs over nodes and
// ways. Bare geometry members carry no tags and never match.
func countByTag(result *overpass.Result, universe map[string][]string) map[model.Tag]int {
	recognized := make(map[model.Tag]bool)
	for category, subcategories := range universe {
		for _, subcategory := range subcategories {
			recognized[model.Tag{Category: category, Subcategory: subcategory}] = true
		}
	}

	counts := make(map[model.Tag]int)
	for _, node := range result.Nodes {
		countElement(node.Tags, recognized, counts)
	}
	for _, way := range result.Ways {
		countElement(way.Tags, recognized, counts)
	}
	return counts
}

func countElement(elementTags map[string]string, recognized map[model.Tag]bool, counts map[model.Tag]int) {
	for category, subcategory := range elementTags {
		tag := model.Tag{Category: category, Subcategory: subcategory}
		if recognized[tag] {
			counts[tag]++
		}
	}
}
