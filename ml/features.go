package ml

import (
	"fmt"
	"sort"
)

const (
	MedianIncome           = "Median_Income"
	MedianAge              = "Median_Age"
	TotRooms               = "Tot_Rooms"
	TotBedrooms            = "Tot_Bedrooms"
	Population             = "Population"
	Households             = "Households"
	Latitude               = "Latitude"
	Longitude              = "Longitude"
	DistanceToCoast        = "Distance_to_coast"
	DistanceToLA           = "Distance_to_LA"
	DistanceToSanDiego     = "Distance_to_SanDiego"
	DistanceToSanJose      = "Distance_to_SanJose"
	DistanceToSanFrancisco = "Distance_to_SanFrancisco"
)

// HousingFeatures are the raw attributes of one housing block.
type HousingFeatures struct {
	MedianIncome           float64 `json:"median_income"`
	MedianAge              float64 `json:"median_age"`
	TotRooms               float64 `json:"tot_rooms"`
	TotBedrooms            float64 `json:"tot_bedrooms"`
	Population             float64 `json:"population"`
	Households             float64 `json:"households"`
	Latitude               float64 `json:"latitude"`
	Longitude              float64 `json:"longitude"`
	DistanceToCoast        float64 `json:"distance_to_coast"`
	DistanceToLA           float64 `json:"distance_to_la"`
	DistanceToSanDiego     float64 `json:"distance_to_san_diego"`
	DistanceToSanJose      float64 `json:"distance_to_san_jose"`
	DistanceToSanFrancisco float64 `json:"distance_to_san_francisco"`
}

// DefaultHousingFeatures returns a downtown Los Angeles block, the values the
// estimate form starts from.
func DefaultHousingFeatures() HousingFeatures {
	return HousingFeatures{
		MedianIncome:           3.5,
		MedianAge:              29,
		TotRooms:               2000,
		TotBedrooms:            400,
		Population:             1200,
		Households:             380,
		Latitude:               34.05,
		Longitude:              -118.25,
		DistanceToCoast:        20,
		DistanceToLA:           10,
		DistanceToSanDiego:     180,
		DistanceToSanJose:      500,
		DistanceToSanFrancisco: 550,
	}
}

// FeatureNames returns the column order every fitted artifact expects.
func FeatureNames() []string {
	return []string{
		MedianIncome,
		MedianAge,
		TotRooms,
		TotBedrooms,
		Population,
		Households,
		Latitude,
		Longitude,
		DistanceToCoast,
		DistanceToLA,
		DistanceToSanDiego,
		DistanceToSanJose,
		DistanceToSanFrancisco,
	}
}

// FeatureVector is an ordered set of named values. Columns and Values always
// have the same length.
type FeatureVector struct {
	Columns []string
	Values  []float64
}

// Assemble places the features in canonical column order.
func Assemble(f HousingFeatures) FeatureVector {
	return FeatureVector{
		Columns: FeatureNames(),
		Values: []float64{
			f.MedianIncome,
			f.MedianAge,
			f.TotRooms,
			f.TotBedrooms,
			f.Population,
			f.Households,
			f.Latitude,
			f.Longitude,
			f.DistanceToCoast,
			f.DistanceToLA,
			f.DistanceToSanDiego,
			f.DistanceToSanJose,
			f.DistanceToSanFrancisco,
		},
	}
}

func (v FeatureVector) Len() int {
	return len(v.Values)
}

// Index returns the position of the named column, or -1.
func (v FeatureVector) Index(name string) int {
	for i, column := range v.Columns {
		if column == name {
			return i
		}
	}
	return -1
}

func (v FeatureVector) Get(name string) (float64, bool) {
	idx := v.Index(name)
	if idx < 0 || idx >= len(v.Values) {
		return 0, false
	}
	return v.Values[idx], true
}

func (v FeatureVector) Clone() FeatureVector {
	return FeatureVector{
		Columns: append([]string(nil), v.Columns...),
		Values:  append([]float64(nil), v.Values...),
	}
}

// Drop returns a copy of the vector without the named column.
func (v FeatureVector) Drop(name string) FeatureVector {
	out := FeatureVector{
		Columns: make([]string, 0, len(v.Columns)),
		Values:  make([]float64, 0, len(v.Values)),
	}
	for i, column := range v.Columns {
		if column == name {
			continue
		}
		out.Columns = append(out.Columns, column)
		if i < len(v.Values) {
			out.Values = append(out.Values, v.Values[i])
		}
	}
	return out
}

// Range is the recommended interval for a raw input.
type Range struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

var featureRanges = map[string]Range{
	MedianIncome:           {Min: 0.5, Max: 15.0},
	MedianAge:              {Min: 1, Max: 100},
	TotRooms:               {Min: 10, Max: 50000},
	TotBedrooms:            {Min: 2, Max: 10000},
	Population:             {Min: 3, Max: 40000},
	Households:             {Min: 1, Max: 10000},
	Latitude:               {Min: 32.0, Max: 42.0},
	Longitude:              {Min: -125.0, Max: -114.0},
	DistanceToCoast:        {Min: 0, Max: 300},
	DistanceToLA:           {Min: 0, Max: 1000},
	DistanceToSanDiego:     {Min: 0, Max: 1000},
	DistanceToSanJose:      {Min: 0, Max: 1000},
	DistanceToSanFrancisco: {Min: 0, Max: 1000},
}

func FeatureRanges() map[string]Range {
	ranges := make(map[string]Range, len(featureRanges))
	for name, r := range featureRanges {
		ranges[name] = r
	}
	return ranges
}

// CheckRanges lists the columns whose value falls outside the recommended
// range. It never rejects a vector; the pipeline accepts any finite input.
func CheckRanges(v FeatureVector) []string {
	warnings := make([]string, 0)
	for i, column := range v.Columns {
		r, ok := featureRanges[column]
		if !ok || i >= len(v.Values) {
			continue
		}
		value := v.Values[i]
		if value < r.Min || value > r.Max {
			warnings = append(warnings, fmt.Sprintf("%s=%g outside recommended range [%g, %g]", column, value, r.Min, r.Max))
		}
	}
	sort.Strings(warnings)
	return warnings
}
