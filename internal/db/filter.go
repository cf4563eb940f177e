package db

import (
	"go.mongodb.org/mongo-driver/bson"
)

// FilterBuilder helps build MongoDB filters fluently
type FilterBuilder struct {
	filter bson.M
}

// NewFilter creates a new FilterBuilder
func NewFilter() *FilterBuilder {
	return &FilterBuilder{filter: bson.M{}}
}

// Eq adds an equality condition
func (f *FilterBuilder) Eq(field string, value interface{}) *FilterBuilder {
	f.filter[field] = value
	return f
}

// In adds an $in condition (value in array)
func (f *FilterBuilder) In(field string, values interface{}) *FilterBuilder {
	f.filter[field] = bson.M{"$in": values}
	return f
}

// Regex adds a regex pattern match
func (f *FilterBuilder) Regex(field string, pattern string, options string) *FilterBuilder {
	f.filter[field] = bson.M{"$regex": pattern, "$options": options}
	return f
}

// Near adds a proximity condition on a 2dsphere-indexed field. Matches
// lie within maxDistance of the point and come back nearest-first.
func (f *FilterBuilder) Near(field string, lng, lat, maxDistance float64) *FilterBuilder {
	f.filter[field] = bson.M{
		"$near": bson.M{
			"$maxDistance": maxDistance,
			"$geometry": bson.M{
				"type":        "Point",
				"coordinates": []float64{lng, lat},
			},
		},
	}
	return f
}

// Or combines multiple filters with OR
func (f *FilterBuilder) Or(filters ...bson.M) *FilterBuilder {
	if len(filters) > 0 {
		f.filter["$or"] = filters
	}
	return f
}

// Build returns the final bson.M filter
func (f *FilterBuilder) Build() bson.M {
	return f.filter
}

// Empty returns an empty filter (matches all documents)
func Empty() bson.M {
	return bson.M{}
}
