// Package latlon provides a worked instance of the "scoring object
// extension" pattern spec.md §9 describes: a concrete, named implementation
// of one member of a family (here, lat-long distance metrics) that a
// caller registers under a registry.Registry by name, rather than the
// module providing a closed enum of every possible metric.
package latlon

import (
	"github.com/golang/geo/s2"

	"github.com/weave-search/honeytable/registry"
)

// earthRadiusKM is the mean Earth radius used to convert the unit-sphere
// angular distance s2 reports into kilometres.
const earthRadiusKM = 6371.0088

// LatLong is a point in degrees, matching s2's own constructor convention
// (s2.LatLngFromDegrees) rather than exposing s2 types directly in this
// package's public surface.
type LatLong struct {
	Lat float64
	Lng float64
}

// Metric is the capability set spec.md §9 assigns to a scoring-object
// family member: a name for registry lookup plus its one domain operation.
type Metric interface {
	Name() string
	Distance(a, b LatLong) float64
}

// haversineMetric implements Metric using s2's spherical distance, which is
// equivalent to the haversine formula for points on a sphere.
type haversineMetric struct{}

// NewHaversineMetric returns the "haversine-s2" Metric.
func NewHaversineMetric() Metric { return haversineMetric{} }

func (haversineMetric) Name() string { return "haversine-s2" }

func (haversineMetric) Distance(a, b LatLong) float64 {
	pa := s2.LatLngFromDegrees(a.Lat, a.Lng)
	pb := s2.LatLngFromDegrees(b.Lat, b.Lng)
	return pa.Distance(pb).Radians() * earthRadiusKM
}

// NewRegistry returns a registry.Registry[Metric] pre-populated with the
// standard entries this package ships (spec.md §9: "initialised with the
// standard entries and extended by callers").
func NewRegistry() *registry.Registry[Metric] {
	r := registry.New[Metric]()
	_ = r.Register("haversine-s2", NewHaversineMetric())
	return r
}
