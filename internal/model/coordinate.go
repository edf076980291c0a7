package model

import (
	"fmt"
	"math"

	"github.com/go-spatial/geom"
)

// bboxHalfSpan is how far the bounding box extends from the coordinate, in degrees.
const bboxHalfSpan = 0.01

// ValidationError reports an out-of-range coordinate component.
type ValidationError struct {
	Field string
	Value float64
	Min   float64
	Max   float64
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %v out of range [%v, %v]", e.Field, e.Value, e.Min, e.Max)
}

// Coordinate is a WGS84 position in degrees.
type Coordinate struct {
	Lat float64
	Lon float64
}

// Validate rejects latitudes outside [-90, 90] and longitudes outside [-180, 180].
func (c Coordinate) Validate() error {
	if math.IsNaN(c.Lat) || c.Lat < -90 || c.Lat > 90 {
		return &ValidationError{Field: "latitude", Value: c.Lat, Min: -90, Max: 90}
	}
	if math.IsNaN(c.Lon) || c.Lon < -180 || c.Lon > 180 {
		return &ValidationError{Field: "longitude", Value: c.Lon, Min: -180, Max: 180}
	}
	return nil
}

func (c Coordinate) String() string {
	return fmt.Sprintf("(%v, %v)", c.Lat, c.Lon)
}

// BoundingBox is an extent ordered (minLon, minLat, maxLon, maxLat).
type BoundingBox struct {
	extent geom.Extent
}

// BoundingBox expands the coordinate by 0.01 degrees on both axes.
// The box is not clamped at the poles or the antimeridian.
func (c Coordinate) BoundingBox() BoundingBox {
	return BoundingBox{extent: geom.Extent{
		c.Lon - bboxHalfSpan,
		c.Lat - bboxHalfSpan,
		c.Lon + bboxHalfSpan,
		c.Lat + bboxHalfSpan,
	}}
}

func (b BoundingBox) MinLon() float64 { return b.extent.MinX() }
func (b BoundingBox) MinLat() float64 { return b.extent.MinY() }
func (b BoundingBox) MaxLon() float64 { return b.extent.MaxX() }
func (b BoundingBox) MaxLat() float64 { return b.extent.MaxY() }

// BBox returns the box in wire order [minLon, minLat, maxLon, maxLat].
func (b BoundingBox) BBox() []float64 {
	return []float64{b.MinLon(), b.MinLat(), b.MaxLon(), b.MaxLat()}
}
