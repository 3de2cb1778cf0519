package geometry

import (
	"github.com/df07/go-pathtracer/pkg/core"
	"github.com/df07/go-pathtracer/pkg/material"
)

// List is an ordered collection of shapes that is itself a Shape.
// Hit tests every member, so cost is linear in the number of shapes.
type List struct {
	Shapes []Shape
}

// NewList creates a list holding the given shapes
func NewList(shapes ...Shape) *List {
	return &List{Shapes: append([]Shape(nil), shapes...)}
}

// Add appends a shape to the list
func (l *List) Add(shape Shape) {
	l.Shapes = append(l.Shapes, shape)
}

// Clear removes every shape
func (l *List) Clear() {
	l.Shapes = nil
}

// Len returns the number of shapes
func (l *List) Len() int {
	return len(l.Shapes)
}

// Hit returns the closest intersection across all members
func (l *List) Hit(ray core.Ray, rayT core.Interval) (*material.HitRecord, bool) {
	var closestHit *material.HitRecord
	closestSoFar := rayT.Max

	for _, shape := range l.Shapes {
		// Each hit narrows the window so later shapes can only be closer
		if hit, isHit := shape.Hit(ray, core.NewInterval(rayT.Min, closestSoFar)); isHit {
			closestSoFar = hit.T
			closestHit = hit
		}
	}

	return closestHit, closestHit != nil
}
