package domain

import (
	"fmt"
	"math"
)

// TimeDim is the name of the time dimension in coupler output.
const TimeDim = "time"

// Array is a dense row-major numeric array with named dimensions.
type Array struct {
	Name  string
	Dims  []string
	Shape []int
	Data  []float64
}

// NewArray creates an array and checks that the shape matches the data length.
func NewArray(name string, dims []string, shape []int, data []float64) (*Array, error) {
	if len(dims) != len(shape) {
		return nil, fmt.Errorf("array %s has %d dimension names for %d axes", name, len(dims), len(shape))
	}
	if n := shapeSize(shape); n != len(data) {
		return nil, fmt.Errorf("array %s shape %v holds %d values, got %d", name, shape, n, len(data))
	}
	return &Array{Name: name, Dims: dims, Shape: shape, Data: data}, nil
}

// NDim returns the number of axes.
func (a *Array) NDim() int { return len(a.Shape) }

// Len returns the total number of elements.
func (a *Array) Len() int { return len(a.Data) }

// Axis returns the index of the named dimension, or -1.
func (a *Array) Axis(dim string) int {
	for i, d := range a.Dims {
		if d == dim {
			return i
		}
	}
	return -1
}

// Take returns the sub-array at index idx along axis; the axis is removed.
func (a *Array) Take(axis, idx int) (*Array, error) {
	if axis < 0 || axis >= len(a.Shape) {
		return nil, fmt.Errorf("axis %d out of range for %dD array %s", axis, len(a.Shape), a.Name)
	}
	if idx < 0 || idx >= a.Shape[axis] {
		return nil, fmt.Errorf("index %d out of range for axis %d (len %d) of %s", idx, axis, a.Shape[axis], a.Name)
	}

	outer := shapeSize(a.Shape[:axis])
	inner := shapeSize(a.Shape[axis+1:])
	n := a.Shape[axis]

	data := make([]float64, 0, outer*inner)
	for o := 0; o < outer; o++ {
		start := (o*n + idx) * inner
		data = append(data, a.Data[start:start+inner]...)
	}

	dims := make([]string, 0, len(a.Dims)-1)
	dims = append(dims, a.Dims[:axis]...)
	dims = append(dims, a.Dims[axis+1:]...)
	shape := make([]int, 0, len(a.Shape)-1)
	shape = append(shape, a.Shape[:axis]...)
	shape = append(shape, a.Shape[axis+1:]...)

	return &Array{Name: a.Name, Dims: dims, Shape: shape, Data: data}, nil
}

// ReplaceNaN replaces every NaN element with v in place and returns the count.
func (a *Array) ReplaceNaN(v float64) int {
	n := 0
	for i, x := range a.Data {
		if math.IsNaN(x) {
			a.Data[i] = v
			n++
		}
	}
	return n
}

func shapeSize(shape []int) int {
	n := 1
	for _, s := range shape {
		n *= s
	}
	return n
}
