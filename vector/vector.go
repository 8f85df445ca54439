package vector

import (
	"math"
	"sort"
)

// Vector is a sparse term vector mapping a term to its weight.
// A term that is not present has an implicit weight of 0.
type Vector map[string]float64

// New returns an empty vector
func New() Vector {
	return make(Vector)
}

// Copy returns an independent copy of the vector
func (v Vector) Copy() Vector {
	c := make(Vector, len(v))
	for term, weight := range v {
		c[term] = weight
	}
	return c
}

// Increment adds weight to a single term
func (v Vector) Increment(term string, weight float64) {
	v[term] += weight
}

// Add adds every weight of other into v in place
func (v Vector) Add(other Vector) {
	v.AddScaled(other, 1)
}

// AddScaled adds scale * other into v in place.
// Used with a scale of -1 for the negative Rocchio update.
func (v Vector) AddScaled(other Vector, scale float64) {
	for term, weight := range other {
		v[term] += scale * weight
	}
}

// MaxWeight returns the largest weight in the vector, or 0 if it is empty
func (v Vector) MaxWeight() float64 {
	if len(v) == 0 {
		return 0
	}
	max := math.Inf(-1)
	for _, weight := range v {
		if weight > max {
			max = weight
		}
	}
	return max
}

// Terms returns the terms of the vector in sorted order
func (v Vector) Terms() []string {
	terms := make([]string, 0, len(v))
	for term := range v {
		terms = append(terms, term)
	}
	sort.Strings(terms)
	return terms
}

// Length returns the Euclidean norm of the vector.
// Terms are summed in sorted order so the result does not depend on map iteration.
func (v Vector) Length() float64 {
	var sum float64
	for _, term := range v.Terms() {
		sum += v[term] * v[term]
	}
	return math.Sqrt(sum)
}

// Dot returns the dot product of v and other over the union of their terms.
// Absent terms contribute 0 so only shared terms are summed.
func (v Vector) Dot(other Vector) float64 {
	small, large := v, other
	if len(large) < len(small) {
		small, large = large, small
	}
	var dot float64
	for _, term := range small.Terms() {
		if w, ok := large[term]; ok {
			dot += small[term] * w
		}
	}
	return dot
}

// CosineTo computes the cosine similarity between v and other.
// Returns 0 if either vector has zero length.
func (v Vector) CosineTo(other Vector) float64 {
	return Cosine(v, other, v.Length(), other.Length())
}

// Cosine computes the cosine similarity of a and b given their precomputed lengths
func Cosine(a, b Vector, lengthA, lengthB float64) float64 {
	if lengthA == 0 || lengthB == 0 {
		return 0
	}
	return a.Dot(b) / (lengthA * lengthB)
}
