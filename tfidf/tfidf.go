package tfidf

import (
	"github.com/deanrtaylor1/goclassify/index"
	"github.com/deanrtaylor1/goclassify/vector"
)

// Transform computes the tf-idf vector for a raw term frequency vector.
// Each term frequency is scaled by the maximum frequency in the vector and multiplied
// by the idf of the term in idx. Terms the index has never seen are left out, as is
// everything when the vector carries no weight, so the result never holds a term that
// raw does not. raw is not modified.
func Transform(raw vector.Vector, idx *index.Index) vector.Vector {
	weighted := make(vector.Vector, len(raw))

	maxWeight := raw.MaxWeight()
	if maxWeight == 0 {
		return weighted
	}

	for term, weight := range raw {
		idf, ok := idx.IDF(term)
		if !ok {
			continue
		}
		weighted[term] = ComputeTF(weight, maxWeight) * idf
	}
	return weighted
}

// This function computes the term frequency of a term relative to the most frequent term in the document
func ComputeTF(weight float64, maxWeight float64) float64 {
	if maxWeight == 0 {
		return 0
	}
	return weight / maxWeight
}
