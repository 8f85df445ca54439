package index

import (
	"math"

	"github.com/deanrtaylor1/goclassify/vector"
)

// Index holds the inverse document frequency of every term seen in a training set.
// It is built once and is read only afterwards.
type Index struct {
	numDocs int
	docFreq map[string]int
	idf     map[string]float64
}

// Build computes document frequencies over docs and derives idf = ln(N/df) for every term.
// A term counts towards a document only if its weight there is positive.
func Build(docs []vector.Vector) *Index {
	docFreq := make(map[string]int)
	for _, doc := range docs {
		for term, weight := range doc {
			if weight > 0 {
				docFreq[term] += 1
			}
		}
	}

	idf := make(map[string]float64, len(docFreq))
	for term, df := range docFreq {
		idf[term] = ComputeIDF(len(docs), df)
	}

	return &Index{
		numDocs: len(docs),
		docFreq: docFreq,
		idf:     idf,
	}
}

// Compute the inverse document frequency of a term found in df of N documents
func ComputeIDF(N int, df int) float64 {
	if df <= 0 || N <= 0 {
		return 0
	}
	return math.Log(float64(N) / float64(df))
}

// IDF returns the idf of term and whether the term was seen during Build
func (idx *Index) IDF(term string) (float64, bool) {
	if idx == nil {
		return 0, false
	}
	v, ok := idx.idf[term]
	return v, ok
}

// DocFreq returns the number of documents that contain term
func (idx *Index) DocFreq(term string) int {
	if idx == nil {
		return 0
	}
	return idx.docFreq[term]
}

// NumDocs returns the number of documents the index was built from
func (idx *Index) NumDocs() int {
	if idx == nil {
		return 0
	}
	return idx.numDocs
}

// Len returns the number of distinct terms in the index
func (idx *Index) Len() int {
	if idx == nil {
		return 0
	}
	return len(idx.idf)
}
