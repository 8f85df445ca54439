package classifier

import (
	"fmt"
	"sort"

	"github.com/deanrtaylor1/goclassify/index"
	"github.com/deanrtaylor1/goclassify/logger"
	"github.com/deanrtaylor1/goclassify/tfidf"
	"github.com/deanrtaylor1/goclassify/vector"
)

// KNN classifies by a majority vote among the k training examples most similar to the query
type KNN struct {
	cfg      Config
	k        int
	index    *index.Index
	training []neighbour
	trained  bool
}

type neighbour struct {
	example *Example
	vector  vector.Vector
	length  float64
}

type candidate struct {
	neighbour  *neighbour
	similarity float64
}

func NewKNN(cfg Config, k int) (*KNN, error) {
	if k < 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidK, k)
	}
	cfg, err := cfg.validate()
	if err != nil {
		return nil, err
	}
	return &KNN{cfg: cfg, k: k}, nil
}

func (c *KNN) Name() string {
	return fmt.Sprintf("KNN%d", c.k)
}

func (c *KNN) Categories() []string {
	return c.cfg.Categories
}

// K returns the neighbour count
func (c *KNN) K() int {
	return c.k
}

func (c *KNN) Train(examples []*Example) error {
	if err := checkExamples(examples, len(c.cfg.Categories)); err != nil {
		return err
	}

	idx := index.Build(rawVectors(examples))

	training := make([]neighbour, len(examples))
	for i, e := range examples {
		weighted := tfidf.Transform(e.Vector, idx)
		training[i] = neighbour{example: e, vector: weighted, length: weighted.Length()}
	}

	c.index = idx
	c.training = training
	c.trained = true

	if c.cfg.Debug {
		logger.HandleDebug("%s: retained %d training vectors over %d terms", c.Name(), len(training), idx.Len())
	}
	return nil
}

// Neighbours returns the examples of the (at most) k training vectors most similar to
// the query, most similar first. Training vectors of zero length are never candidates.
// Equal similarities keep training order.
func (c *KNN) Neighbours(example *Example) ([]*Example, error) {
	top, err := c.nearest(example)
	if err != nil {
		return nil, err
	}
	examples := make([]*Example, len(top))
	for i, cand := range top {
		examples[i] = cand.neighbour.example
	}
	return examples, nil
}

func (c *KNN) nearest(example *Example) ([]candidate, error) {
	if !c.trained {
		return nil, ErrNotTrained
	}
	if example == nil {
		return nil, ErrNilExample
	}

	query := tfidf.Transform(example.Vector, c.index)
	queryLength := query.Length()

	candidates := make([]candidate, 0, len(c.training))
	for i := range c.training {
		n := &c.training[i]
		if n.length == 0 {
			continue
		}
		candidates = append(candidates, candidate{
			neighbour:  n,
			similarity: vector.Cosine(n.vector, query, n.length, queryLength),
		})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].similarity > candidates[j].similarity
	})

	if len(candidates) > c.k {
		candidates = candidates[:c.k]
	}
	return candidates, nil
}

// Predict returns the most frequent category among the nearest neighbours.
// Ties go to the lowest category index. With no neighbours (k of 0, or no training
// vector of non-zero length) the prediction is category 0.
func (c *KNN) Predict(example *Example) (int, error) {
	top, err := c.nearest(example)
	if err != nil {
		return 0, err
	}

	freq := make([]int, len(c.cfg.Categories))
	for _, cand := range top {
		freq[cand.neighbour.example.Category]++
	}

	max := 0
	category := 0
	for i, f := range freq {
		if f > max {
			category = i
			max = f
		}
	}

	if c.cfg.Debug {
		logger.HandleDebug("%s: %q => %s (%d of %d votes)", c.Name(), example.Name, c.cfg.Categories[category], max, len(top))
	}
	return category, nil
}

func (c *KNN) Test(example *Example) (bool, error) {
	if err := checkCategory(example, len(c.cfg.Categories)); err != nil {
		return false, err
	}
	category, err := c.Predict(example)
	if err != nil {
		return false, err
	}
	return category == example.Category, nil
}
