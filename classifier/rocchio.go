package classifier

import (
	"github.com/deanrtaylor1/goclassify/index"
	"github.com/deanrtaylor1/goclassify/logger"
	"github.com/deanrtaylor1/goclassify/tfidf"
	"github.com/deanrtaylor1/goclassify/vector"
)

// Rocchio classifies by the nearest category prototype under cosine similarity.
// A prototype is the sum of the tf-idf vectors of the training examples in its category.
// The modified variant also subtracts every example from the prototypes of the other categories.
type Rocchio struct {
	cfg        Config
	modified   bool
	index      *index.Index
	prototypes []vector.Vector
	lengths    []float64
}

func NewRocchio(cfg Config, modified bool) (*Rocchio, error) {
	cfg, err := cfg.validate()
	if err != nil {
		return nil, err
	}
	return &Rocchio{cfg: cfg, modified: modified}, nil
}

func (r *Rocchio) Name() string {
	if r.modified {
		return "RocchioModified"
	}
	return "Rocchio"
}

func (r *Rocchio) Categories() []string {
	return r.cfg.Categories
}

// Prototype returns a copy of the prototype vector for a category, or nil before training
func (r *Rocchio) Prototype(category int) vector.Vector {
	if r.prototypes == nil || category < 0 || category >= len(r.prototypes) {
		return nil
	}
	return r.prototypes[category].Copy()
}

func (r *Rocchio) Train(examples []*Example) error {
	if err := checkExamples(examples, len(r.cfg.Categories)); err != nil {
		return err
	}

	idx := index.Build(rawVectors(examples))

	prototypes := make([]vector.Vector, len(r.cfg.Categories))
	for i := range prototypes {
		prototypes[i] = vector.New()
	}

	for _, e := range examples {
		weighted := tfidf.Transform(e.Vector, idx)
		prototypes[e.Category].Add(weighted)

		if r.modified {
			for i := range prototypes {
				if i != e.Category {
					prototypes[i].AddScaled(weighted, -1)
				}
			}
		}
	}

	lengths := make([]float64, len(prototypes))
	for i, p := range prototypes {
		lengths[i] = p.Length()
	}

	r.index = idx
	r.prototypes = prototypes
	r.lengths = lengths

	if r.cfg.Debug {
		for i, p := range prototypes {
			logger.HandleDebug("%s prototype %s: %d terms, length %.4f", r.Name(), r.cfg.Categories[i], len(p), lengths[i])
		}
	}
	return nil
}

// Predict returns the category whose prototype is most similar to the example.
// Categories are scanned in index order and only a strictly greater similarity
// replaces the current best, so ties go to the lowest index. A prototype or query
// of zero length has no defined similarity; if no category has one, a category is
// chosen uniformly at random.
func (r *Rocchio) Predict(example *Example) (int, error) {
	if r.prototypes == nil {
		return 0, ErrNotTrained
	}
	if example == nil {
		return 0, ErrNilExample
	}

	weighted := tfidf.Transform(example.Vector, r.index)
	length := weighted.Length()

	category := -1
	best := 0.0
	if length != 0 {
		for i, prototype := range r.prototypes {
			if r.lengths[i] == 0 {
				continue
			}
			similarity := vector.Cosine(weighted, prototype, length, r.lengths[i])
			if category == -1 || similarity > best {
				category = i
				best = similarity
			}
		}
	}

	if category == -1 {
		category = r.cfg.Rand.IntN(len(r.cfg.Categories))
		if r.cfg.Debug {
			logger.HandleDebug("%s: no similarity for %q, picked %s at random", r.Name(), example.Name, r.cfg.Categories[category])
		}
	} else if r.cfg.Debug {
		logger.HandleDebug("%s: %q => %s (%.4f)", r.Name(), example.Name, r.cfg.Categories[category], best)
	}
	return category, nil
}

func (r *Rocchio) Test(example *Example) (bool, error) {
	if err := checkCategory(example, len(r.cfg.Categories)); err != nil {
		return false, err
	}
	category, err := r.Predict(example)
	if err != nil {
		return false, err
	}
	return category == example.Category, nil
}
