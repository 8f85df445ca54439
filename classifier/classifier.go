package classifier

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/deanrtaylor1/goclassify/vector"
)

var (
	ErrNoCategories    = errors.New("classifier: no categories configured")
	ErrInvalidK        = errors.New("classifier: neighbour count must not be negative")
	ErrNotTrained      = errors.New("classifier: predict called before train")
	ErrInvalidCategory = errors.New("classifier: category index out of range")
	ErrUnknownName     = errors.New("classifier: unknown classifier")
	ErrNilExample      = errors.New("classifier: nil example")
)

// Example is a labelled document: its raw term frequencies and the index of its
// category in the configured category list. Classifiers keep references to examples
// and never modify them.
type Example struct {
	Name     string
	Vector   vector.Vector
	Category int
}

// Config is shared by every classifier constructor
type Config struct {
	// Categories is the ordered category list. A category is identified by its index.
	Categories []string
	// Debug logs training and prediction details. It has no effect on results.
	Debug bool
	// Rand is used for the random fallback choice. If nil, a clock seeded source is used.
	Rand *rand.Rand
}

// Classifier is implemented by every classification algorithm.
// An instance is not safe for concurrent Train and Predict calls.
type Classifier interface {
	// Name is a human readable name including the configuration
	Name() string
	Categories() []string
	// Train discards any previous model and builds a new one from examples
	Train(examples []*Example) error
	// Predict returns the index of the predicted category
	Predict(example *Example) (int, error)
	// Test reports whether the predicted category equals the example's category
	Test(example *Example) (bool, error)
}

// Options carries the algorithm specific parameters used by New
type Options struct {
	K        int
	Negative bool
}

// New creates a classifier by algorithm name, "rocchio" or "knn"
func New(name string, cfg Config, opts Options) (Classifier, error) {
	switch name {
	case "rocchio":
		return NewRocchio(cfg, opts.Negative)
	case "knn":
		return NewKNN(cfg, opts.K)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownName, name)
	}
}

func (c Config) validate() (Config, error) {
	if len(c.Categories) == 0 {
		return c, ErrNoCategories
	}
	categories := make([]string, len(c.Categories))
	copy(categories, c.Categories)
	c.Categories = categories
	if c.Rand == nil {
		seed := uint64(time.Now().UnixNano())
		c.Rand = rand.New(rand.NewPCG(seed, seed>>1))
	}
	return c, nil
}

func checkCategory(e *Example, numCategories int) error {
	if e == nil {
		return ErrNilExample
	}
	if e.Category < 0 || e.Category >= numCategories {
		return fmt.Errorf("%w: example %q has category %d, want [0, %d)", ErrInvalidCategory, e.Name, e.Category, numCategories)
	}
	return nil
}

func checkExamples(examples []*Example, numCategories int) error {
	for _, e := range examples {
		if err := checkCategory(e, numCategories); err != nil {
			return err
		}
	}
	return nil
}

func rawVectors(examples []*Example) []vector.Vector {
	vectors := make([]vector.Vector, len(examples))
	for i, e := range examples {
		vectors[i] = e.Vector
	}
	return vectors
}
