package evaluation

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"math/rand/v2"
	"runtime"
	"sort"
	"text/tabwriter"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/stat"

	"github.com/deanrtaylor1/goclassify/classifier"
)

var (
	ErrTooFewExamples = errors.New("evaluation: fewer examples than folds")
	ErrInvalidFolds   = errors.New("evaluation: at least two folds are required")
	ErrInvalidPoints  = errors.New("evaluation: points must be fractions in (0, 1]")
)

// DefaultPoints are the training set fractions of a learning curve
var DefaultPoints = []float64{0.01, 0.05, 0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8, 0.9, 1}

// Factory returns a fresh classifier for a fold. Folds may run concurrently so
// every call must return an independent instance.
type Factory func(fold int) (classifier.Classifier, error)

// LearningCurve runs k-fold cross validation. For every fold the classifier is
// trained on growing fractions of the other folds and tested on the held out fold.
type LearningCurve struct {
	Folds    int
	Points   []float64
	Seed     uint64
	Parallel int
	Factory  Factory
}

// Point is the accuracy at one training set fraction, averaged over folds
type Point struct {
	Fraction  float64
	TrainSize float64
	Accuracy  float64
	StdDev    float64
}

type Result struct {
	Name       string
	Categories []string
	Points     []Point
	// Confusion[gold][predicted] counts the held out predictions at the largest fraction
	Confusion [][]int
}

type foldResult struct {
	name       string
	categories []string
	sizes      []int
	accuracy   []float64
	confusion  [][]int
}

// Run shuffles examples with the configured seed and evaluates every fold
func (lc *LearningCurve) Run(ctx context.Context, examples []*classifier.Example) (*Result, error) {
	if lc.Folds < 2 {
		return nil, ErrInvalidFolds
	}
	if len(examples) < lc.Folds {
		return nil, fmt.Errorf("%w: %d examples, %d folds", ErrTooFewExamples, len(examples), lc.Folds)
	}
	points := lc.Points
	if len(points) == 0 {
		points = DefaultPoints
	}
	points = append([]float64(nil), points...)
	sort.Float64s(points)
	for _, p := range points {
		if p <= 0 || p > 1 {
			return nil, fmt.Errorf("%w: %v", ErrInvalidPoints, p)
		}
	}

	shuffled := Shuffle(examples, lc.Seed)

	parallel := lc.Parallel
	if parallel <= 0 {
		parallel = runtime.GOMAXPROCS(0)
	}

	results := make([]foldResult, lc.Folds)
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(parallel)
	for fold := 0; fold < lc.Folds; fold++ {
		fold := fold
		g.Go(func() error {
			train, test := Split(shuffled, lc.Folds, fold)
			res, err := lc.runFold(ctx, fold, train, test, points)
			if err != nil {
				return fmt.Errorf("fold %d: %w", fold, err)
			}
			results[fold] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return aggregate(results, points), nil
}

func (lc *LearningCurve) runFold(ctx context.Context, fold int, train, test []*classifier.Example, points []float64) (foldResult, error) {
	c, err := lc.Factory(fold)
	if err != nil {
		return foldResult{}, err
	}

	res := foldResult{
		name:       c.Name(),
		categories: c.Categories(),
		sizes:      make([]int, len(points)),
		accuracy:   make([]float64, len(points)),
	}

	for i, p := range points {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		size := TrainSize(p, len(train))
		if err := c.Train(train[:size]); err != nil {
			return res, err
		}

		last := i == len(points)-1
		if last {
			res.confusion = newMatrix(len(res.categories))
		}

		correct := 0
		for _, e := range test {
			ok, err := c.Test(e)
			if err != nil {
				return res, err
			}
			if ok {
				correct++
			}
			if last {
				predicted, err := c.Predict(e)
				if err != nil {
					return res, err
				}
				res.confusion[e.Category][predicted]++
			}
		}

		res.sizes[i] = size
		res.accuracy[i] = float64(correct) / float64(len(test))
	}
	return res, nil
}

func aggregate(results []foldResult, points []float64) *Result {
	out := &Result{
		Name:       results[0].name,
		Categories: results[0].categories,
		Points:     make([]Point, len(points)),
		Confusion:  newMatrix(len(results[0].categories)),
	}

	accuracy := make([]float64, len(results))
	sizes := make([]float64, len(results))
	for i, p := range points {
		for f, r := range results {
			accuracy[f] = r.accuracy[i]
			sizes[f] = float64(r.sizes[i])
		}
		mean, std := stat.MeanStdDev(accuracy, nil)
		if math.IsNaN(std) {
			std = 0
		}
		out.Points[i] = Point{
			Fraction:  p,
			TrainSize: stat.Mean(sizes, nil),
			Accuracy:  mean,
			StdDev:    std,
		}
	}

	for _, r := range results {
		for gold, row := range r.confusion {
			for predicted, n := range row {
				out.Confusion[gold][predicted] += n
			}
		}
	}
	return out
}

// Shuffle returns a copy of examples in a random order determined by seed
func Shuffle(examples []*classifier.Example, seed uint64) []*classifier.Example {
	shuffled := append([]*classifier.Example(nil), examples...)
	r := rand.New(rand.NewPCG(seed, seed))
	r.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	return shuffled
}

// Split returns the training and test examples of a fold.
// The test set is the fold'th of folds contiguous blocks, the training set is the rest in order.
func Split(examples []*classifier.Example, folds, fold int) (train, test []*classifier.Example) {
	start := fold * len(examples) / folds
	end := (fold + 1) * len(examples) / folds

	test = examples[start:end]
	train = make([]*classifier.Example, 0, len(examples)-len(test))
	train = append(train, examples[:start]...)
	train = append(train, examples[end:]...)
	return train, test
}

// TrainSize is the number of training examples used for fraction p of n, at least one
func TrainSize(p float64, n int) int {
	size := int(math.Round(p * float64(n)))
	if size < 1 {
		size = 1
	}
	if size > n {
		size = n
	}
	return size
}

func newMatrix(n int) [][]int {
	m := make([][]int, n)
	for i := range m {
		m[i] = make([]int, n)
	}
	return m
}

// WriteData writes the curve as whitespace separated columns, readable by gnuplot
func (r *Result) WriteData(w io.Writer) error {
	if _, err := fmt.Fprintf(w, "# %s\n# train_size accuracy stddev\n", r.Name); err != nil {
		return err
	}
	for _, p := range r.Points {
		if _, err := fmt.Fprintf(w, "%.1f %.4f %.4f\n", p.TrainSize, p.Accuracy, p.StdDev); err != nil {
			return err
		}
	}
	return nil
}

// WriteConfusion writes the confusion matrix as a table, one row per gold category
func (r *Result) WriteConfusion(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprint(tw, "gold\\predicted")
	for _, c := range r.Categories {
		fmt.Fprintf(tw, "\t%s", c)
	}
	fmt.Fprintln(tw)
	for gold, row := range r.Confusion {
		fmt.Fprint(tw, r.Categories[gold])
		for _, n := range row {
			fmt.Fprintf(tw, "\t%d", n)
		}
		fmt.Fprintln(tw)
	}
	return tw.Flush()
}

// Final returns the point at the largest training fraction
func (r *Result) Final() Point {
	return r.Points[len(r.Points)-1]
}
