package cli

import (
	"context"
	"fmt"
	"math/rand/v2"
	"os"

	"github.com/spf13/cobra"

	"github.com/deanrtaylor1/goclassify/classifier"
	"github.com/deanrtaylor1/goclassify/config"
	"github.com/deanrtaylor1/goclassify/corpus"
	"github.com/deanrtaylor1/goclassify/evaluation"
	"github.com/deanrtaylor1/goclassify/server"
	"github.com/deanrtaylor1/goclassify/util"
)

// options holds the flags shared by every command
type options struct {
	configPath string
	corpus     string
	cache      string
	categories []string
	debug      bool
	folds      int
	seed       uint64
	parallel   int
	output     string
	json       bool
}

// NewRootCmd builds the goclassify command tree
func NewRootCmd() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:   "goclassify",
		Short: "GoClassify - Rocchio and KNN text classification",
		Long: `GoClassify classifies text documents with Rocchio or K nearest neighbour
classifiers over a TF-IDF vector space.

A corpus is a directory with one sub directory per category:
  corpus/bio/*.txt
  corpus/chem/*.html
  corpus/phys/...`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "", "YAML configuration file")
	flags.StringVar(&opts.corpus, "corpus", "", "Corpus directory")
	flags.StringVar(&opts.cache, "cache", "", "Gzipped document cache, written on first load")
	flags.StringSliceVar(&opts.categories, "categories", nil, "Ordered category names (default bio,chem,phys)")
	flags.BoolVar(&opts.debug, "debug", false, "Log training and prediction details")
	flags.IntVar(&opts.folds, "folds", 0, "Number of cross validation folds (default 10)")
	flags.Uint64Var(&opts.seed, "seed", 0, "Seed for shuffling and random choices (default 1)")
	flags.IntVar(&opts.parallel, "parallel", 0, "Concurrent folds and document readers (default GOMAXPROCS)")
	flags.StringVarP(&opts.output, "output", "o", "", "Write the learning curve data to this file")
	flags.BoolVar(&opts.json, "json", false, "Output as JSON")

	rootCmd.AddCommand(
		newRocchioCmd(opts),
		newKNNCmd(opts),
		newClassifyCmd(opts),
		newServeCmd(opts),
		newCrawlCmd(opts),
		newInteractiveCmd(opts),
	)
	return rootCmd
}

// Execute runs the command named by the process arguments
func Execute() error {
	return NewRootCmd().Execute()
}

// load reads the configuration file and applies the flags given on the command line
func (o *options) load(cmd *cobra.Command) (config.Config, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return cfg, err
	}

	flags := cmd.Flags()
	if flags.Changed("corpus") {
		cfg.Corpus = o.corpus
	}
	if flags.Changed("cache") {
		cfg.Cache = o.cache
	}
	if flags.Changed("categories") {
		cfg.Categories = o.categories
	}
	if flags.Changed("debug") {
		cfg.Debug = o.debug
	}
	if flags.Changed("folds") {
		cfg.Folds = o.folds
	}
	if flags.Changed("seed") {
		cfg.Seed = o.seed
	}
	if flags.Changed("parallel") {
		cfg.Parallel = o.parallel
	}
	if flags.Changed("output") {
		cfg.Output = o.output
	}
	if flags.Changed("k") {
		cfg.K, _ = flags.GetInt("k")
	}
	if flags.Changed("neg") {
		cfg.Negative, _ = flags.GetBool("neg")
	}
	if flags.Changed("addr") {
		cfg.Addr, _ = flags.GetString("addr")
	}
	return cfg, cfg.Validate()
}

// newClassifier creates the classifier named by method. Every call gets its own
// random source derived from the seed and stream so that runs are reproducible.
func newClassifier(cfg config.Config, method string, stream uint64) (classifier.Classifier, error) {
	return classifier.New(method, classifier.Config{
		Categories: cfg.Categories,
		Debug:      cfg.Debug,
		Rand:       rand.New(rand.NewPCG(cfg.Seed, stream)),
	}, classifier.Options{K: cfg.K, Negative: cfg.Negative})
}

func newFactory(cfg config.Config, method string) evaluation.Factory {
	return func(fold int) (classifier.Classifier, error) {
		return newClassifier(cfg, method, uint64(fold))
	}
}

func loadExamples(ctx context.Context, cfg config.Config) ([]*classifier.Example, error) {
	if cfg.Corpus == "" {
		return nil, fmt.Errorf("no corpus directory given, use --corpus or the corpus config key")
	}
	valid, err := util.CheckDirIsValid(cfg.Corpus)
	if err != nil {
		return nil, err
	}
	if !valid {
		return nil, fmt.Errorf("corpus directory %s does not exist", cfg.Corpus)
	}
	loader := &corpus.Loader{
		Categories: cfg.Categories,
		Parallel:   cfg.Parallel,
		CacheFile:  cfg.Cache,
	}
	return loader.Load(ctx, cfg.Corpus)
}

// trainModel trains a classifier on every document of the corpus
func trainModel(ctx context.Context, cfg config.Config, method string) (*server.Model, error) {
	examples, err := loadExamples(ctx, cfg)
	if err != nil {
		return nil, err
	}
	c, err := newClassifier(cfg, method, 0)
	if err != nil {
		return nil, err
	}
	model := server.NewModel(c, cfg.Corpus)
	if err := model.Train(examples); err != nil {
		return nil, err
	}
	return model, nil
}

func createOutput(path string) (*os.File, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("error creating output file: %w", err)
	}
	return f, nil
}
