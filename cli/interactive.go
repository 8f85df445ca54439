package cli

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/deanrtaylor1/goclassify/config"
	"github.com/deanrtaylor1/goclassify/server"
	"github.com/deanrtaylor1/goclassify/util"
	webcrawler "github.com/deanrtaylor1/goclassify/web-crawler"
)

const (
	optionRocchio    = "○ Rocchio"
	optionRocchioNeg = "○ Rocchio With Negative Updates"
	optionKNN        = "○ K Nearest Neighbours"

	optionNewDocument = "○ Classify Another Document"
	optionCrawl       = "○ Crawl A Site Into The Corpus"
	optionQuit        = "○ Quit"
)

func newInteractiveCmd(opts *options) *cobra.Command {
	var root string
	cmd := &cobra.Command{
		Use:   "interactive",
		Short: "Classify documents from an interactive prompt",
		Long: `Pick a corpus and a classifier, then classify text or web pages from a prompt.
Without --corpus the corpus is chosen from the sub directories of --root.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.load(cmd)
			if err != nil {
				return err
			}
			if cfg.Corpus == "" {
				cfg.Corpus, err = util.SelectDirectory(root, "Select a corpus to train on:")
				if err != nil {
					return err
				}
			}
			return InitialPrompt(cmd.Context(), cfg)
		},
	}
	cmd.Flags().StringVar(&root, "root", "./corpora", "Directory holding one corpus per sub directory")
	return cmd
}

// Utility function to show the user the current status of training
func logStatus(training bool, model *server.Model) {
	trainState := "✓"
	if training {
		trainState = "⌛"
	}

	model.ModelLock.Lock()
	totalDocs := model.DocCount
	model.ModelLock.Unlock()

	fmt.Printf(util.TerminalGreen+"Training Status: %s | %s | %v documents\n"+util.TerminalReset, trainState, model.Classifier.Name(), totalDocs)
}

// Utility function to get a single input from the user
func getSingleInputPrompt(message string) (string, error) {
	prompt := &survey.Input{
		Message: message,
	}

	var input string
	err := survey.AskOne(prompt, &input, survey.WithValidator(survey.Required))
	return input, err
}

func selectPrompt(message string, options []string) (string, error) {
	prompt := &survey.Select{
		Message: message,
		Options: options,
	}

	var selected string
	if err := survey.AskOne(prompt, &selected); err != nil {
		return "", err
	}
	return selected, nil
}

// Ask the user which classifier to train
func selectMethod(cfg *config.Config) (string, error) {
	selected, err := selectPrompt("Select a classifier:", []string{optionRocchio, optionRocchioNeg, optionKNN})
	if err != nil {
		return "", err
	}

	switch selected {
	case optionRocchioNeg:
		cfg.Negative = true
		return "rocchio", nil
	case optionKNN:
		k, err := getSingleInputPrompt("Number of neighbours:")
		if err != nil {
			return "", err
		}
		cfg.K, err = strconv.Atoi(k)
		if err != nil || cfg.K < 0 {
			return "", fmt.Errorf("invalid number of neighbours %q", k)
		}
		return "knn", nil
	default:
		return "rocchio", nil
	}
}

// Start training in the background and report progress when done
func startTraining(ctx context.Context, cfg config.Config, model *server.Model) {
	go func() {
		logStatus(true, model)
		examples, err := loadExamples(ctx, cfg)
		if err != nil {
			fmt.Println(util.TerminalRed+"Error loading corpus:", err, util.TerminalReset)
			return
		}
		if err := model.Train(examples); err != nil {
			fmt.Println(util.TerminalRed+"Error training:", err, util.TerminalReset)
			return
		}
		logStatus(false, model)
	}()
}

// InitialPrompt asks for a classifier, trains it on the corpus and starts the query loop
func InitialPrompt(ctx context.Context, cfg config.Config) error {
	if ctx == nil {
		ctx = context.Background()
	}

	method, err := selectMethod(&cfg)
	if err != nil {
		return err
	}
	c, err := newClassifier(cfg, method, 0)
	if err != nil {
		return err
	}

	model := server.NewModel(c, cfg.Corpus)
	fmt.Println("Training on corpus: ", cfg.Corpus)
	startTraining(ctx, cfg, model)

	for {
		if err := classifyPrompt(ctx, model); err != nil {
			return err
		}

		selected, err := selectPrompt("Next:", []string{optionNewDocument, optionCrawl, optionQuit})
		if err != nil {
			return err
		}
		switch selected {
		case optionCrawl:
			if err := crawlPrompt(ctx, cfg); err != nil {
				fmt.Println(util.TerminalRed, err, util.TerminalReset)
				continue
			}
			c, err := newClassifier(cfg, method, 0)
			if err != nil {
				return err
			}
			model = server.NewModel(c, cfg.Corpus)
			startTraining(ctx, cfg, model)
		case optionQuit:
			return nil
		}
	}
}

// Get a document from the user, a url or the text itself, and classify it
func classifyPrompt(ctx context.Context, model *server.Model) error {
	input, err := getSingleInputPrompt("Enter text or a url to classify:")
	if err != nil {
		return err
	}

	start := time.Now()
	text := input
	if u, err := url.ParseRequestURI(input); err == nil && (u.Scheme == "http" || u.Scheme == "https") {
		text, err = webcrawler.FetchText(ctx, model.Client, input)
		if err != nil {
			fmt.Println(util.TerminalRed+"Error fetching page:", err, util.TerminalReset)
			return nil
		}
	}

	result, err := model.Classify(text)
	if errors.Is(err, server.ErrModelNotReady) {
		fmt.Println(util.TerminalYellow + "Still training, try again in a moment" + util.TerminalReset)
		return nil
	}
	if err != nil {
		return err
	}

	caser := cases.Title(language.English)
	fmt.Println("------------------------------------")
	fmt.Println(util.TerminalCyan+"Category:", caser.String(result.Category), "("+strconv.Itoa(result.Terms)+" terms in", time.Since(start).Milliseconds(), "ms)"+util.TerminalReset)
	fmt.Println("------------------------------------")
	return nil
}

// Crawl a site into one of the categories of the corpus
func crawlPrompt(ctx context.Context, cfg config.Config) error {
	site, err := getSingleInputPrompt("Enter a website to crawl:")
	if err != nil {
		return err
	}
	if _, err := url.ParseRequestURI(site); err != nil {
		return fmt.Errorf("error parsing url, please check the domain: %w", err)
	}

	options := []string{}
	for _, category := range cfg.Categories {
		options = append(options, "○ "+category)
	}
	selected, err := selectPrompt("Category of the crawled pages:", options)
	if err != nil {
		return err
	}
	category := util.FormatCliResponse(selected)

	written, err := crawl(ctx, cfg, site, category, 100)
	if err != nil {
		return err
	}
	fmt.Printf(util.TerminalGreen+"%d documents added to %s\n"+util.TerminalReset, written, category)
	return nil
}
