package cli

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/deanrtaylor1/goclassify/config"
	"github.com/deanrtaylor1/goclassify/corpus"
	"github.com/deanrtaylor1/goclassify/evaluation"
	"github.com/deanrtaylor1/goclassify/lexer"
	"github.com/deanrtaylor1/goclassify/logger"
	"github.com/deanrtaylor1/goclassify/server"
	"github.com/deanrtaylor1/goclassify/util"
	webcrawler "github.com/deanrtaylor1/goclassify/web-crawler"
)

func newRocchioCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rocchio",
		Short: "Learning curve of the Rocchio classifier",
		Long: `Run a cross validated learning curve of the Rocchio classifier over the corpus.

With --neg every training document is also subtracted from the prototypes of the
categories it does not belong to.

Examples:
  goclassify rocchio --corpus ./corpus
  goclassify rocchio --corpus ./corpus --neg -o rocchio.data`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCurve(cmd, opts, "rocchio")
		},
	}
	cmd.Flags().Bool("neg", false, "Use the modified Rocchio with negative updates")
	return cmd
}

func newKNNCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "knn",
		Short: "Learning curve of the K nearest neighbour classifier",
		Long: `Run a cross validated learning curve of the K nearest neighbour classifier over the corpus.

Examples:
  goclassify knn --corpus ./corpus
  goclassify knn --corpus ./corpus -K 3`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCurve(cmd, opts, "knn")
		},
	}
	cmd.Flags().IntP("k", "K", 5, "Number of neighbours that vote")
	return cmd
}

// addMethodFlags adds the flags selecting a classifier to commands that train one
func addMethodFlags(cmd *cobra.Command, method *string) {
	cmd.Flags().StringVarP(method, "method", "m", "rocchio", "Classifier to train, rocchio or knn")
	cmd.Flags().Bool("neg", false, "Use the modified Rocchio with negative updates")
	cmd.Flags().IntP("k", "K", 5, "Number of neighbours that vote")
}

func runCurve(cmd *cobra.Command, opts *options, method string) error {
	cfg, err := opts.load(cmd)
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	examples, err := loadExamples(ctx, cfg)
	if err != nil {
		return err
	}

	start := time.Now()
	lc := &evaluation.LearningCurve{
		Folds:    cfg.Folds,
		Points:   cfg.Points,
		Seed:     cfg.Seed,
		Parallel: cfg.Parallel,
		Factory:  newFactory(cfg, method),
	}
	result, err := lc.Run(ctx, examples)
	if err != nil {
		return err
	}
	logger.HandleLog(fmt.Sprintf("%s%s: %d folds over %d documents in %dMs, final accuracy %.4f%s", util.TerminalGreen, result.Name, cfg.Folds, len(examples), time.Since(start).Milliseconds(), result.Final().Accuracy, util.TerminalReset))

	if cfg.Output != "" {
		if err := writeCurveFile(cfg.Output, result); err != nil {
			return err
		}
	}

	out := cmd.OutOrStdout()
	if opts.json {
		j, err := util.ToJSON(result, false, "")
		if err != nil {
			return err
		}
		fmt.Fprintln(out, j)
		return nil
	}
	if err := result.WriteData(out); err != nil {
		return err
	}
	fmt.Fprintln(out)
	return result.WriteConfusion(out)
}

func writeCurveFile(path string, result *evaluation.Result) error {
	f, err := createOutput(path)
	if err != nil {
		return err
	}
	if err := result.WriteData(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

type classifyOutput struct {
	Classifier string   `json:"classifier"`
	Category   string   `json:"category"`
	Index      int      `json:"index"`
	TopTerms   []string `json:"top_terms"`
}

func newClassifyCmd(opts *options) *cobra.Command {
	var method, pageURL string
	cmd := &cobra.Command{
		Use:   "classify [text]",
		Short: "Train on the corpus and classify a document",
		Long: `Train a classifier on the whole corpus and print the category of a document.
The document is the text arguments, the page at --url, or standard input.

Examples:
  goclassify classify --corpus ./corpus "the cell membrane"
  goclassify classify --corpus ./corpus -m knn -K 3 --url https://example.com/article
  cat paper.txt | goclassify classify --corpus ./corpus`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.load(cmd)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}

			var text string
			switch {
			case pageURL != "":
				text, err = webcrawler.FetchText(ctx, &http.Client{Timeout: 30 * time.Second}, pageURL)
			case len(args) > 0:
				text = strings.Join(args, " ")
			default:
				var b []byte
				b, err = io.ReadAll(cmd.InOrStdin())
				text = string(b)
			}
			if err != nil {
				return err
			}

			model, err := trainModel(ctx, cfg, method)
			if err != nil {
				return err
			}
			result, err := model.Classify(text)
			if err != nil {
				return err
			}

			output := classifyOutput{
				Classifier: model.Classifier.Name(),
				Category:   result.Category,
				Index:      result.Index,
				TopTerms:   []string{},
			}
			for _, tw := range lexer.TopTerms(corpus.DocumentVector(text, ""), 5) {
				output.TopTerms = append(output.TopTerms, tw.Term)
			}

			out := cmd.OutOrStdout()
			if opts.json {
				j, err := util.ToJSON(output, false, "")
				if err != nil {
					return err
				}
				fmt.Fprintln(out, j)
				return nil
			}
			fmt.Fprintln(out, output.Category)
			return nil
		},
	}
	addMethodFlags(cmd, &method)
	cmd.Flags().StringVar(&pageURL, "url", "", "Classify the page at this url")
	return cmd
}

func newServeCmd(opts *options) *cobra.Command {
	var method string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the classification API",
		Long: `Train a classifier on the corpus in the background and serve the JSON API.

Routes:
  GET  /api/categories     configured categories
  GET  /api/model          training status
  POST /api/classify       classify the request body text
  POST /api/classify-url   classify the page at the url in the request body`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.load(cmd)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			c, err := newClassifier(cfg, method, 0)
			if err != nil {
				return err
			}
			model := server.NewModel(c, cfg.Corpus)

			go func() {
				examples, err := loadExamples(ctx, cfg)
				if err != nil {
					logger.HandleError(err)
					return
				}
				if err := model.Train(examples); err != nil {
					logger.HandleError(err)
					return
				}
				logger.HandleLog(fmt.Sprintf("%sTrained %s on %d documents%s", util.TerminalGreen, c.Name(), len(examples), util.TerminalReset))
			}()

			return server.Serve(ctx, cfg.Addr, model)
		},
	}
	addMethodFlags(cmd, &method)
	cmd.Flags().String("addr", ":8080", "Address to listen on")
	return cmd
}

func newCrawlCmd(opts *options) *cobra.Command {
	var category string
	var maxPages int
	cmd := &cobra.Command{
		Use:   "crawl <url>",
		Short: "Crawl a site into a corpus category",
		Long: `Crawl the pages of one domain and store their text as documents of a category.

Examples:
  goclassify crawl https://example.com/biology --corpus ./corpus --category bio --max 200`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.load(cmd)
			if err != nil {
				return err
			}
			if cfg.Corpus == "" {
				return fmt.Errorf("no corpus directory given, use --corpus or the corpus config key")
			}
			if category == "" {
				return fmt.Errorf("no category given, use --category")
			}
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}

			written, err := crawl(ctx, cfg, args[0], category, maxPages)
			if err != nil {
				return err
			}
			total, err := util.GetDirLength(filepath.Join(cfg.Corpus, category))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d documents written to %s, %d in total\n", written, filepath.Join(cfg.Corpus, category), total)
			return nil
		},
	}
	cmd.Flags().StringVarP(&category, "category", "c", "", "Category the crawled pages belong to")
	cmd.Flags().IntVar(&maxPages, "max", 100, "Maximum number of pages to store")
	return cmd
}

// crawl stores the pages of site as documents of category and drops the document
// cache, which no longer matches the corpus
func crawl(ctx context.Context, cfg config.Config, site, category string, maxPages int) (int, error) {
	client := &http.Client{Timeout: 30 * time.Second}
	written, err := webcrawler.CrawlDomainToCorpus(ctx, client, site, category, cfg.Corpus, maxPages)
	if err != nil {
		return written, err
	}
	if cfg.Cache != "" && written > 0 {
		if err := os.Remove(cfg.Cache); err != nil && !os.IsNotExist(err) {
			return written, fmt.Errorf("error removing document cache: %w", err)
		}
	}
	return written, nil
}
