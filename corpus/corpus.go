package corpus

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/deanrtaylor1/goclassify/classifier"
	"github.com/deanrtaylor1/goclassify/lexer"
	"github.com/deanrtaylor1/goclassify/vector"
)

var ErrEmptyCorpus = errors.New("corpus: no documents found")

// Document is a tokenized document of a corpus, as stored in the cache
type Document struct {
	Name     string
	Category string
	Terms    map[string]float64
}

// Loader builds examples from a directory holding one sub directory per category.
// Every regular file in a category directory is a document. Files ending in .html or
// .htm have their text extracted before tokenizing.
type Loader struct {
	Categories []string
	// Parallel is the number of documents tokenized at once, defaults to GOMAXPROCS
	Parallel int
	// CacheFile, when set, is read instead of the directory if it exists and is
	// written after a directory has been loaded
	CacheFile string
	FileOps   FileOps
}

// LoadDirectory loads the examples of root without caching
func LoadDirectory(ctx context.Context, root string, categories []string) ([]*classifier.Example, error) {
	l := &Loader{Categories: categories}
	return l.Load(ctx, root)
}

// Load returns the examples of the corpus at root, ordered by category and then by file name
func (l *Loader) Load(ctx context.Context, root string) ([]*classifier.Example, error) {
	if l.CacheFile != "" {
		docs, err := ReadCache(l.CacheFile)
		if err == nil {
			log.Printf("Loaded %d documents from cache %s", len(docs), l.CacheFile)
			return l.Examples(docs)
		}
		if !os.IsNotExist(err) {
			return nil, err
		}
	}

	docs, err := l.readDirectory(ctx, root)
	if err != nil {
		return nil, err
	}

	if l.CacheFile != "" {
		fileOps := l.FileOps
		if fileOps == nil {
			fileOps = FileOpsImpl{}
		}
		dir, name := filepath.Split(l.CacheFile)
		if dir == "" {
			dir = "."
		}
		if err := fileOps.MkdirAll(dir, 0755); err != nil {
			return nil, err
		}
		if err := fileOps.CompressAndWriteGzipFile(name, docs, dir); err != nil {
			return nil, err
		}
	}

	return l.Examples(docs)
}

// Examples converts documents to examples, mapping category names to their index.
// Documents of a category that is not configured are skipped.
func (l *Loader) Examples(docs []Document) ([]*classifier.Example, error) {
	indexOf := make(map[string]int, len(l.Categories))
	for i, c := range l.Categories {
		indexOf[c] = i
	}

	examples := make([]*classifier.Example, 0, len(docs))
	for _, doc := range docs {
		category, ok := indexOf[doc.Category]
		if !ok {
			continue
		}
		examples = append(examples, &classifier.Example{
			Name:     doc.Name,
			Vector:   vector.Vector(doc.Terms),
			Category: category,
		})
	}
	if len(examples) == 0 {
		return nil, ErrEmptyCorpus
	}
	return examples, nil
}

func (l *Loader) readDirectory(ctx context.Context, root string) ([]Document, error) {
	var docs []Document
	var paths []string

	for _, category := range l.Categories {
		dir := filepath.Join(root, category)
		entries, err := os.ReadDir(dir)
		if err != nil {
			if os.IsNotExist(err) {
				log.Printf("No directory for category %s in %s", category, root)
				continue
			}
			return nil, fmt.Errorf("error reading category directory: %w", err)
		}

		names := []string{}
		for _, entry := range entries {
			if entry.Type().IsRegular() && !strings.HasPrefix(entry.Name(), ".") {
				names = append(names, entry.Name())
			}
		}
		sort.Strings(names)

		for _, name := range names {
			docs = append(docs, Document{Name: category + "/" + name, Category: category})
			paths = append(paths, filepath.Join(dir, name))
		}
	}

	if len(docs) == 0 {
		return nil, ErrEmptyCorpus
	}

	parallel := l.Parallel
	if parallel <= 0 {
		parallel = runtime.GOMAXPROCS(0)
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(parallel)
	for i := range docs {
		i := i
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			terms, err := ReadDocument(paths[i])
			if err != nil {
				return err
			}
			docs[i].Terms = terms
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	log.Printf("Loaded %d documents from %s", len(docs), root)
	return docs, nil
}

// ReadDocument reads a file and returns its raw term frequency vector
func ReadDocument(path string) (vector.Vector, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading document: %w", err)
	}
	return DocumentVector(string(content), filepath.Ext(path)), nil
}

// DocumentVector tokenizes content, extracting the text first if ext names a html file
func DocumentVector(content string, ext string) vector.Vector {
	switch strings.ToLower(ext) {
	case ".html", ".htm":
		content = lexer.ParseHtmlTextContent(content)
	}
	return lexer.TermVector(content)
}
