package webcrawler

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/deanrtaylor1/goclassify/lexer"
	"github.com/deanrtaylor1/goclassify/logger"
	"github.com/deanrtaylor1/goclassify/util"
)

const maxURLsToCrawl = 10000

// maximum number of bytes read from a single page
const maxPageSize = 10 << 20

// Page is a fetched page: its text content and the absolute links found on it
type Page struct {
	URL   string
	Text  string
	Links []string
}

// Add a helper function to extract the domain name from a URL
func extractDomain(rawURL string) string {
	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return parsedURL.Host
}

// FetchPage downloads a page. Html pages have their text extracted and their links
// resolved against the page URL, anything else is returned as plain text.
func FetchPage(ctx context.Context, client *http.Client, pageURL string) (*Page, error) {
	if client == nil {
		client = http.DefaultClient
	}

	fullUrl, err := url.ParseRequestURI(pageURL)
	if err != nil {
		return nil, fmt.Errorf("error parsing url: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error accessing site file: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("error accessing site file: %s returned %s", pageURL, resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPageSize))
	if err != nil {
		return nil, fmt.Errorf("error reading html response body: %w", err)
	}

	page := &Page{URL: pageURL}
	contentType := resp.Header.Get("Content-Type")
	if contentType != "" && !strings.Contains(contentType, "html") {
		page.Text = string(body)
		return page, nil
	}

	page.Text = lexer.ParseHtmlTextContent(string(body))
	for _, link := range lexer.ParseLinks(string(body)) {
		if shouldIgnoreLink(link) {
			continue
		}
		parsedLink, err := url.Parse(link)
		if err != nil {
			continue
		}
		if !parsedLink.IsAbs() {
			parsedLink = fullUrl.ResolveReference(parsedLink)
		}
		if parsedLink.Scheme != "http" && parsedLink.Scheme != "https" {
			continue
		}
		page.Links = append(page.Links, parsedLink.String())
	}
	return page, nil
}

// FetchText downloads a page and returns its text content
func FetchText(ctx context.Context, client *http.Client, pageURL string) (string, error) {
	page, err := FetchPage(ctx, client, pageURL)
	if err != nil {
		return "", err
	}
	return page.Text, nil
}

// CrawlDomainToCorpus crawls the pages of one domain breadth first and writes the text
// of every page as a document of category under corpusDir. It stops after maxPages
// pages (maxURLsToCrawl when maxPages is not positive) and returns the number of
// documents written. Pages that fail to download are logged and skipped.
func CrawlDomainToCorpus(ctx context.Context, client *http.Client, domain string, category string, corpusDir string, maxPages int) (int, error) {
	log.Println("crawling domain: ", domain)
	start := time.Now()

	if maxPages <= 0 {
		maxPages = maxURLsToCrawl
	}

	if _, err := url.ParseRequestURI(domain); err != nil {
		return 0, fmt.Errorf("error parsing url: %w", err)
	}

	dirName := filepath.Join(corpusDir, category)
	if err := os.MkdirAll(dirName, os.ModePerm); err != nil {
		return 0, err
	}

	// documents from earlier crawls into the same category keep their names
	entries, err := os.ReadDir(dirName)
	if err != nil {
		return 0, err
	}
	usedNames := map[string]bool{}
	for _, e := range entries {
		usedNames[e.Name()] = true
	}

	visited := map[string]bool{visitKey(domain): true}
	var mu sync.Mutex
	written := 0

	queue := []string{domain}
	for len(queue) > 0 {
		if err := ctx.Err(); err != nil {
			return written, err
		}

		var next []string
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(8)
		for _, pageURL := range queue {
			pageURL := pageURL
			g.Go(func() error {
				page, err := FetchPage(gctx, client, pageURL)
				if err != nil {
					logger.HandleError(err)
					return nil
				}

				mu.Lock()
				defer mu.Unlock()
				if written >= maxPages {
					return nil
				}
				name := uniqueName(documentName(pageURL), usedNames)
				if err := os.WriteFile(filepath.Join(dirName, name), []byte(page.Text), 0644); err != nil {
					return err
				}
				written++

				for _, link := range page.Links {
					if visited[visitKey(link)] || extractDomain(link) != extractDomain(domain) {
						continue
					}
					visited[visitKey(link)] = true
					next = append(next, link)
				}
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return written, err
		}
		if written >= maxPages {
			break
		}
		if remaining := maxPages - written; len(next) > remaining {
			next = next[:remaining]
		}
		queue = next
	}

	elapsed := time.Since(start)
	log.Printf("%sFINISHED CRAWLING %v: %d documents in %dMs%s\n", util.TerminalGreen, extractDomain(domain), written, elapsed.Milliseconds(), util.TerminalReset)
	return written, nil
}

// visitKey treats a URL with and without a trailing slash as the same page
func visitKey(link string) string {
	return strings.TrimSuffix(link, "/")
}

// documentName returns the file name a crawled page is stored under
func documentName(pageURL string) string {
	parsed, err := url.Parse(pageURL)
	if err != nil {
		return "page.txt"
	}
	name := urlToName(parsed.Path)
	if name == "" {
		return "index.txt"
	}
	name = strings.ReplaceAll(name, " > ", "_")
	name = strings.ReplaceAll(name, " ", "-")
	name = strings.Map(func(r rune) rune {
		if r == '/' || r == '\\' || r == os.PathSeparator {
			return '-'
		}
		return r
	}, name)
	return name + ".txt"
}

func uniqueName(name string, used map[string]bool) string {
	candidate := name
	for i := 2; used[candidate]; i++ {
		candidate = fmt.Sprintf("%s-%d%s", strings.TrimSuffix(name, ".txt"), i, ".txt")
	}
	used[candidate] = true
	return candidate
}

func urlToName(urlPath string) string {
	// Remove common file extensions
	urlPath = strings.TrimSuffix(urlPath, ".html")
	urlPath = strings.TrimSuffix(urlPath, ".php")
	urlPath = strings.TrimSuffix(urlPath, ".asp")

	// Split the path into components
	components := strings.Split(urlPath, "/")
	// Create a Caser for title casing in English without lowercasing the entire string first
	caser := cases.Title(language.English, cases.NoLower)

	// Process each component
	for i, component := range components {
		// Replace hyphens and underscores with spaces
		component = strings.ReplaceAll(component, "-", " ")
		component = strings.ReplaceAll(component, "_", " ")

		// Convert to title case
		components[i] = caser.String(component)
	}

	// If the last component is empty, remove it
	if len(components) > 0 && components[len(components)-1] == "" {
		components = components[:len(components)-1]
	}

	// Skip the first component and join the remaining components with " > "
	if len(components) > 1 {
		return strings.Join(components[1:], " > ")
	}

	return ""
}

var ignoredExtensions = map[string]bool{
	".zip": true, ".tar": true, ".gz": true, ".rar": true, ".7z": true,
	".jpg": true, ".jpeg": true, ".png": true, ".gif": true, ".bmp": true, ".svg": true, ".webp": true,
	".mp3": true, ".wav": true, ".ogg": true, ".flac": true, ".m4a": true,
	".mp4": true, ".avi": true, ".mkv": true, ".flv": true, ".mov": true, ".wmv": true, ".webm": true,
	".pdf": true, ".doc": true, ".docx": true, ".xls": true, ".xlsx": true, ".ppt": true, ".pptx": true, ".pages": true, ".key": true, ".numbers": true,
	".exe": true, ".msi": true, ".bin": true, ".dmg": true, ".apk": true, ".deb": true, ".rpm": true,
	".ttf": true, ".otf": true, ".woff": true, ".woff2": true,
}

func shouldIgnoreLink(link string) bool {
	parsedURL, err := url.Parse(link)
	if err != nil {
		return true
	}

	// Check if the URL contains a fragment
	if parsedURL.Fragment != "" {
		return true
	}

	// Check if the URL has a file extension in the ignoredExtensions map
	fileExtension := filepath.Ext(parsedURL.Path)
	if _, ok := ignoredExtensions[fileExtension]; ok {
		return true
	}

	return false
}
