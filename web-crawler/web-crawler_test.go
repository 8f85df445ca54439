package webcrawler

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"
)

func TestShouldIgnoreLink(t *testing.T) {
	cases := []struct {
		link string
		want bool
	}{
		{"/", false},
		{"javascript.info/Learn#introduction", true},
		{"http://www.google.com", false},
		{"https://www.javascript.info", false},
		{"http://www.google.com/package.zip", true},
	}

	for _, v := range cases {
		got := shouldIgnoreLink(v.link)
		if got != v.want {
			t.Errorf("shouldIgnoreLink(%q) == %t, want %t", v.link, got, v.want)
		}
	}

}

func TestUrlToName(t *testing.T) {
	cases := []struct {
		url  string
		want string
	}{
		{"/article/js-animation/width/", "Article > Js Animation > Width"},
		{"/class-inheritance", "Class Inheritance"},
		{"/async-await", "Async Await"},
		{"/task/calculator-extendable", "Task > Calculator Extendable"},
	}

	for _, v := range cases {
		got := urlToName(v.url)
		if got != v.want {
			t.Errorf("urlToName(%q) == %q, want %q", v.url, got, v.want)
		}
	}
}

func TestDocumentName(t *testing.T) {
	cases := []struct {
		url  string
		want string
	}{
		{"https://example.com", "index.txt"},
		{"https://example.com/", "index.txt"},
		{"https://example.com/cell-biology/mitosis.html", "Cell-Biology_Mitosis.txt"},
	}

	for _, v := range cases {
		got := documentName(v.url)
		if got != v.want {
			t.Errorf("documentName(%q) == %q, want %q", v.url, got, v.want)
		}
	}

	used := map[string]bool{}
	if got := uniqueName("index.txt", used); got != "index.txt" {
		t.Errorf("uniqueName() == %q, want index.txt", got)
	}
	if got := uniqueName("index.txt", used); got != "index-2.txt" {
		t.Errorf("uniqueName() == %q, want index-2.txt", got)
	}
}

func TestExtractDomain(t *testing.T) {
	cases := []struct {
		url  string
		want string
	}{
		{"https://www.javascript.info", "www.javascript.info"},
		{"https://www.javascript.info/", "www.javascript.info"},
		{"https://www.javascript.info/async-await", "www.javascript.info"},
		{"https://www.javascript.info/async-await/", "www.javascript.info"},
		{"https://www.javascript.info/async-await/async-await", "www.javascript.info"},
	}

	for _, v := range cases {
		got := extractDomain(v.url)
		if got != v.want {
			t.Errorf("extractDomain(%q) == %q, want %q", v.url, got, v.want)
		}
	}
}

func newTestSite(t *testing.T) *httptest.Server {
	t.Helper()
	pages := map[string]string{
		"/":        `<html><body><h1>Biology</h1><a href="/cells">Cells</a><a href="/genes">Genes</a><a href="https://elsewhere.example/x">Away</a><a href="/data.zip">Zip</a></body></html>`,
		"/cells":   `<html><body><p>Cells divide</p><a href="/">Home</a><a href="/genes">Genes</a></body></html>`,
		"/genes":   `<html><body><p>Genes encode proteins</p><a href="/missing">Missing</a></body></html>`,
		"/notes":   "plain notes",
		"/missing": "",
	}
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		content, ok := pages[r.URL.Path]
		if !ok || r.URL.Path == "/missing" {
			http.NotFound(w, r)
			return
		}
		if r.URL.Path == "/notes" {
			w.Header().Set("Content-Type", "text/plain")
		} else {
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
		}
		if _, err := io.WriteString(w, content); err != nil {
			t.Errorf("Failed to write response: %v", err)
		}
	}))
}

func TestFetchPage(t *testing.T) {
	ts := newTestSite(t)
	defer ts.Close()

	page, err := FetchPage(context.Background(), ts.Client(), ts.URL+"/")
	if err != nil {
		t.Fatalf("FetchPage() error = %v", err)
	}
	if !strings.Contains(page.Text, "Biology") {
		t.Errorf("FetchPage().Text = %q, want page text", page.Text)
	}
	want := []string{ts.URL + "/cells", ts.URL + "/genes", "https://elsewhere.example/x"}
	if strings.Join(page.Links, " ") != strings.Join(want, " ") {
		t.Errorf("FetchPage().Links = %v, want %v", page.Links, want)
	}

	text, err := FetchText(context.Background(), ts.Client(), ts.URL+"/notes")
	if err != nil || text != "plain notes" {
		t.Errorf("FetchText() = %q, %v, want plain notes", text, err)
	}

	if _, err := FetchPage(context.Background(), ts.Client(), ts.URL+"/missing"); err == nil {
		t.Error("FetchPage() on a missing page returned no error")
	}
	if _, err := FetchPage(context.Background(), ts.Client(), "not a url"); err == nil {
		t.Error("FetchPage() on an invalid url returned no error")
	}
}

func TestCrawlDomainToCorpus(t *testing.T) {
	ts := newTestSite(t)
	defer ts.Close()

	corpusDir := t.TempDir()
	written, err := CrawlDomainToCorpus(context.Background(), ts.Client(), ts.URL, "bio", corpusDir, 10)
	if err != nil {
		t.Fatalf("CrawlDomainToCorpus() error = %v", err)
	}
	if written != 3 {
		t.Fatalf("Expected 3 documents, got %d", written)
	}

	entries, err := os.ReadDir(filepath.Join(corpusDir, "bio"))
	if err != nil {
		t.Fatal(err)
	}
	names := []string{}
	for _, e := range entries {
		names = append(names, e.Name())
	}
	sort.Strings(names)
	want := []string{"Cells.txt", "Genes.txt", "index.txt"}
	if strings.Join(names, ",") != strings.Join(want, ",") {
		t.Errorf("Expected files %v, got %v", want, names)
	}

	content, err := os.ReadFile(filepath.Join(corpusDir, "bio", "Genes.txt"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(content), "Genes encode proteins") {
		t.Errorf("Unexpected document content %q", content)
	}
}

func TestCrawlDomainToCorpusLimit(t *testing.T) {
	ts := newTestSite(t)
	defer ts.Close()

	written, err := CrawlDomainToCorpus(context.Background(), ts.Client(), ts.URL, "bio", t.TempDir(), 1)
	if err != nil {
		t.Fatalf("CrawlDomainToCorpus() error = %v", err)
	}
	if written != 1 {
		t.Fatalf("Expected 1 document, got %d", written)
	}
}

func TestCrawlDomainToCorpusKeepsExistingDocuments(t *testing.T) {
	newSite := func(text string) *httptest.Server {
		return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "text/plain")
			io.WriteString(w, text)
		}))
	}
	first := newSite("cell membrane")
	defer first.Close()
	second := newSite("enzyme protein")
	defer second.Close()

	corpusDir := t.TempDir()
	for _, site := range []*httptest.Server{first, second} {
		written, err := CrawlDomainToCorpus(context.Background(), site.Client(), site.URL, "bio", corpusDir, 10)
		if err != nil {
			t.Fatalf("CrawlDomainToCorpus() error = %v", err)
		}
		if written != 1 {
			t.Fatalf("Expected 1 document, got %d", written)
		}
	}

	cases := []struct {
		name string
		want string
	}{
		{"index.txt", "cell membrane"},
		{"index-2.txt", "enzyme protein"},
	}
	for _, v := range cases {
		content, err := os.ReadFile(filepath.Join(corpusDir, "bio", v.name))
		if err != nil {
			t.Fatalf("Missing document %s: %v", v.name, err)
		}
		if string(content) != v.want {
			t.Errorf("%s = %q, want %q", v.name, content, v.want)
		}
	}
}
