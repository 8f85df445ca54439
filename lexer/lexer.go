package lexer

import (
	"errors"
	"sort"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/net/html"

	"github.com/deanrtaylor1/goclassify/logger"
	"github.com/deanrtaylor1/goclassify/vector"
	"github.com/tebeka/snowball"
)

var ErrEOF = errors.New("no more tokens")

type Lexer struct {
	content []rune
	stemmer *snowball.Stemmer
}

// TermWeight is a term paired with its weight in a vector
type TermWeight struct {
	Term   string
	Weight float64
}

// NewLexer creates a new Lexer
func NewLexer(content string) *Lexer {
	return &Lexer{content: []rune(content)}
}

// Close releases the stemmer if one was created
func (l *Lexer) Close() {
	if l.stemmer != nil {
		l.stemmer.Close()
		l.stemmer = nil
	}
}

// TrimLeft trims empty spaces from the left of the content
func (l *Lexer) TrimLeft() {
	for len(l.content) > 0 && unicode.IsSpace(l.content[0]) {
		l.content = l.content[1:]
	}
}

// Chop chops the content by n and returns the chopped content
func (l *Lexer) Chop(n int) (token []rune) {
	token = l.content[:n]
	l.content = l.content[n:]
	return token
}

// ChopWhile chops the content while the predicate f returns true
func (l *Lexer) ChopWhile(f func(rune) bool) (token []rune) {
	n := 0
	for n < len(l.content) && f(l.content[n]) {
		n += 1
	}
	return l.Chop(n)
}

// stem lower cases a word and reduces it to its english stem
func (l *Lexer) stem(word string) string {
	word = strings.ToLower(word)
	if l.stemmer == nil {
		stemmer, err := snowball.New("english")
		if err != nil {
			logger.HandleError(err)
			return word
		}
		l.stemmer = stemmer
	}
	return l.stemmer.Stem(word)
}

// NextToken returns the next token
func (l *Lexer) NextToken() []rune {

	l.TrimLeft()

	if len(l.content) == 0 {
		return nil
	}
	if unicode.IsNumber(l.content[0]) {
		return l.ChopWhile(unicode.IsNumber)
	}
	if unicode.IsLetter(l.content[0]) {
		term := l.ChopWhile(func(r rune) bool {
			return unicode.IsLetter(r) || unicode.IsNumber(r)
		})

		return []rune(l.stem(string(term)))

	}
	return l.Chop(1)
}

// Next returns the next token as a string
func (l *Lexer) Next() (string, error) {

	token := l.NextToken()
	if token == nil {
		return "EOF", ErrEOF
	}
	return (string(token)), nil
}

// Tokenize returns the stemmed words and numbers of content, dropping punctuation
func Tokenize(content string) []string {
	l := NewLexer(content)
	defer l.Close()

	tokens := []string{}
	for {
		token, err := l.Next()
		if err != nil {
			break
		}
		if isTerm(token) {
			tokens = append(tokens, token)
		}
	}
	return tokens
}

// TermVector returns the raw term frequency vector of content
func TermVector(content string) vector.Vector {
	tf := vector.New()
	for _, token := range Tokenize(content) {
		tf.Increment(token, 1)
	}
	return tf
}

func isTerm(token string) bool {
	for _, r := range token {
		if unicode.IsLetter(r) || unicode.IsNumber(r) {
			return true
		}
	}
	return false
}

// ParseLinks parses a html string and returns all the links as a slice of strings
func ParseLinks(htmlContent string) []string {
	links := []string{}
	nodes, err := html.Parse(strings.NewReader(htmlContent))
	if err != nil {
		logger.HandleError(err)
		return links
	}
	var f func(*html.Node)
	f = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "a" {
			for _, a := range n.Attr {
				if a.Key == "href" {
					links = append(links, a.Val)
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			f(c)
		}
	}
	f(nodes)
	return links
}

// ParseHtmlTextContent parses a html string and returns the text of the document.
// Text inside script and style elements is skipped.
func ParseHtmlTextContent(htmlContent string) string {
	var content strings.Builder
	skip := 0

	d := html.NewTokenizer(strings.NewReader(htmlContent))
	for {
		tt := d.Next()
		switch tt {
		case html.ErrorToken:
			return content.String()
		case html.StartTagToken:
			if name, _ := d.TagName(); isHiddenTag(string(name)) {
				skip++
			}
		case html.EndTagToken:
			if name, _ := d.TagName(); isHiddenTag(string(name)) && skip > 0 {
				skip--
			}
		case html.TextToken:
			if skip == 0 {
				content.Write(d.Text())
				content.WriteByte(' ')
			}
		}
	}
}

func isHiddenTag(name string) bool {
	return name == "script" || name == "style"
}

// TopTerms returns the n heaviest terms of v, heaviest first.
// Terms of equal weight are ordered alphabetically.
func TopTerms(v vector.Vector, n int) (stats []TermWeight) {
	for _, term := range v.Terms() {
		stats = append(stats, TermWeight{term, v[term]})
	}
	sort.SliceStable(stats, func(i, j int) bool { return stats[i].Weight > stats[j].Weight })

	if n >= 0 && len(stats) > n {
		stats = stats[:n]
	}
	return stats
}

// String formats a term and its weight
func (s TermWeight) String() string {
	return s.Term + "=" + strconv.FormatFloat(s.Weight, 'f', 3, 64)
}
