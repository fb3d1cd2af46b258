package main

import (
	"bufio"
	"io"
	"strings"
	"unicode"

	snowball "github.com/kljensen/snowball/english"
	"github.com/sajari/fuzzy"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Lex feeds every whitespace-separated token of src to lexer.
func Lex(lexer Lexer, src string) error {
	return LexStrm(lexer, strings.NewReader(src))
}

// LexStrm feeds tokens from istrm to lexer until the stream ends or the
// lexer refuses a token. Tokens that sanitize to "" are dropped.
func LexStrm(lexer Lexer, istrm io.Reader) error {
	sc := bufio.NewScanner(istrm)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	sc.Split(bufio.ScanWords)
	for sc.Scan() {
		t := lexer.Sanitize(sc.Text())
		if t == "" {
			continue
		}
		if !lexer.Advance(t) {
			break
		}
	}
	return sc.Err()
}

type Lexer interface {
	Advance(string) bool
	Sanitizer
}

type Sanitizer interface {
	Sanitize(t string) string
}

type SanitizerFunc func(string) string

func (f SanitizerFunc) Sanitize(t string) string {
	return f(t)
}

var (
	StripPunct = SanitizerFunc(func(t string) string {
		return strings.TrimFunc(t, func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsNumber(r)
		})
	})
	ToLower     = SanitizerFunc(strings.ToLower)
	FoldAccents = SanitizerFunc(normalize)
	Stem        = SanitizerFunc(func(t string) string {
		return snowball.Stem(t, false)
	})
)

// normalize strips combining marks, so "café" and "cafe" share an entry.
func normalize(t string) string {
	tr := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	s, _, err := transform.String(tr, t)
	if err != nil {
		return t
	}
	return s
}

type SanitizerChain []Sanitizer

func (chain SanitizerChain) Sanitize(t string) string {
	for _, sanitizer := range chain {
		if t == "" {
			return t
		}
		t = sanitizer.Sanitize(t)
	}
	return t
}

type SpellChker struct {
	*fuzzy.Model
}

// NewSpellChker trains a spelling model on the whitespace-separated words
// of a dictionary.
func NewSpellChker(dict io.Reader) (SpellChker, error) {
	model := fuzzy.NewModel()
	model.SetThreshold(1)
	model.SetDepth(2)
	words := make([]string, 0, 4096)
	sc := bufio.NewScanner(dict)
	sc.Split(bufio.ScanWords)
	for sc.Scan() {
		words = append(words, strings.ToLower(sc.Text()))
	}
	if err := sc.Err(); err != nil {
		return SpellChker{}, err
	}
	model.Train(words)
	return SpellChker{model}, nil
}

func (cker SpellChker) Sanitize(t string) string {
	if s := cker.SpellCheck(t); s != "" {
		return s
	}
	return t
}

type Doc []string

// DocLexer collects sanitized tokens, dropping stop words when Stops is set.
type DocLexer struct {
	Doc
	Sanitizer
	Stops *BOW
	Cap   int
}

func (lexer *DocLexer) Advance(t string) bool {
	if lexer.Doc == nil {
		lexer.Doc = make(Doc, 0, 64)
	}
	if lexer.Cap > 0 && len(lexer.Doc) >= lexer.Cap {
		return false
	}
	if lexer.Stops != nil && lexer.Stops.Has(t) {
		return true
	}
	lexer.Doc = append(lexer.Doc, t)
	return true
}

func (lexer *DocLexer) Finalize() Doc {
	doc := lexer.Doc
	lexer.Doc = nil
	return doc
}
