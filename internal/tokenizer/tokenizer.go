// Package tokenizer turns raw text into the normalized terms counted by the index.
package tokenizer

import (
	"iter"
	"slices"
	"strings"
	"unicode"

	"github.com/kljensen/snowball/english"
)

// Options controls term normalization. The same options must be used for
// indexing and querying, otherwise query terms will not match stored ones.
type Options struct {
	Stem bool // reduce terms to their english Porter2 stem
}

// Lexer walks a rune slice and yields one term per call to Next.
//
// Whitespace and punctuation separate terms and are never emitted.
// A run of digits is a term; a run that starts with a letter continues
// through letters and digits ("utf8", "x86") and is lowercased.
type Lexer struct {
	content []rune
	opts    Options
}

// NewLexer creates a lexer over content. The slice is not copied.
func NewLexer(content []rune, opts Options) *Lexer {
	return &Lexer{content: content, opts: opts}
}

// Next returns the next term, or false once the content is exhausted.
func (l *Lexer) Next() (string, bool) {
	l.trimLeft()
	if len(l.content) == 0 {
		return "", false
	}

	if unicode.IsDigit(l.content[0]) {
		return string(l.chopWhile(unicode.IsDigit)), true
	}

	term := strings.ToLower(string(l.chopWhile(isAlphanumeric)))
	if l.opts.Stem {
		term = english.Stem(term, false)
	}
	return term, true
}

// trimLeft drops everything that cannot start a term.
func (l *Lexer) trimLeft() {
	for len(l.content) > 0 && !isAlphanumeric(l.content[0]) {
		l.content = l.content[1:]
	}
}

func (l *Lexer) chopWhile(pred func(rune) bool) []rune {
	n := 0
	for n < len(l.content) && pred(l.content[n]) {
		n++
	}
	token := l.content[:n]
	l.content = l.content[n:]
	return token
}

func isAlphanumeric(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

// Terms returns a lazy term sequence over content. Every range over the
// returned sequence starts a fresh lexer, so the sequence is restartable.
func Terms(content []rune, opts Options) iter.Seq[string] {
	return func(yield func(string) bool) {
		lexer := NewLexer(content, opts)
		for {
			term, ok := lexer.Next()
			if !ok || !yield(term) {
				return
			}
		}
	}
}

// Tokenize collects all terms of text into a slice (never nil).
func Tokenize(text string, opts Options) []string {
	terms := slices.Collect(Terms([]rune(text), opts))
	if terms == nil {
		return make([]string, 0)
	}
	return terms
}
