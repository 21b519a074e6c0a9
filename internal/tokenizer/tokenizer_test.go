package tokenizer

import (
	"reflect"
	"slices"
	"testing"
)

func TestTokenize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"empty string", "", []string{}},
		{"simple lowercase", "hello world", []string{"hello", "world"}},
		{"with punctuation", "hello, world!", []string{"hello", "world"}},
		{"with numbers", "item123 test", []string{"item123", "test"}},
		{"leading/trailing spaces", "  hello world  ", []string{"hello", "world"}},
		{"multiple spaces between words", "hello   world", []string{"hello", "world"}},
		{"tabs and newlines", "hello\tworld\nagain", []string{"hello", "world", "again"}},
		{"string with hyphen", "state-of-the-art", []string{"state", "of", "the", "art"}},
		{"string with underscore", "my_variable_name", []string{"my", "variable", "name"}},
		{"all caps word", "HELLO WORLD", []string{"hello", "world"}},
		{"mixed with numbers and symbols", "API_v1.0-beta!", []string{"api", "v1", "0", "beta"}},
		{"starts with digit then letters", "1Password", []string{"1", "password"}},
		{"only symbols", "!@#$%^", []string{}},
		{"only numbers", "12345 67890", []string{"12345", "67890"}},
		{"special chars in middle", "word1!@#word2", []string{"word1", "word2"}},
		{"duplicates kept", "the cat the", []string{"the", "cat", "the"}},
		{"non-ascii letters", "Café Über", []string{"café", "über"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Tokenize(tt.input, Options{})
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Tokenize(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestTokenize_Stemming(t *testing.T) {
	got := Tokenize("Running cats", Options{Stem: true})
	want := []string{"run", "cat"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Tokenize with stemming = %v, want %v", got, want)
	}

	// numbers are never stemmed
	got = Tokenize("2024", Options{Stem: true})
	if !reflect.DeepEqual(got, []string{"2024"}) {
		t.Errorf("Tokenize(2024) with stemming = %v", got)
	}
}

func TestTerms_Restartable(t *testing.T) {
	seq := Terms([]rune("the quick brown fox"), Options{})

	first := slices.Collect(seq)
	second := slices.Collect(seq)

	want := []string{"the", "quick", "brown", "fox"}
	if !reflect.DeepEqual(first, want) {
		t.Errorf("first pass = %v, want %v", first, want)
	}
	if !reflect.DeepEqual(second, first) {
		t.Errorf("second pass = %v, want %v", second, first)
	}
}

func TestTerms_EarlyBreak(t *testing.T) {
	var got []string
	for term := range Terms([]rune("one two three"), Options{}) {
		got = append(got, term)
		if len(got) == 2 {
			break
		}
	}
	if !reflect.DeepEqual(got, []string{"one", "two"}) {
		t.Errorf("early break collected %v", got)
	}
}

func TestLexer_Next(t *testing.T) {
	lexer := NewLexer([]rune("  a1 22"), Options{})

	term, ok := lexer.Next()
	if !ok || term != "a1" {
		t.Fatalf("first Next() = %q, %v", term, ok)
	}
	term, ok = lexer.Next()
	if !ok || term != "22" {
		t.Fatalf("second Next() = %q, %v", term, ok)
	}
	if _, ok = lexer.Next(); ok {
		t.Error("expected lexer to be exhausted")
	}
}
