package main

import (
	"reflect"
	"strings"
	"testing"
)

func TestReadCorpus(t *testing.T) {
	src := "The cat sat.\n\n   \nA dog ran!\n"
	tests := []struct {
		name string
		tk   *Tokenizer
		want Corpus
	}{
		{
			"whitespace",
			&Tokenizer{Sanitizer: SanitizerChain{StripPunct, ToLower}},
			Corpus{{"the", "cat", "sat"}, {"a", "dog", "ran"}},
		},
		{
			"stop words",
			&Tokenizer{Sanitizer: SanitizerChain{StripPunct, ToLower}, Stops: Stopwords(nil)},
			Corpus{{"cat", "sat"}, {"dog", "ran"}},
		},
		{
			"no sanitizer",
			&Tokenizer{},
			Corpus{{"The", "cat", "sat."}, {"A", "dog", "ran!"}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ReadCorpus(strings.NewReader(src), tt.tk)
			if err != nil {
				t.Fatal(err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("ReadCorpus = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTokenizeSegments(t *testing.T) {
	tk := &Tokenizer{Sanitizer: SanitizerChain{StripPunct, ToLower}, Segment: true}
	got, err := tk.Tokenize("The cat sat on the mat. The dog ran in the park.")
	if err != nil {
		t.Fatal(err)
	}
	want := [][]string{
		{"the", "cat", "sat", "on", "the", "mat"},
		{"the", "dog", "ran", "in", "the", "park"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Tokenize = %v, want %v", got, want)
	}
}

func TestCorpusWordsAndEncode(t *testing.T) {
	c := Corpus{{"a", "b"}, {"b", "c", "b"}}
	if got := c.Words(); !reflect.DeepEqual(got, []string{"a", "b", "b", "c", "b"}) {
		t.Fatalf("Words = %v", got)
	}
	vc := BuildVocab(c.Words(), 3)
	want := [][]int{{2, 1}, {1, 0, 1}}
	if got := c.Encode(vc); !reflect.DeepEqual(got, want) {
		t.Fatalf("Encode = %v, want %v", got, want)
	}
}

func TestReadDocuments(t *testing.T) {
	got, err := ReadDocuments([]string{"Hello there", "", "General Kenobi"}, &Tokenizer{Sanitizer: ToLower})
	if err != nil {
		t.Fatal(err)
	}
	want := Corpus{{"hello", "there"}, {"general", "kenobi"}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("ReadDocuments = %v, want %v", got, want)
	}
}
