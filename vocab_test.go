package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func TestBuildVocab(t *testing.T) {
	tests := []struct {
		name   string
		corpus string
		size   int
		want   []string
	}{
		{"frequency order", "a b b c c c", 3, []string{Unknown, "c", "b"}},
		{"room to spare", "a b b c c c", 10, []string{Unknown, "c", "b", "a"}},
		{"ties keep first occurrence", "x y y x z", 3, []string{Unknown, "x", "y"}},
		{"unknown only", "a b c", 1, []string{Unknown}},
		{"size below one", "a b c", 0, []string{Unknown}},
		{"empty corpus", "", 5, []string{Unknown}},
		{"literal UNK folds into the reserved entry", "UNK UNK UNK a", 2, []string{Unknown, "a"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			vc := BuildVocab(strings.Fields(tt.corpus), tt.size)
			if !reflect.DeepEqual(vc.Words, tt.want) {
				t.Fatalf("Words = %v, want %v", vc.Words, tt.want)
			}
		})
	}
}

func TestVocabInvariants(t *testing.T) {
	words := strings.Fields("the quick brown fox jumps over the lazy dog the fox")
	for size := 1; size <= 12; size++ {
		vc := BuildVocab(words, size)
		if vc.Len() > size {
			t.Errorf("size %d: Len() = %d", size, vc.Len())
		}
		if vc.ID(Unknown) != 0 {
			t.Errorf("size %d: ID(UNK) = %d", size, vc.ID(Unknown))
		}
		if len(vc.Dict) != vc.Len() {
			t.Errorf("size %d: %d dict entries for %d words", size, len(vc.Dict), vc.Len())
		}
		for i, w := range vc.Words {
			if vc.Dict[w] != i {
				t.Errorf("size %d: Dict[%q] = %d, want %d", size, w, vc.Dict[w], i)
			}
		}
	}
}

func TestVocabEncode(t *testing.T) {
	vc := BuildVocab(strings.Fields("a a b"), 2)
	got := vc.Encode([]string{"a", "b", "zzz"})
	want := []int{1, 0, 0}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Encode = %v, want %v", got, want)
	}
	if vc.Word(1) != "a" || vc.Word(7) != "" {
		t.Fatalf("Word lookups = %q, %q", vc.Word(1), vc.Word(7))
	}
}

func TestVocabWriteJSON(t *testing.T) {
	vc := BuildVocab(strings.Fields(`c c "q"`), 3)
	var buf bytes.Buffer
	if err := vc.WriteJSON(&buf); err != nil {
		t.Fatal(err)
	}
	want := "{\n  \"UNK\": 0,\n  \"c\": 1,\n  \"\\\"q\\\"\": 2\n}"
	if buf.String() != want {
		t.Fatalf("WriteJSON =\n%s\nwant\n%s", buf.String(), want)
	}
}

func TestVocabRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "resources", "vocab.json")
	vc := BuildVocab(strings.Fields("one two two three three three café"), 10)
	if err := vc.Save(path); err != nil {
		t.Fatal(err)
	}
	got, err := LoadVocab(path)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(got.Dict, vc.Dict) {
		t.Fatalf("Dict = %v, want %v", got.Dict, vc.Dict)
	}
	if !reflect.DeepEqual(got.Words, vc.Words) {
		t.Fatalf("Words = %v, want %v", got.Words, vc.Words)
	}
}

func TestLoadVocabErrors(t *testing.T) {
	dir := t.TempDir()
	if _, err := LoadVocab(filepath.Join(dir, "missing.json")); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("missing file: err = %v", err)
	}
	for name, body := range map[string]string{
		"gap.json":     `{"UNK": 0, "a": 2}`,
		"dup.json":     `{"UNK": 0, "a": 0}`,
		"unk.json":     `{"a": 0, "UNK": 1}`,
		"garbage.json": `[1, 2]`,
	} {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
			t.Fatal(err)
		}
		if _, err := LoadVocab(path); !errors.Is(err, ErrVocab) {
			t.Errorf("%s: err = %v, want ErrVocab", name, err)
		}
	}
}
