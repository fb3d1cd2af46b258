package main

import (
	"testing"
)

func testEmbeddings() *Embeddings {
	eb := &Embeddings{
		Dict: map[string]Vec{
			"cat": {1, 0.1, 0},
			"dog": {0.9, 0.2, 0},
			"car": {0, 0, 1},
			"bus": {0, 0.1, 0.9},
		},
		Words: []string{"cat", "dog", "car", "bus"},
		dim:   3,
	}
	return eb
}

func TestIndexQuery(t *testing.T) {
	index := NewIndex(testEmbeddings())
	for _, tt := range []struct{ q, want string }{
		{"cat", "dog"},
		{"dog", "cat"},
		{"car", "bus"},
		{"bus", "car"},
	} {
		for name, query := range map[string]func(string, int) ([]Result, error){
			"hnsw":  index.Query,
			"brute": index.QueryBrute,
		} {
			results, err := query(tt.q, 2)
			if err != nil {
				t.Fatalf("%s %s: %v", name, tt.q, err)
			}
			if len(results) != 2 {
				t.Fatalf("%s %s: %d results", name, tt.q, len(results))
			}
			if results[0].Word != tt.want {
				t.Errorf("%s %s: nearest is %q, want %q", name, tt.q, results[0].Word, tt.want)
			}
			for _, r := range results {
				if r.Word == tt.q {
					t.Errorf("%s %s: query word returned", name, tt.q)
				}
			}
		}
	}
}

func TestIndexUnknownWord(t *testing.T) {
	index := NewIndex(testEmbeddings())
	if _, err := index.Query("zebra", 3); err == nil {
		t.Fatal("Query: expected an error")
	}
	if _, err := index.QueryBrute("zebra", 3); err == nil {
		t.Fatal("QueryBrute: expected an error")
	}
}
