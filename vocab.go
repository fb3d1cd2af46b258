package main

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Unknown is the reserved entry every out-of-vocabulary token maps to.
const Unknown = "UNK"

var ErrVocab = errors.New("malformed vocabulary")

// Vocab maps tokens to dense ids in descending frequency order. Id 0 is
// always Unknown.
type Vocab struct {
	Words  []string
	Counts []int
	Dict   map[string]int
}

// BuildVocab keeps the size-1 most frequent words behind Unknown. Ties are
// broken by first occurrence. A size below 1 keeps only Unknown.
func BuildVocab(words []string, size int) *Vocab {
	if size < 1 {
		size = 1
	}
	ctr := NewCounter(size)
	for _, t := range words {
		if t == Unknown {
			continue
		}
		ctr.Inc(t, 1)
	}
	common := ctr.MostCommon(size - 1)
	vc := &Vocab{
		Words:  make([]string, 0, len(common)+1),
		Counts: make([]int, 0, len(common)+1),
		Dict:   make(map[string]int, len(common)+1),
	}
	vc.add(Unknown, -1)
	for _, c := range common {
		vc.add(c.Token, c.N)
	}
	return vc
}

func (vc *Vocab) add(t string, n int) {
	vc.Dict[t] = len(vc.Words)
	vc.Words = append(vc.Words, t)
	vc.Counts = append(vc.Counts, n)
}

func (vc *Vocab) Len() int {
	return len(vc.Words)
}

// ID returns the id of t, or 0 if t is out of vocabulary.
func (vc *Vocab) ID(t string) int {
	if i, ok := vc.Dict[t]; ok {
		return i
	}
	return 0
}

// Word returns the token for id i, or "" if i is out of range.
func (vc *Vocab) Word(i int) string {
	if i < 0 || i >= len(vc.Words) {
		return ""
	}
	return vc.Words[i]
}

func (vc *Vocab) Encode(doc []string) []int {
	ids := make([]int, len(doc))
	for i, t := range doc {
		ids[i] = vc.ID(t)
	}
	return ids
}

// WriteJSON writes the vocabulary as a JSON object indented by two spaces,
// keys in id order.
func (vc *Vocab) WriteJSON(ostrm io.Writer) (err error) {
	w := bufio.NewWriter(ostrm)
	if len(vc.Words) == 0 {
		if _, err = w.WriteString("{}"); err != nil {
			return
		}
		return w.Flush()
	}
	if _, err = w.WriteString("{\n"); err != nil {
		return
	}
	for i, t := range vc.Words {
		var k []byte
		if k, err = json.Marshal(t); err != nil {
			return
		}
		sep := ",\n"
		if i == len(vc.Words)-1 {
			sep = "\n"
		}
		if _, err = fmt.Fprintf(w, "  %s: %d%s", k, i, sep); err != nil {
			return
		}
	}
	if _, err = w.WriteString("}"); err != nil {
		return
	}
	return w.Flush()
}

// ReadJSON replaces vc with the mapping read from istrm. Ids must be dense
// and Unknown must be 0.
func (vc *Vocab) ReadJSON(istrm io.Reader) error {
	dict := make(map[string]int)
	if err := json.NewDecoder(istrm).Decode(&dict); err != nil {
		return fmt.Errorf("%w: %v", ErrVocab, err)
	}
	words := make([]string, len(dict))
	seen := make([]bool, len(dict))
	for t, i := range dict {
		if i < 0 || i >= len(dict) || seen[i] {
			return fmt.Errorf("%w: id %d of %q is not dense", ErrVocab, i, t)
		}
		seen[i] = true
		words[i] = t
	}
	if len(words) > 0 && words[0] != Unknown {
		return fmt.Errorf("%w: id 0 is %q, want %q", ErrVocab, words[0], Unknown)
	}
	vc.Words = words
	vc.Dict = dict
	vc.Counts = nil
	return nil
}

// Save writes the vocabulary to path, creating parent directories.
func (vc *Vocab) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	ostrm, err := os.Create(path)
	if err != nil {
		return err
	}
	if err = vc.WriteJSON(ostrm); err != nil {
		ostrm.Close()
		return err
	}
	return ostrm.Close()
}

// LoadVocab reads a vocabulary written by Save.
func LoadVocab(path string) (*Vocab, error) {
	istrm, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer istrm.Close()
	vc := &Vocab{}
	if err = vc.ReadJSON(istrm); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return vc, nil
}
