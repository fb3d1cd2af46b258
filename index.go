package main

import (
	"fmt"
	"sort"

	"github.com/Bithack/go-hnsw"
	"gonum.org/v1/gonum/blas/blas32"
)

// Index answers nearest-neighbour queries over trained word vectors.
type Index struct {
	*Embeddings
	cluster *hnsw.Hnsw
	qledger map[uint32]string
	width   int
}

type Result struct {
	Word     string
	Distance float32
}

// NewIndex builds an HNSW graph over unit-normalized copies of every vector
// in eb, so that L2 order matches cosine order.
func NewIndex(eb *Embeddings) *Index {
	// the distance kernel works on blocks of 8 floats
	width := (eb.Dim() + 7) / 8 * 8
	m, efConstruction, zero := 32, 256, make(hnsw.Point, width)
	index := &Index{
		Embeddings: eb,
		cluster:    hnsw.New(m, efConstruction, zero),
		qledger:    make(map[uint32]string, eb.Len()),
		width:      width,
	}
	index.cluster.Grow(eb.Len() + 1)
	eb.RLock()
	defer eb.RUnlock()
	for i, t := range eb.Words {
		// id 0 is the zero point the graph was seeded with
		id := uint32(i + 1)
		index.qledger[id] = t
		index.cluster.Add(hnsw.Point(unit(eb.Dict[t], width)), id)
	}
	return index
}

// unit returns v scaled to length 1 and zero-padded to width.
func unit(v Vec, width int) Vec {
	u := make(Vec, width)
	copy(u, v)
	if n := blas32.Nrm2(u.ToBlas()); n > 0 {
		blas32.Scal(1/n, u.ToBlas())
	}
	return u
}

// Query returns up to k approximate neighbours of t, closest first.
func (index *Index) Query(t string, k int) ([]Result, error) {
	v := index.Embed(t)
	if v == nil {
		return nil, fmt.Errorf("%q is not in the vocabulary", t)
	}
	items := index.cluster.Search(hnsw.Point(unit(v, index.width)), 64+k, k+2).Items()
	results := make([]Result, 0, k)
	for _, item := range items {
		w, ok := index.qledger[item.ID]
		if !ok || w == t {
			continue
		}
		results = append(results, Result{w, item.D})
	}
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Distance < results[j].Distance
	})
	if len(results) > k {
		results = results[:k]
	}
	return results, nil
}

// QueryBrute ranks every other word by cosine similarity to t. Distance
// holds the similarity, so higher is closer.
func (index *Index) QueryBrute(t string, k int) ([]Result, error) {
	v := index.Embed(t)
	if v == nil {
		return nil, fmt.Errorf("%q is not in the vocabulary", t)
	}
	index.RLock()
	results := make([]Result, 0, len(index.Dict))
	for _, w := range index.Words {
		if w == t {
			continue
		}
		results = append(results, Result{w, v.Sim(index.Dict[w])})
	}
	index.RUnlock()
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Distance > results[j].Distance
	})
	if len(results) > k {
		results = results[:k]
	}
	return results, nil
}
