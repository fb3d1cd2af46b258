package main

import (
	pb "github.com/schollz/progressbar/v3"
)

// Pairs is the training set: Neighbors[i] is a context word of Centers[i].
type Pairs struct {
	Centers, Neighbors []int
}

func (ps *Pairs) Len() int {
	return len(ps.Centers)
}

// Batch returns the i-th run of size pairs.
func (ps *Pairs) Batch(i, size int) (centers, neighbors []int) {
	lo, hi := i*size, i*size+size
	return ps.Centers[lo:hi], ps.Neighbors[lo:hi]
}

// CreateDataset windows every sequence. Each position with at least window
// ids on both sides is a center and yields 2*window pairs, its left
// neighbors first, then its right ones. bar, if non-nil, advances once per
// sequence.
func CreateDataset(seqs [][]int, window int, bar *pb.ProgressBar) *Pairs {
	n := 0
	if window > 0 {
		for _, seq := range seqs {
			if c := len(seq) - 2*window; c > 0 {
				n += c * 2 * window
			}
		}
	}
	ps := &Pairs{
		Centers:   make([]int, 0, n),
		Neighbors: make([]int, 0, n),
	}
	for _, seq := range seqs {
		if window > 0 {
			for p := window; p < len(seq)-window; p++ {
				for _, t := range seq[p-window : p] {
					ps.Centers = append(ps.Centers, seq[p])
					ps.Neighbors = append(ps.Neighbors, t)
				}
				for _, t := range seq[p+1 : p+window+1] {
					ps.Centers = append(ps.Centers, seq[p])
					ps.Neighbors = append(ps.Neighbors, t)
				}
			}
		}
		if bar != nil {
			bar.Add(1)
		}
	}
	return ps
}
