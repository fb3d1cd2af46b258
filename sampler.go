package main

import (
	"math"
	"math/rand"
)

// LogUniform draws ids from an approximately Zipfian distribution over
// [0, Range), P(k) = log((k+2)/(k+1)) / log(Range+1). It assumes ids are
// sorted by descending frequency, which BuildVocab guarantees.
type LogUniform struct {
	Range  int
	logMax float64
	rng    *rand.Rand
}

func NewLogUniform(n int, rng *rand.Rand) *LogUniform {
	return &LogUniform{Range: n, logMax: math.Log(float64(n) + 1), rng: rng}
}

func (s *LogUniform) Prob(k int) float64 {
	return (math.Log(float64(k)+2) - math.Log(float64(k)+1)) / s.logMax
}

func (s *LogUniform) Draw() int {
	k := int(math.Exp(s.rng.Float64()*s.logMax)) - 1
	if k >= s.Range {
		k = s.Range - 1
	}
	if k < 0 {
		k = 0
	}
	return k
}

// Unique draws n distinct ids by rejection and reports how many draws it
// took. n must not exceed Range.
func (s *LogUniform) Unique(n int) (ids []int, tries int) {
	ids = make([]int, 0, n)
	seen := make(map[int]struct{}, n)
	for len(ids) < n {
		k := s.Draw()
		tries++
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		ids = append(ids, k)
	}
	return
}

// Expected is the expected number of times k shows up in tries draws,
// which for unique sampling is the probability it was drawn at all.
func (s *LogUniform) Expected(k, tries int) float64 {
	p := s.Prob(k)
	if p >= 1 {
		return 1
	}
	return -math.Expm1(float64(tries) * math.Log1p(-p))
}
