package main

import (
	"sort"
)

// Counter tallies tokens and remembers the order in which they were first
// seen.
type Counter struct {
	counts map[string]int
	order  []string
}

func NewCounter(size int) *Counter {
	return &Counter{
		counts: make(map[string]int, size),
		order:  make([]string, 0, size),
	}
}

func (ctr *Counter) Inc(k string, n int) {
	if ctr.counts == nil {
		ctr.counts = make(map[string]int, 1024)
	}
	if _, ok := ctr.counts[k]; !ok {
		ctr.order = append(ctr.order, k)
	}
	ctr.counts[k] += n
}

type Count struct {
	Token string
	N     int
}

// MostCommon returns the n highest counts in descending order. Equal counts
// keep first-seen order. A negative n returns every entry.
func (ctr *Counter) MostCommon(n int) []Count {
	all := make([]Count, len(ctr.order))
	for i, t := range ctr.order {
		all[i] = Count{t, ctr.counts[t]}
	}
	sort.SliceStable(all, func(i, j int) bool {
		return all[i].N > all[j].N
	})
	if n >= 0 && n < len(all) {
		all = all[:n]
	}
	return all
}

type BOW struct {
	Dict map[string]struct{}
	Sanitizer
}

func Bag(words ...string) BOW {
	bag := BOW{
		Dict:      make(map[string]struct{}, len(words)),
		Sanitizer: SanitizerChain{},
	}
	for _, t := range words {
		bag.Advance(t)
	}
	return bag
}

func (bag *BOW) Advance(t string) bool {
	bag.Ins(t)
	return true
}

func (bag *BOW) sanitize(t string) string {
	if bag.Sanitizer == nil {
		return t
	}
	return bag.Sanitize(t)
}

func (bag *BOW) Ins(t string) {
	if bag.Dict == nil {
		bag.Dict = make(map[string]struct{}, 1024)
	}
	bag.Dict[bag.sanitize(t)] = struct{}{}
}

func (bag *BOW) Has(t string) bool {
	_, ok := bag.Dict[bag.sanitize(t)]
	return ok
}
