package main

import (
	"math"

	"github.com/james-bowman/sparse"
	"gonum.org/v1/gonum/blas/blas32"
)

// Adam holds the shared step counter and hyperparameters; each parameter
// table carries its own moments in a Slot.
type Adam struct {
	LearningRate, Beta1, Beta2, Epsilon float64
	t                                   int
}

func NewAdam(lr float64) *Adam {
	return &Adam{LearningRate: lr, Beta1: 0.9, Beta2: 0.999, Epsilon: 1e-8}
}

// Slot is the first and second moment estimate of one parameter table.
type Slot struct {
	m, v []float32
}

func NewSlot(n int) *Slot {
	return &Slot{m: make([]float32, n), v: make([]float32, n)}
}

// Tick advances the step counter and returns the bias-corrected step size.
func (opt *Adam) Tick() float64 {
	opt.t++
	t := float64(opt.t)
	return opt.LearningRate * math.Sqrt(1-math.Pow(opt.Beta2, t)) / (1 - math.Pow(opt.Beta1, t))
}

// Apply updates the row-major table param (cols wide) with the sparse
// gradient grad scaled by scale. Moments decay for every entry, as for a
// dense gradient; only touched entries receive new gradient mass.
func (opt *Adam) Apply(lrT float64, param []float32, cols int, slot *Slot, grad *sparse.DOK, scale float64) {
	n := len(param)
	blas32.Scal(float32(opt.Beta1), blas32.Vector{N: n, Inc: 1, Data: slot.m})
	blas32.Scal(float32(opt.Beta2), blas32.Vector{N: n, Inc: 1, Data: slot.v})
	grad.DoNonZero(func(i, j int, g float64) {
		g *= scale
		k := i*cols + j
		slot.m[k] += float32((1 - opt.Beta1) * g)
		slot.v[k] += float32((1 - opt.Beta2) * g * g)
	})
	eps := opt.Epsilon
	for k := range param {
		param[k] -= float32(lrT * float64(slot.m[k]) / (math.Sqrt(float64(slot.v[k])) + eps))
	}
}

// ClipScale returns the factor that brings the joint L2 norm of grads down
// to clip, or 1 when it is already within bounds.
func ClipScale(clip float64, grads ...*sparse.DOK) (scale, norm float64) {
	var sq float64
	for _, g := range grads {
		g.DoNonZero(func(i, j int, x float64) {
			sq += x * x
		})
	}
	norm = math.Sqrt(sq)
	if norm > clip {
		return clip / norm, norm
	}
	return 1, norm
}

// accumulate adds x into the (i, j) entry of d.
func accumulate(d *sparse.DOK, i, j int, x float64) {
	d.Set(i, j, d.At(i, j)+x)
}
