package main

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/james-bowman/sparse"
	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/blas/blas32"
)

// Mode selects how the input slots are declared.
type Mode int

const (
	SkipGram Mode = iota
	CBOW
)

func (m Mode) String() string {
	if m == CBOW {
		return "cbow"
	}
	return "skipgram"
}

// ClipNorm bounds the global L2 norm of every step's gradients.
const ClipNorm = 5.0

var (
	ErrShape  = errors.New("batch shape does not match input slot")
	ErrIndex  = errors.New("id out of range")
	ErrClosed = errors.New("model is closed")
)

type ModelConfig struct {
	VocabSize    int
	Dim          int
	LearningRate float64
	NumSampled   int
	BatchSize    int
	Mode         Mode
	// Seed seeds parameter init and negative sampling; 0 picks one from
	// the clock.
	Seed int64
	Log  logrus.FieldLogger
}

// Model is a training context: the embedding table, the auxiliary NCE
// weights and biases, and the optimizer state that updates them.
type Model struct {
	ModelConfig
	embed, weights blas32.General
	biases         []float32

	opt                     *Adam
	embedSlot, wSlot, bSlot *Slot
	sampler                 *LogUniform
	closed                  bool
}

// NewModel allocates and initializes every parameter table.
func NewModel(cfg ModelConfig) (*Model, error) {
	switch {
	case cfg.VocabSize < 1:
		return nil, fmt.Errorf("vocabulary size %d < 1", cfg.VocabSize)
	case cfg.Dim < 1:
		return nil, fmt.Errorf("embedding dimension %d < 1", cfg.Dim)
	case cfg.BatchSize < 1:
		return nil, fmt.Errorf("batch size %d < 1", cfg.BatchSize)
	case cfg.NumSampled < 1 || cfg.NumSampled > cfg.VocabSize:
		return nil, fmt.Errorf("negative samples %d not in [1, %d]", cfg.NumSampled, cfg.VocabSize)
	case cfg.LearningRate <= 0:
		return nil, fmt.Errorf("learning rate %g <= 0", cfg.LearningRate)
	}
	if cfg.Seed == 0 {
		cfg.Seed = time.Now().UnixNano()
	}
	if cfg.Log == nil {
		cfg.Log = logrus.StandardLogger()
	}
	if cfg.Mode == CBOW {
		// cbow accepts unsized batches but trains the skip-gram loss
		cfg.Log.Warn("cbow mode only relaxes input shapes; the loss is computed as for skip-gram")
	}
	rng := rand.New(rand.NewSource(cfg.Seed))
	v, d := cfg.VocabSize, cfg.Dim
	md := &Model{
		ModelConfig: cfg,
		embed:       blas32.General{Rows: v, Cols: d, Stride: d, Data: make([]float32, v*d)},
		weights:     blas32.General{Rows: v, Cols: d, Stride: d, Data: make([]float32, v*d)},
		biases:      make([]float32, v),
		opt:         NewAdam(cfg.LearningRate),
		embedSlot:   NewSlot(v * d),
		wSlot:       NewSlot(v * d),
		bSlot:       NewSlot(v),
	}
	for i := range md.embed.Data {
		md.embed.Data[i] = float32(2*rng.Float64() - 1)
	}
	std := math.Sqrt(1 / float64(d))
	for i := range md.weights.Data {
		x := rng.NormFloat64()
		for math.Abs(x) > 2 {
			x = rng.NormFloat64()
		}
		md.weights.Data[i] = float32(x * std)
	}
	md.sampler = NewLogUniform(v, rng)
	return md, nil
}

// Embedding returns the embedding table. Callers must not modify it.
func (md *Model) Embedding() blas32.General {
	return md.embed
}

// Close releases the auxiliary parameters and optimizer state. The
// embedding table stays readable.
func (md *Model) Close() error {
	md.closed = true
	md.weights = blas32.General{}
	md.biases = nil
	md.embedSlot, md.wSlot, md.bSlot = nil, nil, nil
	md.sampler = nil
	return nil
}

func (md *Model) checkSlots(centers, neighbors []int) error {
	if md.Mode == SkipGram && len(centers) != md.BatchSize {
		return fmt.Errorf("%w: centers has %d rows, slot has %d", ErrShape, len(centers), md.BatchSize)
	}
	if len(neighbors) != len(centers) {
		return fmt.Errorf("%w: %d centers against %d neighbors", ErrShape, len(centers), len(neighbors))
	}
	for i := range centers {
		if centers[i] < 0 || centers[i] >= md.VocabSize {
			return fmt.Errorf("%w: center %d", ErrIndex, centers[i])
		}
		if neighbors[i] < 0 || neighbors[i] >= md.VocabSize {
			return fmt.Errorf("%w: neighbor %d", ErrIndex, neighbors[i])
		}
	}
	return nil
}

// Step runs one optimizer update on a batch and returns the mean NCE loss
// measured before the update.
func (md *Model) Step(centers, neighbors []int) (float32, error) {
	if md.closed {
		return 0, ErrClosed
	}
	if err := md.checkSlots(centers, neighbors); err != nil {
		return 0, err
	}
	if len(centers) == 0 {
		return 0, nil
	}
	v, d := md.VocabSize, md.Dim
	sampled, tries := md.sampler.Unique(md.NumSampled)
	logQ := make([]float64, len(sampled))
	for j, k := range sampled {
		logQ[j] = math.Log(md.sampler.Expected(k, tries))
	}
	gEmbed := sparse.NewDOK(v, d)
	gW := sparse.NewDOK(v, d)
	gB := sparse.NewDOK(v, 1)
	dx := make([]float64, d)
	inv := 1 / float64(len(centers))
	var loss float64
	for i, c := range centers {
		x := Row(md.embed, c)
		for k := range dx {
			dx[k] = 0
		}
		// label is 1 for the true neighbor, 0 for the sampled noise
		contrast := func(k int, label, logq float64) {
			w := Row(md.weights, k)
			z := float64(blas32.Dot(x.ToBlas(), w.ToBlas())) + float64(md.biases[k]) - logq
			loss += sigmoidCE(z, label)
			g := (sigmoid(z) - label) * inv
			for j := range dx {
				dx[j] += g * float64(w[j])
				accumulate(gW, k, j, g*float64(x[j]))
			}
			accumulate(gB, k, 0, g)
		}
		t := neighbors[i]
		contrast(t, 1, math.Log(md.sampler.Expected(t, tries)))
		for j, k := range sampled {
			contrast(k, 0, logQ[j])
		}
		for j := range dx {
			accumulate(gEmbed, c, j, dx[j])
		}
	}
	scale, _ := ClipScale(ClipNorm, gEmbed, gW, gB)
	lrT := md.opt.Tick()
	md.opt.Apply(lrT, md.embed.Data, d, md.embedSlot, gEmbed, scale)
	md.opt.Apply(lrT, md.weights.Data, d, md.wSlot, gW, scale)
	md.opt.Apply(lrT, md.biases, 1, md.bSlot, gB, scale)
	return float32(loss * inv), nil
}

func sigmoid(z float64) float64 {
	if z >= 0 {
		return 1 / (1 + math.Exp(-z))
	}
	e := math.Exp(z)
	return e / (1 + e)
}

// sigmoidCE is the logistic loss of logit z against label, stable for
// large |z|.
func sigmoidCE(z, label float64) float64 {
	return math.Max(z, 0) - z*label + math.Log1p(math.Exp(-math.Abs(z)))
}
