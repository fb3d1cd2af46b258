package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
)

// Trainer runs the epoch/batch loop over a Model.
type Trainer struct {
	*Model
	*Pairs
	Epochs int
	// LogEvery is the batch-index period of loss lines; 0 disables them.
	LogEvery int
	// Training stops early, exporting a raw dump into ExportDir, once the
	// loss drops below LossThreshold past batch index MinSteps.
	LossThreshold float32
	MinSteps      int
	ExportDir     string
	// Otherwise the embedding is checkpointed to CheckpointDir/CheckpointName
	// after the last epoch.
	CheckpointDir  string
	CheckpointName string
	Log            logrus.FieldLogger
}

type Report struct {
	Steps        int
	Loss         float32
	EarlyStopped bool
	Path         string
}

// Train loads the vocabulary at vocabPath and trains on the pairs in full
// batches. Pairs past the last full batch are not trained on.
func (tr *Trainer) Train(vocabPath string) (*Report, error) {
	vocab, err := LoadVocab(vocabPath)
	if err != nil {
		return nil, fmt.Errorf("load vocabulary: %w", err)
	}
	logger := tr.Log
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	numBatches := tr.Pairs.Len() / tr.BatchSize
	logger.WithFields(logrus.Fields{
		"pairs":   tr.Pairs.Len(),
		"batches": numBatches,
		"epochs":  tr.Epochs,
		"mode":    tr.Mode,
	}).Info("training")
	rep := &Report{}
	for epoch := 0; epoch < tr.Epochs; epoch++ {
		for i := 0; i < numBatches; i++ {
			centers, neighbors := tr.Batch(i, tr.BatchSize)
			l, err := tr.Step(centers, neighbors)
			if err != nil {
				return rep, fmt.Errorf("epoch %d step %d: %w", epoch, i, err)
			}
			rep.Steps++
			rep.Loss = l
			if tr.LogEvery > 0 && i%tr.LogEvery == 0 {
				logger.Infof("STEP %d of %d LOSS: %v", i, numBatches, l)
			}
			if l < tr.LossThreshold && i > tr.MinSteps {
				path, err := WriteRaw(tr.ExportDir, tr.Embedding())
				if err != nil {
					return rep, fmt.Errorf("export embedding: %w", err)
				}
				rep.EarlyStopped = true
				rep.Path = path
				logger.WithField("path", path).Info("loss threshold reached, exported embedding")
				return rep, nil
			}
		}
	}
	path, err := tr.checkpoint(vocab)
	if err != nil {
		return rep, fmt.Errorf("checkpoint: %w", err)
	}
	rep.Path = path
	logger.WithField("path", path).Info("saved checkpoint")
	return rep, nil
}

func (tr *Trainer) checkpoint(vocab *Vocab) (path string, err error) {
	if err = os.MkdirAll(tr.CheckpointDir, 0o755); err != nil {
		return
	}
	path = filepath.Join(tr.CheckpointDir, tr.CheckpointName)
	ostrm, err := os.Create(path)
	if err != nil {
		return
	}
	err = WriteBin(ostrm, tr.Embedding(), func(i int) string {
		if t := vocab.Word(i); t != "" {
			return t
		}
		return fmt.Sprintf("row%d", i)
	})
	if err != nil {
		ostrm.Close()
		return
	}
	err = ostrm.Close()
	return
}
