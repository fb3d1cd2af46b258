package main

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

const trainCorpus = "the cat sat on the mat\nthe dog sat on the log\na cat and a dog met on the mat"

// trainFixture saves a vocabulary and returns a trainer over its pairs
// writing everything under a temporary directory.
func trainFixture(t *testing.T, batch int, mode Mode) (*Trainer, string) {
	t.Helper()
	dir := t.TempDir()
	tk := &Tokenizer{Sanitizer: ToLower}
	corpus, err := ReadCorpus(strings.NewReader(trainCorpus), tk)
	if err != nil {
		t.Fatal(err)
	}
	vocab := BuildVocab(corpus.Words(), 50)
	vocabPath := filepath.Join(dir, "resources", "vocab.json")
	if err = vocab.Save(vocabPath); err != nil {
		t.Fatal(err)
	}
	md := testModel(t, ModelConfig{
		VocabSize:    vocab.Len(),
		Dim:          8,
		LearningRate: 0.01,
		NumSampled:   3,
		BatchSize:    batch,
		Mode:         mode,
		Seed:         17,
	})
	return &Trainer{
		Model:          md,
		Pairs:          CreateDataset(corpus.Encode(vocab), 1, nil),
		Epochs:         2,
		LogEvery:       100,
		LossThreshold:  5,
		MinSteps:       100000,
		ExportDir:      filepath.Join(dir, "export"),
		CheckpointDir:  filepath.Join(dir, "tf_log"),
		CheckpointName: "word2vec.bin",
		Log:            quietLogger(),
	}, vocabPath
}

func TestTrainRequiresVocabulary(t *testing.T) {
	tr, vocabPath := trainFixture(t, 4, SkipGram)
	if err := os.Remove(vocabPath); err != nil {
		t.Fatal(err)
	}
	if _, err := tr.Train(vocabPath); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("err = %v, want a not-exist error", err)
	}
}

func TestTrainCheckpoint(t *testing.T) {
	tr, vocabPath := trainFixture(t, 4, SkipGram)
	tr.LossThreshold = 0
	rep, err := tr.Train(vocabPath)
	if err != nil {
		t.Fatal(err)
	}
	// 30 pairs in batches of 4: the last 2 pairs are never trained on
	if tr.Pairs.Len() != 30 {
		t.Fatalf("fixture has %d pairs, want 30", tr.Pairs.Len())
	}
	if rep.EarlyStopped {
		t.Fatal("stopped early with a zero threshold")
	}
	if want := tr.Epochs * 7; rep.Steps != want {
		t.Fatalf("Steps = %d, want %d", rep.Steps, want)
	}
	if rep.Path != filepath.Join(tr.CheckpointDir, tr.CheckpointName) {
		t.Fatalf("Path = %q", rep.Path)
	}
	istrm, err := os.Open(rep.Path)
	if err != nil {
		t.Fatal(err)
	}
	defer istrm.Close()
	eb := &Embeddings{}
	if err = eb.ReadBin(istrm); err != nil {
		t.Fatal(err)
	}
	emb := tr.Embedding()
	if eb.Len() != emb.Rows || eb.Dim() != emb.Cols {
		t.Fatalf("checkpoint is %dx%d, want %dx%d", eb.Len(), eb.Dim(), emb.Rows, emb.Cols)
	}
	vocab, err := LoadVocab(vocabPath)
	if err != nil {
		t.Fatal(err)
	}
	for i, w := range vocab.Words {
		if !reflect.DeepEqual(eb.Embed(w), Row(emb, i)) {
			t.Fatalf("checkpoint row for %q differs from the model", w)
		}
	}
}

func TestTrainEarlyStop(t *testing.T) {
	tr, vocabPath := trainFixture(t, 4, SkipGram)
	tr.LossThreshold = 1e9
	tr.MinSteps = 0
	rep, err := tr.Train(vocabPath)
	if err != nil {
		t.Fatal(err)
	}
	if !rep.EarlyStopped || rep.Steps != 2 {
		t.Fatalf("report = %+v, want an early stop after 2 steps", rep)
	}
	emb := tr.Embedding()
	if want := filepath.Join(tr.ExportDir, RawName(emb.Rows, emb.Cols)); rep.Path != want {
		t.Fatalf("Path = %q, want %q", rep.Path, want)
	}
	fi, err := os.Stat(rep.Path)
	if err != nil {
		t.Fatal(err)
	}
	if fi.Size() != int64(emb.Rows*emb.Cols*4) {
		t.Fatalf("dump is %d bytes, want %d", fi.Size(), emb.Rows*emb.Cols*4)
	}
	rows, cols, err := ParseRawName(rep.Path)
	if err != nil || rows != emb.Rows || cols != emb.Cols {
		t.Fatalf("ParseRawName = %d, %d, %v", rows, cols, err)
	}
	got, err := ReadRaw(rep.Path)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(got.Data, emb.Data) {
		t.Fatal("dump differs from the embedding table")
	}
	if _, err := os.Stat(filepath.Join(tr.CheckpointDir, tr.CheckpointName)); !os.IsNotExist(err) {
		t.Fatalf("checkpoint written after early stop: %v", err)
	}
}

func TestTrainCBOW(t *testing.T) {
	tr, vocabPath := trainFixture(t, 6, CBOW)
	tr.LossThreshold = 0
	rep, err := tr.Train(vocabPath)
	if err != nil {
		t.Fatal(err)
	}
	if want := tr.Epochs * 5; rep.Steps != want {
		t.Fatalf("Steps = %d, want %d", rep.Steps, want)
	}
}
