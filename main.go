package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	dgo "github.com/bwmarrin/discordgo"
	"github.com/joho/godotenv"
	pb "github.com/schollz/progressbar/v3"
	"github.com/sirupsen/logrus"
)

const usage = `usage:
  skipgram [train] [-config skipgram.yaml] [flags]
  skipgram neighbors -checkpoint tf_log/word2vec.bin [-k 8] [-brute]`

func main() {
	loadEnv(logrus.StandardLogger())
	args := os.Args[1:]
	cmd := "train"
	if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		cmd, args = args[0], args[1:]
	}
	var err error
	switch cmd {
	case "train":
		err = train(args)
	case "neighbors":
		err = neighbors(args, os.Stdin, os.Stdout)
	default:
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}
	if err != nil {
		logrus.Fatal(err)
	}
}

// loadEnv reads .env files into the environment. A missing file is fine.
func loadEnv(logger logrus.FieldLogger, filenames ...string) {
	if err := godotenv.Load(filenames...); err != nil && !os.IsNotExist(err) {
		logger.WithError(err).Warn("could not load .env")
	}
}

func train(args []string) error {
	fs := flag.NewFlagSet("train", flag.ExitOnError)
	cfgPath := fs.String("config", "skipgram.yaml", "path to YAML config")
	corpusPath := fs.String("corpus", "", "corpus file, one document per line (overrides config)")
	vocabPath := fs.String("vocab", "", "vocabulary JSON path (overrides config)")
	epochs := fs.Int("epochs", 0, "number of epochs (overrides config)")
	seed := fs.Int64("seed", 0, "random seed (overrides config)")
	cbow := fs.Bool("cbow", false, "declare CBOW input slots")
	if err := fs.Parse(args); err != nil {
		return err
	}
	cfg, err := LoadConfig(*cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if *corpusPath != "" {
		cfg.Corpus.Path = *corpusPath
	}
	if *vocabPath != "" {
		cfg.Vocab.Path = *vocabPath
	}
	if *epochs > 0 {
		cfg.Train.Epochs = *epochs
	}
	if *seed != 0 {
		cfg.Model.Seed = *seed
	}
	if *cbow {
		cfg.Model.SkipGram = false
	}
	logger := newLogger(cfg.LogLevel, os.Stderr)

	corpus, err := loadCorpus(&cfg.Corpus, logger)
	if err != nil {
		return err
	}
	vocab := BuildVocab(corpus.Words(), cfg.Vocab.Size)
	if err = vocab.Save(cfg.Vocab.Path); err != nil {
		return fmt.Errorf("save vocabulary: %w", err)
	}
	logger.WithFields(logrus.Fields{
		"sentences": len(corpus),
		"vocab":     vocab.Len(),
		"path":      cfg.Vocab.Path,
	}).Info("built vocabulary")

	seqs := corpus.Encode(vocab)
	bar := pb.NewOptions(len(seqs),
		pb.OptionSetDescription("building dataset"),
		pb.OptionSetWriter(os.Stderr))
	pairs := CreateDataset(seqs, cfg.Model.Window, bar)
	fmt.Fprintln(os.Stderr)

	mode := SkipGram
	if !cfg.Model.SkipGram {
		mode = CBOW
	}
	model, err := NewModel(ModelConfig{
		VocabSize:    vocab.Len(),
		Dim:          cfg.Model.EmbeddingDim,
		LearningRate: cfg.Model.LearningRate,
		NumSampled:   min(cfg.Model.NCESamples, vocab.Len()),
		BatchSize:    cfg.Model.BatchSize,
		Mode:         mode,
		Seed:         cfg.Model.Seed,
		Log:          logger,
	})
	if err != nil {
		return fmt.Errorf("build model: %w", err)
	}
	defer model.Close()
	tr := &Trainer{
		Model:          model,
		Pairs:          pairs,
		Epochs:         cfg.Train.Epochs,
		LogEvery:       cfg.Train.LogEvery,
		LossThreshold:  cfg.Train.LossThreshold,
		MinSteps:       cfg.Train.MinSteps,
		ExportDir:      cfg.Train.ExportDir,
		CheckpointDir:  cfg.Train.CheckpointDir,
		CheckpointName: cfg.Train.CheckpointName,
		Log:            logger,
	}
	rep, err := tr.Train(cfg.Vocab.Path)
	if err != nil {
		return err
	}
	logger.WithFields(logrus.Fields{
		"steps":         rep.Steps,
		"loss":          rep.Loss,
		"early_stopped": rep.EarlyStopped,
		"path":          rep.Path,
	}).Info("done")
	return nil
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func loadCorpus(cc *CorpusConfig, logger *logrus.Logger) (Corpus, error) {
	tk, err := cc.Tokenizer()
	if err != nil {
		return nil, fmt.Errorf("tokenizer: %w", err)
	}
	if cc.Discord != nil {
		token := os.Getenv(cc.Discord.TokenEnv)
		if token == "" {
			return nil, fmt.Errorf("missing Discord token in $%s", cc.Discord.TokenEnv)
		}
		client, err := dgo.New("Bot " + token)
		if err != nil {
			return nil, err
		}
		src := &DiscordSource{
			Session:    client,
			ChannelIDs: cc.Discord.Channels,
			Limit:      cc.Discord.Limit,
			Log:        logger,
		}
		docs, err := src.Documents()
		if err != nil {
			return nil, err
		}
		return ReadDocuments(docs, tk)
	}
	if cc.Path == "" {
		return nil, fmt.Errorf("no corpus configured")
	}
	istrm, err := os.Open(cc.Path)
	if err != nil {
		return nil, err
	}
	defer istrm.Close()
	return ReadCorpus(istrm, tk)
}

func neighbors(args []string, in io.Reader, out io.Writer) error {
	fs := flag.NewFlagSet("neighbors", flag.ExitOnError)
	ckpt := fs.String("checkpoint", "tf_log/word2vec.bin", "checkpoint written by train")
	k := fs.Int("k", 8, "neighbours per query")
	brute := fs.Bool("brute", false, "exact cosine search instead of HNSW")
	if err := fs.Parse(args); err != nil {
		return err
	}
	istrm, err := os.Open(*ckpt)
	if err != nil {
		return err
	}
	eb := &Embeddings{}
	err = eb.ReadBin(istrm)
	istrm.Close()
	if err != nil {
		return fmt.Errorf("%s: %w", *ckpt, err)
	}
	index := NewIndex(eb)
	fmt.Fprintf(out, "Loaded %d vectors of dimension %d.\n> ", eb.Len(), eb.Dim())
	sc := bufio.NewScanner(in)
	for sc.Scan() {
		q := strings.TrimSpace(sc.Text())
		if q == "" {
			fmt.Fprint(out, "> ")
			continue
		}
		var results []Result
		if *brute {
			results, err = index.QueryBrute(q, *k)
		} else {
			results, err = index.Query(q, *k)
		}
		if err != nil {
			fmt.Fprintln(out, err)
		}
		for _, r := range results {
			fmt.Fprintf(out, "%-24s %.4f\n", r.Word, r.Distance)
		}
		fmt.Fprint(out, "> ")
	}
	return sc.Err()
}
