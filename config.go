package main

import (
	"errors"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// CorpusConfig selects the corpus source and how it is tokenized.
type CorpusConfig struct {
	Path            string         `yaml:"path"`
	Segment         bool           `yaml:"segment"`
	Lowercase       bool           `yaml:"lowercase"`
	StripPunct      bool           `yaml:"strip_punct"`
	FoldAccents     bool           `yaml:"fold_accents"`
	Stem            bool           `yaml:"stem"`
	Stopwords       bool           `yaml:"stopwords"`
	SpellDictionary string         `yaml:"spell_dictionary"`
	Discord         *DiscordConfig `yaml:"discord,omitempty"`
}

// DiscordConfig reads the corpus from channel history instead of a file.
// The token comes from TokenEnv.
type DiscordConfig struct {
	TokenEnv string   `yaml:"token_env"`
	Channels []string `yaml:"channels"`
	Limit    int      `yaml:"limit"`
}

type VocabConfig struct {
	Path string `yaml:"path"`
	Size int    `yaml:"size"`
}

type ModelSection struct {
	EmbeddingDim int     `yaml:"embedding_dim"`
	LearningRate float64 `yaml:"learning_rate"`
	NCESamples   int     `yaml:"nce_samples"`
	BatchSize    int     `yaml:"batch_size"`
	// Window is kept as written, so 0 disables pair generation; an
	// absent key keeps the default.
	Window       int     `yaml:"window"`
	SkipGram     bool    `yaml:"skipgram"`
	Seed         int64   `yaml:"seed"`
}

type TrainConfig struct {
	Epochs         int     `yaml:"epochs"`
	LogEvery       int     `yaml:"log_every"`
	LossThreshold  float32 `yaml:"loss_threshold"`
	MinSteps       int     `yaml:"min_steps"`
	ExportDir      string  `yaml:"export_dir"`
	CheckpointDir  string  `yaml:"checkpoint_dir"`
	CheckpointName string  `yaml:"checkpoint_name"`
}

// AppConfig is the root configuration.
type AppConfig struct {
	LogLevel string       `yaml:"log_level"`
	Corpus   CorpusConfig `yaml:"corpus"`
	Vocab    VocabConfig  `yaml:"vocab"`
	Model    ModelSection `yaml:"model"`
	Train    TrainConfig  `yaml:"train"`
}

// LoadConfig reads a config from path. A missing file yields the defaults.
func LoadConfig(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return defaultConfig(), nil
		}
		return nil, err
	}
	cfg := defaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	applyConfigDefaults(cfg)
	return cfg, nil
}

// SaveConfig writes cfg to path, creating directories as needed.
func SaveConfig(path string, cfg *AppConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func defaultConfig() *AppConfig {
	return &AppConfig{
		LogLevel: "info",
		Corpus: CorpusConfig{
			Lowercase:  true,
			StripPunct: true,
		},
		Vocab: VocabConfig{Path: filepath.Join("resources", "vocab.json"), Size: 50000},
		Model: ModelSection{
			EmbeddingDim: 128,
			LearningRate: 0.001,
			NCESamples:   64,
			BatchSize:    32,
			Window:       2,
			SkipGram:     true,
		},
		Train: TrainConfig{
			Epochs:         1,
			LogEvery:       100,
			LossThreshold:  5.0,
			MinSteps:       100000,
			ExportDir:      ".",
			CheckpointDir:  "tf_log",
			CheckpointName: "word2vec.bin",
		},
	}
}

func applyConfigDefaults(cfg *AppConfig) {
	def := defaultConfig()
	if cfg.LogLevel == "" {
		cfg.LogLevel = def.LogLevel
	}
	if cfg.Vocab.Path == "" {
		cfg.Vocab.Path = def.Vocab.Path
	}
	if cfg.Vocab.Size == 0 {
		cfg.Vocab.Size = def.Vocab.Size
	}
	if cfg.Model.EmbeddingDim == 0 {
		cfg.Model.EmbeddingDim = def.Model.EmbeddingDim
	}
	if cfg.Model.LearningRate == 0 {
		cfg.Model.LearningRate = def.Model.LearningRate
	}
	if cfg.Model.NCESamples == 0 {
		cfg.Model.NCESamples = def.Model.NCESamples
	}
	if cfg.Model.BatchSize == 0 {
		cfg.Model.BatchSize = def.Model.BatchSize
	}
	if cfg.Train.Epochs == 0 {
		cfg.Train.Epochs = def.Train.Epochs
	}
	if cfg.Train.ExportDir == "" {
		cfg.Train.ExportDir = def.Train.ExportDir
	}
	if cfg.Train.CheckpointDir == "" {
		cfg.Train.CheckpointDir = def.Train.CheckpointDir
	}
	if cfg.Train.CheckpointName == "" {
		cfg.Train.CheckpointName = def.Train.CheckpointName
	}
	if cfg.Corpus.Discord != nil && cfg.Corpus.Discord.TokenEnv == "" {
		cfg.Corpus.Discord.TokenEnv = "SKIPGRAM_DISCORD_TOKEN"
	}
}

// Tokenizer assembles the sanitizer chain the corpus section asks for.
func (cc *CorpusConfig) Tokenizer() (*Tokenizer, error) {
	chain := SanitizerChain{}
	if cc.StripPunct {
		chain = append(chain, StripPunct)
	}
	if cc.Lowercase {
		chain = append(chain, ToLower)
	}
	if cc.FoldAccents {
		chain = append(chain, FoldAccents)
	}
	if cc.SpellDictionary != "" {
		dict, err := os.Open(cc.SpellDictionary)
		if err != nil {
			return nil, err
		}
		defer dict.Close()
		cker, err := NewSpellChker(dict)
		if err != nil {
			return nil, err
		}
		chain = append(chain, cker)
	}
	if cc.Stem {
		chain = append(chain, Stem)
	}
	var stops *BOW
	if cc.Stopwords {
		stops = Stopwords(chain)
	}
	return &Tokenizer{Sanitizer: chain, Stops: stops, Segment: cc.Segment}, nil
}
