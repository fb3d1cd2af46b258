package main

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"time"

	dgo "github.com/bwmarrin/discordgo"
	"github.com/jdkato/prose/v2"
	"github.com/kavorite/discord-snowflake"
	"github.com/sirupsen/logrus"
)

// Corpus is a list of tokenized sentences.
type Corpus [][]string

// Words flattens the corpus into one token stream.
func (c Corpus) Words() []string {
	n := 0
	for _, s := range c {
		n += len(s)
	}
	words := make([]string, 0, n)
	for _, s := range c {
		words = append(words, s...)
	}
	return words
}

// Encode maps every sentence to vocabulary ids.
func (c Corpus) Encode(vocab *Vocab) [][]int {
	seqs := make([][]int, len(c))
	for i, s := range c {
		seqs[i] = vocab.Encode(s)
	}
	return seqs
}

// Tokenizer splits raw documents into sanitized sentences.
type Tokenizer struct {
	Sanitizer
	Stops *BOW
	// Segment splits documents into sentences with prose; otherwise every
	// document is one sentence of whitespace-separated tokens.
	Segment bool
}

func (tk *Tokenizer) lexer() *DocLexer {
	san := tk.Sanitizer
	if san == nil {
		san = SanitizerChain{}
	}
	return &DocLexer{Sanitizer: san, Stops: tk.Stops}
}

// Tokenize returns the non-empty sentences of src.
func (tk *Tokenizer) Tokenize(src string) (sents [][]string, err error) {
	lexer := tk.lexer()
	if !tk.Segment {
		if err = Lex(lexer, src); err != nil {
			return
		}
		if doc := lexer.Finalize(); len(doc) > 0 {
			sents = append(sents, doc)
		}
		return
	}
	doc, err := prose.NewDocument(src,
		prose.WithTagging(false),
		prose.WithExtraction(false))
	if err != nil {
		return
	}
	for _, sent := range doc.Sentences() {
		sub, err := prose.NewDocument(sent.Text,
			prose.WithSegmentation(false),
			prose.WithTagging(false),
			prose.WithExtraction(false))
		if err != nil {
			return nil, err
		}
		for _, t := range sub.Tokens() {
			if s := lexer.Sanitize(t.Text); s != "" {
				lexer.Advance(s)
			}
		}
		if toks := lexer.Finalize(); len(toks) > 0 {
			sents = append(sents, toks)
		}
	}
	return
}

// ReadCorpus treats every non-empty line of istrm as a document.
func ReadCorpus(istrm io.Reader, tk *Tokenizer) (Corpus, error) {
	corpus := make(Corpus, 0, 1024)
	sc := bufio.NewScanner(istrm)
	sc.Buffer(make([]byte, 0, 64*1024), 16<<20)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		sents, err := tk.Tokenize(line)
		if err != nil {
			return nil, err
		}
		corpus = append(corpus, sents...)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read corpus: %w", err)
	}
	return corpus, nil
}

// DiscordSource pulls message history from Discord channels.
type DiscordSource struct {
	*dgo.Session
	ChannelIDs []string
	// Limit caps the messages read per channel; 0 reads everything.
	Limit int
	Log   logrus.FieldLogger
}

// Documents returns the content of every non-empty message, newest first.
func (src *DiscordSource) Documents() ([]string, error) {
	docs := make([]string, 0, 1024)
	for _, chID := range src.ChannelIDs {
		var (
			before         string
			count          int
			newest, oldest time.Time
		)
		for src.Limit <= 0 || count < src.Limit {
			page := 100
			if src.Limit > 0 && src.Limit-count < page {
				page = src.Limit - count
			}
			msgs, err := src.ChannelMessages(chID, page, before, "", "")
			if err != nil {
				return nil, fmt.Errorf("channel %s: %w", chID, err)
			}
			if len(msgs) == 0 {
				break
			}
			for _, msg := range msgs {
				if msg.Content != "" {
					docs = append(docs, msg.Content)
				}
				if msgid, err := snowflake.Parse(msg.ID); err == nil {
					ts := msgid.Time()
					if newest.IsZero() || ts.After(newest) {
						newest = ts
					}
					if oldest.IsZero() || ts.Before(oldest) {
						oldest = ts
					}
				}
			}
			count += len(msgs)
			before = msgs[len(msgs)-1].ID
		}
		if src.Log != nil {
			src.Log.WithFields(logrus.Fields{
				"channel":  chID,
				"messages": count,
				"from":     oldest.Format(time.RFC3339),
				"to":       newest.Format(time.RFC3339),
			}).Info("fetched channel history")
		}
	}
	return docs, nil
}

// ReadDocuments tokenizes a list of in-memory documents.
func ReadDocuments(docs []string, tk *Tokenizer) (Corpus, error) {
	corpus := make(Corpus, 0, len(docs))
	for _, doc := range docs {
		sents, err := tk.Tokenize(doc)
		if err != nil {
			return nil, err
		}
		corpus = append(corpus, sents...)
	}
	return corpus, nil
}
