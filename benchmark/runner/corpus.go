package runner

import (
	"bytes"
	"fmt"
	"io/fs"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
)

// Input is one named corpus entry.
type Input struct {
	Name string
	Data []byte
}

// Corpus is the set of inputs every codec is run over.
type Corpus []Input

// Bytes returns the total size of the corpus.
func (c Corpus) Bytes() int64 {
	var n int64
	for _, in := range c {
		n += int64(len(in.Data))
	}
	return n
}

// LoadCorpus reads the regular files under dir, skipping empty files and
// stopping once maxBytes have been loaded. maxBytes <= 0 loads everything.
func LoadCorpus(dir string, maxBytes int64) (Corpus, error) {
	var corpus Corpus
	var total int64
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		if maxBytes > 0 && total >= maxBytes {
			return filepath.SkipAll
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		if len(data) == 0 {
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		corpus = append(corpus, Input{Name: filepath.ToSlash(rel), Data: data})
		total += int64(len(data))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("loading corpus: %w", err)
	}
	if len(corpus) == 0 {
		return nil, fmt.Errorf("no files found in %s", dir)
	}
	return corpus, nil
}

var words = strings.Fields(`the quick brown fox jumps over lazy dog request
served error warning info debug user session token cache miss hit store
blob shard pack stream code width dictionary reset stop`)

// SyntheticCorpus generates a deterministic corpus of n inputs of about
// size bytes each, cycling through text, log, repetitive, binary and random
// data.
func SyntheticCorpus(seed int64, n, size int) Corpus {
	rng := rand.New(rand.NewSource(seed))
	corpus := make(Corpus, 0, n)
	for i := 0; i < n; i++ {
		var kind string
		var data []byte
		switch i % 5 {
		case 0:
			kind, data = "text", syntheticText(rng, size)
		case 1:
			kind, data = "log", syntheticLog(rng, size)
		case 2:
			kind = "repetitive"
			data = bytes.Repeat([]byte("ABCDEFGH"), size/8+1)[:size]
		case 3:
			kind = "binary"
			data = make([]byte, size)
			for j := range data {
				data[j] = byte(rng.Intn(16))
			}
		default:
			kind = "random"
			data = make([]byte, size)
			rng.Read(data)
		}
		corpus = append(corpus, Input{Name: fmt.Sprintf("%s-%03d", kind, i), Data: data})
	}
	return corpus
}

func syntheticText(rng *rand.Rand, size int) []byte {
	var buf bytes.Buffer
	for buf.Len() < size {
		buf.WriteString(words[rng.Intn(len(words))])
		if rng.Intn(12) == 0 {
			buf.WriteString(".\n")
		} else {
			buf.WriteByte(' ')
		}
	}
	return buf.Bytes()[:size]
}

func syntheticLog(rng *rand.Rand, size int) []byte {
	levels := []string{"INFO", "WARN", "ERROR", "DEBUG"}
	var buf bytes.Buffer
	for i := 0; buf.Len() < size; i++ {
		fmt.Fprintf(&buf, "2026-01-02T03:%02d:%02dZ %s %s id=%d latency=%dms\n",
			(i/60)%60, i%60, levels[rng.Intn(len(levels))],
			words[rng.Intn(len(words))], rng.Intn(1000), rng.Intn(500))
	}
	return buf.Bytes()[:size]
}
