package core

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// Pair is one aligned sentence pair: Target is the reference translation of Source.
type Pair struct {
	Source string
	Target string
}

// Corpus holds two index-aligned sentence lists: target[i] is the
// ground-truth translation of source[i].
type Corpus struct {
	Name   string
	Source []string
	Target []string
}

// NewCorpus builds a corpus from aligned source and target sentence lists.
// Fails with ErrLengthMismatch when the lists differ in length and with
// ErrEmptyCorpus when both are empty.
func NewCorpus(name string, source, target []string) (*Corpus, error) {
	if len(source) != len(target) {
		return nil, fmt.Errorf("corpus %q: %d source vs %d target sentences: %w",
			name, len(source), len(target), ErrLengthMismatch)
	}
	if len(source) == 0 {
		return nil, fmt.Errorf("corpus %q: %w", name, ErrEmptyCorpus)
	}
	return &Corpus{
		Name:   name,
		Source: append([]string(nil), source...),
		Target: append([]string(nil), target...),
	}, nil
}

// Len returns the number of aligned sentence pairs.
func (c *Corpus) Len() int {
	return len(c.Source)
}

// Pair returns the aligned pair at index i.
func (c *Corpus) Pair(i int) Pair {
	return Pair{Source: c.Source[i], Target: c.Target[i]}
}

// Copy returns a deep copy of the corpus.
func (c *Corpus) Copy() *Corpus {
	return &Corpus{
		Name:   c.Name,
		Source: append([]string(nil), c.Source...),
		Target: append([]string(nil), c.Target...),
	}
}

// ParseTSV reads a parallel corpus from r: one pair per line,
// source<TAB>target. Blank lines are skipped; lines without a tab fail
// with a ParseError.
func ParseTSV(name string, r io.Reader) (*Corpus, error) {
	var source, target []string
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		text := scanner.Text()
		if strings.TrimSpace(text) == "" {
			continue
		}
		src, trg, ok := strings.Cut(text, "\t")
		if !ok {
			return nil, &ParseError{Line: line, Text: text, Message: "missing tab separator"}
		}
		source = append(source, src)
		target = append(target, trg)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("corpus %q: %w", name, err)
	}
	return NewCorpus(name, source, target)
}

// ReadTSV loads a parallel corpus from a TSV file on disk.
func ReadTSV(name, path string) (*Corpus, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("corpus %q: %w", name, err)
	}
	defer f.Close()
	return ParseTSV(name, f)
}

// WriteTSV writes the corpus to w as source<TAB>target lines.
func (c *Corpus) WriteTSV(w io.Writer) error {
	bw := bufio.NewWriter(w)
	for i := range c.Source {
		if _, err := fmt.Fprintf(bw, "%s\t%s\n", c.Source[i], c.Target[i]); err != nil {
			return err
		}
	}
	return bw.Flush()
}
