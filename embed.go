package main

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"gonum.org/v1/gonum/blas/blas32"
)

// Vec represents a lexical embedding.
type Vec []float32

// Sim computes cosine similarity between two Vecs.
func (v Vec) Sim(u Vec) float32 {
	uBlas, vBlas := u.ToBlas(), v.ToBlas()
	a, b := blas32.Nrm2(uBlas), blas32.Nrm2(vBlas)
	if a == 0 || b == 0 {
		return 0
	}
	return blas32.Dot(uBlas, vBlas) / a / b
}

func (v Vec) ToBlas() blas32.Vector {
	return blas32.Vector{N: len(v), Inc: 1, Data: v}
}

// Row returns row i of m without copying.
func Row(m blas32.General, i int) Vec {
	return Vec(m.Data[i*m.Stride : i*m.Stride+m.Cols])
}

type Embeddings struct {
	Dict  map[string]Vec
	Words []string
	sync.RWMutex
	dim int
}

func (eb *Embeddings) Len() int {
	eb.RLock()
	defer eb.RUnlock()
	return len(eb.Dict)
}

func (eb *Embeddings) Dim() int {
	return eb.dim
}

func (eb *Embeddings) Embed(t string) Vec {
	eb.RLock()
	defer eb.RUnlock()
	if v, ok := eb.Dict[t]; ok {
		return v
	}
	return nil
}

// ReadBin reads the word2vec binary format: a "<words> <dim>" header line,
// then per word the token, one space, and dim little-endian float32s.
func (eb *Embeddings) ReadBin(r io.Reader) (err error) {
	var wordc, dimen int
	istrm := bufio.NewReader(r)
	if _, err = fmt.Fscanf(istrm, "%d %d\n", &wordc, &dimen); err != nil {
		return fmt.Errorf("header: %w", err)
	}
	eb.Lock()
	defer eb.Unlock()
	eb.Dict = make(map[string]Vec, wordc)
	eb.Words = make([]string, 0, wordc)
	eb.dim = dimen
	for i := 0; i < wordc; i++ {
		var t string
		if t, err = istrm.ReadString(' '); err != nil {
			if err == io.EOF {
				err = io.ErrUnexpectedEOF
			}
			return fmt.Errorf("word %d: %w", i, err)
		}
		t = strings.TrimLeft(t[:len(t)-1], "\n")
		embedding := make(Vec, dimen)
		if err = binary.Read(istrm, binary.LittleEndian, embedding); err != nil {
			return fmt.Errorf("vector %q: %w", t, err)
		}
		eb.Dict[t] = embedding
		eb.Words = append(eb.Words, t)
	}
	return nil
}

// WriteBin writes the rows of m in the format ReadBin reads. Row i is named
// word(i).
func WriteBin(ostrm io.Writer, m blas32.General, word func(int) string) (err error) {
	w := bufio.NewWriter(ostrm)
	if _, err = fmt.Fprintf(w, "%d %d\n", m.Rows, m.Cols); err != nil {
		return
	}
	for i := 0; i < m.Rows; i++ {
		if _, err = fmt.Fprintf(w, "%s ", word(i)); err != nil {
			return
		}
		if err = binary.Write(w, binary.LittleEndian, []float32(Row(m, i))); err != nil {
			return
		}
		if err = w.WriteByte('\n'); err != nil {
			return
		}
	}
	return w.Flush()
}

// RawName is the file name of a raw dump of a rows×cols matrix.
func RawName(rows, cols int) string {
	return fmt.Sprintf("vectorspace%dx%d.np", rows, cols)
}

// ParseRawName recovers the shape encoded by RawName.
func ParseRawName(name string) (rows, cols int, err error) {
	name = filepath.Base(name)
	var rest string
	n, _ := fmt.Sscanf(strings.TrimSuffix(name, ".np"), "vectorspace%dx%d%s", &rows, &cols, &rest)
	if n != 2 || !strings.HasSuffix(name, ".np") || rows <= 0 || cols <= 0 {
		err = fmt.Errorf("%q is not a raw embedding dump", name)
	}
	return
}

// WriteRaw dumps m as headerless row-major little-endian float32 into dir
// and returns the path written.
func WriteRaw(dir string, m blas32.General) (path string, err error) {
	if err = os.MkdirAll(dir, 0o755); err != nil {
		return
	}
	path = filepath.Join(dir, RawName(m.Rows, m.Cols))
	ostrm, err := os.Create(path)
	if err != nil {
		return
	}
	w := bufio.NewWriter(ostrm)
	for i := 0; i < m.Rows; i++ {
		if err = binary.Write(w, binary.LittleEndian, []float32(Row(m, i))); err != nil {
			ostrm.Close()
			return
		}
	}
	if err = w.Flush(); err != nil {
		ostrm.Close()
		return
	}
	err = ostrm.Close()
	return
}

// ReadRaw loads a dump written by WriteRaw, taking the shape from its name.
func ReadRaw(path string) (m blas32.General, err error) {
	rows, cols, err := ParseRawName(path)
	if err != nil {
		return
	}
	istrm, err := os.Open(path)
	if err != nil {
		return
	}
	defer istrm.Close()
	fi, err := istrm.Stat()
	if err != nil {
		return
	}
	if want := int64(rows) * int64(cols) * 4; fi.Size() != want {
		err = fmt.Errorf("%s: %d bytes, want %d for %dx%d", path, fi.Size(), want, rows, cols)
		return
	}
	data := make([]float32, rows*cols)
	if err = binary.Read(bufio.NewReader(istrm), binary.LittleEndian, data); err != nil {
		return
	}
	m = blas32.General{Rows: rows, Cols: cols, Stride: cols, Data: data}
	return
}
