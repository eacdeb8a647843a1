package storage

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/san-kum/boxsim/internal/dynamo"
)

type syncer interface {
	Sync() error
}

// TextWriter writes one line per particle per step:
//
//	t i x y vx vy
//
// Every Emit is flushed, and synced when the destination supports it,
// before it returns.
type TextWriter struct {
	w      *bufio.Writer
	dst    io.Writer
	closer io.Closer
	path   string
}

func NewTextWriter(w io.Writer) *TextWriter {
	return &TextWriter{w: bufio.NewWriter(w), dst: w}
}

// CreateTextFile truncates path and returns a writer that owns the file.
func CreateTextFile(path string) (*TextWriter, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	tw := NewTextWriter(f)
	tw.closer = f
	tw.path = path
	return tw, nil
}

func (t *TextWriter) Path() string { return t.path }

func (t *TextWriter) Emit(_ int, tm float64, e dynamo.Ensemble) error {
	buf := make([]byte, 0, 96)
	for i, s := range e {
		buf = buf[:0]
		buf = strconv.AppendFloat(buf, tm, 'g', -1, 64)
		buf = append(buf, ' ')
		buf = strconv.AppendInt(buf, int64(i), 10)
		for _, v := range s {
			buf = append(buf, ' ')
			buf = strconv.AppendFloat(buf, v, 'g', -1, 64)
		}
		buf = append(buf, '\n')
		if _, err := t.w.Write(buf); err != nil {
			return err
		}
	}
	if err := t.w.Flush(); err != nil {
		return err
	}
	if s, ok := t.dst.(syncer); ok {
		return s.Sync()
	}
	return nil
}

func (t *TextWriter) Close() error {
	err := t.w.Flush()
	if t.closer != nil {
		if cerr := t.closer.Close(); err == nil {
			err = cerr
		}
	}
	return err
}

// ParseText reads the TextWriter format back. Steps are numbered in order
// of appearance since the format carries only the time.
func ParseText(r io.Reader) ([]Frame, error) {
	var frames []Frame
	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" {
			continue
		}
		fields := strings.Fields(text)
		if len(fields) != 6 {
			return nil, fmt.Errorf("line %d: expected 6 fields, got %d", line, len(fields))
		}

		var vals [6]float64
		for k, f := range fields {
			if k == 1 {
				continue
			}
			v, err := strconv.ParseFloat(f, 64)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", line, err)
			}
			vals[k] = v
		}
		idx, err := strconv.Atoi(fields[1])
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		if idx == 0 || len(frames) == 0 {
			frames = append(frames, Frame{Step: len(frames), Time: vals[0]})
		}
		f := &frames[len(frames)-1]
		if idx != len(f.Ensemble) {
			return nil, fmt.Errorf("line %d: particle %d out of order", line, idx)
		}
		f.Ensemble = append(f.Ensemble, dynamo.State{vals[2], vals[3], vals[4], vals[5]})
	}
	return frames, sc.Err()
}
