package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/rs/xid"

	"github.com/san-kum/boxsim/internal/dynamo"
)

const (
	metadataFile = "metadata.json"
	framesFile   = "frames.csv"
)

const (
	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

var framesHeader = []string{"step", "time", "particle", "x", "y", "vx", "vy"}

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

func (s *Store) Dir(runID string) string {
	return filepath.Join(s.baseDir, runID)
}

type RunMetadata struct {
	ID        string             `json:"id"`
	Preset    string             `json:"preset,omitempty"`
	Force     string             `json:"force"`
	Timestamp time.Time          `json:"timestamp"`
	Seed      int64              `json:"seed"`
	Particles int                `json:"particles"`
	BoxSize   float64            `json:"box_size"`
	Dt        float64            `json:"dt"`
	TMax      float64            `json:"t_max"`
	VMax      float64            `json:"v_max"`
	Workers   int                `json:"workers"`
	Steps     int                `json:"steps"`
	Status    string             `json:"status"`
	Error     string             `json:"error,omitempty"`
	Metrics   map[string]float64 `json:"metrics,omitempty"`
}

// Create starts a new run directory and returns a recorder that streams
// every committed step into it. ID, Timestamp and Status are filled in.
func (s *Store) Create(meta RunMetadata) (*Recorder, error) {
	meta.ID = xid.New().String()
	meta.Timestamp = time.Now()
	meta.Status = StatusRunning

	runDir := s.Dir(meta.ID)
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return nil, err
	}
	if err := s.writeMetadata(&meta); err != nil {
		return nil, err
	}

	f, err := os.Create(filepath.Join(runDir, framesFile))
	if err != nil {
		return nil, err
	}
	w := csv.NewWriter(f)
	if err := w.Write(framesHeader); err != nil {
		f.Close()
		return nil, err
	}

	return &Recorder{id: meta.ID, file: f, w: w}, nil
}

// Finish records the outcome of a run in its metadata.
func (s *Store) Finish(runID string, res *dynamo.Result, runErr error, metrics map[string]float64) error {
	meta, err := s.Load(runID)
	if err != nil {
		return err
	}
	if res != nil {
		meta.Steps = res.Steps
	}
	meta.Status = StatusCompleted
	if runErr != nil {
		meta.Status = StatusFailed
		meta.Error = runErr.Error()
	}
	meta.Metrics = metrics
	return s.writeMetadata(meta)
}

func (s *Store) writeMetadata(meta *RunMetadata) error {
	metaFile, err := os.Create(filepath.Join(s.Dir(meta.ID), metadataFile))
	if err != nil {
		return err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	return enc.Encode(meta)
}

// List returns every readable run, newest first.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}

	sort.Slice(runs, func(i, j int) bool { return runs[i].Timestamp.After(runs[j].Timestamp) })
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.Dir(runID), metadataFile))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

func (s *Store) LoadFrames(runID string) ([]Frame, error) {
	file, err := os.Open(filepath.Join(s.Dir(runID), framesFile))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = len(framesHeader)

	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return []Frame{}, nil
	}

	rows := make([]row, 0, len(records)-1)
	for i, record := range records[1:] {
		rw, err := parseRow(record)
		if err != nil {
			return nil, fmt.Errorf("%s line %d: %w", framesFile, i+2, err)
		}
		rows = append(rows, rw)
	}
	return groupRows(rows)
}

func parseRow(record []string) (row, error) {
	var r row
	var err error
	if r.step, err = strconv.Atoi(record[0]); err != nil {
		return r, err
	}
	if r.time, err = strconv.ParseFloat(record[1], 64); err != nil {
		return r, err
	}
	if r.particle, err = strconv.Atoi(record[2]); err != nil {
		return r, err
	}
	for k := range r.state {
		if r.state[k], err = strconv.ParseFloat(record[3+k], 64); err != nil {
			return r, err
		}
	}
	return r, nil
}

// Recorder is the output side of a stored run.
type Recorder struct {
	id   string
	file *os.File
	w    *csv.Writer
}

func (r *Recorder) ID() string { return r.id }

func (r *Recorder) Emit(step int, t float64, e dynamo.Ensemble) error {
	stepStr := strconv.Itoa(step)
	timeStr := strconv.FormatFloat(t, 'g', -1, 64)

	record := make([]string, len(framesHeader))
	for i, s := range e {
		record[0] = stepStr
		record[1] = timeStr
		record[2] = strconv.Itoa(i)
		for k, v := range s {
			record[3+k] = strconv.FormatFloat(v, 'g', -1, 64)
		}
		if err := r.w.Write(record); err != nil {
			return err
		}
	}

	r.w.Flush()
	if err := r.w.Error(); err != nil {
		return err
	}
	return r.file.Sync()
}

func (r *Recorder) Close() error {
	r.w.Flush()
	if err := r.w.Error(); err != nil {
		r.file.Close()
		return err
	}
	return r.file.Close()
}
