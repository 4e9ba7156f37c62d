package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"
)

const (
	metadataFile = "metadata.json"
	signalFile   = "signal.csv"
)

// Store is a ledger of render runs, one directory per run.
type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RenderRecord struct {
	ID          string             `json:"id"`
	Dump        string             `json:"dump"`
	Timestamp   time.Time          `json:"timestamp"`
	Frames      int                `json:"frames"`
	SkipFrame   int                `json:"skip_frame"`
	Movie       string             `json:"movie,omitempty"`
	Still       string             `json:"still,omitempty"`
	Signal      bool               `json:"signal"`
	FocusRegime bool               `json:"focus_regime"`
	Elapsed     time.Duration      `json:"elapsed_ns"`
	Params      map[string]float64 `json:"params"`
}

func runID(dump string, ts time.Time) string {
	stem := strings.TrimSuffix(filepath.Base(dump), filepath.Ext(dump))
	if stem == "" || stem == "." {
		stem = "render"
	}
	return fmt.Sprintf("%s_%d", stem, ts.UnixNano())
}

// Save writes rec and the pulse-echo signal. ID and Timestamp are filled in
// when empty.
func (s *Store) Save(rec *RenderRecord, times, trace []float64) (string, error) {
	if len(times) != len(trace) {
		return "", fmt.Errorf("storage: %d times for %d signal samples", len(times), len(trace))
	}
	if rec.Timestamp.IsZero() {
		rec.Timestamp = time.Now()
	}
	if rec.ID == "" {
		rec.ID = runID(rec.Dump, rec.Timestamp)
	}
	runDir := filepath.Join(s.baseDir, rec.ID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	metaFile, err := os.Create(filepath.Join(runDir, metadataFile))
	if err != nil {
		return "", err
	}
	defer metaFile.Close()

	if err := ExportJSON(metaFile, rec); err != nil {
		return "", err
	}

	csvFile, err := os.Create(filepath.Join(runDir, signalFile))
	if err != nil {
		return "", err
	}
	defer csvFile.Close()

	w := csv.NewWriter(csvFile)
	if err := w.Write([]string{"time", "pressure"}); err != nil {
		return "", err
	}
	for i := range trace {
		row := []string{
			strconv.FormatFloat(times[i], 'g', 10, 64),
			strconv.FormatFloat(trace[i], 'g', 10, 64),
		}
		if err := w.Write(row); err != nil {
			return "", err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", err
	}

	return rec.ID, nil
}

// List returns every readable record, newest first.
func (s *Store) List() ([]RenderRecord, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RenderRecord{}, nil
		}
		return nil, err
	}

	runs := make([]RenderRecord, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		rec, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *rec)
	}

	sort.Slice(runs, func(i, j int) bool {
		return runs[i].Timestamp.After(runs[j].Timestamp)
	})
	return runs, nil
}

func (s *Store) Load(id string) (*RenderRecord, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, id, metadataFile))
	if err != nil {
		return nil, err
	}

	var rec RenderRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("storage: %s: %w", id, err)
	}
	return &rec, nil
}

// LoadSignal reads back the times and pressure samples of a run.
func (s *Store) LoadSignal(id string) ([]float64, []float64, error) {
	file, err := os.Open(filepath.Join(s.baseDir, id, signalFile))
	if err != nil {
		return nil, nil, err
	}
	defer file.Close()

	records, err := csv.NewReader(file).ReadAll()
	if err != nil {
		return nil, nil, err
	}
	if len(records) < 2 {
		return []float64{}, []float64{}, nil
	}

	times := make([]float64, 0, len(records)-1)
	trace := make([]float64, 0, len(records)-1)
	for i, record := range records[1:] {
		t, err := strconv.ParseFloat(record[0], 64)
		if err != nil {
			return nil, nil, fmt.Errorf("storage: %s row %d: %w", id, i+1, err)
		}
		v, err := strconv.ParseFloat(record[1], 64)
		if err != nil {
			return nil, nil, fmt.Errorf("storage: %s row %d: %w", id, i+1, err)
		}
		times = append(times, t)
		trace = append(trace, v)
	}
	return times, trace, nil
}

// CopySignal streams the stored CSV of a run to w.
func (s *Store) CopySignal(w io.Writer, id string) error {
	f, err := os.Open(filepath.Join(s.baseDir, id, signalFile))
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = io.Copy(w, f)
	return err
}

func ExportJSON(w io.Writer, rec *RenderRecord) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(rec)
}
