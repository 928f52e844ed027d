package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/san-kum/attractor/internal/dynamo"
	"github.com/san-kum/attractor/internal/raster"
)

const (
	metadataFile  = "metadata.json"
	positionsFile = "positions.csv"
)

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

// RunMetadata describes one accepted attractor. Coefficients and shape are
// enough to regenerate the trajectory, so positions are optional.
type RunMetadata struct {
	ID           string    `json:"id"`
	Timestamp    time.Time `json:"timestamp"`
	Dimension    int       `json:"dimension"`
	Degree       int       `json:"degree"`
	Seed         string    `json:"seed"`
	Coefficients []float64 `json:"coefficients"`
	RandSeed     int64     `json:"rand_seed"`
	Attempts     int       `json:"attempts"`
	Density      float64   `json:"density"`
	Lyapunov     float64   `json:"lyapunov"`
	BurnIn       int       `json:"burn_in"`
	Iterations   int       `json:"iterations"`
	Width        int       `json:"width"`
	Height       int       `json:"height"`
	Images       []Plane   `json:"images"`
	HasPositions bool      `json:"has_positions"`
	ElapsedMS    int64     `json:"elapsed_ms"`
}

// Plane names the image rendered for one axis triple.
type Plane struct {
	Axes [3]int `json:"axes"`
	File string `json:"file"`
}

// PlaneImage pairs a rendered image with the axes it was projected on.
type PlaneImage struct {
	Axes  [3]int
	Image *raster.Image
}

func newRunID(dim, degree int) string {
	short, _, _ := strings.Cut(uuid.NewString(), "-")
	return fmt.Sprintf("n%dd%d_%s", dim, degree, short)
}

// Save writes metadata, one PNG per image and, when traj is non-nil, the
// positions. meta.ID, Timestamp, Images and HasPositions are filled in.
func (s *Store) Save(meta *RunMetadata, images []PlaneImage, traj *dynamo.Trajectory) (string, error) {
	meta.ID = newRunID(meta.Dimension, meta.Degree)
	meta.Timestamp = time.Now()
	runDir := s.Dir(meta.ID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta.Images = meta.Images[:0]
	for _, pi := range images {
		name := fmt.Sprintf("plane_%d%d%d.png", pi.Axes[0], pi.Axes[1], pi.Axes[2])
		if err := pi.Image.SavePNG(filepath.Join(runDir, name)); err != nil {
			return "", fmt.Errorf("write %s: %w", name, err)
		}
		meta.Images = append(meta.Images, Plane{Axes: pi.Axes, File: name})
	}

	meta.HasPositions = traj != nil
	if traj != nil {
		if err := writePositions(filepath.Join(runDir, positionsFile), traj); err != nil {
			return "", err
		}
	}

	metaFile, err := os.Create(filepath.Join(runDir, metadataFile))
	if err != nil {
		return "", err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", err
	}

	return meta.ID, nil
}

func writePositions(path string, traj *dynamo.Trajectory) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)

	header := make([]string, traj.Dim)
	for i := range header {
		header[i] = fmt.Sprintf("x%d", i)
	}
	if err := w.Write(header); err != nil {
		return err
	}

	row := make([]string, traj.Dim)
	for i := 0; i < traj.Len(); i++ {
		for j, v := range traj.At(i) {
			row[j] = strconv.FormatFloat(v, 'g', -1, 64)
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

// List returns all runs, oldest first. Directories without readable
// metadata are skipped.
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

	sort.Slice(runs, func(i, j int) bool {
		return runs[i].Timestamp.Before(runs[j].Timestamp)
	})
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

// ErrNoPositions is returned by LoadPositions for runs saved without them.
var ErrNoPositions = errors.New("storage: run has no saved positions")

func (s *Store) LoadPositions(runID string) (*dynamo.Trajectory, error) {
	file, err := os.Open(filepath.Join(s.Dir(runID), positionsFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNoPositions
		}
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	header, err := r.Read()
	if err == io.EOF {
		return nil, ErrNoPositions
	}
	if err != nil {
		return nil, err
	}

	traj := &dynamo.Trajectory{Dim: len(header)}
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		for _, field := range record {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, fmt.Errorf("parse position: %w", err)
			}
			traj.Data = append(traj.Data, v)
		}
	}

	return traj, nil
}
