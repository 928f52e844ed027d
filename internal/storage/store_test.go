package storage

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/san-kum/attractor/internal/dynamo"
	"github.com/san-kum/attractor/internal/raster"
)

func sampleTrajectory() *dynamo.Trajectory {
	traj := dynamo.NewTrajectory(3, 2)
	copy(traj.At(0), []float64{1.0, 0.0, -0.5})
	copy(traj.At(1), []float64{0.1, 1e-17, 0.25})
	return traj
}

func sampleImage() *raster.Image {
	g := raster.NewGrid(4, 4)
	g.Pix[0] = 1
	return raster.Encode(g)
}

func TestStoreSaveLoad(t *testing.T) {
	tmpDir := t.TempDir()
	st := New(tmpDir)

	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	meta := &RunMetadata{
		Dimension:    3,
		Degree:       3,
		Seed:         "ODPUM",
		Coefficients: []float64{0.2, -1.2},
		Density:      0.31,
	}
	images := []PlaneImage{
		{Axes: [3]int{0, 1, 2}, Image: sampleImage()},
		{Axes: [3]int{1, 2, 0}, Image: sampleImage()},
	}

	runID, err := st.Save(meta, images, sampleTrajectory())
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if runID == "" || meta.ID != runID {
		t.Errorf("expected run id on metadata, got %q / %q", runID, meta.ID)
	}

	loaded, err := st.Load(runID)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if loaded.Seed != "ODPUM" {
		t.Errorf("expected seed 'ODPUM', got '%s'", loaded.Seed)
	}
	if loaded.Density != 0.31 {
		t.Errorf("expected density 0.31, got %f", loaded.Density)
	}
	if len(loaded.Images) != 2 || loaded.Images[1].File != "plane_120.png" {
		t.Errorf("unexpected images %+v", loaded.Images)
	}
	if !loaded.HasPositions {
		t.Error("expected positions flag")
	}

	traj, err := st.LoadPositions(runID)
	if err != nil {
		t.Fatalf("load positions failed: %v", err)
	}
	want := sampleTrajectory()
	if traj.Dim != 3 || traj.Len() != 2 {
		t.Fatalf("expected 2x3 positions, got %dx%d", traj.Len(), traj.Dim)
	}
	for i, v := range want.Data {
		if traj.Data[i] != v {
			t.Errorf("position value %d = %v, want %v", i, traj.Data[i], v)
		}
	}
}

func TestStoreList(t *testing.T) {
	tmpDir := t.TempDir()
	st := New(tmpDir)

	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	runs, err := st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 0 {
		t.Errorf("expected 0 runs, got %d", len(runs))
	}

	for i := 0; i < 2; i++ {
		if _, err := st.Save(&RunMetadata{Dimension: 2, Degree: 2}, nil, nil); err != nil {
			t.Fatalf("save failed: %v", err)
		}
	}
	// not a run
	if err := os.Mkdir(filepath.Join(tmpDir, "junk"), 0755); err != nil {
		t.Fatal(err)
	}

	runs, err = st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 2 {
		t.Errorf("expected 2 runs, got %d", len(runs))
	}
	if runs[0].ID == runs[1].ID {
		t.Error("run ids collide")
	}
}

func TestStoreList_MissingDir(t *testing.T) {
	st := New(filepath.Join(t.TempDir(), "absent"))
	runs, err := st.List()
	if err != nil || len(runs) != 0 {
		t.Errorf("expected empty list, got %v, %v", runs, err)
	}
}

func TestStoreFileStructure(t *testing.T) {
	tmpDir := t.TempDir()
	st := New(tmpDir)

	runID, err := st.Save(&RunMetadata{Dimension: 3, Degree: 3}, []PlaneImage{{Axes: [3]int{0, 1, 2}, Image: sampleImage()}}, nil)
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	runDir := filepath.Join(tmpDir, runID)
	for _, name := range []string{"metadata.json", "plane_012.png"} {
		if _, err := os.Stat(filepath.Join(runDir, name)); os.IsNotExist(err) {
			t.Errorf("%s not created", name)
		}
	}
	if _, err := os.Stat(filepath.Join(runDir, "positions.csv")); !os.IsNotExist(err) {
		t.Error("positions.csv written without a trajectory")
	}

	if _, err := st.LoadPositions(runID); !errors.Is(err, ErrNoPositions) {
		t.Errorf("expected ErrNoPositions, got %v", err)
	}
}

func TestExport(t *testing.T) {
	meta := &RunMetadata{ID: "run", Dimension: 3, Degree: 1, HasPositions: true}
	data := NewExport(meta, [][]int{{0, 0, 0}, {1, 0, 0}}, sampleTrajectory())

	var buf bytes.Buffer
	if err := data.Write(&buf); err != nil {
		t.Fatalf("export failed: %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if decoded["id"] != "run" {
		t.Errorf("expected id 'run', got %v", decoded["id"])
	}
	if pos, ok := decoded["positions"].([]any); !ok || len(pos) != 2 {
		t.Errorf("expected 2 positions, got %v", decoded["positions"])
	}

	path := filepath.Join(t.TempDir(), "run.json")
	if err := data.WriteFile(path); err != nil {
		t.Fatalf("write file failed: %v", err)
	}
}
