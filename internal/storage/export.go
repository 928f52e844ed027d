package storage

import (
	"encoding/json"
	"io"
	"os"

	"github.com/san-kum/attractor/internal/dynamo"
)

type ExportData struct {
	RunMetadata
	Terms     [][]int     `json:"terms,omitempty"`
	Positions [][]float64 `json:"positions,omitempty"`
}

// NewExport bundles metadata with the exponent vector of each term and, when
// traj is non-nil, its positions.
func NewExport(meta *RunMetadata, terms [][]int, traj *dynamo.Trajectory) *ExportData {
	data := &ExportData{RunMetadata: *meta, Terms: terms}
	if traj != nil {
		data.Positions = make([][]float64, traj.Len())
		for i := range data.Positions {
			data.Positions[i] = traj.At(i)
		}
	}
	return data
}

func (d *ExportData) Write(w io.Writer) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(d)
}

func (d *ExportData) WriteFile(path string) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	return d.Write(file)
}
