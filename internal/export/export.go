// Package export writes a run's history and summary out as CSV, JSON or SVG.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/rs/xid"

	"github.com/san-kum/fedbatch/internal/history"
	"github.com/san-kum/fedbatch/internal/models"
	"github.com/san-kum/fedbatch/internal/sim"
)

// Run is the exported form of a finished or in-progress simulation.
type Run struct {
	ID           string             `json:"id"`
	VolumePolicy string             `json:"volume_policy"`
	Params       ParamsData         `json:"params"`
	Initial      InitialData        `json:"initial"`
	Elapsed      float64            `json:"elapsed_hours"`
	Steps        int                `json:"steps"`
	Final        models.State       `json:"final"`
	Metrics      map[string]float64 `json:"metrics"`
	Series       history.Series     `json:"series"`
}

type ParamsData struct {
	MaxGrowthRate  float64 `json:"mu_max"`
	HalfSaturation float64 `json:"ks"`
	BiomassYield   float64 `json:"yxs"`
	ProductYield   float64 `json:"ypx"`
	FeedRate       float64 `json:"feed"`
	FeedSubstrate  float64 `json:"sf"`
	TimeStep       float64 `json:"dt"`
}

type InitialData struct {
	Biomass   float64 `json:"biomass"`
	Substrate float64 `json:"substrate"`
}

func FromController(c *sim.Controller) Run {
	p := c.Params()
	x0, s0 := c.Initial()
	return Run{
		ID:           c.RunID(),
		VolumePolicy: p.VolumePolicy.String(),
		Params: ParamsData{
			MaxGrowthRate:  p.MaxGrowthRate,
			HalfSaturation: p.HalfSaturation,
			BiomassYield:   p.BiomassYield,
			ProductYield:   p.ProductYield,
			FeedRate:       p.FeedRate,
			FeedSubstrate:  p.FeedSubstrate,
			TimeStep:       p.TimeStep,
		},
		Initial: InitialData{Biomass: x0, Substrate: s0},
		Elapsed: c.Elapsed(),
		Steps:   c.Steps(),
		Final:   c.State(),
		Metrics: c.Metrics(),
		Series:  c.History(),
	}
}

func WriteCSV(w io.Writer, s history.Series) error {
	cw := csv.NewWriter(w)

	if err := cw.Write([]string{"time", "biomass", "substrate", "product"}); err != nil {
		return err
	}
	for i := range s.Times {
		row := []string{
			strconv.FormatFloat(s.Times[i], 'f', 6, 64),
			strconv.FormatFloat(s.Biomass[i], 'f', 6, 64),
			strconv.FormatFloat(s.Substrate[i], 'f', 6, 64),
			strconv.FormatFloat(s.Product[i], 'f', 6, 64),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

func WriteJSON(w io.Writer, r Run) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

// DefaultPath names an export file after the run, or after a fresh id when
// the run has none.
func DefaultPath(dir, runID, ext string) string {
	if runID == "" {
		runID = xid.New().String()
	}
	return filepath.Join(dir, fmt.Sprintf("fedbatch_%s.%s", runID, ext))
}

// WriteFile creates path, including missing parent directories, and fills it
// with write.
func WriteFile(path string, write func(io.Writer) error) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}
