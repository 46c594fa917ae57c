package output

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"
	"gonum.org/v1/gonum/floats"

	"github.com/notargets/ibex/spatial"
)

// IntegralRecord summarizes the integrals of one weight function.
type IntegralRecord struct {
	Point            int     `csv:"point"`
	X                float64 `csv:"x"`
	Y                float64 `csv:"y"`
	Z                float64 `csv:"z"`
	Radius           float64 `csv:"radius"`
	BasisFunctions   int     `csv:"basis_functions"`
	BoundarySurfaces int     `csv:"boundary_surfaces"`
	IvW              float64 `csv:"iv_w"`
	IvDWNorm         float64 `csv:"iv_dw_norm"`
	IvBWSum          float64 `csv:"iv_b_w_sum"`
	IsWSum           float64 `csv:"is_w_sum"`
}

// MaterialRecord is the value moment of the weighted material of one point
// and group, taken at the first angular moment and basis function.
type MaterialRecord struct {
	Point  int     `csv:"point"`
	Group  int     `csv:"group"`
	SigmaT float64 `csv:"sigma_t"`
	SigmaS float64 `csv:"sigma_s"`
	Source float64 `csv:"source"`
}

func IntegralRecords(wd *spatial.WeakDiscretization) (records []IntegralRecord) {
	records = make([]IntegralRecord, wd.NumberOfPoints())
	for i, w := range wd.Weights() {
		var (
			in  = w.Integrals()
			pos = w.Position()
			rec = &records[i]
		)
		*rec = IntegralRecord{
			Point:            i,
			Radius:           w.Radius(),
			BasisFunctions:   w.NumberOfBasisFunctions(),
			BoundarySurfaces: w.NumberOfBoundarySurfaces(),
			IvW:              in.IvW[0],
			IvDWNorm:         floats.Norm(in.IvDW, 2),
			IvBWSum:          floats.Sum(in.IvBW),
			IsWSum:           floats.Sum(in.IsW),
		}
		for d, x := range []*float64{&rec.X, &rec.Y, &rec.Z}[:len(pos)] {
			*x = pos[d]
		}
	}
	return
}

func MaterialRecords(wd *spatial.WeakDiscretization) (records []MaterialRecord) {
	var (
		G   = wd.Energy().NumberOfGroups
		nDM = wd.NumberOfDimensionalMoments()
	)
	for i := 0; i < wd.NumberOfPoints(); i++ {
		m := wd.Material(i)
		for g := 0; g < G; g++ {
			records = append(records, MaterialRecord{
				Point:  i,
				Group:  g,
				SigmaT: m.SigmaT.Data()[nDM*g],
				SigmaS: m.SigmaS.Data()[nDM*(g+G*g)],
				Source: m.InternalSource.Data()[nDM*g],
			})
		}
	}
	return
}

func WriteIntegrals(w io.Writer, wd *spatial.WeakDiscretization) error {
	if err := gocsv.Marshal(IntegralRecords(wd), w); err != nil {
		return fmt.Errorf("writing integrals: %w", err)
	}
	return nil
}

func WriteMaterials(w io.Writer, wd *spatial.WeakDiscretization) error {
	if err := gocsv.Marshal(MaterialRecords(wd), w); err != nil {
		return fmt.Errorf("writing materials: %w", err)
	}
	return nil
}

// WriteDirectory writes integrals.csv and materials.csv into dir, creating
// it if needed.
func WriteDirectory(dir string, wd *spatial.WeakDiscretization) (err error) {
	if err = os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	for _, out := range []struct {
		name  string
		write func(io.Writer, *spatial.WeakDiscretization) error
	}{
		{"integrals.csv", WriteIntegrals},
		{"materials.csv", WriteMaterials},
	} {
		if err = writeFile(filepath.Join(dir, out.name), wd, out.write); err != nil {
			return
		}
	}
	return
}

func writeFile(path string, wd *spatial.WeakDiscretization, write func(io.Writer, *spatial.WeakDiscretization) error) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", filepath.Base(path), err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	return write(f, wd)
}
