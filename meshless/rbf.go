package meshless

import (
	"fmt"
	"math"
	"strings"

	"github.com/notargets/ibex/utils"
)

// RBF is a radial kernel k(r) of the scaled distance r = shape*|x-x0|.
type RBF interface {
	Name() string
	Value(r float64) float64
	DValue(r float64) float64
	DDValue(r float64) float64
	// DValueOverR is k'(r)/r, finite at r = 0 for kernels smooth at the center.
	DValueOverR(r float64) float64
	// Compact kernels vanish for r >= 1.
	Compact() bool
}

type Gaussian struct{}

func (Gaussian) Name() string                  { return "gaussian" }
func (Gaussian) Compact() bool                 { return false }
func (Gaussian) Value(r float64) float64       { return math.Exp(-r * r) }
func (Gaussian) DValue(r float64) float64      { return -2 * r * math.Exp(-r*r) }
func (Gaussian) DDValue(r float64) float64     { return (4*r*r - 2) * math.Exp(-r*r) }
func (Gaussian) DValueOverR(r float64) float64 { return -2 * math.Exp(-r*r) }

type Multiquadric struct{}

func (Multiquadric) Name() string                  { return "multiquadric" }
func (Multiquadric) Compact() bool                 { return false }
func (Multiquadric) Value(r float64) float64       { return math.Sqrt(1 + r*r) }
func (Multiquadric) DValue(r float64) float64      { return r / math.Sqrt(1+r*r) }
func (Multiquadric) DDValue(r float64) float64     { return math.Pow(1+r*r, -1.5) }
func (Multiquadric) DValueOverR(r float64) float64 { return 1 / math.Sqrt(1+r*r) }

type InverseMultiquadric struct{}

func (InverseMultiquadric) Name() string              { return "inverse_multiquadric" }
func (InverseMultiquadric) Compact() bool             { return false }
func (InverseMultiquadric) Value(r float64) float64   { return 1 / math.Sqrt(1+r*r) }
func (InverseMultiquadric) DValue(r float64) float64  { return -r * math.Pow(1+r*r, -1.5) }
func (InverseMultiquadric) DDValue(r float64) float64 { return (2*r*r - 1) * math.Pow(1+r*r, -2.5) }
func (InverseMultiquadric) DValueOverR(r float64) float64 {
	return -math.Pow(1+r*r, -1.5)
}

// Wendland is the compactly supported Wendland kernel of smoothness C0, C2
// or C4.
type Wendland struct {
	Order int
}

func (k Wendland) Name() string  { return fmt.Sprintf("wendland%d", k.Order) }
func (k Wendland) Compact() bool { return true }

func (k Wendland) Value(r float64) float64 {
	if r >= 1 {
		return 0
	}
	s := 1 - r
	switch k.Order {
	case 0:
		return s * s
	case 2:
		return utils.POW(s, 4) * (4*r + 1)
	case 4:
		return utils.POW(s, 6) * (35*r*r + 18*r + 3)
	default:
		panic(fmt.Errorf("wendland order must be 0, 2 or 4, have %d", k.Order))
	}
}

func (k Wendland) DValue(r float64) float64 {
	if r >= 1 {
		return 0
	}
	switch k.Order {
	case 0:
		return -2 * (1 - r)
	default:
		return r * k.DValueOverR(r)
	}
}

func (k Wendland) DDValue(r float64) float64 {
	if r >= 1 {
		return 0
	}
	s := 1 - r
	switch k.Order {
	case 0:
		return 2
	case 2:
		return s * s * (80*r - 20)
	default:
		return -56 * utils.POW(s, 4) * (1 + 4*r - 35*r*r)
	}
}

func (k Wendland) DValueOverR(r float64) float64 {
	if r >= 1 {
		return 0
	}
	s := 1 - r
	switch k.Order {
	case 0:
		if r == 0 {
			return 0
		}
		return -2 * s / r
	case 2:
		return -20 * s * s * s
	default:
		return -56 * utils.POW(s, 5) * (5*r + 1)
	}
}

func ParseKernel(label string) (k RBF, err error) {
	switch strings.ToLower(strings.TrimSpace(label)) {
	case "gaussian":
		k = Gaussian{}
	case "multiquadric":
		k = Multiquadric{}
	case "inverse_multiquadric":
		k = InverseMultiquadric{}
	case "wendland0":
		k = Wendland{Order: 0}
	case "wendland2":
		k = Wendland{Order: 2}
	case "wendland4":
		k = Wendland{Order: 4}
	default:
		err = fmt.Errorf("unknown radial basis kernel: %q", label)
	}
	return
}
