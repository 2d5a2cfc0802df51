package InputParameters

import (
	"fmt"
	"math"
	"strings"

	"github.com/ghodss/yaml"
)

// Parameters obtained from the YAML input file
type InputParameters2D struct {
	Title            string     `yaml:"Title"`
	Viscosity        float64    `yaml:"Viscosity"`
	ForcingIntensity float64    `yaml:"ForcingIntensity"`
	InflowVelocity   [2]float64 `yaml:"InflowVelocity"`
	DomainLow        [2]float64 `yaml:"DomainLow"`
	DomainHigh       [2]float64 `yaml:"DomainHigh"`
	Nx               int        `yaml:"Nx"`
	Ny               int        `yaml:"Ny"`
	QuadratureDegree int        `yaml:"QuadratureDegree"`
	Solver           string     `yaml:"Solver"`
	Tolerance        float64    `yaml:"Tolerance"`
	MaxIterations    int        `yaml:"MaxIterations"`
	DirectSizeLimit  int        `yaml:"DirectSizeLimit"` // Largest system handed to the dense LU solver
	ProcLimit        int        `yaml:"ProcLimit"`       // Zero means runtime.NumCPU()
	BCOrder          []string   `yaml:"BCOrder"`         // Dirichlet conditions, applied in order, last wins
}

// Defaults is the channel run: 1 x 0.1, 100 x 20 cells, nu = 1e-6, sigma = 0.05
func Defaults() (ip *InputParameters2D) {
	ip = &InputParameters2D{
		Title:            "Stokes Channel Flow under Stochastic Forcing",
		Viscosity:        1.e-6,
		ForcingIntensity: 0.05,
		InflowVelocity:   [2]float64{0.1, 0},
		DomainLow:        [2]float64{0, 0},
		DomainHigh:       [2]float64{1, 0.1},
		Nx:               100,
		Ny:               20,
		QuadratureDegree: 4,
		Solver:           "minres",
		Tolerance:        1.e-10,
		MaxIterations:    200000,
		DirectSizeLimit:  6000,
		ProcLimit:        0,
		BCOrder:          []string{"inlet", "walls"},
	}
	return
}

// Parse overlays the YAML input onto the current values, keys left out of
// the file keep their value
func (ip *InputParameters2D) Parse(data []byte) error {
	return yaml.Unmarshal(data, ip)
}

func (ip *InputParameters2D) Validate() (err error) {
	switch {
	// Comparisons are written so that NaN fails them
	case !(ip.Viscosity > 0) || math.IsInf(ip.Viscosity, 1):
		err = fmt.Errorf("viscosity must be positive and finite, have %g", ip.Viscosity)
	case !(ip.ForcingIntensity >= 0) || math.IsInf(ip.ForcingIntensity, 1):
		err = fmt.Errorf("forcing intensity must be non-negative and finite, have %g", ip.ForcingIntensity)
	case !isFinite(ip.InflowVelocity[0]) || !isFinite(ip.InflowVelocity[1]):
		err = fmt.Errorf("inflow velocity must be finite, have %v", ip.InflowVelocity)
	case ip.Nx < 1 || ip.Ny < 1:
		err = fmt.Errorf("mesh resolution must be at least 1 x 1, have %d x %d", ip.Nx, ip.Ny)
	case !(ip.DomainHigh[0] > ip.DomainLow[0]) || !(ip.DomainHigh[1] > ip.DomainLow[1]):
		err = fmt.Errorf("domain is degenerate: low = %v, high = %v", ip.DomainLow, ip.DomainHigh)
	case ip.QuadratureDegree < 2:
		err = fmt.Errorf("quadrature degree must be at least 2, have %d", ip.QuadratureDegree)
	case !(ip.Tolerance > 0):
		err = fmt.Errorf("solver tolerance must be positive, have %g", ip.Tolerance)
	case ip.MaxIterations < 1:
		err = fmt.Errorf("max iterations must be at least 1, have %d", ip.MaxIterations)
	case ip.DirectSizeLimit < 1:
		err = fmt.Errorf("direct solver size limit must be at least 1, have %d", ip.DirectSizeLimit)
	case len(ip.BCOrder) == 0:
		err = fmt.Errorf("no boundary conditions are listed in BCOrder")
	}
	return
}

func isFinite(f float64) bool { return !math.IsNaN(f) && !math.IsInf(f, 0) }

func (ip *InputParameters2D) Print() {
	fmt.Printf("\"%s\"\t\t= Title\n", ip.Title)
	fmt.Printf("%8.5e\t\t= Viscosity\n", ip.Viscosity)
	fmt.Printf("%8.5f\t\t= Forcing Intensity\n", ip.ForcingIntensity)
	fmt.Printf("[%g, %g]\t\t= Inflow Velocity\n", ip.InflowVelocity[0], ip.InflowVelocity[1])
	fmt.Printf("[%g, %g]x[%g, %g]\t= Domain\n",
		ip.DomainLow[0], ip.DomainHigh[0], ip.DomainLow[1], ip.DomainHigh[1])
	fmt.Printf("[%d x %d]\t\t= Mesh Cells\n", ip.Nx, ip.Ny)
	fmt.Printf("[%d]\t\t\t= Quadrature Degree\n", ip.QuadratureDegree)
	fmt.Printf("[%s]\t\t= Linear Solver\n", ip.Solver)
	fmt.Printf("%8.5e\t\t= Tolerance\n", ip.Tolerance)
	fmt.Printf("[%d]\t\t= Max Iterations\n", ip.MaxIterations)
	fmt.Printf("[%s]\t= BC Order\n", strings.Join(ip.BCOrder, ", "))
}
