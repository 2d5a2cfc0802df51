package InputParameters

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInputParameters(t *testing.T) {
	{ // Defaults are the channel run and are valid
		ip := Defaults()
		assert.NoError(t, ip.Validate())
		assert.Equal(t, 1.e-6, ip.Viscosity)
		assert.Equal(t, 0.05, ip.ForcingIntensity)
		assert.Equal(t, [2]float64{0.1, 0}, ip.InflowVelocity)
		assert.Equal(t, [2]float64{1, 0.1}, ip.DomainHigh)
		assert.Equal(t, 100, ip.Nx)
		assert.Equal(t, 20, ip.Ny)
		assert.Equal(t, []string{"inlet", "walls"}, ip.BCOrder)
	}
	{ // Parse overlays the file on the defaults
		ip := Defaults()
		data := []byte(`
Title: "test run"
Viscosity: 0.5
ForcingIntensity: 0
InflowVelocity: [0.2, 0]
Nx: 8
Solver: lu
BCOrder: [walls, inlet]
`)
		require.NoError(t, ip.Parse(data))
		assert.Equal(t, "test run", ip.Title)
		assert.Equal(t, 0.5, ip.Viscosity)
		assert.Equal(t, 0., ip.ForcingIntensity)
		assert.Equal(t, [2]float64{0.2, 0}, ip.InflowVelocity)
		assert.Equal(t, 8, ip.Nx)
		assert.Equal(t, 20, ip.Ny)
		assert.Equal(t, "lu", ip.Solver)
		assert.Equal(t, []string{"walls", "inlet"}, ip.BCOrder)
		assert.NoError(t, ip.Validate())
	}
	{ // Validation
		for _, mod := range []func(ip *InputParameters2D){
			func(ip *InputParameters2D) { ip.Viscosity = 0 },
			func(ip *InputParameters2D) { ip.ForcingIntensity = -0.1 },
			func(ip *InputParameters2D) { ip.Nx = 0 },
			func(ip *InputParameters2D) { ip.DomainHigh = [2]float64{0, 1} },
			func(ip *InputParameters2D) { ip.QuadratureDegree = 1 },
			func(ip *InputParameters2D) { ip.Tolerance = 0 },
			func(ip *InputParameters2D) { ip.MaxIterations = 0 },
			func(ip *InputParameters2D) { ip.BCOrder = nil },
			func(ip *InputParameters2D) { ip.DirectSizeLimit = 0 },
			func(ip *InputParameters2D) { ip.Viscosity = math.NaN() },
			func(ip *InputParameters2D) { ip.Viscosity = math.Inf(1) },
			func(ip *InputParameters2D) { ip.ForcingIntensity = math.NaN() },
			func(ip *InputParameters2D) { ip.InflowVelocity = [2]float64{math.NaN(), 0} },
			func(ip *InputParameters2D) { ip.DomainHigh = [2]float64{math.NaN(), 0.1} },
			func(ip *InputParameters2D) { ip.Tolerance = math.NaN() },
		} {
			ip := Defaults()
			mod(ip)
			assert.Error(t, ip.Validate())
		}
	}
	{ // Malformed input fails to parse
		ip := Defaults()
		assert.Error(t, ip.Parse([]byte("Nx: [1, 2")))
	}
}
