// Package configs holds the parameter presets and the JSON run configuration
// shared by the drivers.
package configs

import (
	"encoding/json"
	"fmt"
	"os"

	ltx "lattigov5_hecompute/lattigo_extension"
	nonpolyfunc "lattigov5_hecompute/nonpoly_func"

	"github.com/tuneinsight/lattigo/v5/he/hefloat"
)

var (
	// ParamsTest is insecure and only meant for tests and quick runs: 512 slots, 5 levels.
	ParamsTest = hefloat.ParametersLiteral{
		LogN:            10,
		LogQ:            []int{55, 45, 45, 45, 45, 45},
		LogP:            []int{60},
		LogDefaultScale: 45,
	}

	// ParamsMatrix gives 8192 slots (d up to 64) and 9 levels, enough for a matrix
	// product followed by a degree-7 polynomial.
	ParamsMatrix = hefloat.ParametersLiteral{
		LogN:            14,
		LogQ:            []int{55, 40, 40, 40, 40, 40, 40, 40, 40, 40},
		LogP:            []int{61, 61},
		LogDefaultScale: 40,
	}
)

// Config describes one run of the drivers.
type Config struct {
	Params       hefloat.ParametersLiteral
	Dimension    int
	Degree       int
	Coefficients []float64
	Threshold    float64
	// Seed drives the random operands of the check routines.
	Seed int64
	// Input and Output are optional xlsx paths for matrix operands and results.
	Input  string `json:",omitempty"`
	Output string `json:",omitempty"`
}

// Default returns the test preset with a 4x4 product and the degree-3 sigmoid.
func Default() Config {
	return Config{
		Params:       ParamsTest,
		Dimension:    4,
		Degree:       3,
		Coefficients: append([]float64(nil), nonpolyfunc.SigmoidDeg3...),
		Threshold:    0.5,
	}
}

// Load reads a JSON config from path. Fields absent from the file keep their Default value.
func Load(path string) (cfg Config, err error) {
	cfg = Default()
	var data []byte
	if data, err = os.ReadFile(path); err != nil {
		return cfg, fmt.Errorf("cannot Load: %w", err)
	}
	if err = json.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("cannot Load: %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks that the parameters instantiate and that the matrix dimension and
// polynomial fit into them. It returns the instantiated parameters.
func (cfg Config) Validate() (params hefloat.Parameters, err error) {
	if params, err = hefloat.NewParametersFromLiteral(cfg.Params); err != nil {
		return params, fmt.Errorf("cannot Validate: %w", err)
	}
	if cfg.Dimension < 1 || 2*cfg.Dimension*cfg.Dimension > params.MaxSlots() {
		return params, fmt.Errorf("cannot Validate: dimension %d does not fit %d slots: %w", cfg.Dimension, params.MaxSlots(), ltx.ErrInvalidArgument)
	}
	if len(cfg.Coefficients) == 0 {
		return params, fmt.Errorf("cannot Validate: no coefficient: %w", ltx.ErrInvalidDegree)
	}
	if cfg.Degree != len(cfg.Coefficients)-1 {
		return params, fmt.Errorf("cannot Validate: degree %d with %d coefficients: %w", cfg.Degree, len(cfg.Coefficients), ltx.ErrInvalidDegree)
	}
	return params, nil
}
