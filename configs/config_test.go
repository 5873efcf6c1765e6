package configs

import (
	"os"
	"path/filepath"
	"testing"

	ltx "lattigov5_hecompute/lattigo_extension"

	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	params, err := Default().Validate()
	require.NoError(t, err)
	require.Equal(t, 512, params.MaxSlots())
	require.Equal(t, 5, params.MaxLevel())
}

func TestParamsMatrix(t *testing.T) {
	cfg := Default()
	cfg.Params = ParamsMatrix
	cfg.Dimension = 64
	params, err := cfg.Validate()
	require.NoError(t, err)
	require.Equal(t, 8192, params.MaxSlots())
	require.Equal(t, 9, params.MaxLevel())
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"Dimension": 8, "Degree": 1, "Coefficients": [0.5, 0.25]}`), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, 8, cfg.Dimension)
	require.Equal(t, []float64{0.5, 0.25}, cfg.Coefficients)
	require.Equal(t, 0.5, cfg.Threshold)
	require.Equal(t, ParamsTest.LogN, cfg.Params.LogN)
	_, err = cfg.Validate()
	require.NoError(t, err)

	_, err = Load(filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.Dimension = 17
	_, err := cfg.Validate()
	require.ErrorIs(t, err, ltx.ErrInvalidArgument)

	cfg = Default()
	cfg.Degree = 5
	_, err = cfg.Validate()
	require.ErrorIs(t, err, ltx.ErrInvalidDegree)

	cfg = Default()
	cfg.Coefficients = nil
	_, err = cfg.Validate()
	require.ErrorIs(t, err, ltx.ErrInvalidDegree)
}
