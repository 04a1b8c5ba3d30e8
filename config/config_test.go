package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/privacyfl/hec/rlwe"
)

func TestParseYAMLAndJSONAgree(t *testing.T) {
	yamlSrc := []byte(`
security_level: 128
poly_modulus_degree: 2048
plain_modulus: 65537
noise_threshold: 40
cache:
  max_items: 64
  ttl_seconds: 300
`)
	jsonSrc := []byte(`{
  "security_level": 128,
  "poly_modulus_degree": 2048,
  "plain_modulus": 65537,
  "noise_threshold": 40,
  "cache": {"max_items": 64, "ttl_seconds": 300}
}`)

	fromYAML, err := Parse(yamlSrc, "config.yaml")
	require.NoError(t, err)
	fromJSON, err := Parse(jsonSrc, "config.json")
	require.NoError(t, err)

	require.Equal(t, fromYAML, fromJSON)
	require.Equal(t, 2048, fromYAML.PolyModulusDegree)
	require.Equal(t, 64, fromYAML.Cache.MaxItems)
}

func TestLoadDispatchesOnExtension(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "hec.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"security_level": 192}`), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, 192, cfg.SecurityLevel)
}

func TestParseRejectsInvalidYAML(t *testing.T) {
	_, err := Parse([]byte("not: [valid: yaml"), "x.yaml")
	require.Error(t, err)
}

func TestParametersDefaultsToSecurityTierWhenUnset(t *testing.T) {
	cfg := &Config{}
	params, err := cfg.Parameters()
	require.NoError(t, err)

	want, err := rlwe.NewParametersFromSecurityLevel(rlwe.Security128)
	require.NoError(t, err)
	require.Equal(t, want.N, params.N)
	require.Equal(t, want.T, params.T)
}

func TestParametersAppliesOverrides(t *testing.T) {
	cfg := &Config{SecurityLevel: 128, PlainModulus: 65537, PolyModulusDegree: 4096}
	params, err := cfg.Parameters()
	require.NoError(t, err)
	require.Equal(t, 4096, params.N)
	require.Equal(t, uint64(65537), params.T)
}

func TestNoiseThresholdBitsReturnsConfiguredValue(t *testing.T) {
	cfg := &Config{NoiseThreshold: 42}
	require.Equal(t, 42.0, cfg.NoiseThresholdBits())
}
