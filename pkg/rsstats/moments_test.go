package rsstats

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeMoments(t *testing.T) {
	x := []float64{1, -1, 1, -1}
	m, err := ComputeMoments(x, nil)
	require.NoError(t, err)

	assert.InDelta(t, 0, m.Mean, 1e-15)
	assert.InDelta(t, math.Sqrt(4.0/3.0), m.StdDev, 1e-12)
	assert.InDelta(t, 1, m.RMS, 1e-12)
}

func TestComputeMoments_Weighted(t *testing.T) {
	x := []float64{0, 2}
	w := []float64{3, 1}
	m, err := ComputeMoments(x, w)
	require.NoError(t, err)
	assert.InDelta(t, 0.5, m.Mean, 1e-12)
}

func TestComputeMoments_Errors(t *testing.T) {
	_, err := ComputeMoments(nil, nil)
	require.ErrorIs(t, err, ErrEmptyDistribution)

	_, err = ComputeMoments([]float64{1, 2}, []float64{1})
	require.ErrorIs(t, err, ErrLengthMismatch)
}

func TestTwissFromDistribution(t *testing.T) {
	x := []float64{1, -1, 2, -2}
	xp := []float64{1, 1, -1, -1}

	tw, err := TwissFromDistribution(x, xp, nil)
	require.NoError(t, err)

	sxx := 10.0 / 3.0
	spp := 4.0 / 3.0
	eps := math.Sqrt(sxx * spp)

	assert.InDelta(t, eps, tw.Emittance, 1e-12)
	assert.InDelta(t, sxx/eps, tw.Beta, 1e-12)
	assert.InDelta(t, spp/eps, tw.Gamma, 1e-12)
	assert.InDelta(t, 0, tw.Alpha, 1e-12)

	// Courant-Snyder identity.
	assert.InDelta(t, 1, tw.Beta*tw.Gamma-tw.Alpha*tw.Alpha, 1e-12)
}

func TestTwissFromDistribution_Errors(t *testing.T) {
	_, err := TwissFromDistribution(nil, nil, nil)
	require.ErrorIs(t, err, ErrEmptyDistribution)

	_, err = TwissFromDistribution([]float64{1, 2}, []float64{1}, nil)
	require.ErrorIs(t, err, ErrLengthMismatch)

	_, err = TwissFromDistribution([]float64{1, 2, 3}, []float64{1, 2, 3}, []float64{1})
	require.ErrorIs(t, err, ErrLengthMismatch)

	// Perfectly correlated coordinates have zero emittance.
	x := []float64{1, 2, 3, 4}
	_, err = TwissFromDistribution(x, x, nil)
	require.ErrorIs(t, err, ErrDegenerate)
}
