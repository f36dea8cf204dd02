// Package rsstats computes statistical moments of particle coordinate
// distributions: per-coordinate summaries and the statistical (RMS) Twiss
// parameters of a transverse phase-plane pair.
package rsstats

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"
)

var (
	// ErrEmptyDistribution indicates no particle coordinates were supplied.
	ErrEmptyDistribution = errors.New("rsstats: empty distribution")

	// ErrLengthMismatch indicates paired coordinate arrays of different length.
	ErrLengthMismatch = errors.New("rsstats: coordinate arrays differ in length")

	// ErrDegenerate indicates a distribution whose second moments give no
	// real emittance (e.g. perfectly correlated coordinates).
	ErrDegenerate = errors.New("rsstats: degenerate second moments")
)

// Moments summarizes a single coordinate of a particle distribution.
type Moments struct {
	Mean   float64
	StdDev float64
	RMS    float64 // sqrt of the second moment about zero
}

// ComputeMoments returns the first and second moments of x. Weights may be
// nil for a uniform distribution; otherwise len(weights) must equal len(x).
func ComputeMoments(x, weights []float64) (Moments, error) {
	if len(x) == 0 {
		return Moments{}, ErrEmptyDistribution
	}
	if weights != nil && len(weights) != len(x) {
		return Moments{}, fmt.Errorf("%w: %d coordinates, %d weights", ErrLengthMismatch, len(x), len(weights))
	}
	return Moments{
		Mean:   stat.Mean(x, weights),
		StdDev: stat.StdDev(x, weights),
		RMS:    math.Sqrt(stat.MomentAbout(2, x, 0, weights)),
	}, nil
}

// Twiss holds the statistical Twiss parameters of one phase plane.
type Twiss struct {
	Emittance float64 // RMS emittance
	Beta      float64 // <x^2>/eps
	Alpha     float64 // -<x x'>/eps
	Gamma     float64 // <x'^2>/eps
}

// TwissFromDistribution derives statistical Twiss parameters from paired
// position and angle coordinates of a phase plane:
//
//	eps = sqrt(<x^2><x'^2> - <x x'>^2)
//
// with central second moments. Weights may be nil.
func TwissFromDistribution(x, xp, weights []float64) (Twiss, error) {
	if len(x) == 0 {
		return Twiss{}, ErrEmptyDistribution
	}
	if len(x) != len(xp) {
		return Twiss{}, fmt.Errorf("%w: %d positions, %d angles", ErrLengthMismatch, len(x), len(xp))
	}
	if weights != nil && len(weights) != len(x) {
		return Twiss{}, fmt.Errorf("%w: %d coordinates, %d weights", ErrLengthMismatch, len(x), len(weights))
	}

	sxx := stat.Variance(x, weights)
	spp := stat.Variance(xp, weights)
	sxp := stat.Covariance(x, xp, weights)

	eps2 := sxx*spp - sxp*sxp
	if eps2 <= 0 || math.IsNaN(eps2) {
		return Twiss{}, fmt.Errorf("%w: <x^2><x'^2> - <xx'>^2 = %g", ErrDegenerate, eps2)
	}
	eps := math.Sqrt(eps2)

	return Twiss{
		Emittance: eps,
		Beta:      sxx / eps,
		Alpha:     -sxp / eps,
		Gamma:     spp / eps,
	}, nil
}
