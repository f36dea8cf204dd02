// Package nlinsert computes Twiss parameters for a nonlinear magnetic
// insert implementing the Danilov-Nagaitsev elliptic-potential scheme,
// and renders the per-segment nllens element sequence consumed by
// lattice-description tools.
package nlinsert

import (
	"errors"
	"fmt"
	"math"
	"strconv"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/floats/scalar"
)

// Default input parameters for an insert when only length and phase
// advance are specified.
const (
	DefaultStrength  = 0.1  // dimensionless nonlinear strength t
	DefaultAperture  = 0.01 // aperture parameter c in m^-1/2
	DefaultNumSlices = 20   // number of nllens segments
)

var (
	// ErrInvalidParameter indicates an input parameter outside its valid range.
	ErrInvalidParameter = errors.New("nlinsert: invalid parameter")

	// ErrInvalidGeometry indicates a phase/length combination for which the
	// beta function is undefined or complex-valued.
	ErrInvalidGeometry = errors.New("nlinsert: invalid insert geometry")

	// ErrNotGenerated indicates a derived quantity was requested before
	// GenerateSequence populated it.
	ErrNotGenerated = errors.New("nlinsert: sequence not generated")
)

// Insert describes a nonlinear insert placed in a drift region. The five
// input parameters are set at construction (or through the setters) and the
// derived per-segment arrays are absent until GenerateSequence runs.
type Insert struct {
	length    float64 // insert length (m)
	phase     float64 // fractional phase advance across the insert (tune units)
	strength  float64 // dimensionless strength t, typically 0.1-0.4
	aperture  float64 // aperture parameter c (m^-1/2), strictly positive
	numSlices int     // number of equal segments

	seq *Sequence // populated by GenerateSequence
}

// Sequence holds the derived Twiss parameters of an insert, one entry per
// segment midpoint in longitudinal order.
type Sequence struct {
	FocalLength float64   // equivalent thin-lens focal length (m)
	BetaCenter  float64   // beta function at the insert entrance, s=0 (m)
	Positions   []float64 // segment midpoints along the insert (m)
	Beta        []float64 // beta function at each midpoint (m)
	KNLL        []float64 // integrated nonlinear gradient per segment
	CNLL        []float64 // aperture scale per segment (m^1/2)
}

// New creates an insert of the given length (m) and fractional phase
// advance, with default strength, aperture and slice count.
func New(length, phase float64) (*Insert, error) {
	if length <= 0 {
		return nil, fmt.Errorf("%w: length must be positive, got %g", ErrInvalidParameter, length)
	}
	return &Insert{
		length:    length,
		phase:     phase,
		strength:  DefaultStrength,
		aperture:  DefaultAperture,
		numSlices: DefaultNumSlices,
	}, nil
}

// Length returns the insert length in meters.
func (ins *Insert) Length() float64 { return ins.length }

// Phase returns the fractional phase advance across the insert.
func (ins *Insert) Phase() float64 { return ins.phase }

// Strength returns the dimensionless nonlinear strength t.
func (ins *Insert) Strength() float64 { return ins.strength }

// Aperture returns the aperture parameter c in m^-1/2.
func (ins *Insert) Aperture() float64 { return ins.aperture }

// NumSlices returns the number of nllens segments.
func (ins *Insert) NumSlices() int { return ins.numSlices }

// SetStrength sets the dimensionless nonlinear strength t.
func (ins *Insert) SetStrength(t float64) { ins.strength = t }

// SetAperture sets the aperture parameter c. The value must be strictly
// positive; on success the new value is stored.
func (ins *Insert) SetAperture(c float64) error {
	if c <= 0 {
		return fmt.Errorf("%w: aperture parameter c must be positive, got %g", ErrInvalidParameter, c)
	}
	ins.aperture = c
	return nil
}

// SetNumSlices sets the number of segments the insert is divided into.
func (ins *Insert) SetNumSlices(n int) error {
	if n <= 0 {
		return fmt.Errorf("%w: number of slices must be positive, got %d", ErrInvalidParameter, n)
	}
	ins.numSlices = n
	return nil
}

// GenerateSequence computes the derived per-segment arrays from the five
// input parameters. The arrays are fully recomputed on every call; the
// returned Sequence is also retained for RenderElements and
// ValidateSequence.
//
// An integer phase advance leaves the focusing term cot(pi*mu) undefined,
// and a length/focal-length combination with |1 - L/(2f)| >= 1 yields a
// complex-valued beta function; both fail with ErrInvalidGeometry.
func (ins *Insert) GenerateSequence() (*Sequence, error) {
	if math.Mod(ins.phase, 1) == 0 {
		return nil, fmt.Errorf("%w: phase advance %g is an integer, focusing strength undefined", ErrInvalidGeometry, ins.phase)
	}

	// f = L/4 * (1 + cot^2(pi*mu))
	cot := 1 / math.Tan(math.Pi*ins.phase)
	f := ins.length / 4 * (1 + cot*cot)

	// The beta function is real only while 1 - (1 - L/(2f))^2 > 0.
	u := 1 - ins.length/(2*f)
	arg := 1 - u*u
	if arg <= 0 {
		return nil, fmt.Errorf("%w: length %g m with focal length %g m gives no real beta function", ErrInvalidGeometry, ins.length, f)
	}
	den := math.Sqrt(arg)

	n := ins.numSlices
	half := ins.length / (2 * float64(n))
	s := make([]float64, n)
	if n == 1 {
		s[0] = half
	} else {
		floats.Span(s, half, ins.length-half)
	}

	seq := &Sequence{
		FocalLength: f,
		BetaCenter:  ins.length / den,
		Positions:   s,
		Beta:        make([]float64, n),
		KNLL:        make([]float64, n),
		CNLL:        make([]float64, n),
	}

	// s*(L-s) is mirrored across the midpoint so the profile is exactly
	// symmetric, segment i matching segment n-1-i bit for bit.
	prod := make([]float64, n)
	for i := range prod {
		if j := n - 1 - i; j < i {
			prod[i] = prod[j]
			continue
		}
		prod[i] = s[i] * (ins.length - s[i])
	}

	for i := range s {
		beta := ins.length * (1 - prod[i]/(ins.length*f)) / den
		knn := ins.strength * ins.length / float64(n) / (beta * beta)
		cnll := ins.aperture * math.Sqrt(beta)
		seq.Beta[i] = beta
		seq.CNLL[i] = cnll
		seq.KNLL[i] = knn * cnll * cnll
	}

	ins.seq = seq
	return seq, nil
}

// Sequence returns the derived arrays from the last GenerateSequence call,
// or ErrNotGenerated if none has run.
func (ins *Insert) Sequence() (*Sequence, error) {
	if ins.seq == nil {
		return nil, fmt.Errorf("%w: call GenerateSequence first", ErrNotGenerated)
	}
	return ins.seq, nil
}

// RenderElements maps each (knll, cnll) pair, in segment order, to an
// nllens element-description string. Values use the shortest decimal
// representation that round-trips the underlying double, keeping the output
// stable for downstream lattice-file parsers.
func (ins *Insert) RenderElements() ([]string, error) {
	seq, err := ins.Sequence()
	if err != nil {
		return nil, err
	}
	elements := make([]string, len(seq.KNLL))
	for i := range elements {
		elements[i] = fmt.Sprintf("nllens, knll = %s, cnll = %s;",
			strconv.FormatFloat(seq.KNLL[i], 'g', -1, 64),
			strconv.FormatFloat(seq.CNLL[i], 'g', -1, 64))
	}
	return elements, nil
}

// ValidateSequence reports whether candidate beta-function samples agree
// with the generated profile elementwise within tol (absolute or relative).
// The candidate must have one sample per segment.
func (ins *Insert) ValidateSequence(beta []float64, tol float64) (bool, error) {
	seq, err := ins.Sequence()
	if err != nil {
		return false, err
	}
	if len(beta) != len(seq.Beta) {
		return false, fmt.Errorf("%w: got %d beta samples, want %d", ErrInvalidParameter, len(beta), len(seq.Beta))
	}
	for i, b := range beta {
		if !scalar.EqualWithinAbsOrRel(b, seq.Beta[i], tol, tol) {
			return false, nil
		}
	}
	return true, nil
}
