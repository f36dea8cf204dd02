// Package elegant writes lattice (.lte) and command (.ele) files for the
// elegant tracking code. Element and beamline syntax follows the form
// elegant itself accepts: quoted element names, comma-separated parameter
// lists and a LINE definition naming the element order.
package elegant

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/QJohn2017/rsbeams/pkg/rsphysics/nlinsert"
)

// ErrEmptyBeamline indicates a beamline with no elements was asked to render.
var ErrEmptyBeamline = errors.New("elegant: beamline has no elements")

// Parameter is one key=value entry of an element definition. Value is
// written verbatim, so callers control quoting.
type Parameter struct {
	Name  string
	Value string
}

// FloatParameter formats a numeric element parameter with shortest
// round-trip precision.
func FloatParameter(name string, value float64) Parameter {
	return Parameter{Name: name, Value: strconv.FormatFloat(value, 'g', -1, 64)}
}

// StringParameter formats a quoted element parameter.
func StringParameter(name, value string) Parameter {
	return Parameter{Name: name, Value: `"` + value + `"`}
}

// Element is a named lattice element of a given elegant type.
type Element struct {
	Name       string
	Type       string
	Parameters []Parameter
}

func (e Element) write(w io.Writer) error {
	var b strings.Builder
	fmt.Fprintf(&b, "%q: %s", e.Name, e.Type)
	for _, p := range e.Parameters {
		fmt.Fprintf(&b, ",%s=%s", p.Name, p.Value)
	}
	b.WriteByte('\n')
	_, err := io.WriteString(w, b.String())
	return err
}

// Beamline is an ordered collection of elements plus the LINE definition
// naming them.
type Beamline struct {
	Name     string
	Elements []Element
}

// WriteLattice writes the element definitions followed by the LINE
// statement, producing a complete .lte body.
func (b *Beamline) WriteLattice(w io.Writer) error {
	if len(b.Elements) == 0 {
		return ErrEmptyBeamline
	}
	for _, e := range b.Elements {
		if err := e.write(w); err != nil {
			return err
		}
	}
	names := make([]string, len(b.Elements))
	for i, e := range b.Elements {
		names[i] = e.Name
	}
	_, err := fmt.Fprintf(w, "%q: LINE=(%s)\n", b.Name, strings.Join(names, ","))
	return err
}

// InsertBeamline converts a generated nonlinear-insert sequence into a
// beamline of numbered NLLENS elements, one per segment, in segment order.
func InsertBeamline(name string, seq *nlinsert.Sequence) *Beamline {
	b := &Beamline{Name: name}
	for i := range seq.KNLL {
		b.Elements = append(b.Elements, Element{
			Name: fmt.Sprintf("%s.N%02d", name, i+1),
			Type: "NLLENS",
			Parameters: []Parameter{
				FloatParameter("knll", seq.KNLL[i]),
				FloatParameter("cnll", seq.CNLL[i]),
			},
		})
	}
	return b
}

// CommandFile describes the minimal .ele run driving a lattice: a run_setup
// block, run_control, optional twiss output and a track block.
type CommandFile struct {
	Lattice     string // lattice file name referenced by run_setup
	Beamline    string // use_beamline value
	TwissOutput string // twiss_output filename; empty omits the block
}

// Write renders the command file.
func (c CommandFile) Write(w io.Writer) error {
	var b strings.Builder
	b.WriteString("&run_setup\n")
	fmt.Fprintf(&b, "  lattice = %q,\n", c.Lattice)
	if c.Beamline != "" {
		fmt.Fprintf(&b, "  use_beamline = %q,\n", c.Beamline)
	}
	b.WriteString("  default_order = 1\n&end\n\n")
	b.WriteString("&run_control\n&end\n\n")
	if c.TwissOutput != "" {
		fmt.Fprintf(&b, "&twiss_output\n  filename = %q,\n&end\n\n", c.TwissOutput)
	}
	b.WriteString("&track\n&end\n")
	_, err := io.WriteString(w, b.String())
	return err
}
