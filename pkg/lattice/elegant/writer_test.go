package elegant

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/QJohn2017/rsbeams/pkg/rsphysics/nlinsert"
)

func TestWriteLattice(t *testing.T) {
	b := &Beamline{
		Name: "BL1",
		Elements: []Element{
			{
				Name: "S1",
				Type: "SBEN",
				Parameters: []Parameter{
					FloatParameter("angle", 0.5),
					FloatParameter("l", 0.25),
				},
			},
			{
				Name:       "W0",
				Type:       "WATCH",
				Parameters: []Parameter{StringParameter("filename", "W0.sdds")},
			},
		},
	}

	var sb strings.Builder
	require.NoError(t, b.WriteLattice(&sb))

	want := `"S1": SBEN,angle=0.5,l=0.25
"W0": WATCH,filename="W0.sdds"
"BL1": LINE=(S1,W0)
`
	assert.Equal(t, want, sb.String())
}

func TestWriteLattice_Empty(t *testing.T) {
	var sb strings.Builder
	err := (&Beamline{Name: "BL1"}).WriteLattice(&sb)
	require.ErrorIs(t, err, ErrEmptyBeamline)
}

func TestInsertBeamline(t *testing.T) {
	ins, err := nlinsert.New(1.8, 0.3)
	require.NoError(t, err)
	ins.SetStrength(0.4)
	require.NoError(t, ins.SetNumSlices(20))
	seq, err := ins.GenerateSequence()
	require.NoError(t, err)

	b := InsertBeamline("NLI", seq)
	require.Len(t, b.Elements, 20)
	assert.Equal(t, "NLI.N01", b.Elements[0].Name)
	assert.Equal(t, "NLI.N20", b.Elements[19].Name)

	var sb strings.Builder
	require.NoError(t, b.WriteLattice(&sb))
	lines := strings.Split(strings.TrimRight(sb.String(), "\n"), "\n")
	require.Len(t, lines, 21)
	assert.Contains(t, lines[0], `"NLI.N01": NLLENS,knll=`)
	assert.Contains(t, lines[20], `"NLI": LINE=(NLI.N01,`)
}

func TestCommandFileWrite(t *testing.T) {
	var sb strings.Builder
	cmd := CommandFile{Lattice: "insert.lte", Beamline: "NLI", TwissOutput: "twiss.sdds"}
	require.NoError(t, cmd.Write(&sb))

	out := sb.String()
	assert.Contains(t, out, "&run_setup\n")
	assert.Contains(t, out, `lattice = "insert.lte",`)
	assert.Contains(t, out, `use_beamline = "NLI",`)
	assert.Contains(t, out, "&run_control\n&end\n")
	assert.Contains(t, out, `filename = "twiss.sdds",`)
	assert.Contains(t, out, "&track\n&end\n")
}
