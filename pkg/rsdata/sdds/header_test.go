package sdds

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const simpleHeader = `SDDS1
!# little-endian
&parameter name=par1, type=double, &end
&parameter name=par2, type=long, &end
&column name=col1, type=double,  &end
&column name=col2, type=double, units="m", symbol="&n", description="A test description",  &end
&data mode=ascii, &end
`

// Header shape produced by OPAL .stat files: multi-line namelists, no
// endianness directive, an empty &parameter block.
const opalHeader = `SDDS1
&description
        text="Statistics data 'spectrometer.in' 31/12/2019 18:03:12",
        contents="stat parameters"
&end
&parameter
        name=processors,
        type=long,
        description="Number of Cores used"
&end
&parameter
&end
&column
        name=partsOutside,
        type=double,
        units=1,
        description="42 outside n*sigma of the beam"
&end
&data
        mode=ascii,
        no_row_counts=1
&end
`

// Header shape produced by elegant .fin files: fixed_value parameters and
// unquoted descriptions with special characters.
const elegantFinHeader = `SDDS1
!# little-endian
&description text="final properties--input: elegant.ele  lattice: elegant.lte", contents="final properties", &end
&parameter name=Sx, symbol="$gs$r$bx$n", units=m, description=sqrt(<(x-<x>)^2>), type=double, &end
&parameter name=SVNVersion, description="SVN version number", type=string, fixed_value=26104M, &end
&data mode=binary, &end
`

func TestReadHeader_Simple(t *testing.T) {
	h, err := ReadHeader(strings.NewReader(simpleHeader))
	require.NoError(t, err)

	assert.Equal(t, 1, h.Version)
	assert.True(t, h.LittleEndian)
	assert.Equal(t, "ascii", h.DataMode)
	require.Len(t, h.Parameters, 2)
	require.Len(t, h.Columns, 2)

	p, ok := h.Parameter("par2")
	require.True(t, ok)
	assert.Equal(t, "long", p.Type)

	c, ok := h.Column("col2")
	require.True(t, ok)
	assert.Equal(t, "m", c.Units)
	assert.Equal(t, "&n", c.Symbol)
	assert.Equal(t, "A test description", c.Description)
}

func TestReadHeader_OPALMultiline(t *testing.T) {
	h, err := ReadHeader(strings.NewReader(opalHeader))
	require.NoError(t, err)

	assert.Equal(t, "Statistics data 'spectrometer.in' 31/12/2019 18:03:12", h.Description.Text)
	assert.Equal(t, "stat parameters", h.Description.Contents)
	assert.False(t, h.LittleEndian)
	assert.Equal(t, "ascii", h.DataMode)
	assert.True(t, h.NoRowCounts)

	// The empty &parameter block is skipped, not recorded.
	require.Len(t, h.Parameters, 1)
	assert.Equal(t, "processors", h.Parameters[0].Name)

	c, ok := h.Column("partsOutside")
	require.True(t, ok)
	assert.Equal(t, "42 outside n*sigma of the beam", c.Description)
}

func TestReadHeader_ElegantFixedValue(t *testing.T) {
	h, err := ReadHeader(strings.NewReader(elegantFinHeader))
	require.NoError(t, err)

	assert.Equal(t, "binary", h.DataMode)
	assert.Equal(t, "final properties", h.Description.Contents)

	sx, ok := h.Parameter("Sx")
	require.True(t, ok)
	assert.Equal(t, "sqrt(<(x-<x>)^2>)", sx.Description)
	assert.Equal(t, "m", sx.Units)

	svn, ok := h.Parameter("SVNVersion")
	require.True(t, ok)
	assert.Equal(t, "26104M", svn.FixedValue)
}

func TestReadHeader_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty input", ""},
		{"missing version line", "&parameter name=p, type=double, &end\n"},
		{"truncated header", "SDDS1\n&parameter name=p, type=double, &end\n"},
		{"bare value in namelist", "SDDS1\n&parameter name, &end\n&data mode=ascii, &end\n"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ReadHeader(strings.NewReader(tc.input))
			require.ErrorIs(t, err, ErrBadHeader)
		})
	}
}

func TestReadHeader_IgnoresPageData(t *testing.T) {
	r := strings.NewReader(simpleHeader + "1.0 2.0\n")
	h, err := ReadHeader(r)
	require.NoError(t, err)
	assert.Equal(t, "ascii", h.DataMode)
}
