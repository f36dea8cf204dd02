// Package sdds reads the self-describing headers of SDDS files, the data
// format shared by elegant and OPAL output. Only the header section is
// handled; page data following &data is ignored.
package sdds

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
)

var (
	// ErrBadHeader indicates the input does not start with a valid SDDS
	// version line or contains a malformed namelist.
	ErrBadHeader = errors.New("sdds: malformed header")
)

// Parameter describes one &parameter namelist entry.
type Parameter struct {
	Name         string
	Type         string
	Units        string
	Symbol       string
	Description  string
	FormatString string
	FixedValue   string
}

// Column describes one &column namelist entry.
type Column struct {
	Name         string
	Type         string
	Units        string
	Symbol       string
	Description  string
	FormatString string
}

// Description holds the optional &description namelist.
type Description struct {
	Text     string
	Contents string
}

// Header is the parsed header of an SDDS file, up to and including the
// &data namelist.
type Header struct {
	Version      int
	LittleEndian bool
	Description  Description
	Parameters   []Parameter
	Columns      []Column
	DataMode     string // "ascii" or "binary"
	NoRowCounts  bool
}

// Parameter returns the named parameter definition, if present.
func (h *Header) Parameter(name string) (Parameter, bool) {
	for _, p := range h.Parameters {
		if p.Name == name {
			return p, true
		}
	}
	return Parameter{}, false
}

// Column returns the named column definition, if present.
func (h *Header) Column(name string) (Column, bool) {
	for _, c := range h.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return Column{}, false
}

// ReadHeader parses SDDS header namelists from r until the &data namelist
// closes the header. Namelists may span multiple lines; ! comment lines are
// skipped and !# directives are honored for endianness.
func ReadHeader(r io.Reader) (*Header, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	h := &Header{}
	versionSeen := false
	var pending []string

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		if !versionSeen {
			if !strings.HasPrefix(line, "SDDS") {
				return nil, fmt.Errorf("%w: expected SDDS version line, got %q", ErrBadHeader, line)
			}
			if _, err := fmt.Sscanf(line, "SDDS%d", &h.Version); err != nil {
				return nil, fmt.Errorf("%w: bad version line %q", ErrBadHeader, line)
			}
			versionSeen = true
			continue
		}

		if strings.HasPrefix(line, "!#") {
			if strings.Contains(line, "little-endian") {
				h.LittleEndian = true
			}
			continue
		}
		if strings.HasPrefix(line, "!") {
			continue
		}

		pending = append(pending, line)
		if !strings.HasSuffix(line, "&end") {
			continue
		}

		done, err := h.applyNamelist(strings.Join(pending, " "))
		if err != nil {
			return nil, err
		}
		pending = pending[:0]
		if done {
			return h, nil
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return nil, fmt.Errorf("%w: header ended before &data namelist", ErrBadHeader)
}

// applyNamelist dispatches one complete "&tag ... &end" namelist. The
// returned bool reports whether the namelist was &data, which terminates
// the header.
func (h *Header) applyNamelist(text string) (bool, error) {
	text = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(text), "&end"))
	tag, rest, _ := strings.Cut(text, " ")
	fields, err := splitFields(rest)
	if err != nil {
		return false, err
	}

	switch tag {
	case "&description":
		h.Description = Description{Text: fields["text"], Contents: fields["contents"]}
	case "&parameter":
		// Empty namelists appear in some OPAL headers; skip them.
		if fields["name"] == "" {
			return false, nil
		}
		h.Parameters = append(h.Parameters, Parameter{
			Name:         fields["name"],
			Type:         fields["type"],
			Units:        fields["units"],
			Symbol:       fields["symbol"],
			Description:  fields["description"],
			FormatString: fields["format_string"],
			FixedValue:   fields["fixed_value"],
		})
	case "&column":
		if fields["name"] == "" {
			return false, nil
		}
		h.Columns = append(h.Columns, Column{
			Name:         fields["name"],
			Type:         fields["type"],
			Units:        fields["units"],
			Symbol:       fields["symbol"],
			Description:  fields["description"],
			FormatString: fields["format_string"],
		})
	case "&data":
		h.DataMode = fields["mode"]
		h.NoRowCounts = fields["no_row_counts"] == "1"
		return true, nil
	default:
		// Unknown namelists (&array, &associate, ...) are tolerated.
	}
	return false, nil
}

// splitFields parses comma-separated key=value pairs, honoring double
// quotes around values.
func splitFields(s string) (map[string]string, error) {
	fields := make(map[string]string)
	for _, pair := range splitQuoted(s) {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		key, value, found := strings.Cut(pair, "=")
		if !found {
			return nil, fmt.Errorf("%w: expected key=value, got %q", ErrBadHeader, pair)
		}
		fields[strings.TrimSpace(key)] = unquote(strings.TrimSpace(value))
	}
	return fields, nil
}

// splitQuoted splits on commas that are not inside double quotes.
func splitQuoted(s string) []string {
	var parts []string
	var b strings.Builder
	inQuotes := false
	for _, r := range s {
		switch {
		case r == '"':
			inQuotes = !inQuotes
			b.WriteRune(r)
		case r == ',' && !inQuotes:
			parts = append(parts, b.String())
			b.Reset()
		default:
			b.WriteRune(r)
		}
	}
	parts = append(parts, b.String())
	return parts
}

func unquote(s string) string {
	if len(s) >= 2 && strings.HasPrefix(s, `"`) && strings.HasSuffix(s, `"`) {
		return s[1 : len(s)-1]
	}
	return s
}
