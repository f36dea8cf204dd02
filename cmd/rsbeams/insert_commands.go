package main

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/QJohn2017/rsbeams/internal/types"
	"github.com/QJohn2017/rsbeams/pkg/lattice/elegant"
	"github.com/QJohn2017/rsbeams/pkg/rsphysics/nlinsert"
)

// nlinsertCmd computes the insert sequence and renders it
var nlinsertCmd = &cobra.Command{
	Use:   "nlinsert",
	Short: "Compute and render the nonlinear insert element sequence",
	Long: `Compute the per-segment Twiss parameters of a nonlinear insert and
render them as nllens element descriptions. Parameters default to the
configuration file and can be overridden per flag. Output formats:

  elements  one nllens description line per segment (default)
  lattice   an elegant .lte beamline of numbered NLLENS elements
  json      the full result envelope including the derived arrays`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ins, params, err := insertFromFlags(cmd)
		if err != nil {
			return err
		}

		seq, err := ins.GenerateSequence()
		if err != nil {
			return err
		}

		out, closer, err := outputWriter(cmd)
		if err != nil {
			return err
		}
		defer closer()

		format, _ := cmd.Flags().GetString("format")
		if format == "" {
			format = cfg.Output.Format
		}

		switch format {
		case "elements":
			elements, err := ins.RenderElements()
			if err != nil {
				return err
			}
			for _, e := range elements {
				fmt.Fprintln(out, e)
			}
		case "lattice":
			beamline, _ := cmd.Flags().GetString("beamline")
			if err := elegant.InsertBeamline(beamline, seq).WriteLattice(out); err != nil {
				return err
			}
			if commandFile, _ := cmd.Flags().GetString("command-file"); commandFile != "" {
				if err := writeCommandFile(commandFile, cmd, beamline); err != nil {
					return err
				}
			}
		case "json":
			elements, err := ins.RenderElements()
			if err != nil {
				return err
			}
			result := types.GenerationResult{
				ID:          types.NewResultID("nlinsert"),
				Parameters:  params,
				FocalLength: seq.FocalLength,
				BetaCenter:  seq.BetaCenter,
				Positions:   seq.Positions,
				Beta:        seq.Beta,
				KNLL:        seq.KNLL,
				CNLL:        seq.CNLL,
				Elements:    elements,
				Metadata:    map[string]string{"version": version},
				Timestamp:   time.Now(),
			}
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			if err := enc.Encode(result); err != nil {
				return fmt.Errorf("failed to encode result: %w", err)
			}
		default:
			return fmt.Errorf("unsupported format: %s (use: elements, lattice, json)", format)
		}

		return nil
	},
}

// twissCmd prints the beta profile as a CSV table
var twissCmd = &cobra.Command{
	Use:   "twiss",
	Short: "Print the insert beta profile as a CSV table",
	RunE: func(cmd *cobra.Command, args []string) error {
		ins, _, err := insertFromFlags(cmd)
		if err != nil {
			return err
		}

		seq, err := ins.GenerateSequence()
		if err != nil {
			return err
		}

		out, closer, err := outputWriter(cmd)
		if err != nil {
			return err
		}
		defer closer()

		w := csv.NewWriter(out)
		if err := w.Write([]string{"s", "beta", "knll", "cnll"}); err != nil {
			return err
		}
		for i := range seq.Positions {
			record := []string{
				formatFloat(seq.Positions[i]),
				formatFloat(seq.Beta[i]),
				formatFloat(seq.KNLL[i]),
				formatFloat(seq.CNLL[i]),
			}
			if err := w.Write(record); err != nil {
				return err
			}
		}
		w.Flush()
		return w.Error()
	},
}

// validateCmd compares external beta samples against the computed profile
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate external beta-function samples against the insert profile",
	Long: `Compare beta-function samples from a CSV file (one value per row,
first column) against the computed insert profile. The comparison is
elementwise within the given tolerance; the file must contain one sample
per segment.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		betaFile, _ := cmd.Flags().GetString("beta-file")
		if betaFile == "" {
			return fmt.Errorf("--beta-file flag is required")
		}
		tolerance, _ := cmd.Flags().GetFloat64("tolerance")

		ins, params, err := insertFromFlags(cmd)
		if err != nil {
			return err
		}
		if _, err := ins.GenerateSequence(); err != nil {
			return err
		}

		beta, err := loadBetaCSV(betaFile)
		if err != nil {
			return fmt.Errorf("failed to load beta samples: %w", err)
		}
		log.Printf("Loaded %d beta samples from %s", len(beta), betaFile)

		ok, err := ins.ValidateSequence(beta, tolerance)
		if err != nil {
			return err
		}

		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			result := types.ValidationResult{
				ID:         types.NewResultID("validate"),
				Parameters: params,
				Tolerance:  tolerance,
				Compatible: ok,
				NumSamples: len(beta),
				Metadata:   map[string]string{"input_file": betaFile, "version": version},
				Timestamp:  time.Now(),
			}
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			if err := enc.Encode(result); err != nil {
				return err
			}
		} else {
			fmt.Printf("Compatible: %t (%d samples, tolerance %g)\n", ok, len(beta), tolerance)
		}

		if !ok {
			return fmt.Errorf("beta samples incompatible with the computed profile")
		}
		return nil
	},
}

func init() {
	for _, cmd := range []*cobra.Command{nlinsertCmd, twissCmd, validateCmd} {
		cmd.Flags().Float64("length", 0, "insert length in meters")
		cmd.Flags().Float64("phase", 0, "fractional phase advance across the insert")
		cmd.Flags().Float64("strength", 0, "dimensionless nonlinear strength t")
		cmd.Flags().Float64("aperture", 0, "aperture parameter c in m^-1/2")
		cmd.Flags().Int("slices", 0, "number of nllens segments")
	}
	nlinsertCmd.Flags().String("format", "", "output format: elements, lattice or json")
	nlinsertCmd.Flags().String("beamline", "NLINSERT", "beamline name for lattice output")
	nlinsertCmd.Flags().String("command-file", "", "also write an elegant .ele command file to this path")
	nlinsertCmd.Flags().StringP("output", "o", "", "output file (default: stdout)")
	twissCmd.Flags().StringP("output", "o", "", "output file (default: stdout)")
	validateCmd.Flags().String("beta-file", "", "CSV file of beta samples, one per segment")
	validateCmd.Flags().Float64("tolerance", 1e-6, "comparison tolerance (absolute or relative)")
	validateCmd.Flags().Bool("json", false, "emit the validation result as JSON")
}

// insertFromFlags builds an insert from the configured defaults with any
// per-flag overrides applied.
func insertFromFlags(cmd *cobra.Command) (*nlinsert.Insert, types.InsertParameters, error) {
	params := types.InsertParameters{
		Length:    cfg.Insert.Length,
		Phase:     cfg.Insert.Phase,
		Strength:  cfg.Insert.Strength,
		Aperture:  cfg.Insert.Aperture,
		NumSlices: cfg.Insert.NumSlices,
	}
	if cmd.Flags().Changed("length") {
		params.Length, _ = cmd.Flags().GetFloat64("length")
	}
	if cmd.Flags().Changed("phase") {
		params.Phase, _ = cmd.Flags().GetFloat64("phase")
	}
	if cmd.Flags().Changed("strength") {
		params.Strength, _ = cmd.Flags().GetFloat64("strength")
	}
	if cmd.Flags().Changed("aperture") {
		params.Aperture, _ = cmd.Flags().GetFloat64("aperture")
	}
	if cmd.Flags().Changed("slices") {
		params.NumSlices, _ = cmd.Flags().GetInt("slices")
	}

	ins, err := nlinsert.New(params.Length, params.Phase)
	if err != nil {
		return nil, params, err
	}
	ins.SetStrength(params.Strength)
	if err := ins.SetAperture(params.Aperture); err != nil {
		return nil, params, err
	}
	if err := ins.SetNumSlices(params.NumSlices); err != nil {
		return nil, params, err
	}
	return ins, params, nil
}

// outputWriter resolves the --output flag to a writer, defaulting to stdout.
func outputWriter(cmd *cobra.Command) (io.Writer, func(), error) {
	path, _ := cmd.Flags().GetString("output")
	if path == "" {
		return os.Stdout, func() {}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create output file: %w", err)
	}
	return f, func() { f.Close() }, nil
}

// writeCommandFile writes a minimal elegant .ele run referencing the
// lattice output of the current command.
func writeCommandFile(path string, cmd *cobra.Command, beamline string) error {
	lattice, _ := cmd.Flags().GetString("output")
	if lattice == "" {
		lattice = "insert.lte"
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create command file: %w", err)
	}
	defer f.Close()

	command := elegant.CommandFile{
		Lattice:     lattice,
		Beamline:    beamline,
		TwissOutput: "twiss_output.sdds",
	}
	return command.Write(f)
}

// loadBetaCSV reads beta samples from CSV, one value per row in the first
// column. A non-numeric first row is treated as a header and skipped.
func loadBetaCSV(filename string) ([]float64, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	reader := csv.NewReader(file)
	records, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}

	var beta []float64
	for i, record := range records {
		if len(record) == 0 {
			continue
		}
		value, err := strconv.ParseFloat(record[0], 64)
		if err != nil {
			if i == 0 {
				continue // header row
			}
			return nil, fmt.Errorf("invalid beta value in row %d: %w", i+1, err)
		}
		beta = append(beta, value)
	}
	return beta, nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
