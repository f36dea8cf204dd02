package main

import (
	"encoding/csv"
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/QJohn2017/rsbeams/pkg/rsstats"
)

// momentsCmd derives statistical Twiss parameters from a particle file
var momentsCmd = &cobra.Command{
	Use:   "moments",
	Short: "Compute statistical moments of a particle distribution",
	Long: `Compute per-coordinate moments and the statistical Twiss parameters
of a phase plane from a CSV particle file. The file holds one particle per
row with columns x, x' and an optional weight; a non-numeric first row is
treated as a header.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		inputFile, _ := cmd.Flags().GetString("input")
		if inputFile == "" {
			return fmt.Errorf("--input flag is required")
		}

		x, xp, weights, err := loadParticleCSV(inputFile)
		if err != nil {
			return fmt.Errorf("failed to load particle data: %w", err)
		}
		log.Printf("Loaded %d particles from %s", len(x), inputFile)

		mx, err := rsstats.ComputeMoments(x, weights)
		if err != nil {
			return err
		}
		mxp, err := rsstats.ComputeMoments(xp, weights)
		if err != nil {
			return err
		}
		twiss, err := rsstats.TwissFromDistribution(x, xp, weights)
		if err != nil {
			return err
		}

		fmt.Printf("x:  mean = %g, rms = %g, std = %g\n", mx.Mean, mx.RMS, mx.StdDev)
		fmt.Printf("x': mean = %g, rms = %g, std = %g\n", mxp.Mean, mxp.RMS, mxp.StdDev)
		fmt.Printf("emittance = %g\n", twiss.Emittance)
		fmt.Printf("beta = %g, alpha = %g, gamma = %g\n", twiss.Beta, twiss.Alpha, twiss.Gamma)
		return nil
	},
}

func init() {
	momentsCmd.Flags().StringP("input", "i", "", "CSV particle file with x, x' and optional weight columns")
}

// loadParticleCSV reads particle coordinates from CSV. Incomplete rows are
// skipped with a warning. The returned weights slice is nil when the file
// carries no weight column.
func loadParticleCSV(filename string) (x, xp, weights []float64, err error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, nil, nil, err
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, nil, nil, err
	}

	for i, record := range records {
		if len(record) < 2 {
			log.Printf("Warning: skipping incomplete record %d", i+1)
			continue
		}
		xi, errX := strconv.ParseFloat(record[0], 64)
		xpi, errXP := strconv.ParseFloat(record[1], 64)
		if errX != nil || errXP != nil {
			if i == 0 {
				continue // header row
			}
			log.Printf("Warning: failed to parse record %d", i+1)
			continue
		}
		x = append(x, xi)
		xp = append(xp, xpi)
		if len(record) > 2 {
			w, errW := strconv.ParseFloat(record[2], 64)
			if errW != nil {
				log.Printf("Warning: bad weight in record %d, using 1", i+1)
				w = 1
			}
			weights = append(weights, w)
		}
	}

	if weights != nil && len(weights) != len(x) {
		return nil, nil, nil, fmt.Errorf("weight column present in only %d of %d rows", len(weights), len(x))
	}
	return x, xp, weights, nil
}
