package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/QJohn2017/rsbeams/pkg/rsdata/sdds"
)

// sddsCmd prints the header layout of an SDDS file
var sddsCmd = &cobra.Command{
	Use:   "sdds [file]",
	Short: "Inspect the header of an SDDS file",
	Long: `Read the self-describing header of an SDDS file (elegant or OPAL
output) and print its parameter and column layout.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		file, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer file.Close()

		header, err := sdds.ReadHeader(file)
		if err != nil {
			return err
		}

		fmt.Printf("SDDS version %d, %s data", header.Version, header.DataMode)
		if header.LittleEndian {
			fmt.Printf(" (little-endian)")
		}
		fmt.Println()
		if header.Description.Contents != "" {
			fmt.Printf("Contents: %s\n", header.Description.Contents)
		}

		fmt.Printf("\nParameters (%d):\n", len(header.Parameters))
		for _, p := range header.Parameters {
			line := fmt.Sprintf("  %s %s", p.Name, p.Type)
			if p.Units != "" {
				line += fmt.Sprintf(" [%s]", p.Units)
			}
			if p.FixedValue != "" {
				line += fmt.Sprintf(" = %s", p.FixedValue)
			}
			fmt.Println(line)
		}

		fmt.Printf("\nColumns (%d):\n", len(header.Columns))
		for _, c := range header.Columns {
			line := fmt.Sprintf("  %s %s", c.Name, c.Type)
			if c.Units != "" {
				line += fmt.Sprintf(" [%s]", c.Units)
			}
			fmt.Println(line)
		}
		return nil
	},
}
