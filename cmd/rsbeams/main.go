package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/QJohn2017/rsbeams/pkg/utils"
)

const (
	// Application constants
	appName = "rsbeams"
	version = "v1.0.0"
)

var (
	// Global configuration, loaded before any compute command runs
	cfg *utils.Config
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   appName,
	Short: "Beam-physics toolkit for nonlinear insert design",
	Long: `rsbeams is a command-line toolkit for accelerator lattice work around
the Danilov-Nagaitsev nonlinear insert. It computes the Twiss parameters
of an insert from its length, phase advance, strength and aperture,
renders the resulting nllens element sequence for lattice tools, writes
elegant lattice files, and derives statistical Twiss parameters from
particle distributions.`,
	Version: version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "init" || cmd.Name() == "version" || cmd.Name() == "help" {
			return nil
		}
		config, err := utils.LoadConfig()
		if err != nil {
			return fmt.Errorf("failed to initialize config: %w", err)
		}
		cfg = config
		return nil
	},
}

// initCmd initializes the tool configuration
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize tool configuration",
	Long: `Initialize the rsbeams configuration. This writes the default
configuration file with the standard insert parameters and creates the
output directory.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Printf("Initializing rsbeams %s\n", version)

		config := utils.DefaultConfig()
		if err := utils.SaveConfig(config); err != nil {
			return fmt.Errorf("failed to save configuration: %w", err)
		}

		configPath, err := utils.GetConfigPath()
		if err != nil {
			return err
		}
		fmt.Printf("Configuration initialized at: %s\n", configPath)
		fmt.Println("\nNext steps:")
		fmt.Println("1. Adjust insert parameters in the config file")
		fmt.Println("2. Generate an element sequence: rsbeams nlinsert")
		fmt.Println("3. Inspect the beta profile: rsbeams twiss")

		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(nlinsertCmd)
	rootCmd.AddCommand(twissCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(momentsCmd)
	rootCmd.AddCommand(sddsCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
