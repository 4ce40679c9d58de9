package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dshills/goblocks/internal/storage"
)

var (
	// Version information - typically set via ldflags at build time
	Version   = "dev"
	GitCommit = "none"
	BuildDate = "unknown"
)

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of goblocks",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("goblocks %s\n", Version)
		fmt.Printf("Git commit: %s\n", GitCommit)
		fmt.Printf("Build date: %s\n", BuildDate)
		fmt.Printf("SQLite:     %s driver (%s build)\n", storage.DriverName, storage.BuildMode)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
