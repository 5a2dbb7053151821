package cli

import (
	"fmt"
	"runtime"

	"github.com/LeJamon/goXCM/internal/xcm"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Long:  `Display version information for xcmd including supported XCM versions and Go version.`,
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "xcmd version %s\n", rootCmd.Version)
		fmt.Fprintf(out, "XCM versions: %s-%s\n", xcm.MinVersion, xcm.MaxVersion)
		fmt.Fprintf(out, "Go version: %s\n", runtime.Version())
		fmt.Fprintf(out, "OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
