package cli

import (
	"fmt"

	"github.com/LeJamon/goXCM/internal/resolver"
	"github.com/LeJamon/goXCM/internal/xcm"
	"github.com/spf13/cobra"
)

var resolveVersion string

// resolveCmd represents the resolve command
var resolveCmd = &cobra.Command{
	Use:   "resolve <chain> <lookup>",
	Short: "Resolve a location lookup on a chain",
	Long: `Resolve a named, relative or universal location lookup as seen from a
chain of the registry, and print both its relative and universal form.

Examples:
    xcmd resolve hydration assethub
    xcmd resolve hydration ../Parachain(1000)
    xcmd resolve assethub GlobalConsensus(Kusama)
    xcmd resolve hydration treasury --version V3`,
	Args: cobra.ExactArgs(2),
	RunE: runResolve,
}

func init() {
	rootCmd.AddCommand(resolveCmd)

	resolveCmd.Flags().StringVar(&resolveVersion, "version", "", "also print the SCALE encoding at this XCM version")
}

func runResolve(cmd *cobra.Command, args []string) error {
	env, err := loadEnvironment()
	if err != nil {
		return err
	}
	chain, err := env.chain(args[0])
	if err != nil {
		return err
	}
	lookup, err := xcm.ParseLocationLookup(args[1])
	if err != nil {
		return err
	}

	res := resolver.New(env.reg, chain)
	relative, err := res.ResolveRelativeLocation(lookup)
	if err != nil {
		return err
	}
	universal, err := res.ResolveUniversalLocation(lookup)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Chain:     %s\n", chain)
	fmt.Fprintf(out, "Relative:  %s\n", relative)
	fmt.Fprintf(out, "Universal: %s\n", universal)

	if resolveVersion == "" {
		return nil
	}
	version, err := xcm.ParseVersion(resolveVersion)
	if err != nil {
		return err
	}
	versioned, err := xcm.ConvertLocationVersion(version, relative)
	if err != nil {
		return err
	}
	encoded, err := xcm.EncodeToHex(versioned)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "SCALE:     %s\n", encoded)
	return nil
}
