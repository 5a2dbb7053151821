package cli

import (
	"fmt"

	"github.com/LeJamon/goXCM/internal/xcm"
	"github.com/spf13/cobra"
)

var assetsVersion string

// assetsCmd represents the assets command
var assetsCmd = &cobra.Command{
	Use:   "assets <asset>...",
	Short: "Canonicalize an asset vector",
	Long: `Sort and merge a list of assets the way runtimes expect them and print
the canonical vector with its SCALE encoding.

Assets are written as location:amount for fungible assets and
location#instance for non-fungible ones.

Examples:
    xcmd assets ../Here:5 ../Here:7
    xcmd assets Here:1000 "PalletInstance(50)/GeneralIndex(1984)#Index(3)" --version V3`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAssets,
}

func init() {
	rootCmd.AddCommand(assetsCmd)

	assetsCmd.Flags().StringVar(&assetsVersion, "version", xcm.MaxVersion.String(), "XCM version to encode with")
}

func runAssets(cmd *cobra.Command, args []string) error {
	version, err := xcm.ParseVersion(assetsVersion)
	if err != nil {
		return err
	}
	assets := make([]xcm.Asset, 0, len(args))
	for _, arg := range args {
		asset, err := xcm.ParseAsset(arg)
		if err != nil {
			return err
		}
		assets = append(assets, asset)
	}

	versioned, err := xcm.PrepareAssetsForEncoding(version, assets)
	if err != nil {
		return err
	}
	encoded, err := xcm.EncodeToHex(versioned)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for i, asset := range versioned.Assets() {
		fmt.Fprintf(out, "%d: %s\n", i, asset)
	}
	fmt.Fprintf(out, "SCALE (%s): %s\n", version, encoded)
	return nil
}
