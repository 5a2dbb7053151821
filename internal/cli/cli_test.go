package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/LeJamon/goXCM/internal/xcm"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const cliRegistry = `
[locations]
polkadot = "GlobalConsensus(Polkadot)"

[[chains]]
id = "assethub"
name = "Asset Hub"
universal_location = "GlobalConsensus(Polkadot)/Parachain(1000)"
xcm_version = "V4"

[[chains]]
id = "hydration"
name = "Hydration"
universal_location = "GlobalConsensus(Polkadot)/Parachain(2034)"

[chains.locations]
treasury = "./PalletInstance(12)"

[[currencies]]
symbol = "DOT"
decimals = 10
universal_location = "GlobalConsensus(Polkadot)"

[[currencies]]
symbol = "USDT"
decimals = 6
universal_location = "GlobalConsensus(Polkadot)/Parachain(1000)/PalletInstance(50)/GeneralIndex(1984)"
`

// runCommand executes the root command with fresh global flag values.
func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "xcmd.toml"), []byte("[fees]\nmax_iterations = 4\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "registry.toml"), []byte(cliRegistry), 0644))

	configFile, registryFile, verbose, quiet = "", "", false, true
	resolveVersion, assetsVersion = "", xcm.MaxVersion.String()
	amountDecimals, amountSymbol, amountFormat = 0, "", false
	prepareFrom, prepareFromLocation, prepareDest, prepareBeneficiary = "", "", "", ""
	prepareAssets, prepareFeeAsset, prepareWeightLimit, prepareVersion = nil, "", "unlimited", ""
	prepareRaw, prepareOnline, prepareCompose = false, false, false
	resetChanged(rootCmd)

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	full := append([]string{}, args...)
	full = append(full, "--conf", filepath.Join(dir, "xcmd.toml"), "-q")
	rootCmd.SetArgs(full)
	err := rootCmd.Execute()
	return out.String(), err
}

// resetChanged clears flag state left over from earlier executions so flag
// group checks only see the flags of the current run.
func resetChanged(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) { f.Changed = false }
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, sub := range cmd.Commands() {
		resetChanged(sub)
	}
}

func TestResolveCommand(t *testing.T) {
	out, err := runCommand(t, "resolve", "hydration", "assethub", "--version", "V4")
	require.NoError(t, err)
	assert.Contains(t, out, "Relative:  ../Parachain(1000)\n")
	assert.Contains(t, out, "Universal: GlobalConsensus(Polkadot)/Parachain(1000)\n")
	assert.Contains(t, out, "SCALE:     0x04010100a10f\n")

	out, err = runCommand(t, "resolve", "Hydration", "treasury")
	require.NoError(t, err)
	assert.Contains(t, out, "Relative:  PalletInstance(12)\n")
	assert.Contains(t, out, "Universal: GlobalConsensus(Polkadot)/Parachain(2034)/PalletInstance(12)\n")

	_, err = runCommand(t, "resolve", "hydration", "Acala")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown named location: Acala")
}

func TestAssetsCommand(t *testing.T) {
	out, err := runCommand(t, "assets", "Here:5", "Here:7")
	require.NoError(t, err)
	assert.Contains(t, out, "0: Here:12\n")
	assert.NotContains(t, out, "1:")
	assert.Contains(t, out, "SCALE (V4): ")

	_, err = runCommand(t, "assets", "Here:5", "Here#Index(1)")
	require.ErrorIs(t, err, xcm.ErrConflictingFungibility)
}

func TestAmountCommand(t *testing.T) {
	out, err := runCommand(t, "amount", "1.5", "--symbol", "DOT")
	require.NoError(t, err)
	assert.Equal(t, "15000000000\n", out)

	out, err = runCommand(t, "amount", "15000000000", "--symbol", "dot", "--format")
	require.NoError(t, err)
	assert.Equal(t, "1.5\n", out)

	out, err = runCommand(t, "amount", "0.25", "--decimals", "6")
	require.NoError(t, err)
	assert.Equal(t, "250000\n", out)

	_, err = runCommand(t, "amount", "1.5", "--symbol", "DOT", "--decimals", "6")
	require.Error(t, err)

	_, err = runCommand(t, "amount", "01", "--decimals", "6")
	require.Error(t, err)
}

func TestPrepareCommand(t *testing.T) {
	from := "0x" + strings.Repeat("01", 32)
	beneficiary := "./AccountId32(0x" + strings.Repeat("aa", 32) + ")"

	out, err := runCommand(t, "prepare", "hydration",
		"--from", from,
		"--dest", "assethub",
		"--beneficiary", beneficiary,
		"--asset", "USDT=10",
		"--asset", "DOT=0.5",
		"--asset", "DOT=0.5",
		"--fee-asset", "DOT",
	)
	require.NoError(t, err)
	assert.Contains(t, out, "Origin:      "+from+"\n")
	assert.Contains(t, out, "Version:     V4\n")
	assert.Contains(t, out, "Destination: ../Parachain(1000)\n")
	assert.Contains(t, out, "../Here:10000000000 (fee)\n")
	assert.Contains(t, out, "../Parachain(1000)/PalletInstance(50)/GeneralIndex(1984):10000000\n")
	assert.Contains(t, out, "  dest         0x04010100a10f\n")
	assert.Contains(t, out, "  weight_limit 0x00\n")
}

func TestPrepareCommandErrors(t *testing.T) {
	from := "0x" + strings.Repeat("01", 32)
	beneficiary := "./AccountId32(0x" + strings.Repeat("aa", 32) + ")"

	_, err := runCommand(t, "prepare", "hydration",
		"--from", from, "--dest", "assethub", "--beneficiary", beneficiary,
		"--asset", "USDT=10", "--fee-asset", "DOT")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fee asset not part of the transfer")

	_, err = runCommand(t, "prepare", "hydration",
		"--from-location", "./PalletInstance(12)", "--dest", "assethub", "--beneficiary", beneficiary,
		"--asset", "DOT=1", "--fee-asset", "DOT")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not supported")
}

func TestParseAssetLookup(t *testing.T) {
	l, err := parseAssetLookup("DOT=1.5", false)
	require.NoError(t, err)
	assert.Equal(t, "DOT", l.ID.Symbol)
	assert.Equal(t, "1.5", l.Amount)

	l, err = parseAssetLookup("../Parachain(1000)=42", true)
	require.NoError(t, err)
	assert.Empty(t, l.ID.Symbol)
	require.NotNil(t, l.Raw)
	assert.Equal(t, uint64(42), l.Raw.Uint64())

	l, err = parseAssetLookup("./PalletInstance(52)/GeneralIndex(7)#Index(3)", false)
	require.NoError(t, err)
	require.NotNil(t, l.Instance)
	assert.Equal(t, "Index(3)", l.Instance.String())

	_, err = parseAssetLookup("DOT", false)
	require.Error(t, err)
}

func TestParseWeightLimit(t *testing.T) {
	w, err := parseWeightLimit("Unlimited")
	require.NoError(t, err)
	assert.False(t, w.Limited)

	w, err = parseWeightLimit("1000, 64")
	require.NoError(t, err)
	assert.Equal(t, xcm.WeightLimit{Limited: true, RefTime: 1000, ProofSize: 64}, w)

	_, err = parseWeightLimit("1000")
	require.Error(t, err)
	_, err = parseWeightLimit("x,1")
	require.Error(t, err)
}
