package cli

import (
	"errors"
	"fmt"

	"github.com/LeJamon/goXCM/internal/amount"
	"github.com/spf13/cobra"
)

var (
	amountDecimals uint8
	amountSymbol   string
	amountFormat   bool
)

// amountCmd represents the amount command
var amountCmd = &cobra.Command{
	Use:   "amount <value>",
	Short: "Convert between decimal and base-unit amounts",
	Long: `Convert a decimal amount to base units using a currency's decimals, or
format a base-unit amount back to a decimal with --format.

Examples:
    xcmd amount 1.5 --symbol DOT
    xcmd amount 15000000000 --symbol DOT --format
    xcmd amount 0.25 --decimals 6`,
	Args: cobra.ExactArgs(1),
	RunE: runAmount,
}

func init() {
	rootCmd.AddCommand(amountCmd)

	amountCmd.Flags().Uint8Var(&amountDecimals, "decimals", 0, "number of decimals")
	amountCmd.Flags().StringVar(&amountSymbol, "symbol", "", "take the decimals from this registry currency")
	amountCmd.Flags().BoolVar(&amountFormat, "format", false, "format a base-unit amount as a decimal")
}

func runAmount(cmd *cobra.Command, args []string) error {
	decimals := amountDecimals
	if amountSymbol != "" {
		if cmd.Flags().Changed("decimals") {
			return errors.New("--decimals and --symbol are mutually exclusive")
		}
		env, err := loadEnvironment()
		if err != nil {
			return err
		}
		currency, err := env.reg.CurrencyInfoBySymbol(amountSymbol)
		if err != nil {
			return err
		}
		decimals = currency.Decimals
	}

	out := cmd.OutOrStdout()
	if amountFormat {
		raw, err := amount.ParseRaw(args[0])
		if err != nil {
			return err
		}
		fmt.Fprintln(out, amount.Format(raw, decimals))
		return nil
	}
	raw, err := amount.Parse(args[0], decimals)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, raw.Dec())
	return nil
}
