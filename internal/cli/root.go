package cli

import (
	"fmt"
	"io"
	"log"
	"os"

	"github.com/LeJamon/goXCM/internal/config"
	"github.com/LeJamon/goXCM/internal/registry"
	"github.com/spf13/cobra"
)

var (
	// Global flags
	configFile   string
	registryFile string
	verbose      bool
	quiet        bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "xcmd",
	Short: "goXCM - XCM transfer tooling in Go",
	Long: `xcmd resolves XCM locations against a chain registry, canonicalizes
asset vectors, converts between XCM versions and prepares cross-chain
transfer parameters for substrate chains.`,
	Version:       "0.1.0-dev",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "conf", "", "configuration file path (default xcmd.toml)")
	rootCmd.PersistentFlags().StringVar(&registryFile, "registry", "", "registry file path, overrides registry.file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose logging")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress log output")
}

// environment is what every command needs: the loaded configuration, the
// registry it points at and a logger.
type environment struct {
	cfg    *config.Config
	reg    *registry.Registry
	logger *log.Logger
}

func loadEnvironment() (*environment, error) {
	paths := config.DefaultConfigPaths()
	if configFile != "" {
		paths.Main = configFile
	}
	paths.Registry = registryFile

	cfg, err := config.LoadConfig(paths)
	if err != nil {
		return nil, err
	}
	reg, err := config.LoadRegistry(cfg.GetRegistryPath())
	if err != nil {
		return nil, err
	}
	return &environment{cfg: cfg, reg: reg, logger: newLogger()}, nil
}

func newLogger() *log.Logger {
	switch {
	case quiet:
		return log.New(io.Discard, "", 0)
	case verbose:
		return log.New(os.Stderr, "xcmd ", log.LstdFlags|log.Lmicroseconds)
	}
	return log.New(os.Stderr, "", log.LstdFlags)
}

// chain looks up a chain by id, falling back to its display name.
func (e *environment) chain(name string) (*registry.ChainInfo, error) {
	c, err := e.reg.ChainInfoByID(name)
	if err == nil {
		return c, nil
	}
	if loc, ok := e.reg.UniversalLocation(name); ok {
		if c, byLoc := e.reg.ChainInfoByUniversalLocation(loc); byLoc == nil {
			return c, nil
		}
	}
	return nil, err
}
