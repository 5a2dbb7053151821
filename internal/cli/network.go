package cli

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"slices"
	"sort"
	"sync"

	"github.com/LeJamon/goXCM/internal/fees"
	"github.com/LeJamon/goXCM/internal/registry"
	"github.com/LeJamon/goXCM/internal/storage/metastore"
	"github.com/LeJamon/goXCM/internal/transfer"
	"github.com/LeJamon/goXCM/internal/transport"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// maxConcurrentChains bounds how many nodes max-version queries at once.
const maxConcurrentChains = 8

// backendCmd represents the backend command
var backendCmd = &cobra.Command{
	Use:   "backend <chain>",
	Short: "Show which transfer call a chain supports",
	Long: `Connect to a chain and report the pallet call a transfer from it would
use: transfer_assets on a primary XCM pallet, or transfer_multiassets on a
tokens pallet as fallback.`,
	Args: cobra.ExactArgs(1),
	RunE: runBackend,
}

// maxVersionCmd represents the max-version command
var maxVersionCmd = &cobra.Command{
	Use:   "max-version [chain...]",
	Short: "Report the highest XCM version chains accept",
	Long: `Connect to each chain (all registry chains by default) and read the
highest XCM version its runtime metadata declares.`,
	RunE: runMaxVersion,
}

func init() {
	rootCmd.AddCommand(backendCmd)
	rootCmd.AddCommand(maxVersionCmd)
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}

// connections is a pool plus the metadata store behind it.
type connections struct {
	*transport.Pool
	store  *metastore.Store
	logger *log.Logger
}

func (c *connections) Close() {
	if err := c.CloseAll(); err != nil {
		c.logger.Printf("Failed to close connections: %v", err)
	}
	if c.store != nil {
		if err := c.store.Close(); err != nil {
			c.logger.Printf("Failed to close metadata store: %v", err)
		}
	}
}

func (e *environment) newPool() (*connections, error) {
	cache, err := transport.NewMetadataCache(e.cfg.Transport.MetadataCacheSize)
	if err != nil {
		return nil, err
	}
	version, err := e.cfg.GetDefaultVersion()
	if err != nil {
		return nil, err
	}

	conns := &connections{logger: e.logger}
	if dir := e.cfg.Storage.MetadataDir; dir != "" {
		backend, err := metastore.OpenPebble(dir)
		if err != nil {
			return nil, err
		}
		compressor, err := metastore.GetCompressor(e.cfg.Storage.Compression)
		if err != nil {
			backend.Close()
			return nil, err
		}
		conns.store = metastore.New(backend, compressor, e.logger)
		cache.WithStore(conns.store)
	}

	tr := &transport.WebsocketTransport{
		RequestTimeout: e.cfg.Transport.RequestTimeout,
		Logger:         e.logger,
	}
	conns.Pool = transport.NewPool(tr, cache, version, e.logger)
	return conns, nil
}

// primaryPallets honours a chain's pinned transfer pallet.
func (e *environment) primaryPallets(chain *registry.ChainInfo) []string {
	if chain.TransferPallet != "" {
		return []string{chain.TransferPallet}
	}
	return e.cfg.Transfer.PrimaryPallets
}

// newComposer builds the fee engine from the [fees] section and a composer
// probing the chain's transfer pallets.
func (e *environment) newComposer(chain *registry.ChainInfo, estimator fees.Estimator) *transfer.Composer {
	engine := fees.NewEngine(estimator,
		fees.WithMaxIterations(e.cfg.Fees.MaxIterations),
		fees.WithRequiredDryRun(e.cfg.Fees.FinalDryRun),
		fees.WithLogger(e.logger),
	)
	return transfer.NewComposer(engine,
		transfer.WithPrimaryPallets(e.primaryPallets(chain)...),
		transfer.WithTokenPallets(e.cfg.Transfer.TokenPallets...),
		transfer.WithLogger(e.logger),
	)
}

// poolEstimators resolves estimators for other hops through the pool.
func poolEstimators(pool *connections) fees.EstimatorResolver {
	return func(ctx context.Context, chain *registry.ChainInfo) (fees.Estimator, error) {
		return pool.Get(ctx, chain)
	}
}

func runBackend(cmd *cobra.Command, args []string) error {
	env, err := loadEnvironment()
	if err != nil {
		return err
	}
	chain, err := env.chain(args[0])
	if err != nil {
		return err
	}
	pool, err := env.newPool()
	if err != nil {
		return err
	}
	defer pool.Close()

	ctx, cancel := signalContext()
	defer cancel()
	api, err := pool.Get(ctx, chain)
	if err != nil {
		return err
	}
	backend, err := transfer.SelectBackend(ctx, api, env.primaryPallets(chain), env.cfg.Transfer.TokenPallets, env.logger)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", chain.ID, backend.Name())
	return nil
}

func runMaxVersion(cmd *cobra.Command, args []string) error {
	env, err := loadEnvironment()
	if err != nil {
		return err
	}
	chains := env.reg.Chains()
	if len(args) > 0 {
		chains = chains[:0:0]
		for _, name := range args {
			chain, err := env.chain(name)
			if err != nil {
				return err
			}
			chains = append(chains, chain)
		}
	}
	pool, err := env.newPool()
	if err != nil {
		return err
	}
	defer pool.Close()

	ctx, cancel := signalContext()
	defer cancel()

	var (
		mu      sync.Mutex
		results = make(map[string]string, len(chains))
	)
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentChains)
	for _, chain := range chains {
		g.Go(func() error {
			line := queryMaxVersion(ctx, env, pool, chain)
			mu.Lock()
			results[chain.ID] = line
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	ids := make([]string, 0, len(results))
	for id := range results {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", id, results[id])
	}
	return nil
}

// queryMaxVersion reports a failure as the result line so one unreachable
// chain does not hide the others.
func queryMaxVersion(ctx context.Context, env *environment, pool *connections, chain *registry.ChainInfo) string {
	api, err := pool.Get(ctx, chain)
	if err != nil {
		env.logger.Printf("Failed to connect to %s: %v", chain.ID, err)
		return "unreachable"
	}
	pallets, err := api.Pallets(ctx)
	if err != nil {
		return fmt.Sprintf("error: %v", err)
	}
	candidates := slices.Concat(env.primaryPallets(chain), env.cfg.Transfer.TokenPallets)
	idx := slices.IndexFunc(candidates, func(p string) bool { return slices.Contains(pallets, p) })
	if idx < 0 {
		return "no xcm pallet"
	}
	version, err := api.EstimateMaxXcmVersion(ctx, candidates[idx])
	if err != nil {
		return fmt.Sprintf("error: %v", err)
	}
	if chain.XcmVersion != 0 && chain.XcmVersion != version {
		return fmt.Sprintf("%s (pinned %s)", version, chain.XcmVersion)
	}
	return version.String()
}
