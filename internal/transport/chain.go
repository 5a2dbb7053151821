package transport

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"log"
	"slices"
	"strings"

	"github.com/LeJamon/goXCM/internal/extrinsic"
	"github.com/LeJamon/goXCM/internal/xcm"
	"github.com/centrifuge/go-substrate-rpc-client/v4/types"
	"github.com/centrifuge/go-substrate-rpc-client/v4/types/codec"
	lru "github.com/hashicorp/golang-lru/v2"
)

const (
	locationToAccountAPI = "LocationToAccountApi_convert_location"
	dryRunCallAPI        = "DryRunApi_dry_run_call"
)

var (
	ErrConversionRejected = errors.New("location conversion rejected")
	ErrDryRunFailed       = errors.New("dry run failed")
)

// MetadataStore persists raw metadata across runs, keyed by runtime spec
// version.
type MetadataStore interface {
	Load(chain string, specVersion uint32) ([]byte, bool, error)
	Save(chain string, specVersion uint32, raw []byte) error
}

// MetadataCache keeps decoded runtime metadata per chain.
type MetadataCache struct {
	metadata  *lru.Cache[string, *types.Metadata]
	callCache *lru.Cache[string, bool]
	store     MetadataStore
}

// WithStore backs the cache with a persistent store.
func (m *MetadataCache) WithStore(store MetadataStore) *MetadataCache {
	m.store = store
	return m
}

// NewMetadataCache holds metadata for up to size chains.
func NewMetadataCache(size int) (*MetadataCache, error) {
	metadata, err := lru.New[string, *types.Metadata](size)
	if err != nil {
		return nil, err
	}
	callCache, err := lru.New[string, bool](size * 64)
	if err != nil {
		return nil, err
	}
	return &MetadataCache{metadata: metadata, callCache: callCache}, nil
}

// Add stores meta for chain, replacing any cached value.
func (m *MetadataCache) Add(chain string, meta *types.Metadata) {
	m.metadata.Add(chain, meta)
	for _, key := range m.callCache.Keys() {
		if strings.HasPrefix(key, chain+"/") {
			m.callCache.Remove(key)
		}
	}
}

// ChainAPI is the runtime of one chain reached over a connection.
type ChainAPI struct {
	conn    *Conn
	chain   string
	cache   *MetadataCache
	version xcm.Version
	logger  *log.Logger
}

// NewChainAPI wraps conn for chain. version is passed to runtime APIs that
// take a result XCM version.
func NewChainAPI(conn *Conn, chain string, cache *MetadataCache, version xcm.Version, logger *log.Logger) *ChainAPI {
	if logger == nil {
		logger = log.Default()
	}
	return &ChainAPI{conn: conn, chain: chain, cache: cache, version: version, logger: logger}
}

func (a *ChainAPI) ChainName() string { return a.chain }

type runtimeVersion struct {
	SpecName    string `json:"specName"`
	SpecVersion uint32 `json:"specVersion"`
}

// Metadata returns the runtime metadata, fetching it once per cache entry.
// With a store, metadata of an unchanged runtime is read from disk.
func (a *ChainAPI) Metadata(ctx context.Context) (*types.Metadata, error) {
	if meta, ok := a.cache.metadata.Get(a.chain); ok {
		return meta, nil
	}
	raw, err := a.fetchMetadata(ctx)
	if err != nil {
		return nil, err
	}
	var meta types.Metadata
	if err := codec.Decode(raw, &meta); err != nil {
		return nil, fmt.Errorf("decode metadata of %s: %w", a.chain, err)
	}
	if meta.Version != 14 {
		return nil, fmt.Errorf("%w: metadata v%d on %s", ErrFeatureNotSupported, meta.Version, a.chain)
	}
	a.cache.Add(a.chain, &meta)
	return &meta, nil
}

func (a *ChainAPI) fetchMetadata(ctx context.Context) ([]byte, error) {
	store := a.cache.store
	var version runtimeVersion
	if store != nil {
		if err := a.conn.Call(ctx, "state_getRuntimeVersion", &version); err != nil {
			return nil, err
		}
		raw, ok, err := store.Load(a.chain, version.SpecVersion)
		if err != nil {
			a.logger.Printf("Ignoring stored metadata of %s: %v", a.chain, err)
		} else if ok {
			return raw, nil
		}
	}

	var encoded string
	if err := a.conn.Call(ctx, "state_getMetadata", &encoded); err != nil {
		return nil, err
	}
	raw, err := codec.HexDecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("metadata of %s: %w", a.chain, err)
	}
	if store != nil {
		if err := store.Save(a.chain, version.SpecVersion, raw); err != nil {
			a.logger.Printf("Failed to store metadata of %s: %v", a.chain, err)
		}
	}
	return raw, nil
}

// Pallets lists the pallet names declared by the runtime.
func (a *ChainAPI) Pallets(ctx context.Context) ([]string, error) {
	meta, err := a.Metadata(ctx)
	if err != nil {
		return nil, err
	}
	return palletNames(meta), nil
}

// HasCall reports whether pallet declares method.
func (a *ChainAPI) HasCall(ctx context.Context, pallet, method string) (bool, error) {
	key := a.chain + "/" + pallet + "." + method
	if ok, cached := a.cache.callCache.Get(key); cached {
		return ok, nil
	}
	meta, err := a.Metadata(ctx)
	if err != nil {
		return false, err
	}
	ok := slices.Contains(callNames(meta, pallet), method)
	a.cache.callCache.Add(key, ok)
	return ok, nil
}

// StateCall runs a runtime API through state_call. Unknown APIs fail with
// ErrFeatureNotSupported.
func (a *ChainAPI) StateCall(ctx context.Context, api string, args []byte) ([]byte, error) {
	var raw string
	err := a.conn.Call(ctx, "state_call", &raw, api, codec.HexEncodeToString(args))
	var rpcErr *RPCError
	if errors.As(err, &rpcErr) && isMissingAPI(rpcErr) {
		return nil, fmt.Errorf("%w: %s on %s: %w", ErrFeatureNotSupported, api, a.chain, err)
	}
	if err != nil {
		return nil, fmt.Errorf("%s on %s: %w", api, a.chain, err)
	}
	return codec.HexDecodeString(raw)
}

func isMissingAPI(err *RPCError) bool {
	text := strings.ToLower(err.Message + " " + string(err.Data))
	return strings.Contains(text, "not found") || strings.Contains(text, "does not exist")
}

// LocationToAccount converts loc to the account it controls on this chain.
func (a *ChainAPI) LocationToAccount(ctx context.Context, loc xcm.VersionedLocation) (extrinsic.AccountID, error) {
	args, err := codec.Encode(loc)
	if err != nil {
		return extrinsic.AccountID{}, err
	}
	out, err := a.StateCall(ctx, locationToAccountAPI, args)
	if err != nil {
		return extrinsic.AccountID{}, err
	}
	return decodeAccountResult(out)
}

func decodeAccountResult(out []byte) (extrinsic.AccountID, error) {
	var id extrinsic.AccountID
	if len(out) == 0 {
		return id, fmt.Errorf("%w: empty result", ErrConversionRejected)
	}
	switch out[0] {
	case 0:
		if len(out) != 1+len(id) {
			return id, fmt.Errorf("%w: account of %d bytes", ErrConversionRejected, len(out)-1)
		}
		copy(id[:], out[1:])
		return id, nil
	case 1:
		reason := "unsupported"
		if len(out) > 1 && out[1] == 1 {
			reason = "versioned conversion failed"
		}
		return id, fmt.Errorf("%w: %s", ErrConversionRejected, reason)
	}
	return id, fmt.Errorf("%w: unexpected result tag %d", ErrConversionRejected, out[0])
}

// DryRun executes call as a signed call of origin without committing it.
func (a *ChainAPI) DryRun(ctx context.Context, origin extrinsic.AccountID, call extrinsic.Call) error {
	meta, err := a.Metadata(ctx)
	if err != nil {
		return err
	}
	encoded, err := call.Encode(meta)
	if err != nil {
		return err
	}
	// OriginCaller::system(RawOrigin::Signed(origin))
	args := append([]byte{0, 1}, origin[:]...)
	args = append(args, encoded...)
	args = binary.LittleEndian.AppendUint32(args, uint32(a.version))

	out, err := a.StateCall(ctx, dryRunCallAPI, args)
	if err != nil {
		return err
	}
	return decodeDryRunResult(call.Name(), out)
}

func decodeDryRunResult(name string, out []byte) error {
	switch {
	case len(out) < 2:
		return fmt.Errorf("%w: %s: short result", ErrDryRunFailed, name)
	case out[0] != 0:
		return fmt.Errorf("%w: %s: runtime rejected the dry run", ErrDryRunFailed, name)
	case out[1] != 0:
		return fmt.Errorf("%w: %s: execution failed", ErrDryRunFailed, name)
	}
	return nil
}

// EstimateMaxXcmVersion returns the highest XCM version the runtime's
// VersionedLocation type accepts, capped at xcm.MaxVersion. pallet must be
// present in the runtime.
func (a *ChainAPI) EstimateMaxXcmVersion(ctx context.Context, pallet string) (xcm.Version, error) {
	meta, err := a.Metadata(ctx)
	if err != nil {
		return 0, err
	}
	if !slices.Contains(palletNames(meta), pallet) {
		return 0, fmt.Errorf("%w: pallet %s on %s", ErrFeatureNotSupported, pallet, a.chain)
	}
	best := xcm.Version(0)
	for _, pt := range meta.AsMetadataV14.Lookup.Types {
		path := pt.Type.Path
		if len(path) == 0 || !pt.Type.Def.IsVariant {
			continue
		}
		if last := string(path[len(path)-1]); last != "VersionedLocation" && last != "VersionedMultiLocation" {
			continue
		}
		for _, v := range pt.Type.Def.Variant.Variants {
			if version, err := xcm.ParseVersion(string(v.Name)); err == nil && version > best {
				best = version
			}
		}
	}
	if best == 0 {
		return 0, fmt.Errorf("%w: no VersionedLocation type on %s", ErrFeatureNotSupported, a.chain)
	}
	return best, nil
}

func palletNames(meta *types.Metadata) []string {
	names := make([]string, 0, len(meta.AsMetadataV14.Pallets))
	for _, p := range meta.AsMetadataV14.Pallets {
		names = append(names, string(p.Name))
	}
	return names
}

func callNames(meta *types.Metadata, pallet string) []string {
	for _, p := range meta.AsMetadataV14.Pallets {
		if string(p.Name) != pallet || !p.HasCalls {
			continue
		}
		id := p.Calls.Type.Int64()
		for _, pt := range meta.AsMetadataV14.Lookup.Types {
			if pt.ID.Int64() != id {
				continue
			}
			names := make([]string, 0, len(pt.Type.Def.Variant.Variants))
			for _, v := range pt.Type.Def.Variant.Variants {
				names = append(names, string(v.Name))
			}
			return names
		}
	}
	return nil
}
