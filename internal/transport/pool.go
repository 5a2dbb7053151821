package transport

import (
	"context"
	"log"
	"sync"

	"github.com/LeJamon/goXCM/internal/registry"
	"github.com/LeJamon/goXCM/internal/xcm"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

// Pool shares one connection per chain. Concurrent Gets for the same chain
// dial once.
type Pool struct {
	transport      Transport
	cache          *MetadataCache
	defaultVersion xcm.Version
	logger         *log.Logger

	mu    sync.Mutex
	conns map[string]*Conn
	group singleflight.Group
}

// NewPool creates a pool. Chains without a pinned XCM version use
// defaultVersion for runtime API calls.
func NewPool(transport Transport, cache *MetadataCache, defaultVersion xcm.Version, logger *log.Logger) *Pool {
	if logger == nil {
		logger = log.Default()
	}
	return &Pool{
		transport:      transport,
		cache:          cache,
		defaultVersion: defaultVersion,
		logger:         logger,
		conns:          make(map[string]*Conn),
	}
}

// Get returns the runtime API of chain, connecting on first use.
func (p *Pool) Get(ctx context.Context, chain *registry.ChainInfo) (*ChainAPI, error) {
	conn, err := p.conn(ctx, chain)
	if err != nil {
		return nil, err
	}
	version := chain.XcmVersion
	if version == 0 {
		version = p.defaultVersion
	}
	return NewChainAPI(conn, chain.ID, p.cache, version, p.logger), nil
}

func (p *Pool) conn(ctx context.Context, chain *registry.ChainInfo) (*Conn, error) {
	p.mu.Lock()
	conn, ok := p.conns[chain.ID]
	p.mu.Unlock()
	if ok {
		select {
		case <-conn.closed:
			p.logger.Printf("Connection to %s was closed, reconnecting", chain.ID)
		default:
			return conn, nil
		}
	}

	v, err, _ := p.group.Do(chain.ID, func() (any, error) {
		conn, err := p.transport.Connect(ctx, chain.Endpoints)
		if err != nil {
			return nil, err
		}
		p.mu.Lock()
		p.conns[chain.ID] = conn
		p.mu.Unlock()
		return conn, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Conn), nil
}

// CloseAll disconnects every pooled connection.
func (p *Pool) CloseAll() error {
	p.mu.Lock()
	conns := p.conns
	p.conns = make(map[string]*Conn)
	p.mu.Unlock()

	var g errgroup.Group
	for _, conn := range conns {
		g.Go(func() error {
			return p.transport.Disconnect(conn)
		})
	}
	return g.Wait()
}
