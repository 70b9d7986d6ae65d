package wallet

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/ethclient"
	log "github.com/sirupsen/logrus"
)

type State string

const (
	StateDisconnected State = "disconnected"
	StateConnecting   State = "connecting"
	StateConnected    State = "connected"
	StateWrongNetwork State = "wrong-network"
	StateReady        State = "ready"
)

var (
	// ErrWrongNetwork is terminal for a connection attempt: callers must
	// surface "please switch networks" and never issue contract calls on the
	// wrong chain.
	ErrWrongNetwork = errors.New("wrong network: please switch networks")

	// ErrUnknownNetwork means no RPC endpoint is configured for the
	// requested chain id, so the session cannot switch to it.
	ErrUnknownNetwork = errors.New("unknown network: no rpc endpoint configured for chain id")

	ErrNotConnected = errors.New("wallet session is not connected")
)

// Dialer abstracts the RPC dial for tests.
type Dialer func(ctx context.Context, rawurl string) (Backend, error)

// Backend is the part of an ethclient connection the session needs.
type Backend interface {
	ChainID(ctx context.Context) (*big.Int, error)
}

// Session tracks the signer's connection to a chain endpoint. It refuses to
// hand out a backend unless the endpoint's chain id matches the target, and
// it re-derives the backend on every (re)connection instead of caching one
// across sessions.
type Session struct {
	mu            sync.Mutex
	state         State
	targetChainID string
	endpoints     map[string]string // chain id -> rpc url
	dial          Dialer
	backend       Backend
	chainID       string
}

func ethclientDialer(ctx context.Context, rawurl string) (Backend, error) {
	return ethclient.DialContext(ctx, rawurl)
}

// NewSession builds a session targeting chainID; endpoints maps chain ids to
// RPC URLs and plays the role of the wallet's known-network list.
func NewSession(targetChainID string, endpoints map[string]string) *Session {
	return &Session{
		state:         StateDisconnected,
		targetChainID: targetChainID,
		endpoints:     endpoints,
		dial:          ethclientDialer,
	}
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Connect dials the endpoint configured for the target chain and verifies
// the node really is on it. Cancellation by the caller is a silent no-op and
// leaves the session disconnected; a chain id mismatch is terminal for the
// attempt and leaves the session in the wrong-network state.
func (s *Session) Connect(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.connect(ctx, s.targetChainID)
}

// SwitchNetwork re-dials against the endpoint configured for chainID; the
// add-network analog is that the endpoint must already be present in config.
func (s *Session) SwitchNetwork(ctx context.Context, chainID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.targetChainID = chainID
	return s.connect(ctx, chainID)
}

func (s *Session) connect(ctx context.Context, chainID string) error {
	rpcURL, ok := s.endpoints[chainID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownNetwork, chainID)
	}

	s.state = StateConnecting
	s.backend = nil

	backend, err := s.dial(ctx, rpcURL)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			log.Debug("[WALLET] Connection cancelled")
			s.state = StateDisconnected
			return nil
		}
		s.state = StateDisconnected
		return fmt.Errorf("dialing %s: %w", rpcURL, err)
	}

	s.state = StateConnected

	nodeChainID, err := backend.ChainID(ctx)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			log.Debug("[WALLET] Connection cancelled")
			s.state = StateDisconnected
			return nil
		}
		s.state = StateDisconnected
		return fmt.Errorf("reading chain id: %w", err)
	}

	if nodeChainID.String() != chainID {
		log.Error("[WALLET] Chain ID mismatch, expected ", chainID, " got ", nodeChainID.String())
		s.state = StateWrongNetwork
		s.chainID = nodeChainID.String()
		return fmt.Errorf("%w: expected %s, connected to %s", ErrWrongNetwork, chainID, nodeChainID.String())
	}

	s.state = StateReady
	s.chainID = nodeChainID.String()
	s.backend = backend
	log.Info("[WALLET] Connected to chain ", chainID)
	return nil
}

// Backend returns the connected backend, refusing unless the session is
// ready on the target chain.
func (s *Session) Backend() (Backend, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch s.state {
	case StateReady:
		return s.backend, nil
	case StateWrongNetwork:
		return nil, ErrWrongNetwork
	default:
		return nil, ErrNotConnected
	}
}

// Client returns the underlying ethclient connection when the session is
// ready; it fails for backends injected by tests.
func (s *Session) Client() (*ethclient.Client, error) {
	backend, err := s.Backend()
	if err != nil {
		return nil, err
	}
	client, ok := backend.(*ethclient.Client)
	if !ok {
		return nil, errors.New("session backend is not an ethclient connection")
	}
	return client, nil
}
