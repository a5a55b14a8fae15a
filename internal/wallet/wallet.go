package wallet

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gmx-trade-desk/internal/config"
	"gmx-trade-desk/internal/state"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"go.uber.org/zap"
)

var ErrNotConfigured = errors.New("wallet not configured")

const (
	keyAddress    = "wallet:address"
	keyPrivateKey = "wallet:private_key"
	keyChain      = "wallet:chain"
)

// Manager owns wallet configuration. The key is stored so an external
// submitter can later pick it up; this process never signs with it.
type Manager struct {
	store state.Store
	log   *zap.Logger
}

type Info struct {
	Address       string
	Chain         string
	KeyConfigured bool
}

func NewManager(store state.Store, log *zap.Logger) *Manager {
	return &Manager{store: store, log: log}
}

// Seed configures the wallet from startup config unless one is already
// persisted. A partial seed (address without key) is ignored.
func (m *Manager) Seed(ctx context.Context, cfg config.WalletConfig, chain string) error {
	if cfg.Address == "" || cfg.PrivateKey == "" {
		return nil
	}
	if _, ok, err := m.store.Get(ctx, keyAddress); err != nil {
		return err
	} else if ok {
		return nil
	}
	_, err := m.Setup(ctx, cfg.Address, cfg.PrivateKey, chain)
	return err
}

// Setup validates and persists the wallet. The address must parse as a hex
// address and must match the address derived from the private key.
func (m *Manager) Setup(ctx context.Context, address, privateKey, chain string) (Info, error) {
	address = strings.TrimSpace(address)
	privateKey = strings.TrimSpace(privateKey)
	chain = strings.ToLower(strings.TrimSpace(chain))
	if address == "" || privateKey == "" {
		return Info{}, errors.New("wallet address and private key are required")
	}
	if !common.IsHexAddress(address) {
		return Info{}, fmt.Errorf("invalid wallet address %q", address)
	}
	key, err := crypto.HexToECDSA(strings.TrimPrefix(privateKey, "0x"))
	if err != nil {
		return Info{}, fmt.Errorf("invalid private key: %w", err)
	}
	derived := crypto.PubkeyToAddress(key.PublicKey)
	checksummed := common.HexToAddress(address)
	if derived != checksummed {
		return Info{}, fmt.Errorf("wallet address does not match private key: got %s expected %s", checksummed.Hex(), derived.Hex())
	}

	if err := m.store.Set(ctx, keyAddress, checksummed.Hex()); err != nil {
		return Info{}, err
	}
	if err := m.store.Set(ctx, keyPrivateKey, privateKey); err != nil {
		return Info{}, err
	}
	if chain != "" {
		if err := m.store.Set(ctx, keyChain, chain); err != nil {
			return Info{}, err
		}
	}
	m.log.Info("wallet configured",
		zap.String("address", checksummed.Hex()),
		zap.String("chain", chain),
	)
	return Info{Address: checksummed.Hex(), Chain: chain, KeyConfigured: true}, nil
}

// IsConfigured is the capability handed to the order builder: true once both
// an address and a key are persisted.
func (m *Manager) IsConfigured(ctx context.Context) (bool, error) {
	if _, ok, err := m.store.Get(ctx, keyAddress); err != nil || !ok {
		return false, err
	}
	_, ok, err := m.store.Get(ctx, keyPrivateKey)
	return ok, err
}

func (m *Manager) Info(ctx context.Context) (Info, error) {
	address, ok, err := m.store.Get(ctx, keyAddress)
	if err != nil {
		return Info{}, err
	}
	if !ok {
		return Info{}, ErrNotConfigured
	}
	chain, _, err := m.store.Get(ctx, keyChain)
	if err != nil {
		return Info{}, err
	}
	_, keySet, err := m.store.Get(ctx, keyPrivateKey)
	if err != nil {
		return Info{}, err
	}
	return Info{Address: address, Chain: chain, KeyConfigured: keySet}, nil
}
