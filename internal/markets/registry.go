package markets

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var ErrNotFound = errors.New("market not found")

// Market describes a perp market on a specific chain. Address is the GMX v2
// market token address the order builder resolves symbols to.
type Market struct {
	Symbol          string
	Chain           string
	Address         string
	Description     string
	IndexToken      string
	LongCollateral  string
	ShortCollateral string
}

// Registry is a static catalog. Live market discovery is deliberately out of
// scope; entries come from the built-in defaults plus Add.
type Registry struct {
	byChain map[string]map[string]Market
}

func NewRegistry() *Registry {
	r := &Registry{byChain: make(map[string]map[string]Market)}
	for _, m := range defaultMarkets {
		r.Add(m)
	}
	return r
}

func (r *Registry) Add(m Market) {
	chain := strings.ToLower(strings.TrimSpace(m.Chain))
	symbol := strings.ToUpper(strings.TrimSpace(m.Symbol))
	if chain == "" || symbol == "" {
		return
	}
	m.Chain = chain
	m.Symbol = symbol
	if r.byChain[chain] == nil {
		r.byChain[chain] = make(map[string]Market)
	}
	r.byChain[chain][symbol] = m
}

// Resolve looks up a market by symbol and chain, case-insensitively.
func (r *Registry) Resolve(symbol, chain string) (Market, error) {
	chain = strings.ToLower(strings.TrimSpace(chain))
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	m, ok := r.byChain[chain][symbol]
	if !ok {
		return Market{}, fmt.Errorf("%s on %s: %w", symbol, chain, ErrNotFound)
	}
	return m, nil
}

func (r *Registry) List(chain string) []Market {
	chain = strings.ToLower(strings.TrimSpace(chain))
	out := make([]Market, 0, len(r.byChain[chain]))
	for _, m := range r.byChain[chain] {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Symbol < out[j].Symbol })
	return out
}

func (r *Registry) Chains() []string {
	out := make([]string, 0, len(r.byChain))
	for chain := range r.byChain {
		out = append(out, chain)
	}
	sort.Strings(out)
	return out
}

var defaultMarkets = []Market{
	{
		Symbol:          "ETH",
		Chain:           "arbitrum",
		Address:         "0x70d95587d40A2caf56bd97485aB3Eec10Bee6336",
		Description:     "Ethereum perpetual market",
		IndexToken:      "ETH",
		LongCollateral:  "ETH",
		ShortCollateral: "USDC",
	},
	{
		Symbol:          "BTC",
		Chain:           "arbitrum",
		Address:         "0x47c031236e19d024b42f8AE6780E44A573170703",
		Description:     "Bitcoin perpetual market",
		IndexToken:      "BTC",
		LongCollateral:  "BTC",
		ShortCollateral: "USDC",
	},
	{
		Symbol:          "ARB",
		Chain:           "arbitrum",
		Address:         "0xC25cEf6061Cf5dE5eb761b50E4743c1F5D7E5407",
		Description:     "Arbitrum perpetual market",
		IndexToken:      "ARB",
		LongCollateral:  "ARB",
		ShortCollateral: "USDC",
	},
	{
		Symbol:          "SOL",
		Chain:           "arbitrum",
		Address:         "0x09400D9DB990D5ed3f35D7be61DfAEB900Af03C9",
		Description:     "Solana perpetual market",
		IndexToken:      "SOL",
		LongCollateral:  "SOL",
		ShortCollateral: "USDC",
	},
	{
		Symbol:          "ETH",
		Chain:           "avalanche",
		Address:         "0xB7e69749E3d2EDd90ea59A4932EFEa2D41E245d7",
		Description:     "Ethereum perpetual market",
		IndexToken:      "ETH",
		LongCollateral:  "ETH",
		ShortCollateral: "USDC",
	},
	{
		Symbol:          "BTC",
		Chain:           "avalanche",
		Address:         "0xFb02132333A79C8B5Bd0b64E3AbccA5f7fAf2937",
		Description:     "Bitcoin perpetual market",
		IndexToken:      "BTC",
		LongCollateral:  "BTC",
		ShortCollateral: "USDC",
	},
	{
		Symbol:          "AVAX",
		Chain:           "avalanche",
		Address:         "0x913C1F46b48b3eD35E7dc3Cf754d4ae8499F31CF",
		Description:     "Avalanche perpetual market",
		IndexToken:      "AVAX",
		LongCollateral:  "AVAX",
		ShortCollateral: "USDC",
	},
}
