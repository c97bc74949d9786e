package market

import (
	"fmt"
	"strings"
)

// Registry is the static, ordered instrument table of one market.
type Registry struct {
	market Market
	order  []string
	items  map[string]Instrument
}

func newRegistry(m Market, instruments ...Instrument) *Registry {
	r := &Registry{
		market: m,
		order:  make([]string, 0, len(instruments)),
		items:  make(map[string]Instrument, len(instruments)),
	}
	for _, inst := range instruments {
		if m == Crypto && inst.QuoteCurrency == "" {
			inst.QuoteCurrency = "usd"
		}
		r.order = append(r.order, inst.Key)
		r.items[inst.Key] = inst
	}
	return r
}

// Indian indices use Kite instrument tokens, equities use EXCHANGE:SYMBOL.
var registries = map[Market]*Registry{
	IndianStocks: newRegistry(IndianStocks,
		Instrument{Key: "nifty", DisplayName: "NIFTY 50", UpstreamSymbol: "256265", Color: "#60a5fa"},
		Instrument{Key: "banknifty", DisplayName: "BANKNIFTY", UpstreamSymbol: "260105", Color: "#22c55e"},
		Instrument{Key: "sensex", DisplayName: "SENSEX", UpstreamSymbol: "265", Color: "#a78bfa"},
		Instrument{Key: "reliance", DisplayName: "Reliance", UpstreamSymbol: "NSE:RELIANCE", Color: "#f59e0b"},
		Instrument{Key: "tcs", DisplayName: "TCS", UpstreamSymbol: "NSE:TCS", Color: "#06b6d4"},
		Instrument{Key: "infy", DisplayName: "Infosys", UpstreamSymbol: "NSE:INFY", Color: "#fb7185"},
		Instrument{Key: "hdfcbank", DisplayName: "HDFC Bank", UpstreamSymbol: "NSE:HDFCBANK", Color: "#84cc16"},
	),
	Crypto: newRegistry(Crypto,
		Instrument{Key: "bitcoin", DisplayName: "Bitcoin", UpstreamSymbol: "bitcoin", Color: "#f59e0b"},
		Instrument{Key: "ethereum", DisplayName: "Ethereum", UpstreamSymbol: "ethereum", Color: "#06b6d4"},
		Instrument{Key: "solana", DisplayName: "Solana", UpstreamSymbol: "solana", Color: "#fb7185"},
		Instrument{Key: "ripple", DisplayName: "XRP", UpstreamSymbol: "ripple", Color: "#38bdf8"},
		Instrument{Key: "cardano", DisplayName: "Cardano", UpstreamSymbol: "cardano", Color: "#a78bfa"},
		Instrument{Key: "dogecoin", DisplayName: "Dogecoin", UpstreamSymbol: "dogecoin", Color: "#eab308"},
	),
	USStocks: newRegistry(USStocks,
		Instrument{Key: "apple", DisplayName: "Apple", UpstreamSymbol: "AAPL", Color: "#e5e7eb"},
		Instrument{Key: "microsoft", DisplayName: "Microsoft", UpstreamSymbol: "MSFT", Color: "#22c55e"},
		Instrument{Key: "nvidia", DisplayName: "NVIDIA", UpstreamSymbol: "NVDA", Color: "#84cc16"},
		Instrument{Key: "tesla", DisplayName: "Tesla", UpstreamSymbol: "TSLA", Color: "#7c3aed"},
		Instrument{Key: "amazon", DisplayName: "Amazon", UpstreamSymbol: "AMZN", Color: "#f97316"},
		Instrument{Key: "alphabet", DisplayName: "Alphabet", UpstreamSymbol: "GOOGL", Color: "#60a5fa"},
		Instrument{Key: "oracle", DisplayName: "Oracle", UpstreamSymbol: "ORCL", Color: "#38bdf8"},
	),
}

var emptyRegistry = &Registry{items: map[string]Instrument{}}

// RegistryFor returns the instrument table of m. Unknown markets get an empty registry.
func RegistryFor(m Market) *Registry {
	if r, ok := registries[m]; ok {
		return r
	}
	return emptyRegistry
}

// Market returns the owning market.
func (r *Registry) Market() Market { return r.market }

// Len returns the number of instruments.
func (r *Registry) Len() int { return len(r.order) }

// Keys returns instrument keys in registry order.
func (r *Registry) Keys() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Lookup finds an instrument by key.
func (r *Registry) Lookup(key string) (Instrument, bool) {
	inst, ok := r.items[key]
	return inst, ok
}

// Instruments returns all instruments in registry order.
func (r *Registry) Instruments() []Instrument {
	out := make([]Instrument, 0, len(r.order))
	for _, key := range r.order {
		out = append(out, r.items[key])
	}
	return out
}

// Contains reports whether key belongs to the registry.
func (r *Registry) Contains(key string) bool {
	_, ok := r.items[key]
	return ok
}

// ParseMarket resolves user input such as "crypto" or "us" into a Market.
func ParseMarket(raw string) (Market, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case string(IndianStocks), "india", "in", "nse":
		return IndianStocks, nil
	case string(Crypto), "cryptocurrency":
		return Crypto, nil
	case string(USStocks), "us", "usa":
		return USStocks, nil
	default:
		return "", fmt.Errorf("market: unknown market %q", raw)
	}
}
