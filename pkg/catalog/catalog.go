package catalog

import (
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var defaultCatalog []byte

var (
	// ErrUnknownKind is returned for an asset kind outside crypto|equity.
	ErrUnknownKind = errors.New("catalog: unknown asset kind")
	// ErrUnknownSymbol is returned when a symbol is not listed for the requested kind.
	ErrUnknownSymbol = errors.New("catalog: unknown symbol")
)

// Kind is one of the two supported asset categories.
type Kind string

const (
	KindCrypto Kind = "crypto"
	KindEquity Kind = "equity"
)

// Kinds lists the supported kinds in display order.
var Kinds = []Kind{KindCrypto, KindEquity}

// ParseKind normalises user input into a Kind. "stock" is accepted as an alias of equity.
func ParseKind(raw string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "crypto", "cryptocurrency":
		return KindCrypto, nil
	case "equity", "stock", "stocks":
		return KindEquity, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownKind, raw)
	}
}

// Label returns the human readable noun for the kind.
func (k Kind) Label() string {
	switch k {
	case KindCrypto:
		return "cryptocurrency"
	case KindEquity:
		return "stock"
	default:
		return "asset"
	}
}

// UsesWindow reports whether history requests for the kind honour a day window.
// Equity history is always fetched in full.
func (k Kind) UsesWindow() bool {
	return k == KindCrypto
}

// Entry maps a display symbol to the identifier the data provider expects.
type Entry struct {
	Symbol     string `json:"symbol" msgpack:"symbol"`
	ProviderID string `json:"providerId" msgpack:"provider_id"`
	Name       string `json:"name,omitempty" msgpack:"name"`
}

// Catalog holds the immutable asset lists for every kind.
type Catalog struct {
	entries  map[Kind][]Entry
	index    map[Kind]map[string]int
	defaults map[Kind]string
}

type fileEntry struct {
	Symbol string `yaml:"symbol"`
	ID     string `yaml:"id"`
	Name   string `yaml:"name"`
}

type fileFormat struct {
	Defaults map[string]string `yaml:"defaults"`
	Crypto   []fileEntry       `yaml:"crypto"`
	Equity   []fileEntry       `yaml:"equity"`
}

// Default returns the catalog compiled into the binary.
func Default() *Catalog {
	c, err := Parse(defaultCatalog)
	if err != nil {
		panic(fmt.Errorf("catalog: embedded catalog is invalid: %w", err))
	}
	return c
}

// LoadFile reads a catalog from a YAML file on disk.
func LoadFile(path string) (*Catalog, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	defer file.Close()
	return LoadReader(file)
}

// LoadReader reads a catalog from r.
func LoadReader(r io.Reader) (*Catalog, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates catalog YAML.
func Parse(data []byte) (*Catalog, error) {
	var raw fileFormat
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("unmarshal catalog: %w", err)
	}

	c := &Catalog{
		entries:  make(map[Kind][]Entry, len(Kinds)),
		index:    make(map[Kind]map[string]int, len(Kinds)),
		defaults: make(map[Kind]string, len(Kinds)),
	}
	if err := c.add(KindCrypto, raw.Crypto); err != nil {
		return nil, err
	}
	if err := c.add(KindEquity, raw.Equity); err != nil {
		return nil, err
	}

	for _, kind := range Kinds {
		def := strings.ToUpper(strings.TrimSpace(raw.Defaults[string(kind)]))
		if def == "" && len(c.entries[kind]) > 0 {
			def = c.entries[kind][0].Symbol
		}
		if def != "" {
			if _, ok := c.index[kind][def]; !ok {
				return nil, fmt.Errorf("catalog: default %s symbol %q is not listed", kind, def)
			}
		}
		c.defaults[kind] = def
	}
	return c, nil
}

func (c *Catalog) add(kind Kind, items []fileEntry) error {
	list := make([]Entry, 0, len(items))
	idx := make(map[string]int, len(items))
	for i, item := range items {
		symbol := strings.ToUpper(strings.TrimSpace(item.Symbol))
		if symbol == "" {
			return fmt.Errorf("catalog: %s entry %d has no symbol", kind, i)
		}
		if _, dup := idx[symbol]; dup {
			return fmt.Errorf("catalog: duplicate %s symbol %q", kind, symbol)
		}
		id := strings.TrimSpace(item.ID)
		switch {
		case kind == KindEquity:
			id = symbol
		case id == "":
			return fmt.Errorf("catalog: %s symbol %q has no provider id", kind, symbol)
		}
		idx[symbol] = len(list)
		list = append(list, Entry{
			Symbol:     symbol,
			ProviderID: id,
			Name:       strings.TrimSpace(item.Name),
		})
	}
	c.entries[kind] = list
	c.index[kind] = idx
	return nil
}

// Entries returns a copy of the entries for kind in declaration order.
func (c *Catalog) Entries(kind Kind) []Entry {
	list := c.entries[kind]
	out := make([]Entry, len(list))
	copy(out, list)
	return out
}

// Lookup finds the entry for symbol (case-insensitive).
func (c *Catalog) Lookup(kind Kind, symbol string) (Entry, bool) {
	idx, ok := c.index[kind][strings.ToUpper(strings.TrimSpace(symbol))]
	if !ok {
		return Entry{}, false
	}
	return c.entries[kind][idx], true
}

// Resolve is Lookup with a descriptive error.
func (c *Catalog) Resolve(kind Kind, symbol string) (Entry, error) {
	entry, ok := c.Lookup(kind, symbol)
	if !ok {
		return Entry{}, fmt.Errorf("%w: %s %q", ErrUnknownSymbol, kind, symbol)
	}
	return entry, nil
}

// DefaultSymbol returns the preselected symbol for kind.
func (c *Catalog) DefaultSymbol(kind Kind) string {
	return c.defaults[kind]
}
