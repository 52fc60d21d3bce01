// Package chains holds the catalog of networks the client knows how to talk
// about: display names and block-explorer URLs keyed by the hex chain ID a
// wallet provider reports.
package chains

import (
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed networks.yaml
var defaultCatalog []byte

// Network describes one known chain.
type Network struct {
	ChainID     string `yaml:"chainId"`
	Name        string `yaml:"name"`
	ExplorerURL string `yaml:"explorerUrl"`
	Testnet     bool   `yaml:"testnet"`
}

// Catalog maps hex chain IDs to network descriptions.
type Catalog struct {
	networks map[string]Network
}

type catalogFile struct {
	Networks []Network `yaml:"networks"`
}

// NewCatalog parses a YAML catalog. Chain IDs are matched case-insensitively.
func NewCatalog(data []byte) (*Catalog, error) {
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing network catalog: %w", err)
	}
	networks := make(map[string]Network, len(file.Networks))
	for _, n := range file.Networks {
		networks[strings.ToLower(n.ChainID)] = n
	}
	return &Catalog{networks: networks}, nil
}

// DefaultCatalog returns the embedded catalog. The embedded YAML is validated
// by tests, so a parse failure here is a build defect.
func DefaultCatalog() *Catalog {
	c, err := NewCatalog(defaultCatalog)
	if err != nil {
		panic(fmt.Sprintf("embedded network catalog invalid: %v", err))
	}
	return c
}

// Get returns the network for a hex chain ID.
func (c *Catalog) Get(chainID string) (Network, bool) {
	n, ok := c.networks[strings.ToLower(chainID)]
	return n, ok
}

// Name returns a display name for a chain ID, falling back to the raw ID for
// networks not in the catalog.
func (c *Catalog) Name(chainID string) string {
	if n, ok := c.Get(chainID); ok {
		return n.Name
	}
	return chainID
}

// ExplorerTxURL returns the block-explorer URL for a transaction hash, or ""
// when the chain has no configured explorer.
func (c *Catalog) ExplorerTxURL(chainID, txHash string) string {
	n, ok := c.Get(chainID)
	if !ok || n.ExplorerURL == "" {
		return ""
	}
	return strings.TrimSuffix(n.ExplorerURL, "/") + "/tx/" + txHash
}
