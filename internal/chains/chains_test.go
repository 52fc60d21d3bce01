package chains

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultCatalog(t *testing.T) {
	c := DefaultCatalog()

	sepolia, ok := c.Get("0xaa36a7")
	require.True(t, ok)
	assert.Equal(t, "Sepolia", sepolia.Name)
	assert.True(t, sepolia.Testnet)
}

func TestCatalog_CaseInsensitiveChainID(t *testing.T) {
	c := DefaultCatalog()
	_, ok := c.Get("0xAA36A7")
	assert.True(t, ok)
}

func TestCatalog_Name_UnknownChain(t *testing.T) {
	c := DefaultCatalog()
	assert.Equal(t, "0xdeadbeef", c.Name("0xdeadbeef"))
}

func TestCatalog_ExplorerTxURL(t *testing.T) {
	c := DefaultCatalog()

	url := c.ExplorerTxURL("0xaa36a7", "0xabc123")
	assert.Equal(t, "https://sepolia.etherscan.io/tx/0xabc123", url)

	assert.Empty(t, c.ExplorerTxURL("0xdeadbeef", "0xabc123"))
}

func TestNewCatalog_InvalidYAML(t *testing.T) {
	_, err := NewCatalog([]byte("networks: [unclosed"))
	assert.Error(t, err)
}
