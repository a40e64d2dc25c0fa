package chain

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// brokenNode answers every JSON-RPC call with an error.
func brokenNode(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			ID      json.RawMessage `json:"id"`
			JSONRPC string          `json:"jsonrpc"`
		}
		json.NewDecoder(r.Body).Decode(&req)

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"jsonrpc": "2.0",
			"id":      req.ID,
			"error":   map[string]interface{}{"code": -32000, "message": "node is syncing"},
		})
	}))
}

func testKey(t *testing.T) string {
	t.Helper()
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	return hex.EncodeToString(crypto.FromECDSA(key))
}

func TestDial_InvalidConfig(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{
			name: "bad contract address",
			cfg:  Config{URL: "http://127.0.0.1:1", Contract: "0xYourContractAddressHere", PrivateKey: testKey(t), ChainID: 1337},
		},
		{
			name: "bad private key",
			cfg:  Config{URL: "http://127.0.0.1:1", Contract: "0x0000000000000000000000000000000000000001", PrivateKey: "zz", ChainID: 1337},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Dial(context.Background(), tt.cfg, zap.NewNop())
			assert.Error(t, err)
		})
	}
}

func TestCreateList_NodeFailureDegrades(t *testing.T) {
	node := brokenNode(t)
	defer node.Close()

	c, err := Dial(context.Background(), Config{
		URL:        node.URL,
		Contract:   "0x0000000000000000000000000000000000000001",
		PrivateKey: testKey(t),
		ChainID:    1337,
		Timeout:    2 * time.Second,
	}, zap.NewNop())
	require.NoError(t, err)
	defer c.Close()

	assert.Empty(t, c.CreateList(context.Background(), "Groceries", ""))
	assert.Empty(t, c.AddTask(context.Background(), 1, "Milk", ""))
}

func TestDial_ChainIDFromNode(t *testing.T) {
	node := brokenNode(t)
	defer node.Close()

	_, err := Dial(context.Background(), Config{
		URL:        node.URL,
		Contract:   "0x0000000000000000000000000000000000000001",
		PrivateKey: testKey(t),
	}, zap.NewNop())
	assert.Error(t, err, "chain id lookup fails against a broken node")
}
