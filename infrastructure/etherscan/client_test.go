package etherscan

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"dailybet/domain/apperrors"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testTxid = "0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"

// newTestServer answers proxy calls by action
func newTestServer(t *testing.T, responses map[string]string) (*httptest.Server, *[]*http.Request) {
	t.Helper()
	var requests []*http.Request
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests = append(requests, r)
		body, ok := responses[r.URL.Query().Get("action")]
		if !ok {
			http.Error(w, "unexpected action", http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return server, &requests
}

func TestClient_GetTransaction(t *testing.T) {
	server, requests := newTestServer(t, map[string]string{
		// 0x1bc16d674ec80000 wei is 2 ETH
		"eth_getTransactionByHash": `{"jsonrpc":"2.0","id":1,"result":{"hash":"` + testTxid + `","from":"0xAbC0000000000000000000000000000000000001","to":"0x1111111111111111111111111111111111111111","value":"0x1bc16d674ec80000","blockNumber":"0x10d4f"}}`,
		"eth_getBlockByNumber":     `{"jsonrpc":"2.0","id":1,"result":{"number":"0x10d4f","timestamp":"0x55ba467c"}}`,
	})
	client := NewClient(server.URL, "key-123", time.Second)

	tx, err := client.GetTransaction(context.Background(), testTxid)
	require.NoError(t, err)

	assert.Equal(t, testTxid, tx.Hash)
	assert.Equal(t, "0xAbC0000000000000000000000000000000000001", tx.From)
	assert.Equal(t, "0x1111111111111111111111111111111111111111", tx.To)
	assert.True(t, tx.Value.Equal(decimal.NewFromInt(2)), "got %s", tx.Value)
	assert.Equal(t, "0x10d4f", tx.BlockNumber)
	assert.Equal(t, time.Unix(0x55ba467c, 0).UTC(), tx.BlockTime)

	require.Len(t, *requests, 2)
	first := (*requests)[0].URL.Query()
	assert.Equal(t, "proxy", first.Get("module"))
	assert.Equal(t, testTxid, first.Get("txhash"))
	assert.Equal(t, "key-123", first.Get("apikey"))
	assert.Equal(t, "0x10d4f", (*requests)[1].URL.Query().Get("tag"))
}

func TestClient_GetTransaction_NullResult(t *testing.T) {
	server, _ := newTestServer(t, map[string]string{
		"eth_getTransactionByHash": `{"jsonrpc":"2.0","id":1,"result":null}`,
	})
	client := NewClient(server.URL, "", time.Second)

	_, err := client.GetTransaction(context.Background(), testTxid)
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
}

func TestClient_GetTransaction_Pending(t *testing.T) {
	server, _ := newTestServer(t, map[string]string{
		"eth_getTransactionByHash": `{"jsonrpc":"2.0","id":1,"result":{"hash":"` + testTxid + `","from":"0x1","to":"0x2","value":"0x1","blockNumber":null}}`,
	})
	client := NewClient(server.URL, "", time.Second)

	_, err := client.GetTransaction(context.Background(), testTxid)
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
}

func TestClient_GetTransaction_UpstreamFailures(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "server error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "boom", http.StatusInternalServerError)
			},
		},
		{
			name: "malformed body",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`{"result":`))
			},
		},
		{
			name: "string result",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`{"status":"0","message":"NOTOK","result":"Invalid API Key"}`))
			},
		},
		{
			name: "rpc error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`{"jsonrpc":"2.0","id":1,"error":{"code":-32602,"message":"invalid argument"}}`))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(tt.handler)
			defer server.Close()

			_, err := NewClient(server.URL, "", time.Second).GetTransaction(context.Background(), testTxid)
			require.Error(t, err)
			assert.True(t, errors.Is(err, apperrors.ErrUpstreamUnavailable), "got %v", err)
		})
	}
}

func TestClient_GetTransaction_TransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	_, err := NewClient(url, "", time.Second).GetTransaction(context.Background(), testTxid)
	assert.True(t, errors.Is(err, apperrors.ErrUpstreamUnavailable))
}

func TestWeiToETH(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"0x0", "0"},
		{"0x", "0"},
		{"0xde0b6b3a7640000", "1"},
		{"0x2386f26fc10000", "0.01"},
		{"0x1", "0.000000000000000001"},
		// more than int64 can hold
		{"0x3635c9adc5dea00000", "1000"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			value, err := weiToETH(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, value.String())
		})
	}

	_, err := weiToETH("0xzz")
	assert.Error(t, err)
}
