// Package etherscan looks up Ethereum transactions through the Etherscan proxy API.
package etherscan

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"dailybet/domain/apperrors"
	"dailybet/domain/entities"
	"dailybet/domain/interfaces"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

// weiExponent converts wei to ETH: 1 ETH = 1e18 wei
const weiExponent = -18

// Client implements interfaces.BlockchainLookup against an Etherscan-compatible endpoint
type Client struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewClient creates a new Etherscan client
func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

var _ interfaces.BlockchainLookup = (*Client)(nil)

// rpcResponse is the proxy module envelope. Result is an object, null,
// or a plain string when the API rejects the call.
type rpcResponse struct {
	Result json.RawMessage `json:"result"`
	Error  *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
	Message string `json:"message"`
}

type rpcTransaction struct {
	Hash        string  `json:"hash"`
	From        string  `json:"from"`
	To          *string `json:"to"`
	Value       string  `json:"value"`
	BlockNumber *string `json:"blockNumber"`
}

type rpcBlock struct {
	Timestamp string `json:"timestamp"`
}

// GetTransaction fetches the transaction and the timestamp of the block that mined it
func (c *Client) GetTransaction(ctx context.Context, txid string) (*entities.ChainTransaction, error) {
	var tx rpcTransaction
	found, err := c.call(ctx, url.Values{
		"action": {"eth_getTransactionByHash"},
		"txhash": {txid},
	}, &tx)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, apperrors.NotFound("transaction %s not found", txid)
	}
	// Pending transactions have no block yet
	if tx.BlockNumber == nil || *tx.BlockNumber == "" {
		return nil, apperrors.NotFound("transaction %s is not mined yet", txid)
	}

	value, err := weiToETH(tx.Value)
	if err != nil {
		return nil, apperrors.Upstream(err, "invalid value for transaction %s", txid)
	}

	var block rpcBlock
	found, err = c.call(ctx, url.Values{
		"action":  {"eth_getBlockByNumber"},
		"tag":     {*tx.BlockNumber},
		"boolean": {"false"},
	}, &block)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, apperrors.NotFound("block %s not found", *tx.BlockNumber)
	}

	seconds, err := parseHexInt(block.Timestamp)
	if err != nil {
		return nil, apperrors.Upstream(err, "invalid timestamp for block %s", *tx.BlockNumber)
	}

	result := &entities.ChainTransaction{
		Hash:        tx.Hash,
		From:        tx.From,
		Value:       value,
		BlockNumber: *tx.BlockNumber,
		BlockTime:   time.Unix(seconds, 0).UTC(),
	}
	if tx.To != nil {
		result.To = *tx.To
	}

	log.WithFields(log.Fields{
		"txid":        txid,
		"blockNumber": result.BlockNumber,
		"value":       result.Value.String(),
	}).Debug("Fetched transaction from Etherscan")
	return result, nil
}

// call performs one proxy request. It returns false when the result is null.
func (c *Client) call(ctx context.Context, params url.Values, out any) (bool, error) {
	params.Set("module", "proxy")
	if c.apiKey != "" {
		params.Set("apikey", c.apiKey)
	}
	action := params.Get("action")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return false, apperrors.Upstream(err, "failed to create %s request", action)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return false, apperrors.Upstream(err, "%s request failed", action)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return false, apperrors.Upstream(err, "failed to read %s response", action)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return false, apperrors.Upstream(nil, "%s returned status %d", action, resp.StatusCode)
	}

	var envelope rpcResponse
	if err := json.Unmarshal(body, &envelope); err != nil {
		return false, apperrors.Upstream(err, "failed to decode %s response", action)
	}
	if envelope.Error != nil {
		return false, apperrors.Upstream(nil, "%s failed: %s", action, envelope.Error.Message)
	}

	result := bytes.TrimSpace(envelope.Result)
	if len(result) == 0 || bytes.Equal(result, []byte("null")) {
		return false, nil
	}
	if result[0] == '"' {
		// Rate limits and bad keys come back as a string result
		var message string
		_ = json.Unmarshal(result, &message)
		return false, apperrors.Upstream(nil, "%s rejected: %s", action, message)
	}

	if err := json.Unmarshal(result, out); err != nil {
		return false, apperrors.Upstream(err, "failed to decode %s result", action)
	}
	return true, nil
}

// weiToETH converts a 0x-prefixed hex wei amount to an exact ETH decimal
func weiToETH(hexWei string) (decimal.Decimal, error) {
	digits := strings.TrimPrefix(strings.TrimPrefix(hexWei, "0x"), "0X")
	if digits == "" {
		return decimal.Zero, nil
	}
	wei, ok := new(big.Int).SetString(digits, 16)
	if !ok {
		return decimal.Zero, fmt.Errorf("invalid hex amount %q", hexWei)
	}
	return decimal.NewFromBigInt(wei, weiExponent), nil
}

func parseHexInt(value string) (int64, error) {
	digits := strings.TrimPrefix(strings.TrimPrefix(value, "0x"), "0X")
	return strconv.ParseInt(digits, 16, 64)
}
