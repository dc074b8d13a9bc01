package main

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/require"
	httpinterface "github.com/tdex-network/tdex-escrow/internal/interfaces/http"
)

func withTempState(t *testing.T) {
	dir, path := escrowDataDir, statePath
	escrowDataDir = t.TempDir()
	statePath = filepath.Join(escrowDataDir, "state.json")
	t.Cleanup(func() {
		escrowDataDir, statePath = dir, path
	})
}

func TestState(t *testing.T) {
	withTempState(t)

	_, err := getState()
	require.Error(t, err)

	require.NoError(t, setState(map[string]string{rpcServerKey: "http://localhost:9945"}))
	require.NoError(t, setState(map[string]string{keyFileKey: "/tmp/key"}))

	state, err := getState()
	require.NoError(t, err)
	require.Equal(t, map[string]string{
		rpcServerKey: "http://localhost:9945",
		keyFileKey:   "/tmp/key",
	}, state)
}

func TestGetClient(t *testing.T) {
	withTempState(t)

	_, err := getClient(false)
	require.Error(t, err)

	require.NoError(t, setState(map[string]string{rpcServerKey: "http://localhost:9945/"}))
	c, err := getClient(false)
	require.NoError(t, err)
	require.Equal(t, "http://localhost:9945", c.baseURL)
	require.Nil(t, c.key)

	_, err = getClient(true)
	require.Error(t, err)

	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	keyFile := filepath.Join(t.TempDir(), "key")
	require.NoError(t, crypto.SaveECDSA(keyFile, key))
	require.NoError(t, setState(map[string]string{keyFileKey: keyFile}))

	c, err = getClient(true)
	require.NoError(t, err)
	require.Equal(t, crypto.PubkeyToAddress(key.PublicKey).Hex(), signerAddress(c))
}

func TestSignedRequest(t *testing.T) {
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	signer := crypto.PubkeyToAddress(key.PublicKey)

	var caller common.Address
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		ts, _ := strconv.ParseInt(r.Header.Get(httpinterface.TimestampHeader), 10, 64)
		addr, err := httpinterface.RecoverCaller(
			r.Header.Get(httpinterface.SignatureHeader), r.Method, r.URL.Path, ts, body,
		)
		if err != nil {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		caller = addr
		_ = json.NewEncoder(w).Encode(httpinterface.ProposeTradeResponse{TradeID: 3})
	}))
	defer srv.Close()

	c := newClient(srv.URL, key)
	resp, err := c.post("/v1/trades", httpinterface.ProposeTradeRequest{Buyer: signer.Hex()})
	require.NoError(t, err)
	require.Equal(t, signer, caller)

	var out httpinterface.ProposeTradeResponse
	require.NoError(t, json.Unmarshal(resp, &out))
	require.Equal(t, uint64(3), out.TradeID)
}

func TestFailingRequest(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v1/trades/9":
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"error":"trade not found"}`))
		default:
			w.WriteHeader(http.StatusInternalServerError)
		}
	}))
	defer srv.Close()

	c := newClient(srv.URL, nil)

	_, err := c.get("/v1/trades/9", nil)
	require.EqualError(t, err, "trade not found (404)")

	_, err = c.get("/v1/info", nil)
	require.EqualError(t, err, "request failed with status 500")
}
