package main

import (
	"bytes"
	"crypto/ecdsa"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/crypto"
	httpinterface "github.com/tdex-network/tdex-escrow/internal/interfaces/http"
)

type client struct {
	baseURL    string
	key        *ecdsa.PrivateKey
	httpClient *http.Client
	now        func() time.Time
}

// getClient returns a client for the daemon in the local state. The signing
// key is loaded only if withKey is true.
func getClient(withKey bool) (*client, error) {
	state, err := getState()
	if err != nil {
		return nil, err
	}
	address, ok := state[rpcServerKey]
	if !ok || address == "" {
		return nil, errors.New("set rpcserver with `config set rpcserver`")
	}

	var key *ecdsa.PrivateKey
	if withKey {
		keyFile := state[keyFileKey]
		if keyFile == "" {
			return nil, errors.New("set key file with `config set key_file`")
		}
		if key, err = crypto.LoadECDSA(keyFile); err != nil {
			return nil, fmt.Errorf("unable to load key: %w", err)
		}
	}

	return newClient(address, key), nil
}

func newClient(baseURL string, key *ecdsa.PrivateKey) *client {
	return &client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		key:        key,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		now:        time.Now,
	}
}

func (c *client) get(path string, query url.Values) ([]byte, error) {
	if len(query) > 0 {
		path += "?" + query.Encode()
	}
	return c.do(http.MethodGet, path, nil)
}

func (c *client) post(path string, body interface{}) ([]byte, error) {
	return c.do(http.MethodPost, path, body)
}

func (c *client) put(path string, body interface{}) ([]byte, error) {
	return c.do(http.MethodPut, path, body)
}

func (c *client) do(method, path string, body interface{}) ([]byte, error) {
	var payload []byte
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		payload = buf
	}

	req, err := http.NewRequest(method, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	if c.key != nil {
		timestamp := c.now().Unix()
		sig, err := httpinterface.SignRequest(
			c.key, method, req.URL.Path, timestamp, payload,
		)
		if err != nil {
			return nil, err
		}
		req.Header.Set(httpinterface.TimestampHeader, strconv.FormatInt(timestamp, 10))
		req.Header.Set(httpinterface.SignatureHeader, sig)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to escrow daemon: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var errResp struct {
			Error string `json:"error"`
		}
		if err := json.Unmarshal(respBody, &errResp); err == nil && errResp.Error != "" {
			return nil, fmt.Errorf("%s (%d)", errResp.Error, resp.StatusCode)
		}
		return nil, fmt.Errorf("request failed with status %d", resp.StatusCode)
	}
	return respBody, nil
}
