package httpinterface

import (
	"bytes"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/gin-gonic/gin"
)

const (
	TimestampHeader = "X-Escrow-Timestamp"
	SignatureHeader = "X-Escrow-Signature"

	callerKey = "caller"
)

var (
	ErrMissingAuth      = errors.New("missing authentication headers")
	ErrInvalidTimestamp = errors.New("invalid or stale timestamp")
	ErrInvalidSignature = errors.New("invalid signature")
	ErrReplayedRequest  = errors.New("signed request already served")
)

// SigningPayload returns the message signed by the caller of an
// authenticated request.
func SigningPayload(method, path string, timestamp int64, body []byte) []byte {
	return []byte(strings.Join([]string{
		strings.ToUpper(method),
		path,
		strconv.FormatInt(timestamp, 10),
		hexutil.Encode(crypto.Keccak256(body)),
	}, "\n"))
}

// SignRequest returns the hex encoded personal signature of the request.
func SignRequest(
	key *ecdsa.PrivateKey, method, path string, timestamp int64, body []byte,
) (string, error) {
	hash := accounts.TextHash(SigningPayload(method, path, timestamp, body))
	sig, err := crypto.Sign(hash, key)
	if err != nil {
		return "", err
	}
	sig[crypto.RecoveryIDOffset] += 27
	return hexutil.Encode(sig), nil
}

// RecoverCaller returns the address that produced the given signature of
// the request.
func RecoverCaller(
	signature, method, path string, timestamp int64, body []byte,
) (common.Address, error) {
	sig, err := hexutil.Decode(signature)
	if err != nil || len(sig) != crypto.SignatureLength {
		return common.Address{}, ErrInvalidSignature
	}
	if sig[crypto.RecoveryIDOffset] >= 27 {
		sig[crypto.RecoveryIDOffset] -= 27
	}

	hash := accounts.TextHash(SigningPayload(method, path, timestamp, body))
	pubkey, err := crypto.SigToPub(hash, sig)
	if err != nil {
		return common.Address{}, ErrInvalidSignature
	}
	return crypto.PubkeyToAddress(*pubkey), nil
}

// authenticate resolves the caller of the request from its signature and
// makes it available to handlers. A signed request is served at most once.
func (s *Server) authenticate(c *gin.Context) {
	tsHeader := c.GetHeader(TimestampHeader)
	sigHeader := c.GetHeader(SignatureHeader)
	if tsHeader == "" || sigHeader == "" {
		abortWithError(c, http.StatusUnauthorized, ErrMissingAuth)
		return
	}

	timestamp, err := strconv.ParseInt(tsHeader, 10, 64)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, ErrInvalidTimestamp)
		return
	}
	skew := s.now().Sub(time.Unix(timestamp, 0))
	if skew < 0 {
		skew = -skew
	}
	if skew > s.maxSkew {
		abortWithError(c, http.StatusUnauthorized, ErrInvalidTimestamp)
		return
	}

	var body []byte
	if c.Request.Body != nil {
		body, err = io.ReadAll(c.Request.Body)
		if err != nil {
			abortWithError(c, http.StatusBadRequest, fmt.Errorf("failed to read body: %w", err))
			return
		}
		c.Request.Body = io.NopCloser(bytes.NewReader(body))
	}

	caller, err := RecoverCaller(
		sigHeader, c.Request.Method, c.Request.URL.Path, timestamp, body,
	)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, err)
		return
	}

	payload := SigningPayload(c.Request.Method, c.Request.URL.Path, timestamp, body)
	if !s.replays.markSeen(caller, payload, time.Unix(timestamp, 0), s.now()) {
		abortWithError(c, http.StatusUnauthorized, ErrReplayedRequest)
		return
	}

	c.Set(callerKey, caller)
	c.Next()
}

func callerFromContext(c *gin.Context) common.Address {
	v, _ := c.Get(callerKey)
	caller, _ := v.(common.Address)
	return caller
}
