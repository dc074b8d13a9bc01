package httpinterface

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"github.com/tdex-network/tdex-escrow/internal/core/domain"
)

var errorStatuses = []struct {
	err    error
	status int
}{
	{domain.ErrUnauthorized, http.StatusForbidden},
	{domain.ErrTradeNotFound, http.StatusNotFound},
	{domain.ErrInsufficientFee, http.StatusBadRequest},
	{domain.ErrInvalidTrade, http.StatusBadRequest},
	{domain.ErrInvalidAdmin, http.StatusBadRequest},
	{domain.ErrBatchTooLarge, http.StatusBadRequest},
	{domain.ErrPaymentAlreadyUsed, http.StatusConflict},
	{domain.ErrTradeExpired, http.StatusConflict},
	{domain.ErrTradeAlreadyExecuted, http.StatusConflict},
	{domain.ErrTransferVerificationFailed, http.StatusBadGateway},
	{domain.ErrTransferFailed, http.StatusBadGateway},
	{domain.ErrSettlementFailed, http.StatusBadGateway},
}

func statusFromError(err error) int {
	for _, e := range errorStatuses {
		if errors.Is(err, e.err) {
			return e.status
		}
	}
	return http.StatusInternalServerError
}

func handleError(c *gin.Context, err error) {
	status := statusFromError(err)
	if status == http.StatusInternalServerError {
		log.WithError(err).Errorf("%s %s", c.Request.Method, c.FullPath())
	}
	abortWithError(c, status, err)
}

func abortWithError(c *gin.Context, status int, err error) {
	c.AbortWithStatusJSON(status, errorResponse{Error: err.Error()})
}
