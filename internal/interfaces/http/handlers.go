package httpinterface

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gin-gonic/gin"
	"github.com/tdex-network/tdex-escrow/internal/core/domain"
)

func (s *Server) proposeTrade(c *gin.Context) {
	var req ProposeTradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, err)
		return
	}
	args, err := req.toArgs()
	if err != nil {
		abortWithError(c, http.StatusBadRequest, err)
		return
	}

	tradeID, err := s.svc.ProposeTrade(c.Request.Context(), callerFromContext(c), args)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, ProposeTradeResponse{tradeID})
}

func (s *Server) executeTrade(c *gin.Context) {
	tradeID, ok := parseTradeID(c)
	if !ok {
		return
	}
	if err := s.svc.ExecuteTrade(
		c.Request.Context(), callerFromContext(c), tradeID,
	); err != nil {
		handleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) cancelTrade(c *gin.Context) {
	tradeID, ok := parseTradeID(c)
	if !ok {
		return
	}
	if err := s.svc.CancelProposedTrade(
		c.Request.Context(), callerFromContext(c), tradeID,
	); err != nil {
		handleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) reclaimFees(c *gin.Context) {
	var req ReclaimFeesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, err)
		return
	}

	reclaimed, err := s.svc.ReclaimFees(
		c.Request.Context(), callerFromContext(c), req.TradeIDs,
	)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, ReclaimFeesResponse{reclaimed})
}

func (s *Server) getTrade(c *gin.Context) {
	tradeID, ok := parseTradeID(c)
	if !ok {
		return
	}
	info, err := s.svc.GetProposedTrade(c.Request.Context(), tradeID)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, newTrade(*info))
}

func (s *Server) listTrades(c *gin.Context) {
	filter := domain.TradeFilter{}
	for key, dst := range map[string]*common.Address{
		"buyer": &filter.Buyer, "seller": &filter.Seller,
	} {
		v := c.Query(key)
		if v == "" {
			continue
		}
		if !common.IsHexAddress(v) {
			abortWithError(c, http.StatusBadRequest, fmt.Errorf("invalid %s address", key))
			return
		}
		*dst = common.HexToAddress(v)
	}
	if v := c.Query("status"); v != "" {
		filter.Status = domain.ParseTradeStatus(v)
		if filter.Status == domain.TradeStatusUndefined {
			abortWithError(c, http.StatusBadRequest, fmt.Errorf("invalid status %q", v))
			return
		}
	}

	pageNumber, _ := strconv.Atoi(c.Query("page"))
	pageSize, _ := strconv.Atoi(c.Query("page_size"))
	page := domain.NewPage(pageNumber, pageSize)

	infos, err := s.svc.ListTrades(c.Request.Context(), filter, page)
	if err != nil {
		handleError(c, err)
		return
	}

	trades := make([]Trade, 0, len(infos))
	for _, info := range infos {
		trades = append(trades, newTrade(info))
	}
	c.JSON(http.StatusOK, ListTradesResponse{trades})
}

func (s *Server) getInfo(c *gin.Context) {
	info, err := s.svc.GetRegistryInfo(c.Request.Context())
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, RegistryInfo{
		NextID:           info.NextID,
		ExpirationWindow: info.ExpirationWindow,
		Fee:              info.Fee.String(),
		Admin:            info.Admin.Hex(),
		Balance:          info.Balance.String(),
		CurrentHeight:    info.CurrentHeight,
	})
}

func (s *Server) transferOut(c *gin.Context) {
	amount, err := s.svc.TransferOut(c.Request.Context(), callerFromContext(c))
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, TransferOutResponse{amount.String()})
}

func (s *Server) setAdmin(c *gin.Context) {
	var req SetAdminRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, err)
		return
	}
	if !common.IsHexAddress(req.Admin) {
		abortWithError(c, http.StatusBadRequest, fmt.Errorf("invalid admin address"))
		return
	}

	if err := s.svc.SetAdmin(
		c.Request.Context(), callerFromContext(c), common.HexToAddress(req.Admin),
	); err != nil {
		handleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func parseTradeID(c *gin.Context) (uint64, bool) {
	tradeID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Errorf("invalid trade id"))
		return 0, false
	}
	return tradeID, true
}
