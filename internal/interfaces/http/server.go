package httpinterface

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
	"github.com/tdex-network/tdex-escrow/internal/core/application/escrow"
	"github.com/tdex-network/tdex-escrow/internal/core/domain"
	"github.com/tdex-network/tdex-escrow/internal/infrastructure/metrics"
	"github.com/tdex-network/tdex-escrow/internal/interfaces"
)

const (
	DefaultMaxSkew = 5 * time.Minute

	shutdownTimeout = 5 * time.Second
)

// EscrowService is the registry exposed by the server.
type EscrowService interface {
	ProposeTrade(ctx context.Context, caller common.Address, args escrow.ProposeArgs) (uint64, error)
	ExecuteTrade(ctx context.Context, caller common.Address, tradeID uint64) error
	CancelProposedTrade(ctx context.Context, caller common.Address, tradeID uint64) error
	ReclaimFees(ctx context.Context, caller common.Address, tradeIDs []uint64) ([]uint64, error)
	GetProposedTrade(ctx context.Context, tradeID uint64) (*escrow.TradeInfo, error)
	ListTrades(ctx context.Context, filter domain.TradeFilter, page domain.Page) ([]escrow.TradeInfo, error)
	GetRegistryInfo(ctx context.Context) (*escrow.RegistryInfo, error)
	TransferOut(ctx context.Context, caller common.Address) (decimal.Decimal, error)
	SetAdmin(ctx context.Context, caller, newAdmin common.Address) error
}

type ServiceOpts struct {
	Address   string
	EscrowSvc EscrowService
	// Metrics is optional, /metrics is not served if nil.
	Metrics *metrics.Collector
	MaxSkew time.Duration
}

func (o ServiceOpts) validate() error {
	if o.Address == "" {
		return fmt.Errorf("missing listening address")
	}
	if o.EscrowSvc == nil {
		return fmt.Errorf("escrow app service must not be null")
	}
	if o.MaxSkew < 0 {
		return fmt.Errorf("max skew must not be negative")
	}
	return nil
}

type Server struct {
	opts    ServiceOpts
	svc     EscrowService
	metrics *metrics.Collector
	maxSkew time.Duration
	now     func() time.Time
	replays *replayGuard

	engine *gin.Engine
	server *http.Server
}

func NewService(opts ServiceOpts) (*Server, error) {
	if err := opts.validate(); err != nil {
		return nil, fmt.Errorf("invalid opts: %s", err)
	}

	maxSkew := opts.MaxSkew
	if maxSkew == 0 {
		maxSkew = DefaultMaxSkew
	}

	s := &Server{
		opts:    opts,
		svc:     opts.EscrowSvc,
		metrics: opts.Metrics,
		maxSkew: maxSkew,
		now:     time.Now,
		replays: newReplayGuard(maxSkew),
	}
	s.engine = s.newEngine()
	return s, nil
}

var _ interfaces.Service = (*Server)(nil)

// Handler returns the root handler of the API.
func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:              s.opts.Address,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := s.server.ListenAndServe(); err != nil &&
			err != http.ErrServerClosed {
			log.WithError(err).Error("http server stopped unexpectedly")
		}
	}()

	log.Infof("escrow interface is listening on %s", s.opts.Address)
	return nil
}

func (s *Server) Stop() {
	if s.server == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	//nolint
	s.server.Shutdown(ctx)
	log.Info("stopped escrow interface")
}

func (s *Server) newEngine() *gin.Engine {
	engine := gin.New()
	engine.Use(gin.Recovery(), s.logRequest)

	v1 := engine.Group("/v1")
	v1.GET("/trades", s.listTrades)
	v1.GET("/trades/:id", s.getTrade)
	v1.GET("/info", s.getInfo)

	auth := v1.Group("", s.authenticate)
	auth.POST("/trades", s.proposeTrade)
	auth.POST("/trades/:id/execute", s.executeTrade)
	auth.POST("/trades/:id/cancel", s.cancelTrade)
	auth.POST("/fees/reclaim", s.reclaimFees)
	auth.POST("/admin/transfer-out", s.transferOut)
	auth.PUT("/admin", s.setAdmin)

	if s.metrics != nil {
		engine.GET("/metrics", gin.WrapH(s.metrics.Handler()))
	}
	return engine
}

func (s *Server) logRequest(c *gin.Context) {
	start := time.Now()
	c.Next()

	path := c.FullPath()
	if path == "" {
		path = "unmatched"
	}
	elapsed := time.Since(start)
	status := c.Writer.Status()

	if s.metrics != nil {
		s.metrics.ObserveRequest(c.Request.Method, path, status, elapsed)
	}
	log.Debugf("%s %s %d %s", c.Request.Method, path, status, elapsed)
}
