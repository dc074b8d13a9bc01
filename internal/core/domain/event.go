package domain

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
)

// EventType identifies an observable registry event.
type EventType string

const (
	EventTradeProposed       EventType = "TRADE_PROPOSED"
	EventTradeExecuted       EventType = "TRADE_EXECUTED"
	EventTradeCancelled      EventType = "TRADE_CANCELLED"
	EventFeeReclaimed        EventType = "FEE_RECLAIMED"
	EventAdminChanged        EventType = "ADMIN_CHANGED"
	EventFundsTransferredOut EventType = "FUNDS_TRANSFERRED_OUT"
)

// Event is emitted once the operation that produced it is committed.
type Event struct {
	Type    EventType
	TradeID uint64
	Height  int64
	// Account is the counterparty receiving value or a role, if any.
	Account common.Address
	Amount  decimal.Decimal
}

// TradeEvent returns an event related to a trade.
func TradeEvent(eventType EventType, tradeID uint64, height int64) Event {
	return Event{Type: eventType, TradeID: tradeID, Height: height}
}
