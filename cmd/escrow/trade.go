package main

import (
	"fmt"
	"net/url"
	"strconv"

	httpinterface "github.com/tdex-network/tdex-escrow/internal/interfaces/http"
	"github.com/urfave/cli/v2"
)

var (
	tradeIDFlag = cli.Uint64Flag{
		Name:     "id",
		Usage:    "the id of the trade",
		Required: true,
	}
)

var propose = cli.Command{
	Name:  "propose",
	Usage: "propose a trade of a buyer token for a seller token",
	Flags: []cli.Flag{
		&cli.StringFlag{Name: "seller", Usage: "the counterparty address", Required: true},
		&cli.StringFlag{Name: "buyer_collection", Usage: "the collection of the offered token", Required: true},
		&cli.StringFlag{Name: "buyer_token", Usage: "the id of the offered token", Required: true},
		&cli.StringFlag{Name: "seller_collection", Usage: "the collection of the wanted token", Required: true},
		&cli.StringFlag{Name: "seller_token", Usage: "the id of the wanted token", Required: true},
		&cli.StringFlag{Name: "value", Usage: "the value paid for the proposal", Required: true},
		&cli.StringFlag{Name: "buyer", Usage: "the buyer address, defaults to the signer"},
		&cli.StringFlag{Name: "payment_ref", Usage: "the hash of the transaction paying the value to the escrow"},
	},
	Action: proposeAction,
}

var execute = cli.Command{
	Name:   "execute",
	Usage:  "execute a pending trade as its seller",
	Flags:  []cli.Flag{&tradeIDFlag},
	Action: executeAction,
}

var cancel = cli.Command{
	Name:   "cancel",
	Usage:  "cancel a pending trade as its buyer",
	Flags:  []cli.Flag{&tradeIDFlag},
	Action: cancelAction,
}

var trade = cli.Command{
	Name:   "trade",
	Usage:  "get the details of a trade",
	Flags:  []cli.Flag{&tradeIDFlag},
	Action: tradeAction,
}

var trades = cli.Command{
	Name:  "trades",
	Usage: "list trades",
	Flags: []cli.Flag{
		&cli.StringFlag{Name: "buyer", Usage: "filter by buyer address"},
		&cli.StringFlag{Name: "seller", Usage: "filter by seller address"},
		&cli.StringFlag{Name: "status", Usage: "filter by status: PENDING, EXPIRED, EXECUTED or FEE_RECLAIMED"},
		&cli.IntFlag{Name: "page", Usage: "the page number"},
		&cli.IntFlag{Name: "page_size", Usage: "the number of trades per page"},
	},
	Action: tradesAction,
}

func proposeAction(ctx *cli.Context) error {
	client, err := getClient(true)
	if err != nil {
		return err
	}

	buyer := ctx.String("buyer")
	if buyer == "" {
		buyer = signerAddress(client)
	}

	resp, err := client.post("/v1/trades", httpinterface.ProposeTradeRequest{
		Buyer:            buyer,
		Seller:           ctx.String("seller"),
		BuyerCollection:  ctx.String("buyer_collection"),
		SellerCollection: ctx.String("seller_collection"),
		BuyerTokenID:     ctx.String("buyer_token"),
		SellerTokenID:    ctx.String("seller_token"),
		PaidValue:        ctx.String("value"),
		PaymentRef:       ctx.String("payment_ref"),
	})
	if err != nil {
		return err
	}

	printRespJSON(resp)
	return nil
}

func executeAction(ctx *cli.Context) error {
	return tradeCall(ctx, "execute")
}

func cancelAction(ctx *cli.Context) error {
	return tradeCall(ctx, "cancel")
}

func tradeCall(ctx *cli.Context, action string) error {
	client, err := getClient(true)
	if err != nil {
		return err
	}

	resp, err := client.post(
		fmt.Sprintf("/v1/trades/%d/%s", ctx.Uint64("id"), action), nil,
	)
	if err != nil {
		return err
	}

	printRespJSON(resp)
	return nil
}

func tradeAction(ctx *cli.Context) error {
	client, err := getClient(false)
	if err != nil {
		return err
	}

	resp, err := client.get(fmt.Sprintf("/v1/trades/%d", ctx.Uint64("id")), nil)
	if err != nil {
		return err
	}

	printRespJSON(resp)
	return nil
}

func tradesAction(ctx *cli.Context) error {
	client, err := getClient(false)
	if err != nil {
		return err
	}

	query := url.Values{}
	for _, key := range []string{"buyer", "seller", "status"} {
		if v := ctx.String(key); v != "" {
			query.Set(key, v)
		}
	}
	for _, key := range []string{"page", "page_size"} {
		if v := ctx.Int(key); v > 0 {
			query.Set(key, strconv.Itoa(v))
		}
	}

	resp, err := client.get("/v1/trades", query)
	if err != nil {
		return err
	}

	printRespJSON(resp)
	return nil
}
