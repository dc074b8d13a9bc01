package main

import (
	"fmt"

	"github.com/ethereum/go-ethereum/crypto"
	httpinterface "github.com/tdex-network/tdex-escrow/internal/interfaces/http"
	"github.com/urfave/cli/v2"
)

var info = cli.Command{
	Name:   "info",
	Usage:  "get the registry state",
	Action: infoAction,
}

var reclaim = cli.Command{
	Name:  "reclaim",
	Usage: "refund the fees of expired trades to their buyers",
	Flags: []cli.Flag{
		&cli.Int64SliceFlag{Name: "id", Usage: "the id of an expired trade", Required: true},
	},
	Action: reclaimAction,
}

var transferout = cli.Command{
	Name:   "transferout",
	Usage:  "move the whole registry balance to the admin",
	Action: transferOutAction,
}

var setadmin = cli.Command{
	Name:  "setadmin",
	Usage: "hand the admin role over to another address",
	Flags: []cli.Flag{
		&cli.StringFlag{Name: "address", Usage: "the new admin", Required: true},
	},
	Action: setAdminAction,
}

func infoAction(ctx *cli.Context) error {
	client, err := getClient(false)
	if err != nil {
		return err
	}

	resp, err := client.get("/v1/info", nil)
	if err != nil {
		return err
	}

	printRespJSON(resp)
	return nil
}

func reclaimAction(ctx *cli.Context) error {
	client, err := getClient(true)
	if err != nil {
		return err
	}

	ids := make([]uint64, 0)
	for _, id := range ctx.Int64Slice("id") {
		if id < 0 {
			return fmt.Errorf("invalid trade id %d", id)
		}
		ids = append(ids, uint64(id))
	}

	resp, err := client.post("/v1/fees/reclaim", httpinterface.ReclaimFeesRequest{
		TradeIDs: ids,
	})
	if err != nil {
		return err
	}

	printRespJSON(resp)
	return nil
}

func transferOutAction(ctx *cli.Context) error {
	client, err := getClient(true)
	if err != nil {
		return err
	}

	resp, err := client.post("/v1/admin/transfer-out", nil)
	if err != nil {
		return err
	}

	printRespJSON(resp)
	return nil
}

func setAdminAction(ctx *cli.Context) error {
	client, err := getClient(true)
	if err != nil {
		return err
	}

	resp, err := client.put("/v1/admin", httpinterface.SetAdminRequest{
		Admin: ctx.String("address"),
	})
	if err != nil {
		return err
	}

	printRespJSON(resp)
	return nil
}

func signerAddress(c *client) string {
	return crypto.PubkeyToAddress(c.key.PublicKey).Hex()
}
