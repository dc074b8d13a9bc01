package main

import (
	"errors"
	"fmt"

	"github.com/urfave/cli/v2"
)

const (
	rpcServerKey = "rpcserver"
	keyFileKey   = "key_file"
)

var (
	rpcFlag = cli.StringFlag{
		Name:  rpcServerKey,
		Usage: "escrowd daemon address",
		Value: "http://localhost:9945",
	}

	keyFileFlag = cli.StringFlag{
		Name:  "keyfile",
		Usage: "path of the hex encoded private key used to sign requests",
	}
)

var config = cli.Command{
	Name:   "config",
	Usage:  "Print local configuration of the escrow CLI",
	Action: configAction,
	Subcommands: []*cli.Command{
		{
			Name:   "set",
			Usage:  "set a <key> <value> in the local state",
			Action: configSetAction,
		},
		{
			Name:   "init",
			Usage:  "initialize the local state with flags",
			Action: configInitAction,
			Flags: []cli.Flag{
				&rpcFlag,
				&keyFileFlag,
			},
		},
	},
}

func configAction(ctx *cli.Context) error {
	state, err := getState()
	if err != nil {
		return err
	}

	for key, value := range state {
		fmt.Println(key + ": " + value)
	}

	return nil
}

func configInitAction(c *cli.Context) error {
	return setState(map[string]string{
		rpcServerKey: c.String(rpcServerKey),
		keyFileKey:   c.String("keyfile"),
	})
}

func configSetAction(c *cli.Context) error {
	if c.NArg() < 2 {
		return errors.New("key and value are missing")
	}

	key := c.Args().Get(0)
	value := c.Args().Get(1)

	if err := setState(map[string]string{key: value}); err != nil {
		return err
	}

	fmt.Printf("%s %s has been set\n", key, value)

	return nil
}
