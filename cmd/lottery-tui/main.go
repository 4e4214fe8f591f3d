package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/urfave/cli.v1"
)

func main() {
	// A missing .env is fine; the key may come from the real environment.
	_ = godotenv.Load()

	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	app := cli.NewApp()
	app.Name = "lottery-tui"
	app.Usage = "enter a smart contract lottery from the terminal"
	app.Version = "0.1.0"
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:   "config, c",
			Value:  "config.yaml",
			Usage:  "YAML config file; missing means defaults",
			EnvVar: "LOTTERY_CONFIG",
		},
		cli.StringFlag{
			Name:   "contract",
			Usage:  "lottery contract address",
			EnvVar: "LOTTERY_CONTRACT",
		},
		cli.Int64Flag{
			Name:  "chain-id",
			Usage: "required chain id",
		},
		cli.StringFlag{
			Name:  "wallet-url",
			Usage: "wallet provider WebSocket URL (ws mode)",
		},
		cli.StringFlag{
			Name:  "rpc-url",
			Usage: "node RPC URL; switches to key mode",
		},
	}
	app.Action = runTUI
	app.Commands = []cli.Command{
		{
			Name:   "tui",
			Usage:  "run the interactive client (default)",
			Action: runTUI,
		},
		{
			Name:   "status",
			Usage:  "print the lottery state for the connected account",
			Action: headlessAction(opStatus),
		},
		{
			Name:   "enter",
			Usage:  "enter the lottery, paying the entry fee",
			Action: headlessAction(opEnter),
		},
		{
			Name:   "withdraw",
			Usage:  "withdraw prize money",
			Action: headlessAction(opWithdraw),
		},
		{
			Name:   "assign-winner",
			Usage:  "start winner selection (owner only)",
			Action: headlessAction(opAssignWinner),
		},
	}
	return app
}
