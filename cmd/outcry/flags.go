// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	cli "gopkg.in/urfave/cli.v1"
)

var (
	dataDirFlag = cli.StringFlag{
		Name:  "data-dir",
		Value: defaultDataDir(),
		Usage: "directory for domain databases",
	}
	apiAddrFlag = cli.StringFlag{
		Name:  "api-addr",
		Value: "localhost:8669",
		Usage: "API service listening address",
	}
	apiCorsFlag = cli.StringFlag{
		Name:  "api-cors",
		Value: "",
		Usage: "comma separated list of domains from which to accept cross origin requests to API",
	}
	apiTimeoutFlag = cli.IntFlag{
		Name:  "api-timeout",
		Value: 10000,
		Usage: "API request timeout value in milliseconds",
	}
	verbosityFlag = cli.IntFlag{
		Name:  "verbosity",
		Value: 3,
		Usage: "log verbosity (0-9)",
	}
	genesisFlag = cli.StringFlag{
		Name:  "genesis",
		Usage: "YAML file listing pre-funded accounts, devnet accounts are used if not set",
	}
	ephemeralOfflineFlag = cli.BoolFlag{
		Name:  "ephemeral-offline",
		Usage: "start with the ephemeral domain unavailable",
	}
	ntpServerFlag = cli.StringFlag{
		Name:  "ntp-server",
		Value: "pool.ntp.org",
		Usage: "NTP server used to check the local clock, empty to disable",
	}
	persistFlag = cli.BoolFlag{
		Name:  "persist",
		Usage: "devnet saves data to disk",
	}
	sellerFlag = cli.StringFlag{
		Name:  "seller",
		Usage: "seller address",
	}
	assetFlag = cli.StringFlag{
		Name:  "asset",
		Usage: "asset address",
	}
	bidderFlag = cli.StringFlag{
		Name:  "bidder",
		Usage: "bidder address, derives the deposit and session accounts",
	}
	importKeyFlag = cli.BoolFlag{
		Name:  "import",
		Usage: "import validator key from keystore",
	}
	exportKeyFlag = cli.BoolFlag{
		Name:  "export",
		Usage: "export validator key as keystore",
	}
)
