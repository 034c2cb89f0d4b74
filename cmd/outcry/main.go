// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/ethereum/go-ethereum/accounts/keystore"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/google/uuid"
	"github.com/mattn/go-isatty"
	"github.com/meterio/outcry/api"
	"github.com/meterio/outcry/cmd/outcry/node"
	"github.com/meterio/outcry/genesis"
	"github.com/meterio/outcry/kv"
	"github.com/meterio/outcry/logdb"
	"github.com/meterio/outcry/meter"
	"github.com/meterio/outcry/script/outcry"
	"github.com/pkg/errors"
	cli "gopkg.in/urfave/cli.v1"
)

var (
	version   string
	gitCommit string
	gitTag    string
	logger    = slog.Default()
)

func fullVersion() string {
	versionMeta := "release"
	if gitTag == "" {
		versionMeta = "dev"
	}
	return fmt.Sprintf("%s-%s-%s", version, gitCommit, versionMeta)
}

func main() {
	app := cli.App{
		Version:   fullVersion(),
		Name:      "Outcry",
		Usage:     "Node of the outcry auction program",
		Copyright: "2020 Meter Foundation <https://meter.io/>",
		Flags: []cli.Flag{
			dataDirFlag,
			genesisFlag,
			apiAddrFlag,
			apiCorsFlag,
			apiTimeoutFlag,
			verbosityFlag,
			ephemeralOfflineFlag,
			ntpServerFlag,
		},
		Action: defaultAction,
		Commands: []cli.Command{
			{
				Name:  "devnet",
				Usage: "run a single node on the devnet genesis",
				Flags: []cli.Flag{
					dataDirFlag,
					apiAddrFlag,
					apiCorsFlag,
					apiTimeoutFlag,
					persistFlag,
					verbosityFlag,
					ephemeralOfflineFlag,
				},
				Action: devnetAction,
			},
			{
				Name:  "derive",
				Usage: "print the program derived accounts of an auction",
				Flags: []cli.Flag{
					sellerFlag,
					assetFlag,
					bidderFlag,
				},
				Action: deriveAction,
			},
			{
				Name:  "validator-key",
				Usage: "import and export validator key",
				Flags: []cli.Flag{
					dataDirFlag,
					importKeyFlag,
					exportKeyFlag,
				},
				Action: validatorKeyAction,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func defaultAction(ctx *cli.Context) error {
	defer func() { logger.Info("exited") }()

	initLogger(ctx)
	gene := selectGenesis(ctx)
	instanceDir := makeInstanceDir(ctx, gene)

	mainDB := openMainDB(instanceDir)
	defer func() { logger.Info("closing main database..."); mainDB.Close() }()

	logDB := openLogDB(instanceDir)
	defer func() { logger.Info("closing log database..."); logDB.Close() }()

	return runNode(ctx, gene, mainDB, logDB, instanceDir, ctx.String(ntpServerFlag.Name))
}

func devnetAction(ctx *cli.Context) error {
	defer func() { logger.Info("exited") }()

	initLogger(ctx)
	gene := genesis.NewDevnet()

	var (
		mainDB      kv.GetPutter
		logDB       *logdb.LogDB
		instanceDir string
	)
	if ctx.Bool(persistFlag.Name) {
		instanceDir = makeInstanceDir(ctx, gene)
		db := openMainDB(instanceDir)
		defer func() { logger.Info("closing main database..."); db.Close() }()
		mainDB = db
		logDB = openLogDB(instanceDir)
	} else {
		instanceDir = "Memory"
		db := openMemMainDB()
		defer db.Close()
		mainDB = db
		logDB = openMemLogDB()
	}
	defer func() { logger.Info("closing log database..."); logDB.Close() }()

	printDevAccounts()
	return runNode(ctx, gene, mainDB, logDB, instanceDir, "")
}

func runNode(ctx *cli.Context, gene *genesis.Genesis, db kv.GetPutter, logDB *logdb.LogDB, instanceDir string, ntpServer string) error {
	key, err := loadOrGeneratePrivateKey(validatorKeyPath(ctx))
	if err != nil {
		fatal("load or generate validator key:", err)
	}

	n, err := node.New(db, node.Options{
		Genesis:   gene,
		Validator: key,
		LogDB:     logDB,
		NTPServer: ntpServer,
	})
	if err != nil {
		return err
	}
	if ctx.Bool(ephemeralOfflineFlag.Name) {
		n.Ephemeral().SetAvailable(false)
	}

	apiHandler, apiCloser := api.New(n, ctx.String(apiCorsFlag.Name))
	defer func() { logger.Info("closing API..."); apiCloser() }()

	apiURL, srvCloser := startAPIServer(ctx, apiHandler)
	defer func() { logger.Info("stopping API server..."); srvCloser() }()

	printStartupMessage(gene, n, instanceDir, apiURL)

	return n.Run(handleExitSignal())
}

func parseAddressFlag(ctx *cli.Context, flag cli.StringFlag) (meter.Address, error) {
	s := ctx.String(flag.Name)
	if s == "" {
		return meter.Address{}, fmt.Errorf("missing flag %s", flag.Name)
	}
	addr, err := meter.ParseAddress(s)
	if err != nil {
		return meter.Address{}, errors.WithMessage(err, flag.Name)
	}
	return addr, nil
}

func deriveAction(ctx *cli.Context) error {
	seller, err := parseAddressFlag(ctx, sellerFlag)
	if err != nil {
		return err
	}
	asset, err := parseAddressFlag(ctx, assetFlag)
	if err != nil {
		return err
	}

	auction, auctionBump, err := outcry.AuctionAddress(seller, asset)
	if err != nil {
		return err
	}
	vault, vaultBump, err := outcry.VaultAddress(auction)
	if err != nil {
		return err
	}
	fmt.Printf("auction  %v (bump %d)\n", auction, auctionBump)
	fmt.Printf("vault    %v (bump %d)\n", vault, vaultBump)

	if ctx.String(bidderFlag.Name) == "" {
		return nil
	}
	bidder, err := parseAddressFlag(ctx, bidderFlag)
	if err != nil {
		return err
	}
	deposit, depositBump, err := outcry.DepositAddress(auction, bidder)
	if err != nil {
		return err
	}
	session, sessionBump, err := outcry.SessionAddress(auction, bidder)
	if err != nil {
		return err
	}
	fmt.Printf("deposit  %v (bump %d)\n", deposit, depositBump)
	fmt.Printf("session  %v (bump %d)\n", session, sessionBump)
	return nil
}

func validatorKeyAction(ctx *cli.Context) error {
	hasImportFlag := ctx.Bool(importKeyFlag.Name)
	hasExportFlag := ctx.Bool(exportKeyFlag.Name)
	if hasImportFlag && hasExportFlag {
		return fmt.Errorf("flag %s and %s are exclusive", importKeyFlag.Name, exportKeyFlag.Name)
	}
	if !hasImportFlag && !hasExportFlag {
		return fmt.Errorf("missing flag, either %s or %s", importKeyFlag.Name, exportKeyFlag.Name)
	}

	if hasImportFlag {
		if isatty.IsTerminal(os.Stdin.Fd()) {
			fmt.Println("Input JSON keystore (end with ^d):")
		}
		keyjson, err := io.ReadAll(os.Stdin)
		if err != nil {
			return err
		}
		if err := json.Unmarshal(keyjson, &map[string]interface{}{}); err != nil {
			return errors.WithMessage(err, "unmarshal")
		}
		password, err := readPasswordFromNewTTY("Enter passphrase: ")
		if err != nil {
			return err
		}
		key, err := keystore.DecryptKey(keyjson, password)
		if err != nil {
			return errors.WithMessage(err, "decrypt")
		}
		if err := crypto.SaveECDSA(validatorKeyPath(ctx), key.PrivateKey); err != nil {
			return err
		}
		fmt.Println("Validator key imported:", meter.Address(key.Address))
		return nil
	}

	validatorKey, err := loadOrGeneratePrivateKey(validatorKeyPath(ctx))
	if err != nil {
		return err
	}
	password, err := readPasswordFromNewTTY("Enter passphrase: ")
	if err != nil {
		return err
	}
	if password == "" {
		return errors.New("non-empty passphrase required")
	}
	confirm, err := readPasswordFromNewTTY("Confirm passphrase: ")
	if err != nil {
		return err
	}
	if password != confirm {
		return errors.New("passphrase confirmation mismatch")
	}

	keyjson, err := keystore.EncryptKey(&keystore.Key{
		PrivateKey: validatorKey,
		Address:    crypto.PubkeyToAddress(validatorKey.PublicKey),
		Id:         uuid.New()},
		password, keystore.StandardScryptN, keystore.StandardScryptP)
	if err != nil {
		return err
	}
	if isatty.IsTerminal(os.Stdout.Fd()) {
		fmt.Println("=== JSON keystore ===")
	}
	_, err = fmt.Println(string(keyjson))
	return err
}
