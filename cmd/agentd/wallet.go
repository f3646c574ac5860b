package main

import (
	"errors"
	"fmt"

	"github.com/AlexZinkM/yield-agent/internal/config"
	"github.com/AlexZinkM/yield-agent/internal/custody"
	"github.com/AlexZinkM/yield-agent/internal/model"
	"github.com/AlexZinkM/yield-agent/internal/registry"
	"github.com/AlexZinkM/yield-agent/wallet"

	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

var userAddressFlag = &cli.StringFlag{
	Name:     "user-address",
	Usage:    "address of the wallet owner",
	Required: true,
}

var walletCmd = cli.Command{
	Name:  "wallet",
	Usage: "manage the wallet registry offline",
	Subcommands: []*cli.Command{
		{
			Name:   "create",
			Usage:  "create a wallet for a user address, or show the existing one",
			Flags:  []cli.Flag{userAddressFlag},
			Action: walletCreateAction,
		},
		{
			Name:   "lookup",
			Usage:  "show the wallet registered for a user address",
			Flags:  []cli.Flag{userAddressFlag},
			Action: walletLookupAction,
		},
		{
			Name:   "list",
			Usage:  "list every registered wallet",
			Action: walletListAction,
		},
		{
			Name:  "migrate",
			Usage: "copy the file registry into a badger registry",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:  "badger-dir",
					Usage: "target badger directory, defaults to REGISTRY_BADGER_DIR",
				},
			},
			Action: walletMigrateAction,
		},
	},
}

func walletCreateAction(c *cli.Context) error {
	cfg := config.Get()

	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	provider, err := newProvider(cfg)
	if err != nil {
		return err
	}

	svc := wallet.NewService(registry.New(store, provider, cfg.NetworkID), wallet.Options{
		StrictAddressValidation: cfg.StrictAddressValidation,
	})
	resp, err := svc.Create(c.Context, c.String("user-address"))
	if err != nil {
		return err
	}
	// the QR is only useful to HTTP clients
	resp.QR = ""
	return printRespJSON(resp)
}

func walletLookupAction(c *cli.Context) error {
	cfg := config.Get()

	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	// lookups never reach the custody provider
	svc := wallet.NewService(registry.New(store, nil, cfg.NetworkID), wallet.Options{})
	resp, err := svc.Lookup(c.Context, c.String("user-address"))
	if err != nil {
		return err
	}
	return printRespJSON(resp)
}

func walletListAction(c *cli.Context) error {
	cfg := config.Get()

	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	records, err := registry.New(store, nil, cfg.NetworkID).Records(c.Context)
	if err != nil {
		return err
	}

	wallets := make([]model.WalletResponse, 0, len(records))
	for _, record := range records {
		summary, err := custody.Summarize(record.Data)
		if err != nil {
			log.WithError(err).WithField("user_address", record.UserAddress).Warn("unreadable credential")
			continue
		}
		wallets = append(wallets, model.WalletResponse{
			UserAddress:    record.UserAddress,
			WalletID:       summary.WalletID,
			NetworkID:      summary.NetworkID,
			DefaultAddress: summary.DefaultAddress,
		})
	}
	return printRespJSON(wallets)
}

func walletMigrateAction(c *cli.Context) error {
	cfg := config.Get()

	dir := c.String("badger-dir")
	if dir == "" {
		dir = cfg.RegistryBadgerDir
	}

	src, err := registry.NewFileStore(cfg.RegistryFilePath)
	if err != nil {
		return err
	}
	defer src.Close()

	dst, err := registry.NewBadgerStore(dir, log.WithField("component", "badger"))
	if err != nil {
		return err
	}
	defer dst.Close()

	records, err := src.All(c.Context)
	if err != nil {
		return err
	}

	var copied, skipped int
	for _, record := range records {
		err := dst.Add(c.Context, record)
		switch {
		case err == nil:
			copied++
		case errors.Is(err, registry.ErrRecordExists):
			skipped++
		default:
			return fmt.Errorf("failed to migrate %s: %w", record.UserAddress, err)
		}
	}

	fmt.Printf("migrated %d wallets to %s (%d already present)\n", copied, dir, skipped)
	return nil
}
