package main

import (
	"fmt"

	"github.com/AlexZinkM/yield-agent/internal/client"
	"github.com/AlexZinkM/yield-agent/internal/config"
	"github.com/AlexZinkM/yield-agent/internal/knowledge"

	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

var fetchYields = cli.Command{
	Name:  "fetch-yields",
	Usage: "download yield pools and write them as the knowledge base",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:  "out",
			Usage: "output file, defaults to KNOWLEDGE_FILE",
		},
		&cli.Float64Flag{
			Name:  "min-tvl",
			Usage: "drop pools with less TVL (USD)",
			Value: 1_000_000,
		},
		&cli.IntFlag{
			Name:  "limit",
			Usage: "keep at most this many pools, 0 keeps all",
			Value: 500,
		},
	},
	Action: fetchYieldsAction,
}

func fetchYieldsAction(c *cli.Context) error {
	cfg := config.Get()

	out := c.String("out")
	if out == "" {
		out = cfg.KnowledgeFile
	}

	pools, err := client.NewDefiLlamaClient(cfg.DefiLlamaURL, cfg.DefiLlamaCoinsURL).GetPools(c.Context)
	if err != nil {
		return err
	}

	records := knowledge.FilterRecords(pools, c.Float64("min-tvl"), c.Int("limit"))
	if err := knowledge.WriteRecords(out, records); err != nil {
		return err
	}

	log.WithField("fetched", len(pools)).WithField("kept", len(records)).Info("knowledge base updated")
	fmt.Printf("wrote %d pools to %s\n", len(records), out)
	return nil
}
