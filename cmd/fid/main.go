package main

import (
	"log"
	"os"

	"github.com/urfave/cli/v2"
)

func main() {
	inFlag := &cli.StringFlag{
		Name:     "in",
		Aliases:  []string{"i"},
		Usage:    "The saved bit vector to query",
		Required: true,
	}

	app := &cli.App{
		Name:                 "fid",
		Usage:                "build and query compressed rank/select bit vectors",
		EnableBashCompletion: true,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "Log debug messages",
			},
			&cli.BoolFlag{
				Name:  "log-json",
				Usage: "Log as JSON instead of text",
			},
		},
		Commands: []*cli.Command{
			{
				Name:      "build",
				Usage:     "builds a bit vector from a text file of 0s and 1s, or at random",
				ArgsUsage: " ",
				Action:    runBuild,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "in",
						Aliases: []string{"i"},
						Usage:   "Text of 0s and 1s to read, - for stdin; whitespace is ignored",
					},
					&cli.Uint64Flag{
						Name:  "len",
						Usage: "Number of random bits to generate when --in is not set",
					},
					&cli.Float64Flag{
						Name:  "odds",
						Usage: "Probability that a random bit is set",
						Value: 0.5,
					},
					&cli.Int64Flag{
						Name:  "seed",
						Usage: "Seed for random bits",
						Value: 1,
					},
					&cli.StringFlag{
						Name:     "out",
						Aliases:  []string{"o"},
						Usage:    "The file to save the bit vector to",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "compression",
						Usage: "Payload compression: none, lz4 or zstd",
						Value: "none",
					},
				},
			},
			{
				Name:   "stats",
				Usage:  "prints the shape and size of a saved bit vector",
				Action: runStats,
				Flags: []cli.Flag{
					inFlag,
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Print as JSON",
					},
				},
			},
			{
				Name:      "get",
				Usage:     "prints the bits at the given indices",
				ArgsUsage: "INDEX...",
				Action:    runGet,
				Flags:     []cli.Flag{inFlag},
			},
			{
				Name:      "rank",
				Usage:     "counts the 1s (or 0s with --bit 0) before the given indices",
				ArgsUsage: "INDEX...",
				Action:    runRank,
				Flags: []cli.Flag{
					inFlag,
					&cli.UintFlag{
						Name:  "bit",
						Usage: "The bit value to count, 0 or 1",
						Value: 1,
					},
				},
			},
			{
				Name:      "select",
				Usage:     "locates the 1s (or 0s with --bit 0) of the given ranks, counted from 0",
				ArgsUsage: "RANK...",
				Action:    runSelect,
				Flags: []cli.Flag{
					inFlag,
					&cli.UintFlag{
						Name:  "bit",
						Usage: "The bit value to locate, 0 or 1",
						Value: 1,
					},
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
