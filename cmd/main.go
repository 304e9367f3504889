package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/Gouliath1/portfolio-tracker-sub001/cmd/prices"
	"github.com/Gouliath1/portfolio-tracker-sub001/cmd/sets"
	"github.com/Gouliath1/portfolio-tracker-sub001/src/database"
	"github.com/Gouliath1/portfolio-tracker-sub001/src/portfolio"
	"github.com/Gouliath1/portfolio-tracker-sub001/src/repository"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli"
)

var Version string

func main() {
	_ = godotenv.Load()

	app := cli.NewApp()
	app.Name = "Portfolio CMD"
	app.Usage = "The portfolio tracker command line interface"
	app.Version = Version

	app.Commands = []cli.Command{
		pricesCMD,
		statusCMD,
		importCMD,
		exportCMD,
		activateCMD,
		demoCMD,
	}

	if err := app.Run(os.Args); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var (
	pricesCMD = cli.Command{
		Name:        "prices",
		Usage:       "refresh historical prices",
		Action:      pricesAction,
		ArgsUsage:   "",
		Flags:       []cli.Flag{},
		Description: `Fetch missing daily closes for the active set (or SYMBOLS) from Binance and EODHD`,
	}
	statusCMD = cli.Command{
		Name:        "status",
		Usage:       "print historical data status",
		Action:      statusAction,
		ArgsUsage:   "",
		Flags:       []cli.Flag{},
		Description: `Print whether historical prices need a refresh`,
	}
	importCMD = cli.Command{
		Name:        "import",
		Usage:       "import a position set from an export file",
		Action:      importAction,
		ArgsUsage:   "<file>",
		Description: `Create a new position set from a <name>-positions.json export`,
	}
	exportCMD = cli.Command{
		Name:      "export",
		Usage:     "export a position set to a file",
		Action:    exportAction,
		ArgsUsage: "<id>",
		Flags: []cli.Flag{
			cli.StringFlag{Name: "dir", Value: ".", Usage: "output directory"},
		},
		Description: `Write position set <id> as <name>-positions.json`,
	}
	activateCMD = cli.Command{
		Name:        "activate",
		Usage:       "activate a position set",
		Action:      activateAction,
		ArgsUsage:   "<id>",
		Description: `Make position set <id> the active one`,
	}
	demoCMD = cli.Command{
		Name:        "demo",
		Usage:       "seed the demo position set",
		Action:      demoAction,
		ArgsUsage:   "",
		Description: `Create the demo position set, activating it when nothing is active`,
	}
)

func initDB() {
	if err := database.InitMainDB(); err != nil {
		logrus.WithError(err).Fatal("Failed to connect to database")
	}
}

func closeDB() {
	if err := database.CloseMainDB(); err != nil {
		logrus.WithError(err).Error("Failed to close database")
	}
}

func pricesAction(_ *cli.Context) error {
	logrus.Info("Starting prices CMD")
	initDB()
	defer closeDB()

	loader := &prices.PriceLoader{
		Log: logrus.WithField("cmd", "prices"),
		DB:  database.MainDB,
	}
	if _, err := loader.Start(); err != nil {
		logrus.WithError(err).Error("Starting prices cmd")
		return err
	}
	return nil
}

func statusAction(_ *cli.Context) error {
	initDB()
	defer closeDB()

	eval := portfolio.NewEvaluator(
		repository.NewPositionSetRepositoryWithDB(database.MainDB),
		repository.NewHistoricalPriceRepositoryWithDB(database.MainDB),
		portfolio.GetConfig(),
	)
	status, err := eval.Status(context.Background())
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(status)
}

func setsCmd() *sets.Sets {
	return &sets.Sets{
		Log: logrus.WithField("cmd", "sets"),
		DB:  database.MainDB,
	}
}

func importAction(c *cli.Context) error {
	if c.NArg() != 1 {
		return cli.NewExitError("usage: import <file>", 2)
	}
	initDB()
	defer closeDB()

	_, err := setsCmd().Import(context.Background(), c.Args().First())
	return err
}

func exportAction(c *cli.Context) error {
	if c.NArg() != 1 {
		return cli.NewExitError("usage: export [--dir DIR] <id>", 2)
	}
	initDB()
	defer closeDB()

	path, err := setsCmd().Export(context.Background(), c.Args().First(), c.String("dir"))
	if err != nil {
		return err
	}
	fmt.Println(path)
	return nil
}

func activateAction(c *cli.Context) error {
	if c.NArg() != 1 {
		return cli.NewExitError("usage: activate <id>", 2)
	}
	initDB()
	defer closeDB()

	return setsCmd().Activate(context.Background(), c.Args().First())
}

func demoAction(_ *cli.Context) error {
	initDB()
	defer closeDB()

	_, err := setsCmd().Demo(context.Background())
	return err
}
