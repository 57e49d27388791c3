package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli"

	"portfoliotracker/src/database"
	"portfoliotracker/src/model"
	"portfoliotracker/src/quotes"
	"portfoliotracker/src/registry"
	"portfoliotracker/src/report"
	"portfoliotracker/src/repository"
	"portfoliotracker/src/server"
)

var Version string

func main() {
	app := cli.NewApp()
	app.Name = "portfoliotracker"
	app.Usage = "The portfolio tracker command line interface"

	app.Commands = []cli.Command{
		serveCMD,
		reportCMD,
		profilesCMD,
	}

	if err := app.Run(os.Args); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var (
	serveCMD = cli.Command{
		Name:        "serve",
		Usage:       "run the REST API server",
		Action:      serveAction,
		ArgsUsage:   "",
		Flags:       []cli.Flag{},
		Description: `Run the portfolio tracker API server`,
	}
	reportCMD = cli.Command{
		Name:        "report",
		Usage:       "print a portfolio report",
		Action:      reportAction,
		ArgsUsage:   "USERNAME PORTFOLIO",
		Flags:       []cli.Flag{},
		Description: `Render the plain-text report for one portfolio`,
	}
	profilesCMD = cli.Command{
		Name:        "profiles",
		Usage:       "list known profiles",
		Action:      profilesAction,
		ArgsUsage:   "",
		Flags:       []cli.Flag{},
		Description: `List all known profile usernames`,
	}
)

func buildRegistry() (*registry.Registry, *report.Generator, error) {
	if err := database.InitMainDB(); err != nil {
		return nil, nil, err
	}

	repo := repository.NewPortfolioRepository()
	priceSource := quotes.NewYahooClient(quotes.GetConfig())
	reg := registry.NewRegistry(repo, priceSource)

	return reg, report.NewGenerator(reg), nil
}

func serveAction(_ *cli.Context) error {
	logrus.Info("Starting API server")

	reg, gen, err := buildRegistry()
	if err != nil {
		logrus.WithError(err).Error("Starting cmd")
		return err
	}

	server.StartServer(server.GetConfig().Port, reg, gen)
	return nil
}

func reportAction(c *cli.Context) error {
	if c.NArg() != 2 {
		return fmt.Errorf("usage: report USERNAME PORTFOLIO")
	}
	username, portfolioName := c.Args().Get(0), c.Args().Get(1)

	_, gen, err := buildRegistry()
	if err != nil {
		logrus.WithError(err).Error("Starting cmd")
		return err
	}

	out, err := gen.Render(context.Background(), username, portfolioName)
	if err != nil {
		var notFound *model.NotFoundError
		if errors.As(err, &notFound) {
			fmt.Println(err.Error())
			return nil
		}
		return err
	}

	fmt.Println(out)
	return nil
}

func profilesAction(_ *cli.Context) error {
	reg, _, err := buildRegistry()
	if err != nil {
		logrus.WithError(err).Error("Starting cmd")
		return err
	}

	profiles, err := reg.ListProfiles(context.Background())
	if err != nil {
		return err
	}

	for _, username := range profiles {
		fmt.Println(username)
	}
	return nil
}
