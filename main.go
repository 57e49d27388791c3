package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	logger "github.com/sirupsen/logrus"

	"portfoliotracker/src/database"
	"portfoliotracker/src/quotes"
	"portfoliotracker/src/registry"
	"portfoliotracker/src/report"
	"portfoliotracker/src/repository"
	"portfoliotracker/src/server"
)

var APP_NAME = os.Getenv("APP_NAME")

func SetupLogger() {
	levelStr := strings.ToLower(os.Getenv("LOG_LEVEL"))

	level, err := logger.ParseLevel(levelStr)
	if err != nil {
		level = logger.InfoLevel
	}

	logger.SetLevel(level)
	logger.SetFormatter(&logger.TextFormatter{
		FullTimestamp: true,
	})
}

func main() {
	SetupLogger()
	defer handlePanic()

	if err := database.InitMainDB(); err != nil {
		logger.WithError(err).Fatal("Failed to connect to database")
	}

	repo := repository.NewPortfolioRepository()
	priceSource := quotes.NewYahooClient(quotes.GetConfig())
	reg := registry.NewRegistry(repo, priceSource)
	gen := report.NewGenerator(reg)

	server.StartServer(server.GetConfig().Port, reg, gen)
}

func handlePanic() {
	if r := recover(); r != nil {
		logger.WithError(fmt.Errorf("%+v", r)).Error(fmt.Sprintf("Application %s panic", APP_NAME))
	}
	//nolint
	time.Sleep(time.Second * 5)
}
