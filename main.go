package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/Gouliath1/portfolio-tracker-sub001/src/database"
	"github.com/Gouliath1/portfolio-tracker-sub001/src/events"
	"github.com/Gouliath1/portfolio-tracker-sub001/src/handler"
	"github.com/Gouliath1/portfolio-tracker-sub001/src/portfolio"
	"github.com/Gouliath1/portfolio-tracker-sub001/src/prices"
	"github.com/Gouliath1/portfolio-tracker-sub001/src/repository"
	"github.com/Gouliath1/portfolio-tracker-sub001/src/server"

	"github.com/joho/godotenv"
	logger "github.com/sirupsen/logrus"
)

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
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "failed to load .env: %v\n", err)
	}

	SetupLogger()
	config := server.GetConfig()
	defer handlePanic(config.AppName)

	if err := database.InitMainDB(); err != nil {
		logger.WithError(err).Fatal("Failed to connect to database")
	}
	defer func() {
		if err := database.CloseMainDB(); err != nil {
			logger.WithError(err).Error("Failed to close database")
		}
	}()

	logger.AddHook(handler.NewExceptionHook(config.AppName, repository.NewExceptionRepository()))

	hub := events.NewHub()
	deps := server.DefaultDependencies(hub)

	if portfolio.GetConfig().SeedDemoData {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		if _, _, err := deps.Portfolio.SeedDemo(ctx); err != nil {
			logger.WithError(err).Error("Failed to seed demo data")
		}
		cancel()
	}

	scheduler := prices.NewScheduler()
	if schedule := prices.GetConfig().RefreshSchedule; schedule != "" {
		if err := scheduler.AddJob(schedule, prices.RefreshJob{Refresher: deps.Refresher}); err != nil {
			logger.WithError(err).WithField("schedule", schedule).Error("Invalid price refresh schedule")
		}
	}
	scheduler.Start()
	defer scheduler.Stop()

	server.StartServer(config.ListenPort(), server.NewRouter(config, deps))
}

func handlePanic(appName string) {
	if r := recover(); r != nil {
		logger.WithError(fmt.Errorf("%+v", r)).Error(fmt.Sprintf("Application %s panic", appName))
		time.Sleep(time.Second * 5)
	}
}
