package main

import (
	"context"
	"log"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"dao-governance/internal/app"
	"dao-governance/internal/config"
	"dao-governance/internal/events"
	"dao-governance/internal/governance"
	"dao-governance/internal/journal"
	"dao-governance/internal/journal/mongodb"
	ports "dao-governance/internal/ports/http"
)

func main() {
	logger, err := getLogger()
	if err != nil {
		log.Fatalln("setting up the logger failed: ", err)
		return
	}
	defer logger.Sync()

	logger.Info("application started")

	genesis, err := config.LoadGenesis(config.GetGenesisPath())
	if err != nil {
		logger.Fatal("failed to load the genesis file: " + err.Error())
	}

	engine, err := governance.NewEngine(logger, genesis)
	if err != nil {
		logger.Fatal("failed to initialize the governance engine: " + err.Error())
	}

	ctx := context.Background()
	eventJournal, err := openJournal(ctx, logger)
	if err != nil {
		logger.Fatal("failed to open the event journal: " + err.Error())
	}
	defer func() {
		if err := eventJournal.Close(context.Background()); err != nil {
			logger.Error("failed to close the journal: " + err.Error())
		}
	}()

	if err := journal.Replay(ctx, eventJournal, engine); err != nil {
		logger.Fatal("failed to replay the journal: " + err.Error())
	}

	var sink app.EventSink
	if bindAddr := config.GetEventsBindAddr(); bindAddr != "" {
		publisher := events.NewPublisher(logger, bindAddr)
		if err := publisher.Start(); err != nil {
			logger.Fatal("failed to start the event publisher: " + err.Error())
		}
		defer func() {
			if err := publisher.Close(); err != nil {
				logger.Error("failed to close the event publisher: " + err.Error())
			}
		}()
		sink = publisher
	}

	application := app.NewApp(logger, engine, eventJournal, sink, app.AuthParams{
		TokenSecret:  config.GetTokenSecret(),
		TokenTTL:     config.GetTokenTTL(),
		ChallengeTTL: config.GetChallengeTTL(),
	})

	ser := ports.NewServer(logger, application, config.GetPort())
	if err := ser.Run(); err != nil {
		logger.Error("failed to run the server: " + err.Error())
	}

	logger.Info("application finished")
}

func openJournal(ctx context.Context, logger *zap.Logger) (journal.Journal, error) {
	switch backend := config.GetJournalBackend(); backend {
	case "mongodb":
		return mongodb.NewConnection(ctx, logger, config.GetDbConnectionURI(), config.GetDatabaseName())
	default:
		logger.Warn("using the in-memory journal, committed events will not survive a restart",
			zap.String("backend", backend))
		return journal.NewMemory(), nil
	}
}

func getLogger() (*zap.Logger, error) {
	options := []zap.Option{
		zap.AddCaller(),
		zap.AddStacktrace(zap.FatalLevel),
	}

	config := zap.NewDevelopmentConfig()
	config.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout(time.RFC3339)
	config.Development = true
	config.Level.SetLevel(zap.DebugLevel)

	logger, err := config.Build()
	if err != nil {
		return nil, err
	}
	return logger.WithOptions(options...), nil
}
