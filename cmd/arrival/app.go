package main

import (
	"github.com/ajkula/GoArrival/adapter/outbound/filesystem"
	"github.com/ajkula/GoArrival/adapter/outbound/filewatcher"
	"github.com/ajkula/GoArrival/adapter/outbound/logging"
	"github.com/ajkula/GoArrival/adapter/outbound/storage/memory"
	"github.com/ajkula/GoArrival/config"
	"github.com/ajkula/GoArrival/domain/model"
	"github.com/ajkula/GoArrival/domain/port/inbound"
	"github.com/ajkula/GoArrival/domain/service"
)

// application wires the adapters around the arrival service
type application struct {
	cfg      *config.Config
	logger   *logging.ZapAdapter
	arrivals inbound.ArrivalService
	stats    inbound.StatsService
}

func newApplication(cfg *config.Config) (*application, error) {
	logger, err := logging.NewZapAdapter(cfg)
	if err != nil {
		return nil, err
	}

	reader := filesystem.NewOSReader()
	repo := memory.NewArrivalRepository(cfg.History.Capacity)

	arrivals := service.NewArrivalService(reader, repo, logger,
		service.NewPollingDetector(reader, logger),
		service.NewEventDetector(reader, filewatcher.NewFSWatcher, logger),
	)

	stats := service.NewStatsService()
	arrivals.Subscribe(stats.RecordResult)

	return &application{
		cfg:      cfg,
		logger:   logger,
		arrivals: arrivals,
		stats:    stats,
	}, nil
}

// detectionRequest builds a request from the configured detection defaults
func (a *application) detectionRequest() (model.DetectionRequest, error) {
	strategy, err := model.ParseStrategy(a.cfg.Detection.Strategy)
	if err != nil {
		return model.DetectionRequest{}, err
	}
	return model.DetectionRequest{
		Directory: a.cfg.Detection.Directory,
		Strategy:  strategy,
		Options:   a.cfg.DetectionOptions(),
	}, nil
}

func (a *application) close() {
	a.logger.Shutdown()
}

// keepStdoutClean moves logs off stdout for commands whose stdout is their result
func keepStdoutClean(cfg *config.Config) {
	if cfg.Logging.Output == "stdout" {
		cfg.Logging.Output = "stderr"
	}
}
