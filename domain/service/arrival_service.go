package service

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"

	"github.com/ajkula/GoArrival/domain/model"
	"github.com/ajkula/GoArrival/domain/port/inbound"
	"github.com/ajkula/GoArrival/domain/port/outbound"
)

type arrivalService struct {
	detectors map[model.Strategy]inbound.ArrivalDetector
	reader    outbound.DirectoryReader
	repo      outbound.ArrivalRepository
	logger    outbound.Logger

	// defaultDir resolves the directory used when a request names none
	defaultDir func() (string, error)
}

func NewArrivalService(
	reader outbound.DirectoryReader,
	repo outbound.ArrivalRepository,
	logger outbound.Logger,
	detectors ...inbound.ArrivalDetector,
) inbound.ArrivalService {
	byStrategy := make(map[model.Strategy]inbound.ArrivalDetector, len(detectors))
	for _, d := range detectors {
		byStrategy[d.Strategy()] = d
	}

	return &arrivalService{
		detectors:  byStrategy,
		reader:     reader,
		repo:       repo,
		logger:     logger,
		defaultDir: executableDir,
	}
}

// executableDir is where a bundled binary expects its inbox to be
func executableDir() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", err
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}
	return filepath.Dir(exe), nil
}

func (s *arrivalService) ResolveDirectory(dir string) (string, error) {
	if dir == "" {
		def, err := s.defaultDir()
		if err != nil {
			return "", fmt.Errorf("%w: cannot resolve default directory: %w", model.ErrConfiguration, err)
		}
		dir = def
	}

	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %w", model.ErrConfiguration, dir, err)
	}
	return abs, nil
}

func (s *arrivalService) WaitForArrival(ctx context.Context, req model.DetectionRequest) (*model.DetectionResult, error) {
	strategy := req.Strategy
	if strategy == "" {
		strategy = model.StrategyPolling
	}

	detector, ok := s.detectors[strategy]
	if !ok {
		return nil, fmt.Errorf("%w: %q", model.ErrUnknownStrategy, strategy)
	}

	dir, err := s.ResolveDirectory(req.Directory)
	if err != nil {
		return nil, err
	}

	result, err := detector.Detect(ctx, dir, req.Options)
	if err != nil {
		s.logger.Error("Detection could not start", "dir", dir, "strategy", strategy, "error", err)
		return nil, err
	}

	if result.Found() {
		s.logger.Info("File arrived",
			"attempt", result.AttemptID,
			"path", result.Path,
			"size", humanize.Bytes(uint64(result.Size)),
			"strategy", strategy)
	} else {
		s.logger.Info("No file arrived",
			"attempt", result.AttemptID,
			"dir", dir,
			"outcome", result.Outcome,
			"strategy", strategy)
	}

	// history is best effort, the caller still gets its result
	if err := s.repo.Store(context.WithoutCancel(ctx), result); err != nil {
		s.logger.Warn("Failed to record detection result", "attempt", result.AttemptID, "error", err)
	}

	return result, nil
}

func (s *arrivalService) FindLatest(ctx context.Context, dir string, opts model.DetectionOptions) (*model.DirectoryEntry, error) {
	dir, err := s.ResolveDirectory(dir)
	if err != nil {
		return nil, err
	}
	if err := validateDirectory(s.reader, dir); err != nil {
		return nil, err
	}

	entries, err := s.reader.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: scanning %s: %w", model.ErrConfiguration, dir, err)
	}

	filter := NewCandidateFilter(opts)
	candidates := make([]model.DirectoryEntry, 0, len(entries))
	for _, entry := range entries {
		if filter.Accepts(entry) {
			candidates = append(candidates, entry)
		}
	}

	// same ordering the polling detector uses, against an empty baseline
	ordered := newCandidates(candidates, nil)
	if len(ordered) == 0 {
		s.logger.Debug("No candidate present", "dir", dir)
		return nil, nil
	}

	latest := ordered[0]
	s.logger.Debug("Latest candidate", "path", latest.Path, "size", humanize.Bytes(uint64(latest.Size)))
	return &latest, nil
}

func (s *arrivalService) ListArrivals(ctx context.Context, limit int) ([]*model.DetectionResult, error) {
	return s.repo.List(ctx, limit)
}

func (s *arrivalService) GetArrival(ctx context.Context, attemptID string) (*model.DetectionResult, error) {
	return s.repo.Get(ctx, attemptID)
}

func (s *arrivalService) Subscribe(handler func(*model.DetectionResult)) string {
	return s.repo.Subscribe(handler)
}

func (s *arrivalService) Unsubscribe(subscriptionID string) {
	s.repo.Unsubscribe(subscriptionID)
}
