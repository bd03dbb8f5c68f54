package service

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/ajkula/GoArrival/domain/port/outbound"
)

// ReloadFunc is called after a watched file was written
type ReloadFunc func(ctx context.Context, path string) error

// minReloadGap drops bursts of notifications produced by a single save
const minReloadGap = time.Second

// fileWatcherService reloads settings files when they change on disk.
// It watches the parent directory and filters by name so that editors
// replacing the file through a rename are still noticed.
type fileWatcherService struct {
	watcher      outbound.FileWatcher
	reload       ReloadFunc
	logger       outbound.Logger
	watchedFiles map[string]bool
	watchedDirs  map[string]bool
	lastReload   map[string]time.Time
	mu           sync.RWMutex
	ctx          context.Context
	cancel       context.CancelFunc
	running      bool
	done         chan struct{}
}

func NewFileWatcherService(
	watcher outbound.FileWatcher,
	reload ReloadFunc,
	logger outbound.Logger,
) *fileWatcherService {
	ctx, cancel := context.WithCancel(context.Background())

	return &fileWatcherService{
		watcher:      watcher,
		reload:       reload,
		logger:       logger,
		watchedFiles: make(map[string]bool),
		watchedDirs:  make(map[string]bool),
		lastReload:   make(map[string]time.Time),
		ctx:          ctx,
		cancel:       cancel,
		done:         make(chan struct{}),
	}
}

// Start begins processing change notifications
func (s *fileWatcherService) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		s.logger.Warn("File watcher service already running")
		return
	}

	go s.processEvents()
	s.running = true
	s.logger.Debug("File watcher service started")
}

// Stop ends event processing and releases the watcher
func (s *fileWatcherService) Stop() error {
	s.mu.Lock()
	wasRunning := s.running
	s.running = false
	s.mu.Unlock()

	s.cancel()
	if wasRunning {
		<-s.done
	}

	if err := s.watcher.Stop(); err != nil {
		s.logger.Error("Error stopping file watcher", "error", err)
		return err
	}

	s.logger.Debug("File watcher service stopped")
	return nil
}

// WatchFile registers a file whose changes trigger a reload
func (s *fileWatcherService) WatchFile(ctx context.Context, filePath string) error {
	absPath, err := filepath.Abs(filePath)
	if err != nil {
		return fmt.Errorf("failed to get absolute path of %s: %w", filePath, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.watchedFiles[absPath] {
		s.logger.Debug("Already watching file", "path", absPath)
		return nil
	}

	dir := filepath.Dir(absPath)
	if !s.watchedDirs[dir] {
		if err := s.watcher.Watch(ctx, dir); err != nil {
			return fmt.Errorf("failed to watch %s: %w", dir, err)
		}
		s.watchedDirs[dir] = true
	}

	s.watchedFiles[absPath] = true
	s.logger.Info("Watching file for changes", "path", absPath)
	return nil
}

// GetWatchedFiles lists the registered files
func (s *fileWatcherService) GetWatchedFiles() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	files := make([]string, 0, len(s.watchedFiles))
	for file := range s.watchedFiles {
		files = append(files, file)
	}
	return files
}

func (s *fileWatcherService) processEvents() {
	defer close(s.done)

	events := s.watcher.Events()
	errs := s.watcher.Errors()

	for {
		select {
		case <-s.ctx.Done():
			return

		case event, ok := <-events:
			if !ok {
				return
			}
			s.handleEvent(event)

		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			s.logger.Warn("File watcher error", "error", err)
		}
	}
}

func (s *fileWatcherService) handleEvent(event outbound.FileChangeEvent) {
	path, err := filepath.Abs(event.FilePath)
	if err != nil {
		return
	}

	s.mu.RLock()
	watched := s.watchedFiles[path]
	s.mu.RUnlock()
	if !watched {
		return
	}

	switch event.EventType {
	case outbound.FileCreated, outbound.FileModified:
		now := time.Now()
		if last, ok := s.lastReload[path]; ok && now.Sub(last) < minReloadGap {
			s.logger.Debug("Skipping reload, file changed again too soon", "path", path)
			return
		}
		s.lastReload[path] = now

		ctx, cancel := context.WithTimeout(s.ctx, 10*time.Second)
		defer cancel()
		if err := s.reload(ctx, path); err != nil {
			s.logger.Error("Failed to reload file", "path", path, "error", err)
			return
		}
		s.logger.Info("Reloaded file", "path", path)

	case outbound.FileRemoved:
		s.logger.Warn("Watched file was removed, keeping the current settings", "path", path)
	}
}

func (s *fileWatcherService) Cleanup() {
	if err := s.Stop(); err != nil {
		s.logger.Error("Error during cleanup", "error", err)
	}
}
