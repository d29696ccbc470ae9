package meta

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"sync/atomic"

	"github.com/charmbracelet/log"

	"github.com/yaklabco/ritobin-lsp/internal/logging"
)

// UnknownVersion is reported before a dump has been loaded.
const UnknownVersion = "unknown"

// ErrNoClasses is returned for a dump without a classes object.
var ErrNoClasses = errors.New("metadata dump has no classes")

// Service holds the class index. The zero value is not usable; call
// NewService.
//
// Lookups never block on a load in progress: until a dump has been loaded
// every lookup misses, exactly as for an unknown class.
type Service struct {
	loaded atomic.Bool
	logger *log.Logger

	mu      sync.RWMutex
	path    string
	version string
	classes map[string]*Class
}

// NewService returns an empty, unloaded service.
func NewService(logger *log.Logger) *Service {
	return &Service{
		logger:  logger,
		version: UnknownVersion,
		classes: map[string]*Class{},
	}
}

// LoadFile loads the dump at path in the background. The returned channel
// receives the outcome and is then closed; callers may ignore it. A failed
// load is logged and leaves the current index untouched.
func (s *Service) LoadFile(path string) <-chan error {
	done := make(chan error, 1)
	go func() {
		defer close(done)
		err := s.Load(path)
		if err != nil {
			s.logger.Error("Could not load metadata dump", logging.FieldPath, path, logging.FieldError, err)
		}
		done <- err
	}()
	return done
}

// Load reads and installs the dump at path.
func (s *Service) Load(path string) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open meta dump: %w", err)
	}
	defer file.Close()

	if err := s.LoadReader(bufio.NewReader(file)); err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}

	s.mu.Lock()
	s.path = path
	s.mu.Unlock()
	return nil
}

// LoadReader decodes a JSON dump from r and atomically replaces the index.
func (s *Service) LoadReader(r io.Reader) error {
	var dump DumpFile
	if err := json.NewDecoder(r).Decode(&dump); err != nil {
		return fmt.Errorf("decode meta dump: %w", err)
	}
	if dump.Classes == nil {
		return ErrNoClasses
	}
	if dump.Version == "" {
		dump.Version = UnknownVersion
	}

	s.mu.Lock()
	s.version = dump.Version
	s.classes = dump.Classes
	s.mu.Unlock()
	s.loaded.Store(true)

	s.logger.Info("Loaded metadata classes", logging.FieldClasses, len(dump.Classes), logging.FieldVersion, dump.Version)
	return nil
}

// Loaded reports whether a dump has been installed.
func (s *Service) Loaded() bool {
	return s.loaded.Load()
}

// Version returns the game version of the loaded dump.
func (s *Service) Version() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

// Path returns the file the index was last loaded from.
func (s *Service) Path() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.path
}

// Len returns the number of classes in the index.
func (s *Service) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.classes)
}

// Lookup finds a class by its source name.
func (s *Service) Lookup(name string) (*Class, bool) {
	return s.LookupKey(ClassKey(name))
}

// LookupKey finds a class by its dump key, e.g. "0x1a2b3c4d".
func (s *Service) LookupKey(key string) (*Class, bool) {
	if !s.loaded.Load() {
		return nil, false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	class, ok := s.classes[key]
	return class, ok && class != nil
}
