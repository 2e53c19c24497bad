package service

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// FileAction names a planner file-bridging operation.
type FileAction string

const (
	LoadCouriers FileAction = "load-couriers"
	LoadRequests FileAction = "load-requests"
	SaveRequests FileAction = "save-requests"
	SaveTour     FileAction = "save-tour"
)

// Valid reports whether a is a known action.
func (a FileAction) Valid() bool {
	switch a {
	case LoadCouriers, LoadRequests, SaveRequests, SaveTour:
		return true
	}
	return false
}

// DefaultPaths are offered before the operator has used an action.
var DefaultPaths = map[FileAction]string{
	LoadCouriers: "src/main/resources/couriers.xml",
	LoadRequests: "src/main/resources/requests.xml",
	SaveRequests: "requests-out.xml",
	SaveTour:     "tour-out.xml",
}

// PathStore remembers the last path used for each file action.
type PathStore struct {
	dataDir string
	paths   map[FileAction]string
	mu      sync.RWMutex
}

// NewPathStore creates a store persisted under dataDir.
func NewPathStore(dataDir string) *PathStore {
	s := &PathStore{
		dataDir: dataDir,
		paths:   make(map[FileAction]string),
	}
	s.loadFromDisk()
	return s
}

// Get returns the remembered path, or the default.
func (s *PathStore) Get(action FileAction) string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if p, ok := s.paths[action]; ok {
		return p
	}
	return DefaultPaths[action]
}

// List returns the effective path for every action.
func (s *PathStore) List() map[FileAction]string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make(map[FileAction]string, len(DefaultPaths))
	for k, v := range DefaultPaths {
		result[k] = v
	}
	for k, v := range s.paths {
		result[k] = v
	}
	return result
}

// Remember stores the path used for action.
func (s *PathStore) Remember(action FileAction, path string) error {
	if !action.Valid() {
		return fmt.Errorf("unknown file action %q", action)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.paths[action] == path {
		return nil
	}
	s.paths[action] = path
	return s.saveToDisk()
}

func (s *PathStore) configFile() string {
	return filepath.Join(s.dataDir, "paths.json")
}

func (s *PathStore) loadFromDisk() {
	if s.dataDir == "" {
		return
	}
	data, err := os.ReadFile(s.configFile())
	if err != nil {
		return // first run
	}

	var paths map[FileAction]string
	if err := json.Unmarshal(data, &paths); err != nil {
		return
	}
	for k, v := range paths {
		if k.Valid() {
			s.paths[k] = v
		}
	}
}

func (s *PathStore) saveToDisk() error {
	if s.dataDir == "" {
		return nil
	}
	if err := os.MkdirAll(s.dataDir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(s.paths, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.configFile(), data, 0644)
}
