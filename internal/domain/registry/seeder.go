package registry

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/charlievieth/fastwalk"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/bundlekit/internal/domain/manifest"
)

// DefaultManifestPattern matches module manifests anywhere below the seed directory
const DefaultManifestPattern = "**/module.{json,json5,yaml,yml,toml}"

// SeedResult counts the manifests processed by a seed run
type SeedResult struct {
	Loaded int      `json:"loaded"`
	Failed int      `json:"failed"`
	Errors []string `json:"errors,omitempty"`
}

// Seeder installs prebuilt manifests found on disk
type Seeder struct {
	manager *Manager
	dir     string
	pattern string
	logger  *zap.Logger
}

// NewSeeder creates a seeder for the manifests below dir matching pattern
func NewSeeder(manager *Manager, dir, pattern string) *Seeder {
	if pattern == "" {
		pattern = DefaultManifestPattern
	}
	return &Seeder{
		manager: manager,
		dir:     dir,
		pattern: pattern,
		logger:  manager.logger.Named("seeder"),
	}
}

// Seed installs every matching manifest. A manifest that fails to install is
// counted and logged; it does not stop the run.
func (s *Seeder) Seed(ctx context.Context) (SeedResult, error) {
	var result SeedResult

	if !doublestar.ValidatePattern(s.pattern) {
		return result, fmt.Errorf("invalid manifest pattern %q", s.pattern)
	}
	if _, err := os.Stat(s.dir); errors.Is(err, fs.ErrNotExist) {
		s.logger.Warn("Manifest directory not found", zap.String("dir", s.dir))
		return result, nil
	}

	paths, err := s.discover(ctx)
	if err != nil {
		return result, err
	}

	s.logger.Info("Seeding manifests", zap.String("dir", s.dir), zap.Int("found", len(paths)))
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		if err := s.load(ctx, path); err != nil {
			s.logger.Warn("Manifest failed", zap.String("path", path), zap.Error(err))
			result.Failed++
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", path, err))
			continue
		}
		result.Loaded++
	}

	s.logger.Info("Seeding complete", zap.Int("loaded", result.Loaded), zap.Int("failed", result.Failed))
	return result, nil
}

// discover walks the directory in parallel and returns the matching paths in
// lexical order so installs are deterministic
func (s *Seeder) discover(ctx context.Context) ([]string, error) {
	var (
		mu    sync.Mutex
		paths []string
	)

	conf := fastwalk.Config{Follow: false}
	err := fastwalk.Walk(&conf, s.dir, func(p string, d fs.DirEntry, err error) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if err != nil || d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(s.dir, p)
		if err != nil {
			return nil
		}
		if ok, _ := doublestar.Match(s.pattern, filepath.ToSlash(rel)); !ok {
			return nil
		}

		mu.Lock()
		paths = append(paths, p)
		mu.Unlock()
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk %s: %w", s.dir, err)
	}

	sort.Strings(paths)
	return paths, nil
}

func (s *Seeder) load(ctx context.Context, path string) error {
	format, err := manifest.FormatFromPath(path)
	if err != nil {
		return err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	rec, err := s.manager.InstallManifest(ctx, data, format)
	if err != nil {
		return err
	}
	s.logger.Debug("Manifest loaded",
		zap.String("path", path),
		zap.String("bundle", rec.Bundle()),
		zap.String("module", rec.Module.Name),
	)
	return nil
}
