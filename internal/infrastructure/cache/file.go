package cache

import (
	"errors"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/callreview-team/call-review/internal/domain/entities"
	"github.com/callreview-team/call-review/internal/infrastructure/metrics"
)

const (
	ratingsSlot = "ratings.json"
	flagsSlot   = "flags.json"
)

// FileStore keeps each slot as a JSON file under a data directory.
// This is the default driver: the process-local analog of a
// profile-scoped key/value store.
type FileStore struct {
	dir    string
	set    entities.MetricSet
	logger *zap.Logger
}

// NewFileStore creates the data directory if needed. Directory creation
// failure is not fatal; subsequent writes will fail and be swallowed.
func NewFileStore(dir string, set entities.MetricSet, logger *zap.Logger) *FileStore {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		logger.Warn("cache directory unavailable, snapshots will not persist",
			zap.String("dir", dir),
			zap.Error(err),
		)
	}
	return &FileStore{dir: dir, set: set, logger: logger}
}

// LoadRatings reads the ratings slot, degrading to an empty collection
// when the slot is absent or corrupt.
func (fs *FileStore) LoadRatings() entities.RatingCollection {
	data, err := os.ReadFile(filepath.Join(fs.dir, ratingsSlot))
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			fs.logger.Warn("ratings slot unreadable", zap.Error(err))
			metrics.Default.CacheLoadFailures.Inc()
		}
		return make(entities.RatingCollection)
	}
	collection, err := decodeRatings(data, fs.set)
	if err != nil {
		fs.logger.Warn("ratings slot corrupt, starting empty", zap.Error(err))
		metrics.Default.CacheLoadFailures.Inc()
		return make(entities.RatingCollection)
	}
	return collection
}

// SaveRatings overwrites the ratings slot with the full collection.
func (fs *FileStore) SaveRatings(collection entities.RatingCollection) {
	data, err := encodeRatings(collection, fs.set)
	if err != nil {
		fs.fail("encode ratings snapshot", err)
		return
	}
	if err := fs.writeSlot(ratingsSlot, data); err != nil {
		fs.fail("write ratings snapshot", err)
	}
}

// LoadFlags reads the completion-flag slot.
func (fs *FileStore) LoadFlags() map[string]bool {
	data, err := os.ReadFile(filepath.Join(fs.dir, flagsSlot))
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			fs.logger.Warn("flags slot unreadable", zap.Error(err))
			metrics.Default.CacheLoadFailures.Inc()
		}
		return make(map[string]bool)
	}
	flags, err := decodeFlags(data)
	if err != nil {
		fs.logger.Warn("flags slot corrupt, starting empty", zap.Error(err))
		metrics.Default.CacheLoadFailures.Inc()
		return make(map[string]bool)
	}
	return flags
}

// SaveFlags overwrites the completion-flag slot.
func (fs *FileStore) SaveFlags(flags map[string]bool) {
	data, err := encodeFlags(flags)
	if err != nil {
		fs.fail("encode flags snapshot", err)
		return
	}
	if err := fs.writeSlot(flagsSlot, data); err != nil {
		fs.fail("write flags snapshot", err)
	}
}

// writeSlot replaces a slot atomically so readers never observe a
// half-written snapshot.
func (fs *FileStore) writeSlot(name string, data []byte) error {
	tmp := filepath.Join(fs.dir, name+".tmp")
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, filepath.Join(fs.dir, name))
}

func (fs *FileStore) fail(op string, err error) {
	fs.logger.Warn("snapshot cache write failed",
		zap.String("op", op),
		zap.Error(err),
	)
	metrics.Default.CacheSaveFailures.Inc()
}
