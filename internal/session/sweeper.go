package session

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/fadilmartias/interview-coach/internal/logger"
	"go.uber.org/zap"
)

// SweepUploads removes per-session upload directories under root that are
// older than maxAge. Abandoned sessions would otherwise leave files behind.
func SweepUploads(root string, maxAge time.Duration, log *zap.Logger) int {
	log = logger.OrNop(log)

	entries, err := os.ReadDir(root)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Warn("read upload dir failed", zap.String("dir", root), zap.Error(err))
		}
		return 0
	}

	cutoff := time.Now().Add(-maxAge)
	removed := 0
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil || info.ModTime().After(cutoff) {
			continue
		}
		path := filepath.Join(root, entry.Name())
		if err := os.RemoveAll(path); err != nil {
			log.Warn("remove stale upload dir failed", zap.String("dir", path), zap.Error(err))
			continue
		}
		removed++
	}
	if removed > 0 {
		log.Info("stale upload dirs removed", zap.Int("count", removed))
	}
	return removed
}

// RunSweeper calls SweepUploads every interval until ctx is done.
func RunSweeper(ctx context.Context, root string, maxAge, interval time.Duration, log *zap.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			SweepUploads(root, maxAge, log)
		}
	}
}
