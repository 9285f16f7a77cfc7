package app

import (
	"context"
	"os"
	"time"

	"github.com/kobzarvs/qdoc/internal/logger"
)

const watchInterval = time.Second

// watchFile polls path and calls changed with the new content whenever its
// size or modification time moves. It returns when ctx is done.
func watchFile(ctx context.Context, path string, interval time.Duration, changed func(content string)) error {
	last, _ := os.Stat(path)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
		info, err := os.Stat(path)
		if err != nil {
			continue
		}
		if last != nil && info.Size() == last.Size() && info.ModTime().Equal(last.ModTime()) {
			continue
		}
		last = info
		data, err := os.ReadFile(path)
		if err != nil {
			logger.Warn("cannot read changed file", "path", path, "err", err)
			continue
		}
		changed(string(data))
	}
}
