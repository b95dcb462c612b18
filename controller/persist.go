package controller

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
)

const BestFile = "best.params"

func ModelFile(iteration int) string {
	return fmt.Sprintf("model_%d.params", iteration)
}

// PersistError is returned when a checkpoint or the history cannot be written
// after all retries.
type PersistError struct {
	Path     string
	Attempts int
	Err      error
}

func (e *PersistError) Error() string {
	return fmt.Sprintf("persisting %s failed after %d attempts: %v", e.Path, e.Attempts, e.Err)
}

func (e *PersistError) Unwrap() error {
	return e.Err
}

// persist calls write until it succeeds, doubling the delay between attempts.
func (c *trainingController) persist(path string, write func() error) error {
	delay := c.retryDelay
	var err error
	for attempt := 1; attempt <= c.attempts; attempt++ {
		if err = write(); err == nil {
			return nil
		}
		log.Warn().Err(err).Str("path", path).Int("attempt", attempt).Msg("write failed")
		if attempt < c.attempts {
			c.sleep(delay)
			delay *= 2
		}
	}
	return &PersistError{Path: path, Attempts: c.attempts, Err: err}
}

func (c *trainingController) saveModel(name string) error {
	path := filepath.Join(c.cfg.Dir, name)
	return c.persist(path, func() error {
		data, err := c.session.Model.Marshal()
		if err != nil {
			return fmt.Errorf("marshal model: %w", err)
		}
		return writeAtomic(path, data)
	})
}

func writeAtomic(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", tmpPath, err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("rename %s: %w", tmpPath, err)
	}
	return nil
}
