package store

import (
	"log/slog"
	"sync"
)

// Fallback writes through to a primary store. When a write fails the value is
// kept in memory for the rest of the session, the failure is logged, and the
// error (wrapping ErrUnavailable) is still returned so the caller can tell.
type Fallback struct {
	primary KV
	logger  *slog.Logger

	mu      sync.Mutex
	overlay map[string]*string
}

func NewFallback(primary KV, logger *slog.Logger) *Fallback {
	if logger == nil {
		logger = slog.Default()
	}
	return &Fallback{primary: primary, logger: logger, overlay: map[string]*string{}}
}

func (f *Fallback) Get(key string) (string, bool, error) {
	f.mu.Lock()
	v, shadowed := f.overlay[key]
	f.mu.Unlock()
	if shadowed {
		if v == nil {
			return "", false, nil
		}
		return *v, true, nil
	}
	value, ok, err := f.primary.Get(key)
	if err != nil {
		f.logger.Warn("storage read failed", "key", key, "error", err)
		return "", false, err
	}
	return value, ok, nil
}

func (f *Fallback) Set(key, value string) error {
	if err := f.primary.Set(key, value); err != nil {
		f.logger.Warn("storage write failed, keeping value in memory", "key", key, "error", err)
		f.mu.Lock()
		f.overlay[key] = &value
		f.mu.Unlock()
		return err
	}
	f.mu.Lock()
	delete(f.overlay, key)
	f.mu.Unlock()
	return nil
}

func (f *Fallback) Remove(key string) error {
	if err := f.primary.Remove(key); err != nil {
		f.logger.Warn("storage remove failed, hiding key in memory", "key", key, "error", err)
		f.mu.Lock()
		f.overlay[key] = nil
		f.mu.Unlock()
		return err
	}
	f.mu.Lock()
	delete(f.overlay, key)
	f.mu.Unlock()
	return nil
}

// Degraded reports whether any key is only held in memory.
func (f *Fallback) Degraded() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.overlay) > 0
}
