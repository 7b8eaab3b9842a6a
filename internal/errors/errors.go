package errors

import (
	"sync"
)

// Collector accumulates errors from operations that keep going after a
// failure, such as a content audit or a static export.
type Collector struct {
	errors []error
	mutex  sync.RWMutex
}

// NewCollector creates a new error collector
func NewCollector() *Collector {
	return &Collector{
		errors: make([]error, 0),
	}
}

// Add adds an error to the collector; nil is ignored.
func (c *Collector) Add(err error) {
	if err == nil {
		return
	}
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.errors = append(c.errors, err)
}

// Errors returns a copy of all collected errors
func (c *Collector) Errors() []error {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	result := make([]error, len(c.errors))
	copy(result, c.errors)
	return result
}

// HasErrors returns true if there are any errors
func (c *Collector) HasErrors() bool {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return len(c.errors) > 0
}

// ByCode groups the collected FolioErrors by code. Errors that are not
// FolioErrors are grouped under "".
func (c *Collector) ByCode() map[string][]error {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	grouped := make(map[string][]error)
	for _, err := range c.errors {
		code := CodeOf(err)
		grouped[code] = append(grouped[code], err)
	}
	return grouped
}

// Err joins the collected errors, or returns nil when there are none.
func (c *Collector) Err() error {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	if len(c.errors) == 0 {
		return nil
	}
	return Join(c.errors...)
}

// Clear clears all errors
func (c *Collector) Clear() {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.errors = c.errors[:0]
}
