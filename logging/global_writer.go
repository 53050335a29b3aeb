package logging

import (
	"io"
	"os"
	"sync"
)

// globalWriter is an io.Writer that delegates to an underlying writer,
// which can be swapped at runtime in a thread-safe manner.
type globalWriter struct {
	mu sync.RWMutex
	w  io.Writer
}

// Write implements the io.Writer interface.
func (gw *globalWriter) Write(p []byte) (n int, err error) {
	gw.mu.RLock()
	defer gw.mu.RUnlock()
	return gw.w.Write(p)
}

// Set changes the underlying writer.
func (gw *globalWriter) Set(w io.Writer) {
	gw.mu.Lock()
	defer gw.mu.Unlock()
	gw.w = w
}

var defaultGlobalWriter = &globalWriter{w: os.Stderr}

// SetGlobalOutput redirects the console sink of every logger. It starts
// out as stderr; tests swap in a buffer.
func SetGlobalOutput(w io.Writer) {
	defaultGlobalWriter.Set(w)
}

// GetGlobalOutput returns the console sink shared by all loggers.
func GetGlobalOutput() io.Writer {
	return defaultGlobalWriter
}
