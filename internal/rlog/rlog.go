// Copyright 2024 Gustavo C. Viegas. All rights reserved.

// Package rlog provides the structured logger shared by the render-graph
// packages: a process-wide diagnostic sink that every package can reach
// without threading a logger parameter through every call, carrying
// structured key-value fields via github.com/hashicorp/go-hclog.
package rlog

import (
	"os"
	"sync"

	"github.com/hashicorp/go-hclog"
)

var (
	mu  sync.Mutex
	log hclog.Logger = hclog.New(&hclog.LoggerOptions{
		Name:  "reify",
		Level: hclog.Warn,
		Output: os.Stderr,
	})
)

// Logger returns the process-wide logger.
func Logger() hclog.Logger {
	mu.Lock()
	defer mu.Unlock()
	return log
}

// SetLogger replaces the process-wide logger. It is meant to be called
// once at program startup (e.g., to raise the level to Debug, or to route
// output through an application's own logging pipeline).
func SetLogger(l hclog.Logger) {
	mu.Lock()
	defer mu.Unlock()
	log = l
}

// Named returns a sub-logger scoped to the given component name, the way
// graph/compile.go, graph/transient.go and display/display.go tag their
// messages.
func Named(name string) hclog.Logger {
	return Logger().Named(name)
}
