// Copyright 2024 Gustavo C. Viegas. All rights reserved.

// Package device provides process-wide access to a driver.GPU, either as a
// lazily-initialized singleton (Get) or as an explicitly constructed,
// independently owned Handle (New).
//
// Driver selection matches by substring of the driver name, falling back to
// "try every registered driver". Get wraps this in sync.Once instead of an
// init-time package variable, since its laziness is part of the contract: a
// caller that never touches the GPU should never pay for opening one.
package device

import (
	"errors"
	"strings"
	"sync"

	"github.com/dataphract/reify/driver"
	"github.com/dataphract/reify/internal/rlog"
)

var errNoDriver = errors.New("device: no matching driver found")

// Handle exposes the GPU driver and its reported limits. graph, frame and
// display take a driver.GPU value and never reach package-level state
// directly, so the GPU of either Get's singleton or an explicitly threaded
// New Handle composes with them identically.
type Handle interface {
	// Driver returns the underlying driver.Driver.
	Driver() driver.Driver

	// GPU returns the underlying driver.GPU.
	GPU() driver.GPU

	// Limits returns the GPU's reported implementation limits.
	Limits() driver.Limits

	// Close tears down the underlying driver. Further use of GPU() or any
	// value it previously returned is undefined.
	Close()
}

// DeviceParams selects which registered driver.Driver to open.
type DeviceParams struct {
	// DriverName restricts driver selection to drivers whose name
	// contains this substring. The empty string matches any driver.
	DriverName string
}

type handle struct {
	drv driver.Driver
	gpu driver.GPU
	lim driver.Limits
}

func (h *handle) Driver() driver.Driver { return h.drv }
func (h *handle) GPU() driver.GPU       { return h.gpu }
func (h *handle) Limits() driver.Limits { return h.lim }
func (h *handle) Close()                { h.drv.Close() }

// New opens the first registered driver matching params.DriverName,
// falling back to any registered driver if DriverName is empty and no
// driver matched. Each call opens an independent driver/GPU pair; callers
// own the returned Handle and must Close it.
func New(params DeviceParams) (Handle, error) {
	drivers := driver.Drivers()
	err := errNoDriver
	for i := range drivers {
		if !strings.Contains(drivers[i].Name(), params.DriverName) {
			continue
		}
		var gpu driver.GPU
		if gpu, err = drivers[i].Open(); err != nil {
			continue
		}
		rlog.Named("device").Debug("opened driver", "name", drivers[i].Name())
		return &handle{drv: drivers[i], gpu: gpu, lim: gpu.Limits()}, nil
	}
	return nil, err
}

var (
	once   sync.Once
	global Handle
	gerr   error
)

// Get returns the process-wide Handle, opening it on first call (preferring
// a driver named "vulkan", falling back to any registered driver) and
// reusing it on every subsequent call. It panics if no driver is available.
// The failure is deferred to first use instead of package init, so a
// program that never touches the GPU never pays for (or can fail on)
// opening one.
func Get() Handle {
	once.Do(func() {
		global, gerr = New(DeviceParams{DriverName: "vulkan"})
		if gerr != nil {
			global, gerr = New(DeviceParams{})
		}
		if gerr != nil {
			panic(gerr)
		}
	})
	return global
}
