// Copyright 2024 Gustavo C. Viegas. All rights reserved.

package drivertest

import "github.com/dataphract/reify/driver"

// Driver is a fake driver.Driver backed by a fake GPU, so that package
// device's Get/New - and cmd/democube - can be exercised without a real
// GPU instance, via the same Open/Name/Close shape any driver.Driver
// implementation follows.
type Driver struct {
	name string
	gpu  *GPU
	open bool
}

// NewDriver creates a fake driver.Driver named name. Open returns a GPU
// sharing state with the one returned by GPU, so a test can register the
// driver, open it through device.New, and still assert on the same
// CmdBuffers/CommitLog it inspects directly.
func NewDriver(name string) *Driver {
	return &Driver{name: name, gpu: New()}
}

func (d *Driver) Open() (driver.GPU, error) {
	d.open = true
	return d.gpu, nil
}

func (d *Driver) Name() string { return d.name }

func (d *Driver) Close() { d.open = false }

// GPU returns the fake GPU this driver opens, whether or not Open has been
// called yet.
func (d *Driver) GPU() *GPU { return d.gpu }
