// Copyright 2024 Gustavo C. Viegas. All rights reserved.

package device_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dataphract/reify/device"
	"github.com/dataphract/reify/driver"
	"github.com/dataphract/reify/driver/drivertest"
)

func TestNewSelectsByName(t *testing.T) {
	fake := drivertest.NewDriver("fake-vulkan")
	driver.Register(fake)

	h, err := device.New(device.DeviceParams{DriverName: "fake-vulkan"})
	require.NoError(t, err)
	require.Same(t, fake.GPU(), h.GPU())
	require.Equal(t, fake.GPU().Limits(), h.Limits())
}

func TestNewNoMatch(t *testing.T) {
	_, err := device.New(device.DeviceParams{DriverName: "no-such-driver-xyz"})
	require.Error(t, err)
}

func TestNewEmptyNameMatchesAny(t *testing.T) {
	fake := drivertest.NewDriver("another-fake")
	driver.Register(fake)

	h, err := device.New(device.DeviceParams{})
	require.NoError(t, err)
	require.NotNil(t, h.GPU())
}
