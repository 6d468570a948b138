// Copyright 2024 Gustavo C. Viegas. All rights reserved.

package frame

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dataphract/reify/driver"
	"github.com/dataphract/reify/driver/drivertest"
)

func TestResourcesAwaitNoopWithoutPendingSubmission(t *testing.T) {
	gpu := drivertest.New()
	res, err := NewResources(gpu)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), time.Millisecond)
	defer cancel()
	assert.NoError(t, res.Await(ctx))
}

func TestResourcesResetRequiresAwait(t *testing.T) {
	gpu := drivertest.New()
	res, err := NewResources(gpu)
	require.NoError(t, err)

	fc := NewContext(res)
	require.NoError(t, fc.CmdBuffer().Begin())

	require.NoError(t, fc.SubmitAndPresent(gpu, nil, 0))
	assert.Error(t, res.Reset(), "Reset before Await must report the outstanding submission")

	require.NoError(t, res.Await(context.Background()))
	assert.NoError(t, res.Reset())
}

func TestAwaitAndDestroyAllWaitsOutOutstandingSubmissions(t *testing.T) {
	gpu := drivertest.New()

	var all []*Resources
	for i := 0; i < 3; i++ {
		res, err := NewResources(gpu)
		require.NoError(t, err)
		fc := NewContext(res)
		require.NoError(t, fc.CmdBuffer().Begin())
		require.NoError(t, fc.SubmitAndPresent(gpu, nil, 0))
		all = append(all, res)
	}

	require.NoError(t, AwaitAndDestroyAll(context.Background(), all))
	for _, res := range all {
		assert.False(t, res.pending)
	}
}

func TestContextSwapchainTargetRoundTrips(t *testing.T) {
	gpu := drivertest.New()
	res, err := NewResources(gpu)
	require.NoError(t, err)
	fc := NewContext(res)

	img, err := gpu.NewImage(driver.RGBA8un, driver.Dim3D{Width: 320, Height: 240, Depth: 1}, 1, 1, 1, driver.URenderTarget)
	require.NoError(t, err)
	view, err := img.NewView(driver.IView2D, 0, 1, 0, 1)
	require.NoError(t, err)

	fc.SetSwapchainTarget(img, view, driver.RGBA8un, 320, 240)
	assert.Equal(t, img, fc.SwapchainImage())
	assert.Equal(t, view, fc.SwapchainView())
	w, h := fc.Extent()
	assert.Equal(t, 320, w)
	assert.Equal(t, 240, h)
}
