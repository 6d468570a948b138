// Copyright 2024 Gustavo C. Viegas. All rights reserved.

package graph

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dataphract/reify/driver"
	"github.com/dataphract/reify/driver/drivertest"
	"github.com/dataphract/reify/frame"
)

// TestClearScreenExecute exercises a single render pass that clears the
// swapchain-bound image and nothing else.
func TestClearScreenExecute(t *testing.T) {
	e := NewEditor()
	target := e.AddImage("target", ImageDesc{Format: driver.BGRA8un, Width: 800, Height: 600})

	rp := e.AddRenderPass("clear", RenderPass{
		ColorAttachments: []ColorAttachmentDesc{{
			Load:  driver.LClear,
			Store: driver.SStore,
			Clear: driver.ClearFloat32(0, 0, 0, 1),
		}},
	})
	rp.SetColorAttachment(0, target, nil)

	compiled, err := e.Build(target)
	require.NoError(t, err)
	assert.Equal(t, 1, len(compiled.order))

	gpu := drivertest.New()
	rt := NewRuntime(gpu, compiled, RuntimeConfig{FramesInFlight: 2})
	rt.BindSwapchain(target)

	res, err := frame.NewResources(gpu)
	require.NoError(t, err)
	fc := frame.NewContext(res)

	img, err := gpu.NewImage(driver.BGRA8un, driver.Dim3D{Width: 800, Height: 600, Depth: 1}, 1, 1, 1, driver.URenderTarget)
	require.NoError(t, err)
	view, err := img.NewView(driver.IView2D, 0, 1, 0, 1)
	require.NoError(t, err)
	fc.SetSwapchainTarget(img, view, driver.BGRA8un, 800, 600)

	require.NoError(t, fc.CmdBuffer().Begin())
	require.NoError(t, rt.Execute(context.Background(), fc))

	cb := gpu.CmdBuffers[0]
	assert.Equal(t, 1, len(cb.Passes))
	assert.Equal(t, 800, cb.Passes[0].Width)
	assert.Equal(t, 600, cb.Passes[0].Height)
	assert.True(t, cb.LabelBalanced())
}

// TestBlitExecute exercises a render graph where one node produces a
// transient image and a blit node copies it into the swapchain-bound
// final image.
func TestBlitExecute(t *testing.T) {
	e := NewEditor()
	src := e.AddImage("src", ImageDesc{Format: driver.RGBA8un, Width: 64, Height: 64, Usage: driver.URenderTarget})
	final := e.AddImage("final", ImageDesc{Format: driver.BGRA8un, Width: 64, Height: 64})

	rp := e.AddRenderPass("fill src", RenderPass{
		ColorAttachments: []ColorAttachmentDesc{{Load: driver.LClear, Store: driver.SStore, Clear: driver.ClearFloat32(1, 0, 0, 1)}},
	})
	rp.SetColorAttachment(0, src, nil)

	e.AddBlit("blit to final", src, final, nil)

	compiled, err := e.Build(final)
	require.NoError(t, err)
	assert.Equal(t, 2, len(compiled.order))

	gpu := drivertest.New()
	rt := NewRuntime(gpu, compiled, RuntimeConfig{})
	rt.BindSwapchain(final)

	res, err := frame.NewResources(gpu)
	require.NoError(t, err)
	fc := frame.NewContext(res)

	img, err := gpu.NewImage(driver.BGRA8un, driver.Dim3D{Width: 64, Height: 64, Depth: 1}, 1, 1, 1, driver.UCopyDst)
	require.NoError(t, err)
	view, err := img.NewView(driver.IView2D, 0, 1, 0, 1)
	require.NoError(t, err)
	fc.SetSwapchainTarget(img, view, driver.BGRA8un, 64, 64)

	require.NoError(t, fc.CmdBuffer().Begin())
	require.NoError(t, rt.Execute(context.Background(), fc))

	cb := gpu.CmdBuffers[0]
	assert.Equal(t, 1, len(cb.Passes))
	assert.True(t, len(cb.Transitions) > 0, "blit's RAW dependency on src should emit a layout transition")
	assert.True(t, cb.LabelBalanced())
}

func TestRuntimeDestroyReleasesTransientImages(t *testing.T) {
	e := NewEditor()
	final := e.AddImage("final", ImageDesc{Format: driver.RGBA8un, Width: 16, Height: 16})
	rp := e.AddRenderPass("pass", RenderPass{
		ColorAttachments: []ColorAttachmentDesc{{Load: driver.LClear, Store: driver.SStore}},
	})
	rp.SetColorAttachment(0, final, nil)

	compiled, err := e.Build(final)
	require.NoError(t, err)

	gpu := drivertest.New()
	rt := NewRuntime(gpu, compiled, RuntimeConfig{FramesInFlight: 1})
	// No BindSwapchain: final resolves through the transient cache.

	res, err := frame.NewResources(gpu)
	require.NoError(t, err)
	fc := frame.NewContext(res)
	require.NoError(t, fc.CmdBuffer().Begin())
	require.NoError(t, rt.Execute(context.Background(), fc))
	require.Len(t, rt.banks[0].images, 1)

	rt.Destroy()
	assert.Empty(t, rt.banks[0].images)
}
