// Copyright 2024 Gustavo C. Viegas. All rights reserved.

package display

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dataphract/reify/driver"
	"github.com/dataphract/reify/driver/drivertest"
	"github.com/dataphract/reify/frame"
)

// fakeWindow is a minimal wsi.Window for tests that never touch a real
// platform surface.
type fakeWindow struct {
	w, h  int
	title string
}

func (f *fakeWindow) Map() error                 { return nil }
func (f *fakeWindow) Unmap() error                { return nil }
func (f *fakeWindow) Resize(w, h int) error       { f.w, f.h = w, h; return nil }
func (f *fakeWindow) SetTitle(title string) error { f.title = title; return nil }
func (f *fakeWindow) Close()                      {}
func (f *fakeWindow) Width() int                  { return f.w }
func (f *fakeWindow) Height() int                 { return f.h }
func (f *fakeWindow) Title() string               { return f.title }

func newTestDisplay(t *testing.T) (*Display, *drivertest.GPU) {
	t.Helper()
	gpu := drivertest.New()
	win := &fakeWindow{w: 640, h: 480, title: "test"}
	d, err := New(gpu, win, Config{})
	require.NoError(t, err)
	return d, gpu
}

// TestAcquirePresentCycle exercises the acquire/present sequence end to
// end with no suboptimal/out-of-date conditions: the opening and closing
// transitions are recorded around the runtime's own work, and Present
// reaches the fake swapchain.
func TestAcquirePresentCycle(t *testing.T) {
	d, gpu := newTestDisplay(t)
	res, err := frame.NewResources(gpu)
	require.NoError(t, err)

	fc, result, err := d.Acquire(context.Background(), res)
	require.NoError(t, err)
	require.False(t, result.Suboptimal)
	require.NotNil(t, fc.SwapchainView())

	require.NoError(t, d.Present(fc))

	cb := gpu.CmdBuffers[0]
	require.Len(t, cb.Transitions, 2)
	require.Equal(t, driver.LUndefined, cb.Transitions[0][0].LayoutBefore)
	require.Equal(t, driver.LColorTarget, cb.Transitions[0][0].LayoutAfter)
	require.Equal(t, driver.LColorTarget, cb.Transitions[1][0].LayoutBefore)
	require.Equal(t, driver.LPresent, cb.Transitions[1][0].LayoutAfter)
}

// TestAcquireSuboptimal covers a suboptimal swapchain image: the display
// layer reports Suboptimal but the frame still proceeds to completion and
// presents; the host then calls Recreate.
func TestAcquireSuboptimal(t *testing.T) {
	d, gpu := newTestDisplay(t)
	res, err := frame.NewResources(gpu)
	require.NoError(t, err)

	sc := d.sc.(*drivertest.Swapchain)
	sc.NextSuboptimal = true

	fc, result, err := d.Acquire(context.Background(), res)
	require.NoError(t, err)
	require.True(t, result.Suboptimal)

	require.NoError(t, d.Present(fc))
	require.Equal(t, 0, sc.RecreateCount)

	require.NoError(t, d.Recreate())
	require.Equal(t, 1, sc.RecreateCount)
}

// TestAcquireOutOfDate verifies an out-of-date swapchain aborts the frame
// with ErrOutOfDate rather than proceeding.
func TestAcquireOutOfDate(t *testing.T) {
	d, _ := newTestDisplay(t)
	res, err := frame.NewResources(drivertest.New())
	require.NoError(t, err)

	sc := d.sc.(*drivertest.Swapchain)
	sc.NextErr = ErrOutOfDate

	_, _, err = d.Acquire(context.Background(), res)
	require.ErrorIs(t, err, ErrOutOfDate)
}
