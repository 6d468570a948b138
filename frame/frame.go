// Copyright 2024 Gustavo C. Viegas. All rights reserved.

// Package frame implements the per-in-flight-frame resources a render
// graph runtime executes against: a command buffer and the completion
// signal that guards its reuse.
//
// driver.GPU.Commit already exposes frame completion as a Go channel
// (chan<- error) rather than a raw fence handle, so Resources reuses that
// channel directly as the context-availability primitive instead of
// introducing a separate fence type; image-available/all-commands-complete
// semaphores stay internal to driver.Swapchain, which already manages them
// across Next/Present.
package frame

import (
	"context"
	"errors"

	"golang.org/x/sync/errgroup"

	"github.com/dataphract/reify/driver"
)

const errPrefix = "frame: "

func newErr(reason string) error { return errors.New(errPrefix + reason) }

// Resources is one in-flight frame's command recording state: a command
// buffer and the channel its last submission will signal on completion.
type Resources struct {
	CmdBuffer driver.CmdBuffer

	done    chan error
	pending bool
}

// NewResources creates a frame's resources: one command buffer and its
// completion channel.
func NewResources(gpu driver.GPU) (*Resources, error) {
	cb, err := gpu.NewCmdBuffer()
	if err != nil {
		return nil, err
	}
	return &Resources{CmdBuffer: cb, done: make(chan error, 1)}, nil
}

// Await blocks until this frame's previously submitted work, if any, has
// completed, honoring ctx's deadline/cancellation. It is a no-op if no
// submission is outstanding.
func (r *Resources) Await(ctx context.Context) error {
	if !r.pending {
		return nil
	}
	select {
	case err := <-r.done:
		r.pending = false
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Reset prepares the command buffer for a new recording. Await must have
// returned before calling Reset.
func (r *Resources) Reset() error {
	if r.pending {
		return newErr("Reset called while a submission is still outstanding")
	}
	return r.CmdBuffer.Reset()
}

// Destroy releases the frame's command buffer.
func (r *Resources) Destroy() {
	if r.CmdBuffer != nil {
		r.CmdBuffer.Destroy()
	}
}

// AwaitAndDestroyAll awaits every Resources' outstanding submission
// concurrently, honoring ctx, and destroys all of them once every Await has
// returned. It stops waiting at the first error but still destroys every
// entry in all, so a caller tearing down a whole frames-in-flight set never
// leaks command buffers because one of them was still pending.
func AwaitAndDestroyAll(ctx context.Context, all []*Resources) error {
	g, gctx := errgroup.WithContext(ctx)
	for _, r := range all {
		r := r
		g.Go(func() error { return r.Await(gctx) })
	}
	err := g.Wait()
	for _, r := range all {
		r.Destroy()
	}
	return err
}

// Context is handed to a render-graph runtime for one frame's execution. It
// bundles the frame's command buffer with whichever swapchain image
// display.Acquire resolved for this frame, if any.
type Context struct {
	res *Resources

	scImage  driver.Image
	scView   driver.ImageView
	scFormat driver.PixelFmt
	width    int
	height   int
}

// NewContext wraps res for one frame's execution.
func NewContext(res *Resources) *Context { return &Context{res: res} }

// CmdBuffer returns the frame's command buffer.
func (c *Context) CmdBuffer() driver.CmdBuffer { return c.res.CmdBuffer }

// SetSwapchainTarget records the image/view display.Acquire obtained for
// this frame, and the extent graph nodes should render at.
func (c *Context) SetSwapchainTarget(img driver.Image, view driver.ImageView, format driver.PixelFmt, width, height int) {
	c.scImage, c.scView, c.scFormat, c.width, c.height = img, view, format, width, height
}

// SwapchainImage returns the image set by SetSwapchainTarget, or nil.
func (c *Context) SwapchainImage() driver.Image { return c.scImage }

// SwapchainView returns the view set by SetSwapchainTarget, or nil.
func (c *Context) SwapchainView() driver.ImageView { return c.scView }

// SwapchainFormat returns the pixel format set by SetSwapchainTarget.
func (c *Context) SwapchainFormat() driver.PixelFmt { return c.scFormat }

// Extent returns the render width/height set by SetSwapchainTarget.
func (c *Context) Extent() (width, height int) { return c.width, c.height }

// SubmitAndPresent ends command recording, submits the frame's command
// buffer (arranging for its completion channel to be signaled), and - if sc
// is non-nil - presents the image identified by index.
func (c *Context) SubmitAndPresent(gpu driver.GPU, sc driver.Swapchain, index int) error {
	if sc != nil {
		if err := sc.Present(index, c.res.CmdBuffer); err != nil {
			return err
		}
	}
	if err := c.res.CmdBuffer.End(); err != nil {
		return err
	}
	c.res.pending = true
	gpu.Commit([]driver.CmdBuffer{c.res.CmdBuffer}, c.res.done)
	return nil
}
