// Copyright 2024 Gustavo C. Viegas. All rights reserved.

// Package display owns a driver.Swapchain and drives the per-frame
// acquisition/submission sequence: await the previous use of a frame's
// resources, acquire the next swapchain image, record the
// UNDEFINED -> COLOR_ATTACHMENT_OPTIMAL transition that makes the image
// available to a graph.Runtime, and - after the runtime returns - record
// the closing transition to PRESENT_SRC and submit+present.
//
// It is the host: external to the graph core, but the only caller the
// core's Runtime.Execute contract assumes.
package display

import (
	"context"
	"errors"

	"github.com/dataphract/reify/driver"
	"github.com/dataphract/reify/frame"
	"github.com/dataphract/reify/internal/rlog"
	"github.com/dataphract/reify/wsi"
)

const errPrefix = "display: "

func newErr(reason string) error { return errors.New(errPrefix + reason) }

// ErrOutOfDate is returned by Acquire when the swapchain is unusable and
// must be recreated before the next acquisition attempt.
var ErrOutOfDate = errors.New(errPrefix + "swapchain out of date")

// Config controls swapchain (re)creation. Zero values pick triple
// buffering, preferring the driver's own BGRA8-sRGB/MAILBOX/IDENTITY
// defaults - the driver.Presenter implementation is the one that actually
// queries and clamps against surface capabilities, so Config only carries
// the one number package display itself decides: how many images to
// request.
type Config struct {
	// ImageCount is the preferred swapchain length. Zero defaults to 3
	// (triple buffering); the driver.Presenter implementation clamps
	// this to the surface's reported min/max internally.
	ImageCount int
}

// Display owns a driver.Swapchain created against win, and the sequence
// that acquires, hands off to a graph.Runtime-shaped executor, and
// presents one frame at a time.
type Display struct {
	gpu  driver.GPU
	pres driver.Presenter
	win  wsi.Window
	cfg  Config

	sc       driver.Swapchain
	curIndex int
}

// New creates a Display. gpu must implement driver.Presenter (every
// driver.GPU capable of presentation does, per driver/present.go).
func New(gpu driver.GPU, win wsi.Window, cfg Config) (*Display, error) {
	pres, ok := gpu.(driver.Presenter)
	if !ok {
		return nil, driver.ErrCannotPresent
	}
	if cfg.ImageCount <= 0 {
		cfg.ImageCount = 3
	}
	d := &Display{gpu: gpu, pres: pres, win: win, cfg: cfg}
	if err := d.recreate(); err != nil {
		return nil, err
	}
	return d, nil
}

func (d *Display) recreate() error {
	sc, err := d.pres.NewSwapchain(d.win, d.cfg.ImageCount)
	if err != nil {
		return err
	}
	d.sc = sc
	return nil
}

// AcquireResult reports the outcome of Acquire beyond plain success.
type AcquireResult struct {
	// Suboptimal is true when the image is valid and may be rendered
	// into and presented normally, but the host should call Recreate at
	// its next convenience.
	Suboptimal bool
}

// Acquire runs steps 1-4 of the acquisition sequence: it awaits res's
// availability, asks the swapchain for the next image, resets and begins
// res's command buffer, and records the swapchain image's opening
// transition (UNDEFINED -> COLOR_ATTACHMENT_OPTIMAL). The returned
// *frame.Context is ready to be handed to a graph.Runtime's Execute.
//
// ErrOutOfDate is returned verbatim (never wrapped) when the swapchain
// must be recreated before trying again: the host must call Recreate
// before the next Acquire attempt.
func (d *Display) Acquire(ctx context.Context, res *frame.Resources) (*frame.Context, AcquireResult, error) {
	if err := res.Await(ctx); err != nil {
		return nil, AcquireResult{}, err
	}

	cb := res.CmdBuffer
	index, suboptimal, err := d.sc.Next(cb)
	if err != nil {
		return nil, AcquireResult{}, ErrOutOfDate
	}

	if err := res.Reset(); err != nil {
		return nil, AcquireResult{}, err
	}
	if err := cb.Begin(); err != nil {
		return nil, AcquireResult{}, err
	}

	view := d.sc.Views()[index]
	width, height := d.win.Width(), d.win.Height()
	cb.Transition([]driver.Transition{{
		Barrier: driver.Barrier{
			SyncBefore:   driver.SNone,
			SyncAfter:    driver.SColorOutput,
			AccessBefore: driver.ANone,
			AccessAfter:  driver.AColorWrite,
		},
		LayoutBefore: driver.LUndefined,
		LayoutAfter:  driver.LColorTarget,
		IView:        view,
	}})

	fc := frame.NewContext(res)
	fc.SetSwapchainTarget(nil, view, d.sc.Format(), width, height)
	d.curIndex = index
	return fc, AcquireResult{Suboptimal: suboptimal}, nil
}

// Present runs step 6 of the acquisition sequence: it records the closing
// PRESENT_SRC transition, ends recording, and submits+presents through fc.
func (d *Display) Present(fc *frame.Context) error {
	view := fc.SwapchainView()
	if view == nil {
		return newErr("Present: frame context has no swapchain target")
	}
	fc.CmdBuffer().Transition([]driver.Transition{{
		Barrier: driver.Barrier{
			SyncBefore:   driver.SColorOutput,
			SyncAfter:    driver.SNone,
			AccessBefore: driver.AColorWrite,
			AccessAfter:  driver.ANone,
		},
		LayoutBefore: driver.LColorTarget,
		LayoutAfter:  driver.LPresent,
		IView:        view,
	}})
	return fc.SubmitAndPresent(d.gpu, d.sc, d.curIndex)
}

// Recreate recreates the existing swapchain in place through its own
// Recreate method (creating a new one only if there is none), e.g. in
// response to a Suboptimal notice or a window resize. It logs the
// recreation at Debug level, the same diagnostic-not-control-flow
// treatment package graph gives transient-resource recreation.
func (d *Display) Recreate() error {
	rlog.Named("display").Debug("recreating swapchain")
	if d.sc != nil {
		return d.sc.Recreate()
	}
	return d.recreate()
}

// Close destroys the swapchain.
func (d *Display) Close() {
	if d.sc != nil {
		d.sc.Destroy()
	}
}
