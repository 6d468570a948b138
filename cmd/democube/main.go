// Copyright 2024 Gustavo C. Viegas. All rights reserved.

// Command democube opens a window, builds a one-node render graph that
// clears the swapchain image to a solid color, and runs it for a fixed
// number of frames (or until the window is closed).
//
// It exercises the same path a real application would: device.Get for the
// GPU handle, display.New for the swapchain, a graph.Editor to describe the
// frame's work, and a graph.Runtime/frame.Resources pair per in-flight
// frame. This module ships no cgo GPU backend, so the registered driver is
// driver/drivertest's in-process fake - it records every command a real
// backend would issue without presenting actual pixels, which is enough to
// exercise the full render-graph path end to end.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/dataphract/reify/device"
	"github.com/dataphract/reify/display"
	"github.com/dataphract/reify/driver"
	"github.com/dataphract/reify/driver/drivertest"
	"github.com/dataphract/reify/frame"
	"github.com/dataphract/reify/graph"
	"github.com/dataphract/reify/internal/rlog"
	"github.com/dataphract/reify/wsi"

	"github.com/hashicorp/go-hclog"
)

func main() {
	width := flag.Int("width", 1280, "window width")
	height := flag.Int("height", 720, "window height")
	frames := flag.Int("frames", 0, "number of frames to render before exiting (0 runs until the window is closed)")
	framesInFlight := flag.Int("frames-in-flight", 2, "number of in-flight frame resource sets")
	verbose := flag.Bool("v", false, "enable debug logging")
	flag.Parse()

	if *verbose {
		rlog.SetLogger(hclog.New(&hclog.LoggerOptions{Name: "reify", Level: hclog.Debug, Output: os.Stderr}))
	}

	driver.Register(drivertest.NewDriver("software"))

	if err := run(*width, *height, *frames, *framesInFlight); err != nil {
		fmt.Fprintln(os.Stderr, "democube:", err)
		os.Exit(1)
	}
}

func run(width, height, maxFrames, framesInFlight int) error {
	if wsi.PlatformInUse() == wsi.None {
		return fmt.Errorf("no windowing platform available")
	}

	win, err := wsi.NewWindow(width, height, "democube")
	if err != nil {
		return fmt.Errorf("create window: %w", err)
	}
	defer win.Close()
	if err := win.Map(); err != nil {
		return fmt.Errorf("map window: %w", err)
	}

	h := device.Get()
	gpu := h.GPU()

	dpy, err := display.New(gpu, win, display.Config{ImageCount: 3})
	if err != nil {
		return fmt.Errorf("create display: %w", err)
	}
	defer dpy.Close()

	compiled, target, err := buildClearGraph(width, height)
	if err != nil {
		return fmt.Errorf("build graph: %w", err)
	}

	rt := graph.NewRuntime(gpu, compiled, graph.RuntimeConfig{FramesInFlight: framesInFlight})
	defer rt.Destroy()
	rt.BindSwapchain(target)

	resources := make([]*frame.Resources, framesInFlight)
	for i := range resources {
		res, err := frame.NewResources(gpu)
		if err != nil {
			return fmt.Errorf("create frame resources %d: %w", i, err)
		}
		resources[i] = res
	}
	defer func() {
		if err := frame.AwaitAndDestroyAll(context.Background(), resources); err != nil {
			fmt.Fprintln(os.Stderr, "democube: error awaiting in-flight frames during shutdown:", err)
		}
	}()

	ctx := context.Background()
	var quit quitHandler
	wsi.SetWindowHandler(&quit)

	for frameIdx := uint64(0); maxFrames <= 0 || int(frameIdx) < maxFrames; frameIdx++ {
		wsi.Dispatch()
		if quit.closed {
			break
		}

		res := resources[frameIdx%uint64(len(resources))]
		fc, acq, err := dpy.Acquire(ctx, res)
		if errors.Is(err, display.ErrOutOfDate) {
			if err := dpy.Recreate(); err != nil {
				return fmt.Errorf("recreate swapchain: %w", err)
			}
			continue
		}
		if err != nil {
			return fmt.Errorf("acquire frame: %w", err)
		}

		if err := rt.Execute(ctx, fc); err != nil {
			return fmt.Errorf("execute frame %d: %w", frameIdx, err)
		}

		if err := dpy.Present(fc); err != nil {
			return fmt.Errorf("present frame %d: %w", frameIdx, err)
		}
		if acq.Suboptimal {
			if err := dpy.Recreate(); err != nil {
				return fmt.Errorf("recreate swapchain: %w", err)
			}
		}
	}

	return nil
}

// buildClearGraph describes a graph with a single render-pass node that
// clears its one color attachment, bound by the caller to the swapchain
// image via graph.Runtime.BindSwapchain.
func buildClearGraph(width, height int) (*graph.Compiled, graph.GraphImage, error) {
	e := graph.NewEditor()
	target := e.AddImage("swapchain", graph.ImageDesc{
		Format: driver.BGRA8sRGB,
		Width:  width,
		Height: height,
	})

	rp := e.AddRenderPass("clear", graph.RenderPass{
		ColorAttachments: []graph.ColorAttachmentDesc{{
			Load:  driver.LClear,
			Store: driver.SStore,
			Clear: driver.ClearFloat32(0.05, 0.05, 0.08, 1),
		}},
	})
	rp.SetColorAttachment(0, target, nil)

	compiled, err := e.Build(target)
	if err != nil {
		return nil, graph.GraphImage{}, err
	}
	return compiled, target, nil
}

// quitHandler implements wsi.WindowHandler and records when the demo's
// window has been closed, so the render loop can exit gracefully.
type quitHandler struct {
	closed bool
}

func (q *quitHandler) WindowClose(win wsi.Window) { q.closed = true }

func (q *quitHandler) WindowResize(win wsi.Window, newWidth, newHeight int) {}
