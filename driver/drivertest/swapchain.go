// Copyright 2024 Gustavo C. Viegas. All rights reserved.

package drivertest

import (
	"errors"

	"github.com/dataphract/reify/driver"
	"github.com/dataphract/reify/wsi"
)

// Swapchain is a fake driver.Swapchain over a fixed ring of images, so
// package display's acquisition sequence can be exercised without a real
// surface. NextSuboptimal/NextErr let a test script the exact Next outcome
// for a suboptimal image or an out-of-date swapchain.
type Swapchain struct {
	win    wsi.Window
	format driver.PixelFmt
	views  []driver.ImageView
	images []*image

	cur int

	// NextSuboptimal, if true, makes the next Next call report suboptimal
	// (but still succeed).
	NextSuboptimal bool
	// NextErr, if non-nil, makes the next Next call fail with this error
	// instead of returning an index.
	NextErr error

	RecreateCount int
	destroyed     bool
}

// NewSwapchain implements driver.Presenter for GPU.
func (g *GPU) NewSwapchain(win wsi.Window, imageCount int) (driver.Swapchain, error) {
	sc := &Swapchain{win: win, format: driver.BGRA8sRGB}
	for i := 0; i < imageCount; i++ {
		img := &image{format: sc.format, size: driver.Dim3D{Width: win.Width(), Height: win.Height(), Depth: 1}, layers: 1, levels: 1, samples: 1}
		view, _ := img.NewView(driver.IView2D, 0, 1, 0, 1)
		sc.images = append(sc.images, img)
		sc.views = append(sc.views, view)
	}
	return sc, nil
}

func (s *Swapchain) Destroy() { s.destroyed = true }

func (s *Swapchain) Views() []driver.ImageView { return s.views }

func (s *Swapchain) Next(cb driver.CmdBuffer) (index int, suboptimal bool, err error) {
	if s.NextErr != nil {
		err, s.NextErr = s.NextErr, nil
		return 0, false, err
	}
	index = s.cur
	s.cur = (s.cur + 1) % len(s.images)
	suboptimal = s.NextSuboptimal
	s.NextSuboptimal = false
	return index, suboptimal, nil
}

func (s *Swapchain) Present(index int, cb driver.CmdBuffer) error {
	if index < 0 || index >= len(s.images) {
		return errors.New("drivertest: present index out of range")
	}
	return nil
}

func (s *Swapchain) Recreate() error {
	s.RecreateCount++
	return nil
}

func (s *Swapchain) Format() driver.PixelFmt { return s.format }
