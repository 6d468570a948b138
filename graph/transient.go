// Copyright 2024 Gustavo C. Viegas. All rights reserved.

package graph

import (
	"github.com/dataphract/reify/driver"
	"github.com/dataphract/reify/internal/rlog"
)

// transientImage is one physical image held by a transientCache, along with
// the descriptor and usage mask it currently satisfies.
type transientImage struct {
	desc  ImageDesc
	usage driver.Usage
	img   driver.Image
	view  driver.ImageView
}

// transientCache is a per-runtime-bank store of physical images that
// satisfy graph image requests. A graph image's physical image is recreated
// in place whenever the requested descriptor or accumulated usage mask
// changes - most commonly on the first resolve, or after a swapchain/window
// resize changes a dependent image's extent.
type transientCache struct {
	gpu    driver.GPU
	images map[uint32]*transientImage
}

func newTransientCache(gpu driver.GPU) *transientCache {
	return &transientCache{gpu: gpu, images: map[uint32]*transientImage{}}
}

// resolve returns the physical image and default view backing key, creating
// or recreating it if necessary.
func (tc *transientCache) resolve(key GraphImage, desc ImageDesc, usage driver.Usage) (driver.Image, driver.ImageView, error) {
	idx := key.Index()
	if cur, ok := tc.images[idx]; ok {
		if cur.desc == desc && cur.usage == usage {
			return cur.img, cur.view, nil
		}
		rlog.Named("graph.runtime").Debug("recreating transient image", "index", idx,
			"width", desc.Width, "height", desc.Height, "format", desc.Format)
		cur.view.Destroy()
		cur.img.Destroy()
		delete(tc.images, idx)
	}

	img, err := tc.gpu.NewImage(desc.Format, driver.Dim3D{Width: desc.Width, Height: desc.Height, Depth: 1}, 1, 1, 1, usage)
	if err != nil {
		return nil, nil, err
	}
	view, err := img.NewView(driver.IView2D, 0, 1, 0, 1)
	if err != nil {
		img.Destroy()
		return nil, nil, err
	}
	tc.images[idx] = &transientImage{desc: desc, usage: usage, img: img, view: view}
	return img, view, nil
}

// destroy releases every physical image held by the cache.
func (tc *transientCache) destroy() {
	for idx, ti := range tc.images {
		ti.view.Destroy()
		ti.img.Destroy()
		delete(tc.images, idx)
	}
}
