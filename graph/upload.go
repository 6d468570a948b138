// Copyright 2024 Gustavo C. Viegas. All rights reserved.

package graph

import "context"

// StagingUploader is the seam a render graph uses to get CPU-side data
// into a GraphBuffer without this package implementing a staging-buffer
// pool itself. The pool that backs Upload is expected to size and reuse a
// ring of host-visible buffers and issue the copy into dst's physical
// buffer, but that implementation lives outside the render-graph core.
type StagingUploader interface {
	// Upload copies src into dst's current physical buffer, honoring
	// ctx's deadline/cancellation. It must not be called concurrently
	// with a Runtime.Execute that reads dst.
	Upload(ctx context.Context, dst GraphBuffer, src []byte) error
}
