// Copyright 2024 Gustavo C. Viegas. All rights reserved.

package graph

import "github.com/dataphract/reify/driver"

// blitNode is the built-in node that copies the full subresource of one
// image into another via a single 2D blit.
type blitNode struct {
	label  string
	input  GraphImage
	output OutputImage
}

// AddBlit registers a node that blits the full contents of input into
// output, optionally declaring that output supersedes consumed.
func (e *Editor) AddBlit(label string, input, output GraphImage, consumed *GraphImage) GraphNode {
	n := &blitNode{
		label: label,
		input: input,
		output: OutputImage{
			Key:      output,
			Consumed: consumed,
			Access: ResourceAccess{
				Stage:  driver.SCopy,
				Access: driver.ACopyWrite,
				Layout: driver.LCopyDst,
				Usage:  driver.UCopyDst,
			},
		},
	}
	return e.AddNode(label, n)
}

func (n *blitNode) Inputs() NodeIO {
	return NodeIO{InImages: []InputImage{{
		Key: n.input,
		Access: ResourceAccess{
			Stage:  driver.SCopy,
			Access: driver.ACopyRead,
			Layout: driver.LCopySrc,
			Usage:  driver.UCopySrc,
		},
	}}}
}

func (n *blitNode) Outputs() NodeIO {
	return NodeIO{OutImages: []OutputImage{n.output}}
}

func (n *blitNode) Execute(nodeCtx *NodeContext) error {
	srcImg, _, srcDesc := nodeCtx.Image(n.input)
	dstImg, _, dstDesc := nodeCtx.Image(n.output.Key)

	nodeCtx.CmdBuffer.BeginBlit(false)
	nodeCtx.CmdBuffer.CopyImage(&driver.ImageCopy{
		From:   srcImg,
		To:     dstImg,
		Size:   driver.Dim3D{Width: minInt(srcDesc.Width, dstDesc.Width), Height: minInt(srcDesc.Height, dstDesc.Height), Depth: 1},
		Layers: 1,
	})
	nodeCtx.CmdBuffer.EndBlit()
	return nil
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
