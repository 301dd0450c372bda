package render

import (
	"encoding/binary"
	"math"

	"github.com/gogpu/typeset"
)

// maxQuadsPerDraw caps the quads one indexed draw can address: 16-bit
// indices reach 65536 vertices and every quad takes four.
const maxQuadsPerDraw = 16384

// buildQuadVertexData serializes instances into quad vertices, four per
// instance, wound to match the shared 0,1,2 2,3,0 index pattern.
func buildQuadVertexData(instances []typeset.DrawInstance) []byte {
	buf := make([]byte, 0, len(instances)*4*textVertexStride)
	for _, in := range instances {
		buf = writeQuadVertex(buf, in.X0, in.Y0, in.U0, in.V0, in.Color)
		buf = writeQuadVertex(buf, in.X1, in.Y0, in.U1, in.V0, in.Color)
		buf = writeQuadVertex(buf, in.X1, in.Y1, in.U1, in.V1, in.Color)
		buf = writeQuadVertex(buf, in.X0, in.Y1, in.U0, in.V1, in.Color)
	}
	return buf
}

// writeQuadVertex appends one vertex: position, texel coordinate, color.
func writeQuadVertex(buf []byte, x, y, u, v float32, color [4]float32) []byte {
	var vert [textVertexStride]byte
	binary.LittleEndian.PutUint32(vert[0:], math.Float32bits(x))
	binary.LittleEndian.PutUint32(vert[4:], math.Float32bits(y))
	binary.LittleEndian.PutUint32(vert[8:], math.Float32bits(u))
	binary.LittleEndian.PutUint32(vert[12:], math.Float32bits(v))
	for i, c := range color {
		binary.LittleEndian.PutUint32(vert[16+i*4:], math.Float32bits(c))
	}
	return append(buf, vert[:]...)
}

// buildQuadIndexData emits the shared index pattern for numQuads quads,
// six 16-bit indices each.
func buildQuadIndexData(numQuads int) []byte {
	buf := make([]byte, 0, numQuads*6*2)
	for i := 0; i < numQuads; i++ {
		vertex := uint16(i * 4) //nolint:gosec // numQuads is bounded by maxQuadsPerDraw
		for _, off := range [6]uint16{0, 1, 2, 2, 3, 0} {
			buf = binary.LittleEndian.AppendUint16(buf, vertex+off)
		}
	}
	return buf
}

// makeViewportUniform packs the surface size into the uniform block.
// Padding bytes 8..15 remain zero.
func makeViewportUniform(width, height uint32) []byte {
	buf := make([]byte, viewportUniformSize)
	binary.LittleEndian.PutUint32(buf[0:], math.Float32bits(float32(width)))
	binary.LittleEndian.PutUint32(buf[4:], math.Float32bits(float32(height)))
	return buf
}

// coverageToRGBA expands single-channel coverage into RGBA, so a page
// texel reads as premultiplied white scaled by coverage.
func coverageToRGBA(cov []byte) []byte {
	out := make([]byte, len(cov)*4)
	for i, c := range cov {
		out[i*4+0] = c
		out[i*4+1] = c
		out[i*4+2] = c
		out[i*4+3] = c
	}
	return out
}

// copyTightRows copies rows pixel rows of rowBytes bytes from a source
// laid out with srcPitch bytes per row into a tightly packed dst.
func copyTightRows(dst, src []byte, rowBytes, srcPitch, rows int) {
	if rowBytes == srcPitch {
		copy(dst, src[:rowBytes*rows])
		return
	}
	for y := 0; y < rows; y++ {
		copy(dst[y*rowBytes:(y+1)*rowBytes], src[y*srcPitch:y*srcPitch+rowBytes])
	}
}

// swapBGRA swaps the blue and red channels of every pixel in place.
func swapBGRA(pix []byte) {
	for i := 0; i+3 < len(pix); i += 4 {
		pix[i], pix[i+2] = pix[i+2], pix[i]
	}
}
