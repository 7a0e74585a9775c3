package screen

import (
	"image"
	"image/draw"

	xdraw "golang.org/x/image/draw"
)

// PlaceConcrete anchors ref at the given grid cell and derives its
// effective row/column span from the image's pixel size and the
// terminal's current cell pixel size, preserving aspect ratio the way
// `handle_put` does (fit-and-letterbox rather than stretch), then
// writes a CellImage into every covered cell of lb.
//
// cellW/cellH are the host's reported cell pixel dimensions (from
// Screen's SizeProvider); a zero value disables aspect fitting and
// falls back to the caller-specified NumRows/NumCols verbatim.
func (g *GraphicsManager) PlaceConcrete(lb *LineBuffer, refID uint32, row, col int, cellW, cellH int) bool {
	g.mu.Lock()
	ref, ok := g.refs[refID]
	if !ok {
		g.mu.Unlock()
		return false
	}
	img := g.images[ref.InternalID]
	if img == nil {
		g.mu.Unlock()
		return false
	}

	ref.StartRow, ref.StartColumn = row, col

	if cellW > 0 && cellH > 0 {
		g.cellPixelW, g.cellPixelH = cellW, cellH
	}

	rows, cols := ref.NumRows, ref.NumCols
	if (rows == 0 || cols == 0) && cellW > 0 && cellH > 0 {
		rows, cols = fitCellSpan(int(ref.SrcWidth), int(ref.SrcHeight), cellW, cellH)
	}
	if rows <= 0 {
		rows = 1
	}
	if cols <= 0 {
		cols = 1
	}
	ref.EffectiveNumRows, ref.EffectiveNumCols = rows, cols
	g.layersDirty = true
	g.mu.Unlock()

	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			gr, gc := row+r, col+c
			if gr < 0 || gr >= lb.Rows() || gc < 0 || gc >= lb.Cols() {
				continue
			}
			cellPtr := lb.Cell(gr, gc)
			if cellPtr == nil {
				continue
			}
			cell := *cellPtr
			cell.Image = &CellImage{
				RefID:   refID,
				ImageID: img.InternalID,
				U0:      float32(c) / float32(cols),
				V0:      float32(r) / float32(rows),
				U1:      float32(c+1) / float32(cols),
				V1:      float32(r+1) / float32(rows),
				ZIndex:  ref.ZIndex,
			}
			cell.MarkDirty()
			lb.SetCell(gr, gc, cell)
		}
	}
	return true
}

// fitCellSpan computes the smallest (rows, cols) cell span that
// contains the pixel dimensions (w, h) without stretching, analogous to
// an aspect-preserving "fit" box: it rounds each axis up to the nearest
// whole cell independently, with a minimum of one cell per axis.
func fitCellSpan(w, h, cellW, cellH int) (rows, cols int) {
	if w <= 0 || h <= 0 || cellW <= 0 || cellH <= 0 {
		return 1, 1
	}
	cols = (w + cellW - 1) / cellW
	rows = (h + cellH - 1) / cellH
	if cols < 1 {
		cols = 1
	}
	if rows < 1 {
		rows = 1
	}
	return rows, cols
}

// resampleToFit resizes src into a dstW x dstH RGBA image using
// x/image/draw's bilinear kernel, used when a placement's effective
// pixel box doesn't match the source pixel rect.
func resampleToFit(src *image.RGBA, dstW, dstH int) *image.RGBA {
	if src.Bounds().Dx() == dstW && src.Bounds().Dy() == dstH {
		return src
	}
	dst := image.NewRGBA(image.Rect(0, 0, dstW, dstH))
	xdraw.ApproxBiLinear.Scale(dst, dst.Bounds(), src, src.Bounds(), xdraw.Src, nil)
	return dst
}

// letterboxFit resamples src to fit within a targetW x targetH box
// without distorting its aspect ratio, centering the result on a
// transparent canvas of exactly that size -- the "fit-and-letterbox
// rather than stretch" placement PlaceConcrete's doc comment promises.
func letterboxFit(src *image.RGBA, targetW, targetH int) *image.RGBA {
	sw, sh := src.Bounds().Dx(), src.Bounds().Dy()
	if sw <= 0 || sh <= 0 || targetW <= 0 || targetH <= 0 {
		return src
	}
	if sw == targetW && sh == targetH {
		return src
	}

	scale := float64(targetW) / float64(sw)
	if s := float64(targetH) / float64(sh); s < scale {
		scale = s
	}
	fitW := int(float64(sw) * scale)
	fitH := int(float64(sh) * scale)
	if fitW < 1 {
		fitW = 1
	}
	if fitH < 1 {
		fitH = 1
	}
	fitted := resampleToFit(src, fitW, fitH)

	canvas := image.NewRGBA(image.Rect(0, 0, targetW, targetH))
	offX, offY := (targetW-fitW)/2, (targetH-fitH)/2
	dst := image.Rect(offX, offY, offX+fitW, offY+fitH)
	draw.Draw(canvas, dst, fitted, image.Point{}, draw.Over)
	return canvas
}

// hasImagePlaceholderRune reports whether ch is the Unicode private-use
// placeholder codepoint (U+10EEEE) the Kitty protocol uses for virtual
// (Unicode-addressed) placements: a cell holding this rune, with a
// diacritic-encoded row/col pair in its combining marks, stands in for
// an image slice without ever transmitting concrete cell coordinates.
const imagePlaceholderRune = rune(0x10EEEE)

func hasImagePlaceholderRune(ch rune) bool { return ch == imagePlaceholderRune }

// ScanPlaceholders walks lb looking for rows flagged
// HasImagePlaceholders and, for each placeholder cell found, resolves
// its encoded (image row, image col) pair from the cell's combining
// marks (diacritics 0..255 encode a byte each, per the Kitty Unicode
// placement scheme) and writes the corresponding CellImage slice for
// the given virtual ref.
func (g *GraphicsManager) ScanPlaceholders(lb *LineBuffer, virtualRefID uint32) {
	g.mu.RLock()
	ref, ok := g.refs[virtualRefID]
	var img *Image
	if ok {
		img = g.images[ref.InternalID]
	}
	g.mu.RUnlock()
	if !ok || img == nil || !ref.IsVirtual {
		return
	}

	rows, cols := ref.EffectiveNumRows, ref.EffectiveNumCols
	if rows <= 0 {
		rows = 1
	}
	if cols <= 0 {
		cols = 1
	}

	for r := 0; r < lb.Rows(); r++ {
		line := lb.Row(r)
		if !line.Attrs.HasImagePlaceholders {
			continue
		}
		for c := 0; c < len(line.Cells); c++ {
			cell := line.Cells[c]
			if !hasImagePlaceholderRune(cell.Char) {
				continue
			}
			pr, pc, ok := decodePlaceholderMarks(cell)
			if !ok {
				continue
			}
			if pr >= rows || pc >= cols {
				continue
			}
			cell.Image = &CellImage{
				RefID:   virtualRefID,
				ImageID: img.InternalID,
				U0:      float32(pc) / float32(cols),
				V0:      float32(pr) / float32(rows),
				U1:      float32(pc+1) / float32(cols),
				V1:      float32(pr+1) / float32(rows),
				ZIndex:  ref.ZIndex,
			}
			cell.MarkDirty()
			lb.SetCell(r, c, cell)
		}
	}
}

// decodePlaceholderMarks reads the row/col pair encoded as two
// combining diacritics on a placeholder cell (marks[0] encodes the
// image row within 0..255 offset by a fixed diacritic base, marks[1]
// the column) — mirroring the scheme the Kitty spec's Unicode
// placement extension uses.
func decodePlaceholderMarks(cell Cell) (row, col int, ok bool) {
	if cell.NumMarks() < 2 {
		return 0, 0, false
	}
	const diacriticBase = 0x0300
	row = int(cell.MarkAt(0)) - diacriticBase
	col = int(cell.MarkAt(1)) - diacriticBase
	if row < 0 || col < 0 {
		return 0, 0, false
	}
	return row, col, true
}
