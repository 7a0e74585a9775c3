package screen

import "sort"

// ImageRenderData is one entry of the ordered draw list UpdateLayers
// produces: everything the renderer needs to paint one placement's
// currently-visible frame, in back-to-front order.
type ImageRenderData struct {
	RefID   uint32
	ImageID uint32
	Pixels  []byte
	// Width/Height describe Pixels as transmitted; they differ from the
	// owning Image's native size whenever the placement's effective cell
	// span required a letterbox resample to fit its pixel box.
	Width, Height uint32
	Row, Col      int
	Rows, Cols    int
	ZIndex        int32
}

// ScrollData describes a pending scroll so UpdateLayers can carry
// placements along with the content they're anchored to, honoring any
// active scrolling-region margins (spec 4.4.5).
type ScrollData struct {
	Amount      int // positive scrolls content up (history-ward)
	Limit       int // total live rows
	MarginTop   int
	MarginBottom int
	HasMargins  bool
}

// UpdateLayers rebuilds the z-ordered render list for every
// non-virtual, currently-placed ImageRef, applying scroll to adjust
// placement rows first when scroll is non-nil. The returned slice is
// ordered by (ZIndex, ImageID, RefID) ascending, matching the
// below/default/above z-index partitioning the protocol specifies
// (negative z-index renders beneath text, non-negative above).
func (g *GraphicsManager) UpdateLayers(scroll *ScrollData) []ImageRenderData {
	g.mu.Lock()
	defer g.mu.Unlock()

	if scroll != nil && scroll.Amount != 0 {
		g.applyScrollLocked(*scroll)
	}

	if !g.layersDirty && g.renderCache != nil {
		return g.renderCache
	}

	var out []ImageRenderData
	for id, ref := range g.refs {
		if ref.IsVirtual {
			continue
		}
		img := g.images[ref.InternalID]
		if img == nil {
			continue
		}
		pixels := img.CoalescedFrame(img.Anim.CurrentFrameIndex)
		width, height := img.Width, img.Height

		if g.cellPixelW > 0 && g.cellPixelH > 0 && ref.EffectiveNumRows > 0 && ref.EffectiveNumCols > 0 {
			targetW := ref.EffectiveNumCols * g.cellPixelW
			targetH := ref.EffectiveNumRows * g.cellPixelH
			if targetW != int(width) || targetH != int(height) {
				if src := rgbaFromBytes(pixels, int(width), int(height)); src != nil {
					fitted := letterboxFit(src, targetW, targetH)
					pixels = fitted.Pix
					width, height = uint32(targetW), uint32(targetH)
				}
			}
		}

		out = append(out, ImageRenderData{
			RefID:   id,
			ImageID: img.InternalID,
			Pixels:  pixels,
			Width:   width,
			Height:  height,
			Row:     ref.StartRow,
			Col:     ref.StartColumn,
			Rows:    ref.EffectiveNumRows,
			Cols:    ref.EffectiveNumCols,
			ZIndex:  ref.ZIndex,
		})
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].ZIndex != out[j].ZIndex {
			return out[i].ZIndex < out[j].ZIndex
		}
		if out[i].ImageID != out[j].ImageID {
			return out[i].ImageID < out[j].ImageID
		}
		return out[i].RefID < out[j].RefID
	})

	g.renderCache = out
	g.layersDirty = false
	return out
}

// applyScrollLocked shifts every non-virtual placement's StartRow by
// -scroll.Amount (scrolling content up moves placements toward row 0),
// confining the shift to MarginTop..MarginBottom when HasMargins is
// set and dropping placements that scroll off the top entirely.
// Caller holds g.mu.
func (g *GraphicsManager) applyScrollLocked(scroll ScrollData) {
	top, bottom := 0, scroll.Limit-1
	if scroll.HasMargins {
		top, bottom = scroll.MarginTop, scroll.MarginBottom
	}
	for id, ref := range g.refs {
		if ref.IsVirtual {
			continue
		}
		if ref.StartRow < top || ref.StartRow > bottom {
			continue
		}
		ref.StartRow -= scroll.Amount
		rows := ref.EffectiveNumRows
		if rows < 1 {
			rows = 1
		}
		if ref.StartRow+rows <= top {
			delete(g.refs, id)
			if img := g.images[ref.InternalID]; img != nil {
				delete(img.Refs, id)
				img.refcount--
			}
		}
	}
	g.layersDirty = true
}
