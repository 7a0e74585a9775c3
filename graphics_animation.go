package screen

import (
	"image"
	"image/draw"
	"time"
)

// CoalescedFrame resolves a Frame's fully-composited RGBA bitmap by
// walking its BaseFrameID chain up to coalesceDepthLimit deep,
// compositing each frame over its base with alpha_blend or
// blend_on_opaque as the frame dictates, and caching the result on the
// Frame itself until the next 'c' (compose) command invalidates it.
func (img *Image) CoalescedFrame(index int) []byte {
	if index < 0 || index >= len(img.Frames) {
		return nil
	}
	frame := img.Frames[index]
	if frame.coalesced != nil {
		return frame.coalesced
	}
	fullFrame := frame.X == 0 && frame.Y == 0 &&
		(frame.Width == 0 || frame.Width == img.Width) &&
		(frame.Height == 0 || frame.Height == img.Height)
	if frame.BaseFrameID == 0 && fullFrame {
		frame.coalesced = frame.Data
		return frame.coalesced
	}

	chain := []*Frame{frame}
	visited := map[uint32]bool{frame.ID: true}
	cur := frame
	for cur.BaseFrameID != 0 {
		if visited[cur.BaseFrameID] {
			break // cycle; stop coalescing, use what we have
		}
		if len(chain) >= coalesceDepthLimit {
			break
		}
		base := img.frameByID(cur.BaseFrameID)
		if base == nil {
			break
		}
		visited[base.ID] = true
		chain = append(chain, base)
		cur = base
	}

	// chain is ordered newest-first; composite oldest-to-newest, each
	// layer drawn only onto its own declared (X, Y, Width, Height)
	// sub-rectangle of the base, not the full image.
	base := image.NewRGBA(image.Rect(0, 0, int(img.Width), int(img.Height)))
	for i := len(chain) - 1; i >= 0; i-- {
		layer := chain[i]
		w, h := int(layer.Width), int(layer.Height)
		if w == 0 || h == 0 {
			w, h = int(img.Width), int(img.Height)
		}
		rgba := rgbaFromBytes(layer.Data, w, h)
		if rgba == nil {
			continue
		}
		op := draw.Over
		if layer.IsOpaque {
			op = draw.Src
		}
		dst := image.Rect(int(layer.X), int(layer.Y), int(layer.X)+w, int(layer.Y)+h).Intersect(base.Bounds())
		draw.Draw(base, dst, rgba, image.Point{}, op)
	}
	frame.coalesced = base.Pix
	return frame.coalesced
}

func (img *Image) frameByID(id uint32) *Frame {
	for _, f := range img.Frames {
		if f.ID == id {
			return f
		}
	}
	return nil
}

func rgbaFromBytes(data []byte, w, h int) *image.RGBA {
	if len(data) < w*h*4 {
		return nil
	}
	return &image.RGBA{Pix: data, Stride: w * 4, Rect: image.Rect(0, 0, w, h)}
}

// AnimationTick is the result of ScanActiveAnimations: the shortest
// delay until the next frame change across every running animation,
// and the set of image ids whose displayed frame actually changed.
type AnimationTick struct {
	NextGap time.Duration
	Dirtied []uint32
}

// ScanActiveAnimations advances every running Image's animation clock
// to now, returning how long until the next frame boundary (so the
// caller can schedule exactly one more tick rather than poll) and which
// images changed their visible frame this call.
func (g *GraphicsManager) ScanActiveAnimations(now time.Time) AnimationTick {
	g.mu.Lock()
	defer g.mu.Unlock()

	var tick AnimationTick
	tick.NextGap = -1

	for id, img := range g.images {
		if img.Anim.Stopped || !img.Anim.Running || len(img.Frames) <= 1 {
			continue
		}
		cur := img.Frames[img.Anim.CurrentFrameIndex]
		gap := time.Duration(cur.GapMS) * time.Millisecond
		if gap <= 0 {
			continue
		}
		elapsed := now.Sub(img.Anim.CurrentFrameShownAt)
		if elapsed >= gap {
			next := img.Anim.CurrentFrameIndex + 1
			if next >= len(img.Frames) {
				img.Anim.CurrentLoop++
				if img.Anim.MaxLoops > 0 && img.Anim.CurrentLoop >= img.Anim.MaxLoops {
					img.Anim.Running = false
					img.Anim.Stopped = true
					continue
				}
				next = 0
			}
			img.Anim.CurrentFrameIndex = next
			img.Anim.CurrentFrameShownAt = now
			tick.Dirtied = append(tick.Dirtied, id)
			g.layersDirty = true
			gap = time.Duration(img.Frames[next].GapMS) * time.Millisecond
		} else {
			gap -= elapsed
		}
		if tick.NextGap < 0 || gap < tick.NextGap {
			tick.NextGap = gap
		}
	}
	return tick
}
