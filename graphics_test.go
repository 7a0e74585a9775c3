package screen

import "testing"

func solidRGBA(w, h int, r, g, b, a byte) []byte {
	out := make([]byte, w*h*4)
	for i := 0; i < w*h; i++ {
		out[i*4] = r
		out[i*4+1] = g
		out[i*4+2] = b
		out[i*4+3] = a
	}
	return out
}

func TestGraphicsManager_StoreAndPlace(t *testing.T) {
	g := NewGraphicsManager(0)
	id := g.StoreImage(2, 2, solidRGBA(2, 2, 255, 0, 0, 255), 7, 0)
	if id == 0 {
		t.Fatal("expected non-zero internal id")
	}
	if got, ok := g.ImageByClientID(7); !ok || got != id {
		t.Fatalf("ImageByClientID(7) = %d, %v, want %d, true", got, ok, id)
	}
}

func TestDispatchCompose_Blits(t *testing.T) {
	g := NewGraphicsManager(0)
	id := g.StoreImage(4, 4, solidRGBA(4, 4, 0, 0, 0, 255), 0, 0)

	// Add a second (white) frame via the frame-add path so img.Frames has
	// two entries to compose between.
	frameCmd := &GraphicsCommand{
		Action: ActionFrame, ImageID: id, Format: FormatRGBA,
		Width: 4, Height: 4, Payload: solidRGBA(4, 4, 255, 255, 255, 255),
		FrameNumber: 1,
	}
	if resp := g.dispatchFrame(frameCmd); resp.Code != "" {
		t.Fatalf("dispatchFrame: %v", resp.Code)
	}

	// dispatchCompose resolves frames by (dstIdx = FrameNumber-1, srcIdx =
	// BaseFrameID-1): FrameNumber=1 is the root (black) frame at index 0,
	// BaseFrameID=2 is the just-added (white) frame at index 1.
	composeCmd := &GraphicsCommand{
		ImageID:     id,
		FrameNumber: 1,
		BaseFrameID: 2,
		SrcWidth:    2, SrcHeight: 2,
		CellXOffset: 1, CellYOffset: 1,
	}

	resp := g.dispatchCompose(composeCmd)
	if resp.Code != "" {
		t.Fatalf("dispatchCompose: %v: %s", resp.Code, resp.Message)
	}

	img := g.Image(id)
	dst := img.Frames[0]
	// Pixel (1,1) should now be white (copied from source); (0,0) must
	// remain the original black.
	at := func(x, y int) []byte {
		i := (y*4 + x) * 4
		return dst.Data[i : i+4]
	}
	if r, gr, b := at(1, 1)[0], at(1, 1)[1], at(1, 1)[2]; r != 255 || gr != 255 || b != 255 {
		t.Fatalf("composed pixel (1,1) = %d,%d,%d, want white", r, gr, b)
	}
	if r, gr, b := at(0, 0)[0], at(0, 0)[1], at(0, 0)[2]; r != 0 || gr != 0 || b != 0 {
		t.Fatalf("untouched pixel (0,0) = %d,%d,%d, want black", r, gr, b)
	}
}

func TestDispatchCompose_RejectsOverlappingSelfBlit(t *testing.T) {
	g := NewGraphicsManager(0)
	id := g.StoreImage(4, 4, solidRGBA(4, 4, 1, 2, 3, 255), 0, 0)

	cmd := &GraphicsCommand{
		ImageID:     id,
		FrameNumber: 1,
		BaseFrameID: 1, // same frame as both source and destination
		SrcWidth:    3, SrcHeight: 3,
		CellXOffset: 1, CellYOffset: 1, // overlaps the (0,0)-(3,3) source rect
	}
	resp := g.dispatchCompose(cmd)
	if resp.Code != ErrInvalid {
		t.Fatalf("expected EINVAL for overlapping self-blit, got %v", resp.Code)
	}
}

func TestDispatchFrame_HonorsSubRect(t *testing.T) {
	g := NewGraphicsManager(0)
	id := g.StoreImage(4, 4, solidRGBA(4, 4, 0, 0, 0, 255), 0, 0)

	cmd := &GraphicsCommand{
		Action: ActionFrame, ImageID: id, Format: FormatRGBA,
		Width: 2, Height: 2, Payload: solidRGBA(2, 2, 10, 20, 30, 255),
		SrcX: 1, SrcY: 1, FrameNumber: 1,
	}
	resp := g.dispatchFrame(cmd)
	if resp.Code != "" {
		t.Fatalf("dispatchFrame: %v", resp.Code)
	}

	img := g.Image(id)
	frame := img.Frames[len(img.Frames)-1]
	if frame.X != 1 || frame.Y != 1 || frame.Width != 2 || frame.Height != 2 {
		t.Fatalf("frame rect = (%d,%d %dx%d), want (1,1 2x2)", frame.X, frame.Y, frame.Width, frame.Height)
	}
}

func TestCoalescedFrame_CompositesOwnRect(t *testing.T) {
	g := NewGraphicsManager(0)
	id := g.StoreImage(4, 4, solidRGBA(4, 4, 0, 0, 0, 255), 0, 0)
	img := g.Image(id)

	layer := &Frame{
		ID: 1, BaseFrameID: 0,
		X: 2, Y: 2, Width: 2, Height: 2,
		Data:     solidRGBA(2, 2, 255, 0, 0, 255),
		IsOpaque: true,
	}
	img.Frames = append(img.Frames, layer)

	out := img.CoalescedFrame(1)
	if out == nil {
		t.Fatal("CoalescedFrame returned nil")
	}
	at := func(x, y int) []byte {
		i := (y*4 + x) * 4
		return out[i : i+4]
	}
	if r := at(2, 2)[0]; r != 255 {
		t.Fatalf("pixel (2,2) red = %d, want 255 (layer drawn at its own rect)", r)
	}
	if r := at(0, 0)[0]; r != 0 {
		t.Fatalf("pixel (0,0) red = %d, want 0 (base untouched outside layer rect)", r)
	}
}

func TestPlaceConcrete_LetterboxesNonMatchingAspect(t *testing.T) {
	g := NewGraphicsManager(0)
	// A 4x2 (wide) image placed into a box whose cell geometry works out
	// square: the renderer output should be resampled/letterboxed to the
	// effective pixel box rather than left at native size.
	id := g.StoreImage(4, 2, solidRGBA(4, 2, 9, 9, 9, 255), 0, 0)

	lb := NewLineBuffer(5, 10)
	img := g.Image(id)

	g.mu.Lock()
	g.nextRefID++
	refID := g.nextRefID
	ref := &ImageRef{InternalID: img.InternalID, NumRows: 2, NumCols: 2, EffectiveNumRows: 2, EffectiveNumCols: 2}
	g.refs[refID] = ref
	img.Refs[refID] = ref
	g.mu.Unlock()

	ok := g.PlaceConcrete(lb, refID, 0, 0, 8, 8)
	if !ok {
		t.Fatal("PlaceConcrete returned false")
	}

	data := g.UpdateLayers(nil)
	if len(data) != 1 {
		t.Fatalf("UpdateLayers returned %d entries, want 1", len(data))
	}
	// effective box is 2 cells x 8px = 16x16, native image is 4x2: must
	// have been resampled to the target box, not left at native size.
	if data[0].Width != 16 || data[0].Height != 16 {
		t.Fatalf("render width/height = %dx%d, want 16x16 (letterboxed)", data[0].Width, data[0].Height)
	}
	if len(data[0].Pixels) != 16*16*4 {
		t.Fatalf("pixel buffer len = %d, want %d", len(data[0].Pixels), 16*16*4)
	}
}
