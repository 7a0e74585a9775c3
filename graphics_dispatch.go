package screen

import (
	"image"
	"image/draw"
	"time"
)

// Dispatch executes a parsed GraphicsCommand against the manager,
// handling chunked (more=1) transmission accumulation, and returns the
// wire-format response to send back, or nil if cmd.Quiet suppresses it
// (q=1 suppresses OK, q=2 suppresses everything).
func (g *GraphicsManager) Dispatch(cmd *GraphicsCommand) *GraphicsResponse {
	var resp *GraphicsResponse
	switch cmd.Action {
	case ActionTransmit, ActionTransmitAndPlay:
		resp = g.dispatchTransmit(cmd)
		if resp != nil && resp.Code == "" && cmd.Action == ActionTransmitAndPlay {
			placeResp := g.dispatchPlace(cmd)
			if placeResp.Code != "" {
				resp = placeResp
			}
		}
	case ActionPlace:
		resp = g.dispatchPlace(cmd)
	case ActionDelete:
		resp = g.dispatchDelete(cmd)
	case ActionFrame:
		resp = g.dispatchFrame(cmd)
	case ActionAnimate:
		resp = g.dispatchAnimate(cmd)
	case ActionCompose:
		resp = g.dispatchCompose(cmd)
	case ActionQuery:
		resp = g.dispatchTransmit(cmd)
	default:
		resp = NewGraphicsResponse(cmd.ImageID, ErrInvalid, "unknown action")
	}

	if resp == nil {
		return nil
	}
	if cmd.Quiet >= 2 {
		return nil
	}
	if cmd.Quiet == 1 && resp.Code == "" {
		return nil
	}
	return resp
}

func (g *GraphicsManager) dispatchTransmit(cmd *GraphicsCommand) *GraphicsResponse {
	key := [2]uint32{cmd.ImageID, cmd.FrameNumber}

	if cmd.More {
		g.mu.Lock()
		g.accum[key] = append(g.accum[key], cmd.Payload...)
		g.mu.Unlock()
		return nil
	}

	payload := cmd.Payload
	g.mu.Lock()
	if buffered, ok := g.accum[key]; ok {
		payload = append(buffered, payload...)
		delete(g.accum, key)
	}
	g.mu.Unlock()
	cmd.Payload = payload

	if cmd.Transmission != TransmitDirect {
		// No file, temp-file or shared-memory object is read here or by
		// Screen before Dispatch: the Payload of such a command (the
		// transmitted path or name) is decoded below exactly like a
		// direct payload.
	}

	rgba, w, h, errResp := decodePayload(cmd)
	if errResp != nil {
		return errResp
	}

	if g.maxStorage > 0 && int64(len(rgba)) > g.maxStorage {
		return NewGraphicsResponse(cmd.ImageID, ErrNoSpace, "image exceeds storage quota")
	}

	id := g.StoreImage(w, h, rgba, cmd.ImageID, cmd.ImageNumber)
	return &GraphicsResponse{ImageID: id}
}

func (g *GraphicsManager) dispatchPlace(cmd *GraphicsCommand) *GraphicsResponse {
	imgID := cmd.ImageID
	if imgID == 0 && cmd.ImageNumber != 0 {
		if id, ok := g.ImageByClientID(cmd.ImageNumber); ok {
			imgID = id
		}
	}
	img := g.Image(imgID)
	if img == nil {
		return NewGraphicsResponse(cmd.ImageID, ErrNoEntry, "no such image")
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	g.nextRefID++
	refID := g.nextRefID

	numRows, numCols := cmd.NumRows, cmd.NumCols
	srcW, srcH := cmd.SrcWidth, cmd.SrcHeight
	if srcW == 0 {
		srcW = img.Width
	}
	if srcH == 0 {
		srcH = img.Height
	}

	ref := &ImageRef{
		InternalID:         img.InternalID,
		ClientID:           cmd.PlacementID,
		CellXOffset:        cmd.CellXOffset,
		CellYOffset:        cmd.CellYOffset,
		NumRows:            numRows,
		NumCols:            numCols,
		EffectiveNumRows:   numRows,
		EffectiveNumCols:   numCols,
		SrcX:               cmd.SrcX,
		SrcY:               cmd.SrcY,
		SrcWidth:           srcW,
		SrcHeight:          srcH,
		ZIndex:             cmd.ZIndex,
		LastRendered:       time.Time{},
	}

	if cmd.ParentImageID != 0 || cmd.ParentPlacementID != 0 {
		depth, err := g.parentDepthLocked(cmd.ParentImageID, cmd.ParentPlacementID)
		if err != nil {
			return NewGraphicsResponse(cmd.ImageID, err.(*graphicsDispatchError).code, err.Error())
		}
		if depth >= parentDepthLimit {
			return NewGraphicsResponse(cmd.ImageID, ErrTooDeep, "parent chain too deep")
		}
		ref.Parent = &ParentRef{
			ImageID: cmd.ParentImageID,
			RefID:   cmd.ParentPlacementID,
			OffsetX: cmd.ParentOffsetX,
			OffsetY: cmd.ParentOffsetY,
		}
	}

	img.Refs[refID] = ref
	img.refcount++
	g.refs[refID] = ref
	g.layersDirty = true

	return &GraphicsResponse{ImageID: img.InternalID}
}

type graphicsDispatchError struct {
	code GraphicsErrorCode
	msg  string
}

func (e *graphicsDispatchError) Error() string { return e.msg }

// parentDepthLocked walks the parent chain starting from (imageID,
// refID) and returns its depth, detecting cycles. Caller holds g.mu.
func (g *GraphicsManager) parentDepthLocked(imageID, refID uint32) (int, error) {
	visited := make(map[uint32]bool)
	depth := 0
	curImg, curRef := imageID, refID
	for curImg != 0 || curRef != 0 {
		key := curImg<<16 | curRef
		if visited[key] {
			return 0, &graphicsDispatchError{ErrCycle, "parent chain cycles"}
		}
		visited[key] = true
		depth++
		if depth > parentDepthLimit {
			return depth, &graphicsDispatchError{ErrTooDeep, "parent chain too deep"}
		}
		ref, ok := g.refs[curRef]
		if !ok || ref.Parent == nil {
			break
		}
		curImg, curRef = ref.Parent.ImageID, ref.Parent.RefID
	}
	return depth, nil
}

func (g *GraphicsManager) dispatchDelete(cmd *GraphicsCommand) *GraphicsResponse {
	free := cmd.DeleteKind >= 'A' && cmd.DeleteKind <= 'Z'
	g.mu.Lock()
	switch cmd.DeleteKind {
	case DeleteAll, DeleteAllFree:
		g.mu.Unlock()
		g.Clear()
		return &GraphicsResponse{}
	case DeleteByID, DeleteByIDFree:
		g.mu.Unlock()
		g.DeleteImage(cmd.ImageID, free)
		return &GraphicsResponse{ImageID: cmd.ImageID}
	default:
		// Cell/point/column/row/z-index-scoped deletes only remove
		// placements; image data (and the image itself, if its last
		// placement) is freed only when the kind is uppercase.
		for id, ref := range g.refs {
			if !deleteMatches(cmd.DeleteKind, ref, cmd) {
				continue
			}
			delete(g.refs, id)
			if img, ok := g.images[ref.InternalID]; ok {
				delete(img.Refs, id)
				img.refcount--
				if free && img.refcount <= 0 {
					g.usedStorage -= imageSize(img)
					delete(g.images, ref.InternalID)
				}
			}
		}
		g.layersDirty = true
		g.mu.Unlock()
		return &GraphicsResponse{}
	}
}

func deleteMatches(kind GraphicsDeleteKind, ref *ImageRef, cmd *GraphicsCommand) bool {
	switch kind {
	case DeleteByCell, DeleteByCellFree:
		return ref.StartRow == int(cmd.CellYOffset) && ref.StartColumn == int(cmd.CellXOffset)
	case DeleteByPoint, DeleteByPointFree:
		return ref.StartRow == int(cmd.SrcY) && ref.StartColumn == int(cmd.SrcX)
	case DeleteByColumn, DeleteByColumnFree:
		return ref.StartColumn == int(cmd.CellXOffset)
	case DeleteByRow, DeleteByRowFree:
		return ref.StartRow == int(cmd.CellYOffset)
	case DeleteByZIndex, DeleteByZIndexFree:
		return ref.ZIndex == cmd.ZIndex
	case DeleteNewest, DeleteNewestFree:
		return true
	default:
		return false
	}
}

func (g *GraphicsManager) dispatchFrame(cmd *GraphicsCommand) *GraphicsResponse {
	img := g.Image(cmd.ImageID)
	if img == nil {
		return NewGraphicsResponse(cmd.ImageID, ErrNoEntry, "no such image")
	}
	rgba, w, h, errResp := decodePayload(cmd)
	if errResp != nil {
		return errResp
	}
	// x=/y= place this frame's transmitted rectangle within the base
	// image instead of requiring a full-size frame every time; the
	// rectangle's size is the decoded payload's (s=/v= or the PNG
	// header), and a payload that decodes to a zero size falls back to
	// the full image rect at the origin.
	x, y := cmd.SrcX, cmd.SrcY
	if w == 0 || h == 0 {
		x, y = 0, 0
		w, h = img.Width, img.Height
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	rootSize := int64(len(img.Frames[0].Data))
	var frameTotal int64
	for _, f := range img.Frames {
		frameTotal += int64(len(f.Data))
	}
	if rootSize > 0 && frameTotal+int64(len(rgba)) > rootSize*frameAdmissionMultiple {
		return NewGraphicsResponse(cmd.ImageID, ErrNoSpace, "too many animation frames")
	}

	frame := &Frame{
		ID:          cmd.FrameNumber,
		X:           x,
		Y:           y,
		Width:       w,
		Height:      h,
		Data:        rgba,
		GapMS:       cmd.GapMS,
		BaseFrameID: cmd.BaseFrameID,
		AlphaBlend:  true,
	}
	img.Frames = append(img.Frames, frame)
	g.usedStorage += int64(len(rgba))
	g.evictToFitLocked()
	return &GraphicsResponse{ImageID: img.InternalID}
}

func (g *GraphicsManager) dispatchAnimate(cmd *GraphicsCommand) *GraphicsResponse {
	img := g.Image(cmd.ImageID)
	if img == nil {
		return NewGraphicsResponse(cmd.ImageID, ErrNoEntry, "no such image")
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	switch cmd.AnimateLoop {
	case 1:
		img.Anim.Stopped = false
		img.Anim.Running = true
	case 2:
		img.Anim.Stopped = true
		img.Anim.Running = false
	default:
		img.Anim.MaxLoops = cmd.AnimateLoop
	}
	if cmd.FrameNumber > 0 {
		idx := int(cmd.FrameNumber) - 1
		if idx >= 0 && idx < len(img.Frames) {
			img.Anim.CurrentFrameIndex = idx
			img.Anim.CurrentFrameShownAt = time.Now()
		}
	}
	return &GraphicsResponse{ImageID: img.InternalID}
}

// dispatchCompose handles the 'c' action: blit a rectangle from one
// existing frame (BaseFrameID, the same "source frame" field a frame
// create reuses for its coalescing base) onto a rectangle of another
// (FrameNumber, the destination). Source rect is (SrcX, SrcY,
// SrcWidth, SrcHeight), defaulting to the whole source frame; dest
// offset is (CellXOffset, CellYOffset), the fields the X=/Y= keys
// populate, defaulting to the origin.
func (g *GraphicsManager) dispatchCompose(cmd *GraphicsCommand) *GraphicsResponse {
	img := g.Image(cmd.ImageID)
	if img == nil {
		return NewGraphicsResponse(cmd.ImageID, ErrNoEntry, "no such image")
	}
	dstIdx := int(cmd.FrameNumber) - 1
	srcIdx := int(cmd.BaseFrameID) - 1

	g.mu.Lock()
	defer g.mu.Unlock()

	if dstIdx < 0 || dstIdx >= len(img.Frames) {
		return NewGraphicsResponse(cmd.ImageID, ErrInvalid, "no such frame")
	}
	if srcIdx < 0 || srcIdx >= len(img.Frames) {
		return NewGraphicsResponse(cmd.ImageID, ErrInvalid, "no such source frame")
	}
	dst := img.Frames[dstIdx]
	src := img.Frames[srcIdx]

	srcW, srcH := int(cmd.SrcWidth), int(cmd.SrcHeight)
	if srcW == 0 {
		srcW = int(src.Width)
	}
	if srcH == 0 {
		srcH = int(src.Height)
	}
	srcRect := image.Rect(int(cmd.SrcX), int(cmd.SrcY), int(cmd.SrcX)+srcW, int(cmd.SrcY)+srcH)
	dstX, dstY := int(cmd.CellXOffset), int(cmd.CellYOffset)
	dstRect := image.Rect(dstX, dstY, dstX+srcW, dstY+srcH)

	if dst == src && srcRect.Overlaps(dstRect) {
		return NewGraphicsResponse(cmd.ImageID, ErrInvalid, "source and destination rectangles overlap")
	}

	srcImg := rgbaFromBytes(src.Data, int(src.Width), int(src.Height))
	if srcImg == nil {
		return NewGraphicsResponse(cmd.ImageID, ErrInvalid, "bad source frame data")
	}
	dstImg := rgbaFromBytes(dst.Data, int(dst.Width), int(dst.Height))
	if dstImg == nil {
		return NewGraphicsResponse(cmd.ImageID, ErrInvalid, "bad destination frame data")
	}

	op := draw.Over
	if dst.IsOpaque {
		op = draw.Src
	}
	draw.Draw(dstImg, dstRect.Intersect(dstImg.Bounds()), srcImg, srcRect.Min, op)

	dst.Data = dstImg.Pix
	dst.coalesced = nil // invalidate cached composite
	return &GraphicsResponse{ImageID: img.InternalID}
}
