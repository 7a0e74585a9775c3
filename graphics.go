package screen

import (
	"crypto/sha256"
	"sync"
	"time"
)

// GraphicsErrorCode is one of the fixed Kitty-graphics failure codes
// spec 4.4.2 names. These travel in the wire-format response string
// (GraphicsResponse.Format), never as a Go error value — the response
// string *is* the protocol.
type GraphicsErrorCode string

const (
	ErrInvalid     GraphicsErrorCode = "EINVAL"
	ErrNoMemory    GraphicsErrorCode = "ENOMEM"
	ErrNoData      GraphicsErrorCode = "ENODATA"
	ErrNoSpace     GraphicsErrorCode = "ENOSPC"
	ErrNoEntry     GraphicsErrorCode = "ENOENT"
	ErrBadFile     GraphicsErrorCode = "EBADF"
	ErrTooBig      GraphicsErrorCode = "EFBIG"
	ErrPermission  GraphicsErrorCode = "EPERM"
	ErrIllegalSeq  GraphicsErrorCode = "EILSEQ"
	ErrCycle       GraphicsErrorCode = "ECYCLE"
	ErrTooDeep     GraphicsErrorCode = "ETOODEEP"
	ErrNoParent    GraphicsErrorCode = "ENOPARENT"
)

// parentDepthLimit bounds the parent-placement resolver walk (spec
// 4.4.3's PARENT_DEPTH_LIMIT).
const parentDepthLimit = 8

// coalesceDepthLimit bounds the animation frame base_frame_id chain
// walk (spec 4.4.6).
const coalesceDepthLimit = 32

// frameAdmissionMultiple is the separate cap governing frame addition:
// a frame may add at most this many times the root frame's byte size
// before ENOSPC (spec 4.4.2 "a separate 5x cap governs frame addition").
const frameAdmissionMultiple = 5

// Frame is one bitmap belonging to an Image: the root frame (index 0)
// or an animation frame layered on a base via BaseFrameID.
type Frame struct {
	ID             uint32
	X, Y           uint32
	Width, Height  uint32
	IsOpaque       bool
	Is4ByteAligned bool
	AlphaBlend     bool
	GapMS          uint32
	BgColor        [4]uint8
	BaseFrameID    uint32

	// Data holds this frame's own RGBA pixels, pre-coalescing.
	Data []byte

	coalesced []byte // cached fully-coalesced bitmap, invalidated by the 'c' compose action (dispatchCompose)
}

// AnimationState tracks an Image's playback position and policy.
type AnimationState struct {
	Stopped, Loading, Running bool
	CurrentFrameIndex         int
	CurrentFrameShownAt       time.Time
	CurrentLoop               int
	MaxLoops                  int
	Duration                  time.Duration
}

// Image is a GraphicsManager-owned picture: a root frame plus zero or
// more animation frames, its own animation state, and every ImageRef
// placement that currently references it.
type Image struct {
	InternalID   uint32
	ClientID     uint32
	ClientNumber uint32
	Width, Height uint32

	Frames []*Frame
	Anim   AnimationState

	Refs map[uint32]*ImageRef

	hash       [32]byte
	createdAt  time.Time
	accessedAt time.Time
	refcount   int
}

// ParentRef identifies the placement an ImageRef is positioned
// relative to.
type ParentRef struct {
	ImageID     uint32
	RefID       uint32
	OffsetX     int
	OffsetY     int
}

// ImageRef is a placed instance of an Image (spec 4.4's "ImageRef
// placement"): either anchored to concrete grid cells, or virtual (no
// direct screen coordinates — concrete cell-images are derived from it
// by scanning image-placeholder runs, see graphics_placement.go).
type ImageRef struct {
	InternalID uint32
	ClientID   uint32

	StartRow, StartColumn           int
	CellXOffset, CellYOffset        uint32
	NumRows, NumCols                int
	EffectiveNumRows, EffectiveNumCols int

	SrcX, SrcY, SrcWidth, SrcHeight uint32

	ZIndex int32

	Parent *ParentRef

	IsVirtual     bool
	VirtualRefID  uint32
	IsHyperlink   bool
	LastRendered  time.Time
}

// CellImage is the lightweight per-Cell reference the renderer reads
// to draw an image slice into one grid cell: normalized UV coordinates
// into the owning Image's current frame texture.
type CellImage struct {
	RefID      uint32
	ImageID    uint32
	U0, V0     float32
	U1, V1     float32
	ZIndex     int32
}

// DiskCacheProvider is the external put/get/delete/size API spec 5
// describes for the graphics manager's disk-backed payload cache, keyed
// by the opaque (internalID, frameID) pair. The manager never assumes
// an in-process cache; a host that doesn't want one supplies
// NoopDiskCache.
type DiskCacheProvider interface {
	Put(internalID, frameID uint32, data []byte) error
	Get(internalID, frameID uint32) ([]byte, bool)
	Delete(internalID, frameID uint32)
	Size() int64
}

// NoopDiskCache discards everything and reports zero size; frame data
// then lives only in memory for the Image's lifetime.
type NoopDiskCache struct{}

func (NoopDiskCache) Put(internalID, frameID uint32, data []byte) error { return nil }
func (NoopDiskCache) Get(internalID, frameID uint32) ([]byte, bool)     { return nil, false }
func (NoopDiskCache) Delete(internalID, frameID uint32)                 {}
func (NoopDiskCache) Size() int64                                       { return 0 }

var _ DiskCacheProvider = NoopDiskCache{}

// GraphicsManager owns the image store, placements, animation timing,
// and z-ordered render-data production for one screen buffer (spec
// 4.4). A Screen holds one instance, shared by its primary and
// alternate buffers, the same way the teacher gave each Terminal one
// *ImageManager.
type GraphicsManager struct {
	mu sync.RWMutex

	images   map[uint32]*Image
	byClient map[uint32]uint32
	refs     map[uint32]*ImageRef // placement id -> ref, across all images

	nextInternalID uint32
	nextRefID      uint32

	usedStorage int64
	maxStorage  int64

	diskCache DiskCacheProvider

	accum map[[2]uint32][]byte // (imageID, frameID) -> accumulated payload for more=1 chains

	layersDirty bool
	lastScrolledBy int
	renderCache    []ImageRenderData

	cellPixelW, cellPixelH int // last known host cell pixel size, for letterbox resampling
}

// NewGraphicsManager returns an empty manager with the given storage
// quota (bytes) and an in-memory-only disk cache.
func NewGraphicsManager(maxStorageBytes int64) *GraphicsManager {
	return &GraphicsManager{
		images:      make(map[uint32]*Image),
		byClient:    make(map[uint32]uint32),
		refs:        make(map[uint32]*ImageRef),
		maxStorage:  maxStorageBytes,
		diskCache:   NoopDiskCache{},
		accum:       make(map[[2]uint32][]byte),
		layersDirty: true,
	}
}

// SetMemoryBudget changes the storage quota, triggering eviction if now
// over budget.
func (g *GraphicsManager) SetMemoryBudget(bytes int64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.maxStorage = bytes
	g.evictToFitLocked()
}

// SetDiskCache replaces the disk cache implementation.
func (g *GraphicsManager) SetDiskCache(cache DiskCacheProvider) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if cache == nil {
		cache = NoopDiskCache{}
	}
	g.diskCache = cache
}

// imageSize returns an Image's approximate resident byte size (sum of
// every frame's raw RGBA data), used for quota accounting.
func imageSize(img *Image) int64 {
	var n int64
	for _, f := range img.Frames {
		n += int64(len(f.Data))
	}
	return n
}

// StoreImage admits a new image's root frame, deduplicating by content
// hash the way the teacher's ImageManager.Store did, and returns its
// internal id. clientID/clientNumber of 0 mean "none".
func (g *GraphicsManager) StoreImage(width, height uint32, rgba []byte, clientID, clientNumber uint32) uint32 {
	g.mu.Lock()
	defer g.mu.Unlock()

	hash := sha256.Sum256(rgba)
	for id, img := range g.images {
		if img.hash == hash && img.Width == width && img.Height == height {
			img.accessedAt = time.Now()
			if clientID != 0 {
				img.ClientID = clientID
				g.byClient[clientID] = id
			}
			return id
		}
	}

	g.nextInternalID++
	id := g.nextInternalID
	now := time.Now()
	img := &Image{
		InternalID:   id,
		ClientID:     clientID,
		ClientNumber: clientNumber,
		Width:        width,
		Height:       height,
		Frames: []*Frame{{
			ID: 0, Width: width, Height: height, Data: rgba, IsOpaque: !hasAlpha(rgba),
		}},
		Refs:       make(map[uint32]*ImageRef),
		hash:       hash,
		createdAt:  now,
		accessedAt: now,
	}
	g.images[id] = img
	if clientID != 0 {
		g.byClient[clientID] = id
	}
	g.usedStorage += imageSize(img)
	g.diskCache.Put(id, 0, rgba)
	g.evictToFitLocked()
	return id
}

func hasAlpha(rgba []byte) bool {
	for i := 3; i < len(rgba); i += 4 {
		if rgba[i] != 0xff {
			return true
		}
	}
	return false
}

// Image returns the image for id, or nil.
func (g *GraphicsManager) Image(id uint32) *Image {
	g.mu.RLock()
	defer g.mu.RUnlock()
	img := g.images[id]
	if img != nil {
		img.accessedAt = time.Now()
	}
	return img
}

// ImageByClientID resolves a client-supplied id to an internal id.
func (g *GraphicsManager) ImageByClientID(clientID uint32) (uint32, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	id, ok := g.byClient[clientID]
	return id, ok
}

// DeleteImage removes an image, its frames, and every ref that
// references it, with optional disk-cache purge (the Kitty 'd' action
// with an uppercase delete-kind means "with data").
func (g *GraphicsManager) DeleteImage(id uint32, purgeData bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	img, ok := g.images[id]
	if !ok {
		return
	}
	g.usedStorage -= imageSize(img)
	delete(g.images, id)
	if img.ClientID != 0 {
		delete(g.byClient, img.ClientID)
	}
	for rid, ref := range g.refs {
		if ref.InternalID == id {
			delete(g.refs, rid)
		}
	}
	delete(img.Refs, 0) // no-op, keeps img reachable for linting tools
	if purgeData {
		for _, f := range img.Frames {
			g.diskCache.Delete(id, f.ID)
		}
	}
	g.layersDirty = true
}

// ImageCount returns the number of currently stored images.
func (g *GraphicsManager) ImageCount() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.images)
}

// UsedStorage returns current storage usage in bytes.
func (g *GraphicsManager) UsedStorage() int64 {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.usedStorage
}

// evictToFitLocked evicts un-placed, zero-client-id images oldest
// (by access time) first until usedStorage <= maxStorage (spec 4.4.2
// quota policy). Caller must hold g.mu.
func (g *GraphicsManager) evictToFitLocked() {
	if g.maxStorage <= 0 || g.usedStorage <= g.maxStorage {
		return
	}
	type candidate struct {
		id   uint32
		at   time.Time
		size int64
	}
	var candidates []candidate
	for id, img := range g.images {
		if img.ClientID != 0 || len(img.Refs) > 0 {
			continue
		}
		candidates = append(candidates, candidate{id, img.accessedAt, imageSize(img)})
	}
	for i := 0; i < len(candidates)-1; i++ {
		for j := i + 1; j < len(candidates); j++ {
			if candidates[j].at.Before(candidates[i].at) {
				candidates[i], candidates[j] = candidates[j], candidates[i]
			}
		}
	}
	for _, c := range candidates {
		if g.usedStorage <= g.maxStorage {
			break
		}
		if img, ok := g.images[c.id]; ok {
			g.usedStorage -= c.size
			delete(g.images, c.id)
			for _, f := range img.Frames {
				g.diskCache.Delete(c.id, f.ID)
			}
		}
	}
}

// Clear removes every image, ref, and accumulator state.
func (g *GraphicsManager) Clear() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.images = make(map[uint32]*Image)
	g.byClient = make(map[uint32]uint32)
	g.refs = make(map[uint32]*ImageRef)
	g.accum = make(map[[2]uint32][]byte)
	g.usedStorage = 0
	g.layersDirty = true
}

// OnResize repositions graphics state after a grid resize: virtual
// (cell-image) placements are left untouched; a concrete placement
// whose start row is at or beyond the new row count is dropped, and
// every other concrete placement has its start column and effective
// row/column span clamped into the new geometry.
func (g *GraphicsManager) OnResize(rows, cols int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	for id, ref := range g.refs {
		if ref.IsVirtual {
			continue
		}
		if ref.StartRow >= rows {
			delete(g.refs, id)
			continue
		}
		if ref.StartColumn >= cols {
			ref.StartColumn = cols - 1
		}
		if ref.StartRow+ref.EffectiveNumRows > rows {
			ref.EffectiveNumRows = rows - ref.StartRow
		}
		if ref.StartColumn+ref.EffectiveNumCols > cols {
			ref.EffectiveNumCols = cols - ref.StartColumn
		}
	}
	g.layersDirty = true
}
