package screen

import (
	"bytes"
	"compress/zlib"
	"encoding/base64"
	"fmt"
	"image"
	"image/png"
	"io"
	"strconv"
	"strings"
)

// GraphicsAction is the Kitty graphics protocol's "a=" selector.
type GraphicsAction byte

const (
	ActionTransmit        GraphicsAction = 't'
	ActionTransmitAndPlay GraphicsAction = 'T'
	ActionQuery           GraphicsAction = 'q'
	ActionPlace           GraphicsAction = 'p'
	ActionDelete          GraphicsAction = 'd'
	ActionFrame           GraphicsAction = 'f'
	ActionAnimate         GraphicsAction = 'a'
	ActionCompose         GraphicsAction = 'c'
)

// GraphicsTransmission is the "t=" transmission medium selector.
type GraphicsTransmission byte

const (
	TransmitDirect   GraphicsTransmission = 'd'
	TransmitFile     GraphicsTransmission = 'f'
	TransmitTempFile GraphicsTransmission = 't'
	TransmitSHM      GraphicsTransmission = 's'
)

// GraphicsFormat is the "f=" pixel format selector.
type GraphicsFormat int

const (
	FormatRGB  GraphicsFormat = 24
	FormatRGBA GraphicsFormat = 32
	FormatPNG  GraphicsFormat = 100
)

// GraphicsDeleteKind is the "d=" delete-placement selector (16
// variants: lowercase affects placements only, uppercase also frees
// image data).
type GraphicsDeleteKind byte

const (
	DeleteAll           GraphicsDeleteKind = 'a'
	DeleteAllFree       GraphicsDeleteKind = 'A'
	DeleteByID          GraphicsDeleteKind = 'i'
	DeleteByIDFree      GraphicsDeleteKind = 'I'
	DeleteNewest        GraphicsDeleteKind = 'n'
	DeleteNewestFree    GraphicsDeleteKind = 'N'
	DeleteByCell        GraphicsDeleteKind = 'c'
	DeleteByCellFree    GraphicsDeleteKind = 'C'
	DeleteByPoint       GraphicsDeleteKind = 'p'
	DeleteByPointFree   GraphicsDeleteKind = 'P'
	DeleteByColumn      GraphicsDeleteKind = 'x'
	DeleteByColumnFree  GraphicsDeleteKind = 'X'
	DeleteByRow         GraphicsDeleteKind = 'y'
	DeleteByRowFree     GraphicsDeleteKind = 'Y'
	DeleteByZIndex      GraphicsDeleteKind = 'z'
	DeleteByZIndexFree  GraphicsDeleteKind = 'Z'
)

// GraphicsCommand is one parsed Kitty graphics APC payload: the control
// key=value pairs plus the raw (possibly base64-encoded) payload bytes.
type GraphicsCommand struct {
	Action       GraphicsAction
	Transmission GraphicsTransmission
	Format       GraphicsFormat
	Compressed   bool // o=z

	ImageID     uint32
	ImageNumber uint32
	PlacementID uint32

	Width, Height uint32 // s=/v= width/height for raw formats

	SrcX, SrcY, SrcWidth, SrcHeight uint32

	CellXOffset, CellYOffset uint32
	NumRows, NumCols         int
	ZIndex                   int32

	ParentImageID uint32
	ParentPlacementID uint32
	ParentOffsetX, ParentOffsetY int

	Quiet int // q=

	More bool // m=1 means more chunks follow

	FrameNumber  uint32
	GapMS        uint32
	BaseFrameID  uint32
	AnimateLoop  int

	DeleteKind GraphicsDeleteKind

	Payload []byte // raw bytes after base64 decode, still possibly zlib-compressed
}

// ParseGraphicsCommand parses a Kitty graphics APC payload of the form
// "key=value,key=value;base64-payload" into a GraphicsCommand.
func ParseGraphicsCommand(data []byte) (*GraphicsCommand, *GraphicsResponse) {
	sep := bytes.IndexByte(data, ';')
	controls := data
	var payload []byte
	if sep >= 0 {
		controls = data[:sep]
		payload = data[sep+1:]
	}

	cmd := &GraphicsCommand{
		Action:       ActionTransmit,
		Transmission: TransmitDirect,
		Format:       FormatRGBA,
		DeleteKind:   DeleteAll,
	}

	for _, field := range strings.Split(string(controls), ",") {
		if field == "" {
			continue
		}
		kv := strings.SplitN(field, "=", 2)
		if len(kv) != 2 {
			continue
		}
		key, val := kv[0], kv[1]
		var err error
		switch key {
		case "a":
			if len(val) > 0 {
				cmd.Action = GraphicsAction(val[0])
			}
		case "t":
			if len(val) > 0 {
				cmd.Transmission = GraphicsTransmission(val[0])
			}
		case "f":
			n, e := strconv.Atoi(val)
			err = e
			cmd.Format = GraphicsFormat(n)
		case "o":
			cmd.Compressed = val == "z"
		case "i":
			cmd.ImageID, err = parseUint32(val)
		case "I":
			cmd.ImageNumber, err = parseUint32(val)
		case "p":
			cmd.PlacementID, err = parseUint32(val)
		case "s":
			cmd.Width, err = parseUint32(val)
		case "v":
			cmd.Height, err = parseUint32(val)
		case "x":
			cmd.SrcX, err = parseUint32(val)
		case "y":
			cmd.SrcY, err = parseUint32(val)
		case "w":
			cmd.SrcWidth, err = parseUint32(val)
		case "h":
			cmd.SrcHeight, err = parseUint32(val)
		case "X":
			cmd.CellXOffset, err = parseUint32(val)
		case "Y":
			cmd.CellYOffset, err = parseUint32(val)
		case "c":
			cmd.NumCols, err = strconv.Atoi(val)
		case "r":
			cmd.NumRows, err = strconv.Atoi(val)
		case "z":
			n, e := strconv.Atoi(val)
			err = e
			cmd.ZIndex = int32(n)
		case "P":
			cmd.ParentImageID, err = parseUint32(val)
		case "Q":
			cmd.ParentPlacementID, err = parseUint32(val)
		case "H":
			cmd.ParentOffsetX, err = strconv.Atoi(val)
		case "V":
			cmd.ParentOffsetY, err = strconv.Atoi(val)
		case "q":
			cmd.Quiet, err = strconv.Atoi(val)
		case "m":
			cmd.More = val == "1"
		case "r_frame":
			cmd.FrameNumber, err = parseUint32(val)
		case "g":
			cmd.GapMS, err = parseUint32(val)
		case "b":
			cmd.BaseFrameID, err = parseUint32(val)
		case "d":
			if len(val) > 0 {
				cmd.DeleteKind = GraphicsDeleteKind(val[0])
			}
		}
		if err != nil {
			return nil, NewGraphicsResponse(cmd.ImageID, ErrInvalid, fmt.Sprintf("bad value for %s", key))
		}
	}

	if len(payload) > 0 {
		decoded := make([]byte, base64.StdEncoding.DecodedLen(len(payload)))
		n, err := base64.StdEncoding.Decode(decoded, payload)
		if err != nil {
			return nil, NewGraphicsResponse(cmd.ImageID, ErrIllegalSeq, "invalid base64 payload")
		}
		cmd.Payload = decoded[:n]
	}

	return cmd, nil
}

func parseUint32(s string) (uint32, error) {
	n, err := strconv.ParseUint(s, 10, 32)
	return uint32(n), err
}

// GraphicsResponse is a fully formatted Kitty graphics APC reply,
// built by NewGraphicsResponse (or as a literal for success) and
// rendered by Format into the string Screen writes verbatim to the
// host's ChildWriter.
type GraphicsResponse struct {
	ImageID uint32
	Code    GraphicsErrorCode // empty means success ("OK")
	Message string
}

// NewGraphicsResponse builds an error response.
func NewGraphicsResponse(imageID uint32, code GraphicsErrorCode, message string) *GraphicsResponse {
	return &GraphicsResponse{ImageID: imageID, Code: code, Message: message}
}

// NewGraphicsOK builds a success response.
func NewGraphicsOK(imageID uint32) *GraphicsResponse {
	return &GraphicsResponse{ImageID: imageID}
}

// Format renders the response in the wire format
// "\x1b_Gi=<id>;<code-or-OK>[:<message>]\x1b\\".
func (r *GraphicsResponse) Format() string {
	var b strings.Builder
	b.WriteString("\x1b_G")
	fmt.Fprintf(&b, "i=%d;", r.ImageID)
	if r.Code == "" {
		b.WriteString("OK")
	} else {
		b.WriteString(string(r.Code))
		if r.Message != "" {
			b.WriteByte(':')
			b.WriteString(r.Message)
		}
	}
	b.WriteString("\x1b\\")
	return b.String()
}

// decodePayload inflates cmd.Payload per its compression flag and
// decodes it into straight RGBA bytes according to cmd.Format,
// returning the pixel dimensions actually decoded.
func decodePayload(cmd *GraphicsCommand) (rgba []byte, width, height uint32, respErr *GraphicsResponse) {
	raw := cmd.Payload
	if cmd.Compressed {
		r, err := zlib.NewReader(bytes.NewReader(raw))
		if err != nil {
			return nil, 0, 0, NewGraphicsResponse(cmd.ImageID, ErrIllegalSeq, "bad zlib stream")
		}
		defer r.Close()
		inflated, err := io.ReadAll(r)
		if err != nil {
			return nil, 0, 0, NewGraphicsResponse(cmd.ImageID, ErrIllegalSeq, "truncated zlib stream")
		}
		raw = inflated
	}

	switch cmd.Format {
	case FormatPNG:
		img, err := png.Decode(bytes.NewReader(raw))
		if err != nil {
			return nil, 0, 0, NewGraphicsResponse(cmd.ImageID, ErrIllegalSeq, "bad PNG data")
		}
		return rgbaBytesFromImage(img)
	case FormatRGB:
		w, h := cmd.Width, cmd.Height
		if w == 0 || h == 0 || uint64(w)*uint64(h)*3 != uint64(len(raw)) {
			return nil, 0, 0, NewGraphicsResponse(cmd.ImageID, ErrInvalid, "RGB payload size mismatch")
		}
		out := make([]byte, w*h*4)
		for i := uint32(0); i < w*h; i++ {
			out[i*4] = raw[i*3]
			out[i*4+1] = raw[i*3+1]
			out[i*4+2] = raw[i*3+2]
			out[i*4+3] = 0xff
		}
		return out, w, h, nil
	case FormatRGBA:
		w, h := cmd.Width, cmd.Height
		if w == 0 || h == 0 || uint64(w)*uint64(h)*4 != uint64(len(raw)) {
			return nil, 0, 0, NewGraphicsResponse(cmd.ImageID, ErrInvalid, "RGBA payload size mismatch")
		}
		return raw, w, h, nil
	default:
		return nil, 0, 0, NewGraphicsResponse(cmd.ImageID, ErrInvalid, "unsupported format")
	}
}

func rgbaBytesFromImage(img image.Image) ([]byte, uint32, uint32, *GraphicsResponse) {
	b := img.Bounds()
	w, h := uint32(b.Dx()), uint32(b.Dy())
	out := make([]byte, w*h*4)
	i := 0
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			r, g, bl, a := img.At(x, y).RGBA()
			out[i] = byte(r >> 8)
			out[i+1] = byte(g >> 8)
			out[i+2] = byte(bl >> 8)
			out[i+3] = byte(a >> 8)
			i += 4
		}
	}
	return out, w, h, nil
}
