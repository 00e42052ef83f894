// Package snapshot serialises the word index tree, shape and payload, so a
// later run can restore it exactly.
//
// Layout (little-endian):
//
//	0:4    magic "WTRK"
//	4:8    format version
//	8:12   flags (bit 0: snappy payload, bit 1: lz4 frame payload)
//	12:16  node count
//	16:24  payload length
//	24:28  crc32 (IEEE) of the payload as stored
//	28:32  reserved
//	32:    payload: JSON array of nodes in pre-order
package snapshot

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"hash/crc32"
	"io"

	"github.com/golang/snappy"
	"github.com/pierrec/lz4/v4"

	"github.com/Adithya-Monish-Kumar-K/wordtracker/internal/indexer/bst"
	"github.com/Adithya-Monish-Kumar-K/wordtracker/internal/indexer/word"
	apperrors "github.com/Adithya-Monish-Kumar-K/wordtracker/pkg/errors"
)

const (
	MagicBytes    uint32 = 0x4B525457
	FormatVersion uint32 = 1
	HeaderSize    int    = 32

	FlagSnappy uint32 = 1 << 0
	FlagLZ4    uint32 = 1 << 1
	knownFlags        = FlagSnappy | FlagLZ4
)

// Compression selects how the payload is stored. Its values double as header
// flags.
type Compression uint32

const (
	None   Compression = 0
	Snappy Compression = Compression(FlagSnappy)
	LZ4    Compression = Compression(FlagLZ4)
)

// ParseCompression maps a config value ("none", "snappy", "lz4") to a
// Compression.
func ParseCompression(name string) (Compression, error) {
	switch name {
	case "none", "":
		return None, nil
	case "snappy":
		return Snappy, nil
	case "lz4":
		return LZ4, nil
	}
	return None, fmt.Errorf("unknown snapshot compression %q: %w", name, apperrors.ErrInvalidArgument)
}

func (c Compression) String() string {
	switch c {
	case None:
		return "none"
	case Snappy:
		return "snappy"
	case LZ4:
		return "lz4"
	}
	return fmt.Sprintf("compression(%d)", uint32(c))
}

const (
	hasLeft uint8 = 1 << iota
	hasRight
)

// Tree is the concrete tree type the codec handles.
type Tree = bst.Tree[*word.Record]

type Header struct {
	Magic      uint32
	Version    uint32
	Flags      uint32
	NodeCount  uint32
	PayloadLen uint64
	Checksum   uint32
}

type nodeEntry struct {
	Word      string          `json:"w"`
	Locations []word.Location `json:"o"`
	Children  uint8           `json:"c,omitempty"`
}

type Codec struct {
	compression Compression
}

func NewCodec(c Compression) *Codec {
	return &Codec{compression: c}
}

// Encode serialises every node of t.
func (c *Codec) Encode(t *Tree) ([]byte, error) {
	if t == nil {
		return nil, fmt.Errorf("encoding snapshot: nil tree: %w", apperrors.ErrInvalidArgument)
	}
	layout := t.Layout()
	entries := make([]nodeEntry, 0, len(layout))
	for _, slot := range layout {
		var children uint8
		if slot.Left {
			children |= hasLeft
		}
		if slot.Right {
			children |= hasRight
		}
		entries = append(entries, nodeEntry{
			Word:      slot.Item.Key(),
			Locations: slot.Item.Locations(),
			Children:  children,
		})
	}
	payload, err := json.Marshal(entries)
	if err != nil {
		return nil, fmt.Errorf("marshaling snapshot nodes: %w", err)
	}
	flags := uint32(c.compression)
	switch c.compression {
	case None:
	case Snappy:
		payload = snappy.Encode(nil, payload)
	case LZ4:
		payload, err = lz4Encode(payload)
		if err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("encoding snapshot: %v: %w", c.compression, apperrors.ErrInvalidArgument)
	}

	out := make([]byte, HeaderSize+len(payload))
	binary.LittleEndian.PutUint32(out[0:4], MagicBytes)
	binary.LittleEndian.PutUint32(out[4:8], FormatVersion)
	binary.LittleEndian.PutUint32(out[8:12], flags)
	binary.LittleEndian.PutUint32(out[12:16], uint32(len(entries)))
	binary.LittleEndian.PutUint64(out[16:24], uint64(len(payload)))
	binary.LittleEndian.PutUint32(out[24:28], crc32.ChecksumIEEE(payload))
	copy(out[HeaderSize:], payload)
	return out, nil
}

// Decode rebuilds a tree from Encode output. Every failure wraps
// ErrCorruptState; the caller decides whether to start from an empty tree.
func (c *Codec) Decode(data []byte) (*Tree, error) {
	header, err := ReadHeader(data)
	if err != nil {
		return nil, err
	}
	payload := data[HeaderSize:]
	if uint64(len(payload)) != header.PayloadLen {
		return nil, corrupt("payload is %d bytes, header says %d", len(payload), header.PayloadLen)
	}
	if sum := crc32.ChecksumIEEE(payload); sum != header.Checksum {
		return nil, corrupt("checksum mismatch: got %08x, want %08x", sum, header.Checksum)
	}
	switch Compression(header.Flags) {
	case Snappy:
		payload, err = snappy.Decode(nil, payload)
		if err != nil {
			return nil, corrupt("decompressing snappy payload: %v", err)
		}
	case LZ4:
		payload, err = io.ReadAll(lz4.NewReader(bytes.NewReader(payload)))
		if err != nil {
			return nil, corrupt("decompressing lz4 payload: %v", err)
		}
	}
	var entries []nodeEntry
	if err := json.Unmarshal(payload, &entries); err != nil {
		return nil, corrupt("parsing nodes: %v", err)
	}
	if uint32(len(entries)) != header.NodeCount {
		return nil, corrupt("decoded %d nodes, header says %d", len(entries), header.NodeCount)
	}

	slots := make([]bst.Slot[*word.Record], 0, len(entries))
	for i, e := range entries {
		if e.Word == "" {
			return nil, corrupt("node %d has an empty word", i)
		}
		for _, loc := range e.Locations {
			if loc.File == "" {
				return nil, corrupt("node %d (%q) has an unnamed file", i, e.Word)
			}
			if len(loc.Lines) == 0 {
				return nil, corrupt("node %d (%q) lists %s with no lines", i, e.Word, loc.File)
			}
			for _, line := range loc.Lines {
				if line < 1 {
					return nil, corrupt("node %d (%q) has line %d in %s", i, e.Word, line, loc.File)
				}
			}
		}
		slots = append(slots, bst.Slot[*word.Record]{
			Item:  word.FromLocations(e.Word, e.Locations),
			Left:  e.Children&hasLeft != 0,
			Right: e.Children&hasRight != 0,
		})
	}
	t, err := bst.FromLayout(slots)
	if err != nil {
		return nil, corrupt("rebuilding tree: %v", err)
	}
	return t, nil
}

// Write encodes t to w.
func (c *Codec) Write(w io.Writer, t *Tree) (int, error) {
	data, err := c.Encode(t)
	if err != nil {
		return 0, err
	}
	n, err := w.Write(data)
	if err != nil {
		return n, fmt.Errorf("writing snapshot: %w", err)
	}
	return n, nil
}

// Read decodes a whole snapshot from r.
func (c *Codec) Read(r io.Reader) (*Tree, error) {
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(r); err != nil {
		return nil, corrupt("reading snapshot stream: %v", err)
	}
	return c.Decode(buf.Bytes())
}

// ReadHeader validates and returns the fixed-size header of data.
func ReadHeader(data []byte) (Header, error) {
	if len(data) < HeaderSize {
		return Header{}, corrupt("snapshot is %d bytes, shorter than the %d byte header", len(data), HeaderSize)
	}
	h := Header{
		Magic:      binary.LittleEndian.Uint32(data[0:4]),
		Version:    binary.LittleEndian.Uint32(data[4:8]),
		Flags:      binary.LittleEndian.Uint32(data[8:12]),
		NodeCount:  binary.LittleEndian.Uint32(data[12:16]),
		PayloadLen: binary.LittleEndian.Uint64(data[16:24]),
		Checksum:   binary.LittleEndian.Uint32(data[24:28]),
	}
	if h.Magic != MagicBytes {
		return Header{}, corrupt("bad magic bytes %x", h.Magic)
	}
	if h.Version != FormatVersion {
		return Header{}, corrupt("unsupported format version %d", h.Version)
	}
	if h.Flags&^knownFlags != 0 {
		return Header{}, corrupt("unknown flags %b", h.Flags)
	}
	if h.Flags == knownFlags {
		return Header{}, corrupt("payload cannot be both snappy and lz4")
	}
	return h, nil
}

func lz4Encode(payload []byte) ([]byte, error) {
	var buf bytes.Buffer
	zw := lz4.NewWriter(&buf)
	if _, err := zw.Write(payload); err != nil {
		return nil, fmt.Errorf("compressing snapshot payload: %w", err)
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("compressing snapshot payload: %w", err)
	}
	return buf.Bytes(), nil
}

func corrupt(format string, args ...any) error {
	return apperrors.Newf(apperrors.ErrCorruptState, apperrors.ExitFailure, format, args...)
}
