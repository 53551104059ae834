// Package table persists a traced ray function as a flat binary table keyed
// by (wavelength, field, pupil, surface) indices, behind a selectable
// compression codec.
package table

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/golang/snappy"
	"github.com/klauspost/compress/zstd"

	"github.com/byrdie/optika/pkg/core"
)

// Codec selects the compression applied to the table stream.
type Codec uint8

const (
	CodecRaw Codec = iota
	CodecSnappy
	CodecZstd
)

// ParseCodec maps a codec name to its identifier.
func ParseCodec(name string) (Codec, error) {
	switch name {
	case "raw", "none", "":
		return CodecRaw, nil
	case "snappy":
		return CodecSnappy, nil
	case "zstd":
		return CodecZstd, nil
	default:
		return CodecRaw, fmt.Errorf("table: unknown codec %q", name)
	}
}

const (
	magic   = uint32(0x4f50544b) // "OPTK"
	version = uint16(1)
)

type header struct {
	Magic    uint32
	Version  uint16
	NWave    uint32
	NFieldY  uint32
	NFieldX  uint32
	NPupilY  uint32
	NPupilX  uint32
	NSurface uint32
}

// row is one table entry: the full grid/surface key plus the recorded state.
type row struct {
	Iw, Ify, Ifx, Ipy, Ipx uint16
	Surface                uint16
	Position               [3]float64
	Direction              [3]float64
	Alive                  uint8
}

// Write serializes the ray function to w. The first byte of the stream names
// the codec; everything after it is compressed accordingly.
func Write(w io.Writer, codec Codec, rf *core.RayFunction) error {
	if _, err := w.Write([]byte{byte(codec)}); err != nil {
		return fmt.Errorf("table: write codec: %w", err)
	}

	var sink io.Writer
	var finish func() error
	switch codec {
	case CodecRaw:
		bw := bufio.NewWriter(w)
		sink, finish = bw, bw.Flush
	case CodecSnappy:
		sw := snappy.NewBufferedWriter(w)
		sink, finish = sw, sw.Close
	case CodecZstd:
		zw, err := zstd.NewWriter(w)
		if err != nil {
			return fmt.Errorf("table: zstd writer: %w", err)
		}
		sink, finish = zw, zw.Close
	default:
		return fmt.Errorf("table: unknown codec %d", codec)
	}

	if err := writePayload(sink, rf); err != nil {
		return err
	}
	return finish()
}

func writePayload(w io.Writer, rf *core.RayFunction) error {
	g := rf.Grid
	h := header{
		Magic:    magic,
		Version:  version,
		NWave:    uint32(len(g.Wavelengths)),
		NFieldY:  uint32(len(g.FieldY)),
		NFieldX:  uint32(len(g.FieldX)),
		NPupilY:  uint32(len(g.PupilY)),
		NPupilX:  uint32(len(g.PupilX)),
		NSurface: uint32(rf.NumSurfaces()),
	}
	if err := binary.Write(w, binary.LittleEndian, h); err != nil {
		return fmt.Errorf("table: write header: %w", err)
	}
	for _, axis := range [][]float64{g.Wavelengths, g.FieldY, g.FieldX, g.PupilY, g.PupilX} {
		if err := binary.Write(w, binary.LittleEndian, axis); err != nil {
			return fmt.Errorf("table: write axis: %w", err)
		}
	}
	for _, name := range rf.SurfaceNames {
		if err := writeString(w, name); err != nil {
			return err
		}
	}
	for si, states := range rf.States {
		for cell, r := range states {
			iw, ify, ifx, ipy, ipx := g.Coords(cell)
			entry := row{
				Iw: uint16(iw), Ify: uint16(ify), Ifx: uint16(ifx),
				Ipy: uint16(ipy), Ipx: uint16(ipx),
				Surface:   uint16(si),
				Position:  r.Position,
				Direction: r.Direction,
			}
			if r.Alive {
				entry.Alive = 1
			}
			if err := binary.Write(w, binary.LittleEndian, entry); err != nil {
				return fmt.Errorf("table: write row: %w", err)
			}
		}
	}
	return nil
}

// Read deserializes a table written by Write and reconstructs the ray
// function, including its grid axes and surface names.
func Read(r io.Reader) (*core.RayFunction, error) {
	var codecByte [1]byte
	if _, err := io.ReadFull(r, codecByte[:]); err != nil {
		return nil, fmt.Errorf("table: read codec: %w", err)
	}

	var src io.Reader
	switch Codec(codecByte[0]) {
	case CodecRaw:
		src = bufio.NewReader(r)
	case CodecSnappy:
		src = snappy.NewReader(r)
	case CodecZstd:
		zr, err := zstd.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("table: zstd reader: %w", err)
		}
		defer zr.Close()
		src = zr
	default:
		return nil, fmt.Errorf("table: unknown codec %d", codecByte[0])
	}
	return readPayload(src)
}

func readPayload(r io.Reader) (*core.RayFunction, error) {
	var h header
	if err := binary.Read(r, binary.LittleEndian, &h); err != nil {
		return nil, fmt.Errorf("table: read header: %w", err)
	}
	if h.Magic != magic {
		return nil, fmt.Errorf("table: bad magic %#x", h.Magic)
	}
	if h.Version != version {
		return nil, fmt.Errorf("table: unsupported version %d", h.Version)
	}

	grid := core.InputGrid{
		Wavelengths: make([]float64, h.NWave),
		FieldY:      make([]float64, h.NFieldY),
		FieldX:      make([]float64, h.NFieldX),
		PupilY:      make([]float64, h.NPupilY),
		PupilX:      make([]float64, h.NPupilX),
	}
	for _, axis := range [][]float64{grid.Wavelengths, grid.FieldY, grid.FieldX, grid.PupilY, grid.PupilX} {
		if err := binary.Read(r, binary.LittleEndian, axis); err != nil {
			return nil, fmt.Errorf("table: read axis: %w", err)
		}
	}

	names := make([]string, h.NSurface)
	for i := range names {
		name, err := readString(r)
		if err != nil {
			return nil, err
		}
		names[i] = name
	}

	cells := grid.NumCells()
	states := make([][]core.Ray, h.NSurface)
	for i := range states {
		states[i] = make([]core.Ray, cells)
	}
	for i := 0; i < int(h.NSurface)*cells; i++ {
		var entry row
		if err := binary.Read(r, binary.LittleEndian, &entry); err != nil {
			return nil, fmt.Errorf("table: read row: %w", err)
		}
		if int(entry.Surface) >= len(states) {
			return nil, fmt.Errorf("table: row surface index %d out of range", entry.Surface)
		}
		cell := grid.Index(int(entry.Iw), int(entry.Ify), int(entry.Ifx), int(entry.Ipy), int(entry.Ipx))
		if cell < 0 || cell >= cells {
			return nil, fmt.Errorf("table: row cell index out of range")
		}
		ray := core.Ray{
			Position:   mgl64.Vec3(entry.Position),
			Direction:  mgl64.Vec3(entry.Direction),
			Alive:      entry.Alive == 1,
			Wavelength: grid.Wavelengths[entry.Iw],
		}
		states[entry.Surface][cell] = ray
	}

	return &core.RayFunction{Grid: grid, SurfaceNames: names, States: states}, nil
}

func writeString(w io.Writer, s string) error {
	if len(s) > math.MaxUint16 {
		return fmt.Errorf("table: surface name too long")
	}
	if err := binary.Write(w, binary.LittleEndian, uint16(len(s))); err != nil {
		return fmt.Errorf("table: write name length: %w", err)
	}
	if _, err := w.Write([]byte(s)); err != nil {
		return fmt.Errorf("table: write name: %w", err)
	}
	return nil
}

func readString(r io.Reader) (string, error) {
	var n uint16
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return "", fmt.Errorf("table: read name length: %w", err)
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", fmt.Errorf("table: read name: %w", err)
	}
	return string(buf), nil
}
