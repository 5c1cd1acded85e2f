// Package decompress recognizes compressed kernel images and unpacks them
// into a fixed size destination.
package decompress

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
	"github.com/pkg/errors"
)

// ErrTooLarge is returned when the unpacked image does not fit.
var ErrTooLarge = errors.New("decompressed image exceeds the destination")

// Format identifies the container of an image.
type Format uint8

// Known formats.
const (
	None Format = iota
	Gzip
	Zstd
	LZ4
)

const (
	zstdMagic      = 0xfd2fb528
	lz4FrameMagic  = 0x184d2204
	lz4LegacyMagic = 0x184c2102
)

func (f Format) String() string {
	switch f {
	case None:
		return "none"
	case Gzip:
		return "gzip"
	case Zstd:
		return "zstd"
	case LZ4:
		return "lz4"
	default:
		return fmt.Sprintf("unknown(%d)", f)
	}
}

// Detect looks at the leading signature of data.
func Detect(data []byte) Format {
	if len(data) >= 3 && data[0] == 0x1f && data[1] == 0x8b && data[2] == 0x08 {
		return Gzip
	}
	if len(data) < 4 {
		return None
	}
	switch binary.LittleEndian.Uint32(data) {
	case zstdMagic:
		return Zstd
	case lz4FrameMagic, lz4LegacyMagic:
		return LZ4
	}
	return None
}

// Decompress unpacks src of the given format into dst and returns the
// unpacked size. Output that would not fit in dst is an error.
func Decompress(format Format, src, dst []byte) (int, error) {
	r, closeFn, err := newReader(format, src)
	if err != nil {
		return 0, err
	}
	defer closeFn()

	n := 0
	for n < len(dst) {
		m, err := r.Read(dst[n:])
		n += m
		if err == io.EOF {
			return n, nil
		}
		if err != nil {
			return n, errors.Wrapf(err, "%s stream", format)
		}
	}

	// dst is full; anything left over means the image was cut.
	var probe [1]byte
	for {
		extra, err := r.Read(probe[:])
		if extra > 0 {
			return n, errors.Wrapf(ErrTooLarge, "%s image larger than %d bytes", format, len(dst))
		}
		if err == io.EOF {
			return n, nil
		}
		if err != nil {
			return n, errors.Wrapf(err, "%s stream", format)
		}
	}
}

func newReader(format Format, src []byte) (io.Reader, func(), error) {
	switch format {
	case Gzip:
		r, err := gzip.NewReader(bytes.NewReader(src))
		if err != nil {
			return nil, nil, errors.Wrap(err, "gzip header")
		}
		// Image.gz-dtb style images carry a dtb after the first member.
		r.Multistream(false)
		return r, func() { _ = r.Close() }, nil
	case Zstd:
		d, err := zstd.NewReader(bytes.NewReader(src), zstd.WithDecoderConcurrency(1))
		if err != nil {
			return nil, nil, errors.Wrap(err, "zstd decoder")
		}
		return d, d.Close, nil
	case LZ4:
		return lz4.NewReader(bytes.NewReader(src)), func() {}, nil
	default:
		return nil, nil, errors.Errorf("format %s is not compressed", format)
	}
}
