// Package y4m reads the stream header of YUV4MPEG2 files so the geometry and format
// stored in the file can take precedence over what was configured by hand.
package y4m

import (
	"bytes"
	"io"
	"os"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/Tubbz-alt/thor/internal/lenient"
)

const (
	// Signature starts every YUV4MPEG2 stream.
	Signature = "YUV4MPEG2 "

	// ProbeSize is how much of the file is read to find the stream header.
	ProbeSize = 256

	// FrameHeaderLen is the length of the "FRAME\n" marker before each frame.
	FrameHeaderLen = 6

	frameMarker = "\nFRAME\n"
)

var (
	ErrInterlaced = eris.New("Only progressive input supported")
	ErrCorrupt    = eris.New("Corrupt Y4M file")
)

// Field identifies a header value that was present in the stream header.
type Field uint

const (
	FieldWidth Field = 1 << iota
	FieldHeight
	FieldFrameRate
	FieldAspect
	FieldColorspace
	FieldBitDepth
)

// Header is the decoded stream header.
type Header struct {
	Width     int
	Height    int
	FrameRate float64
	AspectNum int
	AspectDen int
	Subsample int
	BitDepth  int

	// HeaderLen is the byte offset of the first frame marker, i.e. the length of the
	// stream header line including its newline.
	HeaderLen      int
	FrameHeaderLen int

	fields Field
}

// Has reports whether f was present in the stream header.
func (h *Header) Has(f Field) bool {
	return h.fields&f != 0
}

// Probe reads the start of the file at path. It returns a nil header and no error
// when the file cannot be opened, is a directory or is not a YUV4MPEG2 stream.
func Probe(path string) (*Header, error) {
	if path == "" {
		return nil, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, nil
	}
	defer f.Close()

	if fi, err := f.Stat(); err == nil && fi.IsDir() {
		return nil, nil
	}

	buf := make([]byte, ProbeSize)
	n, err := io.ReadFull(f, buf)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		// *os.PathError already names the file.
		return nil, eris.Wrap(err, "read stream header")
	}

	return Parse(buf[:n])
}

// Parse decodes a stream header from the first bytes of a file. Data without the
// signature yields a nil header.
func Parse(buf []byte) (*Header, error) {
	if !bytes.HasPrefix(buf, []byte(Signature)) {
		return nil, nil
	}

	nl := bytes.IndexByte(buf[len(Signature):], '\n')
	if nl < 0 {
		return nil, ErrCorrupt
	}
	nl += len(Signature)

	h := &Header{}
	for _, field := range strings.Split(string(buf[len(Signature):nl]), " ") {
		if field == "" {
			continue
		}
		if err := h.parseField(field[0], field[1:]); err != nil {
			return nil, err
		}
	}

	if !bytes.HasPrefix(buf[nl:], []byte(frameMarker)) {
		return nil, ErrCorrupt
	}
	h.HeaderLen = nl + 1
	h.FrameHeaderLen = FrameHeaderLen
	return h, nil
}

func (h *Header) parseField(tag byte, value string) error {
	switch tag {
	case 'W':
		h.Width, _ = lenient.Atoi(value)
		h.fields |= FieldWidth
	case 'H':
		h.Height, _ = lenient.Atoi(value)
		h.fields |= FieldHeight
	case 'F':
		// The ratio is stored as den:num and the rate is den/num.
		den, num := ratio(value)
		if num != 0 {
			h.FrameRate = float64(den) / float64(num)
			h.fields |= FieldFrameRate
		}
	case 'I':
		if !strings.HasPrefix(value, "p") {
			return ErrInterlaced
		}
	case 'C':
		h.parseColorspace(value)
	case 'A':
		h.AspectNum, h.AspectDen = ratio(value)
		h.fields |= FieldAspect
	}
	return nil
}

// parseColorspace handles "mono" or a subsampling code such as 420, optionally
// followed by "p" and the sample bit depth (C420p10).
func (h *Header) parseColorspace(value string) {
	rest := value
	if strings.HasPrefix(value, "mono") {
		h.Subsample = 400
		rest = value[len("mono"):]
	} else {
		end := digitsEnd(value)
		h.Subsample, _ = lenient.Atoi(value[:end])
		rest = value[end:]
	}
	h.fields |= FieldColorspace

	if len(rest) > 1 && rest[0] == 'p' && digitsEnd(rest[1:]) > 0 {
		h.BitDepth, _ = lenient.Atoi(rest[1:])
		h.fields |= FieldBitDepth
	}
}

func ratio(value string) (int, int) {
	first, second, _ := strings.Cut(value, ":")
	a, _ := lenient.Atoi(first)
	b, _ := lenient.Atoi(second)
	return a, b
}

func digitsEnd(s string) int {
	i := 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	return i
}
