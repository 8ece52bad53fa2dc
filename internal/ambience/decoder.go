package ambience

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-audio/wav"
	"github.com/hajimehoshi/go-mp3"
	"github.com/jfreymuth/oggvorbis"
	"github.com/mewkiz/flac"
)

// SupportedExts lists the file types an ambience track may use.
var SupportedExts = []string{".mp3", ".wav", ".ogg", ".flac"}

// pcmDecoder yields 16-bit little-endian stereo frames at SampleRate.
type pcmDecoder interface {
	io.ReadSeeker
}

// openDecoder picks a decoder by extension and checks the output format.
func openDecoder(f *os.File) (pcmDecoder, error) {
	ext := strings.ToLower(filepath.Ext(f.Name()))
	var (
		rate int
		dec  pcmDecoder
		err  error
	)
	switch ext {
	case ".mp3":
		var d *mp3.Decoder
		d, err = mp3.NewDecoder(f)
		if err == nil {
			rate, dec = d.SampleRate(), d
		}
	case ".wav":
		var d *wavDecoder
		d, err = newWAVDecoder(f)
		if err == nil {
			rate, dec = d.sampleRate, d
		}
	case ".flac":
		var d *flacDecoder
		d, err = newFLACDecoder(f)
		if err == nil {
			rate, dec = d.sampleRate, d
		}
	case ".ogg":
		var d *oggDecoder
		d, err = newOGGDecoder(f)
		if err == nil {
			rate, dec = d.sampleRate, d
		}
	default:
		return nil, fmt.Errorf("unsupported format %q (supported: %s)", ext, strings.Join(SupportedExts, ", "))
	}
	if err != nil {
		return nil, err
	}
	if rate != SampleRate {
		return nil, fmt.Errorf("%s: sample rate %d Hz not supported (want %d)", filepath.Base(f.Name()), rate, SampleRate)
	}
	return dec, nil
}

// pcmBuffer holds converted frames that did not fit the caller's slice and
// tracks the output byte position.
type pcmBuffer struct {
	pending []byte
	pos     int64
	total   int64
}

func (b *pcmBuffer) drain(p []byte) int {
	n := copy(p, b.pending)
	b.pending = b.pending[n:]
	b.pos += int64(n)
	return n
}

func (b *pcmBuffer) emit(p, raw []byte) int {
	n := copy(p, raw)
	if n < len(raw) {
		b.pending = raw[n:]
	}
	b.pos += int64(n)
	return n
}

// target resolves a Seek request to an output frame index.
func (b *pcmBuffer) target(offset int64, whence int) (int64, error) {
	var pos int64
	switch whence {
	case io.SeekStart:
		pos = offset
	case io.SeekCurrent:
		pos = b.pos + offset
	case io.SeekEnd:
		pos = b.total + offset
	default:
		return 0, fmt.Errorf("invalid whence %d", whence)
	}
	pos = max(0, min(pos, b.total))
	return pos / bytesPerFrame, nil
}

func (b *pcmBuffer) moved(frame int64) int64 {
	b.pending = nil
	b.pos = frame * bytesPerFrame
	return b.pos
}

// putFrame writes one stereo frame, duplicating mono input.
func putFrame(raw []byte, frame int, left, right int) {
	off := frame * bytesPerFrame
	binary.LittleEndian.PutUint16(raw[off:], uint16(int16(clampSample(left))))
	binary.LittleEndian.PutUint16(raw[off+2:], uint16(int16(clampSample(right))))
}

func clampSample(s int) int {
	return max(-32768, min(s, 32767))
}

// --- WAV ---

type wavDecoder struct {
	pcmBuffer
	file         *os.File
	pcmStart     int64
	sampleRate   int
	channels     int
	srcBitDepth  int
	srcFrameSize int64
}

func newWAVDecoder(f *os.File) (*wavDecoder, error) {
	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return nil, fmt.Errorf("invalid WAV file")
	}
	if err := dec.FwdToPCM(); err != nil {
		return nil, fmt.Errorf("reading WAV PCM data: %w", err)
	}
	channels := int(dec.NumChans)
	bitDepth := int(dec.BitDepth)
	if channels < 1 || channels > 2 {
		return nil, fmt.Errorf("WAV with %d channels not supported", channels)
	}
	switch bitDepth {
	case 8, 16, 24, 32:
	default:
		return nil, fmt.Errorf("WAV bit depth %d not supported", bitDepth)
	}
	srcFrameSize := int64(channels * bitDepth / 8)

	pcmStart, err := f.Seek(0, io.SeekCurrent)
	if err != nil {
		return nil, fmt.Errorf("getting PCM start position: %w", err)
	}
	return &wavDecoder{
		pcmBuffer:    pcmBuffer{total: dec.PCMLen() / srcFrameSize * bytesPerFrame},
		file:         f,
		pcmStart:     pcmStart,
		sampleRate:   int(dec.SampleRate),
		channels:     channels,
		srcBitDepth:  bitDepth,
		srcFrameSize: srcFrameSize,
	}, nil
}

func (d *wavDecoder) sample(b []byte) int {
	switch d.srcBitDepth {
	case 8:
		return (int(b[0]) - 128) << 8
	case 16:
		return int(int16(binary.LittleEndian.Uint16(b)))
	case 24:
		s := int32(b[0]) | int32(b[1])<<8 | int32(b[2])<<16
		if s&0x800000 != 0 {
			s |= ^0xFFFFFF
		}
		return int(s >> 8)
	default:
		return int(int32(binary.LittleEndian.Uint32(b)) >> 16)
	}
}

func (d *wavDecoder) Read(p []byte) (int, error) {
	if len(d.pending) > 0 {
		return d.drain(p), nil
	}
	frames := max(len(p)/bytesPerFrame, 1)
	src := make([]byte, int64(frames)*d.srcFrameSize)
	n, err := io.ReadFull(d.file, src)
	got := int64(n) / d.srcFrameSize
	if got == 0 {
		if err == nil || err == io.ErrUnexpectedEOF {
			err = io.EOF
		}
		return 0, err
	}

	width := d.srcBitDepth / 8
	raw := make([]byte, got*bytesPerFrame)
	for i := range int(got) {
		off := int64(i) * d.srcFrameSize
		left := d.sample(src[off:])
		right := left
		if d.channels == 2 {
			right = d.sample(src[off+int64(width):])
		}
		putFrame(raw, i, left, right)
	}
	if err == io.ErrUnexpectedEOF {
		err = io.EOF
	}
	return d.emit(p, raw), err
}

func (d *wavDecoder) Seek(offset int64, whence int) (int64, error) {
	frame, err := d.target(offset, whence)
	if err != nil {
		return d.pos, err
	}
	if _, err := d.file.Seek(d.pcmStart+frame*d.srcFrameSize, io.SeekStart); err != nil {
		return d.pos, err
	}
	return d.moved(frame), nil
}

// --- FLAC ---

type flacDecoder struct {
	pcmBuffer
	stream     *flac.Stream
	sampleRate int
	channels   int
	bps        int
}

func newFLACDecoder(f *os.File) (*flacDecoder, error) {
	stream, err := flac.NewSeek(f)
	if err != nil {
		return nil, fmt.Errorf("decoding FLAC: %w", err)
	}
	info := stream.Info
	if info.NChannels < 1 || info.NChannels > 2 {
		return nil, fmt.Errorf("FLAC with %d channels not supported", info.NChannels)
	}
	return &flacDecoder{
		pcmBuffer:  pcmBuffer{total: int64(info.NSamples) * bytesPerFrame},
		stream:     stream,
		sampleRate: int(info.SampleRate),
		channels:   int(info.NChannels),
		bps:        int(info.BitsPerSample),
	}, nil
}

func (d *flacDecoder) scale(s int32) int {
	v := int(s)
	switch {
	case d.bps > 16:
		v >>= d.bps - 16
	case d.bps < 16:
		v <<= 16 - d.bps
	}
	return v
}

func (d *flacDecoder) Read(p []byte) (int, error) {
	if len(d.pending) > 0 {
		return d.drain(p), nil
	}
	frame, err := d.stream.ParseNext()
	if err != nil {
		return 0, err
	}
	n := int(frame.Subframes[0].NSamples)
	raw := make([]byte, n*bytesPerFrame)
	for i := range n {
		left := d.scale(frame.Subframes[0].Samples[i])
		right := left
		if d.channels == 2 {
			right = d.scale(frame.Subframes[1].Samples[i])
		}
		putFrame(raw, i, left, right)
	}
	return d.emit(p, raw), nil
}

func (d *flacDecoder) Seek(offset int64, whence int) (int64, error) {
	frame, err := d.target(offset, whence)
	if err != nil {
		return d.pos, err
	}
	if _, err := d.stream.Seek(uint64(frame)); err != nil {
		return d.pos, err
	}
	return d.moved(frame), nil
}

// --- OGG Vorbis ---

type oggDecoder struct {
	pcmBuffer
	reader     *oggvorbis.Reader
	sampleRate int
	channels   int
}

func newOGGDecoder(f *os.File) (*oggDecoder, error) {
	reader, err := oggvorbis.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("decoding OGG: %w", err)
	}
	channels := reader.Channels()
	if channels < 1 || channels > 2 {
		return nil, fmt.Errorf("OGG with %d channels not supported", channels)
	}
	return &oggDecoder{
		pcmBuffer:  pcmBuffer{total: reader.Length() * bytesPerFrame},
		reader:     reader,
		sampleRate: reader.SampleRate(),
		channels:   channels,
	}, nil
}

func (d *oggDecoder) Read(p []byte) (int, error) {
	if len(d.pending) > 0 {
		return d.drain(p), nil
	}
	frames := max(len(p)/bytesPerFrame, 1)
	samples := make([]float32, frames*d.channels)
	n, err := d.reader.Read(samples)
	got := n / d.channels
	if got == 0 {
		if err == nil {
			err = io.EOF
		}
		return 0, err
	}
	raw := make([]byte, got*bytesPerFrame)
	for i := range got {
		left := floatSample(samples[i*d.channels])
		right := left
		if d.channels == 2 {
			right = floatSample(samples[i*2+1])
		}
		putFrame(raw, i, left, right)
	}
	return d.emit(p, raw), err
}

func (d *oggDecoder) Seek(offset int64, whence int) (int64, error) {
	frame, err := d.target(offset, whence)
	if err != nil {
		return d.pos, err
	}
	if err := d.reader.SetPosition(frame); err != nil {
		return d.pos, err
	}
	return d.moved(frame), nil
}

func floatSample(s float32) int {
	return int(max(-1, min(s, 1)) * 32767)
}
