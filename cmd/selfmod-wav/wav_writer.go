package main

import (
	"bufio"
	"encoding/binary"
	"io"
	"os"
)

// WAV header layout
const (
	wavHeaderSize      = 44 // Total WAV header size in bytes
	wavRiffHeaderSize  = 36 // file size - 8 = riffHeaderSize + dataSize
	wavPCMSubchunkSize = 16 // fmt subchunk size for PCM format
	wavFormatPCM       = 1
	wavFileSizeOffset  = 4  // Byte offset for file size field in header
	wavDataSizeOffset  = 40 // Byte offset for data size field in header

	bitsPerByte         = 8
	wavWriterBufferSize = 256 * 1024 // 256KB write buffer
)

// fastWAVWriter streams PCM data into a canonical 44-byte-header WAV file
// without per-sample allocations. Sizes are patched into the header on Close.
type fastWAVWriter struct {
	w              *bufio.Writer
	f              *os.File
	sampleRate     int
	bitDepth       int
	channels       int
	bytesPerSample int
	dataSize       uint32
	byteBuf        []byte
}

// newFastWAVWriter writes a header with placeholder sizes to f.
func newFastWAVWriter(f *os.File, sampleRate, bitDepth, channels int) (*fastWAVWriter, error) {
	bytesPerSample := bitDepth / bitsPerByte
	w := &fastWAVWriter{
		w:              bufio.NewWriterSize(f, wavWriterBufferSize),
		f:              f,
		sampleRate:     sampleRate,
		bitDepth:       bitDepth,
		channels:       channels,
		bytesPerSample: bytesPerSample,
		byteBuf:        make([]byte, bufferSize*channels*bytesPerSample),
	}

	if err := w.writeHeader(); err != nil {
		return nil, err
	}
	return w, nil
}

func (w *fastWAVWriter) writeHeader() error {
	blockAlign := w.channels * w.bytesPerSample
	header := make([]byte, wavHeaderSize)

	copy(header[0:4], "RIFF")
	copy(header[8:12], "WAVE")
	copy(header[12:16], "fmt ")
	binary.LittleEndian.PutUint32(header[16:20], wavPCMSubchunkSize)
	binary.LittleEndian.PutUint16(header[20:22], wavFormatPCM)
	binary.LittleEndian.PutUint16(header[22:24], uint16(w.channels))
	binary.LittleEndian.PutUint32(header[24:28], uint32(w.sampleRate))
	binary.LittleEndian.PutUint32(header[28:32], uint32(w.sampleRate*blockAlign))
	binary.LittleEndian.PutUint16(header[32:34], uint16(blockAlign))
	binary.LittleEndian.PutUint16(header[34:36], uint16(w.bitDepth))
	copy(header[36:40], "data")

	_, err := w.w.Write(header)
	return err
}

// WriteSamples encodes interleaved samples at the writer's bit depth.
func (w *fastWAVWriter) WriteSamples(samples []int) error {
	needed := len(samples) * w.bytesPerSample
	if len(w.byteBuf) < needed {
		w.byteBuf = make([]byte, needed)
	}
	buf := w.byteBuf[:needed]

	switch w.bitDepth {
	case bitsPerSample24:
		for i, s := range samples {
			o := i * 3
			buf[o] = byte(s)
			buf[o+1] = byte(s >> 8)
			buf[o+2] = byte(s >> 16)
		}
	case bitsPerSample32:
		for i, s := range samples {
			binary.LittleEndian.PutUint32(buf[i*4:], uint32(int32(s)))
		}
	default:
		for i, s := range samples {
			binary.LittleEndian.PutUint16(buf[i*2:], uint16(int16(s)))
		}
	}

	written, err := w.w.Write(buf)
	w.dataSize += uint32(written)
	return err
}

// Close flushes buffered data and patches the RIFF and data sizes.
func (w *fastWAVWriter) Close() error {
	if err := w.w.Flush(); err != nil {
		return err
	}

	if err := w.patchUint32(wavFileSizeOffset, wavRiffHeaderSize+w.dataSize); err != nil {
		return err
	}
	return w.patchUint32(wavDataSizeOffset, w.dataSize)
}

func (w *fastWAVWriter) patchUint32(offset int64, v uint32) error {
	if _, err := w.f.Seek(offset, io.SeekStart); err != nil {
		return err
	}
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	_, err := w.f.Write(b[:])
	return err
}
