package transcode

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
)

// WAVInfo is the format chunk of a RIFF/WAVE file.
type WAVInfo struct {
	AudioFormat   uint16
	Channels      uint16
	SampleRate    uint32
	BitsPerSample uint16
}

// ErrNotWAV is returned for files without a RIFF/WAVE header.
var ErrNotWAV = errors.New("transcode: not a RIFF/WAVE file")

// ReadWAVHeader reads the fmt chunk of the WAV file at path.
func ReadWAVHeader(path string) (WAVInfo, error) {
	f, err := os.Open(path)
	if err != nil {
		return WAVInfo{}, err
	}
	defer f.Close()
	return readWAVHeader(f)
}

func readWAVHeader(r io.Reader) (WAVInfo, error) {
	var riff [12]byte
	if _, err := io.ReadFull(r, riff[:]); err != nil {
		return WAVInfo{}, ErrNotWAV
	}
	if string(riff[0:4]) != "RIFF" || string(riff[8:12]) != "WAVE" {
		return WAVInfo{}, ErrNotWAV
	}

	for {
		var hdr [8]byte
		if _, err := io.ReadFull(r, hdr[:]); err != nil {
			return WAVInfo{}, fmt.Errorf("transcode: fmt chunk not found: %w", err)
		}
		id := string(hdr[0:4])
		size := binary.LittleEndian.Uint32(hdr[4:8])

		if id != "fmt " {
			// Chunks are word aligned.
			skip := int64(size) + int64(size&1)
			if _, err := io.CopyN(io.Discard, r, skip); err != nil {
				return WAVInfo{}, fmt.Errorf("transcode: skip %q chunk: %w", id, err)
			}
			continue
		}
		if size < 16 {
			return WAVInfo{}, fmt.Errorf("transcode: fmt chunk too short (%d bytes)", size)
		}
		var body [16]byte
		if _, err := io.ReadFull(r, body[:]); err != nil {
			return WAVInfo{}, fmt.Errorf("transcode: read fmt chunk: %w", err)
		}
		return WAVInfo{
			AudioFormat:   binary.LittleEndian.Uint16(body[0:2]),
			Channels:      binary.LittleEndian.Uint16(body[2:4]),
			SampleRate:    binary.LittleEndian.Uint32(body[4:8]),
			BitsPerSample: binary.LittleEndian.Uint16(body[14:16]),
		}, nil
	}
}
