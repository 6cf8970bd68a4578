package transcode

import (
	"bytes"
	"context"
	"encoding/binary"
	"math"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/kbukum/voiceingest/toolchain"
)

// wavBytes builds a 16-bit PCM WAV holding a sine tone. A LIST chunk
// precedes the fmt chunk when withList is set.
func wavBytes(rate, channels, frames int, withList bool) []byte {
	var data bytes.Buffer
	for i := 0; i < frames; i++ {
		v := int16(8000 * math.Sin(2*math.Pi*440*float64(i)/float64(rate)))
		for c := 0; c < channels; c++ {
			_ = binary.Write(&data, binary.LittleEndian, v)
		}
	}

	var chunks bytes.Buffer
	if withList {
		chunks.WriteString("LIST")
		_ = binary.Write(&chunks, binary.LittleEndian, uint32(5))
		chunks.Write([]byte("INFOx\x00")) // odd size plus pad byte
	}
	chunks.WriteString("fmt ")
	_ = binary.Write(&chunks, binary.LittleEndian, uint32(16))
	_ = binary.Write(&chunks, binary.LittleEndian, uint16(1))
	_ = binary.Write(&chunks, binary.LittleEndian, uint16(channels))
	_ = binary.Write(&chunks, binary.LittleEndian, uint32(rate))
	_ = binary.Write(&chunks, binary.LittleEndian, uint32(rate*channels*2))
	_ = binary.Write(&chunks, binary.LittleEndian, uint16(channels*2))
	_ = binary.Write(&chunks, binary.LittleEndian, uint16(16))
	chunks.WriteString("data")
	_ = binary.Write(&chunks, binary.LittleEndian, uint32(data.Len()))
	chunks.Write(data.Bytes())

	var out bytes.Buffer
	out.WriteString("RIFF")
	_ = binary.Write(&out, binary.LittleEndian, uint32(4+chunks.Len()))
	out.WriteString("WAVE")
	out.Write(chunks.Bytes())
	return out.Bytes()
}

func writeFile(t *testing.T, dir, name string, data []byte) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, data, 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return p
}

// fakeTool writes a shell script standing in for the transcoder. The
// script body sees the output path as $out.
func fakeTool(t *testing.T, dir, body string) string {
	t.Helper()
	p := filepath.Join(dir, "ffmpeg")
	script := "#!/bin/sh\nfor out; do :; done\n" + body + "\n"
	if err := os.WriteFile(p, []byte(script), 0o755); err != nil {
		t.Fatalf("write fake tool: %v", err)
	}
	return p
}

type staticResolver struct {
	res   toolchain.Resolution
	calls atomic.Int32
}

func (s *staticResolver) Resolve(context.Context) toolchain.Resolution {
	s.calls.Add(1)
	return s.res
}

func available(path string) *staticResolver {
	return &staticResolver{res: toolchain.Resolution{Path: path, Version: "fake"}}
}
