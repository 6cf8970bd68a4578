package testutil

import (
	"bytes"
	"encoding/binary"
	"math"
)

// WAV builds a 16-bit PCM WAV file holding a 440 Hz tone.
func WAV(rate, channels, frames int) []byte {
	var data bytes.Buffer
	for i := 0; i < frames; i++ {
		v := int16(8000 * math.Sin(2*math.Pi*440*float64(i)/float64(rate)))
		for c := 0; c < channels; c++ {
			_ = binary.Write(&data, binary.LittleEndian, v)
		}
	}

	var out bytes.Buffer
	out.WriteString("RIFF")
	_ = binary.Write(&out, binary.LittleEndian, uint32(36+data.Len()))
	out.WriteString("WAVEfmt ")
	for _, v := range []any{
		uint32(16),
		uint16(1),
		uint16(channels),
		uint32(rate),
		uint32(rate * channels * 2),
		uint16(channels * 2),
		uint16(16),
	} {
		_ = binary.Write(&out, binary.LittleEndian, v)
	}
	out.WriteString("data")
	_ = binary.Write(&out, binary.LittleEndian, uint32(data.Len()))
	out.Write(data.Bytes())
	return out.Bytes()
}

// SpeechWAV is one second of 16 kHz mono audio.
func SpeechWAV() []byte {
	return WAV(16000, 1, 16000)
}

// WebM returns bytes that sniff as WebM. They are not decodable audio.
func WebM() []byte {
	b := []byte("\x1aE\xdf\xa3\x9fB\x86\x81\x01B\xf7\x81\x01B\xf2\x81\x04B\xf3\x81\x08B\x82\x84webm")
	return append(b, bytes.Repeat([]byte{0}, 2048)...)
}
