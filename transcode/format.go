package transcode

import (
	"mime"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// wavPCM is the WAVE format tag for integer PCM.
const wavPCM = 1

// Format describes the canonical output the engine produces.
type Format struct {
	Container     string
	Codec         string
	SampleRate    int
	Channels      int
	BitsPerSample int
	Suffix        string
	MimeType      string
}

// Speech16kMono is 16-bit little-endian PCM, 16 kHz, mono, in a WAV container.
var Speech16kMono = Format{
	Container:     "wav",
	Codec:         "pcm_s16le",
	SampleRate:    16000,
	Channels:      1,
	BitsPerSample: 16,
	Suffix:        ".16k.wav",
	MimeType:      "audio/wav",
}

// matches reports whether a WAV header carries exactly this format.
func (f Format) matches(hdr WAVInfo) bool {
	return hdr.AudioFormat == wavPCM &&
		int(hdr.BitsPerSample) == f.BitsPerSample &&
		int(hdr.SampleRate) == f.SampleRate &&
		int(hdr.Channels) == f.Channels
}

// Args returns the transcoder arguments converting in to out.
func (f Format) Args(in, out string) []string {
	return []string{
		"-y", "-hide_banner", "-loglevel", "error",
		"-i", in,
		"-ac", strconv.Itoa(f.Channels),
		"-ar", strconv.Itoa(f.SampleRate),
		"-c:a", f.Codec,
		"-f", f.Container,
		out,
	}
}

// conversionTypes are containers the speech provider does not accept as
// uploaded from browsers and mobile recorders.
var conversionTypes = map[string]bool{
	"audio/webm":       true,
	"video/webm":       true,
	"audio/ogg":        true,
	"application/ogg":  true,
	"audio/opus":       true,
	"audio/x-matroska": true,
}

// NeedsConversion reports whether audio of mimeType must be transcoded.
// Parameters such as codecs=opus are ignored.
func NeedsConversion(mimeType string) bool {
	return conversionTypes[baseType(mimeType)]
}

func baseType(mimeType string) string {
	mt, _, err := mime.ParseMediaType(mimeType)
	if err != nil {
		mt, _, _ = strings.Cut(mimeType, ";")
	}
	return strings.ToLower(strings.TrimSpace(mt))
}

// providerFileName returns the name sent to the speech provider. Providers
// infer the container from the extension, so it must agree with mimeType:
// a missing or conflicting extension is replaced by the detected one. When
// the type is unknown the stored upload's extension is used instead.
func providerFileName(name, path, mimeType string) string {
	if name == "" {
		name = filepath.Base(path)
	}
	ext := filepath.Ext(name)
	m := mimetype.Lookup(baseType(mimeType))
	if m == nil || m.Extension() == "" {
		if ext == "" {
			return name + filepath.Ext(path)
		}
		return name
	}
	if ext != "" && (strings.EqualFold(ext, m.Extension()) || m.Is(baseType(mime.TypeByExtension(ext)))) {
		return name
	}
	return strings.TrimSuffix(name, ext) + m.Extension()
}
