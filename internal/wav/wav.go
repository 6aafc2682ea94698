// Package wav handles the RIFF/WAVE container around LINEAR16 PCM audio:
// stripping headers from synthesized segments, rebuilding a header for a
// merged stream, and converting PCM byte offsets to milliseconds.
package wav

import (
	"encoding/binary"
	"math"
)

// Audio format of every synthesized segment: mono 16-bit PCM at 24 kHz.
const (
	SampleRate     = 24000
	BytesPerSample = 2
	NumChannels    = 1

	// HeaderSize is the length of a minimal canonical WAV header.
	HeaderSize = 44
)

// ExtractPCM returns the raw PCM payload of a WAV buffer by walking the
// RIFF chunk list for the "data" subchunk. Encoders may emit extra metadata
// chunks before the audio payload, so a fixed-offset assumption is unsafe
// in general. If no "data" chunk is found before the buffer is exhausted,
// fall back to assuming a standard 44-byte header. Never fails; a malformed
// buffer degrades to the fallback slice.
func ExtractPCM(buf []byte) []byte {
	// Skip "RIFF" (4) + ChunkSize (4) + "WAVE" (4)
	offset := 12
	for offset < len(buf)-8 {
		chunkID := string(buf[offset : offset+4])
		chunkSize := int(binary.LittleEndian.Uint32(buf[offset+4 : offset+8]))
		if chunkID == "data" {
			return buf[offset+8:]
		}
		offset += 8 + chunkSize
	}
	if len(buf) > HeaderSize {
		return buf[HeaderSize:]
	}
	return nil
}

// BuildHeader synthesizes a minimal WAV header describing a mono 16-bit
// 24 kHz PCM stream of pcmLen bytes. Appending the concatenated PCM payload
// directly after this header yields a playable file.
func BuildHeader(pcmLen int) []byte {
	byteRate := SampleRate * NumChannels * BytesPerSample
	blockAlign := NumChannels * BytesPerSample

	h := make([]byte, HeaderSize)
	copy(h[0:4], "RIFF")
	binary.LittleEndian.PutUint32(h[4:8], uint32(36+pcmLen)) // ChunkSize
	copy(h[8:12], "WAVE")
	copy(h[12:16], "fmt ")
	binary.LittleEndian.PutUint32(h[16:20], 16) // Subchunk1Size (PCM)
	binary.LittleEndian.PutUint16(h[20:22], 1)  // AudioFormat (PCM)
	binary.LittleEndian.PutUint16(h[22:24], uint16(NumChannels))
	binary.LittleEndian.PutUint32(h[24:28], SampleRate)
	binary.LittleEndian.PutUint32(h[28:32], uint32(byteRate))
	binary.LittleEndian.PutUint16(h[32:34], uint16(blockAlign))
	binary.LittleEndian.PutUint16(h[34:36], 16) // BitsPerSample
	copy(h[36:40], "data")
	binary.LittleEndian.PutUint32(h[40:44], uint32(pcmLen)) // Subchunk2Size

	return h
}

// BytesToMs converts a PCM byte count into milliseconds of audio. Rounding
// is independent per call; callers comparing adjacent boundaries must
// tolerate a 1ms difference.
func BytesToMs(n int) int {
	return int(math.Round(float64(n) / BytesPerSample / SampleRate * 1000))
}
