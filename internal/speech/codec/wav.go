// Package codec encodes in-memory PCM as WAV and probes rendered WAV
// files for their playback parameters.
package codec

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"github.com/faiface/beep/wav"
)

// EncodeWAV writes a minimal 44-byte header followed by the given 16-bit
// little-endian mono PCM samples.
func EncodeWAV(w io.Writer, pcm []byte, sampleRate int) error {
	if sampleRate <= 0 {
		return fmt.Errorf("codec: invalid sample rate %d", sampleRate)
	}
	if err := writeWAVHeader(w, len(pcm), sampleRate); err != nil {
		return fmt.Errorf("codec: write header: %w", err)
	}
	if _, err := w.Write(pcm); err != nil {
		return fmt.Errorf("codec: write samples: %w", err)
	}
	return nil
}

// writeWAVHeader writes a minimal 44-byte WAV header for 16-bit mono PCM.
func writeWAVHeader(w io.Writer, dataSize, sampleRate int) error {
	totalSize := 36 + dataSize

	// RIFF header
	if _, err := w.Write([]byte("RIFF")); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, uint32(totalSize)); err != nil {
		return err
	}
	if _, err := w.Write([]byte("WAVE")); err != nil {
		return err
	}

	// fmt sub-chunk
	if _, err := w.Write([]byte("fmt ")); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, uint32(16)); err != nil { // sub-chunk size
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, uint16(1)); err != nil { // PCM format
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, uint16(1)); err != nil { // mono
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, uint32(sampleRate)); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, uint32(sampleRate*2)); err != nil { // byte rate
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, uint16(2)); err != nil { // block align
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, uint16(16)); err != nil { // bits per sample
		return err
	}

	// data sub-chunk
	if _, err := w.Write([]byte("data")); err != nil {
		return err
	}
	return binary.Write(w, binary.LittleEndian, uint32(dataSize))
}

// ProbeWAV reports the sample rate and duration of a WAV file.
func ProbeWAV(path string) (sampleRate int, seconds float64, err error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, 0, fmt.Errorf("codec: open %s: %w", path, err)
	}

	streamer, format, err := wav.Decode(f)
	if err != nil {
		f.Close()
		return 0, 0, fmt.Errorf("codec: decode %s: %w", path, err)
	}
	defer streamer.Close()

	rate := int(format.SampleRate)
	if rate <= 0 {
		return 0, 0, fmt.Errorf("codec: %s reports sample rate %d", path, rate)
	}
	return rate, float64(streamer.Len()) / float64(rate), nil
}
