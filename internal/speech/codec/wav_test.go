package codec

import (
	"bytes"
	"math"
	"os"
	"path/filepath"
	"testing"
)

// sine returns one second of a 440Hz tone as 16-bit mono PCM.
func sine(sampleRate int) []byte {
	pcm := make([]byte, sampleRate*2)
	for i := 0; i < sampleRate; i++ {
		v := int16(10000 * math.Sin(2*math.Pi*440*float64(i)/float64(sampleRate)))
		pcm[2*i] = byte(v)
		pcm[2*i+1] = byte(v >> 8)
	}
	return pcm
}

func TestEncodeWAVHeader(t *testing.T) {
	pcm := sine(22050)
	var buf bytes.Buffer
	if err := EncodeWAV(&buf, pcm, 22050); err != nil {
		t.Fatalf("EncodeWAV: %v", err)
	}

	out := buf.Bytes()
	if len(out) != 44+len(pcm) {
		t.Fatalf("encoded length = %d, want %d", len(out), 44+len(pcm))
	}
	if string(out[:4]) != "RIFF" || string(out[8:12]) != "WAVE" {
		t.Errorf("bad RIFF/WAVE magic: %q %q", out[:4], out[8:12])
	}
	if !bytes.Equal(out[44:], pcm) {
		t.Error("PCM payload altered by encoding")
	}
}

func TestEncodeWAVRejectsBadRate(t *testing.T) {
	var buf bytes.Buffer
	if err := EncodeWAV(&buf, []byte{0, 0}, 0); err == nil {
		t.Error("EncodeWAV accepted sample rate 0")
	}
}

func TestProbeWAVRoundTrip(t *testing.T) {
	const rate = 24000
	pcm := sine(rate)

	path := filepath.Join(t.TempDir(), "tone.wav")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := EncodeWAV(f, pcm, rate); err != nil {
		t.Fatal(err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}

	gotRate, seconds, err := ProbeWAV(path)
	if err != nil {
		t.Fatalf("ProbeWAV: %v", err)
	}
	if gotRate != rate {
		t.Errorf("sample rate = %d, want %d", gotRate, rate)
	}
	if math.Abs(seconds-1.0) > 0.01 {
		t.Errorf("duration = %f, want ~1s", seconds)
	}
}

func TestProbeWAVRejectsGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "not-a.wav")
	if err := os.WriteFile(path, []byte("definitely not audio"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, _, err := ProbeWAV(path); err == nil {
		t.Error("ProbeWAV accepted garbage input")
	}
}
