package audioio

import (
	"encoding/binary"
	"math"
	"testing"
)

// buildWAV assembles a minimal canonical WAV file around the given PCM/float
// sample bytes, with an optional trailing extra chunk to exercise the
// word-alignment skip after an odd-sized data chunk.
func buildWAV(audioFormat, numChannels, bitsPerSample uint16, sampleRate uint32, data []byte, extraChunk bool) []byte {
	byteRate := sampleRate * uint32(numChannels) * uint32(bitsPerSample) / 8
	blockAlign := numChannels * bitsPerSample / 8

	buf := make([]byte, 0, 44+len(data)+16)
	buf = append(buf, "RIFF"...)
	buf = append(buf, 0, 0, 0, 0) // size placeholder
	buf = append(buf, "WAVE"...)

	buf = append(buf, "fmt "...)
	fmtChunk := make([]byte, 16)
	binary.LittleEndian.PutUint16(fmtChunk[0:2], audioFormat)
	binary.LittleEndian.PutUint16(fmtChunk[2:4], numChannels)
	binary.LittleEndian.PutUint32(fmtChunk[4:8], sampleRate)
	binary.LittleEndian.PutUint32(fmtChunk[8:12], byteRate)
	binary.LittleEndian.PutUint16(fmtChunk[12:14], blockAlign)
	binary.LittleEndian.PutUint16(fmtChunk[14:16], bitsPerSample)
	sz := make([]byte, 4)
	binary.LittleEndian.PutUint32(sz, 16)
	buf = append(buf, sz...)
	buf = append(buf, fmtChunk...)

	buf = append(buf, "data"...)
	sz = make([]byte, 4)
	binary.LittleEndian.PutUint32(sz, uint32(len(data)))
	buf = append(buf, sz...)
	buf = append(buf, data...)
	if len(data)%2 == 1 {
		buf = append(buf, 0) // pad byte, not counted in chunk size
	}

	if extraChunk {
		buf = append(buf, "JUNK"...)
		junk := []byte{1, 2, 3, 4}
		sz = make([]byte, 4)
		binary.LittleEndian.PutUint32(sz, uint32(len(junk)))
		buf = append(buf, sz...)
		buf = append(buf, junk...)
	}

	return buf
}

func le16(v int16) []byte {
	b := make([]byte, 2)
	binary.LittleEndian.PutUint16(b, uint16(v))
	return b
}

func le32(v int32) []byte {
	b := make([]byte, 4)
	binary.LittleEndian.PutUint32(b, uint32(v))
	return b
}

func TestDecodeWAVRejectsNonRIFF(t *testing.T) {
	_, _, err := decodeWAV([]byte("not a wav file at all, too short anyway"))
	if err == nil {
		t.Error("expected an error for non-RIFF input")
	}
}

func TestDecodeWAV16BitMono(t *testing.T) {
	var data []byte
	for _, v := range []int16{0, 16384, -16384, 32767} {
		data = append(data, le16(v)...)
	}
	wav := buildWAV(1, 1, 16, 8000, data, false)

	samples, rate, err := decodeWAV(wav)
	if err != nil {
		t.Fatalf("decodeWAV error: %v", err)
	}
	if rate != 8000 {
		t.Errorf("rate = %d, want 8000", rate)
	}
	if len(samples) != 4 {
		t.Fatalf("len(samples) = %d, want 4", len(samples))
	}
	if samples[0] != 0 {
		t.Errorf("samples[0] = %v, want 0", samples[0])
	}
	if math.Abs(samples[1]-0.5) > 1e-6 {
		t.Errorf("samples[1] = %v, want ~0.5", samples[1])
	}
	if math.Abs(samples[2]+0.5) > 1e-6 {
		t.Errorf("samples[2] = %v, want ~-0.5", samples[2])
	}
}

func TestDecodeWAV8BitUnsigned(t *testing.T) {
	data := []byte{0, 128, 255}
	wav := buildWAV(1, 1, 8, 11025, data, false)

	samples, _, err := decodeWAV(wav)
	if err != nil {
		t.Fatalf("decodeWAV error: %v", err)
	}
	if math.Abs(samples[0]+1) > 1e-6 {
		t.Errorf("samples[0] = %v, want -1", samples[0])
	}
	if samples[1] != 0 {
		t.Errorf("samples[1] = %v, want 0", samples[1])
	}
	if math.Abs(samples[2]-(127.0/128.0)) > 1e-6 {
		t.Errorf("samples[2] = %v, want ~0.992", samples[2])
	}
}

func TestDecodeWAV24BitSigned(t *testing.T) {
	var data []byte
	data = append(data, 0, 0, 0x40) // positive, ~0.5 of full scale
	data = append(data, 0, 0, 0xC0) // negative
	wav := buildWAV(1, 1, 24, 16000, data, false)

	samples, _, err := decodeWAV(wav)
	if err != nil {
		t.Fatalf("decodeWAV error: %v", err)
	}
	if samples[0] <= 0 {
		t.Errorf("samples[0] = %v, want positive", samples[0])
	}
	if samples[1] >= 0 {
		t.Errorf("samples[1] = %v, want negative", samples[1])
	}
}

func TestDecodeWAV32BitFloat(t *testing.T) {
	var data []byte
	for _, v := range []float32{0, 0.25, -0.25, 1} {
		b := make([]byte, 4)
		binary.LittleEndian.PutUint32(b, math.Float32bits(v))
		data = append(data, b...)
	}
	wav := buildWAV(3, 1, 32, 16000, data, false)

	samples, _, err := decodeWAV(wav)
	if err != nil {
		t.Fatalf("decodeWAV error: %v", err)
	}
	want := []float64{0, 0.25, -0.25, 1}
	for i, w := range want {
		if math.Abs(samples[i]-w) > 1e-6 {
			t.Errorf("samples[%d] = %v, want %v", i, samples[i], w)
		}
	}
}

func TestDecodeWAVDownmixesStereo(t *testing.T) {
	var data []byte
	// one stereo frame: left=16384 (~0.5), right=-16384 (~-0.5) -> avg 0
	data = append(data, le16(16384)...)
	data = append(data, le16(-16384)...)
	wav := buildWAV(1, 2, 16, 8000, data, false)

	samples, _, err := decodeWAV(wav)
	if err != nil {
		t.Fatalf("decodeWAV error: %v", err)
	}
	if len(samples) != 1 {
		t.Fatalf("len(samples) = %d, want 1", len(samples))
	}
	if math.Abs(samples[0]) > 1e-6 {
		t.Errorf("samples[0] = %v, want ~0 (averaged channels)", samples[0])
	}
}

func TestDecodeWAVOddSizedDataChunkIsWordAligned(t *testing.T) {
	// One mono 8-bit sample: odd-sized data chunk (1 byte), followed by a
	// trailing chunk that must still parse correctly past the pad byte.
	data := []byte{200}
	wav := buildWAV(1, 1, 8, 8000, data, true)

	samples, rate, err := decodeWAV(wav)
	if err != nil {
		t.Fatalf("decodeWAV error: %v", err)
	}
	if rate != 8000 {
		t.Errorf("rate = %d, want 8000", rate)
	}
	if len(samples) != 1 {
		t.Fatalf("len(samples) = %d, want 1", len(samples))
	}
}

func TestDecodeWAVMissingDataChunk(t *testing.T) {
	wav := buildWAV(1, 1, 16, 8000, nil, false)
	// Truncate after the fmt chunk to drop the data chunk entirely.
	wav = wav[:36]

	_, _, err := decodeWAV(wav)
	if err == nil {
		t.Error("expected an error when the data chunk is missing")
	}
}

func TestDecodeSample32BitInt(t *testing.T) {
	b := le32(1073741824) // 2^30, exactly half of int32 range
	got := decodeSample(b, 1, 32)
	if math.Abs(got-0.5) > 1e-6 {
		t.Errorf("decodeSample = %v, want ~0.5", got)
	}
}

func TestDecodeSampleUnsupportedBitsReturnsZero(t *testing.T) {
	got := decodeSample([]byte{1, 2, 3}, 1, 12)
	if got != 0 {
		t.Errorf("decodeSample = %v, want 0 for unsupported width", got)
	}
}
