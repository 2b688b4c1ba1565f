package tts

import (
	"bytes"
	"encoding/binary"
	"math"
	"time"
)

const (
	wavSampleRate = 22050
	wavHeaderSize = 44
)

// Beep genera un aviso de dos tonos (800 Hz y luego 1000 Hz) de 1.5 s en WAV
// PCM 16 bits mono que indica que el análisis terminó.
func Beep() []byte {
	const (
		duration  = 1.5
		split     = 0.7
		amplitude = 12000.0
	)
	n := int(wavSampleRate * duration)
	samples := make([]int16, n)
	for i := range samples {
		t := float64(i) / wavSampleRate
		var freq, fade float64
		if t < split {
			freq = 800
			fade = math.Min(math.Min(t*6, 1), (split-t)*6)
		} else {
			freq = 1000
			fade = math.Min(math.Min((t-split)*6, 1), (duration-t)*6)
		}
		v := int(fade * amplitude * math.Sin(2*math.Pi*freq*t))
		samples[i] = int16(max(-32768, min(32767, v)))
	}
	return encodeWAV(samples)
}

// Silence genera un WAV silencioso de la duración indicada
func Silence(d time.Duration) []byte {
	n := int(d.Seconds() * wavSampleRate)
	return encodeWAV(make([]int16, n))
}

func encodeWAV(samples []int16) []byte {
	dataSize := uint32(len(samples) * 2)
	buf := bytes.NewBuffer(make([]byte, 0, wavHeaderSize+int(dataSize)))

	buf.WriteString("RIFF")
	binary.Write(buf, binary.LittleEndian, wavHeaderSize-8+dataSize)
	buf.WriteString("WAVE")

	buf.WriteString("fmt ")
	binary.Write(buf, binary.LittleEndian, uint32(16))              // tamaño del chunk
	binary.Write(buf, binary.LittleEndian, uint16(1))               // PCM
	binary.Write(buf, binary.LittleEndian, uint16(1))               // mono
	binary.Write(buf, binary.LittleEndian, uint32(wavSampleRate))   // sample rate
	binary.Write(buf, binary.LittleEndian, uint32(wavSampleRate*2)) // byte rate
	binary.Write(buf, binary.LittleEndian, uint16(2))               // block align
	binary.Write(buf, binary.LittleEndian, uint16(16))              // bits por muestra

	buf.WriteString("data")
	binary.Write(buf, binary.LittleEndian, dataSize)
	binary.Write(buf, binary.LittleEndian, samples)

	return buf.Bytes()
}
