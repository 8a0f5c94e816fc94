package waveform

// Downsample делит снимок на bars смежных окон и возвращает среднее
// каждого окна (байты трактуются как беззнаковые, 0..255).
// Окна имеют размер len(wave)/bars, последнее окно забирает остаток, так что
// окна покрывают весь снимок без пропусков и пересечений.
// Если bars больше длины снимка, число полос уменьшается до длины снимка.
func Downsample(wave []byte, bars int) []float64 {
	n := len(wave)
	if n == 0 || bars <= 0 {
		return nil
	}
	if bars > n {
		bars = n
	}

	interval := n / bars
	out := make([]float64, bars)
	for i := 0; i < bars; i++ {
		start := i * interval
		end := start + interval
		if i == bars-1 {
			end = n
		}

		sum := 0
		for _, b := range wave[start:end] {
			sum += int(b)
		}
		out[i] = float64(sum) / float64(end-start)
	}
	return out
}

// Bars переводит снимок в высоты полос 0..1 для отрисовки: каждая полоса
// является средним отклонением сэмплов окна от тишины (128).
func Bars(wave []byte, bars int) []float64 {
	amplitude := make([]byte, len(wave))
	for i, b := range wave {
		d := int(b) - 128
		if d < 0 {
			d = -d
		}
		amplitude[i] = byte(min(d*2, 255))
	}

	heights := Downsample(amplitude, bars)
	for i := range heights {
		heights[i] /= 255
	}
	return heights
}
