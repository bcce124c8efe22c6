package selfmod

import (
	"fmt"
	"testing"
)

// BenchmarkRender compares sequential and parallel offline rendering.
func BenchmarkRender(b *testing.B) {
	for _, channels := range []int{2, 8} {
		input := make([][]float64, channels)
		for ch := range input {
			input[ch] = sine(RateDAT, 440+float64(ch)*110, RateDAT)
		}

		for _, parallel := range []bool{false, true} {
			name := fmt.Sprintf("ch=%d/parallel=%v", channels, parallel)
			b.Run(name, func(b *testing.B) {
				cfg := DefaultConfig(RateDAT)
				cfg.Channels = channels
				cfg.EnableParallel = parallel

				b.ReportAllocs()
				for b.Loop() {
					if _, err := Render(&cfg, input, DefaultParams(), false); err != nil {
						b.Fatal(err)
					}
				}
			})
		}
	}
}
