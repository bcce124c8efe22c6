package selfmod

import (
	"fmt"
	"sync"
)

// Render processes whole channels offline and returns new slices; the input
// is not modified. With includeTail the output is extended by TailLength
// samples so the delayed signal is not cut off.
//
// When config.EnableParallel is set and there is more than one channel, each
// channel runs on its own mono processor in its own goroutine. Channels never
// interact, so the result is identical to sequential rendering.
func Render(config *Config, input [][]float64, params Params, includeTail bool) ([][]float64, error) {
	if config == nil {
		return nil, fmt.Errorf("%w: config is nil", ErrInvalidConfig)
	}
	if len(input) != config.Channels {
		return nil, fmt.Errorf("%w: expected %d channels, got %d", ErrChannelMismatch, config.Channels, len(input))
	}
	for ch := 1; ch < len(input); ch++ {
		if len(input[ch]) != len(input[0]) {
			return nil, fmt.Errorf("%w: channel %d has %d samples, channel 0 has %d",
				ErrChannelMismatch, ch, len(input[ch]), len(input[0]))
		}
	}

	if !config.EnableParallel || len(input) <= 1 {
		p, err := New(config)
		if err != nil {
			return nil, err
		}
		return renderWith(p, input, params, includeTail)
	}

	// Parallel processing: one mono processor per channel
	cfg := config.withDefaults()
	inputChannels := cfg.InputChannels
	if inputChannels == 0 {
		inputChannels = cfg.Channels
	}

	mono := cfg
	mono.Channels = monoChannels
	mono.InputChannels = 0

	output := make([][]float64, len(input))
	var wg sync.WaitGroup
	errChan := make(chan error, len(input))

	for ch := range input {
		wg.Add(1)
		go func(channel int) {
			defer wg.Done()

			p, err := New(&mono)
			if err != nil {
				errChan <- fmt.Errorf("channel %d: %w", channel, err)
				return
			}

			src := input[channel]
			if channel >= inputChannels {
				src = make([]float64, len(input[channel]))
			}

			result, err := renderWith(p, [][]float64{src}, params, includeTail)
			if err != nil {
				errChan <- fmt.Errorf("channel %d: %w", channel, err)
				return
			}
			output[channel] = result[0]
		}(ch)
	}

	wg.Wait()
	close(errChan)

	for err := range errChan {
		if err != nil {
			return nil, err
		}
	}

	return output, nil
}

// renderWith copies input into tail-padded buffers and processes them in
// blocks of the processor's maximum block size.
func renderWith(p *Processor, input [][]float64, params Params, includeTail bool) ([][]float64, error) {
	length := 0
	if len(input) > 0 {
		length = len(input[0])
	}
	total := length
	if includeTail {
		total += p.TailLength()
	}

	output := make([][]float64, len(input))
	for ch := range input {
		output[ch] = make([]float64, total)
		copy(output[ch], input[ch])
	}

	blockSize := min(p.Config().MaxBlockSize, renderBlockSize)
	block := make([][]float64, len(output))
	for start := 0; start < total; start += blockSize {
		end := min(start+blockSize, total)
		for ch := range output {
			block[ch] = output[ch][start:end]
		}
		if err := p.Process(block, params); err != nil {
			return nil, err
		}
	}

	return output, nil
}
