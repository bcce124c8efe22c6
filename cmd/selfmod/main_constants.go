package main

// Default command-line flag values
const (
	defaultSampleRate = 48000.0 // DAT/DVD sample rate
	defaultChannels   = 2       // Stereo
	defaultDepth      = 0.5
	defaultCutoffHz   = 1000.0
	defaultQ          = 0.707
)

// Test signal parameters
const (
	testSignalFrequency = 440.0 // A4 test tone
	testSignalSeconds   = 1.0
	testSignalAmplitude = 0.8
)

// Demo sample rates for testing
const (
	sampleRateCD    = 44100.0 // CD quality
	sampleRateDAT   = 48000.0 // DAT/DVD
	sampleRateHiRes = 96000.0 // Hi-res audio
)

// Demo channel configurations
const (
	monoChannels   = 1
	stereoChannels = 2
	surround5_1    = 6
	surround7_1    = 8
)

// Display constants
const (
	bytesPerKilobyte = 1024.0
	msPerSecond      = 1000.0
)
