package control

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBufferSizeFromEnvDefaultsWhenUnset(t *testing.T) {
	os.Unsetenv("PHONON_BUFFER_SIZE")
	assert.Equal(t, defaultBufferSize, bufferSizeFromEnv())
}

func TestBufferSizeFromEnvClampsLow(t *testing.T) {
	os.Setenv("PHONON_BUFFER_SIZE", "1")
	defer os.Unsetenv("PHONON_BUFFER_SIZE")
	assert.Equal(t, minBufferSize, bufferSizeFromEnv())
}

func TestBufferSizeFromEnvClampsHigh(t *testing.T) {
	os.Setenv("PHONON_BUFFER_SIZE", "100000")
	defer os.Unsetenv("PHONON_BUFFER_SIZE")
	assert.Equal(t, maxBufferSize, bufferSizeFromEnv())
}

func TestBufferSizeFromEnvPassesThroughValidValue(t *testing.T) {
	os.Setenv("PHONON_BUFFER_SIZE", "512")
	defer os.Unsetenv("PHONON_BUFFER_SIZE")
	assert.Equal(t, 512, bufferSizeFromEnv())
}

func TestBufferSizeFromEnvFallsBackOnGarbage(t *testing.T) {
	os.Setenv("PHONON_BUFFER_SIZE", "not-a-number")
	defer os.Unsetenv("PHONON_BUFFER_SIZE")
	assert.Equal(t, defaultBufferSize, bufferSizeFromEnv())
}
