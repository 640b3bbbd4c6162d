package quality

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStringKnownAndUnknownCodes(t *testing.T) {
	assert.Equal(t, "Good", Good.String())
	assert.Equal(t, "Bad_NotConnected", BadNotConnected.String())
	assert.Equal(t, "Unknown", Code(42).String())
}
