package money

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRound2(t *testing.T) {
	assert.Equal(t, 25.0, Round2(250*0.10))
	assert.Equal(t, 10.56, Round2(10.555))
	assert.Equal(t, 10.55, Round2(10.554))
	assert.Equal(t, 0.0, Round2(0))
	assert.Equal(t, -10.56, Round2(-10.555))
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "KSh 1,234.56", Format(1234.56))
	assert.Equal(t, "KSh 0.00", Format(0))
	assert.Equal(t, "KSh 275.00", Format(275))
	assert.Equal(t, "KSh 999.90", Format(999.9))
	assert.Equal(t, "KSh 1,000,000.05", Format(1000000.05))
	assert.Equal(t, "-KSh 12.50", Format(-12.5))
}
