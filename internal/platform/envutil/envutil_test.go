package envutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFallbacks(t *testing.T) {
	t.Setenv("UB_TEST_INT", " 7 ")
	t.Setenv("UB_TEST_BAD", "seven")
	t.Setenv("UB_TEST_BOOL", "Off")
	t.Setenv("UB_TEST_SECONDS", "-5")

	assert.Equal(t, 7, Int("UB_TEST_INT", 1))
	assert.Equal(t, 1, Int("UB_TEST_BAD", 1))
	assert.Equal(t, 0.5, Float("UB_TEST_BAD", 0.5))
	assert.False(t, Bool("UB_TEST_BOOL", true))
	assert.True(t, Bool("UB_TEST_BAD", true))
	assert.Equal(t, "seven", String("UB_TEST_BAD", "x"))
	assert.Equal(t, "x", String("UB_TEST_UNSET", "x"))
	assert.Equal(t, 7*time.Second, Seconds("UB_TEST_INT", time.Minute))
	assert.Equal(t, time.Minute, Seconds("UB_TEST_SECONDS", time.Minute))
}
