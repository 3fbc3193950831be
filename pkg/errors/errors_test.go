package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefinitionError(t *testing.T) {
	assert.Equal(t, "Journey not found", JourneyNotFound.Error())
	assert.Equal(t, "JOURNEY_NOT_FOUND", JourneyNotFound.Code)
}

func TestGet(t *testing.T) {
	assert.Equal(t, InvalidPhone, Get("INVALID_PHONE"))

	unknown := Get("NO_SUCH_CODE")
	assert.Equal(t, "NO_SUCH_CODE", unknown.Code)
	assert.Equal(t, "Unexpected error", unknown.Message)
}

func TestIsSkipMessage(t *testing.T) {
	skip := &SkipMessageError{Reason: "user not found"}
	assert.True(t, IsSkipMessage(skip))
	assert.Equal(t, "user not found", skip.Error())

	// 包装后仍应识别
	wrapped := fmt.Errorf("handle alert: %w", skip)
	assert.True(t, IsSkipMessage(wrapped))

	assert.False(t, IsSkipMessage(fmt.Errorf("plain error")))
	assert.False(t, IsSkipMessage(nil))
}
