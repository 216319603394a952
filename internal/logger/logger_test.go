package logger

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInitializeWithWriter(t *testing.T) {
	var buf bytes.Buffer
	InitializeWithWriter(&buf, "info", "json")
	defer Initialize("info", "text")

	Debug("hidden")
	BookingTransition("b-1", "pending", "accepted", "actor", "owner-1")
	SideEffectFailed("release", errors.New("wallet locked"), "booking_id", "b-1")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, `"msg":"Booking transitioned"`)
	assert.Contains(t, out, `"to":"accepted"`)
	assert.Contains(t, out, `"level":"WARN"`)
	assert.Contains(t, out, "wallet locked")
}

func TestEscrowMovementText(t *testing.T) {
	var buf bytes.Buffer
	InitializeWithWriter(&buf, "debug", "text")
	defer Initialize("info", "text")

	EscrowMovement("fund", "b-2", "u-1", 4000, 1000)
	assert.Contains(t, buf.String(), "operation=fund")
	assert.Contains(t, buf.String(), "amount=4000")
}
