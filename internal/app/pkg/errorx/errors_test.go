package errorx

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFrom(t *testing.T) {
	nf := NotFound("set '%s' not found", "orders")
	wrapped := fmt.Errorf("get set: %w", nf)

	be := From(wrapped)
	assert.Equal(t, CodeNotFound, be.Code)
	assert.Equal(t, http.StatusNotFound, be.Status)
	assert.Equal(t, "set 'orders' not found", be.Message)

	raw := errors.New("connection refused")
	be = From(raw)
	assert.Equal(t, CodeInternal, be.Code)
	assert.Equal(t, http.StatusInternalServerError, be.Status)
	assert.ErrorIs(t, be, raw)

	assert.Nil(t, From(nil))
}

func TestIsCode(t *testing.T) {
	assert.True(t, IsCode(fmt.Errorf("x: %w", AlreadyResolved("w1")), CodeAlreadyResolved))
	assert.False(t, IsCode(errors.New("plain"), CodeNotFound))
	assert.False(t, IsCode(DuplicateName("set", "a"), CodeNotFound))
}

func TestInvalidNameDetails(t *testing.T) {
	e := InvalidName("bad name", "must match [A-Za-z0-9_-]+")
	assert.Equal(t, CodeInvalidName, e.Code)
	assert.Equal(t, []ErrorDetail{{Path: "name", Info: "must match [A-Za-z0-9_-]+"}}, e.Details)
}

func TestJobRunning(t *testing.T) {
	be := JobRunning("duplicate_detection")
	assert.Equal(t, http.StatusConflict, be.Status)
	assert.True(t, IsCode(fmt.Errorf("trigger: %w", be), CodeJobRunning))
}
