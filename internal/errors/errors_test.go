package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWrap_KeepsCode(t *testing.T) {
	base := ValidationError("bad input")
	err := Wrap(base, "running analysis")

	assert.Equal(t, CodeValidationError, GetCode(err))
	assert.Equal(t, "running analysis: bad input", err.Error())
	assert.True(t, stderrors.Is(err, base))
	assert.Nil(t, Wrap(nil, "ignored"))
}

func TestWrap_PlainErrorIsInternal(t *testing.T) {
	err := Wrapf(fmt.Errorf("disk full"), "saving %d tables", 3)
	assert.Equal(t, CodeInternalError, GetCode(err))
	assert.Equal(t, "saving 3 tables: disk full", err.Error())
}

func TestWithCode(t *testing.T) {
	cause := fmt.Errorf("timeout")
	err := WithCode(CodeDatabaseError, cause)
	assert.Equal(t, CodeDatabaseError, GetCode(err))
	assert.Equal(t, "timeout", err.Error())
	assert.True(t, stderrors.Is(err, cause))

	err = WithCode(CodeNotFound, ValidationError("x"))
	assert.Equal(t, CodeNotFound, GetCode(err))
	assert.Equal(t, "x", err.Error())
}

func TestConstructors(t *testing.T) {
	assert.Equal(t, "analytic not found", NotFound("analytic").Error())
	assert.Equal(t, "score: no valid cases", ComputationError("score", "no valid cases").Error())
	assert.Equal(t, "Runs worker failed: boom", WorkerFailure("Runs", fmt.Errorf("boom")).Error())

	err := PersistenceError("add log", fmt.Errorf("connection refused"))
	assert.Equal(t, CodePersistenceError, err.Code)
	assert.Equal(t, "failed to add log: connection refused", err.Error())

	assert.False(t, IsAppError(fmt.Errorf("plain")))
	assert.True(t, IsAppError(fmt.Errorf("wrapped: %w", InvalidInput("x"))))
	assert.Equal(t, "UNKNOWN", GetCode(fmt.Errorf("plain")))
}
