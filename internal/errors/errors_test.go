package errors_test

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vytor/wordflash/internal/errors"
)

func TestConstructors(t *testing.T) {
	nf := errors.NewNotFoundError("word", 42)
	assert.Equal(t, http.StatusNotFound, nf.Status)
	assert.Equal(t, "NOT_FOUND: word not found: 42", nf.Error())

	v := errors.NewValidationError("words", "must not be empty")
	assert.Equal(t, http.StatusBadRequest, v.Status)
	assert.Contains(t, v.Message, "words")
}

func TestInternalErrorWrapsCause(t *testing.T) {
	cause := stderrors.New("disk I/O error")
	err := errors.NewInternalError(cause)

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "internal server error", err.Message)
}

func TestPredicatesFollowWrapping(t *testing.T) {
	wrapped := fmt.Errorf("submit: %w", errors.NewNotFoundError("progress", 3))

	assert.True(t, errors.IsNotFound(wrapped))
	assert.False(t, errors.IsValidation(wrapped))
	assert.False(t, errors.IsNotFound(stderrors.New("plain")))

	appErr, ok := errors.As(wrapped)
	require.True(t, ok)
	assert.Equal(t, errors.ErrCodeNotFound, appErr.Code)
}
