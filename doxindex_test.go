package doxindex_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/fwojciec/doxindex"
	"github.com/stretchr/testify/assert"
)

func TestErrorf(t *testing.T) {
	t.Parallel()

	err := doxindex.Errorf(doxindex.ENOTFOUND, "project %q not found", "test")

	assert.Equal(t, doxindex.ENOTFOUND, doxindex.ErrorCode(err))
	assert.Equal(t, "project \"test\" not found", doxindex.ErrorMessage(err))
}

func TestErrorCode_NilError(t *testing.T) {
	t.Parallel()

	assert.Empty(t, doxindex.ErrorCode(nil))
}

func TestErrorMessage_NilError(t *testing.T) {
	t.Parallel()

	assert.Empty(t, doxindex.ErrorMessage(nil))
}

func TestErrorCode_Wrapped(t *testing.T) {
	t.Parallel()

	err := fmt.Errorf("load all_66.js: %w", doxindex.Errorf(doxindex.EMALFORMED, "bad entry"))

	assert.Equal(t, doxindex.EMALFORMED, doxindex.ErrorCode(err))
	assert.Equal(t, "bad entry", doxindex.ErrorMessage(err))
}

func TestErrorCode_NonApplicationError(t *testing.T) {
	t.Parallel()

	err := errors.New("disk on fire")

	assert.Equal(t, doxindex.EINTERNAL, doxindex.ErrorCode(err))
	assert.Equal(t, "Internal error", doxindex.ErrorMessage(err))
}
