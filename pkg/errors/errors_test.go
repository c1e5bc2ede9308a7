package errors

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrapPreservesCause(t *testing.T) {
	cause := fmt.Errorf("boom")
	err := Wrap(CodeDependency, cause, "call stripe")

	assert.Equal(t, CodeDependency, err.Code())
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "DEPENDENCY_ERROR: call stripe", err.Error())
}

func TestAsUnwrapsThroughChains(t *testing.T) {
	inner := New(CodeNotFound, "cart item missing")
	outer := fmt.Errorf("handling request: %w", inner)

	typed := As(outer)
	require.NotNil(t, typed)
	assert.Equal(t, CodeNotFound, typed.Code())
}

func TestMetadataForUnknownCodeFallsBackToInternal(t *testing.T) {
	meta := MetadataFor(Code("NO_SUCH_CODE"))
	assert.Equal(t, http.StatusInternalServerError, meta.HTTPStatus)
}

func TestConflictMapsToBadRequest(t *testing.T) {
	meta := MetadataFor(CodeConflict)
	assert.Equal(t, http.StatusBadRequest, meta.HTTPStatus)
	assert.True(t, meta.DetailsAllowed)
}

func TestSignatureErrorsNeverLeakDetails(t *testing.T) {
	meta := MetadataFor(CodeSignature)
	assert.Equal(t, http.StatusBadRequest, meta.HTTPStatus)
	assert.False(t, meta.DetailsAllowed)
}

func TestWithDetails(t *testing.T) {
	err := New(CodeValidation, "box customization invalid").
		WithDetails(map[string]any{"expected": 12, "actual": 9})

	details, ok := err.Details().(map[string]any)
	require.True(t, ok)
	assert.Equal(t, 12, details["expected"])
}
