package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppError_Error(t *testing.T) {
	e := New(ErrCodeGatewayResponse, "confirm rejected")
	assert.Equal(t, "[GW_002] confirm rejected", e.Error())

	withDetail := e.WithDetail("id=42")
	assert.Equal(t, "[GW_002] confirm rejected: id=42", withDetail.Error())
	// WithDetail must not mutate the receiver.
	assert.Empty(t, e.Detail)
}

func TestWrap_NilPassthrough(t *testing.T) {
	var err error
	wrapped := Wrap(err, ErrCodeStateStore, "persist failed")
	assert.Nil(t, wrapped)
}

func TestWrap_PreservesCodeOnInternal(t *testing.T) {
	inner := New(ErrCodeStaleReference, "operation gone")
	outer := Wrap(fmt.Errorf("transactor: %w", inner), ErrCodeInternal, "confirm failed")
	assert.Equal(t, ErrCodeStaleReference, outer.Code)
	assert.True(t, errors.Is(outer, inner))
}

func TestWrap_ExplicitCodeWins(t *testing.T) {
	inner := New(ErrCodeNotFound, "missing")
	outer := Wrap(inner, ErrCodeGatewayResponse, "queue fetch failed")
	assert.Equal(t, ErrCodeGatewayResponse, outer.Code)
}

func TestIsCode_TraversesChain(t *testing.T) {
	inner := New(ErrCodeStaleReference, "operation gone")
	outer := Wrap(fmt.Errorf("layer: %w", inner), ErrCodeGatewayResponse, "confirm failed")

	assert.True(t, IsCode(outer, ErrCodeStaleReference))
	assert.True(t, IsCode(outer, ErrCodeGatewayResponse))
	assert.False(t, IsCode(outer, ErrCodeTimeout))
	assert.False(t, IsCode(nil, ErrCodeTimeout))
}

func TestIsNotFound(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"plain error", errors.New("boom"), false},
		{"generic not found", NotFound("gone"), true},
		{"unknown operation", New(ErrCodeUnknownOperation, "op 9"), true},
		{"invoice not tracked", New(ErrCodeInvoiceNotTracked, "row 7"), true},
		{"wrapped", Wrap(NotFound("gone"), ErrCodeGatewayResponse, "fetch"), true},
		{"conflict", Conflict("busy"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsNotFound(tt.err))
		})
	}
}

func TestGetCode(t *testing.T) {
	assert.Equal(t, CodeOK, GetCode(nil))
	assert.Equal(t, ErrCodeInternal, GetCode(errors.New("opaque")))
	assert.Equal(t, ErrCodeEmptyUpload, GetCode(New(ErrCodeEmptyUpload, "no files")))
}

func TestHTTPStatus(t *testing.T) {
	require.Equal(t, http.StatusConflict, ErrCodeStaleReference.HTTPStatus())
	require.Equal(t, http.StatusBadRequest, ErrCodeEmptyUpload.HTTPStatus())
	require.Equal(t, http.StatusBadGateway, ErrCodeGatewayUnavailable.HTTPStatus())
	// Unmapped codes fail safe to 500.
	require.Equal(t, http.StatusInternalServerError, ErrorCode("BOGUS").HTTPStatus())
}
