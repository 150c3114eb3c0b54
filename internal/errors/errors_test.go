package errors

import (
	stderrors "errors"
	"net/http"
	"testing"

	"goeda/domain/core"

	"github.com/stretchr/testify/assert"
)

func TestWrap_ClassifiesDomainErrors(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		code   string
		status int
	}{
		{"unknown column", core.NewUnknownColumnError("x"), CodeInvalidInput, http.StatusBadRequest},
		{"too few columns", core.ErrInsufficientColumns, CodeInsufficientData, http.StatusUnprocessableEntity},
		{"degenerate", core.NewDegenerateError("constant"), CodeAnalysisFailed, http.StatusUnprocessableEntity},
		{"plain", stderrors.New("disk on fire"), CodeInternalError, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Wrap(tt.err, "analysis")
			assert.Equal(t, tt.code, GetCode(err))
			assert.Equal(t, tt.status, HTTPStatus(err))
			assert.ErrorIs(t, err, tt.err)
		})
	}
}

func TestWrap_KeepsExistingCode(t *testing.T) {
	err := Wrapf(UnsupportedFormat(".parquet"), "load %s", "data.parquet")
	assert.Equal(t, CodeUnsupportedFormat, GetCode(err))
	assert.Contains(t, err.Error(), "load data.parquet")
	assert.True(t, IsAppError(err))
	assert.Nil(t, Wrap(nil, "noop"))
}

func TestWithCode(t *testing.T) {
	err := WithCode(CodeNotFound, stderrors.New("gone"))
	assert.Equal(t, CodeNotFound, GetCode(err))
	assert.Equal(t, http.StatusNotFound, HTTPStatus(err))
	assert.Equal(t, "UNKNOWN", GetCode(stderrors.New("raw")))
}
