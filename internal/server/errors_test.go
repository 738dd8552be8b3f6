package server

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jonathan/job-agent/internal/messaging"
	"github.com/jonathan/job-agent/internal/store"
)

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{&ErrTabNotFound{TargetID: "t1"}, http.StatusNotFound},
		{&ErrValidation{Field: "body", Message: "bad"}, http.StatusBadRequest},
		{messaging.ErrNoReceiver, http.StatusBadGateway},
		{fmt.Errorf("send to t1: %w", messaging.ErrNoReceiver), http.StatusBadGateway},
		{messaging.ErrUnknownCommand, http.StatusBadRequest},
		{fmt.Errorf("%w: job abc", store.ErrNotFound), http.StatusNotFound},
		{errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, HTTPStatus(tt.err), tt.err.Error())
	}
}
