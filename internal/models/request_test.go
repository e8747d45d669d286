package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRequestStatus_AllowedFrom(t *testing.T) {
	tests := []struct {
		to   RequestStatus
		want []RequestStatus
	}{
		{to: StatusPending, want: nil},
		{to: StatusAccepted, want: []RequestStatus{StatusPending}},
		{to: StatusRejected, want: []RequestStatus{StatusPending}},
		{to: StatusCompleted, want: []RequestStatus{StatusAccepted}},
		{to: RequestStatus("archived"), want: nil},
	}

	for _, tt := range tests {
		t.Run(string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.to.AllowedFrom())
		})
	}
}

func TestRequestStatus_Valid(t *testing.T) {
	for _, s := range []RequestStatus{StatusPending, StatusAccepted, StatusRejected, StatusCompleted} {
		assert.True(t, s.Valid(), s)
	}
	assert.False(t, RequestStatus("cancelled").Valid())
	assert.False(t, RequestStatus("").Valid())
}
