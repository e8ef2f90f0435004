package notification

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSender struct {
	calls []Params
	err   error
}

func (f *fakeSender) Send(_ context.Context, params Params) error {
	f.calls = append(f.calls, params)
	return f.err
}

func TestTriggers_OnCompensationFailed_SendsCriticalAlert(t *testing.T) {
	sender := &fakeSender{}
	triggers := NewTriggers(sender)

	triggers.OnCompensationFailed(context.Background(), "bootstrap:acme", "org-1",
		errors.New("dns verification timed out"), errors.New("dns record delete failed"))

	require.Len(t, sender.calls, 1)
	got := sender.calls[0]
	assert.Equal(t, "bootstrap:acme", got.WorkflowID)
	assert.Equal(t, "org-1", got.OrganizationID)
	assert.Equal(t, SeverityCritical, got.Severity)
	assert.Contains(t, got.Message, "dns verification timed out")
	assert.Contains(t, got.Message, "dns record delete failed")
}

func TestTriggers_OnCompensationFailed_SwallowsSenderError(t *testing.T) {
	sender := &fakeSender{err: errors.New("db unavailable")}
	triggers := NewTriggers(sender)

	assert.NotPanics(t, func() {
		triggers.OnCompensationFailed(context.Background(), "bootstrap:acme", "org-1",
			errors.New("activity failed"), errors.New("compensation failed"))
	})
	require.Len(t, sender.calls, 1)
}

func TestValidateParams(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		params  Params
		wantErr bool
	}{
		{"missing workflow id", Params{Message: "boom"}, true},
		{"missing message", Params{WorkflowID: "bootstrap:acme"}, true},
		{"valid", Params{WorkflowID: "bootstrap:acme", Message: "boom"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateParams(tt.params)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
