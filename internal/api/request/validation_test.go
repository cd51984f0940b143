package request

import (
	"bytes"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequireID_Valid(t *testing.T) {
	result, err := RequireID("550e8400-e29b-41d4-a716-446655440000")
	require.NoError(t, err)
	assert.Equal(t, "550e8400-e29b-41d4-a716-446655440000", result)
}

func TestRequireID_ShortID(t *testing.T) {
	result, err := RequireID("abc1234xyz")
	require.NoError(t, err)
	assert.Equal(t, "abc1234xyz", result)
}

func TestRequireID_Empty(t *testing.T) {
	_, err := RequireID("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing required ID")
}

// testDecodePayload is a helper struct used only for testing Decode.
type testDecodePayload struct {
	Name  string `json:"name" validate:"required"`
	Email string `json:"email" validate:"required,email"`
}

func TestDecode_ValidJSON(t *testing.T) {
	body := `{"name":"alice","email":"alice@example.com"}`
	r, err := http.NewRequest(http.MethodPost, "/", bytes.NewBufferString(body))
	require.NoError(t, err)

	var payload testDecodePayload
	err = Decode(r, &payload)
	require.NoError(t, err)
	assert.Equal(t, "alice", payload.Name)
	assert.Equal(t, "alice@example.com", payload.Email)
}

func TestDecode_InvalidJSON(t *testing.T) {
	body := `{not valid json}`
	r, err := http.NewRequest(http.MethodPost, "/", bytes.NewBufferString(body))
	require.NoError(t, err)

	var payload testDecodePayload
	err = Decode(r, &payload)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid JSON")
}

func TestDecode_ValidationFails(t *testing.T) {
	// Missing the required "name" field.
	body := `{"email":"alice@example.com"}`
	r, err := http.NewRequest(http.MethodPost, "/", bytes.NewBufferString(body))
	require.NoError(t, err)

	var payload testDecodePayload
	err = Decode(r, &payload)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "validation error")
}

func TestRoleNameValidation_Valid(t *testing.T) {
	validNames := []string{"technician", "site_supervisor", "safety-officer", "a", "lvl2_approver"}
	for _, name := range validNames {
		t.Run(name, func(t *testing.T) {
			assert.True(t, roleNameRegex.MatchString(name), "expected role name %q to be valid", name)
		})
	}
}

func TestRoleNameValidation_Invalid(t *testing.T) {
	invalidNames := []string{
		"Site Supervisor", // spaces and uppercase
		"tech@123",        // special character
		"",                // empty
		strings.Repeat("a", 64), // too long (max 63 chars)
		"1st-approver",  // must start with lowercase letter
		"-leading-dash", // must start with lowercase letter
	}
	for _, name := range invalidNames {
		t.Run(name, func(t *testing.T) {
			assert.False(t, roleNameRegex.MatchString(name), "expected role name %q to be invalid", name)
		})
	}
}

type testModulePayload struct {
	Module string `json:"module" validate:"required,module"`
}

func TestModuleValidation(t *testing.T) {
	tests := []struct {
		module string
		ok     bool
	}{
		{"work_orders", true},
		{"safety_incidents", true},
		{"invoices", false},
		{"WORK_ORDERS", false},
	}
	for _, tt := range tests {
		t.Run(tt.module, func(t *testing.T) {
			err := validate.Struct(testModulePayload{Module: tt.module})
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}
