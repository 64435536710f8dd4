package validation

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/hugh/go-gatekeeper/pkg/apperr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sampleRequest struct {
	Name     string      `json:"name" validate:"required,max=5"`
	Code     string      `json:"code" validate:"omitempty,len=6"`
	Password string      `json:"password" validate:"omitempty,min=3"`
	OwnerID  uuid.UUID   `json:"owner_id" validate:"required"`
	IDs      []uuid.UUID `json:"ids" validate:"required"`
}

type trimmedRequest struct {
	Name string `json:"name" validate:"required"`
}

func (r *trimmedRequest) Sanitize() {
	r.Name = SanitizeString(r.Name)
}

func TestStruct(t *testing.T) {
	valid := sampleRequest{Name: "abc", OwnerID: uuid.New(), IDs: []uuid.UUID{uuid.New()}}

	tests := []struct {
		name    string
		mutate  func(r *sampleRequest)
		details map[string]string
	}{
		{"valid", func(r *sampleRequest) {}, nil},
		{"missing name", func(r *sampleRequest) { r.Name = "" }, map[string]string{"name": "is required"}},
		{"long name", func(r *sampleRequest) { r.Name = "abcdef" }, map[string]string{"name": "must be at most 5 characters"}},
		{"wrong code length", func(r *sampleRequest) { r.Code = "123" }, map[string]string{"code": "must have exactly 6 characters"}},
		{"short password", func(r *sampleRequest) { r.Password = "ab" }, map[string]string{"password": "must be at least 3 characters"}},
		{"zero uuid", func(r *sampleRequest) { r.OwnerID = uuid.Nil }, map[string]string{"owner_id": "is required"}},
		{"nil ids", func(r *sampleRequest) { r.IDs = nil }, map[string]string{"ids": "is required"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := valid
			tt.mutate(&req)

			err := Struct(&req)
			if tt.details == nil {
				assert.NoError(t, err)
				return
			}

			typed := apperr.As(err)
			require.NotNil(t, typed)
			assert.Equal(t, apperr.KindBadRequest, typed.Kind())
			assert.Equal(t, "validation failed", typed.Message())
			assert.Equal(t, tt.details, typed.Details())
		})
	}
}

func TestDecodeJSON(t *testing.T) {
	t.Run("decodes and validates", func(t *testing.T) {
		body := `{"name":"abc","owner_id":"` + uuid.NewString() + `","ids":[]}`
		req := httptest.NewRequest("POST", "/", strings.NewReader(body))

		var dest sampleRequest
		require.NoError(t, DecodeJSON(req, &dest))
		assert.Equal(t, "abc", dest.Name)
		assert.Empty(t, dest.IDs)
	})

	t.Run("malformed body", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/", strings.NewReader(`{"name":`))

		var dest sampleRequest
		err := DecodeJSON(req, &dest)
		assert.True(t, apperr.Is(err, apperr.KindBadRequest))
		assert.Equal(t, "invalid request body", apperr.As(err).Message())
	})

	t.Run("malformed uuid", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/", strings.NewReader(`{"name":"abc","owner_id":"nope","ids":[]}`))

		var dest sampleRequest
		assert.True(t, apperr.Is(DecodeJSON(req, &dest), apperr.KindBadRequest))
	})

	t.Run("validation errors carry details", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/", strings.NewReader(`{"ids":[]}`))

		var dest sampleRequest
		err := DecodeJSON(req, &dest)
		details := apperr.As(err).Details()
		assert.Equal(t, "is required", details["name"])
		assert.Equal(t, "is required", details["owner_id"])
	})

	t.Run("sanitizes before validating", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/", strings.NewReader(`{"name":" \t\u0000 "}`))

		var dest trimmedRequest
		err := DecodeJSON(req, &dest)
		require.Error(t, err)
		assert.Equal(t, "is required", apperr.As(err).Details()["name"])

		req = httptest.NewRequest("POST", "/", strings.NewReader(`{"name":"  Finance "}`))
		require.NoError(t, DecodeJSON(req, &dest))
		assert.Equal(t, "Finance", dest.Name)
	})
}

func TestSanitizeString(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"normal_string", "Finance", "Finance"},
		{"null_bytes", "Fin\x00ance", "Finance"},
		{"control_chars", "Fin\x01\x02ance", "Finance"},
		{"preserve_inner_newline", "line1\nline2", "line1\nline2"},
		{"trims_whitespace", "  Finance \n", "Finance"},
		{"unicode", "Finanças", "Finanças"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, SanitizeString(tt.input))
		})
	}
}
