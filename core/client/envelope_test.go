package client

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/mathbombs/core/models"
)

func TestEnvelope_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantError  string
		wantErrors []string
	}{
		{name: "success", body: `{"data": {"id": 1}}`},
		{name: "null error", body: `{"data": [], "error": null}`},
		{name: "string error", body: `{"error": "not found"}`, wantError: "not found", wantErrors: []string{"not found"}},
		{
			name:       "list error",
			body:       `{"error": ["Name can't be blank", "Email is invalid"]}`,
			wantError:  "Name can't be blank",
			wantErrors: []string{"Name can't be blank", "Email is invalid"},
		},
		{
			name:       "field errors",
			body:       `{"error": {"name": "Name can't be blank", "email": "Email is invalid"}}`,
			wantError:  "Email is invalid",
			wantErrors: []string{"Email is invalid", "Name can't be blank"},
		},
		{
			name:       "error and errors",
			body:       `{"error": "Invalid", "errors": ["Invalid", "Too short"]}`,
			wantError:  "Invalid",
			wantErrors: []string{"Invalid", "Too short"},
		},
		{name: "errors only", body: `{"errors": ["Too short"]}`, wantError: "Too short", wantErrors: []string{"Too short"}},
		{name: "message only", body: `{"message": "Password reset email sent"}`},
		{name: "message along data", body: `{"data": {"message": "ok"}, "message": "ok"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var env Envelope
			require.NoError(t, json.Unmarshal([]byte(tt.body), &env))
			assert.Equal(t, tt.wantError, env.Error)
			assert.Equal(t, tt.wantErrors, env.Errors)
			assert.Equal(t, tt.wantError != "", env.Failed())
		})
	}
}

func TestEnvelope_Err(t *testing.T) {
	assert.Nil(t, Envelope{}.Err())

	err := Envelope{Error: "not found", Errors: []string{"not found"}, Status: 404}.Err()
	require.Error(t, err)
	assert.True(t, IsKind(err, KindApplication))
	assert.Equal(t, "not found", Message(err))

	cErr := err.(*Error)
	assert.Equal(t, 404, cErr.Status)
	assert.False(t, cErr.Retryable)
}

func Test_decode(t *testing.T) {
	t.Run("data and meta", func(t *testing.T) {
		env := Envelope{
			Data: json.RawMessage(`[{"id": 1, "name": "Ann", "password": "fox", "last_sheet": 2}]`),
			Meta: json.RawMessage(`{"teacher": {"id": 9, "name": "Ms Frizzle"}, "total": 1}`),
		}
		res, err := decode[[]models.Student](env)
		require.NoError(t, err)
		assert.Equal(t, []models.Student{{ID: 1, Name: "Ann", Password: "fox", LastSheet: 2}}, res.Data)
		assert.Equal(t, &models.Teacher{ID: 9, Name: "Ms Frizzle"}, res.Meta.Teacher)
		assert.Equal(t, 1, res.Meta.Total)
		assert.Equal(t, env, res.Envelope, "the raw envelope is kept")
	})

	t.Run("no data", func(t *testing.T) {
		res, err := decode[models.Notice](Envelope{Data: json.RawMessage(`null`)})
		require.NoError(t, err)
		assert.Equal(t, models.Notice{}, res.Data)
	})

	t.Run("failed envelope", func(t *testing.T) {
		_, err := decode[models.Student](Envelope{Error: "not found", Errors: []string{"not found"}})
		assert.True(t, IsKind(err, KindApplication))
	})

	t.Run("unexpected shape", func(t *testing.T) {
		_, err := decode[models.Student](Envelope{Data: json.RawMessage(`[1, 2]`)})
		assert.True(t, IsKind(err, KindTransport))
		assert.Equal(t, "invalid response from server", Message(err))
	})
}
