package validation

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Name       string   `validate:"required,valid_name"`
	Experience string   `validate:"required,oneof=Fresher Experienced"`
	Skills     []string `validate:"dive,required"`
	Email      string   `validate:"omitempty,email"`
}

func TestFormatValidationErrors(t *testing.T) {
	v := New()

	t.Run("required and oneof", func(t *testing.T) {
		err := v.Struct(sample{Experience: "Senior"})
		require.Error(t, err)

		msgs := FormatValidationErrors(err)
		assert.Contains(t, msgs, "Name: is required")
		assert.Contains(t, msgs, "Experience: must be one of: Fresher, Experienced")
	})

	t.Run("dive on slice entries", func(t *testing.T) {
		err := v.Struct(sample{Name: "Ana", Experience: "Fresher", Skills: []string{"Go", ""}})
		require.Error(t, err)
		assert.Equal(t, []string{"Skills entry: is required"}, FormatValidationErrors(err))
	})

	t.Run("custom name rule", func(t *testing.T) {
		err := v.Struct(sample{Name: "Ana <script>", Experience: "Fresher"})
		require.Error(t, err)
		assert.Contains(t, Message(err), "Name: only letters")
	})

	t.Run("email", func(t *testing.T) {
		err := v.Struct(sample{Name: "Ana", Experience: "Fresher", Email: "nope"})
		require.Error(t, err)
		assert.Equal(t, "Email: invalid email format", Message(err))
	})

	t.Run("non validation error", func(t *testing.T) {
		assert.Equal(t, []string{"boom"}, FormatValidationErrors(errors.New("boom")))
	})

	t.Run("valid struct", func(t *testing.T) {
		assert.NoError(t, v.Struct(sample{Name: "Jean-Luc O'Neil", Experience: "Experienced", Skills: []string{"Go"}}))
	})
}
