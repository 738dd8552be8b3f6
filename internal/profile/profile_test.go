package profile

import (
	"testing"

	"github.com/jonathan/job-agent/internal/forms"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestView_ValueFor(t *testing.T) {
	view := &View{
		FirstName: "Ada",
		LastName:  "Lovelace",
		Email:     "ada@example.com",
		Skills:    "Go, SQL",
	}

	assert.Equal(t, "Ada", view.ValueFor(forms.AttrFirstName))
	assert.Equal(t, "Lovelace", view.ValueFor(forms.AttrLastName))
	assert.Equal(t, "ada@example.com", view.ValueFor(forms.AttrEmail))
	assert.Equal(t, "Go, SQL", view.ValueFor(forms.AttrSkills))
	assert.Equal(t, "", view.ValueFor(forms.AttrPortfolio))
	assert.Equal(t, "", view.ValueFor(forms.AttrNone))
}

func TestView_NormalizeDerivesFullName(t *testing.T) {
	view := &View{FirstName: "Ada", LastName: "Lovelace"}
	view.Normalize()
	assert.Equal(t, "Ada Lovelace", view.FullName)
}

func TestView_NormalizeDerivesParts(t *testing.T) {
	view := &View{FullName: "Ada King Lovelace"}
	view.Normalize()
	assert.Equal(t, "Ada", view.FirstName)
	assert.Equal(t, "King Lovelace", view.LastName)
}

func TestView_Validate(t *testing.T) {
	valid := &View{Email: "ada@example.com", LinkedIn: "https://linkedin.com/in/ada"}
	require.NoError(t, valid.Validate())

	invalid := &View{Email: "not-an-email"}
	assert.Error(t, invalid.Validate())
}

func TestJoinSkills(t *testing.T) {
	assert.Equal(t, "Go, SQL", JoinSkills([]string{"Go", " SQL ", ""}))
	assert.Equal(t, "", JoinSkills(nil))
}
