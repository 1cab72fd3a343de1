package placeholder_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/athletereach/outreach/pkg/placeholder"
)

func TestRender(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		body     string
		bindings placeholder.Bindings
		want     string
	}{
		{
			name: "all tokens bound",
			body: "Hello [coachLastName], welcome to [schoolName]. [personalizedMessage]",
			bindings: placeholder.Bindings{
				placeholder.TokenSchoolName:          "State U",
				placeholder.TokenCoachLastName:       "Smith",
				placeholder.TokenPersonalizedMessage: "I watched your team all season.",
			},
			want: "Hello Smith, welcome to State U. I watched your team all season.",
		},
		{
			name: "missing binding replaced with empty string",
			body: "Hello [coachLastName], welcome to [schoolName]. [personalizedMessage]",
			bindings: placeholder.Bindings{
				placeholder.TokenSchoolName:    "State U",
				placeholder.TokenCoachLastName: "Smith",
			},
			want: "Hello Smith, welcome to State U. ",
		},
		{
			name: "repeated token replaced everywhere",
			body: "[schoolName] is my dream. Go [schoolName]!",
			bindings: placeholder.Bindings{
				placeholder.TokenSchoolName: "State U",
			},
			want: "State U is my dream. Go State U!",
		},
		{
			name:     "nil bindings strip all tokens",
			body:     "[coachFullNames] at [schoolName]",
			bindings: nil,
			want:     " at ",
		},
		{
			name: "binding value is not treated as a pattern",
			body: "Dear [coachLastName]",
			bindings: placeholder.Bindings{
				placeholder.TokenCoachLastName: "O'Brien (HC)",
			},
			want: "Dear O'Brien (HC)",
		},
		{
			name:     "empty body",
			body:     "",
			bindings: placeholder.Bindings{placeholder.TokenSchoolName: "State U"},
			want:     "",
		},
		{
			name:     "body without tokens untouched",
			body:     "No tokens here.",
			bindings: placeholder.Bindings{placeholder.TokenSchoolName: "State U"},
			want:     "No tokens here.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, placeholder.Render(tt.body, tt.bindings))
		})
	}
}

func TestRender_NoResidualTokens(t *testing.T) {
	t.Parallel()

	body := "[schoolName] [coachLastName] [coachFullNames] [personalizedMessage]"
	out := placeholder.Render(body, placeholder.Bindings{
		placeholder.TokenSchoolName: "State U",
	})

	for _, tok := range placeholder.Recognized() {
		assert.NotContains(t, out, string(tok))
	}
}

func TestRender_Idempotent(t *testing.T) {
	t.Parallel()

	body := "Hi [coachLastName], [personalizedMessage]"
	bindings := placeholder.Bindings{
		placeholder.TokenCoachLastName:       "Johnson",
		placeholder.TokenPersonalizedMessage: "great season",
	}

	once := placeholder.Render(body, bindings)
	twice := placeholder.Render(once, bindings)

	assert.Equal(t, once, twice)
}

func TestCheckRequired(t *testing.T) {
	t.Parallel()

	t.Run("all present", func(t *testing.T) {
		t.Parallel()

		c := placeholder.CheckRequired(
			"Hello [coachLastName] at [schoolName]",
			[]placeholder.Token{placeholder.TokenCoachLastName, placeholder.TokenSchoolName},
		)

		assert.True(t, c.AllPresent)
		assert.Empty(t, c.Missing)
	})

	t.Run("reports missing tokens", func(t *testing.T) {
		t.Parallel()

		c := placeholder.CheckRequired(
			"Hello [coachLastName]",
			[]placeholder.Token{
				placeholder.TokenCoachLastName,
				placeholder.TokenSchoolName,
				placeholder.TokenPersonalizedMessage,
			},
		)

		assert.False(t, c.AllPresent)
		assert.Equal(t, []placeholder.Token{
			placeholder.TokenSchoolName,
			placeholder.TokenPersonalizedMessage,
		}, c.Missing)
	})

	t.Run("no required tokens", func(t *testing.T) {
		t.Parallel()

		c := placeholder.CheckRequired("anything", nil)

		assert.True(t, c.AllPresent)
		assert.Empty(t, c.Missing)
	})
}

func TestRecognized_ReturnsCopy(t *testing.T) {
	t.Parallel()

	toks := placeholder.Recognized()
	toks[0] = placeholder.Token("[mutated]")

	fresh := placeholder.Recognized()
	assert.False(t, strings.Contains(string(fresh[0]), "mutated"))
}
