package content_test

import (
	"testing"

	"github.com/serroba/launch-site-go/internal/content"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadCatalog(t *testing.T) *content.Catalog {
	t.Helper()

	c, err := content.Load()
	require.NoError(t, err)

	return c
}

func sectionIDs(sections []content.Section) []string {
	ids := make([]string, 0, len(sections))
	for _, s := range sections {
		ids = append(ids, s.ID)
	}

	return ids
}

func TestLoad(t *testing.T) {
	c := loadCatalog(t)

	assert.Equal(t, []string{
		"Getting Started", "Setup & Configuration", "Using Your Device", "Data & Support",
	}, c.Categories)
	assert.Len(t, c.Sections, 15)
	assert.Len(t, c.Quiz, 5)

	require.NotNil(t, c.Sections[3].Video)
	assert.Equal(t, "update-firmware", c.Sections[3].ID)
	assert.Equal(t, "sr6BEY5HmHc", c.Sections[3].Video.ID)
	assert.NotContains(t, c.Sections[3].Content, "<iframe")
}

func TestParse_RejectsUnknownCategory(t *testing.T) {
	_, err := content.Parse([]byte(`
categories: [A]
sections:
  - id: x
    title: X
    category: B
    content: text
`))

	assert.ErrorContains(t, err, `unknown category "B"`)
}

func TestCatalog_Search(t *testing.T) {
	c := loadCatalog(t)

	t.Run("no filters returns everything", func(t *testing.T) {
		assert.Len(t, c.Search("", ""), 15)
	})

	t.Run("category filter", func(t *testing.T) {
		assert.Equal(t,
			[]string{"what-you-bought", "charge-device", "create-account", "update-firmware"},
			sectionIDs(c.Search("", "Getting Started")),
		)
	})

	t.Run("matches titles case-insensitively", func(t *testing.T) {
		ids := sectionIDs(c.Search("QUICK FAQ", ""))

		assert.Equal(t, []string{"faq"}, ids)
	})

	t.Run("matches content", func(t *testing.T) {
		ids := sectionIDs(c.Search("quebec", ""))

		assert.Equal(t, []string{"international"}, ids)
	})

	t.Run("combines category and query", func(t *testing.T) {
		ids := sectionIDs(c.Search("firmware", "Data & Support"))

		assert.Contains(t, ids, "troubleshooting")
		assert.NotContains(t, ids, "update-firmware")
	})

	t.Run("unknown category is empty", func(t *testing.T) {
		assert.Empty(t, c.Search("", "Nope"))
	})
}

func validAnswers() map[string]any {
	return map[string]any{
		"usage_location":     "home_garage",
		"main_goal":          "dial_clubs",
		"excited_game_mode":  "3rd_party",
		"practice_frequency": "weekly",
		"simulator_software": []any{"gspro", "e6_connect"},
	}
}

func TestCatalog_ValidateAnswers(t *testing.T) {
	c := loadCatalog(t)

	t.Run("accepts a complete submission", func(t *testing.T) {
		got, err := c.ValidateAnswers(validAnswers())

		require.NoError(t, err)
		assert.Equal(t, "home_garage", got["usage_location"])
		assert.Equal(t, []string{"gspro", "e6_connect"}, got["simulator_software"])
	})

	tests := []struct {
		name   string
		mutate func(map[string]any)
		want   string
	}{
		{"unknown question", func(a map[string]any) { a["favourite_club"] = "driver" }, "unknown question"},
		{"missing answer", func(a map[string]any) { delete(a, "main_goal") }, "not answered"},
		{"unknown single option", func(a map[string]any) { a["practice_frequency"] = "hourly" }, "unknown option"},
		{"list for single", func(a map[string]any) { a["main_goal"] = []any{"have_fun"} }, "expected a single option"},
		{"empty multi", func(a map[string]any) { a["simulator_software"] = []any{} }, "at least one option"},
		{"string for multi", func(a map[string]any) { a["simulator_software"] = "gspro" }, "at least one option"},
		{"unknown multi option", func(a map[string]any) { a["simulator_software"] = []any{"trackman"} }, "unknown option"},
		{"duplicate multi option", func(a map[string]any) { a["simulator_software"] = []any{"gspro", "gspro"} }, "duplicate option"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			answers := validAnswers()
			tt.mutate(answers)

			_, err := c.ValidateAnswers(answers)

			require.ErrorIs(t, err, content.ErrInvalidAnswers)
			assert.ErrorContains(t, err, tt.want)
		})
	}
}
