package faction_test

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/musterhq/muster/modules/faction/domain/aggregates/faction"
)

func TestSlugify(t *testing.T) {
	for input, want := range map[string]string{
		"Brass":               "brass",
		"Brass Section":       "brass-section",
		"  Brass  Section  ":  "brass-section",
		"2nd Violins":         "2nd-violins",
		"Trumpets & Cornets!": "trumpets-cornets",
		"---":                 "",
	} {
		t.Run(input, func(t *testing.T) {
			assert.Equal(t, want, faction.Slugify(input))
		})
	}
}

func TestNew(t *testing.T) {
	orgID := uuid.New()

	t.Run("slug derives from the name", func(t *testing.T) {
		f := faction.New("Brass Section", orgID)
		assert.Equal(t, "brass-section", f.Slug())
		assert.True(t, f.Active())
		assert.True(t, f.IsRoot())
	})

	t.Run("explicit slug wins", func(t *testing.T) {
		f := faction.New("Brass Section", orgID, faction.WithSlug("horns"))
		assert.Equal(t, "horns", f.Slug())
	})

	t.Run("parent option makes a child", func(t *testing.T) {
		parentID := uuid.New()
		f := faction.New("Trumpets", orgID, faction.WithParentID(parentID))
		require.NotNil(t, f.ParentID())
		assert.Equal(t, parentID, *f.ParentID())
		assert.False(t, f.IsRoot())
	})
}

func TestCreateDTO_Ok(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		dto := &faction.CreateDTO{Name: "  Brass  ", OrganizationID: uuid.New()}
		errs, ok := dto.Ok()
		require.True(t, ok, errs)
		assert.Equal(t, "Brass", dto.Name)
	})

	t.Run("missing name", func(t *testing.T) {
		dto := &faction.CreateDTO{Name: "   "}
		errs, ok := dto.Ok()
		require.False(t, ok)
		assert.Contains(t, errs, "Name")
	})

	t.Run("overlong name", func(t *testing.T) {
		dto := &faction.CreateDTO{Name: strings.Repeat("x", 256)}
		errs, ok := dto.Ok()
		require.False(t, ok)
		assert.Contains(t, errs, "Name")
	})
}

func TestUpdateDTO_Apply(t *testing.T) {
	f := faction.New("Brass", uuid.New(), faction.WithDescription("old"))
	dto := &faction.UpdateDTO{Name: "Horns", Description: "new"}

	updated := dto.Apply(f)
	assert.Equal(t, "Horns", updated.Name())
	assert.Equal(t, "new", updated.Description())
	// slug stays stable across renames
	assert.Equal(t, "brass", updated.Slug())
}
