package pose_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/snapstudio/server/internal/domain/pose"
)

func TestLibrary_Defaults(t *testing.T) {
	lib := pose.NewLibrary()

	all := lib.All()
	require.Len(t, all, 12)
	for i := 1; i < len(all); i++ {
		require.Less(t, all[i-1].ID, all[i].ID)
	}

	p, err := lib.Get("portrait-professional")
	require.NoError(t, err)
	require.Equal(t, "Professional Portrait", p.Name)
	require.Equal(t, pose.CategoryPortrait, p.Category)
	require.NotEmpty(t, p.Instructions)

	_, err = lib.Get("nope")
	require.ErrorIs(t, err, pose.ErrPoseNotFound)
}

func TestLibrary_ByCategory(t *testing.T) {
	lib := pose.NewLibrary()
	require.Len(t, lib.ByCategory(pose.CategoryPortrait), 3)
	require.Len(t, lib.ByCategory(pose.CategoryFullBody), 3)
	require.Len(t, lib.ByCategory(pose.CategorySitting), 3)
	require.Len(t, lib.ByCategory(pose.CategoryCreative), 3)
	require.Empty(t, lib.ByCategory(pose.CategoryCustom))
}

func TestLibrary_Search(t *testing.T) {
	lib := pose.NewLibrary()

	hits := lib.Search("PORTRAIT")
	require.NotEmpty(t, hits)
	for _, p := range hits {
		require.Contains(t, p.Name+" "+p.Description, "ortrait")
	}

	require.Empty(t, lib.Search("no such pose"))
}

func TestLibrary_LoadCustom(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "poses.yaml")
	custom := `
- id: studio-special
  name: Studio Special
  description: House signature pose
- id: portrait-professional
  name: Overridden Portrait
  category: portrait
- name: missing id, skipped
`
	require.NoError(t, os.WriteFile(path, []byte(custom), 0o644))

	lib := pose.NewLibrary()
	require.NoError(t, lib.LoadCustom(path))

	// New entries default to the custom category.
	p, err := lib.Get("studio-special")
	require.NoError(t, err)
	require.Equal(t, pose.CategoryCustom, p.Category)

	// Custom entries win on id collision.
	p, err = lib.Get("portrait-professional")
	require.NoError(t, err)
	require.Equal(t, "Overridden Portrait", p.Name)

	require.Len(t, lib.All(), 13)
}

func TestLibrary_LoadCustomMissingFile(t *testing.T) {
	lib := pose.NewLibrary()
	require.NoError(t, lib.LoadCustom(filepath.Join(t.TempDir(), "absent.yaml")))
	require.Len(t, lib.All(), 12)
}

func TestLibrary_LoadCustomBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "poses.yaml")
	require.NoError(t, os.WriteFile(path, []byte("{not yaml"), 0o644))

	lib := pose.NewLibrary()
	require.Error(t, lib.LoadCustom(path))
}

func TestLibrary_Random(t *testing.T) {
	lib := pose.NewLibrary()
	p := lib.Random()
	_, err := lib.Get(p.ID)
	require.NoError(t, err)
}
