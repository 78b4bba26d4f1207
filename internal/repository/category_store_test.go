// filepath: internal/repository/category_store_test.go
package repository

import (
	"os"
	"testing"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shapehub/internal/library"
	"shapehub/internal/models"
	"shapehub/internal/shared"
)

func setupTestRepo(t *testing.T) *Repository {
	t.Helper()
	paths, err := library.NewPaths(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, paths.EnsureLayout())
	return NewRepository(paths, cache.New(5*time.Minute, 10*time.Minute))
}

func setupTestRepoNoCache(t *testing.T) *Repository {
	t.Helper()
	paths, err := library.NewPaths(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, paths.EnsureLayout())
	return NewRepository(paths, nil)
}

func TestLoadCategories_SeedsDefaults(t *testing.T) {
	repo := setupTestRepo(t)

	list, err := repo.LoadCategories()
	require.NoError(t, err)
	assert.Equal(t, models.DefaultCategories(), list)

	// The seed is persisted, not just returned.
	_, err = os.Stat(repo.Paths.CategoriesFile())
	assert.NoError(t, err)

	again, err := repo.LoadCategories()
	require.NoError(t, err)
	assert.Equal(t, list, again)
}

func TestLoadCategories_FailsSoftOnCorruptFile(t *testing.T) {
	repo := setupTestRepoNoCache(t)
	require.NoError(t, os.WriteFile(repo.Paths.CategoriesFile(), []byte("{not json"), 0644))

	list, err := repo.LoadCategories()
	require.NoError(t, err)
	assert.Equal(t, models.DefaultCategories(), list)

	// The broken file must not be overwritten by a read.
	data, err := os.ReadFile(repo.Paths.CategoriesFile())
	require.NoError(t, err)
	assert.Equal(t, "{not json", string(data))
}

func TestAddCategory(t *testing.T) {
	repo := setupTestRepo(t)
	_, err := repo.LoadCategories()
	require.NoError(t, err)

	require.NoError(t, repo.AddCategory("arrows", "Arrows"))

	list, err := repo.LoadCategories()
	require.NoError(t, err)
	require.Len(t, list, 5)
	// Insertion order survives; new categories land at the end.
	assert.Equal(t, "arrows", list[4].ID)
	assert.Equal(t, "Arrows", list[4].Name)

	// An empty shape file is created alongside.
	path, err := repo.Paths.CategoryShapesFile("arrows")
	require.NoError(t, err)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, "[]", string(data))

	err = repo.AddCategory("arrows", "Other Arrows")
	assert.ErrorIs(t, err, shared.ErrCategoryExists)
	assert.Contains(t, err.Error(), "arrows")

	for _, bad := range []string{"", "Has Space", "UPPER", "under_score", "../evil", "ümlaut"} {
		err := repo.AddCategory(bad, "Bad")
		assert.ErrorIs(t, err, shared.ErrInvalidCategoryID, "id %q must be rejected", bad)
	}
}

func TestRenameCategory(t *testing.T) {
	repo := setupTestRepo(t)
	require.NoError(t, repo.AddCategory("arrows", "Arrows"))

	require.NoError(t, repo.RenameCategory("arrows", "Arrows & Lines"))

	list, err := repo.LoadCategories()
	require.NoError(t, err)
	found := false
	for _, c := range list {
		if c.ID == "arrows" {
			found = true
			assert.Equal(t, "Arrows & Lines", c.Name)
		}
	}
	assert.True(t, found, "renamed category kept its id")

	err = repo.RenameCategory("missing", "Nope")
	assert.ErrorIs(t, err, shared.ErrCategoryNotFound)
}

func TestDeleteCategory(t *testing.T) {
	repo := setupTestRepo(t)
	require.NoError(t, repo.AddCategory("arrows", "Arrows"))

	// Occupied categories cannot be deleted.
	_, err := repo.UpsertShape(&models.Shape{ID: "a1", Name: "Left Arrow", Category: "arrows"})
	require.NoError(t, err)
	err = repo.DeleteCategory("arrows")
	require.ErrorIs(t, err, shared.ErrCategoryNotEmpty)
	assert.Contains(t, err.Error(), "arrows")
	assert.Contains(t, err.Error(), "1")

	// Emptied categories can.
	require.NoError(t, repo.RemoveShape("arrows", "a1"))
	require.NoError(t, repo.DeleteCategory("arrows"))

	list, err := repo.LoadCategories()
	require.NoError(t, err)
	for _, c := range list {
		assert.NotEqual(t, "arrows", c.ID)
	}

	err = repo.DeleteCategory("arrows")
	assert.ErrorIs(t, err, shared.ErrCategoryNotFound)
}

func TestShapeCountFor_NeverFails(t *testing.T) {
	repo := setupTestRepo(t)

	assert.Equal(t, 0, repo.ShapeCountFor("basic"))
	assert.Equal(t, 0, repo.ShapeCountFor("no-such-category"))
	assert.Equal(t, 0, repo.ShapeCountFor("../evil"))

	_, err := repo.UpsertShape(&models.Shape{ID: "s1", Name: "Square", Category: "basic"})
	require.NoError(t, err)
	assert.Equal(t, 1, repo.ShapeCountFor("basic"))

	// Corrupt shape files count as empty.
	path, err := repo.Paths.CategoryShapesFile("basic")
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, []byte("not json"), 0644))
	assert.Equal(t, 0, repo.ShapeCountFor("basic"))
}

func TestCategoryDisplayName(t *testing.T) {
	repo := setupTestRepo(t)
	require.NoError(t, repo.AddCategory("arrows", "Arrows"))

	assert.Equal(t, "Arrows", repo.CategoryDisplayName("arrows"))
	assert.Equal(t, "Basic Shapes", repo.CategoryDisplayName("basic"))
	assert.Equal(t, "mystery", repo.CategoryDisplayName("mystery"))
}

func TestSaveCategories_RoundTrip(t *testing.T) {
	repo := setupTestRepo(t)
	require.NoError(t, repo.AddCategory("arrows", "Arrows"))

	list, err := repo.LoadCategories()
	require.NoError(t, err)

	require.NoError(t, repo.SaveCategories(list))

	reloaded, err := repo.LoadCategories()
	require.NoError(t, err)
	assert.Equal(t, list, reloaded)
}

func TestWriteCategories_DetectsConcurrentEdit(t *testing.T) {
	repo := setupTestRepoNoCache(t)

	repo.catMu.Lock()
	list, stamp, err := repo.loadCategoriesLocked()
	require.NoError(t, err)

	// Another process rewrites the file between our load and write.
	external := []byte(`{"categories":[{"id":"theirs","name":"Theirs"}]}` + "\n")
	require.NoError(t, os.WriteFile(repo.Paths.CategoriesFile(), external, 0644))

	list = append(list, models.Category{ID: "ours", Name: "Ours"})
	err = repo.writeCategoriesLocked(list, &stamp)
	repo.catMu.Unlock()
	require.ErrorIs(t, err, shared.ErrConflict)

	// The external edit survives untouched.
	data, err := os.ReadFile(repo.Paths.CategoriesFile())
	require.NoError(t, err)
	assert.Equal(t, external, data)
}

func TestLoadCategories_PicksUpExternalEdits(t *testing.T) {
	repo := setupTestRepo(t)
	_, err := repo.LoadCategories()
	require.NoError(t, err)

	// Rewrite the file behind the cache's back.
	external := []byte(`{"categories":[{"id":"fresh","name":"Fresh"}]}` + "\n")
	require.NoError(t, os.WriteFile(repo.Paths.CategoriesFile(), external, 0644))

	list, err := repo.LoadCategories()
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "fresh", list[0].ID)
}
