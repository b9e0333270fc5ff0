package service

import (
	"context"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lawclinic/internal/publication/models"
	"lawclinic/internal/publication/store"
	dErrors "lawclinic/pkg/domain-errors"
	"lawclinic/pkg/pagination"
)

func newTestService(t *testing.T) (*Service, *store.InMemoryStore) {
	t.Helper()
	mem := store.NewInMemoryStore()
	svc := New(mem, mem, mem, slog.New(slog.DiscardHandler))
	return svc, mem
}

func page(t *testing.T, n, size int) pagination.Params {
	t.Helper()
	p, err := pagination.New(n, size)
	require.NoError(t, err)
	return p
}

func author() Viewer { return Viewer{ID: uuid.New()} }

func (v Viewer) create(t *testing.T, svc *Service, title, status string) *models.Publication {
	t.Helper()
	pub, err := svc.Create(context.Background(), v, &models.CreateRequest{
		Title: title, Content: "Content for " + title, Status: status,
	})
	require.NoError(t, err)
	return pub
}

func TestCreate(t *testing.T) {
	svc, _ := newTestService(t)
	writer := author()

	t.Run("derives slug, stamp, and reading time", func(t *testing.T) {
		pub, err := svc.Create(context.Background(), writer, &models.CreateRequest{
			Title: "Eviction Defense 101", Content: "Know your rights before the hearing.",
			Status: models.StatusPublished,
		})
		require.NoError(t, err)
		assert.Equal(t, "eviction-defense-101", pub.Slug)
		assert.NotNil(t, pub.PublishedAt)
		assert.Equal(t, 1, pub.MinsRead)
		assert.True(t, pub.AllowComments)
		assert.Equal(t, writer.ID, pub.AuthorID)
	})

	t.Run("duplicate slug is a validation error", func(t *testing.T) {
		_, err := svc.Create(context.Background(), writer, &models.CreateRequest{
			Title: "Eviction Defense 101", Content: "different content",
		})
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
	})

	t.Run("drafts are not stamped", func(t *testing.T) {
		pub := writer.create(t, svc, "Draft Notes", models.StatusDraft)
		assert.Nil(t, pub.PublishedAt)
	})

	t.Run("unknown category is rejected", func(t *testing.T) {
		_, err := svc.Create(context.Background(), writer, &models.CreateRequest{
			Title: "Categorized", Content: "text", CategorySlugs: []string{"missing"},
		})
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
	})
}

func TestVisibility(t *testing.T) {
	svc, _ := newTestService(t)
	writer := author()
	other := author()
	staff := Viewer{ID: uuid.New(), IsStaff: true}

	writer.create(t, svc, "Public Piece", models.StatusPublished)
	writer.create(t, svc, "Private Draft", models.StatusDraft)

	listTitles := func(t *testing.T, v Viewer) []string {
		pubs, total, err := svc.List(context.Background(), v, ListParams{}, page(t, 1, 10))
		require.NoError(t, err)
		require.Len(t, pubs, total)
		titles := make([]string, 0, len(pubs))
		for _, p := range pubs {
			titles = append(titles, p.Title)
		}
		return titles
	}

	t.Run("anonymous sees published only", func(t *testing.T) {
		assert.ElementsMatch(t, []string{"Public Piece"}, listTitles(t, Viewer{}))
	})

	t.Run("author sees own drafts", func(t *testing.T) {
		assert.ElementsMatch(t, []string{"Public Piece", "Private Draft"}, listTitles(t, writer))
	})

	t.Run("other members see published only", func(t *testing.T) {
		assert.ElementsMatch(t, []string{"Public Piece"}, listTitles(t, other))
	})

	t.Run("staff sees everything", func(t *testing.T) {
		assert.ElementsMatch(t, []string{"Public Piece", "Private Draft"}, listTitles(t, staff))
	})

	t.Run("hidden drafts read as not found", func(t *testing.T) {
		_, err := svc.Get(context.Background(), other, "private-draft")
		assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))

		_, err = svc.Get(context.Background(), writer, "private-draft")
		assert.NoError(t, err)
	})
}

func TestViewCounting(t *testing.T) {
	svc, _ := newTestService(t)
	writer := author()
	reader := author()
	writer.create(t, svc, "Read Me", models.StatusPublished)

	t.Run("reader views are counted", func(t *testing.T) {
		pub, err := svc.Get(context.Background(), reader, "read-me")
		require.NoError(t, err)
		assert.Equal(t, 1, pub.ViewsCount)

		pub, err = svc.Get(context.Background(), Viewer{}, "read-me")
		require.NoError(t, err)
		assert.Equal(t, 2, pub.ViewsCount)
	})

	t.Run("the author's own views are not", func(t *testing.T) {
		pub, err := svc.Get(context.Background(), writer, "read-me")
		require.NoError(t, err)
		assert.Equal(t, 2, pub.ViewsCount)
	})
}

func TestUpdateAndDelete(t *testing.T) {
	svc, _ := newTestService(t)
	writer := author()
	intruder := author()
	staff := Viewer{ID: uuid.New(), IsStaff: true}

	writer.create(t, svc, "Editable", models.StatusPublished)

	t.Run("only the author or staff may edit", func(t *testing.T) {
		newTitle := "Edited"
		_, err := svc.Update(context.Background(), intruder, "editable", &models.UpdateRequest{Title: &newTitle})
		assert.True(t, dErrors.HasCode(err, dErrors.CodeForbidden))

		pub, err := svc.Update(context.Background(), writer, "editable", &models.UpdateRequest{Title: &newTitle})
		require.NoError(t, err)
		assert.Equal(t, "Edited", pub.Title)
	})

	t.Run("publishing a draft stamps it once", func(t *testing.T) {
		writer.create(t, svc, "Late Publish", models.StatusDraft)

		published := models.StatusPublished
		pub, err := svc.Update(context.Background(), writer, "late-publish", &models.UpdateRequest{Status: &published})
		require.NoError(t, err)
		require.NotNil(t, pub.PublishedAt)
		first := *pub.PublishedAt

		pub, err = svc.Update(context.Background(), writer, "late-publish", &models.UpdateRequest{Status: &published})
		require.NoError(t, err)
		assert.Equal(t, first, *pub.PublishedAt)
	})

	t.Run("staff may delete another author's work", func(t *testing.T) {
		err := svc.Delete(context.Background(), intruder, "editable")
		assert.True(t, dErrors.HasCode(err, dErrors.CodeForbidden))

		require.NoError(t, svc.Delete(context.Background(), staff, "editable"))
		_, err = svc.Get(context.Background(), staff, "editable")
		assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

func TestComments(t *testing.T) {
	svc, _ := newTestService(t)
	writer := author()
	reader := author()

	writer.create(t, svc, "Discussed", models.StatusPublished)

	t.Run("reader comments await approval", func(t *testing.T) {
		c, err := svc.AddComment(context.Background(), reader, "discussed", &models.CommentRequest{Content: "Great piece"})
		require.NoError(t, err)
		assert.False(t, c.IsApproved)
	})

	t.Run("author comments are auto approved", func(t *testing.T) {
		c, err := svc.AddComment(context.Background(), writer, "discussed", &models.CommentRequest{Content: "Thanks!"})
		require.NoError(t, err)
		assert.True(t, c.IsApproved)
	})

	t.Run("readers see approved comments only", func(t *testing.T) {
		visible, err := svc.ListComments(context.Background(), reader, "discussed")
		require.NoError(t, err)
		require.Len(t, visible, 1)
		assert.Equal(t, "Thanks!", visible[0].Content)

		all, err := svc.ListComments(context.Background(), writer, "discussed")
		require.NoError(t, err)
		assert.Len(t, all, 2)
	})

	t.Run("parent must belong to the same publication", func(t *testing.T) {
		writer.create(t, svc, "Another Post", models.StatusPublished)
		parent, err := svc.AddComment(context.Background(), writer, "another-post", &models.CommentRequest{Content: "root"})
		require.NoError(t, err)

		_, err = svc.AddComment(context.Background(), reader, "discussed", &models.CommentRequest{
			Content: "reply", ParentID: &parent.ID,
		})
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
	})

	t.Run("disabled comments are a 403", func(t *testing.T) {
		off := false
		pub, err := svc.Create(context.Background(), writer, &models.CreateRequest{
			Title: "No Comments", Content: "text", Status: models.StatusPublished, AllowComments: &off,
		})
		require.NoError(t, err)

		_, err = svc.AddComment(context.Background(), reader, pub.Slug, &models.CommentRequest{Content: "hi"})
		assert.True(t, dErrors.HasCode(err, dErrors.CodeForbidden))
	})
}

func TestFeaturedAndStats(t *testing.T) {
	svc, _ := newTestService(t)
	writer := author()

	for i := 0; i < 7; i++ {
		pub, err := svc.Create(context.Background(), writer, &models.CreateRequest{
			Title: fmt.Sprintf("Featured %d", i), Content: "text",
			Status: models.StatusPublished, IsFeatured: true,
		})
		require.NoError(t, err)
		// Space out the publish stamps for a stable ordering.
		stamp := time.Now().Add(time.Duration(i) * time.Minute)
		pub.PublishedAt = &stamp
		require.NoError(t, updateDirect(svc, pub))
	}
	writer.create(t, svc, "Plain Draft", models.StatusDraft)

	t.Run("featured returns the newest five published", func(t *testing.T) {
		featured, err := svc.Featured(context.Background())
		require.NoError(t, err)
		require.Len(t, featured, 5)
		assert.Equal(t, "Featured 6", featured[0].Title)
	})

	t.Run("stats counts by status", func(t *testing.T) {
		stats, err := svc.Stats(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 8, stats.TotalCount)
		assert.Equal(t, 7, stats.PublishedCount)
		assert.Equal(t, 1, stats.DraftCount)
		assert.Equal(t, 7, stats.FeaturedCount)
		assert.Len(t, stats.MostViewed, 5)
	})
}

func updateDirect(svc *Service, pub *models.Publication) error {
	return svc.publications.Update(context.Background(), pub)
}

func TestCategories(t *testing.T) {
	svc, _ := newTestService(t)
	writer := author()

	t.Run("create derives slug from name", func(t *testing.T) {
		c, err := svc.CreateCategory(context.Background(), &models.CategoryRequest{Name: "Housing Law"})
		require.NoError(t, err)
		assert.Equal(t, "housing-law", c.Slug)
	})

	t.Run("duplicate name is a validation error", func(t *testing.T) {
		_, err := svc.CreateCategory(context.Background(), &models.CategoryRequest{Name: "Housing Law"})
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
	})

	t.Run("publications resolve category slugs", func(t *testing.T) {
		pub, err := svc.Create(context.Background(), writer, &models.CreateRequest{
			Title: "Tenant Guide", Content: "text", Status: models.StatusPublished,
			CategorySlugs: []string{"housing-law"},
		})
		require.NoError(t, err)
		require.Len(t, pub.Categories, 1)
		assert.Equal(t, "Housing Law", pub.Categories[0].Name)
	})

	t.Run("list filters by category", func(t *testing.T) {
		writer.create(t, svc, "Uncategorized", models.StatusPublished)

		pubs, total, err := svc.List(context.Background(), Viewer{}, ListParams{CategorySlug: "housing-law"}, page(t, 1, 10))
		require.NoError(t, err)
		assert.Equal(t, 1, total)
		require.Len(t, pubs, 1)
		assert.Equal(t, "Tenant Guide", pubs[0].Title)
	})
}
