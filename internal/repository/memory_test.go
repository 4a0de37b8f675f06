package repository

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"linkpulse/internal/entities"
)

func newLink(id, code string, createdAt time.Time) *entities.Link {
	return &entities.Link{
		ID:          id,
		ShortCode:   code,
		OriginalURL: "https://example.com",
		IsActive:    true,
		CreatedAt:   createdAt,
	}
}

func newClick(id, linkID, ip string) *entities.Click {
	return &entities.Click{
		ID:        id,
		LinkID:    linkID,
		Timestamp: time.Now().UTC(),
		IP:        ip,
		UserAgent: "test-agent",
		Referer:   "https://news.ycombinator.com/item?id=1",
	}
}

func TestCreateLink_DuplicateCode(t *testing.T) {
	store := NewMemoryStore()

	require.NoError(t, store.CreateLink(newLink("l1", "promo", time.Now())))

	err := store.CreateLink(newLink("l2", "promo", time.Now()))
	assert.ErrorIs(t, err, ErrCodeTaken)
	assert.Nil(t, store.FindByID("l2"))
}

func TestFindByShortCode(t *testing.T) {
	store := NewMemoryStore()
	require.NoError(t, store.CreateLink(newLink("l1", "abc123", time.Now())))

	link := store.FindByShortCode("abc123")
	require.NotNil(t, link)
	assert.Equal(t, "l1", link.ID)

	assert.Nil(t, store.FindByShortCode("nope"))
}

func TestListLinks_NewestFirst(t *testing.T) {
	store := NewMemoryStore()
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, store.CreateLink(newLink("l1", "aaa111", base)))
	require.NoError(t, store.CreateLink(newLink("l2", "bbb222", base.Add(time.Hour))))
	require.NoError(t, store.CreateLink(newLink("l3", "ccc333", base.Add(2*time.Hour))))

	links := store.ListLinks()
	require.Len(t, links, 3)
	assert.Equal(t, "l3", links[0].ID)
	assert.Equal(t, "l2", links[1].ID)
	assert.Equal(t, "l1", links[2].ID)
}

func TestListLinks_StableOrderOnEqualCreatedAt(t *testing.T) {
	store := NewMemoryStore()
	created := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, store.CreateLink(newLink("b", "aaa111", created)))
	require.NoError(t, store.CreateLink(newLink("a", "bbb222", created)))

	first := store.ListLinks()
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, store.ListLinks())
	}
}

func TestToggleActive(t *testing.T) {
	store := NewMemoryStore()
	require.NoError(t, store.CreateLink(newLink("l1", "abc123", time.Now())))

	assert.True(t, store.ToggleActive("l1"))
	assert.False(t, store.FindByID("l1").IsActive)

	assert.True(t, store.ToggleActive("l1"))
	assert.True(t, store.FindByID("l1").IsActive)

	assert.False(t, store.ToggleActive("missing"))
}

func TestAppendClick_RecordsAndCounts(t *testing.T) {
	store := NewMemoryStore()
	require.NoError(t, store.CreateLink(newLink("l1", "abc123", time.Now())))

	click := newClick("c1", "l1", "203.0.113.7")
	require.NoError(t, store.AppendClick(click))

	history := store.ClicksForLink("l1")
	require.Len(t, history, 1)
	got := history[0]
	assert.Equal(t, "c1", got.ID)
	assert.Equal(t, "l1", got.LinkID)
	assert.Equal(t, "203.0.113.7", got.IP)
	assert.Equal(t, "test-agent", got.UserAgent)
	assert.Equal(t, click.Referer, got.Referer)
	assert.Equal(t, click.Timestamp, got.Timestamp)
	assert.Nil(t, got.Geo, "freshly appended click must have no location")

	assert.Equal(t, 1, store.FindByID("l1").ClickCount)
}

func TestAppendClick_UnknownLink(t *testing.T) {
	store := NewMemoryStore()

	err := store.AppendClick(newClick("c1", "ghost", "203.0.113.7"))
	assert.ErrorIs(t, err, ErrLinkNotFound)
	assert.Empty(t, store.ClicksForLink("ghost"))
}

func TestPatchClickGeo_VisibleToReaders(t *testing.T) {
	store := NewMemoryStore()
	require.NoError(t, store.CreateLink(newLink("l1", "abc123", time.Now())))

	click := newClick("c1", "l1", "203.0.113.7")
	require.NoError(t, store.AppendClick(click))

	store.PatchClickGeo("c1", &entities.GeoInfo{
		Country:     "United States",
		CountryCode: "US",
		Region:      "Texas",
		City:        "Austin",
		Latitude:    30.2672,
		Longitude:   -97.7431,
		ISP:         "Example ISP",
		Org:         "Example Org",
	})

	history := store.ClicksForLink("l1")
	require.Len(t, history, 1)
	got := history[0]
	require.NotNil(t, got.Geo)
	assert.Equal(t, "United States", got.Geo.Country)
	assert.Equal(t, "Austin", got.Geo.City)

	// Immutable fields untouched by the patch
	assert.Equal(t, "203.0.113.7", got.IP)
	assert.Equal(t, click.Timestamp, got.Timestamp)
	assert.Equal(t, 1, store.FindByID("l1").ClickCount)
}

func TestPatchClickGeo_FirstWriteWins(t *testing.T) {
	store := NewMemoryStore()
	require.NoError(t, store.CreateLink(newLink("l1", "abc123", time.Now())))
	require.NoError(t, store.AppendClick(newClick("c1", "l1", "203.0.113.7")))

	store.PatchClickGeo("c1", &entities.GeoInfo{Country: "Germany"})
	store.PatchClickGeo("c1", &entities.GeoInfo{Country: "France"})

	history := store.ClicksForLink("l1")
	require.NotNil(t, history[0].Geo)
	assert.Equal(t, "Germany", history[0].Geo.Country)
}

func TestPatchClickGeo_AfterDeleteIsNoOp(t *testing.T) {
	store := NewMemoryStore()
	require.NoError(t, store.CreateLink(newLink("l1", "abc123", time.Now())))
	require.NoError(t, store.AppendClick(newClick("c1", "l1", "203.0.113.7")))

	require.True(t, store.DeleteLink("l1"))

	// A late enrichment result for the deleted click must not
	// recreate anything
	store.PatchClickGeo("c1", &entities.GeoInfo{Country: "Germany"})

	assert.Nil(t, store.FindByID("l1"))
	assert.Nil(t, store.FindByShortCode("abc123"))
	assert.Empty(t, store.ClicksForLink("l1"))
}

func TestPatchClickGeo_UnknownClick(t *testing.T) {
	store := NewMemoryStore()
	assert.NotPanics(t, func() {
		store.PatchClickGeo("ghost", &entities.GeoInfo{Country: "Germany"})
	})
}

func TestDeleteLink_CascadesClicks(t *testing.T) {
	store := NewMemoryStore()
	require.NoError(t, store.CreateLink(newLink("l1", "abc123", time.Now())))
	require.NoError(t, store.CreateLink(newLink("l2", "def456", time.Now())))

	for i := 0; i < 3; i++ {
		require.NoError(t, store.AppendClick(newClick(fmt.Sprintf("c%d", i), "l1", "203.0.113.7")))
	}
	require.NoError(t, store.AppendClick(newClick("other", "l2", "203.0.113.8")))

	require.True(t, store.DeleteLink("l1"))

	assert.Empty(t, store.ClicksForLink("l1"))
	assert.Nil(t, store.FindByShortCode("abc123"))

	// The other link's ledger is untouched
	assert.Len(t, store.ClicksForLink("l2"), 1)

	assert.False(t, store.DeleteLink("l1"), "second delete finds nothing")
}

func TestUniqueVisitorCount(t *testing.T) {
	store := NewMemoryStore()
	require.NoError(t, store.CreateLink(newLink("l1", "abc123", time.Now())))

	ips := []string{"203.0.113.1", "203.0.113.2", "203.0.113.1", "203.0.113.3", "203.0.113.2"}
	for i, ip := range ips {
		require.NoError(t, store.AppendClick(newClick(fmt.Sprintf("c%d", i), "l1", ip)))
	}

	assert.Equal(t, 3, store.UniqueVisitorCount("l1"))
	assert.Equal(t, 0, store.UniqueVisitorCount("missing"))
}

func TestConcurrentAppendAndPatch(t *testing.T) {
	store := NewMemoryStore()
	require.NoError(t, store.CreateLink(newLink("l1", "abc123", time.Now())))

	const n = 100
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := fmt.Sprintf("c%d", i)
			if err := store.AppendClick(newClick(id, "l1", "203.0.113.7")); err != nil {
				return
			}
			store.PatchClickGeo(id, &entities.GeoInfo{Country: "United States"})
		}(i)
	}
	wg.Wait()

	history := store.ClicksForLink("l1")
	assert.Len(t, history, n)
	assert.Equal(t, n, store.FindByID("l1").ClickCount,
		"click count must agree with ledger length")
	for _, click := range history {
		require.NotNil(t, click.Geo)
		assert.Equal(t, "United States", click.Geo.Country)
	}
}

func TestReadsReturnCopies(t *testing.T) {
	store := NewMemoryStore()
	require.NoError(t, store.CreateLink(newLink("l1", "abc123", time.Now())))

	link := store.FindByID("l1")
	link.ShortCode = "mutated"
	link.ClickCount = 99

	fresh := store.FindByID("l1")
	assert.Equal(t, "abc123", fresh.ShortCode)
	assert.Equal(t, 0, fresh.ClickCount)
}
