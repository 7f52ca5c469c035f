package dedup

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/leadscout/techscan/internal/enum"
	"github.com/leadscout/techscan/internal/models"
	"github.com/leadscout/techscan/internal/utils"
)

type fakeDomainSeenRepository struct {
	mu   sync.Mutex
	rows map[string]*models.DomainSeen
}

func newFakeDomainSeenRepository() *fakeDomainSeenRepository {
	return &fakeDomainSeenRepository{rows: make(map[string]*models.DomainSeen)}
}

func (f *fakeDomainSeenRepository) Get(_ context.Context, domain string) (*models.DomainSeen, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.rows[domain], nil
}

func (f *fakeDomainSeenRepository) ScannedSince(_ context.Context, domain string, since time.Time) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	row, ok := f.rows[domain]
	return ok && row.LastScanned.After(since), nil
}

func (f *fakeDomainSeenRepository) Record(_ context.Context, domain string, category enum.TechCategory) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if row, ok := f.rows[domain]; ok {
		row.TimesScanned++
		row.LastScanned = utils.Now()
		row.Category = category
		return nil
	}
	now := utils.Now()
	f.rows[domain] = &models.DomainSeen{
		Domain:       domain,
		Category:     category,
		FirstSeen:    now,
		LastScanned:  now,
		TimesScanned: 1,
	}
	return nil
}

func (f *fakeDomainSeenRepository) Count(_ context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return int64(len(f.rows)), nil
}

func TestShouldProcessUnseenDomain(t *testing.T) {
	svc := NewDedupService(newFakeDomainSeenRepository())

	ok, err := svc.ShouldProcess(context.Background(), "acme.com", 24*time.Hour)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestShouldProcessRecentlyScannedDomain(t *testing.T) {
	repo := newFakeDomainSeenRepository()
	svc := NewDedupService(repo)
	ctx := context.Background()

	require.NoError(t, svc.Record(ctx, "acme.com", enum.TechCategoryCRM))

	ok, err := svc.ShouldProcess(ctx, "acme.com", 24*time.Hour)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestShouldProcessAfterWindowElapsed(t *testing.T) {
	repo := newFakeDomainSeenRepository()
	svc := NewDedupService(repo)
	ctx := context.Background()

	require.NoError(t, svc.Record(ctx, "acme.com", enum.TechCategoryCRM))
	repo.rows["acme.com"].LastScanned = utils.Now().Add(-48 * time.Hour)

	ok, err := svc.ShouldProcess(ctx, "acme.com", 24*time.Hour)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestShouldProcessZeroWindowAlwaysPasses(t *testing.T) {
	repo := newFakeDomainSeenRepository()
	svc := NewDedupService(repo)
	ctx := context.Background()

	require.NoError(t, svc.Record(ctx, "acme.com", enum.TechCategoryCRM))

	ok, err := svc.ShouldProcess(ctx, "acme.com", 0)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestRecordIncrementsTimesScanned(t *testing.T) {
	repo := newFakeDomainSeenRepository()
	svc := NewDedupService(repo)
	ctx := context.Background()

	require.NoError(t, svc.Record(ctx, "acme.com", enum.TechCategoryCRM))
	require.NoError(t, svc.Record(ctx, "acme.com", enum.TechCategoryEcommerce))

	row, err := repo.Get(ctx, "acme.com")
	require.NoError(t, err)
	require.Equal(t, 2, row.TimesScanned)
	require.Equal(t, enum.TechCategoryEcommerce, row.Category)
}

func TestLockSerializesSameDomain(t *testing.T) {
	svc := NewDedupService(newFakeDomainSeenRepository())

	var inside int
	var maxInside int
	var mu sync.Mutex

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := svc.Lock("acme.com")
			defer unlock()

			mu.Lock()
			inside++
			if inside > maxInside {
				maxInside = inside
			}
			mu.Unlock()

			time.Sleep(time.Millisecond)

			mu.Lock()
			inside--
			mu.Unlock()
		}()
	}
	wg.Wait()

	require.Equal(t, 1, maxInside)
}
