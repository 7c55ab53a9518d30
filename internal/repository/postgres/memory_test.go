package postgres

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RahulBhaskar05/lugXieee-datathon/internal/domain"
)

func run(kind domain.ForecastKind, at time.Time) domain.ForecastRun {
	return domain.ForecastRun{ID: uuid.New(), Kind: kind, Trigger: "request", Payload: []byte(`{}`), CreatedAt: at}
}

func TestMemoryRepository_ListNewestFirst(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, repo.SaveForecastRun(ctx, run(domain.KindSales, base)))
	require.NoError(t, repo.SaveForecastRun(ctx, run(domain.KindCategorySales, base.Add(time.Hour))))
	require.NoError(t, repo.SaveForecastRun(ctx, run(domain.KindSales, base.Add(2*time.Hour))))

	all, err := repo.ListForecastRuns(ctx, "", 10)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, base.Add(2*time.Hour), all[0].CreatedAt)
	assert.Equal(t, base, all[2].CreatedAt)

	sales, err := repo.ListForecastRuns(ctx, domain.KindSales, 10)
	require.NoError(t, err)
	assert.Len(t, sales, 2)

	limited, err := repo.ListForecastRuns(ctx, "", 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)

	none, err := repo.ListForecastRuns(ctx, domain.KindProductDemand, 10)
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
	assert.NoError(t, repo.Health(ctx))
}

func TestMemoryRepository_EvictsOldest(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	for i := 0; i < memoryCapacity+5; i++ {
		require.NoError(t, repo.SaveForecastRun(ctx, run(domain.KindSales, base.Add(time.Duration(i)*time.Minute))))
	}

	all, err := repo.ListForecastRuns(ctx, "", memoryCapacity*2)
	require.NoError(t, err)
	assert.Len(t, all, memoryCapacity)
	assert.Equal(t, base.Add(5*time.Minute), all[len(all)-1].CreatedAt)
}

func TestMemoryRepository_ConcurrentSaves(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = repo.SaveForecastRun(ctx, run(domain.KindSales, time.Now()))
		}()
	}
	wg.Wait()

	all, err := repo.ListForecastRuns(ctx, "", 100)
	require.NoError(t, err)
	assert.Len(t, all, 50)
}
