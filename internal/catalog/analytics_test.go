package catalog

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAggregatePriceBuckets(t *testing.T) {
	products := []Product{
		{Price: 10, Category: "a"},
		{Price: 60, Category: "a"},
		{Price: 200, Category: "b"},
		{Price: 700, Category: "c"},
		{Price: 1500, Category: "b"},
	}

	got := Aggregate(products)

	counts := make([]int, 0, len(got.PriceRanges))
	for _, r := range got.PriceRanges {
		counts = append(counts, r.Count)
	}
	require.Equal(t, []int{1, 1, 1, 1, 1}, counts)
	require.Equal(t, "$0-$50", got.PriceRanges[0].Range)
	require.Equal(t, "$1000+", got.PriceRanges[4].Range)
}

func TestPriceBucketBoundaries(t *testing.T) {
	cases := map[float64]int{
		0:       0,
		50:      0,
		50.01:   1,
		100:     1,
		100.5:   2,
		500:     2,
		1000:    3,
		1000.01: 4,
	}
	for price, want := range cases {
		require.Equal(t, want, PriceBucket(price), "price %v", price)
	}
}

func TestAggregateStatistics(t *testing.T) {
	products := []Product{
		{Price: 10, Rating: 4, Stock: 3, Category: "beauty"},
		{Price: 30, Rating: 5, Stock: 1, Category: "fragrances"},
		{Price: 20, Rating: 3, Stock: 2, Category: "beauty"},
	}

	got := Aggregate(products)

	require.Equal(t, 3, got.TotalProducts)
	require.InDelta(t, 20.0, got.AveragePrice, 1e-9)
	require.InDelta(t, 4.0, got.AverageRating, 1e-9)
	require.InDelta(t, 100.0, got.TotalValue, 1e-9)
	require.Equal(t, []CategoryCount{
		{Name: "beauty", Value: 2},
		{Name: "fragrances", Value: 1},
	}, got.CategoryData)
}

func TestAggregateEmptySnapshot(t *testing.T) {
	got := Aggregate(nil)

	require.Zero(t, got.TotalProducts)
	require.Zero(t, got.AveragePrice)
	require.Zero(t, got.AverageRating)
	require.Zero(t, got.TotalValue)
	require.Empty(t, got.CategoryData)
	require.Len(t, got.PriceRanges, 5)
}

func TestCategoriesFirstSeenOrder(t *testing.T) {
	products := []Product{
		{Category: "smartphones"},
		{Category: "laptops"},
		{Category: "smartphones"},
		{Category: "groceries"},
	}
	require.Equal(t, []string{"smartphones", "laptops", "groceries"}, Categories(products))
	require.Equal(t, []string{}, Categories(nil))
}
