package catalog

// CategoryCount is one bar of the category histogram.
type CategoryCount struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
}

// PriceRange is one bucket of the price histogram.
type PriceRange struct {
	Range string `json:"range"`
	Count int    `json:"count"`
}

// Analytics are the summary statistics shown above the table.
type Analytics struct {
	TotalProducts int             `json:"totalProducts"`
	AveragePrice  float64         `json:"averagePrice"`
	AverageRating float64         `json:"averageRating"`
	TotalValue    float64         `json:"totalValue"`
	CategoryData  []CategoryCount `json:"categoryData"`
	PriceRanges   []PriceRange    `json:"priceRanges"`
}

var priceBuckets = []struct {
	label string
	upper float64 // inclusive; the last bucket is open ended
}{
	{"$0-$50", 50},
	{"$51-$100", 100},
	{"$101-$500", 500},
	{"$501-$1000", 1000},
	{"$1000+", 0},
}

// Aggregate computes the dashboard statistics. An empty snapshot yields zero averages.
func Aggregate(products []Product) Analytics {
	out := Analytics{
		TotalProducts: len(products),
		CategoryData:  []CategoryCount{},
		PriceRanges:   make([]PriceRange, len(priceBuckets)),
	}
	for i, bucket := range priceBuckets {
		out.PriceRanges[i].Range = bucket.label
	}

	var priceSum, ratingSum float64
	index := make(map[string]int)
	for _, p := range products {
		priceSum += p.Price
		ratingSum += p.Rating
		out.TotalValue += p.Price * float64(p.Stock)

		if i, ok := index[p.Category]; ok {
			out.CategoryData[i].Value++
		} else {
			index[p.Category] = len(out.CategoryData)
			out.CategoryData = append(out.CategoryData, CategoryCount{Name: p.Category, Value: 1})
		}

		out.PriceRanges[PriceBucket(p.Price)].Count++
	}

	if n := len(products); n > 0 {
		out.AveragePrice = priceSum / float64(n)
		out.AverageRating = ratingSum / float64(n)
	}
	return out
}

// PriceBucket returns the histogram bucket index for price.
func PriceBucket(price float64) int {
	last := len(priceBuckets) - 1
	for i := 0; i < last; i++ {
		if price <= priceBuckets[i].upper {
			return i
		}
	}
	return last
}

// Categories lists the distinct categories in first-seen order.
func Categories(products []Product) []string {
	seen := make(map[string]struct{})
	out := []string{}
	for _, p := range products {
		if _, ok := seen[p.Category]; ok {
			continue
		}
		seen[p.Category] = struct{}{}
		out = append(out, p.Category)
	}
	return out
}
