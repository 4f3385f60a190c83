// Package review summarizes and pages dorm reviews.
package review

import (
	"math"

	"github.com/iliyamo/dorm-finder/internal/model"
)

// Summary is the aggregate shown above a review list.
type Summary struct {
	Average float64     `json:"average"`
	PerStar map[int]int `json:"per_star"`
	Total   int         `json:"total"`
}

// Summarize computes the mean rating and the 1-5 star histogram. Each rating
// is rounded to the nearest star before bucketing (4.6 counts as 5); the
// average is reported to one decimal. No reviews gives an average of 0.
func Summarize(ratings []float64) Summary {
	s := Summary{PerStar: map[int]int{1: 0, 2: 0, 3: 0, 4: 0, 5: 0}}
	var sum float64
	for _, r := range ratings {
		if math.IsNaN(r) || math.IsInf(r, 0) {
			continue
		}
		sum += r
		s.Total++
		star := int(math.Round(r))
		if star < 1 {
			star = 1
		}
		if star > 5 {
			star = 5
		}
		s.PerStar[star]++
	}
	if s.Total > 0 {
		s.Average = math.Round(sum/float64(s.Total)*10) / 10
	}
	return s
}

// SummarizeReviews is Summarize over the ratings of reviews.
func SummarizeReviews(reviews []model.Review) Summary {
	ratings := make([]float64, len(reviews))
	for i, r := range reviews {
		ratings[i] = r.Rating
	}
	return Summarize(ratings)
}

// Page is one window of a paginated list.
type Page[T any] struct {
	Items    []T `json:"items"`
	Page     int `json:"page"`
	PageSize int `json:"page_size"`
	Pages    int `json:"pages"`
	Total    int `json:"total"`
}

// Paginate returns the window [(page-1)*pageSize, page*pageSize). The page is
// clamped to [1, pages] instead of failing; a non-positive pageSize means 10.
func Paginate[T any](items []T, page, pageSize int) Page[T] {
	if pageSize <= 0 {
		pageSize = 10
	}
	total := len(items)
	pages := (total + pageSize - 1) / pageSize
	if page > pages {
		page = pages
	}
	if page < 1 {
		page = 1
	}
	start := (page - 1) * pageSize
	end := start + pageSize
	if start > total {
		start = total
	}
	if end > total {
		end = total
	}
	return Page[T]{
		Items:    items[start:end],
		Page:     page,
		PageSize: pageSize,
		Pages:    pages,
		Total:    total,
	}
}
