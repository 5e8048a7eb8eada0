package model

// DishTypeStats accumulates prices for one dish type. The average is only
// computed on demand so rounding does not compound across dishes.
type DishTypeStats struct {
	Type  string  `json:"type"`
	Sum   float64 `json:"sum"`
	Count int     `json:"count"`
}

// Average returns Sum/Count, or 0 for an empty accumulator.
func (d DishTypeStats) Average() float64 {
	if d.Count == 0 {
		return 0
	}
	return d.Sum / float64(d.Count)
}

// Statistics holds the aggregates computed from one menu document.
type Statistics struct {
	// DishTypes is ordered by first occurrence of each type in the document.
	DishTypes       []DishTypeStats `json:"dish_types"`
	DishCount       int             `json:"dish_count"`
	ReviewCount     int             `json:"review_count"`
	RatingSum       float64         `json:"rating_sum"`
	IngredientCount int             `json:"ingredient_count"`
	OpenDays        int             `json:"open_days"`
	TotalOpenHours  float64         `json:"total_open_hours"`
}

// AverageRating returns the mean review rating, defined as 0 when there are
// no reviews.
func (s *Statistics) AverageRating() float64 {
	if s.ReviewCount == 0 {
		return 0
	}
	return s.RatingSum / float64(s.ReviewCount)
}

// DishType returns the accumulator for the given type, if present.
func (s *Statistics) DishType(name string) (DishTypeStats, bool) {
	for _, d := range s.DishTypes {
		if d.Type == name {
			return d, true
		}
	}
	return DishTypeStats{}, false
}
