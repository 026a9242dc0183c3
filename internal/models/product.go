package models

import (
	"strings"
	"unicode"
)

// HasReviewFrom reports whether userID already reviewed the product
func (p *Product) HasReviewFrom(userID string) bool {
	for _, r := range p.Reviews {
		if r.UserID == userID {
			return true
		}
	}
	return false
}

// CalculateAverageRating recomputes Rating and NumReviews from Reviews
func (p *Product) CalculateAverageRating() {
	p.NumReviews = len(p.Reviews)
	if p.NumReviews == 0 {
		p.Rating = 0
		return
	}
	sum := 0
	for _, r := range p.Reviews {
		sum += r.Rating
	}
	p.Rating = float64(sum) / float64(p.NumReviews)
}

// PrimaryImage returns the first image URL, if any
func (p *Product) PrimaryImage() string {
	if len(p.Images) == 0 {
		return ""
	}
	return p.Images[0].URL
}

// Clone returns a deep copy of the product
func (p *Product) Clone() *Product {
	out := *p
	out.Images = append([]Image(nil), p.Images...)
	out.Reviews = append([]Review(nil), p.Reviews...)
	out.Tags = append([]string(nil), p.Tags...)
	if p.CompareAtPrice != nil {
		v := *p.CompareAtPrice
		out.CompareAtPrice = &v
	}
	return &out
}

// Slugify turns a display name into a URL-safe slug
func Slugify(name string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		switch {
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)):
			b.WriteRune(r)
			dash = false
		case b.Len() > 0 && !dash:
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
