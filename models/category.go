package models

// Category is the controlled vocabulary shared by images, videos and the
// moderation surface. A single type keeps the three submission validators
// from drifting apart.
type Category string

const (
	CategoryReception   Category = "reception"
	CategoryCeremony    Category = "ceremony"
	CategoryPreparation Category = "preparation"
)

// CategoryErrorMessage is returned verbatim on every out-of-enum submission.
const CategoryErrorMessage = "Invalid category. Must be reception, ceremony, or preparation"

func (c Category) Valid() bool {
	switch c {
	case CategoryReception, CategoryCeremony, CategoryPreparation:
		return true
	}
	return false
}
