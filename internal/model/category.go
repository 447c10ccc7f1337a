package model

import (
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

type Category string

const (
	CategoryFitness       Category = "fitness"
	CategoryCareer        Category = "career"
	CategoryEducation     Category = "education"
	CategoryFinance       Category = "finance"
	CategoryPersonal      Category = "personal"
	CategoryTravel        Category = "travel"
	CategoryCreative      Category = "creative"
	CategoryRelationships Category = "relationships"
	CategoryHealth        Category = "health"
)

// Categories lists every category in display order.
var Categories = []Category{
	CategoryFitness,
	CategoryCareer,
	CategoryEducation,
	CategoryFinance,
	CategoryPersonal,
	CategoryTravel,
	CategoryCreative,
	CategoryRelationships,
	CategoryHealth,
}

var categoryColors = map[Category]string{
	CategoryFitness:       "#4ECDC4",
	CategoryCareer:        "#FF6B6B",
	CategoryEducation:     "#3B82F6",
	CategoryFinance:       "#10B981",
	CategoryPersonal:      "#8B5CF6",
	CategoryTravel:        "#F59E0B",
	CategoryCreative:      "#FFD166",
	CategoryRelationships: "#EC4899",
	CategoryHealth:        "#EF4444",
}

var categoryIcons = map[Category]string{
	CategoryFitness:       "dumbbell",
	CategoryCareer:        "briefcase",
	CategoryEducation:     "book-open",
	CategoryFinance:       "dollar-sign",
	CategoryPersonal:      "user",
	CategoryTravel:        "map-pin",
	CategoryCreative:      "pen-tool",
	CategoryRelationships: "heart",
	CategoryHealth:        "heart-pulse",
}

// Fallback accent for unknown categories (primary blue).
const defaultCategoryColor = "#3B82F6"

func (c Category) Valid() bool {
	_, ok := categoryColors[c]
	return ok
}

func (c Category) Color() string {
	color, ok := categoryColors[c]
	if !ok {
		return defaultCategoryColor
	}
	return color
}

func (c Category) Icon() string {
	icon, ok := categoryIcons[c]
	if !ok {
		return "target"
	}
	return icon
}

// Label returns the display name, e.g. "Relationships".
func (c Category) Label() string {
	return cases.Title(language.English).String(string(c))
}
