// internal/domain/models/enums.go
package models

import "fmt"

// Category is the kind of activity a meeting is organized around.
type Category string

const (
	CategorySoccer     Category = "soccer"
	CategoryFutsal     Category = "futsal"
	CategoryBasketball Category = "basketball"
	CategoryBadminton  Category = "badminton"
	CategoryTennis     Category = "tennis"
	CategoryRunning    Category = "running"
	CategoryHiking     Category = "hiking"
	CategoryCycling    Category = "cycling"
	CategoryClimbing   Category = "climbing"
	CategoryEtc        Category = "etc"

	// CategoryDefault is applied when a meeting is created without a category.
	CategoryDefault = CategorySoccer
)

// Categories returns the closed set of categories in display order.
func Categories() []Category {
	return []Category{
		CategorySoccer, CategoryFutsal, CategoryBasketball, CategoryBadminton, CategoryTennis,
		CategoryRunning, CategoryHiking, CategoryCycling, CategoryClimbing, CategoryEtc,
	}
}

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	for _, v := range Categories() {
		if c == v {
			return true
		}
	}
	return false
}

// ParseCategory converts s into a Category, rejecting unknown values.
func ParseCategory(s string) (Category, error) {
	c := Category(s)
	if !c.Valid() {
		return "", fmt.Errorf("unknown category %q", s)
	}
	return c, nil
}

// GenderLimit restricts who a meeting is open to.
type GenderLimit string

const (
	GenderMale   GenderLimit = "male"
	GenderFemale GenderLimit = "female"
	GenderAny    GenderLimit = "any"

	// GenderLimitDefault is "no restriction".
	GenderLimitDefault = GenderAny
)

// GenderLimits returns the closed set of gender limits in display order.
func GenderLimits() []GenderLimit {
	return []GenderLimit{GenderMale, GenderFemale, GenderAny}
}

// Valid reports whether g is one of the known gender limits.
func (g GenderLimit) Valid() bool {
	for _, v := range GenderLimits() {
		if g == v {
			return true
		}
	}
	return false
}

// ParseGenderLimit converts s into a GenderLimit, rejecting unknown values.
func ParseGenderLimit(s string) (GenderLimit, error) {
	g := GenderLimit(s)
	if !g.Valid() {
		return "", fmt.Errorf("unknown gender limit %q", s)
	}
	return g, nil
}

// Status is the lifecycle state of a meeting.
type Status string

const (
	StatusRecruiting Status = "recruiting"
	StatusClosed     Status = "closed"
	StatusInProgress Status = "in_progress"
	StatusFinished   Status = "finished"

	// StatusDefault is the state of a freshly created meeting.
	StatusDefault = StatusRecruiting
)

// Statuses returns the closed set of statuses in lifecycle order.
func Statuses() []Status {
	return []Status{StatusRecruiting, StatusClosed, StatusInProgress, StatusFinished}
}

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	for _, v := range Statuses() {
		if s == v {
			return true
		}
	}
	return false
}

// ParseStatus converts s into a Status, rejecting unknown values.
func ParseStatus(s string) (Status, error) {
	st := Status(s)
	if !st.Valid() {
		return "", fmt.Errorf("unknown status %q", s)
	}
	return st, nil
}
