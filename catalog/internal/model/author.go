package model

import (
	"time"
)

const (
	dateMedLayout   = "Jan 2, 2006"
	dateInputLayout = time.DateOnly
)

type Author struct {
	ID          string
	FirstName   string
	LastName    string
	DateOfBirth *time.Time
	DateOfDeath *time.Time
}

// Name is "LastName, FirstName", or empty when either part is missing.
func (a Author) Name() string {
	if a.FirstName == "" || a.LastName == "" {
		return ""
	}
	return a.LastName + ", " + a.FirstName
}

func (a Author) Lifespan() string {
	return a.DateOfBirthFormatted() + " - " + a.DateOfDeathFormatted()
}

func (a Author) DateOfBirthFormatted() string {
	return formatDate(a.DateOfBirth, dateMedLayout)
}

func (a Author) DateOfDeathFormatted() string {
	return formatDate(a.DateOfDeath, dateMedLayout)
}

func (a Author) DateOfBirthInput() string {
	return formatDate(a.DateOfBirth, dateInputLayout)
}

func (a Author) DateOfDeathInput() string {
	return formatDate(a.DateOfDeath, dateInputLayout)
}

func (a Author) URL() string {
	return "/catalog/author/" + a.ID
}

func formatDate(t *time.Time, layout string) string {
	if t == nil || t.IsZero() {
		return ""
	}
	return t.UTC().Format(layout)
}
