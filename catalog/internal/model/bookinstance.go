package model

import (
	"time"
)

type Status string

const (
	StatusAvailable   Status = "Available"
	StatusMaintenance Status = "Maintenance"
	StatusLoaned      Status = "Loaned"
	StatusReserved    Status = "Reserved"
)

func Statuses() []Status {
	return []Status{StatusMaintenance, StatusAvailable, StatusLoaned, StatusReserved}
}

func (s Status) Valid() bool {
	switch s {
	case StatusAvailable, StatusMaintenance, StatusLoaned, StatusReserved:
		return true
	}
	return false
}

type BookInstance struct {
	ID      string
	BookID  string
	Imprint string
	Status  Status
	DueBack time.Time

	Book *Book
}

// NewBookInstance applies the defaults for an omitted status or due date.
func NewBookInstance(bookID, imprint string, status Status, dueBack *time.Time, now time.Time) BookInstance {
	bi := BookInstance{
		BookID:  bookID,
		Imprint: imprint,
		Status:  status,
		DueBack: now,
	}
	if bi.Status == "" {
		bi.Status = StatusMaintenance
	}
	if dueBack != nil {
		bi.DueBack = *dueBack
	}
	return bi
}

func (bi BookInstance) DueBackFormatted() string {
	return formatDate(&bi.DueBack, dateMedLayout)
}

func (bi BookInstance) DueBackInput() string {
	return formatDate(&bi.DueBack, dateInputLayout)
}

func (bi BookInstance) URL() string {
	return "/catalog/bookinstance/" + bi.ID
}
