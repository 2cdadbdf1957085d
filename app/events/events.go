// Package events names the basket events and their payloads.
package events

import (
	"github.com/diybuddy/projectbuddy/app/models"
	"github.com/diybuddy/projectbuddy/app/services"
	"github.com/diybuddy/projectbuddy/pkg/event"
)

const (
	BasketChanged    event.Name = "basket.changed"
	BasketCheckedOut event.Name = "basket.checked_out"
)

// Changed is fired after a basket mutation has been persisted.
type Changed struct {
	Change services.Change
	Notice *models.Notice
	Source string // "http", "graphql" or "cli"
}

// CheckedOut is fired after checkout cleared the basket.
type CheckedOut struct {
	Receipt services.Receipt
	Notice  *models.Notice
	Source  string
}
