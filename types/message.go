package types

import "time"

// NotificationField is a single name/value row inside a notification message.
type NotificationField struct {
	Name   string
	Value  string
	Inline bool
}

// Notification is the structured message handed to the notification sink.
// Delivery is best effort; a failed send is logged and never retried.
type Notification struct {
	Id        string
	Title     string
	Body      string
	Fields    []NotificationField
	Color     int
	Timestamp time.Time
	Link      string
}
