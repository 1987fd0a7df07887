package domain

import "time"

// SubscriptionForm is the raw, unvalidated payload of POST /subscriptions.
type SubscriptionForm struct {
	Name  string
	Email string
}

// NewSubscriber is one subscription intent built from validated parts.
type NewSubscriber struct {
	Name  SubscriberName
	Email SubscriberEmail
}

// NewNewSubscriber composes already-validated parts.
func NewNewSubscriber(name SubscriberName, email SubscriberEmail) NewSubscriber {
	return NewSubscriber{Name: name, Email: email}
}

// ParseNewSubscriber validates both form fields, name first. The first
// failure is returned and no NewSubscriber is produced.
func ParseNewSubscriber(form SubscriptionForm) (NewSubscriber, error) {
	name, err := ParseSubscriberName(form.Name)
	if err != nil {
		return NewSubscriber{}, err
	}
	email, err := ParseSubscriberEmail(form.Email)
	if err != nil {
		return NewSubscriber{}, err
	}
	return NewSubscriber{Name: name, Email: email}, nil
}

// Subscription is a row of the subscriptions table.
type Subscription struct {
	ID           string    `json:"id" db:"id"`
	Email        string    `json:"email" db:"email"`
	Name         string    `json:"name" db:"name"`
	SubscribedAt time.Time `json:"subscribed_at" db:"subscribed_at"`
}
