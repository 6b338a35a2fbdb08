package core

import (
	"errors"
	"strings"
)

// Client is one row of the counterparty registry.
type Client struct {
	ID           string
	Name         string
	Phone        string
	Email        string
	BirthDate    string
	City         string
	District     string
	RegisteredAt string
	Profession   string
	Preferences  string
	Source       string
	Notes        string
}

func (c Client) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return errors.New("empty client name")
	}
	if strings.TrimSpace(c.Phone) == "" {
		return errors.New("empty client phone")
	}
	return nil
}

// Category is one row of the kind-scoped category registry. Entries must
// reference an active category of their own kind.
type Category struct {
	Kind   Kind
	Name   string
	Active bool
}
