package domain

import (
	"errors"
	"time"
)

// Client is a customer record: the vehicle owner a work order is performed for.
type Client struct {
	ID        string
	Name      string
	Phone     string
	Email     string
	Notes     string
	Vehicles  []Vehicle
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Vehicle is a vehicle registered under a client.
type Vehicle struct {
	ID       string
	ClientID string
	Model    string
	Plate    string
}

// Validate validates the client for persistence.
func (c *Client) Validate() error {
	if c.Name == "" {
		return errors.New("client name is required")
	}
	for _, v := range c.Vehicles {
		if v.Model == "" {
			return errors.New("vehicle model is required")
		}
	}
	return nil
}
