package models

import "time"

type Route struct {
	ID                  int       `json:"id"`
	Name                string    `json:"route_name"`
	AssignedDeliveryBoy *int      `json:"assigned_delivery_boy"`
	Areas               []string  `json:"areas"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}

// RouteListItem is a route with its agent and customer count for the admin list
type RouteListItem struct {
	Route
	DeliveryBoyName string `json:"delivery_boy_name,omitempty"`
	CustomerCount   int    `json:"customer_count"`
}

// AssignDeliveryBoyRequest represents the request body for assigning an agent to a route
type AssignDeliveryBoyRequest struct {
	DeliveryBoyID int `json:"delivery_boy_id"`
}
