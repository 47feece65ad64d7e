package models

import "time"

// DeliveryStatus is the outcome of one delivery attempt.
type DeliveryStatus string

const (
	DeliveryDelivered    DeliveryStatus = "delivered"
	DeliveryNotDelivered DeliveryStatus = "not_delivered"
	DeliveryPartial      DeliveryStatus = "partial"
)

// Valid reports whether s is one of the recorded outcomes.
func (s DeliveryStatus) Valid() bool {
	switch s {
	case DeliveryDelivered, DeliveryNotDelivered, DeliveryPartial:
		return true
	}
	return false
}

type GPSLocation struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Delivery is one delivery attempt. Every field except the proof
// attachments (photo, signature, GPS) is immutable once written.
type Delivery struct {
	ID            int            `json:"id"`
	CustomerID    int            `json:"customer_id"`
	DeliveryBoyID int            `json:"delivery_boy_id"`
	Date          time.Time      `json:"date"`
	DeliveredQty  int            `json:"delivered_qty"`
	ReturnedQty   int            `json:"returned_qty"`
	Status        DeliveryStatus `json:"status"`
	Notes         string         `json:"notes,omitempty"`
	PhotoURL      string         `json:"photo_url,omitempty"`
	SignatureURL  string         `json:"signature_url,omitempty"`
	GPS           *GPSLocation   `json:"gps_location,omitempty"`
	CreatedAt     time.Time      `json:"created_at"`
}

// NetJars is delivered minus returned for this attempt.
func (d *Delivery) NetJars() int {
	return d.DeliveredQty - d.ReturnedQty
}

// CreateDeliveryRequest is submitted by a delivery boy when completing a stop
type CreateDeliveryRequest struct {
	CustomerID   int    `json:"customer_id"`
	DeliveredQty int    `json:"delivered_qty"`
	ReturnedQty  int    `json:"returned_qty"`
	Status       string `json:"status"`
	Notes        string `json:"notes"`
}

// AttachProofRequest sets proof attachments on an existing delivery
type AttachProofRequest struct {
	PhotoURL     string       `json:"photo_url,omitempty"`
	SignatureURL string       `json:"signature_url,omitempty"`
	GPS          *GPSLocation `json:"gps_location,omitempty"`
}

// ProofUploadRequest asks for a presigned upload URL
type ProofUploadRequest struct {
	Kind        string `json:"kind"` // photo or signature
	ContentType string `json:"content_type"`
}

// ProofUploadResponse is a presigned PUT target for a proof attachment
type ProofUploadResponse struct {
	UploadURL string    `json:"upload_url"`
	ObjectURL string    `json:"object_url"`
	ExpiresAt time.Time `json:"expires_at"`
}

// DeliveryFilter narrows a ledger read. Zero values mean "no filter".
type DeliveryFilter struct {
	DeliveryBoyID int
	CustomerIDs   []int
	Statuses      []DeliveryStatus
}

// DateRange is an inclusive range of instants; a zero bound is open.
type DateRange struct {
	From time.Time
	To   time.Time
}

// Contains reports whether t falls inside the range.
func (r DateRange) Contains(t time.Time) bool {
	if !r.From.IsZero() && t.Before(r.From) {
		return false
	}
	if !r.To.IsZero() && t.After(r.To) {
		return false
	}
	return true
}
