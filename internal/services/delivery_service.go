package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"aquagem-backend/internal/cache"
	"aquagem-backend/internal/metrics"
	"aquagem-backend/internal/models"
	"aquagem-backend/internal/scheduling"
	"aquagem-backend/internal/storage"
	"aquagem-backend/internal/timeutil"
)

// DeliveryService is the delivery-completion workflow: it writes ledger
// records and tells the listeners about them.
type DeliveryService struct {
	Deliveries DeliveryStore
	Customers  CustomerStore
	Store      storage.Store // nil when object storage is not configured
	Now        func() time.Time

	listeners []scheduling.CompletionListener
}

func NewDeliveryService(deliveries DeliveryStore, customers CustomerStore, store storage.Store) *DeliveryService {
	return &DeliveryService{
		Deliveries: deliveries,
		Customers:  customers,
		Store:      store,
		Now:        timeutil.Now,
	}
}

// AddListener registers l to run after every recorded delivery.
func (s *DeliveryService) AddListener(l scheduling.CompletionListener) {
	s.listeners = append(s.listeners, l)
}

func validateDelivery(req *models.CreateDeliveryRequest) (models.DeliveryStatus, error) {
	status := models.DeliveryStatus(strings.ToLower(strings.TrimSpace(req.Status)))
	switch {
	case req.CustomerID <= 0:
		return "", fmt.Errorf("%w: customer_id is required", ErrInvalidInput)
	case !status.Valid():
		return "", fmt.Errorf("%w: status must be delivered, not_delivered or partial", ErrInvalidInput)
	case req.DeliveredQty < 0 || req.ReturnedQty < 0:
		return "", fmt.Errorf("%w: quantities cannot be negative", ErrInvalidInput)
	case status == models.DeliveryNotDelivered && req.DeliveredQty > 0:
		return "", fmt.Errorf("%w: a not_delivered attempt cannot deliver jars", ErrInvalidInput)
	}
	return status, nil
}

// Record writes an attempt made now by agentID. The customer's jar balance
// moves by delivered minus returned in the same transaction.
func (s *DeliveryService) Record(ctx context.Context, agentID int, req *models.CreateDeliveryRequest) (*models.Delivery, error) {
	status, err := validateDelivery(req)
	if err != nil {
		return nil, err
	}

	customer, err := s.Customers.Get(ctx, req.CustomerID)
	if err != nil {
		return nil, fmt.Errorf("customer %d: %w", req.CustomerID, notFound(err))
	}
	if !customer.IsActive {
		return nil, fmt.Errorf("%w: customer %d is inactive", ErrInvalidInput, req.CustomerID)
	}

	d := &models.Delivery{
		CustomerID:    req.CustomerID,
		DeliveryBoyID: agentID,
		Date:          s.Now(),
		DeliveredQty:  req.DeliveredQty,
		ReturnedQty:   req.ReturnedQty,
		Status:        status,
		Notes:         strings.TrimSpace(req.Notes),
	}
	if err := s.Deliveries.Create(ctx, d); err != nil {
		return nil, fmt.Errorf("record delivery: %w", notFound(err))
	}

	log.Printf("[Delivery] #%d customer=%d agent=%d status=%s net=%d", d.ID, d.CustomerID, d.DeliveryBoyID, d.Status, d.NetJars())

	for _, l := range s.listeners {
		l.OnDeliveryCompleted(ctx, d)
	}
	return d, nil
}

// owned loads a delivery and checks it was made by agentID.
func (s *DeliveryService) owned(ctx context.Context, agentID, deliveryID int) (*models.Delivery, error) {
	d, err := s.Deliveries.Get(ctx, deliveryID)
	if err != nil {
		return nil, fmt.Errorf("delivery %d: %w", deliveryID, notFound(err))
	}
	if d.DeliveryBoyID != agentID {
		return nil, fmt.Errorf("delivery %d: %w", deliveryID, ErrForbidden)
	}
	return d, nil
}

// ProofUploadURL returns a presigned PUT target for a photo or signature.
func (s *DeliveryService) ProofUploadURL(ctx context.Context, agentID, deliveryID int, req *models.ProofUploadRequest) (*models.ProofUploadResponse, error) {
	if s.Store == nil {
		return nil, ErrStorageDisabled
	}
	if _, err := s.owned(ctx, agentID, deliveryID); err != nil {
		return nil, err
	}

	key, err := storage.ProofKey(deliveryID, req.Kind, req.ContentType)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	up, err := s.Store.PresignPut(ctx, key, req.ContentType)
	if err != nil {
		if errors.Is(err, storage.ErrDisabled) {
			return nil, ErrStorageDisabled
		}
		return nil, fmt.Errorf("presign proof upload: %w", err)
	}
	return &models.ProofUploadResponse{UploadURL: up.UploadURL, ObjectURL: up.ObjectURL, ExpiresAt: up.ExpiresAt}, nil
}

// AttachProof sets photo, signature or GPS on the agent's own delivery.
// These are the only fields that change after a record is written.
func (s *DeliveryService) AttachProof(ctx context.Context, agentID, deliveryID int, req *models.AttachProofRequest) (*models.Delivery, error) {
	if req.PhotoURL == "" && req.SignatureURL == "" && req.GPS == nil {
		return nil, fmt.Errorf("%w: nothing to attach", ErrInvalidInput)
	}
	if g := req.GPS; g != nil && (g.Lat < -90 || g.Lat > 90 || g.Lng < -180 || g.Lng > 180) {
		return nil, fmt.Errorf("%w: gps coordinates out of range", ErrInvalidInput)
	}
	if _, err := s.owned(ctx, agentID, deliveryID); err != nil {
		return nil, err
	}

	d, err := s.Deliveries.AttachProof(ctx, deliveryID, *req)
	if err != nil {
		return nil, fmt.Errorf("attach proof: %w", notFound(err))
	}
	return d, nil
}

// CacheInvalidator drops the analytics and schedule caches after each recorded delivery.
var CacheInvalidator = scheduling.CompletionFunc(func(ctx context.Context, _ *models.Delivery) {
	cache.InvalidateDeliveryCaches(ctx)
})

// MetricsRecorder counts recorded deliveries by outcome.
var MetricsRecorder = scheduling.CompletionFunc(func(_ context.Context, d *models.Delivery) {
	metrics.DeliveriesRecorded.WithLabelValues(string(d.Status)).Inc()
})
