// Package monitoring pushes delivery activity to admin dashboards over
// websockets and samples host resource usage for the detailed health check.
package monitoring

import (
	"context"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"aquagem-backend/internal/metrics"
	"aquagem-backend/internal/models"
	"aquagem-backend/internal/timeutil"
)

const (
	eventBuffer  = 64
	backlogSize  = 20
	writeTimeout = 5 * time.Second
)

// Event is one message on the live-tracking feed.
type Event struct {
	Type          string                `json:"type"`
	DeliveryID    int                   `json:"delivery_id"`
	CustomerID    int                   `json:"customer_id"`
	DeliveryBoyID int                   `json:"delivery_boy_id"`
	Status        models.DeliveryStatus `json:"status"`
	DeliveredQty  int                   `json:"delivered_qty"`
	ReturnedQty   int                   `json:"returned_qty"`
	GPS           *models.GPSLocation   `json:"gps_location,omitempty"`
	Timestamp     time.Time             `json:"timestamp"`
}

// LiveTracker fans delivery completions out to connected websocket clients.
// New clients first receive the most recent events.
type LiveTracker struct {
	upgrader   websocket.Upgrader
	clients    map[*websocket.Conn]bool
	clientsMux sync.Mutex
	backlog    []Event
	broadcast  chan Event
	stopChan   chan struct{}
	wg         sync.WaitGroup
}

// NewLiveTracker creates a tracker. An empty origin list accepts any origin.
func NewLiveTracker(allowedOrigins []string) *LiveTracker {
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[o] = true
	}
	return &LiveTracker{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return len(allowed) == 0 || origin == "" || allowed[origin]
			},
		},
		clients:   make(map[*websocket.Conn]bool),
		broadcast: make(chan Event, eventBuffer),
		stopChan:  make(chan struct{}),
	}
}

// Start runs the broadcaster until Stop is called.
func (t *LiveTracker) Start() {
	t.wg.Add(1)
	go t.handleBroadcast()
	log.Println("[Live] tracker started")
}

// Stop ends the broadcaster and disconnects every client.
func (t *LiveTracker) Stop() {
	close(t.stopChan)
	t.wg.Wait()

	t.clientsMux.Lock()
	for c := range t.clients {
		c.Close()
		delete(t.clients, c)
	}
	metrics.LiveSubscribers.Set(0)
	t.clientsMux.Unlock()
	log.Println("[Live] tracker stopped")
}

// Subscribers returns the number of connected clients.
func (t *LiveTracker) Subscribers() int {
	t.clientsMux.Lock()
	defer t.clientsMux.Unlock()
	return len(t.clients)
}

// OnDeliveryCompleted queues the delivery for broadcast. It never blocks
// the write path: when the queue is full the event is dropped.
func (t *LiveTracker) OnDeliveryCompleted(_ context.Context, d *models.Delivery) {
	ev := Event{
		Type:          "delivery_completed",
		DeliveryID:    d.ID,
		CustomerID:    d.CustomerID,
		DeliveryBoyID: d.DeliveryBoyID,
		Status:        d.Status,
		DeliveredQty:  d.DeliveredQty,
		ReturnedQty:   d.ReturnedQty,
		GPS:           d.GPS,
		Timestamp:     timeutil.Now(),
	}
	select {
	case t.broadcast <- ev:
	default:
		log.Printf("[Live] queue full, dropping event for delivery #%d", d.ID)
	}
}

// HandleWebSocket upgrades the request and keeps the client registered
// until it disconnects.
func (t *LiveTracker) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := t.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[Live] websocket upgrade error: %v", err)
		return
	}
	defer conn.Close()

	t.clientsMux.Lock()
	for _, ev := range t.backlog {
		conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := conn.WriteJSON(ev); err != nil {
			t.clientsMux.Unlock()
			return
		}
	}
	t.clients[conn] = true
	metrics.LiveSubscribers.Set(float64(len(t.clients)))
	t.clientsMux.Unlock()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			t.remove(conn)
			return
		}
	}
}

func (t *LiveTracker) remove(conn *websocket.Conn) {
	t.clientsMux.Lock()
	defer t.clientsMux.Unlock()
	if t.clients[conn] {
		delete(t.clients, conn)
		metrics.LiveSubscribers.Set(float64(len(t.clients)))
	}
}

func (t *LiveTracker) handleBroadcast() {
	defer t.wg.Done()
	for {
		select {
		case <-t.stopChan:
			return
		case ev := <-t.broadcast:
			t.clientsMux.Lock()
			t.backlog = append(t.backlog, ev)
			if len(t.backlog) > backlogSize {
				t.backlog = t.backlog[len(t.backlog)-backlogSize:]
			}
			for client := range t.clients {
				client.SetWriteDeadline(time.Now().Add(writeTimeout))
				if err := client.WriteJSON(ev); err != nil {
					client.Close()
					delete(t.clients, client)
				}
			}
			metrics.LiveSubscribers.Set(float64(len(t.clients)))
			t.clientsMux.Unlock()
		}
	}
}
