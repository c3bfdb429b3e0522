// Package dashboard provides event handling and message formatting for the dashboard.
package dashboard

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/fieldline/doorsync/internal/schema"
	"github.com/fieldline/doorsync/internal/sync"
)

// statsTimeout bounds the store query behind a stats refresh. Events
// arrive without a context, so the handler supplies its own.
const statsTimeout = 5 * time.Second

// StatsSource provides current store statistics for broadcast. The sync
// engine satisfies it.
type StatsSource interface {
	Stats(ctx context.Context) (schema.StoreStats, error)
}

// Handler receives daemon events and formats them as dashboard messages.
// It bridges between the daemon's notifier interface and the WebSocket
// server: wire it in as the daemon config's Notify field.
type Handler struct {
	server *Server
	source StatsSource
	logger *log.Logger
}

// NewHandler creates a new event handler connected to a dashboard server.
// source may be nil, in which case stats broadcasts are skipped.
func NewHandler(server *Server, source StatsSource, logger *log.Logger) *Handler {
	if logger == nil {
		logger = log.Default()
	}

	return &Handler{
		server: server,
		source: source,
		logger: logger,
	}
}

// SyncProgress handles progress events from a running sync pass
func (h *Handler) SyncProgress(p sync.Progress) {
	h.logger.Printf("Sync progress: [%d%%] %s: %s", p.Percent, p.Stage, p.Message)

	// The progress event is already wire-shaped
	dataJSON, err := json.Marshal(p)
	if err != nil {
		h.logger.Printf("Failed to marshal progress data: %v", err)
		return
	}

	// Broadcast message
	msg := Message{
		Type:      MessageTypeSyncProgress,
		Timestamp: time.Now(),
		Data:      dataJSON,
	}
	h.server.Broadcast(msg)

	// A completed pass also announces itself and refreshes stats
	if p.Completed {
		h.syncComplete(p.Message)
		h.RefreshStats()
	}
}

// syncComplete broadcasts the end of a sync pass
func (h *Handler) syncComplete(message string) {
	data := SyncCompleteData{
		Message: message,
	}

	dataJSON, err := json.Marshal(data)
	if err != nil {
		h.logger.Printf("Failed to marshal sync data: %v", err)
		return
	}

	msg := Message{
		Type:      MessageTypeSyncComplete,
		Timestamp: time.Now(),
		Data:      dataJSON,
	}
	h.server.Broadcast(msg)
}

// PhotoImported handles photo import events from the daemon's inbox
func (h *Handler) PhotoImported(inspectionID, filename string) {
	h.logger.Printf("Photo imported: %s (inspection %s)", filename, inspectionID)

	// Format photo import data
	data := PhotoImportedData{
		InspectionID: inspectionID,
		Filename:     filename,
	}

	dataJSON, err := json.Marshal(data)
	if err != nil {
		h.logger.Printf("Failed to marshal photo data: %v", err)
		return
	}

	// Broadcast message
	msg := Message{
		Type:      MessageTypePhotoImported,
		Timestamp: time.Now(),
		Data:      dataJSON,
	}
	h.server.Broadcast(msg)

	// An import changes the photo and pending counts
	h.RefreshStats()
}

// PendingChanged handles pending upload count changes
func (h *Handler) PendingChanged(count int) {
	h.logger.Printf("Pending uploads: %d", count)

	// Format pending count data
	data := PendingData{
		Count: count,
	}

	dataJSON, err := json.Marshal(data)
	if err != nil {
		h.logger.Printf("Failed to marshal pending data: %v", err)
		return
	}

	// Broadcast message
	msg := Message{
		Type:      MessageTypePending,
		Timestamp: time.Now(),
		Data:      dataJSON,
	}
	h.server.Broadcast(msg)
}

// RefreshStats queries current store statistics and broadcasts them to
// all clients. The server replays the latest snapshot to newly connected
// clients as the welcome message.
func (h *Handler) RefreshStats() {
	if h.source == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), statsTimeout)
	defer cancel()

	stats, err := h.source.Stats(ctx)
	if err != nil {
		h.logger.Printf("Failed to refresh stats: %v", err)
		return
	}

	dataJSON, err := json.Marshal(stats)
	if err != nil {
		h.logger.Printf("Failed to marshal stats: %v", err)
		return
	}

	msg := Message{
		Type:      MessageTypeStats,
		Timestamp: time.Now(),
		Data:      dataJSON,
	}
	h.server.Broadcast(msg)
}
