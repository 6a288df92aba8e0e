package handlers

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/binarydooms-ai/youtube-downloader-api/internal/domain"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for now
	},
}

// ProgressEvent is one job state snapshot pushed to WebSocket clients
type ProgressEvent struct {
	JobID        string           `json:"job_id"`
	VideoID      string           `json:"video_id"`
	Title        string           `json:"title,omitempty"`
	Status       domain.JobStatus `json:"status"`
	Progress     int              `json:"progress"`
	FilePath     string           `json:"file_path,omitempty"`
	FileSize     string           `json:"file_size,omitempty"`
	ErrorMessage string           `json:"error_message,omitempty"`
	Timestamp    time.Time        `json:"timestamp"`
}

// ProgressHub fans job state changes out to every connected WebSocket
// client. Slow or dead connections are dropped at the next write.
type ProgressHub struct {
	logger  *zap.Logger
	clients map[*websocket.Conn]*sync.Mutex
	mu      sync.RWMutex
}

// NewProgressHub creates a new progress hub
func NewProgressHub(logger *zap.Logger) *ProgressHub {
	return &ProgressHub{
		logger:  logger,
		clients: make(map[*websocket.Conn]*sync.Mutex),
	}
}

// Publish broadcasts one job's current state to all connected clients
func (h *ProgressHub) Publish(job *domain.Job) {
	event := ProgressEvent{
		JobID:        job.ID,
		VideoID:      job.VideoID,
		Title:        job.Title,
		Status:       job.Status,
		Progress:     job.Progress,
		FilePath:     job.FilePath,
		FileSize:     job.FileSize,
		ErrorMessage: job.ErrorMessage,
		Timestamp:    time.Now(),
	}
	data, err := json.Marshal(event)
	if err != nil {
		h.logger.Error("Failed to marshal progress event", zap.Error(err))
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for conn, writeMu := range h.clients {
		writeMu.Lock()
		err := conn.WriteMessage(websocket.TextMessage, data)
		writeMu.Unlock()
		if err != nil {
			h.logger.Debug("Failed to push progress event", zap.Error(err))
			// Connection is cleaned up by its handler goroutine
		}
	}
}

// HandleWebSocket handles GET /api/v1/jobs/ws, streaming progress events
// until the client disconnects.
func (h *ProgressHub) HandleWebSocket(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Error("Failed to upgrade WebSocket", zap.Error(err))
		return
	}
	defer conn.Close()

	writeMu := &sync.Mutex{}
	h.mu.Lock()
	h.clients[conn] = writeMu
	h.mu.Unlock()

	defer func() {
		h.mu.Lock()
		delete(h.clients, conn)
		h.mu.Unlock()
	}()

	h.logger.Info("WebSocket client connected",
		zap.String("remote_addr", c.Request.RemoteAddr))

	// Read messages from client to detect disconnect
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	// Send pings to keep the connection alive
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			writeMu.Lock()
			err := conn.WriteMessage(websocket.PingMessage, nil)
			writeMu.Unlock()
			if err != nil {
				return
			}
		case <-done:
			return
		}
	}
}
