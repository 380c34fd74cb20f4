package uploads

import (
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusUploading Status = "uploading"
	StatusComplete  Status = "complete"
	StatusError     Status = "error"
)

// Terminal reports whether no further transition can happen.
func (s Status) Terminal() bool {
	return s == StatusComplete || s == StatusError
}

// Item is one file of a submitted batch as the dashboard sees it.
type Item struct {
	ID          uuid.UUID  `json:"id"`
	BatchID     uuid.UUID  `json:"batch_id"`
	Name        string     `json:"name"`
	Size        int64      `json:"size"`
	ContentType string     `json:"content_type,omitempty"`
	Status      Status     `json:"status"`
	Progress    int        `json:"progress"`
	Error       string     `json:"error,omitempty"`
	FileID      *uuid.UUID `json:"file_id,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// Summary describes a batch once all of its items are terminal.
type Summary struct {
	BatchID   uuid.UUID `json:"batch_id"`
	Total     int       `json:"total"`
	Completed int       `json:"completed"`
	Failed    int       `json:"failed"`
}

type EventType string

const (
	EventItem          EventType = "item"
	EventBatchComplete EventType = "batch_complete"
)

// Event is published to subscribers on every item transition and when a
// batch finishes.
type Event struct {
	Type  EventType `json:"type"`
	Item  *Item     `json:"item,omitempty"`
	Batch *Summary  `json:"batch,omitempty"`
}
