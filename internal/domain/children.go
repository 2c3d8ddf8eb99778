package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/kevinbuckley/tripwit/internal/common"
)

// Comment is a free-text note attached to a stop.
type Comment struct {
	ID        uuid.UUID `json:"id"`
	StopID    uuid.UUID `json:"stop_id"`
	Author    string    `json:"author,omitempty"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}

func (c Comment) Validate() error {
	if c.StopID == uuid.Nil {
		return fmt.Errorf("%w: comment must belong to a stop", common.ErrorValidation)
	}
	if strings.TrimSpace(c.Body) == "" {
		return fmt.Errorf("%w: comment body is required", common.ErrorValidation)
	}
	return nil
}

// Link is a URL attached to a stop.
type Link struct {
	ID        uuid.UUID `json:"id"`
	StopID    uuid.UUID `json:"stop_id"`
	Title     string    `json:"title,omitempty"`
	URL       string    `json:"url"`
	CreatedAt time.Time `json:"created_at"`
}

func (l Link) Validate() error {
	if l.StopID == uuid.Nil {
		return fmt.Errorf("%w: link must belong to a stop", common.ErrorValidation)
	}
	if strings.TrimSpace(l.URL) == "" {
		return fmt.Errorf("%w: link url is required", common.ErrorValidation)
	}
	return nil
}

// Todo is a checklist item attached to a stop.
type Todo struct {
	ID        uuid.UUID `json:"id"`
	StopID    uuid.UUID `json:"stop_id"`
	Title     string    `json:"title"`
	Done      bool      `json:"done"`
	CreatedAt time.Time `json:"created_at"`
}

func (td Todo) Validate() error {
	if td.StopID == uuid.Nil {
		return fmt.Errorf("%w: todo must belong to a stop", common.ErrorValidation)
	}
	if strings.TrimSpace(td.Title) == "" {
		return fmt.Errorf("%w: todo title is required", common.ErrorValidation)
	}
	return nil
}
