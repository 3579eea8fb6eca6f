package entity

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// Rating is a user's 1-5 star score for a book. The JSON names are the
// backend's.
type Rating struct {
	ID       string    `json:"id,omitempty"`
	BookID   string    `json:"google_books_id,omitempty"`
	UserID   string    `json:"usuario_id,omitempty"`
	UserName string    `json:"usuario_nome,omitempty"`
	Stars    int       `json:"estrelas"`
	Comment  string    `json:"comentario,omitempty"`
	RatedAt  Timestamp `json:"data_avaliacao"`
}

// RatingStats summarizes every rating a book has received.
type RatingStats struct {
	BookID       string         `json:"google_books_id"`
	Average      float64        `json:"media"`
	Total        int            `json:"total_avaliacoes"`
	Distribution map[string]int `json:"distribuicao"`
}

// Count returns how many ratings gave the book exactly stars stars.
func (s RatingStats) Count(stars int) int {
	return s.Distribution[strconv.Itoa(stars)]
}

// Timestamp accepts RFC 3339 as well as the zone-less ISO format the backend
// emits. null and "" decode to the zero value.
type Timestamp struct {
	time.Time
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02",
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		t.Time = time.Time{}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("timestamp: %w", err)
	}
	if s == "" {
		t.Time = time.Time{}
		return nil
	}
	for _, layout := range timestampLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			t.Time = parsed
			return nil
		}
	}
	return fmt.Errorf("timestamp: unrecognized format %q", s)
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.Format(time.RFC3339))
}
