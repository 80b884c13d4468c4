package domain

import (
	"bytes"
	"encoding/json"
	"time"
)

// DefaultAuditMaxBytes is the audit log size above which the log is emptied
// before the next append.
const DefaultAuditMaxBytes int64 = 1_000_000

const AuditTimestampLayout = "2006-01-02 15:04:05"

// AuditRecord is one line of the registration audit log.
type AuditRecord struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	City      string `json:"city"`
	Country   string `json:"country"`
	Timestamp string `json:"timestamp"`
}

func NewAuditRecord(r Registration, at time.Time) AuditRecord {
	return AuditRecord{
		FirstName: r.FirstName,
		LastName:  r.LastName,
		Email:     r.Email,
		Phone:     r.Phone,
		City:      r.City,
		Country:   r.Country,
		Timestamp: at.Format(AuditTimestampLayout),
	}
}

// Line encodes the record as a single newline-terminated JSON object. Values
// are already entity-escaped, so the encoder must not escape them again.
func (a AuditRecord) Line() ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(a); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
