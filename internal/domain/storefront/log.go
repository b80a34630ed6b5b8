package storefront

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// LogCategory classifies what a sync log entry is about.
type LogCategory string

const (
	LogCategoryProduct   LogCategory = "product"
	LogCategoryStock     LogCategory = "stock"
	LogCategoryPrice     LogCategory = "price"
	LogCategoryCategory  LogCategory = "category"
	LogCategoryAttribute LogCategory = "attribute"
	LogCategoryFull      LogCategory = "full"
)

// LogStatus is the outcome recorded by a sync log entry.
type LogStatus string

const (
	LogStatusSuccess LogStatus = "success"
	LogStatusError   LogStatus = "error"
	LogStatusWarning LogStatus = "warning"
)

// LogEntry is one append-only record of a terminal sync outcome. Entries are
// never updated or deleted by the engine.
type LogEntry struct {
	ID         uuid.UUID
	InstanceID uuid.UUID
	Category   LogCategory
	Status     LogStatus
	// TemplateID and VariantID reference the affected item when applicable
	TemplateID *uuid.UUID
	VariantID  *uuid.UUID
	Message    string
	CreatedAt  time.Time
}

// NewLogEntry creates a log entry for an instance-level outcome.
func NewLogEntry(instanceID uuid.UUID, category LogCategory, status LogStatus, message string) *LogEntry {
	return &LogEntry{
		ID:         uuid.New(),
		InstanceID: instanceID,
		Category:   category,
		Status:     status,
		Message:    message,
		CreatedAt:  time.Now(),
	}
}

// ForTemplate attaches a template reference to the entry.
func (e *LogEntry) ForTemplate(templateID uuid.UUID) *LogEntry {
	e.TemplateID = &templateID
	return e
}

// ForVariant attaches a variant reference to the entry.
func (e *LogEntry) ForVariant(variantID uuid.UUID) *LogEntry {
	e.VariantID = &variantID
	return e
}

// LogRepository is an append-only sink for sync log entries. A failed append
// must never fail the sync that produced it; callers log and move on.
type LogRepository interface {
	// Append stores a log entry
	Append(ctx context.Context, entry *LogEntry) error

	// FindByInstance returns recent entries of an instance, newest first
	FindByInstance(ctx context.Context, instanceID uuid.UUID, limit int) ([]LogEntry, error)
}
