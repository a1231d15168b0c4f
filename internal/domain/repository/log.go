package repository

import (
	"context"
	"time"
)

// LogEntry es un evento de auditoría con códigos de tipo estilo Auth0.
type LogEntry struct {
	ID          string
	TenantID    string
	Type        string
	Date        time.Time
	Description string
	IP          string
	UserAgent   string
	ClientID    string
	UserID      string
	UserName    string
	Connection  string
	Details     map[string]any
}

type LogRepository interface {
	Create(ctx context.Context, e *LogEntry) error
}
