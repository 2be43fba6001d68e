package client

import (
	"context"
	"net/http"
)

const endpointAuditLogs = "/audit/logs"

// AuditService reads the audit trail.
type AuditService struct {
	transport *Transport
}

func NewAuditService(t *Transport) *AuditService {
	return &AuditService{transport: t}
}

// GetAuditLogs returns the entries in server order.
func (s *AuditService) GetAuditLogs(ctx context.Context) ([]AuditLogEntry, error) {
	return sendJSON[[]AuditLogEntry](ctx, s.transport, endpointAuditLogs, http.MethodGet, nil)
}
