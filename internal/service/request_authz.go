package service

import "github.com/optilog/procurement-api/internal/models"

// Authorization predicates for lifecycle operations, kept separate from the
// transition table so actor rules and status rules can be tested on their own.

// canSupplierReply reports whether the acting supplier owns the request.
func canSupplierReply(actorSupplierID string, request *models.Request) bool {
	return request != nil && request.SupplierID == actorSupplierID
}

// canLogistConfirm reports whether the acting logist may give the final
// delivery confirmation. The legacy system requires the confirming logist to
// differ from the request's creator, and that behaviour is preserved.
func canLogistConfirm(actorLogistID string, request *models.Request) bool {
	return request != nil && request.LogistID != actorLogistID
}
