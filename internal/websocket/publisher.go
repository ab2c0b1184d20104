package websocket

import "github.com/dafibh/budget-ledger/internal/domain"

// Ensure Hub implements domain.ChangePublisher
var _ domain.ChangePublisher = (*Hub)(nil)

// PublishCollectionReplaced notifies every open connection of the user whose
// collection was replaced
func (h *Hub) PublishCollectionReplaced(change domain.CollectionReplaced) {
	h.Broadcast(change.UserID, CollectionReplaced(change))
}
