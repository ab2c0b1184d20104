package domain

import "time"

// CollectionReplaced announces that a user's stored collection was overwritten
type CollectionReplaced struct {
	UserID     string         `json:"userId"`
	Kind       CollectionKind `json:"kind"`
	Count      int            `json:"count"`
	ReplacedAt time.Time      `json:"replacedAt"`
}

// ChangePublisher fans collection changes out to interested listeners
type ChangePublisher interface {
	PublishCollectionReplaced(event CollectionReplaced)
}

// ChangePublishers fans one change out to several publishers
type ChangePublishers []ChangePublisher

// PublishCollectionReplaced forwards event to every publisher in order
func (ps ChangePublishers) PublishCollectionReplaced(event CollectionReplaced) {
	for _, p := range ps {
		p.PublishCollectionReplaced(event)
	}
}
