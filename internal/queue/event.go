// Package queue defines message payloads exchanged over the message broker.
package queue

// Post lifecycle event kinds.
const (
    PostCreated = "post.created"
    PostUpdated = "post.updated"
    PostDeleted = "post.deleted"
)

// PostEvent is published when a post is created, updated or deleted.  It
// carries enough information for downstream consumers (feeds, search
// indexing, notifications) to react without querying the primary database.
// Hidden posts still produce events; consumers are trusted services behind
// the broker, not API clients, so the visibility rules do not apply to them.
type PostEvent struct {
    Kind       string `json:"kind"`
    PostID     uint64 `json:"post_id"`
    AuthorID   uint64 `json:"author_id"`
    Title      string `json:"title,omitempty"`
    IsHidden   bool   `json:"is_hidden"`
    OccurredAt string `json:"occurred_at"`
}
