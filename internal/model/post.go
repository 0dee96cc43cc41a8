package model

import "time"

// Post represents a row in the `posts` table.  AuthorID references the user
// that created the post and never changes afterwards.  IsHidden marks the
// post as invisible to everyone except its author (reads ignore the caller's
// role entirely; see the policy package for the exact rules).
type Post struct {
    ID        uint64    // posts.id
    AuthorID  uint64    // posts.author_id
    Title     string    // posts.title
    Content   string    // posts.content
    IsHidden  bool      // posts.is_hidden
    CreatedAt time.Time // posts.created_at
    UpdatedAt time.Time // posts.updated_at
}
