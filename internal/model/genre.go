package model

// Genre is a music genre tag that rooms can carry.  Corresponds to a
// row in the `genres` table; rooms reference genres through the
// `room_genres` join table.
type Genre struct {
	ID   uint64 `json:"id"`   // genres.id
	Name string `json:"name"` // genres.name
}
