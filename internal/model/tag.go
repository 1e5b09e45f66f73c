package model

// Tag is a categorical label attached to artists. Count tracks how many
// artists carry the tag; Index is the display rank (count desc, name asc).
type Tag struct {
	Name  string `json:"tag"`
	Count int64  `json:"count"`
	Index int64  `json:"index"`
}

// ArtistTag pairs an artist with a tag name. Unique on the pair.
type ArtistTag struct {
	ArtistID int64  `json:"artist_id"`
	TagName  string `json:"tag_name"`
}
