package reddit

import (
	"bytes"
	"encoding/json"
)

// Wire types for Reddit's public JSON listings. Only the fields the crawler
// consumes are mapped.

type thing struct {
	Kind string          `json:"kind"`
	Data json.RawMessage `json:"data"`
}

type listing struct {
	Children []thing `json:"children"`
}

type postData struct {
	ID          string      `json:"id"`
	Subreddit   string      `json:"subreddit"`
	Title       string      `json:"title"`
	Selftext    string      `json:"selftext"`
	Author      string      `json:"author"`
	Score       int         `json:"score"`
	CreatedUTC  float64     `json:"created_utc"`
	Edited      editedField `json:"edited"`
	NumComments int         `json:"num_comments"`
	Permalink   string      `json:"permalink"`
}

type commentData struct {
	ID          string       `json:"id"`
	ParentID    string       `json:"parent_id"`
	Author      string       `json:"author"`
	Body        string       `json:"body"`
	Score       int          `json:"score"`
	CreatedUTC  float64      `json:"created_utc"`
	Edited      editedField  `json:"edited"`
	IsSubmitter bool         `json:"is_submitter"`
	Replies     repliesField `json:"replies"`
}

// editedField decodes Reddit's edited marker, which is either false or the
// Unix timestamp of the last edit. Zero means never edited.
type editedField int64

func (e *editedField) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if bytes.Equal(trimmed, []byte("false")) || bytes.Equal(trimmed, []byte("null")) {
		*e = 0
		return nil
	}
	if bytes.Equal(trimmed, []byte("true")) {
		// Legacy posts report true without a timestamp.
		*e = 1
		return nil
	}
	var ts float64
	if err := json.Unmarshal(trimmed, &ts); err != nil {
		return err
	}
	*e = editedField(int64(ts))
	return nil
}

// repliesField decodes a comment's replies, which Reddit sends as an empty
// string when there are none and as a nested Listing otherwise.
type repliesField struct {
	listing *listing
}

func (r *repliesField) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] == '"' || bytes.Equal(trimmed, []byte("null")) {
		r.listing = nil
		return nil
	}
	var t thing
	if err := json.Unmarshal(trimmed, &t); err != nil {
		return err
	}
	var l listing
	if err := json.Unmarshal(t.Data, &l); err != nil {
		return err
	}
	r.listing = &l
	return nil
}
