package reddit

import "time"

// Comment is a partial Reddit t1 document with the fields the bot uses
type Comment struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	Author     string  `json:"author"`
	Body       string  `json:"body"`
	Subreddit  string  `json:"subreddit"`
	Permalink  string  `json:"permalink"`
	LinkID     string  `json:"link_id"`
	CreatedUTC float64 `json:"created_utc"`
}

// Created returns the comment creation time in UTC
func (c Comment) Created() time.Time {
	sec := int64(c.CreatedUTC)
	return time.Unix(sec, int64((c.CreatedUTC-float64(sec))*1e9)).UTC()
}

// FullName returns the thing id used as a reply target
func (c Comment) FullName() string {
	if c.Name != "" {
		return c.Name
	}
	return "t1_" + c.ID
}

// Account is the subset of /api/v1/me the bot checks
type Account struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type thing[T any] struct {
	Kind string `json:"kind"`
	Data T      `json:"data"`
}

type listing[T any] struct {
	Kind string `json:"kind"`
	Data struct {
		After    string     `json:"after"`
		Before   string     `json:"before"`
		Children []thing[T] `json:"children"`
	} `json:"data"`
}

// replyEnvelope is the api_type=json response of /api/comment.
// errors entries look like ["RATELIMIT", "you are doing that too much", "ratelimit"]
type replyEnvelope struct {
	JSON struct {
		Errors [][]any `json:"errors"`
		Data   struct {
			Things []thing[Comment] `json:"things"`
		} `json:"data"`
	} `json:"json"`
}
