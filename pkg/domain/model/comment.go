package model

import "time"

// Comment is an issue comment on the pull request
type Comment struct {
	ID        int64
	Body      string
	Author    string // Login of the comment author
	IssueURL  string // API URL of the issue the comment belongs to
	HTMLURL   string // Browser URL of the comment
	CreatedAt time.Time
}
