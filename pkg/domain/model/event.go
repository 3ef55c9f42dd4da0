package model

// EventName is the name of the workflow trigger (GITHUB_EVENT_NAME)
type EventName string

const (
	EventPullRequest       EventName = "pull_request"
	EventPullRequestTarget EventName = "pull_request_target"
)

// SupportedEvents lists the trigger events the action can run for
var SupportedEvents = []EventName{EventPullRequest, EventPullRequestTarget}

// Event represents the workflow run trigger
type Event struct {
	Name        EventName    // Retrieved from GITHUB_EVENT_NAME
	PullRequest *PullRequest // nil when the pull request could not be resolved
}

// IsSupported checks if the event is supported
func (e *Event) IsSupported() bool {
	for _, name := range SupportedEvents {
		if e.Name == name {
			return true
		}
	}
	return false
}
