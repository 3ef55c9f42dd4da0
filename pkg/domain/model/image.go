package model

// TargetKind tells how a capture target is rendered
type TargetKind string

const (
	TargetURL      TargetKind = "url"
	TargetHTMLFile TargetKind = "html_file"
)

// CaptureTarget is a URL or file path to be screenshotted
type CaptureTarget struct {
	DisplayName string
	Kind        TargetKind
}

// CapturedImage is an image waiting in an upload queue
type CapturedImage struct {
	DisplayName string // Original URL or path shown in the comment
	Filename    string // Generated upload filename
	Data        []byte
}

// UploadedImage is an image that reached the backing store
type UploadedImage struct {
	DisplayName string
	Filename    string
	URL         string
}
