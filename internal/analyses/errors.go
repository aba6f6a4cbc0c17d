package analyses

// PipelineError is a terminal pipeline failure whose message is safe to show
// to the end user. The wrapped cause stays in the logs.
type PipelineError struct {
	Message string
	Err     error
}

func (e *PipelineError) Error() string { return e.Message }
func (e *PipelineError) Unwrap() error { return e.Err }

const (
	msgEmptyExtraction  = "Failed to extract text from resume. The image may be blank or unreadable."
	msgUnprocessableDoc = "Unable to process this document format. Please try uploading a JPG or PNG image of your resume instead."
)
