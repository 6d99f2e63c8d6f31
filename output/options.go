package output

type Options struct {
	PrintRequestHeader  bool
	PrintRequestBody    bool
	PrintResponseHeader bool
	PrintResponseBody   bool

	EnableFormat bool
	EnableColor  bool

	// Stream prints the response body as it arrives instead of buffering it.
	Stream bool

	Download bool
	// DownloadToStdout is set when stdout is redirected in download mode;
	// the body is written there instead of to a file.
	DownloadToStdout bool
	OutputFile       string
	Resume           bool
}
