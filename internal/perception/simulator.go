// Package perception simulates the output of a multi-modal perception
// pipeline (speech-to-text, vision). There is no real model behind it: each
// declared file type maps to a fixed canned text payload that downstream
// ontology building treats as extracted content.
package perception

import (
	"fmt"
	"strings"

	"github.com/scrypster/brahma/pkg/types"
)

// UnsupportedMarker is the historical sentinel phrase embedded in the text of
// an unsupported extraction. Control flow no longer depends on it (callers
// branch on Result.Supported), but the phrase is preserved for compatibility
// with stored transcripts and older clients.
const UnsupportedMarker = "not supported"

// Result is the typed outcome of a simulated extraction. Supported is false
// when the declared file type has no extraction branch; Text is always set.
type Result struct {
	Text      string
	Supported bool
}

// Simulate returns the canned extraction for a declared file type. It is
// total over the FileType enum: unknown types fall through to the
// unsupported branch rather than erroring.
func Simulate(fileName string, fileType types.FileType) Result {
	switch fileType {
	case types.FileTypePDF:
		return Result{
			Supported: true,
			Text: fmt.Sprintf("This is a simulated textual summary for the PDF document named %q. "+
				"For this simulation, we'll imagine it contains a project proposal outlining key objectives, "+
				"a timeline, and budget allocations for developing a new machine learning model.", fileName),
		}
	case types.FileTypeAudio, types.FileTypeVideo:
		return Result{
			Supported: true,
			Text: fmt.Sprintf("[Simulated Whisper Transcript from %s]: \"Our quarterly earnings report shows "+
				"a revenue growth of 15%%, primarily driven by the strong market performance of our new AI-powered "+
				"analytics platform. Customer feedback has been overwhelmingly positive, highlighting the intuitive "+
				"user interface and the actionable insights it provides.\" [Simulated DeepFace Emotion: Pleased]", fileName),
		}
	case types.FileTypeText, types.FileTypeMD:
		return Result{
			Supported: true,
			Text: fmt.Sprintf("This is a sample of simulated text from the file %q. It contains notes on "+
				"project management, including the importance of clear communication and setting realistic deadlines.", fileName),
		}
	default:
		return Result{
			Supported: false,
			Text:      fmt.Sprintf("Text extraction is %s for the file type: %s for %s.", UnsupportedMarker, fileType, fileName),
		}
	}
}

// IsUnsupportedText reports whether a stored transcript carries the legacy
// unsupported sentinel. Kept for compatibility with transcripts persisted
// before Result.Supported existed.
func IsUnsupportedText(text string) bool {
	return strings.Contains(text, UnsupportedMarker)
}
