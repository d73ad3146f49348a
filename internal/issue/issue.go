// Package issue defines the finding types produced by the checking stages
// and the aggregator that merges them into one ordered, deduplicated list.
package issue

import "encoding/json"

// Severity classifies the required action for a finding.
type Severity string

const (
	SeverityError      Severity = "error"      // must fix
	SeverityWarning    Severity = "warning"    // should fix
	SeveritySuggestion Severity = "suggestion" // optional polish
)

// rank orders severities for sorting; lower sorts first.
func (s Severity) rank() int {
	switch s {
	case SeverityError:
		return 0
	case SeverityWarning:
		return 1
	case SeveritySuggestion:
		return 2
	default:
		return 3
	}
}

// Valid reports whether s is one of the three defined severities.
func (s Severity) Valid() bool {
	return s == SeverityError || s == SeverityWarning || s == SeveritySuggestion
}

// Category names the class of problem a finding reports.
type Category string

const (
	CategoryNumeric      Category = "numeric-inconsistency"
	CategoryTerminology  Category = "terminology"
	CategoryFormat       Category = "format"
	CategoryTypo         Category = "typo"
	CategoryLandCode     Category = "land-code"
	CategoryCompleteness Category = "completeness"
)

// Issue is one finding. SourceIndex is nil for findings with no single
// location (completeness, document-wide notation mixing). Evidence carries
// the exact matched spans so a reviewer can verify the finding before
// accepting it.
type Issue struct {
	Severity    Severity `json:"severity"`
	Category    Category `json:"category"`
	Message     string   `json:"message"`
	SourceIndex *int     `json:"sourceIndex"`
	Evidence    []string `json:"evidence,omitempty"`
}

// At is a convenience constructor for a located issue.
func At(idx int, sev Severity, cat Category, msg string, evidence ...string) Issue {
	i := idx
	return Issue{Severity: sev, Category: cat, Message: msg, SourceIndex: &i, Evidence: evidence}
}

// Unlocated constructs an issue with no single document position.
func Unlocated(sev Severity, cat Category, msg string, evidence ...string) Issue {
	return Issue{Severity: sev, Category: cat, Message: msg, Evidence: evidence}
}

// AnnotationRequest is the human-curated input contract of the annotator:
// a subset of issues re-materialized as positioned review comments.
type AnnotationRequest struct {
	SourceIndex int      `json:"sourceIndex"`
	Comment     string   `json:"comment"`
	Severity    Severity `json:"severity"`
}

// RequestsFromIssues converts located issues straight into annotation
// requests, bypassing curation. Unlocated issues are skipped: they have no
// paragraph to attach to.
func RequestsFromIssues(issues []Issue) []AnnotationRequest {
	out := make([]AnnotationRequest, 0, len(issues))
	for _, is := range issues {
		if is.SourceIndex == nil {
			continue
		}
		out = append(out, AnnotationRequest{
			SourceIndex: *is.SourceIndex,
			Comment:     is.Message,
			Severity:    is.Severity,
		})
	}
	return out
}

// ParseRequests decodes a serialized AnnotationRequest list.
func ParseRequests(data []byte) ([]AnnotationRequest, error) {
	var reqs []AnnotationRequest
	if err := json.Unmarshal(data, &reqs); err != nil {
		return nil, err
	}
	return reqs, nil
}
