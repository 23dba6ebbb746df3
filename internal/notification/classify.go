package notification

import (
	"fmt"
	"regexp"
	"strings"
)

// Color is the display color category of a record.
type Color string

const (
	ColorGreen  Color = "green"
	ColorBlue   Color = "blue"
	ColorOrange Color = "orange"
)

// Display is the classified presentation form of a record.
type Display struct {
	Title       string
	Description string
	Color       Color
}

// Status-change detection signals. Any single one is sufficient:
//
//	signal                         source
//	------------------------------ ---------------------------------
//	Kind == KindStatusChange       explicit record kind
//	message contains marker phrase free-text produced by the server
//	message contains quoted token  raw status leaked into the text
const statusMarkerPhrase = "민원 상태가"

var quotedStatusPattern = regexp.MustCompile(`'(UNPROCESSED|PENDING|PROCESSING|IN_PROGRESS|COMPLETED|DONE)'`)

// statusTokenPattern scans uppercased message text for any known status
// token when the structured hint fields are empty.
var statusTokenPattern = regexp.MustCompile(`(?i)(UNPROCESSED|PENDING|RECEIVED|REPORTED|SUBMITTED|PROCESSING|IN_PROGRESS|INPROGRESS|COMPLETED|DONE|RESOLVED)`)

// statusVocabulary is the fixed set of recognized status tokens. When a
// normalized text yields several candidates, the first one in the text wins.
var statusVocabulary = []string{
	"UNPROCESSED", "PENDING", "RECEIVED", "REPORTED", "SUBMITTED",
	"PROCESSING", "IN_PROGRESS", "INPROGRESS",
	"COMPLETED", "DONE", "RESOLVED",
}

// statusBuckets maps each vocabulary token to one of the three display
// buckets. Tokens outside the table yield no bucket and fall through to the
// generic "상태 변경" label.
var statusBuckets = map[string]string{
	"UNPROCESSED": "미처리",
	"PENDING":     "미처리",
	"RECEIVED":    "미처리",
	"REPORTED":    "미처리",
	"SUBMITTED":   "미처리",

	"PROCESSING":  "처리중",
	"IN_PROGRESS": "처리중",

	"COMPLETED": "처리완료",
	"DONE":      "처리완료",
	"RESOLVED":  "처리완료",
}

// IsStatusChange reports whether the record is a status-change notification.
// The three signals are independent; any one of them is sufficient.
func IsStatusChange(n *Notification) bool {
	if n.Kind == KindStatusChange {
		return true
	}
	if n.Message == "" {
		return false
	}
	return strings.Contains(n.Message, statusMarkerPhrase) ||
		quotedStatusPattern.MatchString(n.Message)
}

// mapStatusBucket normalizes an arbitrary raw value to a display bucket.
// The value is uppercased, every character outside [A-Z_] becomes a
// separator, and the first token found in the vocabulary wins, scanning in
// message order (falling back to the first token of any kind). INPROGRESS is
// folded into IN_PROGRESS. An empty result means the value carries no
// recognizable status.
func mapStatusBucket(raw string) string {
	normalized := strings.ToUpper(raw)
	normalized = strings.Map(func(r rune) rune {
		if (r >= 'A' && r <= 'Z') || r == '_' {
			return r
		}
		return ' '
	}, normalized)

	tokens := strings.Fields(normalized)
	if len(tokens) == 0 {
		return ""
	}

	pick := ""
	for _, token := range tokens {
		for _, candidate := range statusVocabulary {
			if token == candidate {
				pick = token
				break
			}
		}
		if pick != "" {
			break
		}
	}
	if pick == "" {
		pick = tokens[0]
	}
	if pick == "INPROGRESS" {
		pick = "IN_PROGRESS"
	}

	return statusBuckets[pick]
}

// statusHint returns the first non-empty explicit status field, checking the
// top-level hints before the nested equivalents.
func statusHint(n *Notification) string {
	if n.NewStatus != "" {
		return n.NewStatus
	}
	if n.Status != "" {
		return n.Status
	}
	if n.Data != nil {
		if n.Data.NewStatus != "" {
			return n.Data.NewStatus
		}
		if n.Data.Status != "" {
			return n.Data.Status
		}
	}
	return ""
}

// classifyStatus derives the display bucket for a status-change record via
// the priority chain: explicit structured fields, then a token scan over the
// message, then normalizing the raw message itself. Total lookup failure
// yields the generic "상태 변경" label rather than an error.
func classifyStatus(n *Notification) Display {
	bucket := mapStatusBucket(statusHint(n))

	if bucket == "" {
		if match := statusTokenPattern.FindString(strings.ToUpper(n.Message)); match != "" {
			bucket = mapStatusBucket(match)
		}
	}
	if bucket == "" {
		bucket = mapStatusBucket(n.Message)
	}
	if bucket == "" {
		bucket = "상태 변경"
	}

	return Display{
		Title:       fmt.Sprintf("민원 상태가 %q로 변경되었습니다", bucket),
		Description: "담당 기관에서 민원 상태를 업데이트했습니다.",
		Color:       ColorGreen,
	}
}

// classifyAnswer distinguishes an edited answer from a newly posted one via
// edit-related substrings in the message or an edit/update marker in the
// action/event hint.
func classifyAnswer(n *Notification) Display {
	content := strings.ToLower(n.Message)
	action := n.Action
	if action == "" {
		action = n.Event
	}
	actionUpper := strings.ToUpper(action)

	isUpdate := strings.Contains(content, "수정") ||
		strings.Contains(content, "update") ||
		strings.Contains(content, "modify") ||
		strings.Contains(actionUpper, "UPDATE") ||
		strings.Contains(actionUpper, "EDIT")

	if isUpdate {
		return Display{
			Title:       "답변이 수정되었습니다",
			Description: "민원에 대한 담당자 답변이 수정되었습니다.",
			Color:       ColorBlue,
		}
	}
	return Display{
		Title:       "답변이 등록되었습니다",
		Description: "민원에 대한 담당자 답변이 등록되었습니다.",
		Color:       ColorBlue,
	}
}

// classifyManager extracts the assignee name by stripping a leading
// "label:" prefix from the message; without a prefix the raw message is the
// name.
func classifyManager(n *Notification) Display {
	name := n.Message
	if idx := strings.LastIndex(name, ":"); idx >= 0 {
		name = strings.TrimSpace(name[idx+1:])
	}
	return Display{
		Title:       "담당자가 배정되었습니다",
		Description: "담당자: " + name,
		Color:       ColorOrange,
	}
}

// Classify turns a record into its display form. It is pure and total: it
// never fails and always returns a non-empty title.
func Classify(n *Notification) Display {
	switch {
	case IsStatusChange(n):
		return classifyStatus(n)
	case n.Kind == KindAnswerPosted:
		return classifyAnswer(n)
	case n.Kind == KindManagerAssigned:
		return classifyManager(n)
	default:
		title := n.Message
		if title == "" {
			title = "알림"
		}
		return Display{Title: title, Color: colorForKind(n.Kind)}
	}
}

// colorForKind maps the non-status kinds to their dot color.
func colorForKind(kind Kind) Color {
	switch kind {
	case KindSuccess:
		return ColorGreen
	case KindAnswerPosted, KindInfo:
		return ColorBlue
	case KindManagerAssigned, KindWarning:
		return ColorOrange
	default:
		return ColorBlue
	}
}

// ColorCategory returns the record's dot color. Status-change records are
// always green regardless of kind.
func ColorCategory(n *Notification) Color {
	if IsStatusChange(n) {
		return ColorGreen
	}
	return colorForKind(n.Kind)
}
