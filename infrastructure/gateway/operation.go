package gateway

import (
	"fmt"
	"regexp"
	"rosterhub/domain/event"
	"rosterhub/errors"
)

const (
	FieldChatCreated = "chatCreated"
	FieldChatSeen    = "chatSeen"
)

var (
	fieldPattern    = regexp.MustCompile(`\b(chatCreated|chatSeen)\b`)
	inlineToPattern = regexp.MustCompile(`chatSeen\s*\(\s*to\s*:\s*"([^"]+)"`)
)

// operation is a parsed subscription and the filter applied to its events.
type operation struct {
	field          string
	topic          event.Topic
	to             string
	organizationID string
	viewerID       string
	scoped         bool
}

// parseOperation resolves the subscription field from the query (or the
// operation name) and its arguments from the variables or inline literals.
func parseOperation(p SubscribePayload, viewerID string, scopeCreated bool) (operation, error) {
	field := ""
	if m := fieldPattern.FindStringSubmatch(p.Query); m != nil {
		field = m[1]
	} else if p.OperationName == FieldChatCreated || p.OperationName == FieldChatSeen {
		field = p.OperationName
	}

	op := operation{
		field:          field,
		organizationID: stringVar(p.Variables, "organizationId"),
		viewerID:       viewerID,
	}
	switch field {
	case FieldChatCreated:
		op.topic = event.ChatCreatedTopic
		op.scoped = scopeCreated
	case FieldChatSeen:
		op.topic = event.ChatSeenTopic
		op.to = stringVar(p.Variables, "to")
		if op.to == "" {
			if m := inlineToPattern.FindStringSubmatch(p.Query); m != nil {
				op.to = m[1]
			}
		}
		if op.to == "" {
			return operation{}, fmt.Errorf("%w: chatSeen requires a 'to' argument", errors.ErrInvalidInput)
		}
	default:
		return operation{}, fmt.Errorf("%w: %q", errors.ErrUnknownOperation, p.OperationName)
	}
	return op, nil
}

// accepts tells whether the event is forwarded to this subscription.
func (op operation) accepts(evt event.Event) bool {
	if evt.Topic != op.topic {
		return false
	}
	if op.organizationID != "" && evt.OrganizationID != op.organizationID {
		return false
	}
	switch op.topic {
	case event.ChatCreatedTopic:
		return !op.scoped || evt.Chat.Involves(op.viewerID)
	case event.ChatSeenTopic:
		return evt.Chat.To.ID == op.to
	default:
		return false
	}
}

func stringVar(vars map[string]any, name string) string {
	s, _ := vars[name].(string)
	return s
}
