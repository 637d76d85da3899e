package frontend

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/andrescamacho/xnova-go/internal/application/engine/commands"
	"github.com/andrescamacho/xnova-go/internal/application/engine/queries"
	"github.com/andrescamacho/xnova-go/internal/application/mediator"
	"github.com/andrescamacho/xnova-go/internal/domain/colony"
	"github.com/andrescamacho/xnova-go/internal/domain/shared"
)

// OperationKind is the closed set of things a callback can ask for
type OperationKind string

const (
	OpStartJob     OperationKind = "start_job"
	OpCancelJob    OperationKind = "cancel_job"
	OpGetStatus    OperationKind = "get_status"
	OpGetResources OperationKind = "get_resources"
)

// maxCallbackLength matches the 64 byte limit chat platforms put on
// inline button payloads
const maxCallbackLength = 64

// Operation is a parsed callback
type Operation struct {
	Kind     OperationKind
	Category colony.Category
	Target   string
	Quantity int
	JobID    colony.JobID
}

// verbs maps the first callback segment to the category it starts a job in
var verbs = map[string]colony.Category{
	"build":    colony.CategoryBuilding,
	"building": colony.CategoryBuilding,
	"research": colony.CategoryResearch,
	"fleet":    colony.CategoryFleet,
	"ship":     colony.CategoryFleet,
	"defense":  colony.CategoryDefense,
}

// ParseCallback turns callback data such as "build:metal_mine",
// "fleet:light_fighter:5", "cancel:research:12", "status", "status:defense"
// or "resources" into an Operation
func ParseCallback(data string) (Operation, error) {
	data = strings.TrimSpace(data)
	if data == "" {
		return Operation{}, invalid("empty callback")
	}
	if len(data) > maxCallbackLength {
		return Operation{}, invalid(fmt.Sprintf("callback longer than %d bytes", maxCallbackLength))
	}

	parts := strings.Split(strings.ToLower(data), ":")
	verb, args := parts[0], parts[1:]

	switch verb {
	case "status":
		if len(args) > 1 {
			return Operation{}, invalid("status takes at most a category")
		}
		op := Operation{Kind: OpGetStatus}
		if len(args) == 1 {
			cat, err := parseCategory(args[0])
			if err != nil {
				return Operation{}, err
			}
			op.Category = cat
		}
		return op, nil

	case "resources":
		if len(args) != 0 {
			return Operation{}, invalid("resources takes no arguments")
		}
		return Operation{Kind: OpGetResources}, nil

	case "cancel":
		if len(args) != 2 {
			return Operation{}, invalid("expected cancel:<category>:<job id>")
		}
		cat, err := parseCategory(args[0])
		if err != nil {
			return Operation{}, err
		}
		id, err := strconv.ParseInt(args[1], 10, 64)
		if err != nil || id < 1 {
			return Operation{}, invalid("job id must be a positive integer: " + args[1])
		}
		return Operation{Kind: OpCancelJob, Category: cat, JobID: colony.JobID(id)}, nil
	}

	cat, ok := verbs[verb]
	if !ok {
		return Operation{}, invalid("unknown action: " + verb)
	}
	return parseStart(cat, args)
}

func parseStart(cat colony.Category, args []string) (Operation, error) {
	if len(args) == 0 || len(args) > 2 {
		return Operation{}, invalid(fmt.Sprintf("expected %s:<target>[:<quantity>]", cat))
	}
	if !isIdentifier(args[0]) {
		return Operation{}, invalid("malformed target: " + args[0])
	}
	op := Operation{Kind: OpStartJob, Category: cat, Target: args[0], Quantity: 1}
	if len(args) == 2 {
		qty, err := strconv.Atoi(args[1])
		if err != nil || qty < 1 {
			return Operation{}, invalid("quantity must be a positive integer: " + args[1])
		}
		op.Quantity = qty
	}
	return op, nil
}

func parseCategory(s string) (colony.Category, error) {
	cat, err := colony.ParseCategory(s)
	if err != nil {
		return "", invalid("unknown category: " + s)
	}
	return cat, nil
}

// isIdentifier accepts catalog ids: lower-case letters, digits and underscores
func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') && r != '_' {
			return false
		}
	}
	return true
}

func invalid(msg string) error {
	return shared.NewValidationError("callback", msg)
}

// Request builds the mediator request for the operation on behalf of playerID
func (op Operation) Request(playerID string) mediator.Request {
	switch op.Kind {
	case OpStartJob:
		return &commands.StartJobCommand{
			PlayerID: playerID,
			Category: string(op.Category),
			Target:   op.Target,
			Quantity: op.Quantity,
		}
	case OpCancelJob:
		return &commands.CancelJobCommand{
			PlayerID: playerID,
			Category: string(op.Category),
			JobID:    int64(op.JobID),
		}
	case OpGetResources:
		return &queries.GetResourcesQuery{PlayerID: playerID}
	default:
		return &queries.GetStatusQuery{PlayerID: playerID, Category: string(op.Category)}
	}
}

// String renders the operation back into callback form
func (op Operation) String() string {
	switch op.Kind {
	case OpStartJob:
		return fmt.Sprintf("%s:%s:%d", op.Category, op.Target, op.Quantity)
	case OpCancelJob:
		return fmt.Sprintf("cancel:%s:%d", op.Category, op.JobID)
	case OpGetResources:
		return "resources"
	default:
		if op.Category != "" {
			return "status:" + string(op.Category)
		}
		return "status"
	}
}
