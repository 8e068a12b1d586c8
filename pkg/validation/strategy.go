package validation

import (
	"context"
	"fmt"

	"github.com/barrister-bot/barrister/pkg/permissions"
	"github.com/barrister-bot/barrister/pkg/rules"
)

// EntityType identifies what kind of thing is being validated
type EntityType string

const (
	EntityStaff    EntityType = "staff"
	EntityCase     EntityType = "case"
	EntityJob      EntityType = "job"
	EntityRetainer EntityType = "retainer"
)

// Operation identifies what is being done to the entity
type Operation string

const (
	OperationHire    Operation = "hire"
	OperationPromote Operation = "promote"
	OperationDemote  Operation = "demote"
	OperationFire    Operation = "fire"
	OperationOpen    Operation = "open"
	OperationAssign  Operation = "assign"
	OperationSetLead Operation = "set_lead"
	OperationClose   Operation = "close"
	OperationPost    Operation = "post"
	OperationSign    Operation = "sign"
)

// Request is a generic validation request: who is acting, what kind of
// entity, what operation, and an open data bag the strategies interpret.
type Request struct {
	Context   permissions.Context
	Entity    EntityType
	Operation Operation
	Data      map[string]interface{}
}

// Strategy contributes one fragment to a merged validation result.
// Strategies are independent and must not mutate the request.
type Strategy interface {
	Name() string
	Validate(ctx context.Context, req Request) rules.Result
}

// StrategyFunc adapts a function to the Strategy interface
type StrategyFunc struct {
	StrategyName string
	Fn           func(ctx context.Context, req Request) rules.Result
}

func (s StrategyFunc) Name() string { return s.StrategyName }

func (s StrategyFunc) Validate(ctx context.Context, req Request) rules.Result {
	return s.Fn(ctx, req)
}

// StringField extracts a non-empty string from the request data
func StringField(data map[string]interface{}, key string) (string, bool) {
	v, ok := data[key]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	if !ok || s == "" {
		return "", false
	}
	return s, true
}

// StringSliceField extracts a string slice from the request data. Both
// []string and []interface{} of strings are accepted, since decoded JSON
// produces the latter.
func StringSliceField(data map[string]interface{}, key string) ([]string, bool) {
	v, ok := data[key]
	if !ok {
		return nil, false
	}
	switch vv := v.(type) {
	case []string:
		return vv, true
	case []interface{}:
		out := make([]string, 0, len(vv))
		for _, item := range vv {
			s, ok := item.(string)
			if !ok {
				return nil, false
			}
			out = append(out, s)
		}
		return out, true
	}
	return nil, false
}

// RequireFields is a schema strategy that checks the listed keys are
// present non-empty strings
func RequireFields(fields ...string) Strategy {
	return StrategyFunc{
		StrategyName: "required-fields",
		Fn: func(ctx context.Context, req Request) rules.Result {
			result := rules.OK()
			for _, f := range fields {
				if _, ok := StringField(req.Data, f); !ok {
					result = result.Merge(rules.Fail(fmt.Sprintf("missing or empty field: %s", f)))
				}
			}
			return result
		},
	}
}
