package validation

import (
	"context"
	"fmt"

	"github.com/barrister-bot/barrister/pkg/cases"
	"github.com/barrister-bot/barrister/pkg/observability"
	"github.com/barrister-bot/barrister/pkg/rules"
	"github.com/barrister-bot/barrister/pkg/staff"
)

type registrationKey struct {
	entity    EntityType
	operation Operation
}

// Service routes a validation request to the strategies registered for its
// entity/operation pair and merges their fragments. Schema strategies run
// first; a schema failure short-circuits the business strategies, since
// business rules on structurally invalid input are meaningless.
type Service struct {
	schema   map[registrationKey][]Strategy
	business map[registrationKey][]Strategy
	logger   *observability.Logger
}

// NewService creates an empty dispatch service
func NewService(logger *observability.Logger) *Service {
	if logger == nil {
		logger = observability.NewLogger(observability.InfoLevel, nil)
	}
	return &Service{
		schema:   make(map[registrationKey][]Strategy),
		business: make(map[registrationKey][]Strategy),
		logger:   logger,
	}
}

// RegisterSchema adds a schema-shape strategy for an entity/operation pair
func (s *Service) RegisterSchema(entity EntityType, op Operation, strategy Strategy) {
	key := registrationKey{entity, op}
	s.schema[key] = append(s.schema[key], strategy)
}

// RegisterBusiness adds a business-rule strategy for an entity/operation pair
func (s *Service) RegisterBusiness(entity EntityType, op Operation, strategy Strategy) {
	key := registrationKey{entity, op}
	s.business[key] = append(s.business[key], strategy)
}

// Validate runs all strategies registered for the request's entity and
// operation. A request with no registered strategies is rejected rather
// than silently passed.
func (s *Service) Validate(ctx context.Context, req Request) rules.Result {
	key := registrationKey{req.Entity, req.Operation}
	schema, business := s.schema[key], s.business[key]
	if len(schema) == 0 && len(business) == 0 {
		return rules.Fail(fmt.Sprintf("no validation registered for %s/%s", req.Entity, req.Operation))
	}
	if !req.Context.Valid() {
		return rules.Fail("invalid permission context")
	}

	merged := rules.OK()
	for _, strategy := range schema {
		merged = merged.Merge(strategy.Validate(ctx, req))
	}
	if !merged.Valid {
		s.logger.WithGuild(req.Context.GuildID).
			WithField("entity", string(req.Entity)).
			WithField("operation", string(req.Operation)).
			Debug("schema validation failed, skipping business rules")
		return merged
	}
	for _, strategy := range business {
		merged = merged.Merge(strategy.Validate(ctx, req))
	}
	return merged
}

// NewDefaultService creates a dispatch service with the standard strategy
// set wired to the business rule service
func NewDefaultService(ruleSvc *rules.Service, logger *observability.Logger) *Service {
	s := NewService(logger)

	s.RegisterSchema(EntityStaff, OperationHire, RequireFields("user_id", "role"))
	s.RegisterSchema(EntityStaff, OperationHire, validRoleField("role"))
	s.RegisterBusiness(EntityStaff, OperationHire, StrategyFunc{
		StrategyName: "role-limit",
		Fn: func(ctx context.Context, req Request) rules.Result {
			role, _ := StringField(req.Data, "role")
			return ruleSvc.ValidateRoleLimit(ctx, req.Context, staff.Role(role))
		},
	})

	s.RegisterSchema(EntityStaff, OperationPromote, RequireFields("user_id", "current_role", "new_role"))
	s.RegisterSchema(EntityStaff, OperationPromote, validRoleField("new_role"))
	s.RegisterBusiness(EntityStaff, OperationPromote, StrategyFunc{
		StrategyName: "promotion-direction",
		Fn: func(ctx context.Context, req Request) rules.Result {
			userID, _ := StringField(req.Data, "user_id")
			current, _ := StringField(req.Data, "current_role")
			next, _ := StringField(req.Data, "new_role")
			return ruleSvc.ValidatePromotion(ctx, req.Context, userID, staff.Role(current), staff.Role(next))
		},
	})
	s.RegisterBusiness(EntityStaff, OperationPromote, StrategyFunc{
		StrategyName: "role-limit",
		Fn: func(ctx context.Context, req Request) rules.Result {
			role, _ := StringField(req.Data, "new_role")
			return ruleSvc.ValidateRoleLimit(ctx, req.Context, staff.Role(role))
		},
	})

	s.RegisterSchema(EntityStaff, OperationDemote, RequireFields("user_id", "current_role", "new_role"))
	s.RegisterSchema(EntityStaff, OperationDemote, validRoleField("new_role"))
	s.RegisterBusiness(EntityStaff, OperationDemote, StrategyFunc{
		StrategyName: "demotion-direction",
		Fn: func(ctx context.Context, req Request) rules.Result {
			userID, _ := StringField(req.Data, "user_id")
			current, _ := StringField(req.Data, "current_role")
			next, _ := StringField(req.Data, "new_role")
			return ruleSvc.ValidateDemotion(ctx, req.Context, userID, staff.Role(current), staff.Role(next))
		},
	})

	s.RegisterSchema(EntityStaff, OperationFire, RequireFields("user_id"))

	s.RegisterSchema(EntityCase, OperationOpen, RequireFields("client_id", "title"))
	s.RegisterBusiness(EntityCase, OperationOpen, StrategyFunc{
		StrategyName: "client-case-limit",
		Fn: func(ctx context.Context, req Request) rules.Result {
			clientID, _ := StringField(req.Data, "client_id")
			return ruleSvc.ValidateClientCaseLimit(ctx, req.Context, clientID)
		},
	})

	s.RegisterSchema(EntityCase, OperationAssign, RequireFields("case_number", "user_id"))

	s.RegisterSchema(EntityCase, OperationSetLead, RequireFields("case_number", "user_id"))
	s.RegisterBusiness(EntityCase, OperationSetLead, StrategyFunc{
		StrategyName: "lead-attorney-eligibility",
		Fn: func(ctx context.Context, req Request) rules.Result {
			userID, _ := StringField(req.Data, "user_id")
			caseNumber, _ := StringField(req.Data, "case_number")
			assigned, _ := StringSliceField(req.Data, "assigned_lawyers")
			c := &cases.Case{CaseNumber: caseNumber, GuildID: req.Context.GuildID, AssignedLawyers: assigned}
			return ruleSvc.ValidateLeadAttorney(ctx, req.Context, c, userID)
		},
	})

	s.RegisterSchema(EntityCase, OperationClose, RequireFields("case_number", "result"))
	s.RegisterSchema(EntityCase, OperationClose, StrategyFunc{
		StrategyName: "valid-result",
		Fn: func(ctx context.Context, req Request) rules.Result {
			result, _ := StringField(req.Data, "result")
			if !cases.ValidResult(cases.Result(result)) {
				return rules.Fail(fmt.Sprintf("unknown case result: %s", result))
			}
			return rules.OK()
		},
	})

	s.RegisterSchema(EntityJob, OperationPost, RequireFields("title", "role"))
	s.RegisterSchema(EntityJob, OperationPost, validRoleField("role"))

	s.RegisterSchema(EntityRetainer, OperationSign, RequireFields("client_id"))

	return s
}

func validRoleField(key string) Strategy {
	return StrategyFunc{
		StrategyName: "valid-role",
		Fn: func(ctx context.Context, req Request) rules.Result {
			role, ok := StringField(req.Data, key)
			if !ok {
				// required-fields already reports the absence
				return rules.OK()
			}
			if !staff.ValidRole(role) {
				return rules.Fail(fmt.Sprintf("unknown staff role: %s", role))
			}
			return rules.OK()
		},
	}
}
