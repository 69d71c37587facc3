// Package agent orchestrates one natural-language filter request:
// record the user turn, resolve the intent, resolve the target column
// group, apply the reconciliation operation, sanitize, respond.
package agent

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	apperrors "filter-agent/internal/common/errors"
	"filter-agent/internal/common/logger"
	"filter-agent/internal/common/metrics"
	"filter-agent/internal/conversation"
	"filter-agent/internal/filter/engine"
	"filter-agent/internal/filter/resolver"
	"filter-agent/internal/filter/sanitize"
	"filter-agent/internal/filter/state"
	"filter-agent/internal/intent"
	"filter-agent/internal/lookup"
	"filter-agent/internal/models"
)

const (
	clarificationMessage = "Multiple column groups found. Please specify which one should be updated."
	maxClarifyValues     = 10
)

type Agent struct {
	intents       intent.Resolver
	values        lookup.Fetcher
	history       conversation.History
	groups        *resolver.Resolver
	engine        *engine.Engine
	historyWindow int
	logger        logger.Logger
}

func New(
	intents intent.Resolver,
	values lookup.Fetcher,
	history conversation.History,
	historyWindow int,
	log logger.Logger,
) *Agent {
	return &Agent{
		intents:       intents,
		values:        values,
		history:       history,
		groups:        resolver.New(log),
		engine:        engine.New(log),
		historyWindow: historyWindow,
		logger:        log.WithFields(map[string]interface{}{"component": "filter-agent"}),
	}
}

// Process runs the full pipeline for one request. The returned value is
// one of models.FilterResponse, models.ErrorResponse or
// models.ClarificationResponse.
func (a *Agent) Process(ctx context.Context, req *models.FilterRequest) interface{} {
	conversationID := req.ConversationID
	if conversationID == "" {
		conversationID = uuid.NewString()
	}

	a.recordTurn(ctx, conversationID, "user", req.Query)

	sess := state.New(req.Query, req.AccountSummary, req.AvailableFilters, req.AuthSession)

	decision, err := a.resolveIntent(ctx, sess, conversationID)
	if err != nil {
		return a.finish(ctx, conversationID, a.errorResponse(err, conversationID))
	}

	return a.finish(ctx, conversationID, a.dispatch(ctx, sess, decision, conversationID))
}

// SelectGroup handles the clarification follow-up: pin the named column
// group, then re-run the original query against it.
func (a *Agent) SelectGroup(ctx context.Context, req *models.SelectGroupRequest) interface{} {
	conversationID := req.ConversationID
	if conversationID == "" {
		conversationID = uuid.NewString()
	}

	a.recordTurn(ctx, conversationID, "user", req.ColumnGroupName)

	sess := state.New(req.Query, req.AccountSummary, req.AvailableFilters, req.AuthSession)
	if !sess.HasReport() {
		return a.finish(ctx, conversationID, a.errorResponse(apperrors.NewNoReportStateError(), conversationID))
	}

	groupID, err := a.groups.SelectGroup(req.ColumnGroupName, sess.Summary)
	if err != nil {
		return a.finish(ctx, conversationID, a.errorResponse(err, conversationID))
	}
	sess.SetTargetGroup(groupID)

	decision, err := a.resolveIntent(ctx, sess, conversationID)
	if err != nil {
		return a.finish(ctx, conversationID, a.errorResponse(err, conversationID))
	}

	return a.finish(ctx, conversationID, a.dispatch(ctx, sess, decision, conversationID))
}

func (a *Agent) resolveIntent(ctx context.Context, sess *state.Session, conversationID string) (*intent.Decision, error) {
	ireq := &intent.Request{
		Query:            sess.Query,
		AvailableFilters: sess.AvailableFilters,
	}

	// Seed the model with the current filter state when the target is
	// unambiguous; otherwise it decides from metadata and history alone.
	if target := sess.TargetGroup(); target != nil {
		ireq.CurrentFilters = target.Filters
	} else if sess.HasReport() && len(sess.Summary.ColumnGroups) == 1 {
		ireq.CurrentFilters = sess.Summary.ColumnGroups[0].Filters
	}

	if history, err := a.history.Recent(ctx, conversationID, a.historyWindow); err == nil {
		ireq.History = history
	} else {
		a.logger.Warn("conversation history unavailable", map[string]interface{}{
			"conversationId": conversationID,
			"error":          err.Error(),
		})
	}

	decision, err := a.intents.Resolve(ctx, ireq)
	if err != nil {
		if errors.Is(err, intent.ErrIntentAPITimeout) {
			return nil, apperrors.NewIntentAPITimeoutError()
		}
		return nil, apperrors.NewIntentParsingFailedError(err)
	}
	return decision, nil
}

func (a *Agent) dispatch(ctx context.Context, sess *state.Session, decision *intent.Decision, conversationID string) interface{} {
	args := decision.Arguments

	switch decision.Operation {
	case intent.OpCasual:
		return a.successResponse(sess, decision.Message, conversationID)

	case intent.OpClarify:
		return a.successResponse(sess, a.clarifyMessage(ctx, sess, decision), conversationID)

	case intent.OpSelectGroup:
		if !sess.HasReport() {
			return a.errorResponse(apperrors.NewNoReportStateError(), conversationID)
		}
		name := args.GroupName
		if name == "" {
			name = args.Name
		}
		groupID, err := a.groups.SelectGroup(name, sess.Summary)
		if err != nil {
			return a.errorResponse(err, conversationID)
		}
		sess.SetTargetGroup(groupID)
		return a.successResponse(sess, decision.Message, conversationID)

	case intent.OpAdd, intent.OpModify, intent.OpRemove, intent.OpRemoveMany, intent.OpRemoveAll, intent.OpAddOr:
		if resp := a.ensureTarget(sess, conversationID); resp != nil {
			return resp
		}

		in := engine.Input{
			Name:     args.Name,
			Label:    args.Label,
			Value:    args.Value,
			Values:   args.Values,
			Type:     args.Type,
			Operator: args.Operator,
			Message:  decision.Message,
		}

		var err error
		switch decision.Operation {
		case intent.OpAdd:
			err = a.engine.Add(sess, in)
		case intent.OpModify:
			err = a.engine.Modify(sess, in)
		case intent.OpRemove:
			err = a.engine.Remove(sess, in)
		case intent.OpRemoveMany:
			err = a.engine.RemoveMany(sess, args.FilterTypes)
		case intent.OpRemoveAll:
			err = a.engine.RemoveAll(sess)
		case intent.OpAddOr:
			err = a.engine.AddOr(sess, in)
		}
		if err != nil {
			return a.errorResponse(err, conversationID)
		}

		metrics.OperationsApplied.WithLabelValues(decision.Operation).Inc()
		return a.successResponse(sess, decision.Message, conversationID)

	default:
		a.logger.Warn("unknown operation from intent resolver", map[string]interface{}{
			"operation": decision.Operation,
		})
		return a.errorResponse(&apperrors.StandardError{
			Code:    apperrors.ErrCodeUnknownOperation,
			Message: "I couldn't map your request to a filter operation",
		}, conversationID)
	}
}

// ensureTarget runs column-group resolution once per request. Returns a
// non-nil response when processing must stop (clarification or failure)
// before any mutation happens.
func (a *Agent) ensureTarget(sess *state.Session, conversationID string) interface{} {
	if !sess.HasReport() {
		return a.errorResponse(apperrors.NewNoReportStateError(), conversationID)
	}
	if sess.Targeted() {
		return nil
	}

	res := a.groups.Resolve(sess.Query, sess.Summary)
	if res.Err != nil {
		if errors.Is(res.Err, resolver.ErrNoGroups) {
			return a.errorResponse(apperrors.NewNoReportStateError(), conversationID)
		}
		return a.errorResponse(res.Err, conversationID)
	}
	if res.NeedsClarification() {
		metrics.ClarificationsRequested.Inc()
		return models.ClarificationResponse{
			Type:            models.ResponseTypeClarification,
			Message:         clarificationMessage,
			AvailableGroups: res.Candidates,
			ConversationID:  conversationID,
		}
	}

	sess.SetTargetGroup(res.GroupID)
	return nil
}

// clarifyMessage formats a value-clarification turn: the narrative plus up
// to maxClarifyValues options, fetched from the lookup API when the intent
// resolver didn't supply them.
func (a *Agent) clarifyMessage(ctx context.Context, sess *state.Session, decision *intent.Decision) string {
	args := decision.Arguments
	values := args.AvailableValues
	if len(values) == 0 {
		if af, ok := sess.FindFilter(args.Name, args.Label); ok {
			values = a.values.FetchValues(ctx, af.Name, af.SourceID, sess.AuthSession)
		}
	}

	readable := strings.ReplaceAll(args.Name, "_", " ")
	if len(values) == 0 {
		return fmt.Sprintf("%s\n\nNo available options found for %s.", decision.Message, readable)
	}

	if len(values) > maxClarifyValues {
		values = values[:maxClarifyValues]
	}
	var b strings.Builder
	b.WriteString(decision.Message)
	b.WriteString("\n\nAvailable options:\n")
	for _, v := range values {
		b.WriteString("- ")
		b.WriteString(v)
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "\nWhich %s would you like to filter by?", readable)
	return b.String()
}

func (a *Agent) successResponse(sess *state.Session, message, conversationID string) models.FilterResponse {
	return models.FilterResponse{
		Type:           models.ResponseTypeSuccess,
		Message:        message,
		AccountSummary: sanitize.Summary(sess.Summary),
		ConversationID: conversationID,
	}
}

func (a *Agent) errorResponse(err error, conversationID string) models.ErrorResponse {
	a.logger.WithError(err).Error("request failed", map[string]interface{}{
		"conversationId": conversationID,
	})
	return models.ErrorResponse{
		Type:           models.ResponseTypeError,
		Message:        apperrors.PublicMessage(err),
		ErrorCode:      string(apperrors.CodeOf(err)),
		ConversationID: conversationID,
	}
}

// finish records the assistant turn and the request outcome metric.
func (a *Agent) finish(ctx context.Context, conversationID string, resp interface{}) interface{} {
	var message, result string
	switch r := resp.(type) {
	case models.FilterResponse:
		message, result = r.Message, r.Type
	case models.ErrorResponse:
		message, result = r.Message, r.Type
	case models.ClarificationResponse:
		message, result = r.Message, r.Type
	}
	if message != "" {
		a.recordTurn(ctx, conversationID, "assistant", message)
	}
	metrics.RequestsProcessed.WithLabelValues(result).Inc()
	return resp
}

func (a *Agent) recordTurn(ctx context.Context, conversationID, role, content string) {
	if err := a.history.Append(ctx, conversationID, role, content); err != nil {
		a.logger.Warn("failed to record conversation turn", map[string]interface{}{
			"conversationId": conversationID,
			"role":           role,
			"error":          err.Error(),
		})
	}
}
