package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"samanainn/internal/chat"
	"samanainn/internal/responders"
)

const (
	unroutedMessage = "No he podido determinar cómo procesar tu consulta. ¿Podrías reformularla o ser más específico?"
	respondFallback = "Entiendo tu consulta. ¿Puedes darme más detalles para ayudarte mejor?"
)

var unroutedQuestions = []string{"¿Qué puedo hacer en Samaná?", "¿Dónde puedo alojarme en Samaná?", "¿Cuáles son los mejores restaurantes en Samaná?"}

// Turn is one inbound user message together with what the conversation already knows.
type Turn struct {
	ConversationID string
	Message        string
	History        []chat.Turn
	Context        chat.Context
}

// Outcome is the validated response and the context to persist after the turn.
type Outcome struct {
	Response chat.Response
	Context  chat.Context
}

// TurnDispatcher runs the processing-stage state machine. Each turn ends in Validate.
type TurnDispatcher struct {
	router    Router
	query     responders.Responder
	booking   responders.Responder
	generic   responders.Responder
	specialty map[chat.ResponderName]responders.Responder
	logger    *zap.Logger
}

// NewTurnDispatcher binds the query-stage specialists by name. Specialists missing
// from the list make their topic fall back to the listing search.
func NewTurnDispatcher(router Router, query, booking, generic responders.Responder, specialists []responders.Responder, logger *zap.Logger) *TurnDispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	byName := make(map[chat.ResponderName]responders.Responder, len(specialists))
	for _, s := range specialists {
		byName[s.Name()] = s
	}
	return &TurnDispatcher{
		router:    router,
		query:     query,
		booking:   booking,
		generic:   generic,
		specialty: byName,
		logger:    logger.Named("dispatcher"),
	}
}

func (d *TurnDispatcher) Dispatch(ctx context.Context, turn Turn) Outcome {
	stage := turn.Context.Stage()
	d.logger.Debug("dispatching turn",
		zap.String("conversationId", turn.ConversationID),
		zap.String("stage", string(stage)),
		zap.String("intent", string(turn.Context.IntentType())),
	)

	switch stage {
	case chat.StageInitial:
		return d.route(ctx, turn)
	case chat.StageQuery:
		return d.run(ctx, turn, turn.Context, d.forQuery(turn.Context))
	case chat.StageBooking:
		return d.run(ctx, turn, turn.Context, d.booking)
	default:
		return d.run(ctx, turn, turn.Context, d.generic)
	}
}

// route handles the opening turn: the router classifies and the follow-up
// responder, if any, runs in the same turn.
func (d *TurnDispatcher) route(ctx context.Context, turn Turn) Outcome {
	routed := d.router.Route(ctx, turn.Message, turn.Context)
	merged := turn.Context.Merge(routed.Context)
	if routed.Error || routed.NextAction == nil {
		return d.finish(routed, merged)
	}

	action := routed.NextAction
	switch action.Type {
	case chat.ActionQuery:
		patch := chat.Patch{ProcessingStage: chat.StagePtr(chat.StageQuery), QueryParams: action.Query}
		if action.Query == nil {
			patch.QueryParams = &chat.QueryParams{Topic: merged.IntentType()}
		}
		merged = merged.Merge(patch)
		return d.run(ctx, turn, merged, d.forQuery(merged))
	case chat.ActionBooking:
		patch := chat.Patch{ProcessingStage: chat.StagePtr(chat.StageBooking), BookingParams: action.Booking}
		merged = merged.Merge(patch)
		return d.run(ctx, turn, merged, d.booking)
	case chat.ActionRespond:
		resp := routed
		resp.Message = action.Message
		if resp.Message == "" {
			resp.Message = respondFallback
		}
		merged = merged.Merge(chat.Patch{ProcessingStage: chat.StagePtr(chat.StageGeneric)})
		return d.finish(resp, merged)
	}

	d.logger.Warn("unroutable next action", zap.String("action", string(action.Type)))
	return d.finish(chat.Response{
		Message: unroutedMessage,
		UI:      &chat.UI{SuggestedQuestions: unroutedQuestions},
	}, merged)
}

// forQuery picks the specialist bound to the query topic, or the listing search.
func (d *TurnDispatcher) forQuery(c chat.Context) responders.Responder {
	topic := c.IntentType()
	if c.QueryParams != nil && c.QueryParams.Topic != "" {
		topic = c.QueryParams.Topic
	}
	if name, ok := topicSpecialist[topic]; ok {
		if r, ok := d.specialty[name]; ok {
			return r
		}
	}
	return d.query
}

func (d *TurnDispatcher) run(ctx context.Context, turn Turn, c chat.Context, r responders.Responder) Outcome {
	resp := d.invoke(ctx, r, responders.Request{
		ConversationID: turn.ConversationID,
		Message:        turn.Message,
		History:        turn.History,
		Context:        c,
	})
	merged := c.Merge(resp.Context).Merge(chat.Patch{AppendAgents: []chat.ResponderName{r.Name()}})
	d.logger.Debug("responder finished",
		zap.String("conversationId", turn.ConversationID),
		zap.String("responder", string(r.Name())),
		zap.Bool("error", resp.Error),
		zap.Int("results", len(resp.Results)),
	)
	return d.finish(resp, merged)
}

// invoke is the blanket catch around every responder.
func (d *TurnDispatcher) invoke(ctx context.Context, r responders.Responder, req responders.Request) (resp chat.Response) {
	defer func() {
		if p := recover(); p != nil {
			d.logger.Error("responder panicked",
				zap.String("responder", string(r.Name())),
				zap.Error(fmt.Errorf("panic: %v", p)),
			)
			resp = chat.Apology(failureFor(r.Name()))
		}
	}()
	return r.Respond(ctx, req)
}

func failureFor(name chat.ResponderName) string {
	if name == chat.ResponderBooking {
		return responders.BookingFailure
	}
	return coordinatorFailure
}

func (d *TurnDispatcher) finish(resp chat.Response, c chat.Context) Outcome {
	c = c.Merge(chat.Patch{AppendAgents: []chat.ResponderName{chat.ResponderValidation}})
	out := Validate(resp, c)
	out.Context = chat.Patch{}
	out.NextAction = nil
	return Outcome{Response: out, Context: c}
}
