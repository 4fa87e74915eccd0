package activity

import (
	"context"
	"strings"
)

// DefaultChannel is applied to events emitted without a channel.
const DefaultChannel = "wizard"

// Config controls emission defaults. Questionnaire is stamped on events that
// carry none.
type Config struct {
	Enabled       bool
	Channel       string
	Questionnaire string
}

// Emitter fans out events to hooks while applying defaults. A nil Emitter
// is valid and emits nothing.
type Emitter struct {
	hooks         Hooks
	enabled       bool
	channel       string
	questionnaire string
}

// NewEmitter constructs an emitter from hooks and configuration.
func NewEmitter(hooks Hooks, cfg Config) *Emitter {
	channel := strings.TrimSpace(cfg.Channel)
	if channel == "" {
		channel = DefaultChannel
	}
	kept := make(Hooks, 0, len(hooks))
	for _, hook := range hooks {
		if hook != nil {
			kept = append(kept, hook)
		}
	}
	return &Emitter{
		hooks:         kept,
		enabled:       cfg.Enabled && len(kept) > 0,
		channel:       channel,
		questionnaire: strings.TrimSpace(cfg.Questionnaire),
	}
}

// Enabled reports whether emissions should be attempted.
func (e *Emitter) Enabled() bool {
	return e != nil && e.enabled
}

// Emit forwards the event to all hooks, filling the channel and questionnaire
// from the configuration when the event leaves them blank.
func (e *Emitter) Emit(ctx context.Context, event Event) error {
	if !e.Enabled() {
		return nil
	}
	if strings.TrimSpace(event.Channel) == "" {
		event.Channel = e.channel
	}
	if strings.TrimSpace(event.Questionnaire) == "" {
		event.Questionnaire = e.questionnaire
	}
	return e.hooks.Notify(ctx, event)
}
