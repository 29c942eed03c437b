// internal/server/dispatcher.go
package server

import (
	"context"
	"fmt"
	"time"

	"github.com/jason-s-yu/seega/service/internal/cache"
	"github.com/jason-s-yu/seega/service/internal/database"
	"github.com/jason-s-yu/seega/service/internal/game"
	"github.com/jason-s-yu/seega/service/internal/mom"
	"github.com/jason-s-yu/seega/service/internal/protocol"
	log "github.com/sirupsen/logrus"
)

const sideEffectTimeout = 5 * time.Second

// ActionLog receives accepted transitions and the latest snapshot.
type ActionLog interface {
	PublishGameAction(ctx context.Context, rec cache.GameActionRecord) error
	StoreSnapshot(ctx context.Context, body []byte) error
}

// ResultStore persists decided matches.
type ResultStore interface {
	RecordMatch(ctx context.Context, rec database.MatchRecord) error
}

// Dispatcher consumes the server queue, feeds events to the match and
// delivers each outcome through the broker.
type Dispatcher struct {
	match   *game.Match
	broker  mom.Broker
	actions ActionLog
	results ResultStore
	log     *log.Entry
}

// NewDispatcher wires match to broker. actions and results may be nil.
func NewDispatcher(match *game.Match, broker mom.Broker, actions ActionLog, results ResultStore, logger *log.Logger) *Dispatcher {
	if logger == nil {
		logger = log.StandardLogger()
	}
	return &Dispatcher{
		match:   match,
		broker:  broker,
		actions: actions,
		results: results,
		log:     logger.WithField("component", "dispatcher"),
	}
}

// Run consumes the server queue until ctx is cancelled.
func (d *Dispatcher) Run(ctx context.Context) error {
	if err := d.broker.DeclareQueue(ctx, mom.ServerQueue); err != nil {
		return fmt.Errorf("declare server queue: %w", err)
	}
	msgs, err := d.broker.Consume(ctx, mom.ServerQueue)
	if err != nil {
		return fmt.Errorf("consume server queue: %w", err)
	}
	d.log.WithField("queue", mom.ServerQueue).Info("dispatcher listening")

	// Announce the initial position to anyone already subscribed.
	d.Publish(ctx, game.Outcome{MatchID: d.match.ID(), Snapshot: ptr(d.match.Snapshot())})

	for body := range msgs {
		_ = d.HandleMessage(ctx, body)
	}
	return ctx.Err()
}

// HandleMessage decodes one envelope and submits it.
func (d *Dispatcher) HandleMessage(ctx context.Context, body []byte) error {
	ev, err := protocol.Decode(body)
	if err != nil {
		d.log.WithError(err).WithField("body", string(body)).Warn("dropping undecodable message")
		return err
	}
	_, err = d.Submit(ctx, ev)
	return err
}

// Submit applies ev and delivers the outcome. A rejection is sent to the
// requester's queue when the requester is known.
func (d *Dispatcher) Submit(ctx context.Context, ev game.Event) (game.Outcome, error) {
	out, err := d.match.Handle(ev)
	if err != nil {
		d.reject(ctx, out.ReplyTo, err)
		return out, err
	}
	d.Publish(ctx, out)
	return out, nil
}

func (d *Dispatcher) reject(ctx context.Context, name string, cause error) {
	if name == "" {
		return
	}
	body, err := protocol.EncodeRejected(protocol.RejectionReason(cause), cause.Error())
	if err != nil {
		d.log.WithError(err).Error("encode rejection")
		return
	}
	if err := d.broker.Send(ctx, mom.UserQueue(name), body); err != nil {
		d.log.WithError(err).WithField("player", name).Warn("deliver rejection")
	}
}

// Publish delivers an outcome. Delivery failures are logged; the match
// state is already committed.
func (d *Dispatcher) Publish(ctx context.Context, out game.Outcome) {
	entry := d.log.WithField("match", out.MatchID)

	if out.Joined != "" {
		if err := d.broker.DeclareQueue(ctx, mom.UserQueue(out.Joined)); err != nil {
			entry.WithError(err).WithField("player", out.Joined).Warn("declare user queue")
		}
	}

	if out.Snapshot != nil {
		body, err := protocol.EncodeGameState(*out.Snapshot)
		if err != nil {
			entry.WithError(err).Error("encode snapshot")
		} else {
			if err := d.broker.Publish(ctx, mom.GameStateTopic, body); err != nil {
				entry.WithError(err).Warn("publish snapshot")
			}
			if out.Direct != "" {
				if err := d.broker.Send(ctx, mom.UserQueue(out.Direct), body); err != nil {
					entry.WithError(err).WithField("player", out.Direct).Warn("send direct snapshot")
				}
			}
			if d.actions != nil {
				d.withTimeout(ctx, func(ctx context.Context) {
					if err := d.actions.StoreSnapshot(ctx, body); err != nil {
						entry.WithError(err).Warn("cache snapshot")
					}
				})
			}
		}
	}

	for _, n := range out.Notifications {
		body, err := protocol.EncodeChat(n)
		if err != nil {
			entry.WithError(err).Error("encode chat")
			continue
		}
		if err := d.broker.Publish(ctx, mom.ChatTopic, body); err != nil {
			entry.WithError(err).Warn("publish chat")
		}
	}

	if out.Left != "" {
		if err := d.broker.DeleteQueue(ctx, mom.UserQueue(out.Left)); err != nil {
			entry.WithError(err).WithField("player", out.Left).Warn("delete user queue")
		}
	}

	if out.Record != nil && d.actions != nil {
		rec := *out.Record
		d.withTimeout(ctx, func(ctx context.Context) {
			if err := d.actions.PublishGameAction(ctx, rec); err != nil {
				entry.WithError(err).WithField("action", rec.ActionType).Warn("publish game action")
			}
		})
	}

	if out.Result != nil {
		entry.WithFields(log.Fields{
			"winner": out.Result.WinnerName,
			"reason": out.Result.Reason,
			"moves":  out.Result.Moves,
		}).Info("match decided")
		if d.results != nil {
			rec := *out.Result
			d.withTimeout(ctx, func(ctx context.Context) {
				if err := d.results.RecordMatch(ctx, rec); err != nil {
					entry.WithError(err).Error("record match result")
				}
			})
		}
	}
}

func (d *Dispatcher) withTimeout(parent context.Context, fn func(ctx context.Context)) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(parent), sideEffectTimeout)
	defer cancel()
	fn(ctx)
}

func ptr[T any](v T) *T { return &v }
