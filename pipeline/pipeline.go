package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/chanuka/bound"
	"github.com/chanuka/bound/storage"
	"github.com/chanuka/bound/transform"
	"github.com/chanuka/bound/validator"
)

// Binding wires one entity type into the pipeline: its registered schema,
// its transformer pair, its store, and the constructors the create and
// update paths run after authoritative validation.
type Binding[R, E any] struct {
	// Entity names the entity in logs and contract errors.
	Entity string
	// Schema is the registered schema name; both the advisory and the
	// authoritative run resolve this same name, so the two sides can never
	// drift.
	Schema string

	Transformer transform.Transformer[R, E]
	Store       storage.RecordStore[R]

	// New builds a fresh domain entity from a validated input map. The
	// identifier and instant are server-assigned.
	New func(in map[string]any, id string, now time.Time) (E, error)
	// Apply overlays a validated input map onto the current entity.
	Apply func(cur E, in map[string]any, now time.Time) (E, error)
	// SetVersion stamps the caller's optimistic concurrency token onto the
	// entity before the write.
	SetVersion func(ent E, version int64) E

	// Moderation, when set, reviews create and update payloads before
	// persistence.
	Moderation *ModerationHook[E]
}

// Pipeline runs the boundary operations for one bound entity type. A single
// Pipeline is safe for concurrent use; invocations share nothing but the
// validator's cache and metrics and the registry's version map.
type Pipeline[R, E any] struct {
	v       *validator.Validator
	b       Binding[R, E]
	log     zerolog.Logger
	timeout time.Duration
	vopt    validator.Options
	now     func() time.Time
	newID   func() string
}

// Option configures a Pipeline.
type Option func(p *pipelineConfig)

type pipelineConfig struct {
	log     zerolog.Logger
	timeout time.Duration
	vopt    validator.Options
	now     func() time.Time
	newID   func() string
}

// WithLogger sets the invocation logger.
func WithLogger(log zerolog.Logger) Option {
	return func(p *pipelineConfig) { p.log = log }
}

// WithDeadline bounds every invocation. Zero means the caller's context is
// the only bound.
func WithDeadline(d time.Duration) Option {
	return func(p *pipelineConfig) { p.timeout = d }
}

// WithValidateOptions overrides the validator options used by the
// authoritative run.
func WithValidateOptions(opt validator.Options) Option {
	return func(p *pipelineConfig) { p.vopt = opt }
}

// WithClock overrides the time source (tests).
func WithClock(now func() time.Time) Option {
	return func(p *pipelineConfig) { p.now = now }
}

// WithIDSource overrides identifier minting (tests).
func WithIDSource(fn func() string) Option {
	return func(p *pipelineConfig) { p.newID = fn }
}

// New builds a pipeline for one entity binding.
func New[R, E any](v *validator.Validator, b Binding[R, E], opts ...Option) *Pipeline[R, E] {
	cfg := pipelineConfig{
		log:   zerolog.Nop(),
		vopt:  validator.DefaultOptions(),
		now:   time.Now,
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Pipeline[R, E]{
		v:       v,
		b:       b,
		log:     cfg.log.With().Str("entity", b.Entity).Logger(),
		timeout: cfg.timeout,
		vopt:    cfg.vopt,
		now:     cfg.now,
		newID:   cfg.newID,
	}
}

// Preflight is the advisory client-side run: same schema, same options, but
// its failure never reaches the server boundary. Callers use it for fast
// form feedback; a passing preflight guarantees nothing, the authoritative
// run inside Create and Update always executes.
func (p *Pipeline[R, E]) Preflight(ctx context.Context, payload []byte) (validator.Result, error) {
	ctx, cancel := p.deadline(ctx)
	defer cancel()

	in, issues := decode(payload)
	if issues != nil {
		return validator.Result{OK: false, Errors: issues}, nil
	}
	return p.v.Validate(ctx, p.b.Schema, in, p.vopt)
}

// Create runs the full boundary sequence for a new entity.
func (p *Pipeline[R, E]) Create(ctx context.Context, payload []byte) (Outcome[E], error) {
	ctx, cancel := p.deadline(ctx)
	defer cancel()
	log := p.log.With().Str("op", "create").Logger()
	log.Debug().Str("state", string(StateReceived)).Msg("invocation started")

	in, issues := decode(payload)
	if issues != nil {
		return validationFailed[E](issues), nil
	}

	res, err := p.v.Validate(ctx, p.b.Schema, in, p.vopt)
	if err != nil {
		return Outcome[E]{}, p.stageErr("ServerValidated", err)
	}
	if !res.OK {
		log.Debug().Str("state", string(StateValidationFailed)).Int("issues", len(res.Errors)).Msg("rejected")
		return validationFailed[E](res.Errors), nil
	}

	ent, err := p.b.New(res.Value, p.newID(), p.now())
	if err != nil {
		return Outcome[E]{}, p.stageErr("DomainTransformed", err)
	}

	if p.b.Moderation != nil {
		verdict := p.b.Moderation.resolve(ctx, p.b.Moderation.Content(res.Value), log)
		ent = p.b.Moderation.Apply(ent, verdict)
		log.Debug().Str("state", string(StateModerated)).Str("verdict", verdict).Msg("moderated")
	}

	rec, err := p.b.Transformer.ToStorage(ent)
	if err != nil {
		return Outcome[E]{}, p.stageErr("DomainTransformed", err)
	}

	if err := p.b.Store.Create(ctx, rec); err != nil {
		if ce, ok := storage.AsConstraint(err); ok {
			log.Warn().Str("state", string(StatePersistenceRejected)).Str("kind", string(ce.Kind)).Msg("storage rejected write")
			return persistenceRejected[E](ce), nil
		}
		return Outcome[E]{}, p.stageErr("PersistenceOk", err)
	}

	return p.send(log, rec)
}

// Read fetches one entity. A missing identifier surfaces as
// storage.ErrNotFound, distinguishable from every constraint rejection.
func (p *Pipeline[R, E]) Read(ctx context.Context, id string) (Outcome[E], error) {
	ctx, cancel := p.deadline(ctx)
	defer cancel()
	log := p.log.With().Str("op", "read").Logger()

	rec, err := p.b.Store.Get(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return Outcome[E]{}, err
		}
		return Outcome[E]{}, p.stageErr("PersistenceOk", err)
	}
	return p.send(log, rec)
}

// Update overlays a validated payload onto the stored entity and writes it
// back under the caller's version token. A stale token is a persistence
// rejection, not an error; the racing winner's write stands.
func (p *Pipeline[R, E]) Update(ctx context.Context, id string, version int64, payload []byte) (Outcome[E], error) {
	ctx, cancel := p.deadline(ctx)
	defer cancel()
	log := p.log.With().Str("op", "update").Logger()
	log.Debug().Str("state", string(StateReceived)).Msg("invocation started")

	in, issues := decode(payload)
	if issues != nil {
		return validationFailed[E](issues), nil
	}

	res, err := p.v.Validate(ctx, p.b.Schema, in, p.vopt)
	if err != nil {
		return Outcome[E]{}, p.stageErr("ServerValidated", err)
	}
	if !res.OK {
		return validationFailed[E](res.Errors), nil
	}

	rec, err := p.b.Store.Get(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return Outcome[E]{}, err
		}
		return Outcome[E]{}, p.stageErr("PersistenceOk", err)
	}
	cur, err := p.b.Transformer.ToDomain(rec)
	if err != nil {
		return Outcome[E]{}, p.stageErr("DomainTransformed", err)
	}

	ent, err := p.b.Apply(cur, res.Value, p.now())
	if err != nil {
		return Outcome[E]{}, p.stageErr("DomainTransformed", err)
	}
	ent = p.b.SetVersion(ent, version)

	if p.b.Moderation != nil {
		verdict := p.b.Moderation.resolve(ctx, p.b.Moderation.Content(res.Value), log)
		ent = p.b.Moderation.Apply(ent, verdict)
		log.Debug().Str("state", string(StateModerated)).Str("verdict", verdict).Msg("moderated")
	}

	out, err := p.b.Transformer.ToStorage(ent)
	if err != nil {
		return Outcome[E]{}, p.stageErr("DomainTransformed", err)
	}

	stored, err := p.b.Store.Update(ctx, out)
	if err != nil {
		if ce, ok := storage.AsConstraint(err); ok {
			log.Warn().Str("state", string(StatePersistenceRejected)).Str("kind", string(ce.Kind)).Msg("storage rejected write")
			return persistenceRejected[E](ce), nil
		}
		if errors.Is(err, storage.ErrNotFound) {
			return Outcome[E]{}, err
		}
		return Outcome[E]{}, p.stageErr("PersistenceOk", err)
	}

	return p.send(log, stored)
}

// Delete removes one entity.
func (p *Pipeline[R, E]) Delete(ctx context.Context, id string) (Outcome[E], error) {
	ctx, cancel := p.deadline(ctx)
	defer cancel()
	log := p.log.With().Str("op", "delete").Logger()

	if err := p.b.Store.Delete(ctx, id); err != nil {
		if ce, ok := storage.AsConstraint(err); ok {
			return persistenceRejected[E](ce), nil
		}
		if errors.Is(err, storage.ErrNotFound) {
			return Outcome[E]{}, err
		}
		return Outcome[E]{}, p.stageErr("PersistenceOk", err)
	}
	log.Debug().Str("state", string(StateSent)).Msg("deleted")
	return Outcome[E]{State: StateSent}, nil
}

// send runs the tail of the state machine: reverse transform, serialize,
// sent. Storage data never reaches the wire except through this path.
func (p *Pipeline[R, E]) send(log zerolog.Logger, rec R) (Outcome[E], error) {
	ent, err := p.b.Transformer.ToDomain(rec)
	if err != nil {
		return Outcome[E]{}, p.stageErr("ReverseTransformed", err)
	}
	payload, err := json.Marshal(ent)
	if err != nil {
		return Outcome[E]{}, p.stageErr("Serialized", err)
	}
	log.Debug().Str("state", string(StateSent)).Msg("invocation finished")
	return Outcome[E]{State: StateSent, Entity: ent, Payload: payload}, nil
}

func (p *Pipeline[R, E]) deadline(ctx context.Context) (context.Context, context.CancelFunc) {
	if p.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, p.timeout)
}

// stageErr wraps a stage failure, translating deadline expiry into the
// timeout error kind. The invocation's write, if any, was a single statement
// or transaction, so expiry never leaves a partial record.
func (p *Pipeline[R, E]) stageErr(stage string, err error) error {
	if bound.IsTimeout(err) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return &bound.TimeoutError{Stage: stage, Deadline: p.timeout, Cause: err}
	}
	p.log.Error().Err(err).Str("stage", stage).Msg("stage failed")
	return fmt.Errorf("pipeline %s at %s: %w", p.b.Entity, stage, err)
}

// decode deserializes a wire payload into the validator's input shape.
// Malformed JSON is a validation outcome, not an error; the caller sent it.
func decode(payload []byte) (map[string]any, bound.Issues) {
	var in map[string]any
	if err := json.Unmarshal(payload, &in); err != nil {
		return nil, bound.Issues{{
			Path:    "/",
			Code:    bound.CodeParseError,
			Message: "malformed request payload",
			Cause:   err,
		}}
	}
	return in, nil
}
