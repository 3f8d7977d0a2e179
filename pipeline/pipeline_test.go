package pipeline_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chanuka/bound"
	"github.com/chanuka/bound/entity"
	"github.com/chanuka/bound/pipeline"
	"github.com/chanuka/bound/registry"
	"github.com/chanuka/bound/storage"
	"github.com/chanuka/bound/storage/sqlite"
	"github.com/chanuka/bound/transform"
	"github.com/chanuka/bound/validator"
)

type fixture struct {
	store *sqlite.Store
	val   *validator.Validator
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	s, err := sqlite.NewStore(filepath.Join(t.TempDir(), "bound.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	reg := registry.New()
	entity.RegisterSchemas(reg)
	return &fixture{store: s, val: validator.New(reg)}
}

func (f *fixture) users(t *testing.T, opts ...pipeline.Option) *pipeline.Pipeline[entity.UserRecord, entity.User] {
	t.Helper()
	return pipeline.New[entity.UserRecord, entity.User](
		f.val, entity.UserBinding(f.store.Users(), transform.Policy{}), opts...)
}

func (f *fixture) comments(t *testing.T, mod pipeline.Moderator, opts ...pipeline.Option) *pipeline.Pipeline[entity.CommentRecord, entity.Comment] {
	t.Helper()
	return pipeline.New[entity.CommentRecord, entity.Comment](
		f.val, entity.CommentBinding(f.store.Comments(), transform.Policy{}, mod), opts...)
}

func (f *fixture) seedBill(t *testing.T) entity.Bill {
	t.Helper()
	p := pipeline.New[entity.BillRecord, entity.Bill](
		f.val, entity.BillBinding(f.store.Bills(), transform.Policy{}))
	out, err := p.Create(context.Background(), []byte(`{
		"billNumber": "HR-42",
		"title": "Transit Funding Act"
	}`))
	require.NoError(t, err)
	require.True(t, out.OK(), "seed bill: %+v", out)
	return out.Entity
}

func (f *fixture) seedUser(t *testing.T, email string) entity.User {
	t.Helper()
	out, err := f.users(t).Create(context.Background(), []byte(`{
		"email": "`+email+`",
		"displayName": "Ada"
	}`))
	require.NoError(t, err)
	require.True(t, out.OK(), "seed user: %+v", out)
	return out.Entity
}

// approveAll is a moderator that approves everything with full confidence.
type approveAll struct{}

func (approveAll) Review(ctx context.Context, content string) (pipeline.Verdict, error) {
	return pipeline.Verdict{Status: pipeline.VerdictApproved, Confidence: 0.99}, nil
}

func TestCreate_SendsSerializedEntity(t *testing.T) {
	f := newFixture(t)
	out, err := f.users(t).Create(context.Background(), []byte(`{
		"email": "  ADA@Example.org ",
		"displayName": "Ada",
		"newsletter": "yes"
	}`))
	require.NoError(t, err)
	require.Equal(t, pipeline.StateSent, out.State)

	// Preprocessing and format normalization happened before the write.
	assert.Equal(t, "ada@example.org", out.Entity.Email)
	assert.True(t, out.Entity.Newsletter)
	assert.Equal(t, int64(1), out.Entity.Version)
	assert.False(t, out.Entity.ID.IsZero())

	var wire map[string]any
	require.NoError(t, json.Unmarshal(out.Payload, &wire))
	assert.Equal(t, "ada@example.org", wire["email"])
	assert.Contains(t, wire, "displayName", "wire shape is camelCase")
	assert.NotContains(t, wire, "display_name")
}

func TestCreate_ValidationFailureIsTerminal(t *testing.T) {
	f := newFixture(t)
	out, err := f.users(t).Create(context.Background(), []byte(`{"displayName": ""}`))
	require.NoError(t, err, "a validation failure is an outcome, not an error")
	require.Equal(t, pipeline.StateValidationFailed, out.State)

	paths := map[string]bool{}
	for _, is := range out.Errors {
		paths[is.Path] = true
	}
	assert.True(t, paths["/email"], "missing email must be reported: %v", out.Errors)
	assert.True(t, paths["/displayName"], "short display name must be reported: %v", out.Errors)
}

func TestCreate_MalformedPayload(t *testing.T) {
	f := newFixture(t)
	out, err := f.users(t).Create(context.Background(), []byte(`{not json`))
	require.NoError(t, err)
	require.Equal(t, pipeline.StateValidationFailed, out.State)
	require.Len(t, out.Errors, 1)
	assert.Equal(t, bound.CodeParseError, out.Errors[0].Code)
}

func TestCreate_UniquenessRaceIsPersistenceRejected(t *testing.T) {
	f := newFixture(t)
	f.seedUser(t, "ada@example.org")

	// Same email passes validation but loses at the storage layer.
	out, err := f.users(t).Create(context.Background(), []byte(`{
		"email": "ada@example.org",
		"displayName": "Imposter"
	}`))
	require.NoError(t, err)
	require.Equal(t, pipeline.StatePersistenceRejected, out.State)
	require.NotNil(t, out.Conflict)
	assert.Equal(t, storage.ConstraintUnique, out.Conflict.Kind)
	require.Len(t, out.Errors, 1)
	assert.Equal(t, bound.CodeUniqueness, out.Errors[0].Code)
	assert.Equal(t, "/email", out.Errors[0].Path)
}

func TestCreate_ConflictPathUsesWireNaming(t *testing.T) {
	f := newFixture(t)
	f.seedBill(t)

	p := pipeline.New[entity.BillRecord, entity.Bill](
		f.val, entity.BillBinding(f.store.Bills(), transform.Policy{}))
	out, err := p.Create(context.Background(), []byte(`{
		"billNumber": "HR-42",
		"title": "Duplicate Numbering Act"
	}`))
	require.NoError(t, err)
	require.Equal(t, pipeline.StatePersistenceRejected, out.State)
	require.Len(t, out.Errors, 1)

	// The driver reports the column as bill_number; clients address fields
	// by the camelCase names they sent.
	assert.Equal(t, "/billNumber", out.Errors[0].Path)
}

func TestUpdate_HappyPathBumpsVersion(t *testing.T) {
	f := newFixture(t)
	u := f.seedUser(t, "ada@example.org")

	out, err := f.users(t).Update(context.Background(), u.ID.String(), u.Version, []byte(`{
		"email": "ada@example.org",
		"displayName": "Ada L.",
		"newsletter": true
	}`))
	require.NoError(t, err)
	require.True(t, out.OK(), "%+v", out)
	assert.Equal(t, "Ada L.", out.Entity.DisplayName)
	assert.Equal(t, int64(2), out.Entity.Version)
	assert.WithinDuration(t, u.CreatedAt, out.Entity.CreatedAt, time.Second, "creation instant never moves")
}

func TestUpdate_StaleVersionTokenIsPersistenceRejected(t *testing.T) {
	f := newFixture(t)
	u := f.seedUser(t, "ada@example.org")

	// First writer moves the row to version 2.
	first, err := f.users(t).Update(context.Background(), u.ID.String(), u.Version, []byte(`{
		"email": "ada@example.org",
		"displayName": "first"
	}`))
	require.NoError(t, err)
	require.True(t, first.OK())

	// Second writer still presents the version 1 token and must lose.
	second, err := f.users(t).Update(context.Background(), u.ID.String(), u.Version, []byte(`{
		"email": "ada@example.org",
		"displayName": "second"
	}`))
	require.NoError(t, err, "a stale token is an outcome, not an error")
	require.Equal(t, pipeline.StatePersistenceRejected, second.State)
	require.Len(t, second.Errors, 1)
	assert.Equal(t, bound.CodeStaleVersion, second.Errors[0].Code)

	// The winner's write stands.
	got, err := f.users(t).Read(context.Background(), u.ID.String())
	require.NoError(t, err)
	assert.Equal(t, "first", got.Entity.DisplayName)
}

func TestRead_MissingIsNotFound(t *testing.T) {
	f := newFixture(t)
	_, err := f.users(t).Read(context.Background(), "0b0e0f5e-1111-2222-3333-444455556666")
	require.ErrorIs(t, err, storage.ErrNotFound)
}

func TestDelete_RoundTrip(t *testing.T) {
	f := newFixture(t)
	u := f.seedUser(t, "ada@example.org")

	out, err := f.users(t).Delete(context.Background(), u.ID.String())
	require.NoError(t, err)
	assert.Equal(t, pipeline.StateSent, out.State)

	_, err = f.users(t).Read(context.Background(), u.ID.String())
	require.ErrorIs(t, err, storage.ErrNotFound)
}

func TestPreflight_SharesTheAuthoritativeSchema(t *testing.T) {
	f := newFixture(t)
	p := f.users(t)
	payload := []byte(`{"email": "not-an-email", "displayName": "Ada"}`)

	pre, err := p.Preflight(context.Background(), payload)
	require.NoError(t, err)
	require.False(t, pre.OK)

	out, err := p.Create(context.Background(), payload)
	require.NoError(t, err)
	require.Equal(t, pipeline.StateValidationFailed, out.State)

	// Same schema on both call sites, so the advisory and authoritative runs
	// agree code for code.
	require.Equal(t, len(pre.Errors), len(out.Errors))
	assert.Equal(t, pre.Errors[0].Code, out.Errors[0].Code)
	assert.Equal(t, pre.Errors[0].Path, out.Errors[0].Path)
}

func TestPreflight_AppliesConfiguredDeadline(t *testing.T) {
	f := newFixture(t)
	p := f.users(t, pipeline.WithDeadline(time.Nanosecond))

	// The advisory run is bounded like every other operation.
	_, err := p.Preflight(context.Background(), []byte(`{"email": "ada@example.org", "displayName": "Ada"}`))
	require.True(t, bound.IsTimeout(err), "got %v", err)
}

func TestCreate_CancelledContextIsTimeout(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := f.users(t).Create(ctx, []byte(`{"email": "ada@example.org", "displayName": "Ada"}`))
	require.True(t, bound.IsTimeout(err), "got %v", err)
}

func TestComment_ApprovedByModeration(t *testing.T) {
	f := newFixture(t)
	bill := f.seedBill(t)
	author := f.seedUser(t, "ada@example.org")

	out, err := f.comments(t, approveAll{}).Create(context.Background(), []byte(`{
		"billId": "`+bill.ID.String()+`",
		"authorId": "`+author.ID.String()+`",
		"content": "Strongly support section 3."
	}`))
	require.NoError(t, err)
	require.True(t, out.OK(), "%+v", out)
	assert.Equal(t, entity.ModerationApproved, out.Entity.Status)
}

func TestComment_ModerationFailureFailsClosed(t *testing.T) {
	f := newFixture(t)
	bill := f.seedBill(t)
	author := f.seedUser(t, "ada@example.org")
	payload := []byte(`{
		"billId": "` + bill.ID.String() + `",
		"authorId": "` + author.ID.String() + `",
		"content": "hello"
	}`)

	cases := map[string]pipeline.Moderator{
		"service error": moderatorFunc(func(ctx context.Context, content string) (pipeline.Verdict, error) {
			return pipeline.Verdict{}, errors.New("boom")
		}),
		"confidence out of range": moderatorFunc(func(ctx context.Context, content string) (pipeline.Verdict, error) {
			return pipeline.Verdict{Status: pipeline.VerdictApproved, Confidence: 1.7}, nil
		}),
		"unknown status": moderatorFunc(func(ctx context.Context, content string) (pipeline.Verdict, error) {
			return pipeline.Verdict{Status: "probably fine", Confidence: 0.5}, nil
		}),
	}
	for name, mod := range cases {
		t.Run(name, func(t *testing.T) {
			out, err := f.comments(t, mod).Create(context.Background(), payload)
			require.NoError(t, err, "moderation failure must not abort the write")
			require.True(t, out.OK(), "%+v", out)
			assert.Equal(t, entity.ModerationFlagged, out.Entity.Status,
				"a broken moderation service must never approve")
		})
	}
}

func TestComment_SlowModerationIsBounded(t *testing.T) {
	f := newFixture(t)
	bill := f.seedBill(t)
	author := f.seedUser(t, "ada@example.org")

	slow := moderatorFunc(func(ctx context.Context, content string) (pipeline.Verdict, error) {
		select {
		case <-ctx.Done():
			return pipeline.Verdict{}, ctx.Err()
		case <-time.After(10 * time.Second):
			return pipeline.Verdict{Status: pipeline.VerdictApproved, Confidence: 1}, nil
		}
	})

	binding := entity.CommentBinding(f.store.Comments(), transform.Policy{}, slow)
	binding.Moderation.Timeout = 50 * time.Millisecond
	p := pipeline.New[entity.CommentRecord, entity.Comment](f.val, binding)

	start := time.Now()
	out, err := p.Create(context.Background(), []byte(`{
		"billId": "`+bill.ID.String()+`",
		"authorId": "`+author.ID.String()+`",
		"content": "hello"
	}`))
	require.NoError(t, err)
	require.True(t, out.OK(), "%+v", out)
	assert.Equal(t, entity.ModerationFlagged, out.Entity.Status)
	assert.Less(t, time.Since(start), 5*time.Second, "review must be bounded by its timeout")
}

func TestCommentEdit_GoesBackThroughModeration(t *testing.T) {
	f := newFixture(t)
	bill := f.seedBill(t)
	author := f.seedUser(t, "ada@example.org")

	p := f.comments(t, approveAll{})
	created, err := p.Create(context.Background(), []byte(`{
		"billId": "`+bill.ID.String()+`",
		"authorId": "`+author.ID.String()+`",
		"content": "original"
	}`))
	require.NoError(t, err)
	require.True(t, created.OK())

	flagEverything := moderatorFunc(func(ctx context.Context, content string) (pipeline.Verdict, error) {
		return pipeline.Verdict{Status: pipeline.VerdictRejected, Confidence: 0.9}, nil
	})
	edited, err := f.comments(t, flagEverything).Update(
		context.Background(), created.Entity.ID.String(), created.Entity.Version, []byte(`{
			"billId": "`+bill.ID.String()+`",
			"authorId": "`+author.ID.String()+`",
			"content": "edited"
		}`))
	require.NoError(t, err)
	require.True(t, edited.OK(), "%+v", edited)
	assert.Equal(t, "edited", edited.Entity.Content)
	assert.Equal(t, entity.ModerationFlagged, edited.Entity.Status)
	assert.Equal(t, int64(2), edited.Entity.Version)
}

// moderatorFunc adapts a function to the Moderator interface.
type moderatorFunc func(ctx context.Context, content string) (pipeline.Verdict, error)

func (f moderatorFunc) Review(ctx context.Context, content string) (pipeline.Verdict, error) {
	return f(ctx, content)
}
