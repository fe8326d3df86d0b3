package consumer

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/c360/semexchange/errors"
	"github.com/c360/semexchange/types/event"
)

type recordingApplier struct {
	evtType event.Type
	payload []byte
	calls   int
	err     error
}

func (r *recordingApplier) Apply(_ context.Context, evtType event.Type, payload []byte) error {
	r.calls++
	r.evtType = evtType
	r.payload = payload
	return r.err
}

type fakeMsg struct {
	subject string
	data    []byte
	settled string
}

func (m *fakeMsg) Subject() string { return m.subject }
func (m *fakeMsg) Data() []byte    { return m.data }
func (m *fakeMsg) Ack() error      { m.settled = "ack"; return nil }
func (m *fakeMsg) Nak() error      { m.settled = "nak"; return nil }
func (m *fakeMsg) Term() error     { m.settled = "term"; return nil }

func TestDispatchAcksAfterHandler(t *testing.T) {
	applier := &recordingApplier{}
	c := New(Config{Durable: "test"}, applier, slog.Default())
	msg := &fakeMsg{subject: event.OfferingCreated.Subject(), data: []byte(`{}`)}

	c.dispatch(context.Background(), msg)

	assert.Equal(t, 1, applier.calls)
	assert.Equal(t, event.OfferingCreated, applier.evtType)
	assert.Equal(t, "ack", msg.settled)
}

func TestDispatchNaksTransientFailure(t *testing.T) {
	applier := &recordingApplier{
		err: errors.WrapTransient(errors.ErrStoreUnavailable, "projector", "upsert", "down"),
	}
	c := New(Config{Durable: "test"}, applier, slog.Default())
	msg := &fakeMsg{subject: event.OfferingCreated.Subject()}

	c.dispatch(context.Background(), msg)

	assert.Equal(t, "nak", msg.settled)
}

func TestDispatchTermsPoisonMessages(t *testing.T) {
	tests := []struct {
		name string
		msg  *fakeMsg
		err  error
	}{
		{
			"invalid payload",
			&fakeMsg{subject: event.OfferingCreated.Subject(), data: []byte("not json")},
			errors.WrapInvalid(errors.ErrParsingFailed, "projector", "Apply", "bad payload"),
		},
		{
			"unknown event type",
			&fakeMsg{subject: event.SubjectPrefix + "offering.exploded"},
			errors.WrapInvalid(errors.ErrUnknownEvent, "projector", "Apply", "offering.exploded"),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New(Config{Durable: "test"}, &recordingApplier{err: tt.err}, slog.Default())
			c.dispatch(context.Background(), tt.msg)
			assert.Equal(t, "term", tt.msg.settled)
		})
	}
}

func TestDispatchTermsForeignSubjects(t *testing.T) {
	applier := &recordingApplier{}
	c := New(Config{Durable: "test"}, applier, slog.Default())
	msg := &fakeMsg{subject: "other.stream.thing"}

	c.dispatch(context.Background(), msg)

	assert.Zero(t, applier.calls)
	assert.Equal(t, "term", msg.settled)
}

func TestStopWithoutStart(t *testing.T) {
	c := New(Config{Durable: "test"}, &recordingApplier{}, slog.Default())
	assert.ErrorIs(t, c.Stop(), errors.ErrNotStarted)
}

func TestTypeFromSubjectRoundTrip(t *testing.T) {
	got, ok := event.TypeFromSubject(event.CategoryNameChanged.Subject())
	assert.True(t, ok)
	assert.Equal(t, event.CategoryNameChanged, got)

	_, ok = event.TypeFromSubject("exchange.commands.offering.created")
	assert.False(t, ok)
}
