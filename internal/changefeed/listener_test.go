package changefeed

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fekuna/omnipos-admin-service/pkg/logger"
)

type fakeReader struct {
	msgs chan kafka.Message
}

func (f *fakeReader) ReadMessage(ctx context.Context) (kafka.Message, error) {
	select {
	case <-ctx.Done():
		return kafka.Message{}, ctx.Err()
	case m := <-f.msgs:
		return m, nil
	}
}

func encode(t *testing.T, e ChangeEvent) []byte {
	t.Helper()
	b, err := json.Marshal(e)
	require.NoError(t, err)
	return b
}

func TestListener_DispatchByTable(t *testing.T) {
	l := NewListener(nil, logger.NewNop())

	var products, all []string
	l.Subscribe(TableProducts, func(_ context.Context, e ChangeEvent) error {
		products = append(products, e.ID)
		return nil
	})
	l.Subscribe(AllTables, func(_ context.Context, e ChangeEvent) error {
		all = append(all, e.Table+":"+e.ID)
		return nil
	})

	ctx := context.Background()
	l.Dispatch(ctx, encode(t, ChangeEvent{Table: TableProducts, Type: Update, ID: "p1"}))
	l.Dispatch(ctx, encode(t, ChangeEvent{Table: TableCategories, Type: Delete, ID: "c1"}))
	l.Dispatch(ctx, []byte("not json"))

	assert.Equal(t, []string{"p1"}, products)
	assert.Equal(t, []string{"products:p1", "categories:c1"}, all)
}

func TestListener_FailingHandlerDoesNotStopOthers(t *testing.T) {
	l := NewListener(nil, logger.NewNop())

	called := false
	l.Subscribe(TableOrders, func(context.Context, ChangeEvent) error { return errors.New("boom") })
	l.Subscribe(TableOrders, func(context.Context, ChangeEvent) error {
		called = true
		return nil
	})

	l.Dispatch(context.Background(), encode(t, ChangeEvent{Table: TableOrders, Type: Insert, ID: "o1"}))
	assert.True(t, called)
}

func TestListener_StartStopsOnCancel(t *testing.T) {
	reader := &fakeReader{msgs: make(chan kafka.Message, 1)}
	l := NewListener(reader, logger.NewNop())

	got := make(chan ChangeEvent, 1)
	l.Subscribe(TableCategories, func(_ context.Context, e ChangeEvent) error {
		got <- e
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		l.Start(ctx)
		close(done)
	}()

	reader.msgs <- kafka.Message{Value: encode(t, ChangeEvent{Table: TableCategories, Type: Insert, ID: "c9"})}

	select {
	case e := <-got:
		assert.Equal(t, "c9", e.ID)
	case <-time.After(time.Second):
		t.Fatal("event not dispatched")
	}

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("listener did not stop")
	}
}

type recordingPublisher struct {
	events chan ChangeEvent
}

func (r *recordingPublisher) Publish(_ context.Context, e ChangeEvent) error {
	r.events <- e
	return nil
}

func TestNotify(t *testing.T) {
	pub := &recordingPublisher{events: make(chan ChangeEvent, 1)}
	Notify(pub, logger.NewNop(), TableProducts, Insert, "p1")

	select {
	case e := <-pub.events:
		assert.Equal(t, TableProducts, e.Table)
		assert.Equal(t, Insert, e.Type)
		assert.Equal(t, "p1", e.ID)
		assert.False(t, e.Timestamp.IsZero())
	case <-time.After(time.Second):
		t.Fatal("event not published")
	}
}
