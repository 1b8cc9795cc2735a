package notifications

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/protocolai/hireai/internal/shared"
)

type memoryRepo struct {
	items []Notification
}

func (m *memoryRepo) Create(_ context.Context, n Notification) (Notification, error) {
	n.CreatedAt = time.Now().Add(time.Duration(len(m.items)) * time.Second)
	m.items = append(m.items, n)
	return n, nil
}

func (m *memoryRepo) List(_ context.Context, unreadOnly bool, limit int) ([]Notification, error) {
	var out []Notification
	for i := len(m.items) - 1; i >= 0 && len(out) < limit; i-- {
		if unreadOnly && m.items[i].Read {
			continue
		}
		out = append(out, m.items[i])
	}
	return out, nil
}

func (m *memoryRepo) MarkRead(_ context.Context, id string) error {
	for i := range m.items {
		if m.items[i].ID == id {
			m.items[i].Read = true
			return nil
		}
	}
	return shared.ErrNotFound
}

func (m *memoryRepo) MarkAllRead(context.Context) (int64, error) {
	var n int64
	for i := range m.items {
		if !m.items[i].Read {
			m.items[i].Read = true
			n++
		}
	}
	return n, nil
}

func TestNotifyAndList(t *testing.T) {
	svc := NewService(&memoryRepo{})
	ctx := context.Background()

	first, err := svc.Notify(ctx, Input{Title: "New Application", Message: "Ada applied", Type: TypeNewApp})
	require.NoError(t, err)
	assert.NotEmpty(t, first.ID)
	_, err = svc.Notify(ctx, Input{Title: "Assessment Finished", Type: TypeTestComplete})
	require.NoError(t, err)

	items, err := svc.List(ctx, false, 0)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, TypeTestComplete, items[0].Type)

	require.NoError(t, svc.MarkRead(ctx, first.ID))
	unread, err := svc.List(ctx, true, 10)
	require.NoError(t, err)
	require.Len(t, unread, 1)

	n, err := svc.MarkAllRead(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}

func TestNotifyRejectsUnknownType(t *testing.T) {
	svc := NewService(&memoryRepo{})
	_, err := svc.Notify(context.Background(), Input{Title: "x", Type: "alert"})
	require.Error(t, err)

	err = svc.MarkRead(context.Background(), "missing")
	require.ErrorIs(t, err, shared.ErrNotFound)
}
