package reconcile

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

type silentSaver struct{ opened int }

func (s *silentSaver) Open(context.Context, GitSaveRequest, func(context.Context, GitSaveResult) error) error {
	s.opened++
	return nil
}

func TestPersister_InlineNeverOpensGitSaver(t *testing.T) {
	svc, saver := &spyService{}, &spyGitSaver{}
	p := NewPersister(svc, inlineMode{}, Options{Scope: testScope}, Dependencies{Notifier: &spyNotifier{}, GitSaver: saver})

	res := p.Submit(context.Background(), inputSetEntity(), newInputSetYAML)
	assert.True(t, res.Persisted)
	assert.Empty(t, saver.Requests)
	assert.Len(t, svc.UpdateCalls, 1)
}

func TestPersister_GitBackedWithoutSaver(t *testing.T) {
	svc := &spyService{}
	p := NewPersister(svc, remoteMode{}, Options{Scope: testScope}, Dependencies{Notifier: &spyNotifier{}})

	res := p.Submit(context.Background(), remoteEntity(), newInputSetYAML)
	assert.ErrorIs(t, res.Err, ErrNoGitSaver)
	assert.Empty(t, svc.UpdateCalls)
}

func TestPersister_SaverClosedWithoutConfirm(t *testing.T) {
	svc, saver := &spyService{}, &silentSaver{}
	p := NewPersister(svc, gitSyncMode{}, Options{Scope: testScope}, Dependencies{Notifier: &spyNotifier{}, GitSaver: saver})

	res := p.Submit(context.Background(), remoteEntity(), newInputSetYAML)
	assert.True(t, res.Cancelled)
	assert.False(t, res.Persisted)
	assert.Equal(t, 1, saver.opened)
	assert.Empty(t, svc.UpdateCalls)
}
