package reconcile

import (
	"errors"
	"testing"

	"github.com/aleksa11010/HarnessInputSetReconciler/harness"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loading(gen uint64) State {
	return State{Kind: Loading, Generation: gen}
}

func TestReduce_DiffArrived(t *testing.T) {
	fetchErr := errors.New("boom")

	tests := []struct {
		name string
		ev   DiffArrived
		want Kind
	}{
		{
			name: "reconcilable diff opens the reconcile dialog",
			ev:   DiffArrived{Generation: 1, EntityIdentifier: "testInp1", Diff: &harness.YamlDiffResult{OldYAML: "a", NewYAML: "b"}},
			want: ReconcileDialogOpen,
		},
		{
			name: "empty input set opens the delete dialog",
			ev:   DiffArrived{Generation: 1, EntityIdentifier: "testInp1", Diff: &harness.YamlDiffResult{InputSetEmpty: true, OldYAML: "a", NewYAML: "b"}},
			want: DeleteDialogOpen,
		},
		{
			name: "error with identifier opens the reconcile dialog",
			ev:   DiffArrived{Generation: 1, EntityIdentifier: "testInp1", Err: fetchErr},
			want: ReconcileDialogOpen,
		},
		{
			name: "error without identifier only shows the error",
			ev:   DiffArrived{Generation: 1, Err: fetchErr},
			want: ErrorShown,
		},
		{
			name: "diff without yaml goes back to idle",
			ev:   DiffArrived{Generation: 1, EntityIdentifier: "testInp1", Diff: &harness.YamlDiffResult{OldYAML: "a"}},
			want: Idle,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next, err := Reduce(loading(1), tt.ev)
			require.NoError(t, err)
			assert.Equal(t, tt.want, next.Kind)
			assert.Equal(t, uint64(1), next.Generation)
		})
	}
}

func TestReduce_StaleDiffIsDropped(t *testing.T) {
	s := loading(2)
	next, err := Reduce(s, DiffArrived{Generation: 1, EntityIdentifier: "x", Diff: &harness.YamlDiffResult{OldYAML: "a", NewYAML: "b"}})
	assert.ErrorIs(t, err, ErrStaleResponse)
	assert.Equal(t, s, next)
}

func TestReduce_DiffOutsideLoading(t *testing.T) {
	_, err := Reduce(State{Kind: Idle, Generation: 1}, DiffArrived{Generation: 1})
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestReduce_FetchStartedBumpsGeneration(t *testing.T) {
	next, err := Reduce(State{Kind: ReconcileDialogOpen, Generation: 4, FetchErr: errors.New("x")}, FetchStarted{})
	require.NoError(t, err)
	assert.Equal(t, State{Kind: Loading, Generation: 5}, next)
}

func TestReduce_Resolved(t *testing.T) {
	open := State{Kind: ReconcileDialogOpen, Generation: 3, Diff: &harness.YamlDiffResult{OldYAML: "a", NewYAML: "b"}}

	next, err := Reduce(open, Resolved{Generation: 3})
	require.NoError(t, err)
	assert.Equal(t, Idle, next.Kind)

	failure := errors.New("update failed")
	next, err = Reduce(open, Resolved{Generation: 3, Err: failure})
	require.NoError(t, err)
	assert.Equal(t, ReconcileDialogOpen, next.Kind)
	assert.Equal(t, failure, next.ActionErr)
	assert.Equal(t, open.Diff, next.Diff)

	_, err = Reduce(State{Kind: DeleteDialogOpen, Generation: 3}, Resolved{Generation: 3})
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestReduce_Deleted(t *testing.T) {
	open := State{Kind: DeleteDialogOpen, Generation: 2}

	next, err := Reduce(open, Deleted{Generation: 2, Err: errors.New("FAILURE")})
	require.NoError(t, err)
	assert.Equal(t, DeleteDialogOpen, next.Kind)

	next, err = Reduce(open, Deleted{Generation: 2})
	require.NoError(t, err)
	assert.Equal(t, Idle, next.Kind)

	_, err = Reduce(open, Deleted{Generation: 1})
	assert.ErrorIs(t, err, ErrStaleResponse)
}

func TestReduce_DismissedFromAnyState(t *testing.T) {
	for _, k := range []Kind{Idle, Loading, ReconcileDialogOpen, DeleteDialogOpen, ErrorShown} {
		next, err := Reduce(State{Kind: k, Generation: 7}, Dismissed{})
		require.NoError(t, err)
		assert.Equal(t, State{Kind: Idle, Generation: 8}, next, k.String())
	}
}
