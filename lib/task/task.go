package task

import (
	"time"

	"github.com/ElektraInitiative/kdbtask/lib/flatten"
	"github.com/ElektraInitiative/kdbtask/lib/kdb"
	"github.com/ElektraInitiative/kdbtask/lib/logger"
	"github.com/ElektraInitiative/kdbtask/lib/mount"
	"github.com/ElektraInitiative/kdbtask/lib/reconcile"
	"github.com/ElektraInitiative/kdbtask/lib/recording"
	"github.com/ElektraInitiative/kdbtask/lib/store"
	"github.com/ElektraInitiative/kdbtask/lib/txn"
)

// --------------------------------------------------------------------------
// Task Definition
// --------------------------------------------------------------------------

// Recording holds the session-recording requests of a task.
type Recording struct {
	// Enable turns recording on below Root as the final state.
	Enable bool
	// Root is the recording root for Enable; "/" when empty.
	Root string
	// Reset discards the accumulated session before the task runs.
	Reset bool
	// RecordSelf captures the changes of this very task in the session.
	RecordSelf bool
}

// Task is one declarative reconciliation request: the mountpoints to
// ensure, the desired configuration document, the keys to remove and the
// merge policy.
type Task struct {
	Mounts       []mount.Spec
	Keys         *flatten.Node
	KeysToRemove *flatten.Node
	KeepOrder    bool
	Strategy     reconcile.Strategy
	Recording    Recording
	// Base overrides the merge base. When nil the base is reconstructed
	// from the recording session diff.
	Base   *kdb.KeySet
	DryRun bool
}

// Result is the outcome of a task run.
type Result struct {
	// Changed reports whether the run changed (or, in dry-run mode, would
	// have changed) any state: configuration keys, mountpoints, removed
	// keys or the recording session.
	Changed bool
	// Conflicts lists the keys both sides changed differently, also when a
	// non-abort strategy resolved them.
	Conflicts []string
	// Warnings are the non-fatal diagnostics the store accumulated.
	Warnings []store.Warning
}

// --------------------------------------------------------------------------
// Runner
// --------------------------------------------------------------------------

// Runner executes tasks against one store. It owns no state between runs;
// every run is an independent transaction.
type Runner struct {
	store    store.IStore
	rec      recording.IRecordingBackend
	mountCmd mount.IMountCommand
	log      logger.ILogger
}

// NewRunner creates a task runner over the given collaborators.
func NewRunner(st store.IStore, rec recording.IRecordingBackend, cmd mount.IMountCommand) *Runner {
	return &Runner{
		store:    st,
		rec:      rec,
		mountCmd: cmd,
		log:      logger.GetLogger("task"),
	}
}

// Run executes the task end to end. Any failure rolls the database back
// to the snapshot taken at start and is returned to the caller; a failure
// of the rollback itself escalates to a transaction failure that carries
// both errors.
func (r *Runner) Run(t Task) (Result, error) {
	runsTotal.Inc()
	defer runDuration.UpdateDuration(time.Now())

	txm := txn.NewManager(r.store, t.DryRun)
	recm := recording.NewManager(r.rec, t.DryRun)

	res, err := r.run(t, txm, recm)
	res.Warnings = append(res.Warnings, r.store.Warnings()...)
	if err != nil {
		runFailures.Inc()
		r.log.Errorf("task failed: %v", err)
		if txm.Active() {
			rollbacks.Inc()
		}
		if rbErr := txm.Rollback(); rbErr != nil {
			rollbackFailures.Inc()
			return res, store.NewErrorf(store.ErrCTransactionFailure,
				"rollback failed: %v (after: %v)", rbErr, err)
		}
		return res, err
	}
	r.log.Infof("task finished, changed=%t, %d warning(s)", res.Changed, len(res.Warnings))
	return res, nil
}

func (r *Runner) run(t Task, txm *txn.Manager, recm *recording.Manager) (Result, error) {
	var res Result

	if err := txm.Start(); err != nil {
		return res, err
	}

	if _, err := recm.GetStatusQuo(); err != nil {
		return res, err
	}
	if err := recm.Disable(); err != nil {
		return res, err
	}
	if err := recm.ResetIfRequested(t.Recording.Reset); err != nil {
		return res, err
	}
	if err := recm.EnableForSelfIfRequested(t.Recording.RecordSelf); err != nil {
		return res, err
	}

	base, err := r.mergeBase(t, recm)
	if err != nil {
		return res, err
	}

	mounts := mount.NewManager(r.store, r.mountCmd, t.DryRun)
	mountsChanged, err := mounts.EnsureMounted(t.Mounts)
	if err != nil {
		return res, err
	}

	theirs, rc, err := r.store.Get("/")
	if err != nil || rc == store.RetError {
		return res, store.NewErrorf(store.ErrCReadFailure, "failed to read the database: %v", err)
	}

	desired := kdb.NewKeySet()
	if t.Keys != nil {
		desired, err = flatten.BuildDocument(t.Keys, t.KeepOrder)
		if err != nil {
			return res, err
		}
	}
	remover, err := reconcile.ParseKeysToRemove(t.KeysToRemove)
	if err != nil {
		return res, err
	}

	ours := theirs.Dup()
	removed := remover.RemoveKeys(ours)
	reconcile.ApplyNewKeyset(ours, desired, t.KeepOrder)

	merge, err := reconcile.Merge(base, ours, theirs, "/", t.Strategy)
	res.Conflicts = merge.Conflicts
	if len(merge.Conflicts) > 0 {
		mergeConflicts.Inc()
	}
	if err != nil {
		return res, err
	}

	diff, err := r.store.CalculateDiff(merge.Merged, "/")
	if err != nil {
		return res, store.NewErrorf(store.ErrCReadFailure, "failed to diff the merge result: %v", err)
	}
	keysChanged := !diff.IsEmpty()
	if keysChanged && !t.DryRun {
		if _, err := r.store.Set(merge.Merged, "/"); err != nil {
			return res, store.NewErrorf(store.ErrCWriteFailure, "failed to write the merge result: %v", err)
		}
	}

	if err := recm.EnableIfRequested(t.Recording.Enable, t.Recording.Root); err != nil {
		return res, err
	}

	res.Changed = mountsChanged || keysChanged || removed.Len() > 0 || recm.HasChanged()
	r.log.Debugf("mounts=%t keys=%t removed=%d recording=%t",
		mountsChanged, keysChanged, removed.Len(), recm.HasChanged())
	return res, nil
}

// mergeBase returns the caller-supplied base or reconstructs it from the
// current state and the accumulated recording session.
func (r *Runner) mergeBase(t Task, recm *recording.Manager) (*kdb.KeySet, error) {
	if t.Base != nil {
		return t.Base, nil
	}
	current, rc, err := r.store.Get("/")
	if err != nil || rc == store.RetError {
		return nil, store.NewErrorf(store.ErrCReadFailure, "failed to read the database: %v", err)
	}
	diff, err := recm.Diff()
	if err != nil {
		return nil, err
	}
	return recording.ReconstructBase(current, diff), nil
}
