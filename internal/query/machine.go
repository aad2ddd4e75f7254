// Package query runs one form's request lifecycle:
// Idle -> Submitting -> Success | Error -> Submitting ...
package query

import (
	"context"
	"sync"

	apperrors "agriwise-client/internal/common/errors"
	"agriwise-client/internal/common/logger"
	"agriwise-client/internal/common/metrics"
	"agriwise-client/internal/models"
)

type Status int

const (
	StatusIdle Status = iota
	StatusSubmitting
	StatusSuccess
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusSubmitting:
		return "submitting"
	case StatusSuccess:
		return "success"
	case StatusError:
		return "error"
	}
	return "idle"
}

// CredentialSource hands out the current credential. *session.Session satisfies it.
type CredentialSource interface {
	Credential() (*models.Credential, bool)
}

// Snapshot is a point-in-time copy of a machine's state. Result keeps the last
// successful value even while a later submission is pending or has failed.
type Snapshot[R any] struct {
	Status      Status
	Result      R
	HasResult   bool
	Err         *apperrors.StandardError
	Disposition apperrors.Disposition
	Seq         uint64
}

type runFunc[R any] func(ctx context.Context, cred *models.Credential) (R, error)
type refreshFunc func(ctx context.Context, cred *models.Credential)

// Machine is the generic state machine behind LandSearch and CropAdvisor.
type Machine[R any] struct {
	form     string
	session  CredentialSource
	handler  *apperrors.ErrorHandler
	logger   logger.Logger
	refresh  refreshFunc
	observer []func(Snapshot[R])

	mu          sync.Mutex
	status      Status
	prevStatus  Status
	result      R
	hasResult   bool
	err         *apperrors.StandardError
	disposition apperrors.Disposition
	seq         uint64
	cancel      context.CancelFunc
	done        chan struct{}

	workers sync.WaitGroup
}

func newMachine[R any](form string, session CredentialSource, log logger.Logger) *Machine[R] {
	l := log.WithFields(map[string]interface{}{"form": form})
	return &Machine[R]{
		form:    form,
		session: session,
		handler: apperrors.NewErrorHandler(l),
		logger:  l,
	}
}

// OnChange registers fn to be called after every state change. Observers run
// on the goroutine that made the change, outside the machine's lock.
func (m *Machine[R]) OnChange(fn func(Snapshot[R])) {
	m.mu.Lock()
	m.observer = append(m.observer, fn)
	m.mu.Unlock()
}

func (m *Machine[R]) Snapshot() Snapshot[R] {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshotLocked()
}

func (m *Machine[R]) Status() Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.status
}

func (m *Machine[R]) snapshotLocked() Snapshot[R] {
	return Snapshot[R]{
		Status:      m.status,
		Result:      m.result,
		HasResult:   m.hasResult,
		Err:         m.err,
		Disposition: m.disposition,
		Seq:         m.seq,
	}
}

func (m *Machine[R]) setStatusLocked(s Status) {
	m.status = s
	metrics.StateTransitions.WithLabelValues(m.form, s.String()).Inc()
}

func (m *Machine[R]) notify(s Snapshot[R]) {
	m.mu.Lock()
	observers := append([]func(Snapshot[R]){}, m.observer...)
	m.mu.Unlock()
	for _, fn := range observers {
		fn(s)
	}
}

// reject records a failure found before any request was made. The state does
// not change.
func (m *Machine[R]) reject(err error) error {
	m.handler.Handle(m.form, err)
	return err
}

// start moves to Submitting and runs the call on its own goroutine. It
// returns immediately.
func (m *Machine[R]) start(ctx context.Context, run runFunc[R]) error {
	m.mu.Lock()
	if m.status == StatusSubmitting {
		m.mu.Unlock()
		m.logger.Debug("submission rejected, request in flight", nil)
		return apperrors.ErrSubmissionInFlight
	}

	m.seq++
	mine := m.seq
	m.prevStatus = m.status
	m.setStatusLocked(StatusSubmitting)

	runCtx, cancel := context.WithCancel(ctx)
	m.cancel = cancel
	done := make(chan struct{})
	m.done = done
	snap := m.snapshotLocked()
	m.workers.Add(1)
	m.mu.Unlock()

	metrics.SubmissionsInFlight.WithLabelValues(m.form).Inc()
	m.logger.Debug("submission started", map[string]interface{}{"seq": mine})
	m.notify(snap)

	go func() {
		defer m.workers.Done()
		defer close(done)
		defer cancel()

		var cred *models.Credential
		if m.session != nil {
			cred, _ = m.session.Credential()
		}
		res, err := run(runCtx, cred)
		metrics.SubmissionsInFlight.WithLabelValues(m.form).Dec()

		if !m.finish(mine, res, err) {
			return
		}
		if err == nil && m.refresh != nil && m.current(mine) {
			m.refresh(runCtx, cred)
		}
	}()
	return nil
}

func (m *Machine[R]) current(seq uint64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return seq == m.seq
}

// finish applies a response if it still belongs to the current submission
// and reports whether it did.
func (m *Machine[R]) finish(seq uint64, res R, err error) bool {
	m.mu.Lock()
	if seq != m.seq || m.status != StatusSubmitting {
		m.mu.Unlock()
		metrics.StaleResponsesDiscarded.WithLabelValues(m.form).Inc()
		m.logger.Debug("discarding stale response", map[string]interface{}{"seq": seq})
		return false
	}
	m.cancel = nil

	if err != nil {
		stdErr, disp := m.handler.Handle(m.form, err)
		m.err = stdErr
		m.disposition = disp
		if disp == apperrors.DispositionReauthenticate {
			m.setStatusLocked(StatusIdle)
		} else {
			m.setStatusLocked(StatusError)
		}
	} else {
		m.result = res
		m.hasResult = true
		m.err = nil
		m.disposition = apperrors.DispositionNone
		m.setStatusLocked(StatusSuccess)
	}
	snap := m.snapshotLocked()
	m.mu.Unlock()

	m.notify(snap)
	return true
}

// Cancel aborts the pending submission and restores the status it replaced.
// It reports whether anything was cancelled.
func (m *Machine[R]) Cancel() bool {
	m.mu.Lock()
	if m.status != StatusSubmitting {
		m.mu.Unlock()
		return false
	}
	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}
	m.seq++
	m.setStatusLocked(m.prevStatus)
	snap := m.snapshotLocked()
	m.mu.Unlock()

	m.logger.Info("submission cancelled", nil)
	m.notify(snap)
	return true
}

// Wait blocks until the latest submission, including its refresh step, is done.
func (m *Machine[R]) Wait(ctx context.Context) error {
	m.mu.Lock()
	done := m.done
	m.mu.Unlock()
	if done == nil {
		return nil
	}
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Drain cancels anything pending and waits for every goroutine the machine
// started, superseded ones included.
func (m *Machine[R]) Drain() {
	m.Cancel()
	m.workers.Wait()
}
