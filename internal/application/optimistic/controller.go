// Package optimistic applies a mutation to local state at once, persists it,
// then reconciles with the server result or rolls the local change back.
package optimistic

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/arrangemylist/planner/internal/domain/entities"
	"github.com/arrangemylist/planner/internal/infrastructure/logger"
)

// Kind selects the rollback strategy of a mutation
type Kind string

const (
	// FieldEdit mutations revert from the caller's snapshot.
	FieldEdit Kind = "field_edit"
	// Structural mutations (moves, removals) reload the whole collection.
	Structural Kind = "structural"
)

// State is the lifecycle position of a mutation
type State string

const (
	Pending    State = "pending"
	Confirmed  State = "confirmed"
	RolledBack State = "rolled_back"
)

// Mutation describes one optimistic change to an entity identified by Key.
// Apply runs first and may refuse the change; Commit persists it. On success
// Reconcile receives the server's result. On failure a FieldEdit runs Revert
// and a Structural mutation runs Reload, falling back to Revert when the
// reload itself fails. A FieldEdit on an entity the server no longer has
// also reloads.
type Mutation[T any] struct {
	Key       string
	Kind      Kind
	Apply     func() error
	Commit    func(ctx context.Context) (T, error)
	Reconcile func(result T)
	Revert    func()
	Reload    func(ctx context.Context) error
}

// Controller runs mutations, one at a time per key
type Controller struct {
	mu    sync.Mutex
	locks map[string]*keyLock

	total   *prometheus.CounterVec
	pending prometheus.Gauge
	logger  *logger.Logger
}

type keyLock struct {
	sem  chan struct{}
	refs int
}

// NewController creates a controller. Metrics are registered on reg when it
// is non-nil; collectors already present on reg are reused.
func NewController(reg prometheus.Registerer, logger *logger.Logger) *Controller {
	total := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "planner_mutations_total",
			Help: "Optimistic mutations by kind and lifecycle state",
		},
		[]string{"kind", "state"},
	)
	pending := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "planner_mutations_pending",
		Help: "Optimistic mutations awaiting the server",
	})

	if reg != nil {
		total = register(reg, total)
		pending = register(reg, pending)
	}

	return &Controller{
		locks:   make(map[string]*keyLock),
		total:   total,
		pending: pending,
		logger:  logger.WithComponent("optimistic"),
	}
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) C {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing
			}
		}
		panic(err)
	}
	return c
}

// Execute runs m to completion. The returned error is the Apply or Commit
// failure; rollback failures are joined onto it.
func Execute[T any](ctx context.Context, c *Controller, m Mutation[T]) (T, error) {
	var zero T

	if err := c.lock(ctx, m.Key); err != nil {
		return zero, err
	}
	defer c.unlock(m.Key)

	if m.Apply != nil {
		if err := m.Apply(); err != nil {
			return zero, err
		}
	}

	c.transition(m.Kind, Pending)
	c.pending.Inc()
	result, err := m.Commit(ctx)
	c.pending.Dec()

	if err == nil {
		if m.Reconcile != nil {
			m.Reconcile(result)
		}
		c.transition(m.Kind, Confirmed)
		return result, nil
	}

	c.logger.Warnw("Mutation rejected, rolling back",
		"key", m.Key,
		"kind", string(m.Kind),
		"error", err.Error(),
	)
	if rbErr := c.rollback(ctx, m, err); rbErr != nil {
		err = errors.Join(err, rbErr)
	}
	c.transition(m.Kind, RolledBack)
	return zero, err
}

func (c *Controller) rollback(ctx context.Context, m rollbackable, cause error) error {
	// The caller's context may be what failed the commit.
	if ctx.Err() != nil {
		ctx = context.WithoutCancel(ctx)
	}

	if m.kind() == FieldEdit {
		m.revert()
		if !errors.Is(cause, entities.ErrNotFound) || !m.canReload() {
			return nil
		}
		if err := m.reload(ctx); err != nil {
			return fmt.Errorf("reload after rollback: %w", err)
		}
		return nil
	}

	if !m.canReload() {
		m.revert()
		return nil
	}
	if err := m.reload(ctx); err != nil {
		m.revert()
		return fmt.Errorf("reload after rollback: %w", err)
	}
	return nil
}

// rollbackable is the type-independent part of a Mutation
type rollbackable interface {
	kind() Kind
	revert()
	canReload() bool
	reload(ctx context.Context) error
}

func (m Mutation[T]) kind() Kind { return m.Kind }

func (m Mutation[T]) revert() {
	if m.Revert != nil {
		m.Revert()
	}
}

func (m Mutation[T]) canReload() bool { return m.Reload != nil }

func (m Mutation[T]) reload(ctx context.Context) error { return m.Reload(ctx) }

func (c *Controller) transition(kind Kind, state State) {
	c.total.WithLabelValues(string(kind), string(state)).Inc()
}

func (c *Controller) lock(ctx context.Context, key string) error {
	c.mu.Lock()
	kl, ok := c.locks[key]
	if !ok {
		kl = &keyLock{sem: make(chan struct{}, 1)}
		c.locks[key] = kl
	}
	kl.refs++
	c.mu.Unlock()

	select {
	case kl.sem <- struct{}{}:
		return nil
	case <-ctx.Done():
		c.release(key, kl)
		return ctx.Err()
	}
}

func (c *Controller) unlock(key string) {
	c.mu.Lock()
	kl := c.locks[key]
	c.mu.Unlock()

	<-kl.sem
	c.release(key, kl)
}

func (c *Controller) release(key string, kl *keyLock) {
	c.mu.Lock()
	defer c.mu.Unlock()
	kl.refs--
	if kl.refs == 0 {
		delete(c.locks, key)
	}
}

// InFlight reports how many keys currently hold or wait for a lock
func (c *Controller) InFlight() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.locks)
}

// Key builds the lock key for an entity
func Key(kind string, id int64) string {
	return fmt.Sprintf("%s:%d", kind, id)
}
