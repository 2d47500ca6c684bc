package provision

import (
	"context"
	"log"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
)

// Config controls dispatcher buffering behavior.
type Config struct {
	Enabled    bool
	BufferSize int
}

// RecordFunc persists the token that was last provisioned. It is invoked
// after a successful provision call; failures are logged and discarded, and
// no atomicity with the session token write is assumed.
type RecordFunc func(ctx context.Context, token string) error

type jobKind uint8

const (
	jobProvision jobKind = iota
	jobRemove
)

type job struct {
	id    string
	kind  jobKind
	token string
}

// Dispatcher executes provisioning work on a single background worker.
type Dispatcher struct {
	cfg       Config
	prov      Provisioner
	record    RecordFunc
	ch        chan job
	done      chan struct{}
	wg        sync.WaitGroup
	dropped   atomic.Uint64
	failed    atomic.Uint64
	closed    atomic.Bool
	closeOnce sync.Once
}

// NewDispatcher starts the worker goroutine. It returns nil when
// provisioning is disabled; a nil Dispatcher is safe to use.
func NewDispatcher(cfg Config, prov Provisioner, record RecordFunc) *Dispatcher {
	if !cfg.Enabled {
		return nil
	}
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = 1
	}
	if prov == nil {
		prov = NoOp{}
	}

	d := &Dispatcher{
		cfg:    cfg,
		prov:   prov,
		record: record,
		ch:     make(chan job, cfg.BufferSize),
		done:   make(chan struct{}),
	}

	d.wg.Add(1)
	go d.run()

	return d
}

func (d *Dispatcher) run() {
	defer d.wg.Done()

	for {
		select {
		case j := <-d.ch:
			d.execute(j)
		case <-d.done:
			for {
				select {
				case j := <-d.ch:
					d.execute(j)
				default:
					return
				}
			}
		}
	}
}

func (d *Dispatcher) execute(j job) {
	ctx := context.Background()

	switch j.kind {
	case jobProvision:
		if err := d.prov.ProvisionIfSubscribed(ctx, j.token); err != nil {
			d.failed.Add(1)
			log.Printf("mindwise: provisioning job %s failed: %v", j.id, err)
			return
		}
		if d.record != nil {
			if err := d.record(ctx, j.token); err != nil {
				log.Printf("mindwise: provisioning bookkeeping for job %s failed: %v", j.id, err)
			}
		}
	case jobRemove:
		if err := d.prov.RemoveExternalUserID(ctx); err != nil {
			d.failed.Add(1)
			log.Printf("mindwise: identity removal job %s failed: %v", j.id, err)
		}
	}
}

func (d *Dispatcher) submit(j job) bool {
	if d == nil || d.closed.Load() {
		return false
	}

	select {
	case d.ch <- j:
		return true
	case <-d.done:
		return false
	default:
		d.dropped.Add(1)
		return false
	}
}

// Provision queues an identity-association job for the given token. It never
// blocks; it reports whether the job was accepted.
func (d *Dispatcher) Provision(token string) bool {
	return d.submit(job{id: uuid.NewString(), kind: jobProvision, token: token})
}

// Remove queues an identity-disassociation job. It never blocks; it reports
// whether the job was accepted.
func (d *Dispatcher) Remove() bool {
	return d.submit(job{id: uuid.NewString(), kind: jobRemove})
}

// Close drains queued jobs and stops the worker. It is idempotent.
func (d *Dispatcher) Close() {
	if d == nil {
		return
	}
	d.closeOnce.Do(func() {
		d.closed.Store(true)
		close(d.done)
		d.wg.Wait()
	})
}

// Dropped reports how many jobs were discarded because the buffer was full.
func (d *Dispatcher) Dropped() uint64 {
	if d == nil {
		return 0
	}
	return d.dropped.Load()
}

// Failed reports how many jobs ran but returned an error.
func (d *Dispatcher) Failed() uint64 {
	if d == nil {
		return 0
	}
	return d.failed.Load()
}
