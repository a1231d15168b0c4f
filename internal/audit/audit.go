// Package audit despacha eventos de auditoría (códigos estilo Auth0) al
// LogRepository sin bloquear el flujo de login: cola acotada, un worker, y
// los eventos que no entran se descartan y se cuentan.
package audit

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/dropDatabas3/authhero/internal/domain/repository"
	"github.com/dropDatabas3/authhero/internal/metrics"
	"github.com/dropDatabas3/authhero/internal/observability/logger"
)

// Tipos de evento.
const (
	SuccessLogin             = "s"
	FailedLogin              = "f"
	FailedLoginWrongPassword = "fp"
	FailedLoginUnknownUser   = "fu"
	FailedSignup             = "fs"
	SuccessSignup            = "ss"
	FailedSilentAuth         = "fsa"
	SuccessSilentAuth        = "ssa"
	SuccessExchangeCode      = "seacft"
	FailedExchangeCode       = "feacft"
	SuccessClientCredentials = "seccft"
	FailedClientCredentials  = "feccft"
	SuccessLogout            = "slo"
	CodeSent                 = "cs"
	CodeLinkSent             = "cls"
	SuccessVerificationEmail = "sv"
	SuccessChangePassword    = "scp"
	FailedCrossOriginAuth    = "fcoa"
	SuccessCrossOriginAuth   = "scoa"
	FailedVerificationEmail  = "fv"
	SuccessChangePasswordReq = "scpr"
	FailedChangePasswordReq  = "fcpr"
)

// Event es lo que emiten los services; Dispatcher completa id y fecha.
type Event struct {
	TenantID    string
	Type        string
	Description string
	IP          string
	UserAgent   string
	ClientID    string
	UserID      string
	UserName    string
	Connection  string
	Details     map[string]any
}

// Emitter es lo que consumen los services.
type Emitter interface {
	Emit(ctx context.Context, e Event)
}

// Nop descarta todo.
type Nop struct{}

func (Nop) Emit(context.Context, Event) {}

type Config struct {
	BufferSize int
	// Timeout por escritura al repositorio.
	WriteTimeout time.Duration
}

// Dispatcher escribe en background al LogRepository.
type Dispatcher struct {
	repo      repository.LogRepository
	cfg       Config
	now       func() time.Time
	ch        chan repository.LogEntry
	done      chan struct{}
	wg        sync.WaitGroup
	dropped   atomic.Uint64
	closed    atomic.Bool
	closeOnce sync.Once
}

func NewDispatcher(repo repository.LogRepository, cfg Config) *Dispatcher {
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = 1024
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = 5 * time.Second
	}
	d := &Dispatcher{
		repo: repo,
		cfg:  cfg,
		now:  time.Now,
		ch:   make(chan repository.LogEntry, cfg.BufferSize),
		done: make(chan struct{}),
	}
	d.wg.Add(1)
	go d.run()
	return d
}

func (d *Dispatcher) run() {
	defer d.wg.Done()
	for {
		select {
		case e := <-d.ch:
			d.write(e)
		case <-d.done:
			for {
				select {
				case e := <-d.ch:
					d.write(e)
				default:
					return
				}
			}
		}
	}
}

func (d *Dispatcher) write(e repository.LogEntry) {
	ctx, cancel := context.WithTimeout(context.Background(), d.cfg.WriteTimeout)
	defer cancel()
	if err := d.repo.Create(ctx, &e); err != nil {
		logger.L().Warn("audit write failed",
			logger.Component("audit"),
			logger.TenantID(e.TenantID),
			logger.String("type", e.Type),
			logger.Err(err),
		)
	}
}

// Emit nunca bloquea: si la cola está llena el evento se descarta.
func (d *Dispatcher) Emit(ctx context.Context, ev Event) {
	if d == nil || d.closed.Load() {
		return
	}
	e := repository.LogEntry{
		ID:          uuid.NewString(),
		TenantID:    ev.TenantID,
		Type:        ev.Type,
		Date:        d.now().UTC(),
		Description: ev.Description,
		IP:          ev.IP,
		UserAgent:   ev.UserAgent,
		ClientID:    ev.ClientID,
		UserID:      ev.UserID,
		UserName:    ev.UserName,
		Connection:  ev.Connection,
		Details:     ev.Details,
	}
	select {
	case d.ch <- e:
	case <-d.done:
	default:
		d.dropped.Add(1)
		metrics.AuditDropped.Inc()
		logger.From(ctx).Warn("audit queue full, event dropped",
			logger.Component("audit"), logger.String("type", ev.Type))
	}
}

// Close drena la cola y espera al worker.
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

func (d *Dispatcher) Dropped() uint64 {
	if d == nil {
		return 0
	}
	return d.dropped.Load()
}
