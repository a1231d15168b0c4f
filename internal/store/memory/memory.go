// Package memory implementa todos los adapters de repository en memoria.
// Lo usan los tests del engine y el driver "memory" en desarrollo.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/dropDatabas3/authhero/internal/domain/repository"
)

// Store guarda todo bajo un único mutex; suficiente para tests y dev.
type Store struct {
	mu sync.RWMutex

	tenants     map[string]repository.Tenant
	apps        map[string]repository.Application
	connections map[string][]repository.Connection // por tenant

	users     map[string]repository.User // tenant/id
	passwords map[string]repository.Password
	sessions  map[string]repository.Session
	tickets   map[string]repository.Ticket
	otps      map[string]repository.OTP
	codes     map[string]repository.Code
	logins    map[string]repository.UniversalLoginSession
	keys      []repository.SigningKey
	logs      []repository.LogEntry
}

func New() *Store {
	return &Store{
		tenants:     map[string]repository.Tenant{},
		apps:        map[string]repository.Application{},
		connections: map[string][]repository.Connection{},
		users:       map[string]repository.User{},
		passwords:   map[string]repository.Password{},
		sessions:    map[string]repository.Session{},
		tickets:     map[string]repository.Ticket{},
		otps:        map[string]repository.OTP{},
		codes:       map[string]repository.Code{},
		logins:      map[string]repository.UniversalLoginSession{},
	}
}

func key(tenantID, id string) string { return tenantID + "/" + id }

// Adapters

func (s *Store) Clients() repository.ClientRepository     { return clientRepo{s} }
func (s *Store) Admin() repository.TenantAdmin            { return clientRepo{s} }
func (s *Store) Users() repository.UserRepository         { return userRepo{s} }
func (s *Store) Passwords() repository.PasswordRepository { return passwordRepo{s} }
func (s *Store) Sessions() repository.SessionRepository   { return sessionRepo{s} }
func (s *Store) Tickets() repository.TicketRepository     { return ticketRepo{s} }
func (s *Store) OTPs() repository.OTPRepository           { return otpRepo{s} }
func (s *Store) Codes() repository.CodeRepository         { return codeRepo{s} }
func (s *Store) LoginSessions() repository.UniversalLoginSessionRepository {
	return loginRepo{s}
}
func (s *Store) Keys() repository.KeyRepository { return keyRepo{s} }
func (s *Store) Logs() repository.LogRepository { return logRepo{s} }

// LogEntries devuelve una copia de los eventos de auditoría guardados.
func (s *Store) LogEntries() []repository.LogEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]repository.LogEntry(nil), s.logs...)
}

// ─── Clients ───

type clientRepo struct{ s *Store }

func (r clientRepo) Get(_ context.Context, clientID string) (*repository.Client, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	app, ok := r.s.apps[clientID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	tenant, ok := r.s.tenants[app.TenantID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	c := &repository.Client{Application: app, Tenant: tenant}
	c.Callbacks = append([]string(nil), app.Callbacks...)
	c.AllowedLogoutURLs = append([]string(nil), app.AllowedLogoutURLs...)
	c.WebOrigins = append([]string(nil), app.WebOrigins...)
	c.Connections = append([]repository.Connection(nil), r.s.connections[app.TenantID]...)
	return c, nil
}

func (r clientRepo) UpsertTenant(_ context.Context, t repository.Tenant) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.tenants[t.ID] = t
	return nil
}

func (r clientRepo) UpsertApplication(_ context.Context, a repository.Application) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.tenants[a.TenantID]; !ok {
		return repository.ErrInvalidInput
	}
	r.s.apps[a.ID] = a
	return nil
}

func (r clientRepo) UpsertConnection(_ context.Context, c repository.Connection) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	list := r.s.connections[c.TenantID]
	for i := range list {
		if list[i].ID == c.ID || strings.EqualFold(list[i].Name, c.Name) {
			list[i] = c
			return nil
		}
	}
	r.s.connections[c.TenantID] = append(list, c)
	return nil
}

// ─── Users ───

type userRepo struct{ s *Store }

func (r userRepo) Create(_ context.Context, u *repository.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	k := key(u.TenantID, u.ID)
	if _, dup := r.s.users[k]; dup {
		return repository.ErrConflict
	}
	now := time.Now().UTC()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	u.UpdatedAt = now
	r.s.users[k] = *u
	return nil
}

func (r userRepo) Get(_ context.Context, tenantID, id string) (*repository.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	u, ok := r.s.users[key(tenantID, id)]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &u, nil
}

func (r userRepo) GetByEmail(ctx context.Context, tenantID, email string) ([]repository.User, error) {
	return r.List(ctx, tenantID, repository.ListUsersFilter{Email: email})
}

func (r userRepo) List(_ context.Context, tenantID string, f repository.ListUsersFilter) ([]repository.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []repository.User
	for _, u := range r.s.users {
		if u.TenantID != tenantID {
			continue
		}
		if f.Email != "" && !strings.EqualFold(u.Email, f.Email) {
			continue
		}
		if f.Provider != "" && u.Provider != f.Provider {
			continue
		}
		if f.LinkedTo != "" && u.LinkedTo != f.LinkedTo {
			continue
		}
		out = append(out, u)
	}
	// orden estable: más viejo primero, como ORDER BY created_at en pg
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

func (r userRepo) Update(_ context.Context, tenantID, id string, upd repository.UserUpdate) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	k := key(tenantID, id)
	u, ok := r.s.users[k]
	if !ok {
		return repository.ErrNotFound
	}
	if upd.Email != nil {
		u.Email = *upd.Email
	}
	if upd.EmailVerified != nil {
		u.EmailVerified = *upd.EmailVerified
	}
	if upd.LinkedTo != nil {
		u.LinkedTo = *upd.LinkedTo
	}
	if upd.Name != nil {
		u.Name = *upd.Name
	}
	if upd.Picture != nil {
		u.Picture = *upd.Picture
	}
	if upd.ProfileData != nil {
		u.ProfileData = upd.ProfileData
	}
	if upd.LoginCount != nil {
		u.LoginCount = *upd.LoginCount
	}
	if upd.LastLogin != nil {
		t := *upd.LastLogin
		u.LastLogin = &t
	}
	if upd.LastIP != nil {
		u.LastIP = *upd.LastIP
	}
	u.UpdatedAt = time.Now().UTC()
	r.s.users[k] = u
	return nil
}

func (r userRepo) Unlink(_ context.Context, tenantID, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	k := key(tenantID, id)
	u, ok := r.s.users[k]
	if !ok {
		return repository.ErrNotFound
	}
	u.LinkedTo = ""
	u.UpdatedAt = time.Now().UTC()
	r.s.users[k] = u
	return nil
}

// Delete borra un usuario. No es parte de UserRepository; lo usan tests que
// simulan primarias borradas.
func (s *Store) DeleteUser(tenantID, id string) {
	s.mu.Lock()
	delete(s.users, key(tenantID, id))
	s.mu.Unlock()
}

// ─── Passwords ───

type passwordRepo struct{ s *Store }

func (r passwordRepo) Create(_ context.Context, p repository.Password) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	k := key(p.TenantID, p.UserID)
	if _, dup := r.s.passwords[k]; dup {
		return repository.ErrConflict
	}
	now := time.Now().UTC()
	p.CreatedAt, p.UpdatedAt = now, now
	r.s.passwords[k] = p
	return nil
}

func (r passwordRepo) Get(_ context.Context, tenantID, userID string) (*repository.Password, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	p, ok := r.s.passwords[key(tenantID, userID)]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &p, nil
}

func (r passwordRepo) Update(_ context.Context, p repository.Password) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	k := key(p.TenantID, p.UserID)
	prev, ok := r.s.passwords[k]
	if !ok {
		return repository.ErrNotFound
	}
	prev.Hash = p.Hash
	prev.UpdatedAt = time.Now().UTC()
	r.s.passwords[k] = prev
	return nil
}

// ─── Sessions ───

type sessionRepo struct{ s *Store }

func (r sessionRepo) Create(_ context.Context, sess *repository.Session) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	k := key(sess.TenantID, sess.ID)
	if _, dup := r.s.sessions[k]; dup {
		return repository.ErrConflict
	}
	r.s.sessions[k] = *sess
	return nil
}

func (r sessionRepo) Get(_ context.Context, tenantID, id string) (*repository.Session, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	sess, ok := r.s.sessions[key(tenantID, id)]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &sess, nil
}

func (r sessionRepo) Touch(_ context.Context, tenantID, id string, at time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	k := key(tenantID, id)
	sess, ok := r.s.sessions[k]
	if !ok {
		return repository.ErrNotFound
	}
	sess.UsedAt = &at
	r.s.sessions[k] = sess
	return nil
}

func (r sessionRepo) Remove(_ context.Context, tenantID, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	k := key(tenantID, id)
	sess, ok := r.s.sessions[k]
	if !ok || sess.DeletedAt != nil {
		return repository.ErrNotFound
	}
	now := time.Now().UTC()
	sess.DeletedAt = &now
	r.s.sessions[k] = sess
	return nil
}

// ─── Tickets ───

type ticketRepo struct{ s *Store }

func (r ticketRepo) Create(_ context.Context, t *repository.Ticket) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.tickets[key(t.TenantID, t.ID)] = *t
	return nil
}

func (r ticketRepo) Get(_ context.Context, tenantID, id string) (*repository.Ticket, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	t, ok := r.s.tickets[key(tenantID, id)]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &t, nil
}

func (r ticketRepo) Remove(_ context.Context, tenantID, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	k := key(tenantID, id)
	if _, ok := r.s.tickets[k]; !ok {
		return repository.ErrNotFound
	}
	delete(r.s.tickets, k)
	return nil
}

// ─── OTPs ───

type otpRepo struct{ s *Store }

func (r otpRepo) Create(_ context.Context, o *repository.OTP) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.otps[key(o.TenantID, o.ID)] = *o
	return nil
}

func (r otpRepo) List(_ context.Context, tenantID, email string) ([]repository.OTP, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []repository.OTP
	for _, o := range r.s.otps {
		if o.TenantID == tenantID && strings.EqualFold(o.Email, email) {
			out = append(out, o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r otpRepo) Remove(_ context.Context, tenantID, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	k := key(tenantID, id)
	if _, ok := r.s.otps[k]; !ok {
		return repository.ErrNotFound
	}
	delete(r.s.otps, k)
	return nil
}

// ─── Codes ───

type codeRepo struct{ s *Store }

func (r codeRepo) Create(_ context.Context, c *repository.Code) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.codes[key(c.TenantID, c.ID)] = *c
	return nil
}

func (r codeRepo) List(_ context.Context, tenantID, userID string) ([]repository.Code, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []repository.Code
	for _, c := range r.s.codes {
		if c.TenantID == tenantID && c.UserID == userID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r codeRepo) Remove(_ context.Context, tenantID, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	k := key(tenantID, id)
	if _, ok := r.s.codes[k]; !ok {
		return repository.ErrNotFound
	}
	delete(r.s.codes, k)
	return nil
}

// ─── Universal login sessions ───

type loginRepo struct{ s *Store }

func (r loginRepo) Create(_ context.Context, l *repository.UniversalLoginSession) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.logins[key(l.TenantID, l.ID)] = *l
	return nil
}

func (r loginRepo) Get(_ context.Context, tenantID, id string) (*repository.UniversalLoginSession, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	l, ok := r.s.logins[key(tenantID, id)]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &l, nil
}

func (r loginRepo) Update(_ context.Context, l *repository.UniversalLoginSession) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	k := key(l.TenantID, l.ID)
	if _, ok := r.s.logins[k]; !ok {
		return repository.ErrNotFound
	}
	l.UpdatedAt = time.Now().UTC()
	r.s.logins[k] = *l
	return nil
}

// ─── Keys ───

type keyRepo struct{ s *Store }

func (r keyRepo) List(_ context.Context) ([]repository.SigningKey, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]repository.SigningKey, len(r.s.keys))
	copy(out, r.s.keys)
	return out, nil
}

func (r keyRepo) Create(_ context.Context, k *repository.SigningKey) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.keys = append(r.s.keys, *k)
	return nil
}

func (r keyRepo) Revoke(_ context.Context, kid string, at time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i := range r.s.keys {
		if r.s.keys[i].KID == kid {
			t := at
			r.s.keys[i].RevokedAt = &t
			return nil
		}
	}
	return repository.ErrNotFound
}

// ─── Logs ───

type logRepo struct{ s *Store }

func (r logRepo) Create(_ context.Context, e *repository.LogEntry) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.logs = append(r.s.logs, *e)
	return nil
}
