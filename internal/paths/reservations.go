package paths

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
)

// ReservationOption configures Reservations.
type ReservationOption func(*Reservations)

// WithPlaceholders toggles creating an empty file for each reservation. When
// disabled reservations are only tracked in memory.
func WithPlaceholders(enabled bool) ReservationOption {
	return func(r *Reservations) {
		r.placeholders = enabled
	}
}

// Reservations serializes conflict allocation per parent folder so parallel
// renders into one folder never receive the same candidate.
type Reservations struct {
	resolver     *Resolver
	placeholders bool

	mu       sync.Mutex
	folders  map[string]*sync.Mutex
	reserved map[string]struct{}
}

// NewReservations wraps resolver with per-folder allocation locks.
func NewReservations(resolver *Resolver, opts ...ReservationOption) *Reservations {
	r := &Reservations{
		resolver:     resolver,
		placeholders: true,
		folders:      make(map[string]*sync.Mutex),
		reserved:     make(map[string]struct{}),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

// Reserve allocates a conflict-free path for p and marks it taken before the
// folder lock is released.
func (r *Reservations) Reserve(p string) (string, error) {
	if r == nil || r.resolver == nil {
		return "", ErrRootRequired
	}
	abs, err := r.resolver.Abs(p)
	if err != nil {
		return "", err
	}
	lock := r.folderLock(filepath.Dir(abs))
	lock.Lock()
	defer lock.Unlock()

	probe := *r.resolver
	probe.exists = func(candidate string) bool {
		return r.isReserved(candidate) || r.resolver.exists(candidate)
	}

	for {
		candidate, err := probe.ResolveConflict(p)
		if err != nil {
			return "", err
		}
		candidateAbs, err := r.resolver.Abs(candidate)
		if err != nil {
			return "", err
		}
		if r.placeholders {
			created, err := createExclusive(candidateAbs)
			if err != nil {
				return "", err
			}
			if !created {
				// lost a race with a writer outside this process
				r.markReserved(candidateAbs)
				continue
			}
		}
		r.markReserved(candidateAbs)
		r.resolver.logger.Debug("paths.reservation.created", "path", candidate)
		return candidate, nil
	}
}

// Claim reserves p as is, without conflict probing, for resources whose
// layout owns their path. An existing file at p is kept. Claiming a path
// twice is allowed since the owner is always the same resource.
func (r *Reservations) Claim(p string) (string, error) {
	if r == nil || r.resolver == nil {
		return "", ErrRootRequired
	}
	abs, err := r.resolver.Abs(p)
	if err != nil {
		return "", err
	}
	lock := r.folderLock(filepath.Dir(abs))
	lock.Lock()
	defer lock.Unlock()

	if r.placeholders {
		if _, err := createExclusive(abs); err != nil {
			return "", err
		}
	}
	r.markReserved(abs)
	claimed := filepath.ToSlash(p)
	r.resolver.logger.Debug("paths.reservation.claimed", "path", claimed)
	return claimed, nil
}

// Release forgets an in-memory reservation. Placeholder files are left on disk.
func (r *Reservations) Release(p string) {
	abs, err := r.resolver.Abs(p)
	if err != nil {
		return
	}
	r.mu.Lock()
	delete(r.reserved, abs)
	r.mu.Unlock()
}

// Reserved reports whether p is currently held by this instance.
func (r *Reservations) Reserved(p string) bool {
	abs, err := r.resolver.Abs(p)
	if err != nil {
		return false
	}
	return r.isReserved(abs)
}

func (r *Reservations) folderLock(dir string) *sync.Mutex {
	r.mu.Lock()
	defer r.mu.Unlock()
	lock, ok := r.folders[dir]
	if !ok {
		lock = &sync.Mutex{}
		r.folders[dir] = lock
	}
	return lock
}

func (r *Reservations) isReserved(abs string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.reserved[abs]
	return ok
}

func (r *Reservations) markReserved(abs string) {
	r.mu.Lock()
	r.reserved[abs] = struct{}{}
	r.mu.Unlock()
}

func createExclusive(abs string) (bool, error) {
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		return false, err
	}
	f, err := os.OpenFile(abs, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return false, nil
		}
		return false, err
	}
	return true, f.Close()
}

