package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/farmguardian/farm-guardian/internal/core/domain"
	"github.com/farmguardian/farm-guardian/internal/core/ports"
)

// ---------------------------------------------------------------------------
// In-memory user repository
// ---------------------------------------------------------------------------

// stubUserRepo enforces the same unique fields as the Mongo indexes, under a
// mutex so concurrent registrations race the way they would on the database.
type stubUserRepo struct {
	mu        sync.Mutex
	seq       int
	users     map[string]*domain.User
	createErr error
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: make(map[string]*domain.User)}
}

func cloneUser(u *domain.User) *domain.User {
	clone := *u
	if u.Documents != nil {
		docs := *u.Documents
		clone.Documents = &docs
	}
	return &clone
}

func (r *stubUserRepo) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return nil, r.createErr
	}
	for _, u := range r.users {
		switch {
		case u.Email == user.Email:
			return nil, &domain.ConflictError{Field: "email"}
		case u.Phone == user.Phone:
			return nil, &domain.ConflictError{Field: "phone"}
		case user.AadhaarNumber != "" && u.AadhaarNumber == user.AadhaarNumber:
			return nil, &domain.ConflictError{Field: "aadhaarNumber"}
		case user.LicenseNumber != "" && u.LicenseNumber == user.LicenseNumber:
			return nil, &domain.ConflictError{Field: "licenseNumber"}
		}
	}
	r.seq++
	stored := cloneUser(user)
	stored.ID = fmt.Sprintf("%024x", r.seq)
	r.users[stored.ID] = stored
	return cloneUser(stored), nil
}

func (r *stubUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return cloneUser(u), nil
}

func (r *stubUserRepo) update(id string, fn func(*domain.User)) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	fn(u)
	u.UpdatedAt = time.Now().UTC()
	return cloneUser(u), nil
}

func (r *stubUserRepo) UpdateFarmData(_ context.Context, id string, fd domain.FarmData) (*domain.User, error) {
	return r.update(id, func(u *domain.User) { u.FarmData = fd })
}

func (r *stubUserRepo) UpdateProfileImage(_ context.Context, id, ref string) (*domain.User, error) {
	return r.update(id, func(u *domain.User) { u.ProfileImage = ref })
}

func (r *stubUserRepo) UpdatePassword(_ context.Context, id, hash string) error {
	_, err := r.update(id, func(u *domain.User) { u.PasswordHash = hash })
	return err
}

func (r *stubUserRepo) remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.users, id)
}

func (r *stubUserRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.users)
}

// ---------------------------------------------------------------------------
// Generic in-memory record repository
// ---------------------------------------------------------------------------

type memRecords[T any, F any] struct {
	mu       sync.Mutex
	seq      int
	items    map[string]T
	order    []string
	id       func(*T) *string
	match    func(*T, F) bool
	notFound error
}

func newMemRecords[T any, F any](id func(*T) *string, match func(*T, F) bool, notFound error) *memRecords[T, F] {
	return &memRecords[T, F]{items: make(map[string]T), id: id, match: match, notFound: notFound}
}

func (m *memRecords[T, F]) Create(_ context.Context, rec *T) (*T, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	stored := *rec
	*m.id(&stored) = fmt.Sprintf("%024x", m.seq)
	m.items[*m.id(&stored)] = stored
	m.order = append(m.order, *m.id(&stored))
	out := stored
	return &out, nil
}

func (m *memRecords[T, F]) FindByID(_ context.Context, id string) (*T, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.items[id]
	if !ok {
		return nil, m.notFound
	}
	return &rec, nil
}

func (m *memRecords[T, F]) List(_ context.Context, filter F) ([]*T, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []*T{}
	for _, id := range m.order {
		rec, ok := m.items[id]
		if !ok || !m.match(&rec, filter) {
			continue
		}
		out = append(out, &rec)
	}
	return out, nil
}

func (m *memRecords[T, F]) Update(_ context.Context, rec *T) (*T, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := *m.id(rec)
	if _, ok := m.items[id]; !ok {
		return nil, m.notFound
	}
	m.items[id] = *rec
	out := *rec
	return &out, nil
}

func (m *memRecords[T, F]) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.items[id]; !ok {
		return m.notFound
	}
	delete(m.items, id)
	return nil
}

func newFarmRepo() *memRecords[domain.Farm, ports.FarmFilter] {
	return newMemRecords(
		func(f *domain.Farm) *string { return &f.ID },
		func(f *domain.Farm, q ports.FarmFilter) bool {
			return (q.OwnerID == "" || f.OwnerID == q.OwnerID) && (q.Type == "" || f.Type == q.Type)
		},
		domain.ErrFarmNotFound,
	)
}

func newAlertRepo() *memRecords[domain.Alert, ports.AlertFilter] {
	return newMemRecords(
		func(a *domain.Alert) *string { return &a.ID },
		func(a *domain.Alert, q ports.AlertFilter) bool {
			return (q.FarmID == "" || a.FarmID == q.FarmID) && (q.Severity == "" || string(a.Severity) == q.Severity)
		},
		domain.ErrAlertNotFound,
	)
}

func newComplianceRepo() *memRecords[domain.Compliance, ports.ComplianceFilter] {
	return newMemRecords(
		func(c *domain.Compliance) *string { return &c.ID },
		func(c *domain.Compliance, q ports.ComplianceFilter) bool {
			return (q.FarmID == "" || c.FarmID == q.FarmID) && (q.Status == "" || c.Status == q.Status)
		},
		domain.ErrComplianceNotFound,
	)
}

func newFeedbackRepo() *memRecords[domain.Feedback, ports.FeedbackFilter] {
	return newMemRecords(
		func(f *domain.Feedback) *string { return &f.ID },
		func(f *domain.Feedback, q ports.FeedbackFilter) bool {
			return q.UserID == "" || f.UserID == q.UserID
		},
		domain.ErrFeedbackNotFound,
	)
}

func newAssessmentRepo() *memRecords[domain.Assessment, ports.AssessmentFilter] {
	return newMemRecords(
		func(a *domain.Assessment) *string { return &a.ID },
		func(a *domain.Assessment, q ports.AssessmentFilter) bool {
			return (q.UserID == "" || a.UserID == q.UserID) && (q.FarmID == "" || a.FarmID == q.FarmID)
		},
		domain.ErrAssessmentNotFound,
	)
}

// ---------------------------------------------------------------------------
// Storage, revocation and event stubs
// ---------------------------------------------------------------------------

type stubStorage struct {
	mu      sync.Mutex
	files   map[string][]byte
	types   map[string]string
	saveErr error
}

func newStubStorage() *stubStorage {
	return &stubStorage{files: make(map[string][]byte), types: make(map[string]string)}
}

func (s *stubStorage) Save(_ context.Context, key string, r io.Reader, _ int64, contentType string) (string, error) {
	if s.saveErr != nil {
		return "", s.saveErr
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	ref := "/uploads/" + key
	s.files[ref] = b
	s.types[ref] = contentType
	return ref, nil
}

func (s *stubStorage) Delete(_ context.Context, ref string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.files[ref]; !ok {
		return errors.New("no such file")
	}
	delete(s.files, ref)
	return nil
}

func (s *stubStorage) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.files)
}

func (s *stubStorage) has(ref string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.files[ref]
	return ok
}

type stubRevoker struct {
	mu       sync.Mutex
	revoked  map[string]time.Time
	checkErr error
}

func newStubRevoker() *stubRevoker {
	return &stubRevoker{revoked: make(map[string]time.Time)}
}

func (r *stubRevoker) Revoke(_ context.Context, id string, until time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.revoked[id] = until
	return nil
}

func (r *stubRevoker) IsRevoked(_ context.Context, id string) (bool, error) {
	if r.checkErr != nil {
		return false, r.checkErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.revoked[id]
	return ok, nil
}

type stubEmitter struct {
	mu     sync.Mutex
	events []domain.Event
}

func (e *stubEmitter) Emit(ev domain.Event) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.events = append(e.events, ev)
}

func (e *stubEmitter) types() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]string, 0, len(e.events))
	for _, ev := range e.events {
		out = append(out, ev.Type)
	}
	return out
}

// ---------------------------------------------------------------------------
// Upload fixtures
// ---------------------------------------------------------------------------

var (
	pngBytes  = append([]byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"), make([]byte, 32)...)
	pdfBytes  = []byte("%PDF-1.4\n1 0 obj\n<< /Type /Catalog >>\nendobj\n%%EOF\n")
	textBytes = []byte(strings.Repeat("just some plain text\n", 4))
)

func upload(field, filename string, content []byte) *ports.Upload {
	return &ports.Upload{
		Field:    field,
		Filename: filename,
		Size:     int64(len(content)),
		Open: func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(content)), nil
		},
	}
}
