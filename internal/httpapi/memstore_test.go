package httpapi

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"fypms/internal/model"
	"fypms/internal/repository"
)

// memStore is an in-memory Store used by the handler tests.
type memStore struct {
	mu          sync.Mutex
	admins      map[string]model.Admin
	supervisors map[string]model.Supervisor
	students    map[string]model.Student
	proposals   map[string]model.Proposal
	projects    map[string]model.Project
}

func newMemStore() *memStore {
	return &memStore{
		admins:      make(map[string]model.Admin),
		supervisors: make(map[string]model.Supervisor),
		students:    make(map[string]model.Student),
		proposals:   make(map[string]model.Proposal),
		projects:    make(map[string]model.Project),
	}
}

func (m *memStore) GetAdminByEmail(_ context.Context, email string) (model.Admin, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, admin := range m.admins {
		if admin.Email == email {
			return admin, nil
		}
	}
	return model.Admin{}, repository.ErrNotFound
}

func (m *memStore) GetAdminByID(_ context.Context, id string) (model.Admin, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	admin, ok := m.admins[id]
	if !ok {
		return model.Admin{}, repository.ErrNotFound
	}
	return admin, nil
}

func (m *memStore) GetSupervisorByEmail(_ context.Context, email string) (model.Supervisor, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, sup := range m.supervisors {
		if sup.Email == email {
			return sup, nil
		}
	}
	return model.Supervisor{}, repository.ErrNotFound
}

func (m *memStore) GetSupervisorByID(_ context.Context, id string) (model.Supervisor, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sup, ok := m.supervisors[id]
	if !ok {
		return model.Supervisor{}, repository.ErrNotFound
	}
	return sup, nil
}

func (m *memStore) CreateSupervisor(_ context.Context, sup model.Supervisor) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.supervisors {
		if existing.Email == sup.Email {
			return repository.ErrDuplicate
		}
	}
	m.supervisors[sup.ID] = sup
	return nil
}

func (m *memStore) ListSupervisors(_ context.Context) ([]model.Supervisor, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]model.Supervisor, 0, len(m.supervisors))
	for _, sup := range m.supervisors {
		out = append(out, sup)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *memStore) SearchSupervisorsByName(_ context.Context, name string, limit int) ([]model.Supervisor, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.Supervisor
	for _, sup := range m.supervisors {
		if strings.Contains(strings.ToLower(sup.Name), strings.ToLower(name)) {
			out = append(out, sup)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memStore) UpdateSupervisor(_ context.Context, id string, update repository.SupervisorUpdate) (model.Supervisor, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sup, ok := m.supervisors[id]
	if !ok {
		return model.Supervisor{}, repository.ErrNotFound
	}
	if update.Name != nil {
		sup.Name = *update.Name
	}
	if update.Email != nil {
		sup.Email = *update.Email
	}
	if update.PasswordHash != nil {
		sup.PasswordHash = *update.PasswordHash
	}
	sup.UpdatedAt = time.Now().UTC()
	m.supervisors[id] = sup
	return sup, nil
}

func (m *memStore) DeleteSupervisor(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.supervisors[id]; !ok {
		return repository.ErrNotFound
	}
	delete(m.supervisors, id)
	return nil
}

func (m *memStore) GetStudentByEmail(_ context.Context, email string) (model.Student, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, st := range m.students {
		if st.Email == email {
			return st, nil
		}
	}
	return model.Student{}, repository.ErrNotFound
}

func (m *memStore) GetStudentByID(_ context.Context, id string) (model.Student, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	st, ok := m.students[id]
	if !ok {
		return model.Student{}, repository.ErrNotFound
	}
	return st, nil
}

func (m *memStore) CreateStudent(_ context.Context, st model.Student) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.students {
		if existing.Email == st.Email || existing.RollNumber == st.RollNumber {
			return repository.ErrDuplicate
		}
	}
	m.students[st.ID] = st
	return nil
}

func (m *memStore) ListStudentsBySupervisor(_ context.Context, supervisorID string) ([]model.Student, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.Student
	for _, st := range m.students {
		if st.AddedBy == supervisorID {
			out = append(out, st)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *memStore) UpdateStudent(_ context.Context, id, supervisorID string, update repository.StudentUpdate) (model.Student, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	st, ok := m.students[id]
	if !ok || st.AddedBy != supervisorID {
		return model.Student{}, repository.ErrNotFound
	}
	if update.Name != nil {
		st.Name = *update.Name
	}
	if update.Email != nil {
		st.Email = *update.Email
	}
	if update.RollNumber != nil {
		st.RollNumber = *update.RollNumber
	}
	if update.PasswordHash != nil {
		st.PasswordHash = *update.PasswordHash
	}
	st.UpdatedAt = time.Now().UTC()
	m.students[id] = st
	return st, nil
}

func (m *memStore) DeleteStudent(_ context.Context, id, supervisorID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	st, ok := m.students[id]
	if !ok || st.AddedBy != supervisorID {
		return repository.ErrNotFound
	}
	delete(m.students, id)
	return nil
}

func (m *memStore) SetRefreshToken(_ context.Context, role model.Role, id string, token *string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	switch role {
	case model.RoleAdmin:
		admin, ok := m.admins[id]
		if !ok {
			return repository.ErrNotFound
		}
		admin.RefreshToken = token
		m.admins[id] = admin
	case model.RoleSupervisor:
		sup, ok := m.supervisors[id]
		if !ok {
			return repository.ErrNotFound
		}
		sup.RefreshToken = token
		m.supervisors[id] = sup
	case model.RoleStudent:
		st, ok := m.students[id]
		if !ok {
			return repository.ErrNotFound
		}
		st.RefreshToken = token
		m.students[id] = st
	}
	return nil
}

func (m *memStore) CreateProposal(_ context.Context, p model.Proposal) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.proposals[p.ID] = p
	return nil
}

func (m *memStore) ListProposalsByStudent(_ context.Context, studentID string) ([]model.Proposal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.Proposal
	for _, p := range m.proposals {
		if p.SubmittedBy == studentID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *memStore) ListProposalsBySupervisor(_ context.Context, supervisorID string) ([]repository.SupervisorItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []repository.SupervisorItem
	for _, p := range m.proposals {
		if p.SupervisorID != supervisorID {
			continue
		}
		proposal := p
		out = append(out, repository.SupervisorItem{Proposal: &proposal, Student: m.studentSummary(p.SubmittedBy)})
	}
	return out, nil
}

func (m *memStore) UpdateProposalStatus(_ context.Context, id, supervisorID string, status model.ItemStatus) (model.Proposal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.proposals[id]
	if !ok || p.SupervisorID != supervisorID || p.Status != model.StatusPending {
		return model.Proposal{}, repository.ErrNotFound
	}
	p.Status = status
	p.UpdatedAt = time.Now().UTC()
	m.proposals[id] = p
	return p, nil
}

func (m *memStore) CreateProject(_ context.Context, p model.Project) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.projects[p.ID] = p
	return nil
}

func (m *memStore) ListProjectsByStudent(_ context.Context, studentID string) ([]model.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.Project
	for _, p := range m.projects {
		if p.SubmittedBy == studentID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *memStore) ListProjectsBySupervisor(_ context.Context, supervisorID string) ([]repository.SupervisorItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []repository.SupervisorItem
	for _, p := range m.projects {
		if p.SupervisorID != supervisorID {
			continue
		}
		project := p
		out = append(out, repository.SupervisorItem{Project: &project, Student: m.studentSummary(p.SubmittedBy)})
	}
	return out, nil
}

func (m *memStore) UpdateProjectStatus(_ context.Context, id, supervisorID string, status model.ItemStatus) (model.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.projects[id]
	if !ok || p.SupervisorID != supervisorID || p.Status != model.StatusPending {
		return model.Project{}, repository.ErrNotFound
	}
	p.Status = status
	p.UpdatedAt = time.Now().UTC()
	m.projects[id] = p
	return p, nil
}

func (m *memStore) ListAllProjects(_ context.Context) ([]repository.AdminProject, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []repository.AdminProject
	for _, p := range m.projects {
		item := repository.AdminProject{
			Project: p,
			Student: m.studentSummary(p.SubmittedBy),
		}
		if sup, ok := m.supervisors[p.SupervisorID]; ok {
			item.Supervisor = model.PersonSummary{Name: sup.Name, Email: sup.Email}
		}
		if p.ProposalID != nil {
			if prop, ok := m.proposals[*p.ProposalID]; ok {
				desc := prop.Description
				item.ProposalDescription = &desc
			}
		}
		out = append(out, item)
	}
	return out, nil
}

func (m *memStore) SearchProjectsByTitle(_ context.Context, title string) ([]repository.AdminProject, error) {
	all, _ := m.ListAllProjects(context.Background())
	var out []repository.AdminProject
	for _, item := range all {
		if strings.Contains(strings.ToLower(item.Project.Title), strings.ToLower(title)) {
			out = append(out, item)
		}
	}
	return out, nil
}

func (m *memStore) CountProjects(_ context.Context) (model.ProjectCounts, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var counts model.ProjectCounts
	for _, p := range m.projects {
		counts.Total++
		switch p.Status {
		case model.StatusPending:
			counts.Pending++
		case model.StatusApproved:
			counts.Approved++
		case model.StatusRejected:
			counts.Rejected++
		}
	}
	return counts, nil
}

// studentSummary must be called with m.mu held.
func (m *memStore) studentSummary(id string) model.PersonSummary {
	st, ok := m.students[id]
	if !ok {
		return model.PersonSummary{}
	}
	return model.PersonSummary{Name: st.Name, Email: st.Email, RollNumber: st.RollNumber}
}
