package httpapi

import (
	"context"

	"fypms/internal/model"
	"fypms/internal/repository"
)

// Store is the persistence capability the handlers need. *repository.Store is
// the production implementation; tests use an in-memory fake.
type Store interface {
	GetAdminByEmail(ctx context.Context, email string) (model.Admin, error)
	GetAdminByID(ctx context.Context, id string) (model.Admin, error)

	GetSupervisorByEmail(ctx context.Context, email string) (model.Supervisor, error)
	GetSupervisorByID(ctx context.Context, id string) (model.Supervisor, error)
	CreateSupervisor(ctx context.Context, sup model.Supervisor) error
	ListSupervisors(ctx context.Context) ([]model.Supervisor, error)
	SearchSupervisorsByName(ctx context.Context, name string, limit int) ([]model.Supervisor, error)
	UpdateSupervisor(ctx context.Context, id string, update repository.SupervisorUpdate) (model.Supervisor, error)
	DeleteSupervisor(ctx context.Context, id string) error

	GetStudentByEmail(ctx context.Context, email string) (model.Student, error)
	GetStudentByID(ctx context.Context, id string) (model.Student, error)
	CreateStudent(ctx context.Context, st model.Student) error
	ListStudentsBySupervisor(ctx context.Context, supervisorID string) ([]model.Student, error)
	UpdateStudent(ctx context.Context, id, supervisorID string, update repository.StudentUpdate) (model.Student, error)
	DeleteStudent(ctx context.Context, id, supervisorID string) error

	SetRefreshToken(ctx context.Context, role model.Role, id string, token *string) error

	CreateProposal(ctx context.Context, p model.Proposal) error
	ListProposalsByStudent(ctx context.Context, studentID string) ([]model.Proposal, error)
	ListProposalsBySupervisor(ctx context.Context, supervisorID string) ([]repository.SupervisorItem, error)
	UpdateProposalStatus(ctx context.Context, id, supervisorID string, status model.ItemStatus) (model.Proposal, error)

	CreateProject(ctx context.Context, p model.Project) error
	ListProjectsByStudent(ctx context.Context, studentID string) ([]model.Project, error)
	ListProjectsBySupervisor(ctx context.Context, supervisorID string) ([]repository.SupervisorItem, error)
	UpdateProjectStatus(ctx context.Context, id, supervisorID string, status model.ItemStatus) (model.Project, error)
	ListAllProjects(ctx context.Context) ([]repository.AdminProject, error)
	SearchProjectsByTitle(ctx context.Context, title string) ([]repository.AdminProject, error)
	CountProjects(ctx context.Context) (model.ProjectCounts, error)
}
