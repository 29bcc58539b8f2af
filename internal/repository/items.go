package repository

import (
	"context"

	"github.com/jackc/pgx/v5"

	"fypms/internal/model"
)

// SupervisorItem is a proposal or project row with its student embedded, as
// returned by the supervisor-facing listings.
type SupervisorItem struct {
	Proposal *model.Proposal
	Project  *model.Project
	Student  model.PersonSummary
}

// AdminProject is a project row with student, supervisor and proposal
// description embedded, as returned by the admin-facing listings.
type AdminProject struct {
	Project             model.Project
	Student             model.PersonSummary
	Supervisor          model.PersonSummary
	ProposalDescription *string
}

func (s *Store) CreateProposal(ctx context.Context, p model.Proposal) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO proposals (id, title, description, submitted_by, supervisor_id, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, p.ID, p.Title, p.Description, p.SubmittedBy, p.SupervisorID, p.Status, p.CreatedAt, p.UpdatedAt)
	return mapErr(err)
}

func (s *Store) ListProposalsByStudent(ctx context.Context, studentID string) ([]model.Proposal, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, title, description, submitted_by, supervisor_id, status, created_at, updated_at
		FROM proposals
		WHERE submitted_by = $1
		ORDER BY created_at DESC
	`, studentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Proposal
	for rows.Next() {
		var p model.Proposal
		if err := rows.Scan(&p.ID, &p.Title, &p.Description, &p.SubmittedBy, &p.SupervisorID, &p.Status, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *Store) ListProposalsBySupervisor(ctx context.Context, supervisorID string) ([]SupervisorItem, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT p.id, p.title, p.description, p.submitted_by, p.supervisor_id, p.status, p.created_at, p.updated_at,
		       st.name, st.email, st.roll_number
		FROM proposals p
		JOIN students st ON st.id = p.submitted_by
		WHERE p.supervisor_id = $1
		ORDER BY p.updated_at DESC
	`, supervisorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []SupervisorItem
	for rows.Next() {
		var p model.Proposal
		var student model.PersonSummary
		if err := rows.Scan(&p.ID, &p.Title, &p.Description, &p.SubmittedBy, &p.SupervisorID, &p.Status, &p.CreatedAt, &p.UpdatedAt,
			&student.Name, &student.Email, &student.RollNumber); err != nil {
			return nil, err
		}
		out = append(out, SupervisorItem{Proposal: &p, Student: student})
	}
	return out, rows.Err()
}

// UpdateProposalStatus transitions a pending proposal owned by the given
// supervisor. Already-processed or foreign rows surface as ErrNotFound.
func (s *Store) UpdateProposalStatus(ctx context.Context, id, supervisorID string, status model.ItemStatus) (model.Proposal, error) {
	var p model.Proposal
	row := s.pool.QueryRow(ctx, `
		UPDATE proposals
		SET status = $3, updated_at = now()
		WHERE id = $1 AND supervisor_id = $2 AND status = 'pending'
		RETURNING id, title, description, submitted_by, supervisor_id, status, created_at, updated_at
	`, id, supervisorID, status)
	err := row.Scan(&p.ID, &p.Title, &p.Description, &p.SubmittedBy, &p.SupervisorID, &p.Status, &p.CreatedAt, &p.UpdatedAt)
	return p, mapErr(err)
}

func (s *Store) CreateProject(ctx context.Context, p model.Project) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO projects (id, title, submitted_by, supervisor_id, file_url, file_id, status, proposal_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, p.ID, p.Title, p.SubmittedBy, p.SupervisorID, p.FileURL, p.FileID, p.Status, p.ProposalID, p.CreatedAt, p.UpdatedAt)
	return mapErr(err)
}

func (s *Store) ListProjectsByStudent(ctx context.Context, studentID string) ([]model.Project, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, title, submitted_by, supervisor_id, file_url, file_id, status, proposal_id, created_at, updated_at
		FROM projects
		WHERE submitted_by = $1
		ORDER BY created_at DESC
	`, studentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanProjects(rows)
}

func (s *Store) ListProjectsBySupervisor(ctx context.Context, supervisorID string) ([]SupervisorItem, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT p.id, p.title, p.submitted_by, p.supervisor_id, p.file_url, p.file_id, p.status, p.proposal_id, p.created_at, p.updated_at,
		       st.name, st.email, st.roll_number
		FROM projects p
		JOIN students st ON st.id = p.submitted_by
		WHERE p.supervisor_id = $1
		ORDER BY p.updated_at DESC
	`, supervisorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []SupervisorItem
	for rows.Next() {
		var p model.Project
		var student model.PersonSummary
		if err := rows.Scan(&p.ID, &p.Title, &p.SubmittedBy, &p.SupervisorID, &p.FileURL, &p.FileID, &p.Status, &p.ProposalID, &p.CreatedAt, &p.UpdatedAt,
			&student.Name, &student.Email, &student.RollNumber); err != nil {
			return nil, err
		}
		out = append(out, SupervisorItem{Project: &p, Student: student})
	}
	return out, rows.Err()
}

func (s *Store) UpdateProjectStatus(ctx context.Context, id, supervisorID string, status model.ItemStatus) (model.Project, error) {
	var p model.Project
	row := s.pool.QueryRow(ctx, `
		UPDATE projects
		SET status = $3, updated_at = now()
		WHERE id = $1 AND supervisor_id = $2 AND status = 'pending'
		RETURNING id, title, submitted_by, supervisor_id, file_url, file_id, status, proposal_id, created_at, updated_at
	`, id, supervisorID, status)
	err := row.Scan(&p.ID, &p.Title, &p.SubmittedBy, &p.SupervisorID, &p.FileURL, &p.FileID, &p.Status, &p.ProposalID, &p.CreatedAt, &p.UpdatedAt)
	return p, mapErr(err)
}

func (s *Store) ListAllProjects(ctx context.Context) ([]AdminProject, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT p.id, p.title, p.submitted_by, p.supervisor_id, p.file_url, p.file_id, p.status, p.proposal_id, p.created_at, p.updated_at,
		       st.name, st.email, st.roll_number,
		       sup.name, sup.email,
		       prop.description
		FROM projects p
		JOIN students st ON st.id = p.submitted_by
		JOIN supervisors sup ON sup.id = p.supervisor_id
		LEFT JOIN proposals prop ON prop.id = p.proposal_id
		ORDER BY p.created_at DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanAdminProjects(rows)
}

func (s *Store) SearchProjectsByTitle(ctx context.Context, title string) ([]AdminProject, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT p.id, p.title, p.submitted_by, p.supervisor_id, p.file_url, p.file_id, p.status, p.proposal_id, p.created_at, p.updated_at,
		       st.name, st.email, st.roll_number,
		       sup.name, sup.email,
		       prop.description
		FROM projects p
		JOIN students st ON st.id = p.submitted_by
		JOIN supervisors sup ON sup.id = p.supervisor_id
		LEFT JOIN proposals prop ON prop.id = p.proposal_id
		WHERE p.title ILIKE '%' || $1 || '%'
		ORDER BY p.created_at DESC
	`, title)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanAdminProjects(rows)
}

func (s *Store) CountProjects(ctx context.Context) (model.ProjectCounts, error) {
	var counts model.ProjectCounts
	row := s.pool.QueryRow(ctx, `
		SELECT count(*),
		       count(*) FILTER (WHERE status = 'pending'),
		       count(*) FILTER (WHERE status = 'approved'),
		       count(*) FILTER (WHERE status = 'rejected')
		FROM projects
	`)
	err := row.Scan(&counts.Total, &counts.Pending, &counts.Approved, &counts.Rejected)
	return counts, err
}

func scanProjects(rows pgx.Rows) ([]model.Project, error) {
	var out []model.Project
	for rows.Next() {
		var p model.Project
		if err := rows.Scan(&p.ID, &p.Title, &p.SubmittedBy, &p.SupervisorID, &p.FileURL, &p.FileID, &p.Status, &p.ProposalID, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func scanAdminProjects(rows pgx.Rows) ([]AdminProject, error) {
	var out []AdminProject
	for rows.Next() {
		var item AdminProject
		if err := rows.Scan(
			&item.Project.ID, &item.Project.Title, &item.Project.SubmittedBy, &item.Project.SupervisorID,
			&item.Project.FileURL, &item.Project.FileID, &item.Project.Status, &item.Project.ProposalID,
			&item.Project.CreatedAt, &item.Project.UpdatedAt,
			&item.Student.Name, &item.Student.Email, &item.Student.RollNumber,
			&item.Supervisor.Name, &item.Supervisor.Email,
			&item.ProposalDescription,
		); err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, rows.Err()
}
