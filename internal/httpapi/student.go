package httpapi

import (
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"fypms/internal/model"
)

const maxUploadBytes = 16 << 20

type submitProposalRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

type proposalSummary struct {
	ID          string           `json:"_id"`
	Title       string           `json:"title"`
	Description string           `json:"description,omitempty"`
	Status      model.ItemStatus `json:"status"`
	SubmittedAt time.Time        `json:"submittedAt"`
}

func proposalToSummary(p model.Proposal) proposalSummary {
	return proposalSummary{
		ID:          p.ID,
		Title:       p.Title,
		Description: p.Description,
		Status:      p.Status,
		SubmittedAt: p.CreatedAt,
	}
}

type projectSummary struct {
	ID          string           `json:"_id"`
	Title       string           `json:"title"`
	FileURL     string           `json:"fileUrl"`
	Status      model.ItemStatus `json:"status"`
	SubmittedAt time.Time        `json:"submittedAt"`
}

func projectToSummary(p model.Project) projectSummary {
	return projectSummary{
		ID:          p.ID,
		Title:       p.Title,
		FileURL:     p.FileURL,
		Status:      p.Status,
		SubmittedAt: p.CreatedAt,
	}
}

func (s *Server) handleSubmitProposal(w http.ResponseWriter, r *http.Request) {
	actx := authFromContext(r.Context())

	var req submitProposalRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	req.Title = strings.TrimSpace(req.Title)
	req.Description = strings.TrimSpace(req.Description)
	if req.Title == "" || req.Description == "" {
		writeError(w, http.StatusBadRequest, "Title and description are required")
		return
	}

	now := time.Now().UTC()
	proposal := model.Proposal{
		ID:           uuid.NewString(),
		Title:        req.Title,
		Description:  req.Description,
		SubmittedBy:  actx.ID,
		SupervisorID: actx.AddedBy,
		Status:       model.StatusPending,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.store.CreateProposal(r.Context(), proposal); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to submit proposal")
		return
	}

	writeData(w, http.StatusCreated, proposalToSummary(proposal), "Proposal submitted successfully")
}

func (s *Server) handleGetStudentProposals(w http.ResponseWriter, r *http.Request) {
	actx := authFromContext(r.Context())

	proposals, err := s.store.ListProposalsByStudent(r.Context(), actx.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list proposals")
		return
	}

	out := make([]proposalSummary, 0, len(proposals))
	for _, p := range proposals {
		out = append(out, proposalToSummary(p))
	}
	writeData(w, http.StatusOK, out, "Proposals retrieved successfully")
}

func (s *Server) handleSubmitProject(w http.ResponseWriter, r *http.Request) {
	actx := authFromContext(r.Context())

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid multipart form")
		return
	}

	title := strings.TrimSpace(r.FormValue("title"))
	if title == "" {
		writeError(w, http.StatusBadRequest, "Project title is required")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Project file is required")
		return
	}
	defer file.Close()

	fileID := uuid.NewString() + filepath.Ext(header.Filename)
	fileURL, err := s.saveUpload(file, fileID)
	if err != nil {
		s.logger.Error("project file save failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to upload project file")
		return
	}

	now := time.Now().UTC()
	project := model.Project{
		ID:           uuid.NewString(),
		Title:        title,
		SubmittedBy:  actx.ID,
		SupervisorID: actx.AddedBy,
		FileURL:      fileURL,
		FileID:       fileID,
		Status:       model.StatusPending,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.store.CreateProject(r.Context(), project); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to submit project")
		return
	}

	writeData(w, http.StatusCreated, projectToSummary(project), "Project submitted successfully")
}

func (s *Server) saveUpload(src io.Reader, fileID string) (string, error) {
	if err := os.MkdirAll(s.cfg.UploadDir, 0o755); err != nil {
		return "", err
	}
	dst, err := os.Create(filepath.Join(s.cfg.UploadDir, fileID))
	if err != nil {
		return "", err
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return "", err
	}
	return "/uploads/" + fileID, nil
}

func (s *Server) handleGetStudentProjects(w http.ResponseWriter, r *http.Request) {
	actx := authFromContext(r.Context())

	projects, err := s.store.ListProjectsByStudent(r.Context(), actx.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list projects")
		return
	}

	out := make([]projectSummary, 0, len(projects))
	for _, p := range projects {
		out = append(out, projectToSummary(p))
	}
	writeData(w, http.StatusOK, out, "Projects retrieved successfully")
}
