package httpapi

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"fypms/internal/crypto"
	"fypms/internal/model"
	"fypms/internal/repository"
)

const searchLimit = 10

type addSupervisorRequest struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	Password   string `json:"password"`
	Department string `json:"department"`
}

type supervisorSummary struct {
	ID         string    `json:"_id"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	Department string    `json:"department,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}

func supervisorToSummary(sup model.Supervisor) supervisorSummary {
	return supervisorSummary{
		ID:         sup.ID,
		Name:       sup.Name,
		Email:      sup.Email,
		Department: sup.Department,
		CreatedAt:  sup.CreatedAt,
	}
}

func (s *Server) handleAddSupervisor(w http.ResponseWriter, r *http.Request) {
	var req addSupervisorRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	if req.Name == "" || req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "Name, email and password are required")
		return
	}

	hash, err := crypto.HashPassword(req.Password)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to hash password")
		return
	}

	now := time.Now().UTC()
	sup := model.Supervisor{
		ID:           uuid.NewString(),
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hash,
		Department:   strings.TrimSpace(req.Department),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.store.CreateSupervisor(r.Context(), sup); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			writeError(w, http.StatusConflict, "Supervisor with this email already exists")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to create supervisor")
		return
	}

	writeData(w, http.StatusCreated, supervisorToSummary(sup), "Supervisor added successfully")
}

func (s *Server) handleGetAllSupervisors(w http.ResponseWriter, r *http.Request) {
	supervisors, err := s.store.ListSupervisors(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list supervisors")
		return
	}

	out := make([]supervisorSummary, 0, len(supervisors))
	for _, sup := range supervisors {
		out = append(out, supervisorToSummary(sup))
	}
	writeData(w, http.StatusOK, out, "Supervisors retrieved successfully")
}

func (s *Server) handleSearchSupervisors(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimSpace(r.URL.Query().Get("name"))
	if name == "" {
		writeError(w, http.StatusBadRequest, "Search query is required")
		return
	}

	supervisors, err := s.store.SearchSupervisorsByName(r.Context(), name, searchLimit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to search supervisors")
		return
	}

	out := make([]supervisorSummary, 0, len(supervisors))
	for _, sup := range supervisors {
		out = append(out, supervisorToSummary(sup))
	}
	writeData(w, http.StatusOK, out, "Found "+strconv.Itoa(len(out))+" supervisors matching \""+name+"\"")
}

type updateSupervisorRequest struct {
	Name     *string `json:"name,omitempty"`
	Email    *string `json:"email,omitempty"`
	Password *string `json:"password,omitempty"`
}

func (s *Server) handleUpdateSupervisor(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req updateSupervisorRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	update := repository.SupervisorUpdate{}
	if req.Name != nil {
		if name := strings.TrimSpace(*req.Name); name != "" {
			update.Name = &name
		}
	}
	if req.Email != nil {
		if email := strings.TrimSpace(strings.ToLower(*req.Email)); email != "" {
			update.Email = &email
		}
	}
	if req.Password != nil && strings.TrimSpace(*req.Password) != "" {
		hash, err := crypto.HashPassword(*req.Password)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to hash password")
			return
		}
		update.PasswordHash = &hash
	}
	if update.Name == nil && update.Email == nil && update.PasswordHash == nil {
		writeError(w, http.StatusBadRequest, "No valid fields provided for update")
		return
	}

	sup, err := s.store.UpdateSupervisor(r.Context(), id, update)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Supervisor not found")
			return
		}
		if errors.Is(err, repository.ErrDuplicate) {
			writeError(w, http.StatusConflict, "Supervisor with this email already exists")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to update supervisor")
		return
	}

	writeData(w, http.StatusOK, supervisorToSummary(sup), "Supervisor updated successfully")
}

func (s *Server) handleDeleteSupervisor(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := s.store.DeleteSupervisor(r.Context(), id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Supervisor not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to delete supervisor")
		return
	}

	writeData(w, http.StatusOK, nil, "Supervisor deleted successfully")
}

type adminProjectSummary struct {
	ID          string              `json:"_id"`
	Title       string              `json:"title"`
	Status      model.ItemStatus    `json:"status"`
	FileURL     string              `json:"fileUrl"`
	SubmittedBy model.PersonSummary `json:"submittedBy"`
	Supervisor  model.PersonSummary `json:"supervisor"`
	Proposal    *string             `json:"proposal,omitempty"`
	CreatedAt   time.Time           `json:"createdAt"`
}

func adminProjectsToSummaries(items []repository.AdminProject) []adminProjectSummary {
	out := make([]adminProjectSummary, 0, len(items))
	for _, item := range items {
		out = append(out, adminProjectSummary{
			ID:          item.Project.ID,
			Title:       item.Project.Title,
			Status:      item.Project.Status,
			FileURL:     item.Project.FileURL,
			SubmittedBy: item.Student,
			Supervisor:  item.Supervisor,
			Proposal:    item.ProposalDescription,
			CreatedAt:   item.Project.CreatedAt,
		})
	}
	return out
}

func (s *Server) handleGetAllProjects(w http.ResponseWriter, r *http.Request) {
	projects, err := s.store.ListAllProjects(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list projects")
		return
	}
	counts, err := s.store.CountProjects(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to count projects")
		return
	}

	writeData(w, http.StatusOK, map[string]interface{}{
		"projects": adminProjectsToSummaries(projects),
		"counts":   counts,
	}, "All projects retrieved successfully")
}

func (s *Server) handleSearchProjects(w http.ResponseWriter, r *http.Request) {
	title := strings.TrimSpace(r.URL.Query().Get("title"))
	if title == "" {
		writeError(w, http.StatusBadRequest, "Project title query is required")
		return
	}

	projects, err := s.store.SearchProjectsByTitle(r.Context(), title)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to search projects")
		return
	}

	writeData(w, http.StatusOK, adminProjectsToSummaries(projects), "Projects found by title")
}
