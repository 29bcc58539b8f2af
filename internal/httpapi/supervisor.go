package httpapi

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"fypms/internal/crypto"
	"fypms/internal/model"
	"fypms/internal/repository"
)

type addStudentRequest struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	Password   string `json:"password"`
	RollNumber string `json:"rollNumber"`
}

type studentSummary struct {
	ID         string    `json:"_id"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	RollNumber string    `json:"rollNumber"`
	CreatedAt  time.Time `json:"createdAt"`
}

func studentToSummary(st model.Student) studentSummary {
	return studentSummary{
		ID:         st.ID,
		Name:       st.Name,
		Email:      st.Email,
		RollNumber: st.RollNumber,
		CreatedAt:  st.CreatedAt,
	}
}

func (s *Server) handleAddStudent(w http.ResponseWriter, r *http.Request) {
	actx := authFromContext(r.Context())

	var req addStudentRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	req.RollNumber = strings.TrimSpace(req.RollNumber)
	if req.Name == "" || req.Email == "" || req.Password == "" || req.RollNumber == "" {
		writeError(w, http.StatusBadRequest, "All fields are required")
		return
	}

	hash, err := crypto.HashPassword(req.Password)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to hash password")
		return
	}

	now := time.Now().UTC()
	st := model.Student{
		ID:           uuid.NewString(),
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hash,
		RollNumber:   req.RollNumber,
		AddedBy:      actx.ID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.store.CreateStudent(r.Context(), st); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			writeError(w, http.StatusConflict, "Student with this email or roll number already exists")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to create student")
		return
	}

	writeData(w, http.StatusCreated, studentToSummary(st), "Student added successfully")
}

func (s *Server) handleGetAllStudents(w http.ResponseWriter, r *http.Request) {
	actx := authFromContext(r.Context())

	students, err := s.store.ListStudentsBySupervisor(r.Context(), actx.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list students")
		return
	}

	out := make([]studentSummary, 0, len(students))
	for _, st := range students {
		out = append(out, studentToSummary(st))
	}
	writeData(w, http.StatusOK, out, "Students retrieved successfully")
}

type updateStudentRequest struct {
	Name       *string `json:"name,omitempty"`
	Email      *string `json:"email,omitempty"`
	RollNumber *string `json:"rollNumber,omitempty"`
	Password   *string `json:"password,omitempty"`
}

func (s *Server) handleUpdateStudent(w http.ResponseWriter, r *http.Request) {
	actx := authFromContext(r.Context())
	id := chi.URLParam(r, "id")

	var req updateStudentRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	update := repository.StudentUpdate{}
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
	if req.RollNumber != nil {
		if roll := strings.TrimSpace(*req.RollNumber); roll != "" {
			update.RollNumber = &roll
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
	if update.Name == nil && update.Email == nil && update.RollNumber == nil && update.PasswordHash == nil {
		writeError(w, http.StatusBadRequest, "No valid fields provided for update")
		return
	}

	st, err := s.store.UpdateStudent(r.Context(), id, actx.ID, update)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Student not found or unauthorized")
			return
		}
		if errors.Is(err, repository.ErrDuplicate) {
			writeError(w, http.StatusConflict, "Student with this email or roll number already exists")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to update student")
		return
	}

	writeData(w, http.StatusOK, studentToSummary(st), "Student updated successfully")
}

func (s *Server) handleDeleteStudent(w http.ResponseWriter, r *http.Request) {
	actx := authFromContext(r.Context())
	id := chi.URLParam(r, "id")

	if err := s.store.DeleteStudent(r.Context(), id, actx.ID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Student not found or unauthorized")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to delete student")
		return
	}

	writeData(w, http.StatusOK, nil, "Student deleted successfully")
}

type supervisorItemSummary struct {
	ID          string              `json:"_id"`
	Title       string              `json:"title"`
	Description string              `json:"description,omitempty"`
	FileURL     string              `json:"fileUrl,omitempty"`
	Status      model.ItemStatus    `json:"status"`
	SubmittedBy model.PersonSummary `json:"submittedBy"`
	CreatedAt   time.Time           `json:"createdAt"`
	UpdatedAt   time.Time           `json:"updatedAt"`
}

func (s *Server) handleGetItems(w http.ResponseWriter, r *http.Request) {
	actx := authFromContext(r.Context())
	itemType := chi.URLParam(r, "type")

	var (
		items []repository.SupervisorItem
		err   error
	)
	switch itemType {
	case "project":
		items, err = s.store.ListProjectsBySupervisor(r.Context(), actx.ID)
	case "proposal":
		items, err = s.store.ListProposalsBySupervisor(r.Context(), actx.ID)
	default:
		writeError(w, http.StatusBadRequest, "Invalid type specified")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list "+itemType+"s")
		return
	}

	out := make([]supervisorItemSummary, 0, len(items))
	for _, item := range items {
		summary := supervisorItemSummary{SubmittedBy: item.Student}
		if item.Proposal != nil {
			summary.ID = item.Proposal.ID
			summary.Title = item.Proposal.Title
			summary.Description = item.Proposal.Description
			summary.Status = item.Proposal.Status
			summary.CreatedAt = item.Proposal.CreatedAt
			summary.UpdatedAt = item.Proposal.UpdatedAt
		} else if item.Project != nil {
			summary.ID = item.Project.ID
			summary.Title = item.Project.Title
			summary.FileURL = item.Project.FileURL
			summary.Status = item.Project.Status
			summary.CreatedAt = item.Project.CreatedAt
			summary.UpdatedAt = item.Project.UpdatedAt
		}
		out = append(out, summary)
	}

	writeData(w, http.StatusOK, out, itemType+"s retrieved successfully")
}

type updateItemStatusRequest struct {
	Status string `json:"status"`
}

func (s *Server) handleUpdateItemStatus(w http.ResponseWriter, r *http.Request) {
	actx := authFromContext(r.Context())
	itemType := chi.URLParam(r, "type")
	id := chi.URLParam(r, "id")

	if itemType != "project" && itemType != "proposal" {
		writeError(w, http.StatusBadRequest, "Invalid type specified")
		return
	}

	var req updateItemStatusRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	status := model.ItemStatus(req.Status)
	if status != model.StatusApproved && status != model.StatusRejected {
		writeError(w, http.StatusBadRequest, "Invalid status specified")
		return
	}

	var (
		data interface{}
		err  error
	)
	if itemType == "project" {
		var project model.Project
		project, err = s.store.UpdateProjectStatus(r.Context(), id, actx.ID, status)
		if err == nil {
			data = projectToSummary(project)
		}
	} else {
		var proposal model.Proposal
		proposal, err = s.store.UpdateProposalStatus(r.Context(), id, actx.ID, status)
		if err == nil {
			data = proposalToSummary(proposal)
		}
	}
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, itemType+" not found or already processed")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to update "+itemType)
		return
	}

	writeData(w, http.StatusOK, data, itemType+" "+string(status)+" successfully")
}
