package httpapi

import (
	"net/http"
	"testing"
	"time"

	"fypms/internal/model"
)

func adminCookie(t *testing.T, router http.Handler) *http.Cookie {
	t.Helper()
	rec := doJSON(t, router, http.MethodPost, "/api/v1/admin/login-admin", map[string]string{
		"email":    "admin@fyp.com",
		"password": "admin123",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("admin login failed: %d %s", rec.Code, rec.Body.String())
	}
	return findCookie(rec, accessTokenCookie)
}

func supervisorCookie(t *testing.T, router http.Handler, email, password string) *http.Cookie {
	t.Helper()
	rec := doJSON(t, router, http.MethodPost, "/api/v1/supervisor/login-supervisor", map[string]string{
		"email":    email,
		"password": password,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("supervisor login failed: %d %s", rec.Code, rec.Body.String())
	}
	return findCookie(rec, accessTokenCookie)
}

func TestAddSupervisorAndDuplicate(t *testing.T) {
	srv, store := newTestServer(t)
	seedAdmin(t, store, "adm1", "admin@fyp.com", "admin123")
	router := srv.Router()
	cookie := adminCookie(t, router)

	body := map[string]string{
		"name":       "Dr. Khan",
		"email":      "khan@fyp.com",
		"password":   "secret1",
		"department": "SE",
	}
	rec := doJSON(t, router, http.MethodPost, "/api/v1/admin/add-supervisor", body, cookie)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d (body %s)", rec.Code, rec.Body.String())
	}
	if len(store.supervisors) != 1 {
		t.Fatalf("expected one supervisor, got %d", len(store.supervisors))
	}
	for _, sup := range store.supervisors {
		if sup.PasswordHash == "secret1" {
			t.Fatal("password stored unhashed")
		}
	}

	rec = doJSON(t, router, http.MethodPost, "/api/v1/admin/add-supervisor", body, cookie)
	if rec.Code != http.StatusConflict {
		t.Fatalf("duplicate email: expected 409, got %d", rec.Code)
	}
}

func TestAddStudentDuplicate(t *testing.T) {
	srv, store := newTestServer(t)
	seedSupervisor(t, store, "sup1", "sup@fyp.com", "suppw")
	router := srv.Router()
	cookie := supervisorCookie(t, router, "sup@fyp.com", "suppw")

	body := map[string]string{
		"name":       "Ali",
		"email":      "ali@fyp.com",
		"password":   "alipw1",
		"rollNumber": "FA21-001",
	}
	rec := doJSON(t, router, http.MethodPost, "/api/v1/supervisor/add-student", body, cookie)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d (body %s)", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, router, http.MethodPost, "/api/v1/supervisor/add-student", body, cookie)
	if rec.Code != http.StatusConflict {
		t.Fatalf("duplicate: expected 409, got %d", rec.Code)
	}
	if env := decodeEnvelope(t, rec); env.Message != "Student with this email or roll number already exists" {
		t.Fatalf("unexpected message %q", env.Message)
	}

	for _, st := range store.students {
		if st.AddedBy != "sup1" {
			t.Fatalf("student not scoped to creating supervisor: %+v", st)
		}
	}
}

func TestStudentScopedToOwningSupervisor(t *testing.T) {
	srv, store := newTestServer(t)
	seedSupervisor(t, store, "sup1", "sup1@fyp.com", "suppw")
	seedSupervisor(t, store, "sup2", "sup2@fyp.com", "suppw")
	seedStudent(t, store, "stu1", "ali@fyp.com", "alipw1", "sup1")
	router := srv.Router()

	other := supervisorCookie(t, router, "sup2@fyp.com", "suppw")

	rec := doJSON(t, router, http.MethodPatch, "/api/v1/supervisor/update-student/stu1",
		map[string]string{"name": "Renamed"}, other)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("cross-supervisor update: expected 404, got %d", rec.Code)
	}
	if env := decodeEnvelope(t, rec); env.Message != "Student not found or unauthorized" {
		t.Fatalf("unexpected message %q", env.Message)
	}

	rec = doJSON(t, router, http.MethodDelete, "/api/v1/supervisor/delete-student/stu1", nil, other)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("cross-supervisor delete: expected 404, got %d", rec.Code)
	}
	if _, ok := store.students["stu1"]; !ok {
		t.Fatal("student must survive a foreign delete attempt")
	}

	rec = doJSON(t, router, http.MethodGet, "/api/v1/supervisor/get-all-students", nil, other)
	if rec.Code != http.StatusOK {
		t.Fatalf("list: expected 200, got %d", rec.Code)
	}
	env := decodeEnvelope(t, rec)
	if list, ok := env.Data.([]interface{}); ok && len(list) != 0 {
		t.Fatalf("sup2 must not see sup1's students, got %d", len(list))
	}
}

func TestProposalFlow(t *testing.T) {
	srv, store := newTestServer(t)
	seedSupervisor(t, store, "sup1", "sup@fyp.com", "suppw")
	seedStudent(t, store, "stu1", "a@b.com", "pw123", "sup1")
	router := srv.Router()

	student := findCookie(loginStudent(t, router, "a@b.com", "pw123"), accessTokenCookie)
	supervisor := supervisorCookie(t, router, "sup@fyp.com", "suppw")

	rec := doJSON(t, router, http.MethodPost, "/api/v1/student/submit-proposal", map[string]string{
		"title":       "Smart Campus",
		"description": "IoT sensors around campus",
	}, student)
	if rec.Code != http.StatusCreated {
		t.Fatalf("submit: expected 201, got %d (body %s)", rec.Code, rec.Body.String())
	}

	var proposalID string
	for id, p := range store.proposals {
		if p.SupervisorID != "sup1" {
			t.Fatalf("proposal must route to the student's supervisor, got %q", p.SupervisorID)
		}
		if p.Status != model.StatusPending {
			t.Fatalf("new proposal must be pending, got %q", p.Status)
		}
		proposalID = id
	}
	if proposalID == "" {
		t.Fatal("proposal not stored")
	}

	rec = doJSON(t, router, http.MethodGet, "/api/v1/supervisor/items/proposal", nil, supervisor)
	if rec.Code != http.StatusOK {
		t.Fatalf("items: expected 200, got %d", rec.Code)
	}
	env := decodeEnvelope(t, rec)
	list, ok := env.Data.([]interface{})
	if !ok || len(list) != 1 {
		t.Fatalf("expected one pending proposal, got %+v", env.Data)
	}
	item := list[0].(map[string]interface{})
	submitted, ok := item["submittedBy"].(map[string]interface{})
	if !ok || submitted["email"] != "a@b.com" {
		t.Fatalf("expected student projection on item, got %+v", item["submittedBy"])
	}

	rec = doJSON(t, router, http.MethodPatch, "/api/v1/supervisor/items/proposal/"+proposalID,
		map[string]string{"status": "approved"}, supervisor)
	if rec.Code != http.StatusOK {
		t.Fatalf("approve: expected 200, got %d (body %s)", rec.Code, rec.Body.String())
	}
	if store.proposals[proposalID].Status != model.StatusApproved {
		t.Fatal("proposal status not updated")
	}

	// Already processed; transition guard kicks in.
	rec = doJSON(t, router, http.MethodPatch, "/api/v1/supervisor/items/proposal/"+proposalID,
		map[string]string{"status": "rejected"}, supervisor)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("second decision: expected 404, got %d", rec.Code)
	}
	if env := decodeEnvelope(t, rec); env.Message != "proposal not found or already processed" {
		t.Fatalf("unexpected message %q", env.Message)
	}
	if store.proposals[proposalID].Status != model.StatusApproved {
		t.Fatal("second decision must not overwrite the first")
	}
}

func TestItemValidation(t *testing.T) {
	srv, store := newTestServer(t)
	seedSupervisor(t, store, "sup1", "sup@fyp.com", "suppw")
	router := srv.Router()
	cookie := supervisorCookie(t, router, "sup@fyp.com", "suppw")

	rec := doJSON(t, router, http.MethodGet, "/api/v1/supervisor/items/thesis", nil, cookie)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("bad type: expected 400, got %d", rec.Code)
	}
	if env := decodeEnvelope(t, rec); env.Message != "Invalid type specified" {
		t.Fatalf("unexpected message %q", env.Message)
	}

	rec = doJSON(t, router, http.MethodPatch, "/api/v1/supervisor/items/proposal/p1",
		map[string]string{"status": "pending"}, cookie)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("bad status: expected 400, got %d", rec.Code)
	}
	if env := decodeEnvelope(t, rec); env.Message != "Invalid status specified" {
		t.Fatalf("unexpected message %q", env.Message)
	}
}

func TestSupervisorItemStatusScopedByOwner(t *testing.T) {
	srv, store := newTestServer(t)
	seedSupervisor(t, store, "sup1", "sup1@fyp.com", "suppw")
	seedSupervisor(t, store, "sup2", "sup2@fyp.com", "suppw")
	seedStudent(t, store, "stu1", "a@b.com", "pw123", "sup1")
	store.proposals["p1"] = model.Proposal{
		ID:           "p1",
		Title:        "Smart Campus",
		Description:  "IoT sensors",
		SubmittedBy:  "stu1",
		SupervisorID: "sup1",
		Status:       model.StatusPending,
		CreatedAt:    time.Now().UTC(),
	}
	router := srv.Router()
	other := supervisorCookie(t, router, "sup2@fyp.com", "suppw")

	rec := doJSON(t, router, http.MethodPatch, "/api/v1/supervisor/items/proposal/p1",
		map[string]string{"status": "approved"}, other)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("foreign decision: expected 404, got %d", rec.Code)
	}
	if store.proposals["p1"].Status != model.StatusPending {
		t.Fatal("foreign supervisor must not decide the item")
	}
}

func TestAdminProjectListing(t *testing.T) {
	srv, store := newTestServer(t)
	seedAdmin(t, store, "adm1", "admin@fyp.com", "admin123")
	seedSupervisor(t, store, "sup1", "sup@fyp.com", "suppw")
	seedStudent(t, store, "stu1", "a@b.com", "pw123", "sup1")
	store.projects["prj1"] = model.Project{
		ID:           "prj1",
		Title:        "Smart Campus",
		SubmittedBy:  "stu1",
		SupervisorID: "sup1",
		FileURL:      "/uploads/abc.pdf",
		Status:       model.StatusApproved,
		CreatedAt:    time.Now().UTC(),
	}
	store.projects["prj2"] = model.Project{
		ID:           "prj2",
		Title:        "Traffic Analyzer",
		SubmittedBy:  "stu1",
		SupervisorID: "sup1",
		Status:       model.StatusPending,
		CreatedAt:    time.Now().UTC(),
	}
	router := srv.Router()
	cookie := adminCookie(t, router)

	rec := doJSON(t, router, http.MethodGet, "/api/v1/admin/get-all-projects", nil, cookie)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (body %s)", rec.Code, rec.Body.String())
	}
	env := decodeEnvelope(t, rec)
	data, ok := env.Data.(map[string]interface{})
	if !ok {
		t.Fatalf("expected object data, got %T", env.Data)
	}
	projects, ok := data["projects"].([]interface{})
	if !ok || len(projects) != 2 {
		t.Fatalf("expected 2 projects, got %+v", data["projects"])
	}
	counts, ok := data["counts"].(map[string]interface{})
	if !ok {
		t.Fatalf("expected counts, got %+v", data["counts"])
	}
	if counts["total"] != float64(2) || counts["approved"] != float64(1) || counts["pending"] != float64(1) {
		t.Fatalf("unexpected counts: %+v", counts)
	}

	rec = doJSON(t, router, http.MethodGet, "/api/v1/admin/search-projects?title=traffic", nil, cookie)
	if rec.Code != http.StatusOK {
		t.Fatalf("search: expected 200, got %d", rec.Code)
	}
	env = decodeEnvelope(t, rec)
	results, ok := env.Data.([]interface{})
	if !ok || len(results) != 1 {
		t.Fatalf("expected one search hit, got %+v", env.Data)
	}
}

func TestSearchSupervisors(t *testing.T) {
	srv, store := newTestServer(t)
	seedAdmin(t, store, "adm1", "admin@fyp.com", "admin123")
	store.supervisors["sup1"] = model.Supervisor{ID: "sup1", Name: "Dr. Khan", Email: "khan@fyp.com"}
	store.supervisors["sup2"] = model.Supervisor{ID: "sup2", Name: "Dr. Ahmed", Email: "ahmed@fyp.com"}
	router := srv.Router()
	cookie := adminCookie(t, router)

	rec := doJSON(t, router, http.MethodGet, "/api/v1/admin/search-supervisors?name=khan", nil, cookie)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	env := decodeEnvelope(t, rec)
	results, ok := env.Data.([]interface{})
	if !ok || len(results) != 1 {
		t.Fatalf("expected one hit, got %+v", env.Data)
	}
	hit := results[0].(map[string]interface{})
	if hit["email"] != "khan@fyp.com" {
		t.Fatalf("unexpected hit %+v", hit)
	}

	rec = doJSON(t, router, http.MethodGet, "/api/v1/admin/search-supervisors", nil, cookie)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("missing name: expected 400, got %d", rec.Code)
	}
}
