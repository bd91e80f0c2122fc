// Kuppi Admin - Back Office for the Kuppi Tutorial Sharing Platform
// Copyright 2026 Kuppi Admin contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kuppihub/kuppi-admin

package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	json "github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/kuppihub/kuppi-admin/internal/gate"
	"github.com/kuppihub/kuppi-admin/internal/models"
	"github.com/kuppihub/kuppi-admin/internal/store"
)

// fakeStore is an in-memory Store. Setting err forces every method to
// fail with it.
type fakeStore struct {
	err error

	faculties   []models.Faculty
	departments []models.Department
	semesters   []models.Semester
	modules     map[uuid.UUID]*models.Module
	assignments []models.ModuleAssignment
	kuppis      map[uuid.UUID]*models.Kuppi
	users       map[uuid.UUID]*models.User
	hierarchy   *models.HierarchySnapshot
	stats       *models.Stats
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		modules: make(map[uuid.UUID]*models.Module),
		kuppis:  make(map[uuid.UUID]*models.Kuppi),
		users:   make(map[uuid.UUID]*models.User),
		stats:   &models.Stats{},
	}
}

func (f *fakeStore) Ping(context.Context) error { return f.err }

func (f *fakeStore) ListFaculties(context.Context) ([]models.Faculty, error) {
	return f.faculties, f.err
}

func (f *fakeStore) CreateFaculty(_ context.Context, name string) (*models.Faculty, error) {
	if f.err != nil {
		return nil, f.err
	}
	faculty := models.Faculty{ID: uuid.New(), Name: name, CreatedAt: time.Now()}
	f.faculties = append(f.faculties, faculty)
	return &faculty, nil
}

func (f *fakeStore) ListDepartments(context.Context) ([]models.Department, error) {
	return f.departments, f.err
}

func (f *fakeStore) CreateDepartment(_ context.Context, name string, facultyID uuid.UUID) (*models.Department, error) {
	if f.err != nil {
		return nil, f.err
	}
	department := models.Department{ID: uuid.New(), Name: name, FacultyID: facultyID, CreatedAt: time.Now()}
	f.departments = append(f.departments, department)
	return &department, nil
}

func (f *fakeStore) ListSemesters(context.Context) ([]models.Semester, error) {
	return f.semesters, f.err
}

func (f *fakeStore) CreateSemester(_ context.Context, name string) (*models.Semester, error) {
	if f.err != nil {
		return nil, f.err
	}
	semester := models.Semester{ID: int64(len(f.semesters) + 1), Name: name, CreatedAt: time.Now()}
	f.semesters = append(f.semesters, semester)
	return &semester, nil
}

func (f *fakeStore) ListModules(context.Context) ([]models.Module, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make([]models.Module, 0, len(f.modules))
	for _, m := range f.modules {
		out = append(out, *m)
	}
	return out, nil
}

func (f *fakeStore) GetModule(_ context.Context, id uuid.UUID) (*models.Module, error) {
	if f.err != nil {
		return nil, f.err
	}
	m, ok := f.modules[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return m, nil
}

func (f *fakeStore) CreateModule(_ context.Context, code, name, description string) (*models.Module, error) {
	if f.err != nil {
		return nil, f.err
	}
	m := &models.Module{ID: uuid.New(), Code: code, Name: name, Description: description}
	f.modules[m.ID] = m
	return m, nil
}

func (f *fakeStore) UpdateModule(_ context.Context, id uuid.UUID, fields map[string]any) (*models.Module, error) {
	if f.err != nil {
		return nil, f.err
	}
	m, ok := f.modules[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	if name, present := fields["name"].(string); present {
		m.Name = name
	}
	if code, present := fields["code"].(string); present {
		m.Code = code
	}
	return m, nil
}

func (f *fakeStore) DeleteModule(_ context.Context, id uuid.UUID) error {
	if f.err != nil {
		return f.err
	}
	if _, ok := f.modules[id]; !ok {
		return store.ErrNotFound
	}
	delete(f.modules, id)
	return nil
}

func (f *fakeStore) ListAssignments(context.Context) ([]models.ModuleAssignment, error) {
	return f.assignments, f.err
}

func (f *fakeStore) CreateAssignment(_ context.Context, moduleID, facultyID, departmentID uuid.UUID, semesterID int64) (*models.ModuleAssignment, error) {
	if f.err != nil {
		return nil, f.err
	}
	for _, a := range f.assignments {
		if a.ModuleID == moduleID && a.FacultyID == facultyID &&
			a.DepartmentID == departmentID && a.SemesterID == semesterID {
			return nil, store.ErrDuplicate
		}
	}
	a := models.ModuleAssignment{
		ID: uuid.New(), ModuleID: moduleID, FacultyID: facultyID,
		DepartmentID: departmentID, SemesterID: semesterID,
	}
	f.assignments = append(f.assignments, a)
	return &a, nil
}

func (f *fakeStore) DeleteAssignment(_ context.Context, id uuid.UUID) error {
	if f.err != nil {
		return f.err
	}
	for i, a := range f.assignments {
		if a.ID == id {
			f.assignments = append(f.assignments[:i], f.assignments[i+1:]...)
			return nil
		}
	}
	return store.ErrNotFound
}

func (f *fakeStore) ListKuppis(context.Context) ([]models.Kuppi, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make([]models.Kuppi, 0, len(f.kuppis))
	for _, k := range f.kuppis {
		out = append(out, *k)
	}
	return out, nil
}

func (f *fakeStore) GetKuppi(_ context.Context, id uuid.UUID) (*models.Kuppi, error) {
	if f.err != nil {
		return nil, f.err
	}
	k, ok := f.kuppis[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return k, nil
}

func (f *fakeStore) CreateKuppi(_ context.Context, in store.NewKuppi) (*models.Kuppi, error) {
	if f.err != nil {
		return nil, f.err
	}
	lang := in.LanguageCode
	if lang == "" {
		lang = "si"
	}
	k := &models.Kuppi{
		ID: uuid.New(), ModuleID: in.ModuleID, Title: in.Title,
		Description: in.Description, YouTubeLinks: in.YouTubeLinks,
		TelegramLinks: in.TelegramLinks, MaterialURLs: in.MaterialURLs,
		LanguageCode: lang, AddedByUserID: in.AddedByUserID,
	}
	f.kuppis[k.ID] = k
	return k, nil
}

func (f *fakeStore) UpdateKuppi(_ context.Context, id uuid.UUID, fields map[string]any) (*models.Kuppi, error) {
	if f.err != nil {
		return nil, f.err
	}
	k, ok := f.kuppis[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	if approved, present := fields["is_approved"].(bool); present {
		k.IsApproved = approved
	}
	if title, present := fields["title"].(string); present {
		k.Title = title
	}
	return k, nil
}

func (f *fakeStore) DeleteKuppi(_ context.Context, id uuid.UUID) error {
	if f.err != nil {
		return f.err
	}
	if _, ok := f.kuppis[id]; !ok {
		return store.ErrNotFound
	}
	delete(f.kuppis, id)
	return nil
}

func (f *fakeStore) ListUsers(context.Context) ([]models.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make([]models.User, 0, len(f.users))
	for _, u := range f.users {
		out = append(out, *u)
	}
	return out, nil
}

func (f *fakeStore) GetUser(_ context.Context, id uuid.UUID) (*models.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	u, ok := f.users[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return u, nil
}

func (f *fakeStore) UpdateUser(_ context.Context, id uuid.UUID, fields map[string]any) (*models.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	u, ok := f.users[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	if approved, present := fields["is_approved_for_kuppies"].(bool); present {
		u.IsApprovedForKuppies = approved
	}
	return u, nil
}

func (f *fakeStore) DeleteUser(_ context.Context, id uuid.UUID) error {
	if f.err != nil {
		return f.err
	}
	if _, ok := f.users[id]; !ok {
		return store.ErrNotFound
	}
	delete(f.users, id)
	return nil
}

func (f *fakeStore) GetHierarchy(context.Context) (*models.HierarchySnapshot, error) {
	if f.err != nil {
		return nil, f.err
	}
	if f.hierarchy == nil {
		return nil, store.ErrNotFound
	}
	return f.hierarchy, nil
}

func (f *fakeStore) PutHierarchy(_ context.Context, data map[string]any) (*models.HierarchySnapshot, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.hierarchy = &models.HierarchySnapshot{ID: 1, Data: data}
	return f.hierarchy, nil
}

func (f *fakeStore) GetStats(context.Context) (*models.Stats, error) {
	return f.stats, f.err
}

// newTestRouter builds the API with the gate's protections disabled so
// tests exercise handler behavior directly.
func newTestRouter(f *fakeStore) chi.Router {
	g := gate.New(gate.Config{AuthDisabled: true, RateLimitDisabled: true})
	return NewHandler(f, g).Routes(RouterConfig{})
}

func doJSON(t *testing.T, router chi.Router, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decoding %q: %v", rec.Body.String(), err)
	}
	return out
}

func TestFacultiesEnvelope(t *testing.T) {
	f := newFakeStore()
	f.faculties = []models.Faculty{{ID: uuid.New(), Name: "Engineering"}}
	router := newTestRouter(f)

	rec := doJSON(t, router, http.MethodGet, "/api/v1/faculties", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := decodeBody(t, rec)
	list, ok := body["faculties"].([]any)
	if !ok || len(list) != 1 {
		t.Fatalf("faculties = %v", body)
	}
}

func TestCreateFacultySanitizes(t *testing.T) {
	f := newFakeStore()
	router := newTestRouter(f)

	rec := doJSON(t, router, http.MethodPost, "/api/v1/faculties",
		`{"name":" <b>Science</b> "}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	body := decodeBody(t, rec)
	faculty := body["faculty"].(map[string]any)
	if faculty["name"] != "bScience/b" {
		t.Errorf("name = %v", faculty["name"])
	}
}

func TestCreateDepartmentRejectsBadFacultyID(t *testing.T) {
	router := newTestRouter(newFakeStore())

	rec := doJSON(t, router, http.MethodPost, "/api/v1/departments",
		`{"name":"Physics","faculty_id":"not-a-uuid"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
	body := decodeBody(t, rec)
	if msg := body["error"].(string); !strings.Contains(msg, "faculty_id") {
		t.Errorf("error = %q", msg)
	}
}

func TestModuleLifecycle(t *testing.T) {
	f := newFakeStore()
	router := newTestRouter(f)

	rec := doJSON(t, router, http.MethodPost, "/api/v1/modules",
		`{"code":"CS2040","name":"Data Structures","description":"Sorting and trees"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d: %s", rec.Code, rec.Body.String())
	}
	created := decodeBody(t, rec)["module"].(map[string]any)
	id := created["id"].(string)

	rec = doJSON(t, router, http.MethodGet, "/api/v1/modules/"+id, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("get status = %d", rec.Code)
	}

	rec = doJSON(t, router, http.MethodPatch, "/api/v1/modules/"+id, `{"name":"Algorithms"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("patch status = %d: %s", rec.Code, rec.Body.String())
	}
	updated := decodeBody(t, rec)["module"].(map[string]any)
	if updated["name"] != "Algorithms" {
		t.Errorf("name = %v", updated["name"])
	}

	rec = doJSON(t, router, http.MethodDelete, "/api/v1/modules/"+id, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("delete status = %d", rec.Code)
	}
	if body := decodeBody(t, rec); body["success"] != true {
		t.Errorf("delete body = %v", body)
	}

	rec = doJSON(t, router, http.MethodGet, "/api/v1/modules/"+id, "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("get after delete status = %d", rec.Code)
	}
}

func TestModuleInvalidIDFormat(t *testing.T) {
	router := newTestRouter(newFakeStore())

	rec := doJSON(t, router, http.MethodGet, "/api/v1/modules/not-a-uuid", "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
	body := decodeBody(t, rec)
	if body["error"] != "Invalid module ID format" {
		t.Errorf("error = %v", body["error"])
	}
}

func TestModulePatchNoFields(t *testing.T) {
	f := newFakeStore()
	m, _ := f.CreateModule(context.Background(), "CS1010", "Intro", "")
	router := newTestRouter(f)

	rec := doJSON(t, router, http.MethodPatch, "/api/v1/modules/"+m.ID.String(),
		`{"is_hidden":true}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
	body := decodeBody(t, rec)
	if body["error"] != "No valid fields to update" {
		t.Errorf("error = %v", body["error"])
	}
}

func TestAssignmentDuplicate(t *testing.T) {
	router := newTestRouter(newFakeStore())

	payload := `{"module_id":"` + uuid.New().String() + `","faculty_id":"` + uuid.New().String() +
		`","department_id":"` + uuid.New().String() + `","semester_id":1}`

	rec := doJSON(t, router, http.MethodPost, "/api/v1/module-assignments", payload)
	if rec.Code != http.StatusCreated {
		t.Fatalf("first create status = %d: %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, router, http.MethodPost, "/api/v1/module-assignments", payload)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("duplicate status = %d", rec.Code)
	}
	body := decodeBody(t, rec)
	if body["error"] != "This assignment already exists" {
		t.Errorf("error = %v", body["error"])
	}
}

func TestCreateKuppiRequiresLinks(t *testing.T) {
	router := newTestRouter(newFakeStore())

	rec := doJSON(t, router, http.MethodPost, "/api/v1/kuppis",
		`{"module_id":"`+uuid.New().String()+`","title":"Recursion basics"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
	body := decodeBody(t, rec)
	if msg := body["error"].(string); !strings.Contains(msg, "youtube_links is required") {
		t.Errorf("error = %q", msg)
	}
}

func TestCreateKuppiDefaults(t *testing.T) {
	f := newFakeStore()
	router := newTestRouter(f)

	rec := doJSON(t, router, http.MethodPost, "/api/v1/kuppis",
		`{"module_id":"`+uuid.New().String()+`","title":"Recursion basics","youtube_links":["https://youtu.be/abc123"]}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	body := decodeBody(t, rec)
	kuppi := body["kuppi"].(map[string]any)
	if kuppi["language_code"] != "si" {
		t.Errorf("language_code = %v", kuppi["language_code"])
	}
	if kuppi["is_approved"] != false {
		t.Errorf("is_approved = %v", kuppi["is_approved"])
	}
}

func TestKuppiModeration(t *testing.T) {
	f := newFakeStore()
	k, _ := f.CreateKuppi(context.Background(), store.NewKuppi{
		ModuleID: uuid.New(), Title: "Graphs", YouTubeLinks: []string{"https://youtu.be/x1"},
	})
	router := newTestRouter(f)

	rec := doJSON(t, router, http.MethodPatch, "/api/v1/kuppis/"+k.ID.String(),
		`{"is_approved":true}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	body := decodeBody(t, rec)
	kuppi := body["kuppi"].(map[string]any)
	if kuppi["is_approved"] != true {
		t.Errorf("is_approved = %v", kuppi["is_approved"])
	}
}

func TestUserPatchAllowList(t *testing.T) {
	f := newFakeStore()
	id := uuid.New()
	f.users[id] = &models.User{ID: id, Email: "student@kuppihub.lk"}
	router := newTestRouter(f)

	rec := doJSON(t, router, http.MethodPatch, "/api/v1/users/"+id.String(),
		`{"is_approved_for_kuppies":true,"provider_uid":"hijack"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	if !f.users[id].IsApprovedForKuppies {
		t.Error("is_approved_for_kuppies not applied")
	}
	if f.users[id].ProviderUID != "" {
		t.Errorf("provider_uid changed to %q", f.users[id].ProviderUID)
	}
}

func TestHierarchyEmptyThenPut(t *testing.T) {
	f := newFakeStore()
	router := newTestRouter(f)

	rec := doJSON(t, router, http.MethodGet, "/api/v1/hierarchy", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("empty get status = %d", rec.Code)
	}
	body := decodeBody(t, rec)
	tree := body["hierarchy"].(map[string]any)
	if faculties := tree["faculties"].([]any); len(faculties) != 0 {
		t.Errorf("empty hierarchy = %v", tree)
	}

	rec = doJSON(t, router, http.MethodPut, "/api/v1/hierarchy",
		`{"faculties":[{"name":"Engineering","departments":[]}]}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("put status = %d: %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, router, http.MethodGet, "/api/v1/hierarchy", "")
	body = decodeBody(t, rec)
	tree = body["hierarchy"].(map[string]any)
	if faculties := tree["faculties"].([]any); len(faculties) != 1 {
		t.Errorf("hierarchy after put = %v", tree)
	}
}

func TestHierarchyRejectsMalformed(t *testing.T) {
	router := newTestRouter(newFakeStore())

	rec := doJSON(t, router, http.MethodPut, "/api/v1/hierarchy",
		`{"faculties":["not an object"]}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
	body := decodeBody(t, rec)
	if msg := body["error"].(string); !strings.Contains(msg, "faculties[0]") {
		t.Errorf("error = %q", msg)
	}
}

func TestStoreFailureIsOpaque(t *testing.T) {
	f := newFakeStore()
	f.err = errors.New("duckdb: io error at block 7")
	router := newTestRouter(f)

	rec := doJSON(t, router, http.MethodGet, "/api/v1/faculties", "")
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", rec.Code)
	}
	body := decodeBody(t, rec)
	msg := body["error"].(string)
	if msg != "Failed to fetch faculties" {
		t.Errorf("error = %q", msg)
	}
	if strings.Contains(msg, "duckdb") {
		t.Error("internal error detail leaked to client")
	}
}

func TestHealthz(t *testing.T) {
	router := newTestRouter(newFakeStore())

	rec := doJSON(t, router, http.MethodGet, "/healthz", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if body := decodeBody(t, rec); body["status"] != "ok" {
		t.Errorf("body = %v", body)
	}
}

func TestStatsEnvelope(t *testing.T) {
	f := newFakeStore()
	f.stats = &models.Stats{Users: 3, Modules: 2, Kuppis: 5, PendingKuppisCount: 1}
	router := newTestRouter(f)

	rec := doJSON(t, router, http.MethodGet, "/api/v1/stats", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := decodeBody(t, rec)
	stats := body["stats"].(map[string]any)
	if stats["users"] != float64(3) || stats["kuppis"] != float64(5) {
		t.Errorf("stats = %v", stats)
	}
}
