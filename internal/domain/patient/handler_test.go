package patient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
)

func setup(t *testing.T, repo *mockRepo) (*echo.Echo, *Handler) {
	t.Helper()
	e := echo.New()
	return e, NewHandler(NewService(repo, &summaryLLM{reply: "ok"}, "gpt-4o"))
}

func seedPatient(t *testing.T, repo *mockRepo, p *Patient) *Patient {
	t.Helper()
	if _, err := repo.Create(context.Background(), p); err != nil {
		t.Fatalf("seed failed: %v", err)
	}
	return p
}

func TestCreateHandler(t *testing.T) {
	repo := newMockRepo()
	e, h := setup(t, repo)

	body := `{"name":"Ada Lovelace","assistant_user_id":"va.user.1","age":36}`
	req := httptest.NewRequest(http.MethodPost, "/api/patients", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.Create(c); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201", rec.Code)
	}
	var resp map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad body: %v", err)
	}
	if resp["_id"] == "" {
		t.Error("expected _id in response")
	}
	if resp["message"] != "Patient created successfully" {
		t.Errorf("message = %q", resp["message"])
	}
}

func TestCreateHandlerMissingFields(t *testing.T) {
	e, h := setup(t, newMockRepo())

	req := httptest.NewRequest(http.MethodPost, "/api/patients", strings.NewReader(`{"name":"Ada"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := h.Create(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %v", err)
	}
}

func TestCreateHandlerDuplicate(t *testing.T) {
	repo := newMockRepo()
	e, h := setup(t, repo)
	seedPatient(t, repo, &Patient{Name: "Ada", AssistantUserID: "va.user.1"})

	body := `{"name":"Grace","assistant_user_id":"va.user.1"}`
	req := httptest.NewRequest(http.MethodPost, "/api/patients", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := h.Create(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %v", err)
	}
}

func TestGetHandler(t *testing.T) {
	repo := newMockRepo()
	e, h := setup(t, repo)
	seedPatient(t, repo, &Patient{DisplayID: "P001", Name: "Ada", AssistantUserID: "va.user.1"})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("P001")

	if err := h.Get(c); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var got Patient
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("bad body: %v", err)
	}
	if got.Name != "Ada" {
		t.Errorf("name = %q", got.Name)
	}
}

func TestGetHandlerNotFound(t *testing.T) {
	e, h := setup(t, newMockRepo())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("missing")

	err := h.Get(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %v", err)
	}
}

func TestGetByAssistantIDHandler(t *testing.T) {
	repo := newMockRepo()
	e, h := setup(t, repo)
	seedPatient(t, repo, &Patient{Name: "Ada", AssistantUserID: "va.user.9"})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("assistant_user_id")
	c.SetParamValues("va.user.9")

	if err := h.GetByAssistantID(c); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}

func TestWearableDataHandler(t *testing.T) {
	repo := newMockRepo()
	e, h := setup(t, repo)
	seedPatient(t, repo, &Patient{
		DisplayID:       "P001",
		Name:            "Ada",
		AssistantUserID: "va.user.1",
		WearableSensorData: map[string]interface{}{
			"heartRate": map[string]interface{}{"current": 72.0},
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("P001")

	if err := h.WearableData(c); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	var got map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("bad body: %v", err)
	}
	if _, ok := got["heartRate"]; !ok {
		t.Error("expected heartRate series in payload")
	}
}

func TestDailySummaryHandlerRequiresDate(t *testing.T) {
	repo := newMockRepo()
	e, h := setup(t, repo)
	seedPatient(t, repo, &Patient{DisplayID: "P001", Name: "Ada", AssistantUserID: "va.user.1"})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("P001")

	err := h.DailySummary(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %v", err)
	}
}

func TestAvailableDatesHandler(t *testing.T) {
	repo := newMockRepo()
	e, h := setup(t, repo)
	seedPatient(t, repo, &Patient{
		DisplayID:       "P001",
		Name:            "Ada",
		AssistantUserID: "va.user.1",
		ConversationLog: map[string]interface{}{"date": "03/04/2025"},
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("P001")

	if err := h.AvailableDates(c); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	var got map[string][]string
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("bad body: %v", err)
	}
	if len(got["dates"]) != 1 || got["dates"][0] != "2025-03-04" {
		t.Errorf("dates = %v", got["dates"])
	}
}
