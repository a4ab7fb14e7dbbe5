package clinic_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	clinic "github.com/medikeep/clinic"
	"github.com/stretchr/testify/assert"
)

type testServer struct {
	app  *fiber.App
	repo *memRepo
}

func newTestServer(t *testing.T, seed ...*clinic.User) *testServer {
	t.Helper()

	cfg := defTestConfig()
	repo := newMemRepo(seed...)

	provider := clinic.NewUserProvider(repo.Users())
	auther := clinic.NewAuthenticator(provider, cfg)

	store, err := clinic.NewDiskFileStore(t.TempDir())
	assert.NoError(t, err)

	app := fiber.New()
	clinic.RegisterRoutes(clinic.RouterConfig{
		App:    app,
		Repo:   repo,
		Auther: auther,
		Store:  store,
		Config: cfg,
	})

	return &testServer{app: app, repo: repo}
}

func (s *testServer) do(t *testing.T, method, path, token string, payload any) (*http.Response, map[string]any) {
	t.Helper()

	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		assert.NoError(t, err)
		body = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, body)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	res, err := s.app.Test(req, -1)
	assert.NoError(t, err)

	out := map[string]any{}
	raw, _ := io.ReadAll(res.Body)
	_ = json.Unmarshal(raw, &out)
	return res, out
}

func (s *testServer) register(t *testing.T, name, email, role string) map[string]any {
	t.Helper()

	res, body := s.do(t, http.MethodPost, "/auth/register", "", map[string]any{
		"name":     name,
		"email":    email,
		"password": "a long enough password",
		"mobile":   "+14155552671",
		"role":     role,
	})
	assert.Equal(t, fiber.StatusCreated, res.StatusCode, body)
	return body
}

func (s *testServer) login(t *testing.T, email string) string {
	t.Helper()

	res, body := s.do(t, http.MethodPost, "/auth/login", "", map[string]any{
		"email":    email,
		"password": "a long enough password",
	})
	assert.Equal(t, fiber.StatusOK, res.StatusCode, body)
	token, _ := body["token"].(string)
	assert.NotEmpty(t, token)
	return token
}

func TestRegistrationAndApprovalFlow(t *testing.T) {
	srv := newTestServer(t)

	// a patient registers and lands in the pending queue
	created := srv.register(t, "Pat Ient", "pat@example.com", "patient")
	user := created["user"].(map[string]any)
	assert.Equal(t, false, user["approved"])
	patientID := user["id"].(string)

	// login is blocked until an admin approves
	res, body := srv.do(t, http.MethodPost, "/auth/login", "", map[string]any{
		"email":    "pat@example.com",
		"password": "a long enough password",
	})
	assert.Equal(t, fiber.StatusForbidden, res.StatusCode)
	assert.Equal(t, "PENDING_APPROVAL", body["code"])

	// the email is now taken, case insensitively
	res, body = srv.do(t, http.MethodPost, "/auth/register", "", map[string]any{
		"name":     "Pat Again",
		"email":    "PAT@example.com",
		"password": "a long enough password",
		"mobile":   "+14155552671",
		"role":     "patient",
	})
	assert.Equal(t, fiber.StatusBadRequest, res.StatusCode)
	assert.Equal(t, "EMAIL_TAKEN", body["code"])

	// an admin self activates and can log in immediately
	srv.register(t, "Root", "root@example.com", "admin")
	adminToken := srv.login(t, "root@example.com")

	// the queue holds exactly the patient
	res, body = srv.do(t, http.MethodGet, "/admin/pending", adminToken, nil)
	assert.Equal(t, fiber.StatusOK, res.StatusCode)
	pending := body["pending"].([]any)
	assert.Len(t, pending, 1)

	// approve and the patient can log in
	res, _ = srv.do(t, http.MethodPost, "/admin/approve/"+patientID, adminToken, nil)
	assert.Equal(t, fiber.StatusOK, res.StatusCode)
	patientToken := srv.login(t, "pat@example.com")
	assert.NotEmpty(t, patientToken)

	// a patient token cannot reach the admin surface
	res, body = srv.do(t, http.MethodGet, "/admin/pending", patientToken, nil)
	assert.Equal(t, fiber.StatusForbidden, res.StatusCode)
	assert.Equal(t, "Admin only", body["message"])

	// approving an id that never existed is a 404, not a 500
	res, body = srv.do(t, http.MethodPost, "/admin/approve/aaaaaaaa-bbbb-cccc-dddd-eeeeeeeeeeee", adminToken, nil)
	assert.Equal(t, fiber.StatusNotFound, res.StatusCode)
	assert.Equal(t, "NOT_FOUND", body["code"])
}

func TestRejectionIsIdempotent(t *testing.T) {
	srv := newTestServer(t)

	created := srv.register(t, "Soon Gone", "gone@example.com", "doctor")
	id := created["user"].(map[string]any)["id"].(string)

	srv.register(t, "Root", "root@example.com", "admin")
	adminToken := srv.login(t, "root@example.com")

	res, _ := srv.do(t, http.MethodPost, "/admin/reject/"+id, adminToken, nil)
	assert.Equal(t, fiber.StatusOK, res.StatusCode)

	// retrying the same rejection still succeeds
	res, _ = srv.do(t, http.MethodPost, "/admin/reject/"+id, adminToken, nil)
	assert.Equal(t, fiber.StatusOK, res.StatusCode)

	// the rejected account cannot log in
	res, body := srv.do(t, http.MethodPost, "/auth/login", "", map[string]any{
		"email":    "gone@example.com",
		"password": "a long enough password",
	})
	assert.Equal(t, fiber.StatusUnauthorized, res.StatusCode)
	assert.Equal(t, "INVALID_CREDENTIALS", body["code"])
}

func TestClinicalFlow(t *testing.T) {
	srv := newTestServer(t)

	srv.register(t, "Root", "root@example.com", "admin")
	adminToken := srv.login(t, "root@example.com")

	patientBody := srv.register(t, "Pat Ient", "pat@example.com", "patient")
	patientID := patientBody["user"].(map[string]any)["id"].(string)
	doctorBody := srv.register(t, "Dr. Who", "who@example.com", "doctor")
	doctorID := doctorBody["user"].(map[string]any)["id"].(string)

	// seed the patient's NFC card token directly in the store
	patientUser, err := srv.repo.Users().GetByID(context.Background(), patientID)
	assert.NoError(t, err)
	patientUser.NFCToken = "CARD-042"

	res, _ := srv.do(t, http.MethodPost, "/admin/approve/"+patientID, adminToken, nil)
	assert.Equal(t, fiber.StatusOK, res.StatusCode)
	res, _ = srv.do(t, http.MethodPost, "/admin/approve/"+doctorID, adminToken, nil)
	assert.Equal(t, fiber.StatusOK, res.StatusCode)

	doctorToken := srv.login(t, "who@example.com")

	// the doctor writes a prescription; authorship comes from the token
	res, body := srv.do(t, http.MethodPost, "/doctor/prescription", doctorToken, map[string]any{
		"patient_id": patientID,
		"diagnosis":  "Seasonal flu",
		"medications": []map[string]any{
			{"name": "Paracetamol", "dosage": "500mg twice daily"},
		},
		"notes": "Plenty of fluids",
	})
	assert.Equal(t, fiber.StatusCreated, res.StatusCode, body)
	prescription := body["prescription"].(map[string]any)
	assert.Equal(t, doctorID, prescription["doctor_id"])

	// the patient's history lists it
	res, body = srv.do(t, http.MethodGet, "/patient/"+patientID+"/prescriptions", doctorToken, nil)
	assert.Equal(t, fiber.StatusOK, res.StatusCode)
	assert.Len(t, body["prescriptions"].([]any), 1)

	// card token lookup resolves the same patient
	res, body = srv.do(t, http.MethodGet, "/patient/by-token/CARD-042", doctorToken, nil)
	assert.Equal(t, fiber.StatusOK, res.StatusCode)
	assert.Equal(t, patientID, body["patient"].(map[string]any)["id"])

	// profile view never leaks credentials
	res, body = srv.do(t, http.MethodGet, "/patient/"+patientID, doctorToken, nil)
	assert.Equal(t, fiber.StatusOK, res.StatusCode)
	patient := body["patient"].(map[string]any)
	assert.Equal(t, "pat@example.com", patient["email"])
	_, leaked := patient["password_hash"]
	assert.False(t, leaked)

	// prescribing against the doctor's own id is a 404
	res, body = srv.do(t, http.MethodPost, "/doctor/prescription", doctorToken, map[string]any{
		"patient_id": doctorID,
		"diagnosis":  "Self care",
	})
	assert.Equal(t, fiber.StatusNotFound, res.StatusCode, body)

	// record reads need a verified identity, not a specific role: the
	// patient can read their own profile and history
	patientToken := srv.login(t, "pat@example.com")
	res, body = srv.do(t, http.MethodGet, "/patient/"+patientID, patientToken, nil)
	assert.Equal(t, fiber.StatusOK, res.StatusCode, body)
	res, body = srv.do(t, http.MethodGet, "/patient/"+patientID+"/prescriptions", patientToken, nil)
	assert.Equal(t, fiber.StatusOK, res.StatusCode)
	assert.Len(t, body["prescriptions"].([]any), 1)
	res, _ = srv.do(t, http.MethodGet, "/patient/"+patientID, adminToken, nil)
	assert.Equal(t, fiber.StatusOK, res.StatusCode)

	// authoring stays doctor only
	res, body = srv.do(t, http.MethodPost, "/doctor/prescription", adminToken, map[string]any{
		"patient_id": patientID,
		"diagnosis":  "Should not work",
	})
	assert.Equal(t, fiber.StatusForbidden, res.StatusCode)
	assert.Equal(t, "Doctor only", body["message"])
}

func TestDocumentUpload(t *testing.T) {
	srv := newTestServer(t)

	srv.register(t, "Root", "root@example.com", "admin")
	adminToken := srv.login(t, "root@example.com")

	patientBody := srv.register(t, "Pat Ient", "pat@example.com", "patient")
	patientID := patientBody["user"].(map[string]any)["id"].(string)
	res, _ := srv.do(t, http.MethodPost, "/admin/approve/"+patientID, adminToken, nil)
	assert.Equal(t, fiber.StatusOK, res.StatusCode)
	patientToken := srv.login(t, "pat@example.com")

	buf := &bytes.Buffer{}
	writer := multipart.NewWriter(buf)
	part, err := writer.CreateFormFile("file", "blood test.pdf")
	assert.NoError(t, err)
	_, err = part.Write([]byte("pdf-bytes"))
	assert.NoError(t, err)
	assert.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/upload/patient/"+patientID, buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+patientToken)

	resp, err := srv.app.Test(req, -1)
	assert.NoError(t, err)
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)

	body := map[string]any{}
	raw, _ := io.ReadAll(resp.Body)
	assert.NoError(t, json.Unmarshal(raw, &body))

	document := body["document"].(map[string]any)
	assert.Equal(t, patientID, document["patient_id"])
	assert.Equal(t, patientID, document["uploaded_by"])
	assert.Contains(t, document["filename"], "blood_test.pdf")

	// the metadata shows up in the patient's document list
	srv.register(t, "Dr. Who", "who@example.com", "doctor")
	doctorUser, err := srv.repo.Users().GetByEmail(context.Background(), "who@example.com")
	assert.NoError(t, err)
	_, err = srv.repo.Users().Approve(context.Background(), doctorUser.ID)
	assert.NoError(t, err)
	doctorToken := srv.login(t, "who@example.com")

	res, listBody := srv.do(t, http.MethodGet, "/patient/"+patientID+"/documents", doctorToken, nil)
	assert.Equal(t, fiber.StatusOK, res.StatusCode)
	assert.Len(t, listBody["documents"].([]any), 1)

	// uploads without a token are refused
	req = httptest.NewRequest(http.MethodPost, "/upload/patient/"+patientID, bytes.NewReader([]byte("x")))
	resp, err = srv.app.Test(req, -1)
	assert.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestValidationErrors(t *testing.T) {
	srv := newTestServer(t)

	t.Run("short password", func(t *testing.T) {
		res, body := srv.do(t, http.MethodPost, "/auth/register", "", map[string]any{
			"name":     "X",
			"email":    "x@example.com",
			"password": "short",
			"mobile":   "+14155552671",
			"role":     "patient",
		})
		assert.Equal(t, fiber.StatusBadRequest, res.StatusCode)
		assert.Equal(t, "VALIDATION_ERROR", body["code"])
	})

	t.Run("bad mobile number", func(t *testing.T) {
		res, body := srv.do(t, http.MethodPost, "/auth/register", "", map[string]any{
			"name":     "X",
			"email":    "x@example.com",
			"password": "a long enough password",
			"mobile":   "not-a-number",
			"role":     "patient",
		})
		assert.Equal(t, fiber.StatusBadRequest, res.StatusCode)
		assert.Equal(t, "VALIDATION_ERROR", body["code"])
	})

	t.Run("unknown role", func(t *testing.T) {
		res, body := srv.do(t, http.MethodPost, "/auth/register", "", map[string]any{
			"name":     "X",
			"email":    "x@example.com",
			"password": "a long enough password",
			"mobile":   "+14155552671",
			"role":     "superuser",
		})
		assert.Equal(t, fiber.StatusBadRequest, res.StatusCode)
		assert.Equal(t, "VALIDATION_ERROR", body["code"])
	})

	t.Run("mobile is optional", func(t *testing.T) {
		res, body := srv.do(t, http.MethodPost, "/auth/register", "", map[string]any{
			"name":     "No Mobile",
			"email":    "nomobile@example.com",
			"password": "a long enough password",
			"role":     "patient",
		})
		assert.Equal(t, fiber.StatusCreated, res.StatusCode, body)
	})

	t.Run("login without email", func(t *testing.T) {
		res, body := srv.do(t, http.MethodPost, "/auth/login", "", map[string]any{
			"password": "whatever",
		})
		assert.Equal(t, fiber.StatusBadRequest, res.StatusCode)
		assert.Equal(t, "VALIDATION_ERROR", body["code"])
	})
}
