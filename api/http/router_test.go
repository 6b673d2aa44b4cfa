package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/artem13815/freelance/api/http/handlers"
	"github.com/artem13815/freelance/pkg/embedding"
	"github.com/artem13815/freelance/pkg/freelancer"
	"github.com/artem13815/freelance/pkg/health"
	"github.com/artem13815/freelance/pkg/invoice"
	"github.com/artem13815/freelance/pkg/llm"
	"github.com/artem13815/freelance/pkg/matching"
	"github.com/artem13815/freelance/pkg/project"
	"github.com/artem13815/freelance/pkg/security/jwt"
)

const (
	testSecret = "test-secret"
	testIssuer = "test-issuer"
)

type fakeMatches struct {
	matches  []matching.Match
	err      error
	limit    int
	minScore float64
}

func (f *fakeMatches) FindBestMatches(ctx context.Context, projectID uuid.UUID, limit int, minScore float64) ([]matching.Match, error) {
	f.limit, f.minScore = limit, minScore
	return f.matches, f.err
}

type fakeRefresher struct{ dims int }

func (f fakeRefresher) Refresh(ctx context.Context, doc embedding.Document) ([]float32, error) {
	if doc.Text == "" {
		return nil, fmt.Errorf("%w: empty text", llm.ErrProvider)
	}
	return make([]float32, f.dims), nil
}

type projectRepo map[uuid.UUID]project.Project

func (r projectRepo) GetByID(ctx context.Context, id uuid.UUID) (project.Project, error) {
	p, ok := r[id]
	if !ok {
		return project.Project{}, project.ErrNotFound
	}
	return p, nil
}

func (r projectRepo) List(ctx context.Context, limit, offset int) ([]project.Project, error) {
	return nil, nil
}

type freelancerRepo map[uuid.UUID]freelancer.Freelancer

func (r freelancerRepo) GetByID(ctx context.Context, id uuid.UUID) (freelancer.Freelancer, error) {
	f, ok := r[id]
	if !ok {
		return freelancer.Freelancer{}, freelancer.ErrNotFound
	}
	return f, nil
}

func (r freelancerRepo) ListAvailable(ctx context.Context) ([]freelancer.Freelancer, error) {
	return nil, nil
}

func (r freelancerRepo) List(ctx context.Context, limit, offset int) ([]freelancer.Freelancer, error) {
	return nil, nil
}

type invoiceRepo struct {
	mu    sync.Mutex
	items map[uuid.UUID]invoice.Invoice
}

func (r *invoiceRepo) Create(ctx context.Context, inv invoice.Invoice) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[inv.ID] = inv
	return nil
}

func (r *invoiceRepo) GetByID(ctx context.Context, id uuid.UUID) (invoice.Invoice, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	inv, ok := r.items[id]
	if !ok {
		return invoice.Invoice{}, invoice.ErrNotFound
	}
	return inv, nil
}

func (r *invoiceRepo) ListByFreelancer(ctx context.Context, freelancerID uuid.UUID, limit, offset int) ([]invoice.Invoice, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []invoice.Invoice
	for _, inv := range r.items {
		if inv.FreelancerID == freelancerID {
			out = append(out, inv)
		}
	}
	return out, nil
}

type staticChecker struct {
	name string
	err  error
}

func (c staticChecker) Name() string                    { return c.name }
func (c staticChecker) Check(ctx context.Context) error { return c.err }

type testEnv struct {
	app     *fiber.App
	matches *fakeMatches
	project uuid.UUID
}

func newTestEnv(t *testing.T, checkers ...health.Checker) *testEnv {
	t.Helper()
	projectID := uuid.New()
	projects := projectRepo{projectID: {ID: projectID, Title: "API en Go", Description: "Backend", RequiredSkills: []string{"go"}}}
	freelancers := freelancerRepo{}

	jur := invoice.DefaultJurisdictions()
	calc := invoice.NewCalculator(jur)
	validator := invoice.NewValidator(jur)
	invoiceUC := invoice.NewService(&invoiceRepo{items: map[uuid.UUID]invoice.Invoice{}}, calc, validator, nil)

	matches := &fakeMatches{}
	app := NewApp(nil)
	Register(app, AuthConfig{Secret: testSecret, Issuer: testIssuer}, Handlers{
		Health:     handlers.NewHealthHandler(health.NewService(checkers...)),
		Matches:    handlers.NewMatchHandler(matches, 10, 0.5),
		Embeddings: handlers.NewEmbeddingHandler(fakeRefresher{dims: 8}, projects, freelancers),
		Invoices:   handlers.NewInvoiceHandler(invoiceUC, calc, validator),
	})
	return &testEnv{app: app, matches: matches, project: projectID}
}

func token(t *testing.T, sub uuid.UUID, role string) string {
	t.Helper()
	tok, err := jwt.NewGenerator(testSecret, testIssuer, time.Hour).Generate(context.Background(), sub, role)
	require.NoError(t, err)
	return tok
}

func (e *testEnv) do(t *testing.T, method, path, tok string, body any) (int, []byte) {
	t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}
	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, data
}

func TestHealthAndReady(t *testing.T) {
	env := newTestEnv(t, staticChecker{name: "postgres"}, staticChecker{name: "redis", err: errors.New("connection refused")})

	code, _ := env.do(t, http.MethodGet, "/api/v1/health", "", nil)
	assert.Equal(t, http.StatusOK, code)

	code, body := env.do(t, http.MethodGet, "/api/v1/ready", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, code)
	var got struct {
		Status string            `json:"status"`
		Checks map[string]string `json:"checks"`
	}
	require.NoError(t, json.Unmarshal(body, &got))
	assert.Equal(t, "not_ready", got.Status)
	assert.Equal(t, "ok", got.Checks["postgres"])
	assert.Contains(t, got.Checks["redis"], "connection refused")
}

func TestMatchesRequireAuth(t *testing.T) {
	env := newTestEnv(t)
	code, _ := env.do(t, http.MethodGet, "/api/v1/projects/"+env.project.String()+"/matches", "", nil)
	assert.Equal(t, http.StatusUnauthorized, code)
}

func TestMatchesList(t *testing.T) {
	env := newTestEnv(t)
	rate := 40.0
	f := freelancer.Freelancer{ID: uuid.New(), UserID: uuid.New(), FullName: "Ana", Skills: []string{"go"}, HourlyRate: &rate, Rating: 4.8}
	env.matches.matches = []matching.Match{{
		Freelancer:  f,
		Score:       0.82,
		Breakdown:   matching.Breakdown{SemanticSimilarity: 0.9, SkillsMatch: 1, RateFit: 0.5, Availability: 1},
		Explanation: "Buen encaje",
	}}

	tok := token(t, uuid.New(), jwt.RoleClient)
	code, body := env.do(t, http.MethodGet, "/api/v1/projects/"+env.project.String()+"/matches?limit=5&minScore=0.3", tok, nil)
	require.Equal(t, http.StatusOK, code, string(body))
	assert.Equal(t, 5, env.matches.limit)
	assert.InDelta(t, 0.3, env.matches.minScore, 1e-9)

	var got struct {
		ProjectID string `json:"projectId"`
		Matches   []struct {
			FreelancerID string             `json:"freelancerId"`
			Score        float64            `json:"score"`
			Breakdown    map[string]float64 `json:"breakdown"`
			Explanation  string             `json:"explanation"`
		} `json:"matches"`
	}
	require.NoError(t, json.Unmarshal(body, &got))
	assert.Equal(t, env.project.String(), got.ProjectID)
	require.Len(t, got.Matches, 1)
	assert.Equal(t, f.ID.String(), got.Matches[0].FreelancerID)
	assert.InDelta(t, 0.9, got.Matches[0].Breakdown["semantic_similarity"], 1e-9)
	assert.Equal(t, "Buen encaje", got.Matches[0].Explanation)
}

func TestMatchesDefaultsAndValidation(t *testing.T) {
	env := newTestEnv(t)
	tok := token(t, uuid.New(), jwt.RoleClient)
	path := "/api/v1/projects/" + env.project.String() + "/matches"

	code, body := env.do(t, http.MethodGet, path, tok, nil)
	require.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, fmt.Sprintf(`{"projectId":%q,"matches":[]}`, env.project), string(body))
	assert.Equal(t, 10, env.matches.limit)
	assert.InDelta(t, 0.5, env.matches.minScore, 1e-9)

	code, _ = env.do(t, http.MethodGet, path+"?minScore=1.5", tok, nil)
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = env.do(t, http.MethodGet, "/api/v1/projects/not-a-uuid/matches", tok, nil)
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestMatchesErrorMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"project missing", project.ErrNotFound, http.StatusNotFound},
		{"no candidates", matching.ErrNoCandidates, http.StatusNotFound},
		{"provider down", fmt.Errorf("embed: %w", llm.ErrProvider), http.StatusBadGateway},
		{"unexpected", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			env.matches.err = tt.err
			code, _ := env.do(t, http.MethodGet, "/api/v1/projects/"+env.project.String()+"/matches", token(t, uuid.New(), jwt.RoleClient), nil)
			assert.Equal(t, tt.want, code)
		})
	}
}

func TestEmbeddingRefresh(t *testing.T) {
	env := newTestEnv(t)
	path := "/api/v1/embeddings/project/" + env.project.String() + "/refresh"

	code, _ := env.do(t, http.MethodPost, path, token(t, uuid.New(), jwt.RoleFreelancer), nil)
	assert.Equal(t, http.StatusForbidden, code)

	admin := token(t, uuid.New(), jwt.RoleAdmin)
	code, body := env.do(t, http.MethodPost, path, admin, nil)
	require.Equal(t, http.StatusOK, code, string(body))
	var got struct {
		Kind       string `json:"kind"`
		Dimensions int    `json:"dimensions"`
	}
	require.NoError(t, json.Unmarshal(body, &got))
	assert.Equal(t, "project", got.Kind)
	assert.Equal(t, 8, got.Dimensions)

	code, _ = env.do(t, http.MethodPost, "/api/v1/embeddings/invoice/"+env.project.String()+"/refresh", admin, nil)
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = env.do(t, http.MethodPost, "/api/v1/embeddings/freelancer/"+uuid.NewString()+"/refresh", admin, nil)
	assert.Equal(t, http.StatusNotFound, code)
}

func TestInvoiceCalculate(t *testing.T) {
	env := newTestEnv(t)
	tok := token(t, uuid.New(), jwt.RoleFreelancer)

	code, body := env.do(t, http.MethodPost, "/api/v1/invoices/calculate", tok, map[string]any{
		"base_amount": "1000,00",
		"country":     "ES",
		"irpf_rate":   7,
	})
	require.Equal(t, http.StatusOK, code, string(body))
	var got map[string]any
	require.NoError(t, json.Unmarshal(body, &got))
	assert.Equal(t, "domestic", got["scenario"])
	assert.Equal(t, 70.0, got["irpf_amount"])
	assert.Equal(t, 1140.0, got["total_amount"])

	code, body = env.do(t, http.MethodPost, "/api/v1/invoices/calculate", tok, map[string]any{"base_amount": 500, "country": "DE"})
	require.Equal(t, http.StatusOK, code)
	require.NoError(t, json.Unmarshal(body, &got))
	assert.Equal(t, "eu_b2b", got["scenario"])
	assert.Equal(t, true, got["reverse_charge"])
	assert.Equal(t, 500.0, got["total_amount"])

	code, _ = env.do(t, http.MethodPost, "/api/v1/invoices/calculate", tok, map[string]any{"base_amount": 0, "country": "ES"})
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = env.do(t, http.MethodPost, "/api/v1/invoices/calculate", tok, map[string]any{"base_amount": 100, "country": "ES", "irpf_rate": 101})
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestInvoiceValidate(t *testing.T) {
	env := newTestEnv(t)
	code, body := env.do(t, http.MethodPost, "/api/v1/invoices/validate", token(t, uuid.New(), jwt.RoleFreelancer), map[string]any{
		"country":     "ES",
		"tax_id":      "X",
		"base_amount": -5,
	})
	require.Equal(t, http.StatusOK, code)
	var got invoice.ValidationResult
	require.NoError(t, json.Unmarshal(body, &got))
	assert.False(t, got.Valid)
	assert.Contains(t, got.Errors, "Tax ID format is invalid for country ES")
	assert.Contains(t, got.Errors, "Base amount must be greater than 0")
}

func validInvoice() map[string]any {
	return map[string]any{
		"legal_name":  "Acme SL",
		"tax_id":      "B12345678",
		"address":     "Calle Mayor 1",
		"postal_code": "28001",
		"city":        "Madrid",
		"country":     "es",
		"base_amount": 1000,
		"description": "Desarrollo de API",
		"iban":        "ES91 2100 0418 4502 0005 1332",
	}
}

func TestInvoiceCreateGetList(t *testing.T) {
	env := newTestEnv(t)
	owner := uuid.New()
	ownerTok := token(t, owner, jwt.RoleFreelancer)

	code, body := env.do(t, http.MethodPost, "/api/v1/invoices", ownerTok, map[string]any{"country": "ES"})
	require.Equal(t, http.StatusUnprocessableEntity, code)
	assert.Contains(t, string(body), "Legal name is required")

	code, body = env.do(t, http.MethodPost, "/api/v1/invoices", ownerTok, validInvoice())
	require.Equal(t, http.StatusCreated, code, string(body))
	var created struct {
		ID           string         `json:"id"`
		FreelancerID string         `json:"freelancerId"`
		Fields       map[string]any `json:"fields"`
		Calculation  map[string]any `json:"calculation"`
	}
	require.NoError(t, json.Unmarshal(body, &created))
	assert.Equal(t, owner.String(), created.FreelancerID)
	assert.Equal(t, "ES", created.Fields["country"])
	assert.Equal(t, "ES9121000418450200051332", created.Fields["iban"])
	assert.Equal(t, 1060.0, created.Calculation["total_amount"])

	code, _ = env.do(t, http.MethodGet, "/api/v1/invoices/"+created.ID, ownerTok, nil)
	assert.Equal(t, http.StatusOK, code)

	code, _ = env.do(t, http.MethodGet, "/api/v1/invoices/"+created.ID, token(t, uuid.New(), jwt.RoleFreelancer), nil)
	assert.Equal(t, http.StatusNotFound, code)

	code, _ = env.do(t, http.MethodGet, "/api/v1/invoices/"+created.ID, token(t, uuid.New(), jwt.RoleAdmin), nil)
	assert.Equal(t, http.StatusOK, code)

	code, body = env.do(t, http.MethodGet, "/api/v1/invoices", ownerTok, nil)
	require.Equal(t, http.StatusOK, code)
	var list []map[string]any
	require.NoError(t, json.Unmarshal(body, &list))
	assert.Len(t, list, 1)
}

func TestInvoiceCreateRejectsBadRate(t *testing.T) {
	env := newTestEnv(t)
	body := validInvoice()
	body["irpf_rate"] = -1
	code, _ := env.do(t, http.MethodPost, "/api/v1/invoices", token(t, uuid.New(), jwt.RoleFreelancer), body)
	assert.Equal(t, http.StatusBadRequest, code)
}
