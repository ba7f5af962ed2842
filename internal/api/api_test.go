package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/memoryfriend/memory-friend/server/internal/ai"
	"github.com/memoryfriend/memory-friend/server/internal/auth"
	"github.com/memoryfriend/memory-friend/server/internal/model"
	"github.com/memoryfriend/memory-friend/server/internal/services"
	"github.com/memoryfriend/memory-friend/server/internal/store"
	"github.com/memoryfriend/memory-friend/server/internal/store/sqlite"
)

type fakeUploader struct {
	lastPath string
	lastType string
}

func (f *fakeUploader) UploadImage(ctx context.Context, objectPath, contentType string, data []byte) (string, error) {
	f.lastPath = objectPath
	f.lastType = contentType
	return "https://storage.example/" + objectPath, nil
}

type testEnv struct {
	server   *httptest.Server
	store    store.Store
	uploader *fakeUploader
}

// newTestEnv builds the full stack on an in-memory store with auth bypassed.
// The dev user is registered as an elder unless the test replaces the profile.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db, err := sqlite.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, sqlite.ApplySchema(context.Background(), db))
	st := sqlite.NewWithDB(db)

	log := zerolog.Nop()
	uploader := &fakeUploader{}
	router := NewRouter(RouterDeps{
		Memories:   services.NewMemoryService(st, ai.NewExtractor(nil, log)),
		Questions:  services.NewQuestionService(st, ai.NewAnswerer(st.Memories(), nil, log)),
		Profiles:   services.NewProfileService(st),
		Summaries:  services.NewSummaryService(st, ai.NewSummarizer(st.Memories(), nil, time.UTC, log)),
		Uploader:   uploader,
		Authorizer: auth.NewDevAuthorizer(),
		TimeZone:   time.UTC,
	})

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return &testEnv{server: srv, store: st, uploader: uploader}
}

func (e *testEnv) seedElderProfile(t *testing.T) {
	t.Helper()
	_, err := e.store.Profiles().Create(context.Background(), &model.Profile{
		UserID: auth.DevUserID, Email: "dev@memoryfriend.local", Role: model.RoleElder, FullName: "Dev Elder",
	})
	require.NoError(t, err)
}

func (e *testEnv) postJSON(t *testing.T, path string, body interface{}) *http.Response {
	t.Helper()
	b, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(e.server.URL+path, "application/json", bytes.NewReader(b))
	require.NoError(t, err)
	return resp
}

func (e *testEnv) get(t *testing.T, path string) *http.Response {
	t.Helper()
	resp, err := http.Get(e.server.URL + path)
	require.NoError(t, err)
	return resp
}

func decode(t *testing.T, resp *http.Response, out interface{}) {
	t.Helper()
	defer func() { _ = resp.Body.Close() }()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
}

func TestCreateAndListMemories(t *testing.T) {
	env := newTestEnv(t)
	env.seedElderProfile(t)

	resp := env.postJSON(t, "/api/memories", map[string]interface{}{
		"elderId": auth.DevUserID,
		"rawText": "I left my keys next to my pills",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var created model.Memory
	decode(t, resp, &created)
	assert.Equal(t, model.MemoryTypeMedication, created.Type)
	assert.Contains(t, created.Tags, "keys")
	assert.NotEmpty(t, created.ID)

	resp = env.get(t, "/api/memories")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var listed struct {
		Memories []*model.Memory `json:"memories"`
		Count    int             `json:"count"`
	}
	decode(t, resp, &listed)
	assert.Equal(t, 1, listed.Count)

	resp = env.get(t, "/api/memories?type=story")
	var filtered struct {
		Count int `json:"count"`
	}
	decode(t, resp, &filtered)
	assert.Equal(t, 0, filtered.Count)
}

func TestCreateMemoryValidation(t *testing.T) {
	env := newTestEnv(t)
	env.seedElderProfile(t)

	resp := env.postJSON(t, "/api/memories", map[string]interface{}{"elderId": auth.DevUserID})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	_ = resp.Body.Close()

	resp = env.postJSON(t, "/api/memories", map[string]interface{}{
		"elderId": auth.DevUserID, "rawText": "x", "type": "banana",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	_ = resp.Body.Close()

	resp = env.postJSON(t, "/api/memories", map[string]interface{}{"rawText": "no elder"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	_ = resp.Body.Close()
}

func TestCreateMemoryForUnlinkedElderRejected(t *testing.T) {
	env := newTestEnv(t)
	env.seedElderProfile(t)

	resp := env.postJSON(t, "/api/memories", map[string]interface{}{
		"elderId": "someone-else", "rawText": "sneaky write",
	})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	_ = resp.Body.Close()
}

func TestAskAndListQuestions(t *testing.T) {
	env := newTestEnv(t)
	env.seedElderProfile(t)

	resp := env.postJSON(t, "/api/memories", map[string]interface{}{
		"elderId": auth.DevUserID, "rawText": "My keys are by the radio",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	_ = resp.Body.Close()

	resp = env.postJSON(t, "/api/questions", map[string]interface{}{"question": "Where are my keys?"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var asked struct {
		Question        *model.Question `json:"question"`
		MatchedMemories []*model.Memory `json:"matchedMemories"`
	}
	decode(t, resp, &asked)
	require.NotNil(t, asked.Question.AnswerText)
	assert.Contains(t, *asked.Question.AnswerText, "keys are by the radio")
	assert.Len(t, asked.MatchedMemories, 1)

	resp = env.get(t, "/api/questions")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var listed struct {
		Count int `json:"count"`
	}
	decode(t, resp, &listed)
	assert.Equal(t, 1, listed.Count)
}

func TestAskWithNoMemories(t *testing.T) {
	env := newTestEnv(t)
	env.seedElderProfile(t)

	resp := env.postJSON(t, "/api/questions", map[string]interface{}{"question": "Where is my wallet?"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var asked struct {
		Question *model.Question `json:"question"`
	}
	decode(t, resp, &asked)
	assert.Equal(t, ai.NoInformationAnswer, *asked.Question.AnswerText)
}

func TestCurrentElder(t *testing.T) {
	env := newTestEnv(t)

	// No profile yet: the resolver reports not found.
	resp := env.get(t, "/api/current-elder")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	_ = resp.Body.Close()

	env.seedElderProfile(t)
	resp = env.get(t, "/api/current-elder")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var ec model.ElderContext
	decode(t, resp, &ec)
	require.NotNil(t, ec.ElderID)
	assert.Equal(t, auth.DevUserID, *ec.ElderID)
	assert.Equal(t, model.RoleElder, ec.Role)
}

func TestLinkElderFlow(t *testing.T) {
	env := newTestEnv(t)

	// Dev user is a caregiver here; a separate elder profile exists.
	_, err := env.store.Profiles().Create(context.Background(), &model.Profile{
		UserID: auth.DevUserID, Email: "dev@memoryfriend.local", Role: model.RoleCaregiver,
	})
	require.NoError(t, err)
	_, err = env.store.Profiles().Create(context.Background(), &model.Profile{
		UserID: "elder-9", Email: "rose@example.com", Role: model.RoleElder,
	})
	require.NoError(t, err)

	// Unlinked caregiver resolves to no elder.
	resp := env.get(t, "/api/current-elder")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var ec model.ElderContext
	decode(t, resp, &ec)
	assert.Nil(t, ec.ElderID)

	resp = env.postJSON(t, "/api/caregivers/link-elder", map[string]interface{}{"elderEmail": "rose@example.com"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	_ = resp.Body.Close()

	resp = env.get(t, "/api/current-elder")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decode(t, resp, &ec)
	require.NotNil(t, ec.ElderID)
	assert.Equal(t, "elder-9", *ec.ElderID)

	// Requesting an elder the caregiver is not linked to falls back to the
	// first link rather than failing.
	resp = env.get(t, "/api/current-elder?elderId=stranger")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decode(t, resp, &ec)
	require.NotNil(t, ec.ElderID)
	assert.Equal(t, "elder-9", *ec.ElderID)

	// Unknown elder email maps to 404.
	resp = env.postJSON(t, "/api/caregivers/link-elder", map[string]interface{}{"elderEmail": "ghost@example.com"})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	_ = resp.Body.Close()

	// Missing @ never reaches the store.
	resp = env.postJSON(t, "/api/caregivers/link-elder", map[string]interface{}{"elderEmail": "nonsense"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	_ = resp.Body.Close()
}

func TestDailySummaryEndpoint(t *testing.T) {
	env := newTestEnv(t)
	env.seedElderProfile(t)

	today := time.Now().UTC().Format("2006-01-02")
	resp := env.get(t, "/api/summaries/daily?date="+today)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var sum model.DailySummary
	decode(t, resp, &sum)
	assert.Equal(t, ai.EmptyDaySummary, sum.SummaryText)
	assert.Equal(t, today, sum.Date)

	resp = env.get(t, "/api/summaries/daily?date=not-a-date")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	_ = resp.Body.Close()
}

func TestDashboard(t *testing.T) {
	env := newTestEnv(t)
	env.seedElderProfile(t)

	resp := env.postJSON(t, "/api/memories", map[string]interface{}{
		"elderId": auth.DevUserID, "rawText": "Watered the garden",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	_ = resp.Body.Close()

	resp = env.get(t, "/api/dashboard")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var dash struct {
		Elder struct {
			ElderID *string `json:"elderId"`
		} `json:"elder"`
		Memories struct {
			Data  []*model.Memory `json:"data"`
			Error string          `json:"error"`
		} `json:"memories"`
		Questions struct {
			Data []*model.Question `json:"data"`
		} `json:"questions"`
		Summary struct {
			Data *model.DailySummary `json:"data"`
		} `json:"summary"`
	}
	decode(t, resp, &dash)
	require.NotNil(t, dash.Elder.ElderID)
	assert.Len(t, dash.Memories.Data, 1)
	assert.Empty(t, dash.Memories.Error)
	assert.Empty(t, dash.Questions.Data)
	assert.Nil(t, dash.Summary.Data)
}

func TestAttachImage(t *testing.T) {
	env := newTestEnv(t)
	env.seedElderProfile(t)

	resp := env.postJSON(t, "/api/memories", map[string]interface{}{
		"elderId": auth.DevUserID, "rawText": "Garden photo day",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var created model.Memory
	decode(t, resp, &created)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("elderId", auth.DevUserID))
	part, err := mw.CreatePart(map[string][]string{
		"Content-Disposition": {`form-data; name="image"; filename="garden.jpg"`},
		"Content-Type":        {"image/jpeg"},
	})
	require.NoError(t, err)
	_, err = part.Write([]byte("jpegdata"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	resp, err = http.Post(env.server.URL+"/api/memories/"+created.ID+"/image", mw.FormDataContentType(), &buf)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var updated model.Memory
	decode(t, resp, &updated)
	require.NotNil(t, updated.ImageURL)
	assert.Equal(t, fmt.Sprintf("https://storage.example/%s/%s.jpg", auth.DevUserID, created.ID), *updated.ImageURL)
	assert.Equal(t, "image/jpeg", env.uploader.lastType)
}

func TestAttachImage_RejectsNonImage(t *testing.T) {
	env := newTestEnv(t)
	env.seedElderProfile(t)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreatePart(map[string][]string{
		"Content-Disposition": {`form-data; name="image"; filename="notes.txt"`},
		"Content-Type":        {"text/plain"},
	})
	require.NoError(t, err)
	_, err = part.Write([]byte("hello"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	resp, err := http.Post(env.server.URL+"/api/memories/whatever/image", mw.FormDataContentType(), &buf)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	_ = resp.Body.Close()
}

func TestHealthEndpointBypassesAuth(t *testing.T) {
	env := newTestEnv(t)

	resp := env.get(t, "/api/health")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var body struct {
		Status string `json:"status"`
	}
	decode(t, resp, &body)
	assert.Contains(t, []string{"healthy", "unhealthy"}, body.Status)
}
