package router_test

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/oksasatya/campus-resource-tracker/config"
	"github.com/oksasatya/campus-resource-tracker/internal/container"
	"github.com/oksasatya/campus-resource-tracker/internal/router"
	"github.com/oksasatya/campus-resource-tracker/pkg/helpers"
)

type envelope struct {
	Status    int             `json:"status"`
	RequestID string          `json:"request_id"`
	Success   bool            `json:"success"`
	Message   string          `json:"message"`
	Data      json.RawMessage `json:"data"`
	Meta      json.RawMessage `json:"meta"`
	Error     json.RawMessage `json:"error"`
}

type resourceBody struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Type     string `json:"type"`
	Building string `json:"building"`
	Floor    string `json:"floor"`
	Location struct {
		Type        string    `json:"type"`
		Coordinates []float64 `json:"coordinates"`
	} `json:"location"`
	UploadedBy struct {
		ID       string `json:"id"`
		Username string `json:"username"`
	} `json:"uploaded_by"`
	Ratings []struct {
		User struct {
			Username string `json:"username"`
		} `json:"user"`
		Score int `json:"score"`
	} `json:"ratings"`
	AverageRating float64  `json:"average_rating"`
	DistanceM     *float64 `json:"distance_m"`
	DistanceText  string   `json:"distance_text"`
}

type api struct {
	t      *testing.T
	engine *gin.Engine
}

func newAPI(t *testing.T) *api {
	t.Helper()
	gin.SetMode(gin.TestMode)
	cfg := &config.Config{
		AppName:             "test",
		Env:                 "test",
		StoreDriver:         config.DriverMemory,
		JWTSecret:           "test-secret",
		JWTTTL:              time.Hour,
		BcryptCost:          bcrypt.MinCost,
		CORSAllowedOrigins:  "http://localhost:5173",
		DebugMetricsEnabled: true,
	}
	c, err := container.New(cfg, helpers.NewDiscardLogger(), container.Infra{})
	require.NoError(t, err)
	return &api{t: t, engine: router.NewEngine(c)}
}

func (a *api) do(method, path, token string, body any) (*httptest.ResponseRecorder, envelope) {
	a.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		switch b := body.(type) {
		case string:
			buf.WriteString(b)
		default:
			require.NoError(a.t, json.NewEncoder(&buf).Encode(b))
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return a.serve(req)
}

func (a *api) serve(req *http.Request) (*httptest.ResponseRecorder, envelope) {
	w := httptest.NewRecorder()
	a.engine.ServeHTTP(w, req)
	var env envelope
	if w.Body.Len() > 0 && bytes.HasPrefix(bytes.TrimSpace(w.Body.Bytes()), []byte("{")) {
		require.NoError(a.t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	}
	return w, env
}

func (a *api) signup(name string) string {
	a.t.Helper()
	w, _ := a.do(http.MethodPost, "/api/auth/register", "", map[string]string{
		"username": name, "email": name + "@example.com", "password": "password123",
	})
	require.Equal(a.t, http.StatusCreated, w.Code, w.Body.String())
	w, env := a.do(http.MethodPost, "/api/auth/login", "", map[string]string{"identifier": name, "password": "password123"})
	require.Equal(a.t, http.StatusOK, w.Code, w.Body.String())
	var data struct {
		Token string `json:"token"`
	}
	require.NoError(a.t, json.Unmarshal(env.Data, &data))
	return data.Token
}

func (a *api) createToilet(token string) resourceBody {
	a.t.Helper()
	w, env := a.do(http.MethodPost, "/api/resources", token, map[string]any{
		"name":        "Main Library Toilet",
		"type":        "toilet",
		"building":    "Main Library",
		"floor":       "Ground",
		"coordinates": []float64{151.2313, -33.9173},
	})
	require.Equal(a.t, http.StatusCreated, w.Code, w.Body.String())
	var r resourceBody
	require.NoError(a.t, json.Unmarshal(env.Data, &r))
	return r
}

func decode[T any](t *testing.T, raw json.RawMessage) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(raw, &v), string(raw))
	return v
}

func TestAuthFlow(t *testing.T) {
	a := newAPI(t)
	token := a.signup("alice")

	w, env := a.do(http.MethodPost, "/api/auth/register", "", map[string]string{
		"username": "alice", "email": "other@example.com", "password": "password123",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, string(env.Error), "username")

	w, env = a.do(http.MethodPost, "/api/auth/register", "", map[string]string{"username": "x"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	fields := decode[map[string]string](t, env.Error)
	assert.Contains(t, fields, "username")
	assert.Contains(t, fields, "email")
	assert.Contains(t, fields, "password")

	w, _ = a.do(http.MethodPost, "/api/auth/login", "", map[string]string{"email": "ALICE@example.com", "password": "password123"})
	assert.Equal(t, http.StatusOK, w.Code)

	wWrong, envWrong := a.do(http.MethodPost, "/api/auth/login", "", map[string]string{"username": "alice", "password": "wrong-password"})
	wUnknown, envUnknown := a.do(http.MethodPost, "/api/auth/login", "", map[string]string{"username": "nobody", "password": "wrong-password"})
	assert.Equal(t, http.StatusUnauthorized, wWrong.Code)
	assert.Equal(t, http.StatusUnauthorized, wUnknown.Code)
	assert.Equal(t, envWrong.Message, envUnknown.Message)

	w, _ = a.do(http.MethodPost, "/api/auth/login", "", "{not json")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, env = a.do(http.MethodGet, "/api/auth/me", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	me := decode[map[string]any](t, env.Data)
	assert.Equal(t, "alice", me["username"])
	assert.NotContains(t, me, "password_hash")
	assert.NotContains(t, w.Body.String(), "$2a$")

	w, _ = a.do(http.MethodGet, "/api/auth/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestResourceLifecycle(t *testing.T) {
	a := newAPI(t)
	owner := a.signup("owner")
	other := a.signup("other")

	w, _ := a.do(http.MethodPost, "/api/resources", "", map[string]any{"name": "x"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, env := a.do(http.MethodPost, "/api/resources", owner, map[string]any{
		"name": "Fountain", "type": "Jacuzzi", "building": "Quad", "coordinates": []float64{200, 0},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, string(env.Error), "coordinates")

	w, env = a.do(http.MethodPost, "/api/resources", owner, map[string]any{
		"name": "Fountain", "type": "Jacuzzi", "building": "Quad", "coordinates": []float64{151.23, -33.91},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, string(env.Error), "type")

	r := a.createToilet(owner)
	assert.Equal(t, "Toilet", r.Type)
	assert.Equal(t, "Point", r.Location.Type)
	assert.Equal(t, []float64{151.2313, -33.9173}, r.Location.Coordinates)
	assert.Equal(t, "owner", r.UploadedBy.Username)
	assert.NotNil(t, r.Ratings)

	w, env = a.do(http.MethodGet, "/api/resources/"+r.ID, "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, r.Name, decode[resourceBody](t, env.Data).Name)

	w, _ = a.do(http.MethodGet, "/api/resources/does-not-exist", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, env = a.do(http.MethodGet, "/api/resources", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"count":1}`, string(env.Meta))

	w, _ = a.do(http.MethodPut, "/api/resources/"+r.ID, other, map[string]any{"name": "Mine now"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, env = a.do(http.MethodPut, "/api/resources/"+r.ID, owner, map[string]any{"floor": "Level 2"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	updated := decode[resourceBody](t, env.Data)
	assert.Equal(t, "Level 2", updated.Floor)
	assert.Equal(t, r.Name, updated.Name)
	assert.Equal(t, r.Building, updated.Building)
	assert.Equal(t, r.Location, updated.Location)

	w, env = a.do(http.MethodPut, "/api/resources/"+r.ID, owner, map[string]any{
		"location": map[string]any{"type": "Point", "coordinates": []float64{151.2320, -33.9180}},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, []float64{151.2320, -33.9180}, decode[resourceBody](t, env.Data).Location.Coordinates)

	w, _ = a.do(http.MethodPut, "/api/resources/"+r.ID, owner, `{"name":null}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = a.do(http.MethodPut, "/api/resources/"+r.ID, other, map[string]any{"coordinates": []float64{1}})
	assert.Equal(t, http.StatusForbidden, w.Code)
	w, _ = a.do(http.MethodPut, "/api/resources/"+r.ID, other, map[string]any{"coordinates": []float64{0, 95}})
	assert.Equal(t, http.StatusForbidden, w.Code)
	w, env = a.do(http.MethodPut, "/api/resources/"+r.ID, owner, map[string]any{"coordinates": []float64{1}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, string(env.Error), "coordinates")

	w, _ = a.do(http.MethodDelete, "/api/resources/"+r.ID, other, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	w, _ = a.do(http.MethodDelete, "/api/resources/"+r.ID, owner, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w, _ = a.do(http.MethodGet, "/api/resources/"+r.ID, "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	w, _ = a.do(http.MethodDelete, "/api/resources/"+r.ID, owner, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSearchAndRate(t *testing.T) {
	a := newAPI(t)
	owner := a.signup("owner")
	user1 := a.signup("user1")
	user2 := a.signup("user2")
	r := a.createToilet(owner)

	w, env := a.do(http.MethodGet, "/api/resources/search?q=TOILET", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	found := decode[[]resourceBody](t, env.Data)
	require.Len(t, found, 1)
	assert.Nil(t, found[0].DistanceM)

	w, env = a.do(http.MethodGet, "/api/resources/search?lat=-33.9173&lng=151.2313", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	found = decode[[]resourceBody](t, env.Data)
	require.Len(t, found, 1)
	require.NotNil(t, found[0].DistanceM)
	assert.InDelta(t, 0, *found[0].DistanceM, 0.01)
	assert.Equal(t, "0m away", found[0].DistanceText)

	w, env = a.do(http.MethodGet, "/api/resources/search?q=nothing-like-this", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, string(env.Data))
	assert.JSONEq(t, `{"count":0}`, string(env.Meta))

	w, env = a.do(http.MethodGet, "/api/resources/search?lat=north&lng=151", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, string(env.Error), "lat")

	w, env = a.do(http.MethodPost, "/api/resources/"+r.ID+"/rate", user1, map[string]any{"score": 5, "comment": "clean"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, 5.0, decode[resourceBody](t, env.Data).AverageRating)

	w, _ = a.do(http.MethodPost, "/api/resources/"+r.ID+"/rate", user1, map[string]any{"score": 4})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	for _, body := range []any{map[string]any{"score": 0}, map[string]any{"score": 6}, `{"score":"five"}`} {
		w, _ = a.do(http.MethodPost, "/api/resources/"+r.ID+"/rate", user2, body)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	}

	w, env = a.do(http.MethodPost, "/api/resources/"+r.ID+"/rate", user2, map[string]any{"score": 3})
	require.Equal(t, http.StatusOK, w.Code)
	rated := decode[resourceBody](t, env.Data)
	assert.Equal(t, 4.0, rated.AverageRating)
	require.Len(t, rated.Ratings, 2)
	assert.Equal(t, "user1", rated.Ratings[0].User.Username)

	w, _ = a.do(http.MethodPost, "/api/resources/missing/rate", user2, map[string]any{"score": 3})
	assert.Equal(t, http.StatusNotFound, w.Code)
	w, _ = a.do(http.MethodPost, "/api/resources/"+r.ID+"/rate", "", map[string]any{"score": 3})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestUploadPhotoWithoutStorage(t *testing.T) {
	a := newAPI(t)
	owner := a.signup("owner")
	r := a.createToilet(owner)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	h := textproto.MIMEHeader{}
	h.Set("Content-Disposition", `form-data; name="photo"; filename="toilet.png"`)
	h.Set("Content-Type", "image/png")
	part, err := mw.CreatePart(h)
	require.NoError(t, err)
	_, _ = part.Write([]byte("\x89PNG fake"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/resources/"+r.ID+"/photo", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+owner)
	w, env := a.serve(req)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "internal server error", env.Message)
	assert.Contains(t, string(env.Error), "PHOTO_STORAGE_UNAVAILABLE")

	req = httptest.NewRequest(http.MethodPost, "/api/resources/"+r.ID+"/photo", bytes.NewReader(nil))
	req.Header.Set("Authorization", "Bearer "+owner)
	w, _ = a.serve(req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUsersSearchAndSystem(t *testing.T) {
	a := newAPI(t)
	token := a.signup("alice")

	w, _ := a.do(http.MethodGet, "/api/users/search?q=ali", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, env := a.do(http.MethodGet, "/api/users/search?q=ali", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, string(env.Data))

	w, env = a.do(http.MethodGet, "/api/health", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, env.RequestID, w.Header().Get("X-Request-ID"))
	assert.JSONEq(t, `{"status":"ok","driver":"memory"}`, string(env.Data))

	w = httptest.NewRecorder()
	a.engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/debug/vars", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "resources_created")
}
