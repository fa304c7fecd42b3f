package app

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/neurobridge-ledger/internal/data/repos/testutil"
	types "github.com/yungbote/neurobridge-ledger/internal/domain"
	"github.com/yungbote/neurobridge-ledger/internal/services"
)

type testApp struct {
	t      *testing.T
	db     *gorm.DB
	router *gin.Engine
	svcs   Services
	token  string
	userID uuid.UUID
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	gin.SetMode(gin.TestMode)
	log := testutil.Logger(t)
	db := testutil.DB(t)

	cfg := LoadConfig()
	cfg.JWTSecretKey = "test-secret"
	cfg.Debounce.Window = 50 * time.Millisecond
	cfg.PointsConsumers = 1
	cfg.Otel.Enabled = false

	clients := Clients{DB: db}
	stores, err := wireStores(log, cfg, clients)
	if err != nil {
		t.Fatalf("wireStores: %v", err)
	}
	t.Cleanup(func() { _ = stores.Bus.Close() })
	svcs, err := wireServices(log, cfg, clients, wireRepos(db, log), stores)
	if err != nil {
		t.Fatalf("wireServices: %v", err)
	}
	router := wireRouter(log, cfg, wireHandlers(log, clients, svcs), wireMiddleware(log, svcs))

	ctx, cancel := context.WithCancel(context.Background())
	if err := svcs.Debounce.Start(ctx); err != nil {
		t.Fatalf("start scheduler: %v", err)
	}
	if err := svcs.PointsConsumer.Start(ctx); err != nil {
		t.Fatalf("start consumer: %v", err)
	}
	t.Cleanup(func() {
		cancel()
		svcs.Debounce.Stop()
	})

	userID := uuid.New()
	token, err := svcs.Auth.GenerateAccessToken(userID)
	if err != nil {
		t.Fatalf("token: %v", err)
	}
	return &testApp{t: t, db: db, router: router, svcs: svcs, token: token, userID: userID}
}

func (a *testApp) do(method, path string, body any) *httptest.ResponseRecorder {
	a.t.Helper()
	var req *http.Request
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			a.t.Fatalf("marshal: %v", err)
		}
		req = httptest.NewRequest(method, path, strings.NewReader(string(raw)))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	req.Header.Set("Authorization", "Bearer "+a.token)
	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)
	return rec
}

func (a *testApp) eventually(what string, cond func() bool) {
	a.t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	a.t.Fatalf("timed out waiting for %s", what)
}

func progress(lessonID, sectionID uuid.UUID, moment int) map[string]any {
	return map[string]any{
		"lesson_id":    lessonID,
		"section_id":   sectionID,
		"section_type": "VIDEO",
		"moment":       moment,
		"duration":     600,
		"commit_time":  time.Now().UTC().Format(time.RFC3339),
	}
}

func TestProgressDebouncesThroughScheduler(t *testing.T) {
	a := newTestApp(t)
	ctx := context.Background()
	course := testutil.SeedCourse(t, ctx, a.db, 2)
	lesson := testutil.SeedLesson(t, ctx, a.db, a.userID, course.ID)
	sectionID := uuid.New()

	for _, m := range []int{60, 120, 180} {
		rec := a.do(http.MethodPost, "/api/learning-records", progress(lesson.ID, sectionID, m))
		if rec.Code != http.StatusOK || rec.Body.String() != `{"finished":false}` {
			t.Fatalf("moment %d: status=%d body=%s", m, rec.Code, rec.Body.String())
		}
	}

	a.eventually("debounced moment to reach storage", func() bool {
		var row types.LearningRecord
		err := a.db.Where("lesson_id = ? AND section_id = ?", lesson.ID, sectionID).First(&row).Error
		return err == nil && row.Moment == 180 && !row.Finished
	})
}

func TestCompletionSignInAndPointsEndToEnd(t *testing.T) {
	a := newTestApp(t)
	ctx := context.Background()
	course := testutil.SeedCourse(t, ctx, a.db, 1)
	lesson := testutil.SeedLesson(t, ctx, a.db, a.userID, course.ID)
	sectionID := uuid.New()

	// The first event only creates the record, whatever its moment.
	rec := a.do(http.MethodPost, "/api/learning-records", progress(lesson.ID, sectionID, 300))
	if rec.Code != http.StatusOK || rec.Body.String() != `{"finished":false}` {
		t.Fatalf("first event: status=%d body=%s", rec.Code, rec.Body.String())
	}
	rec = a.do(http.MethodPost, "/api/learning-records", progress(lesson.ID, sectionID, 320))
	if rec.Code != http.StatusOK || rec.Body.String() != `{"finished":true}` {
		t.Fatalf("complete: status=%d body=%s", rec.Code, rec.Body.String())
	}
	rec = a.do(http.MethodPost, "/api/learning-records", progress(lesson.ID, sectionID, 400))
	if rec.Body.String() != `{"finished":false}` {
		t.Fatalf("repeat completion must not count twice: %s", rec.Body.String())
	}

	var stored types.LearningLesson
	if err := a.db.First(&stored, "id = ?", lesson.ID).Error; err != nil {
		t.Fatalf("load lesson: %v", err)
	}
	if stored.LearnedSections != 1 || stored.Status != types.LessonStatusFinished {
		t.Fatalf("lesson: learned=%d status=%s", stored.LearnedSections, stored.Status)
	}

	rec = a.do(http.MethodGet, fmt.Sprintf("/api/learning-records/course/%s", course.ID), nil)
	var records services.LessonRecords
	if err := json.Unmarshal(rec.Body.Bytes(), &records); err != nil || records.LessonID != lesson.ID || len(records.Records) != 1 {
		t.Fatalf("query records: status=%d body=%s", rec.Code, rec.Body.String())
	}

	rec = a.do(http.MethodPost, "/api/sign-records", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("sign: status=%d body=%s", rec.Code, rec.Body.String())
	}
	if rec = a.do(http.MethodPost, "/api/sign-records", nil); rec.Code != http.StatusConflict {
		t.Fatalf("second sign in: want 409 got %d", rec.Code)
	}

	a.eventually("learning and sign points to be recorded", func() bool {
		rec := a.do(http.MethodGet, "/api/points/today", nil)
		var body struct {
			Points []services.TodayPoints `json:"points"`
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
			return false
		}
		got := map[types.PointsType]int{}
		for _, p := range body.Points {
			got[p.Type] = p.Points
		}
		return got[types.PointsTypeLearning] == 10 && got[types.PointsTypeSign] == 1
	})

	rec = a.do(http.MethodGet, "/api/boards", nil)
	var view services.BoardView
	if err := json.Unmarshal(rec.Body.Bytes(), &view); err != nil {
		t.Fatalf("board: %v body=%s", err, rec.Body.String())
	}
	if view.Rank != 1 || view.Points != 11 || len(view.Boards) != 1 {
		t.Fatalf("board view: %+v", view)
	}
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	a := newTestApp(t)
	a.token = "garbage"
	if rec := a.do(http.MethodGet, "/api/points/today", nil); rec.Code != http.StatusUnauthorized {
		t.Fatalf("want 401 got %d", rec.Code)
	}

	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthcheck", nil))
	if rec.Code != http.StatusOK || rec.Body.String() != "ok" {
		t.Fatalf("healthcheck: status=%d body=%s", rec.Code, rec.Body.String())
	}
}
