package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/games-aggregator/internal/aggregation/ingest"
	"github.com/yungbote/games-aggregator/internal/aggregation/sources"
	"github.com/yungbote/games-aggregator/internal/data/repos"
	"github.com/yungbote/games-aggregator/internal/data/repos/testutil"
	types "github.com/yungbote/games-aggregator/internal/domain"
	httpH "github.com/yungbote/games-aggregator/internal/http/handlers"
	"github.com/yungbote/games-aggregator/internal/jobs"
	"github.com/yungbote/games-aggregator/internal/observability"
	"github.com/yungbote/games-aggregator/internal/services"
)

func newTestRouter(t *testing.T, enabled ...sources.Kind) (*gin.Engine, *ingest.Engine) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	log := testutil.Logger(t)
	r := repos.New(tx, log)
	metrics := observability.NewMetrics()
	engine := ingest.NewEngine(tx, log, r, metrics)
	catalog := services.NewCatalogService(log, r, engine)

	testutil.SeedSteamApp(t, ctx, tx, &types.SteamApp{
		AppID: 2280, Name: "Doom", ReleaseDate: "1993-12-10", DetailType: "game",
		Developers: testutil.Names("id Software"), Publishers: testutil.Names("GT Interactive"),
		Genres: testutil.Names("Action"),
	})

	return NewRouter(RouterConfig{
		Log:           log,
		Metrics:       metrics,
		HealthHandler: httpH.NewHealthHandler(nil),
		GameHandler:   httpH.NewGameHandler(catalog),
		DryRunHandler: httpH.NewDryRunHandler(catalog, enabled),
		JobHandler:    httpH.NewJobHandler(jobs.NewService(log, r.JobRuns, nil, "")),
	}), engine
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var rdr *bytes.Reader
	if body == "" {
		rdr = bytes.NewReader(nil)
	} else {
		rdr = bytes.NewReader([]byte(body))
	}
	req := httptest.NewRequest(method, path, rdr)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestRouter(t *testing.T) {
	router, engine := newTestRouter(t, sources.Kinds()...)

	if rec := do(t, router, http.MethodGet, "/healthz", ""); rec.Code != http.StatusOK {
		t.Fatalf("healthz: %d", rec.Code)
	}

	// Dry run before anything is linked.
	rec := do(t, router, http.MethodPost, "/dry-run", `{"sources":["steam"],"limit":10}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("dry-run: %d %s", rec.Code, rec.Body.String())
	}
	var dry struct {
		Reports []ingest.DryRunReport `json:"reports"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &dry); err != nil {
		t.Fatalf("decode dry-run: %v", err)
	}
	if len(dry.Reports) != 1 || dry.Reports[0].WouldCreate != 1 {
		t.Fatalf("dry-run reports: %+v", dry.Reports)
	}
	if rec := do(t, router, http.MethodPost, "/dry-run", `{"sources":["itch"]}`); rec.Code != http.StatusBadRequest {
		t.Fatalf("dry-run bad source: %d", rec.Code)
	}
	if rec := do(t, router, http.MethodPost, "/dry-run", `{"limit":-1}`); rec.Code != http.StatusBadRequest {
		t.Fatalf("dry-run bad limit: %d", rec.Code)
	}

	p, err := engine.Pipeline(sources.KindSteam)
	if err != nil {
		t.Fatalf("Pipeline: %v", err)
	}
	if _, err := p.Run(context.Background(), 0); err != nil {
		t.Fatalf("Run: %v", err)
	}

	rec = do(t, router, http.MethodGet, "/games/doom", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("games/doom: %d %s", rec.Code, rec.Body.String())
	}
	var got struct {
		Game types.GameView `json:"game"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode game: %v", err)
	}
	if got.Game.Slug != "doom" || got.Game.SteamAppID == nil || len(got.Game.Developers) != 1 || len(got.Game.Genres) != 1 {
		t.Fatalf("game view: %+v", got.Game)
	}
	if rec.Header().Get("X-Request-Id") == "" {
		t.Fatalf("missing X-Request-Id header")
	}

	rec = do(t, router, http.MethodGet, "/games/quake", "")
	if rec.Code != http.StatusNotFound || !strings.Contains(rec.Body.String(), `"not_found"`) {
		t.Fatalf("games/quake: %d %s", rec.Code, rec.Body.String())
	}

	rec = do(t, router, http.MethodGet, "/sources/steam/"+strconv.FormatUint(*got.Game.SteamAppID, 10)+"/game", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"slug":"doom"`) {
		t.Fatalf("sources/steam game: %d %s", rec.Code, rec.Body.String())
	}
	if rec := do(t, router, http.MethodGet, "/sources/gog/1/game", ""); rec.Code != http.StatusNotFound {
		t.Fatalf("sources/gog unlinked: %d %s", rec.Code, rec.Body.String())
	}
	if rec := do(t, router, http.MethodGet, "/sources/itch/1/game", ""); rec.Code != http.StatusBadRequest {
		t.Fatalf("sources/itch: %d", rec.Code)
	}
	if rec := do(t, router, http.MethodGet, "/sources/steam/abc/game", ""); rec.Code != http.StatusBadRequest {
		t.Fatalf("sources/steam bad id: %d", rec.Code)
	}

	if rec := do(t, router, http.MethodGet, "/stats", ""); rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"games":1`) {
		t.Fatalf("stats: %d %s", rec.Code, rec.Body.String())
	}

	rec = do(t, router, http.MethodGet, "/metrics", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "ga_api_requests_total") {
		t.Fatalf("metrics: %d", rec.Code)
	}
}

func TestDryRunDefaultsToEnabledSources(t *testing.T) {
	router, _ := newTestRouter(t, sources.KindSteam, sources.KindWikipedia)

	rec := do(t, router, http.MethodPost, "/dry-run", `{"limit":10}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("dry-run: %d %s", rec.Code, rec.Body.String())
	}
	var dry struct {
		Reports []ingest.DryRunReport `json:"reports"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &dry); err != nil {
		t.Fatalf("decode dry-run: %v", err)
	}
	if len(dry.Reports) != 2 || dry.Reports[0].Source != sources.KindSteam || dry.Reports[1].Source != sources.KindWikipedia {
		t.Fatalf("dry-run reports: %+v", dry.Reports)
	}

	// An explicit list is honored even for a disabled source.
	rec = do(t, router, http.MethodPost, "/dry-run", `{"sources":["gog"]}`)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"source":"gog"`) {
		t.Fatalf("dry-run gog: %d %s", rec.Code, rec.Body.String())
	}

	none := NewRouter(RouterConfig{Log: testutil.Logger(t), DryRunHandler: httpH.NewDryRunHandler(nil, nil)})
	if rec := do(t, none, http.MethodPost, "/dry-run", ""); rec.Code != http.StatusBadRequest {
		t.Fatalf("dry-run with nothing enabled: %d %s", rec.Code, rec.Body.String())
	}
}

func TestJobRoutes(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := do(t, router, http.MethodPost, "/jobs/aggregate", `{"sources":["steam","gog"],"chunk":50}`)
	if rec.Code != http.StatusAccepted {
		t.Fatalf("aggregate: %d %s", rec.Code, rec.Body.String())
	}
	var queued struct {
		Jobs []types.JobRun `json:"jobs"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &queued); err != nil {
		t.Fatalf("decode jobs: %v", err)
	}
	if len(queued.Jobs) != 2 || queued.Jobs[0].Status != "queued" {
		t.Fatalf("queued: %+v", queued.Jobs)
	}

	if rec := do(t, router, http.MethodGet, "/jobs/"+queued.Jobs[0].ID.String(), ""); rec.Code != http.StatusOK {
		t.Fatalf("get job: %d", rec.Code)
	}
	if rec := do(t, router, http.MethodGet, "/jobs/not-a-uuid", ""); rec.Code != http.StatusBadRequest {
		t.Fatalf("get bad id: %d", rec.Code)
	}
	if rec := do(t, router, http.MethodGet, "/jobs?type=aggregate_source&limit=5", ""); rec.Code != http.StatusOK || strings.Count(rec.Body.String(), `"job_type":"aggregate_source"`) != 2 {
		t.Fatalf("list jobs: %d %s", rec.Code, rec.Body.String())
	}

	if rec := do(t, router, http.MethodPost, "/jobs/reconcile", `{"operation":"dedupe-slugs"}`); rec.Code != http.StatusAccepted {
		t.Fatalf("reconcile: %d %s", rec.Code, rec.Body.String())
	}
	if rec := do(t, router, http.MethodPost, "/jobs/reconcile", `{"operation":"dedupe-slugs"}`); rec.Code != http.StatusConflict {
		t.Fatalf("reconcile twice: %d", rec.Code)
	}
	if rec := do(t, router, http.MethodPost, "/jobs/reconcile", `{"operation":"vacuum"}`); rec.Code != http.StatusBadRequest {
		t.Fatalf("reconcile unknown: %d", rec.Code)
	}
}
