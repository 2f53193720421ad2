package rest

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/phytoscan/phytoscan-api/config"
	deps "github.com/phytoscan/phytoscan-api/internal/debs"
	"github.com/phytoscan/phytoscan-api/internal/reportmap"
	smtp "github.com/phytoscan/phytoscan-api/util/email"
	"github.com/phytoscan/phytoscan-api/util/values"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	defaultIdleTimeout    = time.Minute
	defaultReadTimeout    = 5 * time.Second
	defaultWriteTimeout   = 10 * time.Second
	defaultShutdownPeriod = 30 * time.Second
)

type Handler func(w http.ResponseWriter, r *http.Request) *ServerResponse

func (h Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	resp := h(w, r)
	if resp == nil {
		// Handler wrote its own response (file download, websocket).
		return
	}
	respByte, err := json.Marshal(resp)
	if err != nil {
		writeErrorResponse(w, err, values.Error, "unable to marshal server response")
		return
	}
	writeJSONResponse(w, respByte, resp.StatusCode)
}

type API struct {
	Server *http.Server
	Config *config.Config
	Deps   *deps.Dependencies
	Mailer *smtp.Mailer
	DB     *pgxpool.Pool

	ReportView *reportmap.View
}

// Init builds the derived pieces that need the raw dependencies wired
// together: the report fallback chain and the assistant hook on the
// websocket hub.
func (api *API) Init() {
	resolver := reportmap.NewResolver(api.Deps.Metrics,
		&reportmap.DetectionsSource{DB: api.DB},
		&reportmap.LegacyViewSource{DB: api.DB},
		&reportmap.FlatTableSource{DB: api.DB},
		&reportmap.OfflineSource{Path: api.Config.OfflineDataPath, ISO3: "NIC"},
	)
	api.ReportView = reportmap.NewView(resolver)

	api.Deps.WebSocket.Answer = func(userID, content string) (string, error) {
		reply, err := api.AnswerChatMessage(context.Background(), content)
		if err != nil {
			return "", err
		}
		return reply, nil
	}
}

func (api *API) Serve() error {
	api.Server = &http.Server{
		Addr:         fmt.Sprintf(":%d", api.Config.Port),
		IdleTimeout:  defaultIdleTimeout,
		ReadTimeout:  defaultReadTimeout,
		WriteTimeout: defaultWriteTimeout,
		Handler:      api.setUpServerHandler(),
	}
	return api.Server.ListenAndServe()
}

func (api *API) setUpServerHandler() http.Handler {
	mux := chi.NewRouter()
	mux.Use(RequestTracing)

	mux.Get("/",
		func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("PhytoScan IA API"))
		},
	)

	mux.Mount("/auth", api.AuthRoutes())
	mux.Mount("/users", api.UserRoutes())
	mux.Mount("/detections", api.DetectionRoutes())
	mux.Mount("/map", api.MapRoutes())
	mux.Mount("/reports", api.ReportListRoutes())
	mux.Mount("/catalog", api.CatalogRoutes())
	mux.Mount("/diagnose", api.DiagnoseRoutes())
	mux.Mount("/chat", api.ChatRoutes())
	mux.Mount("/stats", api.StatsRoutes())

	mux.Handle("/metrics", promhttp.Handler())

	return mux
}

func (a *API) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), defaultShutdownPeriod)
	defer cancel()

	if err := a.Deps.Publisher.Close(); err != nil {
		return err
	}
	return a.Server.Shutdown(ctx)
}
