package deps

import (
	"context"
	"log"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jonboulle/clockwork"
	"github.com/phytoscan/phytoscan-api/config"
	"github.com/phytoscan/phytoscan-api/internal/db"
	"github.com/phytoscan/phytoscan-api/internal/http/gemini"
	"github.com/phytoscan/phytoscan-api/internal/observability"
	"github.com/phytoscan/phytoscan-api/internal/stream"
	"github.com/phytoscan/phytoscan-api/util/storage"
	"github.com/phytoscan/phytoscan-api/util/websockets"
)

type Dependencies struct {
	DB         *db.DB
	Cloudinary *storage.Cloudinary
	WebSocket  *websockets.WebSocketManager
	Gemini     *gemini.Client
	Publisher  *stream.Publisher
	Metrics    *observability.Metrics
	URLCache   *storage.SignedURLCache
}

func New(cfg *config.Config) *Dependencies {
	database, err := db.New(cfg.Dsn)
	if err != nil {
		log.Panicln("failed to connect to database", "error", err)
	}

	cloudinary := storage.NewCloudinary(cfg)
	websocket := websockets.NewWebSocketManager()
	metrics := observability.NewMetrics()

	// The AI client is optional; without a key the service still serves
	// maps and offline diagnosis.
	var geminiClient *gemini.Client
	if cfg.GeminiAPIKey != "" {
		geminiClient, err = gemini.NewClient(context.Background(), cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			log.Println("failed to initialize gemini client", err)
		}
	} else {
		log.Println("GEMINI_API_KEY not set, AI features disabled")
	}

	urlCache := storage.NewSignedURLCache(
		cloudinary,
		time.Duration(cfg.SignedURLTTLSeconds)*time.Second,
		clockwork.NewRealClock(),
		metrics,
	)

	deps := Dependencies{
		DB:         database,
		Cloudinary: cloudinary,
		WebSocket:  websocket,
		Gemini:     geminiClient,
		Publisher:  stream.NewPublisher(cfg.KafkaBrokers, cfg.KafkaTopic),
		Metrics:    metrics,
		URLCache:   urlCache,
	}
	return &deps
}

func (d *Dependencies) Pool() *pgxpool.Pool {
	return d.DB.Pool()
}
