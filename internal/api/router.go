package api

import (
	"net/http"
	"time"

	"medicalink-backend/internal/config"
	"medicalink-backend/internal/handlers"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

// requestTimeoutSlack is added to the completion timeout to bound a whole request.
const requestTimeoutSlack = 15 * time.Second

// RouterDependencies holds all the dependencies required by the router setup,
// primarily handlers and configuration.
type RouterDependencies struct {
	ConversationHandler *handlers.ConversationHandlers
	FeedbackHandler     *handlers.FeedbackHandlers
	AdviceHandler       *handlers.AdviceHandlers
	HealthHandler       *handlers.HealthHandler
	Config              *config.Config
	Logger              *zap.Logger
}

// RequestTimeout is the per-request deadline for a given completion timeout.
// The HTTP server's write timeout must exceed it.
func RequestTimeout(llmTimeout time.Duration) time.Duration {
	return llmTimeout + requestTimeoutSlack
}

// NewRouter creates and configures the main Chi router for the application.
func NewRouter(deps RouterDependencies) *chi.Mux {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	r := chi.NewRouter()

	// --- Base Middleware Stack ---
	r.Use(EnsureRequestID)
	r.Use(middleware.RequestID) // Inject request ID into context
	r.Use(middleware.RealIP)    // Use X-Forwarded-For or X-Real-IP
	r.Use(RequestLogger(logger.Named("http")))
	r.Use(middleware.Recoverer) // Recover from panics, return 500
	r.Use(middleware.Timeout(RequestTimeout(deps.Config.LLMTimeout)))
	r.Use(MaxBodyBytes(deps.Config.MaxRequestBody))

	// --- CORS Configuration ---
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   deps.Config.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Requested-With", RequestIDHeader},
		ExposedHeaders:   []string{RequestIDHeader},
		AllowCredentials: false,
		MaxAge:           300, // Maximum value not ignored by any of major browsers
	}))

	if deps.HealthHandler != nil {
		r.Get("/health", deps.HealthHandler.HandleHealth)
	} else {
		logger.Warn("HealthHandler dependency is nil, skipping /health route")
	}

	// --- Conversation Routes ---
	if deps.ConversationHandler == nil {
		panic("ConversationHandler dependency is nil in router setup")
	}
	r.Post("/ask", deps.ConversationHandler.HandleAsk)
	r.Get("/history/{sessionID}", deps.ConversationHandler.HandleGetHistory)
	r.Route("/sessions", func(r chi.Router) {
		r.Get("/", deps.ConversationHandler.HandleListSessions)
		r.Delete("/{sessionID}", deps.ConversationHandler.HandleDeleteSession)
	})
	r.Get("/export/{sessionID}", deps.ConversationHandler.HandleExportSession)

	// --- Feedback Routes ---
	if deps.FeedbackHandler != nil {
		r.Route("/feedback", func(r chi.Router) {
			r.Post("/", deps.FeedbackHandler.HandleSubmitFeedback)
			r.Get("/{messageID}", deps.FeedbackHandler.HandleListFeedback)
		})
	} else {
		logger.Warn("FeedbackHandler dependency is nil, skipping /feedback routes")
	}

	// --- Advice Routes ---
	if deps.AdviceHandler != nil {
		r.Get("/tips", deps.AdviceHandler.HandleHealthTips)
		r.Post("/symptoms", deps.AdviceHandler.HandleSymptomAnalysis)
	} else {
		logger.Warn("AdviceHandler dependency is nil, skipping /tips and /symptoms routes")
	}

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		handlers.RespondWithError(w, http.StatusNotFound, "Not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		handlers.RespondWithError(w, http.StatusMethodNotAllowed, "Method not allowed")
	})

	return r
}
