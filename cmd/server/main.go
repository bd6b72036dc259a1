package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/emberdate/ember/internal/config"
	"github.com/emberdate/ember/internal/crypto"
	"github.com/emberdate/ember/internal/database"
	postgresrepo "github.com/emberdate/ember/internal/repository/postgres"
	"github.com/emberdate/ember/internal/service"
	"github.com/emberdate/ember/internal/solana"
	"github.com/emberdate/ember/internal/transport/http/handlers"
	"github.com/emberdate/ember/internal/transport/http/middleware"
	"github.com/emberdate/ember/internal/transport/ws"
)

func main() {
	cfg := config.Load()

	// Database
	pool, err := database.Connect(cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer pool.Close()
	log.Println("Connected to database")

	// Message codec
	codec, err := crypto.NewCodec(cfg.EncryptionKey)
	if err != nil {
		log.Fatal(err)
	}

	// Repositories
	userRepo := postgresrepo.NewUserRepo(pool)
	likeRepo := postgresrepo.NewLikeRepo(pool)
	matchRepo := postgresrepo.NewMatchRepo(pool)
	messageRepo := postgresrepo.NewMessageRepo(pool)
	paymentRepo := postgresrepo.NewPaymentRepo(pool)

	// Services
	authService := service.NewAuthService(userRepo, solana.AcceptAllVerifier{}, cfg.JWTSecret)
	matchService := service.NewMatchService(likeRepo, matchRepo, userRepo, codec)
	chatService := service.NewChatService(messageRepo, matchRepo, matchService, codec)
	paymentService := service.NewPaymentService(paymentRepo, userRepo, solana.NewRPCVerifier(cfg.SolanaRPCURL))

	// WebSocket hub
	hub := ws.NewHub()
	go hub.Run()
	chatService.SetNotifier(ws.NewHubNotifier(hub))

	// Handlers
	authHandler := handlers.NewAuthHandler(authService)
	matchHandler := handlers.NewMatchHandler(matchService)
	chatHandler := handlers.NewChatHandler(chatService, matchService)
	paymentHandler := handlers.NewPaymentHandler(paymentService)

	// Auth middleware with premium reconcile on every authenticated request
	auth := middleware.Auth(cfg.JWTSecret, paymentService)

	// Routes
	mux := http.NewServeMux()

	// Public
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status": "ok"}`))
	})
	mux.HandleFunc("POST /api/v1/auth/register", authHandler.Register)
	mux.HandleFunc("POST /api/v1/auth/login", authHandler.Login)
	mux.HandleFunc("GET /api/v1/payment/pricing", paymentHandler.Pricing)

	// Protected - Matching
	mux.Handle("POST /api/v1/match/like", auth(http.HandlerFunc(matchHandler.Like)))
	mux.Handle("GET /api/v1/match/matches", auth(http.HandlerFunc(matchHandler.ListMatches)))
	mux.Handle("GET /api/v1/match/likes-received", auth(http.HandlerFunc(matchHandler.LikesReceived)))
	mux.Handle("GET /api/v1/match/likes-sent", auth(http.HandlerFunc(matchHandler.LikesSent)))
	mux.Handle("DELETE /api/v1/match/matches/{id}", auth(http.HandlerFunc(matchHandler.Unmatch)))

	// Protected - Chat
	mux.Handle("GET /api/v1/chat/messages/{matchId}", auth(http.HandlerFunc(chatHandler.Messages)))
	mux.Handle("POST /api/v1/chat/messages/{matchId}/read", auth(http.HandlerFunc(chatHandler.MarkRead)))
	mux.Handle("GET /api/v1/chat/stats", auth(http.HandlerFunc(chatHandler.Stats)))

	// Protected - Payments
	mux.Handle("POST /api/v1/payment/process", auth(http.HandlerFunc(paymentHandler.Process)))
	mux.Handle("GET /api/v1/payment/history", auth(http.HandlerFunc(paymentHandler.History)))
	mux.Handle("GET /api/v1/payment/subscription-status", auth(http.HandlerFunc(paymentHandler.SubscriptionStatus)))

	// Realtime
	mux.HandleFunc("GET /ws", ws.ServeWS(hub, cfg.JWTSecret, matchService, chatService))

	// Start server with CORS
	addr := fmt.Sprintf(":%s", cfg.ServerPort)
	log.Printf("Starting server on %s", addr)
	log.Fatal(http.ListenAndServe(addr, middleware.CORS(mux)))
}
