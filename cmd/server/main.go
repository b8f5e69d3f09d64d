// cmd/server/main.go
package main

import (
	"log"
	"net/http"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/sirupsen/logrus"

	"github.com/opencircle/socialgraph/internal/auth"
	"github.com/opencircle/socialgraph/internal/cache"
	"github.com/opencircle/socialgraph/internal/database"
	"github.com/opencircle/socialgraph/internal/friends"
	"github.com/opencircle/socialgraph/internal/handlers"
	"github.com/opencircle/socialgraph/internal/identity"
	"github.com/opencircle/socialgraph/internal/middleware"
	"github.com/opencircle/socialgraph/internal/store"
)

func main() {
	auth.Init()
	database.ConnectDB()

	logger := logrus.New()
	logger.SetLevel(logrus.InfoLevel)

	users := database.NewUserStore(database.DB)
	requests := database.NewFriendRequestStore(database.DB)
	friendships := database.NewFriendshipStore(database.DB)
	limits := database.NewRequestLimitStore(database.DB)

	var events friends.EventPublisher
	if err := cache.ConnectRedis(); err != nil {
		logger.WithError(err).Warn("redis unavailable, friend event feed disabled")
	} else {
		events = cache.NewQueuePublisher()
	}

	clock := store.SystemClock{}
	limiter := friends.NewLimiter(limits, clock)
	friendSvc := friends.NewService(users, requests, friendships, limiter, clock, logger, events)
	identitySvc := identity.NewService(users)

	mux := http.NewServeMux()
	logged := middleware.LogMiddleware(logger)

	// user endpoints
	mux.Handle("/user/create", logged(handlers.RegisterHandler(identitySvc)))
	mux.Handle("/user/login", logged(handlers.LoginHandler(identitySvc)))

	// friend endpoints
	mux.Handle("/friends/send", logged(handlers.SendFriendRequestHandler(friendSvc)))
	mux.Handle("/friends/pending", logged(handlers.ListPendingHandler(friendSvc)))
	mux.Handle("/friends/manage", logged(handlers.ManageFriendRequestHandler(friendSvc)))
	mux.Handle("/friends/list", logged(handlers.ListFriendsHandler(friendSvc)))

	// search
	mux.Handle("/users/search", logged(handlers.SearchUsersHandler(friendSvc)))

	addr := ":8080"
	if port := os.Getenv("PORT"); port != "" {
		addr = ":" + port
	}
	logger.Infof("Running on %s", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Fatalf("server exited: %v", err)
	}
}
