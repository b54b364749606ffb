package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Ksaikiran28/NexChat/data/mongoutil"
	"github.com/Ksaikiran28/NexChat/global"
	"github.com/Ksaikiran28/NexChat/logger"
	midsec "github.com/Ksaikiran28/NexChat/middleware/security"
	"github.com/Ksaikiran28/NexChat/module/media"
	msg "github.com/Ksaikiran28/NexChat/module/message"
	"github.com/Ksaikiran28/NexChat/module/user"
	"github.com/Ksaikiran28/NexChat/service/chat"
	storage "github.com/Ksaikiran28/NexChat/service/storage"

	"github.com/gin-gonic/gin"
)

func main() {
	conf := global.Load()
	global.ConfigIds()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	mongoCli, err := mongoutil.NewMongoDB(ctx, &mongoutil.Config{
		Uri:      conf.MongoURI,
		Database: conf.MongoDatabase,
	})
	if err != nil {
		logger.Errorf("mongo connect: %v", err)
		os.Exit(1)
	}
	db := mongoCli.GetDB()

	mirror := false
	if err := storage.InitRedis(storage.Config{
		Addr:     conf.RedisAddr,
		Password: conf.RedisPassword,
		DB:       conf.RedisDB,
	}); err != nil {
		// the in-memory registry is the delivery truth; redis only mirrors it
		logger.Warnf("redis unavailable, presence mirror disabled: %v", err)
	} else {
		mirror = true
	}

	msgStore := msg.NewMongoStore(db)
	userStore := user.NewMongoStore(db)
	if err := msgStore.EnsureIndexes(ctx); err != nil {
		logger.Warnf("message indexes: %v", err)
	}
	if err := userStore.EnsureIndexes(ctx); err != nil {
		logger.Warnf("user indexes: %v", err)
	}

	chatSrv := chat.NewServer(chat.ServerConf{MirrorPresence: mirror})
	defer chatSrv.Close()

	var cleaner media.Cleaner = media.Noop{}
	if conf.MediaEndpoint != "" {
		cleaner = media.NewHTTPCleaner(conf.MediaEndpoint)
	}

	jwtOpts := conf.JWTOptions()
	userSvc := user.NewService(userStore, jwtOpts)
	msgSvc := msg.NewService(msgStore, user.NewPeerAdapter(userStore), chatSrv, cleaner)

	r := setupRouter(routerDeps{
		auth:    midsec.DefaultOptions(jwtOpts),
		users:   user.NewHandler(userSvc),
		msgs:    msg.NewHandler(msgSvc),
		chatSrv: chatSrv,
	})

	srv := &http.Server{Addr: conf.HTTPAddr, Handler: r}
	go func() {
		logger.Infof("listening on %s", conf.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Errorf("http server: %v", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down")

	// drain in-flight requests before the stores go away
	shutdownCtx, stop := context.WithTimeout(context.Background(), 5*time.Second)
	defer stop()
	_ = srv.Shutdown(shutdownCtx)
	_ = mongoCli.Close(shutdownCtx)
	_ = storage.CloseRedis()
}

type routerDeps struct {
	auth    *midsec.Options
	users   *user.Handler
	msgs    *msg.Handler
	chatSrv *chat.Server
}

func setupRouter(d routerDeps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/api/status", func(c *gin.Context) {
		c.String(200, "Server is live")
	})

	authGroup := r.Group("/api/auth")
	authed := r.Group("/api/auth", midsec.Middleware(d.auth))
	d.users.RegisterRoutes(authGroup, authed)

	msgGroup := r.Group("/api/messages", midsec.Middleware(d.auth))
	d.msgs.RegisterRoutes(msgGroup)

	r.GET("/ws", d.chatSrv.HandleWS(d.auth.JWT))

	return r
}
