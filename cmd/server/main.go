package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/app/middlewares/server/recovery"
	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
	"github.com/sirupsen/logrus"

	aggdb "clipstream.com/cmd/aggregator/dal/db"
	aggservice "clipstream.com/cmd/aggregator/service"
	feedhandlers "clipstream.com/cmd/api/handlers/feed"
	interactionhandlers "clipstream.com/cmd/api/handlers/interaction"
	notificationhandlers "clipstream.com/cmd/api/handlers/notification"
	relationhandlers "clipstream.com/cmd/api/handlers/relation"
	searchhandlers "clipstream.com/cmd/api/handlers/search"
	userhandlers "clipstream.com/cmd/api/handlers/user"
	"clipstream.com/cmd/api/router"
	feeddb "clipstream.com/cmd/feed/dal/db"
	feedservice "clipstream.com/cmd/feed/service"
	interactiondb "clipstream.com/cmd/interaction/dal/db"
	infraredis "clipstream.com/cmd/interaction/infras/redis"
	interactionservice "clipstream.com/cmd/interaction/service"
	notificationdb "clipstream.com/cmd/notification/dal/db"
	"clipstream.com/cmd/notification/gateway"
	notificationservice "clipstream.com/cmd/notification/service"
	relationdb "clipstream.com/cmd/relation/dal/db"
	relationservice "clipstream.com/cmd/relation/service"
	searchservice "clipstream.com/cmd/search/service"
	userdb "clipstream.com/cmd/user/dal/db"
	userservice "clipstream.com/cmd/user/service"
	"clipstream.com/config"
	"clipstream.com/pkg/cache"
	"clipstream.com/pkg/database"
	"clipstream.com/pkg/errno"
	"clipstream.com/pkg/jwt"
	"clipstream.com/pkg/logger"
	"clipstream.com/pkg/mq"
	"clipstream.com/pkg/utils"
)

func main() {
	config.Init()
	logger.Init()
	database.Init()

	relationdb.Init()
	interactiondb.Init()
	aggdb.Init()
	feeddb.Init()
	notificationdb.Init()
	userdb.Init()

	if err := cache.Init(); err != nil {
		logrus.Fatalf("redis init failed: %v", err)
	}

	producer, err := mq.NewProducer(utils.GetRabbitMqURL())
	if err != nil {
		logrus.Fatalf("rabbitmq producer init failed: %v", err)
	}
	defer producer.Close()

	if err := jwt.Init(userhandlers.Authenticate); err != nil {
		logrus.Fatalf("jwt init failed: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	hub := gateway.NewHub()
	searchhandlers.Init(nil)
	startConsumers(ctx, hub)
	startBackgroundJobs(ctx)

	relationhandlers.Init(relationservice.NewDBStore(), producer)
	interactionhandlers.Init(interactionservice.NewDBStore(), infraredis.NewLikeCacheManager(), producer)
	feedhandlers.Init(feedservice.NewDBStore())
	notificationhandlers.Init(notificationservice.NewDBStore(), hub)
	userhandlers.Init(userservice.NewDBStore(), producer)

	h := server.New(
		server.WithHostPorts(config.ConfigInfo.Server.Addr),
		server.WithHandleMethodNotAllowed(true),
	)
	h.NoHijackConnPool = true
	h.Use(recovery.Recovery(recovery.WithRecoveryHandler(
		func(ctx context.Context, c *app.RequestContext, err interface{}, stack []byte) {
			logrus.Errorf("panic recovered: %v\n%s", err, stack)
			c.JSON(consts.StatusInternalServerError, map[string]interface{}{
				"code":    errno.ServiceErrCode,
				"message": fmt.Sprint(err),
			})
		})))
	router.Register(h)

	go func() {
		<-ctx.Done()
		logrus.Info("shutting down")
		h.Shutdown(context.Background())
	}()
	h.Spin()
}

// startConsumers attaches one consumer per derived view to the engagement
// stream: counters, notifications and the search index each read their own
// queue, so a slow view never stalls the others.
func startConsumers(ctx context.Context, hub *gateway.Hub) {
	counterSvc := aggservice.NewCounterService(
		aggservice.NewDBCounterStore(),
		aggservice.NewRedisEventMarker(),
	)
	runConsumer(ctx, mq.CounterQueue, counterSvc.Handle)

	notifSvc := notificationservice.NewNotificationService(
		ctx, notificationservice.NewDBStore(), hub)
	runConsumer(ctx, mq.NotificationQueue, notifSvc.Handle)

	if config.ConfigInfo.Elastic.Enabled {
		indexer, err := searchservice.NewIndexer()
		if err != nil {
			logrus.Errorf("search indexer init failed, continuing without: %v", err)
			return
		}
		searchhandlers.Init(searchservice.NewSearchService(indexer.Client()))
		runConsumer(ctx, mq.SearchIndexQueue, indexer.Handle)
	}
}

func runConsumer(ctx context.Context, queue string, handler mq.EventHandler) {
	consumer, err := mq.NewConsumer(utils.GetRabbitMqURL())
	if err != nil {
		logrus.Fatalf("rabbitmq consumer init failed for %s: %v", queue, err)
	}
	go func() {
		defer consumer.Close()
		if err := consumer.Consume(ctx, queue, handler); err != nil && ctx.Err() == nil {
			logrus.Errorf("consumer for %s exited: %v", queue, err)
		}
	}()
}

func startBackgroundJobs(ctx context.Context) {
	reconciler := aggservice.NewReconciler(config.ConfigInfo.Aggregator.ReconcileInterval)
	go reconciler.Run(ctx)

	trending := feedservice.NewTrendingJob()
	go trending.Run(ctx)
}
