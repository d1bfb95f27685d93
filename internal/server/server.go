package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"time"

	"github.com/emrgen/storefront/internal/cache"
	"github.com/emrgen/storefront/internal/config"
	"github.com/emrgen/storefront/internal/job"
	"github.com/emrgen/storefront/internal/jobs"
	"github.com/emrgen/storefront/internal/live"
	"github.com/emrgen/storefront/internal/queue"
	"github.com/emrgen/storefront/internal/render"
	"github.com/emrgen/storefront/internal/service"
	"github.com/emrgen/storefront/internal/store"
	_ "github.com/joho/godotenv/autoload"
	"github.com/rs/cors"
	"github.com/sirupsen/logrus"
	"golang.org/x/sys/unix"
)

// Server represents the server
type Server struct {
	httpPort string
}

// NewServer creates a new server
func NewServer(httpPort string) *Server {
	return &Server{
		httpPort: httpPort,
	}
}

// Start starts the server
func (s *Server) Start() {
	if err := Start(s.httpPort); err != nil {
		logrus.Fatalf("error starting server: %v", err)
	}
}

// Start starts the http server
func Start(httpPort string) error {
	httpPort = ":" + httpPort

	cnf := config.LoadConfig()
	rdb := config.GetDB(cnf)

	rl, err := net.Listen("tcp", httpPort)
	if err != nil {
		return err
	}

	redis, err := cache.NewRedis(cnf.RedisAddr)
	if err != nil {
		return err
	}

	pageStore := store.NewGormStore(rdb)
	if err := pageStore.Migrate(); err != nil {
		return err
	}

	events, err := newPublishEventQueue(cnf, redis)
	if err != nil {
		return err
	}

	pageCache := cache.NewRedisPageCache(redis)
	pages := service.NewPageService(cnf.Compression, pageStore, pageCache, events)
	published := service.NewPublishedPageService(pageStore, pageCache)

	hub := live.NewHub()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := hub.Forward(ctx, events); err != nil {
		return err
	}

	runner := jobs.NewTaskExecutor([]jobs.Job{job.NewBackupPruner(pageStore)})
	runner.Start()

	mux := http.NewServeMux()
	rest := NewRest(pages, published, render.DefaultRegistry(), nil, hub)
	rest.Register(mux)

	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"}, // All origins are allowed
		AllowedMethods:   []string{"GET", "POST", "DELETE", "PUT"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	})

	restServer := &http.Server{
		Addr:    httpPort,
		Handler: c.Handler(requestTimeMiddleware(mux)),
	}

	// make sure to wait for the server to stop before exiting
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		logrus.Info("starting rest server on: ", httpPort)
		if err := restServer.Serve(rl); err != nil {
			if !errors.Is(err, http.ErrServerClosed) {
				logrus.Errorf("error starting rest server: %v", err)
			}
		}
		logrus.Infof("rest server stopped")
	}()

	time.Sleep(1 * time.Second)
	logrus.Infof("Press Ctrl+C to stop the server")

	// listen for interrupt signal to gracefully shut down the server
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, unix.SIGTERM, unix.SIGINT, unix.SIGTSTP)
	<-sigs
	// clean Ctrl+C output
	fmt.Println()

	runner.Stop()
	cancel()
	if err := restServer.Shutdown(context.Background()); err != nil {
		logrus.Errorf("error stopping rest server: %v", err)
	}

	wg.Wait()

	return nil
}

func newPublishEventQueue(cnf *config.Config, redis *cache.Redis) (queue.PublishEventQueue, error) {
	switch cnf.QueueBackend {
	case "kafka":
		return queue.NewKafkaQueue(cnf.KafkaBrokers, "storefront-server")
	default:
		return queue.NewRedisQueue(redis), nil
	}
}
