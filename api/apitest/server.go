/*
Package apitest 组装一个基于内存存储的完整 API，供 handler 与 SDK 测试使用。
*/
package apitest

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"expoadmin/api"
	"expoadmin/api/auth"
	"expoadmin/api/calendar"
	"expoadmin/api/health"
	apimedia "expoadmin/api/media"
	"expoadmin/api/submission"
	appcontent "expoadmin/application/content"
	"expoadmin/application/media"
	"expoadmin/application/outbox"
	"expoadmin/config"
	"expoadmin/infrastructure/persistence/memory"
	"expoadmin/infrastructure/revalidate"
	"expoadmin/infrastructure/storage"
	"expoadmin/pkg/richtext"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

const (
	AdminUsername = "admin"
	AdminPassword = "s3cret"
	MediaBaseURL  = "https://cdn.example.com"
)

var errNotifyDown = errors.New("revalidation endpoint unreachable")

type Server struct {
	Engine  *gin.Engine
	Config  *config.Config
	Store   *storage.MemoryStore
	Outbox  *memory.Outbox
	Catalog *appcontent.Catalog
	Tokens  *auth.TokenService

	mu          sync.Mutex
	failNotify  bool
	revalidated [][]string
}

func New(t testing.TB) *Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	hash, err := bcrypt.GenerateFromPassword([]byte(AdminPassword), bcrypt.MinCost)
	if err != nil {
		t.Fatal(err)
	}
	cfg := &config.Config{
		App: config.AppConfig{Name: "expoadmin", Version: "test", Env: "test"},
		Auth: config.AuthConfig{
			JWTSecret:         "test-secret",
			TokenTTL:          time.Hour,
			AdminUsername:     AdminUsername,
			AdminPasswordHash: string(hash),
		},
		Storage: config.StorageConfig{Driver: "memory", MaxUploadBytes: 1 << 20, DefaultFolder: "images"},
		CORS:    config.CORSConfig{AllowOrigins: []string{"*"}},
	}

	s := &Server{Config: cfg, Store: storage.NewMemoryStore(MediaBaseURL), Outbox: memory.NewOutbox()}
	notifier := revalidate.NotifierFunc(func(_ context.Context, paths []string) error {
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.failNotify {
			return errNotifyDown
		}
		s.revalidated = append(s.revalidated, paths)
		return nil
	})

	worker, err := outbox.NewWorker(s.Outbox, outbox.NewDefaultDispatcher(notifier, s.Store), 10, 3)
	if err != nil {
		t.Fatal(err)
	}
	mediaService := media.NewApplicationService(s.Store, cfg.Storage)
	s.Catalog = appcontent.NewCatalog(memory.NewRepositories(), appcontent.Dependencies{
		UoW:       memory.NewUnitOfWork(s.Outbox),
		Outbox:    s.Outbox,
		Deliverer: worker,
		Sanitize:  richtext.NewSanitizer().Sanitize,
	}, mediaService)

	s.Tokens, err = auth.NewTokenService(cfg.Auth)
	if err != nil {
		t.Fatal(err)
	}
	routes := api.Routes{
		Open: []api.Registrar{
			health.NewController(cfg, map[string]health.Checker{"database": func(context.Context) error { return nil }}),
			auth.NewController(cfg.Auth, s.Tokens),
		},
		Public: []api.Registrar{submission.NewController(s.Catalog.Submissions)},
		Admin: append(api.ContentControllers(s.Catalog),
			apimedia.NewController(mediaService),
			calendar.NewController(),
		),
	}
	router := api.NewRouter(cfg, routes, s.Tokens)
	router.SetupRoutes()
	s.Engine = router.GetEngine()
	return s
}

// Token 签发一个管理员 token
func (s *Server) Token(t testing.TB) string {
	t.Helper()
	token, _, err := s.Tokens.Issue(AdminUsername)
	if err != nil {
		t.Fatal(err)
	}
	return token
}

// FailRevalidation 控制通知是否失败
func (s *Server) FailRevalidation(fail bool) {
	s.mu.Lock()
	s.failNotify = fail
	s.mu.Unlock()
}

// Revalidated 成功通知过的路径批次
func (s *Server) Revalidated() [][]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([][]string(nil), s.revalidated...)
}
