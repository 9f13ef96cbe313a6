package cmd

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"time"

	internalApp "github.com/haierkeys/link-editor-service/internal/app"
	"github.com/haierkeys/link-editor-service/internal/dao"
	"github.com/haierkeys/link-editor-service/internal/linktype"
	"github.com/haierkeys/link-editor-service/internal/routers"
	"github.com/haierkeys/link-editor-service/internal/task"
	"github.com/haierkeys/link-editor-service/pkg/i18n"
	"github.com/haierkeys/link-editor-service/pkg/logger"
	"github.com/haierkeys/link-editor-service/pkg/safe_close"
	"github.com/haierkeys/link-editor-service/pkg/validator"

	"github.com/gin-gonic/gin"
	ut "github.com/go-playground/universal-translator"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Server is one generation of the running service. A config reload closes it and builds the next.
type Server struct {
	logger            *zap.Logger
	config            *internalApp.AppConfig
	db                *gorm.DB
	ut                *ut.UniversalTranslator
	httpServer        *http.Server
	privateHttpServer *http.Server
	sc                *safe_close.SafeClose
	app               *internalApp.App
}

const banner = `
    __    _       __      ______    ___ __
   / /   (_)___  / /__   / ____/___/ (_) /_____  _____
  / /   / / __ \/ //_/  / __/ / __  / / __/ __ \/ ___/
 / /___/ / / / / ,<    / /___/ /_/ / / /_/ /_/ / /
/_____/_/_/ /_/_/|_|  /_____/\__,_/_/\__/\____/_/       `

// NewServer loads the configuration, opens the database, builds the app container
// and starts the public and private listeners
func NewServer(runEnv *runFlags) (*Server, error) {
	appConfig, configRealpath, err := internalApp.LoadConfig(runEnv.config)
	if err != nil {
		return nil, errors.Wrap(err, "load config")
	}
	applyRunFlags(appConfig, runEnv)

	s := &Server{config: appConfig, sc: safe_close.NewSafeClose()}

	if s.logger, err = logger.NewLogger(logger.Config{
		Level:      appConfig.Log.Level,
		File:       appConfig.Log.File,
		Production: appConfig.Log.Production,
	}); err != nil {
		return nil, errors.Wrap(err, "init logger")
	}
	if err := initStorageWithConfig(appConfig); err != nil {
		return nil, err
	}
	if s.db, err = dao.NewDBEngine(appConfig.Database); err != nil {
		return nil, errors.Wrap(err, "init database")
	}
	if s.app, err = internalApp.NewApp(appConfig, s.logger, s.db); err != nil {
		return nil, errors.Wrap(err, "create app container")
	}
	if s.ut, err = initValidator(s.logger); err != nil {
		_ = s.app.Shutdown(context.Background())
		return nil, errors.Wrap(err, "init validator")
	}
	initScheduler(s)

	s.logger.Warn(banner + "\n\n" + internalApp.VersionString() + "\n")
	s.logger.Warn("config loaded", zap.String("path", configRealpath))

	if addr := appConfig.Server.HttpPort; addr != "" {
		s.httpServer = s.newHTTPServer(addr, routers.NewRouter(s.app, s.ut))
		s.attachHTTPServer("api service", s.httpServer)
	}
	if addr := appConfig.Server.PrivateHttpListen; addr != "" {
		s.privateHttpServer = s.newHTTPServer(addr, routers.NewPrivateRouterWithLogger(appConfig.Server.RunMode, s.logger))
		s.attachHTTPServer("private api service", s.privateHttpServer)
	}

	// the app container closes after the listeners have stopped accepting requests
	s.sc.Attach(func(done func(), closeSignal <-chan struct{}) {
		defer done()
		<-closeSignal
		ctx, cancel := context.WithTimeout(context.Background(), internalApp.DefaultShutdownTimeout)
		defer cancel()
		if err := s.app.Shutdown(ctx); err != nil {
			s.logger.Error("failed to shutdown app container", zap.Error(err))
			return
		}
		s.logger.Info("app container shutdown gracefully")
	})

	return s, nil
}

// applyRunFlags lets the command line override the mode and port of the file
func applyRunFlags(cfg *internalApp.AppConfig, runEnv *runFlags) {
	if runEnv.runMode != "" {
		cfg.Server.RunMode = runEnv.runMode
		cfg.Database.RunMode = runEnv.runMode
	}
	if runEnv.port != "" {
		cfg.Server.HttpPort = runEnv.port
	}
	if cfg.Server.RunMode == "" {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(cfg.Server.RunMode)
	}
}

func (s *Server) newHTTPServer(addr string, handler http.Handler) *http.Server {
	s.logger.Info("listen", zap.String("addr", addr))
	return &http.Server{
		Addr:           addr,
		Handler:        handler,
		ReadTimeout:    time.Duration(s.config.Server.ReadTimeout) * time.Second,
		WriteTimeout:   time.Duration(s.config.Server.WriteTimeout) * time.Second,
		MaxHeaderBytes: 1 << 20,
	}
}

// attachHTTPServer serves srv until the close signal, then shuts it down
func (s *Server) attachHTTPServer(name string, srv *http.Server) {
	s.sc.Attach(func(done func(), closeSignal <-chan struct{}) {
		defer done()
		errChan := make(chan error, 1)
		go func() {
			errChan <- srv.ListenAndServe()
		}()
		select {
		case err := <-errChan:
			s.logger.Error(name+" stopped", zap.Error(err))
			s.sc.SendCloseSignal(err)
		case <-closeSignal:
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := srv.Shutdown(ctx); err != nil {
				s.logger.Error(name+" shutdown error", zap.Error(err))
			}
		}
	})
}

// initScheduler starts the editor session maintenance tasks. Failures are logged and the service keeps running.
func initScheduler(s *Server) {
	manager := task.NewManager(s.logger, s.sc, s.app)
	if err := manager.RegisterTasks(); err != nil {
		s.logger.Error("failed to register tasks", zap.Error(err))
		return
	}

	if err := manager.Start(); err != nil {
		s.logger.Error("failed to start tasks", zap.Error(err))
	}
}

// initValidator builds the translator holding the link type catalogs and installs the
// gin validator whose messages are registered into the same translator
// initValidator 初始化翻译器与参数验证器，返回 UniversalTranslator
func initValidator(lg *zap.Logger) (*ut.UniversalTranslator, error) {
	uni, err := i18n.NewUniversalTranslator(linktype.Catalogs()...)
	if err != nil {
		return nil, err
	}
	if _, err := validator.Init(uni); err != nil {
		return nil, err
	}
	lg.Debug("validator initialized", zap.Int("catalogs", len(linktype.Catalogs())))
	return uni, nil
}

// initStorageWithConfig creates the directories of the log file and the sqlite database
func initStorageWithConfig(cfg *internalApp.AppConfig) error {
	dirs := []string{
		filepath.Dir(cfg.Log.File),
	}
	if cfg.Database.Type == "" || cfg.Database.Type == "sqlite" {
		dirs = append(dirs, filepath.Dir(cfg.Database.Path))
	}

	for _, dir := range dirs {
		if dir == "" || dir == "." {
			continue
		}
		if err := os.MkdirAll(dir, 0754); err != nil {
			return errors.Wrapf(err, "create directory %s", dir)
		}
	}
	return nil
}
