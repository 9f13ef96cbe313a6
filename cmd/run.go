package cmd

import (
	"context"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/haierkeys/link-editor-service/pkg/fileurl"

	"github.com/pkg/errors"
	"github.com/radovskyb/watcher"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type runFlags struct {
	dir     string // Working directory // 工作目录
	port    string // Overrides server.http-port // 覆盖监听端口
	runMode string // Overrides server.run-mode // 覆盖运行模式
	config  string // Configuration file // 配置文件
}

// configCandidates are tried in order when --config is not given
var configCandidates = []string{"config/config-dev.yaml", "config.yaml", "config/config.yaml"}

// configWatchPoll is how often the config watcher polls the file
const configWatchPoll = 5 * time.Second

func init() {
	runEnv := new(runFlags)

	runCommand := &cobra.Command{
		Use:          "run [-c config_file] [-d working_dir] [-p port]",
		Short:        "Run the HTTP and websocket service",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if runEnv.dir != "" {
				if err := os.Chdir(runEnv.dir); err != nil {
					return errors.Wrap(err, "change working directory")
				}
				bootstrapLogger.Info("working directory changed", zap.String("dir", runEnv.dir))
			}
			if runEnv.config == "" {
				path, err := findOrCreateConfig()
				if err != nil {
					return err
				}
				runEnv.config = path
			}

			first, err := NewServer(runEnv)
			if err != nil {
				return errors.Wrap(err, "start service")
			}
			var current atomic.Pointer[Server]
			current.Store(first)

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			go watchConfig(ctx, runEnv.config, &current, func() (*Server, error) {
				return NewServer(runEnv)
			})

			<-ctx.Done()
			s := current.Load()
			s.logger.Info("received shutdown signal, initiating graceful shutdown")
			s.sc.SendCloseSignal(nil)
			if err := s.sc.WaitClosed(); err != nil {
				s.logger.Error("shutdown completed with error", zap.Error(err))
				return nil
			}
			s.logger.Info("service has been shut down gracefully")
			return nil
		},
	}

	rootCmd.AddCommand(runCommand)
	fs := runCommand.Flags()
	fs.StringVarP(&runEnv.dir, "dir", "d", "", "run dir")
	fs.StringVarP(&runEnv.port, "port", "p", "", "run port")
	fs.StringVarP(&runEnv.runMode, "mode", "m", "", "run mode")
	fs.StringVarP(&runEnv.config, "config", "c", "", "config file")
}

// findOrCreateConfig returns the first existing candidate, writing the embedded
// default to the last candidate when none exists
func findOrCreateConfig() (string, error) {
	for _, p := range configCandidates {
		if fileurl.IsExist(p) {
			return p, nil
		}
	}

	path := configCandidates[len(configCandidates)-1]
	bootstrapLogger.Warn("config file not found, creating default config", zap.String("path", path))
	if err := fileurl.CreatePath(path, os.ModePerm); err != nil {
		return "", errors.Wrap(err, "create config directory")
	}
	if err := os.WriteFile(path, []byte(configDefault), 0666); err != nil {
		return "", errors.Wrap(err, "write default config")
	}
	bootstrapLogger.Info("config file created", zap.String("path", fileurl.ResolvePath(path, "")))
	return path, nil
}

// watchConfig restarts the server stored in current whenever path is written.
// The old server is fully closed first so the new one can bind the same ports.
func watchConfig(ctx context.Context, path string, current *atomic.Pointer[Server], restart func() (*Server, error)) {
	w := watcher.New()
	w.SetMaxEvents(1)
	w.FilterOps(watcher.Write)
	if err := w.Add(path); err != nil {
		current.Load().logger.Error("config watcher file error", zap.Error(err))
		return
	}

	go func() {
		if err := w.Start(configWatchPoll); err != nil {
			current.Load().logger.Error("config watcher start error", zap.Error(err))
		}
	}()
	defer w.Close()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.Closed:
			return
		case err := <-w.Error:
			current.Load().logger.Error("config watcher error", zap.Error(err))
		case event := <-w.Event:
			old := current.Load()
			old.logger.Info("config changed, restarting", zap.String("op", event.Op.String()), zap.String("file", event.Path))
			old.sc.SendCloseSignal(nil)
			if err := old.sc.WaitClosed(); err != nil {
				old.logger.Warn("previous server closed with error", zap.Error(err))
			}
			next, err := restart()
			if err != nil {
				bootstrapLogger.Error("restart failed", zap.Error(err))
				continue
			}
			current.Store(next)
		}
	}
}
