// Command ssh serves one shared simulation over SSH. Every session gets a
// body to steer, plus followers chasing it.
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/charmbracelet/ssh"
	"github.com/charmbracelet/wish"
	"github.com/charmbracelet/wish/activeterm"
	"github.com/charmbracelet/wish/logging"

	"github.com/tomz197/quadstep/internal/config"
	"github.com/tomz197/quadstep/internal/console"
	"github.com/tomz197/quadstep/internal/loop"
	"github.com/tomz197/quadstep/internal/loop/client"
	"github.com/tomz197/quadstep/internal/loop/server"
	"github.com/tomz197/quadstep/internal/terrain"
)

const (
	defaultHost        = "::"
	defaultPort        = "2222"
	defaultHostKeyPath = "/app/keys/host_key"
)

func main() {
	host := config.GetEnv("SSH_HOST", defaultHost)
	port := config.GetEnv("SSH_PORT", defaultPort)
	hostKeyPath := config.GetEnv("SSH_HOST_KEY", defaultHostKeyPath)
	hostCfg := config.HostFromEnv()

	logger := console.NewLogger(os.Stderr, "ssh", hostCfg.LogLevel)
	logger.Info("ssh config", "host", host, "port", port, "hostKeyPath", hostKeyPath, "map", hostCfg.MapName)

	sim, err := newSimulation(hostCfg, logger)
	if err != nil {
		logger.Fatal("failed to start simulation", "err", err)
	}
	ctx, cancelSim := context.WithCancel(context.Background())
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		sim.Run(ctx)
	}()

	opts := []ssh.Option{
		wish.WithAddress(net.JoinHostPort(host, port)),
		wish.WithMiddleware(
			sessionMiddleware(sim, logger),
			activeterm.Middleware(),
			logging.StructuredMiddlewareWithLogger(logger, log.InfoLevel),
		),
		// Set TCP_NODELAY to reduce latency for key input
		ssh.WrapConn(func(ctx ssh.Context, conn net.Conn) net.Conn {
			if tcpConn, ok := conn.(*net.TCPConn); ok {
				_ = tcpConn.SetNoDelay(true)
			}
			return conn
		}),
	}
	if hostKeyPath != "" {
		opts = append(opts, wish.WithHostKeyPath(hostKeyPath))
	}

	s, err := wish.NewServer(opts...)
	if err != nil {
		logger.Fatal("failed to create server", "err", err)
	}

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	logger.Info("starting SSH server", "addr", net.JoinHostPort(host, port))
	go func() {
		if err := s.ListenAndServe(); err != nil && !errors.Is(err, ssh.ErrServerClosed) {
			logger.Fatal("server error", "err", err)
		}
	}()

	<-done
	logger.Info("shutting down")

	// Notify sessions and give them time to leave before stopping the loop
	sim.Shutdown(config.ShutdownWaitTime)
	cancelSim()
	wg.Wait()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("shutdown error", "err", err)
	}
}

func newSimulation(host config.Host, logger *log.Logger) (*server.Server, error) {
	cfg, err := config.FromEnv()
	if err != nil {
		return nil, err
	}
	m, err := terrain.Load(host.MapDir, host.MapName, host.Layers, host.Tileset, cfg.TileSize)
	if err != nil {
		return nil, fmt.Errorf("load map %q: %w", host.MapName, err)
	}
	world := loop.NewWorld(cfg)
	if err := world.LoadTerrain(m); err != nil {
		return nil, err
	}
	return server.NewServer(cfg, world, logger.WithPrefix("sim")), nil
}

// sessionMiddleware runs a client for each SSH session.
func sessionMiddleware(sim server.Simulation, logger *log.Logger) wish.Middleware {
	return func(next ssh.Handler) ssh.Handler {
		return func(sess ssh.Session) {
			pty, winCh, ok := sess.Pty()
			if !ok {
				fmt.Fprintln(sess, "Error: PTY required. Please connect with: ssh -t user@host")
				return
			}
			logger.Info("new session", "user", sess.User(), "term", pty.Term,
				"width", pty.Window.Width, "height", pty.Window.Height)

			sizeTracker := newSizeTracker(pty.Window.Width, pty.Window.Height)
			go func() {
				for win := range winCh {
					sizeTracker.update(win.Width, win.Height)
				}
			}()

			c := client.NewClient(sim, bufio.NewReader(sess), sess, client.ClientOptions{
				TermSizeFunc: sizeTracker.getSize,
				Name:         sess.User(),
			})
			if err := c.Run(); err != nil {
				logger.Error("session error", "user", sess.User(), "err", err)
			}

			logger.Info("session ended", "user", sess.User())
			next(sess)
		}
	}
}

// sizeTracker tracks terminal size from SSH window change events.
type sizeTracker struct {
	mu     sync.RWMutex
	width  int
	height int
}

func newSizeTracker(width, height int) *sizeTracker {
	return &sizeTracker{width: width, height: height}
}

func (s *sizeTracker) update(width, height int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.width = width
	s.height = height
}

func (s *sizeTracker) getSize() (int, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.width, s.height, nil
}

// Ensure sizeTracker.getSize satisfies console.TermSizeFunc
var _ console.TermSizeFunc = (*sizeTracker)(nil).getSize
