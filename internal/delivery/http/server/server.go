package server

import (
	"context"
	"log/slog"
	"net/http"
)

type Server struct {
	log    *slog.Logger
	server *http.Server
}

func New(log *slog.Logger, addr string, handler http.Handler) *Server {
	return &Server{
		log: log,
		server: &http.Server{
			Addr:    addr,
			Handler: handler,
		},
	}
}

func (s *Server) Run() error {
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		s.log.Error("failed to run server", slog.Any("err", err))
		return err
	}

	return nil
}

func (s *Server) MustRun() {
	if err := s.Run(); err != nil {
		panic(err)
	}
}

func (s *Server) Stop(ctx context.Context) {
	if err := s.server.Shutdown(ctx); err != nil {
		s.log.Error("failed to stop http server gracefully", slog.Any("err", err))
	}
}
