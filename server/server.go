package main

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/Slm0nB/play-together-api-sub000/api"
	"github.com/Slm0nB/play-together-api-sub000/cqldao"
	"github.com/Slm0nB/play-together-api-sub000/hub"
	"github.com/Slm0nB/play-together-api-sub000/idgen"
	"github.com/Slm0nB/play-together-api-sub000/model"
	"github.com/Slm0nB/play-together-api-sub000/notifier"
	"github.com/Slm0nB/play-together-api-sub000/shell"
	"github.com/Slm0nB/play-together-api-sub000/sqldao"
	"github.com/Slm0nB/play-together-api-sub000/stats"
	"github.com/Slm0nB/play-together-api-sub000/view"
)

var _ api.Config = (*Config)(nil)

const dbRetryInterval = 5 * time.Second

type Server struct {
	Config   api.Config
	store    api.Store
	hub      *hub.Hub
	model    *model.Model
	stats    *stats.Refresher
	notifier *notifier.Notifier
	shell    *shell.SSHServer
}

// NewServer wires every component on top of store. In maintenance mode the
// stats refresher and the notifier are not started, only the admin shell is.
func NewServer(config api.Config, store api.Store) (*Server, error) {

	s := &Server{
		Config: config,
		store:  store,
		hub:    hub.New(),
	}

	s.model = model.New(store, s.hub,
		model.WithGenerator(idgen.New(config.ServerID())),
		model.WithViewOptions(view.WithFetchTimeout(config.ViewFetchTimeout())))

	var err error
	if s.stats, err = stats.New(s.model, config.StatsCron()); err != nil {
		return nil, err
	}

	s.shell, err = shell.NewSSHServer(shell.SSHConfig{
		Address:  config.SSHListenAddress(),
		Port:     config.SSHListenPort(),
		HostKey:  config.SSHHostKey(),
		User:     config.SSHUser(),
		Password: config.SSHPassword(),
	}, s.model, s.stats)
	if err != nil {
		s.stats.Close()
		return nil, err
	}

	if !config.MaintenanceMode() {
		var pusher notifier.Pusher = notifier.LogPusher{}
		if config.GcmAPIKey() != "" {
			pusher = notifier.NewGcmPusher(config.GcmAPIKey())
		} else {
			log.Warn().Msg("no gcm_api_key configured, pushes are only logged")
		}
		s.notifier = notifier.New(s.model, pusher, config.NotifyWindow())
	}

	return s, nil
}

func (s *Server) Model() *model.Model {
	return s.model
}

// Run blocks until ctx is done and every component has stopped.
func (s *Server) Run(ctx context.Context) error {

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup

	if !s.Config.MaintenanceMode() {
		wg.Add(2)
		go func() {
			defer wg.Done()
			s.stats.Run(ctx)
		}()
		go func() {
			defer wg.Done()
			s.notifier.Run(ctx)
		}()
	} else {
		log.Warn().Msg("maintenance mode enabled, background jobs are disabled")
	}

	err := s.shell.ListenAndServe(ctx)
	if err != nil {
		log.Error().Err(err).Msg("ssh shell stopped")
		cancel()
	}

	wg.Wait()

	return err
}

func (s *Server) Close() {
	if s.notifier != nil {
		s.notifier.Close()
		s.notifier.Flush(context.Background())
	}
	s.stats.Close()
	if err := s.store.Close(); err != nil {
		log.Error().Err(err).Msg("closing store")
	}
}

// openStore connects to the configured backend. Cassandra is retried until
// it answers or ctx is done.
func openStore(ctx context.Context, config api.Config) (api.Store, error) {

	switch config.DbDriver() {
	case api.DriverCassandra:
		session := cqldao.NewSession(config.DbKeyspace(), config.DbCQLVersion(), config.DbAddress()...)

		err := session.Connect()
		for err != nil {
			log.Error().Err(err).Strs("hosts", config.DbAddress()).Msg("connecting to cassandra")
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(dbRetryInterval):
			}
			err = session.Connect()
		}

		if err := cqldao.CreateSchema(ctx, session); err != nil {
			session.Close()
			return nil, err
		}

		log.Info().Str("keyspace", config.DbKeyspace()).Msg("connected to cassandra")
		return cqldao.NewStore(session), nil

	default:
		store, err := sqldao.Open(ctx, config.SQLitePath())
		if err != nil {
			return nil, err
		}
		log.Info().Str("path", config.SQLitePath()).Msg("sqlite store opened")
		return store, nil
	}
}
