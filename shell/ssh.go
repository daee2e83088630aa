package shell

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"crypto/subtle"
	"fmt"
	"net"
	"os"

	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/ssh"

	"github.com/Slm0nB/play-together-api-sub000/model"
	"github.com/Slm0nB/play-together-api-sub000/stats"
)

type SSHConfig struct {
	Address  string
	Port     int
	HostKey  string
	User     string
	Password string
}

type SSHServer struct {
	config *ssh.ServerConfig
	addr   string
	model  *model.Model
	stats  *stats.Refresher
}

func NewSSHServer(cfg SSHConfig, m *model.Model, st *stats.Refresher) (*SSHServer, error) {

	config, err := loadConfig(cfg)
	if err != nil {
		return nil, err
	}

	return &SSHServer{
		config: config,
		addr:   fmt.Sprintf("%v:%v", cfg.Address, cfg.Port),
		model:  m,
		stats:  st,
	}, nil
}

// ListenAndServe accepts admin sessions until ctx is done.
func (s *SSHServer) ListenAndServe(ctx context.Context) error {

	if ctx.Err() != nil {
		return nil
	}

	listener, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}

	go func() {
		<-ctx.Done()
		listener.Close()
	}()

	log.Info().Str("addr", listener.Addr().String()).Msg("ssh shell listening")

	for {
		nConn, err := listener.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			log.Warn().Err(err).Msg("ssh: failed to accept incoming connection")
			continue
		}
		go s.manageSSHSession(ctx, nConn)
	}
}

func (s *SSHServer) manageSSHSession(ctx context.Context, nConn net.Conn) {

	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Msg("shell session error")
		}
		nConn.Close()
	}()

	serverConn, chans, reqs, err := ssh.NewServerConn(nConn, s.config)
	if err != nil {
		log.Warn().Err(err).Str("remote", nConn.RemoteAddr().String()).Msg("ssh: failed to handshake")
		return
	}
	defer serverConn.Close()

	log.Info().Str("user", serverConn.User()).Str("remote", serverConn.RemoteAddr().String()).
		Msg("shell session started")

	go ssh.DiscardRequests(reqs)

	for newChannel := range chans {
		if newChannel.ChannelType() != "session" {
			newChannel.Reject(ssh.UnknownChannelType, "unknown channel type")
			continue
		}

		channel, requests, err := newChannel.Accept()
		if err != nil {
			log.Warn().Err(err).Msg("ssh: could not accept channel")
			return
		}

		// Only the default shell is served, exec requests are refused.
		go func(in <-chan *ssh.Request) {
			for req := range in {
				ok := false
				switch req.Type {
				case "shell":
					ok = len(req.Payload) == 0
				case "pty-req":
					ok = true
				}
				req.Reply(ok, nil)
			}
		}(requests)

		sessionCtx, cancel := context.WithCancel(ctx)
		go func() {
			<-sessionCtx.Done()
			channel.Close()
		}()

		NewShell(sessionCtx, s.model, s.stats, channel).Run()
		cancel()
		return
	}
}

func loadConfig(cfg SSHConfig) (*ssh.ServerConfig, error) {

	if cfg.User == "" || cfg.Password == "" {
		return nil, ErrNoCredentials
	}

	config := &ssh.ServerConfig{
		PasswordCallback: func(c ssh.ConnMetadata, pass []byte) (*ssh.Permissions, error) {
			userOk := subtle.ConstantTimeCompare([]byte(c.User()), []byte(cfg.User)) == 1
			passOk := subtle.ConstantTimeCompare(pass, []byte(cfg.Password)) == 1
			if userOk && passOk {
				return nil, nil
			}
			return nil, fmt.Errorf("password rejected for %q", c.User())
		},
	}

	signer, err := loadHostKey(cfg.HostKey)
	if err != nil {
		return nil, err
	}
	config.AddHostKey(signer)

	return config, nil
}

// loadHostKey reads a PEM private key from path. An empty path generates an
// ephemeral key, so clients see a new fingerprint on every restart.
func loadHostKey(path string) (ssh.Signer, error) {

	if path == "" {
		_, private, err := ed25519.GenerateKey(rand.Reader)
		if err != nil {
			return nil, err
		}
		log.Warn().Msg("ssh: no host key configured, using an ephemeral one")
		return ssh.NewSignerFromKey(private)
	}

	privateBytes, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load host key: %w", err)
	}

	signer, err := ssh.ParsePrivateKey(privateBytes)
	if err != nil {
		return nil, fmt.Errorf("failed to parse host key: %w", err)
	}

	return signer, nil
}
