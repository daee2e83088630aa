package cqldao

import (
	"time"

	"github.com/gocql/gocql"
)

func NewSession(keyspace string, cqlVersion int, hosts ...string) *GocqlSession {
	session := &GocqlSession{}
	session.cluster = gocql.NewCluster(hosts...)
	session.cluster.Keyspace = keyspace
	session.cluster.Consistency = gocql.LocalQuorum
	session.cluster.Timeout = 3 * time.Second
	session.cluster.ProtoVersion = cqlVersion
	session.cluster.DefaultTimestamp = true
	return session
}

type GocqlSession struct {
	*gocql.Session
	cluster *gocql.ClusterConfig
}

func (s *GocqlSession) Connect() error {
	session, err := s.cluster.CreateSession()
	if err != nil {
		return err
	}
	s.Session = session
	return nil
}

func (s *GocqlSession) IsValid() bool {
	return s.Session != nil
}

func (s *GocqlSession) Closed() bool {
	return s.Session == nil || s.Session.Closed()
}
