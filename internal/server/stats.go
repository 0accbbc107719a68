package server

import (
	"time"

	"github.com/matst80/code-open/internal/alias"
	"github.com/matst80/code-open/internal/proto"
)

// Stats represents current server stats for dashboards & API.
type Stats struct {
	Opens        int64           `json:"opens"`
	DecodeErrors int64           `json:"decode_errors"`
	SpawnErrors  int64           `json:"spawn_errors"`
	RateLimited  int64           `json:"rate_limited"`
	LastOpen     *proto.OpenInfo `json:"last_open,omitempty"`
	LastOpenAt   time.Time       `json:"last_open_at,omitempty"`
}

func (s *Server) count(fn func(*Stats)) {
	s.mu.Lock()
	fn(&s.stats)
	s.mu.Unlock()
}

// Stats returns a snapshot of the counters.
func (s *Server) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.stats
	if st.LastOpen != nil {
		last := *st.LastOpen
		st.LastOpen = &last
	}
	return st
}

// Table returns the alias table the server resolves against.
func (s *Server) Table() alias.Table { return s.cfg.Table }

// ToTemplateMap returns a map suited for html/template rendering with expected capitalized keys.
func (st Stats) ToTemplateMap() map[string]any {
	m := map[string]any{
		"Opens":        st.Opens,
		"DecodeErrors": st.DecodeErrors,
		"SpawnErrors":  st.SpawnErrors,
		"RateLimited":  st.RateLimited,
	}
	if st.LastOpen != nil {
		m["LastHost"] = st.LastOpen.OriginHost
		m["LastPath"] = st.LastOpen.RemoteDirPath
		m["LastAt"] = st.LastOpenAt.Format(time.RFC3339)
	}
	return m
}
