package health

// Status is the health payload.
type Status struct {
	OK       bool `json:"ok"`
	Sessions int  `json:"sessions"`
}

// Service encapsulates health-related checks.
type Service struct {
	sessions func() int
}

// NewService constructs a health service. sessions may be nil.
func NewService(sessions func() int) *Service {
	return &Service{sessions: sessions}
}

// Status reports liveness and how many builder sessions are live.
func (s *Service) Status() Status {
	st := Status{OK: true}
	if s != nil && s.sessions != nil {
		st.Sessions = s.sessions()
	}
	return st
}
