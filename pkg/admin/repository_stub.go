package admin

import "context"

type RepositoryStub struct {
	Accounts []Account
	Items    int
	Err      error
}

func NewRepositoryStub() *RepositoryStub {
	return &RepositoryStub{}
}

func (s *RepositoryStub) Cleanup() {
	s.Accounts = nil
	s.Items = 0
	s.Err = nil
}

func (s *RepositoryStub) ListAccounts(ctx context.Context) ([]Account, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	return append([]Account(nil), s.Accounts...), nil
}

func (s *RepositoryStub) CountItems(ctx context.Context) (int, error) {
	if s.Err != nil {
		return 0, s.Err
	}
	return s.Items, nil
}
