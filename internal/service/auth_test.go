package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/atinyakov/pwdvault/internal/service"
)

type mockUserRepo struct {
	UserExistsFunc   func(ctx context.Context, login string) (bool, error)
	RegisterUserFunc func(ctx context.Context, login string, maxUID int) (int, error)
	LookupUIDFunc    func(ctx context.Context, login string) (int, error)
}

func (m *mockUserRepo) UserExists(ctx context.Context, login string) (bool, error) {
	return m.UserExistsFunc(ctx, login)
}
func (m *mockUserRepo) RegisterUser(ctx context.Context, login string, maxUID int) (int, error) {
	return m.RegisterUserFunc(ctx, login, maxUID)
}
func (m *mockUserRepo) LookupUID(ctx context.Context, login string) (int, error) {
	return m.LookupUIDFunc(ctx, login)
}

func TestAuth_UserExists(t *testing.T) {
	repo := &mockUserRepo{
		UserExistsFunc: func(_ context.Context, login string) (bool, error) {
			return login == "alice", nil
		},
	}
	svc := service.NewAuthService(repo, 20)
	if ok, _ := svc.UserExists(context.Background(), "alice"); !ok {
		t.Error("expected alice to exist")
	}
	if ok, _ := svc.UserExists(context.Background(), "bob"); ok {
		t.Error("expected bob to be unknown")
	}
}

func TestAuth_RegisterPassesCapacityAndCaches(t *testing.T) {
	lookups := 0
	repo := &mockUserRepo{
		RegisterUserFunc: func(_ context.Context, login string, maxUID int) (int, error) {
			if login != "alice" || maxUID != 5 {
				t.Errorf("RegisterUser(%q, %d); want alice, 5", login, maxUID)
			}
			return 4, nil
		},
		LookupUIDFunc: func(context.Context, string) (int, error) {
			lookups++
			return 0, errors.New("should be cached")
		},
	}
	svc := service.NewAuthService(repo, 5)

	uid, err := svc.RegisterUser(context.Background(), "alice")
	if err != nil || uid != 4 {
		t.Fatalf("RegisterUser = %d, %v; want 4, nil", uid, err)
	}
	uid, err = svc.LookupUID(context.Background(), "alice")
	if err != nil || uid != 4 {
		t.Fatalf("LookupUID = %d, %v; want 4, nil", uid, err)
	}
	if lookups != 0 {
		t.Errorf("repository consulted %d times; want 0", lookups)
	}
}

func TestAuth_LookupErrorNotCached(t *testing.T) {
	wantErr := errors.New("db down")
	calls := 0
	repo := &mockUserRepo{
		LookupUIDFunc: func(context.Context, string) (int, error) {
			calls++
			if calls == 1 {
				return 0, wantErr
			}
			return 9, nil
		},
	}
	svc := service.NewAuthService(repo, 20)

	if _, err := svc.LookupUID(context.Background(), "carol"); !errors.Is(err, wantErr) {
		t.Fatalf("first lookup err = %v; want %v", err, wantErr)
	}
	uid, err := svc.LookupUID(context.Background(), "carol")
	if err != nil || uid != 9 {
		t.Fatalf("second lookup = %d, %v; want 9, nil", uid, err)
	}
	if _, _ = svc.LookupUID(context.Background(), "carol"); calls != 2 {
		t.Errorf("repository consulted %d times; want 2", calls)
	}
}

func TestAuth_RegisterError(t *testing.T) {
	wantErr := errors.New("full")
	repo := &mockUserRepo{
		RegisterUserFunc: func(context.Context, string, int) (int, error) { return 0, wantErr },
	}
	svc := service.NewAuthService(repo, 1)
	if _, err := svc.RegisterUser(context.Background(), "x"); !errors.Is(err, wantErr) {
		t.Fatalf("err = %v; want %v", err, wantErr)
	}
}
