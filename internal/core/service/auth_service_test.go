package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"

	"github.com/stairstreak/leaderboard-system/internal/core/domain"
)

type stubIdentityRepo struct {
	identities []domain.Identity
	nextID     int
	createErr  error
}

func (s *stubIdentityRepo) Create(_ context.Context, identity *domain.Identity) (*domain.Identity, error) {
	if s.createErr != nil {
		return nil, s.createErr
	}
	s.nextID++
	stored := *identity
	stored.ID = fmt.Sprintf("id%d", s.nextID)
	s.identities = append(s.identities, stored)
	return &stored, nil
}

func (s *stubIdentityRepo) All(_ context.Context) ([]domain.Identity, error) {
	return append([]domain.Identity(nil), s.identities...), nil
}

func (s *stubIdentityRepo) TouchLastSeen(_ context.Context, id string, at time.Time) error {
	for i := range s.identities {
		if s.identities[i].ID == id {
			s.identities[i].LastSeenAt = at
			return nil
		}
	}
	return errors.New("identity not found")
}

func (s *stubIdentityRepo) Subscribe(func([]domain.Identity)) (func(), error) {
	return func() {}, nil
}

type stubVault struct {
	bindings []domain.LocalCredentialBinding
	putErr   error
}

func (v *stubVault) Put(binding domain.LocalCredentialBinding) error {
	if v.putErr != nil {
		return v.putErr
	}
	v.bindings = append(v.bindings, binding)
	return nil
}

func (v *stubVault) All() ([]domain.LocalCredentialBinding, error) {
	return append([]domain.LocalCredentialBinding(nil), v.bindings...), nil
}

func (v *stubVault) MostRecent() (*domain.LocalCredentialBinding, error) {
	if len(v.bindings) == 0 {
		return nil, nil
	}
	newest := v.bindings[0]
	for _, b := range v.bindings[1:] {
		if b.SetupAt.After(newest.SetupAt) {
			newest = b
		}
	}
	return &newest, nil
}

type stubGate struct {
	allowed bool
	marked  int
}

func (g *stubGate) Allow(context.Context, string) (bool, error) { return g.allowed, nil }
func (g *stubGate) Mark(context.Context, string) error          { g.marked++; return nil }

func newTestResolver(repo *stubIdentityRepo, vault *stubVault, gate *stubGate) *Resolver {
	return NewResolver(repo, vault, gate, "station-test", "test-secret", time.Hour, zerolog.Nop())
}

func TestRegisterAndResolveByCredentials(t *testing.T) {
	repo := &stubIdentityRepo{}
	vault := &stubVault{}
	resolver := newTestResolver(repo, vault, &stubGate{allowed: true})

	created, err := resolver.Register(context.Background(), " Alice ", "1234", true)
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if created.Name != "Alice" {
		t.Errorf("expected trimmed name, got %q", created.Name)
	}
	if created.SecretHash == "1234" || created.SecretHash == "" {
		t.Error("secret must be stored hashed")
	}
	if len(vault.bindings) != 1 {
		t.Fatalf("expected fast-path binding stored, got %d", len(vault.bindings))
	}
	if vault.bindings[0].IdentityID != created.ID {
		t.Errorf("binding points at %s, want %s", vault.bindings[0].IdentityID, created.ID)
	}

	// Name matching is case-insensitive.
	got, err := resolver.Resolve(context.Background(), "alice", "1234", false)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if got.ID != created.ID {
		t.Errorf("resolved %s, want %s", got.ID, created.ID)
	}
}

func TestRegisterValidation(t *testing.T) {
	tests := []struct {
		name     string
		username string
		secret   string
		wantErr  error
	}{
		{"empty name", "   ", "1234", domain.ErrInvalidName},
		{"short secret", "Alice", "123", domain.ErrWeakSecret},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			resolver := newTestResolver(&stubIdentityRepo{}, &stubVault{}, &stubGate{allowed: true})
			_, err := resolver.Register(context.Background(), tc.username, tc.secret, false)
			if !errors.Is(err, tc.wantErr) {
				t.Errorf("got %v, want %v", err, tc.wantErr)
			}
		})
	}
}

func TestRegisterDuplicateNameCaseInsensitive(t *testing.T) {
	resolver := newTestResolver(&stubIdentityRepo{}, &stubVault{}, &stubGate{allowed: true})

	if _, err := resolver.Register(context.Background(), "Alice", "1234", false); err != nil {
		t.Fatalf("first register: %v", err)
	}
	if _, err := resolver.Register(context.Background(), "ALICE", "5678", false); !errors.Is(err, domain.ErrNameTaken) {
		t.Errorf("got %v, want ErrNameTaken", err)
	}
}

func TestRegisterCooldown(t *testing.T) {
	gate := &stubGate{allowed: false}
	resolver := newTestResolver(&stubIdentityRepo{}, &stubVault{}, gate)

	_, err := resolver.Register(context.Background(), "Alice", "1234", false)
	if !errors.Is(err, domain.ErrRateLimited) {
		t.Fatalf("got %v, want ErrRateLimited", err)
	}
	if gate.marked != 0 {
		t.Error("cooldown must not be marked on a rejected registration")
	}
}

func TestFastPathUsesMostRecentBinding(t *testing.T) {
	repo := &stubIdentityRepo{identities: []domain.Identity{
		{ID: "id1", Name: "Alice"},
		{ID: "id2", Name: "Bob"},
	}}
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	vault := &stubVault{bindings: []domain.LocalCredentialBinding{
		{Token: "fp_1", IdentityID: "id1", IdentityName: "Alice", SetupAt: base},
		{Token: "fp_2", IdentityID: "id2", IdentityName: "Bob", SetupAt: base.Add(time.Hour)},
	}}
	resolver := newTestResolver(repo, vault, &stubGate{allowed: true})

	got, err := resolver.Resolve(context.Background(), "", "", true)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if got.ID != "id2" {
		t.Errorf("resolved %s, want most recent binding id2", got.ID)
	}
}

func TestFastPathFailures(t *testing.T) {
	t.Run("empty vault", func(t *testing.T) {
		resolver := newTestResolver(&stubIdentityRepo{}, &stubVault{}, &stubGate{allowed: true})
		_, err := resolver.Resolve(context.Background(), "", "", true)
		if !errors.Is(err, domain.ErrNeedsCredentials) {
			t.Errorf("got %v, want ErrNeedsCredentials", err)
		}
	})

	t.Run("dangling binding", func(t *testing.T) {
		// The bound identity no longer exists; resolution must not fall
		// through to another identity.
		repo := &stubIdentityRepo{identities: []domain.Identity{{ID: "id2", Name: "Bob"}}}
		vault := &stubVault{bindings: []domain.LocalCredentialBinding{
			{Token: "fp_1", IdentityID: "id-gone", IdentityName: "Alice", SetupAt: time.Now()},
		}}
		resolver := newTestResolver(repo, vault, &stubGate{allowed: true})
		_, err := resolver.Resolve(context.Background(), "", "", true)
		if !errors.Is(err, domain.ErrNeedsCredentials) {
			t.Errorf("got %v, want ErrNeedsCredentials", err)
		}
	})

	t.Run("fast path disabled", func(t *testing.T) {
		vault := &stubVault{bindings: []domain.LocalCredentialBinding{
			{Token: "fp_1", IdentityID: "id1", SetupAt: time.Now()},
		}}
		resolver := newTestResolver(&stubIdentityRepo{}, vault, &stubGate{allowed: true})
		_, err := resolver.Resolve(context.Background(), "", "", false)
		if !errors.Is(err, domain.ErrNeedsCredentials) {
			t.Errorf("got %v, want ErrNeedsCredentials", err)
		}
	})
}

func TestResolveIndistinguishableFailures(t *testing.T) {
	resolver := newTestResolver(&stubIdentityRepo{}, &stubVault{}, &stubGate{allowed: true})
	if _, err := resolver.Register(context.Background(), "Alice", "1234", false); err != nil {
		t.Fatalf("register: %v", err)
	}

	_, unknownErr := resolver.Resolve(context.Background(), "Nobody", "1234", false)
	_, wrongErr := resolver.Resolve(context.Background(), "Alice", "9999", false)

	if !errors.Is(unknownErr, domain.ErrInvalidCredentials) || !errors.Is(wrongErr, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for both, got %v / %v", unknownErr, wrongErr)
	}
	if unknownErr.Error() != wrongErr.Error() {
		t.Error("unknown name and wrong PIN must be indistinguishable")
	}
}

func TestResolvePartialCredentials(t *testing.T) {
	resolver := newTestResolver(&stubIdentityRepo{}, &stubVault{}, &stubGate{allowed: true})

	for _, creds := range [][2]string{{"Alice", ""}, {"", "1234"}} {
		if _, err := resolver.Resolve(context.Background(), creds[0], creds[1], true); !errors.Is(err, domain.ErrNeedsCredentials) {
			t.Errorf("name=%q secret=%q: got %v, want ErrNeedsCredentials", creds[0], creds[1], err)
		}
	}
}

func TestTokenCarriesIdentityClaims(t *testing.T) {
	resolver := newTestResolver(&stubIdentityRepo{}, &stubVault{}, &stubGate{allowed: true})

	signed, err := resolver.Token(&domain.Identity{ID: "id1", Name: "Alice"})
	if err != nil {
		t.Fatalf("token: %v", err)
	}

	claims := jwt.MapClaims{}
	parsed, err := jwt.ParseWithClaims(signed, claims, func(*jwt.Token) (interface{}, error) {
		return []byte("test-secret"), nil
	})
	if err != nil || !parsed.Valid {
		t.Fatalf("parse token: %v", err)
	}
	if claims["identity_id"] != "id1" || claims["name"] != "Alice" {
		t.Errorf("unexpected claims: %+v", claims)
	}
}
