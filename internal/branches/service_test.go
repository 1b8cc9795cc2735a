package branches

import (
	"context"
	"strings"
	"testing"
	"unicode"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/protocolai/hireai/internal/shared"
	"github.com/protocolai/hireai/internal/users"
)

type memoryBranchRepo struct {
	branches map[string]Branch
	admins   []users.AdminUser
}

func (m *memoryBranchRepo) List(context.Context) ([]Branch, error) {
	out := make([]Branch, 0, len(m.branches))
	for _, b := range m.branches {
		out = append(out, b)
	}
	return out, nil
}

func (m *memoryBranchRepo) Get(_ context.Context, id string) (Branch, error) {
	b, ok := m.branches[id]
	if !ok {
		return Branch{}, shared.ErrNotFound
	}
	return b, nil
}

func (m *memoryBranchRepo) Ensure(_ context.Context, b Branch) error {
	if _, ok := m.branches[b.ID]; !ok {
		m.branches[b.ID] = b
	}
	return nil
}

func (m *memoryBranchRepo) Provision(_ context.Context, b Branch, admin users.AdminUser) (Branch, users.AdminUser, error) {
	m.branches[b.ID] = b
	m.admins = append(m.admins, admin)
	return b, admin, nil
}

func TestAdminEmail(t *testing.T) {
	require.Equal(t, "north.coast.hub@company.com", AdminEmail("  North   Coast Hub ", "company.com"))
	require.Equal(t, "riyadh@hire.example", AdminEmail("Riyadh", "hire.example"))
}

func TestGeneratePassword(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		pw, err := GeneratePassword()
		require.NoError(t, err)
		require.Len(t, pw, 12)
		var upper, lower, digit, special bool
		for _, r := range pw {
			switch {
			case unicode.IsUpper(r):
				upper = true
			case unicode.IsLower(r):
				lower = true
			case unicode.IsDigit(r):
				digit = true
			case strings.ContainsRune(specialChars, r):
				special = true
			default:
				t.Fatalf("unexpected character %q in %q", r, pw)
			}
		}
		require.True(t, upper && lower && digit && special, pw)
		seen[pw] = true
	}
	require.Greater(t, len(seen), 45)
}

func TestProvision(t *testing.T) {
	repo := &memoryBranchRepo{branches: map[string]Branch{}}
	svc := NewService(repo, Options{BcryptCost: bcrypt.MinCost})

	out, err := svc.Provision(context.Background(), "admin-root", ProvisionInput{Name: "Jeddah Office", CompanyName: "Protocol"})
	require.NoError(t, err)
	require.Equal(t, "jeddah.office@company.com", out.Email)
	require.Equal(t, out.Email, out.Admin.Email)
	require.Equal(t, "role-recruiter", out.Admin.RoleID)
	require.Equal(t, out.Branch.ID, out.Admin.BranchID)
	require.Equal(t, "Jeddah Office Administrator", out.Admin.FullName)
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(out.Admin.PasswordHash), []byte(out.Password)))
	require.Len(t, repo.admins, 1)

	_, err = svc.Provision(context.Background(), "admin-root", ProvisionInput{Name: "", CompanyName: "Protocol"})
	require.Error(t, err)
}
