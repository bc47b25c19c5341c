package account_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Horridhunk/carmannagement/internal/auth"
	"github.com/Horridhunk/carmannagement/internal/domain"
	"github.com/Horridhunk/carmannagement/internal/domain/assignment"
	"github.com/Horridhunk/carmannagement/internal/httperr"
	"github.com/Horridhunk/carmannagement/internal/infra/repository"
	"github.com/Horridhunk/carmannagement/internal/logging"
	"github.com/Horridhunk/carmannagement/internal/models"
	"github.com/Horridhunk/carmannagement/internal/testutil"
	"github.com/Horridhunk/carmannagement/internal/timezone"
	"github.com/Horridhunk/carmannagement/internal/usecase/account"
)

var (
	base  = time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)
	admin = auth.Principal{Role: auth.RoleAdmin, ID: 1}
)

type sender struct {
	links []string
	err   error
}

func (s *sender) SendPasswordReset(_ context.Context, _ *models.Client, link string) error {
	s.links = append(s.links, link)
	return s.err
}

func newRepo(t *testing.T) (*repository.GormRepository, *testutil.Fixtures) {
	db := testutil.NewDB(t)
	return repository.NewGormRepository(db), testutil.NewFixtures(t, db)
}

func register(t *testing.T, repo domain.Repository, email string) *models.Client {
	t.Helper()
	c, err := account.NewRegisterClient(repo, nil).Execute(context.Background(), account.RegisterClientInput{
		Email:           email,
		FirstName:       "Jane",
		LastName:        "Wanjiru",
		Password:        "s3cret-pass",
		ConfirmPassword: "s3cret-pass",
	})
	require.NoError(t, err)
	return c
}

func TestRegisterClient(t *testing.T) {
	repo, _ := newRepo(t)
	ctx := context.Background()
	uc := account.NewRegisterClient(repo, nil)

	c := register(t, repo, " Jane@Example.com ")
	assert.Equal(t, "jane@example.com", c.Email)
	assert.NotEqual(t, "s3cret-pass", c.PasswordHash)

	_, err := uc.Execute(ctx, account.RegisterClientInput{
		Email: "jane@example.com", FirstName: "J", LastName: "W",
		Password: "s3cret-pass", ConfirmPassword: "s3cret-pass",
	})
	assert.True(t, httperr.IsBusiness(err, "email_taken"))

	_, err = uc.Execute(ctx, account.RegisterClientInput{
		Email: "other@example.com", FirstName: "J", LastName: "W",
		Password: "s3cret-pass", ConfirmPassword: "different",
	})
	require.Error(t, err)
	assert.Equal(t, "Passwords do not match.", err.Error())

	_, err = uc.Execute(ctx, account.RegisterClientInput{
		Email: "not-an-email", FirstName: "J", LastName: "W",
		Password: "s3cret-pass", ConfirmPassword: "s3cret-pass",
	})
	assert.True(t, httperr.IsBusiness(err, "invalid_email"))

	long := strings.Repeat("x", 80)
	_, err = uc.Execute(ctx, account.RegisterClientInput{
		Email: "long@example.com", FirstName: "J", LastName: "W",
		Password: long, ConfirmPassword: long,
	})
	assert.True(t, httperr.IsBusiness(err, "password_too_long"))
}

func TestCreateWasher(t *testing.T) {
	repo, _ := newRepo(t)
	ctx := context.Background()
	uc := account.NewCreateWasher(repo, timezone.Fixed(base), nil)

	in := account.WasherInput{
		Email:           "washer@example.com",
		FirstName:       "Otieno",
		LastName:        "Ouma",
		Phone:           "(0712) 345-678",
		Password:        "s3cret-pass",
		ConfirmPassword: "s3cret-pass",
		Status:          "on_break",
	}

	// self-signup ignores the requested status
	w, err := uc.Execute(ctx, auth.Principal{}, in)
	require.NoError(t, err)
	assert.Equal(t, "0712345678", w.Phone)
	assert.Equal(t, "active", w.Status)
	assert.True(t, w.IsAvailable)
	assert.True(t, w.DateHired.Equal(base))

	in.Email = "second@example.com"
	_, err = uc.Execute(ctx, admin, in)
	assert.True(t, httperr.IsBusiness(err, "phone_taken"))

	in.Phone = "0812345678"
	_, err = uc.Execute(ctx, admin, in)
	assert.True(t, httperr.IsBusiness(err, "invalid_phone"))

	in.Phone = "0112345678"
	in.Unavailable = true
	w2, err := uc.Execute(ctx, admin, in)
	require.NoError(t, err)
	assert.Equal(t, "on_break", w2.Status)
	assert.False(t, w2.IsAvailable)
}

func TestLoginAllRoles(t *testing.T) {
	repo, _ := newRepo(t)
	ctx := context.Background()
	issuer := auth.NewIssuer("secret", time.Hour, nil)
	login := account.NewLogin(repo, issuer)

	c := register(t, repo, "jane@example.com")
	_, err := account.NewCreateAdmin(repo, nil).Execute(ctx, "root", "root@example.com", "admin-pass")
	require.NoError(t, err)

	res, err := login.Execute(ctx, auth.RoleClient, "JANE@example.com", "s3cret-pass")
	require.NoError(t, err)
	p, err := issuer.Parse(res.Token)
	require.NoError(t, err)
	assert.Equal(t, auth.Principal{Role: auth.RoleClient, ID: c.ID}, p)
	assert.Equal(t, "Jane Wanjiru", res.Name)

	res, err = login.Execute(ctx, auth.RoleAdmin, "root", "admin-pass")
	require.NoError(t, err)
	assert.Equal(t, auth.RoleAdmin, res.Role)

	_, err = login.Execute(ctx, auth.RoleClient, "jane@example.com", "wrong-pass")
	assert.True(t, httperr.IsKind(err, httperr.KindUnauthorized))

	// a client account is not a washer account
	_, err = login.Execute(ctx, auth.RoleWasher, "jane@example.com", "s3cret-pass")
	assert.True(t, httperr.IsBusiness(err, "invalid_credentials"))
}

func TestPasswordResetTokenLifetime(t *testing.T) {
	repo, _ := newRepo(t)
	ctx := context.Background()
	c := register(t, repo, "jane@example.com")

	at := base
	clock := func() time.Time { return at }
	s := &sender{}

	link, err := account.NewRequestPasswordReset(repo, s, "http://carwash.test", clock, logging.Discard(), nil).
		Execute(ctx, c.Email)
	require.NoError(t, err)
	require.Equal(t, []string{link}, s.links)
	token := link[strings.LastIndex(link, "/")+1:]

	reset := account.NewResetPassword(repo, time.Hour, clock, nil)

	at = base.Add(61 * time.Minute)
	err = reset.Execute(ctx, token, "brand-new-pass", "brand-new-pass")
	assert.True(t, httperr.IsBusiness(err, "invalid_token"))

	at = base.Add(30 * time.Minute)
	require.NoError(t, reset.Execute(ctx, token, "brand-new-pass", "brand-new-pass"))

	stored, err := repo.FindResetToken(ctx, token)
	require.NoError(t, err)
	assert.True(t, stored.IsUsed)

	got, err := repo.GetClient(ctx, c.ID)
	require.NoError(t, err)
	assert.True(t, auth.CheckPassword(got.PasswordHash, "brand-new-pass"))

	err = reset.Execute(ctx, token, "another-pass", "another-pass")
	assert.True(t, httperr.IsBusiness(err, "invalid_token"))
}

func TestRequestPasswordResetInvalidatesOlderTokens(t *testing.T) {
	repo, _ := newRepo(t)
	ctx := context.Background()
	c := register(t, repo, "jane@example.com")

	s := &sender{err: errors.New("broker down")}
	uc := account.NewRequestPasswordReset(repo, s, "", timezone.Fixed(base), logging.Discard(), nil)

	first, err := uc.Execute(ctx, c.Email)
	require.NoError(t, err)
	_, err = uc.Execute(ctx, c.Email)
	require.NoError(t, err)

	old, err := repo.FindResetToken(ctx, strings.TrimPrefix(first, "/reset-password/"))
	require.NoError(t, err)
	assert.True(t, old.IsUsed)

	link, err := uc.Execute(ctx, "nobody@example.com")
	require.NoError(t, err)
	assert.Empty(t, link)
	assert.Len(t, s.links, 2)
}

func TestChangeWasherPassword(t *testing.T) {
	repo, _ := newRepo(t)
	ctx := context.Background()

	w, err := account.NewCreateWasher(repo, nil, nil).Execute(ctx, auth.Principal{}, account.WasherInput{
		Email: "w@example.com", FirstName: "A", LastName: "B", Phone: "0700000001",
		Password: "first-pass", ConfirmPassword: "first-pass",
	})
	require.NoError(t, err)
	p := auth.Principal{Role: auth.RoleWasher, ID: w.ID}
	uc := account.NewChangeWasherPassword(repo, nil)

	err = uc.Execute(ctx, p, "nope", "second-pass", "second-pass")
	assert.True(t, httperr.IsBusiness(err, "wrong_password"))

	err = uc.Execute(ctx, p, "first-pass", "short", "short")
	assert.True(t, httperr.IsBusiness(err, "password_too_short"))

	require.NoError(t, uc.Execute(ctx, p, "first-pass", "second-pass", "second-pass"))
	got, err := repo.GetWasher(ctx, w.ID)
	require.NoError(t, err)
	assert.True(t, auth.CheckPassword(got.PasswordHash, "second-pass"))
}

func TestDeleteClientReleasesWasher(t *testing.T) {
	repo, fx := newRepo(t)
	ctx := context.Background()
	engine := assignment.NewEngine(domain.PolicySeniority, nil, timezone.Fixed(base), logging.Discard(), nil)

	leaving := fx.Client()
	lv := fx.Vehicle(leaving.ID)
	w := fx.Washer(base)
	fx.Order(leaving.ID, lv.ID, "assigned", &w.ID, base)

	stays := fx.Client()
	sv := fx.Vehicle(stays.ID)
	waiting := fx.Order(stays.ID, sv.ID, "pending", nil, base.Add(time.Minute))

	uc := account.NewManageClients(repo, engine, nil)
	require.NoError(t, uc.Delete(ctx, admin, leaving.ID))

	var o models.WashOrder
	fx.Reload(&o, waiting.ID)
	assert.Equal(t, "assigned", o.Status)
	assert.Equal(t, w.ID, *o.WasherID)

	err := uc.Delete(ctx, admin, leaving.ID)
	assert.True(t, httperr.IsBusiness(err, "client_not_found"))
}
