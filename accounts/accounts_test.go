package accounts

import (
	"context"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/02priyeshraj/QR_Menu_Backend/apperrors"
	"github.com/02priyeshraj/QR_Menu_Backend/helper"
	"github.com/02priyeshraj/QR_Menu_Backend/logger"
	"github.com/02priyeshraj/QR_Menu_Backend/models"
	"github.com/02priyeshraj/QR_Menu_Backend/store"
	"github.com/02priyeshraj/QR_Menu_Backend/store/memstore"
)

func newService(t *testing.T) (*Service, store.Stores) {
	t.Helper()
	stores := memstore.New()
	tokens := helper.NewTokenManager("test-secret", time.Hour)
	return NewService(stores.Users, tokens, helper.Hasher{Cost: bcrypt.MinCost}, logger.Nop()), stores
}

func register(t *testing.T, s *Service, email string) *Session {
	t.Helper()
	sess, err := s.Register(context.Background(), RegisterInput{
		Name: "Asha", Email: email, Password: "secret1", Phone: "9000000001", RestaurantName: "Spice Hub",
	})
	if err != nil {
		t.Fatal(err)
	}
	return sess
}

func TestRegisterAndLogin(t *testing.T) {
	s, _ := newService(t)
	ctx := context.Background()
	sess := register(t, s, " Asha@Spice.test ")

	if sess.Token == "" || sess.User.Role != models.RoleOwner || sess.User.Email != "asha@spice.test" {
		t.Errorf("session = %+v", sess)
	}
	if sess.User.Password == "secret1" {
		t.Error("password stored in clear")
	}

	logged, err := s.Login(ctx, LoginInput{Email: "ASHA@spice.test", Password: "secret1"})
	if err != nil {
		t.Fatal(err)
	}
	if logged.User.ID != sess.User.ID {
		t.Errorf("logged in as %v", logged.User.ID)
	}

	user, err := s.Authenticate(ctx, logged.Token)
	if err != nil {
		t.Fatal(err)
	}
	if user.ID != sess.User.ID {
		t.Errorf("token resolved to %v", user.ID)
	}
}

func TestRegisterRejects(t *testing.T) {
	s, _ := newService(t)
	register(t, s, "asha@spice.test")

	_, err := s.Register(context.Background(), RegisterInput{
		Name: "Other", Email: "ASHA@spice.test", Password: "secret1", RestaurantName: "X",
	})
	if !apperrors.Is(err, apperrors.KindConflict) {
		t.Errorf("duplicate email err = %v, want conflict", err)
	}

	_, err = s.Register(context.Background(), RegisterInput{Name: "N", Email: "not-an-email", Password: "secret1", RestaurantName: "X"})
	if !apperrors.Is(err, apperrors.KindValidation) {
		t.Errorf("bad email err = %v, want validation", err)
	}
}

func TestLoginFailures(t *testing.T) {
	s, stores := newService(t)
	ctx := context.Background()
	sess := register(t, s, "asha@spice.test")

	for _, in := range []LoginInput{
		{Email: "asha@spice.test", Password: "wrong"},
		{Email: "nobody@spice.test", Password: "secret1"},
	} {
		_, err := s.Login(ctx, in)
		if !apperrors.Is(err, apperrors.KindUnauthorized) || apperrors.Message(err) != errBadCredentials {
			t.Errorf("Login(%s) err = %v", in.Email, err)
		}
	}

	if _, err := s.Login(ctx, LoginInput{Password: "secret1"}); !apperrors.Is(err, apperrors.KindValidation) {
		t.Errorf("missing identifier err = %v", err)
	}

	sess.User.IsActive = false
	if err := stores.Users.Update(ctx, sess.User); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Login(ctx, LoginInput{Email: "asha@spice.test", Password: "secret1"}); !apperrors.Is(err, apperrors.KindForbidden) {
		t.Errorf("inactive login err = %v, want forbidden", err)
	}
	if _, err := s.Authenticate(ctx, sess.Token); !apperrors.Is(err, apperrors.KindForbidden) {
		t.Errorf("inactive token err = %v, want forbidden", err)
	}
}

func TestAuthenticateRejectsBadTokens(t *testing.T) {
	s, _ := newService(t)
	ctx := context.Background()
	sess := register(t, s, "asha@spice.test")

	other := helper.NewTokenManager("other-secret", time.Hour)
	forged, err := other.Generate(sess.User)
	if err != nil {
		t.Fatal(err)
	}
	for _, token := range []string{"", "garbage", forged} {
		if _, err := s.Authenticate(ctx, token); !apperrors.Is(err, apperrors.KindUnauthorized) {
			t.Errorf("Authenticate(%q) err = %v", token, err)
		}
	}
}

func TestUpdateProfileIsPartial(t *testing.T) {
	s, _ := newService(t)
	sess := register(t, s, "asha@spice.test")
	addr := "MG Road"

	user, err := s.UpdateProfile(context.Background(), sess.User, ProfileInput{RestaurantAddress: &addr})
	if err != nil {
		t.Fatal(err)
	}
	if user.RestaurantAddress != "MG Road" || user.RestaurantName != "Spice Hub" || user.Name != "Asha" {
		t.Errorf("user = %+v", user)
	}

	me, err := s.Me(context.Background(), sess.User)
	if err != nil {
		t.Fatal(err)
	}
	if me.RestaurantAddress != "MG Road" {
		t.Errorf("profile not persisted: %+v", me)
	}
}
