package user

import (
	"testing"
)

func TestRegisterAndAuthenticate(t *testing.T) {
	svc := NewService(NewInMemoryRepository(nil))

	created, err := svc.Register(User{
		Email:     "jo@example.com",
		Password:  "hunter22",
		FirstName: "Jo",
	})
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if created.ID == 0 {
		t.Fatal("expected an assigned user id")
	}
	if created.Password == "hunter22" {
		t.Fatal("password must not be stored in plain text")
	}

	u, err := svc.Authenticate("jo@example.com", "hunter22")
	if err != nil {
		t.Fatalf("Authenticate failed: %v", err)
	}
	if u.ID != created.ID {
		t.Fatalf("expected user %d, got %d", created.ID, u.ID)
	}
}

func TestAuthenticate_WrongPassword(t *testing.T) {
	svc := NewService(NewInMemoryRepository(nil))
	if _, err := svc.Register(User{Email: "jo@example.com", Password: "hunter22"}); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	if _, err := svc.Authenticate("jo@example.com", "wrong"); err != ErrInvalidCredentials {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAuthenticate_UnknownEmail(t *testing.T) {
	svc := NewService(NewInMemoryRepository(nil))

	if _, err := svc.Authenticate("nobody@example.com", "pw"); err != ErrInvalidCredentials {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	svc := NewService(NewInMemoryRepository(nil))
	if _, err := svc.Register(User{Email: "jo@example.com", Password: "pw"}); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	if _, err := svc.Register(User{Email: "jo@example.com", Password: "pw2"}); err != ErrEmailExists {
		t.Fatalf("expected ErrEmailExists, got %v", err)
	}
}

func TestCanModify(t *testing.T) {
	cases := []struct {
		name    string
		userID  int
		ownerID int
		want    bool
	}{
		{"owner", 42, 42, true},
		{"other user", 7, 42, false},
		{"zero user", 0, 42, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := CanModify(tc.userID, tc.ownerID); got != tc.want {
				t.Fatalf("CanModify(%d, %d) = %v, want %v", tc.userID, tc.ownerID, got, tc.want)
			}
		})
	}
}
